package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerq/ledgerq/internal/cliopt"
	"github.com/ledgerq/ledgerq/internal/cliutil"
	"github.com/ledgerq/ledgerq/ledgerq"
	"github.com/ledgerq/ledgerq/ledgerq/ops"
)

func runPrice(g cliopt.GlobalOptions, args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: ledgerq price <list|set>")
		return exitUsage
	}

	switch args[0] {
	case "list":
		return runPriceList(g, args[1:])
	case "set":
		return runPriceSet(g, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown price command: %s\n", args[0])
		return exitUsage
	}
}

func runPriceList(g cliopt.GlobalOptions, args []string) int {
	fs := newVerbFlags("price list")
	where := whereFlag(fs)
	limit, offset := pageFlags(fs)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	return withLedger(g, func(ctx context.Context, l *ledgerq.Ledger) error {
		prices, err := l.Prices(ctx, ledgerq.ListOptions{Queries: *where, Limit: *limit, Offset: *offset})
		if err != nil {
			return err
		}
		if cliutil.ParseOutputFormat(g.Format) == cliutil.FormatJSON {
			cliutil.PrintJSON(os.Stdout, prices)
			return nil
		}
		rows := make([][]string, 0, len(prices))
		for _, p := range prices {
			rows = append(rows, []string{
				p.SecurityKey,
				p.Date.Format(time.DateOnly),
				p.Open.String(),
				p.High.String(),
				p.Low.String(),
				p.Close.String(),
				p.Source,
			})
		}
		cliutil.RenderTable(os.Stdout,
			[]string{"security", "date", "open", "high", "low", "close", "source"}, rows)
		return nil
	})
}

func runPriceSet(g cliopt.GlobalOptions, args []string) int {
	fs := newVerbFlags("price set")
	security := fs.String("security", "", "security key (required)")
	dateStr := fs.String("date", "", "quote date YYYY-MM-DD (required)")
	valuesStr := fs.String("values", "", "1, 2, or 4 comma-separated values: close | open,close | open,high,low,close (required)")
	source := fs.String("source", "manual", "quote source")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *security == "" || *dateStr == "" || *valuesStr == "" {
		fs.PrintDefaults()
		return exitUsage
	}

	day, err := time.Parse(time.DateOnly, *dateStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid date %q: expected YYYY-MM-DD\n", *dateStr)
		return exitUsage
	}

	parts := strings.Split(*valuesStr, ",")
	values := make([]decimal.Decimal, 0, len(parts))
	for _, part := range parts {
		v, err := decimal.NewFromString(strings.TrimSpace(part))
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid price value %q\n", part)
			return exitUsage
		}
		values = append(values, v)
	}

	open, high, low, close, err := ops.OHLC(values)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}

	return withLedger(g, func(ctx context.Context, l *ledgerq.Ledger) error {
		created, err := l.SetPrice(ctx, ops.Price{
			SecurityKey: *security,
			Date:        day,
			Open:        open,
			High:        high,
			Low:         low,
			Close:       close,
			Source:      *source,
		})
		if err != nil {
			return err
		}
		if created {
			fmt.Printf("added price for %s on %s\n", *security, *dateStr)
		} else {
			fmt.Printf("updated price for %s on %s\n", *security, *dateStr)
		}
		return nil
	})
}
