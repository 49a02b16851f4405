package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ledgerq/ledgerq/internal/cliopt"
	"github.com/ledgerq/ledgerq/internal/cliutil"
	"github.com/ledgerq/ledgerq/ledgerq"
)

func runHoldings(g cliopt.GlobalOptions, args []string) int {
	fs := newVerbFlags("holdings")
	where := whereFlag(fs)
	limit, offset := pageFlags(fs)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	return withLedger(g, func(ctx context.Context, l *ledgerq.Ledger) error {
		holdings, err := l.Holdings(ctx, ledgerq.ListOptions{Queries: *where, Limit: *limit, Offset: *offset})
		if err != nil {
			return err
		}
		if cliutil.ParseOutputFormat(g.Format) == cliutil.FormatJSON {
			cliutil.PrintJSON(os.Stdout, holdings)
			return nil
		}
		rows := make([][]string, 0, len(holdings))
		for _, h := range holdings {
			price, priced, value := "-", "-", "-"
			if h.Price != nil {
				price = h.Price.String()
				priced = h.PriceDate.Format(time.DateOnly)
				value = h.Value.StringFixed(2)
			}
			rows = append(rows, []string{
				fmt.Sprintf("%s (%s)", h.AccountName, h.Institution),
				h.SecurityKey,
				h.SecurityName,
				h.Units.String(),
				price,
				priced,
				value,
				h.LastTransaction.Format(time.DateOnly),
			})
		}
		cliutil.RenderTable(os.Stdout,
			[]string{"account", "security", "name", "units", "price", "priced on", "value", "last txn"}, rows)
		return nil
	})
}
