package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerq/ledgerq/internal/cliopt"
	"github.com/ledgerq/ledgerq/internal/cliutil"
	"github.com/ledgerq/ledgerq/ledgerq"
	"github.com/ledgerq/ledgerq/ledgerq/ops"
)

func runTxn(g cliopt.GlobalOptions, args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: ledgerq txn <list|add|get|delete|count|costbasis>")
		return exitUsage
	}

	switch args[0] {
	case "list":
		return runTxnList(g, args[1:])
	case "add":
		return runTxnAdd(g, args[1:])
	case "get":
		return runTxnGet(g, args[1:])
	case "delete":
		return runTxnDelete(g, args[1:])
	case "count":
		return runTxnCount(g, args[1:])
	case "costbasis":
		return runTxnCostBasis(g, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown txn command: %s\n", args[0])
		return exitUsage
	}
}

func runTxnList(g cliopt.GlobalOptions, args []string) int {
	fs := newVerbFlags("txn list")
	where := whereFlag(fs)
	limit, offset := pageFlags(fs)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	return withLedger(g, func(ctx context.Context, l *ledgerq.Ledger) error {
		txns, err := l.Transactions(ctx, ledgerq.ListOptions{Queries: *where, Limit: *limit, Offset: *offset})
		if err != nil {
			return err
		}
		printTransactions(g, txns)
		return nil
	})
}

func printTransactions(g cliopt.GlobalOptions, txns []ops.Transaction) {
	if cliutil.ParseOutputFormat(g.Format) == cliutil.FormatJSON {
		cliutil.PrintJSON(os.Stdout, txns)
		return
	}
	rows := make([][]string, 0, len(txns))
	for _, t := range txns {
		rows = append(rows, []string{
			fmt.Sprintf("%d", t.ID),
			t.Date.Format(time.DateOnly),
			t.Type,
			t.SecurityKey,
			t.Description,
			t.Amount.StringFixed(2),
			t.Units.String(),
			fmt.Sprintf("%s (%s)", t.AccountName, t.Institution),
		})
	}
	cliutil.RenderTable(os.Stdout,
		[]string{"id", "date", "type", "security", "description", "amount", "units", "account"}, rows)
}

func runTxnAdd(g cliopt.GlobalOptions, args []string) int {
	fs := newVerbFlags("txn add")
	dateStr := fs.String("date", "", "transaction date YYYY-MM-DD (required)")
	typ := fs.String("type", "", "purchase or sale (required)")
	desc := fs.String("desc", "", "description")
	amountStr := fs.String("amount", "", "amount (required)")
	unitsStr := fs.String("units", "", "units, negative for sales (required)")
	accountID := fs.Int64("account", 0, "account id (required)")
	security := fs.String("security", "", "security key (required)")
	metadata := fs.String("metadata", "", "metadata JSON object")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	if *dateStr == "" || *typ == "" || *amountStr == "" || *unitsStr == "" || *accountID == 0 || *security == "" {
		fs.PrintDefaults()
		return exitUsage
	}

	day, err := time.Parse(time.DateOnly, *dateStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid date %q: expected YYYY-MM-DD\n", *dateStr)
		return exitUsage
	}
	amount, err := decimal.NewFromString(*amountStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid amount %q\n", *amountStr)
		return exitUsage
	}
	units, err := decimal.NewFromString(*unitsStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid units %q\n", *unitsStr)
		return exitUsage
	}

	return withLedger(g, func(ctx context.Context, l *ledgerq.Ledger) error {
		id, err := l.AddTransaction(ctx, ops.TransactionWrite{
			Date:        day,
			Type:        *typ,
			Description: *desc,
			Amount:      amount,
			Units:       units,
			AccountID:   *accountID,
			SecurityKey: *security,
			Metadata:    *metadata,
		})
		if err != nil {
			return err
		}
		fmt.Printf("added transaction %d\n", id)
		return nil
	})
}

func runTxnGet(g cliopt.GlobalOptions, args []string) int {
	fs := newVerbFlags("txn get")
	id := fs.Int64("id", 0, "transaction id (required)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *id == 0 {
		fs.PrintDefaults()
		return exitUsage
	}

	return withLedger(g, func(ctx context.Context, l *ledgerq.Ledger) error {
		txn, err := l.Transaction(ctx, *id)
		if err != nil {
			return err
		}
		printTransactions(g, []ops.Transaction{*txn})
		return nil
	})
}

func runTxnDelete(g cliopt.GlobalOptions, args []string) int {
	fs := newVerbFlags("txn delete")
	id := fs.Int64("id", 0, "transaction id (required)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *id == 0 {
		fs.PrintDefaults()
		return exitUsage
	}

	return withLedger(g, func(ctx context.Context, l *ledgerq.Ledger) error {
		deleted, err := l.DeleteTransaction(ctx, *id)
		if err != nil {
			return err
		}
		if deleted {
			fmt.Printf("deleted transaction %d\n", *id)
		} else {
			fmt.Printf("transaction %d not found\n", *id)
		}
		return nil
	})
}

func runTxnCount(g cliopt.GlobalOptions, args []string) int {
	fs := newVerbFlags("txn count")
	where := whereFlag(fs)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	return withLedger(g, func(ctx context.Context, l *ledgerq.Ledger) error {
		n, err := l.CountTransactions(ctx, *where)
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil
	})
}

func runTxnCostBasis(g cliopt.GlobalOptions, args []string) int {
	fs := newVerbFlags("txn costbasis")
	where := whereFlag(fs)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	return withLedger(g, func(ctx context.Context, l *ledgerq.Ledger) error {
		txns, err := l.CostBasis(ctx, *where)
		if err != nil {
			return err
		}
		if cliutil.ParseOutputFormat(g.Format) == cliutil.FormatJSON {
			cliutil.PrintJSON(os.Stdout, txns)
			return nil
		}
		rows := make([][]string, 0, len(txns))
		for _, t := range txns {
			cost := ""
			if t.Cost != nil {
				cost = t.Cost.StringFixed(2)
			}
			rows = append(rows, []string{
				fmt.Sprintf("%d", t.ID),
				t.Date.Format(time.DateOnly),
				t.Type,
				t.SecurityKey,
				t.Amount.StringFixed(2),
				t.Units.String(),
				cost,
			})
		}
		cliutil.RenderTable(os.Stdout,
			[]string{"id", "date", "type", "security", "amount", "units", "cost basis"}, rows)
		return nil
	})
}
