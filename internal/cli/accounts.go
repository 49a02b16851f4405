package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/ledgerq/ledgerq/internal/cliopt"
	"github.com/ledgerq/ledgerq/internal/cliutil"
	"github.com/ledgerq/ledgerq/ledgerq"
)

func runAcct(g cliopt.GlobalOptions, args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: ledgerq acct <list|add|delete>")
		return exitUsage
	}

	switch args[0] {
	case "list":
		return runAcctList(g, args[1:])
	case "add":
		return runAcctAdd(g, args[1:])
	case "delete":
		return runAcctDelete(g, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown acct command: %s\n", args[0])
		return exitUsage
	}
}

func runAcctList(g cliopt.GlobalOptions, args []string) int {
	fs := newVerbFlags("acct list")
	where := whereFlag(fs)
	limit, offset := pageFlags(fs)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	return withLedger(g, func(ctx context.Context, l *ledgerq.Ledger) error {
		accounts, err := l.Accounts(ctx, ledgerq.ListOptions{Queries: *where, Limit: *limit, Offset: *offset})
		if err != nil {
			return err
		}
		if cliutil.ParseOutputFormat(g.Format) == cliutil.FormatJSON {
			cliutil.PrintJSON(os.Stdout, accounts)
			return nil
		}
		rows := make([][]string, 0, len(accounts))
		for _, a := range accounts {
			rows = append(rows, []string{fmt.Sprintf("%d", a.ID), a.Name, a.Institution})
		}
		cliutil.RenderTable(os.Stdout, []string{"id", "name", "institution"}, rows)
		return nil
	})
}

func runAcctAdd(g cliopt.GlobalOptions, args []string) int {
	fs := newVerbFlags("acct add")
	name := fs.String("name", "", "account name (required)")
	institution := fs.String("institution", "", "institution (required)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *name == "" || *institution == "" {
		fs.PrintDefaults()
		return exitUsage
	}

	return withLedger(g, func(ctx context.Context, l *ledgerq.Ledger) error {
		account, created, err := l.AddAccount(ctx, *name, *institution)
		if err != nil {
			return err
		}
		if created {
			fmt.Printf("added account %d\n", account.ID)
		} else {
			fmt.Printf("account %d already exists\n", account.ID)
		}
		return nil
	})
}

func runAcctDelete(g cliopt.GlobalOptions, args []string) int {
	fs := newVerbFlags("acct delete")
	id := fs.Int64("id", 0, "account id (required)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *id == 0 {
		fs.PrintDefaults()
		return exitUsage
	}

	return withLedger(g, func(ctx context.Context, l *ledgerq.Ledger) error {
		deleted, err := l.DeleteAccount(ctx, *id)
		if err != nil {
			return err
		}
		if deleted {
			fmt.Printf("deleted account %d\n", *id)
		} else {
			fmt.Printf("account %d not found\n", *id)
		}
		return nil
	})
}
