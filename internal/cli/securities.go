package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ledgerq/ledgerq/internal/cliopt"
	"github.com/ledgerq/ledgerq/internal/cliutil"
	"github.com/ledgerq/ledgerq/ledgerq"
	"github.com/ledgerq/ledgerq/ledgerq/ops"
)

func runSec(g cliopt.GlobalOptions, args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: ledgerq sec <list|set|delete>")
		return exitUsage
	}

	switch args[0] {
	case "list":
		return runSecList(g, args[1:])
	case "set":
		return runSecSet(g, args[1:])
	case "delete":
		return runSecDelete(g, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown sec command: %s\n", args[0])
		return exitUsage
	}
}

func runSecList(g cliopt.GlobalOptions, args []string) int {
	fs := newVerbFlags("sec list")
	where := whereFlag(fs)
	limit, offset := pageFlags(fs)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	return withLedger(g, func(ctx context.Context, l *ledgerq.Ledger) error {
		securities, err := l.Securities(ctx, ledgerq.ListOptions{Queries: *where, Limit: *limit, Offset: *offset})
		if err != nil {
			return err
		}
		if cliutil.ParseOutputFormat(g.Format) == cliutil.FormatJSON {
			cliutil.PrintJSON(os.Stdout, securities)
			return nil
		}
		rows := make([][]string, 0, len(securities))
		for _, s := range securities {
			rows = append(rows, []string{s.Key, s.Name, s.Type, s.Category})
		}
		cliutil.RenderTable(os.Stdout, []string{"key", "name", "type", "category"}, rows)
		return nil
	})
}

func runSecSet(g cliopt.GlobalOptions, args []string) int {
	fs := newVerbFlags("sec set")
	key := fs.String("key", "", "security key (required)")
	name := fs.String("name", "", "display name (required)")
	typ := fs.String("type", "", "type: "+strings.Join(ops.SecurityTypes, "|")+" (required)")
	category := fs.String("category", "", "category: "+strings.Join(ops.SecurityCategories, "|")+" (required)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *key == "" || *name == "" || *typ == "" || *category == "" {
		fs.PrintDefaults()
		return exitUsage
	}

	return withLedger(g, func(ctx context.Context, l *ledgerq.Ledger) error {
		created, err := l.SetSecurity(ctx, ops.Security{
			Key: *key, Name: *name, Type: *typ, Category: *category,
		})
		if err != nil {
			return err
		}
		if created {
			fmt.Printf("added security %s\n", *key)
		} else {
			fmt.Printf("updated security %s\n", *key)
		}
		return nil
	})
}

func runSecDelete(g cliopt.GlobalOptions, args []string) int {
	fs := newVerbFlags("sec delete")
	key := fs.String("key", "", "security key (required)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *key == "" {
		fs.PrintDefaults()
		return exitUsage
	}

	return withLedger(g, func(ctx context.Context, l *ledgerq.Ledger) error {
		deleted, err := l.DeleteSecurity(ctx, *key)
		if err != nil {
			return err
		}
		if deleted {
			fmt.Printf("deleted security %s\n", *key)
		} else {
			fmt.Printf("security %s not found\n", *key)
		}
		return nil
	})
}
