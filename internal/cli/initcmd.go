package cli

import (
	"context"
	"fmt"

	"github.com/ledgerq/ledgerq/internal/cliopt"
	"github.com/ledgerq/ledgerq/ledgerq"
)

func runInit(g cliopt.GlobalOptions, args []string) int {
	fs := newVerbFlags("init")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	return withLedger(g, func(ctx context.Context, l *ledgerq.Ledger) error {
		if err := l.Init(ctx); err != nil {
			return err
		}
		fmt.Println("ledger schema ready")
		return nil
	})
}
