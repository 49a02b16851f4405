// Package cli implements the ledgerq command line: global flags, verb
// dispatch, and per-command flag sets.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/ledgerq/ledgerq/internal/cliopt"
	"github.com/ledgerq/ledgerq/internal/cliutil"
	"github.com/ledgerq/ledgerq/ledgerq"
	"github.com/ledgerq/ledgerq/ledgerq/errors"
)

// Exit codes: 0 success, 1 runtime failure, 2 usage or query error.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// Execute runs the CLI and returns an exit code.
func Execute(argv []string) int {
	globalFS := pflag.NewFlagSet("ledgerq", pflag.ContinueOnError)
	globalFS.SetOutput(os.Stderr)
	globalFS.SetInterspersed(false)
	g := cliopt.DefaultGlobalOptions()
	cliopt.BindGlobalFlags(globalFS, &g)

	if err := globalFS.Parse(argv); err != nil {
		if err == pflag.ErrHelp {
			PrintRootHelp(os.Stdout)
			return exitOK
		}
		return exitUsage
	}
	if err := cliopt.Resolve(globalFS, &g); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return exitUsage
	}

	args := globalFS.Args()
	if len(args) == 0 {
		PrintRootHelp(os.Stdout)
		return exitOK
	}

	verb := args[0]
	rest := args[1:]

	switch verb {
	case "--help", "-h", "help":
		PrintRootHelp(os.Stdout)
		return exitOK
	case "init":
		return runInit(g, rest)
	case "txn":
		return runTxn(g, rest)
	case "acct":
		return runAcct(g, rest)
	case "sec":
		return runSec(g, rest)
	case "price":
		return runPrice(g, rest)
	case "holdings":
		return runHoldings(g, rest)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", verb)
		PrintRootHelp(os.Stderr)
		return exitUsage
	}
}

// withLedger opens the configured backend, runs fn, and maps errors to
// exit codes. Query and input mistakes are usage errors; everything else
// is a runtime failure.
func withLedger(g cliopt.GlobalOptions, fn func(ctx context.Context, l *ledgerq.Ledger) error) int {
	ctx := context.Background()

	adapter, err := ledgerq.NewAdapter(ledgerq.OpenOptions{
		Backend:        g.Backend,
		SQLitePath:     g.SQLitePath,
		PostgresDSN:    g.PostgresDSN,
		PostgresSchema: g.PostgresSchema,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}

	log := cliutil.BuildLogger(g.LogLevel)
	defer func() { _ = log.Sync() }()

	l, err := ledgerq.Open(ctx, adapter, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open %s backend: %v\n", g.Backend, err)
		return exitError
	}
	defer l.Close()

	if err := fn(ctx, l); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.IsCode(err, errors.CodeQuerySyntax) || errors.IsCode(err, errors.CodeInvalidInput) {
			return exitUsage
		}
		return exitError
	}
	return exitOK
}

func newVerbFlags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

// whereFlag registers the repeatable filter-query flag.
func whereFlag(fs *pflag.FlagSet) *[]string {
	return fs.StringArrayP("where", "w", nil, "filter query (repeatable; queries are ANDed)")
}

func pageFlags(fs *pflag.FlagSet) (limit, offset *int) {
	limit = fs.Int("limit", ledgerq.DefaultLimit, "max rows")
	offset = fs.Int("offset", 0, "rows to skip")
	return limit, offset
}
