package cli

import (
	"fmt"
	"io"
)

func PrintRootHelp(w io.Writer) {
	fmt.Fprintln(w, `ledgerq — query-driven financial records

USAGE
  ledgerq [global flags] <command> [args]

GLOBAL FLAGS
  --backend sqlite|postgres
  --db <file.db>              sqlite database path
  --pg-dsn <dsn>              postgres connection string
  --pg-schema <name>          postgres schema (default: ledgerq)
  --format table|json
  --log-level debug|info|warn|error
  --config <path>             config file (default: ./ledgerq.yaml, ~/.config/ledgerq/)

COMMANDS
  init                        create the database schema
  txn  list|add|get|delete|count|costbasis
  acct list|add|delete
  sec  list|set|delete
  price list|set
  holdings

Filter queries use -w/--where and may repeat; repeated queries are ANDed.
Examples: -w "aapl" -w "date:2024" -w "amt:100..500" -w "not:type:sale"

Settings may also come from LEDGERQ_* environment variables or the config
file; explicit flags win.`)
}
