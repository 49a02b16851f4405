package main

import (
	"os"

	"github.com/ledgerq/ledgerq/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:]))
}
