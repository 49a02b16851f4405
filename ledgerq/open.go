package ledgerq

import (
	"github.com/ledgerq/ledgerq/ledgerq/errors"
	"github.com/ledgerq/ledgerq/ledgerq/storage"
	"github.com/ledgerq/ledgerq/ledgerq/storage/postgres"
	"github.com/ledgerq/ledgerq/ledgerq/storage/sqlite"
)

// OpenOptions selects and configures a storage backend.
type OpenOptions struct {
	Backend        string // "sqlite" (default) or "postgres"
	SQLitePath     string
	PostgresDSN    string
	PostgresSchema string
}

// NewAdapter builds the storage adapter the options describe.
func NewAdapter(opts OpenOptions) (storage.Adapter, error) {
	switch opts.Backend {
	case "", "sqlite":
		if opts.SQLitePath == "" {
			return nil, errors.New(errors.CodeInvalidInput, "sqlite backend requires a database path")
		}
		return sqlite.New(opts.SQLitePath), nil
	case "postgres", "pg":
		if opts.PostgresDSN == "" {
			return nil, errors.New(errors.CodeInvalidInput, "postgres backend requires a DSN")
		}
		schema := opts.PostgresSchema
		if schema == "" {
			schema = "ledgerq"
		}
		return postgres.New(opts.PostgresDSN, schema), nil
	default:
		return nil, errors.Newf(errors.CodeInvalidInput, "unknown backend %q", opts.Backend)
	}
}
