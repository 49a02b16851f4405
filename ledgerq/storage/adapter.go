package storage

import (
	"context"
	"database/sql"

	"github.com/ledgerq/ledgerq/ledgerq/storage/sqlbuilder"
)

type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
)

// Adapter abstracts database-specific operations.
type Adapter interface {
	Backend() Backend
	PlaceholderStyle() sqlbuilder.PlaceholderStyle

	Connect(ctx context.Context) (*sql.DB, error)
	Close() error

	CreateSchema(ctx context.Context, db *sql.DB) error

	Dialect() Dialect
}

// Dialect renders backend-specific predicate fragments. Both forms must be
// case-insensitive; how that is achieved is the backend's business.
type Dialect interface {
	RegexMatch(column, placeholder string) string
	NotRegexMatch(column, placeholder string) string
}

// Builder is the placeholder/argument accumulator shared by one statement's
// compilation.
type Builder interface {
	Arg(v any) string
	InList(vals []any) string
	Args() []any
	Len() int
}
