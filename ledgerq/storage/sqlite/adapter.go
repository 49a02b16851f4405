package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ledgerq/ledgerq/ledgerq/storage"
	"github.com/ledgerq/ledgerq/ledgerq/storage/sqlbuilder"
)

// Registered driver names. DriverPure is the pure-Go driver and always
// available; DriverCGo is the cgo driver with the same REGEXP function
// installed via a connect hook.
const (
	DriverPure = "sqlite"
	DriverCGo  = "ledgerq_sqlite3"
)

type Adapter struct {
	Path       string
	DriverName string
}

func New(path string) *Adapter {
	return &Adapter{Path: path, DriverName: DriverPure}
}

func NewWithDriver(path, driver string) *Adapter {
	return &Adapter{Path: path, DriverName: driver}
}

func (a *Adapter) Backend() storage.Backend {
	return storage.BackendSQLite
}

func (a *Adapter) PlaceholderStyle() sqlbuilder.PlaceholderStyle {
	return sqlbuilder.PlaceholderQuestion
}

func (a *Adapter) Connect(ctx context.Context) (*sql.DB, error) {
	dsn := a.Path
	if a.DriverName == DriverCGo {
		if !strings.Contains(dsn, "?") {
			dsn = dsn + "?_busy_timeout=5000&_foreign_keys=on"
		} else {
			dsn = dsn + "&_busy_timeout=5000&_foreign_keys=on"
		}
	}
	db, err := sql.Open(a.DriverName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if a.DriverName != DriverCGo {
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON;"); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

func (a *Adapter) Close() error {
	return nil
}

func (a *Adapter) CreateSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, ddlBase); err != nil {
		return fmt.Errorf("create ledger schema: %w", err)
	}
	_, _ = db.ExecContext(ctx, "PRAGMA journal_mode=WAL;")
	_, _ = db.ExecContext(ctx, "PRAGMA synchronous=NORMAL;")
	return nil
}

func (a *Adapter) Dialect() storage.Dialect { return Dialect{} }

// Dialect renders the REGEXP predicates. Case-insensitivity lives in the
// registered function, not in the SQL, so patterns pass through untouched.
type Dialect struct{}

func (Dialect) RegexMatch(column, placeholder string) string {
	return fmt.Sprintf("%s REGEXP %s", column, placeholder)
}

func (Dialect) NotRegexMatch(column, placeholder string) string {
	return fmt.Sprintf("NOT (%s REGEXP %s)", column, placeholder)
}
