package ops

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/ledgerq/ledgerq/ledgerq/errors"
	"github.com/ledgerq/ledgerq/ledgerq/planner"
	"github.com/ledgerq/ledgerq/ledgerq/query"
	"github.com/ledgerq/ledgerq/ledgerq/storage"
	"github.com/ledgerq/ledgerq/ledgerq/storage/sqlbuilder"
)

// Security classification enums.
var (
	SecurityTypes      = []string{"stock", "bond", "etf", "mutual_fund", "other"}
	SecurityCategories = []string{"equity", "debt", "commodity", "other"}
)

func ValidSecurityType(t string) bool {
	for _, v := range SecurityTypes {
		if v == t {
			return true
		}
	}
	return false
}

func ValidSecurityCategory(c string) bool {
	for _, v := range SecurityCategories {
		if v == c {
			return true
		}
	}
	return false
}

const SecurityDefaultField = query.FieldSecurity

// SecurityColumns: the securities table is queried standalone, so only the
// identity and classification fields are filterable.
var SecurityColumns = planner.ColumnMappings{
	query.FieldSecurity: {"key", "name"},
	query.FieldType:     {"type", "category"},
}

type Security struct {
	Key      string
	Name     string
	Type     string
	Category string
}

// ListSecurities returns securities matching the queries, ordered by key.
func ListSecurities(ctx context.Context, db *sql.DB, adapter storage.Adapter, log *zap.Logger, opts ListOptions) ([]Security, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	b := sqlbuilder.New(adapter.PlaceholderStyle())
	preds, err := planner.FromQueries(opts.Queries, SecurityDefaultField, SecurityColumns, b, adapter.Dialect())
	if err != nil {
		return nil, err
	}

	stmt := "SELECT key, name, type, category FROM securities"
	if where := planner.And(preds); where != "" {
		stmt += "\nWHERE " + where
	}
	stmt += "\nORDER BY key"
	stmt += "\nLIMIT " + b.Arg(opts.Limit)
	if opts.Offset > 0 {
		stmt += " OFFSET " + b.Arg(opts.Offset)
	}

	logOrNop(log).Debug("listing securities", zap.String("sql", stmt), zap.Int("args", b.Len()))

	rows, err := db.QueryContext(ctx, stmt, b.Args()...)
	if err != nil {
		return nil, sqlErr("list securities", err)
	}
	defer rows.Close()

	var out []Security
	for rows.Next() {
		var s Security
		if err := rows.Scan(&s.Key, &s.Name, &s.Type, &s.Category); err != nil {
			return nil, sqlErr("scan security", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, sqlErr("read securities", err)
	}
	return out, nil
}

// CountSecurities counts securities matching the queries.
func CountSecurities(ctx context.Context, db *sql.DB, adapter storage.Adapter, log *zap.Logger, queries []string) (int64, error) {
	b := sqlbuilder.New(adapter.PlaceholderStyle())
	preds, err := planner.FromQueries(queries, SecurityDefaultField, SecurityColumns, b, adapter.Dialect())
	if err != nil {
		return 0, err
	}

	stmt := "SELECT COUNT(*) FROM securities"
	if where := planner.And(preds); where != "" {
		stmt += "\nWHERE " + where
	}

	logOrNop(log).Debug("counting securities", zap.String("sql", stmt), zap.Int("args", b.Len()))

	var count int64
	if err := db.QueryRowContext(ctx, stmt, b.Args()...).Scan(&count); err != nil {
		return 0, sqlErr("count securities", err)
	}
	return count, nil
}

// GetSecurity fetches one security by key.
func GetSecurity(ctx context.Context, db *sql.DB, adapter storage.Adapter, key string) (*Security, error) {
	b := sqlbuilder.New(adapter.PlaceholderStyle())
	var s Security
	err := db.QueryRowContext(ctx,
		"SELECT key, name, type, category FROM securities WHERE key = "+b.Arg(key), b.Args()...).
		Scan(&s.Key, &s.Name, &s.Type, &s.Category)
	if isNoRows(err) {
		return nil, errors.Newf(errors.CodeNotFound, "security %q not found", key)
	}
	if err != nil {
		return nil, sqlErr("get security", err)
	}
	return &s, nil
}

// UpsertSecurity inserts or updates a security by key. Reports whether a
// new row was created.
func UpsertSecurity(ctx context.Context, db *sql.DB, adapter storage.Adapter, log *zap.Logger, s Security) (created bool, err error) {
	if !ValidSecurityType(s.Type) {
		return false, errors.Newf(errors.CodeInvalidInput, "unknown security type %q", s.Type)
	}
	if !ValidSecurityCategory(s.Category) {
		return false, errors.Newf(errors.CodeInvalidInput, "unknown security category %q", s.Category)
	}

	existing, err := GetSecurity(ctx, db, adapter, s.Key)
	if err != nil && !errors.IsCode(err, errors.CodeNotFound) {
		return false, err
	}

	b := sqlbuilder.New(adapter.PlaceholderStyle())
	stmt := `INSERT INTO securities (key, name, type, category)
VALUES (` + b.Arg(s.Key) + `, ` + b.Arg(s.Name) + `, ` + b.Arg(s.Type) + `, ` + b.Arg(s.Category) + `)
ON CONFLICT (key) DO UPDATE SET name = excluded.name, type = excluded.type, category = excluded.category`

	logOrNop(log).Debug("upserting security", zap.String("key", s.Key))

	if _, err := db.ExecContext(ctx, stmt, b.Args()...); err != nil {
		return false, sqlErr("upsert security", err)
	}
	return existing == nil, nil
}

// DeleteSecurity removes a security by key. Returns whether a row was
// deleted.
func DeleteSecurity(ctx context.Context, db *sql.DB, adapter storage.Adapter, key string) (bool, error) {
	b := sqlbuilder.New(adapter.PlaceholderStyle())
	res, err := db.ExecContext(ctx, "DELETE FROM securities WHERE key = "+b.Arg(key), b.Args()...)
	if err != nil {
		return false, sqlErr("delete security", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, sqlErr("delete security", err)
	}
	return n > 0, nil
}
