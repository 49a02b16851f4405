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

const AccountDefaultField = query.FieldAccount

var AccountColumns = planner.ColumnMappings{
	query.FieldAccount: {"name", "institution"},
}

type Account struct {
	ID          int64
	Name        string
	Institution string
}

// ListAccounts returns accounts matching the queries, ordered by id.
func ListAccounts(ctx context.Context, db *sql.DB, adapter storage.Adapter, log *zap.Logger, opts ListOptions) ([]Account, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	b := sqlbuilder.New(adapter.PlaceholderStyle())
	preds, err := planner.FromQueries(opts.Queries, AccountDefaultField, AccountColumns, b, adapter.Dialect())
	if err != nil {
		return nil, err
	}

	stmt := "SELECT id, name, institution FROM accounts"
	if where := planner.And(preds); where != "" {
		stmt += "\nWHERE " + where
	}
	stmt += "\nORDER BY id"
	stmt += "\nLIMIT " + b.Arg(opts.Limit)
	if opts.Offset > 0 {
		stmt += " OFFSET " + b.Arg(opts.Offset)
	}

	logOrNop(log).Debug("listing accounts", zap.String("sql", stmt), zap.Int("args", b.Len()))

	rows, err := db.QueryContext(ctx, stmt, b.Args()...)
	if err != nil {
		return nil, sqlErr("list accounts", err)
	}
	defer rows.Close()

	var out []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Institution); err != nil {
			return nil, sqlErr("scan account", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, sqlErr("read accounts", err)
	}
	return out, nil
}

// CountAccounts counts accounts matching the queries.
func CountAccounts(ctx context.Context, db *sql.DB, adapter storage.Adapter, log *zap.Logger, queries []string) (int64, error) {
	b := sqlbuilder.New(adapter.PlaceholderStyle())
	preds, err := planner.FromQueries(queries, AccountDefaultField, AccountColumns, b, adapter.Dialect())
	if err != nil {
		return 0, err
	}

	stmt := "SELECT COUNT(*) FROM accounts"
	if where := planner.And(preds); where != "" {
		stmt += "\nWHERE " + where
	}

	var count int64
	if err := db.QueryRowContext(ctx, stmt, b.Args()...).Scan(&count); err != nil {
		return 0, sqlErr("count accounts", err)
	}
	return count, nil
}

// GetAccount fetches one account by id.
func GetAccount(ctx context.Context, db *sql.DB, adapter storage.Adapter, id int64) (*Account, error) {
	b := sqlbuilder.New(adapter.PlaceholderStyle())
	var a Account
	err := db.QueryRowContext(ctx,
		"SELECT id, name, institution FROM accounts WHERE id = "+b.Arg(id), b.Args()...).
		Scan(&a.ID, &a.Name, &a.Institution)
	if isNoRows(err) {
		return nil, errors.Newf(errors.CodeNotFound, "account %d not found", id)
	}
	if err != nil {
		return nil, sqlErr("get account", err)
	}
	return &a, nil
}

// AddAccount inserts an account if the (name, institution) pair is new and
// returns the row, existing or created.
func AddAccount(ctx context.Context, db *sql.DB, adapter storage.Adapter, log *zap.Logger, name, institution string) (*Account, bool, error) {
	if name == "" {
		return nil, false, errors.New(errors.CodeInvalidInput, "account name cannot be empty")
	}
	if institution == "" {
		return nil, false, errors.New(errors.CodeInvalidInput, "institution cannot be empty")
	}

	b := sqlbuilder.New(adapter.PlaceholderStyle())
	stmt := `INSERT INTO accounts (name, institution)
VALUES (` + b.Arg(name) + `, ` + b.Arg(institution) + `)
ON CONFLICT (name, institution) DO NOTHING`

	logOrNop(log).Debug("adding account", zap.String("name", name), zap.String("institution", institution))

	res, err := db.ExecContext(ctx, stmt, b.Args()...)
	if err != nil {
		return nil, false, sqlErr("add account", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, sqlErr("add account", err)
	}

	b = sqlbuilder.New(adapter.PlaceholderStyle())
	var a Account
	err = db.QueryRowContext(ctx,
		"SELECT id, name, institution FROM accounts WHERE name = "+b.Arg(name)+" AND institution = "+b.Arg(institution),
		b.Args()...).
		Scan(&a.ID, &a.Name, &a.Institution)
	if err != nil {
		return nil, false, sqlErr("add account", err)
	}
	return &a, n > 0, nil
}

// DeleteAccount removes an account by id. Returns whether a row was
// deleted. Fails if transactions still reference the account.
func DeleteAccount(ctx context.Context, db *sql.DB, adapter storage.Adapter, id int64) (bool, error) {
	b := sqlbuilder.New(adapter.PlaceholderStyle())
	res, err := db.ExecContext(ctx, "DELETE FROM accounts WHERE id = "+b.Arg(id), b.Args()...)
	if err != nil {
		return false, sqlErr("delete account", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, sqlErr("delete account", err)
	}
	return n > 0, nil
}
