package ops

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ledgerq/ledgerq/ledgerq/errors"
	"github.com/ledgerq/ledgerq/ledgerq/planner"
	"github.com/ledgerq/ledgerq/ledgerq/query"
	"github.com/ledgerq/ledgerq/ledgerq/storage"
	"github.com/ledgerq/ledgerq/ledgerq/storage/sqlbuilder"
)

const (
	TransactionPurchase = "purchase"
	TransactionSale     = "sale"
)

// TransactionDefaultField is where keyword-less query text lands for the
// transactions entity.
const TransactionDefaultField = query.FieldSecurity

// TransactionColumns maps query fields onto the joined transactions view.
var TransactionColumns = planner.ColumnMappings{
	query.FieldAccount:     {"accounts.name", "accounts.institution"},
	query.FieldAmount:      {"t.amount"},
	query.FieldDate:        {"t.transaction_date"},
	query.FieldDescription: {"t.description"},
	query.FieldSecurity:    {"securities.key", "securities.name", "securities.type", "securities.category"},
	query.FieldType:        {"t.type"},
}

// Transaction is one ledger row joined with its security and account.
type Transaction struct {
	ID           int64
	Date         time.Time
	Type         string
	Description  string
	Amount       decimal.Decimal
	Units        decimal.Decimal
	AccountID    int64
	SecurityKey  string
	SecurityName string
	AccountName  string
	Institution  string
}

// TransactionWrite is the insert payload.
type TransactionWrite struct {
	Date        time.Time
	Type        string
	Description string
	Amount      decimal.Decimal
	Units       decimal.Decimal
	AccountID   int64
	SecurityKey string
	Metadata    string // JSON object; empty means {}
}

const transactionSelect = `
SELECT t.id, t.transaction_date, t.type, t.description, t.amount, t.units,
       t.account_id, t.security_key, securities.name, accounts.name, accounts.institution
FROM transactions t
INNER JOIN securities ON t.security_key = securities.key
INNER JOIN accounts ON t.account_id = accounts.id`

// ListTransactions returns transactions matching the queries, newest
// first.
func ListTransactions(ctx context.Context, db *sql.DB, adapter storage.Adapter, log *zap.Logger, opts ListOptions) ([]Transaction, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	b := sqlbuilder.New(adapter.PlaceholderStyle())
	preds, err := planner.FromQueries(opts.Queries, TransactionDefaultField, TransactionColumns, b, adapter.Dialect())
	if err != nil {
		return nil, err
	}

	stmt := transactionSelect
	if where := planner.And(preds); where != "" {
		stmt += "\nWHERE " + where
	}
	stmt += "\nORDER BY t.transaction_date DESC, t.created_at DESC"
	stmt += "\nLIMIT " + b.Arg(opts.Limit)
	if opts.Offset > 0 {
		stmt += " OFFSET " + b.Arg(opts.Offset)
	}

	logOrNop(log).Debug("listing transactions", zap.String("sql", stmt), zap.Int("args", b.Len()))

	rows, err := db.QueryContext(ctx, stmt, b.Args()...)
	if err != nil {
		return nil, sqlErr("list transactions", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// ListTransactionsAscending returns matching transactions in
// chronological order, as needed by cost-basis accounting.
func ListTransactionsAscending(ctx context.Context, db *sql.DB, adapter storage.Adapter, log *zap.Logger, queries []string) ([]Transaction, error) {
	b := sqlbuilder.New(adapter.PlaceholderStyle())
	preds, err := planner.FromQueries(queries, TransactionDefaultField, TransactionColumns, b, adapter.Dialect())
	if err != nil {
		return nil, err
	}

	stmt := transactionSelect
	if where := planner.And(preds); where != "" {
		stmt += "\nWHERE " + where
	}
	stmt += "\nORDER BY t.transaction_date ASC, t.created_at ASC"

	logOrNop(log).Debug("listing transactions ascending", zap.String("sql", stmt), zap.Int("args", b.Len()))

	rows, err := db.QueryContext(ctx, stmt, b.Args()...)
	if err != nil {
		return nil, sqlErr("list transactions", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

func scanTransactions(rows *sql.Rows) ([]Transaction, error) {
	var out []Transaction
	for rows.Next() {
		var (
			txn              Transaction
			rawDate          any
			rawAmt, rawUnits any
		)
		if err := rows.Scan(&txn.ID, &rawDate, &txn.Type, &txn.Description, &rawAmt, &rawUnits,
			&txn.AccountID, &txn.SecurityKey, &txn.SecurityName, &txn.AccountName, &txn.Institution); err != nil {
			return nil, sqlErr("scan transaction", err)
		}
		var err error
		if txn.Date, err = civilDate(rawDate); err != nil {
			return nil, err
		}
		if txn.Amount, err = decimalValue(rawAmt); err != nil {
			return nil, err
		}
		if txn.Units, err = decimalValue(rawUnits); err != nil {
			return nil, err
		}
		out = append(out, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, sqlErr("read transactions", err)
	}
	return out, nil
}

// CountTransactions counts rows matching the queries.
func CountTransactions(ctx context.Context, db *sql.DB, adapter storage.Adapter, log *zap.Logger, queries []string) (int64, error) {
	b := sqlbuilder.New(adapter.PlaceholderStyle())
	preds, err := planner.FromQueries(queries, TransactionDefaultField, TransactionColumns, b, adapter.Dialect())
	if err != nil {
		return 0, err
	}

	stmt := `
SELECT COUNT(*)
FROM transactions t
INNER JOIN securities ON t.security_key = securities.key
INNER JOIN accounts ON t.account_id = accounts.id`
	if where := planner.And(preds); where != "" {
		stmt += "\nWHERE " + where
	}

	logOrNop(log).Debug("counting transactions", zap.String("sql", stmt), zap.Int("args", b.Len()))

	var count int64
	if err := db.QueryRowContext(ctx, stmt, b.Args()...).Scan(&count); err != nil {
		return 0, sqlErr("count transactions", err)
	}
	return count, nil
}

// InsertTransaction validates the referenced account and security exist,
// then inserts and returns the new row id.
func InsertTransaction(ctx context.Context, db *sql.DB, adapter storage.Adapter, log *zap.Logger, w TransactionWrite) (int64, error) {
	if w.Type != TransactionPurchase && w.Type != TransactionSale {
		return 0, errors.Newf(errors.CodeInvalidInput, "unknown transaction type %q", w.Type)
	}

	if _, err := GetAccount(ctx, db, adapter, w.AccountID); err != nil {
		return 0, err
	}
	if _, err := GetSecurity(ctx, db, adapter, w.SecurityKey); err != nil {
		return 0, err
	}

	metadata := w.Metadata
	if metadata == "" {
		metadata = "{}"
	}

	b := sqlbuilder.New(adapter.PlaceholderStyle())
	args := []string{
		b.Arg(w.Date.Format(time.DateOnly)),
		b.Arg(w.Type),
		b.Arg(w.Description),
		b.Arg(w.Amount),
		b.Arg(w.Units),
		b.Arg(w.AccountID),
		b.Arg(w.SecurityKey),
		b.Arg(metadata),
	}
	stmt := `INSERT INTO transactions
(transaction_date, type, description, amount, units, account_id, security_key, metadata)
VALUES (` + args[0] + `, ` + args[1] + `, ` + args[2] + `, ` + args[3] + `, ` + args[4] + `, ` + args[5] + `, ` + args[6] + `, ` + args[7] + `)
RETURNING id`

	logOrNop(log).Debug("inserting transaction", zap.String("security", w.SecurityKey), zap.Int64("account", w.AccountID))

	var id int64
	if err := db.QueryRowContext(ctx, stmt, b.Args()...).Scan(&id); err != nil {
		return 0, sqlErr("insert transaction", err)
	}
	return id, nil
}

// GetTransaction fetches one transaction by id.
func GetTransaction(ctx context.Context, db *sql.DB, adapter storage.Adapter, id int64) (*Transaction, error) {
	b := sqlbuilder.New(adapter.PlaceholderStyle())
	stmt := transactionSelect + "\nWHERE t.id = " + b.Arg(id)

	rows, err := db.QueryContext(ctx, stmt, b.Args()...)
	if err != nil {
		return nil, sqlErr("get transaction", err)
	}
	defer rows.Close()

	txns, err := scanTransactions(rows)
	if err != nil {
		return nil, err
	}
	if len(txns) == 0 {
		return nil, errors.Newf(errors.CodeNotFound, "transaction %d not found", id)
	}
	return &txns[0], nil
}

// DeleteTransaction removes one transaction by id. Returns whether a row
// was deleted.
func DeleteTransaction(ctx context.Context, db *sql.DB, adapter storage.Adapter, id int64) (bool, error) {
	b := sqlbuilder.New(adapter.PlaceholderStyle())
	res, err := db.ExecContext(ctx, "DELETE FROM transactions WHERE id = "+b.Arg(id), b.Args()...)
	if err != nil {
		return false, sqlErr("delete transaction", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, sqlErr("delete transaction", err)
	}
	return n > 0, nil
}

func isNoRows(err error) bool {
	return stderrors.Is(err, sql.ErrNoRows)
}
