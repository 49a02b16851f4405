package ops

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ledgerq/ledgerq/ledgerq/errors"
	"github.com/ledgerq/ledgerq/ledgerq/planner"
	"github.com/ledgerq/ledgerq/ledgerq/query"
	"github.com/ledgerq/ledgerq/ledgerq/storage"
	"github.com/ledgerq/ledgerq/ledgerq/storage/sqlbuilder"
)

const PriceDefaultField = query.FieldSecurity

// PriceColumns maps query fields onto the prices/securities join.
var PriceColumns = planner.ColumnMappings{
	query.FieldDate:     {"p.price_date"},
	query.FieldSecurity: {"securities.key", "securities.name", "securities.type", "securities.category"},
}

// Price is one OHLC quote for a security on a day.
type Price struct {
	SecurityKey string
	Date        time.Time
	Open        decimal.Decimal
	High        decimal.Decimal
	Low         decimal.Decimal
	Close       decimal.Decimal
	Source      string
}

// OHLC expands a shorthand value list into a full quote. One value quotes
// all four fields, two values are open and close with high and low derived
// from them, four values are taken as open, high, low, close.
func OHLC(values []decimal.Decimal) (open, high, low, close decimal.Decimal, err error) {
	switch len(values) {
	case 1:
		v := values[0]
		return v, v, v, v, nil
	case 2:
		open, close = values[0], values[1]
		high, low = open, close
		if close.GreaterThan(high) {
			high = close
		}
		if open.LessThan(low) {
			low = open
		}
		return open, high, low, close, nil
	case 4:
		return values[0], values[1], values[2], values[3], nil
	default:
		return open, high, low, close, errors.Newf(errors.CodeInvalidInput,
			"price takes 1, 2, or 4 values, got %d", len(values))
	}
}

const priceSelect = `SELECT p.security_key, p.price_date, p.open, p.high, p.low, p.close, p.source
FROM prices p
INNER JOIN securities ON p.security_key = securities.key`

// ListPrices returns prices matching the queries. With no date filter only
// the most recent quote per security is returned; with one, every matching
// quote is.
func ListPrices(ctx context.Context, db *sql.DB, adapter storage.Adapter, log *zap.Logger, opts ListOptions) ([]Price, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	// With a date filter the caller wants history; without one, only the
	// latest quote per security is meaningful.
	fields, err := query.FieldsFromQueries(opts.Queries)
	if err != nil {
		return nil, err
	}
	hasDate := fields[query.FieldDate]

	b := sqlbuilder.New(adapter.PlaceholderStyle())
	preds, err := planner.FromQueries(opts.Queries, PriceDefaultField, PriceColumns, b, adapter.Dialect())
	if err != nil {
		return nil, err
	}

	inner := priceSelect
	if where := planner.And(preds); where != "" {
		inner += "\nWHERE " + where
	}

	var stmt string
	if hasDate {
		stmt = inner + "\nORDER BY p.security_key, p.price_date DESC"
	} else {
		stmt = `WITH quotes AS (
` + indentSQL(inner) + `
), ranked AS (
  SELECT quotes.*, ROW_NUMBER() OVER (PARTITION BY security_key ORDER BY price_date DESC) AS rn
  FROM quotes
)
SELECT security_key, price_date, open, high, low, close, source
FROM ranked
WHERE rn = 1
ORDER BY security_key`
	}
	stmt += "\nLIMIT " + b.Arg(opts.Limit)
	if opts.Offset > 0 {
		stmt += " OFFSET " + b.Arg(opts.Offset)
	}

	logOrNop(log).Debug("listing prices", zap.String("sql", stmt), zap.Int("args", b.Len()), zap.Bool("date_filtered", hasDate))

	rows, err := db.QueryContext(ctx, stmt, b.Args()...)
	if err != nil {
		return nil, sqlErr("list prices", err)
	}
	defer rows.Close()

	var out []Price
	for rows.Next() {
		var (
			p                                  Price
			rawDate                            any
			rawOpen, rawHigh, rawLow, rawClose any
		)
		if err := rows.Scan(&p.SecurityKey, &rawDate, &rawOpen, &rawHigh, &rawLow, &rawClose, &p.Source); err != nil {
			return nil, sqlErr("scan price", err)
		}
		if p.Date, err = civilDate(rawDate); err != nil {
			return nil, err
		}
		if p.Open, err = decimalValue(rawOpen); err != nil {
			return nil, err
		}
		if p.High, err = decimalValue(rawHigh); err != nil {
			return nil, err
		}
		if p.Low, err = decimalValue(rawLow); err != nil {
			return nil, err
		}
		if p.Close, err = decimalValue(rawClose); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, sqlErr("read prices", err)
	}
	return out, nil
}

// CountPrices counts quote rows matching the queries.
func CountPrices(ctx context.Context, db *sql.DB, adapter storage.Adapter, log *zap.Logger, queries []string) (int64, error) {
	b := sqlbuilder.New(adapter.PlaceholderStyle())
	preds, err := planner.FromQueries(queries, PriceDefaultField, PriceColumns, b, adapter.Dialect())
	if err != nil {
		return 0, err
	}

	stmt := `SELECT COUNT(*)
FROM prices p
INNER JOIN securities ON p.security_key = securities.key`
	if where := planner.And(preds); where != "" {
		stmt += "\nWHERE " + where
	}

	var count int64
	if err := db.QueryRowContext(ctx, stmt, b.Args()...).Scan(&count); err != nil {
		return 0, sqlErr("count prices", err)
	}
	return count, nil
}

// UpsertPrice records a quote for a security on a day, replacing any
// earlier quote for that day. Reports whether a new row was created.
func UpsertPrice(ctx context.Context, db *sql.DB, adapter storage.Adapter, log *zap.Logger, p Price) (bool, error) {
	if _, err := GetSecurity(ctx, db, adapter, p.SecurityKey); err != nil {
		return false, err
	}

	b := sqlbuilder.New(adapter.PlaceholderStyle())
	var existing int64
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM prices WHERE security_key = "+b.Arg(p.SecurityKey)+" AND price_date = "+b.Arg(p.Date.Format(time.DateOnly)),
		b.Args()...).Scan(&existing)
	if err != nil {
		return false, sqlErr("upsert price", err)
	}

	b = sqlbuilder.New(adapter.PlaceholderStyle())
	args := []string{
		b.Arg(p.SecurityKey),
		b.Arg(p.Date.Format(time.DateOnly)),
		b.Arg(p.Open),
		b.Arg(p.High),
		b.Arg(p.Low),
		b.Arg(p.Close),
		b.Arg(p.Source),
	}
	stmt := `INSERT INTO prices (security_key, price_date, open, high, low, close, source)
VALUES (` + args[0] + `, ` + args[1] + `, ` + args[2] + `, ` + args[3] + `, ` + args[4] + `, ` + args[5] + `, ` + args[6] + `)
ON CONFLICT (security_key, price_date) DO UPDATE SET
  open = excluded.open, high = excluded.high, low = excluded.low,
  close = excluded.close, source = excluded.source`

	logOrNop(log).Debug("upserting price",
		zap.String("security", p.SecurityKey), zap.String("date", p.Date.Format(time.DateOnly)))

	if _, err := db.ExecContext(ctx, stmt, b.Args()...); err != nil {
		return false, sqlErr("upsert price", err)
	}
	return existing == 0, nil
}

func indentSQL(s string) string {
	return "  " + strings.ReplaceAll(s, "\n", "\n  ")
}
