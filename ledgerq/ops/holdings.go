package ops

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ledgerq/ledgerq/ledgerq/planner"
	"github.com/ledgerq/ledgerq/ledgerq/query"
	"github.com/ledgerq/ledgerq/ledgerq/storage"
	"github.com/ledgerq/ledgerq/ledgerq/storage/sqlbuilder"
)

// Positions below this many units are treated as closed out. Guards
// against fractional-unit residue from partial sales.
const holdingUnitsEpsilon = "0.001"

// Holding is one open position: net units per account and security, valued
// at the most recent known price. Price fields are nil when no quote
// exists for the security.
type Holding struct {
	AccountID       int64
	AccountName     string
	Institution     string
	SecurityKey     string
	SecurityName    string
	Units           decimal.Decimal
	LastTransaction time.Time
	Price           *decimal.Decimal
	PriceDate       *time.Time
	Value           *decimal.Decimal
}

// holdingPriceFields are the only query fields the price lookup inside the
// holdings report understands. Account, amount, description, and type
// filters constrain which transactions count toward a position, not which
// quotes value it.
var holdingPriceFields = map[query.Field]bool{
	query.FieldSecurity: true,
	query.FieldDate:     true,
}

// ListHoldings computes open positions from matching transactions and
// values each with the latest price on or before any date filter. A date
// filter thus renders the portfolio as of that time rather than merely
// restricting rows.
func ListHoldings(ctx context.Context, db *sql.DB, adapter storage.Adapter, log *zap.Logger, opts ListOptions) ([]Holding, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	filters, err := query.ParseQueries(opts.Queries)
	if err != nil {
		return nil, err
	}
	prepared := query.PrepareFilters(filters, TransactionDefaultField)

	b := sqlbuilder.New(adapter.PlaceholderStyle())
	txnPreds, err := planner.Compile(prepared, TransactionColumns, b, adapter.Dialect())
	if err != nil {
		return nil, err
	}

	stmt := `WITH holding_units AS (
  SELECT t.account_id, t.security_key, SUM(t.units) AS units, MAX(t.transaction_date) AS last_transaction
  FROM transactions t
  INNER JOIN securities ON t.security_key = securities.key
  INNER JOIN accounts ON t.account_id = accounts.id`
	if where := planner.And(txnPreds); where != "" {
		stmt += "\n  WHERE " + where
	}
	stmt += `
  GROUP BY t.account_id, t.security_key
  HAVING SUM(t.units) >= ` + holdingUnitsEpsilon + `
), ranked_prices AS (
  SELECT p.security_key, p.price_date, p.close,
         ROW_NUMBER() OVER (PARTITION BY p.security_key ORDER BY p.price_date DESC) AS rn
  FROM prices p
  INNER JOIN securities ON p.security_key = securities.key`

	pricePreds, err := planner.Compile(
		planner.FilterFields(prepared, holdingPriceFields), PriceColumns, b, adapter.Dialect())
	if err != nil {
		return nil, err
	}
	if where := planner.And(pricePreds); where != "" {
		stmt += "\n  WHERE " + where
	}
	stmt += `
), latest_prices AS (
  SELECT security_key, price_date, close FROM ranked_prices WHERE rn = 1
)
SELECT h.account_id, accounts.name, accounts.institution,
       h.security_key, securities.name,
       h.units, h.last_transaction,
       lp.close, lp.price_date
FROM holding_units h
INNER JOIN accounts ON h.account_id = accounts.id
INNER JOIN securities ON h.security_key = securities.key
LEFT JOIN latest_prices lp ON h.security_key = lp.security_key
ORDER BY h.account_id, h.security_key`
	stmt += "\nLIMIT " + b.Arg(opts.Limit)
	if opts.Offset > 0 {
		stmt += " OFFSET " + b.Arg(opts.Offset)
	}

	logOrNop(log).Debug("listing holdings", zap.String("sql", stmt), zap.Int("args", b.Len()))

	rows, err := db.QueryContext(ctx, stmt, b.Args()...)
	if err != nil {
		return nil, sqlErr("list holdings", err)
	}
	defer rows.Close()

	var out []Holding
	for rows.Next() {
		var (
			h                      Holding
			rawUnits, rawLast      any
			rawPrice, rawPriceDate any
		)
		if err := rows.Scan(&h.AccountID, &h.AccountName, &h.Institution,
			&h.SecurityKey, &h.SecurityName,
			&rawUnits, &rawLast, &rawPrice, &rawPriceDate); err != nil {
			return nil, sqlErr("scan holding", err)
		}
		if h.Units, err = decimalValue(rawUnits); err != nil {
			return nil, err
		}
		if h.LastTransaction, err = civilDate(rawLast); err != nil {
			return nil, err
		}
		if rawPrice != nil {
			price, err := decimalValue(rawPrice)
			if err != nil {
				return nil, err
			}
			priceDate, err := civilDate(rawPriceDate)
			if err != nil {
				return nil, err
			}
			value := h.Units.Mul(price).Round(2)
			h.Price, h.PriceDate, h.Value = &price, &priceDate, &value
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, sqlErr("read holdings", err)
	}
	return out, nil
}
