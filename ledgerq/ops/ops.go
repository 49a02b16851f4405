// Package ops implements the ledger repositories: parameterized SQL over
// the shared schema, filtered by compiled query predicates.
package ops

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ledgerq/ledgerq/ledgerq/errors"
)

// ListOptions bound a listing operation. Queries are raw filter strings in
// the query language; they are compiled against the entity's column
// mappings.
type ListOptions struct {
	Queries []string
	Limit   int
	Offset  int
}

func (o ListOptions) validate() error {
	if o.Limit < 1 {
		return errors.Newf(errors.CodeInvalidInput, "limit must be positive, got %d", o.Limit)
	}
	if o.Offset < 0 {
		return errors.Newf(errors.CodeInvalidInput, "offset cannot be negative, got %d", o.Offset)
	}
	return nil
}

func logOrNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}

// civilDate normalizes a scanned date column to a UTC civil day. SQLite
// hands back the stored text; the postgres driver hands back time.Time.
func civilDate(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	case string:
		return time.Parse(time.DateOnly, t)
	case []byte:
		return time.Parse(time.DateOnly, string(t))
	default:
		return time.Time{}, errors.Newf(errors.CodeOperation, "cannot read %T as date", v)
	}
}

// decimalValue normalizes a scanned numeric column to an exact decimal.
func decimalValue(v any) (decimal.Decimal, error) {
	switch t := v.(type) {
	case string:
		return decimal.NewFromString(t)
	case []byte:
		return decimal.NewFromString(string(t))
	case int64:
		return decimal.NewFromInt(t), nil
	case float64:
		return decimal.NewFromFloat(t), nil
	case nil:
		return decimal.Decimal{}, nil
	default:
		return decimal.Decimal{}, errors.Newf(errors.CodeOperation, "cannot read %T as decimal", v)
	}
}

func sqlErr(op string, err error) error {
	return errors.Wrap(errors.CodeSQL, fmt.Sprintf("%s failed", op), err)
}
