// Package planner compiles prepared filter nodes into SQL predicates over
// caller-supplied column mappings. It is backend-agnostic: placeholder
// style and regex rendering come from the storage adapter.
package planner

import (
	"fmt"
	"strings"
	"time"

	"github.com/ledgerq/ledgerq/ledgerq/errors"
	"github.com/ledgerq/ledgerq/ledgerq/query"
	"github.com/ledgerq/ledgerq/ledgerq/storage"
)

// ColumnMappings maps a logical field to the physical columns it tests.
// Each repository builds its own per entity.
type ColumnMappings map[query.Field][]string

// Predicate is one compiled boolean expression. Its placeholders are bound
// to the builder used during compilation, so it is only meaningful within
// that statement. Callers AND predicates together.
type Predicate struct {
	SQL   string
	Field query.Field
}

// FromQueries is the end-to-end batch entry point: parse every query
// string, run one optimization pass over the combined filter list (so
// equality filters from separate strings merge), and compile the result.
func FromQueries(queries []string, defaultField query.Field, mappings ColumnMappings, b storage.Builder, d storage.Dialect) ([]Predicate, error) {
	filters, err := query.ParseQueries(queries)
	if err != nil {
		return nil, err
	}
	return Compile(query.PrepareFilters(filters, defaultField), mappings, b, d)
}

// Compile turns prepared filters into predicates, one per filter. A field
// with multiple mapped columns compiles to the OR of its per-column
// fragments. A field with no mapping is a query-syntax error: the field
// keyword was user-supplied even though the mapping is caller
// configuration.
func Compile(filters []query.FilterNode, mappings ColumnMappings, b storage.Builder, d storage.Dialect) ([]Predicate, error) {
	preds := make([]Predicate, 0, len(filters))
	for _, f := range filters {
		columns := mappings[f.Field]
		if len(columns) == 0 {
			return nil, errors.Syntaxf("field %q not mapped to any column", f.Field)
		}

		frags := make([]string, 0, len(columns))
		for _, col := range columns {
			frag, err := compileColumn(f, col, b, d)
			if err != nil {
				return nil, err
			}
			frags = append(frags, frag)
		}

		sql := frags[0]
		if len(frags) > 1 {
			sql = "(" + strings.Join(frags, " OR ") + ")"
		}
		preds = append(preds, Predicate{SQL: sql, Field: f.Field})
	}
	return preds, nil
}

// FilterFields keeps only filters whose field is in the include set. Used
// by repositories whose secondary statements support a subset of fields,
// such as the price lookup inside the holdings report.
func FilterFields(filters []query.FilterNode, include map[query.Field]bool) []query.FilterNode {
	var out []query.FilterNode
	for _, f := range filters {
		if include[f.Field] {
			out = append(out, f)
		}
	}
	return out
}

// And joins predicates into one WHERE body. Empty input yields "".
func And(preds []Predicate) string {
	if len(preds) == 0 {
		return ""
	}
	parts := make([]string, 0, len(preds))
	for _, p := range preds {
		parts = append(parts, p.SQL)
	}
	return strings.Join(parts, " AND ")
}

func compileColumn(f query.FilterNode, col string, b storage.Builder, d storage.Dialect) (string, error) {
	switch f.Operator {
	case query.OpRegexMatch, query.OpNotRegexMatch:
		pattern, ok := f.Value.(query.String)
		if !ok {
			return "", arityError(f)
		}
		ph := b.Arg(string(pattern))
		if f.Operator == query.OpRegexMatch {
			return d.RegexMatch(col, ph), nil
		}
		return d.NotRegexMatch(col, ph), nil

	case query.OpEquals, query.OpNotEquals, query.OpGreaterThan, query.OpGreaterThanEq,
		query.OpLessThan, query.OpLessThanEq:
		arg, ok := scalarArg(f.Value)
		if !ok {
			return "", arityError(f)
		}
		return fmt.Sprintf("%s %s %s", col, comparisonSQL(f.Operator), b.Arg(arg)), nil

	case query.OpBetween, query.OpNotBetween:
		vals, ok := listArgs(f.Value)
		if !ok || len(vals) != 2 {
			return "", errors.Newf(errors.CodeOperation,
				"operator %s requires exactly two values, got %T", f.Operator, f.Value)
		}
		kw := "BETWEEN"
		if f.Operator == query.OpNotBetween {
			kw = "NOT BETWEEN"
		}
		return fmt.Sprintf("%s %s %s AND %s", col, kw, b.Arg(vals[0]), b.Arg(vals[1])), nil

	case query.OpIn, query.OpNotIn:
		vals, ok := listArgs(f.Value)
		if !ok || len(vals) == 0 {
			return "", errors.Newf(errors.CodeOperation,
				"operator %s requires a non-empty value list, got %T", f.Operator, f.Value)
		}
		kw := "IN"
		if f.Operator == query.OpNotIn {
			kw = "NOT IN"
		}
		return fmt.Sprintf("%s %s %s", col, kw, b.InList(vals)), nil

	default:
		return "", errors.Newf(errors.CodeOperation, "unsupported operator %s", f.Operator)
	}
}

func comparisonSQL(op query.Operator) string {
	switch op {
	case query.OpEquals:
		return "="
	case query.OpNotEquals:
		return "!="
	case query.OpGreaterThan:
		return ">"
	case query.OpGreaterThanEq:
		return ">="
	case query.OpLessThan:
		return "<"
	default:
		return "<="
	}
}

func arityError(f query.FilterNode) *errors.Error {
	return errors.Newf(errors.CodeOperation,
		"operator %s cannot take value %T", f.Operator, f.Value)
}

// scalarArg converts a scalar filter value to a driver argument. Dates are
// bound as ISO day strings, which both backends compare correctly against
// date columns.
func scalarArg(v query.Value) (any, bool) {
	switch t := v.(type) {
	case query.String:
		return string(t), true
	case query.Number:
		return t.Decimal, true
	case query.Date:
		return t.Format(time.DateOnly), true
	default:
		return nil, false
	}
}

func listArgs(v query.Value) ([]any, bool) {
	switch t := v.(type) {
	case query.Strings:
		out := make([]any, 0, len(t))
		for _, s := range t {
			out = append(out, s)
		}
		return out, true
	case query.Numbers:
		out := make([]any, 0, len(t))
		for _, n := range t {
			out = append(out, n)
		}
		return out, true
	case query.Dates:
		out := make([]any, 0, len(t))
		for _, d := range t {
			out = append(out, d.Format(time.DateOnly))
		}
		return out, true
	default:
		return nil, false
	}
}
