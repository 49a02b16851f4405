package planner

import (
	"reflect"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ledgerq/ledgerq/ledgerq/errors"
	"github.com/ledgerq/ledgerq/ledgerq/query"
	"github.com/ledgerq/ledgerq/ledgerq/storage/sqlbuilder"
)

// sqliteDialect and pgDialect mirror the storage adapters without
// importing the driver packages into this test.
type sqliteDialect struct{}

func (sqliteDialect) RegexMatch(col, ph string) string    { return col + " REGEXP " + ph }
func (sqliteDialect) NotRegexMatch(col, ph string) string { return "NOT (" + col + " REGEXP " + ph + ")" }

type pgDialect struct{}

func (pgDialect) RegexMatch(col, ph string) string    { return col + " ~* " + ph }
func (pgDialect) NotRegexMatch(col, ph string) string { return col + " !~* " + ph }

var testMappings = ColumnMappings{
	query.FieldAmount:   {"t.amount"},
	query.FieldDate:     {"t.transaction_date"},
	query.FieldType:     {"t.type"},
	query.FieldSecurity: {"securities.key", "securities.name"},
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCompileOperators(t *testing.T) {
	tests := []struct {
		name     string
		filter   query.FilterNode
		wantSQL  string
		wantArgs []any
	}{
		{
			"equals",
			query.FilterNode{Field: query.FieldAmount, Operator: query.OpEquals, Value: query.Number{Decimal: dec("100")}},
			"t.amount = ?",
			[]any{dec("100")},
		},
		{
			"greater_than",
			query.FilterNode{Field: query.FieldAmount, Operator: query.OpGreaterThan, Value: query.Number{Decimal: dec("10.5")}},
			"t.amount > ?",
			[]any{dec("10.5")},
		},
		{
			"between",
			query.FilterNode{Field: query.FieldAmount, Operator: query.OpBetween, Value: query.Numbers{dec("1"), dec("2")}},
			"t.amount BETWEEN ? AND ?",
			[]any{dec("1"), dec("2")},
		},
		{
			"not_between_dates",
			query.FilterNode{Field: query.FieldDate, Operator: query.OpNotBetween,
				Value: query.Dates{query.NewDate(2024, 1, 1).Time, query.NewDate(2024, 12, 31).Time}},
			"t.transaction_date NOT BETWEEN ? AND ?",
			[]any{"2024-01-01", "2024-12-31"},
		},
		{
			"in",
			query.FilterNode{Field: query.FieldAmount, Operator: query.OpIn, Value: query.Numbers{dec("1"), dec("2"), dec("3")}},
			"t.amount IN (?, ?, ?)",
			[]any{dec("1"), dec("2"), dec("3")},
		},
		{
			"not_in_strings",
			query.FilterNode{Field: query.FieldType, Operator: query.OpNotIn, Value: query.Strings{"sale", "purchase"}},
			"t.type NOT IN (?, ?)",
			[]any{"sale", "purchase"},
		},
		{
			"regex",
			query.FilterNode{Field: query.FieldType, Operator: query.OpRegexMatch, Value: query.String("sale")},
			"t.type REGEXP ?",
			[]any{"sale"},
		},
		{
			"not_regex",
			query.FilterNode{Field: query.FieldType, Operator: query.OpNotRegexMatch, Value: query.String("sale")},
			"NOT (t.type REGEXP ?)",
			[]any{"sale"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := sqlbuilder.New(sqlbuilder.PlaceholderQuestion)
			preds, err := Compile([]query.FilterNode{tt.filter}, testMappings, b, sqliteDialect{})
			if err != nil {
				t.Fatal(err)
			}
			if len(preds) != 1 {
				t.Fatalf("got %d predicates, want 1", len(preds))
			}
			if preds[0].SQL != tt.wantSQL {
				t.Errorf("SQL = %q, want %q", preds[0].SQL, tt.wantSQL)
			}
			if !argsEqual(b.Args(), tt.wantArgs) {
				t.Errorf("args = %v, want %v", b.Args(), tt.wantArgs)
			}
		})
	}
}

func argsEqual(got, want []any) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		gd, gok := got[i].(decimal.Decimal)
		wd, wok := want[i].(decimal.Decimal)
		if gok && wok {
			if !gd.Equal(wd) {
				return false
			}
			continue
		}
		if !reflect.DeepEqual(got[i], want[i]) {
			return false
		}
	}
	return true
}

func TestCompileMultiColumnFieldORs(t *testing.T) {
	b := sqlbuilder.New(sqlbuilder.PlaceholderDollar)
	filter := query.FilterNode{Field: query.FieldSecurity, Operator: query.OpRegexMatch, Value: query.String("apple")}
	preds, err := Compile([]query.FilterNode{filter}, testMappings, b, pgDialect{})
	if err != nil {
		t.Fatal(err)
	}
	want := "(securities.key ~* $1 OR securities.name ~* $2)"
	if preds[0].SQL != want {
		t.Errorf("SQL = %q, want %q", preds[0].SQL, want)
	}
	if b.Len() != 2 {
		t.Errorf("args = %d, want 2", b.Len())
	}
}

func TestCompileDollarPlaceholdersNumberSequentially(t *testing.T) {
	b := sqlbuilder.New(sqlbuilder.PlaceholderDollar)
	filters := []query.FilterNode{
		{Field: query.FieldAmount, Operator: query.OpBetween, Value: query.Numbers{dec("1"), dec("2")}},
		{Field: query.FieldType, Operator: query.OpRegexMatch, Value: query.String("sale")},
	}
	preds, err := Compile(filters, testMappings, b, pgDialect{})
	if err != nil {
		t.Fatal(err)
	}
	if preds[0].SQL != "t.amount BETWEEN $1 AND $2" {
		t.Errorf("first = %q", preds[0].SQL)
	}
	if preds[1].SQL != "t.type ~* $3" {
		t.Errorf("second = %q", preds[1].SQL)
	}
}

func TestCompileUnmappedField(t *testing.T) {
	b := sqlbuilder.New(sqlbuilder.PlaceholderQuestion)
	filter := query.FilterNode{Field: query.FieldAccount, Operator: query.OpRegexMatch, Value: query.String("x")}
	_, err := Compile([]query.FilterNode{filter}, testMappings, b, sqliteDialect{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.IsCode(err, errors.CodeQuerySyntax) {
		t.Errorf("code = %v, want query_syntax", err)
	}
	if got := err.Error(); !strings.Contains(got, "not mapped") {
		t.Errorf("error %q should mention not mapped", got)
	}
}

func TestCompileWrongArityIsOperationError(t *testing.T) {
	b := sqlbuilder.New(sqlbuilder.PlaceholderQuestion)
	tests := []query.FilterNode{
		{Field: query.FieldAmount, Operator: query.OpBetween, Value: query.Numbers{dec("1")}},
		{Field: query.FieldAmount, Operator: query.OpIn, Value: query.Number{Decimal: dec("1")}},
		{Field: query.FieldType, Operator: query.OpRegexMatch, Value: query.Strings{"a"}},
	}
	for _, f := range tests {
		if _, err := Compile([]query.FilterNode{f}, testMappings, b, sqliteDialect{}); !errors.IsCode(err, errors.CodeOperation) {
			t.Errorf("filter %+v: err = %v, want operation", f, err)
		}
	}
}

func TestFromQueriesCrossStringMerge(t *testing.T) {
	b := sqlbuilder.New(sqlbuilder.PlaceholderQuestion)
	preds, err := FromQueries([]string{"amt:100", "amt:200"}, query.FieldSecurity, testMappings, b, sqliteDialect{})
	if err != nil {
		t.Fatal(err)
	}
	if len(preds) != 1 {
		t.Fatalf("got %d predicates, want 1 (merged IN)", len(preds))
	}
	if preds[0].SQL != "t.amount IN (?, ?)" {
		t.Errorf("SQL = %q", preds[0].SQL)
	}
}

func TestFromQueriesSyntaxErrorCarriesQuery(t *testing.T) {
	b := sqlbuilder.New(sqlbuilder.PlaceholderQuestion)
	_, err := FromQueries([]string{"amt:200..100"}, query.FieldSecurity, testMappings, b, sqliteDialect{})
	if !errors.IsCode(err, errors.CodeQuerySyntax) {
		t.Fatalf("err = %v, want query_syntax", err)
	}
	if !strings.Contains(err.Error(), "amt:200..100") {
		t.Errorf("error %q should name the offending query", err.Error())
	}
}

func TestAnd(t *testing.T) {
	if got := And(nil); got != "" {
		t.Errorf("And(nil) = %q", got)
	}
	preds := []Predicate{{SQL: "a = ?"}, {SQL: "(b = ? OR c = ?)"}}
	if got := And(preds); got != "a = ? AND (b = ? OR c = ?)" {
		t.Errorf("And = %q", got)
	}
}

func TestFilterFields(t *testing.T) {
	filters := []query.FilterNode{
		{Field: query.FieldAmount, Operator: query.OpEquals, Value: query.Number{Decimal: dec("1")}},
		{Field: query.FieldSecurity, Operator: query.OpRegexMatch, Value: query.String("x")},
	}
	got := FilterFields(filters, map[query.Field]bool{query.FieldSecurity: true})
	if len(got) != 1 || got[0].Field != query.FieldSecurity {
		t.Errorf("FilterFields = %+v", got)
	}
}
