package query

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerq/ledgerq/ledgerq/errors"
)

func num(s string) Number {
	return Number{decimal.RequireFromString(s)}
}

func nums(ss ...string) Numbers {
	out := make(Numbers, 0, len(ss))
	for _, s := range ss {
		out = append(out, decimal.RequireFromString(s))
	}
	return out
}

func day(y int, m time.Month, d int) Date {
	return NewDate(y, m, d)
}

func days(ds ...Date) Dates {
	out := make(Dates, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Time)
	}
	return out
}

// valuesEqual compares filter values by semantic equality: decimals with
// Equal rather than representation, dates by instant.
func valuesEqual(a, b Value) bool {
	switch av := a.(type) {
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Number:
		bv, ok := b.(Number)
		return ok && av.Equal(bv.Decimal)
	case Date:
		bv, ok := b.(Date)
		return ok && av.Equal(bv.Time)
	case Strings:
		bv, ok := b.(Strings)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
		return true
	case Numbers:
		bv, ok := b.(Numbers)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !av[i].Equal(bv[i]) {
				return false
			}
		}
		return true
	case Dates:
		bv, ok := b.(Dates)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !av[i].Equal(bv[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func filtersEqual(a, b []FilterNode) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Field != b[i].Field || a[i].Operator != b[i].Operator || !valuesEqual(a[i].Value, b[i].Value) {
			return false
		}
	}
	return true
}

func mustParse(t *testing.T, input string) []FilterNode {
	t.Helper()
	filters, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse(%q): %v", input, err)
	}
	return filters
}

func TestParseAmountExpressions(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  FilterNode
	}{
		{"exact_integer", "amt:100", FilterNode{FieldAmount, OpEquals, num("100")}},
		{"exact_decimal", "amt:100.50", FilterNode{FieldAmount, OpEquals, num("100.50")}},
		{"exact_zero", "amt:0", FilterNode{FieldAmount, OpEquals, num("0")}},
		{"negative_integer", "amt:-100", FilterNode{FieldAmount, OpEquals, num("-100")}},
		{"negative_decimal", "amt:-0.50", FilterNode{FieldAmount, OpEquals, num("-0.50")}},
		{"greater_than", "amt:>100", FilterNode{FieldAmount, OpGreaterThan, num("100")}},
		{"greater_equal", "amt:>=100", FilterNode{FieldAmount, OpGreaterThanEq, num("100")}},
		{"less_than", "amt:<100", FilterNode{FieldAmount, OpLessThan, num("100")}},
		{"less_equal", "amt:<=100", FilterNode{FieldAmount, OpLessThanEq, num("100")}},
		{"closed_range", "amt:100..200", FilterNode{FieldAmount, OpBetween, nums("100", "200")}},
		{"range_from_zero", "amt:0..100", FilterNode{FieldAmount, OpBetween, nums("0", "100")}},
		{"open_range_start", "amt:100..", FilterNode{FieldAmount, OpGreaterThanEq, num("100")}},
		{"open_range_end", "amt:..100", FilterNode{FieldAmount, OpLessThanEq, num("100")}},
		{"degenerate_range", "amt:100..100", FilterNode{FieldAmount, OpEquals, num("100")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustParse(t, tt.query)
			if !filtersEqual(got, []FilterNode{tt.want}) {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.query, got, tt.want)
			}
		})
	}
}

func TestParseDateExpressions(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  FilterNode
	}{
		{"full_date", "date:2024-01-15", FilterNode{FieldDate, OpEquals, day(2024, 1, 15)}},
		{"end_of_year", "date:2024-12-31", FilterNode{FieldDate, OpEquals, day(2024, 12, 31)}},
		{"year_only", "date:2024", FilterNode{FieldDate, OpBetween, days(day(2024, 1, 1), day(2024, 12, 31))}},
		{"year_month", "date:2024-01", FilterNode{FieldDate, OpBetween, days(day(2024, 1, 1), day(2024, 1, 31))}},
		{"year_month_leap", "date:2024-02", FilterNode{FieldDate, OpBetween, days(day(2024, 2, 1), day(2024, 2, 29))}},
		{"year_month_non_leap", "date:2023-02", FilterNode{FieldDate, OpBetween, days(day(2023, 2, 1), day(2023, 2, 28))}},
		{"december_rollover", "date:2024-12", FilterNode{FieldDate, OpBetween, days(day(2024, 12, 1), day(2024, 12, 31))}},
		{"explicit_range", "date:2024-01-01..2024-12-31", FilterNode{FieldDate, OpBetween, days(day(2024, 1, 1), day(2024, 12, 31))}},
		{"open_range_start", "date:2024-01..", FilterNode{FieldDate, OpGreaterThanEq, day(2024, 1, 1)}},
		{"open_range_end", "date:..2024-12-31", FilterNode{FieldDate, OpLessThanEq, day(2024, 12, 31)}},
		{"partial_bounds_collapse", "date:2024-01-31..2024-01", FilterNode{FieldDate, OpEquals, day(2024, 1, 31)}},
		{"gt_uses_period_end", "date:>2024", FilterNode{FieldDate, OpGreaterThan, day(2024, 12, 31)}},
		{"gte_uses_period_start", "date:>=2024-02", FilterNode{FieldDate, OpGreaterThanEq, day(2024, 2, 1)}},
		{"lt_uses_period_start", "date:<2024", FilterNode{FieldDate, OpLessThan, day(2024, 1, 1)}},
		{"lte_uses_period_end", "date:<=2024-02", FilterNode{FieldDate, OpLessThanEq, day(2024, 2, 29)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustParse(t, tt.query)
			if !filtersEqual(got, []FilterNode{tt.want}) {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.query, got, tt.want)
			}
		})
	}
}

func TestParseFieldKeywords(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  FilterNode
	}{
		{"account", "acct:savings", FilterNode{FieldAccount, OpRegexMatch, String("savings")}},
		{"description", "desc:payment", FilterNode{FieldDescription, OpRegexMatch, String("payment")}},
		{"type", "type:credit", FilterNode{FieldType, OpRegexMatch, String("credit")}},
		{"security", "sec:AAPL", FilterNode{FieldSecurity, OpRegexMatch, String("AAPL")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustParse(t, tt.query)
			if !filtersEqual(got, []FilterNode{tt.want}) {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.query, got, tt.want)
			}
		})
	}
}

func TestParseNegation(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  FilterNode
	}{
		{"not_text", "not:cancelled", FilterNode{FieldDefault, OpNotRegexMatch, String("cancelled")}},
		{"not_amount_equals", "not:amt:100", FilterNode{FieldAmount, OpNotEquals, num("100")}},
		{"not_amount_gt", "not:amt:>100", FilterNode{FieldAmount, OpLessThanEq, num("100")}},
		{"not_amount_gte", "not:amt:>=100", FilterNode{FieldAmount, OpLessThan, num("100")}},
		{"not_amount_lt", "not:amt:<100", FilterNode{FieldAmount, OpGreaterThanEq, num("100")}},
		{"not_amount_lte", "not:amt:<=100", FilterNode{FieldAmount, OpGreaterThan, num("100")}},
		{"not_account", "not:acct:checking", FilterNode{FieldAccount, OpNotRegexMatch, String("checking")}},
		{"not_date_full", "not:date:2024-01-01", FilterNode{FieldDate, OpNotEquals, day(2024, 1, 1)}},
		{"not_date_year", "not:date:2024", FilterNode{FieldDate, OpNotBetween, days(day(2024, 1, 1), day(2024, 12, 31))}},
		{"double_negation", "not:not:amt:>100", FilterNode{FieldAmount, OpGreaterThan, num("100")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustParse(t, tt.query)
			if !filtersEqual(got, []FilterNode{tt.want}) {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.query, got, tt.want)
			}
		})
	}
}

func TestParseTextQueries(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"single_word", "grocery", "grocery"},
		{"multiple_words", "grocery store payment", "grocery store payment"},
		{"colon", ":", ":"},
		{"dash", "-", "-"},
		{"dot", ".", "."},
		{"range_sep", "..", ".."},
		{"gte", ">=", ">="},
		{"mixed", "test:value", "test:value"},
		{"with_digits", "test123", "test123"},
		{"unknown_char", "@test", "@test"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustParse(t, tt.query)
			want := FilterNode{FieldDefault, OpRegexMatch, String(tt.want)}
			if !filtersEqual(got, []FilterNode{want}) {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.query, got, want)
			}
		})
	}
}

func TestParseEmptyQuery(t *testing.T) {
	got := mustParse(t, "")
	if len(got) != 0 {
		t.Errorf("Parse(%q) = %+v, want empty", "", got)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"amount_invalid", "amt:abc"},
		{"date_invalid", "date:invalid"},
		{"amount_comparison_missing_operand", "amt:>"},
		{"date_comparison_missing_operand", "date:>"},
		{"amount_empty_range", "amt:.."},
		{"date_empty_range", "date:.."},
		{"amount_inverted_range", "amt:200..100"},
		{"date_inverted_range", "date:2024-12-31..2024-01-01"},
		{"date_invalid_day", "date:2024-02-30"},
		{"date_invalid_month", "date:2024-13"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.query)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want error", tt.query)
			}
			if !errors.IsCode(err, errors.CodeQuerySyntax) {
				t.Errorf("Parse(%q) error = %v, want query_syntax", tt.query, err)
			}
		})
	}
}

func TestTokensToStringQuirks(t *testing.T) {
	got, err := tokensToString([]Token{Literal{Value: "test"}, Colon{}, Int{Value: "123"}, Unknown{Char: '@'}})
	if err != nil {
		t.Fatal(err)
	}
	if got != "test:123@" {
		t.Errorf("tokensToString = %q, want %q", got, "test:123@")
	}

	// A keyword contributes its word without the consumed colon.
	got, err = tokensToString([]Token{KeywordAmount})
	if err != nil {
		t.Fatal(err)
	}
	if got != "amt" {
		t.Errorf("tokensToString = %q, want %q", got, "amt")
	}

	if _, err := tokensToString([]Token{End{}}); !errors.IsCode(err, errors.CodeOperation) {
		t.Errorf("tokensToString(End) error = %v, want operation", err)
	}
}

func TestTokensToNumberRejectsJunk(t *testing.T) {
	if _, err := tokensToNumber([]Token{Literal{Value: "abc"}}); !errors.IsCode(err, errors.CodeQuerySyntax) {
		t.Errorf("tokensToNumber error = %v, want query_syntax", err)
	}
}
