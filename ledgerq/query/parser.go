package query

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerq/ledgerq/ledgerq/errors"
)

// Parser turns the token stream of one query string into filter nodes.
// Like the lexer, it is single-use.
type Parser struct {
	lexer *Lexer
}

func NewParser(l *Lexer) *Parser {
	return &Parser{lexer: l}
}

// Parse lexes and parses a single query string.
func Parse(input string) ([]FilterNode, error) {
	return NewParser(NewLexer(input)).Parse()
}

// Parse dispatches on the first token of the stream. An empty input yields
// an empty filter list; `not:` recurses and negates every resulting
// operator; `amt:` and `date:` select value sub-grammars; the remaining
// field keywords (and keyword-less input) reassemble the rest of the stream
// verbatim into a regex match.
func (p *Parser) Parse() ([]FilterNode, error) {
	first := p.lexer.Next()

	switch t := first.(type) {
	case End:
		return nil, nil

	case Keyword:
		switch t {
		case KeywordNot:
			sub, err := p.Parse()
			if err != nil {
				return nil, err
			}
			return negateFilters(sub), nil

		case KeywordAmount:
			node, err := parseAmount(p.remainingTokens())
			if err != nil {
				return nil, err
			}
			return []FilterNode{node}, nil

		case KeywordDate:
			node, err := parseDate(p.remainingTokens())
			if err != nil {
				return nil, err
			}
			return []FilterNode{node}, nil

		case KeywordAccount, KeywordDescription, KeywordSecurity, KeywordType:
			value, err := tokensToString(p.remainingTokens())
			if err != nil {
				return nil, err
			}
			return []FilterNode{{
				Field:    fieldForKeyword(t),
				Operator: OpRegexMatch,
				Value:    String(value),
			}}, nil
		}
	}

	// No field selector: the whole stream, first token included, is one
	// literal matched against the default field.
	toks := append([]Token{first}, p.remainingTokens()...)
	value, err := tokensToString(toks)
	if err != nil {
		return nil, err
	}
	return []FilterNode{{
		Field:    FieldDefault,
		Operator: OpRegexMatch,
		Value:    String(value),
	}}, nil
}

// remainingTokens drains the lexer up to but not including End.
func (p *Parser) remainingTokens() []Token {
	var toks []Token
	for {
		tok := p.lexer.Next()
		if _, done := tok.(End); done {
			return toks
		}
		toks = append(toks, tok)
	}
}

func fieldForKeyword(k Keyword) Field {
	switch k {
	case KeywordAccount:
		return FieldAccount
	case KeywordDescription:
		return FieldDescription
	case KeywordSecurity:
		return FieldSecurity
	case KeywordType:
		return FieldType
	default:
		return FieldDefault
	}
}

func negateFilters(filters []FilterNode) []FilterNode {
	negated := make([]FilterNode, 0, len(filters))
	for _, f := range filters {
		negated = append(negated, FilterNode{
			Field:    f.Field,
			Operator: f.Operator.Negate(),
			Value:    f.Value,
		})
	}
	return negated
}

// comparisonOp maps a comparison-prefix token to its operator.
func comparisonOp(tok Token) (Operator, bool) {
	switch tok.(type) {
	case Gt:
		return OpGreaterThan, true
	case GtEq:
		return OpGreaterThanEq, true
	case Lt:
		return OpLessThan, true
	case LtEq:
		return OpLessThanEq, true
	default:
		return 0, false
	}
}

func rangeIndex(toks []Token) int {
	for i, tok := range toks {
		if _, ok := tok.(RangeSeparator); ok {
			return i
		}
	}
	return -1
}

func parseAmount(toks []Token) (FilterNode, error) {
	if len(toks) > 0 {
		if op, ok := comparisonOp(toks[0]); ok {
			num, err := tokensToNumber(toks[1:])
			if err != nil {
				return FilterNode{}, err
			}
			return FilterNode{Field: FieldAmount, Operator: op, Value: Number{num}}, nil
		}
	}

	if idx := rangeIndex(toks); idx >= 0 {
		startToks, endToks := toks[:idx], toks[idx+1:]
		if len(startToks) == 0 && len(endToks) == 0 {
			return FilterNode{}, errors.Syntax("amount range requires at least one bound")
		}

		var start, end *decimal.Decimal
		if len(startToks) > 0 {
			v, err := tokensToNumber(startToks)
			if err != nil {
				return FilterNode{}, err
			}
			start = &v
		}
		if len(endToks) > 0 {
			v, err := tokensToNumber(endToks)
			if err != nil {
				return FilterNode{}, err
			}
			end = &v
		}

		switch {
		case start == nil:
			return FilterNode{Field: FieldAmount, Operator: OpLessThanEq, Value: Number{*end}}, nil
		case end == nil:
			return FilterNode{Field: FieldAmount, Operator: OpGreaterThanEq, Value: Number{*start}}, nil
		case start.GreaterThan(*end):
			return FilterNode{}, errors.Syntaxf(
				"invalid amount range: start amount %s is greater than end amount %s", start, end)
		case start.Equal(*end):
			return FilterNode{Field: FieldAmount, Operator: OpEquals, Value: Number{*start}}, nil
		default:
			return FilterNode{Field: FieldAmount, Operator: OpBetween, Value: Numbers{*start, *end}}, nil
		}
	}

	num, err := tokensToNumber(toks)
	if err != nil {
		return FilterNode{}, err
	}
	return FilterNode{Field: FieldAmount, Operator: OpEquals, Value: Number{num}}, nil
}

func parseDate(toks []Token) (FilterNode, error) {
	if len(toks) > 0 {
		if op, ok := comparisonOp(toks[0]); ok {
			// A partial-precision operand resolves to whichever end of its
			// implied span keeps the comparison natural: > and <= use the
			// period end, >= and < the period start.
			asStart := op == OpGreaterThanEq || op == OpLessThan
			day, err := tokensToDate(toks[1:], asStart)
			if err != nil {
				return FilterNode{}, err
			}
			return FilterNode{Field: FieldDate, Operator: op, Value: Date{day}}, nil
		}
	}

	var start, end *time.Time
	if idx := rangeIndex(toks); idx >= 0 {
		startToks, endToks := toks[:idx], toks[idx+1:]
		if len(startToks) == 0 && len(endToks) == 0 {
			return FilterNode{}, errors.Syntax("date range requires at least one bound")
		}
		if len(startToks) > 0 {
			v, err := tokensToDate(startToks, true)
			if err != nil {
				return FilterNode{}, err
			}
			start = &v
		}
		if len(endToks) > 0 {
			v, err := tokensToDate(endToks, false)
			if err != nil {
				return FilterNode{}, err
			}
			end = &v
		}
	} else {
		// A standalone date expands to its implied span. With partial
		// precision both bounds differ, producing BETWEEN; only a full
		// Y-M-D day resolves both bounds to the same value.
		s, err := tokensToDate(toks, true)
		if err != nil {
			return FilterNode{}, err
		}
		e, err := tokensToDate(toks, false)
		if err != nil {
			return FilterNode{}, err
		}
		start, end = &s, &e
	}

	switch {
	case start == nil:
		return FilterNode{Field: FieldDate, Operator: OpLessThanEq, Value: Date{*end}}, nil
	case end == nil:
		return FilterNode{Field: FieldDate, Operator: OpGreaterThanEq, Value: Date{*start}}, nil
	case start.After(*end):
		return FilterNode{}, errors.Syntaxf(
			"invalid date range: start date %s is after end date %s",
			start.Format(time.DateOnly), end.Format(time.DateOnly))
	case start.Equal(*end):
		return FilterNode{Field: FieldDate, Operator: OpEquals, Value: Date{*start}}, nil
	default:
		return FilterNode{Field: FieldDate, Operator: OpBetween, Value: Dates{*start, *end}}, nil
	}
}

// tokensToString reassembles tokens into their source text. A keyword
// contributes only its word; the colon consumed with it is not restored.
func tokensToString(toks []Token) (string, error) {
	var sb strings.Builder
	for _, tok := range toks {
		switch t := tok.(type) {
		case Colon:
			sb.WriteByte(':')
		case Dash:
			sb.WriteByte('-')
		case Dot:
			sb.WriteByte('.')
		case RangeSeparator:
			sb.WriteString("..")
		case Gt:
			sb.WriteByte('>')
		case GtEq:
			sb.WriteString(">=")
		case Lt:
			sb.WriteByte('<')
		case LtEq:
			sb.WriteString("<=")
		case Keyword:
			sb.WriteString(t.Text())
		case Literal:
			sb.WriteString(t.Value)
		case Int:
			sb.WriteString(t.Value)
		case Unknown:
			sb.WriteRune(t.Char)
		default:
			return "", errors.Newf(errors.CodeOperation,
				"unexpected token %T during string conversion", tok)
		}
	}
	return sb.String(), nil
}

// tokensToNumber decodes the four accepted shapes of a signed decimal:
// Int, Dash Int, Int Dot Int, Dash Int Dot Int.
func tokensToNumber(toks []Token) (decimal.Decimal, error) {
	var text string

	switch len(toks) {
	case 1:
		if i, ok := toks[0].(Int); ok {
			text = i.Value
		}
	case 2:
		_, dash := toks[0].(Dash)
		i, ok := toks[1].(Int)
		if dash && ok {
			text = "-" + i.Value
		}
	case 3:
		whole, ok1 := toks[0].(Int)
		_, dot := toks[1].(Dot)
		frac, ok2 := toks[2].(Int)
		if ok1 && dot && ok2 {
			text = whole.Value + "." + frac.Value
		}
	case 4:
		_, dash := toks[0].(Dash)
		whole, ok1 := toks[1].(Int)
		_, dot := toks[2].(Dot)
		frac, ok2 := toks[3].(Int)
		if dash && ok1 && dot && ok2 {
			text = "-" + whole.Value + "." + frac.Value
		}
	}

	if text == "" {
		return decimal.Decimal{}, errors.Syntax("invalid token sequence for number conversion")
	}
	num, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Decimal{}, errors.Wrap(errors.CodeQuerySyntax, "invalid number "+text, err)
	}
	return num, nil
}

// tokensToDate decodes Y, Y-M, or Y-M-D. Partial precision resolves to the
// first day of the period when start is true and to its last day otherwise,
// with leap years handled by calendar arithmetic.
func tokensToDate(toks []Token, start bool) (time.Time, error) {
	parts, err := dateParts(toks)
	if err != nil {
		return time.Time{}, err
	}

	switch len(parts) {
	case 3:
		return makeDate(parts[0], parts[1], parts[2])
	case 2:
		year, month := parts[0], parts[1]
		if month < 1 || month > 12 {
			return time.Time{}, errors.Syntaxf("invalid month %d", month)
		}
		if start {
			return makeDate(year, month, 1)
		}
		// Day zero of the next month is the last day of this one.
		return time.Date(year, time.Month(month+1), 0, 0, 0, 0, 0, time.UTC), nil
	case 1:
		if start {
			return makeDate(parts[0], 1, 1)
		}
		return makeDate(parts[0], 12, 31)
	default:
		return time.Time{}, errors.Syntax("invalid token sequence for date conversion")
	}
}

// dateParts extracts the dash-separated integer components of a date token
// sequence, rejecting any other shape.
func dateParts(toks []Token) ([]int, error) {
	var parts []int
	for i, tok := range toks {
		if i%2 == 0 {
			n, ok := tok.(Int)
			if !ok {
				return nil, errors.Syntax("invalid token sequence for date conversion")
			}
			v, err := strconv.Atoi(n.Value)
			if err != nil {
				return nil, errors.Wrap(errors.CodeQuerySyntax, "invalid date component "+n.Value, err)
			}
			parts = append(parts, v)
		} else if _, ok := tok.(Dash); !ok {
			return nil, errors.Syntax("invalid token sequence for date conversion")
		}
	}
	if len(parts) == 0 || len(toks)%2 == 0 {
		return nil, errors.Syntax("invalid token sequence for date conversion")
	}
	return parts, nil
}

func makeDate(year, month, day int) (time.Time, error) {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes out-of-range components (Feb 30 becomes Mar 2);
	// a round trip that changed any component was not a real calendar day.
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, errors.Syntaxf("invalid date %04d-%02d-%02d", year, month, day)
	}
	return t, nil
}
