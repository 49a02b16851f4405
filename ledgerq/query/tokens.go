package query

// Token is the closed set of lexical tokens. Tokens are produced one at a
// time by the lexer and consumed immediately by the parser.
type Token interface {
	isToken()
}

// End marks input exhaustion. The lexer keeps returning it once reached.
type End struct{}

// Colon is a bare ':' that was not consumed as part of a keyword.
type Colon struct{}

// Dash is '-'.
type Dash struct{}

// Dot is a single '.'.
type Dot struct{}

// RangeSeparator is '..'.
type RangeSeparator struct{}

// Gt, GtEq, Lt, LtEq are the comparison prefixes.
type Gt struct{}
type GtEq struct{}
type Lt struct{}
type LtEq struct{}

// Keyword is a reserved field-selector word. It is only emitted when the
// word is immediately followed by ':' (the colon is consumed with it).
type Keyword int

const (
	KeywordAccount Keyword = iota
	KeywordAmount
	KeywordDate
	KeywordDescription
	KeywordSecurity
	KeywordType
	KeywordNot
)

// Text returns the source spelling of the keyword, without the colon.
func (k Keyword) Text() string {
	switch k {
	case KeywordAccount:
		return "acct"
	case KeywordAmount:
		return "amt"
	case KeywordDate:
		return "date"
	case KeywordDescription:
		return "desc"
	case KeywordSecurity:
		return "sec"
	case KeywordType:
		return "type"
	case KeywordNot:
		return "not"
	default:
		return "unknown"
	}
}

func (k Keyword) String() string { return k.Text() }

// Literal is a greedy run of characters terminated by ':' or end of input.
type Literal struct {
	Value string
}

// Int is a maximal run of decimal digits, kept as text so the parser can
// reassemble it verbatim or decode it per sub-grammar.
type Int struct {
	Value string
}

// Unknown is a character the lexer could not classify. The current rules
// absorb everything into literals, so it exists for stringification only.
type Unknown struct {
	Char rune
	Pos  int
}

func (End) isToken()            {}
func (Colon) isToken()          {}
func (Dash) isToken()           {}
func (Dot) isToken()            {}
func (RangeSeparator) isToken() {}
func (Gt) isToken()             {}
func (GtEq) isToken()           {}
func (Lt) isToken()             {}
func (LtEq) isToken()           {}
func (Keyword) isToken()        {}
func (Literal) isToken()        {}
func (Int) isToken()            {}
func (Unknown) isToken()        {}
