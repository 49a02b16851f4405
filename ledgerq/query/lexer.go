package query

import "unicode"

var keywords = map[string]Keyword{
	"acct": KeywordAccount,
	"amt":  KeywordAmount,
	"date": KeywordDate,
	"desc": KeywordDescription,
	"sec":  KeywordSecurity,
	"type": KeywordType,
	"not":  KeywordNot,
}

// Lexer tokenizes a single query string using a one-character lookahead
// cursor. Instances are cheap and single-use; create one per query.
type Lexer struct {
	input   []rune
	pos     int
	readPos int
	ch      rune // 0 once input is exhausted
}

// NewLexer creates a new lexer for the input string.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: []rune(input)}
	l.readChar()
	return l
}

// Lex tokenizes the entire input, including the trailing End token.
func Lex(input string) []Token {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok := l.Next()
		tokens = append(tokens, tok)
		if _, done := tok.(End); done {
			return tokens
		}
	}
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
}

func (l *Lexer) peek() rune {
	if l.readPos < len(l.input) {
		return l.input[l.readPos]
	}
	return 0
}

// readLiteral consumes up to but not including the next ':' (or end of
// input), starting at the current character. There is no escaping.
func (l *Lexer) readLiteral() string {
	start := l.pos
	for l.peek() != 0 && l.peek() != ':' {
		l.readChar()
	}
	return string(l.input[start:l.readPos])
}

func (l *Lexer) readInt() string {
	start := l.pos
	for unicode.IsDigit(l.peek()) {
		l.readChar()
	}
	return string(l.input[start:l.readPos])
}

// Next returns the next token and advances the cursor. After the input is
// exhausted it keeps returning End with no side effects.
func (l *Lexer) Next() Token {
	var tok Token

	switch {
	case l.ch == 0:
		tok = End{}
	case l.ch == ':':
		tok = Colon{}
	case l.ch == '-':
		tok = Dash{}
	case l.ch == '.':
		if l.peek() == '.' {
			l.readChar()
			tok = RangeSeparator{}
		} else {
			tok = Dot{}
		}
	case l.ch == '>':
		if l.peek() == '=' {
			l.readChar()
			tok = GtEq{}
		} else {
			tok = Gt{}
		}
	case l.ch == '<':
		if l.peek() == '=' {
			l.readChar()
			tok = LtEq{}
		} else {
			tok = Lt{}
		}
	case unicode.IsDigit(l.ch):
		tok = Int{Value: l.readInt()}
	case unicode.IsLetter(l.ch):
		word := l.readLiteral()
		// A reserved word is a keyword only when immediately followed by
		// ':' so bare text like "date" stays a plain literal.
		if kw, ok := keywords[word]; ok && l.peek() == ':' {
			l.readChar()
			tok = kw
		} else {
			tok = Literal{Value: word}
		}
	default:
		tok = Literal{Value: l.readLiteral()}
	}

	l.readChar()
	return tok
}
