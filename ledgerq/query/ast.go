package query

import (
	"time"

	"github.com/shopspring/decimal"
)

// Field is a logical record attribute addressable by the query language.
type Field int

const (
	FieldAccount Field = iota
	FieldAmount
	FieldDate
	FieldDescription
	FieldSecurity
	FieldType
	// FieldDefault is a placeholder for keyword-less queries; it is
	// resolved to a caller-chosen field by PrepareFilters.
	FieldDefault
)

func (f Field) String() string {
	switch f {
	case FieldAccount:
		return "account"
	case FieldAmount:
		return "amount"
	case FieldDate:
		return "date"
	case FieldDescription:
		return "description"
	case FieldSecurity:
		return "security"
	case FieldType:
		return "type"
	case FieldDefault:
		return "default"
	default:
		return "unknown"
	}
}

// Operator is the comparison or matching relation of a filter.
type Operator int

const (
	OpRegexMatch Operator = iota
	OpNotRegexMatch
	OpEquals
	OpNotEquals
	OpGreaterThan
	OpGreaterThanEq
	OpLessThan
	OpLessThanEq
	OpBetween
	OpNotBetween
	OpIn
	OpNotIn
)

func (op Operator) String() string {
	switch op {
	case OpRegexMatch:
		return "REGEX_MATCH"
	case OpNotRegexMatch:
		return "NOT_REGEX_MATCH"
	case OpEquals:
		return "EQUALS"
	case OpNotEquals:
		return "NOT_EQUALS"
	case OpGreaterThan:
		return "GREATER_THAN"
	case OpGreaterThanEq:
		return "GREATER_THAN_EQ"
	case OpLessThan:
		return "LESS_THAN"
	case OpLessThanEq:
		return "LESS_THAN_EQ"
	case OpBetween:
		return "BETWEEN"
	case OpNotBetween:
		return "NOT_BETWEEN"
	case OpIn:
		return "IN"
	case OpNotIn:
		return "NOT_IN"
	default:
		return "unknown"
	}
}

// Negate returns the logical inverse of the operator. The map is total and
// involutive: Negate(Negate(op)) == op for every operator.
func (op Operator) Negate() Operator {
	switch op {
	case OpRegexMatch:
		return OpNotRegexMatch
	case OpNotRegexMatch:
		return OpRegexMatch
	case OpEquals:
		return OpNotEquals
	case OpNotEquals:
		return OpEquals
	case OpGreaterThan:
		return OpLessThanEq
	case OpGreaterThanEq:
		return OpLessThan
	case OpLessThan:
		return OpGreaterThanEq
	case OpLessThanEq:
		return OpGreaterThan
	case OpBetween:
		return OpNotBetween
	case OpNotBetween:
		return OpBetween
	case OpIn:
		return OpNotIn
	case OpNotIn:
		return OpIn
	default:
		return op
	}
}

// Value is the closed set of filter operand types. Scalars pair with unary
// operators; lists pair with BETWEEN (exactly two members) and IN (one or
// more). The arity invariant is enforced by the predicate compiler.
type Value interface {
	isValue()
}

// String is a free-text operand used with the regex operators.
type String string

// Number is an exact decimal amount.
type Number struct {
	decimal.Decimal
}

// Date is a civil day, held at UTC midnight.
type Date struct {
	time.Time
}

type Strings []string

type Numbers []decimal.Decimal

type Dates []time.Time

func (String) isValue()  {}
func (Number) isValue()  {}
func (Date) isValue()    {}
func (Strings) isValue() {}
func (Numbers) isValue() {}
func (Dates) isValue()   {}

// NewDate builds a Date for the given civil day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FilterNode is one resolved (field, operator, value) triple.
type FilterNode struct {
	Field    Field
	Operator Operator
	Value    Value
}
