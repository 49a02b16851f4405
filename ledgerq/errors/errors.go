package errors

import (
	stderrors "errors"
	"fmt"
)

type Code string

const (
	CodeQuerySyntax  Code = "query_syntax"
	CodeOperation    Code = "operation"
	CodeSQL          Code = "sql"
	CodeNotFound     Code = "not_found"
	CodeInvalidInput Code = "invalid_input"
	CodeConflict     Code = "conflict"
)

// Error is the single error type surfaced by the library. Query is set for
// query_syntax errors and names the offending source text.
type Error struct {
	Code  Code
	Msg   string
	Query string
	Cause error
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Query != "" {
		msg = fmt.Sprintf("syntax error in query %q: %s", e.Query, e.Msg)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(code Code, msg string) *Error { return &Error{Code: code, Msg: msg} }

func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

func Wrap(code Code, msg string, cause error) *Error {
	return &Error{Code: code, Msg: msg, Cause: cause}
}

// Syntax builds a query_syntax error. The query text is usually attached
// later by the batch entry point via WithQuery.
func Syntax(msg string) *Error { return &Error{Code: CodeQuerySyntax, Msg: msg} }

func Syntaxf(format string, args ...any) *Error {
	return &Error{Code: CodeQuerySyntax, Msg: fmt.Sprintf(format, args...)}
}

// WithQuery returns a copy of err annotated with the raw query string that
// produced it. Non-*Error values are wrapped as query_syntax.
func WithQuery(err error, query string) *Error {
	var e *Error
	if stderrors.As(err, &e) {
		cp := *e
		cp.Query = query
		return &cp
	}
	return &Error{Code: CodeQuerySyntax, Msg: err.Error(), Query: query, Cause: err}
}

func IsCode(err error, code Code) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code == code
	}
	return false
}
