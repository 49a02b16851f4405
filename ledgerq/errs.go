package ledgerq

import lqerrors "github.com/ledgerq/ledgerq/ledgerq/errors"

// Re-export the error surface so facade users don't import the subpackage.
type Error = lqerrors.Error
type ErrorCode = lqerrors.Code

const (
	ErrQuerySyntax  = lqerrors.CodeQuerySyntax
	ErrOperation    = lqerrors.CodeOperation
	ErrSQL          = lqerrors.CodeSQL
	ErrNotFound     = lqerrors.CodeNotFound
	ErrInvalidInput = lqerrors.CodeInvalidInput
	ErrConflict     = lqerrors.CodeConflict
)

func IsCode(err error, code ErrorCode) bool { return lqerrors.IsCode(err, code) }
