package ast

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateDeclaration = errors.New("duplicate declaration")
	ErrUnresolvedSymbol     = errors.New("symbol not in vocabulary")
	ErrScopeConflict        = errors.New("scope conflict")
	ErrTypeMismatch         = errors.New("type mismatch")
	ErrValue                = errors.New("value error")
)

// Check returns nil when cond holds and otherwise an error of the given
// kind carrying the formatted message.
func Check(cond bool, kind error, format string, args ...any) error {
	if cond {
		return nil
	}
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}
