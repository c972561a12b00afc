package eval

import (
	"errors"
	"fmt"
)

var (
	ErrEval        = errors.New("eval error")
	ErrUnknownAtom = fmt.Errorf("%w: atom has no value", ErrEval)
	ErrNotGround   = fmt.Errorf("%w: not ground", ErrEval)
)
