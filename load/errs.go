package load

import (
	"errors"
	"fmt"
)

var (
	ErrLoad      = errors.New("load error")
	ErrOperator  = fmt.Errorf("%w: unknown operator", ErrLoad)
	ErrArguments = fmt.Errorf("%w: wrong arguments", ErrLoad)
)
