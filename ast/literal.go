package ast

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	set "github.com/hashicorp/go-set/v3"
)

// Rat is the exact representation of numbers and dates.
type Rat = big.Rat

const dateLayout = "2006-01-02"

var epoch = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

func literal(kind Kind, typ string) *Expr {
	return &Expr{Kind: kind, Type: typ, FreshVars: set.New[string](0)}
}

// NewNumber returns a number literal of type Int or Real.
func NewNumber(r *Rat, typ string) *Expr {
	e := literal(NumberKind, typ)
	e.Num = new(Rat).Set(r)
	return e
}

func Int(i int64) *Expr {
	return NewNumber(new(Rat).SetInt64(i), IntType)
}

// ParseNumber parses an integer, a decimal or a fraction. Numbers written
// with a point or a slash are Real.
func ParseNumber(s string) (*Expr, error) {
	r, ok := new(Rat).SetString(s)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a number", ErrValue, s)
	}
	typ := IntType
	if strings.ContainsAny(s, "./eE") {
		typ = RealType
	}
	return NewNumber(r, typ), nil
}

// NewDate returns a date literal. Dates are stored as a day count from
// 1970-01-01 so that they compare and add like integers.
func NewDate(t time.Time) *Expr {
	secs := t.UTC().Unix()
	days := secs / 86400
	if secs%86400 < 0 {
		days--
	}
	e := literal(DateKind, DateType)
	e.Num = new(Rat).SetInt64(days)
	return e
}

// ParseDate parses #YYYY-MM-DD.
func ParseDate(s string) (*Expr, error) {
	t, err := time.Parse(dateLayout, strings.TrimPrefix(s, "#"))
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a date: %w", ErrValue, s, err)
	}
	return NewDate(t), nil
}

// DateOrdinal returns the date literal for a day count.
func DateOrdinal(days int64) *Expr {
	e := literal(DateKind, DateType)
	e.Num = new(Rat).SetInt64(days)
	return e
}

func (e *Expr) dateString() string {
	days := e.Num.Num().Int64()
	return "#" + epoch.AddDate(0, 0, int(days)).Format(dateLayout)
}

func NewConstructor(name, typ string) *Expr {
	e := literal(ConstructorKind, typ)
	e.Name = name
	return e
}

func True() *Expr {
	return NewConstructor("true", BoolType)
}

func False() *Expr {
	return NewConstructor("false", BoolType)
}

func BoolLit(b bool) *Expr {
	if b {
		return True()
	}
	return False()
}

// IsTrue reports whether e is known to be true.
func (e *Expr) IsTrue() bool {
	v, ok := Truth(e)
	return ok && v
}

// IsFalse reports whether e is known to be false.
func (e *Expr) IsFalse() bool {
	v, ok := Truth(e)
	return ok && !v
}
