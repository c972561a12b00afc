package ast

import (
	"cmp"
	"strings"
)

// Compare returns an integer comparing two literals.
// The result will be 0 if a==b, -1 if a < b, and +1 if a > b.
// Expressions which are not literals compare by code.
func Compare(a, b *Expr) int {
	if a == b {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}
	la, lb := a.AsLiteral(), b.AsLiteral()
	if la == nil || lb == nil {
		return strings.Compare(a.Code(), b.Code())
	}
	a, b = la, lb

	rankA := rank(a.Kind)
	rankB := rank(b.Kind)
	if rankA != rankB {
		return cmp.Compare(rankA, rankB)
	}
	switch a.Kind {
	case NumberKind, DateKind:
		return a.Num.Cmp(b.Num)
	case ConstructorKind:
		if c := strings.Compare(a.Type, b.Type); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	}
	return 0
}

// Equal reports whether a and b are the same literal or, failing that,
// have the same code.
func Equal(a, b *Expr) bool {
	return Compare(a, b) == 0
}

// rank returns the sorting rank of a literal kind.
// Order: Number < Date < Constructor
func rank(k Kind) int {
	switch k {
	case NumberKind:
		return 0
	case DateKind:
		return 1
	case ConstructorKind:
		return 2
	}
	return 100
}
