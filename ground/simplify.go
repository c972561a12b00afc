package ground

import (
	"math/big"

	"github.com/signadot/fodot/ast"
)

// Simplify folds the constants of e, assuming its sub-expressions are
// already simplified. It returns e itself when nothing folds.
func Simplify(e *ast.Expr) *ast.Expr {
	switch e.Kind {
	case ast.ConjunctionKind:
		return junction(e, false)
	case ast.DisjunctionKind:
		return junction(e, true)
	case ast.ImplicationKind:
		a, b := e.Subs[0], e.Subs[1]
		switch {
		case a.IsFalse(), b.IsTrue():
			return ast.True()
		case a.IsTrue():
			return b
		case b.IsFalse():
			return negate(a)
		}
	case ast.EquivalenceKind:
		a, b := e.Subs[0], e.Subs[1]
		switch {
		case a.IsTrue():
			return b
		case b.IsTrue():
			return a
		case a.IsFalse():
			return negate(b)
		case b.IsFalse():
			return negate(a)
		case a.Code() == b.Code():
			return ast.True()
		}
	case ast.UnaryKind:
		return unary(e)
	case ast.IfKind:
		c, a, b := e.Subs[0], e.Subs[1], e.Subs[2]
		switch {
		case c.IsTrue():
			return a
		case c.IsFalse():
			return b
		case a.Code() == b.Code():
			return a
		}
	case ast.ComparisonKind:
		return comparison(e)
	case ast.SumMinusKind:
		return sumMinus(e)
	case ast.MultDivKind:
		return multDiv(e)
	case ast.PowerKind:
		return power(e)
	}
	return e
}

func negate(e *ast.Expr) *ast.Expr {
	if v, ok := ast.Truth(e); ok {
		return ast.BoolLit(!v)
	}
	if e.Kind == ast.UnaryKind && e.Operators[0] == ast.OpNot {
		return e.Subs[0]
	}
	return ast.Not(e)
}

// junction simplifies a conjunction (absorb false) or a disjunction
// (absorb true).
func junction(e *ast.Expr, absorb bool) *ast.Expr {
	var keep []*ast.Expr
	changed := false
	for _, s := range e.Subs {
		v, ok := ast.Truth(s)
		if !ok {
			keep = append(keep, s)
			continue
		}
		if v == absorb {
			return ast.BoolLit(absorb)
		}
		changed = true
	}
	if !changed {
		return e
	}
	if absorb {
		return ast.Or(keep...)
	}
	return ast.And(keep...)
}

func unary(e *ast.Expr) *ast.Expr {
	sub := e.Subs[0]
	switch e.Operators[0] {
	case ast.OpNot:
		return negate(sub)
	case ast.OpSub:
		lit := sub.AsLiteral()
		if lit == nil || lit.Kind != ast.NumberKind {
			return e
		}
		return ast.NewNumber(new(ast.Rat).Neg(lit.Num), e.Type)
	}
	return e
}

func literals(subs []*ast.Expr) []*ast.Expr {
	res := make([]*ast.Expr, len(subs))
	for i, s := range subs {
		lit := s.AsLiteral()
		if lit == nil {
			return nil
		}
		res[i] = lit
	}
	return res
}

func comparison(e *ast.Expr) *ast.Expr {
	known := true
	for i, op := range e.Operators {
		a, b := e.Subs[i].AsLiteral(), e.Subs[i+1].AsLiteral()
		if a == nil || b == nil {
			if (op == ast.OpEq || op == ast.OpLe || op == ast.OpGe) && e.Subs[i].Code() == e.Subs[i+1].Code() {
				continue
			}
			known = false
			continue
		}
		ordered := a.Kind == b.Kind || a.Kind != ast.ConstructorKind && b.Kind != ast.ConstructorKind
		if !ordered && op != ast.OpEq && op != ast.OpNe {
			known = false
			continue
		}
		c := ast.Compare(a, b)
		var holds bool
		switch op {
		case ast.OpEq:
			holds = c == 0
		case ast.OpNe:
			holds = c != 0
		case ast.OpLt:
			holds = c < 0
		case ast.OpLe:
			holds = c <= 0
		case ast.OpGt:
			holds = c > 0
		case ast.OpGe:
			holds = c >= 0
		}
		if !holds {
			return ast.False()
		}
	}
	if known {
		return ast.True()
	}
	return e
}

// number returns a number literal of type typ, or a date literal when
// typ is Date.
func number(r *ast.Rat, typ string) *ast.Expr {
	if typ == ast.DateType {
		return ast.DateOrdinal(r.Num().Int64())
	}
	if typ == ast.IntType && !r.IsInt() {
		typ = ast.RealType
	}
	return ast.NewNumber(r, typ)
}

func sumMinus(e *ast.Expr) *ast.Expr {
	lits := literals(e.Subs)
	if lits == nil {
		return e
	}
	acc := new(ast.Rat).Set(lits[0].Num)
	dates := 0
	if lits[0].Kind == ast.DateKind {
		dates++
	}
	for i, op := range e.Operators {
		l := lits[i+1]
		switch op {
		case ast.OpAdd:
			acc.Add(acc, l.Num)
			if l.Kind == ast.DateKind {
				dates++
			}
		case ast.OpSub:
			acc.Sub(acc, l.Num)
			if l.Kind == ast.DateKind {
				dates--
			}
		}
	}
	typ := e.Type
	if dates == 1 {
		typ = ast.DateType
	} else if typ == ast.DateType {
		typ = ast.IntType
	}
	return number(acc, typ)
}

func multDiv(e *ast.Expr) *ast.Expr {
	lits := literals(e.Subs)
	if lits == nil {
		return e
	}
	acc := new(ast.Rat).Set(lits[0].Num)
	for i, op := range e.Operators {
		r := lits[i+1].Num
		switch op {
		case ast.OpMul:
			acc.Mul(acc, r)
		case ast.OpDiv:
			if r.Sign() == 0 {
				return e
			}
			if e.Type == ast.IntType && acc.IsInt() && r.IsInt() {
				q := new(big.Int).Div(acc.Num(), r.Num())
				acc.SetInt(q)
				continue
			}
			acc.Quo(acc, r)
		case ast.OpMod:
			if r.Sign() == 0 || !acc.IsInt() || !r.IsInt() {
				return e
			}
			m := new(big.Int).Mod(acc.Num(), r.Num())
			acc.SetInt(m)
		}
	}
	return number(acc, e.Type)
}

func power(e *ast.Expr) *ast.Expr {
	lits := literals(e.Subs)
	if lits == nil {
		return e
	}
	// right associative
	acc := new(ast.Rat).Set(lits[len(lits)-1].Num)
	for i := len(lits) - 2; i >= 0; i-- {
		if !acc.IsInt() || acc.Sign() < 0 || acc.Num().BitLen() > 16 {
			return e
		}
		n := acc.Num().Int64()
		base := lits[i].Num
		res := new(ast.Rat).SetInt64(1)
		for j := int64(0); j < n; j++ {
			res.Mul(res, base)
		}
		acc = res
	}
	return number(acc, e.Type)
}
