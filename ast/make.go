package ast

import (
	set "github.com/hashicorp/go-set/v3"
)

func NewVariable(name, typ string, sort Declaration) *Expr {
	e := &Expr{Kind: VariableKind, Name: name, Type: typ, Decl: sort}
	return e.SetFresh()
}

func NewUnapplied(name string) *Expr {
	e := &Expr{Kind: UnappliedSymbolKind, Name: name}
	return e.SetFresh()
}

// NewApplied applies a symbol to arguments. The type is taken from decl
// when decl is a *SymbolDecl.
func NewApplied(name string, decl Declaration, args ...*Expr) *Expr {
	e := &Expr{Kind: AppliedSymbolKind, Name: name, Decl: decl, Subs: args}
	if sd, ok := decl.(*SymbolDecl); ok {
		e.Type = sd.OutType()
	}
	return e.SetFresh()
}

// NewSymbolExpr returns the symbol name used as data, $(name).
func NewSymbolExpr(name string, decl Declaration) *Expr {
	e := &Expr{Kind: SymbolExprKind, Name: name, Decl: decl, Type: SymbolType}
	e.SetFresh()
	if decl != nil {
		e.Value = NewConstructor(name, SymbolType)
	}
	return e
}

func NewBrackets(sub *Expr) *Expr {
	e := &Expr{Kind: BracketsKind, Subs: []*Expr{sub}, Type: sub.Type}
	return e.SetFresh()
}

// NewOperator joins subs with ops. len(ops) must be len(subs)-1.
func NewOperator(kind Kind, ops []string, subs ...*Expr) *Expr {
	e := &Expr{Kind: kind, Operators: ops, Subs: subs}
	switch kind {
	case SumMinusKind, MultDivKind, PowerKind:
		types := make([]string, len(subs))
		for i, s := range subs {
			types[i] = s.Type
		}
		e.Type = PromoteTypes(types...)
		if kind == SumMinusKind {
			e.Type = dateSum(e.Type, ops, types)
		}
	default:
		e.Type = BoolType
	}
	return e.SetFresh()
}

// dateSum types a sum with Date operands: a date shifted by days is a Date,
// the difference of two dates is an Int.
func dateSum(typ string, ops, types []string) string {
	dates := 0
	for i, t := range types {
		if t != DateType {
			continue
		}
		if i > 0 && ops[i-1] == OpSub {
			dates--
		} else {
			dates++
		}
	}
	switch {
	case dates == 1:
		return DateType
	case typ == DateType:
		return IntType
	}
	return typ
}

func repeat(op string, n int) []string {
	if n <= 0 {
		return nil
	}
	res := make([]string, n)
	for i := range res {
		res[i] = op
	}
	return res
}

// And returns the conjunction of subs, true when subs is empty and the
// only element when there is one.
func And(subs ...*Expr) *Expr {
	switch len(subs) {
	case 0:
		return True()
	case 1:
		return subs[0]
	}
	return NewOperator(ConjunctionKind, repeat(OpAnd, len(subs)-1), subs...)
}

// Or returns the disjunction of subs, false when subs is empty and the
// only element when there is one.
func Or(subs ...*Expr) *Expr {
	switch len(subs) {
	case 0:
		return False()
	case 1:
		return subs[0]
	}
	return NewOperator(DisjunctionKind, repeat(OpOr, len(subs)-1), subs...)
}

func Implies(a, b *Expr) *Expr {
	return NewOperator(ImplicationKind, []string{OpImplies}, a, b)
}

func Equiv(a, b *Expr) *Expr {
	return NewOperator(EquivalenceKind, []string{OpEquiv}, a, b)
}

func Equals(a, b *Expr) *Expr {
	return NewOperator(ComparisonKind, []string{OpEq}, a, b)
}

func Comparison(op string, a, b *Expr) *Expr {
	return NewOperator(ComparisonKind, []string{op}, a, b)
}

// Sum adds terms, 0 when terms is empty.
func Sum(terms ...*Expr) *Expr {
	switch len(terms) {
	case 0:
		return Int(0)
	case 1:
		return terms[0]
	}
	return NewOperator(SumMinusKind, repeat(OpAdd, len(terms)-1), terms...)
}

func NewUnary(ops []string, sub *Expr) *Expr {
	e := &Expr{Kind: UnaryKind, Operators: ops, Subs: []*Expr{sub}, Type: sub.Type}
	return e.SetFresh()
}

func Not(e *Expr) *Expr {
	return NewUnary([]string{OpNot}, e)
}

func If(cond, then, els *Expr) *Expr {
	e := &Expr{
		Kind: IfKind,
		Subs: []*Expr{cond, then, els},
		Type: PromoteTypes(then.Type, els.Type),
	}
	return e.SetFresh()
}

func NewQuantification(q string, quantees []*Quantee, body *Expr) *Expr {
	e := &Expr{
		Kind:     QuantificationKind,
		Q:        q,
		Quantees: quantees,
		Subs:     []*Expr{body},
		Type:     BoolType,
	}
	return e.SetFresh()
}

// NewAggregate returns an annotated aggregate whose body is the term to
// sum over the quantees.
func NewAggregate(q string, quantees []*Quantee, body *Expr) *Expr {
	e := &Expr{
		Kind:     AggregateKind,
		Q:        q,
		Quantees: quantees,
		Subs:     []*Expr{body},
		Type:     body.Type,
		UsingIf:  true,
	}
	return e.SetFresh()
}

// PromoteTypes returns Real if any type is Real, else Int if any type is
// Int, else the first non-empty type.
func PromoteTypes(types ...string) string {
	seen := set.From(types)
	switch {
	case seen.Contains(RealType):
		return RealType
	case seen.Contains(IntType):
		return IntType
	}
	for _, t := range types {
		if t != "" {
			return t
		}
	}
	return ""
}
