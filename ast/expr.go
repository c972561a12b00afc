package ast

import (
	"maps"
	"slices"
	"sort"

	set "github.com/hashicorp/go-set/v3"
)

type Expr struct {
	Kind Kind
	Subs []*Expr
	// Type is the base type of the expression: Bool, Int, Real, Date,
	// Symbol or the name of a constructed type. Range sorts are reported
	// by their base.
	Type string

	Value        *Expr
	Simpler      *Expr
	CoConstraint *Expr
	FreshVars    *set.Set[string]
	Annotations  map[string]string

	Name      string
	Operators []string
	Q         string
	Quantees  []*Quantee
	// Out is the term of an aggregate before annotation desugars it.
	Out     *Expr
	UsingIf bool
	Decl    Declaration
	Num     *Rat

	InHead        bool
	IsEnumerated  bool
	InEnumeration *Enumeration
}

// Quantee is one group of variables sharing a sort in the head of a
// quantification, an aggregate or a rule. Exactly one of Sort and Set
// names the domain; both are empty when the sort is to be inferred.
type Quantee struct {
	Vars []*Expr
	Sort string
	Decl Declaration
	Set  []*Expr
}

func (q *Quantee) Names() []string {
	res := make([]string, len(q.Vars))
	for i, v := range q.Vars {
		res[i] = v.Name
	}
	return res
}

// IsGround reports whether the expression has no free variables.
func (e *Expr) IsGround() bool {
	return e.FreshVars == nil || e.FreshVars.Empty()
}

func (e *Expr) HasFresh(name string) bool {
	return e.FreshVars != nil && e.FreshVars.Contains(name)
}

// FreshNames returns the free variable names of e in sorted order.
func (e *Expr) FreshNames() []string {
	if e.FreshVars == nil {
		return nil
	}
	res := e.FreshVars.Slice()
	sort.Strings(res)
	return res
}

// AsLiteral returns the literal e stands for, or nil when e has no known
// value.
func (e *Expr) AsLiteral() *Expr {
	if e == nil {
		return nil
	}
	if e.Kind.IsLiteral() {
		return e
	}
	if e.Value != nil && e.Value.Kind.IsLiteral() {
		return e.Value
	}
	if e.Simpler != nil {
		return e.Simpler.AsLiteral()
	}
	return nil
}

func (e *Expr) Code() string {
	return e.String()
}

// Annotate records a display annotation such as the reading of a
// constraint.
func (e *Expr) Annotate(key, val string) *Expr {
	if e.Annotations == nil {
		e.Annotations = map[string]string{}
	}
	e.Annotations[key] = val
	return e
}

// Copy returns a shallow copy of e: the copy owns its Subs slice, free
// variable set and annotations, and shares everything else.
func (e *Expr) Copy() *Expr {
	res := *e
	res.Subs = slices.Clone(e.Subs)
	if e.FreshVars != nil {
		res.FreshVars = e.FreshVars.Copy()
	}
	if e.Annotations != nil {
		res.Annotations = maps.Clone(e.Annotations)
	}
	return &res
}

// Clone returns a deep copy of e. Declarations and enumerations are
// shared.
func (e *Expr) Clone() *Expr {
	if e == nil {
		return nil
	}
	res := e.Copy()
	for i, s := range e.Subs {
		res.Subs[i] = s.Clone()
	}
	if len(e.Quantees) != 0 {
		res.Quantees = make([]*Quantee, len(e.Quantees))
		for i, q := range e.Quantees {
			res.Quantees[i] = q.Clone()
		}
	}
	res.Operators = slices.Clone(e.Operators)
	res.Out = e.Out.Clone()
	res.Value = e.Value.Clone()
	res.Simpler = e.Simpler.Clone()
	res.CoConstraint = e.CoConstraint.Clone()
	if e.Num != nil {
		res.Num = new(Rat).Set(e.Num)
	}
	return res
}

func (q *Quantee) Clone() *Quantee {
	res := &Quantee{Sort: q.Sort, Decl: q.Decl}
	res.Vars = make([]*Expr, len(q.Vars))
	for i, v := range q.Vars {
		res.Vars[i] = v.Clone()
	}
	if q.Set != nil {
		res.Set = make([]*Expr, len(q.Set))
		for i, v := range q.Set {
			res.Set[i] = v.Clone()
		}
	}
	return res
}

// Visit walks e depth first, calling f before (isPost false) and after
// (isPost true) the sub-expressions. Returning false from the pre call
// skips the sub-expressions.
func (e *Expr) Visit(f func(e *Expr, isPost bool) (bool, error)) error {
	dive, err := f(e, false)
	if err != nil {
		return err
	}
	if dive {
		for _, s := range e.Subs {
			if err := s.Visit(f); err != nil {
				return err
			}
		}
	}
	if _, err := f(e, true); err != nil {
		return err
	}
	return nil
}

// SetFresh recomputes the free variables of e from its sub-expressions and
// the variables it binds.
func (e *Expr) SetFresh() *Expr {
	switch e.Kind {
	case VariableKind:
		e.FreshVars = set.From([]string{e.Name})
		return e
	case UnappliedSymbolKind, NumberKind, DateKind, ConstructorKind, SymbolExprKind:
		e.FreshVars = set.New[string](0)
		return e
	}
	fresh := set.New[string](0)
	for _, s := range e.Subs {
		if s.FreshVars != nil {
			fresh.InsertSet(s.FreshVars)
		}
	}
	if e.Out != nil && e.Out.FreshVars != nil {
		fresh.InsertSet(e.Out.FreshVars)
	}
	for _, q := range e.Quantees {
		for _, v := range q.Vars {
			fresh.Remove(v.Name)
		}
	}
	e.FreshVars = fresh
	return e
}
