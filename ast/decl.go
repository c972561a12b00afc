package ast

import (
	"strings"
)

// Declaration is an entry of a vocabulary's symbol table.
type Declaration interface {
	DeclName() string
	declaration()
}

// TypeDecl declares a constructed type, enumerated by nullary
// constructors, or interpreted by a structure.
type TypeDecl struct {
	Name         string
	Constructors []*ConstructorDecl
	// Interpretation is set when a structure enumerates the type.
	Interpretation *SymbolInterpretation
}

func (d *TypeDecl) DeclName() string { return d.Name }
func (d *TypeDecl) declaration()     {}

// RangeElement is one interval of a range declaration, or a single value
// when To is nil.
type RangeElement struct {
	From, To *Expr
}

// RangeDecl declares a subrange of Int, Real or Date.
type RangeDecl struct {
	Name     string
	Base     string
	Elements []RangeElement
	// Range lists the values of the range when Finite.
	Range  []*Expr
	Finite bool
}

func (d *RangeDecl) DeclName() string { return d.Name }
func (d *RangeDecl) declaration()     {}

// SymbolDecl declares a predicate (Out is Bool) or a function.
type SymbolDecl struct {
	Name  string
	Sorts []string
	Out   string

	// SortDecls and OutDecl are set when the vocabulary is resolved.
	SortDecls []Declaration
	OutDecl   Declaration

	domain    [][]*Expr
	finite    bool
	instances []*Expr
	computed  bool
}

func (d *SymbolDecl) DeclName() string { return d.Name }
func (d *SymbolDecl) declaration()     {}

func (d *SymbolDecl) Arity() int {
	return len(d.Sorts)
}

func (d *SymbolDecl) IsPredicate() bool {
	return d.Out == "" || d.Out == BoolType
}

// OutType returns the base type of the symbol's value.
func (d *SymbolDecl) OutType() string {
	if d.OutDecl != nil {
		return BaseType(d.OutDecl)
	}
	if d.Out == "" {
		return BoolType
	}
	return d.Out
}

// Domain returns the cross product of the argument sorts. The second
// result is false when some sort is not finite.
func (d *SymbolDecl) Domain() ([][]*Expr, bool) {
	d.compute()
	return d.domain, d.finite
}

// Instances returns the applications of the symbol to each tuple of its
// domain, or nil when the domain is not finite.
func (d *SymbolDecl) Instances() []*Expr {
	d.compute()
	return d.instances
}

// ResetDomain forgets the domain computed so far, to be called when a
// structure changes the interpretation of a sort.
func (d *SymbolDecl) ResetDomain() {
	d.domain, d.instances, d.finite, d.computed = nil, nil, false, false
}

func (d *SymbolDecl) compute() {
	if d.computed {
		return
	}
	d.computed = true
	tuples := [][]*Expr{{}}
	for _, sd := range d.SortDecls {
		dom, ok := Domain(sd)
		if !ok {
			return
		}
		next := make([][]*Expr, 0, len(tuples)*len(dom))
		for _, t := range tuples {
			for _, v := range dom {
				row := append(append(make([]*Expr, 0, len(t)+1), t...), v)
				next = append(next, row)
			}
		}
		tuples = next
	}
	d.domain = tuples
	d.finite = true
	d.instances = make([]*Expr, len(tuples))
	for i, t := range tuples {
		d.instances[i] = NewApplied(d.Name, d, t...)
	}
}

func (d *SymbolDecl) String() string {
	var b strings.Builder
	b.WriteString(d.Name)
	b.WriteString(": ")
	if len(d.Sorts) == 0 {
		b.WriteString("()")
	}
	b.WriteString(strings.Join(d.Sorts, " * "))
	b.WriteString(" → ")
	if d.Out == "" {
		b.WriteString(BoolType)
	} else {
		b.WriteString(d.Out)
	}
	return b.String()
}

// ConstructorDecl is the symbol-table entry of a constructor of a
// constructed type.
type ConstructorDecl struct {
	Name string
	Type string
	// Symbol is the resolved $(Name) node for constructors of the Symbol
	// type.
	Symbol *Expr
}

func (d *ConstructorDecl) DeclName() string { return d.Name }
func (d *ConstructorDecl) declaration()     {}

func (d *ConstructorDecl) Literal() *Expr {
	return NewConstructor(d.Name, d.Type)
}

// BaseType returns the type of the values of a sort.
func BaseType(d Declaration) string {
	switch x := d.(type) {
	case *TypeDecl:
		return x.Name
	case *RangeDecl:
		return x.Base
	case *SymbolDecl:
		if x.Arity() == 1 && x.IsPredicate() && len(x.SortDecls) == 1 {
			return BaseType(x.SortDecls[0])
		}
		return x.OutType()
	case *ConstructorDecl:
		return x.Type
	}
	return ""
}

// Domain returns the values of a sort. The second result is false when
// the sort is not finite. For a unary predicate used as a sort, the
// domain of its argument sort is returned: membership has to be guarded
// separately.
func Domain(d Declaration) ([]*Expr, bool) {
	switch x := d.(type) {
	case *TypeDecl:
		if x.Interpretation != nil && x.Interpretation.Enumeration != nil {
			tuples := x.Interpretation.Enumeration.Tuples
			res := make([]*Expr, 0, len(tuples))
			for _, t := range tuples {
				if len(t.Args) == 1 {
					res = append(res, t.Args[0])
				}
			}
			return res, true
		}
		res := make([]*Expr, len(x.Constructors))
		for i, c := range x.Constructors {
			if c.Symbol != nil {
				res[i] = c.Symbol
				continue
			}
			res[i] = c.Literal()
		}
		return res, true
	case *RangeDecl:
		if !x.Finite {
			return nil, false
		}
		return x.Range, true
	case *SymbolDecl:
		if x.Arity() == 1 && x.IsPredicate() && len(x.SortDecls) == 1 {
			return Domain(x.SortDecls[0])
		}
	}
	return nil, false
}
