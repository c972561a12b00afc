package ast

import (
	"fmt"
)

// Vocabulary is a named symbol table. Decls holds the user declarations in
// the order they were given; SymbolDecls is filled when the vocabulary is
// resolved.
type Vocabulary struct {
	Name        string
	Decls       []Declaration
	SymbolDecls map[string]Declaration

	order []string
}

func NewVocabulary(name string, decls ...Declaration) *Vocabulary {
	return &Vocabulary{
		Name:        name,
		Decls:       decls,
		SymbolDecls: map[string]Declaration{},
	}
}

// Builtins returns fresh declarations of the built-in types.
func Builtins() []Declaration {
	boolDecl := &TypeDecl{Name: BoolType}
	boolDecl.Constructors = []*ConstructorDecl{
		{Name: "true", Type: BoolType},
		{Name: "false", Type: BoolType},
	}
	return []Declaration{
		boolDecl,
		&RangeDecl{Name: IntType, Base: IntType},
		&RangeDecl{Name: RealType, Base: RealType},
		&RangeDecl{Name: DateType, Base: DateType},
		&TypeDecl{Name: SymbolType},
	}
}

// Insert binds d under its name. Constructors of the Symbol type are not
// bound: they share their names with the symbols they denote.
func (v *Vocabulary) Insert(d Declaration) error {
	if v.SymbolDecls == nil {
		v.SymbolDecls = map[string]Declaration{}
	}
	name := d.DeclName()
	if c, ok := d.(*ConstructorDecl); ok && c.Type == SymbolType {
		return nil
	}
	if prev, ok := v.SymbolDecls[name]; ok {
		if c, isCons := d.(*ConstructorDecl); isCons {
			return fmt.Errorf("%w: constructor %s of %s collides with %s", ErrDuplicateDeclaration, name, c.Type, describe(prev))
		}
		return fmt.Errorf("%w: %s in vocabulary %s", ErrDuplicateDeclaration, name, v.Name)
	}
	v.SymbolDecls[name] = d
	v.order = append(v.order, name)
	return nil
}

func describe(d Declaration) string {
	switch x := d.(type) {
	case *TypeDecl:
		return "type " + x.Name
	case *RangeDecl:
		return "type " + x.Name
	case *SymbolDecl:
		return "symbol " + x.Name
	case *ConstructorDecl:
		return "constructor " + x.Name
	}
	return d.DeclName()
}

func (v *Vocabulary) Lookup(name string) (Declaration, bool) {
	d, ok := v.SymbolDecls[name]
	return d, ok
}

// Symbol returns the declaration of a predicate or function.
func (v *Vocabulary) Symbol(name string) (*SymbolDecl, bool) {
	d, ok := v.SymbolDecls[name]
	if !ok {
		return nil, false
	}
	sd, ok := d.(*SymbolDecl)
	return sd, ok
}

// Names returns the bound names in insertion order.
func (v *Vocabulary) Names() []string {
	return append([]string(nil), v.order...)
}

// SymbolNames returns the names of the declared predicates and functions
// in insertion order.
func (v *Vocabulary) SymbolNames() []string {
	var res []string
	for _, name := range v.order {
		if _, ok := v.SymbolDecls[name].(*SymbolDecl); ok {
			res = append(res, name)
		}
	}
	return res
}

// Extern merges the symbol table of other into v. A name bound to
// different declarations in both is an error.
func (v *Vocabulary) Extern(other *Vocabulary) error {
	for _, name := range other.order {
		d := other.SymbolDecls[name]
		if prev, ok := v.SymbolDecls[name]; ok {
			if prev == d || isBuiltin(prev) && isBuiltin(d) {
				continue
			}
			return fmt.Errorf("%w: %s from vocabulary %s", ErrDuplicateDeclaration, name, other.Name)
		}
		v.SymbolDecls[name] = d
		v.order = append(v.order, name)
	}
	return nil
}

func isBuiltin(d Declaration) bool {
	switch x := d.(type) {
	case *TypeDecl:
		return x.Name == BoolType || x.Name == SymbolType
	case *RangeDecl:
		return x.Name == x.Base
	case *ConstructorDecl:
		return x.Type == BoolType
	}
	return false
}
