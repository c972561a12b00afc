package annotate

import (
	"fmt"

	"github.com/signadot/fodot/ast"
	"github.com/signadot/fodot/debug"
)

// DefaultMaxRange is the largest number of values a range declaration may
// have to be expanded.
const DefaultMaxRange = 10000

// ResolveVocabulary installs the built-in types and then the declarations
// of voc in its symbol table, in order. Constructors are bound typed by
// their owning type. Range declarations with at most maxRange values are
// expanded. Finally the Symbol type is given one constructor per declared
// symbol.
func ResolveVocabulary(voc *ast.Vocabulary, maxRange int) error {
	if maxRange <= 0 {
		maxRange = DefaultMaxRange
	}
	var symbolType *ast.TypeDecl
	decls := append(ast.Builtins(), voc.Decls...)
	for _, d := range decls {
		if err := voc.Insert(d); err != nil {
			return err
		}
		switch x := d.(type) {
		case *ast.TypeDecl:
			if x.Name == ast.SymbolType {
				symbolType = x
				continue
			}
			for _, c := range x.Constructors {
				c.Type = x.Name
				if err := voc.Insert(c); err != nil {
					return err
				}
			}
		case *ast.RangeDecl:
			if err := expandRange(x, maxRange); err != nil {
				return err
			}
		}
	}
	for _, d := range voc.Decls {
		sd, ok := d.(*ast.SymbolDecl)
		if !ok {
			continue
		}
		if err := resolveSorts(voc, sd); err != nil {
			return err
		}
	}
	symbolType.Constructors = nil
	for _, name := range voc.SymbolNames() {
		decl, _ := voc.Lookup(name)
		c := &ast.ConstructorDecl{Name: name, Type: ast.SymbolType}
		if err := voc.Insert(c); err != nil {
			return err
		}
		sym, err := Expr(&ast.Expr{Kind: ast.SymbolExprKind, Name: name, Decl: decl}, NewScope(voc))
		if err != nil {
			return err
		}
		c.Symbol = sym
		symbolType.Constructors = append(symbolType.Constructors, c)
	}
	if debug.Annotate() {
		debug.Logf("resolved vocabulary %s: %v\n", voc.Name, voc.Names())
	}
	return nil
}

func resolveSorts(voc *ast.Vocabulary, sd *ast.SymbolDecl) error {
	sd.SortDecls = make([]ast.Declaration, len(sd.Sorts))
	for i, s := range sd.Sorts {
		d, err := sortDecl(voc, s)
		if err != nil {
			return fmt.Errorf("argument %d of %s: %w", i+1, sd.Name, err)
		}
		sd.SortDecls[i] = d
	}
	if sd.Out == "" {
		sd.Out = ast.BoolType
	}
	d, err := sortDecl(voc, sd.Out)
	if err != nil {
		return fmt.Errorf("value of %s: %w", sd.Name, err)
	}
	sd.OutDecl = d
	return nil
}

func sortDecl(voc *ast.Vocabulary, name string) (ast.Declaration, error) {
	d, ok := voc.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ast.ErrUnresolvedSymbol, name)
	}
	switch d.(type) {
	case *ast.TypeDecl, *ast.RangeDecl:
		return d, nil
	}
	return nil, fmt.Errorf("%w: %s is not a type", ast.ErrTypeMismatch, name)
}

// expandRange lists the values of a range declaration when there are at
// most max of them. Real intervals are never expanded.
func expandRange(d *ast.RangeDecl, max int) error {
	if d.Base == "" {
		d.Base = ast.IntType
	}
	if len(d.Elements) == 0 {
		return nil
	}
	var values []*ast.Expr
	seen := map[string]bool{}
	add := func(v *ast.Expr) {
		if !seen[v.Code()] {
			seen[v.Code()] = true
			values = append(values, v)
		}
	}
	for _, el := range d.Elements {
		if err := checkBound(d, el.From); err != nil {
			return err
		}
		if el.To == nil {
			add(as(el.From, d.Base))
			continue
		}
		if err := checkBound(d, el.To); err != nil {
			return err
		}
		if d.Base == ast.RealType && el.From.Num.Cmp(el.To.Num) != 0 {
			return nil
		}
		if !el.From.Num.IsInt() || !el.To.Num.IsInt() {
			return fmt.Errorf("%w: bounds of %s must be integers", ast.ErrValue, d.Name)
		}
		lo, hi := el.From.Num.Num().Int64(), el.To.Num.Num().Int64()
		if hi-lo+int64(len(values)) >= int64(max) {
			return nil
		}
		for i := lo; i <= hi; i++ {
			switch d.Base {
			case ast.DateType:
				add(ast.DateOrdinal(i))
			default:
				add(as(ast.Int(i), d.Base))
			}
		}
	}
	d.Range = values
	d.Finite = true
	return nil
}

func checkBound(d *ast.RangeDecl, b *ast.Expr) error {
	switch d.Base {
	case ast.IntType, ast.RealType:
		return ast.Check(b.Kind == ast.NumberKind, ast.ErrTypeMismatch,
			"%s: bound %s is not a number", d.Name, b)
	case ast.DateType:
		return ast.Check(b.Kind == ast.DateKind, ast.ErrTypeMismatch,
			"%s: bound %s is not a date", d.Name, b)
	}
	return fmt.Errorf("%w: %s cannot be the base of range %s", ast.ErrTypeMismatch, d.Base, d.Name)
}

func as(v *ast.Expr, base string) *ast.Expr {
	if v.Kind != ast.NumberKind || v.Type == base {
		return v
	}
	return ast.NewNumber(v.Num, base)
}
