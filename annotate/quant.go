package annotate

import (
	"fmt"

	"github.com/signadot/fodot/ast"
)

func quantification(e *ast.Expr, sc *Scope) (*ast.Expr, error) {
	qs, inner, err := quantees(e.Quantees, sc, e.Subs...)
	if err != nil {
		return nil, err
	}
	body, err := annotate(e.Subs[0], inner)
	if err != nil {
		return nil, err
	}
	if err := ast.Check(body.Type == ast.BoolType, ast.ErrTypeMismatch,
		"body of %s is %s, not Boolean", e.Q, body.Type); err != nil {
		return nil, err
	}
	return ast.NewQuantification(e.Q, qs, body), nil
}

// aggregate desugars #{q: cond} and sum{q: cond: term} into a sum over
// q of if cond then term else 0, term being 1 for a count.
func aggregate(e *ast.Expr, sc *Scope) (*ast.Expr, error) {
	if e.UsingIf {
		qs, inner, err := quantees(e.Quantees, sc, e.Subs...)
		if err != nil {
			return nil, err
		}
		body, err := annotate(e.Subs[0], inner)
		if err != nil {
			return nil, err
		}
		return ast.NewAggregate(ast.AggSum, qs, body), nil
	}
	raws := append([]*ast.Expr{}, e.Subs...)
	if e.Out != nil {
		raws = append(raws, e.Out)
	}
	qs, inner, err := quantees(e.Quantees, sc, raws...)
	if err != nil {
		return nil, err
	}
	cond := ast.True()
	if len(e.Subs) != 0 {
		cond, err = annotate(e.Subs[0], inner)
		if err != nil {
			return nil, err
		}
	}
	if err := ast.Check(cond.Type == ast.BoolType, ast.ErrTypeMismatch,
		"condition of %s is %s, not Boolean", e.Q, cond.Type); err != nil {
		return nil, err
	}
	var out *ast.Expr
	switch e.Q {
	case ast.AggCount:
		if err := ast.Check(e.Out == nil, ast.ErrTypeMismatch, "# takes no term"); err != nil {
			return nil, err
		}
		out = ast.Int(1)
	case ast.AggSum:
		if err := ast.Check(e.Out != nil, ast.ErrTypeMismatch, "sum needs a term"); err != nil {
			return nil, err
		}
		out, err = annotate(e.Out, inner)
		if err != nil {
			return nil, err
		}
		if err := ast.Check(ast.IsNumeric(out.Type), ast.ErrTypeMismatch,
			"sum of %s of type %s", out, out.Type); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unknown aggregate %q", ast.ErrTypeMismatch, e.Q)
	}
	zero := ast.Int(0)
	if out.Type == ast.RealType {
		zero = ast.NewNumber(new(ast.Rat), ast.RealType)
	}
	return ast.NewAggregate(ast.AggSum, qs, ast.If(cond, out, zero)), nil
}

// quantees annotates the heads of a quantification and returns them with
// the scope of its body. Variables without a sort take the sort of the
// argument positions they occupy in raws.
func quantees(qs []*ast.Quantee, sc *Scope, raws ...*ast.Expr) ([]*ast.Quantee, *Scope, error) {
	res := make([]*ast.Quantee, 0, len(qs))
	var vars []*ast.Expr
	for _, q := range qs {
		for _, name := range q.Names() {
			if _, ok := sc.Voc.Lookup(name); ok {
				return nil, nil, fmt.Errorf("%w: variable %s is a declared symbol", ast.ErrScopeConflict, name)
			}
		}
		switch {
		case q.Set != nil:
			set, err := annotateAll(q.Set, sc)
			if err != nil {
				return nil, nil, err
			}
			types := make([]string, len(set))
			for i, v := range set {
				if err := ast.Check(v.AsLiteral() != nil, ast.ErrTypeMismatch,
					"%s in the domain of %v is not a value", v, q.Names()); err != nil {
					return nil, nil, err
				}
				types[i] = v.Type
			}
			typ := ast.PromoteTypes(types...)
			nq := &ast.Quantee{Set: set}
			for _, name := range q.Names() {
				nq.Vars = append(nq.Vars, ast.NewVariable(name, typ, nil))
			}
			vars = append(vars, nq.Vars...)
			res = append(res, nq)
		case q.Sort != "":
			d, err := quanteeSort(sc.Voc, q.Sort)
			if err != nil {
				return nil, nil, err
			}
			nq := &ast.Quantee{Sort: q.Sort, Decl: d}
			for _, name := range q.Names() {
				nq.Vars = append(nq.Vars, ast.NewVariable(name, ast.BaseType(d), d))
			}
			vars = append(vars, nq.Vars...)
			res = append(res, nq)
		default:
			for _, name := range q.Names() {
				d, err := inferSort(sc.Voc, name, raws)
				if err != nil {
					return nil, nil, err
				}
				v := ast.NewVariable(name, ast.BaseType(d), d)
				vars = append(vars, v)
				res = append(res, &ast.Quantee{Vars: []*ast.Expr{v}, Sort: d.DeclName(), Decl: d})
			}
		}
	}
	return res, sc.With(vars...), nil
}

// quanteeSort resolves the sort of a quantee: a type, or a unary
// predicate restricting the domain of its argument.
func quanteeSort(voc *ast.Vocabulary, name string) (ast.Declaration, error) {
	d, ok := voc.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ast.ErrUnresolvedSymbol, name)
	}
	switch x := d.(type) {
	case *ast.TypeDecl, *ast.RangeDecl:
		return d, nil
	case *ast.SymbolDecl:
		if x.Arity() == 1 && x.IsPredicate() {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: %s is not a type or a unary predicate", ast.ErrTypeMismatch, name)
}

// inferSort returns the sort of the argument positions of name in raws.
// Positions with different sorts are an error.
func inferSort(voc *ast.Vocabulary, name string, raws []*ast.Expr) (ast.Declaration, error) {
	var found ast.Declaration
	var err error
	note := func(d ast.Declaration) {
		if err != nil || d == nil {
			return
		}
		if found == nil {
			found = d
			return
		}
		if found.DeclName() != d.DeclName() {
			err = fmt.Errorf("%w: %s is used as %s and as %s", ast.ErrTypeMismatch, name, found.DeclName(), d.DeclName())
		}
	}
	isVar := func(e *ast.Expr) bool {
		return (e.Kind == ast.UnappliedSymbolKind || e.Kind == ast.VariableKind) && e.Name == name
	}
	var walk func(e *ast.Expr)
	walk = func(e *ast.Expr) {
		if e == nil || err != nil {
			return
		}
		if e.Kind.IsBinder() {
			for _, q := range e.Quantees {
				for _, n := range q.Names() {
					if n == name {
						return
					}
				}
			}
		}
		switch e.Kind {
		case ast.AppliedSymbolKind:
			if sd, ok := voc.Symbol(e.Name); ok && len(sd.SortDecls) == len(e.Subs) {
				for i, a := range e.Subs {
					if isVar(a) {
						note(sd.SortDecls[i])
					}
				}
			}
		case ast.ComparisonKind:
			for i := 1; i < len(e.Subs); i++ {
				a, b := e.Subs[i-1], e.Subs[i]
				if isVar(b) {
					a, b = b, a
				}
				if !isVar(a) || b.Kind != ast.UnappliedSymbolKind {
					continue
				}
				if c, ok := constructorOwner(voc, b.Name); ok {
					note(c)
				}
			}
		}
		for _, s := range e.Subs {
			walk(s)
		}
		walk(e.Out)
	}
	for _, r := range raws {
		walk(r)
	}
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("%w: cannot infer the sort of %s", ast.ErrTypeMismatch, name)
	}
	return found, nil
}

func constructorOwner(voc *ast.Vocabulary, name string) (ast.Declaration, bool) {
	d, ok := voc.Lookup(name)
	if !ok {
		return nil, false
	}
	c, ok := d.(*ast.ConstructorDecl)
	if !ok {
		return nil, false
	}
	return voc.Lookup(c.Type)
}
