package annotate

import (
	"fmt"

	"github.com/signadot/fodot/ast"
	"github.com/signadot/fodot/debug"
)

// Expr annotates e in the scope sc. It resolves identifiers, types the
// expression, binds quantified variables and rewrites sugar:
//
//   - a ≠ b becomes ¬(a = b),
//   - p ⇐ q becomes q ⇒ p,
//   - stacked negations collapse by parity,
//   - count and sum aggregates become a sum over if-then-else terms,
//   - brackets are dropped.
func Expr(e *ast.Expr, sc *Scope) (*ast.Expr, error) {
	res, err := annotate(e, sc)
	if err != nil {
		return nil, err
	}
	if debug.Annotate() {
		debug.Logf("annotated %s as %s: %s\n", e, res.Type, res)
	}
	return res, nil
}

func annotate(e *ast.Expr, sc *Scope) (*ast.Expr, error) {
	switch e.Kind {
	case ast.BracketsKind:
		return annotate(e.Subs[0], sc)
	case ast.NumberKind, ast.DateKind, ast.ConstructorKind:
		return e.Copy().SetFresh(), nil
	case ast.UnappliedSymbolKind, ast.VariableKind:
		return identifier(e, sc)
	case ast.AppliedSymbolKind:
		return application(e, sc)
	case ast.SymbolExprKind:
		return symbolExpr(e, sc)
	case ast.QuantificationKind:
		return quantification(e, sc)
	case ast.AggregateKind:
		return aggregate(e, sc)
	case ast.UnaryKind:
		return unary(e, sc)
	case ast.IfKind:
		return ifExpr(e, sc)
	}
	if e.Kind.IsOperator() {
		return operator(e, sc)
	}
	return nil, fmt.Errorf("%w: cannot annotate %s", ast.ErrTypeMismatch, e.Kind)
}

func annotateAll(es []*ast.Expr, sc *Scope) ([]*ast.Expr, error) {
	res := make([]*ast.Expr, len(es))
	for i, s := range es {
		a, err := annotate(s, sc)
		if err != nil {
			return nil, err
		}
		res[i] = a
	}
	return res, nil
}

func identifier(e *ast.Expr, sc *Scope) (*ast.Expr, error) {
	if v, ok := sc.Bound[e.Name]; ok {
		return v, nil
	}
	d, ok := sc.Voc.Lookup(e.Name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ast.ErrUnresolvedSymbol, e.Name)
	}
	switch x := d.(type) {
	case *ast.ConstructorDecl:
		return x.Literal(), nil
	case *ast.SymbolDecl:
		return application(&ast.Expr{Kind: ast.AppliedSymbolKind, Name: e.Name}, sc)
	}
	return nil, fmt.Errorf("%w: type %s used as a term", ast.ErrTypeMismatch, e.Name)
}

func application(e *ast.Expr, sc *Scope) (*ast.Expr, error) {
	if _, ok := sc.Bound[e.Name]; ok {
		return nil, fmt.Errorf("%w: variable %s applied to arguments", ast.ErrTypeMismatch, e.Name)
	}
	d, ok := sc.Voc.Lookup(e.Name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ast.ErrUnresolvedSymbol, e.Name)
	}
	if c, ok := d.(*ast.ConstructorDecl); ok && len(e.Subs) == 0 && !e.IsEnumerated && e.InEnumeration == nil {
		return c.Literal(), nil
	}
	sd, ok := d.(*ast.SymbolDecl)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a predicate or function", ast.ErrTypeMismatch, e.Name)
	}
	if err := ast.Check(len(e.Subs) == sd.Arity(), ast.ErrTypeMismatch,
		"%s takes %d arguments, got %d", sd.Name, sd.Arity(), len(e.Subs)); err != nil {
		return nil, err
	}
	args, err := annotateAll(e.Subs, sc)
	if err != nil {
		return nil, err
	}
	for i, a := range args {
		want := ast.BaseType(sd.SortDecls[i])
		if err := ast.Check(compatible(want, a.Type), ast.ErrTypeMismatch,
			"argument %d of %s is %s, want %s", i+1, sd.Name, a.Type, want); err != nil {
			return nil, err
		}
	}
	res := ast.NewApplied(sd.Name, sd, args...)
	res.InHead = e.InHead
	if e.IsEnumerated {
		res.IsEnumerated = true
		res.Type = ast.BoolType
	}
	if e.InEnumeration != nil {
		en, err := enumeration(e.InEnumeration, sc, 1, false)
		if err != nil {
			return nil, err
		}
		res.InEnumeration = en
		res.Type = ast.BoolType
	}
	return res, nil
}

// compatible reports whether a value of type got may stand where type
// want is expected.
func compatible(want, got string) bool {
	if want == "" || got == "" || want == got {
		return true
	}
	return ast.IsNumeric(want) && ast.IsNumeric(got)
}

func symbolExpr(e *ast.Expr, sc *Scope) (*ast.Expr, error) {
	if len(e.Subs) == 0 {
		if e.Decl == nil {
			return nil, fmt.Errorf("%w: $(%s)", ast.ErrUnresolvedSymbol, e.Name)
		}
		return ast.NewSymbolExpr(e.Name, e.Decl), nil
	}
	sub := e.Subs[0]
	if sub.Kind == ast.UnappliedSymbolKind {
		if _, bound := sc.Bound[sub.Name]; !bound {
			if sd, ok := sc.Voc.Symbol(sub.Name); ok {
				return ast.NewSymbolExpr(sd.Name, sd), nil
			}
		}
	}
	a, err := annotate(sub, sc)
	if err != nil {
		return nil, err
	}
	if err := ast.Check(a.Type == ast.SymbolType, ast.ErrTypeMismatch,
		"$(%s) needs a Symbol, got %s", a, a.Type); err != nil {
		return nil, err
	}
	res := e.Copy()
	res.Subs[0] = a
	res.Type = ast.SymbolType
	return res.SetFresh(), nil
}

func unary(e *ast.Expr, sc *Scope) (*ast.Expr, error) {
	sub, err := annotate(e.Subs[0], sc)
	if err != nil {
		return nil, err
	}
	op := e.Operators[0]
	for _, o := range e.Operators {
		if o != op {
			return nil, fmt.Errorf("%w: mixed unary operators %v", ast.ErrTypeMismatch, e.Operators)
		}
	}
	switch op {
	case ast.OpNot:
		if err := ast.Check(sub.Type == ast.BoolType, ast.ErrTypeMismatch,
			"¬ applied to %s of type %s", sub, sub.Type); err != nil {
			return nil, err
		}
	case ast.OpSub:
		if err := ast.Check(ast.IsNumeric(sub.Type), ast.ErrTypeMismatch,
			"- applied to %s of type %s", sub, sub.Type); err != nil {
			return nil, err
		}
	}
	if len(e.Operators)%2 == 0 {
		return sub, nil
	}
	return ast.NewUnary([]string{op}, sub), nil
}

func ifExpr(e *ast.Expr, sc *Scope) (*ast.Expr, error) {
	subs, err := annotateAll(e.Subs, sc)
	if err != nil {
		return nil, err
	}
	if err := ast.Check(subs[0].Type == ast.BoolType, ast.ErrTypeMismatch,
		"condition %s is not Boolean", subs[0]); err != nil {
		return nil, err
	}
	if err := ast.Check(compatible(subs[1].Type, subs[2].Type), ast.ErrTypeMismatch,
		"branches of if have types %s and %s", subs[1].Type, subs[2].Type); err != nil {
		return nil, err
	}
	return ast.If(subs[0], subs[1], subs[2]), nil
}

func operator(e *ast.Expr, sc *Scope) (*ast.Expr, error) {
	subs, err := annotateAll(e.Subs, sc)
	if err != nil {
		return nil, err
	}
	switch e.Kind {
	case ast.ImplicationKind, ast.RImplicationKind, ast.EquivalenceKind:
		if err := ast.Check(len(subs) == 2, ast.ErrTypeMismatch,
			"%s chains need parentheses: %s", e.Operators[0], e); err != nil {
			return nil, err
		}
		fallthrough
	case ast.ConjunctionKind, ast.DisjunctionKind:
		for _, s := range subs {
			if err := ast.Check(s.Type == ast.BoolType, ast.ErrTypeMismatch,
				"%s is %s, not Boolean", s, s.Type); err != nil {
				return nil, err
			}
		}
		switch e.Kind {
		case ast.RImplicationKind:
			return ast.Implies(subs[1], subs[0]), nil
		case ast.ImplicationKind:
			return ast.Implies(subs[0], subs[1]), nil
		case ast.EquivalenceKind:
			return ast.Equiv(subs[0], subs[1]), nil
		}
		return ast.NewOperator(e.Kind, e.Operators, subs...), nil
	case ast.ComparisonKind:
		return comparison(e, subs)
	}
	for _, s := range subs {
		if err := ast.Check(ast.IsNumeric(s.Type) || s.Type == ast.DateType, ast.ErrTypeMismatch,
			"%s is %s, not a number", s, s.Type); err != nil {
			return nil, err
		}
	}
	return ast.NewOperator(e.Kind, e.Operators, subs...), nil
}

func comparison(e *ast.Expr, subs []*ast.Expr) (*ast.Expr, error) {
	for i := 1; i < len(subs); i++ {
		if err := ast.Check(compatible(subs[i-1].Type, subs[i].Type), ast.ErrTypeMismatch,
			"cannot compare %s of type %s with %s of type %s",
			subs[i-1], subs[i-1].Type, subs[i], subs[i].Type); err != nil {
			return nil, err
		}
	}
	hasNe := false
	for _, op := range e.Operators {
		if op == ast.OpNe {
			hasNe = true
		}
	}
	if !hasNe {
		return ast.NewOperator(ast.ComparisonKind, e.Operators, subs...), nil
	}
	pairs := make([]*ast.Expr, len(e.Operators))
	for i, op := range e.Operators {
		if op == ast.OpNe {
			pairs[i] = ast.Not(ast.Equals(subs[i], subs[i+1]))
			continue
		}
		pairs[i] = ast.Comparison(op, subs[i], subs[i+1])
	}
	return ast.And(pairs...), nil
}
