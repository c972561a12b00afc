package ground

import (
	"github.com/signadot/fodot/ast"
	"github.com/signadot/fodot/debug"
)

type grounder struct {
	th *ast.Theory
	// pure instantiates without interpreting.
	pure *grounder
}

func newGrounder(th *ast.Theory) *grounder {
	g := &grounder{th: th}
	if th == nil {
		g.pure = g
	} else {
		g.pure = &grounder{}
		g.pure.pure = g.pure
	}
	return g
}

// Interpret grounds e in th: quantifiers and aggregates over finite
// domains are expanded, applications take the values the structure and
// the assignments give them, ground applications of defined symbols get
// their co-constraint, and constants are folded. Quantifiers over
// unbounded domains are kept.
func Interpret(e *ast.Expr, th *ast.Theory) (*ast.Expr, error) {
	g := newGrounder(th)
	res, err := g.interpret(e)
	if err != nil {
		return nil, err
	}
	if debug.Ground() {
		debug.Logf("interpreted %s as %s\n", e, res)
	}
	return res, nil
}

func (g *grounder) interpret(e *ast.Expr) (*ast.Expr, error) {
	switch e.Kind {
	case ast.NumberKind, ast.DateKind, ast.ConstructorKind, ast.VariableKind, ast.UnappliedSymbolKind:
		return e, nil
	case ast.BracketsKind:
		return g.interpret(e.Subs[0])
	case ast.QuantificationKind, ast.AggregateKind:
		return g.expand(e)
	case ast.AppliedSymbolKind:
		return g.application(e)
	case ast.SymbolExprKind:
		return g.symbolExpr(e)
	}
	res, err := g.subs(e)
	if err != nil {
		return nil, err
	}
	return Simplify(res), nil
}

// subs interprets the sub-expressions of e, returning e when none change.
func (g *grounder) subs(e *ast.Expr) (*ast.Expr, error) {
	var res *ast.Expr
	for i, s := range e.Subs {
		x, err := g.interpret(s)
		if err != nil {
			return nil, err
		}
		if x == s {
			continue
		}
		if res == nil {
			res = e.Copy()
			res.Value, res.Simpler, res.CoConstraint = nil, nil, nil
		}
		res.Subs[i] = x
	}
	if res == nil {
		return e, nil
	}
	return res.SetFresh(), nil
}

func (g *grounder) symbolExpr(e *ast.Expr) (*ast.Expr, error) {
	if len(e.Subs) == 0 {
		return e, nil
	}
	sub, err := g.interpret(e.Subs[0])
	if err != nil {
		return nil, err
	}
	if lit := sub.AsLiteral(); lit != nil && lit.Type == ast.SymbolType && g.th != nil {
		if sd, ok := g.th.Vocab.Symbol(lit.Name); ok {
			return ast.NewSymbolExpr(sd.Name, sd), nil
		}
	}
	res := e.Copy()
	res.Subs[0] = sub
	return res.SetFresh(), nil
}

// domain returns the values a quantee ranges over. guard is set when the
// quantee is a unary predicate whose membership must be tested for each
// value.
func (g *grounder) domain(q *ast.Quantee) (dom []*ast.Expr, guard *ast.SymbolDecl, finite bool) {
	if q.Set != nil {
		return q.Set, nil, true
	}
	sd, ok := q.Decl.(*ast.SymbolDecl)
	if !ok {
		dom, finite = ast.Domain(q.Decl)
		return dom, nil, finite
	}
	if g.th != nil {
		if si, ok := g.th.Interpretations[sd.Name]; ok && !si.IsFunction() {
			for _, t := range si.Enumeration.Tuples {
				dom = append(dom, t.Args[0])
			}
			return dom, nil, true
		}
	}
	dom, finite = ast.Domain(sd)
	return dom, sd, finite
}

// expand grounds a quantification or an aggregate, one variable at a time
// from left to right. Variables over unbounded domains stay quantified.
func (g *grounder) expand(e *ast.Expr) (*ast.Expr, error) {
	instances := []*ast.Expr{e.Subs[0]}
	var open []*ast.Quantee
	for _, q := range e.Quantees {
		dom, guard, finite := g.domain(q)
		if !finite {
			open = append(open, q)
			continue
		}
		for _, v := range q.Vars {
			next := make([]*ast.Expr, 0, len(instances)*len(dom))
			for _, inst := range instances {
				for _, d := range dom {
					x, err := g.pure.instantiate(inst, v.Name, d)
					if err != nil {
						return nil, err
					}
					if guard != nil {
						x = guarded(e, ast.NewApplied(guard.Name, guard, d), x)
					}
					next = append(next, x)
				}
			}
			instances = next
		}
	}
	for i, inst := range instances {
		x, err := g.interpret(inst)
		if err != nil {
			return nil, err
		}
		instances[i] = x
	}
	var res *ast.Expr
	switch {
	case e.Kind == ast.AggregateKind:
		res = Simplify(ast.Sum(instances...))
	case e.Q == ast.Forall:
		res = Simplify(ast.And(instances...))
	default:
		res = Simplify(ast.Or(instances...))
	}
	if len(open) == 0 {
		return res, nil
	}
	if debug.Ground() {
		debug.Logf("keeping unbounded %s over %v\n", e.Q, open[0].Names())
	}
	if e.Kind == ast.AggregateKind {
		return ast.NewAggregate(e.Q, open, res), nil
	}
	return ast.NewQuantification(e.Q, open, res), nil
}

func guarded(e, member, x *ast.Expr) *ast.Expr {
	switch {
	case e.Kind == ast.AggregateKind:
		zero := ast.Int(0)
		if x.Type == ast.RealType {
			zero = ast.NewNumber(new(ast.Rat), ast.RealType)
		}
		return ast.If(member, x, zero)
	case e.Q == ast.Forall:
		return ast.Implies(member, x)
	}
	return ast.And(member, x)
}

func (g *grounder) application(e *ast.Expr) (*ast.Expr, error) {
	res, err := g.subs(e)
	if err != nil {
		return nil, err
	}
	sd, ok := e.Decl.(*ast.SymbolDecl)
	if g.th == nil || !ok || res.InHead {
		return res, nil
	}
	switch {
	case res.IsEnumerated:
		return g.isEnumerated(res, sd), nil
	case res.InEnumeration != nil:
		return g.inEnumeration(res)
	}
	if si, ok := g.th.Interpretations[sd.Name]; ok {
		v := si.InterpretApplication(res)
		if lit := v.AsLiteral(); lit != nil {
			if debug.Enum() {
				debug.Logf("%s is %s in the structure\n", res, lit)
			}
			return lit, nil
		}
		if v != res {
			return fold(v), nil
		}
	}
	if !res.IsGround() {
		return res, nil
	}
	if v := g.th.Assignments.Value(res.Code()); v != nil {
		return v, nil
	}
	if def, rule, ok := g.th.Defined(sd); ok && inDomain(sd, res.Subs) {
		co, err := g.coConstraint(def, rule, res)
		if err != nil {
			return nil, err
		}
		if co != nil {
			if res == e {
				res = e.Copy()
			}
			res.CoConstraint = co
		}
	}
	return res, nil
}

// coConstraint instantiates the completion of a defined symbol at the
// arguments of app. Each instance is built once per definition.
func (g *grounder) coConstraint(def *ast.Definition, rule *ast.Rule, app *ast.Expr) (*ast.Expr, error) {
	return def.Instance(rule.Symbol, app.Subs, func() (*ast.Expr, error) {
		arity := rule.Symbol.Arity()
		body := rule.Body
		for i := 0; i < arity; i++ {
			x, err := g.pure.instantiate(body, rule.Args[i].Name, app.Subs[i])
			if err != nil {
				return nil, err
			}
			body = x
		}
		head := app.Copy()
		head.InHead = true
		head.Value, head.CoConstraint = nil, nil
		var co *ast.Expr
		if rule.IsFunction() {
			x, err := g.pure.instantiate(body, rule.Args[arity].Name, head)
			if err != nil {
				return nil, err
			}
			co = x
		} else {
			co = ast.Equiv(head, body)
		}
		if debug.Ground() {
			debug.Logf("co-constraint of %s: %s\n", app, co)
		}
		return g.interpret(co)
	})
}

// inDomain reports whether args lie in the argument sorts of sd. Sorts
// that are not finite contain every value.
func inDomain(sd *ast.SymbolDecl, args []*ast.Expr) bool {
	for i, d := range sd.SortDecls {
		dom, finite := ast.Domain(d)
		lit := args[i].AsLiteral()
		if !finite || lit == nil {
			continue
		}
		found := false
		for _, v := range dom {
			if ast.Equal(v.AsLiteral(), lit) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (g *grounder) isEnumerated(app *ast.Expr, sd *ast.SymbolDecl) *ast.Expr {
	si, ok := g.th.Interpretations[sd.Name]
	if !ok {
		return ast.False()
	}
	if !si.IsFunction() || si.Default != nil {
		return ast.True()
	}
	return fold(si.Enumeration.Contains(app.Subs, false))
}

func (g *grounder) inEnumeration(app *ast.Expr) (*ast.Expr, error) {
	term := app.Copy()
	term.InEnumeration = nil
	term.Type = app.Decl.(*ast.SymbolDecl).OutType()
	v, err := g.application(term)
	if err != nil {
		return nil, err
	}
	return fold(app.InEnumeration.Contains([]*ast.Expr{v}, false)), nil
}

// fold simplifies e bottom up without interpreting applications.
func fold(e *ast.Expr) *ast.Expr {
	if len(e.Subs) == 0 || e.Kind == ast.AppliedSymbolKind {
		return e
	}
	var res *ast.Expr
	for i, s := range e.Subs {
		x := fold(s)
		if x == s {
			continue
		}
		if res == nil {
			res = e.Copy()
		}
		res.Subs[i] = x
	}
	if res == nil {
		return Simplify(e)
	}
	return Simplify(res.SetFresh())
}
