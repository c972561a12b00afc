// Package sat hands the propositional part of a grounded theory to the
// gini SAT solver.
//
// Formulas built from Boolean atoms, connectives, Boolean if-then-else
// and equalities between Booleans are translated to a gini circuit. Every
// other ground formula must be handled by a richer solver.
package sat

import (
	"errors"
	"fmt"

	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
	"github.com/signadot/fodot/ast"
	"github.com/signadot/fodot/debug"
)

var ErrNotPropositional = errors.New("not propositional")

// Problem is a set of formulas over Boolean atoms.
type Problem struct {
	c     *logic.C
	atoms map[string]z.Lit
	order []*ast.Expr
	roots []z.Lit
}

// Translate builds the problem asserting every formula.
func Translate(formulas []*ast.Expr) (*Problem, error) {
	p := &Problem{
		c:     logic.NewC(),
		atoms: map[string]z.Lit{},
	}
	for _, f := range formulas {
		m, err := p.build(f)
		if err != nil {
			return nil, err
		}
		p.roots = append(p.roots, m)
	}
	if debug.Ground() {
		debug.Logf("sat problem: %d formulas over %d atoms\n", len(p.roots), len(p.order))
	}
	return p, nil
}

// Atoms returns the atoms of the problem in the order they were met.
func (p *Problem) Atoms() []*ast.Expr {
	return p.order
}

func (p *Problem) atom(e *ast.Expr) z.Lit {
	code := e.Code()
	if m, ok := p.atoms[code]; ok {
		return m
	}
	m := p.c.Lit()
	p.atoms[code] = m
	p.order = append(p.order, e)
	return m
}

func (p *Problem) build(e *ast.Expr) (z.Lit, error) {
	if v, ok := ast.Truth(e); ok {
		if v {
			return p.c.T, nil
		}
		return p.c.F, nil
	}
	if e.Type != ast.BoolType {
		return 0, fmt.Errorf("%w: %s is %s", ErrNotPropositional, e, e.Type)
	}
	switch e.Kind {
	case ast.AppliedSymbolKind:
		if !e.IsGround() {
			return 0, fmt.Errorf("%w: %s is not ground", ErrNotPropositional, e)
		}
		return p.atom(e), nil
	case ast.BracketsKind:
		return p.build(e.Subs[0])
	case ast.ConjunctionKind, ast.DisjunctionKind:
		ms, err := p.buildAll(e.Subs)
		if err != nil {
			return 0, err
		}
		if e.Kind == ast.ConjunctionKind {
			return p.c.Ands(ms...), nil
		}
		return p.c.Ors(ms...), nil
	case ast.UnaryKind:
		m, err := p.build(e.Subs[0])
		if err != nil {
			return 0, err
		}
		for _, op := range e.Operators {
			if op != ast.OpNot {
				return 0, fmt.Errorf("%w: %s", ErrNotPropositional, e)
			}
			m = m.Not()
		}
		return m, nil
	case ast.ImplicationKind, ast.EquivalenceKind:
		ms, err := p.buildAll(e.Subs)
		if err != nil {
			return 0, err
		}
		if e.Kind == ast.ImplicationKind {
			return p.c.Ors(ms[0].Not(), ms[1]), nil
		}
		return p.equiv(ms[0], ms[1]), nil
	case ast.IfKind:
		ms, err := p.buildAll(e.Subs)
		if err != nil {
			return 0, err
		}
		return p.c.Ors(p.c.Ands(ms[0], ms[1]), p.c.Ands(ms[0].Not(), ms[2])), nil
	case ast.ComparisonKind:
		for _, s := range e.Subs {
			if s.Type != ast.BoolType {
				return 0, fmt.Errorf("%w: %s compares %s", ErrNotPropositional, e, s.Type)
			}
		}
		ms, err := p.buildAll(e.Subs)
		if err != nil {
			return 0, err
		}
		parts := make([]z.Lit, len(e.Operators))
		for i, op := range e.Operators {
			switch op {
			case ast.OpEq:
				parts[i] = p.equiv(ms[i], ms[i+1])
			case ast.OpNe:
				parts[i] = p.equiv(ms[i], ms[i+1]).Not()
			default:
				return 0, fmt.Errorf("%w: %s orders Booleans", ErrNotPropositional, e)
			}
		}
		return p.c.Ands(parts...), nil
	}
	return 0, fmt.Errorf("%w: %s", ErrNotPropositional, e)
}

func (p *Problem) buildAll(es []*ast.Expr) ([]z.Lit, error) {
	res := make([]z.Lit, len(es))
	for i, e := range es {
		m, err := p.build(e)
		if err != nil {
			return nil, err
		}
		res[i] = m
	}
	return res, nil
}

func (p *Problem) equiv(a, b z.Lit) z.Lit {
	return p.c.Ors(p.c.Ands(a, b), p.c.Ands(a.Not(), b.Not()))
}

// solver returns a gini instance holding the circuit, the formulas and
// the known Boolean values of as, if not nil.
func (p *Problem) solver(as *ast.Assignments) *gini.Gini {
	g := gini.New()
	p.c.ToCnf(g)
	for _, m := range p.roots {
		g.Add(m)
		g.Add(0)
	}
	if as == nil {
		return g
	}
	for _, a := range p.order {
		v, ok := ast.Truth(valueOf(as, a))
		if !ok {
			continue
		}
		m := p.atoms[a.Code()]
		if !v {
			m = m.Not()
		}
		g.Add(m)
		g.Add(0)
	}
	return g
}

func valueOf(as *ast.Assignments, a *ast.Expr) *ast.Expr {
	v := as.Value(a.Code())
	if v == nil {
		return a
	}
	return v
}

// Solve reports whether the formulas, together with the Boolean values
// known in as, are satisfiable, and returns a model by atom code.
func (p *Problem) Solve(as *ast.Assignments) (bool, map[string]bool) {
	g := p.solver(as)
	if g.Solve() != 1 {
		return false, nil
	}
	return true, p.model(g)
}

// Models returns at most max models, max <= 0 meaning all of them.
func (p *Problem) Models(as *ast.Assignments, max int) []map[string]bool {
	g := p.solver(as)
	var res []map[string]bool
	for max <= 0 || len(res) < max {
		if g.Solve() != 1 {
			break
		}
		res = append(res, p.model(g))
		if len(p.order) == 0 {
			break
		}
		// block this model
		for _, a := range p.order {
			m := p.atoms[a.Code()]
			if g.Value(m) {
				m = m.Not()
			}
			g.Add(m)
		}
		g.Add(0)
	}
	return res
}

func (p *Problem) model(g *gini.Gini) map[string]bool {
	res := make(map[string]bool, len(p.order))
	for _, a := range p.order {
		code := a.Code()
		res[code] = g.Value(p.atoms[code])
	}
	return res
}
