package ground

import (
	"fmt"

	set "github.com/hashicorp/go-set/v3"
	"github.com/signadot/fodot/ast"
	"github.com/signadot/fodot/debug"
)

// Grounded is the ground form of a theory.
type Grounded struct {
	// Constraints are the interpreted constraints, in the theory's order.
	Constraints []*ast.Expr
	// Completions are the completions of the symbols defined over finite
	// domains, instantiated over their whole domain.
	Completions []*ast.Expr
}

// Ground interprets the constraints of th and the completions of its
// symbols defined over finite domains. The ground atoms met, and the
// instances of every symbol over a finite domain, are registered in the
// theory's assignments.
func Ground(th *ast.Theory) (*Grounded, error) {
	g := newGrounder(th)
	res := &Grounded{}
	for _, c := range th.Constraints {
		x, err := g.interpret(c)
		if err != nil {
			return nil, err
		}
		if x.IsFalse() {
			return nil, fmt.Errorf("%w: constraint %s is false", ast.ErrValue, c)
		}
		if debug.Ground() {
			debug.Logf("grounded %s\n  as %s\n", c, x)
		}
		res.Constraints = append(res.Constraints, x)
	}
	for _, def := range th.Definitions {
		for _, sd := range def.Symbols() {
			rule := def.Clarks[sd]
			if rule == nil || !rule.IsWholeDomain {
				continue
			}
			x, err := g.wholeDomain(def, rule)
			if err != nil {
				return nil, err
			}
			res.Completions = append(res.Completions, x)
		}
	}
	for _, name := range th.Vocab.SymbolNames() {
		sd, _ := th.Vocab.Symbol(name)
		for _, inst := range sd.Instances() {
			th.Assignments.Extend(inst)
		}
	}
	for _, f := range res.Formulas() {
		registerAtoms(th.Assignments, f)
	}
	return res, nil
}

// wholeDomain returns the conjunction of the co-constraints of a defined
// symbol at every tuple of its domain.
func (g *grounder) wholeDomain(def *ast.Definition, rule *ast.Rule) (*ast.Expr, error) {
	if rule.WholeDomain != nil {
		return rule.WholeDomain, nil
	}
	var parts []*ast.Expr
	for _, inst := range rule.Symbol.Instances() {
		co, err := g.coConstraint(def, rule, inst)
		if err != nil {
			return nil, err
		}
		if co == nil {
			continue
		}
		parts = append(parts, co)
	}
	rule.WholeDomain = Simplify(ast.And(parts...))
	return rule.WholeDomain, nil
}

// Formulas returns the formulas to hand to a solver: the constraints, the
// completions and the co-constraints attached to their atoms, each once.
func (gr *Grounded) Formulas() []*ast.Expr {
	var res []*ast.Expr
	seen := set.New[string](0)
	var add func(e *ast.Expr)
	add = func(e *ast.Expr) {
		if e.IsTrue() || !seen.Insert(e.Code()) {
			return
		}
		res = append(res, e)
		for _, co := range coConstraints(e) {
			add(co)
		}
	}
	for _, c := range gr.Constraints {
		add(c)
	}
	for _, c := range gr.Completions {
		add(c)
	}
	return res
}

func coConstraints(e *ast.Expr) []*ast.Expr {
	var res []*ast.Expr
	e.Visit(func(x *ast.Expr, isPost bool) (bool, error) {
		if !isPost && x.CoConstraint != nil {
			res = append(res, x.CoConstraint)
		}
		return true, nil
	})
	return res
}

func registerAtoms(as *ast.Assignments, e *ast.Expr) {
	e.Visit(func(x *ast.Expr, isPost bool) (bool, error) {
		if isPost || x.Kind != ast.AppliedSymbolKind || !x.IsGround() {
			return true, nil
		}
		if x.IsEnumerated || x.InEnumeration != nil {
			return true, nil
		}
		atom := x.Copy()
		atom.InHead, atom.Value, atom.CoConstraint = false, nil, nil
		as.Extend(atom)
		return true, nil
	})
}

// Propagate asserts that atom has value and substitutes the value in
// formulas. Formulas which reduce to an atom or its negation make that
// atom a consequence, which is propagated in turn.
func Propagate(th *ast.Theory, formulas []*ast.Expr, atom, value *ast.Expr) ([]*ast.Expr, error) {
	if prev := th.Assignments.Value(atom.Code()); prev != nil && !ast.Equal(prev, value) {
		return nil, fmt.Errorf("%w: %s is already %s", ast.ErrValue, atom, prev)
	}
	if _, err := th.Assignments.Assert(atom, value, ast.Given); err != nil {
		return nil, err
	}
	type fact struct{ atom, value *ast.Expr }
	todo := []fact{{atom, value}}
	for len(todo) != 0 {
		f := todo[0]
		todo = todo[1:]
		next := make([]*ast.Expr, 0, len(formulas))
		for _, e := range formulas {
			x, err := Substitute(e, f.atom, f.value, th)
			if err != nil {
				return nil, err
			}
			if x.IsFalse() {
				return nil, fmt.Errorf("%w: %s = %s falsifies %s", ast.ErrValue, f.atom, f.value, e)
			}
			if x.IsTrue() {
				continue
			}
			if a, v, ok := unit(x); ok {
				prev := th.Assignments.Value(a.Code())
				if prev != nil && !ast.Equal(prev, v) {
					return nil, fmt.Errorf("%w: %s must be both %s and %s", ast.ErrValue, a, prev, v)
				}
				if prev == nil {
					if _, err := th.Assignments.Assert(a, v, ast.Consequence); err != nil {
						return nil, err
					}
					if debug.Ground() {
						debug.Logf("consequence %s = %s\n", a, v)
					}
					todo = append(todo, fact{a, v})
				}
				continue
			}
			next = append(next, x)
		}
		formulas = next
	}
	return formulas, nil
}

// unit recognizes a Boolean atom or the negation of one.
func unit(e *ast.Expr) (atom, value *ast.Expr, ok bool) {
	switch {
	case e.Kind == ast.AppliedSymbolKind && e.Type == ast.BoolType && e.IsGround():
		return e, ast.True(), true
	case e.Kind == ast.UnaryKind && e.Operators[0] == ast.OpNot:
		sub := e.Subs[0]
		if sub.Kind == ast.AppliedSymbolKind && sub.Type == ast.BoolType && sub.IsGround() {
			return sub, ast.False(), true
		}
	}
	return nil, nil, false
}
