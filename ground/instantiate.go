package ground

import (
	"fmt"

	"github.com/signadot/fodot/ast"
)

// Instantiate replaces the free variable v of e by val. The result is a
// new tree; e is not modified. When th is not nil, applications which
// become ground (and are not in the head of a rule) are interpreted right
// away.
//
// Instantiating a variable e does not contain returns e.
func Instantiate(e, v, val *ast.Expr, th *ast.Theory) (*ast.Expr, error) {
	if v.Kind != ast.VariableKind {
		return nil, fmt.Errorf("%w: cannot instantiate %s, which is not a variable", ast.ErrTypeMismatch, v)
	}
	g := newGrounder(th)
	return g.instantiate(e, v.Name, val)
}

func (g *grounder) instantiate(e *ast.Expr, name string, val *ast.Expr) (*ast.Expr, error) {
	if !e.HasFresh(name) {
		return e, nil
	}
	if e.Kind == ast.VariableKind {
		return val, nil
	}
	res := e.Copy()
	res.Value, res.Simpler = nil, nil
	for i, s := range e.Subs {
		x, err := g.instantiate(s, name, val)
		if err != nil {
			return nil, err
		}
		res.Subs[i] = x
	}
	if e.Out != nil {
		x, err := g.instantiate(e.Out, name, val)
		if err != nil {
			return nil, err
		}
		res.Out = x
	}
	res.SetFresh()
	if g.th != nil && res.IsGround() && res.Kind == ast.AppliedSymbolKind && !res.InHead {
		return g.interpret(res)
	}
	return res, nil
}

// Substitute replaces every sub-expression of e with the code of e0 by e1.
// e0 must be ground and not a variable: variables are replaced with
// Instantiate. When th is not nil the rewritten nodes are simplified.
func Substitute(e, e0, e1 *ast.Expr, th *ast.Theory) (*ast.Expr, error) {
	if err := ast.Check(e0.Kind != ast.VariableKind, ast.ErrTypeMismatch,
		"cannot substitute variable %s, instantiate it", e0); err != nil {
		return nil, err
	}
	if err := ast.Check(e0.IsGround(), ast.ErrTypeMismatch,
		"cannot substitute %s, which is not ground", e0); err != nil {
		return nil, err
	}
	return substitute(e, e0.Code(), e1, th != nil), nil
}

func substitute(e *ast.Expr, code string, e1 *ast.Expr, simplify bool) *ast.Expr {
	if e.Code() == code {
		return e1
	}
	if len(e.Subs) == 0 {
		return e
	}
	var res *ast.Expr
	for i, s := range e.Subs {
		x := substitute(s, code, e1, simplify)
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
		return e
	}
	res.SetFresh()
	if simplify {
		return Simplify(res)
	}
	return res
}
