package annotate

import (
	"maps"

	"github.com/signadot/fodot/ast"
)

// Scope is the context an expression is annotated in.
type Scope struct {
	Voc *ast.Vocabulary
	// Bound maps the names of the variables bound around the expression to
	// their Variable nodes.
	Bound map[string]*ast.Expr
}

func NewScope(voc *ast.Vocabulary) *Scope {
	return &Scope{Voc: voc, Bound: map[string]*ast.Expr{}}
}

// With returns a scope where vars are bound in addition to (or instead
// of) the variables of sc.
func (sc *Scope) With(vars ...*ast.Expr) *Scope {
	bound := maps.Clone(sc.Bound)
	if bound == nil {
		bound = map[string]*ast.Expr{}
	}
	for _, v := range vars {
		bound[v.Name] = v
	}
	return &Scope{Voc: sc.Voc, Bound: bound}
}
