package sat

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/fodot/ast"
)

func atom(name string) *ast.Expr {
	return ast.NewApplied(name, &ast.SymbolDecl{Name: name})
}

func TestSolve(t *testing.T) {
	p, q, r := atom("p"), atom("q"), atom("r")
	tests := []struct {
		name     string
		formulas []*ast.Expr
		sat      bool
		model    map[string]bool
	}{
		{
			name:     "implication chain",
			formulas: []*ast.Expr{p, ast.Implies(p, q), ast.Implies(q, ast.Not(r))},
			sat:      true,
			model:    map[string]bool{"p()": true, "q()": true, "r()": false},
		},
		{
			name:     "contradiction",
			formulas: []*ast.Expr{p, ast.Not(p)},
		},
		{
			name:     "equivalence",
			formulas: []*ast.Expr{ast.Equiv(p, ast.Not(q)), q},
			sat:      true,
			model:    map[string]bool{"p()": false, "q()": true},
		},
		{
			name:     "boolean equality",
			formulas: []*ast.Expr{ast.Comparison(ast.OpNe, p, q), ast.Not(q)},
			sat:      true,
			model:    map[string]bool{"p()": true, "q()": false},
		},
		{
			name:     "if",
			formulas: []*ast.Expr{ast.If(p, q, r), ast.Not(p), ast.Not(r)},
		},
		{
			name:     "literals",
			formulas: []*ast.Expr{ast.Or(ast.False(), p), ast.True()},
			sat:      true,
			model:    map[string]bool{"p()": true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prob, err := Translate(tt.formulas)
			if err != nil {
				t.Fatal(err)
			}
			ok, model := prob.Solve(nil)
			if ok != tt.sat {
				t.Fatalf("satisfiable %v, want %v", ok, tt.sat)
			}
			if diff := cmp.Diff(tt.model, model); diff != "" {
				t.Errorf("model (-want +got)\n%s", diff)
			}
		})
	}
}

func TestSolveAssignments(t *testing.T) {
	p, q := atom("p"), atom("q")
	prob, err := Translate([]*ast.Expr{ast.Or(p, q)})
	if err != nil {
		t.Fatal(err)
	}
	as := ast.NewAssignments()
	if _, err := as.Assert(p, ast.False(), ast.Given); err != nil {
		t.Fatal(err)
	}
	ok, model := prob.Solve(as)
	if !ok || !model["q()"] {
		t.Errorf("got %v %v", ok, model)
	}
	if _, err := as.Assert(q, ast.False(), ast.Given); err != nil {
		t.Fatal(err)
	}
	if ok, _ := prob.Solve(as); ok {
		t.Error("p ∨ q satisfiable with both false")
	}
}

func TestModels(t *testing.T) {
	p, q := atom("p"), atom("q")
	prob, err := Translate([]*ast.Expr{ast.Or(p, q)})
	if err != nil {
		t.Fatal(err)
	}
	if n := len(prob.Models(nil, 0)); n != 3 {
		t.Errorf("%d models, want 3", n)
	}
	if n := len(prob.Models(nil, 2)); n != 2 {
		t.Errorf("%d models, want 2", n)
	}
	atoms := []string{}
	for _, a := range prob.Atoms() {
		atoms = append(atoms, a.Code())
	}
	if diff := cmp.Diff([]string{"p()", "q()"}, atoms); diff != "" {
		t.Errorf("atoms (-want +got)\n%s", diff)
	}
}

func TestNotPropositional(t *testing.T) {
	f := ast.NewApplied("f", &ast.SymbolDecl{Name: "f", Out: ast.IntType})
	x := ast.NewVariable("x", ast.BoolType, nil)
	tests := []struct {
		name string
		in   *ast.Expr
	}{
		{"numeric comparison", ast.Comparison(ast.OpGt, f, ast.Int(1))},
		{"ordered booleans", ast.Comparison(ast.OpLt, atom("p"), atom("q"))},
		{"number", f},
		{"free variable", ast.NewApplied("p", &ast.SymbolDecl{Name: "p", Sorts: []string{ast.BoolType}}, x)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Translate([]*ast.Expr{tt.in})
			if !errors.Is(err, ErrNotPropositional) {
				t.Errorf("got %v", err)
			}
		})
	}
}
