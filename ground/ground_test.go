package ground

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/fodot/annotate"
	"github.com/signadot/fodot/ast"
)

func testVocab(t *testing.T) *ast.Vocabulary {
	t.Helper()
	voc := ast.NewVocabulary("V",
		&ast.TypeDecl{Name: "Color", Constructors: []*ast.ConstructorDecl{
			{Name: "Red"}, {Name: "Green"}, {Name: "Blue"},
		}},
		&ast.RangeDecl{Name: "Small", Base: ast.IntType, Elements: []ast.RangeElement{
			{From: ast.Int(1), To: ast.Int(3)},
		}},
		&ast.SymbolDecl{Name: "p", Sorts: []string{"Color"}},
		&ast.SymbolDecl{Name: "q"},
		&ast.SymbolDecl{Name: "f", Sorts: []string{"Small"}, Out: ast.IntType},
		&ast.SymbolDecl{Name: "r", Sorts: []string{ast.IntType}},
	)
	if err := annotate.ResolveVocabulary(voc, 0); err != nil {
		t.Fatal(err)
	}
	return voc
}

// testStructure interprets p as {Red} and f as {1 → 5} else 0.
func testStructure(t *testing.T, th *ast.Theory) {
	t.Helper()
	st := ast.NewStructure("S", "V")
	st.Add(&ast.SymbolInterpretation{Name: "p", Enumeration: ast.NewEnumeration(&ast.Tuple{Args: []*ast.Expr{id("Red")}})})
	st.Add(&ast.SymbolInterpretation{Name: "f",
		Enumeration: ast.NewEnumeration(&ast.Tuple{Args: []*ast.Expr{ast.Int(1)}, Value: ast.Int(5)}),
		Default:     ast.Int(0)})
	if err := annotate.Structure(st, th.Vocab); err != nil {
		t.Fatal(err)
	}
	if err := annotate.Attach(th, st); err != nil {
		t.Fatal(err)
	}
}

func id(name string) *ast.Expr {
	return ast.NewUnapplied(name)
}

func app(name string, args ...*ast.Expr) *ast.Expr {
	return &ast.Expr{Kind: ast.AppliedSymbolKind, Name: name, Subs: args}
}

func op(kind ast.Kind, o string, subs ...*ast.Expr) *ast.Expr {
	ops := make([]string, len(subs)-1)
	for i := range ops {
		ops[i] = o
	}
	return &ast.Expr{Kind: kind, Operators: ops, Subs: subs}
}

func not(e *ast.Expr) *ast.Expr {
	return &ast.Expr{Kind: ast.UnaryKind, Operators: []string{ast.OpNot}, Subs: []*ast.Expr{e}}
}

func quant(q string, vars []string, sort string, body *ast.Expr) *ast.Expr {
	qt := &ast.Quantee{Sort: sort}
	for _, v := range vars {
		qt.Vars = append(qt.Vars, id(v))
	}
	return &ast.Expr{Kind: ast.QuantificationKind, Q: q, Quantees: []*ast.Quantee{qt}, Subs: []*ast.Expr{body}}
}

func aggregate(q, v, sort string, cond, out *ast.Expr) *ast.Expr {
	e := &ast.Expr{Kind: ast.AggregateKind, Q: q, Out: out,
		Quantees: []*ast.Quantee{{Vars: []*ast.Expr{id(v)}, Sort: sort}}}
	if cond != nil {
		e.Subs = []*ast.Expr{cond}
	}
	return e
}

func annotated(t *testing.T, voc *ast.Vocabulary, raw *ast.Expr) *ast.Expr {
	t.Helper()
	e, err := annotate.Expr(raw, annotate.NewScope(voc))
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestInterpret(t *testing.T) {
	pairs := &ast.Expr{Kind: ast.QuantificationKind, Q: ast.Forall,
		Quantees: []*ast.Quantee{{Vars: []*ast.Expr{id("x"), id("y")}, Set: []*ast.Expr{ast.Int(1), ast.Int(2)}}},
		Subs:     []*ast.Expr{app("r", op(ast.SumMinusKind, ast.OpAdd, id("x"), id("y")))}}
	tests := []struct {
		name      string
		in        *ast.Expr
		structure bool
		want      string
	}{
		{"forall", quant(ast.Forall, []string{"c"}, "Color", app("p", id("c"))), false,
			"p(Red) ∧ p(Green) ∧ p(Blue)"},
		{"exists", quant(ast.Exists, []string{"c"}, "Color", app("p", id("c"))), false,
			"p(Red) ∨ p(Green) ∨ p(Blue)"},
		{"unbounded", quant(ast.Forall, []string{"x"}, ast.IntType, app("r", id("x"))), false,
			"∀x ∈ Int: r(x)"},
		{"left to right", pairs, false, "r(2) ∧ r(3) ∧ r(3) ∧ r(4)"},
		{"range", quant(ast.Forall, []string{"x"}, "Small", op(ast.ComparisonKind, ast.OpGt, app("f", id("x")), ast.Int(0))), false,
			"(f(1) > 0) ∧ (f(2) > 0) ∧ (f(3) > 0)"},
		{"predicate quantee", quant(ast.Forall, []string{"c"}, "p", id("q")), false,
			"(p(Red) ⇒ q()) ∧ (p(Green) ⇒ q()) ∧ (p(Blue) ⇒ q())"},
		{"count", aggregate(ast.AggCount, "c", "Color", app("p", id("c")), nil), false,
			"(if p(Red) then 1 else 0) + (if p(Green) then 1 else 0) + (if p(Blue) then 1 else 0)"},

		{"forall in structure", quant(ast.Forall, []string{"c"}, "Color", app("p", id("c"))), true, "false"},
		{"exists in structure", quant(ast.Exists, []string{"c"}, "Color", app("p", id("c"))), true, "true"},
		{"range in structure", quant(ast.Forall, []string{"x"}, "Small", op(ast.ComparisonKind, ast.OpGt, app("f", id("x")), ast.Int(0))), true,
			"false"},
		{"interpreted predicate quantee", quant(ast.Forall, []string{"c"}, "p", id("q")), true, "q()"},
		{"count in structure", aggregate(ast.AggCount, "c", "Color", app("p", id("c")), nil), true, "1"},
		{"sum in structure", aggregate(ast.AggSum, "x", "Small", nil, app("f", id("x"))), true, "5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			voc := testVocab(t)
			th := ast.NewTheory("T", voc)
			if tt.structure {
				testStructure(t, th)
			}
			e := annotated(t, voc, tt.in)
			before := e.Code()
			got, err := Interpret(e, th)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got.Code()); diff != "" {
				t.Errorf("(-want +got)\n%s", diff)
			}
			if e.Code() != before {
				t.Errorf("input changed from %s to %s", before, e)
			}
		})
	}
}

func TestInstantiate(t *testing.T) {
	voc := testVocab(t)
	th := ast.NewTheory("T", voc)
	r, _ := voc.Symbol("r")
	x := ast.NewVariable("x", ast.IntType, nil)
	e := ast.NewApplied("r", r, ast.Sum(x, ast.Int(1)))

	got, err := Instantiate(e, x, ast.Int(2), nil)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff("r(2 + 1)", got.Code()); diff != "" {
		t.Errorf("pure (-want +got)\n%s", diff)
	}
	if !got.IsGround() || e.IsGround() {
		t.Errorf("ground: got %v, input %v", got.IsGround(), e.IsGround())
	}
	again, err := Instantiate(got, x, ast.Int(2), nil)
	if err != nil {
		t.Fatal(err)
	}
	if again != got {
		t.Errorf("instantiating an absent variable made a new tree %s", again)
	}

	got, err = Instantiate(e, x, ast.Int(2), th)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff("r(3)", got.Code()); diff != "" {
		t.Errorf("interpreted (-want +got)\n%s", diff)
	}
	if diff := cmp.Diff("r(x + 1)", e.Code()); diff != "" {
		t.Errorf("input (-want +got)\n%s", diff)
	}

	_, err = Instantiate(e, ast.Int(1), ast.Int(2), nil)
	if !errors.Is(err, ast.ErrTypeMismatch) {
		t.Errorf("instantiating a literal: got %v", err)
	}
}

func TestSubstitute(t *testing.T) {
	voc := testVocab(t)
	th := ast.NewTheory("T", voc)
	e := annotated(t, voc, op(ast.ImplicationKind, ast.OpImplies, app("p", id("Red")), id("q")))
	pRed := annotated(t, voc, app("p", id("Red")))

	got, err := Substitute(e, pRed, ast.True(), th)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff("q()", got.Code()); diff != "" {
		t.Errorf("(-want +got)\n%s", diff)
	}
	got, err = Substitute(e, pRed, ast.True(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff("true ⇒ q()", got.Code()); diff != "" {
		t.Errorf("without theory (-want +got)\n%s", diff)
	}
	back, err := Substitute(got, ast.True(), pRed, nil)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(e.Code(), back.Code()); diff != "" {
		t.Errorf("round trip (-want +got)\n%s", diff)
	}

	x := ast.NewVariable("x", ast.IntType, nil)
	if _, err := Substitute(e, x, ast.Int(1), th); !errors.Is(err, ast.ErrTypeMismatch) {
		t.Errorf("substituting a variable: got %v", err)
	}
	r, _ := voc.Symbol("r")
	if _, err := Substitute(e, ast.NewApplied("r", r, x), ast.True(), th); !errors.Is(err, ast.ErrTypeMismatch) {
		t.Errorf("substituting a term with free variables: got %v", err)
	}
}

func TestSimplify(t *testing.T) {
	q := ast.NewApplied("q", &ast.SymbolDecl{Name: "q"})
	n := ast.Int
	real7, _ := ast.ParseNumber("7.0")
	jan1, _ := ast.ParseDate("#2024-01-01")
	feb1, _ := ast.ParseDate("#2024-02-01")
	arith := func(kind ast.Kind, ops []string, subs ...*ast.Expr) *ast.Expr {
		return ast.NewOperator(kind, ops, subs...)
	}
	tests := []struct {
		name string
		in   *ast.Expr
		want string
	}{
		{"and drops true", ast.And(ast.True(), q), "q()"},
		{"and absorbs false", ast.And(q, ast.False()), "false"},
		{"or absorbs true", ast.Or(q, ast.True()), "true"},
		{"or drops false", ast.Or(ast.False(), q), "q()"},
		{"implies false", ast.Implies(q, ast.False()), "¬q()"},
		{"true implies", ast.Implies(ast.True(), q), "q()"},
		{"equivalence with itself", ast.Equiv(q, q), "true"},
		{"equivalence with false", ast.Equiv(q, ast.False()), "¬q()"},
		{"double negation", ast.Not(ast.Not(q)), "q()"},
		{"if true", ast.If(ast.True(), n(1), n(2)), "1"},
		{"if same branches", ast.If(q, n(1), n(1)), "1"},
		{"symbolic if", ast.If(q, n(1), n(2)), "if q() then 1 else 2"},
		{"negative", ast.NewUnary([]string{ast.OpSub}, n(2)), "-2"},
		{"sum", arith(ast.SumMinusKind, []string{ast.OpAdd, ast.OpSub}, n(1), n(2), n(4)), "-1"},
		{"int division", arith(ast.MultDivKind, []string{ast.OpDiv}, n(7), n(2)), "3"},
		{"euclidean division", arith(ast.MultDivKind, []string{ast.OpDiv}, n(-7), n(2)), "-4"},
		{"real division", arith(ast.MultDivKind, []string{ast.OpDiv}, real7, n(2)), "7/2"},
		{"modulo", arith(ast.MultDivKind, []string{ast.OpMod}, n(7), n(3)), "1"},
		{"division by zero", arith(ast.MultDivKind, []string{ast.OpDiv}, n(1), n(0)), "1 / 0"},
		{"power", arith(ast.PowerKind, []string{ast.OpPow, ast.OpPow}, n(2), n(3), n(2)), "512"},
		{"date plus days", arith(ast.SumMinusKind, []string{ast.OpAdd}, jan1, n(1)), "#2024-01-02"},
		{"days between", arith(ast.SumMinusKind, []string{ast.OpSub}, feb1, jan1), "31"},
		{"chain", arith(ast.ComparisonKind, []string{ast.OpLt, ast.OpLt}, n(1), n(2), n(3)), "true"},
		{"broken chain", arith(ast.ComparisonKind, []string{ast.OpLt, ast.OpLe}, n(1), n(3), n(2)), "false"},
		{"same term", ast.Equals(q, q), "true"},
		{"constructors", ast.Equals(ast.NewConstructor("Red", "Color"), ast.NewConstructor("Blue", "Color")), "false"},
		{"symbolic", ast.Comparison(ast.OpLt, q, n(1)), "q() < 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Simplify(tt.in).Code()); diff != "" {
				t.Errorf("(-want +got)\n%s", diff)
			}
		})
	}
}

func TestGround(t *testing.T) {
	voc := testVocab(t)
	th := ast.NewTheory("T", voc)
	th.Constraints = []*ast.Expr{
		annotated(t, voc, quant(ast.Forall, []string{"c"}, "Color", op(ast.ImplicationKind, ast.OpImplies, app("p", id("c")), id("q")))),
		annotated(t, voc, quant(ast.Exists, []string{"x"}, ast.IntType, app("r", id("x")))),
	}
	gr, err := Ground(th)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, f := range gr.Formulas() {
		got = append(got, f.Code())
	}
	want := []string{
		"(p(Red) ⇒ q()) ∧ (p(Green) ⇒ q()) ∧ (p(Blue) ⇒ q())",
		"∃x ∈ Int: r(x)",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("formulas (-want +got)\n%s", diff)
	}
	var atoms []string
	for _, a := range th.Assignments.All() {
		atoms = append(atoms, a.Sentence.Code())
	}
	wantAtoms := []string{"p(Red)", "p(Green)", "p(Blue)", "q()", "f(1)", "f(2)", "f(3)"}
	if diff := cmp.Diff(wantAtoms, atoms); diff != "" {
		t.Errorf("atoms (-want +got)\n%s", diff)
	}

	th = ast.NewTheory("T", voc)
	testStructure(t, th)
	th.Constraints = []*ast.Expr{annotated(t, voc, quant(ast.Forall, []string{"c"}, "Color", app("p", id("c"))))}
	if _, err := Ground(th); !errors.Is(err, ast.ErrValue) {
		t.Errorf("false constraint: got %v, want %v", err, ast.ErrValue)
	}
}

func TestPropagate(t *testing.T) {
	voc := testVocab(t)
	th := ast.NewTheory("T", voc)
	formulas := []*ast.Expr{
		annotated(t, voc, op(ast.ImplicationKind, ast.OpImplies, app("p", id("Red")), id("q"))),
		annotated(t, voc, op(ast.DisjunctionKind, ast.OpOr, not(id("q")), app("p", id("Green")))),
		annotated(t, voc, op(ast.DisjunctionKind, ast.OpOr, app("p", id("Blue")), id("q"))),
	}
	pRed := annotated(t, voc, app("p", id("Red")))
	rest, err := Propagate(th, formulas, pRed, ast.True())
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 0 {
		t.Errorf("formulas left: %v", rest)
	}
	var got []string
	for _, a := range th.Assignments.All() {
		got = append(got, a.String())
	}
	want := []string{
		"p(Red): true (GIVEN)",
		"q(): true (CONSEQUENCE)",
		"p(Green): true (CONSEQUENCE)",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got)\n%s", diff)
	}

	th = ast.NewTheory("T", voc)
	_, err = Propagate(th, []*ast.Expr{annotated(t, voc, not(app("p", id("Red"))))}, pRed, ast.True())
	if !errors.Is(err, ast.ErrValue) {
		t.Errorf("conflict: got %v, want %v", err, ast.ErrValue)
	}
}
