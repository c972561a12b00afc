package annotate

import (
	"errors"
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"
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
	if err := ResolveVocabulary(voc, 0); err != nil {
		t.Fatal(err)
	}
	return voc
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

func forall(v, sort string, body *ast.Expr) *ast.Expr {
	return &ast.Expr{
		Kind:     ast.QuantificationKind,
		Q:        ast.Forall,
		Quantees: []*ast.Quantee{{Vars: []*ast.Expr{id(v)}, Sort: sort}},
		Subs:     []*ast.Expr{body},
	}
}

func TestResolveVocabulary(t *testing.T) {
	voc := testVocab(t)
	small, _ := voc.Lookup("Small")
	var rng []string
	for _, v := range small.(*ast.RangeDecl).Range {
		rng = append(rng, v.Code())
	}
	if diff := cmp.Diff([]string{"1", "2", "3"}, rng); diff != "" {
		t.Errorf("range (-want +got)\n%s", diff)
	}

	sym, _ := voc.Lookup(ast.SymbolType)
	var syms []string
	for _, c := range sym.(*ast.TypeDecl).Constructors {
		syms = append(syms, c.Symbol.Code())
	}
	if diff := cmp.Diff([]string{"`p", "`q", "`f", "`r"}, syms); diff != "" {
		t.Errorf("Symbol (-want +got)\n%s", diff)
	}

	red, _ := voc.Lookup("Red")
	if c, ok := red.(*ast.ConstructorDecl); !ok || c.Type != "Color" {
		t.Errorf("Red resolved to %#v", red)
	}

	err := ResolveVocabulary(voc, 0)
	if !errors.Is(err, ast.ErrDuplicateDeclaration) {
		t.Errorf("second resolve: got %v, want %v", err, ast.ErrDuplicateDeclaration)
	}
}

func TestResolveVocabularyErrors(t *testing.T) {
	tests := []struct {
		name  string
		decls []ast.Declaration
		err   error
	}{
		{"duplicate symbol",
			[]ast.Declaration{&ast.SymbolDecl{Name: "p"}, &ast.SymbolDecl{Name: "p"}},
			ast.ErrDuplicateDeclaration},
		{"constructor collision",
			[]ast.Declaration{
				&ast.SymbolDecl{Name: "Red"},
				&ast.TypeDecl{Name: "Color", Constructors: []*ast.ConstructorDecl{{Name: "Red"}}},
			},
			ast.ErrDuplicateDeclaration},
		{"unknown sort",
			[]ast.Declaration{&ast.SymbolDecl{Name: "p", Sorts: []string{"Shape"}}},
			ast.ErrUnresolvedSymbol},
		{"symbol as sort",
			[]ast.Declaration{&ast.SymbolDecl{Name: "q"}, &ast.SymbolDecl{Name: "p", Sorts: []string{"q"}}},
			ast.ErrTypeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ResolveVocabulary(ast.NewVocabulary("V", tt.decls...), 0)
			if !errors.Is(err, tt.err) {
				t.Errorf("got %v, want %v", err, tt.err)
			}
		})
	}
}

func TestLargeRangeIsNotExpanded(t *testing.T) {
	d := &ast.RangeDecl{Name: "Big", Base: ast.IntType, Elements: []ast.RangeElement{
		{From: ast.Int(0), To: ast.Int(100)},
	}}
	voc := ast.NewVocabulary("V", d)
	if err := ResolveVocabulary(voc, 10); err != nil {
		t.Fatal(err)
	}
	if d.Finite {
		t.Errorf("range of 101 values expanded with a limit of 10")
	}
}

func TestExpr(t *testing.T) {
	red := id("Red")
	tests := []struct {
		name string
		in   *ast.Expr
		want string
		typ  string
	}{
		{"forall", forall("c", "Color", app("p", id("c"))), "∀c ∈ Color: p(c)", ast.BoolType},
		{"inferred sort", forall("c", "", app("p", id("c"))), "∀c ∈ Color: p(c)", ast.BoolType},
		{"inferred from constructor",
			forall("c", "", op(ast.ComparisonKind, ast.OpEq, id("c"), red)),
			"∀c ∈ Color: c = Red", ast.BoolType},
		{"not equal",
			forall("c", "Color", op(ast.ConjunctionKind, ast.OpAnd, app("p", id("c")), op(ast.ComparisonKind, ast.OpNe, id("c"), red))),
			"∀c ∈ Color: p(c) ∧ ¬(c = Red)", ast.BoolType},
		{"not equal chain",
			&ast.Expr{Kind: ast.ComparisonKind, Operators: []string{ast.OpLt, ast.OpNe}, Subs: []*ast.Expr{ast.Int(1), app("f", ast.Int(1)), ast.Int(3)}},
			"(1 < f(1)) ∧ ¬(f(1) = 3)", ast.BoolType},
		{"reversed implication", op(ast.RImplicationKind, ast.OpImpliedBy, id("q"), app("p", red)), "p(Red) ⇒ q()", ast.BoolType},
		{"double negation", &ast.Expr{Kind: ast.UnaryKind, Operators: []string{ast.OpNot, ast.OpNot}, Subs: []*ast.Expr{id("q")}}, "q()", ast.BoolType},
		{"triple negation", &ast.Expr{Kind: ast.UnaryKind, Operators: []string{ast.OpNot, ast.OpNot, ast.OpNot}, Subs: []*ast.Expr{id("q")}}, "¬q()", ast.BoolType},
		{"brackets", &ast.Expr{Kind: ast.BracketsKind, Subs: []*ast.Expr{id("q")}}, "q()", ast.BoolType},
		{"int sum", op(ast.SumMinusKind, ast.OpAdd, app("f", ast.Int(1)), ast.Int(1)), "f(1) + 1", ast.IntType},
		{"real sum", op(ast.SumMinusKind, ast.OpAdd, app("f", ast.Int(1)), ast.NewNumber(big.NewRat(3, 2), ast.RealType)), "f(1) + 3/2", ast.RealType},
		{"count",
			&ast.Expr{Kind: ast.AggregateKind, Q: ast.AggCount,
				Quantees: []*ast.Quantee{{Vars: []*ast.Expr{id("c")}, Sort: "Color"}},
				Subs:     []*ast.Expr{app("p", id("c"))}},
			"sum{c ∈ Color: if p(c) then 1 else 0}", ast.IntType},
		{"sum",
			&ast.Expr{Kind: ast.AggregateKind, Q: ast.AggSum,
				Quantees: []*ast.Quantee{{Vars: []*ast.Expr{id("x")}, Sort: "Small"}},
				Subs:     []*ast.Expr{op(ast.ComparisonKind, ast.OpGt, id("x"), ast.Int(1))},
				Out:      app("f", id("x"))},
			"sum{x ∈ Small: if x > 1 then f(x) else 0}", ast.IntType},
		{"symbol as data", &ast.Expr{Kind: ast.SymbolExprKind, Subs: []*ast.Expr{id("p")}}, "`p", ast.SymbolType},
		{"quantee set",
			&ast.Expr{Kind: ast.QuantificationKind, Q: ast.Exists,
				Quantees: []*ast.Quantee{{Vars: []*ast.Expr{id("x")}, Set: []*ast.Expr{ast.Int(1), ast.Int(2)}}},
				Subs:     []*ast.Expr{app("r", id("x"))}},
			"∃x ∈ {1, 2}: r(x)", ast.BoolType},
	}
	voc := testVocab(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Expr(tt.in, NewScope(voc))
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got.Code()); diff != "" {
				t.Errorf("(-want +got)\n%s", diff)
			}
			if got.Type != tt.typ {
				t.Errorf("type %s, want %s", got.Type, tt.typ)
			}
			if !got.IsGround() {
				t.Errorf("%s has free variables %v", got, got.FreshNames())
			}
		})
	}
}

func TestExprErrors(t *testing.T) {
	tests := []struct {
		name string
		in   *ast.Expr
		err  error
	}{
		{"unresolved", app("s", ast.Int(1)), ast.ErrUnresolvedSymbol},
		{"unresolved identifier", id("Yellow"), ast.ErrUnresolvedSymbol},
		{"scope conflict", forall("p", "Color", id("q")), ast.ErrScopeConflict},
		{"arity", app("p", id("Red"), id("Green")), ast.ErrTypeMismatch},
		{"argument type", app("p", ast.Int(1)), ast.ErrTypeMismatch},
		{"implication chain", op(ast.ImplicationKind, ast.OpImplies, id("q"), id("q"), id("q")), ast.ErrTypeMismatch},
		{"conflicting sorts",
			forall("x", "", op(ast.ConjunctionKind, ast.OpAnd, app("p", id("x")), app("r", id("x")))),
			ast.ErrTypeMismatch},
		{"no sort", forall("x", "", id("q")), ast.ErrTypeMismatch},
		{"non-Boolean body", forall("x", "Small", app("f", id("x"))), ast.ErrTypeMismatch},
		{"type as term", id("Color"), ast.ErrTypeMismatch},
		{"is enumerated of a constructor",
			&ast.Expr{Kind: ast.AppliedSymbolKind, Name: "Red", IsEnumerated: true},
			ast.ErrTypeMismatch},
	}
	voc := testVocab(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Expr(tt.in, NewScope(voc))
			if !errors.Is(err, tt.err) {
				t.Errorf("got %v, want %v", err, tt.err)
			}
		})
	}
}

func TestDateArithmetic(t *testing.T) {
	voc := ast.NewVocabulary("V", &ast.SymbolDecl{Name: "d", Out: ast.DateType})
	if err := ResolveVocabulary(voc, 0); err != nil {
		t.Fatal(err)
	}
	date := func(s string) *ast.Expr {
		d, err := ast.ParseDate(s)
		if err != nil {
			t.Fatal(err)
		}
		return d
	}
	tests := []struct {
		name string
		sum  *ast.Expr
		than *ast.Expr
		typ  string
		err  error
	}{
		{"date plus days", op(ast.SumMinusKind, ast.OpAdd, id("d"), ast.Int(1)), date("#2024-01-02"), ast.DateType, nil},
		{"days plus date", op(ast.SumMinusKind, ast.OpAdd, ast.Int(1), id("d")), date("#2024-01-02"), ast.DateType, nil},
		{"date minus days", op(ast.SumMinusKind, ast.OpSub, id("d"), ast.Int(1)), date("#2024-01-02"), ast.DateType, nil},
		{"days between dates", op(ast.SumMinusKind, ast.OpSub, id("d"), date("#2024-01-01")), ast.Int(3), ast.IntType, nil},
		{"days compared with a date", op(ast.SumMinusKind, ast.OpSub, id("d"), date("#2024-01-01")), date("#2024-01-02"), ast.IntType, ast.ErrTypeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Expr(op(ast.ComparisonKind, ast.OpEq, tt.sum, tt.than), NewScope(voc))
			if !errors.Is(err, tt.err) {
				t.Fatalf("got %v, want %v", err, tt.err)
			}
			if err != nil {
				return
			}
			if got.Type != ast.BoolType {
				t.Errorf("comparison type %s", got.Type)
			}
			if typ := got.Subs[0].Type; typ != tt.typ {
				t.Errorf("sum type %s, want %s", typ, tt.typ)
			}
		})
	}
}

func TestRule(t *testing.T) {
	voc := testVocab(t)
	r := &ast.Rule{
		Quantees: []*ast.Quantee{{Vars: []*ast.Expr{id("x")}}},
		Head:     app("f", id("x")),
		Out:      ast.Int(1),
		Body:     op(ast.ComparisonKind, ast.OpGt, id("x"), ast.Int(1)),
	}
	got, err := Rule(r, NewScope(voc))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff("∀x ∈ Small: f(x) = 1 ← x > 1", got.String()); diff != "" {
		t.Errorf("(-want +got)\n%s", diff)
	}
	if !got.IsWholeDomain || !got.Head.InHead || len(got.Args) != 2 {
		t.Errorf("whole domain %v, in head %v, %d args", got.IsWholeDomain, got.Head.InHead, len(got.Args))
	}

	_, err = Rule(&ast.Rule{Head: app("f", ast.Int(1))}, NewScope(voc))
	if !errors.Is(err, ast.ErrTypeMismatch) {
		t.Errorf("function rule without value: got %v", err)
	}
	_, err = Rule(&ast.Rule{Head: app("Color")}, NewScope(voc))
	if !errors.Is(err, ast.ErrTypeMismatch) {
		t.Errorf("rule for a type: got %v", err)
	}
}

func TestStructure(t *testing.T) {
	voc := testVocab(t)
	st := ast.NewStructure("S", "V")
	st.Add(&ast.SymbolInterpretation{Name: "p", Enumeration: ast.NewEnumeration(&ast.Tuple{Args: []*ast.Expr{id("Red")}})})
	st.Add(&ast.SymbolInterpretation{Name: "f",
		Enumeration: ast.NewEnumeration(&ast.Tuple{Args: []*ast.Expr{ast.Int(1)}, Value: ast.Int(5)}),
		Default:     ast.Int(0)})
	if err := Structure(st, voc); err != nil {
		t.Fatal(err)
	}
	th := ast.NewTheory("T", voc)
	if err := Attach(th, st); err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, a := range th.Assignments.All() {
		got = append(got, a.String())
	}
	want := []string{
		"p(Red): true (STRUCTURE)",
		"p(Green): false (STRUCTURE)",
		"p(Blue): false (STRUCTURE)",
		"f(1): 5 (STRUCTURE)",
		"f(2): 0 (STRUCTURE)",
		"f(3): 0 (STRUCTURE)",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got)\n%s", diff)
	}
}

func TestStructureErrors(t *testing.T) {
	tests := []struct {
		name string
		si   *ast.SymbolInterpretation
		err  error
	}{
		{"default on infinite domain",
			&ast.SymbolInterpretation{Name: "r", Enumeration: ast.NewEnumeration(), Default: id("true")},
			ast.ErrValue},
		{"default on a predicate",
			&ast.SymbolInterpretation{
				Name:        "p",
				Enumeration: ast.NewEnumeration(&ast.Tuple{Args: []*ast.Expr{id("Red")}}),
				Default:     id("false")},
			ast.ErrValue},
		{"non-ground tuple",
			&ast.SymbolInterpretation{Name: "r", Enumeration: ast.NewEnumeration(&ast.Tuple{Args: []*ast.Expr{app("f", ast.Int(1))}})},
			ast.ErrTypeMismatch},
		{"wrong arity",
			&ast.SymbolInterpretation{Name: "p", Enumeration: ast.NewEnumeration(&ast.Tuple{Args: []*ast.Expr{id("Red"), id("Red")}})},
			ast.ErrTypeMismatch},
		{"function without value",
			&ast.SymbolInterpretation{Name: "f", Enumeration: ast.NewEnumeration(&ast.Tuple{Args: []*ast.Expr{ast.Int(1)}})},
			ast.ErrValue},
		{"unknown symbol",
			&ast.SymbolInterpretation{Name: "s", Enumeration: ast.NewEnumeration()},
			ast.ErrUnresolvedSymbol},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			voc := testVocab(t)
			st := ast.NewStructure("S", "V")
			st.Add(tt.si)
			err := Structure(st, voc)
			if !errors.Is(err, tt.err) {
				t.Errorf("got %v, want %v", err, tt.err)
			}
		})
	}
}

func TestTypeInterpretedByStructure(t *testing.T) {
	voc := ast.NewVocabulary("V",
		&ast.TypeDecl{Name: "Person"},
		&ast.SymbolDecl{Name: "adult", Sorts: []string{"Person"}},
	)
	if err := ResolveVocabulary(voc, 0); err != nil {
		t.Fatal(err)
	}
	st := ast.NewStructure("S", "V")
	st.Add(&ast.SymbolInterpretation{Name: "Person", Enumeration: ast.NewEnumeration(
		&ast.Tuple{Args: []*ast.Expr{id("alice")}},
		&ast.Tuple{Args: []*ast.Expr{id("bob")}},
	)})
	if err := Structure(st, voc); err != nil {
		t.Fatal(err)
	}
	th := ast.NewTheory("T", voc)
	if err := Attach(th, st); err != nil {
		t.Fatal(err)
	}
	person, _ := voc.Lookup("Person")
	dom, ok := ast.Domain(person)
	if !ok {
		t.Fatal("Person is not finite")
	}
	var got []string
	for _, v := range dom {
		got = append(got, v.Code())
	}
	if diff := cmp.Diff([]string{"alice", "bob"}, got); diff != "" {
		t.Errorf("(-want +got)\n%s", diff)
	}
}
