package ast

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func intVar(name string) *Expr {
	return NewVariable(name, IntType, nil)
}

func ints(is ...int64) []*Expr {
	res := make([]*Expr, len(is))
	for i, v := range is {
		res[i] = Int(v)
	}
	return res
}

func TestContains(t *testing.T) {
	en := NewEnumeration(
		&Tuple{Args: ints(1, 2)},
		&Tuple{Args: ints(1, 3)},
		&Tuple{Args: ints(4, 2)},
	)
	tests := []struct {
		name string
		args []*Expr
		want string
	}{
		{"present", ints(1, 2), "true"},
		{"absent", ints(1, 4), "false"},
		{"absent first", ints(2, 2), "false"},
		{"symbolic last", []*Expr{Int(1), intVar("y")}, "(y = 2) ∨ (y = 3)"},
		{"symbolic first", []*Expr{intVar("x"), Int(3)},
			"if x = 1 then true else if x = 4 then false else false"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := en.Contains(tt.args, false).String()
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("(-want +got)\n%s", diff)
			}
		})
	}
}

func TestContainsFunction(t *testing.T) {
	en := NewEnumeration(&Tuple{Args: ints(1), Value: Int(10)})
	if got := en.Contains(ints(1, 10), true); !got.IsTrue() {
		t.Errorf("f(1) = 10 gives %s", got)
	}
	if got := en.Contains(ints(1, 11), true); !got.IsFalse() {
		t.Errorf("f(1) = 11 gives %s", got)
	}
}

func TestEnumerationDeduplicates(t *testing.T) {
	en := NewEnumeration(&Tuple{Args: ints(1, 2)}, &Tuple{Args: ints(1, 2)})
	if len(en.Tuples) != 1 {
		t.Errorf("got %d tuples, want 1", len(en.Tuples))
	}
	if _, ok := en.Lookup(ints(1, 2)); !ok {
		t.Errorf("lookup of (1, 2) failed")
	}
}

func TestInterpretApplication(t *testing.T) {
	f := &SymbolDecl{Name: "f", Sorts: []string{IntType, IntType}, Out: IntType}
	si := &SymbolInterpretation{
		Name:        "f",
		Symbol:      f,
		Enumeration: NewEnumeration(&Tuple{Args: ints(1, 2), Value: Int(3)}),
		Default:     Int(7),
	}
	if got := si.InterpretApplication(NewApplied("f", f, ints(1, 2)...)); !Equal(got, Int(3)) {
		t.Errorf("f(1, 2) gives %s, want 3", got)
	}
	if got := si.InterpretApplication(NewApplied("f", f, ints(1, 3)...)); !Equal(got, Int(7)) {
		t.Errorf("f(1, 3) gives %s, want the default", got)
	}

	g := &SymbolDecl{Name: "g", Sorts: []string{IntType}, Out: IntType}
	gi := &SymbolInterpretation{
		Name:   "g",
		Symbol: g,
		Enumeration: NewEnumeration(
			&Tuple{Args: ints(1), Value: Int(10)},
			&Tuple{Args: ints(2), Value: Int(20)},
		),
	}
	app := NewApplied("g", g, intVar("x"))
	want := "if x = 1 then 10 else if x = 2 then 20 else g(x)"
	if diff := cmp.Diff(want, gi.InterpretApplication(app).String()); diff != "" {
		t.Errorf("(-want +got)\n%s", diff)
	}
	if got := gi.InterpretApplication(NewApplied("g", g, Int(3))); got.Code() != "g(3)" {
		t.Errorf("g(3) gives %s", got)
	}
}
