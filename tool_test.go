package fodot

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/fodot/ast"
)

const colors = `
vocabulary:
  types:
    - {name: Color, constructors: [Red, Green, Blue]}
  symbols:
    - {name: p, args: [Color]}
    - {name: q}
    - {name: r}
    - {name: s}
theory:
  constraints:
    - [forall, [[c, Color]], ["=>", [p, c], q]]
    - %s
  definitions:
    - - {head: [r], body: [not, q]}
structure:
  interpretations:
    - {symbol: p, tuples: [[Green]]}
`

func testTool() *Tool {
	return &Tool{Log: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func program(second string) []byte {
	return []byte(fmt.Sprintf(colors, second))
}

func TestSat(t *testing.T) {
	tests := []struct {
		name  string
		extra string
		sat   bool
		model map[string]bool
	}{
		{"satisfiable", `[or, [p, Red], [not, r]]`, true, map[string]bool{"q()": true, "r()": false}},
		{"unsatisfiable", `[or, [p, Red], r]`, false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := testTool().Load(program(tt.extra))
			if err != nil {
				t.Fatal(err)
			}
			prob, err := s.Sat()
			if err != nil {
				t.Fatal(err)
			}
			ok, model := prob.Solve(s.Theory().Assignments)
			if ok != tt.sat {
				t.Fatalf("satisfiable %v, want %v", ok, tt.sat)
			}
			if diff := cmp.Diff(tt.model, model); diff != "" {
				t.Errorf("model (-want +got)\n%s", diff)
			}
			if !ok {
				return
			}
			violated, err := s.Check(prob.Atoms(), model)
			if err != nil {
				t.Fatal(err)
			}
			if len(violated) != 0 {
				t.Errorf("model violates %v", violated)
			}
		})
	}
}

func TestAssert(t *testing.T) {
	s, err := testTool().Load(program(`[or, [not, q], s]`))
	if err != nil {
		t.Fatal(err)
	}
	q, err := s.Parse("q")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Assert(q, ast.True()); err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, a := range s.Theory().Assignments.All() {
		if a.Status == ast.Given || a.Status == ast.Consequence {
			got = append(got, a.String())
		}
	}
	want := []string{
		"q(): true (GIVEN)",
		"r(): false (CONSEQUENCE)",
		"s(): true (CONSEQUENCE)",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("assignments (-want +got)\n%s", diff)
	}
	if err := s.Assert(q, ast.False()); !errors.Is(err, ast.ErrValue) {
		t.Errorf("reasserting q: got %v", err)
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		err  error
	}{
		{"unknown symbol", fmt.Sprintf(colors, `[t]`), ast.ErrUnresolvedSymbol},
		{"false constraint", fmt.Sprintf(colors, `[p, Red]`), ast.ErrValue},
		{"not Boolean", fmt.Sprintf(colors, `1`), ast.ErrTypeMismatch},
		{"default on a predicate",
			strings.Replace(fmt.Sprintf(colors, `[q]`), "tuples: [[Green]]}", "tuples: [[Green]], default: false}", 1),
			ast.ErrValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := testTool().Load([]byte(tt.in))
			if !errors.Is(err, tt.err) {
				t.Errorf("got %v, want %v", err, tt.err)
			}
		})
	}
}
