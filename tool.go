package fodot

import (
	"fmt"
	"log/slog"

	"github.com/signadot/fodot/annotate"
	"github.com/signadot/fodot/ast"
	"github.com/signadot/fodot/clark"
	"github.com/signadot/fodot/eval"
	"github.com/signadot/fodot/ground"
	"github.com/signadot/fodot/load"
	"github.com/signadot/fodot/sat"
)

// Tool takes programs through the pipeline: resolve the vocabulary,
// annotate the structure and the theory, complete the definitions, attach
// the structure and ground.
type Tool struct {
	Log *slog.Logger
	// MaxRange bounds the number of values of an expanded range
	// declaration.
	MaxRange int
}

func DefaultTool() *Tool {
	return &Tool{
		Log:      slog.Default(),
		MaxRange: annotate.DefaultMaxRange,
	}
}

// Session is a program after the pipeline has run.
type Session struct {
	Program  *ast.Program
	Grounded *ground.Grounded
	// Formulas are what is left to solve: the grounded formulas with
	// what was asserted so far substituted in.
	Formulas []*ast.Expr

	tool *Tool
}

func (s *Session) Theory() *ast.Theory {
	return s.Program.Theory
}

func (t *Tool) log() *slog.Logger {
	if t.Log == nil {
		return slog.Default()
	}
	return t.Log
}

// LoadFile reads the program at path and runs the pipeline on it.
func (t *Tool) LoadFile(path string) (*Session, error) {
	p, err := load.ParseFile(path)
	if err != nil {
		return nil, err
	}
	t.log().Debug("loaded", "path", path)
	return t.Run(p)
}

// Load reads a program from a YAML document and runs the pipeline on it.
func (t *Tool) Load(d []byte) (*Session, error) {
	p, err := load.Parse(d)
	if err != nil {
		return nil, err
	}
	return t.Run(p)
}

// Annotate resolves the vocabulary of p and annotates its structure and
// theory.
func (t *Tool) Annotate(p *ast.Program) error {
	if err := annotate.ResolveVocabulary(p.Vocab, t.MaxRange); err != nil {
		return fmt.Errorf("vocabulary %s: %w", p.Vocab.Name, err)
	}
	if p.Structure != nil {
		if err := annotate.Structure(p.Structure, p.Vocab); err != nil {
			return fmt.Errorf("structure %s: %w", p.Structure.Name, err)
		}
	}
	if p.Theory != nil {
		if err := annotate.Theory(p.Theory); err != nil {
			return fmt.Errorf("theory %s: %w", p.Theory.Name, err)
		}
	}
	return nil
}

// Complete completes the definitions of p's theory and attaches its
// structure.
func (t *Tool) Complete(p *ast.Program) error {
	th := p.Theory
	if err := clark.CompleteTheory(th); err != nil {
		return fmt.Errorf("theory %s: %w", th.Name, err)
	}
	if p.Structure != nil {
		if err := annotate.Attach(th, p.Structure); err != nil {
			return err
		}
	}
	return nil
}

// Run annotates, completes and grounds p.
func (t *Tool) Run(p *ast.Program) (*Session, error) {
	if p.Theory == nil {
		p.Theory = ast.NewTheory("T", p.Vocab)
	}
	if err := t.Annotate(p); err != nil {
		return nil, err
	}
	if err := t.Complete(p); err != nil {
		return nil, err
	}
	gr, err := ground.Ground(p.Theory)
	if err != nil {
		return nil, fmt.Errorf("theory %s: %w", p.Theory.Name, err)
	}
	s := &Session{Program: p, Grounded: gr, Formulas: gr.Formulas(), tool: t}
	t.log().Info("grounded",
		"theory", p.Theory.Name,
		"constraints", len(gr.Constraints),
		"completions", len(gr.Completions),
		"formulas", len(s.Formulas),
		"atoms", p.Theory.Assignments.Len())
	return s, nil
}

// Parse reads an expression in tree form and annotates it against the
// session's vocabulary.
func (s *Session) Parse(src string) (*ast.Expr, error) {
	raw, err := load.ParseExpr([]byte(src))
	if err != nil {
		return nil, err
	}
	e, err := annotate.Expr(raw, annotate.NewScope(s.Program.Vocab))
	if err != nil {
		return nil, err
	}
	return ground.Interpret(e, s.Theory())
}

// Assert gives atom value and propagates the consequences through the
// remaining formulas.
func (s *Session) Assert(atom, value *ast.Expr) error {
	if atom.Kind != ast.AppliedSymbolKind || !atom.IsGround() {
		return fmt.Errorf("%w: %s is not a ground atom", ast.ErrValue, atom)
	}
	lit := value.AsLiteral()
	if lit == nil {
		return fmt.Errorf("%w: %s is not a value", ast.ErrValue, value)
	}
	rest, err := ground.Propagate(s.Theory(), s.Formulas, atom, lit)
	if err != nil {
		return err
	}
	s.Formulas = rest
	s.tool.log().Debug("asserted", "atom", atom.Code(), "value", lit.Code(), "remaining", len(rest))
	return nil
}

// Sat translates the remaining formulas for the propositional solver.
func (s *Session) Sat() (*sat.Problem, error) {
	return sat.Translate(s.Formulas)
}

// Check evaluates the grounded formulas under the known values extended
// with model, and returns the false ones.
func (s *Session) Check(atoms []*ast.Expr, model map[string]bool) ([]*ast.Expr, error) {
	as := s.Theory().Assignments.Copy()
	for _, a := range atoms {
		v, ok := model[a.Code()]
		if !ok {
			continue
		}
		if _, err := as.Assert(a, ast.BoolLit(v), ast.Consequence); err != nil {
			return nil, err
		}
	}
	return eval.Check(s.Grounded.Formulas(), as)
}
