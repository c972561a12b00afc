package ast

import (
	"strings"
	"sync"

	set "github.com/hashicorp/go-set/v3"
)

// Theory holds the constraints and definitions over a vocabulary, with
// the interpretations merged in from an attached structure.
type Theory struct {
	Name            string
	VocabName       string
	Vocab           *Vocabulary
	Constraints     []*Expr
	Definitions     []*Definition
	Interpretations map[string]*SymbolInterpretation
	Clark           map[*SymbolDecl]*Rule
	Assignments     *Assignments

	codes *set.Set[string]
}

func NewTheory(name string, voc *Vocabulary) *Theory {
	t := &Theory{
		Name:            name,
		Vocab:           voc,
		Interpretations: map[string]*SymbolInterpretation{},
		Clark:           map[*SymbolDecl]*Rule{},
		Assignments:     NewAssignments(),
		codes:           set.New[string](0),
	}
	if voc != nil {
		t.VocabName = voc.Name
	}
	return t
}

// AddConstraint appends e unless a constraint with the same code is
// present.
func (t *Theory) AddConstraint(e *Expr) bool {
	if t.codes == nil {
		t.codes = set.New[string](len(t.Constraints))
		for _, c := range t.Constraints {
			t.codes.Insert(c.Code())
		}
	}
	if !t.codes.Insert(e.Code()) {
		return false
	}
	t.Constraints = append(t.Constraints, e)
	return true
}

// SetConstraints replaces the constraints, dropping duplicates.
func (t *Theory) SetConstraints(es []*Expr) {
	t.Constraints = nil
	t.codes = set.New[string](len(es))
	for _, e := range es {
		t.AddConstraint(e)
	}
}

// Defined returns the definition and completed rule of decl, if decl is
// defined.
func (t *Theory) Defined(decl *SymbolDecl) (*Definition, *Rule, bool) {
	for _, d := range t.Definitions {
		if r, ok := d.Clarks[decl]; ok {
			return d, r, true
		}
	}
	return nil, nil, false
}

// Definition is a set of rules defining one or more symbols.
type Definition struct {
	Rules []*Rule
	// Clarks maps each defined symbol to its completed rule.
	Clarks map[*SymbolDecl]*Rule
	// DefVars maps each defined symbol to the canonical variables of its
	// completion, by name.
	DefVars map[*SymbolDecl]map[string]*Expr

	mu    sync.Mutex
	cache map[instanceKey]*Expr
	order []instanceKey
}

type instanceKey struct {
	decl string
	args string
}

func NewDefinition(rules ...*Rule) *Definition {
	return &Definition{
		Rules:   rules,
		Clarks:  map[*SymbolDecl]*Rule{},
		DefVars: map[*SymbolDecl]map[string]*Expr{},
	}
}

// Symbols returns the defined symbols in the order of their first rule.
func (d *Definition) Symbols() []*SymbolDecl {
	var res []*SymbolDecl
	seen := set.New[*SymbolDecl](len(d.Rules))
	for _, r := range d.Rules {
		if r.Symbol != nil && seen.Insert(r.Symbol) {
			res = append(res, r.Symbol)
		}
	}
	return res
}

// Instance returns the co-constraint of decl at args, calling build at
// most once per (decl, args). While build runs the entry is reserved: a
// recursive request for the same instance gets nil.
func (d *Definition) Instance(decl *SymbolDecl, args []*Expr, build func() (*Expr, error)) (*Expr, error) {
	key := instanceKey{decl: decl.Name, args: ArgsKey(args)}
	d.mu.Lock()
	if d.cache == nil {
		d.cache = map[instanceKey]*Expr{}
	}
	if res, ok := d.cache[key]; ok {
		d.mu.Unlock()
		return res, nil
	}
	d.cache[key] = nil
	d.order = append(d.order, key)
	d.mu.Unlock()

	res, err := build()
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	d.cache[key] = res
	d.mu.Unlock()
	return res, nil
}

// Instances returns the co-constraints built so far, in the order they
// were requested.
func (d *Definition) Instances() []*Expr {
	d.mu.Lock()
	defer d.mu.Unlock()
	res := make([]*Expr, 0, len(d.order))
	for _, k := range d.order {
		if e := d.cache[k]; e != nil {
			res = append(res, e)
		}
	}
	return res
}

// ResetCache forgets every co-constraint, to be called when the
// interpretations the instances were built under change.
func (d *Definition) ResetCache() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cache = nil
	d.order = nil
	for _, r := range d.Clarks {
		r.WholeDomain = nil
	}
}

// Rule is one rule of a definition, or the completed rule of a symbol.
// For functions the value is the last element of Args.
type Rule struct {
	Quantees []*Quantee
	Name     string
	Symbol   *SymbolDecl
	Head     *Expr
	Args     []*Expr
	// Out is the value of a function rule as given, before it is appended
	// to Args.
	Out  *Expr
	Body *Expr

	// IsWholeDomain is set when every argument sort is finite.
	IsWholeDomain bool
	// WholeDomain is the grounded completion over the whole domain, set
	// on first use.
	WholeDomain *Expr
}

func (r *Rule) IsFunction() bool {
	return r.Symbol != nil && !r.Symbol.IsPredicate()
}

func (r *Rule) String() string {
	var b strings.Builder
	if len(r.Quantees) != 0 {
		b.WriteString(Forall)
		writeQuantees(&b, r.Quantees)
		b.WriteString(": ")
	}
	args := r.Args
	var out *Expr
	if r.IsFunction() && len(args) != 0 {
		args, out = args[:len(args)-1], args[len(args)-1]
	} else if r.Out != nil {
		out = r.Out
	}
	if r.Head != nil && len(args) == 0 && r.Symbol == nil {
		args = r.Head.Subs
	}
	b.WriteString(r.Name)
	b.WriteString("(")
	writeList(&b, args)
	b.WriteString(")")
	if out != nil {
		b.WriteString(" = ")
		out.write(&b)
	}
	b.WriteString(" ← ")
	if r.Body == nil {
		b.WriteString("true")
	} else {
		r.Body.write(&b)
	}
	return b.String()
}
