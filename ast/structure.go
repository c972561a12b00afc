package ast

import (
	"strings"
)

// Structure gives symbols of a vocabulary a (possibly partial)
// interpretation.
type Structure struct {
	Name            string
	VocabName       string
	Interpretations map[string]*SymbolInterpretation

	order []string
}

func NewStructure(name, vocab string) *Structure {
	return &Structure{
		Name:            name,
		VocabName:       vocab,
		Interpretations: map[string]*SymbolInterpretation{},
	}
}

// Add records the interpretation of a symbol. A symbol may be interpreted
// once.
func (s *Structure) Add(si *SymbolInterpretation) error {
	if _, ok := s.Interpretations[si.Name]; ok {
		return Check(false, ErrDuplicateDeclaration, "%s is interpreted twice in structure %s", si.Name, s.Name)
	}
	s.Interpretations[si.Name] = si
	s.order = append(s.order, si.Name)
	return nil
}

// All returns the interpretations in the order they were added.
func (s *Structure) All() []*SymbolInterpretation {
	res := make([]*SymbolInterpretation, len(s.order))
	for i, name := range s.order {
		res[i] = s.Interpretations[name]
	}
	return res
}

// SymbolInterpretation is the enumeration of a symbol or a type, with an
// optional default value for function arguments the enumeration does not
// cover.
type SymbolInterpretation struct {
	Name        string
	Symbol      Declaration
	Enumeration *Enumeration
	Default     *Expr
}

// IsFunction reports whether the interpretation maps arguments to values,
// rather than listing the tuples of a predicate. Once the symbol is
// resolved its declaration decides.
func (si *SymbolInterpretation) IsFunction() bool {
	if sd, ok := si.Symbol.(*SymbolDecl); ok {
		return !sd.IsPredicate()
	}
	for _, t := range si.Enumeration.Tuples {
		if t.Value != nil {
			return true
		}
	}
	return false
}

// InterpretApplication returns the value the interpretation gives to app.
// Ground arguments select a tuple directly; symbolic arguments give an
// if-then-else chain over the tuples in enumeration order. Arguments not
// covered take the default, or leave app itself for the solver.
func (si *SymbolInterpretation) InterpretApplication(app *Expr) *Expr {
	if !si.IsFunction() {
		return si.Enumeration.Contains(app.Subs, false)
	}
	fallback := app
	if si.Default != nil {
		fallback = si.Default
	}
	rows := make([]*Tuple, len(si.Enumeration.Tuples))
	copy(rows, si.Enumeration.Tuples)
	return valueChain(app.Subs, rows, 0, fallback)
}

func valueChain(args []*Expr, rows []*Tuple, rank int, fallback *Expr) *Expr {
	if len(rows) == 0 {
		return fallback
	}
	if rank == len(args) {
		if rows[0].Value == nil {
			return fallback
		}
		return rows[0].Value
	}
	keys, groups := groupBy(rows, rank, func(t *Tuple) []*Expr { return t.Args })
	if lit := args[rank].AsLiteral(); lit != nil {
		return valueChain(args, groups[keyCode(lit)], rank+1, fallback)
	}
	res := fallback
	for i := len(keys) - 1; i >= 0; i-- {
		k := keys[i]
		res = If(Equals(args[rank], k), valueChain(args, groups[keyCode(k)], rank+1, fallback), res)
	}
	return res
}

// Tuple is one row of an enumeration. Value is set for functions.
type Tuple struct {
	Args  []*Expr
	Value *Expr
}

// Key returns the codes of the arguments joined by commas.
func (t *Tuple) Key() string {
	return argsKey(t.Args)
}

func (t *Tuple) String() string {
	var b strings.Builder
	b.WriteString("(")
	writeList(&b, t.Args)
	b.WriteString(")")
	if t.Value != nil {
		b.WriteString(" → ")
		t.Value.write(&b)
	}
	return b.String()
}

// ArgsKey returns the cache key of a tuple of ground arguments: the codes
// of their values.
func ArgsKey(args []*Expr) string {
	return argsKey(args)
}

func argsKey(args []*Expr) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = keyCode(a)
	}
	return strings.Join(parts, ", ")
}

// Enumeration is an ordered set of tuples, keyed by their arguments.
type Enumeration struct {
	Tuples []*Tuple
	index  map[string]int
}

func NewEnumeration(tuples ...*Tuple) *Enumeration {
	en := &Enumeration{index: map[string]int{}}
	for _, t := range tuples {
		en.Add(t)
	}
	return en
}

// Add appends t unless a tuple with the same arguments is present.
func (en *Enumeration) Add(t *Tuple) bool {
	if en.index == nil {
		en.index = map[string]int{}
	}
	k := t.Key()
	if _, ok := en.index[k]; ok {
		return false
	}
	en.index[k] = len(en.Tuples)
	en.Tuples = append(en.Tuples, t)
	return true
}

// Lookup returns the tuple with the given ground arguments.
func (en *Enumeration) Lookup(args []*Expr) (*Tuple, bool) {
	i, ok := en.index[argsKey(args)]
	if !ok {
		return nil, false
	}
	return en.Tuples[i], true
}

func (en *Enumeration) String() string {
	var b strings.Builder
	b.WriteString("{")
	for i, t := range en.Tuples {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(t.String())
	}
	b.WriteString("}")
	return b.String()
}

// Contains returns the condition under which args is a row of the
// enumeration. When isFunction is set, rows are the arguments followed by
// the value, and args must have one more element than the arity.
func (en *Enumeration) Contains(args []*Expr, isFunction bool) *Expr {
	rows := make([]*Tuple, len(en.Tuples))
	copy(rows, en.Tuples)
	return contains(args, rows, 0, func(t *Tuple) []*Expr {
		if isFunction {
			return append(append(make([]*Expr, 0, len(t.Args)+1), t.Args...), t.Value)
		}
		return t.Args
	})
}

func contains(args []*Expr, rows []*Tuple, rank int, row func(*Tuple) []*Expr) *Expr {
	if len(rows) == 0 {
		return False()
	}
	if rank == len(args) {
		return True()
	}
	keys, groups := groupBy(rows, rank, row)
	if lit := args[rank].AsLiteral(); lit != nil {
		group, ok := groups[keyCode(lit)]
		if !ok {
			return False()
		}
		return contains(args, group, rank+1, row)
	}
	if rank == len(args)-1 {
		tests := make([]*Expr, len(keys))
		for i, k := range keys {
			tests[i] = Equals(args[rank], k)
		}
		return Or(tests...)
	}
	res := False()
	for i := len(keys) - 1; i >= 0; i-- {
		k := keys[i]
		res = If(Equals(args[rank], k), contains(args, groups[keyCode(k)], rank+1, row), res)
	}
	return res
}

// groupBy groups rows by their value at rank. keys lists one value per
// group in the order groups are first met.
func groupBy(rows []*Tuple, rank int, row func(*Tuple) []*Expr) ([]*Expr, map[string][]*Tuple) {
	var keys []*Expr
	groups := map[string][]*Tuple{}
	for _, t := range rows {
		r := row(t)
		if rank >= len(r) {
			continue
		}
		v := r[rank]
		code := keyCode(v)
		if _, ok := groups[code]; !ok {
			keys = append(keys, v)
		}
		groups[code] = append(groups[code], t)
	}
	return keys, groups
}

func keyCode(v *Expr) string {
	if lit := v.AsLiteral(); lit != nil {
		return lit.Code()
	}
	return v.Code()
}
