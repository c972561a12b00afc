package load

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/signadot/fodot/ast"
	"github.com/signadot/fodot/debug"
)

type Doc struct {
	Vocabulary VocabularyDoc `json:"vocabulary"`
	Theory     *TheoryDoc    `json:"theory,omitempty"`
	Structure  *StructureDoc `json:"structure,omitempty"`
}

type VocabularyDoc struct {
	Name    string      `json:"name,omitempty"`
	Types   []TypeDoc   `json:"types,omitempty"`
	Symbols []SymbolDoc `json:"symbols,omitempty"`
}

// TypeDoc declares a constructed type when Range is empty, and a range
// over Base otherwise. Range elements are values or [from, to] pairs.
type TypeDoc struct {
	Name         string   `json:"name"`
	Constructors []string `json:"constructors,omitempty"`
	Base         string   `json:"base,omitempty"`
	Range        []any    `json:"range,omitempty"`
}

type SymbolDoc struct {
	Name string   `json:"name"`
	Args []string `json:"args,omitempty"`
	Out  string   `json:"out,omitempty"`
}

type TheoryDoc struct {
	Name        string      `json:"name,omitempty"`
	Constraints []any       `json:"constraints,omitempty"`
	Definitions [][]RuleDoc `json:"definitions,omitempty"`
}

type RuleDoc struct {
	Vars []any `json:"vars,omitempty"`
	Head any   `json:"head"`
	Out  any   `json:"out,omitempty"`
	Body any   `json:"body,omitempty"`
}

type StructureDoc struct {
	Name            string              `json:"name,omitempty"`
	Interpretations []InterpretationDoc `json:"interpretations,omitempty"`
}

// InterpretationDoc enumerates a symbol or a type: Tuples lists the
// argument tuples of a predicate or a type, Map the [args, value] pairs of
// a function.
type InterpretationDoc struct {
	Symbol  string  `json:"symbol"`
	Tuples  [][]any `json:"tuples,omitempty"`
	Map     [][]any `json:"map,omitempty"`
	Default any     `json:"default,omitempty"`
}

// ParseFile reads the program in the file at path.
func ParseFile(path string) (*ast.Program, error) {
	d, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := Parse(d)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse reads a program from a YAML document.
func Parse(d []byte) (*ast.Program, error) {
	doc := &Doc{}
	if err := yaml.Unmarshal(d, doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return doc.Program()
}

// Program converts the document to raw declarations, theory and
// structure.
func (doc *Doc) Program() (*ast.Program, error) {
	voc, err := doc.Vocabulary.vocabulary()
	if err != nil {
		return nil, err
	}
	p := &ast.Program{Vocab: voc}
	th := ast.NewTheory("T", voc)
	if doc.Theory != nil {
		if doc.Theory.Name != "" {
			th.Name = doc.Theory.Name
		}
		for i, c := range doc.Theory.Constraints {
			e, err := constraint(c)
			if err != nil {
				return nil, fmt.Errorf("constraint %d: %w", i+1, err)
			}
			th.Constraints = append(th.Constraints, e)
		}
		for i, rules := range doc.Theory.Definitions {
			def := ast.NewDefinition()
			for j, r := range rules {
				rule, err := r.rule()
				if err != nil {
					return nil, fmt.Errorf("definition %d, rule %d: %w", i+1, j+1, err)
				}
				def.Rules = append(def.Rules, rule)
			}
			th.Definitions = append(th.Definitions, def)
		}
	}
	p.Theory = th
	if doc.Structure != nil {
		st, err := doc.Structure.structure(voc.Name)
		if err != nil {
			return nil, err
		}
		p.Structure = st
	}
	if debug.Load() {
		debug.Logf("loaded vocabulary %s: %d declarations, %d constraints, %d definitions\n",
			voc.Name, len(voc.Decls), len(th.Constraints), len(th.Definitions))
	}
	return p, nil
}

func (vd *VocabularyDoc) vocabulary() (*ast.Vocabulary, error) {
	name := vd.Name
	if name == "" {
		name = "V"
	}
	var decls []ast.Declaration
	for _, td := range vd.Types {
		if td.Name == "" {
			return nil, fmt.Errorf("%w: type without a name", ErrLoad)
		}
		if len(td.Range) == 0 && td.Base == "" {
			d := &ast.TypeDecl{Name: td.Name}
			for _, c := range td.Constructors {
				d.Constructors = append(d.Constructors, &ast.ConstructorDecl{Name: c})
			}
			decls = append(decls, d)
			continue
		}
		d := &ast.RangeDecl{Name: td.Name, Base: td.Base}
		for _, el := range td.Range {
			re, err := rangeElement(el)
			if err != nil {
				return nil, fmt.Errorf("range of %s: %w", td.Name, err)
			}
			d.Elements = append(d.Elements, re)
		}
		decls = append(decls, d)
	}
	for _, sd := range vd.Symbols {
		if sd.Name == "" {
			return nil, fmt.Errorf("%w: symbol without a name", ErrLoad)
		}
		decls = append(decls, &ast.SymbolDecl{Name: sd.Name, Sorts: sd.Args, Out: sd.Out})
	}
	return ast.NewVocabulary(name, decls...), nil
}

func rangeElement(v any) (ast.RangeElement, error) {
	if pair, ok := v.([]any); ok {
		if len(pair) != 2 {
			return ast.RangeElement{}, fmt.Errorf("%w: interval %v is not [from, to]", ErrArguments, v)
		}
		from, err := Expr(pair[0])
		if err != nil {
			return ast.RangeElement{}, err
		}
		to, err := Expr(pair[1])
		if err != nil {
			return ast.RangeElement{}, err
		}
		return ast.RangeElement{From: from, To: to}, nil
	}
	x, err := Expr(v)
	if err != nil {
		return ast.RangeElement{}, err
	}
	return ast.RangeElement{From: x}, nil
}

// constraint reads a constraint, given either as an expression or as
// {expr: ..., reading: ...}.
func constraint(v any) (*ast.Expr, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return Expr(v)
	}
	e, err := Expr(m["expr"])
	if err != nil {
		return nil, err
	}
	for k, a := range m {
		if k == "expr" {
			continue
		}
		e.Annotate(k, fmt.Sprint(a))
	}
	return e, nil
}

func (rd *RuleDoc) rule() (*ast.Rule, error) {
	r := &ast.Rule{}
	if rd.Vars != nil {
		qs, err := Quantees(rd.Vars)
		if err != nil {
			return nil, err
		}
		r.Quantees = qs
	}
	head, err := application(rd.Head)
	if err != nil {
		return nil, err
	}
	r.Head = head
	r.Name = head.Name
	if rd.Out != nil {
		if r.Out, err = Expr(rd.Out); err != nil {
			return nil, err
		}
	}
	if rd.Body != nil {
		if r.Body, err = Expr(rd.Body); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (sd *StructureDoc) structure(vocab string) (*ast.Structure, error) {
	name := sd.Name
	if name == "" {
		name = "S"
	}
	st := ast.NewStructure(name, vocab)
	for _, id := range sd.Interpretations {
		si := &ast.SymbolInterpretation{Name: id.Symbol, Enumeration: ast.NewEnumeration()}
		for _, t := range id.Tuples {
			args, err := exprs(t)
			if err != nil {
				return nil, fmt.Errorf("interpretation of %s: %w", id.Symbol, err)
			}
			si.Enumeration.Add(&ast.Tuple{Args: args})
		}
		for _, kv := range id.Map {
			if len(kv) != 2 {
				return nil, fmt.Errorf("%w: %s: map entry %v is not [args, value]", ErrArguments, id.Symbol, kv)
			}
			rawArgs, ok := kv[0].([]any)
			if !ok {
				rawArgs = []any{kv[0]}
			}
			args, err := exprs(rawArgs)
			if err != nil {
				return nil, fmt.Errorf("interpretation of %s: %w", id.Symbol, err)
			}
			val, err := Expr(kv[1])
			if err != nil {
				return nil, fmt.Errorf("interpretation of %s: %w", id.Symbol, err)
			}
			si.Enumeration.Add(&ast.Tuple{Args: args, Value: val})
		}
		if id.Default != nil {
			def, err := Expr(id.Default)
			if err != nil {
				return nil, fmt.Errorf("default of %s: %w", id.Symbol, err)
			}
			si.Default = def
		}
		if err := st.Add(si); err != nil {
			return nil, err
		}
	}
	return st, nil
}
