package annotate

import (
	"fmt"

	"github.com/signadot/fodot/ast"
	"github.com/signadot/fodot/debug"
)

// Theory annotates the constraints and the rules of th against its
// resolved vocabulary. Constraints must be Boolean.
func Theory(th *ast.Theory) error {
	sc := NewScope(th.Vocab)
	constraints := make([]*ast.Expr, 0, len(th.Constraints))
	for _, c := range th.Constraints {
		a, err := Expr(c, sc)
		if err != nil {
			return err
		}
		if err := ast.Check(a.Type == ast.BoolType, ast.ErrTypeMismatch,
			"constraint %s is %s, not Boolean", a, a.Type); err != nil {
			return err
		}
		for k, v := range c.Annotations {
			a.Annotate(k, v)
		}
		constraints = append(constraints, a)
	}
	th.SetConstraints(constraints)
	for _, def := range th.Definitions {
		for i, r := range def.Rules {
			a, err := Rule(r, sc)
			if err != nil {
				return err
			}
			def.Rules[i] = a
		}
	}
	return nil
}

// Rule annotates a rule: the head symbol must be declared, function rules
// carry the value of the function and predicate rules do not. Variables
// without a sort take the sort of their argument positions in the head
// and the body.
func Rule(r *ast.Rule, sc *Scope) (*ast.Rule, error) {
	head := r.Head
	name := r.Name
	if head != nil && name == "" {
		name = head.Name
	}
	sd, ok := sc.Voc.Symbol(name)
	if !ok {
		if _, declared := sc.Voc.Lookup(name); declared {
			return nil, fmt.Errorf("%w: %s cannot be defined", ast.ErrTypeMismatch, name)
		}
		return nil, fmt.Errorf("%w: %s", ast.ErrUnresolvedSymbol, name)
	}
	var rawArgs []*ast.Expr
	if head != nil {
		rawArgs = head.Subs
	}
	if err := ast.Check(len(rawArgs) == sd.Arity(), ast.ErrTypeMismatch,
		"%s takes %d arguments, got %d in the head of a rule", name, sd.Arity(), len(rawArgs)); err != nil {
		return nil, err
	}
	if sd.IsPredicate() {
		if err := ast.Check(r.Out == nil, ast.ErrTypeMismatch, "predicate %s has no value", name); err != nil {
			return nil, err
		}
	} else if err := ast.Check(r.Out != nil, ast.ErrTypeMismatch, "rule for function %s needs a value", name); err != nil {
		return nil, err
	}
	rawHead := &ast.Expr{Kind: ast.AppliedSymbolKind, Name: name, Subs: rawArgs}
	raws := []*ast.Expr{rawHead}
	if r.Body != nil {
		raws = append(raws, r.Body)
	}
	if r.Out != nil {
		raws = append(raws, r.Out)
	}
	qs, inner, err := quantees(r.Quantees, sc, raws...)
	if err != nil {
		return nil, err
	}
	rawHead.InHead = true
	h, err := application(rawHead, inner)
	if err != nil {
		return nil, err
	}
	res := &ast.Rule{
		Quantees: qs,
		Name:     name,
		Symbol:   sd,
		Head:     h,
		Args:     append([]*ast.Expr{}, h.Subs...),
	}
	if r.Out != nil {
		out, err := annotate(r.Out, inner)
		if err != nil {
			return nil, err
		}
		if err := ast.Check(compatible(sd.OutType(), out.Type), ast.ErrTypeMismatch,
			"value of %s is %s, want %s", name, out.Type, sd.OutType()); err != nil {
			return nil, err
		}
		res.Out = out
		res.Args = append(res.Args, out)
	}
	res.Body = ast.True()
	if r.Body != nil {
		body, err := annotate(r.Body, inner)
		if err != nil {
			return nil, err
		}
		if err := ast.Check(body.Type == ast.BoolType, ast.ErrTypeMismatch,
			"body of rule for %s is %s, not Boolean", name, body.Type); err != nil {
			return nil, err
		}
		res.Body = body
	}
	res.IsWholeDomain = true
	for _, d := range sd.SortDecls {
		if _, finite := ast.Domain(d); !finite {
			res.IsWholeDomain = false
		}
	}
	if debug.Annotate() {
		debug.Logf("annotated rule %s\n", res)
	}
	return res, nil
}

// Structure annotates the interpretations of st against voc. Identifiers
// enumerating a type without constructors become constructors of that
// type. Tuples must be ground, and a default needs a finite domain.
func Structure(st *ast.Structure, voc *ast.Vocabulary) error {
	sc := NewScope(voc)
	for _, si := range st.All() {
		d, ok := voc.Lookup(si.Name)
		if !ok {
			return fmt.Errorf("%w: %s", ast.ErrUnresolvedSymbol, si.Name)
		}
		si.Symbol = d
		if si.Enumeration == nil {
			si.Enumeration = ast.NewEnumeration()
		}
		switch x := d.(type) {
		case *ast.TypeDecl:
			if err := declareConstructors(voc, x, si.Enumeration); err != nil {
				return err
			}
			en, err := enumeration(si.Enumeration, sc, 1, false)
			if err != nil {
				return fmt.Errorf("interpretation of %s: %w", si.Name, err)
			}
			si.Enumeration = en
			if err := ast.Check(si.Default == nil, ast.ErrValue, "type %s has no default", si.Name); err != nil {
				return err
			}
		case *ast.SymbolDecl:
			isFunction := !x.IsPredicate()
			en, err := enumeration(si.Enumeration, sc, x.Arity(), isFunction)
			if err != nil {
				return fmt.Errorf("interpretation of %s: %w", si.Name, err)
			}
			si.Enumeration = en
			if si.Default == nil {
				continue
			}
			_, finite := x.Domain()
			if err := ast.Check(finite, ast.ErrValue,
				"default for %s, which is not on a finite domain", si.Name); err != nil {
				return err
			}
			if err := ast.Check(isFunction, ast.ErrValue,
				"default for predicate %s, whose tuples are all the true ones", si.Name); err != nil {
				return err
			}
			def, err := annotate(si.Default, sc)
			if err != nil {
				return err
			}
			if err := ast.Check(def.AsLiteral() != nil, ast.ErrTypeMismatch,
				"default %s of %s is not a value", def, si.Name); err != nil {
				return err
			}
			si.Default = def
		default:
			return fmt.Errorf("%w: %s cannot be interpreted", ast.ErrTypeMismatch, si.Name)
		}
		if debug.Annotate() {
			debug.Logf("annotated interpretation of %s: %s\n", si.Name, si.Enumeration)
		}
	}
	return nil
}

func declareConstructors(voc *ast.Vocabulary, td *ast.TypeDecl, en *ast.Enumeration) error {
	if len(td.Constructors) != 0 {
		return nil
	}
	for _, t := range en.Tuples {
		for _, a := range t.Args {
			if a.Kind != ast.UnappliedSymbolKind {
				continue
			}
			if _, ok := voc.Lookup(a.Name); ok {
				continue
			}
			c := &ast.ConstructorDecl{Name: a.Name, Type: td.Name}
			if err := voc.Insert(c); err != nil {
				return err
			}
			td.Constructors = append(td.Constructors, c)
		}
	}
	return nil
}

// enumeration annotates the tuples of a raw enumeration. Every argument,
// and the value of functions, must be ground.
func enumeration(raw *ast.Enumeration, sc *Scope, arity int, isFunction bool) (*ast.Enumeration, error) {
	res := ast.NewEnumeration()
	for _, t := range raw.Tuples {
		if err := ast.Check(len(t.Args) == arity, ast.ErrTypeMismatch,
			"tuple %s has %d elements, want %d", t, len(t.Args), arity); err != nil {
			return nil, err
		}
		args, err := annotateAll(t.Args, sc)
		if err != nil {
			return nil, err
		}
		for _, a := range args {
			if err := ast.Check(a.AsLiteral() != nil, ast.ErrTypeMismatch,
				"%s in tuple %s is not ground", a, t); err != nil {
				return nil, err
			}
		}
		nt := &ast.Tuple{Args: args}
		if isFunction {
			if err := ast.Check(t.Value != nil, ast.ErrValue, "tuple %s has no value", t); err != nil {
				return nil, err
			}
		}
		if t.Value != nil {
			v, err := annotate(t.Value, sc)
			if err != nil {
				return nil, err
			}
			if err := ast.Check(v.AsLiteral() != nil, ast.ErrTypeMismatch,
				"value %s of tuple %s is not ground", v, t); err != nil {
				return nil, err
			}
			nt.Value = v
		}
		res.Add(nt)
	}
	return res, nil
}

// Attach merges the interpretations of st into th: types interpreted by
// the structure get their domain, symbol domains are recomputed, cached
// instances are dropped and the values the structure gives are asserted
// in the theory's assignments.
func Attach(th *ast.Theory, st *ast.Structure) error {
	if err := ast.Check(st.VocabName == "" || th.VocabName == "" || st.VocabName == th.VocabName,
		ast.ErrValue, "structure %s over %s attached to theory %s over %s",
		st.Name, st.VocabName, th.Name, th.VocabName); err != nil {
		return err
	}
	for _, si := range st.All() {
		if prev, ok := th.Interpretations[si.Name]; ok && prev != si {
			return fmt.Errorf("%w: %s is interpreted twice", ast.ErrDuplicateDeclaration, si.Name)
		}
		th.Interpretations[si.Name] = si
		if td, ok := si.Symbol.(*ast.TypeDecl); ok {
			td.Interpretation = si
		}
	}
	for _, d := range th.Vocab.SymbolDecls {
		if sd, ok := d.(*ast.SymbolDecl); ok {
			sd.ResetDomain()
		}
	}
	for _, def := range th.Definitions {
		def.ResetCache()
	}
	for _, si := range st.All() {
		sd, ok := si.Symbol.(*ast.SymbolDecl)
		if !ok {
			continue
		}
		for _, inst := range sd.Instances() {
			v := si.InterpretApplication(inst).AsLiteral()
			if v == nil {
				continue
			}
			if _, err := th.Assignments.Assert(inst, v, ast.StructureStatus); err != nil {
				return err
			}
		}
	}
	return nil
}
