// Package clark computes the completion of inductive definitions.
//
// The completion of a symbol joins the bodies of all its rules into one
// disjunction over canonical variables, one per argument position (and
// one for the value of a function). Variable v of position i of symbol s
// is named "s!i".
package clark

import (
	"fmt"

	set "github.com/hashicorp/go-set/v3"
	"github.com/signadot/fodot/ast"
	"github.com/signadot/fodot/debug"
	"github.com/signadot/fodot/ground"
)

// CompleteTheory completes every definition of th and records the
// completed rules in th.Clark.
func CompleteTheory(th *ast.Theory) error {
	for _, def := range th.Definitions {
		if err := Complete(def); err != nil {
			return err
		}
		for sd, r := range def.Clarks {
			if _, ok := th.Clark[sd]; ok {
				return fmt.Errorf("%w: %s is defined in more than one definition", ast.ErrDuplicateDeclaration, sd.Name)
			}
			th.Clark[sd] = r
		}
	}
	return nil
}

// Complete computes the completed rule of each symbol defined by def. The
// rules must be annotated.
func Complete(def *ast.Definition) error {
	for _, sd := range def.Symbols() {
		vars := canonicalVars(sd)
		def.DefVars[sd] = map[string]*ast.Expr{}
		for _, v := range vars {
			def.DefVars[sd][v.Name] = v
		}
		var disjuncts []*ast.Expr
		for _, r := range def.Rules {
			if r.Symbol != sd {
				continue
			}
			d, err := completeRule(r, vars)
			if err != nil {
				return err
			}
			disjuncts = append(disjuncts, d)
		}
		arity := sd.Arity()
		head := ast.NewApplied(sd.Name, sd, vars[:arity]...)
		head.InHead = true
		res := &ast.Rule{
			Name:          sd.Name,
			Symbol:        sd,
			Head:          head,
			Args:          vars,
			Body:          ast.Or(disjuncts...),
			IsWholeDomain: true,
		}
		for i, v := range vars[:arity] {
			res.Quantees = append(res.Quantees, &ast.Quantee{
				Vars: []*ast.Expr{v},
				Sort: sd.Sorts[i],
				Decl: sd.SortDecls[i],
			})
			if _, finite := ast.Domain(sd.SortDecls[i]); !finite {
				res.IsWholeDomain = false
			}
		}
		def.Clarks[sd] = res
		if debug.Clark() {
			debug.Logf("completion of %s: %s\n", sd.Name, res)
		}
	}
	return nil
}

func canonicalVars(sd *ast.SymbolDecl) []*ast.Expr {
	arity := sd.Arity()
	res := make([]*ast.Expr, 0, arity+1)
	for i, d := range sd.SortDecls {
		res = append(res, ast.NewVariable(fmt.Sprintf("%s!%d", sd.Name, i), ast.BaseType(d), d))
	}
	if !sd.IsPredicate() {
		res = append(res, ast.NewVariable(fmt.Sprintf("%s!%d", sd.Name, arity), sd.OutType(), sd.OutDecl))
	}
	return res
}

// completeRule rewrites the body of r over the canonical variables.
func completeRule(r *ast.Rule, vars []*ast.Expr) (*ast.Expr, error) {
	if err := ast.Check(len(r.Args) == len(vars), ast.ErrTypeMismatch,
		"rule %s has %d arguments, want %d", r, len(r.Args), len(vars)); err != nil {
		return nil, err
	}
	quantees := map[string]*ast.Quantee{}
	for _, q := range r.Quantees {
		for _, v := range q.Vars {
			quantees[v.Name] = q
		}
	}
	renamed := set.New[string](len(vars))
	body := r.Body
	var guards []*ast.Expr
	for i, arg := range r.Args {
		cv := vars[i]
		q, bound := quantees[arg.Name]
		if arg.Kind == ast.VariableKind && bound && !renamed.Contains(arg.Name) && usedOnce(r.Args, arg.Name) {
			x, err := ground.Instantiate(body, arg, cv, nil)
			if err != nil {
				return nil, err
			}
			body = x
			renamed.Insert(arg.Name)
			if g := membership(cv, q); g != nil {
				guards = append(guards, g)
			}
			continue
		}
		guards = append(guards, ast.Equals(cv, arg))
	}
	res := ast.And(append(guards, body)...)
	var leftover []*ast.Quantee
	for _, q := range r.Quantees {
		nq := &ast.Quantee{Sort: q.Sort, Decl: q.Decl, Set: q.Set}
		for _, v := range q.Vars {
			if !renamed.Contains(v.Name) && res.HasFresh(v.Name) {
				nq.Vars = append(nq.Vars, v)
			}
		}
		if len(nq.Vars) != 0 {
			leftover = append(leftover, nq)
		}
	}
	if len(leftover) != 0 {
		res = ast.NewQuantification(ast.Exists, leftover, res)
	}
	return res, nil
}

// usedOnce reports whether name occurs free in exactly one of args.
func usedOnce(args []*ast.Expr, name string) bool {
	n := 0
	for _, a := range args {
		if a.HasFresh(name) {
			n++
		}
	}
	return n == 1
}

// membership returns the condition for cv to lie in the domain of a rule
// variable bound by q, or nil when the canonical sort already ensures it.
func membership(cv *ast.Expr, q *ast.Quantee) *ast.Expr {
	switch {
	case q.Set != nil:
		eqs := make([]*ast.Expr, len(q.Set))
		for i, v := range q.Set {
			eqs[i] = ast.Equals(cv, v)
		}
		return ast.Or(eqs...)
	case q.Decl == nil || q.Decl == cv.Decl:
		return nil
	}
	switch d := q.Decl.(type) {
	case *ast.SymbolDecl:
		return ast.NewApplied(d.Name, d, cv)
	case *ast.RangeDecl:
		if dom, ok := ast.Domain(d); ok {
			eqs := make([]*ast.Expr, len(dom))
			for i, v := range dom {
				eqs[i] = ast.Equals(cv, v)
			}
			return ast.Or(eqs...)
		}
		var parts []*ast.Expr
		for _, el := range d.Elements {
			if el.To == nil {
				parts = append(parts, ast.Equals(cv, el.From))
				continue
			}
			parts = append(parts, ast.NewOperator(ast.ComparisonKind, []string{ast.OpLe, ast.OpLe}, el.From, cv, el.To))
		}
		if len(parts) == 0 {
			return nil
		}
		return ast.Or(parts...)
	}
	return nil
}
