package load

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/signadot/fodot/ast"
)

// ParseExpr reads one expression in tree form.
func ParseExpr(d []byte) (*ast.Expr, error) {
	var v any
	if err := yaml.Unmarshal(d, &v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return Expr(v)
}

type connective struct {
	kind ast.Kind
	op   string
}

var connectives = map[string]connective{
	"and": {ast.ConjunctionKind, ast.OpAnd},
	"or":  {ast.DisjunctionKind, ast.OpOr},
	"=>":  {ast.ImplicationKind, ast.OpImplies},
	"<=":  {ast.RImplicationKind, ast.OpImpliedBy},
	"<=>": {ast.EquivalenceKind, ast.OpEquiv},
	"=":   {ast.ComparisonKind, ast.OpEq},
	"!=":  {ast.ComparisonKind, ast.OpNe},
	"<":   {ast.ComparisonKind, ast.OpLt},
	"=<":  {ast.ComparisonKind, ast.OpLe},
	">":   {ast.ComparisonKind, ast.OpGt},
	">=":  {ast.ComparisonKind, ast.OpGe},
	"+":   {ast.SumMinusKind, ast.OpAdd},
	"-":   {ast.SumMinusKind, ast.OpSub},
	"*":   {ast.MultDivKind, ast.OpMul},
	"/":   {ast.MultDivKind, ast.OpDiv},
	"%":   {ast.MultDivKind, ast.OpMod},
	"^":   {ast.PowerKind, ast.OpPow},
}

// Expr converts a decoded YAML value to a raw expression.
func Expr(v any) (*ast.Expr, error) {
	switch x := v.(type) {
	case nil:
		return nil, fmt.Errorf("%w: empty expression", ErrLoad)
	case bool:
		return ast.BoolLit(x), nil
	case int:
		return ast.Int(int64(x)), nil
	case int64:
		return ast.Int(x), nil
	case uint64:
		return ast.NewNumber(new(ast.Rat).SetInt(new(big.Int).SetUint64(x)), ast.IntType), nil
	case float64:
		r := new(ast.Rat)
		if r.SetFloat64(x) == nil {
			return nil, fmt.Errorf("%w: %v is not a number", ErrLoad, x)
		}
		return ast.NewNumber(r, ast.RealType), nil
	case string:
		return scalar(x)
	case []any:
		return sequence(x)
	}
	return nil, fmt.Errorf("%w: unexpected %T %v", ErrLoad, v, v)
}

func scalar(s string) (*ast.Expr, error) {
	switch {
	case s == "":
		return nil, fmt.Errorf("%w: empty identifier", ErrLoad)
	case strings.HasPrefix(s, "#"):
		return ast.ParseDate(s)
	case s[0] == '-' || s[0] >= '0' && s[0] <= '9':
		return ast.ParseNumber(s)
	}
	return ast.NewUnapplied(s), nil
}

func sequence(xs []any) (*ast.Expr, error) {
	if len(xs) == 0 {
		return nil, fmt.Errorf("%w: empty sequence", ErrLoad)
	}
	head, ok := xs[0].(string)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrOperator, xs[0])
	}
	args := xs[1:]
	if c, ok := connectives[head]; ok {
		if c.kind == ast.SumMinusKind && c.op == ast.OpSub && len(args) == 1 {
			sub, err := Expr(args[0])
			if err != nil {
				return nil, err
			}
			return &ast.Expr{Kind: ast.UnaryKind, Operators: []string{ast.OpSub}, Subs: []*ast.Expr{sub}}, nil
		}
		if len(args) < 2 {
			return nil, fmt.Errorf("%w: %s takes at least 2 operands, got %d", ErrArguments, head, len(args))
		}
		subs, err := exprs(args)
		if err != nil {
			return nil, err
		}
		ops := make([]string, len(subs)-1)
		for i := range ops {
			ops[i] = c.op
		}
		return &ast.Expr{Kind: c.kind, Operators: ops, Subs: subs}, nil
	}
	switch head {
	case "not":
		if err := arity(head, args, 1); err != nil {
			return nil, err
		}
		sub, err := Expr(args[0])
		if err != nil {
			return nil, err
		}
		if sub.Kind == ast.UnaryKind && sub.Operators[0] == ast.OpNot {
			sub.Operators = append([]string{ast.OpNot}, sub.Operators...)
			return sub, nil
		}
		return &ast.Expr{Kind: ast.UnaryKind, Operators: []string{ast.OpNot}, Subs: []*ast.Expr{sub}}, nil
	case "if":
		if err := arity(head, args, 3); err != nil {
			return nil, err
		}
		subs, err := exprs(args)
		if err != nil {
			return nil, err
		}
		return &ast.Expr{Kind: ast.IfKind, Subs: subs}, nil
	case "paren":
		if err := arity(head, args, 1); err != nil {
			return nil, err
		}
		sub, err := Expr(args[0])
		if err != nil {
			return nil, err
		}
		return &ast.Expr{Kind: ast.BracketsKind, Subs: []*ast.Expr{sub}}, nil
	case "$":
		if err := arity(head, args, 1); err != nil {
			return nil, err
		}
		sub, err := Expr(args[0])
		if err != nil {
			return nil, err
		}
		return &ast.Expr{Kind: ast.SymbolExprKind, Subs: []*ast.Expr{sub}}, nil
	case "is_enumerated":
		if err := arity(head, args, 1); err != nil {
			return nil, err
		}
		a, err := application(args[0])
		if err != nil {
			return nil, err
		}
		a.IsEnumerated = true
		return a, nil
	case "in":
		if err := arity(head, args, 2); err != nil {
			return nil, err
		}
		a, err := application(args[0])
		if err != nil {
			return nil, err
		}
		vals, ok := args[1].([]any)
		if !ok {
			return nil, fmt.Errorf("%w: in needs a list of values", ErrArguments)
		}
		en := ast.NewEnumeration()
		for _, v := range vals {
			x, err := Expr(v)
			if err != nil {
				return nil, err
			}
			en.Add(&ast.Tuple{Args: []*ast.Expr{x}})
		}
		a.InEnumeration = en
		return a, nil
	case ast.Forall, "forall", ast.Exists, "exists":
		return quantification(head, args)
	case "sum", "count", ast.AggCount:
		return aggregate(head, args)
	}
	subs, err := exprs(args)
	if err != nil {
		return nil, err
	}
	return &ast.Expr{Kind: ast.AppliedSymbolKind, Name: head, Subs: subs}, nil
}

func arity(head string, args []any, n int) error {
	if len(args) != n {
		return fmt.Errorf("%w: %s takes %d operands, got %d", ErrArguments, head, n, len(args))
	}
	return nil
}

func exprs(vs []any) ([]*ast.Expr, error) {
	res := make([]*ast.Expr, len(vs))
	for i, v := range vs {
		x, err := Expr(v)
		if err != nil {
			return nil, err
		}
		res[i] = x
	}
	return res, nil
}

// application reads the operand of is_enumerated and in, which must be
// a symbol, applied or not.
func application(v any) (*ast.Expr, error) {
	x, err := Expr(v)
	if err != nil {
		return nil, err
	}
	switch x.Kind {
	case ast.AppliedSymbolKind:
		return x, nil
	case ast.UnappliedSymbolKind:
		return &ast.Expr{Kind: ast.AppliedSymbolKind, Name: x.Name}, nil
	}
	return nil, fmt.Errorf("%w: %v is not a symbol application", ErrArguments, v)
}

func quantification(head string, args []any) (*ast.Expr, error) {
	if err := arity(head, args, 2); err != nil {
		return nil, err
	}
	qs, err := Quantees(args[0])
	if err != nil {
		return nil, err
	}
	body, err := Expr(args[1])
	if err != nil {
		return nil, err
	}
	q := ast.Forall
	if head == "exists" || head == ast.Exists {
		q = ast.Exists
	}
	return &ast.Expr{Kind: ast.QuantificationKind, Q: q, Quantees: qs, Subs: []*ast.Expr{body}}, nil
}

func aggregate(head string, args []any) (*ast.Expr, error) {
	e := &ast.Expr{Kind: ast.AggregateKind, Q: ast.AggSum}
	if head != "sum" {
		e.Q = ast.AggCount
	}
	switch {
	case e.Q == ast.AggSum && len(args) == 2:
	case e.Q == ast.AggSum:
		if err := arity(head, args, 3); err != nil {
			return nil, err
		}
	default:
		if err := arity(head, args, 2); err != nil {
			return nil, err
		}
	}
	qs, err := Quantees(args[0])
	if err != nil {
		return nil, err
	}
	e.Quantees = qs
	if e.Q == ast.AggSum && len(args) == 2 {
		// [sum, quantees, term]
		e.Out, err = Expr(args[1])
		return e, err
	}
	cond, err := Expr(args[1])
	if err != nil {
		return nil, err
	}
	e.Subs = []*ast.Expr{cond}
	if e.Q == ast.AggSum {
		e.Out, err = Expr(args[2])
		if err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Quantees reads a list of quantees.
func Quantees(v any) ([]*ast.Quantee, error) {
	xs, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: quantees must be a list, got %v", ErrArguments, v)
	}
	res := make([]*ast.Quantee, 0, len(xs))
	for _, x := range xs {
		q, err := quantee(x)
		if err != nil {
			return nil, err
		}
		res = append(res, q)
	}
	return res, nil
}

func quantee(v any) (*ast.Quantee, error) {
	parts, ok := v.([]any)
	if !ok || len(parts) == 0 {
		return nil, fmt.Errorf("%w: quantee %v is not [vars..., sort]", ErrArguments, v)
	}
	q := &ast.Quantee{}
	names := parts
	if len(parts) > 1 {
		names = parts[:len(parts)-1]
		switch s := parts[len(parts)-1].(type) {
		case string:
			q.Sort = s
		case []any:
			set, err := exprs(s)
			if err != nil {
				return nil, err
			}
			q.Set = set
		default:
			return nil, fmt.Errorf("%w: sort %v of quantee", ErrArguments, s)
		}
	}
	for _, n := range names {
		name, ok := n.(string)
		if !ok {
			return nil, fmt.Errorf("%w: variable %v is not a name", ErrArguments, n)
		}
		q.Vars = append(q.Vars, ast.NewUnapplied(name))
	}
	return q, nil
}
