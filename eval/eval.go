package eval

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/signadot/fodot/ast"
	"github.com/signadot/fodot/debug"
)

// Formula evaluates a ground Boolean formula against the values of its
// atoms in as.
func Formula(e *ast.Expr, as *ast.Assignments) (bool, error) {
	v, err := Value(e, as)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %s is not Boolean, it is %v", ErrEval, e, v)
	}
	return b, nil
}

// Value evaluates a ground expression. Booleans evaluate to bool, numbers
// and dates to exact *big.Rat (dates as day counts) and other constructors
// to their name.
func Value(e *ast.Expr, as *ast.Assignments) (any, error) {
	if err := checkAtoms(e, as); err != nil {
		return nil, err
	}
	var b strings.Builder
	if err := source(&b, e); err != nil {
		return nil, err
	}
	src := b.String()
	if debug.Enum() {
		debug.Logf("evaluating %s as %s\n", e, src)
	}
	prg, err := expr.Compile(src, exprOpts(as)...)
	if err != nil {
		return nil, fmt.Errorf("%w: compiling %s: %w", ErrEval, e, err)
	}
	res, err := expr.Run(prg, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrEval, e, err)
	}
	return res, nil
}

// Check returns the formulas which are false under as.
func Check(formulas []*ast.Expr, as *ast.Assignments) ([]*ast.Expr, error) {
	var res []*ast.Expr
	for _, f := range formulas {
		ok, err := Formula(f, as)
		if err != nil {
			return nil, err
		}
		if !ok {
			res = append(res, f)
		}
	}
	return res, nil
}

func checkAtoms(e *ast.Expr, as *ast.Assignments) error {
	return e.Visit(func(x *ast.Expr, isPost bool) (bool, error) {
		if isPost {
			return true, nil
		}
		switch x.Kind {
		case ast.QuantificationKind, ast.AggregateKind, ast.VariableKind:
			return false, fmt.Errorf("%w: %s", ErrNotGround, x)
		case ast.AppliedSymbolKind:
			if x.AsLiteral() != nil {
				return false, nil
			}
			if as.Value(x.Code()) == nil {
				return false, fmt.Errorf("%w: %s", ErrUnknownAtom, x)
			}
			return false, nil
		}
		return true, nil
	})
}

var comparisons = map[string]string{
	ast.OpLt: "<",
	ast.OpLe: "<=",
	ast.OpGt: ">",
	ast.OpGe: ">=",
}

// source writes e in the expr language.
func source(b *strings.Builder, e *ast.Expr) error {
	if lit := e.AsLiteral(); lit != nil {
		return literal(b, lit)
	}
	switch e.Kind {
	case ast.AppliedSymbolKind:
		b.WriteString("atom(")
		b.WriteString(strconv.Quote(e.Code()))
		b.WriteString(")")
		return nil
	case ast.BracketsKind:
		return source(b, e.Subs[0])
	case ast.ConjunctionKind:
		return join(b, e.Subs, " && ")
	case ast.DisjunctionKind:
		return join(b, e.Subs, " || ")
	case ast.ImplicationKind:
		b.WriteString("(!")
		if err := source(b, e.Subs[0]); err != nil {
			return err
		}
		b.WriteString(" || ")
		if err := source(b, e.Subs[1]); err != nil {
			return err
		}
		b.WriteString(")")
		return nil
	case ast.EquivalenceKind:
		return join(b, e.Subs, " == ")
	case ast.UnaryKind:
		var sub strings.Builder
		if err := source(&sub, e.Subs[0]); err != nil {
			return err
		}
		acc := sub.String()
		for i := len(e.Operators) - 1; i >= 0; i-- {
			if e.Operators[i] == ast.OpNot {
				acc = "(!" + acc + ")"
				continue
			}
			acc = "neg(" + acc + ")"
		}
		b.WriteString(acc)
		return nil
	case ast.IfKind:
		b.WriteString("(")
		for i, s := range e.Subs {
			switch i {
			case 1:
				b.WriteString(" ? ")
			case 2:
				b.WriteString(" : ")
			}
			if err := source(b, s); err != nil {
				return err
			}
		}
		b.WriteString(")")
		return nil
	case ast.ComparisonKind:
		b.WriteString("(")
		for i, op := range e.Operators {
			if i > 0 {
				b.WriteString(" && ")
			}
			var lhs, rhs strings.Builder
			if err := source(&lhs, e.Subs[i]); err != nil {
				return err
			}
			if err := source(&rhs, e.Subs[i+1]); err != nil {
				return err
			}
			args := "(" + lhs.String() + ", " + rhs.String() + ")"
			switch op {
			case ast.OpEq:
				b.WriteString("eq" + args)
			case ast.OpNe:
				b.WriteString("!eq" + args)
			default:
				b.WriteString("cmp" + args + " " + comparisons[op] + " 0")
			}
		}
		b.WriteString(")")
		return nil
	case ast.SumMinusKind, ast.MultDivKind:
		return fold(b, e)
	case ast.PowerKind:
		return power(b, e)
	}
	return fmt.Errorf("%w: %s cannot be evaluated", ErrEval, e)
}

func join(b *strings.Builder, subs []*ast.Expr, sep string) error {
	b.WriteString("(")
	for i, s := range subs {
		if i > 0 {
			b.WriteString(sep)
		}
		if err := source(b, s); err != nil {
			return err
		}
	}
	b.WriteString(")")
	return nil
}

var arithmetic = map[string]string{
	ast.OpAdd: "add",
	ast.OpSub: "sub",
	ast.OpMul: "mul",
	ast.OpDiv: "quo",
	ast.OpMod: "mod",
}

// fold nests the operands left to right as calls.
func fold(b *strings.Builder, e *ast.Expr) error {
	var lhs strings.Builder
	if err := source(&lhs, e.Subs[0]); err != nil {
		return err
	}
	acc := lhs.String()
	for i, op := range e.Operators {
		var rhs strings.Builder
		if err := source(&rhs, e.Subs[i+1]); err != nil {
			return err
		}
		fn := arithmetic[op]
		if op == ast.OpDiv && e.Type == ast.IntType {
			fn = "div"
		}
		acc = fn + "(" + acc + ", " + rhs.String() + ")"
	}
	b.WriteString(acc)
	return nil
}

// power nests the operands right to left.
func power(b *strings.Builder, e *ast.Expr) error {
	var rhs strings.Builder
	if err := source(&rhs, e.Subs[len(e.Subs)-1]); err != nil {
		return err
	}
	acc := rhs.String()
	for i := len(e.Subs) - 2; i >= 0; i-- {
		var lhs strings.Builder
		if err := source(&lhs, e.Subs[i]); err != nil {
			return err
		}
		acc = "pow(" + lhs.String() + ", " + acc + ")"
	}
	b.WriteString(acc)
	return nil
}

func literal(b *strings.Builder, lit *ast.Expr) error {
	switch lit.Kind {
	case ast.NumberKind, ast.DateKind:
		b.WriteString("num(" + strconv.Quote(lit.Num.RatString()) + ")")
		return nil
	case ast.ConstructorKind:
		if lit.Type == ast.BoolType {
			b.WriteString(lit.Name)
			return nil
		}
		b.WriteString(strconv.Quote(lit.Name))
		return nil
	}
	return fmt.Errorf("%w: %s is not a value", ErrEval, lit)
}

// goValue returns the value of a literal as the expr programs see it.
func goValue(lit *ast.Expr) any {
	switch lit.Kind {
	case ast.NumberKind, ast.DateKind:
		return new(big.Rat).Set(lit.Num)
	case ast.ConstructorKind:
		if lit.Type == ast.BoolType {
			return lit.Name == "true"
		}
		return lit.Name
	}
	return nil
}

func rat(v any) (*big.Rat, error) {
	r, ok := v.(*big.Rat)
	if !ok {
		return nil, fmt.Errorf("%w: %v is not a number", ErrEval, v)
	}
	return r, nil
}

func rats(params []any) (*big.Rat, *big.Rat, error) {
	x, err := rat(params[0])
	if err != nil {
		return nil, nil, err
	}
	y, err := rat(params[1])
	if err != nil {
		return nil, nil, err
	}
	return x, y, nil
}

// binary makes an exact arithmetic function of two numbers.
func binary(name string, f func(x, y *big.Rat) (*big.Rat, error)) expr.Option {
	return expr.Function(name, func(params ...any) (any, error) {
		x, y, err := rats(params)
		if err != nil {
			return nil, err
		}
		return f(x, y)
	},
		new(func(any, any) any))
}

func exprOpts(as *ast.Assignments) []expr.Option {
	return []expr.Option{
		expr.Function("atom", func(params ...any) (any, error) {
			code := params[0].(string)
			v := as.Value(code)
			if v == nil {
				return nil, fmt.Errorf("%w: %s", ErrUnknownAtom, code)
			}
			return goValue(v), nil
		},
			new(func(string) any)),
		expr.Function("num", func(params ...any) (any, error) {
			r, ok := new(big.Rat).SetString(params[0].(string))
			if !ok {
				return nil, fmt.Errorf("%w: %q is not a number", ErrEval, params[0])
			}
			return r, nil
		},
			new(func(string) any)),
		expr.Function("eq", func(params ...any) (any, error) {
			x, xok := params[0].(*big.Rat)
			y, yok := params[1].(*big.Rat)
			if xok && yok {
				return x.Cmp(y) == 0, nil
			}
			return params[0] == params[1], nil
		},
			new(func(any, any) bool)),
		expr.Function("cmp", func(params ...any) (any, error) {
			x, y, err := rats(params)
			if err != nil {
				return nil, err
			}
			return x.Cmp(y), nil
		},
			new(func(any, any) int)),
		expr.Function("neg", func(params ...any) (any, error) {
			x, err := rat(params[0])
			if err != nil {
				return nil, err
			}
			return new(big.Rat).Neg(x), nil
		},
			new(func(any) any)),
		binary("add", func(x, y *big.Rat) (*big.Rat, error) {
			return new(big.Rat).Add(x, y), nil
		}),
		binary("sub", func(x, y *big.Rat) (*big.Rat, error) {
			return new(big.Rat).Sub(x, y), nil
		}),
		binary("mul", func(x, y *big.Rat) (*big.Rat, error) {
			return new(big.Rat).Mul(x, y), nil
		}),
		binary("quo", func(x, y *big.Rat) (*big.Rat, error) {
			if y.Sign() == 0 {
				return nil, fmt.Errorf("%w: division by zero", ErrEval)
			}
			return new(big.Rat).Quo(x, y), nil
		}),
		binary("div", func(x, y *big.Rat) (*big.Rat, error) {
			q, _, err := euclid(x, y)
			return q, err
		}),
		binary("mod", func(x, y *big.Rat) (*big.Rat, error) {
			_, r, err := euclid(x, y)
			return r, err
		}),
		binary("pow", pow),
	}
}

// euclid divides x by y, the remainder is never negative.
func euclid(x, y *big.Rat) (q, r *big.Rat, err error) {
	if y.Sign() == 0 {
		return nil, nil, fmt.Errorf("%w: division by zero", ErrEval)
	}
	ratio := new(big.Rat).Quo(x, y)
	if y.Sign() > 0 {
		q = new(big.Rat).SetInt(floor(ratio))
	} else {
		q = new(big.Rat).SetInt(floor(ratio.Neg(ratio)))
		q.Neg(q)
	}
	r = new(big.Rat).Mul(y, q)
	r.Sub(x, r)
	return q, r, nil
}

func floor(x *big.Rat) *big.Int {
	return new(big.Int).Div(x.Num(), x.Denom())
}

// pow is exact for integer exponents. Other exponents go through float64.
func pow(x, y *big.Rat) (*big.Rat, error) {
	if !y.IsInt() {
		fx, _ := x.Float64()
		fy, _ := y.Float64()
		res := new(big.Rat)
		if res.SetFloat64(math.Pow(fx, fy)) == nil {
			return nil, fmt.Errorf("%w: %s^%s is not a number", ErrEval, x.RatString(), y.RatString())
		}
		return res, nil
	}
	n := new(big.Int).Abs(y.Num())
	num := new(big.Int).Exp(x.Num(), n, nil)
	den := new(big.Int).Exp(x.Denom(), n, nil)
	if y.Sign() >= 0 {
		return new(big.Rat).SetFrac(num, den), nil
	}
	if num.Sign() == 0 {
		return nil, fmt.Errorf("%w: division by zero", ErrEval)
	}
	return new(big.Rat).SetFrac(den, num), nil
}
