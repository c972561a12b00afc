package ast

// Connectives and operators as they appear in Expr.Operators and Expr.Q.
const (
	OpAnd       = "∧"
	OpOr        = "∨"
	OpNot       = "¬"
	OpImplies   = "⇒"
	OpImpliedBy = "⇐"
	OpEquiv     = "⇔"

	OpEq = "="
	OpNe = "≠"
	OpLt = "<"
	OpLe = "≤"
	OpGt = ">"
	OpGe = "≥"

	OpAdd = "+"
	OpSub = "-"
	OpMul = "*"
	OpDiv = "/"
	OpMod = "%"
	OpPow = "^"

	Forall   = "∀"
	Exists   = "∃"
	AggSum   = "sum"
	AggCount = "#"
)

// Names of the built-in types.
const (
	BoolType   = "Bool"
	IntType    = "Int"
	RealType   = "Real"
	DateType   = "Date"
	SymbolType = "Symbol"
)

var operatorKinds = map[string]Kind{
	OpAnd:       ConjunctionKind,
	OpOr:        DisjunctionKind,
	OpImplies:   ImplicationKind,
	OpImpliedBy: RImplicationKind,
	OpEquiv:     EquivalenceKind,
	OpEq:        ComparisonKind,
	OpNe:        ComparisonKind,
	OpLt:        ComparisonKind,
	OpLe:        ComparisonKind,
	OpGt:        ComparisonKind,
	OpGe:        ComparisonKind,
	OpAdd:       SumMinusKind,
	OpSub:       SumMinusKind,
	OpMul:       MultDivKind,
	OpDiv:       MultDivKind,
	OpMod:       MultDivKind,
	OpPow:       PowerKind,
}

// OperatorKind returns the kind of the binary node built from op.
func OperatorKind(op string) (Kind, bool) {
	k, ok := operatorKinds[op]
	return k, ok
}

// IsNumeric reports whether a base type takes part in arithmetic promotion.
func IsNumeric(base string) bool {
	return base == IntType || base == RealType
}
