package ast

import "fmt"

type Kind int

const (
	QuantificationKind Kind = iota
	AggregateKind
	ImplicationKind
	RImplicationKind
	EquivalenceKind
	DisjunctionKind
	ConjunctionKind
	ComparisonKind
	SumMinusKind
	MultDivKind
	PowerKind
	UnaryKind
	IfKind
	AppliedSymbolKind
	UnappliedSymbolKind
	VariableKind
	SymbolExprKind
	NumberKind
	DateKind
	ConstructorKind
	BracketsKind
)

var kindNames = map[Kind]string{
	QuantificationKind:  "Quantification",
	AggregateKind:       "Aggregate",
	ImplicationKind:     "Implication",
	RImplicationKind:    "RImplication",
	EquivalenceKind:     "Equivalence",
	DisjunctionKind:     "Disjunction",
	ConjunctionKind:     "Conjunction",
	ComparisonKind:      "Comparison",
	SumMinusKind:        "SumMinus",
	MultDivKind:         "MultDiv",
	PowerKind:           "Power",
	UnaryKind:           "Unary",
	IfKind:              "If",
	AppliedSymbolKind:   "AppliedSymbol",
	UnappliedSymbolKind: "UnappliedSymbol",
	VariableKind:        "Variable",
	SymbolExprKind:      "SymbolExpr",
	NumberKind:          "Number",
	DateKind:            "Date",
	ConstructorKind:     "Constructor",
	BracketsKind:        "Brackets",
}

func (k Kind) String() string {
	s, ok := kindNames[k]
	if ok {
		return s
	}
	return "<unknown kind>"
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(d []byte) error {
	for kk, s := range kindNames {
		if s == string(d) {
			*k = kk
			return nil
		}
	}
	return fmt.Errorf("unrecognized kind %q", d)
}

func Kinds() []Kind {
	res := make([]Kind, 0, len(kindNames))
	for k := QuantificationKind; k <= BracketsKind; k++ {
		res = append(res, k)
	}
	return res
}

// IsOperator reports whether k is one of the binary operator kinds, whose
// Subs are joined by Operators.
func (k Kind) IsOperator() bool {
	return k >= ImplicationKind && k <= PowerKind
}

func (k Kind) IsLiteral() bool {
	switch k {
	case NumberKind, DateKind, ConstructorKind:
		return true
	default:
		return false
	}
}

// IsBinder reports whether nodes of kind k bind variables.
func (k Kind) IsBinder() bool {
	return k == QuantificationKind || k == AggregateKind
}
