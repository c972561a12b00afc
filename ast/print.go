package ast

import (
	"strings"
)

// String returns the canonical text of e. Two expressions with the same
// text are structurally equal: the text is used as the key of caches and
// assignments.
func (e *Expr) String() string {
	var b strings.Builder
	e.write(&b)
	return b.String()
}

func (e *Expr) write(b *strings.Builder) {
	if e == nil {
		b.WriteString("<nil>")
		return
	}
	switch e.Kind {
	case QuantificationKind:
		b.WriteString(e.Q)
		writeQuantees(b, e.Quantees)
		b.WriteString(": ")
		e.Subs[0].write(b)
	case AggregateKind:
		b.WriteString(e.Q)
		b.WriteString("{")
		writeQuantees(b, e.Quantees)
		for _, s := range e.Subs {
			b.WriteString(": ")
			s.write(b)
		}
		if e.Out != nil {
			b.WriteString(": ")
			e.Out.write(b)
		}
		b.WriteString("}")
	case UnaryKind:
		for _, op := range e.Operators {
			b.WriteString(op)
		}
		writeOperand(b, e.Subs[0])
	case IfKind:
		b.WriteString("if ")
		e.Subs[0].write(b)
		b.WriteString(" then ")
		e.Subs[1].write(b)
		b.WriteString(" else ")
		e.Subs[2].write(b)
	case AppliedSymbolKind:
		b.WriteString(e.Name)
		b.WriteString("(")
		writeList(b, e.Subs)
		b.WriteString(")")
		if e.IsEnumerated {
			b.WriteString(" is enumerated")
		}
		if e.InEnumeration != nil {
			b.WriteString(" in ")
			b.WriteString(e.InEnumeration.String())
		}
	case UnappliedSymbolKind, VariableKind:
		b.WriteString(e.Name)
	case SymbolExprKind:
		if len(e.Subs) != 0 {
			b.WriteString("$(")
			e.Subs[0].write(b)
			b.WriteString(")")
			return
		}
		b.WriteString("`")
		b.WriteString(e.Name)
	case NumberKind:
		if e.Num.IsInt() {
			b.WriteString(e.Num.Num().String())
			return
		}
		b.WriteString(e.Num.RatString())
	case DateKind:
		b.WriteString(e.dateString())
	case ConstructorKind:
		if e.Type == SymbolType {
			b.WriteString("`")
		}
		b.WriteString(e.Name)
	case BracketsKind:
		b.WriteString("(")
		e.Subs[0].write(b)
		b.WriteString(")")
	default:
		if !e.Kind.IsOperator() {
			b.WriteString("<" + e.Kind.String() + ">")
			return
		}
		for i, s := range e.Subs {
			if i > 0 {
				b.WriteString(" ")
				b.WriteString(e.Operators[i-1])
				b.WriteString(" ")
			}
			writeOperand(b, s)
		}
	}
}

func writeOperand(b *strings.Builder, e *Expr) {
	if e.Kind.IsOperator() || e.Kind == QuantificationKind || e.Kind == IfKind {
		b.WriteString("(")
		e.write(b)
		b.WriteString(")")
		return
	}
	e.write(b)
}

func writeList(b *strings.Builder, es []*Expr) {
	for i, e := range es {
		if i > 0 {
			b.WriteString(", ")
		}
		e.write(b)
	}
}

func writeQuantees(b *strings.Builder, qs []*Quantee) {
	for i, q := range qs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strings.Join(q.Names(), ", "))
		switch {
		case q.Set != nil:
			b.WriteString(" ∈ {")
			writeList(b, q.Set)
			b.WriteString("}")
		case q.Sort != "":
			b.WriteString(" ∈ ")
			b.WriteString(q.Sort)
		}
	}
}
