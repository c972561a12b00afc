package ast

// Truth returns the Boolean value of e when it is known, looking through
// cached values and simpler forms.
func Truth(e *Expr) (value, ok bool) {
	lit := e.AsLiteral()
	if lit == nil || lit.Kind != ConstructorKind || lit.Type != BoolType {
		return false, false
	}
	switch lit.Name {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}
