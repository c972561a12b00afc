// Package eval checks ground formulas against the values of their atoms.
//
// A formula is compiled to an expr program in which each atom is a call
// atom(code) returning the value recorded in the assignments. Numbers stay
// exact rationals through the program: arithmetic and comparisons are calls
// on *big.Rat values. Powers with a non-integer exponent are the only
// computation done in float64.
package eval
