// Package load reads programs written as YAML documents into raw,
// unannotated syntax trees.
//
// A document has a vocabulary, a theory and optionally a structure:
//
//	vocabulary:
//	  name: V
//	  types:
//	    - {name: Color, constructors: [Red, Green, Blue]}
//	    - {name: Small, base: Int, range: [[1, 3]]}
//	  symbols:
//	    - {name: p, args: [Color]}
//	    - {name: f, args: [Small], out: Int}
//	theory:
//	  constraints:
//	    - [forall, [[c, Color]], [p, c]]
//	  definitions:
//	    - - {vars: [[x, Small]], head: [f, x], out: 1, body: [">", x, 1]}
//	structure:
//	  interpretations:
//	    - {symbol: p, tuples: [[Red]]}
//	    - {symbol: f, map: [[[1], 2]], default: 0}
//
// Expressions are trees. A scalar is an identifier, a number, a Boolean
// or a quoted date such as "#2024-01-31". A sequence is an operator
// followed by its operands, a quantifier [forall|exists, quantees, body],
// an aggregate [sum, quantees, condition, term] or [count, quantees,
// condition], or a symbol applied to arguments [name, args...].
//
// A quantee is [vars..., sort], [vars..., [values...]] or [var] when the
// sort is to be inferred.
package load
