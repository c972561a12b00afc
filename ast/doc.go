// Package ast provides the abstract syntax of FO(·) knowledge bases:
// vocabularies, theories, structures and the expressions they contain.
//
// # Overview
//
// A knowledge base is made of three blocks. A Vocabulary declares types and
// symbols, a Theory states constraints and inductive definitions over those
// symbols, and a Structure gives some symbols a (partial) interpretation by
// enumerating their values. The annotate, clark and ground packages rewrite
// these trees until every constraint is a ground formula that can be handed
// to a solver.
//
// # Expressions
//
// Every expression is an *Expr. Expr is a tagged union: the Kind field
// selects the variant and the variant decides which payload fields are
// meaningful.
//
//   - QuantificationKind, AggregateKind: Q, Quantees, Subs[0] is the body
//   - ImplicationKind ... PowerKind: Subs joined by Operators
//   - UnaryKind: Operators applied to Subs[0]
//   - IfKind: Subs[0] then Subs[1] else Subs[2]
//   - AppliedSymbolKind: Name, Decl, Subs are the arguments
//   - UnappliedSymbolKind: Name, before resolution
//   - VariableKind: Name, Decl is the sort
//   - SymbolExprKind: Name, a symbol used as data
//   - NumberKind, DateKind, ConstructorKind: literals
//   - BracketsKind: Subs[0], removed by annotation
//
// Fields shared by all variants are Type, Value, Simpler, CoConstraint,
// FreshVars and Annotations. An expression is ground when FreshVars is
// empty. Code returns the canonical text of an expression; two expressions
// are structurally equal when their codes are equal.
//
// # Immutability
//
// Rewriting passes never modify an expression in place. They take a shallow
// Copy of the node, change the copy and return it. Code that builds trees by
// hand may mutate nodes until they are handed to a pass.
//
// # Enumerations
//
// Enumeration.Contains and SymbolInterpretation.InterpretApplication turn a
// table of tuples into a decision structure for a possibly symbolic argument
// tuple: a literal when the arguments are known, a chain of if-then-else or
// a disjunction of equalities when they are not. Tuples keep their insertion
// order and the first matching tuple wins.
package ast
