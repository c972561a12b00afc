// Package annotate resolves identifiers, checks and infers types, scopes
// quantified variables and removes syntactic sugar.
//
// ResolveVocabulary installs the declarations of a vocabulary in its
// symbol table. Expr annotates one expression against a Scope, the
// vocabulary together with the variables bound around the expression.
// Theory and Structure annotate whole blocks, and Attach merges the
// interpretations of a structure into a theory.
//
// Annotation returns new trees: raw expressions are not modified.
package annotate
