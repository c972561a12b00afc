package ast

// Program is a vocabulary with an optional theory and structure over it.
type Program struct {
	Vocab     *Vocabulary
	Theory    *Theory
	Structure *Structure
}
