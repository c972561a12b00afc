package ast

import (
	"fmt"
)

// Status says where the value of an atom comes from.
type Status int

const (
	Unknown Status = iota
	Given
	StructureStatus
	Consequence
)

var statusNames = map[Status]string{
	Unknown:         "UNKNOWN",
	Given:           "GIVEN",
	StructureStatus: "STRUCTURE",
	Consequence:     "CONSEQUENCE",
}

func (s Status) String() string {
	n, ok := statusNames[s]
	if ok {
		return n
	}
	return "<unknown status>"
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(d []byte) error {
	for ss, n := range statusNames {
		if n == string(d) {
			*s = ss
			return nil
		}
	}
	return fmt.Errorf("unrecognized status %q", d)
}

// Assignment is what is known about one ground atom.
type Assignment struct {
	Sentence *Expr
	Value    *Expr
	Status   Status
	Relevant bool
}

func (a *Assignment) String() string {
	if a.Value == nil {
		return fmt.Sprintf("%s: ? (%s)", a.Sentence.Code(), a.Status)
	}
	return fmt.Sprintf("%s: %s (%s)", a.Sentence.Code(), a.Value.Code(), a.Status)
}

// Assignments maps the codes of ground atoms to their assignment, in the
// order the atoms were first met.
type Assignments struct {
	byCode map[string]*Assignment
	order  []string
}

func NewAssignments() *Assignments {
	return &Assignments{byCode: map[string]*Assignment{}}
}

// Extend registers sentence with an unknown value if it is not present.
func (as *Assignments) Extend(sentence *Expr) *Assignment {
	code := sentence.Code()
	if a, ok := as.byCode[code]; ok {
		return a
	}
	a := &Assignment{Sentence: sentence, Status: Unknown, Relevant: true}
	as.byCode[code] = a
	as.order = append(as.order, code)
	return a
}

// Assert records value for sentence. Asserting a different value for an
// atom whose value is Given or from the structure is an error.
func (as *Assignments) Assert(sentence, value *Expr, status Status) (*Assignment, error) {
	a := as.Extend(sentence)
	if a.Value != nil && (a.Status == Given || a.Status == StructureStatus) {
		if !Equal(a.Value, value) {
			return nil, fmt.Errorf("%w: %s is %s (%s), cannot be %s", ErrValue,
				sentence.Code(), a.Value.Code(), a.Status, value.Code())
		}
		return a, nil
	}
	a.Value = value
	a.Status = status
	return a, nil
}

func (as *Assignments) Get(code string) (*Assignment, bool) {
	a, ok := as.byCode[code]
	return a, ok
}

// Value returns the known value of the atom with the given code.
func (as *Assignments) Value(code string) *Expr {
	a, ok := as.byCode[code]
	if !ok {
		return nil
	}
	return a.Value
}

// All returns the assignments in insertion order.
func (as *Assignments) All() []*Assignment {
	res := make([]*Assignment, len(as.order))
	for i, c := range as.order {
		res[i] = as.byCode[c]
	}
	return res
}

func (as *Assignments) Len() int {
	return len(as.order)
}

func (as *Assignments) Copy() *Assignments {
	res := &Assignments{
		byCode: make(map[string]*Assignment, len(as.byCode)),
		order:  append([]string(nil), as.order...),
	}
	for c, a := range as.byCode {
		aa := *a
		res.byCode[c] = &aa
	}
	return res
}
