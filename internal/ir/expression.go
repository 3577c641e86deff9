package ir

import "github.com/cwbudde/go-epoch/internal/types"

// Expression is an ordered sequence of atoms plus memoised inference results.
// Before precedence reordering the atom order mirrors the source; afterwards
// it is evaluation order.
type Expression struct {
	Atoms []ExpressionAtom

	InferredType types.TypeID

	Coalesced                     bool
	InferenceDone                 bool
	AtomsArePatternMatchedLiteral bool
}

// NewExpression creates an empty expression with no inferred type.
func NewExpression() *Expression {
	return &Expression{InferredType: types.Error}
}

// AddAtom appends an atom to the expression.
func (e *Expression) AddAtom(atom ExpressionAtom) {
	e.Atoms = append(e.Atoms, atom)
}

// TypeOf returns the memoised inferred type of the expression.
func (e *Expression) TypeOf() types.TypeID {
	return e.InferredType
}

// Clone produces a deep copy. Structural annotations (coalescing, pattern
// markers) are preserved; cached inference results are reset so the clone
// re-infers.
func (e *Expression) Clone() *Expression {
	clone := &Expression{
		Atoms:                         make([]ExpressionAtom, len(e.Atoms)),
		InferredType:                  types.Error,
		Coalesced:                     e.Coalesced,
		AtomsArePatternMatchedLiteral: e.AtomsArePatternMatchedLiteral,
	}
	for i, atom := range e.Atoms {
		clone.Atoms[i] = atom.CloneAtom()
	}
	return clone
}

// IsSingleLiteral reports whether the expression consists of exactly one
// literal atom, the shape required by pattern-matched parameters.
func (e *Expression) IsSingleLiteral() bool {
	if len(e.Atoms) != 1 {
		return false
	}
	switch e.Atoms[0].(type) {
	case *LiteralInteger32Atom, *LiteralInteger16Atom, *LiteralReal32Atom,
		*LiteralBooleanAtom, *LiteralStringAtom:
		return true
	}
	return false
}
