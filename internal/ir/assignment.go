package ir

import (
	"github.com/cwbudde/go-epoch/internal/diag"
	"github.com/cwbudde/go-epoch/internal/stringpool"
	"github.com/cwbudde/go-epoch/internal/types"
)

// Assignment writes the RHS into an l-value path: a bare identifier or a
// structure member chain. Assignments chain to the right; every node but the
// right-most is an l-value, the right-most RHS is an expression.
type Assignment struct {
	LHS          []stringpool.Handle
	OperatorName stringpool.Handle
	RHS          AssignmentChain

	LHSType types.TypeID
	Anchor  int

	WantsTypeAnnotation  bool
	HasAdditionalEffects bool
}

// NewAssignment creates an assignment for the given l-value path and
// operator.
func NewAssignment(lhs []stringpool.Handle, operator stringpool.Handle, anchor int) *Assignment {
	return &Assignment{
		LHS:          lhs,
		OperatorName: operator,
		LHSType:      types.Error,
		Anchor:       anchor,
	}
}

// SetRHSRecursive walks to the far right of the assignment chain and installs
// the given node there.
func (a *Assignment) SetRHSRecursive(rhs AssignmentChain) {
	if a.RHS == nil {
		a.RHS = rhs
		return
	}
	chained, ok := a.RHS.(*AssignmentChainAssignment)
	if !ok {
		// Everything left of the far right must be an l-value; only a
		// chained assignment can accept further chaining.
		diag.Internal("far right of assignment chain cannot participate in further chaining")
	}
	chained.Assignment.SetRHSRecursive(rhs)
}

// Clone produces a deep copy with cached inference results reset.
func (a *Assignment) Clone() *Assignment {
	clone := &Assignment{
		LHS:                  append([]stringpool.Handle(nil), a.LHS...),
		OperatorName:         a.OperatorName,
		LHSType:              types.Error,
		Anchor:               a.Anchor,
		HasAdditionalEffects: a.HasAdditionalEffects,
	}
	if a.RHS != nil {
		clone.RHS = a.RHS.cloneChain()
	}
	return clone
}

// AssignmentChain is the RHS of an assignment: either a further assignment
// (chain) or a terminal expression.
type AssignmentChain interface {
	// TypeOf returns the chain's resolved value type.
	TypeOf(ns *Namespace) types.TypeID

	// CanChainToAssignment reports whether another assignment may hang off
	// this node's right side.
	CanChainToAssignment() bool

	cloneChain() AssignmentChain
}

// AssignmentChainExpression terminates a chain with an r-value expression.
type AssignmentChainExpression struct {
	Expression *Expression
}

// TypeOf returns the terminal expression's type.
func (c *AssignmentChainExpression) TypeOf(*Namespace) types.TypeID {
	return c.Expression.InferredType
}

// CanChainToAssignment reports that expressions terminate chains.
func (c *AssignmentChainExpression) CanChainToAssignment() bool {
	return false
}

func (c *AssignmentChainExpression) cloneChain() AssignmentChain {
	return &AssignmentChainExpression{Expression: c.Expression.Clone()}
}

// AssignmentChainAssignment continues a chain with a nested assignment, the
// "b = 42" fragment of "a = b = 42".
type AssignmentChainAssignment struct {
	Assignment *Assignment
}

// TypeOf returns the nested assignment's l-value type: the value written
// there is the value read by the outer assignment.
func (c *AssignmentChainAssignment) TypeOf(*Namespace) types.TypeID {
	return c.Assignment.LHSType
}

// CanChainToAssignment reports that nested assignments accept chaining.
func (c *AssignmentChainAssignment) CanChainToAssignment() bool {
	return true
}

func (c *AssignmentChainAssignment) cloneChain() AssignmentChain {
	return &AssignmentChainAssignment{Assignment: c.Assignment.Clone()}
}
