package ir

import (
	"github.com/cwbudde/go-epoch/internal/stringpool"
	"github.com/cwbudde/go-epoch/internal/types"
)

// ResolutionState tracks a statement's progress through inference. Pending
// and Failed are distinct states so a statement that errored is never
// mistaken for one not yet visited.
type ResolutionState int

const (
	ResolutionPending ResolutionState = iota
	ResolutionStarted
	ResolutionDone
	ResolutionFailed
)

// Statement is one function invocation: a name, ordered parameter
// expressions, and the resolved return type. Name is rewritten to a specific
// overload (or synthesised dispatcher) during inference; OriginalName stays
// stable for error reporting.
type Statement struct {
	Name         stringpool.Handle
	OriginalName stringpool.Handle
	Anchor       int

	Parameters []*Expression

	MyType types.TypeID
	State  ResolutionState

	// TemplateArgs holds deferred template arguments consumed during
	// compile-time code execution; each entry is an identifier payload
	// naming a type.
	TemplateArgs []types.CompileTimeParameter

	CompileHelperRun   bool
	NeedsInstantiation bool
}

// NewStatement creates a statement invoking the given name.
func NewStatement(name stringpool.Handle, anchor int) *Statement {
	return &Statement{
		Name:         name,
		OriginalName: name,
		Anchor:       anchor,
		MyType:       types.Error,
	}
}

// AddParameter appends a parameter expression.
func (s *Statement) AddParameter(expr *Expression) {
	s.Parameters = append(s.Parameters, expr)
}

// TypeOf returns the statement's resolved return type.
func (s *Statement) TypeOf() types.TypeID {
	return s.MyType
}

// Clone produces a deep copy with cached inference results reset.
func (s *Statement) Clone() *Statement {
	clone := &Statement{
		Name:               s.OriginalName,
		OriginalName:       s.OriginalName,
		Anchor:             s.Anchor,
		Parameters:         make([]*Expression, len(s.Parameters)),
		MyType:             types.Error,
		TemplateArgs:       append([]types.CompileTimeParameter(nil), s.TemplateArgs...),
		NeedsInstantiation: s.NeedsInstantiation,
	}
	for i, p := range s.Parameters {
		clone.Parameters[i] = p.Clone()
	}
	return clone
}

// PreOpStatement applies a pre-operator to an l-value path: ++x.
type PreOpStatement struct {
	OperatorName stringpool.Handle
	Operand      []stringpool.Handle
	MyType       types.TypeID
	Anchor       int
}

// TypeOf returns the resolved result type.
func (s *PreOpStatement) TypeOf() types.TypeID {
	return s.MyType
}

// Clone produces a deep copy with cached inference results reset.
func (s *PreOpStatement) Clone() *PreOpStatement {
	return &PreOpStatement{
		OperatorName: s.OperatorName,
		Operand:      append([]stringpool.Handle(nil), s.Operand...),
		MyType:       types.Error,
		Anchor:       s.Anchor,
	}
}

// PostOpStatement applies a post-operator to an l-value path: x++.
type PostOpStatement struct {
	OperatorName stringpool.Handle
	Operand      []stringpool.Handle
	MyType       types.TypeID
	Anchor       int
}

// TypeOf returns the resolved result type.
func (s *PostOpStatement) TypeOf() types.TypeID {
	return s.MyType
}

// Clone produces a deep copy with cached inference results reset.
func (s *PostOpStatement) Clone() *PostOpStatement {
	return &PostOpStatement{
		OperatorName: s.OperatorName,
		Operand:      append([]stringpool.Handle(nil), s.Operand...),
		MyType:       types.Error,
		Anchor:       s.Anchor,
	}
}
