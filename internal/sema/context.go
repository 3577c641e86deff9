package sema

import (
	"github.com/cwbudde/go-epoch/internal/stringpool"
	"github.com/cwbudde/go-epoch/internal/types"
)

// ContextState identifies the construct driving the current inference step.
type ContextState int

const (
	ContextGlobal ContextState = iota
	ContextCodeBlock
	ContextExpression
	ContextStatement
	ContextFunctionReturn
	ContextFunction
)

// ExpectedTypeFrame lists, for each candidate overload of the enclosing
// call, its ordered parameter types. A nested statement at parameter
// position i matches its return type against entry [i] of any candidate.
type ExpectedTypeFrame [][]types.TypeID

// ExpectedSignatureFrame lists, for each candidate overload of the enclosing
// call, the nested higher-order signatures of its parameter slots (nil when
// a slot is not of function type).
type ExpectedSignatureFrame [][]*types.FunctionSignature

// InferenceContext carries the bidirectional inference state: where we are,
// which function we are inside, and the expected-type stacks contributed by
// enclosing calls.
type InferenceContext struct {
	ContextName  stringpool.Handle
	State        ContextState
	FunctionName stringpool.Handle

	ExpectedTypes      []ExpectedTypeFrame
	ExpectedSignatures []ExpectedSignatureFrame
}

// NewContext creates a context with the given name and state.
func NewContext(name stringpool.Handle, state ContextState) *InferenceContext {
	return &InferenceContext{ContextName: name, State: state}
}

// PushExpected pushes one frame of expected types and signatures.
func (c *InferenceContext) PushExpected(typesFrame ExpectedTypeFrame, sigFrame ExpectedSignatureFrame) {
	c.ExpectedTypes = append(c.ExpectedTypes, typesFrame)
	c.ExpectedSignatures = append(c.ExpectedSignatures, sigFrame)
}

// TopExpectedTypes returns the innermost expected-type frame, or nil.
func (c *InferenceContext) TopExpectedTypes() ExpectedTypeFrame {
	if len(c.ExpectedTypes) == 0 {
		return nil
	}
	return c.ExpectedTypes[len(c.ExpectedTypes)-1]
}

// TopExpectedSignatures returns the innermost expected-signature frame, or
// nil.
func (c *InferenceContext) TopExpectedSignatures() ExpectedSignatureFrame {
	if len(c.ExpectedSignatures) == 0 {
		return nil
	}
	return c.ExpectedSignatures[len(c.ExpectedSignatures)-1]
}

// ExpectsTypeAt reports whether any candidate in the innermost frame expects
// the given type at parameter position index.
func (c *InferenceContext) ExpectsTypeAt(index int, t types.TypeID) bool {
	for _, candidate := range c.TopExpectedTypes() {
		if index < len(candidate) && candidate[index] == t {
			return true
		}
	}
	return false
}
