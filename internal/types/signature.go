package types

import "github.com/cwbudde/go-epoch/internal/stringpool"

// PayloadKind discriminates the literal payload carried by a pattern-matched
// parameter.
type PayloadKind int

const (
	PayloadNone PayloadKind = iota
	PayloadInteger
	PayloadBoolean
	PayloadReal
	PayloadString
)

// CompileTimeParameter describes one formal parameter of a function signature,
// or a compile-time value passed to a template or function tag. A parameter
// with a payload participates in pattern matching: only arguments equal to the
// literal match.
type CompileTimeParameter struct {
	Name        string
	Type        TypeID
	IsReference bool

	Payload        PayloadKind
	IntegerPayload int32
	BooleanPayload bool
	RealPayload    float32
	HandlePayload  stringpool.Handle
}

// HasPayload reports whether the parameter is pattern matched.
func (p CompileTimeParameter) HasPayload() bool {
	return p.Payload != PayloadNone
}

// PayloadEquals compares the literal payloads of two compile-time parameters.
// Parameters without payloads never compare equal.
func (p CompileTimeParameter) PayloadEquals(other CompileTimeParameter) bool {
	if p.Payload == PayloadNone || p.Payload != other.Payload {
		return false
	}
	switch p.Payload {
	case PayloadInteger:
		return p.IntegerPayload == other.IntegerPayload
	case PayloadBoolean:
		return p.BooleanPayload == other.BooleanPayload
	case PayloadReal:
		return p.RealPayload == other.RealPayload
	case PayloadString:
		return p.HandlePayload == other.HandlePayload
	}
	return false
}

// FunctionSignature describes a function interface: a return type plus an
// ordered parameter list. Each parameter slot carries a parallel nested
// signature used when the parameter is itself of function type.
type FunctionSignature struct {
	params     []CompileTimeParameter
	nested     []*FunctionSignature
	returnType TypeID
}

// NewFunctionSignature creates an empty signature returning void.
func NewFunctionSignature() *FunctionSignature {
	return &FunctionSignature{returnType: Void}
}

// AddParameter appends a parameter with the given name and type.
func (s *FunctionSignature) AddParameter(name string, t TypeID, isReference bool) {
	s.params = append(s.params, CompileTimeParameter{Name: name, Type: t, IsReference: isReference})
	s.nested = append(s.nested, nil)
}

// PrependParameter inserts a parameter at the front of the list.
func (s *FunctionSignature) PrependParameter(name string, t TypeID, isReference bool) {
	s.params = append([]CompileTimeParameter{{Name: name, Type: t, IsReference: isReference}}, s.params...)
	s.nested = append([]*FunctionSignature{nil}, s.nested...)
}

// AddPatternMatchedParameter appends an integer-literal pattern parameter.
// Only integer payloads are supported; other literal kinds are rejected
// during inference.
func (s *FunctionSignature) AddPatternMatchedParameter(value int32) {
	s.params = append(s.params, CompileTimeParameter{
		Name:           "@@patternmatched",
		Type:           Integer,
		Payload:        PayloadInteger,
		IntegerPayload: value,
	})
	s.nested = append(s.nested, nil)
}

// SetReturnType sets the signature's return type.
func (s *FunctionSignature) SetReturnType(t TypeID) {
	s.returnType = t
}

// ReturnType returns the signature's return type.
func (s *FunctionSignature) ReturnType() TypeID {
	return s.returnType
}

// NumParameters returns the number of formal parameters.
func (s *FunctionSignature) NumParameters() int {
	return len(s.params)
}

// Parameter returns the formal parameter at the given index.
func (s *FunctionSignature) Parameter(i int) CompileTimeParameter {
	return s.params[i]
}

// FindParameter locates a parameter by name, returning its index or -1.
func (s *FunctionSignature) FindParameter(name string) int {
	for i := range s.params {
		if s.params[i].Name == name {
			return i
		}
	}
	return -1
}

// SetNestedSignature attaches a higher-order signature to the parameter slot
// at the given index.
func (s *FunctionSignature) SetNestedSignature(i int, nested *FunctionSignature) {
	s.nested[i] = nested
}

// NestedSignature returns the higher-order signature attached to a parameter
// slot, or nil.
func (s *FunctionSignature) NestedSignature(i int) *FunctionSignature {
	return s.nested[i]
}

// Matches reports whether two signatures agree exactly on parameter types,
// reference flags, payloads, and return type.
func (s *FunctionSignature) Matches(other *FunctionSignature) bool {
	if s.returnType != other.returnType || len(s.params) != len(other.params) {
		return false
	}
	for i := range s.params {
		a, b := s.params[i], other.params[i]
		if a.Type != b.Type || a.IsReference != b.IsReference {
			return false
		}
		if a.HasPayload() != b.HasPayload() {
			return false
		}
		if a.HasPayload() && !a.PayloadEquals(b) {
			return false
		}
	}
	return true
}

// MatchesDynamicPattern reports whether this signature could dispatch to the
// other at run time: identical parameter types and return type, ignoring
// literal payloads. Used when grouping pattern-matched overloads under a
// shared dispatcher.
func (s *FunctionSignature) MatchesDynamicPattern(other *FunctionSignature) bool {
	if s.returnType != other.returnType || len(s.params) != len(other.params) {
		return false
	}
	for i := range s.params {
		if s.params[i].Type != other.params[i].Type {
			return false
		}
	}
	return true
}

// Clone produces a deep copy of the signature.
func (s *FunctionSignature) Clone() *FunctionSignature {
	clone := &FunctionSignature{
		params:     append([]CompileTimeParameter(nil), s.params...),
		nested:     make([]*FunctionSignature, len(s.nested)),
		returnType: s.returnType,
	}
	for i, n := range s.nested {
		if n != nil {
			clone.nested[i] = n.Clone()
		}
	}
	return clone
}
