package ir

import (
	"fmt"

	"github.com/cwbudde/go-epoch/internal/stringpool"
	"github.com/cwbudde/go-epoch/internal/types"
)

// FunctionParamKind is the closed sum of formal parameter flavours.
type FunctionParamKind interface {
	// IsLocalVariable reports whether the parameter occupies a scope slot.
	IsLocalVariable() bool

	// IsReference reports whether the parameter binds by reference.
	IsReference() bool

	cloneParam() FunctionParamKind
}

// ParamNamed is an ordinary typed parameter.
type ParamNamed struct {
	TypeName stringpool.Handle
	Ref      bool
}

func (p *ParamNamed) IsLocalVariable() bool { return true }
func (p *ParamNamed) IsReference() bool     { return p.Ref }
func (p *ParamNamed) cloneParam() FunctionParamKind {
	c := *p
	return &c
}

// ParamFunctionRef is a higher-order parameter carrying a function signature.
type ParamFunctionRef struct {
	Signature *types.FunctionSignature
}

func (p *ParamFunctionRef) IsLocalVariable() bool { return true }
func (p *ParamFunctionRef) IsReference() bool     { return false }
func (p *ParamFunctionRef) cloneParam() FunctionParamKind {
	return &ParamFunctionRef{Signature: p.Signature.Clone()}
}

// ParamNothing is a parameter of the unit type "nothing".
type ParamNothing struct{}

func (p *ParamNothing) IsLocalVariable() bool         { return false }
func (p *ParamNothing) IsReference() bool             { return false }
func (p *ParamNothing) cloneParam() FunctionParamKind { return &ParamNothing{} }

// ParamPattern is a pattern-matched parameter: a literal expression the
// argument must equal.
type ParamPattern struct {
	Expr *Expression
}

func (p *ParamPattern) IsLocalVariable() bool { return false }
func (p *ParamPattern) IsReference() bool     { return false }
func (p *ParamPattern) cloneParam() FunctionParamKind {
	return &ParamPattern{Expr: p.Expr.Clone()}
}

// Param pairs a parameter name with its kind. Pattern parameters carry a
// synthetic name.
type Param struct {
	Name stringpool.Handle
	Kind FunctionParamKind
}

// FunctionTag is library-defined metadata attached to a function.
type FunctionTag struct {
	Name       stringpool.Handle
	Anchor     int
	Parameters []types.CompileTimeParameter
}

// TemplateParam declares one template parameter of a function, structure, or
// sum template.
type TemplateParam struct {
	Name stringpool.Handle
}

// DispatchKind distinguishes synthesised dispatcher flavours.
type DispatchKind int

const (
	DispatchNone DispatchKind = iota
	DispatchPattern
	DispatchTypeMatch
)

// DispatchInfo describes a synthesised dispatcher: the ordered candidate
// overloads its body forwards to at run time.
type DispatchInfo struct {
	Kind       DispatchKind
	Candidates []stringpool.Handle
}

// Function is a function definition: name, ordered parameters, optional
// return expression, optional body, tags, and template parameters.
type Function struct {
	Name   stringpool.Handle
	Params []Param

	Return *Expression
	Code   *CodeBlock

	Tags           []*FunctionTag
	TemplateParams []*TemplateParam

	HintReturnType types.TypeID
	InferenceDone  bool
}

// NewFunction creates an empty function definition.
func NewFunction(name stringpool.Handle) *Function {
	return &Function{Name: name, HintReturnType: types.Infer}
}

// AddParameter appends a formal parameter; duplicate names are rejected.
func (f *Function) AddParameter(name stringpool.Handle, kind FunctionParamKind) error {
	for i := range f.Params {
		if f.Params[i].Name == name && f.Params[i].Kind.IsLocalVariable() {
			return fmt.Errorf("duplicate function parameter name")
		}
	}
	f.Params = append(f.Params, Param{Name: name, Kind: kind})
	return nil
}

// NumParameters returns the number of formal parameters.
func (f *Function) NumParameters() int {
	return len(f.Params)
}

// HasParameter reports whether a formal parameter with the given name exists.
func (f *Function) HasParameter(name stringpool.Handle) bool {
	for i := range f.Params {
		if f.Params[i].Name == name {
			return true
		}
	}
	return false
}

// ParameterNames returns the formal parameter names in order.
func (f *Function) ParameterNames() []stringpool.Handle {
	names := make([]stringpool.Handle, len(f.Params))
	for i := range f.Params {
		names[i] = f.Params[i].Name
	}
	return names
}

// IsParameterReference reports whether the named parameter binds by
// reference.
func (f *Function) IsParameterReference(name stringpool.Handle) bool {
	for i := range f.Params {
		if f.Params[i].Name == name {
			return f.Params[i].Kind.IsReference()
		}
	}
	return false
}

// ParameterType resolves the declared type of a formal parameter.
func (f *Function) ParameterType(i int, ns *Namespace) types.TypeID {
	switch kind := f.Params[i].Kind.(type) {
	case *ParamNamed:
		t := ns.Types.LookupType(kind.TypeName)
		if kind.Ref {
			t = types.MakeReference(t)
		}
		return t
	case *ParamFunctionRef:
		return types.Function
	case *ParamNothing:
		return types.Nothing
	case *ParamPattern:
		return kind.Expr.InferredType
	}
	return types.Error
}

// ParameterSignatureType returns the nested signature type of a higher-order
// parameter, used when a statement names a function-ref parameter of the
// enclosing function.
func (f *Function) ParameterSignatureType(name stringpool.Handle) (*types.FunctionSignature, bool) {
	for i := range f.Params {
		if f.Params[i].Name == name {
			if ref, ok := f.Params[i].Kind.(*ParamFunctionRef); ok {
				return ref.Signature, true
			}
		}
	}
	return nil, false
}

// ReturnType returns the function's inferred return type: the type of its
// return expression, or void when it has none.
func (f *Function) ReturnType() types.TypeID {
	if f.Return != nil {
		return f.Return.InferredType
	}
	return types.Void
}

// Signature materialises the function's signature. Parameter and return
// types must already be inferred.
func (f *Function) Signature(ns *Namespace) *types.FunctionSignature {
	sig := types.NewFunctionSignature()
	for i := range f.Params {
		name, _ := ns.Strings.Get(f.Params[i].Name)
		switch kind := f.Params[i].Kind.(type) {
		case *ParamNamed:
			sig.AddParameter(name, types.StripReference(ns.Types.LookupType(kind.TypeName)), kind.Ref)
		case *ParamFunctionRef:
			sig.AddParameter(name, types.Function, false)
			sig.SetNestedSignature(i, kind.Signature)
		case *ParamNothing:
			sig.AddParameter(name, types.Nothing, false)
		case *ParamPattern:
			appendPatternParameter(sig, kind.Expr)
		}
	}
	sig.SetReturnType(f.ReturnType())
	return sig
}

func appendPatternParameter(sig *types.FunctionSignature, expr *Expression) {
	if len(expr.Atoms) == 1 {
		if lit, ok := expr.Atoms[0].(*LiteralInteger32Atom); ok {
			sig.AddPatternMatchedParameter(lit.Value)
			return
		}
	}
	// Non-integer pattern literals are registered as plain slots without a
	// payload, typed with the pattern expression's type (which inference
	// never sets), so no argument matches them; no diagnostic is reported.
	sig.AddParameter("@@patternmatched", expr.InferredType, false)
}

// PatternMatchParameter checks the literal payload of the pattern parameter
// at the given index against a compile-time value.
func (f *Function) PatternMatchParameter(i int, value types.CompileTimeParameter) bool {
	pattern, ok := f.Params[i].Kind.(*ParamPattern)
	if !ok {
		return false
	}
	if len(pattern.Expr.Atoms) != 1 {
		return false
	}
	lit, ok := pattern.Expr.Atoms[0].(*LiteralInteger32Atom)
	if !ok {
		return false
	}
	return value.Payload == types.PayloadInteger && value.IntegerPayload == lit.Value
}

// Clone produces a deep copy of the function with cached inference results
// reset; used by template instantiation.
func (f *Function) Clone() *Function {
	clone := &Function{
		Name:           f.Name,
		HintReturnType: types.Infer,
	}
	for i := range f.Params {
		clone.Params = append(clone.Params, Param{Name: f.Params[i].Name, Kind: f.Params[i].Kind.cloneParam()})
	}
	if f.Return != nil {
		clone.Return = f.Return.Clone()
	}
	if f.Code != nil {
		clone.Code = f.Code.Clone()
	}
	for _, tag := range f.Tags {
		t := *tag
		t.Parameters = append([]types.CompileTimeParameter(nil), tag.Parameters...)
		clone.Tags = append(clone.Tags, &t)
	}
	return clone
}
