package sema

import (
	"github.com/cwbudde/go-epoch/internal/diag"
	"github.com/cwbudde/go-epoch/internal/ir"
	"github.com/cwbudde/go-epoch/internal/stringpool"
	"github.com/cwbudde/go-epoch/internal/types"
)

// expectedTypesForStatement gathers, for every overload registered under the
// name, its ordered parameter types. These frames drive bidirectional
// inference of nested statements.
func (a *Analyzer) expectedTypesForStatement(name stringpool.Handle) ExpectedTypeFrame {
	var frame ExpectedTypeFrame
	for _, ov := range a.ns.Functions.OverloadNames(name) {
		sig, ok := a.ns.Functions.SignatureOf(ov)
		if !ok {
			continue
		}
		params := make([]types.TypeID, sig.NumParameters())
		for i := range params {
			params[i] = sig.Parameter(i).Type
		}
		frame = append(frame, params)
	}
	return frame
}

// expectedSignaturesForStatement gathers the nested higher-order signatures
// of every overload's parameter slots.
func (a *Analyzer) expectedSignaturesForStatement(name stringpool.Handle) ExpectedSignatureFrame {
	var frame ExpectedSignatureFrame
	for _, ov := range a.ns.Functions.OverloadNames(name) {
		sig, ok := a.ns.Functions.SignatureOf(ov)
		if !ok {
			continue
		}
		nested := make([]*types.FunctionSignature, sig.NumParameters())
		for i := range nested {
			nested[i] = sig.NestedSignature(i)
		}
		frame = append(frame, nested)
	}
	return frame
}

// InferStatement resolves a statement's name to a specific overload and
// infers its return type. The index parameter is the statement's position in
// the enclosing parameter list, used to filter candidates by expected return
// type.
func (a *Analyzer) InferStatement(s *ir.Statement, block *ir.CodeBlock, ctx *InferenceContext, index int) bool {
	switch s.State {
	case ir.ResolutionDone:
		return true
	case ir.ResolutionFailed:
		return false
	}
	s.State = ir.ResolutionStarted
	a.errs.SetContext(s.Anchor)

	if s.NeedsInstantiation {
		a.consumeTemplateArgs(s)
	}

	newctx := NewContext(s.Name, ContextStatement)
	newctx.FunctionName = ctx.FunctionName
	switch ctx.State {
	case ContextCodeBlock, ContextExpression, ContextFunctionReturn, ContextFunction:
		newctx.PushExpected(a.expectedTypesForStatement(s.Name), a.expectedSignaturesForStatement(s.Name))
	case ContextStatement:
		newctx.PushExpected(a.expectedTypesForStatement(ctx.ContextName), a.expectedSignaturesForStatement(ctx.ContextName))
	default:
		diag.Internal("statement type inference failure - unrecognized context")
	}

	if ctx.State == ContextFunctionReturn {
		a.bindReturnConstructor(s)
	}

	for i, p := range s.Parameters {
		if !a.InferExpression(p, block, newctx, i) {
			return a.failStatement(s)
		}
	}

	if ctx.State != ContextFunctionReturn {
		if !a.resolveStatement(s, block, ctx, index) {
			return a.failStatement(s)
		}
	}

	a.runCompileHelper(s, block, ctx.State == ContextFunctionReturn)

	if s.MyType == types.Infer || s.MyType == types.Error {
		return a.failStatement(s)
	}
	s.State = ir.ResolutionDone
	return true
}

func (a *Analyzer) failStatement(s *ir.Statement) bool {
	s.State = ir.ResolutionFailed
	if s.MyType == types.Infer {
		s.MyType = types.Error
	}
	return false
}

// bindReturnConstructor handles a statement in return-expression position:
// its name denotes the function's return type, and is rewritten to the
// canonical constructor of that type.
func (a *Analyzer) bindReturnConstructor(s *ir.Statement) {
	t, ok := a.ns.ConstructorTypes[s.Name]
	if !ok {
		t = a.ns.Types.LookupType(s.Name)
	}
	if t == types.Error {
		a.errs.SemanticError(diag.KindUnknownType, "Unknown type in return expression")
		return
	}

	switch types.FamilyOf(t) {
	case types.FamilyUnit:
		// The generated code constructs the representation; the unit
		// identity survives in the statement's type.
		if rep, found := a.ns.Types.StrongRepresentationName(t); found {
			s.Name = rep
		}
	case types.FamilyTemplateInstance:
		if name, found := a.ns.Types.NameOfType(t); found {
			ctor := a.ns.Strings.Pool(a.ns.Strings.MustGet(name) + "@@constructor")
			s.Name = ctor
		}
	}
	s.MyType = t
}

// overloadCandidate is one overload surviving arity and expected-return
// filtering, with the facts resolution needs for selection.
type overloadCandidate struct {
	name      stringpool.Handle
	sig       *types.FunctionSignature
	preferred bool  // a pattern parameter matched the literal argument
	widened   []int // argument positions widening from base to sum type
	typeMatch bool  // widening requires runtime dispatch
}

// resolveStatement performs overload resolution over the statement's raw
// name: the registered overload set, a direct extern signature, or a
// higher-order parameter of the enclosing function.
func (a *Analyzer) resolveStatement(s *ir.Statement, block *ir.CodeBlock, ctx *InferenceContext, index int) bool {
	raw := s.Name

	if a.ns.Functions.HasOverloads(raw) {
		return a.resolveOverloadSet(s, ctx, index, raw)
	}

	if sig, ok := a.ns.Functions.Extern(raw); ok {
		return a.resolveDirectSignature(s, sig)
	}

	if fn, ok := a.ns.Functions.Function(ctx.FunctionName); ok && fn.HasParameter(raw) {
		if sig, found := fn.ParameterSignatureType(raw); found {
			s.MyType = sig.ReturnType()
			return true
		}
	}

	a.errs.SemanticError(diag.KindUnknownIdentifier, "Undefined function")
	return false
}

func (a *Analyzer) resolveOverloadSet(s *ir.Statement, ctx *InferenceContext, index int, raw stringpool.Handle) bool {
	_, isConstructor := a.ns.ConstructorTypes[raw]
	expected := ctx.TopExpectedTypes()

	var candidates []overloadCandidate
	patternPositions := make(map[int]bool)

	for _, ov := range a.ns.Functions.OverloadNames(raw) {
		sig := a.overloadSignature(ov)
		if sig == nil || sig.NumParameters() != len(s.Parameters) {
			continue
		}
		for j := 0; j < sig.NumParameters(); j++ {
			if sig.Parameter(j).HasPayload() {
				patternPositions[j] = true
			}
		}
		if len(expected) > 0 && !a.returnTypeExpected(expected, index, sig.ReturnType()) {
			continue
		}
		if cand, ok := a.matchOverload(s, ov, sig, isConstructor); ok {
			candidates = append(candidates, cand)
		}
	}

	if len(candidates) == 0 {
		a.errs.SemanticError(diag.KindNoMatchingOverload, "No matching overload")
		return false
	}

	// Pattern overloads beat non-pattern overloads.
	hasPreferred := false
	for i := range candidates {
		if candidates[i].preferred {
			hasPreferred = true
			break
		}
	}
	if hasPreferred {
		kept := candidates[:0]
		for _, cand := range candidates {
			if cand.preferred {
				kept = append(kept, cand)
			}
		}
		candidates = kept
	}

	for i := range candidates {
		if candidates[i].typeMatch {
			return a.dispatchTypeMatch(s, raw, candidates[i])
		}
	}

	// A call with a dynamic argument at a pattern-matched position must go
	// through the pattern dispatcher; only literal arguments bind directly.
	if len(patternPositions) > 0 && !hasPreferred {
		for j := range patternPositions {
			if !s.Parameters[j].IsSingleLiteral() {
				return a.dispatchPattern(s, raw)
			}
		}
	}

	a.selectOverload(s, candidates[0])
	return true
}

// overloadSignature materialises an overload's signature, forcing inference
// of IR-backed overloads first so their return types are concrete.
func (a *Analyzer) overloadSignature(name stringpool.Handle) *types.FunctionSignature {
	if f, ok := a.ns.Functions.Function(name); ok {
		a.InferFunction(f)
		return f.Signature(a.ns)
	}
	if sig, ok := a.ns.Functions.Extern(name); ok {
		return sig
	}
	return nil
}

func (a *Analyzer) returnTypeExpected(expected ExpectedTypeFrame, index int, ret types.TypeID) bool {
	if len(expected) == 0 {
		return true
	}
	for _, possible := range expected {
		if index < len(possible) && possible[index] == ret {
			return true
		}
	}
	return false
}

func (a *Analyzer) matchOverload(s *ir.Statement, name stringpool.Handle, sig *types.FunctionSignature, isConstructor bool) (overloadCandidate, bool) {
	cand := overloadCandidate{name: name, sig: sig}
	for j := 0; j < sig.NumParameters(); j++ {
		formal := sig.Parameter(j)
		actual := types.StripReference(s.Parameters[j].InferredType)

		if formal.HasPayload() {
			value, ok := literalCompileTimeValue(s.Parameters[j])
			if !ok || !formal.PayloadEquals(value) {
				return cand, false
			}
			cand.preferred = true
			continue
		}

		formalType := types.StripReference(formal.Type)
		if formalType == types.Function && sig.NestedSignature(j) != nil {
			// Higher-order slot: the argument's resolved signature must
			// match the declared one, not merely be a function value.
			argSig := a.argumentFunctionSignature(s.Parameters[j])
			if argSig != nil && sig.NestedSignature(j).MatchesDynamicPattern(argSig) {
				continue
			}
			return cand, false
		}
		if formalType == actual {
			continue
		}
		if types.FamilyOf(formalType) == types.FamilySumType && a.ns.Types.IsSumBase(formalType, actual) {
			cand.widened = append(cand.widened, j)
			if types.FamilyOf(actual) != types.FamilySumType && !isConstructor {
				cand.typeMatch = true
			}
			continue
		}
		return cand, false
	}
	return cand, true
}

// selectOverload commits a resolution: the statement's name is rewritten to
// the overload, pattern arguments are marked, reference parameters wrap
// their arguments, and widened arguments receive type annotations.
func (a *Analyzer) selectOverload(s *ir.Statement, cand overloadCandidate) {
	s.Name = cand.name
	s.MyType = cand.sig.ReturnType()

	for j := 0; j < cand.sig.NumParameters(); j++ {
		formal := cand.sig.Parameter(j)
		if formal.HasPayload() {
			s.Parameters[j].AtomsArePatternMatchedLiteral = true
			continue
		}
		if formal.IsReference {
			a.makeReferenceArgument(s.Parameters[j])
		}
	}
	for _, j := range cand.widened {
		a.annotateWidening(s.Parameters[j])
	}
}

func (a *Analyzer) resolveDirectSignature(s *ir.Statement, sig *types.FunctionSignature) bool {
	if sig.NumParameters() != len(s.Parameters) {
		a.errs.SemanticError(diag.KindNoMatchingOverload, "No matching overload")
		return false
	}
	for j := 0; j < sig.NumParameters(); j++ {
		formal := sig.Parameter(j)
		if types.StripReference(formal.Type) != types.StripReference(s.Parameters[j].InferredType) {
			a.errs.SemanticError(diag.KindNoMatchingOverload, "No matching overload")
			return false
		}
		if formal.IsReference {
			a.makeReferenceArgument(s.Parameters[j])
		}
	}
	s.MyType = sig.ReturnType()
	return true
}

// annotateWidening prepends a runtime type tag carrying the argument's
// concrete type, so the generated code records the sum discriminant.
func (a *Analyzer) annotateWidening(expr *ir.Expression) {
	if len(expr.Atoms) > 0 {
		if _, ok := expr.Atoms[0].(*ir.TypeAnnotationAtom); ok {
			return
		}
	}
	tag := types.StripReference(expr.InferredType)
	expr.Atoms = append([]ir.ExpressionAtom{&ir.TypeAnnotationAtom{Type: tag}}, expr.Atoms...)
}

// makeReferenceArgument rewrites an argument's leading identifier atom into
// its l-value form so it can bind to a reference parameter.
func (a *Analyzer) makeReferenceArgument(expr *ir.Expression) {
	for i, atom := range expr.Atoms {
		if ident, ok := atom.(*ir.IdentifierAtom); ok {
			expr.Atoms[i] = &ir.IdentifierReferenceAtom{IdentifierAtom: *ident}
			return
		}
		if _, ok := atom.(*ir.TypeAnnotationAtom); ok {
			continue
		}
		return
	}
}

// literalCompileTimeValue converts a single-literal expression into a
// compile-time value for pattern matching.
func literalCompileTimeValue(expr *ir.Expression) (types.CompileTimeParameter, bool) {
	if len(expr.Atoms) != 1 {
		return types.CompileTimeParameter{}, false
	}
	switch lit := expr.Atoms[0].(type) {
	case *ir.LiteralInteger32Atom:
		return types.CompileTimeParameter{Type: types.Integer, Payload: types.PayloadInteger, IntegerPayload: lit.Value}, true
	case *ir.LiteralBooleanAtom:
		return types.CompileTimeParameter{Type: types.Boolean, Payload: types.PayloadBoolean, BooleanPayload: lit.Value}, true
	case *ir.LiteralReal32Atom:
		return types.CompileTimeParameter{Type: types.Real, Payload: types.PayloadReal, RealPayload: lit.Value}, true
	case *ir.LiteralStringAtom:
		return types.CompileTimeParameter{Type: types.String, Payload: types.PayloadString, HandlePayload: lit.Handle}, true
	}
	return types.CompileTimeParameter{}, false
}

// argumentFunctionSignature resolves the signature of an argument naming a
// function overload, for higher-order parameter matching.
func (a *Analyzer) argumentFunctionSignature(expr *ir.Expression) *types.FunctionSignature {
	if len(expr.Atoms) != 1 {
		return nil
	}
	ident, ok := expr.Atoms[0].(*ir.IdentifierAtom)
	if !ok {
		return nil
	}
	overloads := a.ns.Functions.OverloadNames(ident.Identifier)
	if len(overloads) == 0 {
		return nil
	}
	return a.overloadSignature(overloads[0])
}
