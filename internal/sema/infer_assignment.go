package sema

import (
	"github.com/cwbudde/go-epoch/internal/diag"
	"github.com/cwbudde/go-epoch/internal/ir"
	"github.com/cwbudde/go-epoch/internal/stringpool"
	"github.com/cwbudde/go-epoch/internal/types"
)

// inferMemberAccessType resolves the type of an l-value path: a variable
// followed by zero or more structure member names.
func (a *Analyzer) inferMemberAccessType(path []stringpool.Handle, scope *ir.Scope, anchor int) types.TypeID {
	t, ok := scope.VariableType(path[0])
	if !ok {
		a.errs.SemanticErrorAt(diag.KindUnknownIdentifier, "Undefined identifier", anchor)
		return types.Error
	}
	for _, member := range path[1:] {
		def, isStruct := a.ns.Types.Structure(types.StripReference(t))
		if !isStruct {
			a.errs.SemanticErrorAt(diag.KindTypeMismatch, "Member access on a non-structure value", anchor)
			return types.Error
		}
		idx := def.FindMember(member)
		if idx < 0 {
			a.errs.SemanticErrorAt(diag.KindUnknownIdentifier, "Unknown structure member", anchor)
			return types.Error
		}
		t = def.Member(idx).Type
	}
	return t
}

// InferAssignment infers the l-value type, the RHS chain, resolves compound
// assignment operators, and checks assignment compatibility. Assigning a
// base type into a sum-typed l-value widens and requests a runtime type
// annotation.
func (a *Analyzer) InferAssignment(as *ir.Assignment, block *ir.CodeBlock, ctx *InferenceContext) bool {
	a.errs.SetContext(as.Anchor)

	as.LHSType = a.inferMemberAccessType(as.LHS, block.Scope, as.Anchor)
	if as.LHSType == types.Error {
		return false
	}

	switch rhs := as.RHS.(type) {
	case *ir.AssignmentChainExpression:
		sub := NewContext(as.OperatorName, ContextExpression)
		sub.FunctionName = ctx.FunctionName
		if !a.InferExpression(rhs.Expression, block, sub, 0) {
			return false
		}
	case *ir.AssignmentChainAssignment:
		if !a.InferAssignment(rhs.Assignment, block, ctx) {
			return false
		}
	default:
		diag.Internal("assignment has no right-hand side")
	}

	rhsType := as.RHS.TypeOf(a.ns)

	// Compound assignment: rebind the operator to the overload matching
	// (lhs, rhs).
	if a.ns.Info.OpAssignOperators.Contains(as.OperatorName) {
		for _, ov := range a.ns.Functions.OverloadNames(as.OperatorName) {
			sig, ok := a.ns.Functions.SignatureOf(ov)
			if !ok || sig.NumParameters() != 2 {
				continue
			}
			if types.StripReference(sig.Parameter(0).Type) == types.StripReference(as.LHSType) &&
				types.StripReference(sig.Parameter(1).Type) == types.StripReference(rhsType) {
				as.OperatorName = ov
				break
			}
		}
	}

	lhs := types.StripReference(as.LHSType)
	rhs := types.StripReference(rhsType)
	if lhs == rhs {
		return true
	}
	if types.FamilyOf(lhs) == types.FamilyUnit {
		if rep, ok := a.ns.Types.StrongRepresentation(lhs); ok && rep == rhs {
			return true
		}
	}
	if types.FamilyOf(lhs) == types.FamilySumType && a.ns.Types.IsSumBase(lhs, rhs) {
		as.WantsTypeAnnotation = true
		return true
	}

	a.errs.SemanticErrorAt(diag.KindTypeMismatch,
		"Left-hand side of assignment differs in type from right-hand side", as.Anchor)
	as.LHSType = types.Error
	return false
}

// inferPreOp resolves a pre-operator statement (++x) against the operator's
// single-parameter overloads.
func (a *Analyzer) inferPreOp(s *ir.PreOpStatement, block *ir.CodeBlock) bool {
	operandType := a.inferMemberAccessType(s.Operand, block.Scope, s.Anchor)
	if operandType == types.Error {
		return false
	}
	name, ret, ok := a.resolveUnaryOperatorStatement(s.OperatorName, operandType, "Preoperator")
	if !ok {
		a.errs.SemanticErrorAt(diag.KindNoMatchingOverload, "No matching overload", s.Anchor)
		return false
	}
	s.OperatorName = name
	s.MyType = ret
	return true
}

// inferPostOp resolves a post-operator statement (x++) against the
// operator's single-parameter overloads.
func (a *Analyzer) inferPostOp(s *ir.PostOpStatement, block *ir.CodeBlock) bool {
	operandType := a.inferMemberAccessType(s.Operand, block.Scope, s.Anchor)
	if operandType == types.Error {
		return false
	}
	name, ret, ok := a.resolveUnaryOperatorStatement(s.OperatorName, operandType, "Postoperator")
	if !ok {
		a.errs.SemanticErrorAt(diag.KindNoMatchingOverload, "No matching overload", s.Anchor)
		return false
	}
	s.OperatorName = name
	s.MyType = ret
	return true
}

func (a *Analyzer) resolveUnaryOperatorStatement(operator stringpool.Handle, operandType types.TypeID, flavour string) (stringpool.Handle, types.TypeID, bool) {
	candidates := a.ns.Functions.OverloadNames(operator)
	if len(candidates) == 0 {
		// Registered in the grammar but not in the overload table: a
		// library registration failure, not a user error.
		diag.Internal("%s defined in the grammar but no implementations could be located", flavour)
	}
	for _, ov := range candidates {
		sig, ok := a.ns.Functions.SignatureOf(ov)
		if !ok {
			diag.Internal("%s defined but no signature provided", flavour)
		}
		if sig.NumParameters() == 1 &&
			types.StripReference(sig.Parameter(0).Type) == types.StripReference(operandType) {
			return ov, sig.ReturnType(), true
		}
	}
	return stringpool.InvalidHandle, types.Error, false
}
