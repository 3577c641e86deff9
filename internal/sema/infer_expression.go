package sema

import (
	"github.com/cwbudde/go-epoch/internal/diag"
	"github.com/cwbudde/go-epoch/internal/ir"
	"github.com/cwbudde/go-epoch/internal/types"
)

// InferExpression coalesces member accesses, infers every atom, resolves
// operator overloads, computes the expression's type by virtual evaluation,
// and finally reorders the atoms by operator precedence. Inference is
// memoised; a second visit is a no-op.
func (a *Analyzer) InferExpression(e *ir.Expression, block *ir.CodeBlock, ctx *InferenceContext, index int) bool {
	a.coalesce(e, block)

	if e.InferenceDone {
		return e.InferredType != types.Error && e.InferredType != types.Infer
	}

	state := ContextExpression
	if ctx.State == ContextFunctionReturn {
		state = ContextFunctionReturn
	}
	sub := NewContext(ctx.ContextName, state)
	sub.FunctionName = ctx.FunctionName
	sub.ExpectedTypes = ctx.ExpectedTypes
	sub.ExpectedSignatures = ctx.ExpectedSignatures

	result := true
	for _, atom := range e.Atoms {
		if !a.inferAtom(atom, block, sub, index) {
			result = false
		}
	}

	if result && !a.resolveOperatorOverloads(e, block) {
		e.InferredType = types.Error
		e.InferenceDone = true
		return false
	}

	e.InferredType = types.Void
	for i := 0; i < len(e.Atoms); {
		e.InferredType = a.walkAtomsForType(e.Atoms, &i, e.InferredType)
	}

	e.InferenceDone = true
	a.reorderByPrecedence(e)

	return result && e.InferredType != types.Error && e.InferredType != types.Infer
}

func (a *Analyzer) inferAtom(atom ir.ExpressionAtom, block *ir.CodeBlock, ctx *InferenceContext, index int) bool {
	switch at := atom.(type) {
	case *ir.IdentifierAtom:
		return a.inferIdentifierAtom(at, block, ctx, index)
	case *ir.IdentifierReferenceAtom:
		return a.inferIdentifierAtom(&at.IdentifierAtom, block, ctx, index)
	case *ir.StatementAtom:
		return a.InferStatement(at.Statement, block, ctx, index)
	case *ir.ParentheticalAtom:
		switch inner := at.Inner.(type) {
		case *ir.ParentheticalExpression:
			nested := NewContext(ctx.ContextName, ContextExpression)
			nested.FunctionName = ctx.FunctionName
			return a.InferExpression(inner.Expr, block, nested, 0)
		case *ir.ParentheticalPreOp:
			return a.inferPreOp(inner.Stmt, block)
		case *ir.ParentheticalPostOp:
			return a.inferPostOp(inner.Stmt, block)
		}
	}
	// Literals carry fixed types; operators resolve in a later pass; bind
	// references and annotations are typed at creation.
	return true
}

// inferIdentifierAtom resolves an identifier atom to a variable, a literal
// identifier token (when a constructor expects one), or a function overload
// name (when a higher-order parameter expects one).
func (a *Analyzer) inferIdentifierAtom(at *ir.IdentifierAtom, block *ir.CodeBlock, ctx *InferenceContext, index int) bool {
	if at.MyType != types.Infer && at.MyType != types.Error {
		return true
	}
	a.errs.SetContext(at.Anchor)

	// Constructors expect a literal identifier token in their first slot;
	// the constructed variable is already in scope by the time inference
	// runs, so the expected-type check has to come first.
	if ctx.ExpectsTypeAt(index, types.Identifier) {
		at.MyType = types.Identifier
		return true
	}
	if t, ok := block.Scope.VariableType(at.Identifier); ok {
		at.MyType = t
		return true
	}
	if ctx.ExpectsTypeAt(index, types.Function) && a.ns.Functions.HasOverloads(at.Identifier) {
		at.MyType = types.Function
		return true
	}

	at.MyType = types.Error
	a.errs.SemanticError(diag.KindUnknownIdentifier, "Undefined identifier")
	return false
}

// ----------------------------------------------------------------------------
// Coalescing
// ----------------------------------------------------------------------------

// coalesce flattens member-access chains: each "." operator and its member
// identifier collapse into a member-access operator bound to the structure's
// accessor; the head of the chain becomes an identifier reference, and the
// tail member of a longer chain becomes a bind-reference atom.
func (a *Analyzer) coalesce(e *ir.Expression, block *ir.CodeBlock) {
	if e.Coalesced {
		return
	}
	e.Coalesced = true
	if len(e.Atoms) == 0 {
		return
	}

	dot := a.ns.Strings.Pool(".")
	structType := types.Error

	for changed := true; changed; {
		changed = false
		for i := 0; i < len(e.Atoms); i++ {
			op, ok := e.Atoms[i].(*ir.OperatorAtom)
			if !ok || op.MemberAccess || op.OriginalName != dot {
				continue
			}
			if i == 0 || i+1 >= len(e.Atoms) {
				diag.Internal("member access operator without operands")
			}
			memberAtom, ok := e.Atoms[i+1].(*ir.IdentifierAtom)
			if !ok {
				diag.Internal("member access must name a structure member")
			}

			if ident, isIdent := e.Atoms[i-1].(*ir.IdentifierAtom); isIdent {
				t, found := block.Scope.VariableType(ident.Identifier)
				if !found {
					a.errs.SemanticErrorAt(diag.KindUnknownIdentifier, "Undefined identifier", ident.Anchor)
					return
				}
				structType = types.StripReference(t)

				ref := &ir.IdentifierReferenceAtom{IdentifierAtom: *ident}
				ref.MyType = t
				e.Atoms[i-1] = ref

				accessor, found := a.ns.FindStructureMemberAccessOverload(structType, memberAtom.Identifier)
				if !found {
					a.errs.SemanticErrorAt(diag.KindUnknownIdentifier, "Unknown structure member", memberAtom.Anchor)
					return
				}
				e.Atoms[i] = &ir.OperatorAtom{Name: accessor, OriginalName: accessor, MemberAccess: true}
				sig, _ := a.ns.Functions.SignatureOf(accessor)
				structType = sig.ReturnType()
				e.Atoms = append(e.Atoms[:i+1], e.Atoms[i+2:]...)
			} else {
				accessor, found := a.ns.FindStructureMemberAccessOverload(structType, memberAtom.Identifier)
				if !found {
					a.errs.SemanticErrorAt(diag.KindUnknownIdentifier, "Unknown structure member", memberAtom.Anchor)
					return
				}
				sig, _ := a.ns.Functions.SignatureOf(accessor)
				structType = sig.ReturnType()
				e.Atoms[i] = &ir.BindReferenceAtom{Member: memberAtom.Identifier, Type: structType}
				e.Atoms = append(e.Atoms[:i+1], e.Atoms[i+2:]...)
			}
			changed = true
			break
		}
	}
}

// ----------------------------------------------------------------------------
// Operator overload resolution
// ----------------------------------------------------------------------------

// resolveOperatorOverloads rewrites each operator atom to the overload
// matching its operand types, determined by virtually walking the
// neighbouring atoms.
func (a *Analyzer) resolveOperatorOverloads(e *ir.Expression, block *ir.CodeBlock) bool {
	partialIdx := 0
	for i := 0; i < len(e.Atoms); i++ {
		op, ok := e.Atoms[i].(*ir.OperatorAtom)
		if !ok || op.MemberAccess {
			continue
		}

		rhsIdx := i + 1
		typeRHS := a.walkAtomsForType(e.Atoms, &rhsIdx, types.Error)

		if op.Unary {
			found := false
			for _, ov := range a.ns.Functions.OverloadNames(op.OriginalName) {
				sig, ok := a.ns.Functions.SignatureOf(ov)
				if !ok || sig.NumParameters() != 1 {
					continue
				}
				if types.StripReference(sig.Parameter(0).Type) == types.StripReference(typeRHS) {
					op.Name = ov
					found = true
					break
				}
			}
			if !found {
				a.errs.SemanticError(diag.KindNoMatchingOverload, "No matching overload for unary operator")
				return false
			}
			continue
		}

		typeLHS := a.walkAtomsForTypePartial(e.Atoms, &partialIdx, types.Error)

		found := false
		for _, ov := range a.ns.Functions.OverloadNames(op.OriginalName) {
			sig, ok := a.ns.Functions.SignatureOf(ov)
			if !ok || sig.NumParameters() != 2 {
				continue
			}
			if types.StripReference(sig.Parameter(0).Type) == types.StripReference(typeLHS) &&
				types.StripReference(sig.Parameter(1).Type) == types.StripReference(typeRHS) {
				op.Name = ov
				found = true
				break
			}
		}
		if !found {
			a.errs.SemanticError(diag.KindNoMatchingOverload, "No matching overload for operator")
			return false
		}
		partialIdx++
	}
	return true
}

// ----------------------------------------------------------------------------
// Virtual evaluation
// ----------------------------------------------------------------------------

// walkAtomsForType computes the type produced by evaluating atoms from
// *index onwards: a non-operator atom sets the running type, a member-access
// operator applies its accessor, a unary operator consumes the following
// operand, and a binary operator consumes the running type and the
// recursively walked remainder.
func (a *Analyzer) walkAtomsForType(atoms []ir.ExpressionAtom, index *int, last types.TypeID) types.TypeID {
	ret := last
	for *index < len(atoms) {
		if ret == types.Infer {
			*index = len(atoms)
			break
		}
		op, isOp := atoms[*index].(*ir.OperatorAtom)
		if !isOp {
			ret = a.atomType(atoms[*index])
			*index++
			continue
		}
		if op.MemberAccess {
			sig, ok := a.ns.Functions.SignatureOf(op.Name)
			if !ok {
				return types.Error
			}
			ret = sig.ReturnType()
			*index++
			continue
		}
		*index++
		if op.Unary {
			operand := a.walkAtomsForType(atoms, index, ret)
			ret = a.unaryReturnType(op, operand)
		} else {
			rhs := a.walkAtomsForType(atoms, index, ret)
			ret = a.binaryReturnType(op, ret, rhs)
		}
		break
	}
	return ret
}

// walkAtomsForTypePartial walks like walkAtomsForType but stops in front of
// the next binary operator, yielding the left operand's type.
func (a *Analyzer) walkAtomsForTypePartial(atoms []ir.ExpressionAtom, index *int, last types.TypeID) types.TypeID {
	ret := last
	for *index < len(atoms) {
		if ret == types.Infer {
			*index = len(atoms)
			break
		}
		op, isOp := atoms[*index].(*ir.OperatorAtom)
		if !isOp {
			ret = a.atomType(atoms[*index])
			*index++
			continue
		}
		if op.MemberAccess {
			sig, ok := a.ns.Functions.SignatureOf(op.Name)
			if !ok {
				return types.Error
			}
			ret = sig.ReturnType()
			*index++
			continue
		}
		if op.Unary {
			*index++
			operand := a.walkAtomsForType(atoms, index, ret)
			ret = a.unaryReturnType(op, operand)
			continue
		}
		break
	}
	return ret
}

func (a *Analyzer) unaryReturnType(op *ir.OperatorAtom, operand types.TypeID) types.TypeID {
	for _, ov := range a.ns.Functions.OverloadNames(op.OriginalName) {
		sig, ok := a.ns.Functions.SignatureOf(ov)
		if !ok || sig.NumParameters() != 1 {
			continue
		}
		if types.StripReference(sig.Parameter(0).Type) == types.StripReference(operand) {
			return sig.ReturnType()
		}
	}
	return types.Error
}

func (a *Analyzer) binaryReturnType(op *ir.OperatorAtom, lhs, rhs types.TypeID) types.TypeID {
	for _, ov := range a.ns.Functions.OverloadNames(op.OriginalName) {
		sig, ok := a.ns.Functions.SignatureOf(ov)
		if !ok || sig.NumParameters() != 2 {
			continue
		}
		if types.StripReference(sig.Parameter(0).Type) == types.StripReference(lhs) &&
			types.StripReference(sig.Parameter(1).Type) == types.StripReference(rhs) {
			return sig.ReturnType()
		}
	}
	return types.Error
}

// atomType returns the type a non-operator atom contributes to virtual
// evaluation.
func (a *Analyzer) atomType(atom ir.ExpressionAtom) types.TypeID {
	switch at := atom.(type) {
	case *ir.LiteralInteger32Atom:
		return types.Integer
	case *ir.LiteralInteger16Atom:
		return types.Integer16
	case *ir.LiteralReal32Atom:
		return types.Real
	case *ir.LiteralBooleanAtom:
		return types.Boolean
	case *ir.LiteralStringAtom:
		return types.String
	case *ir.IdentifierAtom:
		return at.MyType
	case *ir.IdentifierReferenceAtom:
		return at.MyType
	case *ir.StatementAtom:
		return at.Statement.MyType
	case *ir.ParentheticalAtom:
		switch inner := at.Inner.(type) {
		case *ir.ParentheticalExpression:
			return inner.Expr.InferredType
		case *ir.ParentheticalPreOp:
			return inner.Stmt.MyType
		case *ir.ParentheticalPostOp:
			return inner.Stmt.MyType
		}
	case *ir.BindReferenceAtom:
		return at.Type
	case *ir.TypeAnnotationAtom:
		return at.Type
	case *ir.TempReferenceAtom:
		return at.Type
	}
	return types.Error
}

// ----------------------------------------------------------------------------
// Precedence reordering
// ----------------------------------------------------------------------------

// reorderByPrecedence rewrites the atom list into evaluation order with a
// shunting-yard pass. Binary operators of equal precedence associate left
// (equal precedence pops); unary operators do not pop their equals. The
// reordering is stable: applying it to an already reordered list is a no-op.
func (a *Analyzer) reorderByPrecedence(e *ir.Expression) {
	output := make([]ir.ExpressionAtom, 0, len(e.Atoms))
	var stack []*ir.OperatorAtom

	for _, atom := range e.Atoms {
		op, ok := atom.(*ir.OperatorAtom)
		if !ok {
			output = append(output, atom)
			continue
		}
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			if op.Unary {
				if a.precedenceOf(op) >= a.precedenceOf(top) {
					break
				}
			} else {
				if a.precedenceOf(op) > a.precedenceOf(top) {
					break
				}
			}
			output = append(output, top)
			stack = stack[:len(stack)-1]
		}
		stack = append(stack, op)
	}
	for len(stack) > 0 {
		output = append(output, stack[len(stack)-1])
		stack = stack[:len(stack)-1]
	}
	e.Atoms = output
}

func (a *Analyzer) precedenceOf(op *ir.OperatorAtom) int {
	if op.MemberAccess {
		return ir.PrecedenceMemberAccess
	}
	return a.ns.Info.Precedences[op.OriginalName]
}
