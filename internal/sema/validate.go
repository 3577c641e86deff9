package sema

import (
	"github.com/cwbudde/go-epoch/internal/diag"
	"github.com/cwbudde/go-epoch/internal/ir"
	"github.com/cwbudde/go-epoch/internal/types"
)

// Validate traverses the IR one final time, verifying that every node
// carries a concrete type and that every referenced entity exists. Any
// residual infer or error state becomes a user-visible failure.
func (a *Analyzer) Validate() bool {
	valid := true
	for _, name := range a.ns.Functions.DeclarationOrder() {
		f, ok := a.ns.Functions.Function(name)
		if !ok {
			continue
		}
		if !a.validateFunction(f) {
			valid = false
		}
	}
	return valid
}

func (a *Analyzer) validateFunction(f *ir.Function) bool {
	valid := true
	for i := range f.Params {
		if named, ok := f.Params[i].Kind.(*ir.ParamNamed); ok {
			if a.ns.Types.LookupType(named.TypeName) == types.Error {
				a.errs.SemanticErrorAt(diag.KindValidation, "Parameter has an unknown type", 0)
				valid = false
			}
		}
	}
	if f.Return != nil && !a.validateExpression(f.Return) {
		valid = false
	}
	if f.Code != nil && !a.validateBlock(f.Code) {
		valid = false
	}
	return valid
}

func (a *Analyzer) validateBlock(block *ir.CodeBlock) bool {
	valid := true
	for _, entry := range block.Entries {
		switch e := entry.(type) {
		case *ir.Statement:
			if !a.validateStatement(e) {
				valid = false
			}
		case *ir.Assignment:
			if !a.validateAssignment(e) {
				valid = false
			}
		case *ir.PreOpStatement:
			if e.MyType == types.Error || e.MyType == types.Infer {
				a.errs.SemanticErrorAt(diag.KindValidation, "Operator statement failed to resolve", e.Anchor)
				valid = false
			}
		case *ir.PostOpStatement:
			if e.MyType == types.Error || e.MyType == types.Infer {
				a.errs.SemanticErrorAt(diag.KindValidation, "Operator statement failed to resolve", e.Anchor)
				valid = false
			}
		case *ir.Entity:
			if !a.validateEntity(e) {
				valid = false
			}
		case *ir.CodeBlock:
			if !a.validateBlock(e) {
				valid = false
			}
		}
	}
	return valid
}

func (a *Analyzer) validateEntity(e *ir.Entity) bool {
	valid := true
	for _, p := range e.Parameters {
		if !a.validateExpression(p) {
			valid = false
		}
	}
	if e.Code != nil && !a.validateBlock(e.Code) {
		valid = false
	}
	for _, chained := range e.Chain {
		if !a.validateEntity(chained) {
			valid = false
		}
	}
	for _, p := range e.PostfixParameters {
		if !a.validateExpression(p) {
			valid = false
		}
	}
	return valid
}

func (a *Analyzer) validateStatement(s *ir.Statement) bool {
	valid := true
	for _, p := range s.Parameters {
		if !a.validateExpression(p) {
			valid = false
		}
	}
	if s.State != ir.ResolutionDone || s.MyType == types.Error || s.MyType == types.Infer {
		a.errs.SemanticErrorAt(diag.KindValidation, "Statement failed to resolve", s.Anchor)
		return false
	}
	if !a.ns.Functions.Exists(s.Name) && !a.statementNamesEnclosingParameter(s) {
		a.errs.SemanticErrorAt(diag.KindValidation, "Statement references an unknown function", s.Anchor)
		return false
	}
	return valid
}

// statementNamesEnclosingParameter reports whether the statement invokes a
// higher-order parameter rather than a registered function.
func (a *Analyzer) statementNamesEnclosingParameter(s *ir.Statement) bool {
	for _, name := range a.ns.Functions.DeclarationOrder() {
		f, ok := a.ns.Functions.Function(name)
		if !ok {
			continue
		}
		if f.HasParameter(s.Name) {
			if _, isRef := f.ParameterSignatureType(s.Name); isRef {
				return true
			}
		}
	}
	return false
}

func (a *Analyzer) validateAssignment(as *ir.Assignment) bool {
	if as.LHSType == types.Error {
		a.errs.SemanticErrorAt(diag.KindValidation, "Assignment failed to resolve", as.Anchor)
		return false
	}
	switch rhs := as.RHS.(type) {
	case *ir.AssignmentChainExpression:
		return a.validateExpression(rhs.Expression)
	case *ir.AssignmentChainAssignment:
		return a.validateAssignment(rhs.Assignment)
	}
	return true
}

func (a *Analyzer) validateExpression(e *ir.Expression) bool {
	valid := true
	for _, atom := range e.Atoms {
		switch at := atom.(type) {
		case *ir.StatementAtom:
			if !a.validateStatement(at.Statement) {
				valid = false
			}
		case *ir.ParentheticalAtom:
			if inner, ok := at.Inner.(*ir.ParentheticalExpression); ok {
				if !a.validateExpression(inner.Expr) {
					valid = false
				}
			}
		}
	}
	if e.InferredType == types.Error || e.InferredType == types.Infer {
		anchor := 0
		for _, atom := range e.Atoms {
			if ident, ok := atom.(*ir.IdentifierAtom); ok {
				anchor = ident.Anchor
				break
			}
		}
		a.errs.SemanticErrorAt(diag.KindValidation, "Expression failed to infer a type", anchor)
		return false
	}
	return valid
}
