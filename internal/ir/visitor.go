package ir

import (
	"github.com/cwbudde/go-epoch/internal/stringpool"
	"github.com/cwbudde/go-epoch/internal/types"
)

// Visitor is the interface the code generator implements to consume a fully
// typed namespace. Walk drives it deterministically: types first, then
// dispatchers, then each function in declaration order with its code entries
// in source order and expression atoms in evaluation order.
type Visitor interface {
	// VisitSumType receives each sum type with its base-type set.
	VisitSumType(name stringpool.Handle, id types.TypeID, def *types.SumTypeDefinition)

	// VisitStructure receives each structure and template instance with
	// its substituted member layout.
	VisitStructure(name stringpool.Handle, id types.TypeID, def *types.StructureDefinition)

	// VisitDispatcher receives each synthesised dispatcher with its
	// ordered candidate overloads and their signatures.
	VisitDispatcher(name stringpool.Handle, info *DispatchInfo, signatures []*types.FunctionSignature)

	// EnterFunction receives a function's name, signature (parameter types
	// with reference flags, return type), and scope variables before its
	// code entries are visited.
	EnterFunction(f *Function, sig *types.FunctionSignature, scope *Scope)
	LeaveFunction(f *Function)

	// VisitStatement receives a resolved statement: rewritten name,
	// parameter expressions post-reorder, and return type.
	VisitStatement(s *Statement)

	// VisitAssignment receives an assignment: l-value path, resolved
	// operator, RHS, and whether a runtime type annotation is required.
	VisitAssignment(a *Assignment)

	VisitPreOp(s *PreOpStatement)
	VisitPostOp(s *PostOpStatement)

	EnterEntity(e *Entity)
	LeaveEntity(e *Entity)
}

// Walk feeds a fully typed namespace to a visitor.
func Walk(ns *Namespace, v Visitor) {
	for _, id := range ns.Types.SumTypes() {
		if def, ok := ns.Types.SumType(id); ok {
			name, _ := ns.Types.NameOfType(id)
			v.VisitSumType(name, id, def)
		}
	}
	for _, id := range ns.Types.Structures() {
		if def, ok := ns.Types.Structure(id); ok {
			name, _ := ns.Types.NameOfType(id)
			v.VisitStructure(name, id, def)
		}
	}
	for _, id := range ns.Types.TemplateInstances() {
		if def, ok := ns.Types.Structure(id); ok {
			name, _ := ns.Types.NameOfType(id)
			v.VisitStructure(name, id, def)
		}
	}

	for _, name := range ns.DispatcherOrder {
		info := ns.Dispatchers[name]
		var sigs []*types.FunctionSignature
		for _, cand := range info.Candidates {
			if sig, found := ns.Functions.SignatureOf(cand); found {
				sigs = append(sigs, sig)
			}
		}
		v.VisitDispatcher(name, info, sigs)
	}

	for _, name := range ns.Functions.DeclarationOrder() {
		f, ok := ns.Functions.Function(name)
		if !ok {
			continue
		}
		var scope *Scope
		if f.Code != nil {
			scope = f.Code.Scope
		}
		v.EnterFunction(f, f.Signature(ns), scope)
		if f.Code != nil {
			walkBlock(f.Code, v)
		}
		v.LeaveFunction(f)
	}
}

func walkBlock(block *CodeBlock, v Visitor) {
	for _, entry := range block.Entries {
		switch e := entry.(type) {
		case *Statement:
			v.VisitStatement(e)
		case *Assignment:
			v.VisitAssignment(e)
		case *PreOpStatement:
			v.VisitPreOp(e)
		case *PostOpStatement:
			v.VisitPostOp(e)
		case *Entity:
			walkEntity(e, v)
		case *CodeBlock:
			walkBlock(e, v)
		}
	}
}

func walkEntity(e *Entity, v Visitor) {
	v.EnterEntity(e)
	if e.Code != nil {
		walkBlock(e.Code, v)
	}
	for _, chained := range e.Chain {
		walkEntity(chained, v)
	}
	v.LeaveEntity(e)
}
