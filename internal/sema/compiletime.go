package sema

import (
	"github.com/cwbudde/go-epoch/internal/diag"
	"github.com/cwbudde/go-epoch/internal/ir"
	"github.com/cwbudde/go-epoch/internal/stringpool"
)

// CompileTimeCodeExecution walks every function and executes compile-time
// effects in source order: weak-alias constructor rewriting, deferred
// template argument expansion, and registered compile helpers (constructors
// populate lexical scopes here, before inference needs them).
func (a *Analyzer) CompileTimeCodeExecution() bool {
	result := true
	for _, name := range a.ns.Functions.DeclarationOrder() {
		f, ok := a.ns.Functions.Function(name)
		if !ok {
			continue
		}
		if !a.compileTimeFunction(f) {
			result = false
		}
	}
	return result
}

func (a *Analyzer) compileTimeFunction(f *ir.Function) bool {
	if f.Code == nil {
		return true
	}
	result := true
	if f.Return != nil {
		if !a.compileTimeExpression(f.Return, f.Code, true) {
			result = false
		}
	}
	if !a.compileTimeBlock(f.Code, false) {
		result = false
	}
	return result
}

func (a *Analyzer) compileTimeBlock(block *ir.CodeBlock, inReturnExpr bool) bool {
	result := true
	for _, entry := range block.Entries {
		switch e := entry.(type) {
		case *ir.Statement:
			if !a.compileTimeStatement(e, block, inReturnExpr) {
				result = false
			}
		case *ir.Assignment:
			if !a.compileTimeAssignment(e, block) {
				result = false
			}
		case *ir.Entity:
			if !a.compileTimeEntity(e, block) {
				result = false
			}
		case *ir.CodeBlock:
			if !a.compileTimeBlock(e, inReturnExpr) {
				result = false
			}
		}
	}
	return result
}

func (a *Analyzer) compileTimeEntity(e *ir.Entity, block *ir.CodeBlock) bool {
	result := true
	for _, p := range e.Parameters {
		if !a.compileTimeExpression(p, block, false) {
			result = false
		}
	}
	if e.Code != nil && !a.compileTimeBlock(e.Code, false) {
		result = false
	}
	for _, chained := range e.Chain {
		for _, p := range chained.Parameters {
			if !a.compileTimeExpression(p, block, false) {
				result = false
			}
		}
		if chained.Code != nil && !a.compileTimeBlock(chained.Code, false) {
			result = false
		}
	}
	return result
}

func (a *Analyzer) compileTimeAssignment(as *ir.Assignment, block *ir.CodeBlock) bool {
	switch rhs := as.RHS.(type) {
	case *ir.AssignmentChainExpression:
		return a.compileTimeExpression(rhs.Expression, block, false)
	case *ir.AssignmentChainAssignment:
		return a.compileTimeAssignment(rhs.Assignment, block)
	}
	return true
}

func (a *Analyzer) compileTimeExpression(e *ir.Expression, block *ir.CodeBlock, inReturnExpr bool) bool {
	a.coalesce(e, block)

	result := true
	for _, atom := range e.Atoms {
		switch at := atom.(type) {
		case *ir.StatementAtom:
			if !a.compileTimeStatement(at.Statement, block, inReturnExpr) {
				result = false
			}
		case *ir.ParentheticalAtom:
			if inner, ok := at.Inner.(*ir.ParentheticalExpression); ok {
				if !a.compileTimeExpression(inner.Expr, block, inReturnExpr) {
					result = false
				}
			}
		}
	}
	return result
}

func (a *Analyzer) compileTimeStatement(s *ir.Statement, block *ir.CodeBlock, inReturnExpr bool) bool {
	a.errs.SetContext(s.Anchor)

	// A weak-alias constructor is a name synonym: rewrite to the aliased
	// base constructor before anything keys on the name.
	if rep, ok := a.ns.Types.IsWeakAlias(s.Name); ok {
		if name, found := a.ns.Types.NameOfType(rep); found {
			s.Name = name
		}
	}

	if s.NeedsInstantiation {
		a.consumeTemplateArgs(s)
	}

	result := true
	for _, p := range s.Parameters {
		if !a.compileTimeExpression(p, block, inReturnExpr) {
			result = false
		}
	}

	a.runCompileHelper(s, block, inReturnExpr)
	return result
}

// runCompileHelper invokes the registered helper for a statement's name at
// most once per statement.
func (a *Analyzer) runCompileHelper(s *ir.Statement, block *ir.CodeBlock, inReturnExpr bool) {
	if s.CompileHelperRun {
		return
	}
	helper, ok := a.ns.Info.FunctionHelpers[s.Name]
	if !ok {
		return
	}
	s.CompileHelperRun = true
	helper(s, a.ns, block, inReturnExpr)
}

// consumeTemplateArgs expands a statement's deferred template arguments,
// instantiating the named template and rewriting the statement's name to the
// instance constructor (structures, sums) or leaving it raw so the freshly
// registered overloads participate in resolution (functions).
func (a *Analyzer) consumeTemplateArgs(s *ir.Statement) {
	args := make([]stringpool.Handle, 0, len(s.TemplateArgs))
	for _, arg := range s.TemplateArgs {
		args = append(args, arg.HandlePayload)
	}

	raw := s.Name
	switch {
	case a.ns.Templates.Structures[raw] != nil:
		inst, err := a.ns.InstantiateStructureTemplate(raw, args)
		if err != nil {
			a.errs.SemanticErrorAt(diag.KindUnknownType, err.Error(), s.Anchor)
			return
		}
		s.Name = a.ns.Strings.Pool(a.ns.Strings.MustGet(inst) + "@@constructor")
	case a.ns.Templates.Sums[raw] != nil:
		inst, err := a.ns.InstantiateSumTemplate(raw, args)
		if err != nil {
			a.errs.SemanticErrorAt(diag.KindUnknownType, err.Error(), s.Anchor)
			return
		}
		// Sum instances keep their constructor under the instance name.
		s.Name = inst
	case a.ns.Templates.Functions[raw] != nil:
		registered, err := a.ns.InstantiateFunctionTemplate(raw, args)
		if err != nil {
			a.errs.SemanticErrorAt(diag.KindUnknownType, err.Error(), s.Anchor)
			return
		}
		// Fresh overloads joined the table mid-pass; run their
		// compile-time code now so their scopes populate before
		// inference reaches them.
		for _, name := range registered {
			if f, ok := a.ns.Functions.Function(name); ok {
				a.compileTimeFunction(f)
			}
		}
	default:
		a.errs.SemanticErrorAt(diag.KindUnknownType, "Unknown template", s.Anchor)
		return
	}
	s.NeedsInstantiation = false
}
