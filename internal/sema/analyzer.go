// Package sema performs semantic analysis over the lowered IR: compile-time
// code execution, bidirectional type inference with overload resolution,
// template instantiation, dispatcher synthesis, and final validation.
package sema

import (
	"github.com/cwbudde/go-epoch/internal/diag"
	"github.com/cwbudde/go-epoch/internal/ir"
	"github.com/cwbudde/go-epoch/internal/stringpool"
	"github.com/cwbudde/go-epoch/internal/types"
)

// Analyzer drives semantic analysis of one program. It is single-threaded
// and deterministic; all state lives in the program's namespace and the
// error collector.
type Analyzer struct {
	prog *ir.Program
	ns   *ir.Namespace
	errs *diag.Collector
}

// NewAnalyzer creates an analyzer for the given program.
func NewAnalyzer(prog *ir.Program, errs *diag.Collector) *Analyzer {
	return &Analyzer{prog: prog, ns: prog.Namespace, errs: errs}
}

// Errors returns the analyzer's error collector.
func (a *Analyzer) Errors() *diag.Collector {
	return a.errs
}

// Analyze runs compile-time code execution, type inference, and validation
// in order. It reports whether the program is fully typed and valid.
func (a *Analyzer) Analyze() bool {
	a.CompileTimeCodeExecution()
	a.TypeInference()
	return a.Validate() && !a.errs.HasErrors()
}

// TypeInference infers every function in declaration order. Function
// signatures participate before bodies: resolving a call site forces
// inference of the callee first.
func (a *Analyzer) TypeInference() bool {
	result := true
	for _, name := range a.ns.Functions.DeclarationOrder() {
		f, ok := a.ns.Functions.Function(name)
		if !ok {
			continue
		}
		if !a.InferFunction(f) {
			result = false
		}
	}
	return result
}

// InferFunction infers a function's return expression, then its body. A
// second visit is a no-op.
func (a *Analyzer) InferFunction(f *ir.Function) bool {
	if f.InferenceDone {
		return true
	}
	f.InferenceDone = true

	if f.Code == nil {
		return true
	}

	if f.Return != nil {
		ctx := NewContext(f.Name, ContextFunctionReturn)
		ctx.FunctionName = f.Name
		if !a.InferExpression(f.Return, f.Code, ctx, 0) {
			return false
		}
		f.HintReturnType = f.Return.InferredType
	}

	ctx := NewContext(f.Name, ContextFunction)
	ctx.FunctionName = f.Name
	return a.InferCodeBlock(f.Code, ctx)
}

// InferCodeBlock infers every entry of a block in source order. Sibling
// entries continue after a failure so multiple diagnostics surface per run.
func (a *Analyzer) InferCodeBlock(block *ir.CodeBlock, outer *InferenceContext) bool {
	ctx := NewContext(outer.ContextName, ContextCodeBlock)
	ctx.FunctionName = outer.FunctionName

	result := true
	for _, entry := range block.Entries {
		switch e := entry.(type) {
		case *ir.Statement:
			if !a.InferStatement(e, block, ctx, 0) {
				result = false
			}
		case *ir.Assignment:
			if !a.InferAssignment(e, block, ctx) {
				result = false
			}
		case *ir.PreOpStatement:
			if !a.inferPreOp(e, block) {
				result = false
			}
		case *ir.PostOpStatement:
			if !a.inferPostOp(e, block) {
				result = false
			}
		case *ir.Entity:
			if !a.inferEntity(e, block, ctx) {
				result = false
			}
		case *ir.CodeBlock:
			if !a.InferCodeBlock(e, ctx) {
				result = false
			}
		}
	}
	return result
}

// inferEntity checks an entity's parameters against the registered entity
// description and infers its code block and chain.
func (a *Analyzer) inferEntity(e *ir.Entity, block *ir.CodeBlock, ctx *InferenceContext) bool {
	desc, ok := a.ns.Info.Entities[e.Name]
	if !ok {
		if desc, ok = a.ns.Info.PostfixEntities[e.Name]; !ok {
			diag.Internal("entity tag %q is not registered", a.ns.Strings.MustGet(e.Name))
		}
	}

	result := a.checkEntityParams(e.Name, e.Anchor, e.Parameters, desc, block, ctx)

	if e.Code != nil {
		if !a.InferCodeBlock(e.Code, ctx) {
			result = false
		}
	}
	for _, chained := range e.Chain {
		cdesc, ok := a.ns.Info.ChainedEntities[chained.Name]
		if !ok {
			diag.Internal("chained entity tag %q is not registered", a.ns.Strings.MustGet(chained.Name))
		}
		if !a.checkEntityParams(chained.Name, chained.Anchor, chained.Parameters, cdesc, block, ctx) {
			result = false
		}
		if chained.Code != nil {
			if !a.InferCodeBlock(chained.Code, ctx) {
				result = false
			}
		}
	}
	if e.PostfixName != stringpool.InvalidHandle {
		pdesc, ok := a.ns.Info.PostfixClosers[e.PostfixName]
		if !ok {
			diag.Internal("postfix closer tag %q is not registered", a.ns.Strings.MustGet(e.PostfixName))
		}
		if !a.checkEntityParams(e.PostfixName, e.Anchor, e.PostfixParameters, pdesc, block, ctx) {
			result = false
		}
	}
	return result
}

func (a *Analyzer) checkEntityParams(name stringpool.Handle, anchor int, params []*ir.Expression, desc ir.EntityDescription, block *ir.CodeBlock, ctx *InferenceContext) bool {
	if len(params) != len(desc.ParamTypes) {
		a.errs.SemanticErrorAt(diag.KindTypeMismatch, "Incorrect number of entity parameters", anchor)
		return false
	}
	result := true
	for i, p := range params {
		sub := NewContext(name, ContextExpression)
		sub.FunctionName = ctx.FunctionName
		if !a.InferExpression(p, block, sub, i) {
			result = false
			continue
		}
		if types.StripReference(p.InferredType) != desc.ParamTypes[i] {
			a.errs.SemanticErrorAt(diag.KindTypeMismatch, "Entity parameter has the wrong type", anchor)
			result = false
		}
	}
	return result
}
