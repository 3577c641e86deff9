package sema

import (
	"testing"

	"github.com/cwbudde/go-epoch/internal/ast"
	"github.com/cwbudde/go-epoch/internal/ir"
	"github.com/cwbudde/go-epoch/internal/types"
)

func funcRefParam(name string, paramTypes []string, returnType string) *ast.FunctionReferenceSignature {
	p := &ast.FunctionReferenceSignature{Name: id(name)}
	for _, pt := range paramTypes {
		p.ParamTypes = append(p.ParamTypes, id(pt))
	}
	if returnType != "" {
		ret := id(returnType)
		p.ReturnType = &ret
	}
	return p
}

// TestHigherOrderParameter covers function-reference parameters: a call
// through the parameter resolves against its declared signature, and an
// overload name passed as an argument matches by signature.
func TestHigherOrderParameter(t *testing.T) {
	tree := progOf(
		fnDef("double",
			params(namedParam("integer", "v")),
			retCtor("integer", "r", expr("v", "+", "v"))),
		fnDef("apply",
			params(funcRefParam("h", []string{"integer"}, "integer"), namedParam("integer", "v")),
			retCtor("integer", "r", expr(call("h", expr("v"))))),
		fnDef("main", nil, nil,
			call("apply", expr("double"), expr("5")),
		),
	)

	prog, _, errs := analyzeProgram(t, tree)
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Errors())
	}

	// The call through the parameter carries the nested signature's return
	// type.
	apply := mustFunction(t, prog, "apply")
	ctor := apply.Return.Atoms[0].(*ir.StatementAtom).Statement
	inner := ctor.Parameters[1].Atoms[0].(*ir.StatementAtom).Statement
	if got, _ := prog.Namespace.Strings.Get(inner.Name); got != "h" {
		t.Errorf("call through the parameter renamed to %q, want h", got)
	}
	if inner.MyType != types.Integer {
		t.Errorf("h(v) inferred type %d, want the nested signature's integer", inner.MyType)
	}

	// The overload name passed as an argument types as a function value.
	main := mustFunction(t, prog, "main")
	site := statementAt(t, main.Code, 0)
	if site.MyType != types.Integer {
		t.Errorf("apply(double, 5) inferred type %d, want integer", site.MyType)
	}
	argAtom, ok := site.Parameters[0].Atoms[0].(*ir.IdentifierAtom)
	if !ok {
		t.Fatalf("function argument atom is %T, want an identifier", site.Parameters[0].Atoms[0])
	}
	if argAtom.MyType != types.Function {
		t.Errorf("function argument typed as %d, want the function primitive", argAtom.MyType)
	}
}
