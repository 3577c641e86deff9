package sema

import (
	"testing"

	"github.com/cwbudde/go-epoch/internal/ir"
	"github.com/cwbudde/go-epoch/internal/types"
)

// TestSumTypeWidening covers the type-match dispatch scenario: a concrete
// argument widening to a sum-typed formal inserts a runtime type annotation
// and routes the call through a synthesised type-match dispatcher.
func TestSumTypeWidening(t *testing.T) {
	tree := progOf(
		sumDef("S", "integer", "string"),
		fnDef("g",
			params(namedParam("S", "s")),
			retCtor("integer", "r", expr("0"))),
		fnDef("main", nil, nil,
			call("g", expr("42")),
		),
	)

	prog, _, errs := analyzeProgram(t, tree)
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Errors())
	}
	ns := prog.Namespace

	sumID := ns.Types.LookupType(mustHandle(t, ns, "S"))
	if types.FamilyOf(sumID) != types.FamilySumType {
		t.Fatalf("S registered in family %v, want sum type", types.FamilyOf(sumID))
	}
	def, _ := ns.Types.SumType(sumID)
	if def.NumBaseTypes() != 2 || !def.IsBaseType(types.Integer) || !def.IsBaseType(types.String) {
		t.Errorf("S has bases %v, want integer and string", def.BaseTypes())
	}

	main := mustFunction(t, prog, "main")
	s := statementAt(t, main.Code, 0)

	dispatcher := mustHandle(t, ns, "g@@typematch")
	if s.Name != dispatcher {
		t.Errorf("g(42) resolved to handle %d, want the type-match dispatcher %d", s.Name, dispatcher)
	}
	if s.MyType != types.Integer {
		t.Errorf("g(42) inferred type %d, want integer", s.MyType)
	}

	arg := s.Parameters[0]
	annotation, ok := arg.Atoms[0].(*ir.TypeAnnotationAtom)
	if !ok {
		t.Fatalf("widened argument leads with %T, want a type annotation", arg.Atoms[0])
	}
	if annotation.Type != types.Integer {
		t.Errorf("type annotation carries tag %d, want integer", annotation.Type)
	}

	info, ok := ns.Dispatchers[dispatcher]
	if !ok {
		t.Fatal("type-match dispatcher was not recorded")
	}
	if info.Kind != ir.DispatchTypeMatch {
		t.Errorf("dispatcher kind %d, want type match", info.Kind)
	}
}

// TestSumAssignmentWidening verifies that assigning a base-typed value into
// a sum-typed variable widens and requests a type annotation.
func TestSumAssignmentWidening(t *testing.T) {
	tree := progOf(
		sumDef("S", "integer", "string"),
		fnDef("main", nil, nil,
			initz("S", "v", expr("1")),
			assign([]string{"v"}, "=", expr("2")),
		),
	)

	prog, _, errs := analyzeProgram(t, tree)
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Errors())
	}

	main := mustFunction(t, prog, "main")
	as, ok := main.Code.Entries[1].(*ir.Assignment)
	if !ok {
		t.Fatalf("entry 1 is %T, want *ir.Assignment", main.Code.Entries[1])
	}
	if !as.WantsTypeAnnotation {
		t.Error("sum-typed assignment from a base type did not request a type annotation")
	}

	sumID := prog.Namespace.Types.LookupType(mustHandle(t, prog.Namespace, "S"))
	if as.LHSType != sumID {
		t.Errorf("assignment l-value type %d, want the sum type %d", as.LHSType, sumID)
	}
}

// TestSumConstructorAnnotatesValue verifies a sum constructor accepts a base
// value, annotating it rather than dispatching.
func TestSumConstructorAnnotatesValue(t *testing.T) {
	tree := progOf(
		sumDef("S", "integer", "string"),
		fnDef("main", nil, nil,
			initz("S", "v", expr("1")),
		),
	)

	prog, _, errs := analyzeProgram(t, tree)
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Errors())
	}

	main := mustFunction(t, prog, "main")
	s := statementAt(t, main.Code, 0)

	ctor := mustHandle(t, prog.Namespace, "S")
	if s.Name != ctor {
		t.Errorf("sum construction resolved to handle %d, want the constructor %d", s.Name, ctor)
	}
	if _, ok := s.Parameters[1].Atoms[0].(*ir.TypeAnnotationAtom); !ok {
		t.Errorf("sum constructor value leads with %T, want a type annotation", s.Parameters[1].Atoms[0])
	}

	// The constructed variable carries the sum type in scope.
	sumID := prog.Namespace.Types.LookupType(ctor)
	if got, ok := main.Code.Scope.VariableType(mustHandle(t, prog.Namespace, "v")); !ok || got != sumID {
		t.Errorf("v registered with type %d, want the sum type %d", got, sumID)
	}
}
