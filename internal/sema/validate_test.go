package sema

import (
	"testing"

	"github.com/cwbudde/go-epoch/internal/diag"
)

// TestValidationPassesCleanProgram verifies a fully inferred program
// validates without diagnostics.
func TestValidationPassesCleanProgram(t *testing.T) {
	tree := progOf(
		fnDef("f",
			params(namedParam("integer", "a")),
			retCtor("integer", "r", expr("a"))),
		fnDef("main", nil, nil,
			initz("integer", "x", expr("1")),
			call("f", expr("x")),
		),
	)

	_, a, errs := analyzeProgram(t, tree)
	if errs.HasErrors() {
		t.Fatalf("unexpected errors before validation: %v", errs.Errors())
	}
	if !a.Validate() {
		t.Fatalf("validation rejected a clean program: %v", errs.Errors())
	}
	if errs.HasErrors() {
		t.Errorf("validation of a clean program produced diagnostics: %v", errs.Errors())
	}
}

// TestValidationSurfacesResidualErrors verifies nodes that never resolved
// are surfaced by the final pass.
func TestValidationSurfacesResidualErrors(t *testing.T) {
	tree := progOf(
		fnDef("main", nil, nil,
			call("missing", expr("1")),
		),
	)

	_, a, errs := analyzeProgram(t, tree)
	if a.Validate() {
		t.Fatal("validation accepted a program with an unresolved statement")
	}

	foundUnknown := false
	foundValidation := false
	for _, e := range errs.Errors() {
		switch e.Kind {
		case diag.KindUnknownIdentifier:
			foundUnknown = true
		case diag.KindValidation:
			foundValidation = true
		}
	}
	if !foundUnknown {
		t.Errorf("missing undefined-function diagnostic: %v", errs.Errors())
	}
	if !foundValidation {
		t.Errorf("missing validation diagnostic: %v", errs.Errors())
	}
}

// TestSiblingErrorsAllSurface verifies one failing entry does not stop the
// analysis of its siblings.
func TestSiblingErrorsAllSurface(t *testing.T) {
	tree := progOf(
		fnDef("main", nil, nil,
			call("missing", expr("1")),
			call("alsomissing", expr("2")),
		),
	)

	_, _, errs := analyzeProgram(t, tree)

	unknown := 0
	for _, e := range errs.Errors() {
		if e.Kind == diag.KindUnknownIdentifier {
			unknown++
		}
	}
	if unknown != 2 {
		t.Errorf("got %d undefined-function diagnostics, want 2 (one per sibling)", unknown)
	}
}

// TestCompileHelperRunsOnce verifies constructor helpers are idempotent per
// statement.
func TestCompileHelperRunsOnce(t *testing.T) {
	tree := progOf(
		fnDef("main", nil, nil,
			initz("integer", "x", expr("1")),
		),
	)

	prog, a, errs := setupProgram(t, tree)
	a.CompileTimeCodeExecution()
	a.CompileTimeCodeExecution()
	a.TypeInference()
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Errors())
	}

	main := mustFunction(t, prog, "main")
	count := 0
	x := mustHandle(t, prog.Namespace, "x")
	for _, v := range main.Code.Scope.Variables {
		if v.Name == x {
			count++
		}
	}
	if count != 1 {
		t.Errorf("x registered %d times, want exactly once", count)
	}

	s := statementAt(t, main.Code, 0)
	if !s.CompileHelperRun {
		t.Error("constructor statement does not record its helper as run")
	}
}
