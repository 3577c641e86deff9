package sema

import (
	"testing"

	"github.com/cwbudde/go-epoch/internal/ir"
	"github.com/cwbudde/go-epoch/internal/types"
)

// TestPatternDispatch covers the three call shapes against a pattern-matched
// overload pair: a literal matching the pattern binds the pattern overload, a
// literal missing every pattern binds the general overload, and a dynamic
// argument routes through the synthesised dispatcher.
func TestPatternDispatch(t *testing.T) {
	tree := progOf(
		fnDef("fact",
			params(patternParam("0")),
			retCtor("integer", "r", expr("1"))),
		fnDef("fact",
			params(namedParam("integer", "n")),
			retCtor("integer", "r", expr("1")),
			assign([]string{"r"}, "=", expr("n", "*", call("fact", expr("n", "-", "1"))))),
		fnDef("main", nil, nil,
			call("fact", expr("0")),
			call("fact", expr("5")),
		),
	)

	prog, _, errs := analyzeProgram(t, tree)
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Errors())
	}
	ns := prog.Namespace

	// The recursive call fact(n - 1) has a dynamic argument: it must go
	// through the pattern-match dispatcher.
	general := mustFunction(t, prog, "fact@@overload@1")
	recursiveAssign := general.Code.Entries[0].(*ir.Assignment)
	rhs := recursiveAssign.RHS.(*ir.AssignmentChainExpression).Expression
	var recursive *ir.Statement
	for _, atom := range rhs.Atoms {
		if sa, ok := atom.(*ir.StatementAtom); ok {
			recursive = sa.Statement
		}
	}
	if recursive == nil {
		t.Fatal("recursive call not found in the general overload's body")
	}
	dispatcher, _ := ns.Strings.Lookup("fact@@patternmatch")
	if recursive.Name != dispatcher {
		t.Errorf("fact(n - 1) resolved to handle %d, want the pattern dispatcher %d", recursive.Name, dispatcher)
	}
	if recursive.MyType != types.Integer {
		t.Errorf("fact(n - 1) inferred type %d, want integer", recursive.MyType)
	}

	info, ok := ns.Dispatchers[dispatcher]
	if !ok {
		t.Fatal("pattern dispatcher was not recorded")
	}
	if info.Kind != ir.DispatchPattern {
		t.Errorf("dispatcher kind %d, want pattern", info.Kind)
	}
	if len(info.Candidates) != 2 {
		t.Fatalf("dispatcher has %d candidates, want 2", len(info.Candidates))
	}
	patternName, _ := ns.Strings.Lookup("fact")
	if info.Candidates[0] != patternName {
		t.Errorf("pattern overload must check first, got handle %d", info.Candidates[0])
	}

	// fact(0) binds the pattern overload directly.
	main := mustFunction(t, prog, "main")
	zero := statementAt(t, main.Code, 0)
	if zero.Name != patternName {
		t.Errorf("fact(0) resolved to handle %d, want the literal overload %d", zero.Name, patternName)
	}
	if !zero.Parameters[0].AtomsArePatternMatchedLiteral {
		t.Error("fact(0)'s argument was not marked as a pattern-matched literal")
	}

	// fact(5) misses the pattern and binds the general overload directly.
	five := statementAt(t, main.Code, 1)
	if five.Name != general.Name {
		t.Errorf("fact(5) resolved to handle %d, want the general overload %d", five.Name, general.Name)
	}
}

// TestPatternRejectsNonLiteralPosition verifies a pattern formal never binds
// a non-literal argument directly.
func TestPatternRejectsNonLiteralPosition(t *testing.T) {
	tree := progOf(
		fnDef("choose",
			params(patternParam("1")),
			retCtor("integer", "r", expr("1"))),
		fnDef("choose",
			params(namedParam("integer", "n")),
			retCtor("integer", "r", expr("n"))),
		fnDef("main", nil, nil,
			initz("integer", "x", expr("3")),
			call("choose", expr("x")),
		),
	)

	prog, _, errs := analyzeProgram(t, tree)
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Errors())
	}

	main := mustFunction(t, prog, "main")
	s := statementAt(t, main.Code, 1)
	dispatcher, _ := prog.Namespace.Strings.Lookup("choose@@patternmatch")
	if s.Name != dispatcher {
		t.Errorf("choose(x) resolved to handle %d, want the pattern dispatcher %d", s.Name, dispatcher)
	}
}
