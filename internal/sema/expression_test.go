package sema

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cwbudde/go-epoch/internal/ir"
	"github.com/cwbudde/go-epoch/internal/types"
)

func atomKinds(e *ir.Expression) []string {
	var out []string
	for _, atom := range e.Atoms {
		switch at := atom.(type) {
		case *ir.IdentifierReferenceAtom:
			out = append(out, "ref")
		case *ir.IdentifierAtom:
			out = append(out, "ident")
		case *ir.OperatorAtom:
			if at.MemberAccess {
				out = append(out, "member")
			} else {
				out = append(out, "op")
			}
		case *ir.BindReferenceAtom:
			out = append(out, "bindref")
		case *ir.LiteralInteger32Atom:
			out = append(out, "int")
		case *ir.TypeAnnotationAtom:
			out = append(out, "annotation")
		case *ir.StatementAtom:
			out = append(out, "statement")
		default:
			out = append(out, "other")
		}
	}
	return out
}

// TestMemberAccessCoalescing covers the canonical flattening: p.x + p.y
// becomes [ref(p), member(x), ref(p), member(y), op(+)] after coalescing and
// reordering, and infers as integer.
func TestMemberAccessCoalescing(t *testing.T) {
	tree := progOf(
		structDef("P", [2]string{"integer", "x"}, [2]string{"integer", "y"}),
		fnDef("main", nil, nil,
			initz("P", "p", expr("1"), expr("2")),
			initz("integer", "s", expr("p", ".", "x", "+", "p", ".", "y")),
		),
	)

	prog, _, errs := analyzeProgram(t, tree)
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Errors())
	}

	main := mustFunction(t, prog, "main")
	sum := statementAt(t, main.Code, 1)
	value := sum.Parameters[1]

	want := []string{"ref", "member", "ref", "member", "op"}
	if diff := cmp.Diff(want, atomKinds(value)); diff != "" {
		t.Errorf("coalesced atom sequence mismatch (-want +got):\n%s", diff)
	}
	if value.InferredType != types.Integer {
		t.Errorf("p.x + p.y inferred type %d, want integer", value.InferredType)
	}
}

// TestDeepMemberChainProducesBindReference checks the three-deep chain
// shape: the tail member collapses into a bind-reference atom.
func TestDeepMemberChainProducesBindReference(t *testing.T) {
	tree := progOf(
		structDef("Inner", [2]string{"integer", "v"}),
		structDef("Outer", [2]string{"Inner", "inner"}),
		fnDef("main", nil, nil,
			initz("Inner", "i", expr("1")),
			initz("Outer", "o", expr("i")),
			initz("integer", "s", expr("o", ".", "inner", ".", "v")),
		),
	)

	prog, a, errs := setupProgram(t, tree)
	a.CompileTimeCodeExecution()
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Errors())
	}

	main := mustFunction(t, prog, "main")
	s := statementAt(t, main.Code, 2)
	value := s.Parameters[1]

	// Coalescing output, before precedence reordering: one reference, one
	// member-access operator per inner dot, and a terminal bind-reference.
	want := []string{"ref", "member", "bindref"}
	if diff := cmp.Diff(want, atomKinds(value)); diff != "" {
		t.Errorf("deep chain atom sequence mismatch (-want +got):\n%s", diff)
	}

	a.TypeInference()
	if errs.HasErrors() {
		t.Fatalf("unexpected inference errors: %v", errs.Errors())
	}
	if value.InferredType != types.Integer {
		t.Errorf("o.inner.v inferred type %d, want integer", value.InferredType)
	}
}

// TestPrecedenceReordering verifies the shunting-yard pass: a + b * c
// evaluates the multiplication first.
func TestPrecedenceReordering(t *testing.T) {
	tree := progOf(
		fnDef("main", nil, nil,
			initz("integer", "a", expr("1")),
			initz("integer", "b", expr("2")),
			initz("integer", "c", expr("3")),
			initz("integer", "s", expr("a", "+", "b", "*", "c")),
		),
	)

	prog, a, errs := analyzeProgram(t, tree)
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Errors())
	}

	main := mustFunction(t, prog, "main")
	value := statementAt(t, main.Code, 3).Parameters[1]

	// a b c * + in postfix order.
	kinds := atomKinds(value)
	want := []string{"ident", "ident", "ident", "op", "op"}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("reordered atom sequence mismatch (-want +got):\n%s", diff)
	}

	mul := value.Atoms[3].(*ir.OperatorAtom)
	add := value.Atoms[4].(*ir.OperatorAtom)
	if got, _ := prog.Namespace.Strings.Get(mul.OriginalName); got != "*" {
		t.Errorf("first operator in evaluation order is %q, want *", got)
	}
	if got, _ := prog.Namespace.Strings.Get(add.OriginalName); got != "+" {
		t.Errorf("second operator in evaluation order is %q, want +", got)
	}

	// Reordering is stable: applying it again must not change the order.
	before := append([]ir.ExpressionAtom(nil), value.Atoms...)
	a.reorderByPrecedence(value)
	if diff := cmp.Diff(atomKindsOf(before), atomKinds(value)); diff != "" {
		t.Errorf("second reordering changed the atom order (-want +got):\n%s", diff)
	}
	for i := range before {
		if before[i] != value.Atoms[i] {
			t.Fatalf("second reordering moved atom %d", i)
		}
	}
}

func atomKindsOf(atoms []ir.ExpressionAtom) []string {
	return atomKinds(&ir.Expression{Atoms: atoms})
}

// TestCloneReinfersToSameType checks that a deep-cloned expression re-infers
// to the type of the original.
func TestCloneReinfersToSameType(t *testing.T) {
	tree := progOf(
		fnDef("main", nil, nil,
			initz("integer", "a", expr("1")),
			initz("integer", "s", expr("a", "+", "2")),
		),
	)

	prog, a, errs := setupProgram(t, tree)
	a.CompileTimeCodeExecution()

	main := mustFunction(t, prog, "main")
	original := statementAt(t, main.Code, 1).Parameters[1]

	// Clone before inference, the shape template instantiation relies on.
	clone := original.Clone()
	if clone.InferenceDone {
		t.Fatal("clone kept the memoised inference flag")
	}

	a.TypeInference()
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Errors())
	}

	ctx := NewContext(0, ContextCodeBlock)
	if !a.InferExpression(clone, main.Code, ctx, 0) {
		t.Fatalf("clone failed to infer: %v", errs.Errors())
	}
	if clone.InferredType != original.InferredType {
		t.Errorf("clone inferred type %d, original %d", clone.InferredType, original.InferredType)
	}
}

// TestUnaryOperatorResolution checks unary prefix handling through the
// registered unary overloads.
func TestUnaryOperatorResolution(t *testing.T) {
	tree := progOf(
		fnDef("main", nil, nil,
			initz("boolean", "b", expr("true")),
			initz("boolean", "c", unaryExpr([]string{"!"}, "b")),
		),
	)

	prog, _, errs := analyzeProgram(t, tree)
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Errors())
	}

	main := mustFunction(t, prog, "main")
	value := statementAt(t, main.Code, 1).Parameters[1]
	if value.InferredType != types.Boolean {
		t.Errorf("!b inferred type %d, want boolean", value.InferredType)
	}

	var op *ir.OperatorAtom
	for _, atom := range value.Atoms {
		if o, ok := atom.(*ir.OperatorAtom); ok {
			op = o
		}
	}
	if op == nil {
		t.Fatal("no operator atom survived inference")
	}
	if got, _ := prog.Namespace.Strings.Get(op.Name); got != "!@@boolean" {
		t.Errorf("unary operator rewrote to %q, want !@@boolean", got)
	}
}
