package lower

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cwbudde/go-epoch/internal/ast"
	"github.com/cwbudde/go-epoch/internal/builtins"
	"github.com/cwbudde/go-epoch/internal/diag"
	"github.com/cwbudde/go-epoch/internal/ir"
	"github.com/cwbudde/go-epoch/internal/stringpool"
	"github.com/cwbudde/go-epoch/internal/types"
)

func lowerTree(t *testing.T, tree *ast.Program) (*ir.Program, *diag.Collector) {
	t.Helper()
	prog := ir.NewProgram()
	builtins.RegisterLibrary(prog.Namespace)
	errs := diag.NewCollector("test.epoch", "")
	New(prog, errs).Lower(tree)
	return prog, errs
}

func ident(v string) ast.Identifier {
	return ast.Identifier{Value: v}
}

func exprOfToken(v string) *ast.Expression {
	token := ident(v)
	return &ast.Expression{First: &ast.ExpressionComponent{Atom: &token}}
}

// TestLiteralClassification covers the token classification rules: quoted
// strings, booleans, hexadecimal, decimal, and floating point forms.
func TestLiteralClassification(t *testing.T) {
	tests := []struct {
		token string
		want  ir.ExpressionAtom
	}{
		{`"hello"`, &ir.LiteralStringAtom{}},
		{"true", &ir.LiteralBooleanAtom{Value: true}},
		{"false", &ir.LiteralBooleanAtom{Value: false}},
		{"42", &ir.LiteralInteger32Atom{Value: 42}},
		{"0x2a", &ir.LiteralInteger32Atom{Value: 42}},
		{"3.5", &ir.LiteralReal32Atom{Value: 3.5}},
		{"name", &ir.IdentifierAtom{}},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			tree := &ast.Program{Definitions: []ast.Node{
				&ast.Function{
					Name: ident("main"),
					Return: &ast.Expression{
						First: &ast.ExpressionComponent{Atom: &ast.Statement{
							Name:   ident("integer"),
							Params: []*ast.Expression{exprOfToken("r"), exprOfToken(tt.token)},
						}},
					},
					Code: &ast.CodeBlock{},
				},
			}}

			prog, _ := lowerTree(t, tree)
			h, _ := prog.Namespace.Strings.Lookup("main")
			f, ok := prog.Namespace.Functions.Function(h)
			if !ok {
				t.Fatal("main was not registered")
			}
			stmt := f.Return.Atoms[0].(*ir.StatementAtom).Statement
			atom := stmt.Parameters[1].Atoms[0]

			switch want := tt.want.(type) {
			case *ir.LiteralStringAtom:
				got, ok := atom.(*ir.LiteralStringAtom)
				if !ok {
					t.Fatalf("classified as %T, want string literal", atom)
				}
				if text, _ := prog.Namespace.Strings.Get(got.Handle); text != "hello" {
					t.Errorf("string literal pooled as %q, want hello (quotes stripped)", text)
				}
			case *ir.LiteralBooleanAtom:
				got, ok := atom.(*ir.LiteralBooleanAtom)
				if !ok || got.Value != want.Value {
					t.Fatalf("classified as %T/%+v, want boolean %v", atom, atom, want.Value)
				}
			case *ir.LiteralInteger32Atom:
				got, ok := atom.(*ir.LiteralInteger32Atom)
				if !ok || got.Value != want.Value {
					t.Fatalf("classified as %T/%+v, want integer %d", atom, atom, want.Value)
				}
			case *ir.LiteralReal32Atom:
				got, ok := atom.(*ir.LiteralReal32Atom)
				if !ok || got.Value != want.Value {
					t.Fatalf("classified as %T/%+v, want real %v", atom, atom, want.Value)
				}
			case *ir.IdentifierAtom:
				if _, ok := atom.(*ir.IdentifierAtom); !ok {
					t.Fatalf("classified as %T, want identifier", atom)
				}
			}
		})
	}
}

// TestStructureRegistration verifies lowering registers declared structures
// with ordered members and synthesises constructor signatures.
func TestStructureRegistration(t *testing.T) {
	tree := &ast.Program{Definitions: []ast.Node{
		&ast.Structure{
			Name: ident("P"),
			Members: []ast.Node{
				&ast.StructureMemberVariable{TypeName: ident("integer"), Name: ident("x")},
				&ast.StructureMemberVariable{TypeName: ident("integer"), Name: ident("y")},
			},
		},
	}}

	prog, errs := lowerTree(t, tree)
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Errors())
	}
	ns := prog.Namespace

	name, _ := ns.Strings.Lookup("P")
	id := ns.Types.LookupType(name)
	if types.FamilyOf(id) != types.FamilyStructure {
		t.Fatalf("P registered in family %v, want structure", types.FamilyOf(id))
	}

	def, _ := ns.Types.Structure(id)
	var members []string
	for i := 0; i < def.NumMembers(); i++ {
		text, _ := ns.Strings.Get(def.Member(i).Name)
		members = append(members, text)
	}
	if diff := cmp.Diff([]string{"x", "y"}, members); diff != "" {
		t.Errorf("member order mismatch (-want +got):\n%s", diff)
	}

	ctorSig, ok := ns.Functions.SignatureOf(name)
	if !ok {
		t.Fatal("constructor signature missing")
	}
	if ctorSig.NumParameters() != 3 {
		t.Errorf("constructor has %d parameters, want identifier plus two members", ctorSig.NumParameters())
	}
	if ctorSig.Parameter(0).Type != types.Identifier {
		t.Errorf("constructor parameter 0 type %d, want identifier", ctorSig.Parameter(0).Type)
	}
	if ctorSig.ReturnType() != id {
		t.Errorf("constructor return type %d, want the structure type %d", ctorSig.ReturnType(), id)
	}

	accessor, found := ns.FindStructureMemberAccessOverload(id, mustLookup(t, ns, "x"))
	if !found {
		t.Fatal("member accessor missing")
	}
	accessorSig, _ := ns.Functions.SignatureOf(accessor)
	if accessorSig.ReturnType() != types.Integer {
		t.Errorf("accessor return type %d, want integer", accessorSig.ReturnType())
	}
}

func mustLookup(t *testing.T, ns *ir.Namespace, name string) stringpool.Handle {
	t.Helper()
	h, ok := ns.Strings.Lookup(name)
	if !ok {
		t.Fatalf("name %q was never pooled", name)
	}
	return h
}

// TestUnexpectedNodePanics verifies parse-tree contract violations abort
// with an internal error rather than a diagnostic.
func TestUnexpectedNodePanics(t *testing.T) {
	tree := &ast.Program{Definitions: []ast.Node{
		&ast.Structure{
			Name:    ident("Bad"),
			Members: []ast.Node{&ast.Undefined{}},
		},
	}}

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("lowering accepted an undefined node in a forbidden position")
		}
		if _, ok := r.(diag.InternalError); !ok {
			t.Fatalf("panicked with %T, want diag.InternalError", r)
		}
	}()

	prog := ir.NewProgram()
	builtins.RegisterLibrary(prog.Namespace)
	New(prog, diag.NewCollector("test.epoch", "")).Lower(tree)
}

// TestHigherOrderTemplateParamPanics verifies the unsupported-construct
// contract for non-type template parameters.
func TestHigherOrderTemplateParamPanics(t *testing.T) {
	tree := &ast.Program{Definitions: []ast.Node{
		&ast.Structure{
			Name: ident("Bad"),
			TemplateParams: []*ast.TemplateParameter{
				{MetaType: ident("template"), Name: ident("T")},
			},
		},
	}}

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("lowering accepted a higher-order template parameter")
		}
	}()

	prog := ir.NewProgram()
	builtins.RegisterLibrary(prog.Namespace)
	New(prog, diag.NewCollector("test.epoch", "")).Lower(tree)
}
