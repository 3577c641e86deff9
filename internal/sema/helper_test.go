package sema

import (
	"testing"

	"github.com/cwbudde/go-epoch/internal/ast"
	"github.com/cwbudde/go-epoch/internal/builtins"
	"github.com/cwbudde/go-epoch/internal/diag"
	"github.com/cwbudde/go-epoch/internal/ir"
	"github.com/cwbudde/go-epoch/internal/lower"
	"github.com/cwbudde/go-epoch/internal/stringpool"
)

// setupProgram lowers a parse tree into a fresh program with the built-in
// library registered and returns the analyzer over it.
func setupProgram(t *testing.T, tree *ast.Program) (*ir.Program, *Analyzer, *diag.Collector) {
	t.Helper()
	prog := ir.NewProgram()
	builtins.RegisterLibrary(prog.Namespace)
	errs := diag.NewCollector("test.epoch", "")
	lower.New(prog, errs).Lower(tree)
	return prog, NewAnalyzer(prog, errs), errs
}

// analyzeProgram runs the full pass sequence.
func analyzeProgram(t *testing.T, tree *ast.Program) (*ir.Program, *Analyzer, *diag.Collector) {
	t.Helper()
	prog, a, errs := setupProgram(t, tree)
	a.CompileTimeCodeExecution()
	a.TypeInference()
	return prog, a, errs
}

// mustFunction resolves an IR function by overload name text.
func mustFunction(t *testing.T, prog *ir.Program, name string) *ir.Function {
	t.Helper()
	h, ok := prog.Namespace.Strings.Lookup(name)
	if !ok {
		t.Fatalf("name %q was never pooled", name)
	}
	f, ok := prog.Namespace.Functions.Function(h)
	if !ok {
		t.Fatalf("no function registered under %q", name)
	}
	return f
}

// mustHandle resolves a previously pooled name.
func mustHandle(t *testing.T, ns *ir.Namespace, name string) stringpool.Handle {
	t.Helper()
	h, ok := ns.Strings.Lookup(name)
	if !ok {
		t.Fatalf("name %q was never pooled", name)
	}
	return h
}

// statementAt fetches a code-block entry as a statement.
func statementAt(t *testing.T, block *ir.CodeBlock, index int) *ir.Statement {
	t.Helper()
	s, ok := block.Entries[index].(*ir.Statement)
	if !ok {
		t.Fatalf("entry %d is %T, want *ir.Statement", index, block.Entries[index])
	}
	return s
}

// ----------------------------------------------------------------------------
// Parse tree builders
// ----------------------------------------------------------------------------

func id(v string) ast.Identifier {
	return ast.Identifier{Value: v}
}

func progOf(defs ...ast.Node) *ast.Program {
	return &ast.Program{Definitions: defs}
}

// expr builds a flat expression: the first part is an operand, followed by
// alternating operator / operand pairs. Operands may be token strings or
// *ast.Statement values.
func expr(parts ...any) *ast.Expression {
	e := &ast.Expression{First: component(parts[0])}
	for i := 1; i < len(parts); i += 2 {
		e.Fragments = append(e.Fragments, &ast.ExpressionFragment{
			Operator:  id(parts[i].(string)),
			Component: component(parts[i+1]),
		})
	}
	return e
}

// unaryExpr builds an expression whose first component carries unary
// prefixes.
func unaryExpr(prefixes []string, operand any) *ast.Expression {
	comp := component(operand)
	for _, p := range prefixes {
		comp.UnaryPrefixes = append(comp.UnaryPrefixes, id(p))
	}
	return &ast.Expression{First: comp}
}

func component(part any) *ast.ExpressionComponent {
	switch v := part.(type) {
	case string:
		ident := id(v)
		return &ast.ExpressionComponent{Atom: &ident}
	case *ast.Statement:
		return &ast.ExpressionComponent{Atom: v}
	case *ast.Parenthetical:
		return &ast.ExpressionComponent{Atom: v}
	}
	panic("unsupported expression part in test fixture")
}

func call(name string, params ...*ast.Expression) *ast.Statement {
	return &ast.Statement{Name: id(name), Params: params}
}

func initz(typeName, varName string, params ...*ast.Expression) *ast.Initialization {
	return &ast.Initialization{TypeName: id(typeName), Name: id(varName), Params: params}
}

func initzTemplate(typeName string, args []string, varName string, params ...*ast.Expression) *ast.Initialization {
	node := initz(typeName, varName, params...)
	ta := &ast.TemplateArgs{}
	for _, arg := range args {
		ta.Args = append(ta.Args, id(arg))
	}
	node.TemplateArgs = ta
	return node
}

func assign(lhs []string, operator string, rhs ast.Node) *ast.Assignment {
	a := &ast.Assignment{Operator: id(operator), RHS: rhs}
	for _, part := range lhs {
		a.LHS = append(a.LHS, id(part))
	}
	return a
}

func fnDef(name string, params []ast.Node, ret ast.Node, body ...ast.Node) *ast.Function {
	if ret == nil {
		ret = &ast.Undefined{}
	}
	return &ast.Function{
		Name:   id(name),
		Params: params,
		Return: ret,
		Code:   &ast.CodeBlock{Entries: body},
	}
}

func namedParam(typeName, name string) *ast.NamedFunctionParameter {
	return &ast.NamedFunctionParameter{TypeName: id(typeName), Name: id(name)}
}

func patternParam(literal string) *ast.ExpressionParameter {
	return &ast.ExpressionParameter{Expr: expr(literal)}
}

// retCtor builds a return expression constructing the named type into a
// return variable: integer(r, <init>).
func retCtor(typeName, varName string, init *ast.Expression) *ast.Expression {
	return expr(call(typeName, expr(varName), init))
}

func structDef(name string, members ...[2]string) *ast.Structure {
	s := &ast.Structure{Name: id(name)}
	for _, m := range members {
		s.Members = append(s.Members, &ast.StructureMemberVariable{TypeName: id(m[0]), Name: id(m[1])})
	}
	return s
}

func preOp(operator, operand string) *ast.PreOperatorStatement {
	return &ast.PreOperatorStatement{Operator: id(operator), Operand: []ast.Identifier{id(operand)}}
}

func ifElse(cond *ast.Expression, thenBody, elseBody []ast.Node) *ast.Entity {
	return &ast.Entity{
		Name:   id("if"),
		Params: []*ast.Expression{cond},
		Code:   &ast.CodeBlock{Entries: thenBody},
		Chain: []*ast.ChainedEntity{{
			Name: id("else"),
			Code: &ast.CodeBlock{Entries: elseBody},
		}},
	}
}

func templateParam(name string) *ast.TemplateParameter {
	return &ast.TemplateParameter{MetaType: id("type"), Name: id(name)}
}

func weakAlias(name, rep string) *ast.TypeAlias {
	return &ast.TypeAlias{Name: id(name), RepName: id(rep)}
}

func strongAlias(name, rep string) *ast.StrongTypeAlias {
	return &ast.StrongTypeAlias{Name: id(name), RepName: id(rep)}
}

func sumDef(name string, bases ...string) *ast.SumType {
	s := &ast.SumType{Name: id(name)}
	for _, b := range bases {
		s.Bases = append(s.Bases, id(b))
	}
	return s
}
