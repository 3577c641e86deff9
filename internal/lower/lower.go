// Package lower translates the abstract parse tree into the typed IR. The
// walk is purely structural: it interns identifiers, classifies literal
// tokens, allocates IR nodes, and populates the registry with declared types,
// but makes no inference decisions. Encountering a parse-tree shape the
// contract forbids is a fatal internal error.
package lower

import (
	"strconv"
	"strings"

	"github.com/cwbudde/go-epoch/internal/ast"
	"github.com/cwbudde/go-epoch/internal/diag"
	"github.com/cwbudde/go-epoch/internal/ir"
	"github.com/cwbudde/go-epoch/internal/stringpool"
	"github.com/cwbudde/go-epoch/internal/types"
)

// Lowerer performs the one-shot AST to IR translation.
type Lowerer struct {
	prog *ir.Program
	ns   *ir.Namespace
	errs *diag.Collector
}

// New creates a lowerer targeting the given program.
func New(prog *ir.Program, errs *diag.Collector) *Lowerer {
	return &Lowerer{prog: prog, ns: prog.Namespace, errs: errs}
}

// Lower translates a full parse tree. Declared types and functions are
// registered into the program's namespace as they are encountered, so
// definitions must precede their uses.
func (l *Lowerer) Lower(tree *ast.Program) {
	for _, def := range tree.Definitions {
		switch node := def.(type) {
		case *ast.Structure:
			l.lowerStructure(node)
		case *ast.Function:
			l.lowerFunction(node)
		case *ast.TypeAlias:
			l.lowerTypeAlias(node)
		case *ast.StrongTypeAlias:
			l.lowerStrongTypeAlias(node)
		case *ast.SumType:
			l.lowerSumType(node)
		case *ast.Undefined:
			// Empty program.
		default:
			diag.Internal("unexpected node kind at program scope: %T", def)
		}
	}
}

func (l *Lowerer) intern(id ast.Identifier) stringpool.Handle {
	return l.ns.Strings.Pool(id.Value)
}

// ----------------------------------------------------------------------------
// Type definitions
// ----------------------------------------------------------------------------

func (l *Lowerer) lowerStructure(node *ast.Structure) {
	name := l.intern(node.Name)

	if len(node.TemplateParams) > 0 {
		tmpl := &ir.StructureTemplate{Name: name}
		for _, p := range node.TemplateParams {
			l.checkTemplateParam(p)
			tmpl.Params = append(tmpl.Params, &ir.TemplateParam{Name: l.intern(p.Name)})
		}
		for _, member := range node.Members {
			mv, ok := member.(*ast.StructureMemberVariable)
			if !ok {
				diag.Internal("unsupported member kind in structure template: %T", member)
			}
			if mv.TemplateArgs != nil {
				diag.Internal("nested template arguments on template members are not supported")
			}
			tmpl.Members = append(tmpl.Members, ir.TemplateMember{
				Name:     l.intern(mv.Name),
				TypeName: l.intern(mv.TypeName),
			})
		}
		l.ns.Templates.Structures[name] = tmpl
		return
	}

	def := &types.StructureDefinition{}
	for _, member := range node.Members {
		switch m := member.(type) {
		case *ast.StructureMemberVariable:
			typeName := l.memberTypeName(m.TypeName, m.TemplateArgs)
			t := l.ns.Types.LookupType(typeName)
			if t == types.Error {
				l.errs.SemanticErrorAt(diag.KindUnknownType, "Unknown type", m.TypeName.Begin)
			}
			def.AddMember(l.intern(m.Name), typeName, t)
		case *ast.StructureMemberFunctionRef:
			def.AddFunctionRefMember(l.intern(m.Name), l.buildRefSignature(m.ParamTypes, m.ReturnType))
		default:
			diag.Internal("unexpected node kind in structure member list: %T", member)
		}
	}

	id, err := l.ns.Types.RegisterStructure(name, def)
	if err != nil {
		l.errs.SemanticErrorAt(diag.KindDuplicateDefinition, "Duplicate type definition", node.Name.Begin)
		return
	}
	l.ns.RegisterStructureSupport(name, id, def)
}

// memberTypeName resolves the effective type name of a member or parameter,
// instantiating a structure template on the spot when template arguments are
// attached.
func (l *Lowerer) memberTypeName(typeName ast.Identifier, args *ast.TemplateArgs) stringpool.Handle {
	base := l.intern(typeName)
	if args == nil {
		return base
	}
	handles := make([]stringpool.Handle, len(args.Args))
	for i, arg := range args.Args {
		handles[i] = l.intern(arg)
	}
	inst, err := l.ns.InstantiateStructureTemplate(base, handles)
	if err != nil {
		if _, isSum := l.ns.Templates.Sums[base]; isSum {
			inst, err = l.ns.InstantiateSumTemplate(base, handles)
		}
	}
	if err != nil {
		l.errs.SemanticErrorAt(diag.KindUnknownType, err.Error(), typeName.Begin)
		return base
	}
	return inst
}

func (l *Lowerer) lowerTypeAlias(node *ast.TypeAlias) {
	name := l.intern(node.Name)
	rep := l.ns.Types.LookupType(l.intern(node.RepName))
	if rep == types.Error {
		l.errs.SemanticErrorAt(diag.KindUnknownType, "Unknown type", node.RepName.Begin)
		return
	}
	if err := l.ns.Types.RegisterWeakAlias(name, rep); err != nil {
		l.errs.SemanticErrorAt(diag.KindDuplicateDefinition, "Duplicate type definition", node.Name.Begin)
	}
}

func (l *Lowerer) lowerStrongTypeAlias(node *ast.StrongTypeAlias) {
	name := l.intern(node.Name)
	repName := l.intern(node.RepName)
	rep := l.ns.Types.LookupType(repName)
	if rep == types.Error {
		l.errs.SemanticErrorAt(diag.KindUnknownType, "Unknown type", node.RepName.Begin)
		return
	}
	id, err := l.ns.Types.RegisterStrongAlias(name, rep, repName)
	if err != nil {
		l.errs.SemanticErrorAt(diag.KindDuplicateDefinition, "Duplicate type definition", node.Name.Begin)
		return
	}

	// The unit constructor accepts the representation type and yields the
	// distinct nominal type.
	ctor := types.NewFunctionSignature()
	ctor.AddParameter("identifier", types.Identifier, false)
	ctor.AddParameter("value", rep, false)
	ctor.SetReturnType(id)
	l.ns.Functions.AddExtern(name, name, ctor)
	l.ns.ConstructorTypes[name] = id
	if l.ns.ConstructorHelper != nil {
		l.ns.Info.FunctionHelpers[name] = l.ns.ConstructorHelper
	}
}

func (l *Lowerer) lowerSumType(node *ast.SumType) {
	name := l.intern(node.Name)

	if len(node.TemplateParams) > 0 {
		tmpl := &ir.SumTemplate{Name: name}
		for _, p := range node.TemplateParams {
			l.checkTemplateParam(p)
			tmpl.Params = append(tmpl.Params, &ir.TemplateParam{Name: l.intern(p.Name)})
		}
		for _, base := range node.Bases {
			tmpl.BaseNames = append(tmpl.BaseNames, l.intern(base))
		}
		l.ns.Templates.Sums[name] = tmpl
		return
	}

	id, err := l.ns.Types.RegisterSum(name)
	if err != nil {
		l.errs.SemanticErrorAt(diag.KindDuplicateDefinition, "Duplicate type definition", node.Name.Begin)
		return
	}
	for i, base := range node.Bases {
		var args *ast.TemplateArgs
		if i < len(node.BaseArgs) {
			args = node.BaseArgs[i]
		}
		baseName := l.memberTypeName(base, args)
		t := l.ns.Types.LookupType(baseName)
		if t == types.Error {
			l.errs.SemanticErrorAt(diag.KindUnknownType, "Unknown type", base.Begin)
			continue
		}
		if err := l.ns.Types.AddSumBase(id, t); err != nil {
			diag.Internal("sum base registration failed: %v", err)
		}
	}
	l.ns.RegisterSumSupport(name, id)
}

func (l *Lowerer) checkTemplateParam(p *ast.TemplateParameter) {
	if p.MetaType.Value != "type" {
		diag.Internal("higher-order template parameters are not supported")
	}
}

// ----------------------------------------------------------------------------
// Functions
// ----------------------------------------------------------------------------

func (l *Lowerer) lowerFunction(node *ast.Function) {
	name := l.intern(node.Name)
	fn := ir.NewFunction(name)

	for _, p := range node.TemplateParams {
		l.checkTemplateParam(p)
		fn.TemplateParams = append(fn.TemplateParams, &ir.TemplateParam{Name: l.intern(p.Name)})
	}

	var code *ir.CodeBlock
	switch body := node.Code.(type) {
	case *ast.CodeBlock:
		code = ir.NewCodeBlock(l.prog.GlobalScope)
	case *ast.Undefined:
		// Declaration without a body.
	default:
		diag.Internal("unexpected node kind as function body: %T", body)
	}

	patternIndex := 0
	for _, param := range node.Params {
		switch p := param.(type) {
		case *ast.NamedFunctionParameter:
			typeName := l.memberTypeName(p.TypeName, p.TemplateArgs)
			paramName := l.intern(p.Name)
			kind := &ir.ParamNamed{TypeName: typeName, Ref: p.RefTag != nil}
			if err := fn.AddParameter(paramName, kind); err != nil {
				l.errs.SemanticErrorAt(diag.KindDuplicateDefinition, "Duplicate function parameter name", p.Name.Begin)
				continue
			}
			if code != nil {
				t := l.ns.Types.LookupType(typeName)
				if kind.Ref {
					t = types.MakeReference(t)
				}
				code.Scope.AddVariable(paramName, typeName, t, ir.OriginParameter)
			}
		case *ast.FunctionReferenceSignature:
			paramName := l.intern(p.Name)
			sig := l.buildRefSignature(p.ParamTypes, p.ReturnType)
			if err := fn.AddParameter(paramName, &ir.ParamFunctionRef{Signature: sig}); err != nil {
				l.errs.SemanticErrorAt(diag.KindDuplicateDefinition, "Duplicate function parameter name", p.Name.Begin)
				continue
			}
			if code != nil {
				code.Scope.AddVariable(paramName, stringpool.InvalidHandle, types.Function, ir.OriginParameter)
			}
		case *ast.NothingParameter:
			synthetic := l.ns.Strings.PoolFast("@@nothing")
			_ = fn.AddParameter(synthetic, &ir.ParamNothing{})
		case *ast.ExpressionParameter:
			synthetic := l.ns.Strings.PoolFast("@@pattern@" + strconv.Itoa(patternIndex))
			patternIndex++
			_ = fn.AddParameter(synthetic, &ir.ParamPattern{Expr: l.lowerExpression(p.Expr)})
		default:
			diag.Internal("unexpected node kind in function parameter list: %T", param)
		}
	}

	for _, tag := range node.Tags {
		fn.Tags = append(fn.Tags, l.lowerFunctionTag(tag))
	}

	switch ret := node.Return.(type) {
	case *ast.Expression:
		fn.Return = l.lowerExpression(ret)
	case *ast.Undefined:
		// Void return.
	default:
		diag.Internal("unexpected node kind as function return: %T", ret)
	}

	if code != nil {
		l.fillCodeBlock(code, node.Code.(*ast.CodeBlock))
		fn.Code = code
	}

	if len(fn.TemplateParams) > 0 {
		l.ns.Templates.Functions[name] = append(l.ns.Templates.Functions[name], fn)
		return
	}
	l.ns.Functions.AddFunction(name, fn)
}

func (l *Lowerer) buildRefSignature(paramTypes []ast.Identifier, returnType *ast.Identifier) *types.FunctionSignature {
	sig := types.NewFunctionSignature()
	for _, pt := range paramTypes {
		t := l.ns.Types.LookupType(l.intern(pt))
		if t == types.Error {
			l.errs.SemanticErrorAt(diag.KindUnknownType, "Unknown type", pt.Begin)
		}
		sig.AddParameter("", t, false)
	}
	if returnType != nil {
		t := l.ns.Types.LookupType(l.intern(*returnType))
		if t == types.Error {
			l.errs.SemanticErrorAt(diag.KindUnknownType, "Unknown type", returnType.Begin)
		}
		sig.SetReturnType(t)
	}
	return sig
}

func (l *Lowerer) lowerFunctionTag(tag *ast.FunctionTag) *ir.FunctionTag {
	out := &ir.FunctionTag{Name: l.intern(tag.Name), Anchor: tag.Name.Begin}
	for _, param := range tag.Params {
		out.Parameters = append(out.Parameters, l.tagParameter(param))
	}
	return out
}

func (l *Lowerer) tagParameter(id ast.Identifier) types.CompileTimeParameter {
	atom := l.classifyToken(id)
	switch a := atom.(type) {
	case *ir.LiteralInteger32Atom:
		return types.CompileTimeParameter{Type: types.Integer, Payload: types.PayloadInteger, IntegerPayload: a.Value}
	case *ir.LiteralBooleanAtom:
		return types.CompileTimeParameter{Type: types.Boolean, Payload: types.PayloadBoolean, BooleanPayload: a.Value}
	case *ir.LiteralReal32Atom:
		return types.CompileTimeParameter{Type: types.Real, Payload: types.PayloadReal, RealPayload: a.Value}
	case *ir.LiteralStringAtom:
		return types.CompileTimeParameter{Type: types.String, Payload: types.PayloadString, HandlePayload: a.Handle}
	case *ir.IdentifierAtom:
		return types.CompileTimeParameter{Type: types.Identifier, Payload: types.PayloadString, HandlePayload: a.Identifier}
	}
	diag.Internal("unrecognized function tag parameter token")
	return types.CompileTimeParameter{}
}

// ----------------------------------------------------------------------------
// Code blocks
// ----------------------------------------------------------------------------

func (l *Lowerer) fillCodeBlock(block *ir.CodeBlock, node *ast.CodeBlock) {
	for _, entry := range node.Entries {
		switch e := entry.(type) {
		case *ast.Statement:
			block.AddEntry(l.lowerStatement(e))
		case *ast.Initialization:
			block.AddEntry(l.lowerInitialization(e))
		case *ast.Assignment:
			block.AddEntry(l.lowerAssignment(e))
		case *ast.PreOperatorStatement:
			block.AddEntry(l.lowerPreOp(e))
		case *ast.PostOperatorStatement:
			block.AddEntry(l.lowerPostOp(e))
		case *ast.Entity:
			block.AddEntry(l.lowerEntity(e, block.Scope))
		case *ast.CodeBlock:
			nested := ir.NewCodeBlock(block.Scope)
			l.fillCodeBlock(nested, e)
			block.AddEntry(nested)
		default:
			diag.Internal("unexpected node kind in code block: %T", entry)
		}
	}
}

func (l *Lowerer) lowerStatement(node *ast.Statement) *ir.Statement {
	s := ir.NewStatement(l.intern(node.Name), node.Name.Begin)
	for _, p := range node.Params {
		s.AddParameter(l.lowerExpression(p))
	}
	l.attachTemplateArgs(s, node.TemplateArgs)
	return s
}

func (l *Lowerer) lowerInitialization(node *ast.Initialization) *ir.Statement {
	s := ir.NewStatement(l.intern(node.TypeName), node.TypeName.Begin)

	nameExpr := ir.NewExpression()
	nameExpr.AddAtom(&ir.IdentifierAtom{
		Identifier: l.intern(node.Name),
		Anchor:     node.Name.Begin,
		MyType:     types.Infer,
	})
	s.AddParameter(nameExpr)

	for _, p := range node.Params {
		s.AddParameter(l.lowerExpression(p))
	}
	l.attachTemplateArgs(s, node.TemplateArgs)
	return s
}

func (l *Lowerer) attachTemplateArgs(s *ir.Statement, args *ast.TemplateArgs) {
	if args == nil {
		return
	}
	for _, arg := range args.Args {
		s.TemplateArgs = append(s.TemplateArgs, types.CompileTimeParameter{
			Type:          types.Identifier,
			Payload:       types.PayloadString,
			HandlePayload: l.intern(arg),
		})
	}
	s.NeedsInstantiation = true
}

func (l *Lowerer) lowerAssignment(node *ast.Assignment) *ir.Assignment {
	lhs := make([]stringpool.Handle, len(node.LHS))
	for i, id := range node.LHS {
		lhs[i] = l.intern(id)
	}
	a := ir.NewAssignment(lhs, l.intern(node.Operator), node.LHS[0].Begin)

	switch rhs := node.RHS.(type) {
	case *ast.Expression:
		a.SetRHSRecursive(&ir.AssignmentChainExpression{Expression: l.lowerExpression(rhs)})
	case *ast.Assignment:
		a.SetRHSRecursive(&ir.AssignmentChainAssignment{Assignment: l.lowerAssignment(rhs)})
	default:
		diag.Internal("unexpected node kind as assignment RHS: %T", rhs)
	}
	return a
}

func (l *Lowerer) lowerPreOp(node *ast.PreOperatorStatement) *ir.PreOpStatement {
	operand := make([]stringpool.Handle, len(node.Operand))
	for i, id := range node.Operand {
		operand[i] = l.intern(id)
	}
	return &ir.PreOpStatement{
		OperatorName: l.intern(node.Operator),
		Operand:      operand,
		MyType:       types.Error,
		Anchor:       node.Operator.Begin,
	}
}

func (l *Lowerer) lowerPostOp(node *ast.PostOperatorStatement) *ir.PostOpStatement {
	operand := make([]stringpool.Handle, len(node.Operand))
	for i, id := range node.Operand {
		operand[i] = l.intern(id)
	}
	return &ir.PostOpStatement{
		OperatorName: l.intern(node.Operator),
		Operand:      operand,
		MyType:       types.Error,
		Anchor:       node.Operand[0].Begin,
	}
}

func (l *Lowerer) lowerEntity(node *ast.Entity, parent *ir.Scope) *ir.Entity {
	entity := &ir.Entity{Name: l.intern(node.Name), Anchor: node.Name.Begin}
	for _, p := range node.Params {
		entity.Parameters = append(entity.Parameters, l.lowerExpression(p))
	}
	if node.Code != nil {
		entity.Code = ir.NewCodeBlock(parent)
		l.fillCodeBlock(entity.Code, node.Code)
	}
	for _, chained := range node.Chain {
		c := &ir.Entity{Name: l.intern(chained.Name), Anchor: chained.Name.Begin}
		for _, p := range chained.Params {
			c.Parameters = append(c.Parameters, l.lowerExpression(p))
		}
		if chained.Code != nil {
			c.Code = ir.NewCodeBlock(parent)
			l.fillCodeBlock(c.Code, chained.Code)
		}
		entity.Chain = append(entity.Chain, c)
	}
	if node.Postfix != nil {
		entity.PostfixName = l.intern(node.Postfix.Name)
		for _, p := range node.Postfix.Params {
			entity.PostfixParameters = append(entity.PostfixParameters, l.lowerExpression(p))
		}
	}
	return entity
}

// ----------------------------------------------------------------------------
// Expressions
// ----------------------------------------------------------------------------

func (l *Lowerer) lowerExpression(node *ast.Expression) *ir.Expression {
	expr := ir.NewExpression()
	l.lowerComponent(expr, node.First)
	for _, frag := range node.Fragments {
		op := l.intern(frag.Operator)
		expr.AddAtom(&ir.OperatorAtom{Name: op, OriginalName: op})
		l.lowerComponent(expr, frag.Component)
	}
	return expr
}

func (l *Lowerer) lowerComponent(expr *ir.Expression, comp *ast.ExpressionComponent) {
	for _, prefix := range comp.UnaryPrefixes {
		op := l.intern(prefix)
		expr.AddAtom(&ir.OperatorAtom{Name: op, OriginalName: op, Unary: true})
	}
	switch atom := comp.Atom.(type) {
	case *ast.Identifier:
		expr.AddAtom(l.classifyToken(*atom))
	case *ast.Statement:
		expr.AddAtom(&ir.StatementAtom{Statement: l.lowerStatement(atom)})
	case *ast.Parenthetical:
		expr.AddAtom(&ir.ParentheticalAtom{Inner: l.lowerParenthetical(atom)})
	default:
		diag.Internal("unexpected node kind as expression atom: %T", comp.Atom)
	}
}

func (l *Lowerer) lowerParenthetical(node *ast.Parenthetical) ir.Parenthetical {
	switch inner := node.Inner.(type) {
	case *ast.Expression:
		return &ir.ParentheticalExpression{Expr: l.lowerExpression(inner)}
	case *ast.PreOperatorStatement:
		return &ir.ParentheticalPreOp{Stmt: l.lowerPreOp(inner)}
	case *ast.PostOperatorStatement:
		return &ir.ParentheticalPostOp{Stmt: l.lowerPostOp(inner)}
	default:
		diag.Internal("unexpected node kind inside parenthetical: %T", node.Inner)
		return nil
	}
}

// classifyToken converts a raw token into a typed literal atom or an
// identifier atom. Quoted strings, true/false, floating point (contains a
// dot), hexadecimal (0x prefix), and decimal integer forms are recognised;
// everything else is an identifier.
func (l *Lowerer) classifyToken(id ast.Identifier) ir.ExpressionAtom {
	raw := id.Value
	if raw == "" {
		diag.Internal("empty token in expression position")
	}

	if len(raw) >= 2 && strings.HasPrefix(raw, `"`) && strings.HasSuffix(raw, `"`) {
		return &ir.LiteralStringAtom{Handle: l.ns.Strings.Pool(raw[1 : len(raw)-1])}
	}
	if raw == "true" {
		return &ir.LiteralBooleanAtom{Value: true}
	}
	if raw == "false" {
		return &ir.LiteralBooleanAtom{Value: false}
	}
	if isNumericToken(raw) {
		if strings.Contains(raw, ".") {
			value, err := strconv.ParseFloat(raw, 32)
			if err != nil {
				diag.Internal("invalid floating point literal %q", raw)
			}
			return &ir.LiteralReal32Atom{Value: float32(value)}
		}
		if strings.HasPrefix(raw, "0x") && len(raw) > 2 {
			value, err := strconv.ParseUint(raw[2:], 16, 32)
			if err != nil {
				diag.Internal("invalid hexadecimal literal %q", raw)
			}
			return &ir.LiteralInteger32Atom{Value: int32(uint32(value))}
		}
		value, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			diag.Internal("invalid integer literal %q", raw)
		}
		return &ir.LiteralInteger32Atom{Value: int32(uint32(value))}
	}

	return &ir.IdentifierAtom{
		Identifier: l.ns.Strings.Pool(raw),
		Anchor:     id.Begin,
		MyType:     types.Infer,
	}
}

func isNumericToken(raw string) bool {
	return raw[0] >= '0' && raw[0] <= '9'
}
