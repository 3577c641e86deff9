// Package builtins pre-populates a namespace with the standard library
// surface the semantic core expects from external registration: operator
// signatures and precedences, pre/post and compound assignment operators,
// primitive type constructors with their compile helpers, and the built-in
// control-flow entity tags.
package builtins

import (
	"github.com/cwbudde/go-epoch/internal/ir"
	"github.com/cwbudde/go-epoch/internal/stringpool"
	"github.com/cwbudde/go-epoch/internal/types"
)

// Entity tag values handed to the code generator.
const (
	TagIf uint32 = iota + 1
	TagElseIf
	TagElse
	TagWhile
	TagDo
)

// RegisterLibrary installs the built-in library into a namespace. Called
// once per compilation session, before lowering.
func RegisterLibrary(ns *ir.Namespace) {
	ns.ConstructorHelper = ConstructorHelper

	registerArithmetic(ns)
	registerComparisons(ns)
	registerLogical(ns)
	registerStrings(ns)
	registerTypecasts(ns)
	registerPrePostOperators(ns)
	registerOpAssign(ns)
	registerPrecedences(ns)
	registerPrimitiveConstructors(ns)
	registerEntities(ns)
}

func addBinary(ns *ir.Namespace, operator, overload string, lhs, rhs, ret types.TypeID) {
	sig := types.NewFunctionSignature()
	sig.AddParameter("lhs", lhs, false)
	sig.AddParameter("rhs", rhs, false)
	sig.SetReturnType(ret)
	ns.Functions.AddExtern(ns.Strings.Pool(operator), ns.Strings.Pool(overload), sig)
}

func addUnary(ns *ir.Namespace, operator, overload string, operand, ret types.TypeID) {
	sig := types.NewFunctionSignature()
	sig.AddParameter("operand", operand, false)
	sig.SetReturnType(ret)
	ns.Functions.AddExtern(ns.Strings.Pool(operator), ns.Strings.Pool(overload), sig)
}

func registerArithmetic(ns *ir.Namespace) {
	numeric := []struct {
		suffix string
		t      types.TypeID
	}{
		{"integer", types.Integer},
		{"integer16", types.Integer16},
		{"real", types.Real},
	}
	for _, op := range []string{"+", "-", "*", "/", "%"} {
		for _, n := range numeric {
			if op == "%" && n.t == types.Real {
				continue
			}
			addBinary(ns, op, op+"@@"+n.suffix, n.t, n.t, n.t)
		}
		ns.Info.InfixOperators.Add(ns.Strings.Pool(op))
	}

	// Unary negation.
	addUnary(ns, "-", "-@@unary@integer", types.Integer, types.Integer)
	addUnary(ns, "-", "-@@unary@real", types.Real, types.Real)
	ns.Info.UnaryPrefixes.Add(ns.Strings.Pool("-"))
}

func registerComparisons(ns *ir.Namespace) {
	comparable := []struct {
		suffix string
		t      types.TypeID
	}{
		{"integer", types.Integer},
		{"integer16", types.Integer16},
		{"real", types.Real},
		{"string", types.String},
	}
	for _, op := range []string{"==", "!=", "<", ">", "<=", ">="} {
		for _, c := range comparable {
			addBinary(ns, op, op+"@@"+c.suffix, c.t, c.t, types.Boolean)
		}
		ns.Info.InfixOperators.Add(ns.Strings.Pool(op))
	}
	addBinary(ns, "==", "==@@boolean", types.Boolean, types.Boolean, types.Boolean)
	addBinary(ns, "!=", "!=@@boolean", types.Boolean, types.Boolean, types.Boolean)
}

func registerLogical(ns *ir.Namespace) {
	addBinary(ns, "&&", "&&@@boolean", types.Boolean, types.Boolean, types.Boolean)
	addBinary(ns, "||", "||@@boolean", types.Boolean, types.Boolean, types.Boolean)
	ns.Info.InfixOperators.Add(ns.Strings.Pool("&&"))
	ns.Info.InfixOperators.Add(ns.Strings.Pool("||"))

	addUnary(ns, "!", "!@@boolean", types.Boolean, types.Boolean)
	ns.Info.UnaryPrefixes.Add(ns.Strings.Pool("!"))
}

func registerStrings(ns *ir.Namespace) {
	// String concatenation shares the "+" operator.
	addBinary(ns, "+", "+@@string", types.String, types.String, types.String)
}

// registerTypecasts installs the cast overloads: cast(type, value) names
// the target type and converts the value. Each overload is keyed by the
// source value type, so overload resolution picks the conversion from the
// argument alone.
func registerTypecasts(ns *ir.Namespace) {
	cast := ns.Strings.Pool("cast")

	intToString := types.NewFunctionSignature()
	intToString.AddParameter("identifier", types.Identifier, false)
	intToString.AddParameter("value", types.Integer, false)
	intToString.SetReturnType(types.String)
	ns.Functions.AddExtern(cast, ns.Strings.Pool("cast@@integer_to_string"), intToString)

	stringToInt := types.NewFunctionSignature()
	stringToInt.AddParameter("identifier", types.Identifier, false)
	stringToInt.AddParameter("value", types.String, false)
	stringToInt.SetReturnType(types.Integer)
	ns.Functions.AddExtern(cast, ns.Strings.Pool("cast@@string_to_integer"), stringToInt)
}

func registerPrePostOperators(ns *ir.Namespace) {
	for _, op := range []string{"++", "--"} {
		addUnary(ns, op, op+"@@integer", types.Integer, types.Integer)
		addUnary(ns, op, op+"@@integer16", types.Integer16, types.Integer16)
		h := ns.Strings.Pool(op)
		ns.Info.PreOperators.Add(h)
		ns.Info.PostOperators.Add(h)
	}
}

func registerOpAssign(ns *ir.Namespace) {
	forms := []struct {
		opAssign string
		types    []types.TypeID
	}{
		{"+=", []types.TypeID{types.Integer, types.Integer16, types.Real, types.String}},
		{"-=", []types.TypeID{types.Integer, types.Integer16, types.Real}},
		{"*=", []types.TypeID{types.Integer, types.Integer16, types.Real}},
		{"/=", []types.TypeID{types.Integer, types.Integer16, types.Real}},
	}
	for _, form := range forms {
		for _, t := range form.types {
			name, _ := ns.Types.NameOfType(t)
			addBinary(ns, form.opAssign, form.opAssign+"@@"+ns.Strings.MustGet(name), t, t, t)
		}
		ns.Info.OpAssignOperators.Add(ns.Strings.Pool(form.opAssign))
	}
}

func registerPrecedences(ns *ir.Namespace) {
	levels := map[string]int{
		"||": 1,
		"&&": 2,
		"==": 3, "!=": 3, "<": 3, ">": 3, "<=": 3, ">=": 3,
		"+": 4, "-": 4,
		"*": 5, "/": 5, "%": 5,
		"!": 6,
	}
	for op, level := range levels {
		ns.Info.Precedences[ns.Strings.Pool(op)] = level
	}
}

// registerPrimitiveConstructors installs the constructor for each primitive
// type: integer(name, value) declares a variable and initialises it.
func registerPrimitiveConstructors(ns *ir.Namespace) {
	primitives := []struct {
		name string
		t    types.TypeID
	}{
		{"integer", types.Integer},
		{"integer16", types.Integer16},
		{"real", types.Real},
		{"boolean", types.Boolean},
		{"string", types.String},
		{"buffer", types.Buffer},
	}
	for _, p := range primitives {
		name := ns.Strings.Pool(p.name)
		sig := types.NewFunctionSignature()
		sig.AddParameter("identifier", types.Identifier, false)
		sig.AddParameter("value", p.t, false)
		sig.SetReturnType(p.t)
		ns.Functions.AddExtern(name, name, sig)
		ns.ConstructorTypes[name] = p.t
		ns.Info.FunctionHelpers[name] = ConstructorHelper
	}
}

func registerEntities(ns *ir.Namespace) {
	ns.Info.Entities[ns.Strings.Pool("if")] = ir.EntityDescription{
		Tag:        TagIf,
		ParamTypes: []types.TypeID{types.Boolean},
	}
	ns.Info.ChainedEntities[ns.Strings.Pool("elseif")] = ir.EntityDescription{
		Tag:        TagElseIf,
		ParamTypes: []types.TypeID{types.Boolean},
	}
	ns.Info.ChainedEntities[ns.Strings.Pool("else")] = ir.EntityDescription{
		Tag: TagElse,
	}
	ns.Info.Entities[ns.Strings.Pool("while")] = ir.EntityDescription{
		Tag:        TagWhile,
		ParamTypes: []types.TypeID{types.Boolean},
	}
	ns.Info.PostfixEntities[ns.Strings.Pool("do")] = ir.EntityDescription{
		Tag: TagDo,
	}
	ns.Info.PostfixClosers[ns.Strings.Pool("while")] = ir.EntityDescription{
		Tag:        TagWhile,
		ParamTypes: []types.TypeID{types.Boolean},
	}
}

// ConstructorHelper is the compile helper bound to constructor statements.
// It registers the variable named by the first argument in the active scope,
// typed as the constructed type, with its origin reflecting whether the
// constructor appears in a return expression.
func ConstructorHelper(s *ir.Statement, ns *ir.Namespace, scope *ir.CodeBlock, inReturnExpr bool) {
	if len(s.Parameters) == 0 || len(s.Parameters[0].Atoms) == 0 {
		return
	}

	var name stringpool.Handle
	switch atom := s.Parameters[0].Atoms[0].(type) {
	case *ir.IdentifierAtom:
		name = atom.Identifier
	case *ir.IdentifierReferenceAtom:
		name = atom.Identifier
	default:
		return
	}

	t, ok := ns.ConstructorTypes[s.Name]
	if !ok {
		return
	}
	if scope.Scope.HasVariableLocally(name) {
		return
	}

	origin := ir.OriginLocal
	if inReturnExpr {
		origin = ir.OriginReturn
	}
	typeName, _ := ns.Types.NameOfType(t)
	scope.Scope.AddVariable(name, typeName, t, origin)
}
