package ast

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// DecodeProgram decodes a serialised parse tree produced by an external
// parser. Every node is an object carrying a "kind" discriminator; leaf
// identifiers carry the raw token text and byte offsets.
func DecodeProgram(data []byte) (*Program, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "parse tree is not valid JSON")
	}
	node, err := decodeNode(raw)
	if err != nil {
		return nil, err
	}
	program, ok := node.(*Program)
	if !ok {
		return nil, errors.Errorf("parse tree root must be a program, got %T", node)
	}
	return program, nil
}

func decodeNode(raw map[string]any) (Node, error) {
	kind, _ := raw["kind"].(string)
	switch kind {
	case "program":
		p := &Program{}
		defs, err := decodeNodeList(raw, "definitions")
		if err != nil {
			return nil, err
		}
		p.Definitions = defs
		return p, nil

	case "identifier":
		id, err := decodeIdentifier(raw)
		if err != nil {
			return nil, err
		}
		return &id, nil

	case "undefined":
		return &Undefined{Begin: intField(raw, "begin")}, nil

	case "structure":
		name, err := decodeIdentifierField(raw, "name")
		if err != nil {
			return nil, err
		}
		members, err := decodeNodeList(raw, "members")
		if err != nil {
			return nil, err
		}
		params, err := decodeTemplateParams(raw)
		if err != nil {
			return nil, err
		}
		return &Structure{Name: name, Members: members, TemplateParams: params}, nil

	case "structure_member":
		typeName, err := decodeIdentifierField(raw, "type")
		if err != nil {
			return nil, err
		}
		name, err := decodeIdentifierField(raw, "name")
		if err != nil {
			return nil, err
		}
		args, err := decodeTemplateArgs(raw)
		if err != nil {
			return nil, err
		}
		return &StructureMemberVariable{TypeName: typeName, Name: name, TemplateArgs: args}, nil

	case "structure_member_function_ref":
		name, err := decodeIdentifierField(raw, "name")
		if err != nil {
			return nil, err
		}
		paramTypes, err := decodeIdentifierList(raw, "param_types")
		if err != nil {
			return nil, err
		}
		ret, err := decodeOptionalIdentifier(raw, "return_type")
		if err != nil {
			return nil, err
		}
		return &StructureMemberFunctionRef{Name: name, ParamTypes: paramTypes, ReturnType: ret}, nil

	case "function":
		return decodeFunction(raw)

	case "named_parameter":
		typeName, err := decodeIdentifierField(raw, "type")
		if err != nil {
			return nil, err
		}
		name, err := decodeIdentifierField(raw, "name")
		if err != nil {
			return nil, err
		}
		p := &NamedFunctionParameter{TypeName: typeName, Name: name}
		if ref, ok := raw["ref"].(bool); ok && ref {
			p.RefTag = &RefTag{Begin: typeName.Begin}
		}
		args, err := decodeTemplateArgs(raw)
		if err != nil {
			return nil, err
		}
		p.TemplateArgs = args
		return p, nil

	case "function_ref_parameter":
		name, err := decodeIdentifierField(raw, "name")
		if err != nil {
			return nil, err
		}
		paramTypes, err := decodeIdentifierList(raw, "param_types")
		if err != nil {
			return nil, err
		}
		ret, err := decodeOptionalIdentifier(raw, "return_type")
		if err != nil {
			return nil, err
		}
		return &FunctionReferenceSignature{Name: name, ParamTypes: paramTypes, ReturnType: ret}, nil

	case "nothing_parameter":
		return &NothingParameter{Begin: intField(raw, "begin")}, nil

	case "expression_parameter":
		expr, err := decodeExpressionField(raw, "expression")
		if err != nil {
			return nil, err
		}
		return &ExpressionParameter{Expr: expr}, nil

	case "type_alias":
		name, err := decodeIdentifierField(raw, "name")
		if err != nil {
			return nil, err
		}
		rep, err := decodeIdentifierField(raw, "representation")
		if err != nil {
			return nil, err
		}
		return &TypeAlias{Name: name, RepName: rep}, nil

	case "strong_type_alias":
		name, err := decodeIdentifierField(raw, "name")
		if err != nil {
			return nil, err
		}
		rep, err := decodeIdentifierField(raw, "representation")
		if err != nil {
			return nil, err
		}
		return &StrongTypeAlias{Name: name, RepName: rep}, nil

	case "sum_type":
		name, err := decodeIdentifierField(raw, "name")
		if err != nil {
			return nil, err
		}
		bases, err := decodeIdentifierList(raw, "bases")
		if err != nil {
			return nil, err
		}
		params, err := decodeTemplateParams(raw)
		if err != nil {
			return nil, err
		}
		return &SumType{Name: name, Bases: bases, TemplateParams: params}, nil

	case "code_block":
		entries, err := decodeNodeList(raw, "entries")
		if err != nil {
			return nil, err
		}
		return &CodeBlock{Begin: intField(raw, "begin"), Entries: entries}, nil

	case "statement":
		s, err := decodeStatement(raw)
		return s, err

	case "initialization":
		typeName, err := decodeIdentifierField(raw, "type")
		if err != nil {
			return nil, err
		}
		name, err := decodeIdentifierField(raw, "name")
		if err != nil {
			return nil, err
		}
		params, err := decodeExpressionList(raw, "params")
		if err != nil {
			return nil, err
		}
		args, err := decodeTemplateArgs(raw)
		if err != nil {
			return nil, err
		}
		return &Initialization{TypeName: typeName, Name: name, Params: params, TemplateArgs: args}, nil

	case "assignment":
		as, err := decodeAssignment(raw)
		return as, err

	case "pre_op":
		operator, err := decodeIdentifierField(raw, "operator")
		if err != nil {
			return nil, err
		}
		operand, err := decodeIdentifierList(raw, "operand")
		if err != nil {
			return nil, err
		}
		return &PreOperatorStatement{Operator: operator, Operand: operand}, nil

	case "post_op":
		operator, err := decodeIdentifierField(raw, "operator")
		if err != nil {
			return nil, err
		}
		operand, err := decodeIdentifierList(raw, "operand")
		if err != nil {
			return nil, err
		}
		return &PostOperatorStatement{Operator: operator, Operand: operand}, nil

	case "entity":
		entity, err := decodeEntity(raw)
		return entity, err

	case "expression":
		expr, err := decodeExpression(raw)
		return expr, err

	case "parenthetical":
		inner, err := decodeNodeField(raw, "inner")
		if err != nil {
			return nil, err
		}
		return &Parenthetical{Begin: intField(raw, "begin"), Inner: inner}, nil
	}
	return nil, errors.Errorf("unrecognized parse tree node kind %q", kind)
}

func decodeFunction(raw map[string]any) (Node, error) {
	name, err := decodeIdentifierField(raw, "name")
	if err != nil {
		return nil, err
	}
	f := &Function{Name: name}
	if f.Params, err = decodeNodeList(raw, "params"); err != nil {
		return nil, err
	}
	if f.Return, err = decodeOptionalNode(raw, "return"); err != nil {
		return nil, err
	}
	if f.Code, err = decodeOptionalNode(raw, "code"); err != nil {
		return nil, err
	}
	if tags, ok := raw["tags"].([]any); ok {
		for _, item := range tags {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, errors.New("function tag list holds a non-object entry")
			}
			name, err := decodeIdentifierField(m, "name")
			if err != nil {
				return nil, err
			}
			params, err := decodeIdentifierList(m, "params")
			if err != nil {
				return nil, err
			}
			f.Tags = append(f.Tags, &FunctionTag{Name: name, Params: params})
		}
	}
	if f.TemplateParams, err = decodeTemplateParams(raw); err != nil {
		return nil, err
	}
	return f, nil
}

func decodeStatement(raw map[string]any) (*Statement, error) {
	name, err := decodeIdentifierField(raw, "name")
	if err != nil {
		return nil, err
	}
	params, err := decodeExpressionList(raw, "params")
	if err != nil {
		return nil, err
	}
	args, err := decodeTemplateArgs(raw)
	if err != nil {
		return nil, err
	}
	return &Statement{Name: name, Params: params, TemplateArgs: args}, nil
}

func decodeAssignment(raw map[string]any) (*Assignment, error) {
	lhs, err := decodeIdentifierList(raw, "lhs")
	if err != nil {
		return nil, err
	}
	operator, err := decodeIdentifierField(raw, "operator")
	if err != nil {
		return nil, err
	}
	rhs, err := decodeNodeField(raw, "rhs")
	if err != nil {
		return nil, err
	}
	return &Assignment{LHS: lhs, Operator: operator, RHS: rhs}, nil
}

func decodeEntity(raw map[string]any) (*Entity, error) {
	name, err := decodeIdentifierField(raw, "name")
	if err != nil {
		return nil, err
	}
	entity := &Entity{Name: name}
	if entity.Params, err = decodeExpressionList(raw, "params"); err != nil {
		return nil, err
	}
	if codeRaw, ok := raw["code"].(map[string]any); ok {
		code, err := decodeNode(codeRaw)
		if err != nil {
			return nil, err
		}
		block, ok := code.(*CodeBlock)
		if !ok {
			return nil, errors.Errorf("entity code must be a code block, got %T", code)
		}
		entity.Code = block
	}
	if chainRaw, ok := raw["chain"].([]any); ok {
		for _, item := range chainRaw {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, errors.New("entity chain holds a non-object entry")
			}
			chained, err := decodeEntity(m)
			if err != nil {
				return nil, err
			}
			entity.Chain = append(entity.Chain, &ChainedEntity{
				Name:   chained.Name,
				Params: chained.Params,
				Code:   chained.Code,
			})
		}
	}
	if postfixRaw, ok := raw["postfix"].(map[string]any); ok {
		name, err := decodeIdentifierField(postfixRaw, "name")
		if err != nil {
			return nil, err
		}
		params, err := decodeExpressionList(postfixRaw, "params")
		if err != nil {
			return nil, err
		}
		entity.Postfix = &PostfixEntityTail{Name: name, Params: params}
	}
	return entity, nil
}

func decodeExpression(raw map[string]any) (*Expression, error) {
	firstRaw, ok := raw["first"].(map[string]any)
	if !ok {
		return nil, errors.New("expression is missing its first component")
	}
	first, err := decodeComponent(firstRaw)
	if err != nil {
		return nil, err
	}
	expr := &Expression{First: first}
	if fragments, ok := raw["fragments"].([]any); ok {
		for _, item := range fragments {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, errors.New("expression fragment list holds a non-object entry")
			}
			operator, err := decodeIdentifierField(m, "operator")
			if err != nil {
				return nil, err
			}
			compRaw, ok := m["component"].(map[string]any)
			if !ok {
				return nil, errors.New("expression fragment is missing its component")
			}
			comp, err := decodeComponent(compRaw)
			if err != nil {
				return nil, err
			}
			expr.Fragments = append(expr.Fragments, &ExpressionFragment{Operator: operator, Component: comp})
		}
	}
	return expr, nil
}

func decodeComponent(raw map[string]any) (*ExpressionComponent, error) {
	comp := &ExpressionComponent{}
	prefixes, err := decodeIdentifierList(raw, "prefixes")
	if err != nil {
		return nil, err
	}
	comp.UnaryPrefixes = prefixes

	atomRaw, ok := raw["atom"].(map[string]any)
	if !ok {
		return nil, errors.New("expression component is missing its atom")
	}
	if comp.Atom, err = decodeNode(atomRaw); err != nil {
		return nil, err
	}
	return comp, nil
}

// ----------------------------------------------------------------------------
// Field helpers
// ----------------------------------------------------------------------------

func decodeIdentifier(raw map[string]any) (Identifier, error) {
	value, ok := raw["value"].(string)
	if !ok {
		return Identifier{}, errors.New("identifier is missing its value")
	}
	return Identifier{Value: value, Begin: intField(raw, "begin"), End: intField(raw, "end")}, nil
}

func decodeIdentifierField(raw map[string]any, field string) (Identifier, error) {
	m, ok := raw[field].(map[string]any)
	if !ok {
		return Identifier{}, errors.Errorf("missing identifier field %q", field)
	}
	return decodeIdentifier(m)
}

func decodeOptionalIdentifier(raw map[string]any, field string) (*Identifier, error) {
	m, ok := raw[field].(map[string]any)
	if !ok {
		return nil, nil
	}
	id, err := decodeIdentifier(m)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func decodeIdentifierList(raw map[string]any, field string) ([]Identifier, error) {
	items, ok := raw[field].([]any)
	if !ok {
		return nil, nil
	}
	out := make([]Identifier, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, errors.Errorf("field %q holds a non-object entry", field)
		}
		id, err := decodeIdentifier(m)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func decodeNodeList(raw map[string]any, field string) ([]Node, error) {
	items, ok := raw[field].([]any)
	if !ok {
		return nil, nil
	}
	out := make([]Node, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, errors.Errorf("field %q holds a non-object entry", field)
		}
		node, err := decodeNode(m)
		if err != nil {
			return nil, err
		}
		out = append(out, node)
	}
	return out, nil
}

func decodeNodeField(raw map[string]any, field string) (Node, error) {
	m, ok := raw[field].(map[string]any)
	if !ok {
		return nil, errors.Errorf("missing node field %q", field)
	}
	return decodeNode(m)
}

func decodeOptionalNode(raw map[string]any, field string) (Node, error) {
	m, ok := raw[field].(map[string]any)
	if !ok {
		return &Undefined{}, nil
	}
	return decodeNode(m)
}

func decodeExpressionField(raw map[string]any, field string) (*Expression, error) {
	node, err := decodeNodeField(raw, field)
	if err != nil {
		return nil, err
	}
	expr, ok := node.(*Expression)
	if !ok {
		return nil, errors.Errorf("field %q must be an expression, got %T", field, node)
	}
	return expr, nil
}

func decodeExpressionList(raw map[string]any, field string) ([]*Expression, error) {
	nodes, err := decodeNodeList(raw, field)
	if err != nil {
		return nil, err
	}
	out := make([]*Expression, 0, len(nodes))
	for _, node := range nodes {
		expr, ok := node.(*Expression)
		if !ok {
			return nil, errors.Errorf("field %q must hold expressions, got %T", field, node)
		}
		out = append(out, expr)
	}
	return out, nil
}

func decodeTemplateParams(raw map[string]any) ([]*TemplateParameter, error) {
	items, ok := raw["template_params"].([]any)
	if !ok {
		return nil, nil
	}
	var out []*TemplateParameter
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, errors.New("template parameter list holds a non-object entry")
		}
		meta, err := decodeIdentifierField(m, "meta")
		if err != nil {
			return nil, err
		}
		name, err := decodeIdentifierField(m, "name")
		if err != nil {
			return nil, err
		}
		out = append(out, &TemplateParameter{MetaType: meta, Name: name})
	}
	return out, nil
}

func decodeTemplateArgs(raw map[string]any) (*TemplateArgs, error) {
	args, err := decodeIdentifierList(raw, "template_args")
	if err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return nil, nil
	}
	return &TemplateArgs{Args: args}, nil
}

func intField(raw map[string]any, field string) int {
	if v, ok := raw[field].(float64); ok {
		return int(v)
	}
	return 0
}
