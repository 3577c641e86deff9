package ir

import (
	"fmt"

	"github.com/cwbudde/go-epoch/internal/stringpool"
	"github.com/cwbudde/go-epoch/internal/types"
)

// Template instantiation: on-demand monomorphisation of structure, sum, and
// function templates. Instantiation allocates fresh registry entries and
// overloads; the cache guarantees identical argument tuples resolve to the
// same instance name handle.

// InstantiateStructureTemplate produces (or retrieves) the instance of a
// structure template for the given type-name arguments and returns the
// instance's canonical name.
func (ns *Namespace) InstantiateStructureTemplate(name stringpool.Handle, args []stringpool.Handle) (stringpool.Handle, error) {
	tmpl, ok := ns.Templates.Structures[name]
	if !ok {
		return stringpool.InvalidHandle, fmt.Errorf("%q is not a structure template", ns.Strings.MustGet(name))
	}
	if len(args) != len(tmpl.Params) {
		return stringpool.InvalidHandle, fmt.Errorf("template %q expects %d arguments, got %d",
			ns.Strings.MustGet(name), len(tmpl.Params), len(args))
	}

	key := InstanceKey(ns, name, args)
	if cached, ok := ns.Templates.CachedInstance(key); ok {
		return cached, nil
	}

	subst, err := ns.templateSubstitution(tmpl.Params, args)
	if err != nil {
		return stringpool.InvalidHandle, err
	}

	def := &types.StructureDefinition{}
	for _, m := range tmpl.Members {
		typeName := m.TypeName
		if replacement, ok := subst[typeName]; ok {
			typeName = replacement
		}
		t := ns.Types.LookupType(typeName)
		if t == types.Error {
			return stringpool.InvalidHandle, fmt.Errorf("unknown type %q in template %q",
				ns.Strings.MustGet(typeName), ns.Strings.MustGet(name))
		}
		def.AddMember(m.Name, typeName, t)
	}

	instName := ns.Strings.Pool(InstanceName(ns, name, args))
	id, err := ns.Types.RegisterTemplateInstance(instName, def)
	if err != nil {
		return stringpool.InvalidHandle, err
	}
	ns.RegisterStructureSupport(instName, id, def)
	ns.Templates.CacheInstance(key, instName)
	return instName, nil
}

// InstantiateSumTemplate produces (or retrieves) the instance of a sum
// template and returns the instance's canonical name.
func (ns *Namespace) InstantiateSumTemplate(name stringpool.Handle, args []stringpool.Handle) (stringpool.Handle, error) {
	tmpl, ok := ns.Templates.Sums[name]
	if !ok {
		return stringpool.InvalidHandle, fmt.Errorf("%q is not a sum type template", ns.Strings.MustGet(name))
	}
	if len(args) != len(tmpl.Params) {
		return stringpool.InvalidHandle, fmt.Errorf("template %q expects %d arguments, got %d",
			ns.Strings.MustGet(name), len(tmpl.Params), len(args))
	}

	key := InstanceKey(ns, name, args)
	if cached, ok := ns.Templates.CachedInstance(key); ok {
		return cached, nil
	}

	subst, err := ns.templateSubstitution(tmpl.Params, args)
	if err != nil {
		return stringpool.InvalidHandle, err
	}

	instName := ns.Strings.Pool(InstanceName(ns, name, args))
	id, err := ns.Types.RegisterSum(instName)
	if err != nil {
		return stringpool.InvalidHandle, err
	}
	for _, base := range tmpl.BaseNames {
		if replacement, ok := subst[base]; ok {
			base = replacement
		}
		t := ns.Types.LookupType(base)
		if t == types.Error {
			return stringpool.InvalidHandle, fmt.Errorf("unknown type %q in template %q",
				ns.Strings.MustGet(base), ns.Strings.MustGet(name))
		}
		if err := ns.Types.AddSumBase(id, t); err != nil {
			return stringpool.InvalidHandle, err
		}
	}
	ns.RegisterSumSupport(instName, id)
	ns.Templates.CacheInstance(key, instName)
	return instName, nil
}

// InstantiateFunctionTemplate clones every templated overload registered
// under the raw name, substitutes the template parameters, and registers the
// clones as ordinary overloads. The returned handles identify the fresh
// overloads; they participate in lookups immediately.
func (ns *Namespace) InstantiateFunctionTemplate(raw stringpool.Handle, args []stringpool.Handle) ([]stringpool.Handle, error) {
	templates, ok := ns.Templates.Functions[raw]
	if !ok {
		return nil, fmt.Errorf("%q is not a function template", ns.Strings.MustGet(raw))
	}

	key := InstanceKey(ns, raw, args)
	if cached, ok := ns.Templates.CachedInstance(key); ok {
		return []stringpool.Handle{cached}, nil
	}

	var registered []stringpool.Handle
	for _, tmpl := range templates {
		if len(args) != len(tmpl.TemplateParams) {
			return nil, fmt.Errorf("template %q expects %d arguments, got %d",
				ns.Strings.MustGet(raw), len(tmpl.TemplateParams), len(args))
		}
		subst, err := ns.templateSubstitution(tmpl.TemplateParams, args)
		if err != nil {
			return nil, err
		}

		clone := tmpl.Clone()
		clone.TemplateParams = nil
		substituteFunctionTypes(ns, clone, subst)
		name := ns.Functions.AddFunction(raw, clone)
		registered = append(registered, name)
	}
	if len(registered) > 0 {
		ns.Templates.CacheInstance(key, registered[0])
	}
	return registered, nil
}

func (ns *Namespace) templateSubstitution(params []*TemplateParam, args []stringpool.Handle) (map[stringpool.Handle]stringpool.Handle, error) {
	subst := make(map[stringpool.Handle]stringpool.Handle, len(params))
	for i, p := range params {
		if ns.Types.LookupType(args[i]) == types.Error && !ns.Templates.IsTemplate(args[i]) {
			return nil, fmt.Errorf("unknown type %q as template argument", ns.Strings.MustGet(args[i]))
		}
		subst[p.Name] = args[i]
	}
	return subst, nil
}

func substituteFunctionTypes(ns *Namespace, f *Function, subst map[stringpool.Handle]stringpool.Handle) {
	for i := range f.Params {
		if named, ok := f.Params[i].Kind.(*ParamNamed); ok {
			if replacement, ok := subst[named.TypeName]; ok {
				named.TypeName = replacement
			}
		}
	}
	if f.Code != nil {
		fixupScopeNames(ns, f.Code, subst)
	}
	substituteStatementNames(f, subst)
}

func fixupScopeNames(ns *Namespace, block *CodeBlock, subst map[stringpool.Handle]stringpool.Handle) {
	for i := range block.Scope.Variables {
		v := &block.Scope.Variables[i]
		if replacement, ok := subst[v.TypeName]; ok {
			v.TypeName = replacement
			v.Type = ns.Types.LookupType(replacement)
		}
	}
	for _, entry := range block.Entries {
		if nested, ok := entry.(*CodeBlock); ok {
			fixupScopeNames(ns, nested, subst)
		}
	}
}

// substituteStatementNames rewrites statement names that refer to template
// parameters, covering constructor calls of the parameter type in template
// bodies and return expressions.
func substituteStatementNames(f *Function, subst map[stringpool.Handle]stringpool.Handle) {
	if f.Return != nil {
		substituteExpressionNames(f.Return, subst)
	}
	if f.Code != nil {
		substituteBlockNames(f.Code, subst)
	}
}

func substituteBlockNames(block *CodeBlock, subst map[stringpool.Handle]stringpool.Handle) {
	for _, entry := range block.Entries {
		switch e := entry.(type) {
		case *Statement:
			substituteOneStatement(e, subst)
		case *Assignment:
			substituteAssignmentNames(e, subst)
		case *Entity:
			substituteEntityNames(e, subst)
		case *CodeBlock:
			substituteBlockNames(e, subst)
		}
	}
}

func substituteOneStatement(s *Statement, subst map[stringpool.Handle]stringpool.Handle) {
	if replacement, ok := subst[s.Name]; ok {
		s.Name = replacement
		s.OriginalName = replacement
	}
	for _, p := range s.Parameters {
		substituteExpressionNames(p, subst)
	}
}

func substituteAssignmentNames(a *Assignment, subst map[stringpool.Handle]stringpool.Handle) {
	switch rhs := a.RHS.(type) {
	case *AssignmentChainExpression:
		substituteExpressionNames(rhs.Expression, subst)
	case *AssignmentChainAssignment:
		substituteAssignmentNames(rhs.Assignment, subst)
	}
}

func substituteEntityNames(e *Entity, subst map[stringpool.Handle]stringpool.Handle) {
	for _, p := range e.Parameters {
		substituteExpressionNames(p, subst)
	}
	if e.Code != nil {
		substituteBlockNames(e.Code, subst)
	}
	for _, chained := range e.Chain {
		substituteEntityNames(chained, subst)
	}
}

func substituteExpressionNames(expr *Expression, subst map[stringpool.Handle]stringpool.Handle) {
	for _, atom := range expr.Atoms {
		switch a := atom.(type) {
		case *StatementAtom:
			substituteOneStatement(a.Statement, subst)
		case *ParentheticalAtom:
			if inner, ok := a.Inner.(*ParentheticalExpression); ok {
				substituteExpressionNames(inner.Expr, subst)
			}
		}
	}
}
