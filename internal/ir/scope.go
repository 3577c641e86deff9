package ir

import (
	"github.com/cwbudde/go-epoch/internal/stringpool"
	"github.com/cwbudde/go-epoch/internal/types"
)

// VariableOrigin records how a variable entered its scope.
type VariableOrigin int

const (
	OriginLocal VariableOrigin = iota
	OriginParameter
	OriginReturn
)

// ScopeVariable is one named slot in a lexical scope.
type ScopeVariable struct {
	Name     stringpool.Handle
	TypeName stringpool.Handle
	Type     types.TypeID
	Origin   VariableOrigin
}

// Scope describes the contents of a lexical scope. Parent is a non-owning
// back link; lifetimes nest strictly.
type Scope struct {
	Parent    *Scope
	Variables []ScopeVariable
}

// NewScope creates a scope nested in the given parent (nil for the global
// scope).
func NewScope(parent *Scope) *Scope {
	return &Scope{Parent: parent}
}

// AddVariable appends a variable to the scope.
func (s *Scope) AddVariable(name, typeName stringpool.Handle, t types.TypeID, origin VariableOrigin) {
	s.Variables = append(s.Variables, ScopeVariable{Name: name, TypeName: typeName, Type: t, Origin: origin})
}

// PrependVariable inserts a variable at the front of the scope, used for
// function parameters so their order matches the signature.
func (s *Scope) PrependVariable(name, typeName stringpool.Handle, t types.TypeID, origin VariableOrigin) {
	s.Variables = append([]ScopeVariable{{Name: name, TypeName: typeName, Type: t, Origin: origin}}, s.Variables...)
}

// HasVariable reports whether the name resolves in this scope or any parent.
func (s *Scope) HasVariable(name stringpool.Handle) bool {
	_, ok := s.VariableType(name)
	return ok
}

// HasVariableLocally reports whether the name is declared in this scope,
// ignoring parents.
func (s *Scope) HasVariableLocally(name stringpool.Handle) bool {
	for i := range s.Variables {
		if s.Variables[i].Name == name {
			return true
		}
	}
	return false
}

// VariableType resolves a variable name through the scope chain.
func (s *Scope) VariableType(name stringpool.Handle) (types.TypeID, bool) {
	for sc := s; sc != nil; sc = sc.Parent {
		for i := range sc.Variables {
			if sc.Variables[i].Name == name {
				return sc.Variables[i].Type, true
			}
		}
	}
	return types.Error, false
}

// SetVariableType rewrites the resolved type of a variable already in the
// chain.
func (s *Scope) SetVariableType(name stringpool.Handle, t types.TypeID) bool {
	for sc := s; sc != nil; sc = sc.Parent {
		for i := range sc.Variables {
			if sc.Variables[i].Name == name {
				sc.Variables[i].Type = t
				return true
			}
		}
	}
	return false
}

// Fixup substitutes template parameter names with concrete argument types in
// every variable slot of this scope (parents are left alone: they belong to
// the enclosing, non-templated context).
func (s *Scope) Fixup(params map[stringpool.Handle]types.TypeID, typeNames map[stringpool.Handle]stringpool.Handle) {
	for i := range s.Variables {
		if t, ok := params[s.Variables[i].TypeName]; ok {
			if n, named := typeNames[s.Variables[i].TypeName]; named {
				s.Variables[i].TypeName = n
			}
			s.Variables[i].Type = t
		}
	}
}

// Clone produces a copy of this scope sharing the parent link.
func (s *Scope) Clone() *Scope {
	return &Scope{
		Parent:    s.Parent,
		Variables: append([]ScopeVariable(nil), s.Variables...),
	}
}

// ParameterCount returns the number of parameter-origin variables.
func (s *Scope) ParameterCount() int {
	n := 0
	for i := range s.Variables {
		if s.Variables[i].Origin == OriginParameter {
			n++
		}
	}
	return n
}

// ReturnVariableType returns the type of the return-origin variable, if one
// has been registered.
func (s *Scope) ReturnVariableType() (types.TypeID, bool) {
	for i := range s.Variables {
		if s.Variables[i].Origin == OriginReturn {
			return s.Variables[i].Type, true
		}
	}
	return types.Error, false
}
