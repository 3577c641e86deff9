package ir

import (
	"strings"

	"github.com/cwbudde/go-epoch/internal/stringpool"
)

// TemplateMember is one member slot of a structure template; its type name
// may refer to a template parameter.
type TemplateMember struct {
	Name     stringpool.Handle
	TypeName stringpool.Handle
}

// StructureTemplate is a parameterised structure definition awaiting
// instantiation.
type StructureTemplate struct {
	Name    stringpool.Handle
	Params  []*TemplateParam
	Members []TemplateMember
}

// SumTemplate is a parameterised sum type definition awaiting instantiation.
type SumTemplate struct {
	Name      stringpool.Handle
	Params    []*TemplateParam
	BaseNames []stringpool.Handle
}

// TemplateTable stores template definitions and the instantiation cache.
// Identical argument tuples always resolve to the cached instance name, so
// instantiation is idempotent by name-handle equality.
type TemplateTable struct {
	Structures map[stringpool.Handle]*StructureTemplate
	Sums       map[stringpool.Handle]*SumTemplate
	Functions  map[stringpool.Handle][]*Function

	instances map[string]stringpool.Handle
}

// NewTemplateTable creates an empty template table.
func NewTemplateTable() *TemplateTable {
	return &TemplateTable{
		Structures: make(map[stringpool.Handle]*StructureTemplate),
		Sums:       make(map[stringpool.Handle]*SumTemplate),
		Functions:  make(map[stringpool.Handle][]*Function),
		instances:  make(map[string]stringpool.Handle),
	}
}

// IsTemplate reports whether the name refers to any template flavour.
func (t *TemplateTable) IsTemplate(name stringpool.Handle) bool {
	if _, ok := t.Structures[name]; ok {
		return true
	}
	if _, ok := t.Sums[name]; ok {
		return true
	}
	_, ok := t.Functions[name]
	return ok
}

// InstanceKey renders the cache key for a template name and argument tuple.
func InstanceKey(ns *Namespace, name stringpool.Handle, args []stringpool.Handle) string {
	var sb strings.Builder
	sb.WriteString(ns.Strings.MustGet(name))
	for _, arg := range args {
		sb.WriteString("|")
		sb.WriteString(ns.Strings.MustGet(arg))
	}
	return sb.String()
}

// CachedInstance returns the instance name previously produced for the key.
func (t *TemplateTable) CachedInstance(key string) (stringpool.Handle, bool) {
	h, ok := t.instances[key]
	return h, ok
}

// CacheInstance records the instance name produced for the key.
func (t *TemplateTable) CacheInstance(key string, instance stringpool.Handle) {
	t.instances[key] = instance
}

// InstanceName renders the user-visible name of a template instance, such as
// "Pair<integer>".
func InstanceName(ns *Namespace, name stringpool.Handle, args []stringpool.Handle) string {
	var sb strings.Builder
	sb.WriteString(ns.Strings.MustGet(name))
	sb.WriteString("<")
	for i, arg := range args {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(ns.Strings.MustGet(arg))
	}
	sb.WriteString(">")
	return sb.String()
}
