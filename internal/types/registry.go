package types

import (
	"fmt"

	"github.com/cwbudde/go-epoch/internal/stringpool"
)

// Registry owns the mapping between interned type names and type IDs, and the
// definitions behind structure, sum, and alias types. Handles and type IDs
// are stable for the lifetime of the program.
type Registry struct {
	pool *stringpool.Pool

	byName map[stringpool.Handle]TypeID
	nameOf map[TypeID]stringpool.Handle

	structures  map[TypeID]*StructureDefinition
	sumTypes    map[TypeID]*SumTypeDefinition
	weakAliases map[stringpool.Handle]TypeID

	strongRep     map[TypeID]TypeID
	strongRepName map[TypeID]stringpool.Handle

	structureOrder []TypeID
	instanceOrder  []TypeID
	sumOrder       []TypeID

	nextStructure TypeID
	nextInstance  TypeID
	nextSum       TypeID
	nextUnit      TypeID
}

// NewRegistry creates a registry pre-populated with the primitive types.
func NewRegistry(pool *stringpool.Pool) *Registry {
	r := &Registry{
		pool:          pool,
		byName:        make(map[stringpool.Handle]TypeID),
		nameOf:        make(map[TypeID]stringpool.Handle),
		structures:    make(map[TypeID]*StructureDefinition),
		sumTypes:      make(map[TypeID]*SumTypeDefinition),
		weakAliases:   make(map[stringpool.Handle]TypeID),
		strongRep:     make(map[TypeID]TypeID),
		strongRepName: make(map[TypeID]stringpool.Handle),
		nextStructure: FirstStructure,
		nextInstance:  FirstTemplateInstance,
		nextSum:       FirstSumType,
		nextUnit:      FirstUnit,
	}

	primitives := []struct {
		name string
		id   TypeID
	}{
		{"integer", Integer},
		{"integer16", Integer16},
		{"real", Real},
		{"boolean", Boolean},
		{"string", String},
		{"buffer", Buffer},
		{"identifier", Identifier},
		{"nothing", Nothing},
	}
	for _, p := range primitives {
		h := pool.Pool(p.name)
		r.byName[h] = p.id
		r.nameOf[p.id] = h
	}
	return r
}

// Pool returns the string pool backing this registry.
func (r *Registry) Pool() *stringpool.Pool {
	return r.pool
}

func (r *Registry) bind(name stringpool.Handle, id TypeID) error {
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("duplicate type name %q", r.pool.MustGet(name))
	}
	if _, exists := r.weakAliases[name]; exists {
		return fmt.Errorf("duplicate type name %q", r.pool.MustGet(name))
	}
	r.byName[name] = id
	r.nameOf[id] = name
	return nil
}

// RegisterStructure registers a structure definition under the given name and
// returns the freshly assigned type ID.
func (r *Registry) RegisterStructure(name stringpool.Handle, def *StructureDefinition) (TypeID, error) {
	id := r.nextStructure
	if err := r.bind(name, id); err != nil {
		return Error, err
	}
	r.nextStructure++
	r.structures[id] = def
	r.structureOrder = append(r.structureOrder, id)
	return id, nil
}

// RegisterTemplateInstance registers a monomorphised structure definition in
// the template-instance family.
func (r *Registry) RegisterTemplateInstance(name stringpool.Handle, def *StructureDefinition) (TypeID, error) {
	id := r.nextInstance
	if err := r.bind(name, id); err != nil {
		return Error, err
	}
	r.nextInstance++
	r.structures[id] = def
	r.instanceOrder = append(r.instanceOrder, id)
	return id, nil
}

// RegisterSum registers an empty sum type under the given name. Bases are
// added afterwards with AddSumBase.
func (r *Registry) RegisterSum(name stringpool.Handle) (TypeID, error) {
	id := r.nextSum
	if err := r.bind(name, id); err != nil {
		return Error, err
	}
	r.nextSum++
	r.sumTypes[id] = NewSumTypeDefinition()
	r.sumOrder = append(r.sumOrder, id)
	return id, nil
}

// AddSumBase adds a base type to a registered sum type.
func (r *Registry) AddSumBase(sum, base TypeID) error {
	def, ok := r.sumTypes[StripReference(sum)]
	if !ok {
		return fmt.Errorf("type %d is not a sum type", sum)
	}
	def.AddBaseType(StripReference(base))
	return nil
}

// IsSumBase reports whether base is one of sum's base types.
func (r *Registry) IsSumBase(sum, base TypeID) bool {
	def, ok := r.sumTypes[StripReference(sum)]
	if !ok {
		return false
	}
	return def.IsBaseType(StripReference(base))
}

// RegisterWeakAlias registers a transparent name synonym: looking up the
// alias name yields the representation type directly.
func (r *Registry) RegisterWeakAlias(name stringpool.Handle, rep TypeID) error {
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("duplicate type name %q", r.pool.MustGet(name))
	}
	if _, exists := r.weakAliases[name]; exists {
		return fmt.Errorf("duplicate type name %q", r.pool.MustGet(name))
	}
	r.weakAliases[name] = rep
	return nil
}

// IsWeakAlias reports whether the name is a registered weak alias and, if so,
// the type it resolves to.
func (r *Registry) IsWeakAlias(name stringpool.Handle) (TypeID, bool) {
	rep, ok := r.weakAliases[name]
	return rep, ok
}

// RegisterStrongAlias registers a unit type: a distinct nominal type with the
// same layout as its representation type.
func (r *Registry) RegisterStrongAlias(name stringpool.Handle, rep TypeID, repName stringpool.Handle) (TypeID, error) {
	id := r.nextUnit
	if err := r.bind(name, id); err != nil {
		return Error, err
	}
	r.nextUnit++
	r.strongRep[id] = rep
	r.strongRepName[id] = repName
	return id, nil
}

// StrongRepresentation returns the representation type behind a unit type.
func (r *Registry) StrongRepresentation(id TypeID) (TypeID, bool) {
	rep, ok := r.strongRep[StripReference(id)]
	return rep, ok
}

// StrongRepresentationName returns the interned name of the representation
// type behind a unit type.
func (r *Registry) StrongRepresentationName(id TypeID) (stringpool.Handle, bool) {
	h, ok := r.strongRepName[StripReference(id)]
	return h, ok
}

// LookupType resolves a type name to its ID. Weak aliases resolve
// transparently to their representation type. Unknown names yield Error.
func (r *Registry) LookupType(name stringpool.Handle) TypeID {
	if id, ok := r.byName[name]; ok {
		return id
	}
	if rep, ok := r.weakAliases[name]; ok {
		return rep
	}
	return Error
}

// NameOfType returns the interned name under which a type was registered.
func (r *Registry) NameOfType(id TypeID) (stringpool.Handle, bool) {
	h, ok := r.nameOf[StripReference(id)]
	return h, ok
}

// Structure returns the definition behind a structure or template-instance
// type ID.
func (r *Registry) Structure(id TypeID) (*StructureDefinition, bool) {
	def, ok := r.structures[StripReference(id)]
	return def, ok
}

// SumType returns the definition behind a sum type ID.
func (r *Registry) SumType(id TypeID) (*SumTypeDefinition, bool) {
	def, ok := r.sumTypes[StripReference(id)]
	return def, ok
}

// Structures returns the structure type IDs in registration order.
func (r *Registry) Structures() []TypeID {
	return r.structureOrder
}

// TemplateInstances returns the template-instance type IDs in registration
// order.
func (r *Registry) TemplateInstances() []TypeID {
	return r.instanceOrder
}

// SumTypes returns the sum type IDs in registration order.
func (r *Registry) SumTypes() []TypeID {
	return r.sumOrder
}
