package types

import "github.com/cwbudde/go-epoch/internal/stringpool"

// StructureMember is one named member of a structure definition. Members that
// are function references carry a nested signature instead of a plain type.
type StructureMember struct {
	Name     stringpool.Handle
	TypeName stringpool.Handle
	Type     TypeID

	IsFunctionRef bool
	Signature     *FunctionSignature
}

// StructureDefinition describes the ordered member list of a structure type.
type StructureDefinition struct {
	members []StructureMember
}

// AddMember appends a data member to the structure.
func (d *StructureDefinition) AddMember(name, typeName stringpool.Handle, t TypeID) {
	d.members = append(d.members, StructureMember{Name: name, TypeName: typeName, Type: t})
}

// AddFunctionRefMember appends a member holding a reference to a function of
// the given signature.
func (d *StructureDefinition) AddFunctionRefMember(name stringpool.Handle, sig *FunctionSignature) {
	d.members = append(d.members, StructureMember{
		Name:          name,
		Type:          Function,
		IsFunctionRef: true,
		Signature:     sig,
	})
}

// NumMembers returns the number of members.
func (d *StructureDefinition) NumMembers() int {
	return len(d.members)
}

// Member returns the member at the given index.
func (d *StructureDefinition) Member(i int) StructureMember {
	return d.members[i]
}

// FindMember locates a member by name, returning its index or -1.
func (d *StructureDefinition) FindMember(name stringpool.Handle) int {
	for i := range d.members {
		if d.members[i].Name == name {
			return i
		}
	}
	return -1
}

// Clone produces a deep copy of the definition.
func (d *StructureDefinition) Clone() *StructureDefinition {
	clone := &StructureDefinition{members: append([]StructureMember(nil), d.members...)}
	for i := range clone.members {
		if clone.members[i].Signature != nil {
			clone.members[i].Signature = clone.members[i].Signature.Clone()
		}
	}
	return clone
}

// SumTypeDefinition describes a tagged union: the ordered set of base types a
// value of the sum may carry at run time.
type SumTypeDefinition struct {
	bases []TypeID
	index map[TypeID]struct{}
}

// NewSumTypeDefinition creates an empty sum type definition.
func NewSumTypeDefinition() *SumTypeDefinition {
	return &SumTypeDefinition{index: make(map[TypeID]struct{})}
}

// AddBaseType adds a base type to the sum. Adding a base twice is a no-op.
func (d *SumTypeDefinition) AddBaseType(t TypeID) {
	if _, ok := d.index[t]; ok {
		return
	}
	d.bases = append(d.bases, t)
	d.index[t] = struct{}{}
}

// IsBaseType reports whether the given type is one of the sum's bases.
func (d *SumTypeDefinition) IsBaseType(t TypeID) bool {
	_, ok := d.index[t]
	return ok
}

// BaseTypes returns the bases in registration order.
func (d *SumTypeDefinition) BaseTypes() []TypeID {
	return d.bases
}

// NumBaseTypes returns the number of bases.
func (d *SumTypeDefinition) NumBaseTypes() int {
	return len(d.bases)
}
