// Package types defines the compiler's type identifiers, type families, and
// the registry that maps interned names onto registered types. Type IDs are
// opaque integers partitioned into family ranges; a high bit marks reference
// types so that reference-ness composes with any underlying type.
package types

// TypeID identifies a registered type. Equality is integer equality.
type TypeID uint32

// Sentinels and primitive type IDs. The two sentinels Error and Infer never
// describe a real value: Error marks failed resolution, Infer marks a type
// that has not been determined yet.
const (
	Error TypeID = iota
	Infer
	Void
	Nothing
	Identifier
	Integer
	Integer16
	Real
	Boolean
	String
	Buffer
	Function
)

// Family range bases. Registered custom types receive IDs counted up from
// their family's base so that the family of any ID can be recovered without
// a table lookup.
const (
	FirstStructure        TypeID = 0x01000000
	FirstTemplateInstance TypeID = 0x02000000
	FirstSumType          TypeID = 0x03000000
	FirstUnit             TypeID = 0x04000000
	familyMask            TypeID = 0x7f000000
	referenceFlag         TypeID = 0x80000000
)

// Family classifies a type ID.
type Family int

const (
	FamilyError Family = iota
	FamilyInfer
	FamilyVoid
	FamilyPrimitive
	FamilyStructure
	FamilyTemplateInstance
	FamilySumType
	FamilyUnit
	FamilyFunction
)

func (f Family) String() string {
	switch f {
	case FamilyError:
		return "error"
	case FamilyInfer:
		return "infer"
	case FamilyVoid:
		return "void"
	case FamilyPrimitive:
		return "primitive"
	case FamilyStructure:
		return "structure"
	case FamilyTemplateInstance:
		return "template instance"
	case FamilySumType:
		return "sum type"
	case FamilyUnit:
		return "unit"
	case FamilyFunction:
		return "function"
	}
	return "unknown"
}

// FamilyOf recovers the family of a type ID. Reference-ness is ignored: the
// family of a reference type is the family of its underlying type.
func FamilyOf(id TypeID) Family {
	id = StripReference(id)
	switch id & familyMask {
	case FirstStructure:
		return FamilyStructure
	case FirstTemplateInstance:
		return FamilyTemplateInstance
	case FirstSumType:
		return FamilySumType
	case FirstUnit:
		return FamilyUnit
	}
	switch id {
	case Error:
		return FamilyError
	case Infer:
		return FamilyInfer
	case Void:
		return FamilyVoid
	case Function:
		return FamilyFunction
	default:
		return FamilyPrimitive
	}
}

// MakeReference returns the reference form of a type.
func MakeReference(id TypeID) TypeID {
	return id | referenceFlag
}

// StripReference returns the non-reference form of a type.
func StripReference(id TypeID) TypeID {
	return id &^ referenceFlag
}

// IsReference reports whether a type ID carries the reference flag.
func IsReference(id TypeID) bool {
	return id&referenceFlag != 0
}
