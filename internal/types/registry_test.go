package types

import (
	"testing"

	"github.com/cwbudde/go-epoch/internal/stringpool"
)

func newTestRegistry() (*Registry, *stringpool.Pool) {
	pool := stringpool.NewPool()
	return NewRegistry(pool), pool
}

func TestPrimitiveLookup(t *testing.T) {
	r, pool := newTestRegistry()

	tests := []struct {
		name string
		want TypeID
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
	for _, tt := range tests {
		if got := r.LookupType(pool.Pool(tt.name)); got != tt.want {
			t.Errorf("LookupType(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}

	if got := r.LookupType(pool.Pool("nosuchtype")); got != Error {
		t.Errorf("LookupType of an unknown name = %d, want Error", got)
	}
}

func TestDuplicateRegistrationFails(t *testing.T) {
	r, pool := newTestRegistry()

	name := pool.Pool("Point")
	if _, err := r.RegisterStructure(name, &StructureDefinition{}); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if _, err := r.RegisterStructure(name, &StructureDefinition{}); err == nil {
		t.Error("duplicate structure registration succeeded")
	}
	if err := r.RegisterWeakAlias(name, Integer); err == nil {
		t.Error("weak alias over an existing type name succeeded")
	}
}

func TestWeakAliasResolvesTransparently(t *testing.T) {
	r, pool := newTestRegistry()

	alias := pool.Pool("count")
	if err := r.RegisterWeakAlias(alias, Integer); err != nil {
		t.Fatalf("alias registration failed: %v", err)
	}
	if got := r.LookupType(alias); got != Integer {
		t.Errorf("LookupType(count) = %d, want the aliased integer", got)
	}
}

func TestStrongAliasIsDistinct(t *testing.T) {
	r, pool := newTestRegistry()

	name := pool.Pool("meters")
	repName := pool.Pool("integer")
	id, err := r.RegisterStrongAlias(name, Integer, repName)
	if err != nil {
		t.Fatalf("strong alias registration failed: %v", err)
	}
	if id == Integer {
		t.Error("unit type shares its representation's identity")
	}
	if FamilyOf(id) != FamilyUnit {
		t.Errorf("unit type family %v, want FamilyUnit", FamilyOf(id))
	}
	if rep, ok := r.StrongRepresentation(id); !ok || rep != Integer {
		t.Errorf("StrongRepresentation = %d, %v; want integer, true", rep, ok)
	}
	if rep, ok := r.StrongRepresentationName(id); !ok || rep != repName {
		t.Errorf("StrongRepresentationName = %d, %v; want %d, true", rep, ok, repName)
	}
}

func TestSumTypeBases(t *testing.T) {
	r, pool := newTestRegistry()

	id, err := r.RegisterSum(pool.Pool("S"))
	if err != nil {
		t.Fatalf("sum registration failed: %v", err)
	}
	if err := r.AddSumBase(id, Integer); err != nil {
		t.Fatalf("adding a base failed: %v", err)
	}
	if err := r.AddSumBase(id, String); err != nil {
		t.Fatalf("adding a base failed: %v", err)
	}

	if !r.IsSumBase(id, Integer) || !r.IsSumBase(id, String) {
		t.Error("registered bases are not reported")
	}
	if r.IsSumBase(id, Boolean) {
		t.Error("boolean reported as a base it never joined")
	}
	if err := r.AddSumBase(Integer, String); err == nil {
		t.Error("adding a base to a non-sum type succeeded")
	}
}

func TestReferenceTypes(t *testing.T) {
	ref := MakeReference(Integer)
	if !IsReference(ref) {
		t.Error("reference flag not set")
	}
	if IsReference(Integer) {
		t.Error("plain type reports the reference flag")
	}
	if StripReference(ref) != Integer {
		t.Error("stripping a reference did not recover the base type")
	}
	if FamilyOf(ref) != FamilyPrimitive {
		t.Errorf("reference family %v, want the underlying family", FamilyOf(ref))
	}
}

func TestFamilyPartitioning(t *testing.T) {
	r, pool := newTestRegistry()

	structID, _ := r.RegisterStructure(pool.Pool("P"), &StructureDefinition{})
	sumID, _ := r.RegisterSum(pool.Pool("S"))
	unitID, _ := r.RegisterStrongAlias(pool.Pool("U"), Integer, pool.Pool("integer"))
	instID, _ := r.RegisterTemplateInstance(pool.Pool("P<integer>"), &StructureDefinition{})

	tests := []struct {
		id   TypeID
		want Family
	}{
		{Error, FamilyError},
		{Infer, FamilyInfer},
		{Void, FamilyVoid},
		{Integer, FamilyPrimitive},
		{Function, FamilyFunction},
		{structID, FamilyStructure},
		{sumID, FamilySumType},
		{unitID, FamilyUnit},
		{instID, FamilyTemplateInstance},
	}
	for _, tt := range tests {
		if got := FamilyOf(tt.id); got != tt.want {
			t.Errorf("FamilyOf(%d) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestSignaturePatternMatching(t *testing.T) {
	sig := NewFunctionSignature()
	sig.AddPatternMatchedParameter(42)
	sig.SetReturnType(Integer)

	p := sig.Parameter(0)
	if !p.HasPayload() {
		t.Fatal("pattern parameter carries no payload")
	}
	match := CompileTimeParameter{Type: Integer, Payload: PayloadInteger, IntegerPayload: 42}
	miss := CompileTimeParameter{Type: Integer, Payload: PayloadInteger, IntegerPayload: 7}
	if !p.PayloadEquals(match) {
		t.Error("equal payloads did not match")
	}
	if p.PayloadEquals(miss) {
		t.Error("unequal payloads matched")
	}

	general := NewFunctionSignature()
	general.AddParameter("n", Integer, false)
	general.SetReturnType(Integer)
	if !sig.MatchesDynamicPattern(general) {
		t.Error("pattern signature does not dynamically match its general form")
	}
	if sig.Matches(general) {
		t.Error("exact match ignored the payload difference")
	}
}
