package ir

import (
	"fmt"

	"github.com/cwbudde/go-epoch/internal/stringpool"
	"github.com/cwbudde/go-epoch/internal/types"
)

// HandleSet is a set of interned name handles.
type HandleSet map[stringpool.Handle]struct{}

// Contains reports set membership.
func (s HandleSet) Contains(h stringpool.Handle) bool {
	_, ok := s[h]
	return ok
}

// Add inserts a handle into the set.
func (s HandleSet) Add(h stringpool.Handle) {
	s[h] = struct{}{}
}

// CompileHelper is a side-effect callback invoked while a statement is
// inferred: constructors register variables, other helpers rewrite children.
type CompileHelper func(s *Statement, ns *Namespace, scope *CodeBlock, inReturnExpr bool)

// EntityDescription is the library-registered metadata of a control-flow
// entity tag.
type EntityDescription struct {
	Tag        uint32
	ParamTypes []types.TypeID
}

// CompilerInfoTable carries everything library registration contributes to
// the session: operator sets, precedences, compile helpers, and entity tags.
type CompilerInfoTable struct {
	FunctionHelpers map[stringpool.Handle]CompileHelper

	InfixOperators    HandleSet
	UnaryPrefixes     HandleSet
	PreOperators      HandleSet
	PostOperators     HandleSet
	OpAssignOperators HandleSet

	Precedences map[stringpool.Handle]int

	Entities        map[stringpool.Handle]EntityDescription
	ChainedEntities map[stringpool.Handle]EntityDescription
	PostfixEntities map[stringpool.Handle]EntityDescription
	PostfixClosers  map[stringpool.Handle]EntityDescription
}

// NewCompilerInfoTable creates an empty info table.
func NewCompilerInfoTable() *CompilerInfoTable {
	return &CompilerInfoTable{
		FunctionHelpers:   make(map[stringpool.Handle]CompileHelper),
		InfixOperators:    make(HandleSet),
		UnaryPrefixes:     make(HandleSet),
		PreOperators:      make(HandleSet),
		PostOperators:     make(HandleSet),
		OpAssignOperators: make(HandleSet),
		Precedences:       make(map[stringpool.Handle]int),
		Entities:          make(map[stringpool.Handle]EntityDescription),
		ChainedEntities:   make(map[stringpool.Handle]EntityDescription),
		PostfixEntities:   make(map[stringpool.Handle]EntityDescription),
		PostfixClosers:    make(map[stringpool.Handle]EntityDescription),
	}
}

// PrecedenceMemberAccess is the precedence of synthesised member-access
// operators: tighter than any registrable infix operator.
const PrecedenceMemberAccess = 1000

// FunctionTable tracks every function known to the program: the overload
// names registered under each raw identifier (in insertion order, which
// fixes overload resolution order), the IR body or extern signature behind
// each overload name, and the order in which IR functions were declared.
type FunctionTable struct {
	ns *Namespace

	overloads map[stringpool.Handle][]stringpool.Handle
	irFuncs   map[stringpool.Handle]*Function
	externs   map[stringpool.Handle]*types.FunctionSignature
	declared  []stringpool.Handle
}

func newFunctionTable(ns *Namespace) *FunctionTable {
	return &FunctionTable{
		ns:        ns,
		overloads: make(map[stringpool.Handle][]stringpool.Handle),
		irFuncs:   make(map[stringpool.Handle]*Function),
		externs:   make(map[stringpool.Handle]*types.FunctionSignature),
	}
}

// AddFunction registers an IR function under its raw name, allocating a
// mangled overload name when the raw name is already taken. The function's
// Name field is rewritten to the overload name; the returned handle
// identifies the overload.
func (t *FunctionTable) AddFunction(raw stringpool.Handle, f *Function) stringpool.Handle {
	name := raw
	if n := len(t.overloads[raw]); n > 0 {
		mangled := fmt.Sprintf("%s@@overload@%d", t.ns.Strings.MustGet(raw), n)
		name = t.ns.Strings.Pool(mangled)
	}
	f.Name = name
	t.overloads[raw] = append(t.overloads[raw], name)
	t.irFuncs[name] = f
	t.declared = append(t.declared, name)
	return name
}

// AddExtern registers a library signature as an overload of the raw name.
func (t *FunctionTable) AddExtern(raw, overload stringpool.Handle, sig *types.FunctionSignature) {
	for _, existing := range t.overloads[raw] {
		if existing == overload {
			t.externs[overload] = sig
			return
		}
	}
	t.overloads[raw] = append(t.overloads[raw], overload)
	t.externs[overload] = sig
}

// RegisterSignature records a signature without attaching it to any overload
// set; used for synthesised accessors addressed by exact name.
func (t *FunctionTable) RegisterSignature(name stringpool.Handle, sig *types.FunctionSignature) {
	t.externs[name] = sig
}

// HasOverloads reports whether any overload is registered under the raw name.
func (t *FunctionTable) HasOverloads(raw stringpool.Handle) bool {
	return len(t.overloads[raw]) > 0
}

// OverloadNames returns the overload names registered under the raw name, in
// insertion order.
func (t *FunctionTable) OverloadNames(raw stringpool.Handle) []stringpool.Handle {
	return t.overloads[raw]
}

// NumOverloads returns the number of overloads under the raw name.
func (t *FunctionTable) NumOverloads(raw stringpool.Handle) int {
	return len(t.overloads[raw])
}

// HasFunction reports whether any IR function is registered under the raw
// name.
func (t *FunctionTable) HasFunction(raw stringpool.Handle) bool {
	for _, name := range t.overloads[raw] {
		if _, ok := t.irFuncs[name]; ok {
			return true
		}
	}
	return false
}

// Function returns the IR function behind an overload name.
func (t *FunctionTable) Function(name stringpool.Handle) (*Function, bool) {
	f, ok := t.irFuncs[name]
	return f, ok
}

// Extern returns the extern signature behind an overload name.
func (t *FunctionTable) Extern(name stringpool.Handle) (*types.FunctionSignature, bool) {
	sig, ok := t.externs[name]
	return sig, ok
}

// SignatureOf materialises the signature behind an overload name, whether it
// is IR-backed or extern.
func (t *FunctionTable) SignatureOf(name stringpool.Handle) (*types.FunctionSignature, bool) {
	if f, ok := t.irFuncs[name]; ok {
		return f.Signature(t.ns), true
	}
	if sig, ok := t.externs[name]; ok {
		return sig, true
	}
	return nil, false
}

// Exists reports whether the name is a known overload, IR or extern.
func (t *FunctionTable) Exists(name stringpool.Handle) bool {
	if _, ok := t.irFuncs[name]; ok {
		return true
	}
	_, ok := t.externs[name]
	return ok
}

// DeclarationOrder returns the overload names of IR functions in the order
// they were added. Inference visits functions in this order.
func (t *FunctionTable) DeclarationOrder() []stringpool.Handle {
	return t.declared
}

// Namespace is the container for everything a program defines: the string
// pool, the type registry, the function table, library registration, and
// template definitions.
type Namespace struct {
	Strings   *stringpool.Pool
	Types     *types.Registry
	Functions *FunctionTable
	Info      *CompilerInfoTable
	Templates *TemplateTable

	// ConstructorTypes maps constructor overload names to the type they
	// construct, covering template instances whose constructor names are
	// not themselves type names.
	ConstructorTypes map[stringpool.Handle]types.TypeID

	// ConstructorHelper is the compile helper bound to every constructor
	// name; installed by library registration.
	ConstructorHelper CompileHelper

	// Dispatchers records the candidate lists behind synthesised pattern-
	// and type-match dispatchers, keyed by dispatcher overload name. The
	// dispatchers themselves are ordinary overloads in the function table;
	// DispatcherOrder preserves synthesis order for deterministic output.
	Dispatchers     map[stringpool.Handle]*DispatchInfo
	DispatcherOrder []stringpool.Handle
}

// NewNamespace creates a namespace with a fresh pool, registry, and empty
// tables.
func NewNamespace() *Namespace {
	pool := stringpool.NewPool()
	ns := &Namespace{
		Strings:          pool,
		Types:            types.NewRegistry(pool),
		Info:             NewCompilerInfoTable(),
		Templates:        NewTemplateTable(),
		ConstructorTypes: make(map[stringpool.Handle]types.TypeID),
		Dispatchers:      make(map[stringpool.Handle]*DispatchInfo),
	}
	ns.Functions = newFunctionTable(ns)
	return ns
}

// MemberAccessName returns the interned name of the synthesised member
// accessor for the given structure type name and member.
func (ns *Namespace) MemberAccessName(structName, member stringpool.Handle) stringpool.Handle {
	return ns.Strings.Pool(".@@" + ns.Strings.MustGet(structName) + "@@" + ns.Strings.MustGet(member))
}

// FindStructureMemberAccessOverload resolves the member accessor for a
// structure type and member name, if the member exists.
func (ns *Namespace) FindStructureMemberAccessOverload(structType types.TypeID, member stringpool.Handle) (stringpool.Handle, bool) {
	def, ok := ns.Types.Structure(structType)
	if !ok || def.FindMember(member) < 0 {
		return stringpool.InvalidHandle, false
	}
	structName, ok := ns.Types.NameOfType(structType)
	if !ok {
		return stringpool.InvalidHandle, false
	}
	name := ns.MemberAccessName(structName, member)
	if !ns.Functions.Exists(name) {
		return stringpool.InvalidHandle, false
	}
	return name, true
}

// RegisterStructureSupport synthesises the constructor signatures and member
// accessors behind a freshly registered structure or template-instance type
// and binds the constructor compile helper.
func (ns *Namespace) RegisterStructureSupport(name stringpool.Handle, id types.TypeID, def *types.StructureDefinition) {
	text := ns.Strings.MustGet(name)

	ctorName := name
	if types.FamilyOf(id) == types.FamilyTemplateInstance {
		ctorName = ns.Strings.Pool(text + "@@constructor")
	}
	anonName := ns.Strings.Pool(text + "@@anonconstructor")

	ctor := types.NewFunctionSignature()
	ctor.AddParameter("identifier", types.Identifier, false)
	anon := types.NewFunctionSignature()
	for i := 0; i < def.NumMembers(); i++ {
		m := def.Member(i)
		memberName := ns.Strings.MustGet(m.Name)
		ctor.AddParameter(memberName, m.Type, false)
		anon.AddParameter(memberName, m.Type, false)

		accessor := types.NewFunctionSignature()
		accessor.AddParameter("self", id, true)
		accessor.SetReturnType(m.Type)
		ns.Functions.RegisterSignature(ns.MemberAccessName(name, m.Name), accessor)
	}
	ctor.SetReturnType(id)
	anon.SetReturnType(id)

	ns.Functions.AddExtern(ctorName, ctorName, ctor)
	ns.Functions.AddExtern(anonName, anonName, anon)
	ns.ConstructorTypes[ctorName] = id
	ns.ConstructorTypes[anonName] = id
	if ns.ConstructorHelper != nil {
		ns.Info.FunctionHelpers[ctorName] = ns.ConstructorHelper
	}
}

// RegisterSumSupport synthesises the constructor signatures behind a
// registered sum type and binds the constructor compile helper.
func (ns *Namespace) RegisterSumSupport(name stringpool.Handle, id types.TypeID) {
	text := ns.Strings.MustGet(name)
	anonName := ns.Strings.Pool(text + "@@anonconstructor")

	ctor := types.NewFunctionSignature()
	ctor.AddParameter("identifier", types.Identifier, false)
	ctor.AddParameter("value", id, false)
	ctor.SetReturnType(id)

	anon := types.NewFunctionSignature()
	anon.AddParameter("value", id, false)
	anon.SetReturnType(id)

	ctorName := name
	if types.FamilyOf(id) == types.FamilyTemplateInstance {
		ctorName = ns.Strings.Pool(text + "@@constructor")
	}
	ns.Functions.AddExtern(ctorName, ctorName, ctor)
	ns.Functions.AddExtern(anonName, anonName, anon)
	ns.ConstructorTypes[ctorName] = id
	ns.ConstructorTypes[anonName] = id
	if ns.ConstructorHelper != nil {
		ns.Info.FunctionHelpers[ctorName] = ns.ConstructorHelper
	}
}

// ConstructorNameOfType returns the canonical constructor overload name for
// a type, used when a return expression names its result type.
func (ns *Namespace) ConstructorNameOfType(id types.TypeID) (stringpool.Handle, bool) {
	for ctor, t := range ns.ConstructorTypes {
		if t == id {
			if name, ok := ns.Types.NameOfType(id); ok && ctor == name {
				return ctor, true
			}
		}
	}
	for ctor, t := range ns.ConstructorTypes {
		if t == id {
			return ctor, true
		}
	}
	return stringpool.InvalidHandle, false
}

// Program owns the namespace and the global scope. Dropping the program
// releases every IR node it transitively owns.
type Program struct {
	Namespace   *Namespace
	GlobalScope *Scope
}

// NewProgram creates an empty program with a fresh namespace and global
// scope.
func NewProgram() *Program {
	return &Program{
		Namespace:   NewNamespace(),
		GlobalScope: NewScope(nil),
	}
}
