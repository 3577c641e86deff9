// Package ast defines the abstract parse tree handed to the semantic core by
// the parser. The parser guarantees well-formed nesting of these node kinds;
// the semantic core treats any violation as a fatal internal error rather
// than a user-facing diagnostic.
//
// Identifier leaves carry raw token text: literals are not classified by the
// parser. Lowering distinguishes quoted strings, true/false, hexadecimal and
// decimal integers, and floating-point forms from plain identifiers.
package ast

// Node is the base interface for all parse-tree nodes.
type Node interface {
	// Pos returns the byte offset of the node within the original source
	// buffer, used to anchor diagnostics.
	Pos() int
}

// Identifier is a raw token leaf: an identifier, operator name, or literal.
type Identifier struct {
	Value string
	Begin int
	End   int
}

func (i *Identifier) Pos() int { return i.Begin }

// Undefined marks an intentionally absent subtree. It is permitted in exactly
// six positions: an empty program, a void return expression, an empty tag
// specifier, an omitted function body, an omitted reference tag, and an
// omitted template parameter list. Anywhere else it is a parser contract
// violation.
type Undefined struct {
	Begin int
}

func (u *Undefined) Pos() int { return u.Begin }

// Program is the root of a parse tree.
type Program struct {
	Definitions []Node
}

func (p *Program) Pos() int {
	if len(p.Definitions) > 0 {
		return p.Definitions[0].Pos()
	}
	return 0
}

// Structure declares a named structure with ordered members.
type Structure struct {
	Name           Identifier
	Members        []Node // *StructureMemberVariable | *StructureMemberFunctionRef
	TemplateParams []*TemplateParameter
}

func (s *Structure) Pos() int { return s.Name.Begin }

// StructureMemberVariable is a plain data member.
type StructureMemberVariable struct {
	TypeName     Identifier
	Name         Identifier
	TemplateArgs *TemplateArgs
}

func (m *StructureMemberVariable) Pos() int { return m.TypeName.Begin }

// StructureMemberFunctionRef is a member holding a reference to a function of
// the declared signature.
type StructureMemberFunctionRef struct {
	Name       Identifier
	ParamTypes []Identifier
	ReturnType *Identifier // nil for void
}

func (m *StructureMemberFunctionRef) Pos() int { return m.Name.Begin }

// Function declares a function: parameters, an optional return expression,
// an optional body, tags, and template parameters.
type Function struct {
	Name           Identifier
	Params         []Node // *NamedFunctionParameter | *FunctionReferenceSignature | *NothingParameter | *ExpressionParameter
	Return         Node   // *Expression | *Undefined (void)
	Code           Node   // *CodeBlock | *Undefined (declaration only)
	Tags           []*FunctionTag
	TemplateParams []*TemplateParameter
}

func (f *Function) Pos() int { return f.Name.Begin }

// NamedFunctionParameter is a typed, named formal parameter.
type NamedFunctionParameter struct {
	TypeName     Identifier
	Name         Identifier
	RefTag       *RefTag // nil when passed by value
	TemplateArgs *TemplateArgs
}

func (p *NamedFunctionParameter) Pos() int { return p.TypeName.Begin }

// FunctionReferenceSignature is a higher-order parameter: a named slot
// accepting any function of the given signature.
type FunctionReferenceSignature struct {
	Name       Identifier
	ParamTypes []Identifier
	ReturnType *Identifier // nil for void
}

func (p *FunctionReferenceSignature) Pos() int { return p.Name.Begin }

// NothingParameter is a formal parameter of the unit type "nothing".
type NothingParameter struct {
	Begin int
}

func (p *NothingParameter) Pos() int { return p.Begin }

// ExpressionParameter is a pattern-matched formal parameter: a literal the
// argument must equal for the overload to apply.
type ExpressionParameter struct {
	Expr *Expression
}

func (p *ExpressionParameter) Pos() int { return p.Expr.Pos() }

// RefTag marks a parameter as passed by reference.
type RefTag struct {
	Begin int
}

func (r *RefTag) Pos() int { return r.Begin }

// FunctionTag attaches library-defined metadata to a function, such as
// external linkage.
type FunctionTag struct {
	Name   Identifier
	Params []Identifier
}

func (t *FunctionTag) Pos() int { return t.Name.Begin }

// TemplateParameter declares one template parameter. The only supported
// meta-type is "type".
type TemplateParameter struct {
	MetaType Identifier
	Name     Identifier
}

func (t *TemplateParameter) Pos() int { return t.MetaType.Begin }

// TemplateArgs is an ordered template argument list attached to a type name
// use.
type TemplateArgs struct {
	Args []Identifier
}

func (t *TemplateArgs) Pos() int {
	if len(t.Args) > 0 {
		return t.Args[0].Begin
	}
	return 0
}

// TypeAlias declares a weak alias: a transparent synonym for another type
// name.
type TypeAlias struct {
	Name    Identifier
	RepName Identifier
}

func (a *TypeAlias) Pos() int { return a.Name.Begin }

// StrongTypeAlias declares a unit type: a new nominal type sharing the
// representation of an existing one.
type StrongTypeAlias struct {
	Name    Identifier
	RepName Identifier
}

func (a *StrongTypeAlias) Pos() int { return a.Name.Begin }

// SumType declares a tagged union over the listed base type names.
type SumType struct {
	Name           Identifier
	Bases          []Identifier
	BaseArgs       []*TemplateArgs // parallel to Bases; nil entries for plain names
	TemplateParams []*TemplateParameter
}

func (s *SumType) Pos() int { return s.Name.Begin }

// CodeBlock is an ordered sequence of statements, assignments, entities, and
// nested blocks.
type CodeBlock struct {
	Begin   int
	Entries []Node // *Statement | *Assignment | *Initialization | *PreOperatorStatement | *PostOperatorStatement | *Entity | *CodeBlock
}

func (b *CodeBlock) Pos() int { return b.Begin }

// Entity is a control-flow construct recognised by tag: a conditional, a
// loop, or any library-registered entity. Chained entities attach to the
// preceding entity (else-if chains); a postfix entity closes with a trailing
// identifier (do/while forms).
type Entity struct {
	Name    Identifier
	Params  []*Expression
	Code    *CodeBlock
	Chain   []*ChainedEntity
	Postfix *PostfixEntityTail
}

func (e *Entity) Pos() int { return e.Name.Begin }

// ChainedEntity continues an entity chain.
type ChainedEntity struct {
	Name   Identifier
	Params []*Expression
	Code   *CodeBlock
}

func (e *ChainedEntity) Pos() int { return e.Name.Begin }

// PostfixEntityTail is the closing identifier and parameters of a postfix
// entity.
type PostfixEntityTail struct {
	Name   Identifier
	Params []*Expression
}

func (e *PostfixEntityTail) Pos() int { return e.Name.Begin }

// Assignment assigns the RHS to an l-value path. The RHS of a chain is
// another Assignment; the right-most RHS is an Expression.
type Assignment struct {
	LHS      []Identifier
	Operator Identifier
	RHS      Node // *Expression | *Assignment
}

func (a *Assignment) Pos() int { return a.LHS[0].Begin }

// Initialization declares and constructs a variable in one step.
type Initialization struct {
	TypeName     Identifier
	Name         Identifier
	Params       []*Expression
	TemplateArgs *TemplateArgs
}

func (i *Initialization) Pos() int { return i.TypeName.Begin }

// Statement is a function invocation.
type Statement struct {
	Name         Identifier
	Params       []*Expression
	TemplateArgs *TemplateArgs
}

func (s *Statement) Pos() int { return s.Name.Begin }

// PreOperatorStatement applies a pre-operator to an l-value path (++x).
type PreOperatorStatement struct {
	Operator Identifier
	Operand  []Identifier
}

func (s *PreOperatorStatement) Pos() int { return s.Operator.Begin }

// PostOperatorStatement applies a post-operator to an l-value path (x++).
type PostOperatorStatement struct {
	Operand  []Identifier
	Operator Identifier
}

func (s *PostOperatorStatement) Pos() int { return s.Operand[0].Begin }

// Expression is a flat component/fragment sequence; operator precedence is
// resolved during semantic analysis, not in the parse tree.
type Expression struct {
	First     *ExpressionComponent
	Fragments []*ExpressionFragment
}

func (e *Expression) Pos() int { return e.First.Pos() }

// ExpressionComponent is one operand with optional unary prefixes.
type ExpressionComponent struct {
	UnaryPrefixes []Identifier
	Atom          Node // *Identifier | *Statement | *Parenthetical
}

func (c *ExpressionComponent) Pos() int {
	if len(c.UnaryPrefixes) > 0 {
		return c.UnaryPrefixes[0].Begin
	}
	return c.Atom.Pos()
}

// ExpressionFragment is an infix operator followed by its right operand.
type ExpressionFragment struct {
	Operator  Identifier
	Component *ExpressionComponent
}

func (f *ExpressionFragment) Pos() int { return f.Operator.Begin }

// Parenthetical wraps a parenthesised expression, pre-op, or post-op.
type Parenthetical struct {
	Begin int
	Inner Node // *Expression | *PreOperatorStatement | *PostOperatorStatement
}

func (p *Parenthetical) Pos() int { return p.Begin }
