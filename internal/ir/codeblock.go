package ir

import "github.com/cwbudde/go-epoch/internal/stringpool"

// CodeBlockEntry is the closed sum of constructs a code block may contain.
type CodeBlockEntry interface {
	codeBlockEntry()
}

func (*Statement) codeBlockEntry()      {}
func (*Assignment) codeBlockEntry()     {}
func (*PreOpStatement) codeBlockEntry() {}
func (*PostOpStatement) codeBlockEntry() {}
func (*Entity) codeBlockEntry()         {}
func (*CodeBlock) codeBlockEntry()      {}

// CodeBlock is an ordered sequence of entries over a lexical scope. A block
// normally owns its scope; a block made with BorrowScope shares an existing
// one instead.
type CodeBlock struct {
	Scope     *Scope
	OwnsScope bool
	Entries   []CodeBlockEntry
}

// NewCodeBlock creates a block owning a fresh scope nested in parent.
func NewCodeBlock(parent *Scope) *CodeBlock {
	return &CodeBlock{Scope: NewScope(parent), OwnsScope: true}
}

// BorrowScope creates a block borrowing an existing scope.
func BorrowScope(scope *Scope) *CodeBlock {
	return &CodeBlock{Scope: scope, OwnsScope: false}
}

// AddEntry appends an entry to the block.
func (b *CodeBlock) AddEntry(entry CodeBlockEntry) {
	b.Entries = append(b.Entries, entry)
}

// Clone produces a deep copy of the block and its owned scope. Cached
// inference results are reset throughout.
func (b *CodeBlock) Clone() *CodeBlock {
	clone := &CodeBlock{OwnsScope: b.OwnsScope}
	if b.OwnsScope {
		clone.Scope = b.Scope.Clone()
	} else {
		clone.Scope = b.Scope
	}
	for _, entry := range b.Entries {
		switch e := entry.(type) {
		case *Statement:
			clone.Entries = append(clone.Entries, e.Clone())
		case *Assignment:
			clone.Entries = append(clone.Entries, e.Clone())
		case *PreOpStatement:
			clone.Entries = append(clone.Entries, e.Clone())
		case *PostOpStatement:
			clone.Entries = append(clone.Entries, e.Clone())
		case *Entity:
			clone.Entries = append(clone.Entries, e.Clone(clone.Scope))
		case *CodeBlock:
			nested := e.Clone()
			if nested.OwnsScope {
				nested.Scope.Parent = clone.Scope
			}
			clone.Entries = append(clone.Entries, nested)
		}
	}
	return clone
}

// Entity is a control-flow construct recognised by its tag: a conditional,
// loop, or other library-registered entity, with optional chained entities
// and an optional postfix closer.
type Entity struct {
	Name       stringpool.Handle
	Anchor     int
	Parameters []*Expression
	Code       *CodeBlock

	Chain []*Entity

	PostfixName       stringpool.Handle
	PostfixParameters []*Expression
}

// Clone produces a deep copy of the entity rooted under the given parent
// scope.
func (e *Entity) Clone(parent *Scope) *Entity {
	clone := &Entity{
		Name:        e.Name,
		Anchor:      e.Anchor,
		PostfixName: e.PostfixName,
	}
	for _, p := range e.Parameters {
		clone.Parameters = append(clone.Parameters, p.Clone())
	}
	for _, p := range e.PostfixParameters {
		clone.PostfixParameters = append(clone.PostfixParameters, p.Clone())
	}
	if e.Code != nil {
		clone.Code = e.Code.Clone()
		if clone.Code.OwnsScope {
			clone.Code.Scope.Parent = parent
		}
	}
	for _, chained := range e.Chain {
		clone.Chain = append(clone.Chain, chained.Clone(parent))
	}
	return clone
}
