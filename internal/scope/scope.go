// Package scope implements the Scope component (spec §4.4): a tree of
// nested scopes that resolves identifiers, distinguishes typedef
// names from ordinary identifiers for the parser's context-sensitive
// grammar, and tracks the separate tag namespace struct/union/enum
// names live in.
package scope

import "github.com/qjcg/cfront/internal/types"

// Kind classifies a Scope the way spec §4.4 requires: file scope sees
// every top-level declaration; function-prototype scope is the
// parameter list of a declaration that is not a definition; block
// scope is a compound statement; function scope holds only labels.
type Kind int

const (
	FileScope Kind = iota
	PrototypeScope
	BlockScope
	FunctionScope
)

func (k Kind) String() string {
	switch k {
	case FileScope:
		return "file"
	case PrototypeScope:
		return "prototype"
	case BlockScope:
		return "block"
	case FunctionScope:
		return "function"
	}
	return "scope(?)"
}

// StorageClass records the storage-class specifier attached to an
// identifier's declaration, needed to resolve linkage (spec §4.4's
// "declarations combine to determine linkage").
type StorageClass int

const (
	NoStorageClass StorageClass = iota
	Typedef
	Extern
	Static
	Auto
	Register
)

// Linkage is the identifier's linkage per C99 6.2.2.
type Linkage int

const (
	NoLinkage Linkage = iota
	InternalLinkage
	ExternalLinkage
)

// Ident is one ordinary-namespace binding: a variable, function,
// enumeration constant, or typedef name.
type Ident struct {
	Name    string
	Type    *types.Type
	Storage StorageClass
	Linkage Linkage

	IsTypedef bool
	IsEnumConst bool
	EnumValue   int64

	// Defined distinguishes a tentative/forward declaration from one
	// that has a function body or initializer, needed to diagnose
	// "redefinition" versus an allowed repeated extern declaration.
	Defined bool
}

// Tag is a struct/union/enum tag-namespace binding.
type Tag struct {
	Name string
	Type *types.Type
}

// Label is a function-scope goto target.
type Label struct {
	Name    string
	Defined bool
}

// Scope is one node of the nested scope tree.
type Scope struct {
	Kind   Kind
	Parent *Scope

	idents map[string]*Ident
	tags   map[string]*Tag
	labels map[string]*Label // only meaningful at FunctionScope
}

// New creates a child scope of parent (nil for the translation unit's
// top-level file scope).
func New(kind Kind, parent *Scope) *Scope {
	return &Scope{
		Kind:   kind,
		Parent: parent,
		idents: make(map[string]*Ident),
		tags:   make(map[string]*Tag),
	}
}

// Declare binds name in this scope's ordinary namespace, reporting
// false if name is already bound in this same scope (a redeclaration
// in an enclosing scope is legal shadowing, not an error here; the
// caller's compatibility check against an existing binding in the
// same scope is spec §4.4's job, not this method's).
func (s *Scope) Declare(id *Ident) (ok bool, existing *Ident) {
	if prev, found := s.idents[id.Name]; found {
		return false, prev
	}
	s.idents[id.Name] = id
	return true, nil
}

// Replace overwrites an existing same-scope binding, used when a
// tentative declaration is completed by a later compatible one.
func (s *Scope) Replace(id *Ident) {
	s.idents[id.Name] = id
}

// LookupLocal returns the binding made directly in this scope, not
// consulting parents.
func (s *Scope) LookupLocal(name string) (*Ident, bool) {
	id, ok := s.idents[name]
	return id, ok
}

// Lookup walks outward from s to the file scope, returning the
// nearest binding, per spec §4.4's ordinary lexical scoping rule.
func (s *Scope) Lookup(name string) (*Ident, *Scope, bool) {
	for cur := s; cur != nil; cur = cur.Parent {
		if id, ok := cur.idents[name]; ok {
			return id, cur, true
		}
	}
	return nil, nil, false
}

// IsTypedefName reports whether name currently resolves to a typedef,
// the single predicate the parser's lexer-hack (spec §4.4: distinguish
// typedef names from identifiers in declaration contexts) is built on.
func (s *Scope) IsTypedefName(name string) bool {
	id, _, ok := s.Lookup(name)
	return ok && id.IsTypedef
}

// DeclareTag binds a struct/union/enum tag in this scope's tag
// namespace (spec §4.4: "tags live in a namespace separate from
// ordinary identifiers").
func (s *Scope) DeclareTag(tag *Tag) {
	s.tags[tag.Name] = tag
}

func (s *Scope) LookupTagLocal(name string) (*Tag, bool) {
	t, ok := s.tags[name]
	return t, ok
}

func (s *Scope) LookupTag(name string) (*Tag, bool) {
	for cur := s; cur != nil; cur = cur.Parent {
		if t, ok := cur.tags[name]; ok {
			return t, ok
		}
	}
	return nil, false
}

// FunctionScopeOf walks outward to find the nearest FunctionScope,
// where goto labels live regardless of how many blocks a goto or
// label is nested inside (C99 6.2.1p4: labels have function scope).
func (s *Scope) FunctionScopeOf() *Scope {
	for cur := s; cur != nil; cur = cur.Parent {
		if cur.Kind == FunctionScope {
			return cur
		}
	}
	return nil
}

func (s *Scope) DeclareLabel(name string) *Label {
	if s.labels == nil {
		s.labels = make(map[string]*Label)
	}
	if l, ok := s.labels[name]; ok {
		return l
	}
	l := &Label{Name: name}
	s.labels[name] = l
	return l
}

func (s *Scope) LookupLabel(name string) (*Label, bool) {
	if s.labels == nil {
		return nil, false
	}
	l, ok := s.labels[name]
	return l, ok
}

// Labels returns every label declared in this function scope; the
// parser stores it in FuncDecl.Labels. A goto whose target was never
// defined is diagnosed through LookupLabel.
func (s *Scope) Labels() map[string]*Label { return s.labels }
