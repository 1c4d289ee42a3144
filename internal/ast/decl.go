package ast

import (
	"github.com/qjcg/cfront/internal/scope"
	"github.com/qjcg/cfront/internal/token"
	"github.com/qjcg/cfront/internal/types"
)

func (*VarDecl) declNode()   {}
func (*FuncDecl) declNode()  {}
func (*TypedefDecl) declNode() {}
func (*TagDecl) declNode()   {}
func (*EmptyDecl) declNode() {}

// DeclSpec is the parsed declaration-specifier list shared by every
// declarator in one declaration ("static const int a, *b;" parses one
// DeclSpec and two Declarators).
type DeclSpec struct {
	P       token.Position
	Storage scope.StorageClass
	Type    *types.Type
	Inline  bool
	Noreturn bool
}

func (d *DeclSpec) Pos() token.Position { return d.P }

// Declarator is the parsed shape wrapped around a declared name: the
// pointer/array/function layers built up by the parser's modify_base
// composition, already folded into a concrete *types.Type by the time
// parsing of one declarator finishes.
type Declarator struct {
	P    token.Position
	Name string // empty for an abstract declarator (sizeof/cast/param)
	Type *types.Type
}

func (d *Declarator) Pos() token.Position { return d.P }

// VarDecl is an object declaration, possibly with an initializer.
type VarDecl struct {
	base
	Spec  *DeclSpec
	Name  string
	Init  Expr     // scalar initializer, or nil
	InitList *InitList // aggregate initializer, mutually exclusive with Init
	Binding *scope.Ident
}

// FuncDecl is a function declaration or definition; Body is nil for a
// declaration-only form.
type FuncDecl struct {
	base
	Spec       *DeclSpec
	Name       string
	ParamNames []string
	Body       *Block
	Binding    *scope.Ident
	Labels     map[string]*scope.Label
}

// TypedefDecl installs Name as a typedef for Type in the enclosing
// scope (spec §4.4: "typedef introduces a new type name binding").
type TypedefDecl struct {
	base
	Name string
	Type *types.Type
}

// TagDecl is a standalone "struct S { ... };" / "enum E { ... };" with
// no declarator, used only to introduce or complete a tag.
type TagDecl struct {
	base
	Type *types.Type
}

// EmptyDecl is a bare ";" at file or block scope.
type EmptyDecl struct {
	base
}

// InitList is a brace-enclosed initializer, already flattened with
// any designators resolved to a concrete member/element path (spec
// §4.4: "designated initializers are flattened at parse time").
type InitList struct {
	P     token.Position
	Items []InitItem
}

func (l *InitList) Pos() token.Position { return l.P }

// InitItem is one flattened initializer element: Path names the
// member-index route from the aggregate's root (e.g. [0, 1] for the
// second member of the first element), and exactly one of Value or
// Nested is set.
type InitItem struct {
	Path   []int
	Value  Expr
	Nested *InitList
}
