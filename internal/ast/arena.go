// Package ast defines the typed syntax tree the Parser builds and the
// Semantic checker annotates in place: expression, statement, and
// declaration node families, all owned by one TranslationUnit arena
// (spec §4.5 "AST nodes are owned by a single TranslationUnit and
// never outlive it").
package ast

import (
	"github.com/qjcg/cfront/internal/scope"
	"github.com/qjcg/cfront/internal/token"
	"github.com/qjcg/cfront/internal/types"
)

// TranslationUnit is the arena and root of one compiled file: every
// Decl, Stmt and Expr node reachable from TopLevel was allocated
// through it, and Scope.New calls it makes are rooted at FileScope.
type TranslationUnit struct {
	FileScope *scope.Scope
	TopLevel  []Decl
}

// NewTranslationUnit creates an empty unit with a fresh file scope.
func NewTranslationUnit() *TranslationUnit {
	return &TranslationUnit{FileScope: scope.New(scope.FileScope, nil)}
}

// Node is implemented by every AST node for position reporting.
type Node interface {
	Pos() token.Position
}

// Expr is implemented by every expression node. Type is filled in by
// the semantic checker; it is nil immediately after parsing. IsLValue
// records spec §3's "is-lvalue flag", set by the checker alongside the
// type whenever the construct's typing rule designates one.
type Expr interface {
	Node
	exprNode()
	ResolvedType() *types.Type
	SetResolvedType(*types.Type)
	IsLValue() bool
	SetLValue(bool)
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Decl is implemented by every top-level or block declaration node.
type Decl interface {
	Node
	declNode()
}

// base carries the fields every node needs, embedded by value so each
// concrete node type gets Pos()/ResolvedType() for free.
type base struct {
	P  token.Position
	T  *types.Type // the checker-assigned type; nil until resolved
	LV bool        // is-lvalue flag (spec §3), meaningful only on Expr nodes
}

func (b *base) Pos() token.Position           { return b.P }
func (b *base) ResolvedType() *types.Type     { return b.T }
func (b *base) SetResolvedType(t *types.Type) { b.T = t }
func (b *base) IsLValue() bool                { return b.LV }
func (b *base) SetLValue(v bool)              { b.LV = v }
