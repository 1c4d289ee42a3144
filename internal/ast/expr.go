package ast

import (
	"github.com/qjcg/cfront/internal/scope"
	"github.com/qjcg/cfront/internal/token"
)

func (*Ident) exprNode()        {}
func (*IntLit) exprNode()       {}
func (*FloatLit) exprNode()     {}
func (*CharLit) exprNode()      {}
func (*StringLit) exprNode()    {}
func (*Unary) exprNode()        {}
func (*Binary) exprNode()       {}
func (*Assign) exprNode()       {}
func (*Cond) exprNode()         {}
func (*Call) exprNode()         {}
func (*Index) exprNode()        {}
func (*Member) exprNode()       {}
func (*Cast) exprNode()         {}
func (*SizeofExpr) exprNode()   {}
func (*SizeofType) exprNode()   {}
func (*Comma) exprNode()        {}
func (*CompoundLit) exprNode()  {}

// Ident is a name reference; the checker fills ResolvedType from the
// scope binding found at parse time (Binding).
type Ident struct {
	base
	Name    string
	Binding *scope.Ident
}

type IntLit struct {
	base
	Text  string
	Value int64
}

type FloatLit struct {
	base
	Text  string
	Value float64
}

type CharLit struct {
	base
	Text  string
	Value int64
}

type StringLit struct {
	base
	Value string // already unescaped
}

// Unary covers prefix/postfix unary operators; Postfix distinguishes
// i++ from ++i (both use Op Kind Inc/Dec).
type Unary struct {
	base
	Op      token.Kind
	X       Expr
	Postfix bool
}

type Binary struct {
	base
	Op   token.Kind
	X, Y Expr
}

// Assign covers '=' and every compound assignment operator.
type Assign struct {
	base
	Op   token.Kind
	LHS  Expr
	RHS  Expr
}

// Cond is the ternary "?:" operator.
type Cond struct {
	base
	Cond, Then, Else Expr
}

type Call struct {
	base
	Fn   Expr
	Args []Expr
}

type Index struct {
	base
	X, Index Expr
}

// Member covers both "." and "->"; Arrow records which so the checker
// can require X to be pointer-to-struct/union for "->".
type Member struct {
	base
	X     Expr
	Name  string
	Arrow bool
}

type Cast struct {
	base
	TypeName *TypeName
	X        Expr
}

type SizeofExpr struct {
	base
	X Expr
}

type SizeofType struct {
	base
	TypeName *TypeName
}

type Comma struct {
	base
	X, Y Expr
}

// CompoundLit is a C99 compound literal "(T){ initializer-list }"
// (SPEC_FULL.md §4.4.1 supplement).
type CompoundLit struct {
	base
	TypeName *TypeName
	Init     *InitList
}

// TypeName is a standalone type (no declared name) as used by sizeof,
// cast, and compound-literal syntax.
type TypeName struct {
	P         token.Position
	Specifier *DeclSpec
	Abstract  *Declarator // may be nil for a plain specifier like "int"
}

func (t *TypeName) Pos() token.Position { return t.P }
