package sema

import (
	"testing"

	"github.com/qjcg/cfront/internal/ast"
	"github.com/qjcg/cfront/internal/diag"
	"github.com/qjcg/cfront/internal/token"
	"github.com/stretchr/testify/require"
)

func intLit(v int64) *ast.IntLit { return &ast.IntLit{Value: v} }

func TestFoldIntArithmetic(t *testing.T) {
	c := New(diag.NewBag())
	// 1 << 3 | 1 == 9
	shift := &ast.Binary{Op: token.Shl, X: intLit(1), Y: intLit(3)}
	expr := &ast.Binary{Op: token.Pipe, X: shift, Y: intLit(1)}
	v, ok := c.FoldInt(expr)
	require.True(t, ok)
	require.Equal(t, int64(9), v)
}

func TestFoldIntDivisionByZeroErrors(t *testing.T) {
	d := diag.NewBag()
	c := New(d)
	expr := &ast.Binary{Op: token.Slash, X: intLit(1), Y: intLit(0)}
	_, ok := c.FoldInt(expr)
	require.False(t, ok)
	require.True(t, d.HasErrors())
}

func TestFoldIntTernary(t *testing.T) {
	c := New(diag.NewBag())
	expr := &ast.Cond{Cond: intLit(0), Then: intLit(10), Else: intLit(20)}
	v, ok := c.FoldInt(expr)
	require.True(t, ok)
	require.Equal(t, int64(20), v)
}

func TestFoldIntNonConstantExpressionErrors(t *testing.T) {
	d := diag.NewBag()
	c := New(d)
	_, ok := c.FoldInt(&ast.Ident{Name: "x"})
	require.False(t, ok)
	require.True(t, d.HasErrors())
}
