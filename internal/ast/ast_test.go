package ast

import (
	"testing"

	"github.com/qjcg/cfront/internal/types"
	"github.com/stretchr/testify/require"
)

func TestTranslationUnitOwnsFileScope(t *testing.T) {
	tu := NewTranslationUnit()
	require.NotNil(t, tu.FileScope)

	decl := &VarDecl{Name: "x", Spec: &DeclSpec{Type: types.Basic(types.Int)}}
	tu.TopLevel = append(tu.TopLevel, decl)
	require.Len(t, tu.TopLevel, 1)

	var x Expr = &IntLit{Text: "1", Value: 1}
	require.Nil(t, x.ResolvedType())
	x.SetResolvedType(types.Basic(types.Int))
	require.Equal(t, types.Basic(types.Int), x.ResolvedType())
}
