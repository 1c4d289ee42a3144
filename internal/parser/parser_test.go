package parser

import (
	"testing"

	"github.com/qjcg/cfront/internal/ast"
	"github.com/qjcg/cfront/internal/cpp"
	"github.com/qjcg/cfront/internal/diag"
	"github.com/qjcg/cfront/internal/lexer"
	"github.com/qjcg/cfront/internal/types"
	"github.com/stretchr/testify/require"
)

func parseSource(t *testing.T, src string) (*ast.TranslationUnit, *diag.Bag) {
	t.Helper()
	d := diag.NewBag()
	prep := cpp.New(d, nil, nil, lexer.Options{})
	prep.PushSource("<test>", src)
	tu := New(prep, d).ParseTranslationUnit()
	return tu, d
}

func TestDeclaratorArrayOfPointers(t *testing.T) {
	tu, d := parseSource(t, "int *a[3];\n")
	require.False(t, d.HasErrors(), "%v", d.Items())
	require.Len(t, tu.TopLevel, 1)
	v := tu.TopLevel[0].(*ast.VarDecl)
	require.Equal(t, "a", v.Name)
	require.Equal(t, types.Array, v.Binding.Type.Kind)
	require.Equal(t, 3, v.Binding.Type.ArrayLen)
	require.Equal(t, types.Pointer, v.Binding.Type.Base.Kind)
	require.Equal(t, types.Int, v.Binding.Type.Base.Base.Kind)
}

func TestDeclaratorPointerToArray(t *testing.T) {
	tu, d := parseSource(t, "int (*a)[3];\n")
	require.False(t, d.HasErrors(), "%v", d.Items())
	v := tu.TopLevel[0].(*ast.VarDecl)
	require.Equal(t, types.Pointer, v.Binding.Type.Kind)
	require.Equal(t, types.Array, v.Binding.Type.Base.Kind)
	require.Equal(t, 3, v.Binding.Type.Base.ArrayLen)
	require.Equal(t, types.Int, v.Binding.Type.Base.Base.Kind)
}

func TestDeclaratorFunctionPointer(t *testing.T) {
	tu, d := parseSource(t, "int (*fp)(int, int);\n")
	require.False(t, d.HasErrors(), "%v", d.Items())
	v := tu.TopLevel[0].(*ast.VarDecl)
	require.Equal(t, types.Pointer, v.Binding.Type.Kind)
	fn := v.Binding.Type.Base
	require.Equal(t, types.Function, fn.Kind)
	require.Len(t, fn.Params, 2)
	require.Equal(t, types.Int, fn.Returns.Kind)
}

func TestFunctionDefinitionWithLocalsAndReturn(t *testing.T) {
	src := "int add(int a, int b) { int c = a + b; return c; }\n"
	tu, d := parseSource(t, src)
	require.False(t, d.HasErrors(), "%v", d.Items())
	require.Len(t, tu.TopLevel, 1)
	fn := tu.TopLevel[0].(*ast.FuncDecl)
	require.Equal(t, "add", fn.Name)
	require.Equal(t, []string{"a", "b"}, fn.ParamNames)
	require.NotNil(t, fn.Body)
	require.Len(t, fn.Body.Items, 2)
}

func TestGotoResolvesForwardLabel(t *testing.T) {
	src := "void f(void) { goto done; done: ; }\n"
	_, d := parseSource(t, src)
	require.False(t, d.HasErrors(), "%v", d.Items())
}

func TestUndefinedGotoLabelErrors(t *testing.T) {
	src := "void f(void) { goto nowhere; }\n"
	_, d := parseSource(t, src)
	require.True(t, d.HasErrors())
}

func TestBreakOutsideLoopOrSwitchErrors(t *testing.T) {
	_, d := parseSource(t, "void f(void) { break; }\n")
	require.True(t, d.HasErrors())
}

func TestDuplicateCaseValueErrors(t *testing.T) {
	src := "void f(int x) { switch (x) { case 1: break; case 1: break; } }\n"
	_, d := parseSource(t, src)
	require.True(t, d.HasErrors())
}

func TestTypedefNameUsedAsDeclSpec(t *testing.T) {
	src := "typedef int myint; myint x = 5;\n"
	tu, d := parseSource(t, src)
	require.False(t, d.HasErrors(), "%v", d.Items())
	require.Len(t, tu.TopLevel, 2)
	v := tu.TopLevel[1].(*ast.VarDecl)
	require.Equal(t, types.Int, v.Spec.Type.Kind)
}

func TestBinaryPrecedence(t *testing.T) {
	src := "int x = 1 + 2 * 3;\n"
	tu, d := parseSource(t, src)
	require.False(t, d.HasErrors(), "%v", d.Items())
	v := tu.TopLevel[0].(*ast.VarDecl)
	add, ok := v.Init.(*ast.Binary)
	require.True(t, ok)
	require.Equal(t, int64(1), add.X.(*ast.IntLit).Value) // wrong shape is a strong signal precedence broke
	mul, mulOnRHS := add.Y.(*ast.Binary)
	require.True(t, mulOnRHS, "2*3 should be one Binary node on the RHS of +")
	require.Equal(t, int64(2), mul.X.(*ast.IntLit).Value)
}

func TestStructWithBitfieldsLaysOutMembers(t *testing.T) {
	src := "struct flags { unsigned a : 3; unsigned b : 5; };\n"
	tu, d := parseSource(t, src)
	require.False(t, d.HasErrors(), "%v", d.Items())
	tag := tu.TopLevel[0].(*ast.TagDecl)
	require.True(t, tag.Type.Complete)
	fa, ok := tag.Type.FieldByName("a")
	require.True(t, ok)
	require.True(t, fa.IsBitfield)
}

func TestEnumConstantFolding(t *testing.T) {
	src := "enum { A = 1 << 3, B = A + 1 };\n"
	_, d := parseSource(t, src)
	require.False(t, d.HasErrors(), "%v", d.Items())
}

func TestAssignmentTypeMismatchErrors(t *testing.T) {
	src := "struct s { int x; }; void f(void) { struct s a; struct s *p; a = p; }\n"
	_, d := parseSource(t, src)
	require.True(t, d.HasErrors())
}

func TestCastAndCompoundLiteral(t *testing.T) {
	src := "struct p { int x, y; }; int f(void) { struct p q = (struct p){1, 2}; return (int)q.x; }\n"
	_, d := parseSource(t, src)
	require.False(t, d.HasErrors(), "%v", d.Items())
}
