package cpp

import (
	"testing"

	"github.com/qjcg/cfront/internal/diag"
	"github.com/qjcg/cfront/internal/lexer"
	"github.com/qjcg/cfront/internal/token"
	"github.com/stretchr/testify/require"
)

func expandAll(t *testing.T, src string) []token.Token {
	t.Helper()
	d := diag.NewBag()
	d.PanicOnError = false
	p := New(d, nil, nil, lexer.Options{})
	p.PushSource("<test>", src)
	var out []token.Token
	for {
		tok := p.Next()
		if tok.Kind == token.EOF {
			break
		}
		out = append(out, tok)
	}
	require.False(t, d.HasErrors(), "unexpected diagnostics: %v", d.Items())
	return out
}

func lexemes(toks []token.Token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Lexeme
	}
	return out
}

// Rescan-with-argument-reexpansion: "#define F(x) x+x" / "F(F(1))"
// must expand to "1 + 1 + 1 + 1", exercising the fully-expanded
// substitution of a bare parameter before the outer replacement list
// is itself rescanned.
func TestFunctionLikeArgumentReexpansion(t *testing.T) {
	src := "#define F(x) x+x\nF(F(1))\n"
	toks := expandAll(t, src)
	require.Equal(t, []string{"1", "+", "1", "+", "1", "+", "1"}, lexemes(toks))
}

// Mutual object-like recursion: "#define A B" / "#define B A" / "A"
// must terminate with the token "A" rather than looping forever,
// because A's hide set (once A has been substituted for itself) blocks
// further substitution of A on rescan.
func TestMutualRecursionTerminates(t *testing.T) {
	src := "#define A B\n#define B A\nA\n"
	toks := expandAll(t, src)
	require.Len(t, toks, 1)
	require.Equal(t, "A", toks[0].Lexeme)
	require.True(t, toks[0].Hide.Has("A"))
	require.True(t, toks[0].Hide.Has("B"))
}

func TestObjectLikeMacroExpansion(t *testing.T) {
	toks := expandAll(t, "#define PI 3\nPI + PI\n")
	require.Equal(t, []string{"3", "+", "3"}, lexemes(toks))
}

func TestStringizeOperator(t *testing.T) {
	toks := expandAll(t, "#define STR(x) #x\nSTR(hello world)\n")
	require.Len(t, toks, 1)
	require.Equal(t, token.StringLit, toks[0].Kind)
	require.Equal(t, `"hello world"`, toks[0].Lexeme)
}

func TestPasteOperator(t *testing.T) {
	toks := expandAll(t, "#define CAT(a, b) a ## b\nCAT(foo, bar)\n")
	require.Len(t, toks, 1)
	require.Equal(t, "foobar", toks[0].Lexeme)
	require.Equal(t, token.Ident, toks[0].Kind)
}

func TestVariadicMacro(t *testing.T) {
	toks := expandAll(t, "#define LOG(fmt, ...) fmt, __VA_ARGS__\nLOG(\"x\", 1, 2)\n")
	require.Equal(t, []string{`"x"`, ",", "1", ",", "2"}, lexemes(toks))
}

func TestFunctionLikeMacroNotInvokedWithoutParen(t *testing.T) {
	toks := expandAll(t, "#define F(x) x+1\nF\n")
	require.Equal(t, []string{"F"}, lexemes(toks))
}

func TestIfdefBranchSelection(t *testing.T) {
	src := "#define FOO\n#ifdef FOO\nyes\n#else\nno\n#endif\n"
	toks := expandAll(t, src)
	require.Equal(t, []string{"yes"}, lexemes(toks))
}

func TestIfConstantExpression(t *testing.T) {
	src := "#if 1 + 1 == 2\nok\n#endif\n"
	toks := expandAll(t, src)
	require.Equal(t, []string{"ok"}, lexemes(toks))
}

func TestIfElifElseChain(t *testing.T) {
	src := "#if 0\na\n#elif 0\nb\n#elif 1\nc\n#else\nd\n#endif\n"
	toks := expandAll(t, src)
	require.Equal(t, []string{"c"}, lexemes(toks))
}

func TestDefinedOperator(t *testing.T) {
	src := "#define HAVE_FOO\n#if defined(HAVE_FOO) && !defined(HAVE_BAR)\nyes\n#endif\n"
	toks := expandAll(t, src)
	require.Equal(t, []string{"yes"}, lexemes(toks))
}

func TestUndef(t *testing.T) {
	src := "#define X 1\n#undef X\n#ifdef X\nwrong\n#else\nright\n#endif\n"
	toks := expandAll(t, src)
	require.Equal(t, []string{"right"}, lexemes(toks))
}

func TestRedefinitionWithIdenticalBodyIsSilent(t *testing.T) {
	d := diag.NewBag()
	p := New(d, nil, nil, lexer.Options{})
	p.PushSource("<test>", "#define X 1\n#define X 1\nX\n")
	var got []string
	for {
		tok := p.Next()
		if tok.Kind == token.EOF {
			break
		}
		got = append(got, tok.Lexeme)
	}
	require.False(t, d.HasErrors())
	require.Equal(t, []string{"1"}, got)
}

func TestRedefinitionWithDifferentBodyErrors(t *testing.T) {
	d := diag.NewBag()
	p := New(d, nil, nil, lexer.Options{})
	p.PushSource("<test>", "#define X 1\n#define X 2\n")
	for {
		tok := p.Next()
		if tok.Kind == token.EOF {
			break
		}
	}
	require.True(t, d.HasErrors())
}
