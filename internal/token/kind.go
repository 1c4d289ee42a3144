package token

// Kind tags a Token. The constant block and its String method follow
// the same texture as cznic/cc's Kind/Linkage/Namespace/Scope families
// (normally produced by `go:generate stringer -type Kind`); written by
// hand here since go generate cannot be run.
type Kind int

const (
	EOF Kind = iota
	Newline

	Ident
	IntLit
	FloatLit
	CharLit
	StringLit

	// Punctuators.
	LParen
	RParen
	LBrack
	RBrack
	LBrace
	RBrace
	Comma
	Semi
	Colon
	QMark
	Dot
	Arrow
	Ellipsis

	Plus
	Minus
	Star
	Slash
	Percent
	Amp
	Pipe
	Caret
	Tilde
	Bang
	Assign
	Lt
	Gt
	Shl
	Shr
	AndAnd
	OrOr
	Eq
	Ne
	Le
	Ge
	Inc
	Dec

	PlusEq
	MinusEq
	StarEq
	SlashEq
	PercentEq
	AmpEq
	PipeEq
	CaretEq
	ShlEq
	ShrEq

	Hash    // '#': a directive introducer at line start, the stringize operator in a replacement list
	HashHash

	// Preprocessing-only.
	PPDirective // '#' followed by a directive name, recognized by the preprocessor

	// Keywords.
	KwAuto
	KwBreak
	KwCase
	KwChar
	KwConst
	KwContinue
	KwDefault
	KwDo
	KwDouble
	KwElse
	KwEnum
	KwExtern
	KwFloat
	KwFor
	KwGoto
	KwIf
	KwInline
	KwInt
	KwLong
	KwRegister
	KwRestrict
	KwReturn
	KwShort
	KwSigned
	KwSizeof
	KwStatic
	KwStruct
	KwSwitch
	KwTypedef
	KwUnion
	KwUnsigned
	KwVoid
	KwVolatile
	KwWhile
	KwBool
	KwComplex
	KwImaginary
	KwAlignof
	KwAtomic
	KwStaticAssert
	KwThreadLocal
	KwNoreturn
	KwGeneric
)

var kindNames = map[Kind]string{
	EOF:        "EOF",
	Newline:    "newline",
	Ident:      "identifier",
	IntLit:     "integer-literal",
	FloatLit:   "floating-literal",
	CharLit:    "character-literal",
	StringLit:  "string-literal",
	LParen:     "(",
	RParen:     ")",
	LBrack:     "[",
	RBrack:     "]",
	LBrace:     "{",
	RBrace:     "}",
	Comma:      ",",
	Semi:       ";",
	Colon:      ":",
	QMark:      "?",
	Dot:        ".",
	Arrow:      "->",
	Ellipsis:   "...",
	Plus:       "+",
	Minus:      "-",
	Star:       "*",
	Slash:      "/",
	Percent:    "%",
	Amp:        "&",
	Pipe:       "|",
	Caret:      "^",
	Tilde:      "~",
	Bang:       "!",
	Assign:     "=",
	Lt:         "<",
	Gt:         ">",
	Shl:        "<<",
	Shr:        ">>",
	AndAnd:     "&&",
	OrOr:       "||",
	Eq:         "==",
	Ne:         "!=",
	Le:         "<=",
	Ge:         ">=",
	Inc:        "++",
	Dec:        "--",
	PlusEq:     "+=",
	MinusEq:    "-=",
	StarEq:     "*=",
	SlashEq:    "/=",
	PercentEq:  "%=",
	AmpEq:      "&=",
	PipeEq:     "|=",
	CaretEq:    "^=",
	ShlEq:      "<<=",
	ShrEq:      ">>=",
	Hash:       "#",
	HashHash:   "##",
	PPDirective: "#-directive",
}

// String implements fmt.Stringer, matching the stringer-generated
// style used throughout cznic/cc for its tagged-constant families.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	if s, ok := keywordSpellings[k]; ok {
		return s
	}
	return "kind(?)"
}

// Keywords maps a spelling to its keyword Kind, consulted by the
// Scanner when it has already recognized an identifier-shaped token.
var Keywords = map[string]Kind{
	"auto": KwAuto, "break": KwBreak, "case": KwCase, "char": KwChar,
	"const": KwConst, "continue": KwContinue, "default": KwDefault,
	"do": KwDo, "double": KwDouble, "else": KwElse, "enum": KwEnum,
	"extern": KwExtern, "float": KwFloat, "for": KwFor, "goto": KwGoto,
	"if": KwIf, "inline": KwInline, "int": KwInt, "long": KwLong,
	"register": KwRegister, "restrict": KwRestrict, "return": KwReturn,
	"short": KwShort, "signed": KwSigned, "sizeof": KwSizeof,
	"static": KwStatic, "struct": KwStruct, "switch": KwSwitch,
	"typedef": KwTypedef, "union": KwUnion, "unsigned": KwUnsigned,
	"void": KwVoid, "volatile": KwVolatile, "while": KwWhile,
	"_Bool": KwBool, "_Complex": KwComplex, "_Imaginary": KwImaginary,
	"_Alignof": KwAlignof, "_Atomic": KwAtomic,
	"_Static_assert": KwStaticAssert, "_Thread_local": KwThreadLocal,
	"_Noreturn": KwNoreturn, "_Generic": KwGeneric,
}

var keywordSpellings = func() map[Kind]string {
	m := make(map[Kind]string, len(Keywords))
	for s, k := range Keywords {
		m[k] = s
	}
	return m
}()

// IsKeyword reports whether k is one of the reserved-word kinds.
func IsKeyword(k Kind) bool {
	_, ok := keywordSpellings[k]
	return ok
}
