package types

import (
	"fmt"
	"io"
	"strings"

	"github.com/cznic/strutil"
)

// Kind tags a Type the way token.Kind tags a Token: a flat enum, with
// a String method for diagnostics.
type Kind int

const (
	Void Kind = iota
	Bool
	Char
	SChar
	UChar
	Short
	UShort
	Int
	UInt
	Long
	ULong
	LongLong
	ULongLong
	Float
	Double
	LongDouble
	Pointer
	Array
	Struct
	Union
	Enum
	Function
)

func (k Kind) String() string {
	switch k {
	case Void:
		return "void"
	case Bool:
		return "_Bool"
	case Char:
		return "char"
	case SChar:
		return "signed char"
	case UChar:
		return "unsigned char"
	case Short:
		return "short"
	case UShort:
		return "unsigned short"
	case Int:
		return "int"
	case UInt:
		return "unsigned int"
	case Long:
		return "long"
	case ULong:
		return "unsigned long"
	case LongLong:
		return "long long"
	case ULongLong:
		return "unsigned long long"
	case Float:
		return "float"
	case Double:
		return "double"
	case LongDouble:
		return "long double"
	case Pointer:
		return "pointer"
	case Array:
		return "array"
	case Struct:
		return "struct"
	case Union:
		return "union"
	case Enum:
		return "enum"
	case Function:
		return "function"
	}
	return "type(?)"
}

// Field is one struct/union member, with its byte offset and, for
// bit-fields, its bit offset within the storage unit and width.
type Field struct {
	Name       string
	Type       *Type
	Offset     int // byte offset from the start of the struct/union
	IsBitfield bool
	BitOffset  int // bit offset within the storage unit at Offset
	BitWidth   int
}

// Type is the single representation used for every C type: arithmetic
// types are interned singletons (spec §4.5 "process-wide interned
// arithmetic types"), derived types (pointer/array/function) and
// aggregate types (struct/union/enum) are allocated per declaration
// and owned by the TranslationUnit that created them.
type Type struct {
	Kind Kind

	// Qualifiers, independent of Kind.
	Const    bool
	Volatile bool
	Restrict bool

	Size  int // bytes, 0 for an incomplete type
	Align int

	// Pointer/Array: Base is the pointee/element type.
	Base *Type

	// Array only: -1 means an incomplete ("flexible"/unsized) array.
	ArrayLen int

	// Struct/Union/Enum.
	Tag      string
	Fields   []*Field   // struct/union members, in declaration order
	Complete bool        // false until the closing '}' of the definition
	EnumBase *Type       // Enum only: the compatible integer type (int, by this implementation's choice)
	Enumerators []EnumConst

	// Function.
	Params     []*Type
	ParamNames []string
	Variadic   bool
	Returns    *Type

	// ArrayParamStatic/ArrayParamQualified record the C99
	// "array[static N]" and "array[const]" parameter-declarator forms
	// (spec SPEC_FULL.md §4.4.1 supplement): meaningless to this front
	// end's checks beyond being recorded for a future codegen/analysis
	// consumer, but the parser must preserve them rather than discard.
	ArrayParamStatic    bool
	ArrayParamQualified bool
}

// EnumConst is one enumerator's name and constant-folded value.
type EnumConst struct {
	Name  string
	Value int64
}

// interned holds the one process-wide instance of every unqualified
// arithmetic and void type (spec §4.5): code that wants "int" always
// gets the same *Type pointer, so type identity comparison for scalars
// is pointer equality.
var interned = map[Kind]*Type{}

func init() {
	for _, k := range []Kind{
		Void, Bool, Char, SChar, UChar, Short, UShort, Int, UInt,
		Long, ULong, LongLong, ULongLong, Float, Double, LongDouble,
	} {
		interned[k] = &Type{
			Kind:  k,
			Size:  LP64.SizeOf[k],
			Align: LP64.AlignOf[k],
		}
	}
}

// Basic returns the interned singleton for an arithmetic or void kind.
func Basic(k Kind) *Type { return interned[k] }

// IsArithmetic reports whether t is an integer or floating type,
// excluding void/pointer/aggregate/function.
func (t *Type) IsArithmetic() bool {
	return t.IsInteger() || t.IsFloating()
}

func (t *Type) IsInteger() bool {
	switch t.Kind {
	case Bool, Char, SChar, UChar, Short, UShort, Int, UInt, Long, ULong, LongLong, ULongLong, Enum:
		return true
	}
	return false
}

func (t *Type) IsFloating() bool {
	switch t.Kind {
	case Float, Double, LongDouble:
		return true
	}
	return false
}

func (t *Type) IsSigned() bool {
	switch t.Kind {
	case Char, SChar, Short, Int, Long, LongLong:
		return true
	}
	return false
}

func (t *Type) IsUnsigned() bool {
	switch t.Kind {
	case Bool, UChar, UShort, UInt, ULong, ULongLong:
		return true
	}
	return false
}

func (t *Type) IsScalar() bool {
	return t.IsArithmetic() || t.Kind == Pointer
}

func (t *Type) IsAggregate() bool {
	return t.Kind == Struct || t.Kind == Union || t.Kind == Array
}

// Unqualified returns t with top-level const/volatile/restrict
// stripped, sharing the same underlying description otherwise.
func (t *Type) Unqualified() *Type {
	if !t.Const && !t.Volatile && !t.Restrict {
		return t
	}
	cp := *t
	cp.Const, cp.Volatile, cp.Restrict = false, false, false
	return &cp
}

// Qualify returns a copy of t with the given qualifiers added.
func (t *Type) Qualify(cnst, vol, restrict bool) *Type {
	cp := *t
	cp.Const = cp.Const || cnst
	cp.Volatile = cp.Volatile || vol
	cp.Restrict = cp.Restrict || restrict
	return &cp
}

// PointerTo derives (and does not intern — every declarator gets its
// own pointer Type, matching cznic/cc's per-declaration allocation) a
// pointer to elem.
func PointerTo(elem *Type) *Type {
	return &Type{Kind: Pointer, Base: elem, Size: LP64.SizeOf[Pointer], Align: LP64.AlignOf[Pointer]}
}

// ArrayOf derives an array of n elements of elem; n < 0 marks an
// incomplete array (spec §4.5 "array types carry an element type and
// a length, possibly unknown").
func ArrayOf(elem *Type, n int) *Type {
	t := &Type{Kind: Array, Base: elem, ArrayLen: n}
	if n >= 0 && elem.Size > 0 {
		t.Size = elem.Size * n
		t.Align = elem.Align
		t.Complete = true
	} else {
		t.Align = elem.Align
	}
	return t
}

// FunctionOf derives a function type.
func FunctionOf(ret *Type, params []*Type, names []string, variadic bool) *Type {
	return &Type{Kind: Function, Returns: ret, Params: params, ParamNames: names, Variadic: variadic}
}

// NewStruct/NewUnion allocate an incomplete tagged aggregate; the
// parser fills Fields and calls Layout once the member list is known.
func NewStruct(tag string) *Type { return &Type{Kind: Struct, Tag: tag} }
func NewUnion(tag string) *Type  { return &Type{Kind: Union, Tag: tag} }

// NewEnum allocates an incomplete enum; EnumBase defaults to int by
// this implementation's choice (C99 says the compatible type is
// implementation-defined).
func NewEnum(tag string) *Type {
	return &Type{Kind: Enum, Tag: tag, EnumBase: Basic(Int), Size: Basic(Int).Size, Align: Basic(Int).Align}
}

func (t *Type) String() string {
	var sb strings.Builder
	f := strutil.IndentFormatter(&sb, "  ")
	writeType(f, t)
	return sb.String()
}

// writeType is the recursive printer backing Type.String, written
// through a strutil.IndentFormatter the way cznic/cc leans on it for
// its own recursive AST/type dumps: the literal "%i"/"%u" markers
// written to the Formatter bump and unwind its indent level, so a
// struct/union member list prints as a nested, indented block instead
// of one long line. Ordinary text goes through fmt.Fprintf (the
// Formatter is still just an io.Writer to it); the "%i"/"%u" markers
// themselves are written verbatim with io.WriteString so they reach
// the Formatter unparsed by fmt.
func writeType(w io.Writer, t *Type) {
	if t == nil {
		io.WriteString(w, "<nil type>")
		return
	}
	qual := ""
	if t.Const {
		qual += "const "
	}
	if t.Volatile {
		qual += "volatile "
	}
	switch t.Kind {
	case Pointer:
		fmt.Fprintf(w, "%spointer to ", qual)
		writeType(w, t.Base)
	case Array:
		if t.ArrayLen >= 0 {
			fmt.Fprintf(w, "%sarray[%d] of ", qual, t.ArrayLen)
		} else {
			fmt.Fprintf(w, "%sarray[] of ", qual)
		}
		writeType(w, t.Base)
	case Struct, Union:
		fmt.Fprintf(w, "%s%s %s ", qual, t.Kind, t.Tag)
		if len(t.Fields) > 0 {
			io.WriteString(w, "{%i\n")
			for _, f := range t.Fields {
				fmt.Fprintf(w, "%s: %s", f.Name, f.Type)
				if f.IsBitfield {
					fmt.Fprintf(w, " : %d", f.BitWidth)
				}
				io.WriteString(w, "\n")
			}
			io.WriteString(w, "%u}")
		}
	case Enum:
		fmt.Fprintf(w, "%senum %s", qual, t.Tag)
	case Function:
		io.WriteString(w, "function(")
		for i, p := range t.Params {
			if i > 0 {
				io.WriteString(w, ", ")
			}
			writeType(w, p)
		}
		if t.Variadic {
			if len(t.Params) > 0 {
				io.WriteString(w, ", ")
			}
			io.WriteString(w, "...")
		}
		io.WriteString(w, ") returning ")
		writeType(w, t.Returns)
	default:
		io.WriteString(w, qual+t.Kind.String())
	}
}
