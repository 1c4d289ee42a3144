// Package types implements the Type system component: an interned
// lattice of arithmetic types, derived pointer/array/function types,
// struct/union layout with bit-field packing, and the compatibility
// and conversion rules (integer promotion, usual arithmetic
// conversions) the semantic checker and parser both consult.
package types

// Model describes the byte size and alignment of every scalar kind
// for one target data model, the same role cznic/cc's Model plays for
// its Parse entry point. The only model shipped is LP64 (64-bit
// Linux/macOS): char=1, short=2, int=4, long=8, long long=8,
// pointer=8, matching the target cc.go's exampleAST comments describe
// as "64 bit".
type Model struct {
	SizeOf  map[Kind]int
	AlignOf map[Kind]int
}

// LP64 is the only target model this front end supports (spec §4.5
// Non-goals exclude multi-target code generation, but the type system
// still needs one concrete model to size and lay out structs).
var LP64 = &Model{
	SizeOf: map[Kind]int{
		Void: 1, Bool: 1,
		Char: 1, SChar: 1, UChar: 1,
		Short: 2, UShort: 2,
		Int: 4, UInt: 4,
		Long: 8, ULong: 8,
		LongLong: 8, ULongLong: 8,
		Float: 4, Double: 8, LongDouble: 16,
		Pointer: 8,
		Enum:    4,
	},
	AlignOf: map[Kind]int{
		Void: 1, Bool: 1,
		Char: 1, SChar: 1, UChar: 1,
		Short: 2, UShort: 2,
		Int: 4, UInt: 4,
		Long: 8, ULong: 8,
		LongLong: 8, ULongLong: 8,
		Float: 4, Double: 8, LongDouble: 16,
		Pointer: 8,
		Enum:    4,
	},
}
