package types

// rank orders integer types for promotion/UAC purposes, per C99
// 6.3.1.1: every type of lower rank than int promotes to int (or
// unsigned int, if int cannot represent all its values — irrelevant
// on LP64 since char/short always fit in int).
var rank = map[Kind]int{
	Bool: 0, Char: 1, SChar: 1, UChar: 1,
	Short: 2, UShort: 2,
	Int: 3, UInt: 3,
	Long: 4, ULong: 4,
	LongLong: 5, ULongLong: 5,
	Enum: 3,
}

// Promote implements integer promotion (C99 6.3.1.1p2): any integer
// type of rank less than int becomes int. Pointers/floats/Kind Int
// and above pass through unchanged.
func Promote(t *Type) *Type {
	if !t.IsInteger() {
		return t
	}
	if rank[t.Kind] < rank[Int] {
		return Basic(Int)
	}
	return t
}

// UsualArithmeticConversions implements C99 6.3.1.8 for two already
// arithmetic operands: both are promoted, then the "wider wins, and a
// tie between signed and unsigned prefers unsigned" ladder is applied.
// LP64's long/long long having identical size make the "same rank,
// different signedness" case the only one that matters once long/long
// long unsigned-ness is considered.
func UsualArithmeticConversions(a, b *Type) *Type {
	if a.IsFloating() || b.IsFloating() {
		return widerFloat(a, b)
	}
	a, b = Promote(a), Promote(b)
	if a.Kind == b.Kind {
		return a
	}
	ra, rb := rank[a.Kind], rank[b.Kind]
	if a.IsSigned() == b.IsSigned() {
		if ra >= rb {
			return a
		}
		return b
	}
	// Mixed signedness: the unsigned operand wins if its rank is >= the
	// signed operand's rank. Otherwise the signed operand has the higher
	// rank, and on LP64 that signed type (long or long long) represents
	// every value of the lower-rank unsigned type, so it is the result
	// (e.g. unsigned int with long gives long).
	if a.IsUnsigned() {
		if ra >= rb {
			return a
		}
		return signedRankType(rb, false)
	}
	if rb >= ra {
		return b
	}
	return signedRankType(ra, false)
}

func widerFloat(a, b *Type) *Type {
	floatRank := func(t *Type) int {
		switch t.Kind {
		case LongDouble:
			return 3
		case Double:
			return 2
		case Float:
			return 1
		}
		return 0 // an integer operand always converts to the other side's floating type
	}
	if !a.IsFloating() {
		return b
	}
	if !b.IsFloating() {
		return a
	}
	if floatRank(a) >= floatRank(b) {
		return a
	}
	return b
}

func signedRankType(r int, unsigned bool) *Type {
	for k, rk := range rank {
		if rk == r {
			t := Basic(k)
			if t.IsSigned() != !unsigned {
				continue
			}
			return t
		}
	}
	return Basic(Int)
}
