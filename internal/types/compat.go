package types

// Compatible implements the composite-type compatibility test used
// for declaration matching (spec §4.4 "a later declaration must be
// compatible with an earlier one") and for call-argument checking.
// Top-level qualifiers are ignored, matching C99 6.7.3's "compatible
// type" definition used for this purpose; the qualifiers of a pointed-to
// or element type must match.
func Compatible(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	a, b = a.Unqualified(), b.Unqualified()
	if a.Kind != b.Kind {
		return false
	}
	sameQuals := func(x, y *Type) bool {
		return x == nil || y == nil || (x.Const == y.Const && x.Volatile == y.Volatile && x.Restrict == y.Restrict)
	}
	switch a.Kind {
	case Pointer:
		return sameQuals(a.Base, b.Base) && Compatible(a.Base, b.Base)
	case Array:
		if a.ArrayLen >= 0 && b.ArrayLen >= 0 && a.ArrayLen != b.ArrayLen {
			return false
		}
		return sameQuals(a.Base, b.Base) && Compatible(a.Base, b.Base)
	case Function:
		if !Compatible(a.Returns, b.Returns) {
			return false
		}
		if a.Variadic != b.Variadic {
			return false
		}
		if len(a.Params) == 0 || len(b.Params) == 0 {
			return true // an unprototyped or K&R declaration is compatible with any parameter list
		}
		if len(a.Params) != len(b.Params) {
			return false
		}
		for i := range a.Params {
			if !Compatible(a.Params[i], b.Params[i]) {
				return false
			}
		}
		return true
	case Struct, Union, Enum:
		return a.Tag == b.Tag && a == b // tagged types are compatible only with themselves once declared, aside from the forward-declaration case handled by the scope layer reusing the same *Type
	default:
		return true // both are the same interned arithmetic/void Kind
	}
}

// SameArithmetic reports whether two arithmetic types are identical,
// ignoring qualifiers.
func SameArithmetic(a, b *Type) bool {
	return a.Unqualified().Kind == b.Unqualified().Kind
}
