package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPromoteWidensBelowInt(t *testing.T) {
	require.Equal(t, Basic(Int), Promote(Basic(Char)))
	require.Equal(t, Basic(Int), Promote(Basic(Short)))
	require.Equal(t, Basic(UInt), Promote(Basic(UInt)))
	require.Equal(t, Basic(Long), Promote(Basic(Long)))
}

func TestUsualArithmeticConversionsPrefersWiderAndFloat(t *testing.T) {
	require.Equal(t, Basic(Long), UsualArithmeticConversions(Basic(Int), Basic(Long)))
	require.Equal(t, Basic(Double), UsualArithmeticConversions(Basic(Int), Basic(Double)))
	require.Equal(t, Basic(Double), UsualArithmeticConversions(Basic(Float), Basic(Double)))
	require.Equal(t, Basic(UInt), UsualArithmeticConversions(Basic(Int), Basic(UInt)))
}

func TestStructLayoutPacksNaturally(t *testing.T) {
	// struct { char a; int b; char c; } on LP64: a@0, pad, b@4, c@8, size rounds to 12.
	s := NewStruct("s")
	Layout(s, []MemberSpec{
		{Name: "a", Type: Basic(Char), BitWidth: -1},
		{Name: "b", Type: Basic(Int), BitWidth: -1},
		{Name: "c", Type: Basic(Char), BitWidth: -1},
	})
	fa, _ := s.FieldByName("a")
	fb, _ := s.FieldByName("b")
	fc, _ := s.FieldByName("c")
	require.Equal(t, 0, fa.Offset)
	require.Equal(t, 4, fb.Offset)
	require.Equal(t, 8, fc.Offset)
	require.Equal(t, 12, s.Size)
	require.Equal(t, 4, s.Align)
}

func TestBitfieldPacking(t *testing.T) {
	// struct { unsigned a:3; unsigned b:5; unsigned c:26; } packs a,b
	// into the first unsigned-int storage unit (8 of 32 bits used); c
	// needs 26 more bits, which do not fit in the remaining 24, so c
	// starts a fresh unit.
	s := NewStruct("bf")
	Layout(s, []MemberSpec{
		{Name: "a", Type: Basic(UInt), BitWidth: 3},
		{Name: "b", Type: Basic(UInt), BitWidth: 5},
		{Name: "c", Type: Basic(UInt), BitWidth: 26},
	})
	fa, _ := s.FieldByName("a")
	fb, _ := s.FieldByName("b")
	fc, _ := s.FieldByName("c")
	require.Equal(t, 0, fa.Offset)
	require.Equal(t, 0, fa.BitOffset)
	require.Equal(t, 0, fb.Offset)
	require.Equal(t, 3, fb.BitOffset)
	require.Equal(t, 4, fc.Offset)
}

func TestUnionLayoutSharesOffsetZero(t *testing.T) {
	u := NewUnion("u")
	Layout(u, []MemberSpec{
		{Name: "i", Type: Basic(Int), BitWidth: -1},
		{Name: "d", Type: Basic(Double), BitWidth: -1},
	})
	fi, _ := u.FieldByName("i")
	fd, _ := u.FieldByName("d")
	require.Equal(t, 0, fi.Offset)
	require.Equal(t, 0, fd.Offset)
	require.Equal(t, 8, u.Size)
	require.Equal(t, 8, u.Align)
}

func TestPointerAndArrayCompatibility(t *testing.T) {
	p1 := PointerTo(Basic(Int))
	p2 := PointerTo(Basic(Int))
	require.True(t, Compatible(p1, p2))

	a1 := ArrayOf(Basic(Int), 10)
	a2 := ArrayOf(Basic(Int), 10)
	a3 := ArrayOf(Basic(Int), 5)
	require.True(t, Compatible(a1, a2))
	require.False(t, Compatible(a1, a3))
}
