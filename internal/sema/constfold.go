package sema

import (
	"github.com/qjcg/cfront/internal/ast"
	"github.com/qjcg/cfront/internal/token"
	"github.com/qjcg/cfront/internal/types"
)

// FoldInt recursively folds a constant integer expression (spec
// §4.6 "Constant folding", §8 property 8), the evaluator the parser
// calls for case labels, enumerator initializers, array bounds, and
// bit-field widths. It reports a diagnostic and returns (0, false) if
// x is not a constant expression this evaluator understands, or if
// folding hits an error such as division by zero.
func (c *Checker) FoldInt(x ast.Expr) (int64, bool) {
	switch e := x.(type) {
	case *ast.IntLit:
		return e.Value, true
	case *ast.CharLit:
		return e.Value, true
	case *ast.Ident:
		if e.Binding != nil && e.Binding.IsEnumConst {
			return e.Binding.EnumValue, true
		}
		c.errf(e.Pos(), "expression is not an integer constant expression")
		return 0, false
	case *ast.Unary:
		return c.foldUnary(e)
	case *ast.Binary:
		return c.foldBinary(e)
	case *ast.Cond:
		cv, ok := c.FoldInt(e.Cond)
		if !ok {
			return 0, false
		}
		if cv != 0 {
			return c.FoldInt(e.Then)
		}
		return c.FoldInt(e.Else)
	case *ast.Cast:
		v, ok := c.FoldInt(e.X)
		if !ok {
			return 0, false
		}
		return narrow(v, e.ResolvedType()), true
	case *ast.SizeofType:
		if e.TypeName == nil {
			return 0, false
		}
		t := e.ResolvedType()
		if t == nil {
			return 0, false
		}
		return int64(resolvedSizeofOperand(e)), true
	case *ast.Comma:
		if _, ok := c.FoldInt(e.X); !ok {
			return 0, false
		}
		return c.FoldInt(e.Y)
	}
	c.errf(x.Pos(), "expression is not an integer constant expression")
	return 0, false
}

// resolvedSizeofOperand reads back the size the parser already
// resolved onto the SizeofType's type-name declarator, since
// ast.SizeofType itself only carries the *result* type (unsigned
// long), not the operand's.
func resolvedSizeofOperand(e *ast.SizeofType) int {
	if e.TypeName == nil {
		return 0
	}
	if e.TypeName.Abstract != nil && e.TypeName.Abstract.Type != nil {
		return e.TypeName.Abstract.Type.Size
	}
	if e.TypeName.Specifier != nil && e.TypeName.Specifier.Type != nil {
		return e.TypeName.Specifier.Type.Size
	}
	return 0
}

func (c *Checker) foldUnary(e *ast.Unary) (int64, bool) {
	v, ok := c.FoldInt(e.X)
	if !ok {
		return 0, false
	}
	switch e.Op {
	case token.Minus:
		return -v, true
	case token.Plus:
		return v, true
	case token.Tilde:
		return ^v, true
	case token.Bang:
		return boolToInt(v == 0), true
	}
	c.errf(e.Pos(), "operator is not valid in a constant expression")
	return 0, false
}

func (c *Checker) foldBinary(e *ast.Binary) (int64, bool) {
	a, ok := c.FoldInt(e.X)
	if !ok {
		return 0, false
	}
	b, ok := c.FoldInt(e.Y)
	if !ok {
		return 0, false
	}
	unsigned := isUnsignedResult(e)
	switch e.Op {
	case token.Plus:
		return a + b, true
	case token.Minus:
		return a - b, true
	case token.Star:
		return a * b, true
	case token.Slash:
		if b == 0 {
			c.errf(e.Pos(), "division by zero in constant expression")
			return 0, false
		}
		if unsigned {
			return int64(uint64(a) / uint64(b)), true
		}
		return a / b, true
	case token.Percent:
		if b == 0 {
			c.errf(e.Pos(), "division by zero in constant expression")
			return 0, false
		}
		if unsigned {
			return int64(uint64(a) % uint64(b)), true
		}
		return a % b, true
	case token.Shl:
		return a << uint(b), true
	case token.Shr:
		if unsigned {
			return int64(uint64(a) >> uint(b)), true
		}
		return a >> uint(b), true
	case token.Amp:
		return a & b, true
	case token.Pipe:
		return a | b, true
	case token.Caret:
		return a ^ b, true
	case token.AndAnd:
		return boolToInt(a != 0 && b != 0), true
	case token.OrOr:
		return boolToInt(a != 0 || b != 0), true
	case token.Eq:
		return boolToInt(a == b), true
	case token.Ne:
		return boolToInt(a != b), true
	case token.Lt:
		return boolToInt(a < b), true
	case token.Gt:
		return boolToInt(a > b), true
	case token.Le:
		return boolToInt(a <= b), true
	case token.Ge:
		return boolToInt(a >= b), true
	}
	c.errf(e.Pos(), "operator is not valid in a constant expression")
	return 0, false
}

func isUnsignedResult(e *ast.Binary) bool {
	t := e.ResolvedType()
	return t != nil && t.IsUnsigned()
}

func boolToInt(v bool) int64 {
	if v {
		return 1
	}
	return 0
}

// narrow truncates v to fit t's width/signedness, the bit-level
// narrowing step a constant cast performs (spec §4.6 "integer
// operations are done in the widest integer type and then narrowed").
func narrow(v int64, t *types.Type) int64 {
	if t == nil {
		return v
	}
	bits := uint(t.Size * 8)
	if bits == 0 || bits >= 64 {
		return v
	}
	mask := int64(1)<<bits - 1
	v &= mask
	if t.IsSigned() {
		signBit := int64(1) << (bits - 1)
		if v&signBit != 0 {
			v -= int64(1) << bits
		}
	}
	return v
}

// AddressConstant is the folded form of a static initializer operand
// that is not a pure integer constant but a "label + offset" form
// (spec §4.6: "address-constants (e.g. &x + 3) are folded into
// (label, offset) pairs for static initializers").
type AddressConstant struct {
	Label  string
	Offset int64
}

// FoldAddress folds x as either a pure integer constant or an
// address-constant ("&ident", "&ident + N", "&ident[N]", or a bare
// function/array identifier which already denotes its own address by
// decay). ok is false if x is neither.
func (c *Checker) FoldAddress(x ast.Expr) (AddressConstant, bool) {
	switch e := x.(type) {
	case *ast.Unary:
		if e.Op == token.Amp {
			if id, ok := e.X.(*ast.Ident); ok {
				return AddressConstant{Label: id.Name}, true
			}
			if idx, ok := e.X.(*ast.Index); ok {
				if id, ok := idx.X.(*ast.Ident); ok {
					if off, ok := c.FoldInt(idx.Index); ok {
						elemSize := int64(1)
						if t := idx.ResolvedType(); t != nil {
							elemSize = int64(t.Size)
						}
						return AddressConstant{Label: id.Name, Offset: off * elemSize}, true
					}
				}
			}
		}
	case *ast.Ident:
		if t := e.ResolvedType(); t != nil && (t.Kind == types.Array || t.Kind == types.Function) {
			return AddressConstant{Label: e.Name}, true
		}
	case *ast.Binary:
		if e.Op == token.Plus || e.Op == token.Minus {
			if ac, ok := c.FoldAddress(e.X); ok {
				if n, ok := c.FoldInt(e.Y); ok {
					if e.Op == token.Minus {
						n = -n
					}
					elemSize := int64(1)
					if t := e.X.ResolvedType(); t != nil && t.Kind == types.Pointer {
						elemSize = int64(t.Base.Size)
					}
					ac.Offset += n * elemSize
					return ac, true
				}
			}
		}
	}
	if v, ok := c.FoldInt(x); ok {
		return AddressConstant{Offset: v}, true
	}
	return AddressConstant{}, false
}
