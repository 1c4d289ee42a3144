// Package sema implements the Semantic Checker component (spec §4.6):
// it is invoked by the Parser, per production, to annotate each
// expression node with a resolved type and lvalue-ness, and to fold
// constant expressions (spec §4.6, §8). Unlike the teacher's own
// exception-based checking, every rule here returns its result value
// and reports through internal/diag rather than panicking, per spec
// §9's "single diagnostics channel" design note.
package sema

import (
	"github.com/qjcg/cfront/internal/ast"
	"github.com/qjcg/cfront/internal/diag"
	"github.com/qjcg/cfront/internal/token"
	"github.com/qjcg/cfront/internal/types"
)

// Checker holds the diagnostics bag every typing rule reports through.
// It carries no other state: every rule is a pure function of the
// already-typed operands it is given, per spec §9's "sum-type walk"
// design note (no separate visitor object per AST family).
type Checker struct {
	diag *diag.Bag
}

// New creates a Checker reporting to d.
func New(d *diag.Bag) *Checker {
	return &Checker{diag: d}
}

func (c *Checker) errf(pos token.Position, format string, args ...interface{}) {
	c.diag.Err(toDiagPos(pos), format, args...)
}

func toDiagPos(pos token.Position) diag.Position {
	return diag.Position{File: pos.File, Line: pos.Line, Column: pos.Column}
}

// ulong is the result type of sizeof/_Alignof (spec §4.6).
func ulong() *types.Type { return types.Basic(types.ULong) }

// intType is the result type of the scalar comparison/logical
// operators and the boolean-producing unary "!" (spec §4.6).
func intType() *types.Type { return types.Basic(types.Int) }

// CheckIdent resolves a plain identifier reference against its scope
// binding, the one rule in the table that is really the parser's
// lookup result turned into a typed node: an object/enumerator
// identifier is an lvalue iff it names an object (not a function, not
// an enum constant).
func (c *Checker) CheckIdent(e *ast.Ident, bindingType *types.Type, isObject bool) {
	e.SetResolvedType(bindingType)
	e.SetLValue(isObject)
}

// CheckIntLit assigns the narrowest type in {int, unsigned int, long,
// unsigned long} that both fits the literal's value and respects any
// u/U or l/L suffix, per C99 6.4.4.1's literal-type ladder restricted
// to the decimal/hex/octal cases this front end's constants need.
func (c *Checker) CheckIntLit(e *ast.IntLit, unsignedSuffix, longSuffix bool) {
	t := types.Basic(types.Int)
	switch {
	case unsignedSuffix && longSuffix:
		t = types.Basic(types.ULong)
	case unsignedSuffix:
		if e.Value > 0xFFFFFFFF || e.Value < 0 {
			t = types.Basic(types.ULong)
		} else {
			t = types.Basic(types.UInt)
		}
	case longSuffix:
		t = types.Basic(types.Long)
	default:
		if e.Value > 0x7FFFFFFF || e.Value < -0x80000000 {
			t = types.Basic(types.Long)
			if e.Value <= 0xFFFFFFFF && e.Value > 0 && len(e.Text) > 1 && e.Text[0] == '0' {
				t = types.Basic(types.UInt) // hex/octal: unsigned int comes before long on the ladder
			}
		}
	}
	e.SetResolvedType(t)
}

func (c *Checker) CheckFloatLit(e *ast.FloatLit, isFloatSuffix bool) {
	if isFloatSuffix {
		e.SetResolvedType(types.Basic(types.Float))
		return
	}
	e.SetResolvedType(types.Basic(types.Double))
}

func (c *Checker) CheckCharLit(e *ast.CharLit) {
	e.SetResolvedType(types.Basic(types.Int)) // C99 6.4.4.4p10: an (unprefixed) character constant has type int
}

func (c *Checker) CheckStringLit(e *ast.StringLit) {
	e.SetResolvedType(types.ArrayOf(types.Basic(types.Char), len(e.Value)+1))
	e.SetLValue(true)
}

// CheckIndex implements "a[b]" (spec §4.6 table): exactly one operand
// must be pointer (after array decay) and the other integer; result is
// the pointee type and is always an lvalue.
func (c *Checker) CheckIndex(e *ast.Index, x, idx ast.Expr) {
	xt := decay(x.ResolvedType())
	it := decay(idx.ResolvedType())
	var base *types.Type
	switch {
	case xt != nil && xt.Kind == types.Pointer && it != nil && it.IsInteger():
		base = xt.Base
	case it != nil && it.Kind == types.Pointer && xt != nil && xt.IsInteger():
		base = it.Base
	default:
		c.errf(e.Pos(), "subscripted value is not an array, pointer, or vector")
		return
	}
	e.SetResolvedType(base)
	e.SetLValue(true)
}

// CheckMember implements "a.m" / "a->m" (spec §4.6): the "->" form
// requires a pointer-to-struct/union operand; "." requires a bare
// struct/union. The result inherits the member's own qualifiers
// unioned with the aggregate's qualifiers and is always an lvalue.
func (c *Checker) CheckMember(e *ast.Member, x ast.Expr, name string, arrow bool) {
	xt := x.ResolvedType()
	if xt == nil {
		return
	}
	agg := xt
	if arrow {
		if xt.Kind != types.Pointer {
			c.errf(e.Pos(), "member reference type is not a pointer")
			return
		}
		agg = xt.Base
	}
	if agg == nil || (agg.Kind != types.Struct && agg.Kind != types.Union) {
		c.errf(e.Pos(), "member reference base type is not a struct or union")
		return
	}
	if !agg.Complete {
		c.errf(e.Pos(), "incomplete type %s has no member %q", agg, name)
		return
	}
	f, ok := agg.FieldByName(name)
	if !ok {
		c.errf(e.Pos(), "no member named %q in %s", name, agg)
		return
	}
	ft := f.Type
	if agg.Const {
		ft = ft.Qualify(true, false, false)
	}
	if agg.Volatile {
		ft = ft.Qualify(false, true, false)
	}
	e.SetResolvedType(ft)
	e.SetLValue(true)
}

// CheckCall implements "a(args...)" (spec §4.6): the callee must be a
// function, or a pointer to one, and a prototyped callee's argument
// count is checked. An argument that matches a declared parameter is
// neither converted to nor checked against that parameter's type.
// Arguments in the variadic tail, and every argument of a call through
// an unprototyped designator, get only the float-to-double promotion;
// the integer promotions are not applied to them.
func (c *Checker) CheckCall(e *ast.Call, fn ast.Expr, args []ast.Expr) {
	ft := fn.ResolvedType()
	if ft == nil {
		return
	}
	if ft.Kind == types.Pointer {
		ft = ft.Base
	}
	if ft == nil || ft.Kind != types.Function {
		c.errf(e.Pos(), "called object is not a function or function pointer")
		return
	}
	if len(ft.Params) > 0 {
		if !ft.Variadic && len(args) != len(ft.Params) {
			c.errf(e.Pos(), "too %s arguments to function call", tooWord(len(args), len(ft.Params)))
		} else if ft.Variadic && len(args) < len(ft.Params) {
			c.errf(e.Pos(), "too few arguments to function call")
		}
	}
	for i, a := range args {
		if i < len(ft.Params) {
			continue // a prototyped argument keeps its own type
		}
		if a.ResolvedType() != nil && a.ResolvedType().IsFloating() && a.ResolvedType().Kind == types.Float {
			a.SetResolvedType(types.Basic(types.Double)) // default argument promotion: float -> double for variadic tail
		}
	}
	e.SetResolvedType(ft.Returns)
}

func tooWord(got, want int) string {
	if got > want {
		return "many"
	}
	return "few"
}

// CheckDeref implements "*p" (spec §4.6): p must be a pointer; result
// is the pointee type and is an lvalue.
func (c *Checker) CheckDeref(e *ast.Unary, x ast.Expr) {
	xt := decay(x.ResolvedType())
	if xt == nil || xt.Kind != types.Pointer {
		c.errf(e.Pos(), "indirection requires pointer operand")
		return
	}
	e.SetResolvedType(xt.Base)
	e.SetLValue(true)
}

// CheckAddr implements "&x" (spec §4.6): x must be an lvalue or a
// function designator; result is pointer-to-x's-type.
func (c *Checker) CheckAddr(e *ast.Unary, x ast.Expr) {
	xt := x.ResolvedType()
	if xt == nil {
		return
	}
	if !x.IsLValue() && xt.Kind != types.Function {
		c.errf(e.Pos(), "cannot take the address of an rvalue")
		return
	}
	e.SetResolvedType(types.PointerTo(xt))
}

// CheckIncDec implements "++x" / "x++" / "--x" / "x--" (spec §4.6): x
// must be a modifiable lvalue; result type is x's own type (post-forms
// denote the pre-modification value, which only matters to a codegen
// consumer, not to the type itself).
func (c *Checker) CheckIncDec(e *ast.Unary, x ast.Expr) {
	if !x.IsLValue() {
		c.errf(e.Pos(), "expression is not assignable")
		return
	}
	if xt := x.ResolvedType(); xt != nil && xt.Const {
		c.errf(e.Pos(), "cannot modify const-qualified value")
	}
	e.SetResolvedType(x.ResolvedType())
}

// CheckUnaryArith implements unary "+"/"-" (spec §4.6): x must be
// arithmetic; promoted.
func (c *Checker) CheckUnaryArith(e *ast.Unary, x ast.Expr) {
	xt := x.ResolvedType()
	if xt == nil || !xt.IsArithmetic() {
		c.errf(e.Pos(), "invalid argument type to unary expression")
		return
	}
	e.SetResolvedType(types.Promote(xt))
}

// CheckBitNot implements "~x": x must be integer; promoted.
func (c *Checker) CheckBitNot(e *ast.Unary, x ast.Expr) {
	xt := x.ResolvedType()
	if xt == nil || !xt.IsInteger() {
		c.errf(e.Pos(), "invalid argument type to unary expression")
		return
	}
	e.SetResolvedType(types.Promote(xt))
}

// CheckNot implements "!x": x must be scalar; result is int.
func (c *Checker) CheckNot(e *ast.Unary, x ast.Expr) {
	xt := decay(x.ResolvedType())
	if xt == nil || !xt.IsScalar() {
		c.errf(e.Pos(), "invalid argument type to unary expression")
		return
	}
	e.SetResolvedType(intType())
}

// CheckMulDivMod implements "*", "/", "%" (spec §4.6): arithmetic
// operands, "%" restricted to integers; usual arithmetic conversions.
func (c *Checker) CheckMulDivMod(e *ast.Binary, x, y ast.Expr) {
	xt, yt := x.ResolvedType(), y.ResolvedType()
	if xt == nil || yt == nil || !xt.IsArithmetic() || !yt.IsArithmetic() {
		c.errf(e.Pos(), "invalid operands to binary expression")
		return
	}
	if e.Op == token.Percent && (!xt.IsInteger() || !yt.IsInteger()) {
		c.errf(e.Pos(), "invalid operands to binary expression ('%%' requires integer operands)")
		return
	}
	e.SetResolvedType(types.UsualArithmeticConversions(xt, yt))
}

// CheckAddSub implements "+"/"-" (spec §4.6): arithmetic+arithmetic,
// pointer±integer, or pointer-pointer (result is a signed integer of
// pointer width, ptrdiff_t's role filled here by "long").
func (c *Checker) CheckAddSub(e *ast.Binary, x, y ast.Expr) {
	xt, yt := decay(x.ResolvedType()), decay(y.ResolvedType())
	if xt == nil || yt == nil {
		return
	}
	switch {
	case xt.IsArithmetic() && yt.IsArithmetic():
		e.SetResolvedType(types.UsualArithmeticConversions(xt, yt))
	case xt.Kind == types.Pointer && yt.IsInteger():
		e.SetResolvedType(xt)
	case e.Op == token.Plus && xt.IsInteger() && yt.Kind == types.Pointer:
		e.SetResolvedType(yt)
	case e.Op == token.Minus && xt.Kind == types.Pointer && yt.Kind == types.Pointer:
		if !types.Compatible(xt.Base, yt.Base) {
			c.errf(e.Pos(), "pointer operands of incompatible type to binary expression")
		}
		e.SetResolvedType(types.Basic(types.Long))
	default:
		c.errf(e.Pos(), "invalid operands to binary expression")
	}
}

// CheckShift implements "<<"/">>" (spec §4.6): both integer, each
// promoted independently, result is the (promoted) lhs type.
func (c *Checker) CheckShift(e *ast.Binary, x, y ast.Expr) {
	xt, yt := x.ResolvedType(), y.ResolvedType()
	if xt == nil || yt == nil || !xt.IsInteger() || !yt.IsInteger() {
		c.errf(e.Pos(), "invalid operands to binary expression")
		return
	}
	e.SetResolvedType(types.Promote(xt))
}

// CheckRelational implements relational/equality operators (spec
// §4.6): both arithmetic (after UAC), or both pointers to compatible
// types, or one pointer and one null-pointer constant; result is int.
func (c *Checker) CheckRelational(e *ast.Binary, x, y ast.Expr) {
	xt, yt := decay(x.ResolvedType()), decay(y.ResolvedType())
	if xt == nil || yt == nil {
		return
	}
	switch {
	case xt.IsArithmetic() && yt.IsArithmetic():
	case xt.Kind == types.Pointer && yt.Kind == types.Pointer:
		if !types.Compatible(xt.Base, yt.Base) && xt.Base.Unqualified().Kind != types.Void && yt.Base.Unqualified().Kind != types.Void {
			c.errf(e.Pos(), "comparison of distinct pointer types")
		}
	case xt.Kind == types.Pointer && isNullConstant(y):
	case yt.Kind == types.Pointer && isNullConstant(x):
	default:
		c.errf(e.Pos(), "invalid operands to binary expression")
	}
	e.SetResolvedType(intType())
}

func isNullConstant(e ast.Expr) bool {
	lit, ok := e.(*ast.IntLit)
	return ok && lit.Value == 0
}

// CheckBitwise implements "&"/"|"/"^" (spec §4.6): integer operands,
// usual arithmetic conversions.
func (c *Checker) CheckBitwise(e *ast.Binary, x, y ast.Expr) {
	xt, yt := x.ResolvedType(), y.ResolvedType()
	if xt == nil || yt == nil || !xt.IsInteger() || !yt.IsInteger() {
		c.errf(e.Pos(), "invalid operands to binary expression")
		return
	}
	e.SetResolvedType(types.UsualArithmeticConversions(xt, yt))
}

// CheckLogical implements "&&"/"||" (spec §4.6): scalar operands,
// result is int; short-circuiting is a control-flow-lowering concern
// outside this checker, per spec §4.6 ("not observable in the AST
// beyond control-flow lowering").
func (c *Checker) CheckLogical(e *ast.Binary, x, y ast.Expr) {
	xt, yt := decay(x.ResolvedType()), decay(y.ResolvedType())
	if xt == nil || yt == nil || !xt.IsScalar() || !yt.IsScalar() {
		c.errf(e.Pos(), "invalid operands to binary expression")
		return
	}
	e.SetResolvedType(intType())
}

// CheckCond implements "?:" (spec §4.6): the first operand must be
// scalar; the second and third follow C's balancing rules.
func (c *Checker) CheckCond(e *ast.Cond, cond, then, els ast.Expr) {
	ct := decay(cond.ResolvedType())
	if ct == nil || !ct.IsScalar() {
		c.errf(e.Pos(), "used type where arithmetic, pointer, or integer type is required")
	}
	tt, et := decay(then.ResolvedType()), decay(els.ResolvedType())
	if tt == nil || et == nil {
		return
	}
	switch {
	case tt.IsArithmetic() && et.IsArithmetic():
		e.SetResolvedType(types.UsualArithmeticConversions(tt, et))
	case tt.Kind == types.Void && et.Kind == types.Void:
		e.SetResolvedType(types.Basic(types.Void))
	case tt.Kind == types.Pointer && isNullConstant(els):
		e.SetResolvedType(tt)
	case et.Kind == types.Pointer && isNullConstant(then):
		e.SetResolvedType(et)
	case tt.Kind == types.Pointer && et.Kind == types.Pointer:
		if types.Compatible(tt.Base, et.Base) {
			e.SetResolvedType(tt)
		} else {
			e.SetResolvedType(types.PointerTo(types.Basic(types.Void)))
		}
	default:
		if types.Compatible(tt, et) {
			e.SetResolvedType(tt)
		} else {
			c.errf(e.Pos(), "incompatible operand types in conditional expression")
		}
	}
}

// CheckAssign implements "=" and every compound assignment operator
// (spec §4.6): lhs must be a modifiable lvalue; rhs is converted to
// lhs's type (the conversion itself, beyond a compatibility check, is
// a codegen concern out of this front end's scope).
func (c *Checker) CheckAssign(e *ast.Assign, lhs, rhs ast.Expr) {
	lt := lhs.ResolvedType()
	if !lhs.IsLValue() {
		c.errf(e.Pos(), "expression is not assignable")
		return
	}
	if lt != nil && lt.Const {
		c.errf(e.Pos(), "cannot assign to const-qualified lvalue")
		return
	}
	rt := decay(rhs.ResolvedType())
	if lt == nil || rt == nil {
		return
	}
	if e.Op != token.Assign {
		// Compound forms (+=, &=, ...) require the same operand shape
		// their non-compound counterpart would (spec §4.6): arithmetic
		// pairs, or pointer +=/-= integer.
		if !lt.IsArithmetic() && !(lt.Kind == types.Pointer && rt.IsInteger() && (e.Op == token.PlusEq || e.Op == token.MinusEq)) {
			c.errf(e.Pos(), "invalid operands to compound assignment")
		}
	} else if !assignable(lt, rt) {
		c.errf(e.Pos(), "incompatible types assigning to %s from %s", lt, rt)
	}
	e.SetResolvedType(lt)
}

// assignable approximates C99 6.5.16.1's assignment-compatibility
// rule: arithmetic-to-arithmetic is always allowed (narrowing is a
// warning in real compilers, not an error, and this front end has no
// warning channel finer than diag.Warn, which callers may add);
// pointer targets must be compatible (void* converts either way);
// struct/union/array targets must be identical/compatible.
func assignable(lt, rt *types.Type) bool {
	switch {
	case lt.IsArithmetic() && rt.IsArithmetic():
		return true
	case lt.Kind == types.Pointer && rt.Kind == types.Pointer:
		if lt.Base.Unqualified().Kind == types.Void || rt.Base.Unqualified().Kind == types.Void {
			return true
		}
		return types.Compatible(lt.Base, rt.Base)
	case lt.Kind == types.Pointer && rt.IsInteger():
		return false
	default:
		return types.Compatible(lt, rt)
	}
}

// CheckComma implements the comma operator: result is rhs's type (and
// lvalue-ness), the lhs is evaluated only for its side effects.
func (c *Checker) CheckComma(e *ast.Comma, _, y ast.Expr) {
	e.SetResolvedType(y.ResolvedType())
	e.SetLValue(y.IsLValue())
}

// CheckCast implements explicit casts (spec §4.6): the target must be
// scalar (or void, to discard a value); float<->pointer is forbidden.
func (c *Checker) CheckCast(e *ast.Cast, target *types.Type, x ast.Expr) {
	xt := decay(x.ResolvedType())
	if target == nil || xt == nil {
		return
	}
	if target.Kind == types.Void {
		e.SetResolvedType(target)
		return
	}
	if !target.IsScalar() {
		c.errf(e.Pos(), "used type where scalar type is required for cast")
		return
	}
	if (target.IsFloating() && xt.Kind == types.Pointer) || (target.Kind == types.Pointer && xt.IsFloating()) {
		c.errf(e.Pos(), "pointer cannot be cast to/from floating-point type")
		return
	}
	e.SetResolvedType(target)
}

// CheckSizeofExpr/CheckSizeofType implement "sizeof" (spec §4.6): the
// operand type must be complete and not a function type; result is
// unsigned long.
func (c *Checker) CheckSizeofExpr(e *ast.SizeofExpr, x ast.Expr) {
	xt := x.ResolvedType()
	c.checkSizeofOperand(e.Pos(), xt)
	e.SetResolvedType(ulong())
}

func (c *Checker) CheckSizeofType(e *ast.SizeofType, t *types.Type) {
	c.checkSizeofOperand(e.Pos(), t)
	e.SetResolvedType(ulong())
}

func (c *Checker) checkSizeofOperand(pos token.Position, t *types.Type) {
	if t == nil {
		return
	}
	if t.Kind == types.Function {
		c.errf(pos, "invalid application of 'sizeof' to a function type")
		return
	}
	if !t.Complete && t.Kind != types.Pointer && !(t.IsArithmetic()) {
		c.errf(pos, "invalid application of 'sizeof' to an incomplete type %s", t)
	}
}

// CheckAlignof implements "_Alignof": operand is a type-name; result
// is unsigned long.
func (c *Checker) CheckAlignof(e *ast.SizeofType, t *types.Type) {
	if t != nil && !t.Complete && !t.IsArithmetic() && t.Kind != types.Pointer {
		c.errf(e.Pos(), "invalid application of '_Alignof' to an incomplete type %s", t)
	}
	e.SetResolvedType(ulong())
}

// CheckCompoundLiteral implements "(T){ ... }" (SPEC_FULL.md §4.4.1):
// same typing as an aggregate/scalar initializer of T, and an lvalue
// (its storage duration is a codegen concern, out of scope here).
func (c *Checker) CheckCompoundLiteral(e *ast.CompoundLit, t *types.Type) {
	e.SetResolvedType(t)
	e.SetLValue(true)
}

// decay implements array-to-pointer and function-to-pointer decay,
// applied at every use site the spec table implicitly assumes it
// (spec §3: "an array decays to Pointer(derived) in most contexts").
func decay(t *types.Type) *types.Type {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case types.Array:
		return types.PointerTo(t.Base)
	case types.Function:
		return types.PointerTo(t)
	}
	return t
}

// Decay exposes decay to the parser, which must apply it when an
// expression used as an operand or call argument is an array or bare
// function designator (e.g. passing an array parameter, or taking a
// function's value without "&").
func Decay(t *types.Type) *types.Type { return decay(t) }
