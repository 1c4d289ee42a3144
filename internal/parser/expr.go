package parser

import (
	"github.com/qjcg/cfront/internal/ast"
	"github.com/qjcg/cfront/internal/token"
	"github.com/qjcg/cfront/internal/types"
)

// parseExpr parses a full comma-operator expression (spec §4.6 "the
// comma operator"): the lowest-precedence production, used wherever
// the grammar allows a general expression (expression-statement, the
// controlling expression of for's clauses, etc.).
func (p *Parser) parseExpr() ast.Expr {
	x := p.parseAssignExpr()
	for {
		if _, ok := p.accept(token.Comma); !ok {
			return x
		}
		pos := x.Pos()
		y := p.parseAssignExpr()
		e := &ast.Comma{X: x, Y: y}
		e.P = pos
		p.chk.CheckComma(e, x, y)
		x = e
	}
}

// assignOps lists every assignment-operator token kind (spec §4.6).
var assignOps = map[token.Kind]bool{
	token.Assign: true, token.StarEq: true, token.SlashEq: true, token.PercentEq: true,
	token.PlusEq: true, token.MinusEq: true, token.ShlEq: true, token.ShrEq: true,
	token.AmpEq: true, token.PipeEq: true, token.CaretEq: true,
}

// parseAssignExpr parses "conditional-expression" or
// "unary-expression assignment-operator assignment-expression" (spec
// §4.6): built by parsing the full binary/conditional ladder first and
// reinterpreting the left side as an assignment target if an
// assignment operator follows, the same shortcut most hand-written
// recursive-descent C front ends take instead of a separate
// unary-expression-only left-hand-side production.
func (p *Parser) parseAssignExpr() ast.Expr {
	left := p.parseCondExpr()
	if !assignOps[p.cur().Kind] {
		return left
	}
	op := p.cur().Kind
	pos := p.pos()
	p.advance()
	right := p.parseAssignExpr()
	e := &ast.Assign{Op: op, LHS: left, RHS: right}
	e.P = pos
	p.chk.CheckAssign(e, left, right)
	return e
}

// parseCondExpr parses the ternary "?:" operator over the logical-or
// level and below (spec §4.6).
func (p *Parser) parseCondExpr() ast.Expr {
	cond := p.parseBinaryExpr(1)
	if _, ok := p.accept(token.QMark); !ok {
		return cond
	}
	pos := cond.Pos()
	then := p.parseExpr()
	p.expect(token.Colon, "':'")
	els := p.parseCondExpr()
	e := &ast.Cond{Cond: cond, Then: then, Else: els}
	e.P = pos
	p.chk.CheckCond(e, cond, then, els)
	return e
}

// binaryPrecedence orders the binary operators the way spec §4.6's
// table groups them, from loosest (||) to tightest (* / %). Shift and
// below have no precedence overlap with assignment/comma, which are
// handled by their own dedicated productions above/below this one.
func binaryPrecedence(k token.Kind) int {
	switch k {
	case token.OrOr:
		return 1
	case token.AndAnd:
		return 2
	case token.Pipe:
		return 3
	case token.Caret:
		return 4
	case token.Amp:
		return 5
	case token.Eq, token.Ne:
		return 6
	case token.Lt, token.Gt, token.Le, token.Ge:
		return 7
	case token.Shl, token.Shr:
		return 8
	case token.Plus, token.Minus:
		return 9
	case token.Star, token.Slash, token.Percent:
		return 10
	}
	return -1
}

// parseBinaryExpr implements precedence climbing over the unary level
// (spec §4.6's whole binary-operator table, every row dispatched to
// its own sema rule).
func (p *Parser) parseBinaryExpr(minPrec int) ast.Expr {
	left := p.parseCastExpr()
	for {
		op := p.cur().Kind
		prec := binaryPrecedence(op)
		if prec < minPrec {
			return left
		}
		pos := p.pos()
		p.advance()
		right := p.parseBinaryExpr(prec + 1)
		e := &ast.Binary{Op: op, X: left, Y: right}
		e.P = pos
		p.checkBinaryOp(e, left, right)
		left = e
	}
}

func (p *Parser) checkBinaryOp(e *ast.Binary, x, y ast.Expr) {
	switch e.Op {
	case token.Star, token.Slash, token.Percent:
		p.chk.CheckMulDivMod(e, x, y)
	case token.Plus, token.Minus:
		p.chk.CheckAddSub(e, x, y)
	case token.Shl, token.Shr:
		p.chk.CheckShift(e, x, y)
	case token.Lt, token.Gt, token.Le, token.Ge, token.Eq, token.Ne:
		p.chk.CheckRelational(e, x, y)
	case token.Amp, token.Pipe, token.Caret:
		p.chk.CheckBitwise(e, x, y)
	case token.AndAnd, token.OrOr:
		p.chk.CheckLogical(e, x, y)
	}
}

// isTypeStartAt reports whether the token n positions ahead begins a
// type-name: a type/qualifier keyword, or an identifier currently
// classified as a typedef name (spec §4.4's context-sensitive
// "typedef-name vs identifier" lookup, re-done at every decision
// point since a nested scope can shadow a typedef).
func (p *Parser) isTypeStartAt(n int) bool {
	t := p.peekAt(n)
	if t.Kind == token.Ident {
		return p.scope.IsTypedefName(t.Lexeme)
	}
	switch t.Kind {
	case token.KwVoid, token.KwChar, token.KwShort, token.KwInt, token.KwLong,
		token.KwFloat, token.KwDouble, token.KwSigned, token.KwUnsigned, token.KwBool,
		token.KwComplex, token.KwStruct, token.KwUnion, token.KwEnum,
		token.KwConst, token.KwVolatile, token.KwRestrict, token.KwAtomic:
		return true
	}
	return false
}

// parseCastExpr implements "( type-name ) cast-expression" and the
// compound-literal supplement "( type-name ) { initializer-list }"
// (SPEC_FULL.md §4.4.1), falling back to a plain unary-expression.
func (p *Parser) parseCastExpr() ast.Expr {
	if p.at(token.LParen) && p.isTypeStartAt(1) {
		mk := p.mark()
		pos := p.pos()
		p.advance()
		tn := p.parseTypeName()
		if !p.at(token.RParen) {
			// Not actually a type-name in parens (e.g. a typedef name
			// shadowed inside an unusual expression); back off and parse
			// as an ordinary parenthesized expression instead.
			p.release(mk)
		} else {
			p.advance()
			t := typeNameResolvedType(tn)
			if p.at(token.LBrace) {
				init := p.parseBraceInit(t)
				e := &ast.CompoundLit{TypeName: tn, Init: init}
				e.P = pos
				p.chk.CheckCompoundLiteral(e, t)
				return p.parsePostfixTail(e)
			}
			x := p.parseCastExpr()
			e := &ast.Cast{TypeName: tn, X: x}
			e.P = pos
			p.chk.CheckCast(e, t, x)
			return e
		}
	}
	return p.parseUnaryExpr()
}

// typeNameResolvedType reads the concrete *types.Type off a parsed
// TypeName, whether or not an abstract declarator added pointer/
// array/function layers on top of the base specifier.
func typeNameResolvedType(tn *ast.TypeName) *types.Type {
	if tn.Abstract != nil {
		return tn.Abstract.Type
	}
	return tn.Specifier.Type
}

// parseUnaryExpr implements the prefix operators, sizeof/_Alignof, and
// falls through to postfix-expression (spec §4.6).
func (p *Parser) parseUnaryExpr() ast.Expr {
	pos := p.pos()
	switch p.cur().Kind {
	case token.Amp:
		p.advance()
		x := p.parseCastExpr()
		e := &ast.Unary{Op: token.Amp, X: x}
		e.P = pos
		p.chk.CheckAddr(e, x)
		return e
	case token.Star:
		p.advance()
		x := p.parseCastExpr()
		e := &ast.Unary{Op: token.Star, X: x}
		e.P = pos
		p.chk.CheckDeref(e, x)
		return e
	case token.Plus, token.Minus:
		op := p.cur().Kind
		p.advance()
		x := p.parseCastExpr()
		e := &ast.Unary{Op: op, X: x}
		e.P = pos
		p.chk.CheckUnaryArith(e, x)
		return e
	case token.Tilde:
		p.advance()
		x := p.parseCastExpr()
		e := &ast.Unary{Op: token.Tilde, X: x}
		e.P = pos
		p.chk.CheckBitNot(e, x)
		return e
	case token.Bang:
		p.advance()
		x := p.parseCastExpr()
		e := &ast.Unary{Op: token.Bang, X: x}
		e.P = pos
		p.chk.CheckNot(e, x)
		return e
	case token.Inc, token.Dec:
		op := p.cur().Kind
		p.advance()
		x := p.parseUnaryExpr()
		e := &ast.Unary{Op: op, X: x}
		e.P = pos
		p.chk.CheckIncDec(e, x)
		return e
	case token.KwSizeof:
		p.advance()
		if p.at(token.LParen) && p.isTypeStartAt(1) {
			p.advance()
			tn := p.parseTypeName()
			p.expect(token.RParen, "')'")
			e := &ast.SizeofType{TypeName: tn}
			e.P = pos
			p.chk.CheckSizeofType(e, typeNameResolvedType(tn))
			return p.parsePostfixTail(e)
		}
		x := p.parseUnaryExpr()
		e := &ast.SizeofExpr{X: x}
		e.P = pos
		p.chk.CheckSizeofExpr(e, x)
		return e
	case token.KwAlignof:
		p.advance()
		p.expect(token.LParen, "'('")
		tn := p.parseTypeName()
		p.expect(token.RParen, "')'")
		e := &ast.SizeofType{TypeName: tn}
		e.P = pos
		p.chk.CheckAlignof(e, typeNameResolvedType(tn))
		return e
	}
	return p.parsePostfixExpr()
}

// parsePostfixExpr parses a primary-expression followed by any chain
// of postfix operators (spec §4.6: subscript, call, member access,
// post-increment/decrement).
func (p *Parser) parsePostfixExpr() ast.Expr {
	return p.parsePostfixTail(p.parsePrimaryExpr())
}

func (p *Parser) parsePostfixTail(x ast.Expr) ast.Expr {
	for {
		switch p.cur().Kind {
		case token.LBrack:
			pos := p.pos()
			p.advance()
			idx := p.parseExpr()
			p.expect(token.RBrack, "']'")
			e := &ast.Index{X: x, Index: idx}
			e.P = pos
			p.chk.CheckIndex(e, x, idx)
			x = e
		case token.LParen:
			pos := p.pos()
			p.advance()
			var args []ast.Expr
			if !p.at(token.RParen) {
				for {
					args = append(args, p.parseAssignExpr())
					if _, ok := p.accept(token.Comma); !ok {
						break
					}
				}
			}
			p.expect(token.RParen, "')'")
			e := &ast.Call{Fn: x, Args: args}
			e.P = pos
			p.chk.CheckCall(e, x, args)
			x = e
		case token.Dot, token.Arrow:
			arrow := p.cur().Kind == token.Arrow
			pos := p.pos()
			p.advance()
			name := p.expect(token.Ident, "member name").Lexeme
			e := &ast.Member{X: x, Name: name, Arrow: arrow}
			e.P = pos
			p.chk.CheckMember(e, x, name, arrow)
			x = e
		case token.Inc, token.Dec:
			op := p.cur().Kind
			pos := p.pos()
			p.advance()
			e := &ast.Unary{Op: op, X: x, Postfix: true}
			e.P = pos
			p.chk.CheckIncDec(e, x)
			x = e
		default:
			return x
		}
	}
}

// parsePrimaryExpr implements spec §4.6/§3's scalar, reference, and
// parenthesized-expression forms.
func (p *Parser) parsePrimaryExpr() ast.Expr {
	pos := p.pos()
	t := p.cur()
	switch t.Kind {
	case token.IntLit:
		p.advance()
		v, u, l := parseIntLiteralValue(t.Lexeme)
		e := &ast.IntLit{Text: t.Lexeme, Value: v}
		e.P = pos
		p.chk.CheckIntLit(e, u, l)
		return e
	case token.FloatLit:
		p.advance()
		v, isF := parseFloatLiteralValue(t.Lexeme)
		e := &ast.FloatLit{Text: t.Lexeme, Value: v}
		e.P = pos
		p.chk.CheckFloatLit(e, isF)
		return e
	case token.CharLit:
		p.advance()
		e := &ast.CharLit{Text: t.Lexeme, Value: decodeCharLiteral(t.Lexeme)}
		e.P = pos
		p.chk.CheckCharLit(e)
		return e
	case token.StringLit:
		return p.parseStringLitChain()
	case token.Ident:
		p.advance()
		e := &ast.Ident{Name: t.Lexeme}
		e.P = pos
		id, _, ok := p.scope.Lookup(t.Lexeme)
		if !ok {
			p.errfAt(pos, "use of undeclared identifier %q", t.Lexeme)
			return e
		}
		e.Binding = id
		isObject := !id.IsEnumConst && id.Type != nil && id.Type.Kind != types.Function
		p.chk.CheckIdent(e, id.Type, isObject)
		return e
	case token.LParen:
		p.advance()
		x := p.parseExpr()
		p.expect(token.RParen, "')'")
		return x
	}
	p.errf("expected expression, found %q", t.Lexeme)
	p.advance()
	e := &ast.IntLit{Text: "0", Value: 0}
	e.P = pos
	e.SetResolvedType(types.Basic(types.Int))
	return e
}

// parseStringLitChain consumes one or more adjacent string-literal
// tokens and concatenates them per C99 §6.4.5: each literal's encoding
// prefix is stripped and dropped, its escapes are decoded, and the
// resulting bytes are joined. The result is always typed as a plain
// char array, whatever prefixes the run had; mixed prefixes are not
// diagnosed.
func (p *Parser) parseStringLitChain() ast.Expr {
	pos := p.pos()
	var sb []byte
	for p.at(token.StringLit) {
		_, rest := stripEncodingPrefix(p.cur().Lexeme)
		sb = append(sb, decodeQuoted(rest)...)
		p.advance()
	}
	e := &ast.StringLit{Value: string(sb)}
	e.P = pos
	p.chk.CheckStringLit(e)
	return e
}
