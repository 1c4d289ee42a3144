// Package parser implements the recursive-descent Parser (spec §4.4):
// it pulls fully macro-expanded tokens from a preprocessor, resolves
// names against a scope tree as it goes (including the typedef-name
// lexer hack declaration grammar needs), composes declarators into
// concrete types, and builds the AST that internal/sema then checks.
package parser

import (
	"github.com/qjcg/cfront/internal/ast"
	"github.com/qjcg/cfront/internal/diag"
	"github.com/qjcg/cfront/internal/scope"
	"github.com/qjcg/cfront/internal/sema"
	"github.com/qjcg/cfront/internal/token"
)

// TokenSource is the pull interface the parser consumes; satisfied by
// *cpp.Preprocessor, which the tests also drive.
type TokenSource interface {
	Next() token.Token
}

// Parser holds the lookahead buffer, current scope, and diagnostics
// bag for one translation unit. Tokens already pulled from src but
// not yet consumed sit in buf; pos indexes the current lookahead
// token, so mark/release (spec §4.4: "a mark/release pair supports
// the one speculative lookahead" the declarator/function-definition
// grammar needs) are plain integer save/restore over that buffer.
type Parser struct {
	src  TokenSource
	diag *diag.Bag
	chk  *sema.Checker

	buf []token.Token
	pos int

	scope *scope.Scope

	tu *ast.TranslationUnit

	// loopDepth/switchDepth let the parser reject a stray break/continue
	// at parse time instead of deferring every case to the checker.
	loopDepth   int
	switchDepth int

	// caseStack collects the case/default values of the innermost
	// switch being parsed, so duplicate-case detection (spec §4.4) can
	// happen without a second tree walk.
	caseStack []*caseCollector

	pendingGotos []pendingGoto
}

type pendingGoto struct {
	name string
	pos  token.Position
}

type caseCollector struct {
	seen      map[int64]bool
	sawDefault bool
}

// New creates a Parser that will read from src, reporting diagnostics
// to d.
func New(src TokenSource, d *diag.Bag) *Parser {
	p := &Parser{src: src, diag: d, tu: ast.NewTranslationUnit(), chk: sema.New(d)}
	p.scope = p.tu.FileScope
	p.fill(0)
	return p
}

func (p *Parser) fill(n int) {
	for len(p.buf) <= n {
		p.buf = append(p.buf, p.src.Next())
	}
}

// cur returns the current lookahead token without consuming it.
func (p *Parser) cur() token.Token {
	p.fill(p.pos)
	return p.buf[p.pos]
}

// peekAt looks n tokens beyond the current one without consuming.
func (p *Parser) peekAt(n int) token.Token {
	p.fill(p.pos + n)
	return p.buf[p.pos+n]
}

func (p *Parser) advance() {
	p.pos++
	p.fill(p.pos)
}

// mark/release implement the speculative-lookahead pair spec §4.4
// calls for: release rewinds the cursor without discarding any tokens
// already pulled from src, so they get re-read from buf next time.
func (p *Parser) mark() int       { return p.pos }
func (p *Parser) release(m int)   { p.pos = m }

func (p *Parser) at(k token.Kind) bool { return p.cur().Kind == k }

func (p *Parser) accept(k token.Kind) (token.Token, bool) {
	if p.cur().Kind == k {
		t := p.cur()
		p.advance()
		return t, true
	}
	return token.Token{}, false
}

// expect consumes a token of kind k, reporting an error and leaving
// the cursor in place (so callers can keep making forward progress)
// if the lookahead does not match.
func (p *Parser) expect(k token.Kind, what string) token.Token {
	if t, ok := p.accept(k); ok {
		return t
	}
	p.errf("expected %s, found %q", what, p.cur().Lexeme)
	return p.cur()
}

func (p *Parser) errf(format string, args ...interface{}) {
	p.diag.Err(toDiagPos(p.cur().Pos), format, args...)
}

func (p *Parser) errfAt(pos token.Position, format string, args ...interface{}) {
	p.diag.Err(toDiagPos(pos), format, args...)
}

func toDiagPos(pos token.Position) diag.Position {
	return diag.Position{File: pos.File, Line: pos.Line, Column: pos.Column}
}

// pos returns the current lookahead's position, used when building an
// AST node so it reports where it started.
func (p *Parser) pos() token.Position { return p.cur().Pos }

// synchronize implements the limited error-resynchronization spec §7
// describes: skip tokens until a statement/declaration boundary (';'
// or '}') so one malformed construct does not cascade into spurious
// errors for everything after it.
func (p *Parser) synchronize() {
	for {
		switch p.cur().Kind {
		case token.EOF, token.RBrace:
			return
		case token.Semi:
			p.advance()
			return
		}
		p.advance()
	}
}

// pushScope/popScope manage the nested scope tree (spec §3 Scope).
func (p *Parser) pushScope(kind scope.Kind) {
	p.scope = scope.New(kind, p.scope)
}

func (p *Parser) popScope() {
	p.scope = p.scope.Parent
}

// ParseTranslationUnit parses an entire file: a sequence of top-level
// declarations and function definitions (spec §4.4 top rule).
func (p *Parser) ParseTranslationUnit() *ast.TranslationUnit {
	for !p.at(token.EOF) {
		d := p.parseExternalDeclaration()
		if d != nil {
			p.tu.TopLevel = append(p.tu.TopLevel, d)
		}
	}
	return p.tu
}
