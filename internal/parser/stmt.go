package parser

import (
	"github.com/qjcg/cfront/internal/ast"
	"github.com/qjcg/cfront/internal/scope"
	"github.com/qjcg/cfront/internal/token"
)

// isDeclStart reports whether the token n positions ahead begins a
// declaration rather than an expression-statement: either something
// isTypeStartAt already recognizes, or a storage-class/function
// specifier keyword that can introduce a declaration with no explicit
// type (defaulting to int, spec §4.4's "declarations combine...").
func (p *Parser) isDeclStart(n int) bool {
	if p.isTypeStartAt(n) {
		return true
	}
	switch p.peekAt(n).Kind {
	case token.KwTypedef, token.KwExtern, token.KwStatic, token.KwAuto,
		token.KwRegister, token.KwInline, token.KwNoreturn:
		return true
	}
	return false
}

// parseBlockItems parses the "{ ... }" body of a compound statement in
// the scope the caller has already pushed (spec §4.4): a function
// definition's body shares its parameter scope this way, while a
// nested "{ }" gets its own fresh one via parseBlock.
func (p *Parser) parseBlockItems() []ast.Stmt {
	p.expect(token.LBrace, "'{'")
	var items []ast.Stmt
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		p.parseBlockItemInto(&items)
	}
	p.expect(token.RBrace, "'}'")
	return items
}

func (p *Parser) parseBlockItemInto(items *[]ast.Stmt) {
	if p.isDeclStart(0) {
		p.parseLocalDeclaration(items)
		return
	}
	*items = append(*items, p.parseStatement())
}

// parseBlock parses a nested compound statement, pushing its own block
// scope (spec §3 Scope: a Block is its own nested scope).
func (p *Parser) parseBlock() *ast.Block {
	pos := p.pos()
	p.pushScope(scope.BlockScope)
	items := p.parseBlockItems()
	p.popScope()
	b := &ast.Block{Items: items}
	b.P = pos
	return b
}

// parseLocalDeclaration parses one block-scope declaration (spec §4.4
// allows declarations anywhere a statement is allowed, C99-style),
// appending a DeclStmt per declarator directly into items since one
// declaration can introduce several names ("int a, b;").
func (p *Parser) parseLocalDeclaration(items *[]ast.Stmt) {
	pos := p.pos()
	spec := p.parseDeclSpec()

	if _, ok := p.accept(token.Semi); ok {
		d := &ast.TagDecl{Type: spec.Type}
		d.P = pos
		ds := &ast.DeclStmt{Decl: d}
		ds.P = pos
		*items = append(*items, ds)
		return
	}

	name, dpos, ty := p.parseDeclarator(spec.Type)

	if spec.Storage == scope.Typedef {
		p.declareTypedef(name, ty, dpos)
		for {
			if _, ok := p.accept(token.Comma); !ok {
				break
			}
			name, dpos, ty = p.parseDeclarator(spec.Type)
			p.declareTypedef(name, ty, dpos)
		}
		p.expect(token.Semi, "';'")
		d := &ast.TypedefDecl{Name: name, Type: ty}
		d.P = pos
		ds := &ast.DeclStmt{Decl: d}
		ds.P = pos
		*items = append(*items, ds)
		return
	}

	p.declareVar(name, ty, dpos, spec)
	var init ast.Expr
	var initList *ast.InitList
	if _, ok := p.accept(token.Assign); ok {
		init, initList = p.parseInitializer(ty)
	}
	vd := &ast.VarDecl{Spec: spec, Name: name, Init: init, InitList: initList}
	vd.P = dpos
	ds := &ast.DeclStmt{Decl: vd}
	ds.P = dpos
	*items = append(*items, ds)

	for {
		if _, ok := p.accept(token.Comma); !ok {
			break
		}
		n2, pos2, ty2 := p.parseDeclarator(spec.Type)
		p.declareVar(n2, ty2, pos2, spec)
		var init2 ast.Expr
		var initList2 *ast.InitList
		if _, ok := p.accept(token.Assign); ok {
			init2, initList2 = p.parseInitializer(ty2)
		}
		d2 := &ast.VarDecl{Spec: spec, Name: n2, Init: init2, InitList: initList2}
		d2.P = pos2
		ds2 := &ast.DeclStmt{Decl: d2}
		ds2.P = pos2
		*items = append(*items, ds2)
	}
	p.expect(token.Semi, "';'")
}

// parseStatement parses one statement (spec §4.4); control-flow forms
// build an ast.LoopStmt/IfStmt/SwitchStmt directly rather than
// desugaring to goto at parse time, so the checker can still tell a
// for-loop's increment clause from a while-loop's condition.
func (p *Parser) parseStatement() ast.Stmt {
	switch p.cur().Kind {
	case token.LBrace:
		return p.parseBlock()
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile:
		return p.parseWhile()
	case token.KwDo:
		return p.parseDoWhile()
	case token.KwFor:
		return p.parseFor()
	case token.KwSwitch:
		return p.parseSwitch()
	case token.KwCase:
		return p.parseCase()
	case token.KwDefault:
		return p.parseDefault()
	case token.KwGoto:
		return p.parseGoto()
	case token.KwReturn:
		return p.parseReturn()
	case token.KwBreak:
		return p.parseBreak()
	case token.KwContinue:
		return p.parseContinue()
	case token.Semi:
		pos := p.pos()
		p.advance()
		n := &ast.NullStmt{}
		n.P = pos
		return n
	case token.Ident:
		if p.peekAt(1).Kind == token.Colon {
			return p.parseLabeled()
		}
	}
	pos := p.pos()
	x := p.parseExpr()
	p.expect(token.Semi, "';'")
	s := &ast.ExprStmt{X: x}
	s.P = pos
	return s
}

func (p *Parser) parseIf() ast.Stmt {
	pos := p.pos()
	p.advance()
	p.expect(token.LParen, "'('")
	cond := p.parseExpr()
	p.expect(token.RParen, "')'")
	then := p.parseStatement()
	var els ast.Stmt
	if _, ok := p.accept(token.KwElse); ok {
		els = p.parseStatement()
	}
	s := &ast.IfStmt{Cond: cond, Then: then, Else: els}
	s.P = pos
	return s
}

func (p *Parser) parseWhile() ast.Stmt {
	pos := p.pos()
	p.advance()
	p.expect(token.LParen, "'('")
	cond := p.parseExpr()
	p.expect(token.RParen, "')'")
	p.loopDepth++
	body := p.parseStatement()
	p.loopDepth--
	s := &ast.LoopStmt{Kind: ast.WhileLoop, Cond: cond, Body: body}
	s.P = pos
	return s
}

func (p *Parser) parseDoWhile() ast.Stmt {
	pos := p.pos()
	p.advance()
	p.loopDepth++
	body := p.parseStatement()
	p.loopDepth--
	p.expect(token.KwWhile, "'while'")
	p.expect(token.LParen, "'('")
	cond := p.parseExpr()
	p.expect(token.RParen, "')'")
	p.expect(token.Semi, "';'")
	s := &ast.LoopStmt{Kind: ast.DoWhileLoop, Cond: cond, Body: body}
	s.P = pos
	return s
}

// parseFor parses the three-clause "for" loop (spec §4.4): the init
// clause, if a declaration, lives in its own block scope that also
// covers the condition/post/body, per C99 6.8.5p5.
func (p *Parser) parseFor() ast.Stmt {
	pos := p.pos()
	p.advance()
	p.expect(token.LParen, "'('")
	p.pushScope(scope.BlockScope)

	var init ast.Stmt
	switch {
	case p.at(token.Semi):
		p.advance()
	case p.isDeclStart(0):
		var items []ast.Stmt
		p.parseLocalDeclaration(&items)
		switch len(items) {
		case 0:
		case 1:
			init = items[0]
		default:
			b := &ast.Block{Items: items}
			b.P = pos
			init = b
		}
	default:
		ipos := p.pos()
		x := p.parseExpr()
		p.expect(token.Semi, "';'")
		es := &ast.ExprStmt{X: x}
		es.P = ipos
		init = es
	}

	var cond ast.Expr
	if !p.at(token.Semi) {
		cond = p.parseExpr()
	}
	p.expect(token.Semi, "';'")

	var post ast.Expr
	if !p.at(token.RParen) {
		post = p.parseExpr()
	}
	p.expect(token.RParen, "')'")

	p.loopDepth++
	body := p.parseStatement()
	p.loopDepth--
	p.popScope()

	s := &ast.LoopStmt{Kind: ast.ForLoop, Init: init, Cond: cond, Post: post, Body: body}
	s.P = pos
	return s
}

func (p *Parser) parseSwitch() ast.Stmt {
	pos := p.pos()
	p.advance()
	p.expect(token.LParen, "'('")
	tag := p.parseExpr()
	p.expect(token.RParen, "')'")
	p.switchDepth++
	p.caseStack = append(p.caseStack, &caseCollector{seen: map[int64]bool{}})
	body := p.parseStatement()
	p.caseStack = p.caseStack[:len(p.caseStack)-1]
	p.switchDepth--
	s := &ast.SwitchStmt{Tag: tag, Body: body}
	s.P = pos
	return s
}

func (p *Parser) parseCase() ast.Stmt {
	pos := p.pos()
	p.advance()
	x := p.parseCondExpr()
	p.expect(token.Colon, "':'")
	if len(p.caseStack) == 0 {
		p.errfAt(pos, "'case' statement not in switch statement")
	} else {
		top := p.caseStack[len(p.caseStack)-1]
		if v, ok := p.chk.FoldInt(x); ok {
			if top.seen[v] {
				p.errfAt(pos, "duplicate case value")
			}
			top.seen[v] = true
		}
	}
	inner := p.parseStatement()
	s := &ast.CaseStmt{X: x, Stmt: inner}
	s.P = pos
	return s
}

func (p *Parser) parseDefault() ast.Stmt {
	pos := p.pos()
	p.advance()
	p.expect(token.Colon, "':'")
	if len(p.caseStack) == 0 {
		p.errfAt(pos, "'default' statement not in switch statement")
	} else {
		top := p.caseStack[len(p.caseStack)-1]
		if top.sawDefault {
			p.errfAt(pos, "multiple default labels in one switch statement")
		}
		top.sawDefault = true
	}
	inner := p.parseStatement()
	s := &ast.CaseStmt{Stmt: inner}
	s.P = pos
	return s
}

func (p *Parser) parseGoto() ast.Stmt {
	pos := p.pos()
	p.advance()
	name := p.expect(token.Ident, "label name").Lexeme
	p.expect(token.Semi, "';'")
	p.pendingGotos = append(p.pendingGotos, pendingGoto{name: name, pos: pos})
	s := &ast.GotoStmt{Label: name}
	s.P = pos
	return s
}

// parseLabeled parses "identifier ':' statement", declaring the label
// in the enclosing function scope so a goto anywhere in the same
// function can resolve it regardless of block nesting (spec §4.4).
func (p *Parser) parseLabeled() ast.Stmt {
	pos := p.pos()
	name := p.cur().Lexeme
	p.advance()
	p.advance() // ':'
	if fs := p.scope.FunctionScopeOf(); fs != nil {
		l := fs.DeclareLabel(name)
		l.Defined = true
	}
	inner := p.parseStatement()
	s := &ast.LabeledStmt{Label: name, Stmt: inner}
	s.P = pos
	return s
}

func (p *Parser) parseReturn() ast.Stmt {
	pos := p.pos()
	p.advance()
	var x ast.Expr
	if !p.at(token.Semi) {
		x = p.parseExpr()
	}
	p.expect(token.Semi, "';'")
	s := &ast.ReturnStmt{X: x}
	s.P = pos
	return s
}

func (p *Parser) parseBreak() ast.Stmt {
	pos := p.pos()
	p.advance()
	p.expect(token.Semi, "';'")
	if p.loopDepth == 0 && p.switchDepth == 0 {
		p.errfAt(pos, "'break' statement not in loop or switch statement")
	}
	s := &ast.BreakStmt{}
	s.P = pos
	return s
}

func (p *Parser) parseContinue() ast.Stmt {
	pos := p.pos()
	p.advance()
	p.expect(token.Semi, "';'")
	if p.loopDepth == 0 {
		p.errfAt(pos, "'continue' statement not in loop statement")
	}
	s := &ast.ContinueStmt{}
	s.P = pos
	return s
}
