package parser

import (
	"github.com/qjcg/cfront/internal/ast"
	"github.com/qjcg/cfront/internal/scope"
	"github.com/qjcg/cfront/internal/sema"
	"github.com/qjcg/cfront/internal/token"
	"github.com/qjcg/cfront/internal/types"
)

// specCombo tallies the arithmetic type-specifier keywords seen in one
// declaration-specifier list (spec §4.4's "declaration specifiers
// combine to determine a base type"); explicit holds the type when a
// struct/union/enum specifier or a typedef name was used instead of an
// arithmetic combination, the two being mutually exclusive in valid C.
type specCombo struct {
	voidC, boolC, charC, shortC, intC, longC int
	floatC, doubleC, signedC, unsignedC      int
	complexC                                 int
	explicit                                 *types.Type
}

func hasAnyArith(c specCombo) bool {
	return c.voidC+c.boolC+c.charC+c.shortC+c.intC+c.longC+c.floatC+c.doubleC+c.signedC+c.unsignedC > 0
}

// resolveSpecCombo turns the tallied keyword counts into a concrete
// arithmetic type per C99 6.7.2p2's table, the same ladder cznic/cc's
// own type-specifier resolution walks.
func resolveSpecCombo(p *Parser, c specCombo, pos token.Position) *types.Type {
	if c.explicit != nil {
		return c.explicit
	}
	if c.complexC > 0 {
		p.diag.Warn(toDiagPos(pos), "_Complex/_Imaginary types are not supported; treating as the corresponding real type")
	}
	switch {
	case c.voidC > 0:
		return types.Basic(types.Void)
	case c.boolC > 0:
		return types.Basic(types.Bool)
	case c.charC > 0:
		switch {
		case c.signedC > 0:
			return types.Basic(types.SChar)
		case c.unsignedC > 0:
			return types.Basic(types.UChar)
		default:
			return types.Basic(types.Char)
		}
	case c.shortC > 0:
		if c.unsignedC > 0 {
			return types.Basic(types.UShort)
		}
		return types.Basic(types.Short)
	case c.longC >= 2:
		if c.unsignedC > 0 {
			return types.Basic(types.ULongLong)
		}
		return types.Basic(types.LongLong)
	case c.longC == 1:
		if c.doubleC > 0 {
			return types.Basic(types.LongDouble)
		}
		if c.unsignedC > 0 {
			return types.Basic(types.ULong)
		}
		return types.Basic(types.Long)
	case c.doubleC > 0:
		return types.Basic(types.Double)
	case c.floatC > 0:
		return types.Basic(types.Float)
	case c.unsignedC > 0:
		return types.Basic(types.UInt)
	default:
		return types.Basic(types.Int)
	}
}

// parseTypeQualifierList consumes any run of const/volatile/restrict
// (and _Atomic, accepted but not modeled as a distinct qualifier bit).
func (p *Parser) parseTypeQualifierList() (cnst, vol, rst bool) {
	for {
		switch p.cur().Kind {
		case token.KwConst:
			cnst = true
			p.advance()
		case token.KwVolatile:
			vol = true
			p.advance()
		case token.KwRestrict:
			rst = true
			p.advance()
		case token.KwAtomic:
			p.advance()
		default:
			return
		}
	}
}

// parseDeclSpec parses a full declaration-specifier list: storage
// class, function specifiers, qualifiers, and the type-specifier
// combination (spec §4.4).
func (p *Parser) parseDeclSpec() *ast.DeclSpec {
	pos := p.pos()
	spec := &ast.DeclSpec{P: pos}
	var combo specCombo
	cnst, vol, rst := false, false, false

loop:
	for {
		switch p.cur().Kind {
		case token.KwTypedef:
			spec.Storage = scope.Typedef
			p.advance()
		case token.KwExtern:
			spec.Storage = scope.Extern
			p.advance()
		case token.KwStatic:
			spec.Storage = scope.Static
			p.advance()
		case token.KwAuto:
			spec.Storage = scope.Auto
			p.advance()
		case token.KwRegister:
			spec.Storage = scope.Register
			p.advance()
		case token.KwInline:
			spec.Inline = true
			p.advance()
		case token.KwNoreturn:
			spec.Noreturn = true
			p.advance()
		case token.KwConst:
			cnst = true
			p.advance()
		case token.KwVolatile:
			vol = true
			p.advance()
		case token.KwRestrict:
			rst = true
			p.advance()
		case token.KwAtomic:
			p.advance()
		case token.KwVoid:
			combo.voidC++
			p.advance()
		case token.KwBool:
			combo.boolC++
			p.advance()
		case token.KwChar:
			combo.charC++
			p.advance()
		case token.KwShort:
			combo.shortC++
			p.advance()
		case token.KwInt:
			combo.intC++
			p.advance()
		case token.KwLong:
			combo.longC++
			p.advance()
		case token.KwFloat:
			combo.floatC++
			p.advance()
		case token.KwDouble:
			combo.doubleC++
			p.advance()
		case token.KwSigned:
			combo.signedC++
			p.advance()
		case token.KwUnsigned:
			combo.unsignedC++
			p.advance()
		case token.KwComplex, token.KwImaginary:
			combo.complexC++
			p.advance()
		case token.KwStruct, token.KwUnion:
			combo.explicit = p.parseStructOrUnion()
		case token.KwEnum:
			combo.explicit = p.parseEnumSpecifier()
		case token.Ident:
			if combo.explicit == nil && !hasAnyArith(combo) && p.scope.IsTypedefName(p.cur().Lexeme) {
				id, _, _ := p.scope.Lookup(p.cur().Lexeme)
				combo.explicit = id.Type
				p.advance()
			} else {
				break loop
			}
		default:
			break loop
		}
	}

	t := resolveSpecCombo(p, combo, pos)
	if cnst || vol || rst {
		t = t.Qualify(cnst, vol, rst)
	}
	spec.Type = t
	return spec
}

// parseStructOrUnion parses a struct-or-union-specifier (spec §4.5):
// either a reference to an existing/forward tag, or a full member-list
// definition, in which case types.Layout computes offsets once parsing
// of the member list finishes.
func (p *Parser) parseStructOrUnion() *types.Type {
	isUnion := p.cur().Kind == token.KwUnion
	p.advance()

	var tag string
	if t, ok := p.accept(token.Ident); ok {
		tag = t.Lexeme
	}

	if !p.at(token.LBrace) {
		if tag == "" {
			p.errf("expected a tag or '{' after 'struct'/'union'")
			if isUnion {
				return types.NewUnion("")
			}
			return types.NewStruct("")
		}
		if tg, ok := p.scope.LookupTag(tag); ok {
			return tg.Type
		}
		var t *types.Type
		if isUnion {
			t = types.NewUnion(tag)
		} else {
			t = types.NewStruct(tag)
		}
		p.scope.DeclareTag(&scope.Tag{Name: tag, Type: t})
		return t
	}

	var t *types.Type
	if tag != "" {
		if tg, ok := p.scope.LookupTagLocal(tag); ok && !tg.Type.Complete {
			t = tg.Type
		}
	}
	if t == nil {
		if isUnion {
			t = types.NewUnion(tag)
		} else {
			t = types.NewStruct(tag)
		}
		if tag != "" {
			p.scope.DeclareTag(&scope.Tag{Name: tag, Type: t})
		}
	}

	p.expect(token.LBrace, "'{'")
	var specs []types.MemberSpec
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		memberSpec := p.parseDeclSpec()
		for {
			name := ""
			mt := memberSpec.Type
			if !p.at(token.Colon) {
				n, _, dt := p.parseDeclarator(memberSpec.Type)
				name, mt = n, dt
			}
			width := -1
			if _, ok := p.accept(token.Colon); ok {
				w := p.parseCondExpr()
				if v, ok := p.chk.FoldInt(w); ok {
					width = int(v)
				}
			}
			if name == "" && width < 0 && mt != nil && (mt.Kind == types.Struct || mt.Kind == types.Union) {
				// Anonymous struct/union member: its own fields are
				// promoted directly into the enclosing aggregate (a
				// common extension formalized by C11 6.7.2.1p13).
				specs = append(specs, flattenAnonymousMember(mt)...)
			} else {
				specs = append(specs, types.MemberSpec{Name: name, Type: mt, BitWidth: width})
			}
			if _, ok := p.accept(token.Comma); !ok {
				break
			}
		}
		p.expect(token.Semi, "';'")
	}
	p.expect(token.RBrace, "'}'")
	types.Layout(t, specs)
	return t
}

func flattenAnonymousMember(agg *types.Type) []types.MemberSpec {
	specs := make([]types.MemberSpec, 0, len(agg.Fields))
	for _, f := range agg.Fields {
		width := -1
		if f.IsBitfield {
			width = f.BitWidth
		}
		specs = append(specs, types.MemberSpec{Name: f.Name, Type: f.Type, BitWidth: width})
	}
	return specs
}

// parseEnumSpecifier parses an enum-specifier (spec §4.5): each
// enumerator is constant-folded immediately via sema.Checker.FoldInt so
// a later enumerator can reference an earlier one.
func (p *Parser) parseEnumSpecifier() *types.Type {
	p.advance()
	var tag string
	if t, ok := p.accept(token.Ident); ok {
		tag = t.Lexeme
	}

	if !p.at(token.LBrace) {
		if tag == "" {
			p.errf("expected a tag or '{' after 'enum'")
			return types.NewEnum("")
		}
		if tg, ok := p.scope.LookupTag(tag); ok {
			return tg.Type
		}
		t := types.NewEnum(tag)
		p.scope.DeclareTag(&scope.Tag{Name: tag, Type: t})
		return t
	}

	t := types.NewEnum(tag)
	if tag != "" {
		p.scope.DeclareTag(&scope.Tag{Name: tag, Type: t})
	}
	p.expect(token.LBrace, "'{'")
	next := int64(0)
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		namePos := p.pos()
		name := p.expect(token.Ident, "enumerator name").Lexeme
		val := next
		if _, ok := p.accept(token.Assign); ok {
			e := p.parseCondExpr()
			if v, ok := p.chk.FoldInt(e); ok {
				val = v
			}
		}
		t.Enumerators = append(t.Enumerators, types.EnumConst{Name: name, Value: val})
		id := &scope.Ident{Name: name, Type: t, IsEnumConst: true, EnumValue: val, Defined: true}
		if ok, _ := p.scope.Declare(id); !ok {
			p.errfAt(namePos, "redefinition of %q", name)
		}
		next = val + 1
		if _, ok := p.accept(token.Comma); !ok {
			break
		}
	}
	p.expect(token.RBrace, "'}'")
	t.Complete = true
	return t
}

// parseDeclarator implements spec §4.4's declarator composition: each
// leading '*' wraps base in a pointer layer (outermost qualifiers
// nearest the name bind tightest), then parseDirectDeclarator applies
// whatever array/function suffixes and/or parenthesized nesting follow.
func (p *Parser) parseDeclarator(base *types.Type) (name string, namePos token.Position, ty *types.Type) {
	ty = base
	for {
		if _, ok := p.accept(token.Star); !ok {
			break
		}
		cnst, vol, rst := p.parseTypeQualifierList()
		ty = types.PointerTo(ty)
		if cnst || vol || rst {
			ty = ty.Qualify(cnst, vol, rst)
		}
	}
	return p.parseDirectDeclarator(ty)
}

// looksLikeParamListStart reports whether the '(' the cursor sits on
// opens a parameter-type-list (an empty "()" or one starting with a
// type) rather than a parenthesized nested declarator — the one
// grammar ambiguity spec §4.4's declarator composition must resolve by
// lookahead, since both forms start identically.
func (p *Parser) looksLikeParamListStart() bool {
	if p.peekAt(1).Kind == token.RParen {
		return true
	}
	return p.isTypeStartAt(1)
}

// parseDirectDeclarator implements the "modify_base"/hole technique
// for a parenthesized nested declarator (spec §4.4): a first pass over
// the nested declarator (with a throwaway placeholder type) locates the
// matching ')', after which the real suffix is parsed and spliced in by
// re-parsing the nested declarator a second time against the now-known
// base — the same two-pass trick most recursive-descent C front ends
// use since a declarator's suffix binds to the innermost name, which
// isn't known until the parens are fully skipped.
func (p *Parser) parseDirectDeclarator(base *types.Type) (string, token.Position, *types.Type) {
	if p.at(token.LParen) && !p.looksLikeParamListStart() {
		p.advance()
		startPos := p.mark()
		placeholder := &types.Type{}
		p.parseDeclarator(placeholder)
		p.expect(token.RParen, "')'")
		suffixed := p.parseTypeSuffix(base)
		endPos := p.mark()
		p.release(startPos)
		name, pos, ty := p.parseDeclarator(suffixed)
		p.release(endPos)
		return name, pos, ty
	}

	var name string
	pos := p.pos()
	if t, ok := p.accept(token.Ident); ok {
		name = t.Lexeme
	}
	ty := p.parseTypeSuffix(base)
	return name, pos, ty
}

// parseTypeSuffix parses the array/function suffixes that follow a
// direct-declarator's core (spec §4.4), wrapping base from the
// innermost suffix outward so chained dimensions like "a[3][4]" compose
// as array[3] of array[4] of base.
func (p *Parser) parseTypeSuffix(base *types.Type) *types.Type {
	if p.at(token.LBrack) {
		return p.parseArrayDimension(base)
	}
	if _, ok := p.accept(token.LParen); ok {
		return p.parseFuncParams(base)
	}
	return base
}

func (p *Parser) parseArrayDimension(base *types.Type) *types.Type {
	p.expect(token.LBrack, "'['")
	static_ := false
	cnst, vol, rst := false, false, false
	if _, ok := p.accept(token.KwStatic); ok {
		static_ = true
	}
	c2, v2, r2 := p.parseTypeQualifierList()
	cnst, vol, rst = cnst || c2, vol || v2, rst || r2
	if !static_ {
		if _, ok := p.accept(token.KwStatic); ok {
			static_ = true
		}
	}
	n := -1
	if !p.at(token.RBrack) {
		e := p.parseAssignExpr()
		if v, ok := p.chk.FoldInt(e); ok {
			n = int(v)
		}
	}
	p.expect(token.RBrack, "']'")
	inner := p.parseTypeSuffix(base)
	t := types.ArrayOf(inner, n)
	t.ArrayParamStatic = static_
	t.ArrayParamQualified = cnst || vol || rst
	return t
}

// parseFuncParams parses a parameter-type-list, already past the '('
// (spec §4.4); each named parameter is declared nowhere yet — that
// happens when a function *definition*'s body scope is entered, since
// a plain prototype's parameter names are cosmetic only.
func (p *Parser) parseFuncParams(ret *types.Type) *types.Type {
	var params []*types.Type
	var names []string
	variadic := false

	if p.at(token.KwVoid) && p.peekAt(1).Kind == token.RParen {
		p.advance()
	} else if !p.at(token.RParen) {
		for {
			if _, ok := p.accept(token.Ellipsis); ok {
				variadic = true
				break
			}
			pspec := p.parseDeclSpec()
			name, _, pt := p.parseDeclarator(pspec.Type)
			pt = sema.Decay(pt)
			params = append(params, pt)
			names = append(names, name)
			if _, ok := p.accept(token.Comma); !ok {
				break
			}
		}
	}
	p.expect(token.RParen, "')'")
	return types.FunctionOf(ret, params, names, variadic)
}

// parseTypeName parses a standalone type-name, as used by sizeof,
// casts, and compound literals (spec §4.4).
func (p *Parser) parseTypeName() *ast.TypeName {
	pos := p.pos()
	spec := p.parseDeclSpec()
	tn := &ast.TypeName{P: pos, Specifier: spec}
	if p.at(token.Star) || p.at(token.LParen) || p.at(token.LBrack) {
		_, dpos, ty := p.parseDeclarator(spec.Type)
		tn.Abstract = &ast.Declarator{P: dpos, Type: ty}
	}
	return tn
}

// parseInitializer parses either a scalar initializer expression or a
// brace-enclosed initializer list for an object of type t.
func (p *Parser) parseInitializer(t *types.Type) (ast.Expr, *ast.InitList) {
	if p.at(token.LBrace) {
		return nil, p.parseBraceInit(t)
	}
	return p.parseAssignExpr(), nil
}

// parseBraceInit parses a brace-enclosed initializer list, flattening
// any designators to a concrete member/element path as it goes (spec
// §4.4: "designated initializers are flattened at parse time").
func (p *Parser) parseBraceInit(t *types.Type) *ast.InitList {
	pos := p.pos()
	p.expect(token.LBrace, "'{'")
	list := &ast.InitList{P: pos}
	index := 0
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		path, elemType := p.parseDesignation(t, &index)
		if p.at(token.LBrace) && elemType != nil && elemType.IsAggregate() {
			nested := p.parseBraceInit(elemType)
			list.Items = append(list.Items, ast.InitItem{Path: path, Nested: nested})
		} else {
			v := p.parseAssignExpr()
			list.Items = append(list.Items, ast.InitItem{Path: path, Value: v})
		}
		if _, ok := p.accept(token.Comma); !ok {
			break
		}
	}
	p.expect(token.RBrace, "'}'")
	return list
}

// parseDesignation consumes an optional ".member"/"[index]" designator
// chain (followed by '='), or else assigns the aggregate's next
// member/element in declaration order; *index tracks that implicit
// cursor across calls for one brace level.
func (p *Parser) parseDesignation(t *types.Type, index *int) ([]int, *types.Type) {
	var path []int
	cur := t
	designated := false

	for p.at(token.Dot) || p.at(token.LBrack) {
		designated = true
		if _, ok := p.accept(token.Dot); ok {
			name := p.expect(token.Ident, "member designator name").Lexeme
			if cur == nil || (cur.Kind != types.Struct && cur.Kind != types.Union) {
				p.errf("field designator used for a non-aggregate type")
				break
			}
			idx := -1
			for i, f := range cur.Fields {
				if f.Name == name {
					idx = i
					cur = f.Type
					break
				}
			}
			if idx < 0 {
				p.errf("no member named %q", name)
				break
			}
			path = append(path, idx)
		} else {
			p.expect(token.LBrack, "'['")
			e := p.parseCondExpr()
			n := 0
			if v, ok := p.chk.FoldInt(e); ok {
				n = int(v)
			}
			p.expect(token.RBrack, "']'")
			if cur != nil && cur.Kind == types.Array {
				cur = cur.Base
			}
			path = append(path, n)
		}
	}

	if designated {
		p.expect(token.Assign, "'='")
		return path, cur
	}

	if t != nil && (t.Kind == types.Struct || t.Kind == types.Union) {
		if *index < len(t.Fields) {
			path = []int{*index}
			cur = t.Fields[*index].Type
		}
	} else if t != nil && t.Kind == types.Array {
		path = []int{*index}
		cur = t.Base
	}
	*index++
	return path, cur
}

// parseExternalDeclaration parses one top-level declaration or
// function definition (spec §4.4's top rule). Multi-declarator forms
// ("int a, b;") append every declarator's VarDecl straight into the
// translation unit and return nil, since ParseTranslationUnit only
// conditionally appends a non-nil result.
func (p *Parser) parseExternalDeclaration() ast.Decl {
	pos := p.pos()
	spec := p.parseDeclSpec()

	if _, ok := p.accept(token.Semi); ok {
		d := &ast.TagDecl{Type: spec.Type}
		d.P = pos
		return d
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
		return d
	}

	if ty.Kind == types.Function && p.at(token.LBrace) {
		return p.parseFunctionDefinition(spec, name, dpos, ty)
	}

	p.declareVar(name, ty, dpos, spec)
	init, initList := (ast.Expr)(nil), (*ast.InitList)(nil)
	if _, ok := p.accept(token.Assign); ok {
		init, initList = p.parseInitializer(ty)
	}
	first := &ast.VarDecl{Spec: spec, Name: name, Init: init, InitList: initList}
	first.Binding, _ = p.scope.LookupLocal(name)
	first.P = dpos
	p.tu.TopLevel = append(p.tu.TopLevel, first)

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
		d2.Binding, _ = p.scope.LookupLocal(n2)
		d2.P = pos2
		p.tu.TopLevel = append(p.tu.TopLevel, d2)
	}
	p.expect(token.Semi, "';'")
	return nil
}

func (p *Parser) declareTypedef(name string, ty *types.Type, pos token.Position) {
	if name == "" {
		return
	}
	id := &scope.Ident{Name: name, Type: ty, IsTypedef: true, Defined: true}
	if ok, _ := p.scope.Declare(id); !ok {
		p.errfAt(pos, "redefinition of %q", name)
	}
}

func (p *Parser) declareVar(name string, ty *types.Type, pos token.Position, spec *ast.DeclSpec) {
	if name == "" {
		return
	}
	id := &scope.Ident{Name: name, Type: ty, Storage: spec.Storage, Defined: ty.Kind != types.Function}
	if ok, existing := p.scope.Declare(id); !ok {
		if existing.Type != nil && types.Compatible(existing.Type, ty) {
			p.scope.Replace(id)
		} else {
			p.errfAt(pos, "redefinition of %q", name)
		}
	}
}

// parseFunctionDefinition parses a function body once a declarator has
// resolved to a function type and '{' follows (spec §4.4): parameters
// are declared into the same block scope the body parses in, and any
// goto whose label was never defined in that function is diagnosed
// once the body finishes (spec §4.4's forward label resolution).
func (p *Parser) parseFunctionDefinition(spec *ast.DeclSpec, name string, pos token.Position, ty *types.Type) ast.Decl {
	id := &scope.Ident{Name: name, Type: ty, Storage: spec.Storage, Defined: true}
	if ok, existing := p.scope.Declare(id); !ok {
		if existing.Type != nil && types.Compatible(existing.Type, ty) {
			p.scope.Replace(id)
			id = existing
			id.Defined = true
		} else {
			p.errfAt(pos, "redefinition of %q", name)
		}
	}

	p.pushScope(scope.FunctionScope)
	funcScopeNode := p.scope
	p.pushScope(scope.BlockScope)
	for i, pname := range ty.ParamNames {
		if pname == "" || i >= len(ty.Params) {
			continue
		}
		p.scope.Declare(&scope.Ident{Name: pname, Type: ty.Params[i], Defined: true})
	}

	prevGotos := p.pendingGotos
	p.pendingGotos = nil

	bodyPos := p.pos()
	items := p.parseBlockItems()
	body := &ast.Block{Items: items}
	body.P = bodyPos

	for _, g := range p.pendingGotos {
		if _, ok := funcScopeNode.LookupLabel(g.name); !ok {
			p.errfAt(g.pos, "use of undeclared label %q", g.name)
		}
	}
	labels := funcScopeNode.Labels()
	p.pendingGotos = prevGotos

	p.popScope()
	p.popScope()

	d := &ast.FuncDecl{Spec: spec, Name: name, ParamNames: ty.ParamNames, Body: body, Binding: id, Labels: labels}
	d.P = pos
	return d
}
