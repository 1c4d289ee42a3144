package cpp

import (
	"strconv"
	"strings"

	"github.com/qjcg/cfront/internal/token"
)

// handleDirective consumes one directive line (the leading '#' has
// already been scanned) and applies its effect: #include pushes a new
// fileScanner, #define/#undef mutate the macro table, the conditional
// family pushes/pops condFrame, #line rewrites position reporting,
// #error reports a diagnostic, #pragma is recognized for "once" and
// otherwise warned about and ignored (spec §4.3's directive table).
func (p *Preprocessor) handleDirective(top *fileScanner) {
	line := p.readLine(top)
	if len(line) == 0 {
		return // a bare '#' on its own line is a legal null directive
	}
	kw := line[0]
	rest := line[1:]

	// A directive inside an inactive conditional branch still has to
	// be recognized enough to track nesting, but its effects (other
	// than the conditional stack itself) must not fire.
	switch kw.Lexeme {
	case "if", "ifdef", "ifndef":
		p.pushConditional(kw.Lexeme, rest, top)
		return
	case "elif":
		p.handleElif(rest, kw)
		return
	case "else":
		p.handleElse(kw)
		return
	case "endif":
		p.handleEndif(kw)
		return
	}

	if !p.active() {
		return
	}

	switch kw.Lexeme {
	case "include":
		p.handleInclude(rest, kw, top)
	case "define":
		p.handleDefine(rest, kw)
	case "undef":
		p.handleUndef(rest, kw)
	case "line":
		p.handleLine(rest, kw, top)
	case "error":
		p.diag.Err(toDiagPos(kw.Pos), "#error %s", spellLine(rest))
	case "warning":
		p.diag.Warn(toDiagPos(kw.Pos), "#warning %s", spellLine(rest))
	case "pragma":
		p.handlePragma(rest, top)
	default:
		p.diag.Err(toDiagPos(kw.Pos), "invalid preprocessing directive #%s", kw.Lexeme)
	}
}

func spellLine(line []token.Token) string {
	var sb strings.Builder
	for i, t := range line {
		if i > 0 && t.LeadingSpace {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.Lexeme)
	}
	return sb.String()
}

// pushConditional handles #if, #ifdef, #ifndef.
func (p *Preprocessor) pushConditional(kind string, rest []token.Token, top *fileScanner) {
	parentActive := p.active()
	taken := false
	if parentActive {
		switch kind {
		case "ifdef":
			taken = len(rest) > 0 && p.macros.Defined(rest[0].Lexeme)
		case "ifndef":
			taken = len(rest) > 0 && !p.macros.Defined(rest[0].Lexeme)
		case "if":
			taken = p.evalConstExpr(rest)
		}
	}
	p.conds = append(p.conds, condFrame{
		currentlyTaken: parentActive && taken,
		anyBranchTaken: parentActive && taken,
	})
}

func (p *Preprocessor) handleElif(rest []token.Token, kw token.Token) {
	if len(p.conds) == 0 {
		p.diag.Err(toDiagPos(kw.Pos), "#elif without #if")
		return
	}
	top := &p.conds[len(p.conds)-1]
	if top.sawElse {
		p.diag.Err(toDiagPos(kw.Pos), "#elif after #else")
		return
	}
	grandparentActive := p.grandparentActive()
	if !grandparentActive || top.anyBranchTaken {
		top.currentlyTaken = false
		return
	}
	top.currentlyTaken = p.evalConstExpr(rest)
	if top.currentlyTaken {
		top.anyBranchTaken = true
	}
}

func (p *Preprocessor) handleElse(kw token.Token) {
	if len(p.conds) == 0 {
		p.diag.Err(toDiagPos(kw.Pos), "#else without #if")
		return
	}
	top := &p.conds[len(p.conds)-1]
	if top.sawElse {
		p.diag.Err(toDiagPos(kw.Pos), "#else after #else")
		return
	}
	top.sawElse = true
	grandparentActive := p.grandparentActive()
	top.currentlyTaken = grandparentActive && !top.anyBranchTaken
	if top.currentlyTaken {
		top.anyBranchTaken = true
	}
}

func (p *Preprocessor) handleEndif(kw token.Token) {
	if len(p.conds) == 0 {
		p.diag.Err(toDiagPos(kw.Pos), "#endif without #if")
		return
	}
	p.conds = p.conds[:len(p.conds)-1]
}

// grandparentActive reports whether every conditional frame enclosing
// (but not including) the innermost one is taken — used by
// #elif/#else to decide whether this branch is even reachable.
func (p *Preprocessor) grandparentActive() bool {
	for i := len(p.conds) - 2; i >= 0; i-- {
		if !p.conds[i].currentlyTaken {
			return false
		}
	}
	return true
}

func (p *Preprocessor) handleInclude(rest []token.Token, kw token.Token, top *fileScanner) {
	name, angled, ok := p.parseHeaderName(rest)
	if !ok {
		p.diag.Err(toDiagPos(kw.Pos), "#include expects \"FILENAME\" or <FILENAME>")
		return
	}
	path, found := p.resolveInclude(name, angled, top.dir)
	if !found {
		p.diag.Err(toDiagPos(kw.Pos), "%q file not found", name)
		return
	}
	key := normalizeOnceKey(path)
	if p.once[key] {
		return
	}
	if len(p.stack) >= maxIncludeDepth {
		p.diag.Err(toDiagPos(kw.Pos), "#include nested too deeply")
		return
	}
	if err := p.PushFile(path); err != nil {
		p.diag.Err(toDiagPos(kw.Pos), "cannot open %q: %v", path, err)
	}
}

const maxIncludeDepth = 200

// parseHeaderName recognizes both the raw "<...>" pp-token form (if
// the scanner ever emits it verbatim) and the common case where
// #include's argument already lexed as a normal string literal or a
// run of punctuator/identifier tokens between '<' and '>'.
func (p *Preprocessor) parseHeaderName(rest []token.Token) (name string, angled bool, ok bool) {
	if len(rest) == 0 {
		return "", false, false
	}
	if rest[0].Kind == token.StringLit {
		return unquote(rest[0].Lexeme), false, true
	}
	if rest[0].Kind == token.Lt {
		var sb strings.Builder
		i := 1
		for ; i < len(rest); i++ {
			if rest[i].Kind == token.Gt {
				return sb.String(), true, true
			}
			if i > 1 && rest[i].LeadingSpace {
				sb.WriteByte(' ')
			}
			sb.WriteString(rest[i].Lexeme)
		}
	}
	return "", false, false
}

func unquote(s string) string {
	if len(s) >= 2 {
		return s[1 : len(s)-1]
	}
	return s
}

func (p *Preprocessor) handleDefine(rest []token.Token, kw token.Token) {
	if len(rest) == 0 || rest[0].Kind != token.Ident {
		p.diag.Err(toDiagPos(kw.Pos), "macro name missing")
		return
	}
	name := rest[0].Lexeme
	rest = rest[1:]

	m := &Macro{Name: name}
	if len(rest) > 0 && rest[0].Kind == token.LParen && !rest[0].LeadingSpace {
		m.IsFunctionLike = true
		rest = rest[1:]
		var err string
		m.Params, m.IsVariadic, rest, err = parseParamList(rest)
		if err != "" {
			p.diag.Err(toDiagPos(kw.Pos), "%s", err)
			return
		}
	}
	m.Replacement = rest

	if ok, redefined := p.macros.Define(m); !ok || redefined {
		p.diag.Err(toDiagPos(kw.Pos), "%q redefined incompatibly", name)
	}
}

func parseParamList(rest []token.Token) (params []string, variadic bool, tail []token.Token, errMsg string) {
	if len(rest) > 0 && rest[0].Kind == token.RParen {
		return nil, false, rest[1:], ""
	}
	i := 0
	for {
		if i >= len(rest) {
			return nil, false, nil, "missing ')' in macro parameter list"
		}
		t := rest[i]
		if t.Kind == token.Ellipsis {
			variadic = true
			i++
			if i >= len(rest) || rest[i].Kind != token.RParen {
				return nil, false, nil, "expected ')' after '...'"
			}
			return params, variadic, rest[i+1:], ""
		}
		if t.Kind != token.Ident {
			return nil, false, nil, "expected parameter name"
		}
		params = append(params, t.Lexeme)
		i++
		if i >= len(rest) {
			return nil, false, nil, "missing ')' in macro parameter list"
		}
		if rest[i].Kind == token.RParen {
			return params, false, rest[i+1:], ""
		}
		if rest[i].Kind != token.Comma {
			return nil, false, nil, "expected ',' or ')' in macro parameter list"
		}
		i++
	}
}

func (p *Preprocessor) handleUndef(rest []token.Token, kw token.Token) {
	if len(rest) == 0 || rest[0].Kind != token.Ident {
		p.diag.Err(toDiagPos(kw.Pos), "macro name missing")
		return
	}
	if _, refused := p.macros.Undef(rest[0].Lexeme); refused {
		p.diag.Err(toDiagPos(kw.Pos), "cannot #undef predefined macro %q", rest[0].Lexeme)
	}
}

func (p *Preprocessor) handleLine(rest []token.Token, kw token.Token, top *fileScanner) {
	exp := p.expandClosedTopLevel(rest)
	if len(exp) == 0 || exp[0].Kind != token.IntLit {
		p.diag.Err(toDiagPos(kw.Pos), "#line requires a line number")
		return
	}
	n, err := strconv.Atoi(exp[0].Lexeme)
	if err != nil {
		p.diag.Err(toDiagPos(kw.Pos), "invalid #line number %q", exp[0].Lexeme)
		return
	}
	file := ""
	if len(exp) > 1 && exp[1].Kind == token.StringLit {
		file = unquote(exp[1].Lexeme)
	}
	top.buf.SetLineOverride(n, file)
}

// handlePragma recognizes "once"; any other non-empty pragma is
// reported as a warning and otherwise ignored.
func (p *Preprocessor) handlePragma(rest []token.Token, top *fileScanner) {
	if len(rest) == 1 && rest[0].Lexeme == "once" {
		p.once[normalizeOnceKey(top.buf.File().Name)] = true
		return
	}
	if len(rest) > 0 {
		p.diag.Warn(toDiagPos(rest[0].Pos), "unknown pragma %q ignored", spellLine(rest))
	}
}

// expandClosedTopLevel macro-expands a directive's argument tokens
// (used by #line and #if) using the same engine as the main stream,
// without touching the pending queue of the live top-level expander.
func (p *Preprocessor) expandClosedTopLevel(toks []token.Token) []token.Token {
	return p.exp.expandClosed(toks)
}
