package cpp

import (
	"strings"

	"github.com/qjcg/cfront/internal/diag"
	"github.com/qjcg/cfront/internal/token"
)

const vaArgsName = "__VA_ARGS__"

// expander is the hide-set macro-expansion engine of spec §4.3. It is
// deliberately independent of where raw tokens come from: the
// top-level Preprocessor pulls raw tokens across the whole include
// stack (rawNext), while argument sub-expansion (expandArgument) pulls
// from an already-collected, closed token slice. Both cases need the
// identical algorithm, so both are built on this one type.
type expander struct {
	macros  *MacroTable
	diag    *diag.Bag
	pending []token.Token
	pullRaw func() token.Token // returns an EOF-kind token when exhausted

	onPredefined func(token.Token) (token.Token, bool)
}

func (e *expander) pull() token.Token {
	if len(e.pending) > 0 {
		t := e.pending[0]
		e.pending = e.pending[1:]
		return t
	}
	return e.pullRaw()
}

func (e *expander) pushPending(seq []token.Token) {
	e.pending = append(append([]token.Token{}, seq...), e.pending...)
}

func (e *expander) peekNonExpanded() token.Token {
	t := e.pull()
	e.pending = append([]token.Token{t}, e.pending...)
	return t
}

// next returns the next fully macro-expanded token, or an EOF token
// at the end of this expander's input.
func (e *expander) next() token.Token {
	for {
		t := e.pull()
		if t.Kind == token.EOF {
			return t
		}
		if t.Kind != token.Ident || t.Hide.Has(t.Lexeme) {
			return t
		}

		if e.onPredefined != nil {
			if magic, handled := e.onPredefined(t); handled {
				e.pushPending([]token.Token{magic})
				continue
			}
		}

		m, ok := e.macros.Lookup(t.Lexeme)
		if !ok {
			return t
		}

		if m.IsFunctionLike {
			nxt := e.peekNonExpanded()
			if nxt.Kind != token.LParen {
				return t
			}
			e.pull() // consume the '(' just peeked
			args, rparenHide, ok := e.collectArguments(t, m)
			if !ok {
				continue
			}
			hide := t.Hide.Intersect(rparenHide).With(m.Name)
			e.pushPending(e.substitute(m, args, hide))
			continue
		}

		hide := t.Hide.With(m.Name)
		seq := make([]token.Token, len(m.Replacement))
		for i, rt := range m.Replacement {
			rt.Hide = hide
			if i == 0 {
				rt.LeadingSpace = t.LeadingSpace
			}
			seq[i] = rt
		}
		e.pushPending(seq)
	}
}

// collectArguments reads a balanced-parenthesis argument list
// (opening '(' already consumed by the caller). Commas at depth 1
// separate arguments; "," "..." passes the remainder to
// __VA_ARGS__ for a variadic macro (spec §4.3 step 3).
func (e *expander) collectArguments(name token.Token, m *Macro) (args map[string][]token.Token, rparenHide *token.HideSet, ok bool) {
	args = make(map[string][]token.Token)

	var current []token.Token
	var collected [][]token.Token
	depth := 1
	for {
		t := e.pull()
		if t.Kind == token.EOF {
			e.diag.Err(toDiagPos(t.Pos), "unterminated argument list invoking macro %q", name.Lexeme)
			return nil, token.EmptyHideSet, false
		}
		if t.Kind == token.LParen {
			depth++
			current = append(current, t)
			continue
		}
		if t.Kind == token.RParen {
			depth--
			if depth == 0 {
				collected = append(collected, current)
				rparenHide = t.Hide
				break
			}
			current = append(current, t)
			continue
		}
		if t.Kind == token.Comma && depth == 1 && !(m.IsVariadic && len(collected) >= len(m.Params)) {
			collected = append(collected, current)
			current = nil
			continue
		}
		current = append(current, t)
	}

	if len(m.Params) == 0 && !m.IsVariadic && len(collected) == 1 && len(collected[0]) == 0 {
		collected = nil
	}

	if !m.IsVariadic && len(collected) != len(m.Params) {
		e.diag.Err(toDiagPos(name.Pos), "macro %q requires %d arguments, %d given", name.Lexeme, len(m.Params), len(collected))
		return nil, token.EmptyHideSet, false
	}
	if m.IsVariadic && len(collected) < len(m.Params) {
		e.diag.Err(toDiagPos(name.Pos), "macro %q requires at least %d arguments, %d given", name.Lexeme, len(m.Params), len(collected))
		return nil, token.EmptyHideSet, false
	}

	for i, pname := range m.Params {
		if i < len(collected) {
			args[pname] = collected[i]
		} else {
			args[pname] = nil
		}
	}
	if m.IsVariadic {
		var rest []token.Token
		for i := len(m.Params); i < len(collected); i++ {
			if i > len(m.Params) {
				rest = append(rest, token.Token{Kind: token.Comma, Lexeme: ","})
			}
			rest = append(rest, collected[i]...)
		}
		args[vaArgsName] = rest
	}
	return args, rparenHide, true
}

// substitute implements the per-occurrence substitution rules of spec
// §4.3 step 3: "#P" stringizes, "A ## B" pastes unexpanded operands,
// bare P substitutes the fully-expanded argument, anything else is
// emitted unchanged.
func (e *expander) substitute(m *Macro, args map[string][]token.Token, hide *token.HideSet) []token.Token {
	isParam := func(name string) ([]token.Token, bool) {
		a, ok := args[name]
		return a, ok
	}

	var out []token.Token
	repl := m.Replacement
	for i := 0; i < len(repl); i++ {
		t := repl[i]

		if t.Kind == token.Hash && i+1 < len(repl) {
			if arg, ok := isParam(repl[i+1].Lexeme); ok {
				s := stringize(arg)
				s.LeadingSpace = t.LeadingSpace
				out = append(out, s)
				i++
				continue
			}
			e.diag.Err(toDiagPos(t.Pos), "'#' is not followed by a macro parameter")
		}

		if t.Kind == token.HashHash {
			var rhs []token.Token
			if i+1 < len(repl) {
				if arg, ok := isParam(repl[i+1].Lexeme); ok {
					rhs = arg
				} else {
					rhs = []token.Token{repl[i+1]}
				}
				i++
			}
			at := len(out) - 1
			out = pasteOnto(out, rhs)
			if at >= 0 && len(rhs) > 0 && out[at].Kind == token.EOF {
				e.diag.Err(toDiagPos(t.Pos), "pasting %q does not give a valid preprocessing token", out[at].Lexeme)
			}
			continue
		}

		if arg, ok := isParam(t.Lexeme); ok {
			followedByPaste := i+1 < len(repl) && repl[i+1].Kind == token.HashHash
			if followedByPaste {
				out = append(out, arg...)
				continue
			}
			expanded := e.expandClosed(arg)
			for j, et := range expanded {
				if j == 0 {
					et.LeadingSpace = t.LeadingSpace
				}
				out = append(out, et)
			}
			continue
		}

		out = append(out, t)
	}

	for i := range out {
		out[i].Hide = hide
	}
	return out
}

// expandClosed fully macro-expands a self-contained (already balanced)
// token slice — used for a bare parameter occurrence's fully-expanded
// substitution — by running a nested instance of the same engine over
// just those tokens.
func (e *expander) expandClosed(toks []token.Token) []token.Token {
	if len(toks) == 0 {
		return nil
	}
	sub := &expander{
		macros:       e.macros,
		diag:         e.diag,
		onPredefined: e.onPredefined,
		pending:      append([]token.Token{}, toks...),
		pullRaw:      func() token.Token { return token.Token{Kind: token.EOF, Hide: token.EmptyHideSet} },
	}
	var out []token.Token
	for {
		t := sub.next()
		if t.Kind == token.EOF {
			break
		}
		out = append(out, t)
	}
	return out
}

// pasteOnto implements "A ## B": the last token of lhs and the first
// token of rhs are concatenated into a single new token; an empty
// operand on either side is dropped and the other operand emitted
// alone, per spec §4.3.
func pasteOnto(lhs, rhs []token.Token) []token.Token {
	if len(lhs) == 0 {
		return rhs
	}
	if len(rhs) == 0 {
		return lhs
	}
	last := lhs[len(lhs)-1]
	first := rhs[0]
	pasted := pasteTokens(last, first)
	out := append([]token.Token{}, lhs[:len(lhs)-1]...)
	out = append(out, pasted)
	out = append(out, rhs[1:]...)
	return out
}

// pasteTokens concatenates two tokens' spellings and rescans the
// result as a single token; if that does not lex as one valid token
// it is still returned with the concatenated spelling and an EOF
// marker kind, so the caller's diagnostic machinery can flag the
// failed paste, per spec §4.3 ("produces the single token xy if that
// is a valid token, else an error").
func pasteTokens(a, b token.Token) token.Token {
	spelling := a.Lexeme + b.Lexeme
	kind, valid := retokenizeOne(spelling)
	if !valid {
		kind = token.EOF
	}
	return token.Token{Kind: kind, Lexeme: spelling, LeadingSpace: a.LeadingSpace}
}

// stringize implements "#P": the parameter's unexpanded spelling,
// with whitespace between tokens collapsed to a single space and '"'
// and '\\' escaped, per spec §4.3.
func stringize(arg []token.Token) token.Token {
	var sb strings.Builder
	for i, t := range arg {
		if i > 0 && t.LeadingSpace {
			sb.WriteByte(' ')
		}
		if t.Kind == token.StringLit || t.Kind == token.CharLit {
			sb.WriteString(escapeForStringize(t.Lexeme))
		} else {
			sb.WriteString(t.Lexeme)
		}
	}
	return token.Token{Kind: token.StringLit, Lexeme: `"` + sb.String() + `"`}
}

func escapeForStringize(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}
