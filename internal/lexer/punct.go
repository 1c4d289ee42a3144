package lexer

import (
	"github.com/qjcg/cfront/internal/diag"
	"github.com/qjcg/cfront/internal/token"
)

// digraphs maps digraph spellings to the primary punctuator they are
// retokenized to (spec §4.2: "digraphs (<: :> <% %> %: %:%:)"). They
// are recognized ahead of the general three/two/one-character
// punctuator scan below since they share a leading character with
// ordinary operators ('<', '%', ':').
var digraphs = []struct {
	spelling string
	kind     token.Kind
}{
	{"%:%:", token.HashHash},
	{"<:", token.LBrack},
	{":>", token.RBrack},
	{"<%", token.LBrace},
	{"%>", token.RBrace},
	{"%:", token.Hash},
}

// threeChar and twoChar are ordered longest-match-first within each
// group; scanPunctuator tries three-character forms, then two, then
// falls back to the single byte.
var threeChar = map[string]token.Kind{
	"<<=": token.ShlEq,
	">>=": token.ShrEq,
	"...": token.Ellipsis,
}

var twoChar = map[string]token.Kind{
	"##": token.HashHash,
	"->": token.Arrow,
	"++": token.Inc,
	"--": token.Dec,
	"<<": token.Shl,
	">>": token.Shr,
	"&&": token.AndAnd,
	"||": token.OrOr,
	"==": token.Eq,
	"!=": token.Ne,
	"<=": token.Le,
	">=": token.Ge,
	"+=": token.PlusEq,
	"-=": token.MinusEq,
	"*=": token.StarEq,
	"/=": token.SlashEq,
	"%=": token.PercentEq,
	"&=": token.AmpEq,
	"|=": token.PipeEq,
	"^=": token.CaretEq,
}

var oneChar = map[byte]token.Kind{
	'(': token.LParen, ')': token.RParen,
	'[': token.LBrack, ']': token.RBrack,
	'{': token.LBrace, '}': token.RBrace,
	',': token.Comma, ';': token.Semi, ':': token.Colon, '?': token.QMark,
	'.': token.Dot,
	'+': token.Plus, '-': token.Minus, '*': token.Star, '/': token.Slash, '%': token.Percent,
	'&': token.Amp, '|': token.Pipe, '^': token.Caret, '~': token.Tilde, '!': token.Bang,
	'=': token.Assign, '<': token.Lt, '>': token.Gt,
	'#': token.Hash,
}

func (s *Scanner) scanPunctuator() token.Token {
	peek3 := s.peekString(3)
	for _, d := range digraphs {
		if len(d.spelling) <= len(peek3) && peek3[:len(d.spelling)] == d.spelling {
			s.advance(len(d.spelling))
			return token.Token{Kind: d.kind, Lexeme: d.spelling}
		}
	}
	if k, ok := threeChar[peek3]; ok && len(peek3) == 3 {
		s.advance(3)
		return token.Token{Kind: k, Lexeme: peek3}
	}
	peek2 := s.peekString(2)
	if k, ok := twoChar[peek2]; ok && len(peek2) == 2 {
		s.advance(2)
		return token.Token{Kind: k, Lexeme: peek2}
	}
	c := s.buf.Peek()
	if k, ok := oneChar[c]; ok {
		s.buf.Next()
		return token.Token{Kind: k, Lexeme: string(c)}
	}

	pos := s.pos()
	s.diag.Err(diag.Position{File: pos.File, Line: pos.Line, Column: pos.Column}, "stray character %q in program", c)
	s.buf.Next()
	return token.Token{Kind: token.EOF, Lexeme: string(c)}
}

// peekString reads up to n lookahead bytes without consuming them. It
// stops early at a byte beyond the buffer's logical end (PeekAt
// clamps those to 0); a literal embedded NUL in source is itself
// invalid C, so treating a 0 byte as "nothing more to match" here is
// safe and keeps multi-character punctuator lookahead simple.
func (s *Scanner) peekString(n int) string {
	b := make([]byte, 0, n)
	for i := 0; i < n; i++ {
		c := s.buf.PeekAt(i)
		if c == 0 {
			break
		}
		b = append(b, c)
	}
	return string(b)
}

func (s *Scanner) advance(n int) {
	for i := 0; i < n; i++ {
		s.buf.Next()
	}
}
