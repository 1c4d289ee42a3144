// Package lexer implements the Scanner component (spec §4.2): it
// consumes a source.Buffer and produces one token.Token at a time,
// handling whitespace/comment skipping, numeric/string/character
// literal recognition, encoding prefixes, and digraphs.
package lexer

import (
	"strings"

	"github.com/qjcg/cfront/internal/diag"
	"github.com/qjcg/cfront/internal/source"
	"github.com/qjcg/cfront/internal/token"
)

// Options configures non-default scanning behavior, following the
// same functional-options/tweaks texture cc.go uses for its Opt type.
type Options struct {
	// Trigraphs is stored on the Scanner but not consulted: "??=" and
	// the other trigraph sequences are never translated.
	Trigraphs bool
}

// Scanner produces tokens from one source.Buffer.
type Scanner struct {
	buf  *source.Buffer
	opt  Options
	diag *diag.Bag

	atLineStart bool
}

// New creates a Scanner over buf.
func New(buf *source.Buffer, d *diag.Bag, opt Options) *Scanner {
	return &Scanner{buf: buf, opt: opt, diag: d, atLineStart: true}
}

func (s *Scanner) pos() token.Position {
	line, col := s.buf.Pos()
	return token.Position{File: s.buf.ReportedName(), Line: line, Column: col}
}

// Scan returns the next token, skipping horizontal whitespace and
// comments and setting the leading-whitespace flag on the next
// non-whitespace token (spec §4.2).
func (s *Scanner) Scan() token.Token {
	leading, sawNewline := s.skipWhitespaceAndComments()
	if sawNewline {
		t := token.Token{Kind: token.Newline, Pos: s.pos(), Hide: token.EmptyHideSet}
		s.atLineStart = true
		return t
	}

	atStart := s.atLineStart
	s.atLineStart = false
	startPos := s.pos()

	c := s.buf.Peek()
	if s.buf.Eof() {
		return token.Token{Kind: token.EOF, Pos: startPos, Hide: token.EmptyHideSet, LeadingSpace: leading, AtLineStart: atStart}
	}

	var t token.Token
	switch {
	case isIdentStart(c):
		t = s.scanIdentifier()
	case isDigit(c) || (c == '.' && isDigit(s.buf.PeekAt(1))):
		t = s.scanNumber()
	case c == '"':
		t = s.scanString("")
	case c == '\'':
		t = s.scanChar("")
	case (c == 'u' || c == 'U' || c == 'L') && s.peekEncodedLiteral():
		t = s.scanEncodedLiteral()
	default:
		t = s.scanPunctuator()
	}
	t.Pos = startPos
	t.LeadingSpace = leading
	t.AtLineStart = atStart
	if t.Hide == nil {
		t.Hide = token.EmptyHideSet
	}
	return t
}

// skipWhitespaceAndComments consumes horizontal whitespace, block
// comments, and line comments. It stops (without consuming) at the
// first newline so Scan can emit it as its own token; it reports
// whether any whitespace/comment was seen and whether the stop was on
// a newline.
func (s *Scanner) skipWhitespaceAndComments() (leading, sawNewline bool) {
	for {
		c := s.buf.Peek()
		switch {
		case c == ' ' || c == '\t' || c == '\v' || c == '\f':
			s.buf.Next()
			leading = true
		case c == '\r':
			s.buf.Next()
		case c == '\n':
			s.buf.Next()
			return leading, true
		case c == '/' && s.buf.PeekAt(1) == '/':
			for !s.buf.Eof() && s.buf.Peek() != '\n' {
				s.buf.Next()
			}
			leading = true
		case c == '/' && s.buf.PeekAt(1) == '*':
			start := s.pos()
			s.buf.Next()
			s.buf.Next()
			closed := false
			for !s.buf.Eof() {
				if s.buf.Peek() == '*' && s.buf.PeekAt(1) == '/' {
					s.buf.Next()
					s.buf.Next()
					closed = true
					break
				}
				s.buf.Next()
			}
			if !closed {
				s.diag.Err(diag.Position{File: start.File, Line: start.Line, Column: start.Column}, "unterminated block comment")
			}
			leading = true
		default:
			return leading, false
		}
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// peekEncodedLiteral reports whether the cursor is at a string/char
// encoding prefix (u, U, L, u8) immediately followed by a quote.
func (s *Scanner) peekEncodedLiteral() bool {
	c := s.buf.Peek()
	if c == 'u' && s.buf.PeekAt(1) == '8' && s.buf.PeekAt(2) == '"' {
		return true
	}
	if (c == 'u' || c == 'U' || c == 'L') && (s.buf.PeekAt(1) == '"' || s.buf.PeekAt(1) == '\'') {
		return true
	}
	return false
}

func (s *Scanner) scanEncodedLiteral() token.Token {
	var prefix string
	if s.buf.Peek() == 'u' && s.buf.PeekAt(1) == '8' {
		prefix = "u8"
		s.buf.Next()
		s.buf.Next()
	} else {
		prefix = string(s.buf.Peek())
		s.buf.Next()
	}
	if s.buf.Peek() == '"' {
		return s.scanString(prefix)
	}
	return s.scanChar(prefix)
}

// scanIdentifier implements the identifier production of spec §4.2:
// [A-Za-z_$][A-Za-z0-9_$]*, plus UCN escapes and high-bit UTF-8
// continuation bytes consumed as identifier-continue characters.
func (s *Scanner) scanIdentifier() token.Token {
	var sb strings.Builder
	for {
		c := s.buf.Peek()
		if c == '\\' && (s.buf.PeekAt(1) == 'u' || s.buf.PeekAt(1) == 'U') {
			sb.WriteByte(s.buf.Next())
			sb.WriteByte(s.buf.Next())
			n := 4
			if sb.String()[sb.Len()-1] == 'U' {
				n = 8
			}
			for i := 0; i < n && isHexDigit(s.buf.Peek()); i++ {
				sb.WriteByte(s.buf.Next())
			}
			continue
		}
		if !isIdentCont(c) {
			break
		}
		sb.WriteByte(s.buf.Next())
	}
	lexeme := sb.String()
	kind := token.Ident
	if kw, ok := token.Keywords[lexeme]; ok {
		kind = kw
	}
	return token.Token{Kind: kind, Lexeme: lexeme}
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// scanNumber implements the greedy pp-number production of spec §4.2:
// a digit, or '.' followed by a digit, then any run of
// [.0-9A-Za-z_] plus exponent sign pairs [eEpP][+-]?. Classification
// into integer vs floating is deferred to the parser/semantic layer,
// per spec, but the scanner records enough to make that cheap: it
// flags the literal Floating if it saw a '.' or an exponent marker.
func (s *Scanner) scanNumber() token.Token {
	var sb strings.Builder
	floating := false
	for {
		c := s.buf.Peek()
		switch {
		case c == '.':
			floating = true
			sb.WriteByte(s.buf.Next())
		case (c == 'e' || c == 'E' || c == 'p' || c == 'P') &&
			(s.buf.PeekAt(1) == '+' || s.buf.PeekAt(1) == '-'):
			floating = true
			sb.WriteByte(s.buf.Next())
			sb.WriteByte(s.buf.Next())
		case isIdentCont(c):
			sb.WriteByte(s.buf.Next())
		default:
			goto done
		}
	}
done:
	lexeme := sb.String()
	if !floating {
		for _, r := range lexeme {
			if r == '.' || r == 'e' || r == 'E' {
				floating = true
			}
		}
	}
	kind := token.IntLit
	if floating {
		kind = token.FloatLit
	}
	return token.Token{Kind: kind, Lexeme: lexeme}
}

// scanString scans a "..." literal with the given encoding prefix
// (already consumed from the input), honoring the escape sequences
// listed in spec §4.2.
func (s *Scanner) scanString(prefix string) token.Token {
	start := s.pos()
	var sb strings.Builder
	sb.WriteString(prefix)
	sb.WriteByte(s.buf.Next()) // opening quote
	for {
		if s.buf.Eof() || s.buf.Peek() == '\n' {
			s.diag.Err(diag.Position{File: start.File, Line: start.Line, Column: start.Column}, "unterminated string literal")
			break
		}
		c := s.buf.Peek()
		if c == '"' {
			sb.WriteByte(s.buf.Next())
			break
		}
		if c == '\\' {
			s.scanEscape(&sb)
			continue
		}
		sb.WriteByte(s.buf.Next())
	}
	return token.Token{Kind: token.StringLit, Lexeme: sb.String()}
}

// scanChar scans a '...' literal with the given encoding prefix.
func (s *Scanner) scanChar(prefix string) token.Token {
	start := s.pos()
	var sb strings.Builder
	sb.WriteString(prefix)
	sb.WriteByte(s.buf.Next()) // opening quote
	for {
		if s.buf.Eof() || s.buf.Peek() == '\n' {
			s.diag.Err(diag.Position{File: start.File, Line: start.Line, Column: start.Column}, "unterminated character literal")
			break
		}
		c := s.buf.Peek()
		if c == '\'' {
			sb.WriteByte(s.buf.Next())
			break
		}
		if c == '\\' {
			s.scanEscape(&sb)
			continue
		}
		sb.WriteByte(s.buf.Next())
	}
	return token.Token{Kind: token.CharLit, Lexeme: sb.String()}
}

// scanEscape consumes one backslash escape sequence (spec §4.2:
// \a \b \f \n \r \t \v \e \\ \' \" \? \xHH+ \[0-7]{1,3} \uHHHH \UHHHHHHHH)
// and appends its raw spelling to sb; the Lexeme keeps escapes in
// source form, decoding them is the semantic checker's job.
func (s *Scanner) scanEscape(sb *strings.Builder) {
	start := s.pos()
	sb.WriteByte(s.buf.Next()) // backslash
	if s.buf.Eof() {
		return
	}
	c := s.buf.Peek()
	switch {
	case strings.ContainsRune(`abfnrtve\'"?`, rune(c)):
		sb.WriteByte(s.buf.Next())
	case c >= '0' && c <= '7':
		for i := 0; i < 3 && s.buf.Peek() >= '0' && s.buf.Peek() <= '7'; i++ {
			sb.WriteByte(s.buf.Next())
		}
	case c == 'x':
		sb.WriteByte(s.buf.Next())
		if !isHexDigit(s.buf.Peek()) {
			s.diag.Err(diag.Position{File: start.File, Line: start.Line, Column: start.Column}, "\\x used with no following hex digits")
		}
		for isHexDigit(s.buf.Peek()) {
			sb.WriteByte(s.buf.Next())
		}
	case c == 'u' || c == 'U':
		sb.WriteByte(s.buf.Next())
		n := 4
		if c == 'U' {
			n = 8
		}
		for i := 0; i < n; i++ {
			if !isHexDigit(s.buf.Peek()) {
				s.diag.Err(diag.Position{File: start.File, Line: start.Line, Column: start.Column}, "incomplete universal character name")
				return
			}
			sb.WriteByte(s.buf.Next())
		}
	default:
		s.diag.Err(diag.Position{File: start.File, Line: start.Line, Column: start.Column}, "unknown escape sequence '\\%c'", c)
		sb.WriteByte(s.buf.Next())
	}
}
