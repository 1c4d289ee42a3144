package parser

import (
	"strconv"
	"strings"
)

// parseIntLiteralValue decodes a scanned pp-number that the scanner
// classified as an integer literal (spec §4.2 defers classification
// to this layer): it strips u/U and l/L/ll/LL suffixes, recognizes
// 0x/0b/0 radix prefixes, and reports which suffixes were present so
// sema.CheckIntLit can pick the narrowest conforming type.
func parseIntLiteralValue(lexeme string) (value int64, unsigned, long bool) {
	s := lexeme
	for len(s) > 0 {
		c := s[len(s)-1]
		switch c {
		case 'u', 'U':
			unsigned = true
			s = s[:len(s)-1]
			continue
		case 'l', 'L':
			long = true
			s = s[:len(s)-1]
			continue
		}
		break
	}
	base := 10
	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		base = 16
		s = s[2:]
	case strings.HasPrefix(s, "0b") || strings.HasPrefix(s, "0B"):
		base = 2
		s = s[2:]
	case len(s) > 1 && s[0] == '0':
		base = 8
	}
	if s == "" {
		return 0, unsigned, long
	}
	if v, err := strconv.ParseInt(s, base, 64); err == nil {
		return v, unsigned, long
	}
	if uv, err := strconv.ParseUint(s, base, 64); err == nil {
		return int64(uv), true, long
	}
	return 0, unsigned, long
}

// parseFloatLiteralValue strips the f/F/l/L suffix (if any) and
// parses the remainder as a float64; isFloatSuffix reports whether the
// literal should get type float rather than double (spec §4.6).
func parseFloatLiteralValue(lexeme string) (value float64, isFloatSuffix bool) {
	s := lexeme
	if len(s) > 0 {
		switch s[len(s)-1] {
		case 'f', 'F':
			isFloatSuffix = true
			s = s[:len(s)-1]
		case 'l', 'L':
			s = s[:len(s)-1]
		}
	}
	v, _ := strconv.ParseFloat(s, 64)
	return v, isFloatSuffix
}

// stripEncodingPrefix removes a string/char literal's encoding prefix
// (u8, u, U, L) and returns it along with the remaining quoted body.
func stripEncodingPrefix(lexeme string) (prefix, rest string) {
	for _, p := range []string{"u8", "u", "U", "L"} {
		if strings.HasPrefix(lexeme, p) {
			return p, lexeme[len(p):]
		}
	}
	return "", lexeme
}

// decodeQuoted strips the surrounding quote characters and resolves
// every backslash escape listed in spec §4.2 to its represented byte
// value, returning the decoded content as a Go string.
func decodeQuoted(body string) string {
	if len(body) >= 2 {
		body = body[1 : len(body)-1]
	}
	var sb strings.Builder
	for i := 0; i < len(body); {
		c := body[i]
		if c != '\\' {
			sb.WriteByte(c)
			i++
			continue
		}
		i++
		if i >= len(body) {
			break
		}
		e := body[i]
		switch e {
		case 'a':
			sb.WriteByte(7)
			i++
		case 'b':
			sb.WriteByte(8)
			i++
		case 'f':
			sb.WriteByte(12)
			i++
		case 'n':
			sb.WriteByte('\n')
			i++
		case 'r':
			sb.WriteByte('\r')
			i++
		case 't':
			sb.WriteByte('\t')
			i++
		case 'v':
			sb.WriteByte(11)
			i++
		case 'e':
			sb.WriteByte(27)
			i++
		case '\\', '\'', '"', '?':
			sb.WriteByte(e)
			i++
		case 'x':
			i++
			start := i
			for i < len(body) && isHex(body[i]) {
				i++
			}
			if n, err := strconv.ParseUint(body[start:i], 16, 32); err == nil {
				sb.WriteRune(rune(n))
			}
		case '0', '1', '2', '3', '4', '5', '6', '7':
			start := i
			for i < len(body) && i-start < 3 && body[i] >= '0' && body[i] <= '7' {
				i++
			}
			if n, err := strconv.ParseUint(body[start:i], 8, 32); err == nil {
				sb.WriteRune(rune(n))
			}
		case 'u', 'U':
			n := 4
			if e == 'U' {
				n = 8
			}
			i++
			start := i
			for i < len(body) && i-start < n && isHex(body[i]) {
				i++
			}
			if v, err := strconv.ParseUint(body[start:i], 16, 32); err == nil {
				sb.WriteRune(rune(v))
			}
		default:
			sb.WriteByte(e)
			i++
		}
	}
	return sb.String()
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// decodeCharLiteral decodes a (possibly prefixed) character constant
// to its integer value (spec §4.6: "a character constant has type
// int"); multi-character constants take only the last character's
// value, matching common implementation-defined practice.
func decodeCharLiteral(lexeme string) int64 {
	_, rest := stripEncodingPrefix(lexeme)
	s := decodeQuoted(rest)
	if s == "" {
		return 0
	}
	runes := []rune(s)
	return int64(runes[len(runes)-1])
}
