package cpp

import (
	"strings"

	"github.com/qjcg/cfront/internal/diag"
	"github.com/qjcg/cfront/internal/lexer"
	"github.com/qjcg/cfront/internal/source"
	"github.com/qjcg/cfront/internal/token"
)

// retokenizeOne scans spelling as if it were a single source line and
// reports whether it forms exactly one token, and if so, which kind —
// used to validate the result of "A ## B" pasting (spec §4.3).
func retokenizeOne(spelling string) (token.Kind, bool) {
	quiet := diag.NewBag()
	quiet.Limit = 1
	buf, err := source.Load("<paste>", strings.NewReader(spelling), 0)
	if err != nil {
		return token.EOF, false
	}
	sc := lexer.New(buf, quiet, lexer.Options{})
	first := sc.Scan()
	if first.Kind == token.EOF {
		return token.EOF, false
	}
	second := sc.Scan()
	if second.Kind != token.EOF || quiet.HasErrors() {
		return token.EOF, false
	}
	return first.Kind, true
}
