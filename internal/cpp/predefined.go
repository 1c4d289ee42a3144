package cpp

import (
	"fmt"
	"time"

	"github.com/qjcg/cfront/internal/token"
)

func nowDate() string { return time.Now().Format("Jan _2 2006") }
func nowClock() string { return time.Now().Format("15:04:05") }

// definePredefined installs the magic macros spec §4.3 requires to
// exist from the start of translation: __STDC__ and __STDC_VERSION__
// have fixed replacement text, while __FILE__, __LINE__, __DATE__ and
// __TIME__ are computed at the point of expansion (handled by
// expandPredefined) and are only registered here as markers so
// Defined("__FILE__") etc. report true and #undef is refused.
func definePredefined(t *MacroTable) {
	fixed := map[string]string{
		"__STDC__":         "1",
		"__STDC_VERSION__": "199901L",
		"__STDC_HOSTED__":  "1",
	}
	for name, text := range fixed {
		t.Define(&Macro{
			Name:         name,
			IsPredefined: true,
			Replacement:  []token.Token{{Kind: token.IntLit, Lexeme: text}},
		})
	}
	for _, name := range []string{"__FILE__", "__LINE__", "__DATE__", "__TIME__"} {
		t.Define(&Macro{Name: name, IsPredefined: true})
	}
}

// expandPredefined recognizes the four computed predefined macros at
// the moment they are encountered in the token stream and produces
// their replacement token directly, bypassing the normal
// Replacement-list substitution path (they have none). It is wired in
// as the expander's onPredefined hook so both the top-level stream and
// nested argument expansion see identical behavior.
func (p *Preprocessor) expandPredefined(t token.Token) (token.Token, bool) {
	switch t.Lexeme {
	case "__FILE__":
		return token.Token{Kind: token.StringLit, Lexeme: fmt.Sprintf("%q", t.Pos.File), Hide: t.Hide.With(t.Lexeme), LeadingSpace: t.LeadingSpace}, true
	case "__LINE__":
		return token.Token{Kind: token.IntLit, Lexeme: fmt.Sprintf("%d", t.Pos.Line), Hide: t.Hide.With(t.Lexeme), LeadingSpace: t.LeadingSpace}, true
	case "__DATE__":
		return token.Token{Kind: token.StringLit, Lexeme: fmt.Sprintf("%q", p.compileDate()), Hide: t.Hide.With(t.Lexeme), LeadingSpace: t.LeadingSpace}, true
	case "__TIME__":
		return token.Token{Kind: token.StringLit, Lexeme: fmt.Sprintf("%q", p.compileTime()), Hide: t.Hide.With(t.Lexeme), LeadingSpace: t.LeadingSpace}, true
	}
	return token.Token{}, false
}

// compileDate/compileTime return devTime-derived strings when set
// (reproducible test runs), else the real clock value formatted per
// C99's "Mmm dd yyyy" / "hh:mm:ss" (spec §4.3).
func (p *Preprocessor) compileDate() string {
	if p.devTime != "" {
		return p.devTime
	}
	return nowDate()
}

func (p *Preprocessor) compileTime() string {
	if p.devTime != "" {
		return p.devTime
	}
	return nowClock()
}
