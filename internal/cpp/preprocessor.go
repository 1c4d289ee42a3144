// Package cpp implements the Preprocessor component (spec §4.3): it
// consumes the Scanner's token sequence, expands macros under the
// hide-set discipline, evaluates conditional-inclusion directives,
// and produces a clean token sequence for the Parser to pull from.
package cpp

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/qjcg/cfront/internal/diag"
	"github.com/qjcg/cfront/internal/lexer"
	"github.com/qjcg/cfront/internal/source"
	"github.com/qjcg/cfront/internal/token"
)

// condFrame is one entry of the conditional-inclusion stack (spec
// §4.3: CondFrame{directive-kind, currently-taken, any-branch-taken}).
type condFrame struct {
	currentlyTaken bool
	anyBranchTaken bool
	sawElse        bool
}

// fileScanner pairs a Scanner with the buffer/include-dir it reads so
// the Preprocessor can pop back to the including file's scanner when
// one file runs out.
type fileScanner struct {
	buf  *source.Buffer
	scan *lexer.Scanner
	dir  string
}

// Preprocessor implements the pull-based Preprocessor stage.
type Preprocessor struct {
	diag *diag.Bag

	macros *MacroTable
	exp    *expander

	stack []*fileScanner // top = current file

	quoteSearch []string // -I paths
	angleSearch []string // system paths, searched for both forms (angle skips cwd)

	conds []condFrame

	once map[string]bool // "#pragma once" files, keyed by absolute path

	nextFileID int

	opt lexer.Options

	devTime string // frozen value used for __TIME__/__DATE__ in reproducible test runs, empty to use real clock
}

// New creates a Preprocessor ready to process the given top-level
// file. quotePaths/anglePaths are the -I and builtin system search
// lists (spec §6 "Include search").
func New(d *diag.Bag, quotePaths, anglePaths []string, opt lexer.Options) *Preprocessor {
	p := &Preprocessor{
		diag:        d,
		macros:      NewMacroTable(),
		quoteSearch: quotePaths,
		angleSearch: anglePaths,
		once:        make(map[string]bool),
		opt:         opt,
	}
	definePredefined(p.macros)
	p.exp = &expander{
		macros:       p.macros,
		diag:         d,
		pullRaw:      p.rawNext,
		onPredefined: p.expandPredefined,
	}
	return p
}

// Macros exposes the macro table so the CLI can install -D/-U entries
// before the first Next call.
func (p *Preprocessor) Macros() *MacroTable { return p.macros }

// PushFile opens path and pushes it onto the include stack: the CLI
// uses it for the top-level translation unit, and #include for each
// included file.
func (p *Preprocessor) PushFile(path string) error {
	buf, err := source.Open(path, p.nextFileID)
	if err != nil {
		return err
	}
	p.nextFileID++
	p.stack = append(p.stack, &fileScanner{
		buf:  buf,
		scan: lexer.New(buf, p.diag, p.opt),
		dir:  filepath.Dir(path),
	})
	return nil
}

// PushSource installs text as the top-level translation unit without
// touching the filesystem, used by tests and by any future in-memory
// driver (e.g. a language-server-style "unsaved buffer" front end).
func (p *Preprocessor) PushSource(name, text string) {
	buf, _ := source.Load(name, strings.NewReader(text), p.nextFileID)
	p.nextFileID++
	p.stack = append(p.stack, &fileScanner{
		buf:  buf,
		scan: lexer.New(buf, p.diag, p.opt),
		dir:  ".",
	})
}

// Next returns the next fully macro-expanded token, or an EOF token
// once the top-level file (and every #include it pulled in) is
// exhausted.
func (p *Preprocessor) Next() token.Token {
	return p.exp.next()
}

// rawNext pulls the next content token from the current file's
// scanner (descending into #include'd files and popping back out at
// EOF), processing and consuming any directive lines and filtering
// out Newline tokens and content suppressed by an inactive
// conditional frame. It is the layer below macro expansion.
func (p *Preprocessor) rawNext() token.Token {
	for {
		if len(p.stack) == 0 {
			return token.Token{Kind: token.EOF, Hide: token.EmptyHideSet}
		}
		top := p.stack[len(p.stack)-1]
		t := top.scan.Scan()

		if t.Kind == token.EOF {
			p.stack = p.stack[:len(p.stack)-1]
			if len(p.stack) == 0 && len(p.conds) > 0 {
				p.diag.Err(toDiagPos(t.Pos), "unterminated conditional directive at end of file")
				p.conds = nil
			}
			continue
		}
		if t.Kind == token.Newline {
			continue
		}
		if t.AtLineStart && t.Kind == token.Hash {
			p.handleDirective(top)
			continue
		}
		if !p.active() {
			continue
		}
		return t
	}
}

// active reports whether every enclosing conditional frame is
// currently taken.
func (p *Preprocessor) active() bool {
	for i := len(p.conds) - 1; i >= 0; i-- {
		if !p.conds[i].currentlyTaken {
			return false
		}
	}
	return true
}

func toDiagPos(pos token.Position) diag.Position {
	return diag.Position{File: pos.File, Line: pos.Line, Column: pos.Column}
}

// readLine consumes tokens up to (and including) the next Newline or
// EOF, returning the content tokens in between — used by directive
// handlers that need "the rest of the logical line" (spec §4.3).
func (p *Preprocessor) readLine(top *fileScanner) []token.Token {
	var line []token.Token
	for {
		t := top.scan.Scan()
		if t.Kind == token.Newline || t.Kind == token.EOF {
			return line
		}
		line = append(line, t)
	}
}

// resolveInclude implements spec §6's search order.
func (p *Preprocessor) resolveInclude(name string, angled bool, curDir string) (string, bool) {
	try := func(dir string) (string, bool) {
		full := filepath.Join(dir, name)
		if fileExists(full) {
			return full, true
		}
		return "", false
	}
	if !angled {
		if path, ok := try(curDir); ok {
			return path, true
		}
	}
	for _, dir := range p.quoteSearch {
		if path, ok := try(dir); ok {
			return path, true
		}
	}
	for _, dir := range p.angleSearch {
		if path, ok := try(dir); ok {
			return path, true
		}
	}
	return "", false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// IncludeDepth reports include nesting depth, exposed for
// diagnostics/tests.
func (p *Preprocessor) IncludeDepth() int { return len(p.stack) }

// normalizeOnceKey is split out so tests can reason about "#pragma
// once" bookkeeping without depending on filesystem layout quirks.
func normalizeOnceKey(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
