// Command cfront is the compiler front end's CLI driver (spec §6): it
// wires the Source Reader through the Scanner, Preprocessor, and
// Parser (which drives the Semantic Checker as a side effect of
// reduction), then reports diagnostics and an exit code.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/logutils"

	"github.com/qjcg/cfront/internal/cpp"
	"github.com/qjcg/cfront/internal/diag"
	"github.com/qjcg/cfront/internal/lexer"
	"github.com/qjcg/cfront/internal/parser"
	"github.com/qjcg/cfront/internal/source"
	"github.com/qjcg/cfront/internal/token"
)

// includePaths collects repeated -I flags in the order given.
type includePaths []string

func (p *includePaths) String() string { return strings.Join(*p, ":") }
func (p *includePaths) Set(v string) error {
	*p = append(*p, v)
	return nil
}

// defines collects repeated -D flags in the order given.
type defines []string

func (d *defines) String() string { return strings.Join(*d, ",") }
func (d *defines) Set(v string) error {
	*d = append(*d, v)
	return nil
}

// undefines collects repeated -U flags in the order given.
type undefines []string

func (u *undefines) String() string { return strings.Join(*u, ",") }
func (u *undefines) Set(v string) error {
	*u = append(*u, v)
	return nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("cfront", flag.ContinueOnError)

	var includes includePaths
	var defs defines
	var undefs undefines
	var output string
	var preprocessOnly bool
	var trigraphs bool
	var logLevel string

	fs.Var(&includes, "I", "prepend `path` to the include search list (repeatable)")
	fs.Var(&defs, "D", "define macro `name[=value]` (repeatable)")
	fs.Var(&undefs, "U", "undefine macro `name` (repeatable)")
	fs.StringVar(&output, "o", "", "write output to `file` instead of stdout")
	fs.BoolVar(&preprocessOnly, "E", false, "stop after preprocessing, emit preprocessed source")
	fs.BoolVar(&trigraphs, "trigraphs", false, "accepted but has no effect: trigraphs are not translated")
	fs.StringVar(&logLevel, "log-level", "WARN", "log level: DEBUG, INFO, WARN, ERROR")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	filter := &logutils.LevelFilter{
		Levels:   []logutils.LogLevel{"DEBUG", "INFO", "WARN", "ERROR"},
		MinLevel: logutils.LogLevel(strings.ToUpper(logLevel)),
		Writer:   os.Stderr,
	}
	log.SetOutput(filter)
	log.SetFlags(0)

	rest := fs.Args()
	if len(rest) != 1 {
		fmt.Fprintln(os.Stderr, "usage: cfront [flags] <input>")
		return 2
	}
	input := rest[0]

	quoteSearch := append(includePaths{}, includes...)
	if cpath := os.Getenv("CPATH"); cpath != "" {
		quoteSearch = append(quoteSearch, filepath.SplitList(cpath)...)
	}
	angleSearch := []string{"/usr/include", "/usr/local/include"}

	d := diag.NewBag()

	prep := cpp.New(d, quoteSearch, angleSearch, lexer.Options{Trigraphs: trigraphs})
	for _, spec := range defs {
		defineFromFlag(prep, spec, d)
	}
	for _, name := range undefs {
		if _, refused := prep.Macros().Undef(name); refused {
			log.Printf("[WARN] -U %s: refusing to undefine a predefined macro", name)
		}
	}

	if err := prep.PushFile(input); err != nil {
		fmt.Fprintf(os.Stderr, "cfront: %v\n", err)
		return 1
	}

	out := os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cfront: %v\n", err)
			return 1
		}
		defer f.Close()
		out = f
	}

	if preprocessOnly {
		writePreprocessed(out, prep)
		reportDiagnostics(d)
		return d.ExitCode()
	}

	p := parser.New(prep, d)
	p.ParseTranslationUnit()

	reportDiagnostics(d)
	return d.ExitCode()
}

// defineFromFlag installs one -D NAME[=VALUE] entry, tokenizing the
// replacement text (if any) with the same Scanner the real source
// file is read through so escapes and literals behave identically
// (spec §6: "-D<name>[=<value>] (define macro)").
func defineFromFlag(prep *cpp.Preprocessor, spec string, d *diag.Bag) {
	name := spec
	value := "1"
	if i := strings.IndexByte(spec, '='); i >= 0 {
		name, value = spec[:i], spec[i+1:]
	}

	var repl []token.Token
	if value != "" {
		buf, err := source.Load("<command-line>", strings.NewReader(value), -1)
		if err != nil {
			return
		}
		sc := lexer.New(buf, d, lexer.Options{})
		for {
			t := sc.Scan()
			if t.Kind == token.EOF || t.Kind == token.Newline {
				break
			}
			repl = append(repl, t)
		}
	}

	ok, redefined := prep.Macros().Define(&cpp.Macro{Name: name, Replacement: repl})
	if !ok {
		log.Printf("[WARN] -D %s: refusing to redefine a predefined macro", name)
	} else if redefined {
		log.Printf("[DEBUG] -D %s redefines a prior definition", name)
	}
}

// writePreprocessed drains the preprocessor and re-serializes its
// token stream as text (spec §6 "-E ... emit preprocessed source"),
// starting a new output line whenever a token's file or line differs
// from the previous token's, and otherwise writing a single space
// before a token that had leading whitespace in its source.
func writePreprocessed(out *os.File, prep *cpp.Preprocessor) {
	w := bufio.NewWriter(out)
	defer w.Flush()

	first := true
	lastLine := -1
	lastFile := ""
	for {
		t := prep.Next()
		if t.Kind == token.EOF {
			break
		}
		switch {
		case first:
			first = false
		case t.Pos.File != lastFile || t.Pos.Line != lastLine:
			w.WriteByte('\n')
		case t.LeadingSpace:
			w.WriteByte(' ')
		}
		w.WriteString(t.Lexeme)
		lastFile = t.Pos.File
		lastLine = t.Pos.Line
	}
	w.WriteByte('\n')
}

func reportDiagnostics(d *diag.Bag) {
	for _, item := range d.Items() {
		fmt.Fprintln(os.Stderr, item.String())
	}
}
