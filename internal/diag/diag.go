// Package diag is the single diagnostics channel every other package
// reports through. It wraps github.com/cznic/xc's Report so the
// front end gets position-aware, rate-limited error accumulation
// instead of each package inventing its own.
package diag

import (
	"fmt"

	"github.com/cznic/xc"
)

// Severity classifies a Diagnostic.
type Severity int

const (
	Warning Severity = iota
	Error
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Fatal:
		return "fatal error"
	default:
		return "diagnostic"
	}
}

// Position is a minimal, package-independent source location. It is
// kept separate from internal/token.Position to avoid an import cycle
// (diag is imported by nearly everything).
type Position struct {
	File   string
	Line   int
	Column int
}

func (p Position) String() string {
	if p.File == "" {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Diagnostic is one reported problem.
type Diagnostic struct {
	Severity Severity
	Pos      Position
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Pos, d.Severity, d.Message)
}

// Bag accumulates diagnostics for one compile. Error-limiting,
// panic-on-error, and "were there any errors" are delegated to an
// xc.Report, the same machinery cznic/cc's own lexer/parser report
// through (ErrLimit, PanicOnError, Errors); items only keeps the
// position/severity/message triples needed to print each diagnostic,
// since xc.Report itself exposes no way to walk its accumulated
// errors one at a time.
type Bag struct {
	report *xc.Report
	items  []Diagnostic

	// Limit mirrors xc.Report's ErrLimit: the number of Err calls
	// accepted before the report stops accumulating and (depending on
	// the report's own behavior) the translation unit should give up.
	// Zero means "use the Report's default." Assigned straight to
	// report.ErrLimit on every Err call, so setting it after NewBag
	// still takes effect.
	Limit int

	// PanicOnError mirrors xc.Report's own PanicOnError: when set,
	// report.Err panics immediately, the same as cznic/cc's
	// CrashOnError option.
	PanicOnError bool

	fatal bool
}

// NewBag creates an empty diagnostics bag backed by a fresh xc.Report.
func NewBag() *Bag {
	return &Bag{report: xc.NewReport()}
}

// Warn records a non-fatal diagnostic. Warnings are not errors in
// xc.Report's terms (report.Err is reserved for Error/Fatal severity,
// matching cznic/cc's own report usage), so they are tracked in items
// only.
func (b *Bag) Warn(pos Position, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	b.items = append(b.items, Diagnostic{Severity: Warning, Pos: pos, Message: msg})
}

// Err records an error diagnostic through the underlying xc.Report,
// which owns the error-limit and panic-on-error behavior (Limit and
// PanicOnError are copied onto it on every call so changes after
// NewBag still apply). It does not stop the current translation unit;
// callers decide whether to resynchronize and continue (spec §7:
// "Parser errors attempt limited resynchronization").
func (b *Bag) Err(pos Position, format string, args ...interface{}) {
	b.syncReport()
	msg := fmt.Sprintf(format, args...)
	b.items = append(b.items, Diagnostic{Severity: Error, Pos: pos, Message: msg})
	b.report.Err(0, "%s: %s", pos, msg)
}

// Fatalf records a fatal diagnostic and marks the bag stopped; the
// top-level driver should stop emitting further errors but may still
// run to the end of the current declaration for recovery (spec §9).
func (b *Bag) Fatalf(pos Position, format string, args ...interface{}) {
	b.syncReport()
	msg := fmt.Sprintf(format, args...)
	b.items = append(b.items, Diagnostic{Severity: Fatal, Pos: pos, Message: msg})
	b.report.Err(0, "%s: %s", pos, msg)
	b.fatal = true
}

func (b *Bag) syncReport() {
	if b.Limit > 0 {
		b.report.ErrLimit = b.Limit
	}
	b.report.PanicOnError = b.PanicOnError
}

// Stopped reports whether a fatal diagnostic has been recorded.
func (b *Bag) Stopped() bool { return b.fatal }

// HasErrors reports whether the underlying xc.Report has accumulated
// any error, read back through Errors(false) (the non-clearing form)
// rather than rescanning items, so the report's own bookkeeping is
// authoritative.
func (b *Bag) HasErrors() bool {
	return b.report.Errors(false) != nil
}

// Items returns the accumulated diagnostics, including warnings, in
// report order for display.
func (b *Bag) Items() []Diagnostic { return b.items }

// ExitCode follows spec §6: zero on success, non-zero on any error.
func (b *Bag) ExitCode() int {
	if b.HasErrors() {
		return 1
	}
	return 0
}
