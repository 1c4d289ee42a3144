package cpp

import "github.com/qjcg/cfront/internal/token"

// Macro is one #define'd name, per spec §4.3's "Macro table" record.
type Macro struct {
	Name            string
	IsFunctionLike  bool
	IsVariadic      bool
	Params          []string // parameter names, in order; "__VA_ARGS__" is implicit and not listed here
	Replacement     []token.Token
	IsPredefined    bool
}

// sameDefinition reports whether two macros have an identical
// replacement list and parameter list, the one case spec §4.3 allows
// a #define to redefine an existing macro without error.
func (m *Macro) sameDefinition(other *Macro) bool {
	if m.IsFunctionLike != other.IsFunctionLike || m.IsVariadic != other.IsVariadic {
		return false
	}
	if len(m.Params) != len(other.Params) {
		return false
	}
	for i := range m.Params {
		if m.Params[i] != other.Params[i] {
			return false
		}
	}
	if len(m.Replacement) != len(other.Replacement) {
		return false
	}
	for i := range m.Replacement {
		a, b := m.Replacement[i], other.Replacement[i]
		if a.Kind != b.Kind || a.Lexeme != b.Lexeme || a.LeadingSpace != b.LeadingSpace {
			return false
		}
	}
	return true
}

// MacroTable maps macro names to their definitions.
type MacroTable struct {
	macros map[string]*Macro
}

// NewMacroTable creates an empty table.
func NewMacroTable() *MacroTable {
	return &MacroTable{macros: make(map[string]*Macro)}
}

// Lookup returns the macro bound to name, if any.
func (t *MacroTable) Lookup(name string) (*Macro, bool) {
	m, ok := t.macros[name]
	return m, ok
}

// Define installs m. Redefinition with an identical replacement list
// is allowed silently per spec §4.3. A different redefinition of a
// predefined macro is refused (ok false, nothing installed); a
// different redefinition of any other macro replaces it and reports
// redefinedDifferently, leaving any diagnostic to the caller.
func (t *MacroTable) Define(m *Macro) (ok bool, redefinedDifferently bool) {
	if existing, present := t.macros[m.Name]; present {
		if existing.sameDefinition(m) {
			return true, false
		}
		if existing.IsPredefined {
			return false, true
		}
		t.macros[m.Name] = m
		return true, true
	}
	t.macros[m.Name] = m
	return true, false
}

// Undef removes name's binding unless it is predefined, per spec
// §4.3 ("#undef — remove a macro unless predefined").
func (t *MacroTable) Undef(name string) (removed bool, refusedPredefined bool) {
	m, ok := t.macros[name]
	if !ok {
		return false, false
	}
	if m.IsPredefined {
		return false, true
	}
	delete(t.macros, name)
	return true, false
}

// Defined reports whether name is bound, used to implement the
// "defined NAME" / "defined(NAME)" operator in #if expressions.
func (t *MacroTable) Defined(name string) bool {
	_, ok := t.macros[name]
	return ok
}
