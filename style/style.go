package style

// SortKey is one macro-or-variable + direction pair from a <sort> block
// (spec.md §4.7).
type SortKey struct {
	Macro     string // set iff Variable == ""
	Variable  string // set iff Macro == ""
	Ascending bool
}

// Layout is the shared shape of <citation><layout> and
// <bibliography><layout>.
type Layout struct {
	Formatting Formatting
	Affixes    Affixes
	Delimiter  string
	Elements   []Element
}

// GivenNameDisambiguationRule selects which expansions gen2 (spec.md
// §4.6.3) may try, in order, for a single ambiguous name.
type GivenNameDisambiguationRule uint8

const (
	RuleAllNames GivenNameDisambiguationRule = iota
	RuleAllNamesWithInitials
	RulePrimaryName
	RulePrimaryNameWithInitials
	RuleByCite
)

// Citation is the <citation> element: layout plus the disambiguation
// feature toggles spec.md §4.6 reads.
type Citation struct {
	DisambiguateAddNames        bool
	DisambiguateAddGivenname    bool
	DisambiguateAddYearSuffix   bool
	GivenNameDisambiguationRule GivenNameDisambiguationRule
	NearNoteDistance            int // default 5, spec.md §4.2
	Layout                      Layout
}

// Bibliography is the <bibliography> element.
type Bibliography struct {
	Layout           Layout
	SortKeys         []SortKey
	SecondFieldAlign string // none | flush | margin
	LineSpacing      int
	EntrySpacing     int
	HangingIndent    bool
	SubsequentAuthorSubstitute string
}

// Style is the compiled, validated, typed root (spec.md §4.1 contract:
// compile succeeds only once every macro reference resolves, every
// enumerated attribute is narrowed, and <choose> shapes are legal).
type Style struct {
	Class         string // "in-text" | "note"
	DefaultLocale string
	Version       string

	Citation     *Citation
	Bibliography *Bibliography // nil if the style has none

	// Macros maps a macro name to its body. Resolved once at compile time;
	// ir.Build looks names up here when it hits a TextElement with
	// Source == TextMacro.
	Macros map[string][]Element

	// MacroOrder preserves declaration order, used only for
	// deterministic diagnostics/debug dumps.
	MacroOrder []string

	Features map[string]bool // CSL-M <features> declarations (SPEC_FULL.md §3)
}

// Macro looks up a macro body by name.
func (s *Style) Macro(name string) ([]Element, bool) {
	els, ok := s.Macros[name]
	return els, ok
}
