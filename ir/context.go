package ir

import (
	"github.com/citeproc-go/citeproc/cluster"
	"github.com/citeproc-go/citeproc/locale"
	"github.com/citeproc-go/citeproc/refs"
	"github.com/citeproc-go/citeproc/style"
)

// Context is everything the builder needs to turn one compiled Style
// element tree into IR for one cite against one reference (spec.md §4.4
// "the current RenderContext (reference + position + cite)").
type Context struct {
	Style     *style.Style
	Locale    *locale.Store
	Lang      string
	Reference *refs.Reference

	Cite     cluster.Cite
	Position cluster.CitePosition

	// CitationNumber is this reference's 1-based position in the
	// bibliography's citation-number ordering (spec.md's "citation-number"
	// variable).
	CitationNumber int

	// DisambiguateCount is the virtual escalation counter gen4 increments
	// so is-disambiguate(n) conditions test true at successively higher n
	// (spec.md §4.6.3 gen4).
	DisambiguateCount int

	// YearSuffix is this reference's assigned disambiguation letter, set
	// only after gen3 runs; empty before that.
	YearSuffix string

	// NameExpansion configures how deep the names disambiguation ratchet
	// has advanced for this cite (spec.md §4.6.3 gen1/gen2), applied
	// uniformly to every <names> block encountered while building.
	NameExpansion NameExpansionState

	// SortMode, when true, makes buildNumber/buildDate emit
	// internal/sortframe-tagged frames instead of display-formatted text
	// (spec.md §4.7: sort keys compare numeric/date content by value, not
	// lexically). Set by sortkey.extractMacroKey before building a macro's
	// body; left false for every citation/bibliography render.
	SortMode bool

	macroStack []string
}

// NameExpansionState is the per-cite ratchet configuration consulted while
// rendering every <names> block; disamb mutates a copy of this between
// escalation passes and rebuilds the IR from scratch rather than trying to
// patch already-built Name nodes, since a deeper expansion can change
// et-al collapsing and delimiter placement throughout the block.
type NameExpansionState struct {
	// MinNamesShown raises et-al-use-first to at least this value when > 0
	// (gen1); et-al-min is unchanged.
	MinNamesShown int
	// ForceLongForm renders every name in long form with no initials
	// (gen2's WithFormLong / WithInitializeFalse expansions).
	ForceLongForm bool
}

// pushMacro records a macro name on the recursion-detection stack,
// returning false if it's already present (spec.md §9 "push the macro
// name on a per-thread stack... repeated appearance fails compilation").
func (c *Context) pushMacro(name string) bool {
	for _, m := range c.macroStack {
		if m == name {
			return false
		}
	}
	c.macroStack = append(c.macroStack, name)
	return true
}

func (c *Context) popMacro() {
	c.macroStack = c.macroStack[:len(c.macroStack)-1]
}
