package render

import (
	"strings"

	"github.com/citeproc-go/citeproc/ir"
	"github.com/citeproc-go/citeproc/style"
)

// Meta mirrors spec.md §6's BibliographyMeta: layout metadata a consumer
// needs to lay the bibliography out itself (this package never does line
// breaking or pagination — spec.md §1 non-goal).
type Meta struct {
	MaxOffset        int
	EntrySpacing     int
	LineSpacing      int
	HangingIndent    bool
	SecondFieldAlign string
}

// MetaFromBibliography extracts a Meta from a compiled Bibliography
// element. MaxOffset is computed by the caller (it depends on rendered
// first-field widths, which only the caller's entries know).
func MetaFromBibliography(b *style.Bibliography, maxOffset int) Meta {
	if b == nil {
		return Meta{}
	}
	return Meta{
		MaxOffset:        maxOffset,
		EntrySpacing:     b.EntrySpacing,
		LineSpacing:      b.LineSpacing,
		HangingIndent:    b.HangingIndent,
		SecondFieldAlign: b.SecondFieldAlign,
	}
}

// Entry renders one bibliography entry from its built IR, applying the
// bibliography layout's delimiter/affixes/formatting (spec.md §4.8).
func Entry(a *ir.Arena, root ir.NodeId, layout style.Layout, f Format, lang string) string {
	body := Node(a, root, f, lang)
	if body == "" {
		return ""
	}
	body = applyAffixes(body, layout.Affixes)
	return wrapFormatting(body, layout.Formatting, f)
}

// FirstFieldWidth returns the rendered width (in runes) of an entry's text
// up to its first delimiter-worthy boundary, used by callers computing
// MaxOffset for second-field-align layouts. A crude but standard heuristic:
// the text before the first occurrence of the layout delimiter.
func FirstFieldWidth(rendered string, layout style.Layout) int {
	if layout.Delimiter == "" {
		return len([]rune(rendered))
	}
	if i := strings.Index(rendered, layout.Delimiter); i >= 0 {
		return len([]rune(rendered[:i]))
	}
	return len([]rune(rendered))
}
