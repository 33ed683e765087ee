package render

import (
	"strings"

	"github.com/citeproc-go/citeproc/cluster"
	"github.com/citeproc-go/citeproc/ir"
	"github.com/citeproc-go/citeproc/style"
)

// CiteIR is one cite's already-disambiguated IR, ready for assembly into a
// cluster's final string.
type CiteIR struct {
	Cite  cluster.Cite
	Arena *ir.Arena
	Root  ir.NodeId
}

// noPrintedForm is spec.md §7's marker for a cluster mode that cannot
// produce output (e.g. composite with no author block found).
const noPrintedForm = "[NO_PRINTED_FORM]"

// missingReference is spec.md §7's marker for a cite whose reference could
// not be found at all.
const missingReference = "???"

// Cluster assembles one cluster's final string from its already-built
// per-cite IR, applying the citation layout's delimiter/affixes and the
// cluster's Mode transform (spec.md §4.8, §3 Cluster.mode).
func Cluster(cites []CiteIR, mode cluster.Mode, suppressFirst int, infix string, layout style.Layout, f Format, lang string) string {
	switch mode {
	case cluster.ModeAuthorOnly:
		return renderAuthorOnly(cites, f, lang)
	case cluster.ModeSuppressAuthor:
		return renderNormal(renderWithSuppression(cites, suppressFirst, f, lang), layout, f, lang)
	case cluster.ModeComposite:
		return renderComposite(cites, suppressFirst, infix, layout, f, lang)
	default:
		return renderNormal(renderFull(cites, f, lang), layout, f, lang)
	}
}

func renderFull(cites []CiteIR, f Format, lang string) []string {
	out := make([]string, 0, len(cites))
	for _, c := range cites {
		out = append(out, renderOneCite(c, citeBody(c, f, lang), f))
	}
	return out
}

func renderWithSuppression(cites []CiteIR, suppressFirst int, f Format, lang string) []string {
	out := make([]string, 0, len(cites))
	for i, c := range cites {
		var body string
		switch {
		case c.Arena == nil:
			body = missingReference
		case i < suppressFirst:
			body = removeAuthorBlock(c.Arena, c.Root, f, lang)
		default:
			body = Node(c.Arena, c.Root, f, lang)
		}
		out = append(out, renderOneCite(c, body, f))
	}
	return out
}

// citeBody renders one cite's body, or the spec.md §7 missing-reference
// marker if its reference could not be found (a nil Arena).
func citeBody(c CiteIR, f Format, lang string) string {
	if c.Arena == nil {
		return missingReference
	}
	return Node(c.Arena, c.Root, f, lang)
}

func renderAuthorOnly(cites []CiteIR, f Format, lang string) string {
	if len(cites) == 0 {
		return ""
	}
	if cites[0].Arena == nil {
		return missingReference
	}
	text := authorBlockText(cites[0].Arena, cites[0].Root, f, lang)
	if text == "" {
		return noPrintedForm
	}
	return applyAffixes(text, style.Affixes{Prefix: cites[0].Cite.Prefix, Suffix: cites[0].Cite.Suffix})
}

// renderComposite assembles "author, infix, remainder" per spec.md §4.8:
// the first cite's author block, the infix, then the rest of the cluster
// with the first cite's author suppressed, exactly as if it were an
// ordinary (non-composite) cluster whose first entry is author-suppressed.
func renderComposite(cites []CiteIR, suppressFirst int, infix string, layout style.Layout, f Format, lang string) string {
	if len(cites) == 0 {
		return ""
	}
	if cites[0].Arena == nil {
		return missingReference
	}
	author := authorBlockText(cites[0].Arena, cites[0].Root, f, lang)
	if author == "" {
		return noPrintedForm
	}
	if suppressFirst <= 0 {
		suppressFirst = 1
	}
	rest := renderWithSuppression(cites, suppressFirst, f, lang)
	var b strings.Builder
	b.WriteString(author)
	if infix != "" {
		b.WriteString(infix)
	}
	b.WriteString(renderNormal(rest, layout, f, lang))
	return b.String()
}

func renderOneCite(c CiteIR, body string, f Format) string {
	if body == "" {
		return ""
	}
	return applyAffixes(body, style.Affixes{Prefix: c.Cite.Prefix, Suffix: c.Cite.Suffix})
}

// renderNormal joins already-rendered, already-affixed cite strings with
// the citation layout's delimiter and wraps the result in the layout's own
// affixes/formatting (spec.md §4.8 "the layout's delimiter, prefix,
// suffix, and formatting").
func renderNormal(parts []string, layout style.Layout, f Format, lang string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	if len(nonEmpty) == 0 {
		return ""
	}
	joined := strings.Join(nonEmpty, layout.Delimiter)
	joined = applyAffixes(joined, layout.Affixes)
	return wrapFormatting(joined, layout.Formatting, f)
}

// authorBlockText finds the first <intext>-marked Seq in document order and
// renders only it; if the style declares no intext block (a plain
// author-date style with no CSL-M extension), it falls back to the first
// rendered Name block, which is the closest equivalent a non-intext style
// has to "the author".
func authorBlockText(a *ir.Arena, root ir.NodeId, f Format, lang string) string {
	if id, ok := findIntext(a, root); ok {
		return Node(a, id, f, lang)
	}
	if id, ok := findFirstName(a, root); ok {
		return Node(a, id, f, lang)
	}
	return ""
}

func findIntext(a *ir.Arena, id ir.NodeId) (ir.NodeId, bool) {
	n := a.Get(id)
	if n == nil {
		return 0, false
	}
	if n.Kind == ir.NodeSeq && n.Seq != nil && n.Seq.IsIntext {
		return id, true
	}
	if n.Kind == ir.NodeSeq && n.Seq != nil {
		for _, c := range n.Seq.Children {
			if found, ok := findIntext(a, c); ok {
				return found, ok
			}
		}
	}
	if n.Kind == ir.NodeConditionalDisamb && n.Cond != nil {
		return findIntext(a, n.Cond.Selected)
	}
	return 0, false
}

func findFirstName(a *ir.Arena, id ir.NodeId) (ir.NodeId, bool) {
	n := a.Get(id)
	if n == nil {
		return 0, false
	}
	switch n.Kind {
	case ir.NodeName:
		if n.GV != ir.GVMissing {
			return id, true
		}
		return 0, false
	case ir.NodeSeq:
		if n.Seq == nil {
			return 0, false
		}
		for _, c := range n.Seq.Children {
			if found, ok := findFirstName(a, c); ok {
				return found, ok
			}
		}
	case ir.NodeConditionalDisamb:
		if n.Cond != nil {
			return findFirstName(a, n.Cond.Selected)
		}
	}
	return 0, false
}

// removeAuthorBlock renders the whole cite but skips the subtree
// findIntext (or, failing that, findFirstName) identifies as the author
// block, used by SuppressAuthor/Composite modes.
func removeAuthorBlock(a *ir.Arena, root ir.NodeId, f Format, lang string) string {
	skip, ok := findIntext(a, root)
	if !ok {
		skip, ok = findFirstName(a, root)
	}
	if !ok {
		return Node(a, root, f, lang)
	}
	return renderSkipping(a, root, skip, f, lang)
}

func renderSkipping(a *ir.Arena, id, skip ir.NodeId, f Format, lang string) string {
	if id == skip {
		return ""
	}
	n := a.Get(id)
	if n == nil {
		return ""
	}
	if n.Kind != ir.NodeSeq {
		return Node(a, id, f, lang)
	}
	if n.Seq == nil {
		return ""
	}
	if n.GV == ir.GVMissing && n.Seq.DroppedGV != nil && !containsID(a, id, skip) {
		return ""
	}
	parts := make([]string, 0, len(n.Seq.Children))
	for _, c := range n.Seq.Children {
		if s := renderSkipping(a, c, skip, f, lang); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	joined := strings.Join(parts, n.Seq.Delimiter)
	joined = applyAffixes(joined, n.Seq.Affixes)
	return wrapFormatting(joined, n.Seq.Formatting, f)
}

func containsID(a *ir.Arena, id, target ir.NodeId) bool {
	if id == target {
		return true
	}
	n := a.Get(id)
	if n == nil || n.Kind != ir.NodeSeq || n.Seq == nil {
		return false
	}
	for _, c := range n.Seq.Children {
		if containsID(a, c, target) {
			return true
		}
	}
	return false
}
