// Package render implements the output assembler (spec.md §4.8): it
// flattens a cite or bibliography entry's final IR into one of the three
// wire output formats, applying layout affixes/delimiters, per-node
// formatting, cluster-mode transforms (author-only, suppress-author,
// composite), and smart-quote/text-case at every Seq boundary a compiled
// <group>/<names>/macro wrapper introduced.
package render

import (
	"strings"

	"github.com/citeproc-go/citeproc/ir"
	"github.com/citeproc-go/citeproc/style"
	"github.com/citeproc-go/citeproc/textproc"
)

// Format selects the wire output format (spec.md §6 "Output formats").
type Format uint8

const (
	Plain Format = iota
	Html
	Rtf
)

func (f Format) String() string {
	switch f {
	case Html:
		return "html"
	case Rtf:
		return "rtf"
	default:
		return "plain"
	}
}

// ParseFormat maps a config string to a Format, defaulting to Plain for an
// unrecognized value.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "html":
		return Html
	case "rtf":
		return Rtf
	default:
		return Plain
	}
}

// Node renders the subtree rooted at id to a formatted string (spec.md
// §4.8). Seq-level delimiter joining happens before affixes/quotes/
// text-case/formatting are applied to the joined result, matching how a
// compiled <group>'s attributes apply to its assembled content rather than
// each child independently.
func Node(a *ir.Arena, id ir.NodeId, f Format, lang string) string {
	n := a.Get(id)
	if n == nil {
		return ""
	}
	switch n.Kind {
	case ir.NodeRendered:
		if n.Rendered == nil {
			return ""
		}
		return escape(n.Rendered.Text, f)
	case ir.NodeYearSuffix:
		if n.YearSuffix == nil {
			return ""
		}
		return escape(n.YearSuffix.Letter, f)
	case ir.NodeNameCounter:
		if n.NameCount == nil {
			return ""
		}
		return escape(itoa(n.NameCount.Count), f)
	case ir.NodeName:
		if n.Name == nil || n.GV == ir.GVMissing {
			return ""
		}
		return escape(n.Name.RenderedText, f)
	case ir.NodeConditionalDisamb:
		if n.Cond == nil {
			return ""
		}
		return Node(a, n.Cond.Selected, f, lang)
	case ir.NodeSeq:
		return renderSeq(a, n, f, lang)
	default:
		return ""
	}
}

func renderSeq(a *ir.Arena, n *ir.Node, f Format, lang string) string {
	if n.Seq == nil {
		return ""
	}
	if n.GV == ir.GVMissing && n.Seq.DroppedGV != nil {
		return ""
	}
	parts := make([]string, 0, len(n.Seq.Children))
	for _, c := range n.Seq.Children {
		if s := Node(a, c, f, lang); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	joined := strings.Join(parts, n.Seq.Delimiter)
	joined = textproc.Apply(textproc.TextCase(n.Seq.TextCase), joined, lang, true)
	if n.Seq.Quotes {
		joined = quoteWrap(joined, f)
	}
	joined = applyAffixes(joined, n.Seq.Affixes)
	return wrapFormatting(joined, n.Seq.Formatting, f)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func applyAffixes(s string, a style.Affixes) string {
	if s == "" {
		return s
	}
	return a.Prefix + s + a.Suffix
}

func quoteWrap(s string, f Format) string {
	switch f {
	case Html:
		return "&#8220;" + s + "&#8221;"
	case Rtf:
		return "\\u8220?" + s + "\\u8221?"
	default:
		return "“" + s + "”"
	}
}

// escape applies the output format's content escaping to a leaf's already
// fully-transformed text (spec.md §6: Html entity-escapes, Rtf escapes
// non-ASCII as \u...?, Plain passes text through with quotes retained).
func escape(s string, f Format) string {
	switch f {
	case Html:
		return htmlEscape(s)
	case Rtf:
		return rtfEscape(s)
	default:
		return s
	}
}

func htmlEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func rtfEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '\\' || r == '{' || r == '}':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r > 127:
			b.WriteString("\\u")
			b.WriteString(itoa(int(r)))
			b.WriteByte('?')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// wrapFormatting wraps already-escaped content in the output format's
// markup for the node's Formatting attributes (spec.md §6's tag/control-
// word lists). Plain strips all formatting.
func wrapFormatting(s string, fm style.Formatting, f Format) string {
	if f == Plain {
		return s
	}
	if fm == (style.Formatting{}) {
		return s
	}
	switch f {
	case Html:
		return wrapHTML(s, fm)
	case Rtf:
		return wrapRTF(s, fm)
	default:
		return s
	}
}

func wrapHTML(s string, fm style.Formatting) string {
	switch fm.FontStyle {
	case "italic", "oblique":
		s = "<i>" + s + "</i>"
	}
	switch fm.FontWeight {
	case "bold":
		s = "<b>" + s + "</b>"
	case "light":
		s = `<span style="font-weight:lighter">` + s + "</span>"
	}
	switch fm.VerticalAlign {
	case "sup":
		s = "<sup>" + s + "</sup>"
	case "sub":
		s = "<sub>" + s + "</sub>"
	}
	switch fm.FontVariant {
	case "small-caps":
		s = `<span style="font-variant:small-caps">` + s + "</span>"
	}
	if fm.TextDecoration == "underline" {
		s = `<span style="text-decoration:underline">` + s + "</span>"
	}
	return s
}

func wrapRTF(s string, fm style.Formatting) string {
	switch fm.FontStyle {
	case "italic", "oblique":
		s = `{\i ` + s + `}`
	}
	switch fm.FontWeight {
	case "bold":
		s = `{\b ` + s + `}`
	}
	switch fm.VerticalAlign {
	case "sup":
		s = `{\super ` + s + `}`
	case "sub":
		s = `{\sub ` + s + `}`
	}
	if fm.FontVariant == "small-caps" {
		s = `{\scaps ` + s + `}`
	}
	if fm.TextDecoration == "underline" {
		s = `{\ul ` + s + `}`
	}
	return s
}
