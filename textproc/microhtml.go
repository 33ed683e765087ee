// Package textproc holds the low-level text transforms the spec describes
// as happening "on ingested text" and "after smart-quote detection"
// (spec.md §4.8): micro-HTML parsing, smart-quote normalization, and
// text-case transforms. It has no dependency on refs/ir/render so all three
// can call into it without import cycles.
package textproc

import "strings"

// MicroNodeKind enumerates the tiny HTML subset CSL reference fields accept
// (spec.md GLOSSARY: "Micro-HTML").
type MicroNodeKind uint8

const (
	MicroText MicroNodeKind = iota
	MicroItalic
	MicroBold
	MicroSup
	MicroSub
	MicroSpan // carries a class or inline style in Attr
)

// MicroNode is one node of a parsed micro-HTML fragment.
type MicroNode struct {
	Kind     MicroNodeKind
	Text     string // only meaningful when Kind == MicroText
	Attr     string // span class or style, only meaningful when Kind == MicroSpan
	Children []MicroNode
}

var microTags = map[string]MicroNodeKind{
	"i": MicroItalic, "em": MicroItalic,
	"b": MicroBold, "strong": MicroBold,
	"sup": MicroSup,
	"sub": MicroSub,
}

// ParseMicroHTML parses the accepted subset (<i>, <b>, <sup>, <sub>,
// <span>) out of a reference field value. Unrecognized tags are treated as
// literal text (CSL fields are not general HTML, spec.md GLOSSARY).
func ParseMicroHTML(s string) []MicroNode {
	p := &microParser{src: s}
	return p.parseUntil("")
}

type microParser struct {
	src string
	pos int
}

func (p *microParser) parseUntil(closeTag string) []MicroNode {
	var out []MicroNode
	var textBuf strings.Builder
	flush := func() {
		if textBuf.Len() > 0 {
			out = append(out, MicroNode{Kind: MicroText, Text: textBuf.String()})
			textBuf.Reset()
		}
	}
	for p.pos < len(p.src) {
		if p.src[p.pos] != '<' {
			textBuf.WriteByte(p.src[p.pos])
			p.pos++
			continue
		}
		end := strings.IndexByte(p.src[p.pos:], '>')
		if end < 0 {
			// Unterminated tag: treat the rest as literal text.
			textBuf.WriteString(p.src[p.pos:])
			p.pos = len(p.src)
			break
		}
		tag := p.src[p.pos+1 : p.pos+end]
		if strings.HasPrefix(tag, "/") {
			name := strings.ToLower(strings.TrimSpace(tag[1:]))
			p.pos += end + 1
			if name == closeTag {
				flush()
				return out
			}
			// Mismatched close tag: ignore and keep going.
			continue
		}
		name, attr := splitTagNameAttr(tag)
		lname := strings.ToLower(name)
		kind, known := microTags[lname]
		if lname == "span" {
			known = true
			kind = MicroSpan
		}
		if !known {
			textBuf.WriteString(p.src[p.pos : p.pos+end+1])
			p.pos += end + 1
			continue
		}
		flush()
		p.pos += end + 1
		children := p.parseUntil(lname)
		out = append(out, MicroNode{Kind: kind, Attr: attr, Children: children})
	}
	flush()
	return out
}

func splitTagNameAttr(tag string) (name, attr string) {
	tag = strings.TrimSuffix(strings.TrimSpace(tag), "/")
	i := strings.IndexAny(tag, " \t")
	if i < 0 {
		return strings.TrimSpace(tag), ""
	}
	name = tag[:i]
	rest := strings.TrimSpace(tag[i+1:])
	if idx := strings.Index(rest, `class="`); idx >= 0 {
		rest = rest[idx+len(`class="`):]
		if end := strings.IndexByte(rest, '"'); end >= 0 {
			return name, "class:" + rest[:end]
		}
	}
	if idx := strings.Index(rest, `style="`); idx >= 0 {
		rest = rest[idx+len(`style="`):]
		if end := strings.IndexByte(rest, '"'); end >= 0 {
			return name, "style:" + rest[:end]
		}
	}
	return name, ""
}

// PlainText flattens a parsed micro-HTML fragment back to its text content,
// dropping formatting. Sort-key extraction does not use it; sortkey strips
// markup with its own stripMarkupForSort.
func PlainText(nodes []MicroNode) string {
	var b strings.Builder
	var walk func([]MicroNode)
	walk = func(ns []MicroNode) {
		for _, n := range ns {
			if n.Kind == MicroText {
				b.WriteString(n.Text)
			} else {
				walk(n.Children)
			}
		}
	}
	walk(nodes)
	return b.String()
}
