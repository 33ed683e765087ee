package style

import (
	"encoding/xml"
	"io"
	"strings"
)

// rawNode is a byte-span-annotated XML element, the intermediate form
// between encoding/xml's token stream and the typed Element tree. Spans
// make it possible to anchor a Diagnostic precisely (spec.md §4.1), which
// is why this package doesn't hand xml.Decoder straight to
// xml.Unmarshal-style struct tags the way a generic XML consumer would.
type rawNode struct {
	name     string
	attrs    map[string]string
	children []*rawNode
	text     strings.Builder
	span     Span
}

func (n *rawNode) attr(name string) (string, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

func (n *rawNode) attrOr(name, def string) string {
	if v, ok := n.attrs[name]; ok {
		return v
	}
	return def
}

func (n *rawNode) boolAttr(name string, def bool) bool {
	v, ok := n.attrs[name]
	if !ok {
		return def
	}
	return v == "true"
}

func (n *rawNode) intAttr(name string, def int) int {
	v, ok := n.attrs[name]
	if !ok {
		return def
	}
	var out int
	for _, r := range v {
		if r < '0' || r > '9' {
			return def
		}
		out = out*10 + int(r-'0')
	}
	return out
}

// childrenNamed returns direct children with the given tag name, in document order.
func (n *rawNode) childrenNamed(name string) []*rawNode {
	var out []*rawNode
	for _, c := range n.children {
		if c.name == name {
			out = append(out, c)
		}
	}
	return out
}

func (n *rawNode) firstChildNamed(name string) (*rawNode, bool) {
	for _, c := range n.children {
		if c.name == name {
			return c, true
		}
	}
	return nil, false
}

// parseXML tokenizes the source into a rawNode tree rooted at the document
// element (<style>), recording each element's byte span via
// xml.Decoder.InputOffset, which is only meaningful because we read token
// by token rather than unmarshalling into Go structs directly.
func parseXML(src string) (*rawNode, error) {
	dec := xml.NewDecoder(strings.NewReader(src))
	var root *rawNode
	var stack []*rawNode

	for {
		startOffset := int(dec.InputOffset())
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			node := &rawNode{
				name:  t.Name.Local,
				attrs: map[string]string{},
				span:  Span{Start: startOffset},
			}
			for _, a := range t.Attr {
				node.attrs[a.Name.Local] = a.Value
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, node)
			}
			stack = append(stack, node)
			if root == nil {
				root = node
			}
		case xml.EndElement:
			if len(stack) == 0 {
				continue
			}
			node := stack[len(stack)-1]
			node.span.End = int(dec.InputOffset())
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		}
	}
	if root == nil {
		return nil, io.ErrUnexpectedEOF
	}
	return root, nil
}
