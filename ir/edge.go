package ir

// EdgeKind tags what a terminal Edge represents. Only EdgeOutput is
// content-bearing text; the rest are symbolic placeholders the
// disambiguation engine's NFA/DFA match on their kind, not their text,
// except that a year-suffix edge also matches on its assigned letter
// (spec.md §3 "Edge stream").
type EdgeKind uint8

const (
	EdgeOutput EdgeKind = iota
	EdgeLocator
	EdgeYearSuffix
	EdgeCitationNumber
	EdgeFrnn
	EdgeAccessed
)

// Edge is one element of a flattened cite's edge stream.
type Edge struct {
	Kind EdgeKind
	Text string
}

// Flatten walks the IR tree rooted at id and appends every content-bearing
// or symbolic leaf edge in document order, skipping nodes whose computed
// GroupVars is Missing (a collapsed Seq contributes nothing — spec.md
// §4.4 "the Seq collapses to Rendered(None) for output purposes").
func Flatten(a *Arena, id NodeId) []Edge {
	var out []Edge
	flattenInto(a, id, &out)
	return out
}

func flattenInto(a *Arena, id NodeId, out *[]Edge) {
	n := a.Get(id)
	if n == nil {
		return
	}
	switch n.Kind {
	case NodeRendered:
		if n.Rendered != nil {
			*out = append(*out, *n.Rendered)
		}
	case NodeYearSuffix:
		letter := ""
		if n.YearSuffix != nil {
			letter = n.YearSuffix.Letter
		}
		*out = append(*out, Edge{Kind: EdgeYearSuffix, Text: letter})
	case NodeNameCounter:
		count := 0
		if n.NameCount != nil {
			count = n.NameCount.Count
		}
		*out = append(*out, Edge{Kind: EdgeOutput, Text: itoa(count)})
	case NodeName:
		if n.Name != nil && n.Name.GV != GVMissing {
			*out = append(*out, Edge{Kind: EdgeOutput, Text: n.Name.RenderedText})
		}
	case NodeSeq:
		if n.GV == GVMissing && n.Seq != nil && n.Seq.DroppedGV != nil {
			return
		}
		if n.Seq == nil {
			return
		}
		for _, c := range n.Seq.Children {
			flattenInto(a, c, out)
		}
	case NodeConditionalDisamb:
		if n.Cond != nil {
			flattenInto(a, n.Cond.Selected, out)
		}
	}
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
