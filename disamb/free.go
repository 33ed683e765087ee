package disamb

import (
	"sort"
	"strings"

	"github.com/citeproc-go/citeproc/style"
)

// FreeCond is one normalized <choose> condition test vector, the alphabet
// gen4's conditional re-evaluation ranges over (grounded on
// citeproc-rs's crates/proc/src/disamb/free.rs, whose FreeCondSet is the
// closed set of distinct condition vectors a style's <choose> blocks can
// test). Collected once per style rather than hand-enumerated.
type FreeCond struct {
	Match           string
	Types           []string
	Variables       []string
	IsNumeric       []string
	IsUncertainDate []string
	Locator         []string
	Position        []string
}

func freeCondFrom(c style.Condition) FreeCond {
	return FreeCond{
		Match:           c.Match,
		Types:           c.Types,
		Variables:       c.Variables,
		IsNumeric:       c.IsNumeric,
		IsUncertainDate: c.IsUncertainDate,
		Locator:         c.Locator,
		Position:        c.Position,
	}
}

func (f FreeCond) key() string {
	var b strings.Builder
	b.WriteString(f.Match)
	for _, part := range [][]string{f.Types, f.Variables, f.IsNumeric, f.IsUncertainDate, f.Locator, f.Position} {
		b.WriteByte('|')
		b.WriteString(strings.Join(part, ","))
	}
	return b.String()
}

// CollectFreeConditions walks every <choose> reachable from st's citation
// layout, bibliography layout, and every macro, returning the deduplicated
// set of condition vectors the style can ever test. Disambiguate="true"
// conditions are included like any other test; callers that care only
// about gen4-relevant branches can filter on the original Condition via
// ChooseElement.HasDisambiguateCondition separately.
func CollectFreeConditions(st *style.Style) []FreeCond {
	seen := map[string]bool{}
	var out []FreeCond

	add := func(c style.Condition) {
		fc := freeCondFrom(c)
		k := fc.key()
		if !seen[k] {
			seen[k] = true
			out = append(out, fc)
		}
	}

	var walkElements func(els []style.Element)
	walkChoose := func(c *style.ChooseElement) {
		branches := append([]style.Branch{c.If}, c.ElseIfs...)
		for _, b := range branches {
			add(b.Condition)
			walkElements(b.Children)
		}
		walkElements(c.Else)
	}
	walkElements = func(els []style.Element) {
		for _, el := range els {
			switch e := el.(type) {
			case *style.ChooseElement:
				walkChoose(e)
			case *style.GroupElement:
				walkElements(e.Children)
			case *style.NamesElement:
				if e.Substitute != nil {
					walkElements(e.Substitute.Children)
				}
			}
		}
	}

	if st.Citation != nil {
		walkElements(st.Citation.Layout.Elements)
	}
	if st.Bibliography != nil {
		walkElements(st.Bibliography.Layout.Elements)
	}
	names := make([]string, 0, len(st.Macros))
	for name := range st.Macros {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		walkElements(st.Macros[name])
	}

	return out
}
