package sortkey

import (
	"sort"
	"strings"

	"github.com/citeproc-go/citeproc/ir"
	"github.com/citeproc-go/citeproc/locale"
	"github.com/citeproc-go/citeproc/refs"
	"github.com/citeproc-go/citeproc/render"
	"github.com/citeproc-go/citeproc/style"
)

// ExtractKey computes one <sort><key>'s encoded Key for one reference
// (spec.md §4.7 "Key extraction"). Variable keys are read directly off the
// already-typed Reference; macro keys are rendered through the ordinary IR
// builder in sort mode, which substitutes internal/sortframe-tagged frames
// for <number>/<date> content in place of display-formatted text, so a
// macro wrapping a numeric or date variable compares by value exactly like
// the variable-key path instead of lexically.
func ExtractKey(ref *refs.Reference, key style.SortKey, st *style.Style, loc *locale.Store, lang string) Key {
	if key.Macro != "" {
		return extractMacroKey(ref, key.Macro, st, loc, lang)
	}
	return extractVariableKey(ref, key.Variable, lang)
}

func extractMacroKey(ref *refs.Reference, macro string, st *style.Style, loc *locale.Store, lang string) Key {
	body, ok := st.Macro(macro)
	if !ok {
		return Key{Missing: true}
	}
	ctx := &ir.Context{Style: st, Locale: loc, Lang: lang, Reference: ref, SortMode: true}
	arena, root := ir.Build(body, ctx)
	text := render.Node(arena, root, render.Plain, lang)
	text = strings.TrimSpace(text)
	if text == "" {
		return Key{Missing: true}
	}
	return Key{Text: strings.ToLower(text)}
}

func extractVariableKey(ref *refs.Reference, variable string, lang string) Key {
	switch refs.ClassifyVariable(variable) {
	case refs.GroupName:
		return extractNameKey(ref, variable)
	case refs.GroupNumeric:
		return extractNumericKey(ref, variable)
	case refs.GroupDate:
		return extractDateKey(ref, variable)
	default:
		return extractOrdinaryKey(ref, variable)
	}
}

// extractNameKey flattens names with name-as-sort-order=all (family then
// given, particles reattached for collation), no et-al abbreviation and no
// "and" term — every name in the variable, delimited by ", " (spec.md
// §4.7 "flatten names with name-as-sort-order=all, no et-al abbreviation,
// no 'and' term").
func extractNameKey(ref *refs.Reference, variable string) Key {
	names := ref.Names[variable]
	if len(names) == 0 {
		return Key{Missing: true}
	}
	parts := make([]string, 0, len(names))
	for _, n := range names {
		parts = append(parts, sortFormName(n))
	}
	return Key{Text: strings.ToLower(strings.Join(parts, ", "))}
}

func sortFormName(n refs.Name) string {
	if n.Literal != "" {
		return n.Literal
	}
	p := n.Person
	family := p.Family
	if p.NonDroppingParticle != "" {
		family = p.NonDroppingParticle + " " + family
	}
	given := p.Given
	if p.DroppingParticle != "" {
		given = given + " " + p.DroppingParticle
	}
	if given == "" {
		return strings.TrimSpace(family)
	}
	return strings.TrimSpace(family) + " " + strings.TrimSpace(given)
}

func extractNumericKey(ref *refs.Reference, variable string) Key {
	nv, ok := ref.Numeric[variable]
	if !ok || nv.Raw == "" {
		return Key{Missing: true}
	}
	if nums := nv.Nums(); len(nums) > 0 {
		return Key{Text: encodeNumber(nums[0])}
	}
	return Key{Text: strings.ToLower(nv.Raw)}
}

func extractDateKey(ref *refs.Reference, variable string) Key {
	d, ok := ref.Dates[variable]
	if !ok {
		return Key{Missing: true}
	}
	switch d.Kind {
	case refs.DateLiteral:
		if d.Literal == "" {
			return Key{Missing: true}
		}
		return Key{Text: strings.ToLower(d.Literal)}
	case refs.DateRange:
		return Key{Text: encodeDate(d.From.Year, clampU8(d.From.Month), clampU8(d.From.Day))}
	default:
		return Key{Text: encodeDate(d.Single.Year, clampU8(d.Single.Month), clampU8(d.Single.Day))}
	}
}

func clampU8(v uint8) uint8 {
	if v > 12 {
		return 0
	}
	return v
}

func extractOrdinaryKey(ref *refs.Reference, variable string) Key {
	s, ok := ref.Ordinary[variable]
	if !ok || s == "" {
		return Key{Missing: true}
	}
	return Key{Text: strings.ToLower(stripMarkupForSort(s))}
}

// stripMarkupForSort drops the micro-HTML tags an ingested ordinary field
// may carry (spec.md §4.7 "for ordinaries, strip markup and case-fold");
// smart quotes and other text content are left as-is.
func stripMarkupForSort(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Sorter orders references by a style's compiled <sort> key list.
type Sorter struct {
	Style  *style.Style
	Locale *locale.Store
	Lang   string
}

// Sort returns refs ordered by st's bibliography sort keys (or, absent
// any, by citationOrder alone), breaking ties by citationOrder — the index
// each reference was first cited at, spec.md §4.7's "Citation order is the
// final tiebreaker, so the sort is stable."
func (s *Sorter) Sort(refsIn []*refs.Reference, citationOrder map[string]int) []*refs.Reference {
	out := make([]*refs.Reference, len(refsIn))
	copy(out, refsIn)

	var keys []style.SortKey
	if s.Style.Bibliography != nil {
		keys = s.Style.Bibliography.SortKeys
	}

	type cached struct {
		ref  *refs.Reference
		keys []Key
	}
	rows := make([]cached, len(out))
	for i, r := range out {
		ks := make([]Key, len(keys))
		for j, k := range keys {
			ks[j] = ExtractKey(r, k, s.Style, s.Locale, s.Lang)
		}
		rows[i] = cached{ref: r, keys: ks}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		for idx, k := range keys {
			a, b := rows[i].keys[idx], rows[j].keys[idx]
			if a.Missing != b.Missing {
				return !a.Missing
			}
			if a.Missing {
				continue
			}
			c := Compare(a.Text, b.Text)
			if !k.Ascending {
				c = -c
			}
			if c != 0 {
				return c < 0
			}
		}
		oi, oj := citationOrder[rows[i].ref.ID], citationOrder[rows[j].ref.ID]
		return oi < oj
	})

	for i, row := range rows {
		out[i] = row.ref
	}
	return out
}
