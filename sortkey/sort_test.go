package sortkey

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/citeproc-go/citeproc/locale"
	"github.com/citeproc-go/citeproc/refs"
	"github.com/citeproc-go/citeproc/style"
)

func refWithVolume(id string, volume uint32) *refs.Reference {
	r := refs.NewReference(id)
	raw := "9"
	if volume != 9 {
		raw = "10"
	}
	r.Numeric["volume"] = refs.NumericValue{
		Raw:    raw,
		Tokens: []refs.NumToken{{Kind: refs.NumTokenNum, Num: volume, Text: raw}},
	}
	return r
}

// TestExtractMacroKeyComparesNumbersByValueNotText exercises a <sort> key
// built on a macro wrapping <number>: plain text comparison would put "10"
// before "9" lexically, but the sort-mode IR build emits a tagged frame so
// it compares numerically instead (spec.md §4.7).
func TestExtractMacroKeyComparesNumbersByValueNotText(t *testing.T) {
	st := &style.Style{
		Macros: map[string][]style.Element{
			"vol": {&style.NumberElement{Variable: "volume"}},
		},
	}
	loc := locale.NewStore(logrus.New())

	nine := refWithVolume("nine", 9)
	ten := refWithVolume("ten", 10)

	keyNine := ExtractKey(nine, style.SortKey{Macro: "vol", Ascending: true}, st, loc, "en-US")
	keyTen := ExtractKey(ten, style.SortKey{Macro: "vol", Ascending: true}, st, loc, "en-US")

	require.True(t, keyNine.Less(keyTen, true))
}

func refWithAuthorYear(id, family string, year int) *refs.Reference {
	r := refs.NewReference(id)
	r.Names["author"] = []refs.Name{
		refs.NewPersonNameValue(refs.NewPersonName(family, "Pat", "", "", "", false, false)),
	}
	d, _ := refs.ParseDateOrRange(map[string]interface{}{"year": year})
	r.Dates["issued"] = d
	return r
}

func TestSorterOrdersByAuthorThenYear(t *testing.T) {
	st := &style.Style{
		Bibliography: &style.Bibliography{
			SortKeys: []style.SortKey{
				{Variable: "author", Ascending: true},
				{Variable: "issued", Ascending: true},
			},
		},
	}
	s := &Sorter{Style: st, Locale: locale.NewStore(logrus.New()), Lang: "en-US"}

	r1 := refWithAuthorYear("z-2001", "Zeta", 2001)
	r2 := refWithAuthorYear("a-1999", "Alpha", 1999)
	r3 := refWithAuthorYear("a-2000", "Alpha", 2000)

	order := map[string]int{"z-2001": 0, "a-1999": 1, "a-2000": 2}
	out := s.Sort([]*refs.Reference{r1, r2, r3}, order)

	require.Equal(t, []string{"a-1999", "a-2000", "z-2001"}, idsOf(out))
}

func TestSorterMissingKeyDemotesToEnd(t *testing.T) {
	st := &style.Style{
		Bibliography: &style.Bibliography{
			SortKeys: []style.SortKey{{Variable: "author", Ascending: true}},
		},
	}
	s := &Sorter{Style: st, Locale: locale.NewStore(logrus.New()), Lang: "en-US"}

	withAuthor := refWithAuthorYear("has-author", "Alpha", 2000)
	noAuthor := refs.NewReference("no-author")

	order := map[string]int{"has-author": 0, "no-author": 1}
	out := s.Sort([]*refs.Reference{noAuthor, withAuthor}, order)
	require.Equal(t, []string{"has-author", "no-author"}, idsOf(out))
}

func idsOf(refsIn []*refs.Reference) []string {
	out := make([]string, len(refsIn))
	for i, r := range refsIn {
		out[i] = r.ID
	}
	return out
}
