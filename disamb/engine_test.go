package disamb

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/citeproc-go/citeproc/cluster"
	"github.com/citeproc-go/citeproc/locale"
	"github.com/citeproc-go/citeproc/refs"
	"github.com/citeproc-go/citeproc/style"
)

func nameRef(id, family, given string) *refs.Reference {
	r := refs.NewReference(id)
	r.Names["author"] = []refs.Name{
		refs.NewPersonNameValue(refs.NewPersonName(family, given, "", "", "", false, false)),
	}
	return r
}

func shortNameStyle(addNames, addGivenname bool) *style.Style {
	return &style.Style{
		Citation: &style.Citation{
			DisambiguateAddNames:     addNames,
			DisambiguateAddGivenname: addGivenname,
			Layout: style.Layout{
				Elements: []style.Element{
					&style.NamesElement{
						Variables: []string{"author"},
						NameEl:    &style.NameEl{Form: style.NameShort},
					},
				},
			},
		},
	}
}

func TestEngineFlagsSameFamilyNameAsAmbiguous(t *testing.T) {
	store := refs.NewStore(logrus.New())
	store.Insert(nameRef("smith-j", "Smith", "John"))
	store.Insert(nameRef("smith-a", "Smith", "Jane"))

	e := NewEngine(shortNameStyle(false, false), locale.NewStore(logrus.New()), store, "en-US")
	result := e.Disambiguate(cluster.Cite{RefID: "smith-j"}, cluster.CitePosition{}, 1)
	// No escalation flag lets the renderer change anything, so gen4's
	// conditional re-evaluation is the last pass attempted and the
	// ambiguity persists.
	require.Equal(t, PassConditionals, result.Pass)
	require.Contains(t, result.Ambiguous, "smith-a")
}

func TestEngineGivenNameEscalationResolvesAmbiguity(t *testing.T) {
	store := refs.NewStore(logrus.New())
	store.Insert(nameRef("smith-j", "Smith", "John"))
	store.Insert(nameRef("smith-a", "Smith", "Jane"))

	e := NewEngine(shortNameStyle(true, true), locale.NewStore(logrus.New()), store, "en-US")
	result := e.Disambiguate(cluster.Cite{RefID: "smith-j"}, cluster.CitePosition{}, 1)
	require.Equal(t, PassAddGivenName, result.Pass)
	require.Empty(t, result.Ambiguous)
}

func TestEngineDistinctFamilyNamesAreNeverAmbiguous(t *testing.T) {
	store := refs.NewStore(logrus.New())
	store.Insert(nameRef("smith", "Smith", "John"))
	store.Insert(nameRef("doe", "Doe", "Jane"))

	e := NewEngine(shortNameStyle(false, false), locale.NewStore(logrus.New()), store, "en-US")
	result := e.Disambiguate(cluster.Cite{RefID: "smith"}, cluster.CitePosition{}, 1)
	require.Equal(t, PassBaseline, result.Pass)
	require.Empty(t, result.Ambiguous)
}

func TestEngineYearSuffixEscalationResolvesIdenticalNames(t *testing.T) {
	store := refs.NewStore(logrus.New())
	store.Insert(nameRef("smith-1", "Smith", "John"))
	store.Insert(nameRef("smith-2", "Smith", "John"))

	st := &style.Style{
		Citation: &style.Citation{
			DisambiguateAddYearSuffix: true,
			Layout: style.Layout{
				Elements: []style.Element{
					&style.NamesElement{
						Variables: []string{"author"},
						NameEl:    &style.NameEl{Form: style.NameShort},
					},
					&style.TextElement{Source: style.TextVariable, Variable: "year-suffix"},
				},
			},
		},
	}
	e := NewEngine(st, locale.NewStore(logrus.New()), store, "en-US")
	result := e.Disambiguate(cluster.Cite{RefID: "smith-1"}, cluster.CitePosition{}, 1)
	require.Equal(t, PassAddYearSuffix, result.Pass)
	require.Empty(t, result.Ambiguous)
	require.Equal(t, "a", e.yearSuffix["smith-1"])
	require.Equal(t, "b", e.yearSuffix["smith-2"])
}

func TestEngineYearSuffixFollowsCitationOrderNotIdOrder(t *testing.T) {
	store := refs.NewStore(logrus.New())
	// "zz-first" sorts lexically after "aa-second", but is cited first in
	// the document; the assigned suffix must track citation order, not id
	// order.
	store.Insert(nameRef("zz-first", "Smith", "John"))
	store.Insert(nameRef("aa-second", "Smith", "John"))

	st := &style.Style{
		Citation: &style.Citation{
			DisambiguateAddYearSuffix: true,
			Layout: style.Layout{
				Elements: []style.Element{
					&style.NamesElement{
						Variables: []string{"author"},
						NameEl:    &style.NameEl{Form: style.NameShort},
					},
					&style.TextElement{Source: style.TextVariable, Variable: "year-suffix"},
				},
			},
		},
	}
	e := NewEngine(st, locale.NewStore(logrus.New()), store, "en-US")
	e.SetCitationOrder(map[string]int{"zz-first": 1, "aa-second": 2})

	result := e.Disambiguate(cluster.Cite{RefID: "zz-first"}, cluster.CitePosition{}, 1)
	require.Equal(t, PassAddYearSuffix, result.Pass)
	require.Equal(t, "a", e.yearSuffix["zz-first"])
	require.Equal(t, "b", e.yearSuffix["aa-second"])
}

func TestSuffixLetterSequence(t *testing.T) {
	require.Equal(t, "a", suffixLetterAt(0))
	require.Equal(t, "z", suffixLetterAt(25))
	require.Equal(t, "aa", suffixLetterAt(26))
}
