package render

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/citeproc-go/citeproc/cluster"
	"github.com/citeproc-go/citeproc/ir"
	"github.com/citeproc-go/citeproc/refs"
	"github.com/citeproc-go/citeproc/style"
)

func authorYearElements() []style.Element {
	return []style.Element{
		&style.GroupElement{
			Delimiter: " ",
			Children: []style.Element{
				&style.IntextElement{Children: []style.Element{
					&style.NamesElement{Variables: []string{"author"}, NameEl: &style.NameEl{Form: style.NameShort}},
				}},
				&style.TextElement{Source: style.TextVariable, Variable: "issued"},
			},
		},
	}
}

func buildCiteIR(t *testing.T, ref *refs.Reference, cite cluster.Cite) CiteIR {
	t.Helper()
	ctx := newCtx(ref, cite)
	arena, root := ir.Build(authorYearElements(), ctx)
	return CiteIR{Cite: cite, Arena: arena, Root: root}
}

func smithRef() *refs.Reference {
	r := refs.NewReference("smith")
	r.Names["author"] = []refs.Name{
		refs.NewPersonNameValue(refs.NewPersonName("Smith", "John", "", "", "", false, false)),
	}
	d, _ := refs.ParseDateOrRange(map[string]interface{}{"year": 1999})
	r.Dates["issued"] = d
	return r
}

func TestClusterNormalModeJoinsCitesWithDelimiter(t *testing.T) {
	r1 := smithRef()
	r2 := smithRef()
	r2.ID = "doe"
	r2.Names["author"] = []refs.Name{refs.NewPersonNameValue(refs.NewPersonName("Doe", "Jane", "", "", "", false, false))}

	cites := []CiteIR{
		buildCiteIR(t, r1, cluster.Cite{RefID: "smith"}),
		buildCiteIR(t, r2, cluster.Cite{RefID: "doe"}),
	}
	layout := style.Layout{Delimiter: "; ", Affixes: style.Affixes{Prefix: "(", Suffix: ")"}}
	out := Cluster(cites, cluster.ModeNormal, 0, "", layout, Plain, "en-US")
	require.Equal(t, "(Smith 1999; Doe 1999)", out)
}

func TestClusterAuthorOnlyModeKeepsOnlyAuthorBlock(t *testing.T) {
	r1 := smithRef()
	cites := []CiteIR{buildCiteIR(t, r1, cluster.Cite{RefID: "smith"})}
	out := Cluster(cites, cluster.ModeAuthorOnly, 0, "", style.Layout{}, Plain, "en-US")
	require.Equal(t, "Smith", out)
}

func TestClusterSuppressAuthorModeDropsAuthorBlock(t *testing.T) {
	r1 := smithRef()
	cites := []CiteIR{buildCiteIR(t, r1, cluster.Cite{RefID: "smith"})}
	out := Cluster(cites, cluster.ModeSuppressAuthor, 1, "", style.Layout{}, Plain, "en-US")
	require.Equal(t, "1999", out)
}
