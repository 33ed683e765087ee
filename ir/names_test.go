package ir

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/citeproc-go/citeproc/cluster"
	"github.com/citeproc-go/citeproc/locale"
	"github.com/citeproc-go/citeproc/refs"
	"github.com/citeproc-go/citeproc/style"
)

func testContext(ref *refs.Reference) *Context {
	store := locale.NewStore(logrus.New())
	return &Context{
		Locale:    store,
		Lang:      "en-US",
		Reference: ref,
		Cite:      cluster.Cite{RefID: ref.ID},
	}
}

func personRef(id string, names ...refs.Name) *refs.Reference {
	r := refs.NewReference(id)
	r.Names["author"] = names
	return r
}

func name(family, given string) refs.Name {
	return refs.NewPersonNameValue(refs.NewPersonName(family, given, "", "", "", false, false))
}

func TestBuildNamesJoinsWithAnd(t *testing.T) {
	ref := personRef("r1", name("Smith", "John"), name("Doe", "Jane"))
	ctx := testContext(ref)
	b := &builder{arena: NewArena(), ctx: ctx}

	els := &style.NamesElement{
		Variables: []string{"author"},
		NameEl: &style.NameEl{
			Form: style.NameLong, Delimiter: ", ", And: "text", EtAlUseFirst: 2,
		},
	}
	id := b.buildNames(els)
	edges := Flatten(b.arena, id)
	require.Len(t, edges, 1)
	require.Equal(t, "John Smith and Jane Doe", edges[0].Text)
}

func TestBuildNamesEtAlCollapsesPastMin(t *testing.T) {
	ref := personRef("r1", name("A", "Alice"), name("B", "Bob"), name("C", "Carol"))
	ctx := testContext(ref)
	b := &builder{arena: NewArena(), ctx: ctx}

	els := &style.NamesElement{
		Variables: []string{"author"},
		NameEl: &style.NameEl{
			Form: style.NameLong, Delimiter: ", ", EtAlMin: 3, EtAlUseFirst: 1,
		},
	}
	id := b.buildNames(els)
	edges := Flatten(b.arena, id)
	require.Len(t, edges, 1)
	require.Contains(t, edges[0].Text, "Alice A")
	require.Contains(t, edges[0].Text, "et al.")
}

func TestBuildNamesMissingProducesGVMissing(t *testing.T) {
	ref := refs.NewReference("r1")
	ctx := testContext(ref)
	b := &builder{arena: NewArena(), ctx: ctx}

	els := &style.NamesElement{Variables: []string{"author"}}
	id := b.buildNames(els)
	n := b.arena.Get(id)
	require.Equal(t, GVMissing, n.GV)
	require.Empty(t, Flatten(b.arena, id))
}

func TestFormatNameShortFormDropsGiven(t *testing.T) {
	n := name("Smith", "John")
	out := formatName(n, &style.NameEl{Form: style.NameShort}, false)
	require.Equal(t, "Smith", out)
}

func TestFormatNameReattachesNonDroppingParticle(t *testing.T) {
	pn := refs.NewPersonName("Beauvoir", "Simone", "de", "", "", false, false)
	out := formatName(refs.NewPersonNameValue(pn), &style.NameEl{Form: style.NameLong}, false)
	require.Equal(t, "Simone de Beauvoir", out)
}

func TestInitializeGiven(t *testing.T) {
	require.Equal(t, "J.K.", initializeGiven("John Kowalski", "."))
}
