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

func newCtx(ref *refs.Reference, cite cluster.Cite) *Context {
	return &Context{
		Locale:    locale.NewStore(logrus.New()),
		Lang:      "en-US",
		Reference: ref,
		Cite:      cite,
	}
}

func textValue(s string) *style.TextElement {
	return &style.TextElement{Source: style.TextValue, Value: s}
}

func textVar(v string) *style.TextElement {
	return &style.TextElement{Source: style.TextVariable, Variable: v}
}

func TestBuildTextValueIsPlain(t *testing.T) {
	ref := refs.NewReference("r1")
	ctx := newCtx(ref, cluster.Cite{RefID: "r1"})
	arena, root := Build([]style.Element{textValue("hello")}, ctx)
	edges := Flatten(arena, root)
	require.Len(t, edges, 1)
	require.Equal(t, "hello", edges[0].Text)
}

func TestBuildGroupCollapsesWhenAllVariablesMissing(t *testing.T) {
	ref := refs.NewReference("r1")
	ctx := newCtx(ref, cluster.Cite{RefID: "r1"})
	group := &style.GroupElement{
		Children: []style.Element{textVar("volume"), textVar("issue")},
	}
	arena, root := Build([]style.Element{group}, ctx)
	edges := Flatten(arena, root)
	require.Empty(t, edges)
}

func TestBuildGroupWithOnlyStaticTextCollapsesWhenVariableMissing(t *testing.T) {
	ref := refs.NewReference("r1")
	ctx := newCtx(ref, cluster.Cite{RefID: "r1"})
	group := &style.GroupElement{
		Children: []style.Element{textValue("vol. "), textVar("volume")},
	}
	arena, root := Build([]style.Element{group}, ctx)
	edges := Flatten(arena, root)
	require.Len(t, edges, 0)
	require.Equal(t, GVMissing, arena.Get(arena.Get(root).Seq.Children[0]).GV)
}

func TestBuildGroupRendersWhenVariablePresent(t *testing.T) {
	ref := refs.NewReference("r1")
	ref.Numeric["volume"] = refs.ParseNumericValue("5")
	ctx := newCtx(ref, cluster.Cite{RefID: "r1"})
	group := &style.GroupElement{
		Children: []style.Element{textValue("vol. "), textVar("volume")},
	}
	arena, root := Build([]style.Element{group}, ctx)
	edges := Flatten(arena, root)
	require.Len(t, edges, 2)
	require.Equal(t, "vol. ", edges[0].Text)
	require.Equal(t, "5", edges[1].Text)
}

func TestBuildChooseSelectsFirstTrueBranch(t *testing.T) {
	ref := refs.NewReference("r1")
	ref.Type = "book"
	ctx := newCtx(ref, cluster.Cite{RefID: "r1"})
	choose := &style.ChooseElement{
		If: style.Branch{
			Condition: style.Condition{Types: []string{"article-journal"}},
			Children:  []style.Element{textValue("journal branch")},
		},
		ElseIfs: []style.Branch{{
			Condition: style.Condition{Types: []string{"book"}},
			Children:  []style.Element{textValue("book branch")},
		}},
		Else: []style.Element{textValue("fallback")},
	}
	arena, root := Build([]style.Element{choose}, ctx)
	edges := Flatten(arena, root)
	require.Len(t, edges, 1)
	require.Equal(t, "book branch", edges[0].Text)
}

func TestBuildChooseFallsBackToElse(t *testing.T) {
	ref := refs.NewReference("r1")
	ref.Type = "webpage"
	ctx := newCtx(ref, cluster.Cite{RefID: "r1"})
	choose := &style.ChooseElement{
		If:   style.Branch{Condition: style.Condition{Types: []string{"book"}}, Children: []style.Element{textValue("book")}},
		Else: []style.Element{textValue("fallback")},
	}
	arena, root := Build([]style.Element{choose}, ctx)
	edges := Flatten(arena, root)
	require.Len(t, edges, 1)
	require.Equal(t, "fallback", edges[0].Text)
}

func TestBuildChooseWithDisambiguateWrapsConditionalDisamb(t *testing.T) {
	ref := refs.NewReference("r1")
	ctx := newCtx(ref, cluster.Cite{RefID: "r1"})
	yes := true
	choose := &style.ChooseElement{
		If: style.Branch{
			Condition: style.Condition{Disambiguate: &yes},
			Children:  []style.Element{textValue("disambiguated")},
		},
	}
	arena, root := Build([]style.Element{choose}, ctx)
	// The choose is the sole top-level element, so root's one child is the
	// ConditionalDisamb node.
	seq := arena.Get(root)
	require.Len(t, seq.Seq.Children, 1)
	cond := arena.Get(seq.Seq.Children[0])
	require.Equal(t, NodeConditionalDisamb, cond.Kind)
}

func TestBuildNumberOrdinal(t *testing.T) {
	ref := refs.NewReference("r1")
	ref.Numeric["edition"] = refs.ParseNumericValue("2")
	ctx := newCtx(ref, cluster.Cite{RefID: "r1"})
	num := &style.NumberElement{Variable: "edition", Form: style.NumberOrdinal}
	arena, root := Build([]style.Element{num}, ctx)
	edges := Flatten(arena, root)
	require.Len(t, edges, 1)
	require.Equal(t, "2nd", edges[0].Text)
}

func TestBuildDateRendersYearMonthDay(t *testing.T) {
	ref := refs.NewReference("r1")
	ref.Dates["issued"] = refs.DateOrRange{Kind: refs.DateSingle, Single: refs.Date{Year: 2020, Month: 3, Day: 15}}
	ctx := newCtx(ref, cluster.Cite{RefID: "r1"})
	date := &style.DateElement{
		Variable: "issued",
		DateParts: []style.DatePart{
			{Name: "month", Form: "numeric"},
			{Name: "day"},
			{Name: "year"},
		},
		Delimiter: "/",
	}
	arena, root := Build([]style.Element{date}, ctx)
	edges := Flatten(arena, root)
	require.Len(t, edges, 1)
	require.Equal(t, "3/15/2020", edges[0].Text)
}

func TestBuildDateSeasonUsesLocalizedTerm(t *testing.T) {
	ref := refs.NewReference("r1")
	ref.Dates["issued"] = refs.DateOrRange{Kind: refs.DateSingle, Single: refs.Date{Year: 2020, Month: 14}}
	ctx := newCtx(ref, cluster.Cite{RefID: "r1"})
	date := &style.DateElement{Variable: "issued"}
	arena, root := Build([]style.Element{date}, ctx)
	edges := Flatten(arena, root)
	require.Len(t, edges, 1)
	require.Contains(t, edges[0].Text, "Summer")
}

func TestBuildLocatorVariable(t *testing.T) {
	ref := refs.NewReference("r1")
	cite := cluster.Cite{RefID: "r1", Locators: []cluster.Locator{{Type: "page", Value: refs.ParseNumericValue("5-7")}}}
	ctx := newCtx(ref, cite)
	arena, root := Build([]style.Element{textVar("locator")}, ctx)
	edges := Flatten(arena, root)
	require.Len(t, edges, 1)
	require.Equal(t, EdgeLocator, edges[0].Kind)
	require.Equal(t, "5-7", edges[0].Text)
}

func TestBuildYearSuffixPlaceholderEmptyUntilAssigned(t *testing.T) {
	ref := refs.NewReference("r1")
	ctx := newCtx(ref, cluster.Cite{RefID: "r1"})
	arena, root := Build([]style.Element{textVar("year-suffix")}, ctx)
	edges := Flatten(arena, root)
	require.Len(t, edges, 1)
	require.Equal(t, EdgeYearSuffix, edges[0].Kind)
	require.Equal(t, "", edges[0].Text)

	ctx.YearSuffix = "b"
	arena2, root2 := Build([]style.Element{textVar("year-suffix")}, ctx)
	edges2 := Flatten(arena2, root2)
	require.Equal(t, "b", edges2[0].Text)
}

func TestMacroRecursionGuardStopsInfiniteLoop(t *testing.T) {
	ref := refs.NewReference("r1")
	ctx := newCtx(ref, cluster.Cite{RefID: "r1"})
	ctx.Style = &style.Style{
		Macros: map[string][]style.Element{
			"a": {&style.TextElement{Source: style.TextMacro, Macro: "a"}},
		},
	}
	arena, root := Build([]style.Element{&style.TextElement{Source: style.TextMacro, Macro: "a"}}, ctx)
	edges := Flatten(arena, root)
	require.Empty(t, edges)
}
