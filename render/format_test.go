package render

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/citeproc-go/citeproc/cluster"
	"github.com/citeproc-go/citeproc/ir"
	"github.com/citeproc-go/citeproc/locale"
	"github.com/citeproc-go/citeproc/refs"
	"github.com/citeproc-go/citeproc/style"
)

func newCtx(ref *refs.Reference, cite cluster.Cite) *ir.Context {
	return &ir.Context{
		Locale:    locale.NewStore(logrus.New()),
		Lang:      "en-US",
		Reference: ref,
		Cite:      cite,
	}
}

func TestNodeJoinsGroupWithDelimiterAndAffixes(t *testing.T) {
	ref := refs.NewReference("r1")
	ref.Ordinary["title"] = "My Title"
	ctx := newCtx(ref, cluster.Cite{RefID: "r1"})
	group := &style.GroupElement{
		Delimiter: ", ",
		Affixes:   style.Affixes{Prefix: "(", Suffix: ")"},
		Children: []style.Element{
			&style.TextElement{Source: style.TextValue, Value: "a"},
			&style.TextElement{Source: style.TextVariable, Variable: "title"},
		},
	}
	arena, root := ir.Build([]style.Element{group}, ctx)
	require.Equal(t, "(a, My Title)", Node(arena, root, Plain, "en-US"))
}

func TestNodeAppliesItalicFormattingInHtml(t *testing.T) {
	ref := refs.NewReference("r1")
	ref.Ordinary["title"] = "My Title"
	ctx := newCtx(ref, cluster.Cite{RefID: "r1"})
	group := &style.GroupElement{
		Formatting: style.Formatting{FontStyle: "italic"},
		Children:   []style.Element{&style.TextElement{Source: style.TextVariable, Variable: "title"}},
	}
	arena, root := ir.Build([]style.Element{group}, ctx)
	require.Equal(t, "<i>My Title</i>", Node(arena, root, Html, "en-US"))
}

func TestNodeEscapesHtmlEntities(t *testing.T) {
	ref := refs.NewReference("r1")
	ref.Ordinary["title"] = "Fish & Chips"
	ctx := newCtx(ref, cluster.Cite{RefID: "r1"})
	arena, root := ir.Build([]style.Element{&style.TextElement{Source: style.TextVariable, Variable: "title"}}, ctx)
	require.Equal(t, "Fish &amp; Chips", Node(arena, root, Html, "en-US"))
}

func TestNodeCollapsesEmptyGroup(t *testing.T) {
	ref := refs.NewReference("r1")
	ctx := newCtx(ref, cluster.Cite{RefID: "r1"})
	group := &style.GroupElement{
		Children: []style.Element{&style.TextElement{Source: style.TextVariable, Variable: "volume"}},
	}
	arena, root := ir.Build([]style.Element{group}, ctx)
	require.Equal(t, "", Node(arena, root, Plain, "en-US"))
}
