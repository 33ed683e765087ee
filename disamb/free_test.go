package disamb

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/citeproc-go/citeproc/style"
)

func TestCollectFreeConditionsDedupesAcrossBranches(t *testing.T) {
	boolTrue := true
	choose := &style.ChooseElement{
		If: style.Branch{
			Condition: style.Condition{Types: []string{"book"}},
		},
		ElseIfs: []style.Branch{
			{Condition: style.Condition{Types: []string{"book"}}},
			{Condition: style.Condition{Position: []string{"ibid"}, Disambiguate: &boolTrue}},
		},
	}
	st := &style.Style{
		Citation: &style.Citation{
			Layout: style.Layout{Elements: []style.Element{choose}},
		},
	}

	got := CollectFreeConditions(st)
	require.Len(t, got, 2)

	want := []FreeCond{
		{Types: []string{"book"}},
		{Position: []string{"ibid"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CollectFreeConditions mismatch (-want +got):\n%s", diff)
	}
}

func TestNameKeysForReferenceMarksFirstVariablePrimary(t *testing.T) {
	keys := NameKeysForReference("ref1", []NameVariableCount{
		{Variable: "author", Count: 2},
		{Variable: "editor", Count: 1},
	})
	require.Len(t, keys, 3)
	require.True(t, keys[0].IsPrimary)
	require.True(t, keys[1].IsPrimary)
	require.False(t, keys[2].IsPrimary)
	require.Equal(t, "editor", keys[2].NameVariable)
}
