package cluster

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/citeproc-go/citeproc/refs"
)

func noteEntry(id string, note uint32) OrderEntry {
	return OrderEntry{ClusterID: id, Number: ClusterNumber{Kind: NumberNote, Number: note}}
}

func TestIbidDetection(t *testing.T) {
	s := NewStore(nil, 5)
	s.Insert(Cluster{ID: "c1", Cites: []Cite{{RefID: "one"}}})
	s.Insert(Cluster{ID: "c2", Cites: []Cite{{RefID: "one"}}})

	require.NoError(t, s.SetOrder([]OrderEntry{noteEntry("c1", 1), noteEntry("c2", 2)}))

	p1, _ := s.Positions("c1")
	require.Equal(t, PositionFirst, p1[0].Position)

	p2, _ := s.Positions("c2")
	require.Equal(t, PositionIbid, p2[0].Position)
}

func TestIbidWithLocatorWhenLocatorsDiffer(t *testing.T) {
	s := NewStore(nil, 5)
	s.Insert(Cluster{ID: "c1", Cites: []Cite{{RefID: "one"}}})
	s.Insert(Cluster{ID: "c2", Cites: []Cite{{RefID: "one", Locators: []Locator{{Type: "page", Value: refs.ParseNumericValue("5")}}}}})
	require.NoError(t, s.SetOrder([]OrderEntry{noteEntry("c1", 1), noteEntry("c2", 1)}))

	p2, _ := s.Positions("c2")
	require.Equal(t, PositionIbidWithLocator, p2[0].Position)
}

func TestNearNoteVsFarNote(t *testing.T) {
	s := NewStore(nil, 5)
	s.Insert(Cluster{ID: "c1", Cites: []Cite{{RefID: "one"}}})
	s.Insert(Cluster{ID: "c2", Cites: []Cite{{RefID: "other"}}})
	s.Insert(Cluster{ID: "c3", Cites: []Cite{{RefID: "one"}}})

	require.NoError(t, s.SetOrder([]OrderEntry{noteEntry("c1", 1), noteEntry("c2", 2), noteEntry("c3", 3)}))

	p1, _ := s.Positions("c1")
	require.Equal(t, PositionFirst, p1[0].Position)
	p2, _ := s.Positions("c2")
	require.Equal(t, PositionFirst, p2[0].Position)
	p3, _ := s.Positions("c3")
	require.Equal(t, PositionNearNote, p3[0].Position)
	require.Equal(t, uint32(1), p3[0].FirstReferenceNoteNumber)
}

func TestFarNoteBeyondDistance(t *testing.T) {
	s := NewStore(nil, 2)
	s.Insert(Cluster{ID: "c1", Cites: []Cite{{RefID: "one"}}})
	s.Insert(Cluster{ID: "c2", Cites: []Cite{{RefID: "other"}}})
	s.Insert(Cluster{ID: "c3", Cites: []Cite{{RefID: "one"}}})

	require.NoError(t, s.SetOrder([]OrderEntry{noteEntry("c1", 1), noteEntry("c2", 2), noteEntry("c3", 10)}))

	p3, _ := s.Positions("c3")
	require.Equal(t, PositionFarNote, p3[0].Position)
}

func TestNonMonotonicNoteNumberRejected(t *testing.T) {
	s := NewStore(nil, 5)
	s.Insert(Cluster{ID: "c1", Cites: []Cite{{RefID: "one"}}})
	s.Insert(Cluster{ID: "c2", Cites: []Cite{{RefID: "one"}}})

	err := s.SetOrder([]OrderEntry{noteEntry("c1", 5), noteEntry("c2", 1)})
	require.Error(t, err)
}

func TestInTextAndNoteClustersMayMix(t *testing.T) {
	s := NewStore(nil, 5)
	s.Insert(Cluster{ID: "c1", Cites: []Cite{{RefID: "one"}}})
	s.Insert(Cluster{ID: "c2", Cites: []Cite{{RefID: "one"}}})

	order := []OrderEntry{
		{ClusterID: "c1", Number: ClusterNumber{Kind: NumberInText}},
		noteEntry("c2", 1),
	}
	require.NoError(t, s.SetOrder(order))
}

func TestSetOrderRejectsPreviewPosition(t *testing.T) {
	s := NewStore(nil, 5)
	s.Insert(Cluster{ID: "c1", Cites: []Cite{{RefID: "one"}}})

	order := []OrderEntry{
		noteEntry("c1", 1),
		{ClusterID: "", Number: ClusterNumber{Kind: NumberNote, Number: 2}},
	}
	require.Error(t, s.SetOrder(order))
}

func TestSetOrderWithPreviewRequiresExactlyOneSlot(t *testing.T) {
	s := NewStore(nil, 5)
	s.Insert(Cluster{ID: "c1", Cites: []Cite{{RefID: "one"}}})
	s.Insert(Cluster{ID: "preview", Cites: []Cite{{RefID: "one"}}})

	require.Error(t, s.SetOrderWithPreview([]OrderEntry{noteEntry("c1", 1)}, "preview"))

	require.Error(t, s.SetOrderWithPreview([]OrderEntry{
		{ClusterID: "", Number: ClusterNumber{Kind: NumberNote, Number: 1}},
		{ClusterID: "", Number: ClusterNumber{Kind: NumberNote, Number: 2}},
	}, "preview"))

	require.NoError(t, s.SetOrderWithPreview([]OrderEntry{
		noteEntry("c1", 1),
		{ClusterID: "", Number: ClusterNumber{Kind: NumberNote, Number: 2}},
	}, "preview"))
	p, _ := s.Positions("preview")
	require.Len(t, p, 1)
}

func TestNonExistentClusterRejected(t *testing.T) {
	s := NewStore(nil, 5)
	err := s.SetOrder([]OrderEntry{noteEntry("ghost", 1)})
	require.Error(t, err)
}

func TestSetOrderIsIdempotent(t *testing.T) {
	s := NewStore(nil, 5)
	s.Insert(Cluster{ID: "c1", Cites: []Cite{{RefID: "one"}}})
	s.Insert(Cluster{ID: "c2", Cites: []Cite{{RefID: "one"}}})
	order := []OrderEntry{noteEntry("c1", 1), noteEntry("c2", 2)}

	require.NoError(t, s.SetOrder(order))
	first, _ := s.Positions("c2")
	require.NoError(t, s.SetOrder(order))
	second, _ := s.Positions("c2")
	require.Equal(t, first, second)
}

func TestMatchesPositionConditionHierarchy(t *testing.T) {
	require.True(t, MatchesPositionCondition(PositionIbidWithLocator, "ibid"))
	require.True(t, MatchesPositionCondition(PositionIbidWithLocator, "subsequent"))
	require.False(t, MatchesPositionCondition(PositionFirst, "subsequent"))
	require.True(t, MatchesPositionCondition(PositionNearNote, "near-note"))
	require.False(t, MatchesPositionCondition(PositionFarNote, "near-note"))
}
