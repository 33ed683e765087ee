package cluster

import (
	"github.com/sirupsen/logrus"

	"github.com/citeproc-go/citeproc/errs"
)

// OrderEntry pairs a cluster id with its caller-assigned document position.
// ClusterID == "" denotes the preview slot (spec.md §6 PreviewCitationCluster):
// a position in the order with no persisted cluster behind it, used to ask
// "what would a cite at this spot render as" without mutating state.
type OrderEntry struct {
	ClusterID string
	Number    ClusterNumber
}

// Store owns every cluster the processor knows about plus the last
// document order set via SetOrder, and derives each cite's Position from
// that order (spec.md §4.2).
type Store struct {
	log              logrus.FieldLogger
	clusters         map[string]*Cluster
	order            []OrderEntry
	nearNoteDistance uint32
	positions        map[string][]CitePosition
}

// NewStore builds an empty Store. nearNoteDistance is the style's
// near-note-distance attribute (default 5, spec.md §4.2).
func NewStore(log logrus.FieldLogger, nearNoteDistance int) *Store {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if nearNoteDistance <= 0 {
		nearNoteDistance = 5
	}
	return &Store{
		log:              log.WithField("component", "cluster"),
		clusters:         map[string]*Cluster{},
		nearNoteDistance: uint32(nearNoteDistance),
		positions:        map[string][]CitePosition{},
	}
}

// Insert adds or replaces a cluster. It does not by itself change the
// document order; callers must call SetOrder (including the new id) before
// its cites get a computed Position.
func (s *Store) Insert(c Cluster) {
	cp := c
	s.clusters[c.ID] = &cp
}

// Remove deletes a cluster. Any order entry naming it becomes dangling and
// will fail the next SetOrder call unless also removed from the order.
func (s *Store) Remove(id string) {
	delete(s.clusters, id)
	delete(s.positions, id)
}

// Get returns the cluster by id.
func (s *Store) Get(id string) (*Cluster, bool) {
	c, ok := s.clusters[id]
	return c, ok
}

// Order returns the last order set via SetOrder.
func (s *Store) Order() []OrderEntry {
	return s.order
}

// SetOrder installs a new document order and recomputes every cite's
// Position. Validates the invariants from spec.md §3/§4.2/§7: note numbers
// must be monotonically non-decreasing across the order, every entry must
// name a cluster that exists, and the order may not contain a preview
// position (ClusterID == "") — only PreviewCitationCluster's shadow order
// is allowed one, via SetOrderWithPreview.
func (s *Store) SetOrder(order []OrderEntry) error {
	if len(order) == 0 {
		s.order = nil
		s.positions = map[string][]CitePosition{}
		return nil
	}

	for _, e := range order {
		if e.ClusterID == "" {
			return errs.ErrClusterOrderWithZero.New()
		}
	}

	havePrev := false
	var prev uint32
	for _, e := range order {
		n := e.Number.noteOf()
		if havePrev && n < prev {
			return errs.ErrNonMonotonicNoteNumber.New(n)
		}
		prev = n
		havePrev = true
	}

	for _, e := range order {
		if _, ok := s.clusters[e.ClusterID]; !ok {
			return errs.ErrNonExistentCluster.New(e.ClusterID)
		}
	}

	s.order = order
	s.recomputePositions()
	return nil
}

// SetOrderWithPreview is SetOrder for PreviewCitationCluster's shadow
// store: order must contain exactly one preview position (ClusterID ==
// ""), which is filled in with previewID before the rest of SetOrder's
// validation runs, so previewID need not already exist in the store.
func (s *Store) SetOrderWithPreview(order []OrderEntry, previewID string) error {
	slot := -1
	for i, e := range order {
		if e.ClusterID == "" {
			if slot != -1 {
				return errs.ErrDidNotSupplyZeroPosition.New()
			}
			slot = i
		}
	}
	if slot == -1 {
		return errs.ErrDidNotSupplyZeroPosition.New()
	}

	filled := make([]OrderEntry, len(order))
	copy(filled, order)
	filled[slot].ClusterID = previewID
	return s.SetOrder(filled)
}

// Positions returns the computed per-cite Position list for a cluster id,
// in cite order within that cluster.
func (s *Store) Positions(clusterID string) ([]CitePosition, bool) {
	p, ok := s.positions[clusterID]
	return p, ok
}

// recomputePositions runs the §4.2 algorithm over the current order.
func (s *Store) recomputePositions() {
	positions := map[string][]CitePosition{}
	firstOccurrenceNote := map[string]uint32{}

	resolve := func(id string) *Cluster {
		if id == "" {
			return nil
		}
		return s.clusters[id]
	}

	for i, entry := range s.order {
		cl := resolve(entry.ClusterID)
		if cl == nil {
			continue
		}
		var prevCluster *Cluster
		if i > 0 {
			prevCluster = resolve(s.order[i-1].ClusterID)
		}

		perCite := make([]CitePosition, 0, len(cl.Cites))
		for j, cite := range cl.Cites {
			matchingPrev, hasMatch := matchingPrevCite(cl, j, prevCluster)

			priorNN, hasPrior := firstOccurrenceNote[cite.RefID]
			var cp CitePosition
			if hasPrior {
				diff := int64(entry.Number.noteOf()) - int64(priorNN)
				switch {
				case hasMatch && locatorsEqual(matchingPrev, cite):
					cp.Position = PositionIbid
				case hasMatch:
					cp.Position = PositionIbidWithLocator
				case diff == 0 || diff < int64(s.nearNoteDistance):
					cp.Position = PositionNearNote
				default:
					cp.Position = PositionFarNote
				}
				cp.FirstReferenceNoteNumber = priorNN
			} else {
				cp.Position = PositionFirst
				if entry.Number.Kind == NumberNote {
					firstOccurrenceNote[cite.RefID] = entry.Number.Number
				}
			}
			perCite = append(perCite, cp)
		}
		positions[entry.ClusterID] = perCite
	}

	s.positions = positions
}

// matchingPrevCite implements the "previous cite in this cluster if same
// ref, else the previous cluster's last cite if it's wholly this ref, else
// none" rule (spec.md §4.2 step 1).
func matchingPrevCite(cl *Cluster, j int, prevCluster *Cluster) (Cite, bool) {
	if j > 0 {
		if cl.Cites[j-1].RefID == cl.Cites[j].RefID {
			return cl.Cites[j-1], true
		}
		return Cite{}, false
	}
	if prevCluster == nil || len(prevCluster.Cites) == 0 {
		return Cite{}, false
	}
	want := cl.Cites[j].RefID
	for _, c := range prevCluster.Cites {
		if c.RefID != want {
			return Cite{}, false
		}
	}
	return prevCluster.Cites[len(prevCluster.Cites)-1], true
}

// MatchesPositionCondition reports whether p satisfies a CSL
// position="..." test, per the cumulative hierarchy real CSL styles rely
// on (ibid-with-locator implies ibid implies subsequent; near-note is
// "close enough" to also count as ibid-adjacent). Consulted by <choose>
// condition evaluation, not by this package itself.
func MatchesPositionCondition(p Position, query string) bool {
	switch query {
	case "first":
		return p == PositionFirst
	case "ibid":
		return p == PositionIbid || p == PositionIbidWithLocator
	case "ibid-with-locator":
		return p == PositionIbidWithLocator
	case "subsequent":
		return p != PositionFirst
	case "near-note":
		return p == PositionNearNote || p == PositionIbid || p == PositionIbidWithLocator
	case "far-note":
		return p == PositionFarNote
	default:
		return false
	}
}
