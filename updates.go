package citeproc

import (
	"sort"

	"github.com/citeproc-go/citeproc/cluster"
)

// BibliographyUpdate reports what changed in the bibliography since the
// previous BatchedUpdates call (spec.md §5 "Ordering").
type BibliographyUpdate struct {
	// UpdatedEntries holds only the (id, text) pairs whose rendered text
	// differs from the previous snapshot.
	UpdatedEntries []BibliographyEntry
	// EntryIDs is non-nil iff the sort order itself changed, giving the
	// full new id order.
	EntryIDs []string
}

// BatchedUpdatesResult is the return value of BatchedUpdates (spec.md §6).
type BatchedUpdatesResult struct {
	Clusters     []BibliographyEntry // reused shape: ID is the cluster id, Text its rendering
	Bibliography *BibliographyUpdate
}

// BatchedUpdates forces computation of every dirty cluster and the
// bibliography, returning only what changed (spec.md §6
// "batched_updates"). A cluster id appears in Clusters iff its recomputed
// text differs from the text the last GetCluster/BatchedUpdates call for
// it returned (spec.md §8); recomputing to the same text clears its dirty
// flag without being reported. Clusters are returned in ascending
// ClusterNumber order (spec.md §5 "Ordering"). If the processor was built
// with SaveUpdates=false, the dirty set is still drained but
// the bibliography delta always reports empty (nothing to compare
// against).
func (p *Processor) BatchedUpdates() BatchedUpdatesResult {
	p.mu.Lock()
	defer p.mu.Unlock()

	dirtyIDs := p.drainDirtyLocked()

	numbers := map[string]cluster.ClusterNumber{}
	for _, e := range p.clust.Order() {
		if e.ClusterID != "" {
			numbers[e.ClusterID] = e.Number
		}
	}

	sort.Slice(dirtyIDs, func(i, j int) bool {
		return clusterNumberLess(numbers[dirtyIDs[i]], numbers[dirtyIDs[j]])
	})

	clusters := make([]BibliographyEntry, 0, len(dirtyIDs))
	for _, id := range dirtyIDs {
		if _, ok := p.clust.Get(id); !ok {
			continue
		}
		prevText, hadPrev := "", false
		if m, ok := p.memo[id]; ok {
			prevText, hadPrev = m.Text, true
		}
		text, err := p.computeLocked(id)
		if err != nil {
			continue
		}
		if hadPrev && text == prevText {
			continue
		}
		clusters = append(clusters, BibliographyEntry{ID: id, Text: text})
	}

	var bibUpdate *BibliographyUpdate
	if p.save {
		bibUpdate = p.bibliographyDeltaLocked()
	}

	return BatchedUpdatesResult{Clusters: clusters, Bibliography: bibUpdate}
}

// Drain forces computation of every dirty cluster and the bibliography,
// discarding the result, and clears the dirty set (spec.md §6
// "drain").
func (p *Processor) Drain() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, id := range p.drainDirtyLocked() {
		_, _ = p.computeLocked(id)
	}
	p.bibliographyDeltaLocked()
}

func (p *Processor) drainDirtyLocked() []string {
	p.dirtyMu.Lock()
	ids := make([]string, 0, len(p.dirty))
	for id := range p.dirty {
		ids = append(ids, id)
	}
	p.dirty = map[string]bool{}
	p.dirtyMu.Unlock()
	return ids
}

// bibliographyDeltaLocked renders the current bibliography, diffs it
// against the last snapshot, and updates the snapshot. Called under p.mu.
func (p *Processor) bibliographyDeltaLocked() *BibliographyUpdate {
	entries := p.bibliographyLocked()

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}

	orderChanged := !equalStrings(ids, p.lastBiblioID)

	var updated []BibliographyEntry
	prevText := make(map[string]string, len(p.lastBiblioID))
	for i, id := range p.lastBiblioID {
		if i < len(p.lastBiblio) {
			prevText[id] = p.lastBiblio[i]
		}
	}
	for _, e := range entries {
		if prevText[e.ID] != e.Text {
			updated = append(updated, e)
		}
	}

	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.Text
	}
	p.lastBiblio = texts
	p.lastBiblioID = ids

	if len(updated) == 0 && !orderChanged {
		return nil
	}
	out := &BibliographyUpdate{UpdatedEntries: updated}
	if orderChanged {
		out.EntryIDs = ids
	}
	return out
}

// clusterNumberLess orders ascending by note/in-text number, then by
// intra-note index (cluster.ClusterNumber's own ordering is unexported,
// so this mirrors it over the struct's exported fields).
func clusterNumberLess(a, b cluster.ClusterNumber) bool {
	if a.Number != b.Number {
		return a.Number < b.Number
	}
	return a.IntraIndex < b.IntraIndex
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
