package citeproc

import (
	"github.com/citeproc-go/citeproc/cluster"
	"github.com/citeproc-go/citeproc/disamb"
	"github.com/citeproc-go/citeproc/render"
	"github.com/citeproc-go/citeproc/style"
)

// ClusterInit pairs a cluster with its initial document position, the
// shape spec.md §6's "init_clusters(clusters)" bulk-loads in one call.
type ClusterInit struct {
	Cluster cluster.Cluster
	Number  cluster.ClusterNumber
}

// InitClusters replaces the whole cluster set and document order in one
// call (spec.md §6 "init_clusters"), as a document loader would on first
// load rather than issuing one insert_cluster/set_cluster_order pair per
// cluster.
func (p *Processor) InitClusters(clusters []ClusterInit) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.clust = cluster.NewStore(p.log, nearNoteDistance(p.style))
	order := make([]cluster.OrderEntry, 0, len(clusters))
	for _, ci := range clusters {
		p.clust.Insert(ci.Cluster)
		order = append(order, cluster.OrderEntry{ClusterID: ci.Cluster.ID, Number: ci.Number})
	}
	if err := p.clust.SetOrder(order); err != nil {
		return err
	}
	p.memo = map[string]clusterMemo{}
	for _, ci := range clusters {
		p.markDirty(ci.Cluster.ID)
	}
	return nil
}

// InsertCluster adds or replaces a cluster's content (spec.md §6
// "insert_cluster"). It does not change document order; call
// SetClusterOrder afterward so its cites get positions.
func (p *Processor) InsertCluster(c cluster.Cluster) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clust.Insert(c)
	p.markDirty(c.ID)
}

// RemoveCluster deletes a cluster (spec.md §6 "remove_cluster").
func (p *Processor) RemoveCluster(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clust.Remove(id)
	delete(p.memo, id)
	p.markDirty(id)
}

// SetClusterOrder installs a new document order (spec.md §6
// "set_cluster_order") and marks every named cluster dirty, since a
// cluster's Position depends on its neighbours in the order.
func (p *Processor) SetClusterOrder(order []cluster.OrderEntry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.clust.SetOrder(order); err != nil {
		return err
	}
	for _, e := range order {
		if e.ClusterID != "" {
			p.markDirty(e.ClusterID)
		}
	}
	return nil
}

// GetCluster returns the rendered text of a previously-inserted, ordered
// cluster (spec.md §6 "get_cluster"), computing and memoizing it if the
// memo is stale or absent. ok is false if id names no cluster the store
// currently knows about, or a cluster that has no place in the document
// order.
func (p *Processor) GetCluster(id string) (text string, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.clust.Get(id); !exists {
		return "", false
	}
	if _, placed := p.clust.Positions(id); !placed {
		return "", false
	}
	text, _ = p.computeLocked(id)
	return text, true
}

// PreviewCitationCluster computes the rendering a cluster would have if
// inserted at previewOrder without mutating any stored state (spec.md §6
// "preview_citation_cluster"). format, if non-zero-value-overridden by the
// caller, replaces the processor's configured Format for this call only.
func (p *Processor) PreviewCitationCluster(c cluster.Cluster, previewOrder []cluster.OrderEntry, format *render.Format) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	shadow := cluster.NewStore(p.log, nearNoteDistance(p.style))
	for _, existing := range p.clust.Order() {
		if existing.ClusterID == "" || existing.ClusterID == c.ID {
			continue
		}
		if cl, ok := p.clust.Get(existing.ClusterID); ok {
			shadow.Insert(*cl)
		}
	}
	shadow.Insert(c)
	if err := shadow.SetOrderWithPreview(previewOrder, c.ID); err != nil {
		return "", err
	}

	f := p.format
	if format != nil {
		f = *format
	}
	return p.render(shadow, c.ID, p.citationNumbersFor(shadow), f)
}

func (p *Processor) computeLocked(id string) (string, error) {
	span := startSpan("citeproc.compute_cluster")
	defer span.Finish()

	nums := p.citationNumbersFor(p.clust)
	c, ok := p.clust.Get(id)
	if !ok {
		return "", nil
	}
	positions, _ := p.clust.Positions(id)
	key := p.memoKey(c, positions, nums)

	if m, ok := p.memo[id]; ok && m.Key == key {
		p.metrics.MemoHits.Inc()
		return m.Text, nil
	}
	p.metrics.MemoMisses.Inc()
	p.metrics.ClusterRecomputes.Inc()

	text, err := p.render(p.clust, id, nums, p.format)
	if err != nil {
		return "", err
	}
	p.memo[id] = clusterMemo{Key: key, Text: text}
	return text, nil
}

// render builds and assembles the rendered text for one cluster against
// store/nums without consulting or updating the memo table, used both by
// the real compute path and by PreviewCitationCluster's shadow store.
func (p *Processor) render(store *cluster.Store, id string, nums map[string]int, f render.Format) (string, error) {
	c, ok := store.Get(id)
	if !ok {
		return "", nil
	}
	positions, _ := store.Positions(id)
	if len(positions) != len(c.Cites) {
		positions = make([]cluster.CitePosition, len(c.Cites))
	}

	eng := p.engine()
	eng.SetCitationOrder(nums)
	cites := make([]render.CiteIR, 0, len(c.Cites))
	for i, cite := range c.Cites {
		if _, ok := p.refs.Get(cite.RefID); !ok {
			cites = append(cites, render.CiteIR{Cite: cite})
			continue
		}
		result := eng.Disambiguate(cite, positions[i], nums[cite.RefID])
		p.metrics.DisambPasses.WithLabelValues(passName(result.Pass)).Inc()
		if len(result.Ambiguous) > 0 {
			entry := p.log.WithField("ref_id", cite.RefID).WithField("ambiguous_with", result.Ambiguous)
			entry.Warn("disambiguation exhausted, rendering cite as-is")
			entry.Debugf("disambiguation exhausted, IR:\n%s", result.Arena.Dump(result.Root))
		}
		cites = append(cites, render.CiteIR{Cite: cite, Arena: result.Arena, Root: result.Root})
	}

	layout := style.Layout{}
	if p.style.Citation != nil {
		layout = p.style.Citation.Layout
	}
	return render.Cluster(cites, c.Mode, c.SuppressFirst, c.Infix, layout, f, p.lang), nil
}

// citationNumbersFor assigns each reference a 1-based citation-number
// variable value, in order of first appearance across store's document
// order (the CSL-conformant rule; spec.md is silent on the exact
// algorithm, so this follows the reference implementation's
// first-cited-wins convention, recorded in DESIGN.md).
func (p *Processor) citationNumbersFor(store *cluster.Store) map[string]int {
	nums := map[string]int{}
	next := 1
	for _, entry := range store.Order() {
		if entry.ClusterID == "" {
			continue
		}
		c, ok := store.Get(entry.ClusterID)
		if !ok {
			continue
		}
		for _, cite := range c.Cites {
			if _, seen := nums[cite.RefID]; !seen {
				nums[cite.RefID] = next
				next++
			}
		}
	}
	return nums
}

func passName(pass disamb.Pass) string {
	switch pass {
	case disamb.PassBaseline:
		return "baseline"
	case disamb.PassAddNames:
		return "add_names"
	case disamb.PassAddGivenName:
		return "add_given_name"
	case disamb.PassAddYearSuffix:
		return "add_year_suffix"
	case disamb.PassConditionals:
		return "conditionals"
	default:
		return "unknown"
	}
}
