package citeproc

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/citeproc-go/citeproc/cluster"
	"github.com/citeproc-go/citeproc/locale"
	"github.com/citeproc-go/citeproc/refs"
	"github.com/citeproc-go/citeproc/style"
)

func newTestProcessor(st *style.Style) *Processor {
	log := logrus.New()
	p := &Processor{
		id:      "test",
		log:     log,
		save:    true,
		style:   st,
		locale:  locale.NewStore(log),
		refs:    refs.NewStore(log),
		clust:   cluster.NewStore(log, 5),
		lang:    "en-US",
		memo:    map[string]clusterMemo{},
		dirty:   map[string]bool{},
		metrics: newProcessorMetrics(),
	}
	return p
}

func authorTextStyle() *style.Style {
	return &style.Style{
		Citation: &style.Citation{
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

// TestBatchedUpdatesOmitsUnchangedClusters exercises spec.md §8's
// "contains k iff get_cluster(k) differs from its previous value":
// touching a cluster's order without changing the reference it cites must
// not report it again once its text has already been emitted once.
func TestBatchedUpdatesOmitsUnchangedClusters(t *testing.T) {
	p := newTestProcessor(authorTextStyle())
	require.NoError(t, p.InsertReference(map[string]interface{}{
		"id": "smith", "type": "book",
		"author": []interface{}{map[string]interface{}{"family": "Smith", "given": "John"}},
	}))

	p.InsertCluster(cluster.Cluster{ID: "c1", Cites: []cluster.Cite{{RefID: "smith"}}})
	require.NoError(t, p.SetClusterOrder([]cluster.OrderEntry{
		{ClusterID: "c1", Number: cluster.ClusterNumber{Kind: cluster.NumberInText}},
	}))

	first := p.BatchedUpdates()
	require.Len(t, first.Clusters, 1)
	require.Equal(t, "c1", first.Clusters[0].ID)

	// Re-insert identical content and mark it dirty again without changing
	// anything that would change its rendered text.
	p.InsertCluster(cluster.Cluster{ID: "c1", Cites: []cluster.Cite{{RefID: "smith"}}})

	second := p.BatchedUpdates()
	require.Empty(t, second.Clusters)
}

// TestBatchedUpdatesReportsChangedClusters is the companion case: a
// cluster whose recomputed text actually differs must still be reported.
func TestBatchedUpdatesReportsChangedClusters(t *testing.T) {
	p := newTestProcessor(authorTextStyle())
	require.NoError(t, p.InsertReference(map[string]interface{}{
		"id": "smith", "type": "book",
		"author": []interface{}{map[string]interface{}{"family": "Smith", "given": "John"}},
	}))
	require.NoError(t, p.InsertReference(map[string]interface{}{
		"id": "doe", "type": "book",
		"author": []interface{}{map[string]interface{}{"family": "Doe", "given": "Jane"}},
	}))

	p.InsertCluster(cluster.Cluster{ID: "c1", Cites: []cluster.Cite{{RefID: "smith"}}})
	require.NoError(t, p.SetClusterOrder([]cluster.OrderEntry{
		{ClusterID: "c1", Number: cluster.ClusterNumber{Kind: cluster.NumberInText}},
	}))
	first := p.BatchedUpdates()
	require.Len(t, first.Clusters, 1)

	p.InsertCluster(cluster.Cluster{ID: "c1", Cites: []cluster.Cite{{RefID: "doe"}}})
	second := p.BatchedUpdates()
	require.Len(t, second.Clusters, 1)
	require.Equal(t, "c1", second.Clusters[0].ID)
}
