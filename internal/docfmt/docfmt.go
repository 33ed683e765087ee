// Package docfmt is the on-disk/over-the-wire document shape shared by
// cmd/citeproc and cmd/citeprocd: a plain JSON array of clusters in
// document order, each holding the cites CSL would otherwise receive one
// insert_cluster/set_cluster_order pair for. A real embedder (a word
// processor plugin, a server) drives citeproc.Processor through its
// methods directly; this package only exists to give the two command
// binaries a shared wire shape to read.
package docfmt

import (
	"github.com/citeproc-go/citeproc"
	"github.com/citeproc-go/citeproc/cluster"
	"github.com/citeproc-go/citeproc/refs"
)

type Cite struct {
	RefID    string `json:"ref_id"`
	Prefix   string `json:"prefix"`
	Suffix   string `json:"suffix"`
	Locators []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"locators"`
}

type Cluster struct {
	ID            string  `json:"id"`
	Cites         []Cite  `json:"cites"`
	Mode          string  `json:"mode"`
	SuppressFirst int     `json:"suppress_first"`
	Infix         string  `json:"infix"`
	Note          *uint32 `json:"note"`
}

func ParseMode(s string) cluster.Mode {
	switch s {
	case "author-only":
		return cluster.ModeAuthorOnly
	case "suppress-author":
		return cluster.ModeSuppressAuthor
	case "composite":
		return cluster.ModeComposite
	default:
		return cluster.ModeNormal
	}
}

// ToClusterInits converts a document into the ClusterInit batch
// Processor.InitClusters expects, assigning ascending in-text numbers
// unless a cluster names an explicit footnote number.
func ToClusterInits(doc []Cluster) []citeproc.ClusterInit {
	out := make([]citeproc.ClusterInit, 0, len(doc))
	intextNext := uint32(1)
	for _, dc := range doc {
		cites := make([]cluster.Cite, 0, len(dc.Cites))
		for _, dcite := range dc.Cites {
			locs := make([]cluster.Locator, 0, len(dcite.Locators))
			for _, l := range dcite.Locators {
				locs = append(locs, cluster.Locator{
					Type:  cluster.LocatorType(l.Type),
					Value: refs.ParseNumericValue(l.Value),
				})
			}
			cites = append(cites, cluster.Cite{
				RefID:    dcite.RefID,
				Prefix:   dcite.Prefix,
				Suffix:   dcite.Suffix,
				Locators: locs,
			})
		}

		num := cluster.ClusterNumber{Kind: cluster.NumberInText, Number: intextNext}
		intextNext++
		if dc.Note != nil {
			num = cluster.ClusterNumber{Kind: cluster.NumberNote, Number: *dc.Note}
		}

		out = append(out, citeproc.ClusterInit{
			Cluster: cluster.Cluster{
				ID:            dc.ID,
				Cites:         cites,
				Mode:          ParseMode(dc.Mode),
				SuppressFirst: dc.SuppressFirst,
				Infix:         dc.Infix,
			},
			Number: num,
		})
	}
	return out
}
