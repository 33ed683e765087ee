package citeproc

import (
	"github.com/citeproc-go/citeproc/cluster"
	"github.com/citeproc-go/citeproc/render"
)

// BibliographyEntry is one sorted, rendered entry (spec.md §6
// "get_bibliography").
type BibliographyEntry struct {
	ID   string
	Text string
}

// GetBibliography renders every reference in the library, sorted per the
// style's bibliography sort keys (spec.md §6 "get_bibliography").
// Non-goal per spec.md §1 ("Non-goals": the "disambiguate" bibliography
// pass is only a thin extension here — see DESIGN.md) notwithstanding,
// entries still go through the full name/year-suffix escalation so a
// bibliography entry never looks less specific than its own citations.
func (p *Processor) GetBibliography() []BibliographyEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bibliographyLocked()
}

// GetBibliographyMeta returns layout metadata for the bibliography (line
// spacing, entry spacing, hanging indent, second-field-align column
// width), computed once over the full sorted set (spec.md §6
// "get_bibliography_meta").
func (p *Processor) GetBibliographyMeta() render.Meta {
	p.mu.Lock()
	defer p.mu.Unlock()

	entries := p.bibliographyLocked()
	maxOffset := 0
	if p.style.Bibliography != nil && p.style.Bibliography.SecondFieldAlign {
		for _, e := range entries {
			w := render.FirstFieldWidth(e.Text, p.style.Bibliography.Layout)
			if w > maxOffset {
				maxOffset = w
			}
		}
	}
	return render.MetaFromBibliography(p.style.Bibliography, maxOffset)
}

func (p *Processor) bibliographyLocked() []BibliographyEntry {
	if p.style.Bibliography == nil {
		return nil
	}

	nums := p.citationNumbersFor(p.clust)
	sorted := p.sorter().Sort(p.refs.All(), nums)

	elements := p.style.Bibliography.Layout.Elements
	eng := p.engine()
	eng.SetCitationOrder(nums)

	out := make([]BibliographyEntry, 0, len(sorted))
	for _, ref := range sorted {
		cite := cluster.Cite{RefID: ref.ID}
		position := cluster.CitePosition{Position: cluster.PositionFirst}
		result := eng.DisambiguateLayout(elements, cite, position, nums[ref.ID])
		text := render.Entry(result.Arena, result.Root, p.style.Bibliography.Layout, p.format, p.lang)
		out = append(out, BibliographyEntry{ID: ref.ID, Text: text})
	}
	return out
}
