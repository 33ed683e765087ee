package disamb

import (
	"math"
	"sort"

	"github.com/citeproc-go/citeproc/cluster"
	"github.com/citeproc-go/citeproc/ir"
	"github.com/citeproc-go/citeproc/locale"
	"github.com/citeproc-go/citeproc/refs"
	"github.com/citeproc-go/citeproc/style"
)

// Pass identifies which of the four escalation generations produced a
// rendering, grounded on citeproc-proc/src/db.rs's
// ir_gen0/ir_gen1_add_names/ir_gen2_add_given_name/ir_gen3_add_year_suffix/
// ir_gen4_conditionals pipeline.
type Pass uint8

const (
	PassBaseline Pass = iota
	PassAddNames
	PassAddGivenName
	PassAddYearSuffix
	PassConditionals
)

// Engine drives the escalation pipeline for one style over one reference
// library. It owns the year-suffix assignment table, which is global
// across the bibliography (spec.md §4.6: year suffixes are assigned once
// letters are needed, in citation order, and then reused by every cite of
// that reference).
type Engine struct {
	Style  *style.Style
	Locale *locale.Store
	Refs   *refs.Store
	Lang   string

	yearSuffix map[string]string // ref id -> assigned letter

	// citationOrder maps a reference id to its 1-based first-citation
	// order in the document (spec.md §4.6.3's "document-citation order"),
	// refreshed by SetCitationOrder before a batch of Disambiguate calls.
	citationOrder map[string]int
}

func NewEngine(st *style.Style, loc *locale.Store, store *refs.Store, lang string) *Engine {
	return &Engine{Style: st, Locale: loc, Refs: store, Lang: lang, yearSuffix: map[string]string{}}
}

// SetCitationOrder refreshes the reference-id -> first-citation-order map
// assignYearSuffix sorts an ambiguous group by. Callers (Processor's
// cluster render and bibliography render) recompute this map fresh on
// every call from the current document order, so it is simply replaced
// rather than merged.
func (e *Engine) SetCitationOrder(nums map[string]int) {
	e.citationOrder = nums
}

// Result is the outcome of escalating one cite through as many passes as
// its ambiguous set requires.
type Result struct {
	Arena *ir.Arena
	Root  ir.NodeId
	Pass  Pass
	// Ambiguous lists every other reference id whose rendering under the
	// same pass and cite context is indistinguishable from this one.
	Ambiguous []string
}

// Disambiguate builds IR for cite against its own reference, escalating
// through PassAddNames / PassAddGivenName / PassAddYearSuffix /
// PassConditionals in turn until the rendering is unambiguous among every
// other reference in the library or escalation is exhausted
// (citeproc-proc/src/db.rs's disambiguate/is_unambiguous loop).
func (e *Engine) Disambiguate(cite cluster.Cite, position cluster.CitePosition, citationNumber int) Result {
	return e.DisambiguateLayout(e.layoutElements(), cite, position, citationNumber)
}

// DisambiguateLayout is Disambiguate generalized over an explicit layout,
// so the same four-pass escalation can drive bibliography entries (which
// render through the style's Bibliography.Layout rather than its
// Citation.Layout) without duplicating the escalation loop.
func (e *Engine) DisambiguateLayout(elements []style.Element, cite cluster.Cite, position cluster.CitePosition, citationNumber int) Result {
	ref, ok := e.Refs.Get(cite.RefID)
	if !ok {
		return Result{}
	}

	expansion := ir.NameExpansionState{}
	ctxFor := func() *ir.Context {
		return &ir.Context{
			Style:             e.Style,
			Locale:            e.Locale,
			Lang:              e.Lang,
			Reference:         ref,
			Cite:              cite,
			Position:          position,
			CitationNumber:    citationNumber,
			YearSuffix:        e.yearSuffix[cite.RefID],
			NameExpansion:     expansion,
		}
	}

	build := func() (*ir.Arena, ir.NodeId) {
		return ir.Build(elements, ctxFor())
	}

	arena, root := build()
	amb := e.ambiguousSet(elements, cite.RefID, arena, root, ctxFor())
	pass := PassBaseline

	if len(amb) > 0 && e.Style.Citation != nil && e.Style.Citation.DisambiguateAddNames {
		totalNames := maxNameCount(ref)
		for len(amb) > 0 && expansion.MinNamesShown < totalNames {
			expansion.MinNamesShown++
			arena, root = build()
			amb = e.ambiguousSet(elements, cite.RefID, arena, root, ctxFor())
			pass = PassAddNames
		}
	}

	if len(amb) > 0 && e.Style.Citation != nil && e.Style.Citation.DisambiguateAddGivenname {
		expansion.ForceLongForm = true
		arena, root = build()
		amb = e.ambiguousSet(elements, cite.RefID, arena, root, ctxFor())
		pass = PassAddGivenName
	}

	if len(amb) > 0 && e.Style.Citation != nil && e.Style.Citation.DisambiguateAddYearSuffix {
		e.assignYearSuffix(cite.RefID, amb)
		arena, root = build()
		amb = e.ambiguousSet(elements, cite.RefID, arena, root, ctxFor())
		pass = PassAddYearSuffix
	}

	if len(amb) > 0 {
		ctx := ctxFor()
		ctx.DisambiguateCount++
		arena, root = ir.Build(elements, ctx)
		amb = e.ambiguousSet(elements, cite.RefID, arena, root, ctx)
		pass = PassConditionals
	}

	return Result{Arena: arena, Root: root, Pass: pass, Ambiguous: amb}
}

func (e *Engine) layoutElements() []style.Element {
	if e.Style.Citation == nil {
		return nil
	}
	return e.Style.Citation.Layout.Elements
}

// ambiguousSet renders every other reference under the same cite context
// and compares flattened edge streams via single-path Dfa acceptance,
// mirroring is_unambiguous's "count how many cited references' Dfa accept
// this edge stream" check, simplified to one concrete rendering per
// reference rather than db.rs's full free-condition enumeration (recorded
// as an Open Question resolution in DESIGN.md: <choose> branches that
// could render differently for a hypothetically-cited reference are
// evaluated using that reference's own real field data rather than every
// combination of untested conditions).
func (e *Engine) ambiguousSet(elements []style.Element, ownID string, arena *ir.Arena, root ir.NodeId, ctx *ir.Context) []string {
	edges := ir.Flatten(arena, root)
	tokens := TokensFromEdges(edges)
	dfa := nfaFromTokens(tokens).Minimize()

	var matches []string
	for _, other := range e.Refs.All() {
		if other.ID == ownID {
			continue
		}
		otherCtx := *ctx
		otherCtx.Reference = other
		otherCite := ctx.Cite
		otherCite.RefID = other.ID
		otherCtx.Cite = otherCite
		// Each reference carries its own already-assigned year suffix, not
		// the cited reference's — two refs can only look alike if they'd
		// render the same suffix letter too.
		otherCtx.YearSuffix = e.yearSuffix[other.ID]
		oArena, oRoot := ir.Build(elements, &otherCtx)
		oTokens := TokensFromEdges(ir.Flatten(oArena, oRoot))
		if dfa.Accepts(oTokens) {
			matches = append(matches, other.ID)
		}
	}
	sort.Strings(matches)
	return matches
}

func nfaFromTokens(tokens []Token) *Nfa {
	n := NewNfa()
	n.AddCompleteSequence(tokens)
	return n
}

func maxNameCount(ref *refs.Reference) int {
	max := 0
	for _, names := range ref.Names {
		if len(names) > max {
			max = len(names)
		}
	}
	return max
}

// assignYearSuffix gives every reference in an ambiguous group a letter in
// document-citation order ("a" is reserved for whichever member of the
// group was cited first; unlike citeproc-js, a lone unambiguous reference
// never receives a suffix). Letters are assigned once per reference and
// reused by every future cite of it. A reference absent from
// citationOrder (cited nowhere yet, e.g. bibliography-only) sorts last,
// ties broken by id for determinism.
func (e *Engine) assignYearSuffix(ownID string, ambiguous []string) {
	group := append([]string{ownID}, ambiguous...)
	sort.SliceStable(group, func(i, j int) bool {
		oi, oj := e.orderOf(group[i]), e.orderOf(group[j])
		if oi != oj {
			return oi < oj
		}
		return group[i] < group[j]
	})
	for _, id := range group {
		if _, ok := e.yearSuffix[id]; ok {
			continue
		}
		e.yearSuffix[id] = nextSuffixLetter(e.yearSuffix)
	}
}

// orderOf returns id's document-citation order, or math.MaxInt if id has
// no recorded citation (sorts after every actually-cited reference).
func (e *Engine) orderOf(id string) int {
	if n, ok := e.citationOrder[id]; ok {
		return n
	}
	return math.MaxInt
}

// YearSuffixFor returns the letter assigned to id by a prior Disambiguate
// call, or "" if id has never needed one. It reads the engine's own letter
// map, the same one every later Disambiguate or DisambiguateLayout call on
// this engine uses.
func (e *Engine) YearSuffixFor(id string) string {
	return e.yearSuffix[id]
}

func nextSuffixLetter(assigned map[string]string) string {
	used := map[string]bool{}
	for _, v := range assigned {
		used[v] = true
	}
	for n := 0; ; n++ {
		candidate := suffixLetterAt(n)
		if !used[candidate] {
			return candidate
		}
	}
}

// suffixLetterAt produces a/b/.../z/aa/ab/... for n = 0,1,...
func suffixLetterAt(n int) string {
	s := ""
	n++
	for n > 0 {
		n--
		s = string(rune('a'+n%26)) + s
		n /= 26
	}
	return s
}
