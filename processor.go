package citeproc

import (
	"sync"

	"github.com/mitchellh/hashstructure"
	"github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/citeproc-go/citeproc/cluster"
	"github.com/citeproc-go/citeproc/disamb"
	"github.com/citeproc-go/citeproc/errs"
	"github.com/citeproc-go/citeproc/locale"
	"github.com/citeproc-go/citeproc/refs"
	"github.com/citeproc-go/citeproc/render"
	"github.com/citeproc-go/citeproc/sortkey"
	"github.com/citeproc-go/citeproc/style"
)

// clusterMemo is one cluster's cached computation (spec.md §9 "a simple
// hashmap keyed by input-tuple is sufficient for correctness"). Key is a
// hashstructure digest of everything that cluster's rendering actually
// depends on; Text is only trusted while Key still matches.
type clusterMemo struct {
	Key  uint64
	Text string
}

// Processor is the incremental computation graph coordinator (spec.md §2
// "A coordinator drives the graph, surfacing only clusters whose final
// output changed since the last call"). One Processor instance per
// request/document; no process-wide singletons (spec.md §9 "Global
// mutable state").
type Processor struct {
	mu sync.Mutex

	id     string
	log    logrus.FieldLogger
	format render.Format
	save   bool

	style  *style.Style
	locale *locale.Store
	refs   *refs.Store
	clust  *cluster.Store

	localeFetcher LocaleFetcher
	fetchedLangs  map[string]bool

	lang string // style's default locale, or "en-US"

	// refsRevision/styleRev are bumped on every mutation
	// that could change a cluster's rendering, so a cluster's memo key can
	// cheaply fold "has anything upstream changed" into its hash without
	// re-hashing the whole reference library or style tree every call.
	refsRevision int64
	styleRev     int64

	memo map[string]clusterMemo

	disambEngine *disamb.Engine

	// dirty collects DocUpdate::Cluster(id) events since the last drain,
	// guarded independently of mu per spec.md §5 "Locks are never held
	// across a query; they are acquired only to push/drain records."
	dirtyMu sync.Mutex
	dirty   map[string]bool

	lastBiblio   []string
	lastBiblioID []string // reference ids, in the order lastBiblio was rendered

	metrics *processorMetrics
}

// NewProcessor compiles styleText and returns a ready Processor (spec.md §6
// "new(style_text, locale_fetcher, save_updates, format)").
func NewProcessor(styleText string, cfg Config) (*Processor, error) {
	st, err := style.Compile(styleText)
	if err != nil {
		return nil, err
	}

	log := cfg.logger()
	id := newProcessorID()
	plog := log.WithField("processor_id", id)

	lang := st.DefaultLocale
	if lang == "" {
		lang = "en-US"
	}

	p := &Processor{
		id:            id,
		log:           plog,
		format:        cfg.Format,
		save:          cfg.SaveUpdates,
		style:         st,
		locale:        locale.NewStore(plog),
		refs:          refs.NewStore(plog),
		clust:         cluster.NewStore(plog, nearNoteDistance(st)),
		localeFetcher: cfg.LocaleFetcher,
		fetchedLangs:  map[string]bool{},
		lang:          lang,
		memo:          map[string]clusterMemo{},
		dirty:         map[string]bool{},
		metrics:       newProcessorMetrics(),
	}
	p.locale.SetDefaultLocale(st.DefaultLocale)
	p.fetchLocale(lang)
	p.fetchLocale("en-US")
	return p, nil
}

func nearNoteDistance(st *style.Style) int {
	if st.Citation != nil && st.Citation.NearNoteDistance > 0 {
		return st.Citation.NearNoteDistance
	}
	return 5
}

// fetchLocale asks the configured LocaleFetcher (if any) for lang, once.
// A fetch failure is logged and otherwise ignored — spec.md §7
// UnknownLocale is never fatal.
func (p *Processor) fetchLocale(lang string) {
	if lang == "" || p.fetchedLangs[lang] || p.localeFetcher == nil {
		return
	}
	p.fetchedLangs[lang] = true
	bundle, err := p.localeFetcher(lang)
	if err != nil {
		p.log.WithError(err).WithField("locale", lang).Warn(errs.ErrUnknownLocale.New(lang).Error())
		return
	}
	if bundle != nil {
		p.locale.Add(bundle)
	}
}

// SetStyleText recompiles the style in place (spec.md §6). Every memoized
// cluster is invalidated since every rendering depends on the style.
func (p *Processor) SetStyleText(text string) error {
	st, err := style.Compile(text)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.style = st
	p.styleRev++
	lang := st.DefaultLocale
	if lang == "" {
		lang = "en-US"
	}
	p.lang = lang
	p.locale.SetDefaultLocale(st.DefaultLocale)
	p.fetchLocale(lang)
	p.clust = cluster.NewStore(p.log, nearNoteDistance(st))
	p.memo = map[string]clusterMemo{}
	p.disambEngine = nil
	return nil
}

// engine returns the processor's long-lived disambiguation engine. It is
// not rebuilt per call: its year-suffix assignment table must persist and
// be reused across every cite of a reference (spec.md §4.6), which only
// holds if one Engine instance outlives individual Compute calls. It is
// rebuilt wholesale only when the style changes, since a new style can
// redefine disambiguation entirely.
func (p *Processor) engine() *disamb.Engine {
	if p.disambEngine == nil {
		p.disambEngine = disamb.NewEngine(p.style, p.locale, p.refs, p.lang)
	}
	return p.disambEngine
}

// MetricsRegistry exposes this processor's own prometheus registry, so a
// caller running several processors (one per request, spec.md §9 "no
// process-wide singletons") can decide how to aggregate or expose them
// (e.g. citeprocd federates every active processor's registry under one
// /metrics handler).
func (p *Processor) MetricsRegistry() *prometheus.Registry {
	return p.metrics.Registry
}

func (p *Processor) sorter() *sortkey.Sorter {
	return &sortkey.Sorter{Style: p.style, Locale: p.locale, Lang: p.lang}
}

// memoKey hashes everything a cluster's final string depends on:
// the cluster's own content, the global refs/style revisions (a
// conservative over-approximation of "true dependencies" per spec.md §2,
// acceptable per spec.md §9's "simple hashmap... is sufficient for
// correctness"), its position-assigner-computed CitePositions, and its
// assigned citation numbers.
func (p *Processor) memoKey(c *cluster.Cluster, positions []cluster.CitePosition, citationNumbers map[string]int) uint64 {
	type keyShape struct {
		Cluster      cluster.Cluster
		Positions    []cluster.CitePosition
		CiteNumbers  []int
		RefsRevision int64
		StyleRev     int64
	}
	nums := make([]int, len(c.Cites))
	for i, cite := range c.Cites {
		nums[i] = citationNumbers[cite.RefID]
	}
	h, err := hashstructure.Hash(keyShape{
		Cluster:      *c,
		Positions:    positions,
		CiteNumbers:  nums,
		RefsRevision: p.refsRevision,
		StyleRev:     p.styleRev,
	}, nil)
	if err != nil {
		return 0
	}
	return h
}

func (p *Processor) markDirty(id string) {
	p.dirtyMu.Lock()
	p.dirty[id] = true
	p.dirtyMu.Unlock()
}

// startSpan wraps opentracing.StartSpan, used around each cluster
// computation (computeLocked). No global tracer is installed by this package; callers
// that want real spans configure one via opentracing.SetGlobalTracer.
func startSpan(name string) opentracing.Span {
	return opentracing.StartSpan(name)
}
