package citeproc

import "github.com/prometheus/client_golang/prometheus"

// processorMetrics are the prometheus counters/histograms SPEC_FULL.md §3
// wires up for the demo HTTP server (cmd/citeprocd) to expose at /metrics.
// Each Processor registers its own collectors against its own registry so
// multiple processors (e.g. one per request in citeprocd) never collide on
// prometheus' default global registry.
type processorMetrics struct {
	Registry *prometheus.Registry

	MemoHits   prometheus.Counter
	MemoMisses prometheus.Counter

	DisambPasses *prometheus.CounterVec

	ClusterRecomputes prometheus.Counter

	ComputeDuration prometheus.Histogram
}

func newProcessorMetrics() *processorMetrics {
	reg := prometheus.NewRegistry()
	m := &processorMetrics{
		Registry: reg,
		MemoHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "citeproc_memo_hits_total",
			Help: "Cluster renderings served from the memo table without recomputation.",
		}),
		MemoMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "citeproc_memo_misses_total",
			Help: "Cluster renderings that required recomputation.",
		}),
		DisambPasses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "citeproc_disambiguation_passes_total",
			Help: "Cites resolved at each disambiguation escalation pass.",
		}, []string{"pass"}),
		ClusterRecomputes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "citeproc_cluster_recomputes_total",
			Help: "Cluster computations performed on a memo miss.",
		}),
		ComputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "citeproc_cluster_compute_seconds",
			Help:    "Wall time spent computing a single cluster's rendering.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.MemoHits, m.MemoMisses, m.DisambPasses, m.ClusterRecomputes, m.ComputeDuration)
	return m
}
