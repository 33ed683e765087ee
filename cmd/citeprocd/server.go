// Command citeprocd is a demo HTTP server wrapping the processor package
// behind a small JSON API: one Processor per session id, created by
// posting a style and driven afterward through references/clusters/
// bibliography endpoints (SPEC_FULL.md §2.3's networked deployment of the
// same incremental computation graph the CLI drives in-process).
package main

import (
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	"github.com/sirupsen/logrus"

	"github.com/citeproc-go/citeproc"
)

// sessionStore holds every live Processor, keyed by the session id the
// client receives from POST /processors. No Processor is ever shared
// across goroutines without its own lock (spec.md §9 "no process-wide
// singletons"); sessionStore only adds/removes/looks up *citeproc.Processor
// values, never reaches inside one without going through its own API.
type sessionStore struct {
	mu   sync.RWMutex
	log  logrus.FieldLogger
	next uint64
	byID map[string]*citeproc.Processor
}

func newSessionStore(log logrus.FieldLogger) *sessionStore {
	return &sessionStore{log: log, byID: map[string]*citeproc.Processor{}}
}

func (s *sessionStore) create(id string, p *citeproc.Processor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[id] = p
}

func (s *sessionStore) get(id string) (*citeproc.Processor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	return p, ok
}

func (s *sessionStore) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
}

// federatedGatherer gathers every live session's own prometheus registry
// into one /metrics response, since each Processor keeps its metrics on a
// private registry rather than prometheus' global default (metrics.go).
type federatedGatherer struct{ store *sessionStore }

func (g federatedGatherer) Gather() ([]*dto.MetricFamily, error) {
	g.store.mu.RLock()
	defer g.store.mu.RUnlock()

	var all []*dto.MetricFamily
	for _, p := range g.store.byID {
		mfs, err := p.MetricsRegistry().Gather()
		if err != nil {
			return nil, err
		}
		all = append(all, mfs...)
	}
	return all, nil
}

func newRouter(store *sessionStore) *mux.Router {
	h := &apiHandlers{store: store}
	r := mux.NewRouter()

	r.HandleFunc("/processors", h.createProcessor).Methods(http.MethodPost)
	r.HandleFunc("/processors/{id}", h.deleteProcessor).Methods(http.MethodDelete)
	r.HandleFunc("/processors/{id}/references", h.setReferences).Methods(http.MethodPost)
	r.HandleFunc("/processors/{id}/clusters", h.initClusters).Methods(http.MethodPost)
	r.HandleFunc("/processors/{id}/clusters/{cid}", h.getCluster).Methods(http.MethodGet)
	r.HandleFunc("/processors/{id}/bibliography", h.getBibliography).Methods(http.MethodGet)
	r.HandleFunc("/processors/{id}/updates", h.batchedUpdates).Methods(http.MethodPost)

	r.Handle("/metrics", promhttp.HandlerFor(
		prometheus.Gatherer(federatedGatherer{store: store}),
		promhttp.HandlerOpts{},
	)).Methods(http.MethodGet)

	return r
}
