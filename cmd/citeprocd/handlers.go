package main

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/satori/go.uuid"
	"github.com/segmentio/encoding/json"

	"github.com/citeproc-go/citeproc"
	"github.com/citeproc-go/citeproc/errs"
	"github.com/citeproc-go/citeproc/internal/docfmt"
	"github.com/citeproc-go/citeproc/render"
)

type apiHandlers struct {
	store *sessionStore
}

type createProcessorRequest struct {
	StyleText   string `json:"style_text"`
	Format      string `json:"format"`
	SaveUpdates bool   `json:"save_updates"`
}

type createProcessorResponse struct {
	ID string `json:"id"`
}

func (h *apiHandlers) createProcessor(w http.ResponseWriter, r *http.Request) {
	var req createProcessorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	proc, err := citeproc.NewProcessor(req.StyleText, citeproc.Config{
		SaveUpdates: req.SaveUpdates,
		Format:      render.ParseFormat(req.Format),
	})
	if err != nil {
		writeStyleError(w, err)
		return
	}

	id, uerr := uuid.NewV4()
	idStr := id.String()
	if uerr != nil {
		idStr = "session"
	}
	h.store.create(idStr, proc)
	writeJSON(w, http.StatusCreated, createProcessorResponse{ID: idStr})
}

func (h *apiHandlers) deleteProcessor(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	h.store.remove(id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *apiHandlers) processorFor(w http.ResponseWriter, r *http.Request) (*citeproc.Processor, bool) {
	id := mux.Vars(r)["id"]
	proc, ok := h.store.get(id)
	if !ok {
		writeError(w, http.StatusNotFound, errs.ErrNonExistentCluster.New(id))
		return nil, false
	}
	return proc, true
}

func (h *apiHandlers) setReferences(w http.ResponseWriter, r *http.Request) {
	proc, ok := h.processorFor(w, r)
	if !ok {
		return
	}
	var raw []map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	skipped := proc.SetReferences(raw)
	writeJSON(w, http.StatusOK, map[string]interface{}{"skipped": skipped})
}

func (h *apiHandlers) initClusters(w http.ResponseWriter, r *http.Request) {
	proc, ok := h.processorFor(w, r)
	if !ok {
		return
	}
	var doc []docfmt.Cluster
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := proc.InitClusters(docfmt.ToClusterInits(doc)); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *apiHandlers) getCluster(w http.ResponseWriter, r *http.Request) {
	proc, ok := h.processorFor(w, r)
	if !ok {
		return
	}
	cid := mux.Vars(r)["cid"]
	text, ok := proc.GetCluster(cid)
	if !ok {
		writeError(w, http.StatusNotFound, errs.ErrNonExistentCluster.New(cid))
		return
	}
	writeJSON(w, http.StatusOK, citeproc.BibliographyEntry{ID: cid, Text: text})
}

func (h *apiHandlers) getBibliography(w http.ResponseWriter, r *http.Request) {
	proc, ok := h.processorFor(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": proc.GetBibliography(),
		"meta":    proc.GetBibliographyMeta(),
	})
}

func (h *apiHandlers) batchedUpdates(w http.ResponseWriter, r *http.Request) {
	proc, ok := h.processorFor(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, proc.BatchedUpdates())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeStyleError(w http.ResponseWriter, err error) {
	se, ok := errs.AsStyleError(err)
	if !ok {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusBadRequest, map[string]interface{}{"diagnostics": se.Diagnostics})
}

