package api

import (
	"net/http"

	"fleetdash/internal/repo"
)

func (h *HTTP) listModels(w http.ResponseWriter, r *http.Request) {
	if cols := repo.ParseSelect(r.URL.Query().Get("select")); cols != nil {
		rows, err := h.stores.Models.ListProjected(r.Context(), cols)
		if err != nil {
			fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rows)
		return
	}
	ms, err := h.stores.Models.List(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ms)
}

func (h *HTTP) getModel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "Invalid model ID")
	if err != nil {
		fail(w, r, err)
		return
	}
	m, err := h.stores.Models.Get(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}
