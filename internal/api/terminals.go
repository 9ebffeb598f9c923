package api

import (
	"net/http"

	"fleetdash/internal/models"
)

func (h *HTTP) listTerminals(w http.ResponseWriter, r *http.Request) {
	ts, err := h.stores.Terminals.List(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ts)
}

func (h *HTTP) createTerminal(w http.ResponseWriter, r *http.Request) {
	var t models.Terminal
	if err := decode(r, &t); err != nil {
		fail(w, r, err)
		return
	}
	if err := h.stores.Terminals.Create(r.Context(), &t); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}
