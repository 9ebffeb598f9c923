package api

import (
	"net/http"

	"fleetdash/internal/apperr"
	"fleetdash/internal/models"
	"fleetdash/internal/repo"
)

const invalidTaskID = "Invalid task ID"

// PatchStatusRequest — тело PATCH /api/tasks.
type PatchStatusRequest struct {
	ID     uint              `json:"id"`
	Status models.TaskStatus `json:"status"`
}

func (h *HTTP) listTasks(w http.ResponseWriter, r *http.Request) {
	if cols := repo.ParseSelect(r.URL.Query().Get("select")); cols != nil {
		rows, err := h.stores.Tasks.ListProjected(r.Context(), cols)
		if err != nil {
			fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rows)
		return
	}
	ts, err := h.stores.Tasks.List(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ts)
}

func (h *HTTP) createTask(w http.ResponseWriter, r *http.Request) {
	var t models.Task
	if err := decode(r, &t); err != nil {
		fail(w, r, err)
		return
	}
	if err := h.stores.Tasks.Create(r.Context(), &t); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *HTTP) patchTaskStatus(w http.ResponseWriter, r *http.Request) {
	var in PatchStatusRequest
	if err := decode(r, &in); err != nil {
		fail(w, r, err)
		return
	}
	if in.ID == 0 || in.Status == "" {
		apperr.WriteMessage(w, http.StatusBadRequest, "Missing id or status")
		return
	}
	t, err := h.stores.Tasks.PatchStatus(r.Context(), in.ID, in.Status)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *HTTP) getTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, invalidTaskID)
	if err != nil {
		fail(w, r, err)
		return
	}
	t, err := h.stores.Tasks.GetWithRelations(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *HTTP) updateTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, invalidTaskID)
	if err != nil {
		fail(w, r, err)
		return
	}
	body, err := readBody(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	t, err := h.stores.Tasks.Update(r.Context(), id, body)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *HTTP) deleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, invalidTaskID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := h.stores.Tasks.Delete(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
