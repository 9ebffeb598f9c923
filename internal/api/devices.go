package api

import (
	"context"
	"net/http"

	"fleetdash/internal/apperr"
	"fleetdash/internal/logs"
	"fleetdash/internal/models"
	"fleetdash/internal/repo"

	"github.com/sirupsen/logrus"
)

const invalidDeviceID = "Invalid device ID"

// ControlResponse — ответ recall/sync.
type ControlResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Device  *models.Device `json:"device"`
}

func (h *HTTP) listDevices(w http.ResponseWriter, r *http.Request) {
	if cols := repo.ParseSelect(r.URL.Query().Get("select")); cols != nil {
		rows, err := h.stores.Devices.ListProjected(r.Context(), cols)
		if err != nil {
			fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rows)
		return
	}
	ds, err := h.stores.Devices.List(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

func (h *HTTP) createDevice(w http.ResponseWriter, r *http.Request) {
	var d models.Device
	if err := decode(r, &d); err != nil {
		fail(w, r, err)
		return
	}
	if err := h.stores.Devices.Create(r.Context(), &d); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (h *HTTP) getDevice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, invalidDeviceID)
	if err != nil {
		fail(w, r, err)
		return
	}
	d, err := h.stores.Devices.Get(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *HTTP) updateDevice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, invalidDeviceID)
	if err != nil {
		fail(w, r, err)
		return
	}
	body, err := readBody(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	d, err := h.stores.Devices.Update(r.Context(), id, body)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *HTTP) deleteDevice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, invalidDeviceID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := h.stores.Devices.Delete(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *HTTP) recallDevice(w http.ResponseWriter, r *http.Request) {
	h.control(w, r, "recall", h.stores.Devices.Recall, "Device recall command sent", "Failed to recall device")
}

func (h *HTTP) syncDevice(w http.ResponseWriter, r *http.Request) {
	h.control(w, r, "sync", h.stores.Devices.Sync, "Device sync command sent", "Failed to sync device")
}

type controlFunc func(ctx context.Context, id uint) (*models.Device, error)

// control — общий путь recall/sync: 400 на кривой id, 404 если нет устройства,
// остальное — 500 с фиксированным текстом.
func (h *HTTP) control(w http.ResponseWriter, r *http.Request, action string, fn controlFunc, okMsg, failMsg string) {
	id, err := pathID(r, invalidDeviceID)
	if err != nil {
		fail(w, r, err)
		return
	}
	d, err := fn(r.Context(), id)
	if err != nil {
		switch apperr.KindOf(err) {
		case apperr.NotFound, apperr.InvalidArgument:
			fail(w, r, err)
		default:
			logs.Logger.WithFields(logrus.Fields{"action": action, "device_id": id}).Errorf("device control: %v", err)
			apperr.WriteMessage(w, http.StatusInternalServerError, failMsg)
		}
		return
	}
	writeJSON(w, http.StatusOK, ControlResponse{Success: true, Message: okMsg, Device: d})
}
