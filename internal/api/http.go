// Package api — HTTP-поверхность Record Access Layer (/api/...).
package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"fleetdash/internal/apperr"
	"fleetdash/internal/logs"
	"fleetdash/internal/repo"

	"github.com/gorilla/mux"
)

const maxBody = 1 << 20

type HTTP struct{ stores *repo.Stores }

func NewHTTP(s *repo.Stores) *HTTP { return &HTTP{stores: s} }

func (h *HTTP) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()
	// путь под /api найден, метод нет: 405 сразу, не уходя в маршруты UI
	api.MethodNotAllowedHandler = apperr.MethodNotAllowedHandler()

	// devices
	api.HandleFunc("/devices", h.listDevices).Methods(http.MethodGet)
	api.HandleFunc("/devices", h.createDevice).Methods(http.MethodPost)
	api.HandleFunc("/devices/{id}", h.getDevice).Methods(http.MethodGet)
	api.HandleFunc("/devices/{id}", h.updateDevice).Methods(http.MethodPut)
	api.HandleFunc("/devices/{id}", h.deleteDevice).Methods(http.MethodDelete)
	api.HandleFunc("/devices/{id}/recall", h.recallDevice).Methods(http.MethodPost)
	api.HandleFunc("/devices/{id}/sync", h.syncDevice).Methods(http.MethodPost)

	// models (только чтение)
	api.HandleFunc("/models", h.listModels).Methods(http.MethodGet)
	api.HandleFunc("/models/{id}", h.getModel).Methods(http.MethodGet)

	// tasks
	api.HandleFunc("/tasks", h.listTasks).Methods(http.MethodGet)
	api.HandleFunc("/tasks", h.createTask).Methods(http.MethodPost)
	api.HandleFunc("/tasks", h.patchTaskStatus).Methods(http.MethodPatch)
	api.HandleFunc("/tasks/{id}", h.getTask).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{id}", h.updateTask).Methods(http.MethodPut)
	api.HandleFunc("/tasks/{id}", h.deleteTask).Methods(http.MethodDelete)

	// terminals
	api.HandleFunc("/terminals", h.listTerminals).Methods(http.MethodGet)
	api.HandleFunc("/terminals", h.createTerminal).Methods(http.MethodPost)
}

func writeJSON(w http.ResponseWriter, status int, v any) { apperr.WriteJSON(w, status, v) }

// fail пишет ошибку и логирует всё, что не 4xx.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	if apperr.KindOf(err).Status() >= http.StatusInternalServerError {
		logs.Logger.WithField("path", r.URL.Path).Errorf("request failed: %v", err)
	}
	apperr.Write(w, err)
}

// pathID — {id} из пути, неотрицательное целое. 0 допустим: такой записи нет,
// и хранилище ответит 404.
func pathID(r *http.Request, msg string) (uint, error) {
	idU, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, apperr.Invalid(msg)
	}
	return uint(idU), nil
}

func readBody(r *http.Request) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		return nil, apperr.Invalid("Invalid request")
	}
	return b, nil
}

// decode — тело запроса в v; битый JSON -> 400 "Invalid request".
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(v); err != nil {
		return apperr.Invalid("Invalid request")
	}
	return nil
}

// Stores — хранилища, с которыми работает API.
func (h *HTTP) Stores() *repo.Stores { return h.stores }
