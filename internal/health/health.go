package health

import (
	"net/http"

	"fleetdash/internal/apperr"
	"fleetdash/internal/db"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// RegisterRoutes — только /healthz (процесс жив).
func RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		apperr.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
}

// RegisterRoutesWithDB — /healthz и /readyz (пинг БД).
func RegisterRoutesWithDB(r *mux.Router, d *gorm.DB) {
	RegisterRoutes(r)
	r.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Ping(d); err != nil {
			apperr.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
		apperr.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}).Methods(http.MethodGet)
}
