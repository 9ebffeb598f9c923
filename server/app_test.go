package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fleetdash/config"
)

func newTestApp(t *testing.T, name string) *App {
	t.Helper()
	cfg := &config.Config{}
	cfg.Server.HTTPPort = "0"
	cfg.Database.Driver = "sqlite"
	cfg.Database.DSN = "file:" + name + "?mode=memory&cache=shared"
	cfg.Logging.Level = "error"

	a := &App{}
	if err := a.Initialize(cfg, nil); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	sqlDB, _ := a.DB().DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return a
}

func TestInitializeWiresRoutes(t *testing.T) {
	a := newTestApp(t, "app_routes")

	tests := []struct {
		path   string
		status int
		body   string
	}{
		{"/healthz", http.StatusOK, "ok"},
		{"/readyz", http.StatusOK, "ready"},
		{"/api/devices", http.StatusOK, "[]"},
		{"/api/views/dashboard", http.StatusOK, `"active_tasks":0`},
		{"/api/views/tasks", http.StatusOK, `"state":"ready"`},
		{"/ui/", http.StatusOK, "<title>Fleet Dashboard</title>"},
		{"/", http.StatusFound, ""},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if rec.Code != tt.status || !strings.Contains(rec.Body.String(), tt.body) {
			t.Errorf("%s: %d %s", tt.path, rec.Code, rec.Body.String())
		}
		if rec.Header().Get("X-Request-ID") == "" {
			t.Errorf("%s: no request id", tt.path)
		}
	}
}

func TestUnmatchedRoutesAnswerJSON(t *testing.T) {
	a := newTestApp(t, "app_unmatched")

	tests := []struct {
		method string
		path   string
		status int
		body   string
	}{
		{http.MethodPost, "/api/models", http.StatusMethodNotAllowed, `{"error":"Method not allowed"}`},
		{http.MethodPut, "/api/tasks", http.StatusMethodNotAllowed, `{"error":"Method not allowed"}`},
		{http.MethodDelete, "/api/views/devices", http.StatusMethodNotAllowed, `{"error":"Method not allowed"}`},
		{http.MethodGet, "/api/nope", http.StatusNotFound, `{"error":"Not found"}`},
		{http.MethodGet, "/nope", http.StatusNotFound, `{"error":"Not found"}`},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		a.Router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		if rec.Code != tt.status {
			t.Errorf("%s %s: status %d", tt.method, tt.path, rec.Code)
		}
		if got := strings.TrimSpace(rec.Body.String()); got != tt.body {
			t.Errorf("%s %s: body %q", tt.method, tt.path, got)
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
			t.Errorf("%s %s: content type %q", tt.method, tt.path, ct)
		}
	}
}

func TestRunRequiresInitialize(t *testing.T) {
	var a App
	if err := a.Run(); err != ErrNotInitialized {
		t.Fatalf("err = %v", err)
	}
}
