package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"fleetdash/internal/db/dbtest"
	"fleetdash/internal/models"
	"fleetdash/internal/repo"
	"fleetdash/internal/views"

	"github.com/gorilla/mux"
	"gorm.io/datatypes"
)

type fixture struct {
	stores *repo.Stores
	router *mux.Router
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := repo.New(dbtest.Open(t))
	h := NewHTTP(s)
	r := mux.NewRouter()
	NewViews(views.NewStoreSource(s), h.LoadDetail).RegisterRoutes(r)
	h.RegisterRoutes(r)
	return &fixture{stores: s, router: r}
}

// seedDevices — n устройств online; id идут с 1.
func (f *fixture) seedDevices(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		d := &models.Device{Name: "dev", Type: models.DeviceTypeDrone, Status: models.DeviceStatusOnline,
			BatteryLevel: 10 * (i + 1), Skills: datatypes.JSONSlice[string]{"scan"}}
		if err := f.stores.Devices.Create(context.Background(), d); err != nil {
			t.Fatalf("seed device: %v", err)
		}
	}
}

func (f *fixture) seedModels(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		m := &models.AIModel{Name: "model", Description: "desc", Price: float64(500 * (i + 1))}
		if err := f.stores.Models.Create(context.Background(), m); err != nil {
			t.Fatalf("seed model: %v", err)
		}
	}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			if err := json.NewEncoder(&buf).Encode(b); err != nil {
				t.Fatalf("encode body: %v", err)
			}
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, msg string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
	body := decodeBody[map[string]string](t, rec)
	if body["error"] != msg {
		t.Fatalf("error = %q, want %q", body["error"], msg)
	}
}

func TestRecallDevice(t *testing.T) {
	f := newFixture(t)
	f.seedDevices(t, 5)

	rec := f.do(t, http.MethodPost, "/api/devices/5/recall", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[ControlResponse](t, rec)
	if !resp.Success || resp.Message != "Device recall command sent" {
		t.Fatalf("response = %+v", resp)
	}
	if resp.Device == nil || resp.Device.ID != 5 || resp.Device.Status != models.DeviceStatusMaintenance {
		t.Fatalf("device = %+v", resp.Device)
	}

	expectError(t, f.do(t, http.MethodPost, "/api/devices/99999/recall", nil), http.StatusNotFound, "Device not found")
	expectError(t, f.do(t, http.MethodPost, "/api/devices/abc/recall", nil), http.StatusBadRequest, "Invalid device ID")
}

func TestSyncDevice(t *testing.T) {
	f := newFixture(t)
	f.seedDevices(t, 5)
	if _, err := f.stores.Devices.Recall(context.Background(), 5); err != nil {
		t.Fatal(err)
	}

	before := time.Now().Add(-time.Second)
	rec := f.do(t, http.MethodPost, "/api/devices/5/sync", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[ControlResponse](t, rec)
	if resp.Message != "Device sync command sent" || resp.Device.Status != models.DeviceStatusOnline {
		t.Fatalf("response = %+v", resp)
	}
	if resp.Device.LastSyncAt == nil || resp.Device.LastSyncAt.Before(before) {
		t.Fatalf("last_sync_at = %v, want >= %v", resp.Device.LastSyncAt, before)
	}

	expectError(t, f.do(t, http.MethodPost, "/api/devices/0/sync", nil), http.StatusNotFound, "Device not found")
	expectError(t, f.do(t, http.MethodPost, "/api/devices/-1/sync", nil), http.StatusBadRequest, "Invalid device ID")
	expectError(t, f.do(t, http.MethodGet, "/api/devices/0", nil), http.StatusNotFound, "Device not found")
}

func TestCreateTaskDefaultsToPending(t *testing.T) {
	f := newFixture(t)
	f.seedDevices(t, 5)
	f.seedModels(t, 2)

	rec := f.do(t, http.MethodPost, "/api/tasks", `{"name":"scan-1","device_id":5,"model_id":2,"config":{}}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	got := decodeBody[models.Task](t, rec)
	if got.ID == 0 || got.Status != models.TaskStatusPending || got.Name != "scan-1" {
		t.Fatalf("task = %+v", got)
	}

	rec = f.do(t, http.MethodGet, "/api/tasks", nil)
	list := decodeBody[[]map[string]any](t, rec)
	if len(list) != 1 {
		t.Fatalf("tasks = %v", list)
	}
	dev, ok := list[0]["devices"].(map[string]any)
	if !ok || dev["name"] != "dev" || dev["type"] != "drone" {
		t.Fatalf("joined device = %v", list[0]["devices"])
	}
	if mod, ok := list[0]["models"].(map[string]any); !ok || mod["description"] != "desc" {
		t.Fatalf("joined model = %v", list[0]["models"])
	}
}

func TestPatchTaskStatus(t *testing.T) {
	f := newFixture(t)
	f.seedDevices(t, 1)
	f.seedModels(t, 1)
	rec := f.do(t, http.MethodPost, "/api/tasks", `{"name":"t","device_id":1,"model_id":1}`)
	task := decodeBody[models.Task](t, rec)

	expectError(t, f.do(t, http.MethodPatch, "/api/tasks", `{"id":7}`), http.StatusBadRequest, "Missing id or status")
	expectError(t, f.do(t, http.MethodPatch, "/api/tasks", `{"status":"running"}`), http.StatusBadRequest, "Missing id or status")
	expectError(t, f.do(t, http.MethodPatch, "/api/tasks", `{"id":7,"status":"running"}`), http.StatusNotFound, "Task not found")
	expectError(t, f.do(t, http.MethodPatch, "/api/tasks", `{`), http.StatusBadRequest, "Invalid request")

	rec = f.do(t, http.MethodPatch, "/api/tasks", PatchStatusRequest{ID: task.ID, Status: models.TaskStatusCompleted})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if got := decodeBody[models.Task](t, rec); got.Status != models.TaskStatusCompleted {
		t.Fatalf("task = %+v", got)
	}

	rec = f.do(t, http.MethodPatch, "/api/tasks", PatchStatusRequest{ID: task.ID, Status: "paused"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown status: %d", rec.Code)
	}
}

func TestTaskCRUD(t *testing.T) {
	f := newFixture(t)
	f.seedDevices(t, 1)
	f.seedModels(t, 1)
	task := decodeBody[models.Task](t, f.do(t, http.MethodPost, "/api/tasks", `{"name":"t","device_id":1,"model_id":1}`))

	rec := f.do(t, http.MethodPut, "/api/tasks/"+itoa(task.ID), `{"name":"renamed","config":{"fps":30}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: %d %s", rec.Code, rec.Body.String())
	}
	upd := decodeBody[models.Task](t, rec)
	if upd.Name != "renamed" || upd.Config["fps"] != float64(30) || upd.UpdatedAt == nil {
		t.Fatalf("updated = %+v", upd)
	}

	rec = f.do(t, http.MethodGet, "/api/tasks/"+itoa(task.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: %d", rec.Code)
	}

	rec = f.do(t, http.MethodDelete, "/api/tasks/"+itoa(task.ID), nil)
	if body := decodeBody[map[string]bool](t, rec); !body["success"] {
		t.Fatalf("delete: %s", rec.Body.String())
	}
	expectError(t, f.do(t, http.MethodGet, "/api/tasks/"+itoa(task.ID), nil), http.StatusNotFound, "Task not found")
	expectError(t, f.do(t, http.MethodGet, "/api/tasks/x", nil), http.StatusBadRequest, "Invalid task ID")
}

func TestListDevicesProjection(t *testing.T) {
	f := newFixture(t)
	f.seedDevices(t, 3)

	rec := f.do(t, http.MethodGet, "/api/devices?select=id,name", nil)
	rows := decodeBody[[]map[string]any](t, rec)
	if len(rows) != 3 || len(rows[0]) != 2 {
		t.Fatalf("rows = %v", rows)
	}

	rec = f.do(t, http.MethodGet, "/api/devices?select=id,secret", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad projection: %d", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/api/devices", nil)
	all := decodeBody[[]models.Device](t, rec)
	if len(all) != 3 || all[0].BatteryLevel != 10 {
		t.Fatalf("devices = %+v", all)
	}
}

func TestModelsAreReadOnly(t *testing.T) {
	f := newFixture(t)
	f.seedModels(t, 1)

	if rec := f.do(t, http.MethodGet, "/api/models/1", nil); rec.Code != http.StatusOK {
		t.Fatalf("get model: %d", rec.Code)
	}
	expectError(t, f.do(t, http.MethodGet, "/api/models/9", nil), http.StatusNotFound, "Model not found")
	expectError(t, f.do(t, http.MethodPost, "/api/models", `{"name":"x"}`), http.StatusMethodNotAllowed, "Method not allowed")
}

func TestTerminals(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/terminals", `{"name":"console","type":"desk","metadata":{"floor":2}}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create terminal: %d %s", rec.Code, rec.Body.String())
	}
	list := decodeBody[[]models.Terminal](t, f.do(t, http.MethodGet, "/api/terminals", nil))
	if len(list) != 1 || list[0].Name != "console" {
		t.Fatalf("terminals = %+v", list)
	}
}

func itoa(id uint) string { return strconv.FormatUint(uint64(id), 10) }
