package api

import (
	"context"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"fleetdash/internal/apperr"
	"fleetdash/internal/models"
	"fleetdash/internal/pipeline"
	"fleetdash/internal/views"

	"github.com/gorilla/mux"
)

// Views — /api/views/*: готовые для отрисовки снимки страниц.
type Views struct {
	src views.Source
	get DetailLoader
}

// DetailLoader — загрузка одной записи для панели деталей.
type DetailLoader func(ctx context.Context, kind pipeline.Kind, id uint) (views.Detail, error)

// NewViews — src: локальное хранилище (StoreSource) или удалённый API (client.Client).
func NewViews(src views.Source, load DetailLoader) *Views {
	return &Views{src: src, get: load}
}

func (v *Views) RegisterRoutes(r *mux.Router) {
	sr := r.PathPrefix("/api/views").Subrouter()
	sr.MethodNotAllowedHandler = apperr.MethodNotAllowedHandler()
	sr.HandleFunc("/dashboard", v.dashboard).Methods(http.MethodGet)
	sr.HandleFunc("/devices", v.devices).Methods(http.MethodGet)
	sr.HandleFunc("/terminals", v.terminals).Methods(http.MethodGet)
	sr.HandleFunc("/models", v.models).Methods(http.MethodGet)
	sr.HandleFunc("/tasks", v.tasks).Methods(http.MethodGet)
	sr.HandleFunc("/{kind:device|model|task}/{id}", v.detail).Methods(http.MethodGet)
}

// viewResponse — state/error наверху, чтобы UI не лез во вложенный объект.
type viewResponse struct {
	State  views.Phase `json:"state"`
	Error  string      `json:"error,omitempty"`
	Items  any         `json:"items"`
	Stats  any         `json:"stats"`
	Facets any         `json:"facets,omitempty"`
}

// respond — ошибка загрузки отдаётся как state=error с кодом 500.
func respond(w http.ResponseWriter, st views.State, items, stats, facets any) {
	status := http.StatusOK
	if st.Phase == views.PhaseError {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, viewResponse{State: st.Phase, Error: st.Error, Items: items, Stats: stats, Facets: facets})
}

func (v *Views) dashboard(w http.ResponseWriter, r *http.Request) {
	d := views.NewDashboard(v.src)
	_ = d.Refetch(r.Context())
	snap := d.Snapshot()
	status := http.StatusOK
	if snap.State.Phase == views.PhaseError {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, map[string]any{
		"state":  snap.State.Phase,
		"error":  snap.State.Error,
		"stats":  snap.Stats,
		"recent": snap.Recent,
	})
}

func (v *Views) devices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := pipeline.DeviceFilter{Status: q.Get("status")}
	var err error
	if f.BatteryMin, err = floatParam(q, "battery_min"); err != nil {
		fail(w, r, err)
		return
	}
	if f.BatteryMax, err = floatParam(q, "battery_max"); err != nil {
		fail(w, r, err)
		return
	}
	if f.Status != "" && !validDeviceStatus(f.Status) {
		fail(w, r, apperr.Invalid("unknown device status "+strconv.Quote(f.Status)))
		return
	}

	view := views.NewDevicesView(v.src, views.NewNotifier(0))
	_ = view.Refetch(r.Context())
	view.SetFilter(f)
	snap := view.Snapshot()
	respond(w, snap.State, snap.Items, snap.Stats, nil)
}

func (v *Views) terminals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view := views.NewTerminalsView(v.src, views.NewNotifier(0))
	_ = view.Refetch(r.Context())
	view.SetFilter(pipeline.TerminalFilter{Skill: q.Get("skill"), Tag: q.Get("tag"), Type: q.Get("type")})
	snap := view.Snapshot()
	respond(w, snap.State, snap.Items, snap.Stats, map[string][]string{"skills": snap.Skills, "tags": snap.Tags})
}

func (v *Views) models(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	key, err := pipeline.ParseModelSortKey(q.Get("sort"))
	if err != nil {
		fail(w, r, apperr.Invalid(err.Error()))
		return
	}
	f := pipeline.ModelFilter{Tag: q.Get("tag"), SortBy: key, Order: pipeline.ParseDirection(q.Get("order"))}
	for name, dst := range map[string]**float64{
		"size_min": &f.SizeMin, "size_max": &f.SizeMax,
		"price_min": &f.PriceMin, "price_max": &f.PriceMax,
	} {
		if *dst, err = floatParam(q, name); err != nil {
			fail(w, r, err)
			return
		}
	}

	view := views.NewModelsView(v.src)
	_ = view.Refetch(r.Context())
	view.SetFilter(f)
	snap := view.Snapshot()
	respond(w, snap.State, snap.Items, snap.Stats, map[string][]string{"tags": snap.Tags})
}

func (v *Views) tasks(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && !models.TaskStatus(status).Valid() {
		fail(w, r, apperr.Invalid("unknown task status "+strconv.Quote(status)))
		return
	}
	view := views.NewTasksView(v.src, views.NewNotifier(0))
	_ = view.Refetch(r.Context())
	view.SetFilter(pipeline.TaskFilter{Status: status})
	snap := view.Snapshot()
	respond(w, snap.State, snap.Items, snap.Stats, map[string][]views.Option{"devices": snap.Devices, "models": snap.Models})
}

func (v *Views) detail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "Invalid ID")
	if err != nil {
		fail(w, r, err)
		return
	}
	kind := pipeline.Kind(mux.Vars(r)["kind"])
	d, err := v.get(r.Context(), kind, id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"type": d.Kind(), "fields": views.Describe(d)})
}

// LoadDetail — DetailLoader поверх локального хранилища.
func (h *HTTP) LoadDetail(ctx context.Context, kind pipeline.Kind, id uint) (views.Detail, error) {
	switch kind {
	case pipeline.KindDevice:
		d, err := h.stores.Devices.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return views.DeviceDetail{Device: *d}, nil
	case pipeline.KindModel:
		m, err := h.stores.Models.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return views.ModelDetail{Model: *m}, nil
	case pipeline.KindTask:
		t, err := h.stores.Tasks.GetWithRelations(ctx, id)
		if err != nil {
			return nil, err
		}
		return views.TaskDetail{Task: *t}, nil
	default:
		return nil, apperr.NotFoundf("unknown record type")
	}
}

// floatParam — пустое значение означает «граница не задана».
func floatParam(q url.Values, name string) (*float64, error) {
	s := strings.TrimSpace(q.Get(name))
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	// NaN не сравнивается ни с чем и молча отфильтровал бы всё
	if err != nil || math.IsNaN(f) {
		return nil, apperr.Invalid("invalid " + name)
	}
	return &f, nil
}

func validDeviceStatus(s string) bool {
	switch models.DeviceStatus(s) {
	case models.DeviceStatusOnline, models.DeviceStatusOffline, models.DeviceStatusMaintenance:
		return true
	}
	return false
}
