package views

import (
	"context"
	"encoding/json"
	"strings"

	"fleetdash/internal/apperr"
	"fleetdash/internal/logs"
	"fleetdash/internal/models"
	"fleetdash/internal/pipeline"

	"golang.org/x/sync/errgroup"
)

// Option — элемент списка выбора в форме создания задачи.
type Option struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type TasksSnapshot struct {
	State   State                      `json:"state"`
	Items   []models.TaskWithRelations `json:"items"`
	Stats   pipeline.TaskStats         `json:"stats"`
	Devices []Option                   `json:"devices"`
	Models  []Option                   `json:"models"`
	Layout  Layout                     `json:"layout"`
}

// TaskForm — поля формы «новая задача»; Config — JSON-текст как его ввёл пользователь.
type TaskForm struct {
	Name     string
	DeviceID uint
	ModelID  uint
	Config   string
}

// TasksView — задачи плюс устройства и модели для выпадающих списков.
type TasksView struct {
	Layout Layout

	src     Source
	notes   *Notifier
	data    collection[models.TaskWithRelations]
	devices []models.Device
	models  []models.AIModel
	filter  pipeline.TaskFilter
}

func NewTasksView(src Source, notes *Notifier) *TasksView {
	return &TasksView{src: src, notes: notes, data: newCollection[models.TaskWithRelations]()}
}

// Refetch грузит задачи, устройства и модели параллельно; ошибка любой
// из загрузок переводит view в Error.
func (v *TasksView) Refetch(ctx context.Context) error {
	var (
		devices []models.Device
		ms      []models.AIModel
	)
	return v.data.load(ctx, func(ctx context.Context) ([]models.TaskWithRelations, error) {
		var tasks []models.TaskWithRelations
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) { tasks, err = v.src.ListTasks(gctx, ""); return })
		g.Go(func() (err error) { devices, err = v.src.ListDevices(gctx, "id,name"); return })
		g.Go(func() (err error) { ms, err = v.src.ListModels(gctx, "id,name"); return })
		if err := g.Wait(); err != nil {
			return nil, err
		}
		v.data.mu.Lock()
		v.devices, v.models = devices, ms
		v.data.mu.Unlock()
		return tasks, nil
	})
}

func (v *TasksView) SetFilter(f pipeline.TaskFilter) {
	v.data.mu.Lock()
	v.filter = f
	v.data.mu.Unlock()
}

func (v *TasksView) ResetFilters() { v.SetFilter(pipeline.TaskFilter{}) }

func (v *TasksView) Snapshot() TasksSnapshot {
	state, items := v.data.snapshot()
	v.data.mu.Lock()
	f, devices, ms := v.filter, v.devices, v.models
	v.data.mu.Unlock()
	shown := f.Apply(items)
	snap := TasksSnapshot{
		State:   state,
		Items:   shown,
		Stats:   pipeline.ComputeTaskStats(shown),
		Devices: make([]Option, 0, len(devices)),
		Models:  make([]Option, 0, len(ms)),
		Layout:  v.Layout,
	}
	if state.Phase == PhaseReady {
		for _, d := range devices {
			snap.Devices = append(snap.Devices, Option{ID: d.ID, Name: d.Name})
		}
		for _, m := range ms {
			snap.Models = append(snap.Models, Option{ID: m.ID, Name: m.Name})
		}
	}
	return snap
}

// CreateTask отправляет форму. Невалидный JSON конфигурации не уходит
// в хранилище: пользователь получает уведомление.
func (v *TasksView) CreateTask(ctx context.Context, form TaskForm) (*models.Task, error) {
	t := models.Task{Name: strings.TrimSpace(form.Name), DeviceID: form.DeviceID, ModelID: form.ModelID}
	if t.Name == "" || t.DeviceID == 0 || t.ModelID == 0 {
		return nil, v.fail("create task", apperr.Invalid("name, device and model are required"))
	}
	if raw := strings.TrimSpace(form.Config); raw != "" {
		if err := json.Unmarshal([]byte(raw), &t.Config); err != nil {
			return nil, v.fail("create task", apperr.Invalid("Invalid config JSON"))
		}
	}
	created, err := v.src.CreateTask(ctx, t)
	if err != nil {
		return nil, v.fail("create task", err)
	}
	return created, v.Refetch(ctx)
}

// SetTaskStatus — любой статус из любого, порядок переходов не проверяется.
func (v *TasksView) SetTaskStatus(ctx context.Context, id uint, status models.TaskStatus) error {
	if _, err := v.src.SetTaskStatus(ctx, id, status); err != nil {
		return v.fail("update task status", err)
	}
	return v.Refetch(ctx)
}

func (v *TasksView) fail(action string, err error) error {
	logs.Logger.WithField("action", action).WithError(err).Warn("task action failed")
	v.notes.Push(actionMessage(action, err))
	return err
}
