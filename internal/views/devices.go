package views

import (
	"context"
	"fmt"

	"fleetdash/internal/apperr"
	"fleetdash/internal/logs"
	"fleetdash/internal/models"
	"fleetdash/internal/pipeline"

	"github.com/sirupsen/logrus"
)

// deviceActions — recall/sync, общие для страниц устройств и терминалов.
type deviceActions struct {
	src     Source
	notes   *Notifier
	refetch func(context.Context) error
}

func (a deviceActions) run(ctx context.Context, action string, id uint, call func(context.Context, uint) (*models.Device, error)) error {
	if _, err := call(ctx, id); err != nil {
		logs.Logger.WithFields(logrus.Fields{"action": action, "device_id": id}).WithError(err).Warn("device action failed")
		a.notes.Push(actionMessage(action, err))
		return err
	}
	return a.refetch(ctx)
}

func (a deviceActions) Recall(ctx context.Context, id uint) error {
	return a.run(ctx, "recall", id, a.src.RecallDevice)
}

func (a deviceActions) Sync(ctx context.Context, id uint) error {
	return a.run(ctx, "sync", id, a.src.SyncDevice)
}

func actionMessage(action string, err error) string {
	if msg := apperr.Message(err); msg != "" {
		return fmt.Sprintf("Failed to %s: %s", action, msg)
	}
	return fmt.Sprintf("Failed to %s", action)
}

type DevicesSnapshot struct {
	State  State                `json:"state"`
	Items  []models.Device      `json:"items"`
	Stats  pipeline.DeviceStats `json:"stats"`
	Layout Layout               `json:"layout"`
}

// DevicesView — страница устройств: фильтр по статусу и диапазону заряда.
type DevicesView struct {
	deviceActions
	Layout Layout
	data   collection[models.Device]
	filter pipeline.DeviceFilter
}

func NewDevicesView(src Source, notes *Notifier) *DevicesView {
	v := &DevicesView{data: newCollection[models.Device]()}
	v.deviceActions = deviceActions{src: src, notes: notes, refetch: v.Refetch}
	return v
}

func (v *DevicesView) Refetch(ctx context.Context) error {
	return v.data.load(ctx, func(ctx context.Context) ([]models.Device, error) {
		return v.src.ListDevices(ctx, "")
	})
}

func (v *DevicesView) SetFilter(f pipeline.DeviceFilter) {
	v.data.mu.Lock()
	v.filter = f
	v.data.mu.Unlock()
}

func (v *DevicesView) ResetFilters() { v.SetFilter(pipeline.DeviceFilter{}) }

// Snapshot — производные данные считаются заново из последней загрузки.
func (v *DevicesView) Snapshot() DevicesSnapshot {
	state, items := v.data.snapshot()
	v.data.mu.Lock()
	f := v.filter
	v.data.mu.Unlock()
	shown := f.Apply(items)
	return DevicesSnapshot{
		State:  state,
		Items:  shown,
		Stats:  pipeline.ComputeDeviceStats(shown),
		Layout: v.Layout,
	}
}

type TerminalsSnapshot struct {
	State  State                  `json:"state"`
	Items  []models.Device        `json:"items"`
	Stats  pipeline.TerminalStats `json:"stats"`
	Skills []string               `json:"skills"`
	Tags   []string               `json:"tags"`
	Layout Layout                 `json:"layout"`
}

// TerminalsView — те же устройства, фильтр по навыку, тегу и типу.
type TerminalsView struct {
	deviceActions
	Layout Layout
	data   collection[models.Device]
	filter pipeline.TerminalFilter
}

func NewTerminalsView(src Source, notes *Notifier) *TerminalsView {
	v := &TerminalsView{data: newCollection[models.Device]()}
	v.deviceActions = deviceActions{src: src, notes: notes, refetch: v.Refetch}
	return v
}

func (v *TerminalsView) Refetch(ctx context.Context) error {
	return v.data.load(ctx, func(ctx context.Context) ([]models.Device, error) {
		return v.src.ListDevices(ctx, "")
	})
}

func (v *TerminalsView) SetFilter(f pipeline.TerminalFilter) {
	v.data.mu.Lock()
	v.filter = f
	v.data.mu.Unlock()
}

func (v *TerminalsView) ResetFilters() { v.SetFilter(pipeline.TerminalFilter{}) }

func (v *TerminalsView) Snapshot() TerminalsSnapshot {
	state, items := v.data.snapshot()
	v.data.mu.Lock()
	f := v.filter
	v.data.mu.Unlock()
	shown := f.Apply(items)
	// варианты фильтров строятся по всей коллекции, чтобы не исчезали при выборе
	return TerminalsSnapshot{
		State:  state,
		Items:  shown,
		Stats:  pipeline.ComputeTerminalStats(shown),
		Skills: pipeline.DeviceSkills(items),
		Tags:   pipeline.DeviceTags(items),
		Layout: v.Layout,
	}
}
