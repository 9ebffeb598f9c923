package views

import (
	"fmt"
	"strings"
	"time"

	"fleetdash/internal/models"
	"fleetdash/internal/pipeline"
)

// Detail — запись, открытая в боковой панели. Реализации: DeviceDetail,
// ModelDetail, TaskDetail.
type Detail interface {
	Kind() pipeline.Kind
	detail()
}

type DeviceDetail struct{ Device models.Device }
type ModelDetail struct{ Model models.AIModel }
type TaskDetail struct{ Task models.TaskWithRelations }

func (DeviceDetail) Kind() pipeline.Kind { return pipeline.KindDevice }
func (ModelDetail) Kind() pipeline.Kind  { return pipeline.KindModel }
func (TaskDetail) Kind() pipeline.Kind   { return pipeline.KindTask }

func (DeviceDetail) detail() {}
func (ModelDetail) detail()  {}
func (TaskDetail) detail()   {}

// Field — строка «подпись: значение» в панели деталей.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

const timeLayout = "2006-01-02 15:04"

// Describe раскладывает запись в поля для показа.
func Describe(d Detail) []Field {
	switch d := d.(type) {
	case DeviceDetail:
		x := d.Device
		return []Field{
			{"Name", x.Name},
			{"Type", string(x.Type)},
			{"Status", string(x.Status)},
			{"Battery", fmt.Sprintf("%d%%", x.BatteryLevel)},
			{"Skills", joinOrDash(x.Skills)},
			{"Tags", joinOrDash(x.Tags)},
			{"Created", x.CreatedAt.Format(timeLayout)},
			{"Last sync", timeOrDash(x.LastSyncAt)},
		}
	case ModelDetail:
		x := d.Model
		size := "-"
		if x.SizeGB != nil {
			size = fmt.Sprintf("%.1f GB", *x.SizeGB)
		}
		return []Field{
			{"Name", x.Name},
			{"Description", x.Description},
			{"Price", fmt.Sprintf("%.2f", x.Price)},
			{"Size", size},
			{"Type", strOrDash(x.Type)},
			{"Scene", strOrDash(x.Scene)},
			{"Tags", joinOrDash(x.Tags)},
			{"Compatible devices", joinOrDash(x.CompatibleDevices)},
			{"Created", x.CreatedAt.Format(timeLayout)},
		}
	case TaskDetail:
		x := d.Task
		device, model := "-", "-"
		if x.Devices != nil {
			device = x.Devices.Name
		}
		if x.Models != nil {
			model = x.Models.Name
		}
		return []Field{
			{"Name", x.Name},
			{"Status", string(x.Status)},
			{"Device", device},
			{"Model", model},
			{"Created", x.CreatedAt.Format(timeLayout)},
			{"Updated", timeOrDash(x.UpdatedAt)},
		}
	default:
		panic(fmt.Sprintf("views: unknown detail %T", d))
	}
}

func joinOrDash(ss []string) string {
	if len(ss) == 0 {
		return "-"
	}
	return strings.Join(ss, ", ")
}

func strOrDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func timeOrDash(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(timeLayout)
}
