// Package seed — демо-данные для локального запуска (--seed).
package seed

import (
	"context"
	"fmt"

	"fleetdash/internal/logs"
	"fleetdash/internal/models"
	"fleetdash/internal/repo"

	"gorm.io/datatypes"
)

// Result — сколько записей вставлено.
type Result struct {
	Devices   int
	Models    int
	Tasks     int
	Terminals int
}

func strp(s string) *string   { return &s }
func f64p(v float64) *float64 { return &v }

func tags(s ...string) datatypes.JSONSlice[string] { return datatypes.JSONSlice[string](s) }

func demoDevices() []models.Device {
	return []models.Device{
		{Name: "Skyhawk-01", Type: models.DeviceTypeDrone, Status: models.DeviceStatusOnline, BatteryLevel: 87,
			Skills: tags("aerial-survey", "object-detection"), Tags: tags("north", "patrol")},
		{Name: "Skyhawk-02", Type: models.DeviceTypeDrone, Status: models.DeviceStatusMaintenance, BatteryLevel: 12,
			Skills: tags("aerial-survey"), Tags: tags("south")},
		{Name: "Walker-7", Type: models.DeviceTypeRobot, Status: models.DeviceStatusOnline, BatteryLevel: 64,
			Skills: tags("navigation", "pick-and-place"), Tags: tags("warehouse")},
		{Name: "Gatecam-A", Type: models.DeviceTypeCamera, Status: models.DeviceStatusOffline, BatteryLevel: 100,
			Skills: tags("face-detection", "object-detection"), Tags: tags("entrance", "patrol")},
		{Name: "Probe-X", Type: models.DeviceTypeOther, Status: models.DeviceStatusOnline, BatteryLevel: 45,
			Skills: tags("telemetry"), Tags: tags("lab")},
	}
}

func demoModels() []models.AIModel {
	return []models.AIModel{
		{Name: "YOLO Lite", Description: "Real-time object detection for edge devices", Price: 499,
			SizeGB: f64p(0.3), Type: strp("vision"), Scene: strp("outdoor"),
			Tags: tags("vision", "detection"), CompatibleDevices: tags("drone", "camera")},
		{Name: "FaceNet Pro", Description: "Face recognition with on-device embeddings", Price: 1499,
			SizeGB: f64p(1.2), Type: strp("vision"), Scene: strp("entrance"),
			Tags: tags("vision", "face"), CompatibleDevices: tags("camera")},
		{Name: "PathPlanner", Description: "Indoor navigation and obstacle avoidance", Price: 2500,
			SizeGB: f64p(2.5), Type: strp("navigation"), Scene: strp("warehouse"),
			Tags: tags("navigation"), CompatibleDevices: tags("robot")},
		{Name: "Survey Mapper", Description: "Photogrammetry for aerial surveys", Price: 0,
			Type: strp("mapping"), Tags: tags("mapping", "aerial"), CompatibleDevices: tags("drone")},
	}
}

// Run вставляет демо-набор, если таблица устройств пуста. Повторный запуск ничего не делает.
func Run(ctx context.Context, s *repo.Stores) (Result, error) {
	var res Result
	existing, err := s.Devices.ListProjected(ctx, []string{"id"})
	if err != nil {
		return res, err
	}
	if len(existing) > 0 {
		logs.Logger.Infof("seed: %d devices already present, skipping", len(existing))
		return res, nil
	}

	devices := demoDevices()
	for i := range devices {
		if err := s.Devices.Create(ctx, &devices[i]); err != nil {
			return res, fmt.Errorf("seed device %q: %w", devices[i].Name, err)
		}
		res.Devices++
	}
	ms := demoModels()
	for i := range ms {
		if err := s.Models.Create(ctx, &ms[i]); err != nil {
			return res, fmt.Errorf("seed model %q: %w", ms[i].Name, err)
		}
		res.Models++
	}

	tasks := []models.Task{
		{Name: "perimeter-scan", DeviceID: devices[0].ID, ModelID: ms[0].ID, Config: datatypes.JSONMap{"interval_s": 30}},
		{Name: "dock-route", DeviceID: devices[2].ID, ModelID: ms[2].ID, Config: datatypes.JSONMap{}},
	}
	for i := range tasks {
		if err := s.Tasks.Create(ctx, &tasks[i]); err != nil {
			return res, fmt.Errorf("seed task %q: %w", tasks[i].Name, err)
		}
		res.Tasks++
	}

	terminals := []models.Terminal{
		{Name: "Ops Console", Type: "console", Status: "active", Location: "HQ", Metadata: datatypes.JSONMap{"floor": 2}},
		{Name: "Field Tablet", Type: "tablet", Status: "idle", Location: "Yard"},
	}
	for i := range terminals {
		if err := s.Terminals.Create(ctx, &terminals[i]); err != nil {
			return res, fmt.Errorf("seed terminal %q: %w", terminals[i].Name, err)
		}
		res.Terminals++
	}

	logs.Logger.WithField("devices", res.Devices).WithField("models", res.Models).
		WithField("tasks", res.Tasks).WithField("terminals", res.Terminals).Info("seed: done")
	return res, nil
}
