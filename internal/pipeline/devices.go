package pipeline

import "fleetdash/internal/models"

// DeviceFilter — фильтры страницы устройств. Нулевое значение ничего не фильтрует.
type DeviceFilter struct {
	Status     string
	BatteryMin *float64
	BatteryMax *float64
}

func (f DeviceFilter) Apply(ds []models.Device) []models.Device {
	return Filter(ds,
		Equal(f.Status, func(d models.Device) string { return string(d.Status) }),
		InRange(f.BatteryMin, f.BatteryMax, BatteryDomain, func(d models.Device) float64 { return float64(d.BatteryLevel) }),
	)
}

type DeviceStats struct {
	Total       int `json:"total"`
	Online      int `json:"online"`
	Offline     int `json:"offline"`
	Maintenance int `json:"maintenance"`
}

func ComputeDeviceStats(ds []models.Device) DeviceStats {
	by := CountBy(ds, func(d models.Device) models.DeviceStatus { return d.Status })
	return DeviceStats{
		Total:       len(ds),
		Online:      by[models.DeviceStatusOnline],
		Offline:     by[models.DeviceStatusOffline],
		Maintenance: by[models.DeviceStatusMaintenance],
	}
}

// TerminalFilter — страница терминалов: устройства по навыку, тегу и типу.
type TerminalFilter struct {
	Skill string
	Tag   string
	Type  string
}

func (f TerminalFilter) Apply(ds []models.Device) []models.Device {
	return Filter(ds,
		AnyContains(f.Skill, func(d models.Device) []string { return d.Skills }),
		AnyContains(f.Tag, func(d models.Device) []string { return d.Tags }),
		Equal(f.Type, func(d models.Device) string { return string(d.Type) }),
	)
}

type TerminalStats struct {
	Total   int `json:"total"`
	Drones  int `json:"drones"`
	Robots  int `json:"robots"`
	Cameras int `json:"cameras"`
}

func ComputeTerminalStats(ds []models.Device) TerminalStats {
	by := CountBy(ds, func(d models.Device) models.DeviceType { return d.Type })
	return TerminalStats{
		Total:   len(ds),
		Drones:  by[models.DeviceTypeDrone],
		Robots:  by[models.DeviceTypeRobot],
		Cameras: by[models.DeviceTypeCamera],
	}
}

// DeviceSkills / DeviceTags — варианты для фильтров терминалов.
func DeviceSkills(ds []models.Device) []string {
	return UniqueSorted(ds, func(d models.Device) []string { return d.Skills })
}

func DeviceTags(ds []models.Device) []string {
	return UniqueSorted(ds, func(d models.Device) []string { return d.Tags })
}
