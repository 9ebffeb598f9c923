package pipeline

import (
	"slices"
	"time"

	"fleetdash/internal/models"
)

const (
	RecentPerKind = 3
	RecentTotal   = 6
)

type Kind string

const (
	KindDevice Kind = "device"
	KindModel  Kind = "model"
	KindTask   Kind = "task"
)

// ActivityItem — элемент ленты «недавняя активность».
type ActivityItem struct {
	Kind      Kind      `json:"type"`
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func byRecency(a, b ActivityItem) int { return b.CreatedAt.Compare(a.CreatedAt) }

// Recent берёт по RecentPerKind самых новых из каждой группы, сливает,
// пересортировывает по created_at desc и обрезает до RecentTotal.
// При равных временах порядок входа сохраняется.
func Recent(groups ...[]ActivityItem) []ActivityItem {
	merged := []ActivityItem{}
	for _, g := range groups {
		g = slices.Clone(g)
		slices.SortStableFunc(g, byRecency)
		if len(g) > RecentPerKind {
			g = g[:RecentPerKind]
		}
		merged = append(merged, g...)
	}
	slices.SortStableFunc(merged, byRecency)
	if len(merged) > RecentTotal {
		merged = merged[:RecentTotal]
	}
	return merged
}

func DeviceActivity(ds []models.Device) []ActivityItem {
	out := make([]ActivityItem, 0, len(ds))
	for _, d := range ds {
		out = append(out, ActivityItem{Kind: KindDevice, ID: d.ID, Name: d.Name, Status: string(d.Status), CreatedAt: d.CreatedAt})
	}
	return out
}

// ModelActivity — у моделей нет статуса, показываем type.
func ModelActivity(ms []models.AIModel) []ActivityItem {
	out := make([]ActivityItem, 0, len(ms))
	for _, m := range ms {
		out = append(out, ActivityItem{Kind: KindModel, ID: m.ID, Name: m.Name, Status: orEmpty(m.Type), CreatedAt: m.CreatedAt})
	}
	return out
}

func TaskActivity(ts []models.TaskWithRelations) []ActivityItem {
	out := make([]ActivityItem, 0, len(ts))
	for _, t := range ts {
		out = append(out, ActivityItem{Kind: KindTask, ID: t.ID, Name: t.Name, Status: string(t.Status), CreatedAt: t.CreatedAt})
	}
	return out
}

// RecentActivity — лента дашборда по трём коллекциям.
func RecentActivity(ds []models.Device, ms []models.AIModel, ts []models.TaskWithRelations) []ActivityItem {
	return Recent(DeviceActivity(ds), ModelActivity(ms), TaskActivity(ts))
}

type DashboardStats struct {
	Devices     int `json:"devices"`
	Models      int `json:"models"`
	Tasks       int `json:"tasks"`
	ActiveTasks int `json:"active_tasks"`
}

func ComputeDashboardStats(ds []models.Device, ms []models.AIModel, ts []models.TaskWithRelations) DashboardStats {
	return DashboardStats{
		Devices:     len(ds),
		Models:      len(ms),
		Tasks:       len(ts),
		ActiveTasks: ComputeTaskStats(ts).Active,
	}
}
