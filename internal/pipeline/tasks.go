package pipeline

import "fleetdash/internal/models"

type TaskFilter struct {
	Status string
}

func (f TaskFilter) Apply(ts []models.TaskWithRelations) []models.TaskWithRelations {
	return Filter(ts,
		Equal(f.Status, func(t models.TaskWithRelations) string { return string(t.Status) }),
	)
}

type TaskStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Running   int `json:"running"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Active    int `json:"active"`
}

func ComputeTaskStats(ts []models.TaskWithRelations) TaskStats {
	by := CountBy(ts, func(t models.TaskWithRelations) models.TaskStatus { return t.Status })
	return TaskStats{
		Total:     len(ts),
		Pending:   by[models.TaskStatusPending],
		Running:   by[models.TaskStatusRunning],
		Completed: by[models.TaskStatusCompleted],
		Failed:    by[models.TaskStatusFailed],
		Active:    by[models.TaskStatusPending] + by[models.TaskStatusRunning],
	}
}
