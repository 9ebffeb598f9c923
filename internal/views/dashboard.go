package views

import (
	"context"

	"fleetdash/internal/models"
	"fleetdash/internal/pipeline"

	"golang.org/x/sync/errgroup"
)

// проекции для ленты последних событий
const (
	recentDeviceCols = "id,name,status,created_at"
	recentModelCols  = "id,name,type,created_at"
	recentTaskCols   = "id,name,status,created_at"
)

type DashboardSnapshot struct {
	State  State                   `json:"state"`
	Stats  pipeline.DashboardStats `json:"stats"`
	Recent []pipeline.ActivityItem `json:"recent"`
	Layout Layout                  `json:"layout"`
}

// Dashboard — сводка: счётчики и последние события по трём коллекциям.
type Dashboard struct {
	Layout Layout

	src   Source
	data  collection[pipeline.ActivityItem]
	stats pipeline.DashboardStats
}

func NewDashboard(src Source) *Dashboard {
	return &Dashboard{src: src, data: newCollection[pipeline.ActivityItem]()}
}

// Refetch — шесть параллельных запросов: три на счётчики, три на ленту.
func (d *Dashboard) Refetch(ctx context.Context) error {
	return d.data.load(ctx, func(ctx context.Context) ([]pipeline.ActivityItem, error) {
		var (
			devIDs, devRecent []models.Device
			modIDs, modRecent []models.AIModel
			tasks, taskRecent []models.TaskWithRelations
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) { devIDs, err = d.src.ListDevices(gctx, "id"); return })
		g.Go(func() (err error) { modIDs, err = d.src.ListModels(gctx, "id"); return })
		g.Go(func() (err error) { tasks, err = d.src.ListTasks(gctx, ""); return })
		g.Go(func() (err error) { devRecent, err = d.src.ListDevices(gctx, recentDeviceCols); return })
		g.Go(func() (err error) { modRecent, err = d.src.ListModels(gctx, recentModelCols); return })
		g.Go(func() (err error) { taskRecent, err = d.src.ListTasks(gctx, recentTaskCols); return })
		if err := g.Wait(); err != nil {
			return nil, err
		}

		stats := pipeline.ComputeDashboardStats(devIDs, modIDs, tasks)
		d.data.mu.Lock()
		d.stats = stats
		d.data.mu.Unlock()
		return pipeline.RecentActivity(devRecent, modRecent, taskRecent), nil
	})
}

func (d *Dashboard) Snapshot() DashboardSnapshot {
	state, recent := d.data.snapshot()
	d.data.mu.Lock()
	stats := d.stats
	d.data.mu.Unlock()
	if state.Phase != PhaseReady {
		stats = pipeline.DashboardStats{}
	}
	return DashboardSnapshot{State: state, Stats: stats, Recent: recent, Layout: d.Layout}
}
