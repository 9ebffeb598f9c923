// Package views — контроллеры страниц: загрузка коллекций, фильтры,
// производные данные и действия пользователя.
package views

import (
	"context"
	"encoding/json"

	"fleetdash/internal/apperr"
	"fleetdash/internal/models"
	"fleetdash/internal/repo"
)

// Source — то, чем view видит Record Access Layer. sel — projection ("" = все поля).
type Source interface {
	ListDevices(ctx context.Context, sel string) ([]models.Device, error)
	ListModels(ctx context.Context, sel string) ([]models.AIModel, error)
	ListTasks(ctx context.Context, sel string) ([]models.TaskWithRelations, error)
	CreateTask(ctx context.Context, t models.Task) (*models.Task, error)
	SetTaskStatus(ctx context.Context, id uint, status models.TaskStatus) (*models.Task, error)
	RecallDevice(ctx context.Context, id uint) (*models.Device, error)
	SyncDevice(ctx context.Context, id uint) (*models.Device, error)
}

// StoreSource — Source поверх repo, без HTTP (для /api/views на том же сервере).
type StoreSource struct{ s *repo.Stores }

func NewStoreSource(s *repo.Stores) *StoreSource { return &StoreSource{s: s} }

func (ss *StoreSource) ListDevices(ctx context.Context, sel string) ([]models.Device, error) {
	if cols := repo.ParseSelect(sel); cols != nil {
		rows, err := ss.s.Devices.ListProjected(ctx, cols)
		if err != nil {
			return nil, err
		}
		return fromRows[models.Device](rows)
	}
	return ss.s.Devices.List(ctx)
}

func (ss *StoreSource) ListModels(ctx context.Context, sel string) ([]models.AIModel, error) {
	if cols := repo.ParseSelect(sel); cols != nil {
		rows, err := ss.s.Models.ListProjected(ctx, cols)
		if err != nil {
			return nil, err
		}
		return fromRows[models.AIModel](rows)
	}
	return ss.s.Models.List(ctx)
}

func (ss *StoreSource) ListTasks(ctx context.Context, sel string) ([]models.TaskWithRelations, error) {
	if cols := repo.ParseSelect(sel); cols != nil {
		rows, err := ss.s.Tasks.ListProjected(ctx, cols)
		if err != nil {
			return nil, err
		}
		return fromRows[models.TaskWithRelations](rows)
	}
	return ss.s.Tasks.List(ctx)
}

func (ss *StoreSource) CreateTask(ctx context.Context, t models.Task) (*models.Task, error) {
	if err := ss.s.Tasks.Create(ctx, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (ss *StoreSource) SetTaskStatus(ctx context.Context, id uint, status models.TaskStatus) (*models.Task, error) {
	return ss.s.Tasks.PatchStatus(ctx, id, status)
}

func (ss *StoreSource) RecallDevice(ctx context.Context, id uint) (*models.Device, error) {
	return ss.s.Devices.Recall(ctx, id)
}

func (ss *StoreSource) SyncDevice(ctx context.Context, id uint) (*models.Device, error) {
	return ss.s.Devices.Sync(ctx, id)
}

// fromRows — проекция в типизированные записи; отсутствующие поля остаются нулевыми.
func fromRows[T any](rows []map[string]any) ([]T, error) {
	b, err := json.Marshal(rows)
	if err != nil {
		return nil, apperr.Data(err)
	}
	out := []T{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, apperr.Data(err)
	}
	return out, nil
}
