package repo

import (
	"context"
	"fmt"

	"fleetdash/internal/apperr"
	"fleetdash/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const taskNotFound = "Task not found"

type TaskStore struct {
	db  *gorm.DB
	now Clock
}

func NewTaskStore(db *gorm.DB) *TaskStore { return &TaskStore{db: db, now: utcNow} }

// List — проекция по умолчанию: задача + devices{name,type} + models{name,description}.
func (s *TaskStore) List(ctx context.Context) ([]models.TaskWithRelations, error) {
	var rows []models.Task
	err := s.db.WithContext(ctx).
		Preload("Device", func(tx *gorm.DB) *gorm.DB { return tx.Select("id", "name", "type") }).
		Preload("Model", func(tx *gorm.DB) *gorm.DB { return tx.Select("id", "name", "description") }).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, apperr.Data(err)
	}
	out := make([]models.TaskWithRelations, 0, len(rows))
	for _, t := range rows {
		out = append(out, models.NewTaskWithRelations(t))
	}
	return out, nil
}

// ListProjected — явная проекция; join при этом не выполняется.
func (s *TaskStore) ListProjected(ctx context.Context, cols []string) ([]map[string]any, error) {
	return listProjected[models.Task](ctx, s.db, cols, "id")
}

func (s *TaskStore) Get(ctx context.Context, id uint) (*models.Task, error) {
	var t models.Task
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, translate(err, taskNotFound)
	}
	return &t, nil
}

// GetWithRelations — одна задача в той же форме, что и List.
func (s *TaskStore) GetWithRelations(ctx context.Context, id uint) (*models.TaskWithRelations, error) {
	var t models.Task
	err := s.db.WithContext(ctx).
		Preload("Device", func(tx *gorm.DB) *gorm.DB { return tx.Select("id", "name", "type") }).
		Preload("Model", func(tx *gorm.DB) *gorm.DB { return tx.Select("id", "name", "description") }).
		First(&t, id).Error
	if err != nil {
		return nil, translate(err, taskNotFound)
	}
	out := models.NewTaskWithRelations(t)
	return &out, nil
}

// Create — новая задача всегда начинает с pending.
func (s *TaskStore) Create(ctx context.Context, t *models.Task) error {
	t.ID = 0
	t.Status = models.TaskStatusPending
	if t.Config == nil {
		t.Config = datatypes.JSONMap{}
	}
	t.Device, t.Model = nil, nil
	return translate(s.db.WithContext(ctx).Create(t).Error, taskNotFound)
}

func (s *TaskStore) Update(ctx context.Context, id uint, patch []byte) (*models.Task, error) {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	createdAt := cur.CreatedAt
	if err := mergePatch(cur, patch); err != nil {
		return nil, err
	}
	if !cur.Status.Valid() {
		return nil, apperr.Invalid(fmt.Sprintf("unknown task status %q", cur.Status))
	}
	now := s.now()
	cur.ID, cur.CreatedAt, cur.UpdatedAt = id, createdAt, &now
	cur.Device, cur.Model = nil, nil
	if err := s.db.WithContext(ctx).Save(cur).Error; err != nil {
		return nil, translate(err, taskNotFound)
	}
	return cur, nil
}

func (s *TaskStore) Delete(ctx context.Context, id uint) error {
	return apperr.Data(s.db.WithContext(ctx).Delete(&models.Task{}, id).Error)
}

// PatchStatus — узкое обновление только поля status. Любой статус из любого.
func (s *TaskStore) PatchStatus(ctx context.Context, id uint, status models.TaskStatus) (*models.Task, error) {
	if id == 0 || status == "" {
		return nil, apperr.Invalid("Missing id or status")
	}
	if !status.Valid() {
		return nil, apperr.Invalid(fmt.Sprintf("unknown task status %q", status))
	}
	if err := updateColumns(ctx, s.db, &models.Task{}, id, map[string]any{
		"status":     status,
		"updated_at": s.now(),
	}, taskNotFound); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}
