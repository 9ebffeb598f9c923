package repo

import (
	"context"

	"fleetdash/internal/apperr"
	"fleetdash/internal/models"

	"gorm.io/gorm"
)

type TerminalStore struct{ db *gorm.DB }

func NewTerminalStore(db *gorm.DB) *TerminalStore { return &TerminalStore{db: db} }

// List — новые сверху.
func (s *TerminalStore) List(ctx context.Context) ([]models.Terminal, error) {
	out := []models.Terminal{}
	if err := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&out).Error; err != nil {
		return nil, apperr.Data(err)
	}
	return out, nil
}

func (s *TerminalStore) Create(ctx context.Context, t *models.Terminal) error {
	t.ID = 0
	return apperr.Data(s.db.WithContext(ctx).Create(t).Error)
}
