package repo

import (
	"context"

	"fleetdash/internal/apperr"
	"fleetdash/internal/models"

	"gorm.io/gorm"
)

const modelNotFound = "Model not found"

// ModelStore — модели только читаются через API; Create нужен сиду.
type ModelStore struct{ db *gorm.DB }

func NewModelStore(db *gorm.DB) *ModelStore { return &ModelStore{db: db} }

func (s *ModelStore) List(ctx context.Context) ([]models.AIModel, error) {
	out := []models.AIModel{}
	if err := s.db.WithContext(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, apperr.Data(err)
	}
	return out, nil
}

func (s *ModelStore) ListProjected(ctx context.Context, cols []string) ([]map[string]any, error) {
	return listProjected[models.AIModel](ctx, s.db, cols, "id")
}

func (s *ModelStore) Get(ctx context.Context, id uint) (*models.AIModel, error) {
	var m models.AIModel
	if err := s.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, translate(err, modelNotFound)
	}
	return &m, nil
}

func (s *ModelStore) Create(ctx context.Context, m *models.AIModel) error {
	m.ID = 0
	return translate(s.db.WithContext(ctx).Create(m).Error, modelNotFound)
}
