package repo

import (
	"context"

	"fleetdash/internal/apperr"
	"fleetdash/internal/models"

	"gorm.io/gorm"
)

const deviceNotFound = "Device not found"

type DeviceStore struct {
	db  *gorm.DB
	now Clock
}

func NewDeviceStore(db *gorm.DB) *DeviceStore {
	return &DeviceStore{db: db, now: utcNow}
}

// WithClock — для тестов sync.
func (s *DeviceStore) WithClock(c Clock) *DeviceStore {
	s.now = c
	return s
}

func (s *DeviceStore) List(ctx context.Context) ([]models.Device, error) {
	out := []models.Device{}
	if err := s.db.WithContext(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, apperr.Data(err)
	}
	return out, nil
}

// ListProjected — list с явной проекцией (?select=id,name,status).
func (s *DeviceStore) ListProjected(ctx context.Context, cols []string) ([]map[string]any, error) {
	return listProjected[models.Device](ctx, s.db, cols, "id")
}

func (s *DeviceStore) Get(ctx context.Context, id uint) (*models.Device, error) {
	var d models.Device
	if err := s.db.WithContext(ctx).First(&d, id).Error; err != nil {
		return nil, translate(err, deviceNotFound)
	}
	return &d, nil
}

// Create — вставка администратором или сидом; id назначает БД.
func (s *DeviceStore) Create(ctx context.Context, d *models.Device) error {
	d.ID = 0
	if d.Status == "" {
		d.Status = models.DeviceStatusOffline
	}
	return translate(s.db.WithContext(ctx).Create(d).Error, deviceNotFound)
}

// Update — полная или частичная замена полей из JSON-патча.
func (s *DeviceStore) Update(ctx context.Context, id uint, patch []byte) (*models.Device, error) {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	createdAt := cur.CreatedAt
	if err := mergePatch(cur, patch); err != nil {
		return nil, err
	}
	cur.ID, cur.CreatedAt = id, createdAt
	if err := s.db.WithContext(ctx).Save(cur).Error; err != nil {
		return nil, translate(err, deviceNotFound)
	}
	return cur, nil
}

func (s *DeviceStore) Delete(ctx context.Context, id uint) error {
	return apperr.Data(s.db.WithContext(ctx).Delete(&models.Device{}, id).Error)
}

// Recall — безусловно переводит устройство в maintenance.
func (s *DeviceStore) Recall(ctx context.Context, id uint) (*models.Device, error) {
	if err := updateColumns(ctx, s.db, &models.Device{}, id, map[string]any{
		"status": models.DeviceStatusMaintenance,
	}, deviceNotFound); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Sync — status=online и last_sync_at=сейчас.
func (s *DeviceStore) Sync(ctx context.Context, id uint) (*models.Device, error) {
	if err := updateColumns(ctx, s.db, &models.Device{}, id, map[string]any{
		"status":       models.DeviceStatusOnline,
		"last_sync_at": s.now(),
	}, deviceNotFound); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}
