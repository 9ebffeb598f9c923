package models

import (
	"time"

	"gorm.io/datatypes"
)

// Terminal — вспомогательная коллекция «терминалов» (точек управления парком).
type Terminal struct {
	ID        uint              `json:"id" gorm:"primaryKey"`
	Name      string            `json:"name" gorm:"size:255;not null"`
	Type      string            `json:"type" gorm:"size:64"`
	Status    string            `json:"status" gorm:"size:32"`
	Location  string            `json:"location" gorm:"size:255"`
	Metadata  datatypes.JSONMap `json:"metadata"`
	CreatedAt time.Time         `json:"created_at" gorm:"index"`
}

func (Terminal) TableName() string { return "terminals" }

// All — все доменные таблицы для AutoMigrate (порядок важен из-за FK).
func All() []any {
	return []any{&Device{}, &AIModel{}, &Task{}, &Terminal{}}
}
