package models

import (
	"time"

	"gorm.io/datatypes"
)

// AIModel — AI-«навык», который разворачивается на устройства.
// Таблица называется models; обновления и удаления через API нет.
type AIModel struct {
	ID                uint                        `json:"id" gorm:"primaryKey"`
	Name              string                      `json:"name" gorm:"size:255;not null"`
	Description       string                      `json:"description" gorm:"type:text"`
	Price             float64                     `json:"price" gorm:"check:price >= 0"`
	SizeGB            *float64                    `json:"size_gb"`
	Type              *string                     `json:"type" gorm:"size:64"`
	Scene             *string                     `json:"scene" gorm:"size:128"`
	Tags              datatypes.JSONSlice[string] `json:"tags"`
	CompatibleDevices datatypes.JSONSlice[string] `json:"compatible_devices"`
	ImageURL          *string                     `json:"image_url"`
	CreatedAt         time.Time                   `json:"created_at"`
}

func (AIModel) TableName() string { return "models" }
