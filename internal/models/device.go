package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DeviceType string

const (
	DeviceTypeDrone  DeviceType = "drone"
	DeviceTypeRobot  DeviceType = "robot"
	DeviceTypeCamera DeviceType = "camera"
	DeviceTypeOther  DeviceType = "other"
)

type DeviceStatus string

const (
	DeviceStatusOnline      DeviceStatus = "online"
	DeviceStatusOffline     DeviceStatus = "offline"
	DeviceStatusMaintenance DeviceStatus = "maintenance"
)

const (
	BatteryMin = 0
	BatteryMax = 100
)

// Device — AI-устройство парка (дрон, робот, камера).
type Device struct {
	ID           uint                        `json:"id" gorm:"primaryKey"`
	Name         string                      `json:"name" gorm:"size:255;not null"`
	Type         DeviceType                  `json:"type" gorm:"type:varchar(16);index"`
	Status       DeviceStatus                `json:"status" gorm:"type:varchar(16);index;default:offline"`
	BatteryLevel int                         `json:"battery_level" gorm:"check:battery_level >= 0 AND battery_level <= 100"`
	Skills       datatypes.JSONSlice[string] `json:"skills"`
	Tags         datatypes.JSONSlice[string] `json:"tags"`
	ImageURL     *string                     `json:"image_url"`
	CreatedAt    time.Time                   `json:"created_at"`
	LastSyncAt   *time.Time                  `json:"last_sync_at"`
}

func (Device) TableName() string { return "devices" }

// BeforeSave держит battery_level в [0,100] и до того, как сработает CHECK в БД.
func (d *Device) BeforeSave(_ *gorm.DB) error {
	return ValidateBattery(d.BatteryLevel)
}

func ValidateBattery(level int) error {
	if level < BatteryMin || level > BatteryMax {
		return &InvariantError{Field: "battery_level", Reason: fmt.Sprintf("must be within [%d,%d], got %d", BatteryMin, BatteryMax, level)}
	}
	return nil
}

// InvariantError — нарушение инварианта записи; наверху превращается в 400.
type InvariantError struct {
	Field  string
	Reason string
}

func (e *InvariantError) Error() string { return e.Field + " " + e.Reason }
