package models

import (
	"time"

	"gorm.io/datatypes"
)

type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// TaskStatuses — все допустимые статусы; переходы между ними не ограничены.
var TaskStatuses = []TaskStatus{TaskStatusPending, TaskStatusRunning, TaskStatusCompleted, TaskStatusFailed}

func (s TaskStatus) Valid() bool {
	for _, v := range TaskStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Task связывает устройство и модель. Config не интерпретируется.
type Task struct {
	ID        uint              `json:"id" gorm:"primaryKey"`
	Name      string            `json:"name" gorm:"size:255;not null"`
	DeviceID  uint              `json:"device_id" gorm:"index;not null"`
	ModelID   uint              `json:"model_id" gorm:"index;not null"`
	Status    TaskStatus        `json:"status" gorm:"type:varchar(16);index;default:pending"`
	Config    datatypes.JSONMap `json:"config"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt *time.Time        `json:"updated_at,omitempty"`

	// связи только для FK и Preload, в JSON не уходят
	Device *Device  `json:"-" gorm:"foreignKey:DeviceID"`
	Model  *AIModel `json:"-" gorm:"foreignKey:ModelID"`
}

func (Task) TableName() string { return "tasks" }

// TaskDevice / TaskModel — денормализованные поля связанных записей для списка задач.
type TaskDevice struct {
	Name string     `json:"name"`
	Type DeviceType `json:"type"`
}

type TaskModel struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// TaskWithRelations — строка списка задач с подтянутыми devices/models.
type TaskWithRelations struct {
	Task
	Devices *TaskDevice `json:"devices"`
	Models  *TaskModel  `json:"models"`
}

func NewTaskWithRelations(t Task) TaskWithRelations {
	out := TaskWithRelations{Task: t}
	if t.Device != nil {
		out.Devices = &TaskDevice{Name: t.Device.Name, Type: t.Device.Type}
	}
	if t.Model != nil {
		out.Models = &TaskModel{Name: t.Model.Name, Description: t.Model.Description}
	}
	return out
}
