package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskDone:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Task struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string       `gorm:"not null" json:"title"`
	Description string       `json:"description"`
	Status      TaskStatus   `gorm:"not null" json:"status"`
	Priority    TaskPriority `gorm:"not null" json:"priority"`
	DueDate     *time.Time   `json:"dueDate"`
	ProjectID   *uuid.UUID   `gorm:"type:uuid;index" json:"projectId"`
	CreatedBy   uuid.UUID    `gorm:"type:uuid;not null;index" json:"createdById"`
	AssignedTo  uuid.UUID    `gorm:"type:uuid;not null;index" json:"assignedToId"`
	IsArchived  bool         `gorm:"not null" json:"isArchived"`
	Trash
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Loaded on read; nil when the referenced row no longer exists.
	Creator  *User    `gorm:"foreignKey:CreatedBy" json:"createdBy,omitempty"`
	Assignee *User    `gorm:"foreignKey:AssignedTo" json:"assignedTo,omitempty"`
	Project  *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	return assignID(&t.ID)
}
