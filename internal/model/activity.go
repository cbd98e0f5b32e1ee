package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ActivityAction string

const (
	ActionCreatedTask  ActivityAction = "CREATED_TASK"
	ActionUpdatedTask  ActivityAction = "UPDATED_TASK"
	ActionTrashedTask  ActivityAction = "TRASHED_TASK"
	ActionRestoredTask ActivityAction = "RESTORED_TASK"
	ActionDeletedTask  ActivityAction = "DELETED_TASK"

	ActionCreatedProject  ActivityAction = "CREATED_PROJECT"
	ActionUpdatedProject  ActivityAction = "UPDATED_PROJECT"
	ActionTrashedProject  ActivityAction = "TRASHED_PROJECT"
	ActionRestoredProject ActivityAction = "RESTORED_PROJECT"
	ActionDeletedProject  ActivityAction = "DELETED_PROJECT"

	ActionTrashedLog  ActivityAction = "TRASHED_LOG"
	ActionRestoredLog ActivityAction = "RESTORED_LOG"
	ActionDeletedLog  ActivityAction = "DELETED_LOG"
)

// ActivityLog is an append-only record of a lifecycle transition. The only
// mutation it allows is its own trash/restore.
type ActivityLog struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Action      ActivityAction `gorm:"not null;index" json:"action"`
	Description string         `json:"description"`
	TaskID      *uuid.UUID     `gorm:"type:uuid;index" json:"taskId"`
	ProjectID   *uuid.UUID     `gorm:"type:uuid;index" json:"projectId"`
	PerformedBy uuid.UUID      `gorm:"type:uuid;not null;index" json:"performedById"`
	Trash
	CreatedAt time.Time `json:"createdAt"`

	// Deleted tasks and projects leave these nil; the ids stay.
	Performer *User    `gorm:"foreignKey:PerformedBy" json:"performedBy,omitempty"`
	Task      *Task    `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	Project   *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}

func (a *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	return assignID(&a.ID)
}
