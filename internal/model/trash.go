package model

import (
	"time"

	"github.com/google/uuid"
)

// Trash is the soft-delete metadata shared by tasks, projects and activity
// logs. TrashedAt and TrashedBy are only ever set while IsTrashed is true.
type Trash struct {
	IsTrashed bool       `gorm:"not null;index" json:"isTrashed"`
	TrashedAt *time.Time `json:"trashedAt"`
	TrashedBy *uuid.UUID `gorm:"type:uuid" json:"trashedBy"`
}

// MoveToTrash marks the record trashed and stamps who did it and when.
// Calling it on an already trashed record re-stamps both.
func (t *Trash) MoveToTrash(by uuid.UUID, at time.Time) {
	t.IsTrashed = true
	t.TrashedAt = &at
	t.TrashedBy = &by
}

// Restore clears the trash flag together with its metadata.
func (t *Trash) Restore() {
	t.IsTrashed = false
	t.TrashedAt = nil
	t.TrashedBy = nil
}
