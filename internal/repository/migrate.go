package repository

import (
	"taskhub/internal/model"

	"gorm.io/gorm"
)

// Migrate creates or updates the tables for every persisted entity. The
// belongs-to references get no foreign key constraints: a permanently
// deleted project or task stays referenced by id from tasks and logs.
func Migrate(db *gorm.DB) error {
	db.Config.DisableForeignKeyConstraintWhenMigrating = true
	return db.AutoMigrate(
		&model.User{},
		&model.Project{},
		&model.Task{},
		&model.ActivityLog{},
	)
}
