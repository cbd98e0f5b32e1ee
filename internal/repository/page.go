package repository

import (
	"context"

	"gorm.io/gorm"
)

const (
	orderNewest          = "created_at DESC, id DESC"
	orderRecentlyTrashed = "trashed_at DESC, id DESC"
)

// findPage counts the rows matched by scope and loads one offset/limit
// window of them in the given order, with refs applied to the load only.
func findPage[T any](ctx context.Context, db *gorm.DB, scope, refs func(*gorm.DB) *gorm.DB, order string, offset, limit int) ([]T, int64, error) {
	var total int64
	if err := conn(ctx, db).Model(new(T)).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	items := []T{}
	if err := refs(conn(ctx, db)).
		Scopes(scope).
		Order(order).
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func notTrashed(db *gorm.DB) *gorm.DB {
	return db.Where("is_trashed = ?", false)
}

func trashed(db *gorm.DB) *gorm.DB {
	return db.Where("is_trashed = ?", true)
}

// taskRefs loads the users and project a task points at.
func taskRefs(db *gorm.DB) *gorm.DB {
	return db.Preload("Creator").Preload("Assignee").Preload("Project")
}

func projectRefs(db *gorm.DB) *gorm.DB {
	return db.Preload("Owner")
}

func activityRefs(db *gorm.DB) *gorm.DB {
	return db.Preload("Performer").Preload("Task").Preload("Project")
}
