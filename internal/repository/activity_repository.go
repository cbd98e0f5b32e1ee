package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskhub/internal/model"
)

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Create appends a log entry
func (r *ActivityRepository) Create(ctx context.Context, entry *model.ActivityLog) error {
	if err := conn(ctx, r.db).Omit(clause.Associations).Create(entry).Error; err != nil {
		return err
	}
	return r.loadRefs(ctx, entry)
}

func (r *ActivityRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ActivityLog, error) {
	var entry model.ActivityLog
	if err := activityRefs(conn(ctx, r.db)).First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// Update persists trash state changes of a log entry
func (r *ActivityRepository) Update(ctx context.Context, entry *model.ActivityLog) error {
	result := conn(ctx, r.db).Model(entry).Select("*").Omit(clause.Associations).Updates(entry)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrActivityNotFound
	}
	return nil
}

func (r *ActivityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := conn(ctx, r.db).Delete(&model.ActivityLog{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrActivityNotFound
	}
	return nil
}

// List pages through non-trashed entries, newest first. A non-nil
// performedBy restricts the list to that user's actions.
func (r *ActivityRepository) List(ctx context.Context, performedBy *uuid.UUID, offset, limit int) ([]model.ActivityLog, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		db = notTrashed(db)
		if performedBy != nil {
			db = db.Where("performed_by = ?", *performedBy)
		}
		return db
	}
	return findPage[model.ActivityLog](ctx, r.db, scope, activityRefs, orderNewest, offset, limit)
}

// ListByUser returns every non-trashed entry performed by the user
func (r *ActivityRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.ActivityLog, error) {
	entries := []model.ActivityLog{}
	err := activityRefs(conn(ctx, r.db)).
		Where("is_trashed = ? AND performed_by = ?", false, userID).
		Order(orderNewest).
		Find(&entries).Error
	return entries, err
}

func (r *ActivityRepository) ListTrashed(ctx context.Context, offset, limit int) ([]model.ActivityLog, int64, error) {
	return findPage[model.ActivityLog](ctx, r.db, trashed, activityRefs, orderRecentlyTrashed, offset, limit)
}

func (r *ActivityRepository) loadRefs(ctx context.Context, entry *model.ActivityLog) error {
	var fresh model.ActivityLog
	if err := activityRefs(conn(ctx, r.db)).First(&fresh, "id = ?", entry.ID).Error; err != nil {
		return err
	}
	entry.Performer, entry.Task, entry.Project = fresh.Performer, fresh.Task, fresh.Project
	return nil
}
