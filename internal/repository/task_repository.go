package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskhub/internal/model"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create adds a new task to the database
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := conn(ctx, r.db).Omit(clause.Associations).Create(task).Error; err != nil {
		return err
	}
	return r.loadRefs(ctx, task)
}

// GetByID retrieves a task by its ID
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	result := taskRefs(conn(ctx, r.db)).First(&task, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, result.Error
	}
	return &task, nil
}

// Update overwrites every column of an existing task. Concurrent updates
// of the same task are last-write-wins. The loaded references are never
// written back; they are reloaded from the new ids.
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	result := conn(ctx, r.db).Model(task).Select("*").Omit(clause.Associations).Updates(task)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return r.loadRefs(ctx, task)
}

// Delete removes a task by its ID
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := conn(ctx, r.db).Delete(&model.Task{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// ListActive returns the live (neither trashed nor archived) tasks a user
// is assigned to or created, newest first.
func (r *TaskRepository) ListActive(ctx context.Context, userID uuid.UUID, offset, limit int) ([]model.Task, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		return notTrashed(db).
			Where("is_archived = ?", false).
			Where("(assigned_to = ? OR created_by = ?)", userID, userID)
	}
	return findPage[model.Task](ctx, r.db, scope, taskRefs, orderNewest, offset, limit)
}

// ListCreatedBy returns every non-trashed task created by the user.
func (r *TaskRepository) ListCreatedBy(ctx context.Context, userID uuid.UUID) ([]model.Task, error) {
	tasks := []model.Task{}
	err := taskRefs(conn(ctx, r.db)).
		Where("is_trashed = ? AND created_by = ?", false, userID).
		Order(orderNewest).
		Find(&tasks).Error
	return tasks, err
}

// ListTrashed returns trashed tasks, most recently trashed first. A nil
// userID lists all of them; otherwise only the user's own.
func (r *TaskRepository) ListTrashed(ctx context.Context, userID *uuid.UUID, offset, limit int) ([]model.Task, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		db = trashed(db)
		if userID != nil {
			db = db.Where("(assigned_to = ? OR created_by = ?)", *userID, *userID)
		}
		return db
	}
	return findPage[model.Task](ctx, r.db, scope, taskRefs, orderRecentlyTrashed, offset, limit)
}

func (r *TaskRepository) loadRefs(ctx context.Context, task *model.Task) error {
	var fresh model.Task
	if err := taskRefs(conn(ctx, r.db)).First(&fresh, "id = ?", task.ID).Error; err != nil {
		return err
	}
	task.Creator, task.Assignee, task.Project = fresh.Creator, fresh.Assignee, fresh.Project
	return nil
}
