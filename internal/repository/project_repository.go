package repository

import (
	"context"
	"errors"

	"taskhub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, project *model.Project) error {
	if err := conn(ctx, r.db).Omit(clause.Associations).Create(project).Error; err != nil {
		return err
	}
	return r.loadOwner(ctx, project)
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var project model.Project
	if err := projectRefs(conn(ctx, r.db)).Where("id = ?", id).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepository) Update(ctx context.Context, project *model.Project) error {
	result := conn(ctx, r.db).Model(project).Select("*").Omit(clause.Associations).Updates(project)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProjectNotFound
	}
	return r.loadOwner(ctx, project)
}

func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := conn(ctx, r.db).Delete(&model.Project{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

// List returns non-trashed projects, newest first. Completed projects are
// left out unless includeCompleted is set.
func (r *ProjectRepository) List(ctx context.Context, includeCompleted bool) ([]model.Project, error) {
	projects := []model.Project{}
	q := notTrashed(projectRefs(conn(ctx, r.db)))
	if !includeCompleted {
		q = q.Where("status <> ?", model.ProjectCompleted)
	}
	err := q.Order(orderNewest).Find(&projects).Error
	return projects, err
}

func (r *ProjectRepository) ListTrashed(ctx context.Context, offset, limit int) ([]model.Project, int64, error) {
	return findPage[model.Project](ctx, r.db, trashed, projectRefs, orderRecentlyTrashed, offset, limit)
}

func (r *ProjectRepository) loadOwner(ctx context.Context, project *model.Project) error {
	var fresh model.Project
	if err := projectRefs(conn(ctx, r.db)).First(&fresh, "id = ?", project.ID).Error; err != nil {
		return err
	}
	project.Owner = fresh.Owner
	return nil
}
