package lifecycle

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"taskhub/internal/model"
)

type NewProject struct {
	Name        string
	Description string
	Status      model.ProjectStatus
}

// ProjectPatch is a partial project update with the same absent/null rule
// as TaskPatch.
type ProjectPatch struct {
	Name        Optional[string]              `json:"name"`
	Description Optional[string]              `json:"description"`
	Status      Optional[model.ProjectStatus] `json:"status"`
	IsTrashed   Optional[bool]                `json:"isTrashed"`
}

func (p ProjectPatch) validate() error {
	if p.Name.Set && strings.TrimSpace(p.Name.Value) == "" {
		return validationErr("name is required")
	}
	if p.Status.Set && !p.Status.Value.Valid() {
		return validationErr("invalid status %q", p.Status.Value)
	}
	return nil
}

func projectLabel(pr *model.Project) string {
	return fmt.Sprintf("Project %q", pr.Name)
}

func (e *Engine) projectKind() kind[model.Project] {
	return kind[model.Project]{
		name:  "project",
		label: projectLabel,
		trash: func(pr *model.Project) *model.Trash { return &pr.Trash },
		ref: func(pr *model.Project) activityRef {
			id := pr.ID
			return activityRef{projectID: &id}
		},
		get:          e.projects.GetByID,
		update:       e.projects.Update,
		remove:       e.projects.Delete,
		trashed:      model.ActionTrashedProject,
		restored:     model.ActionRestoredProject,
		deleted:      model.ActionDeletedProject,
		updatedEvent: EventProjectUpdated,
		deletedEvent: EventProjectDeleted,
	}
}

// CreateProject creates a project owned by the calling manager.
func (e *Engine) CreateProject(ctx context.Context, p Principal, in NewProject) (*model.Project, error) {
	if err := authorize(p, managerOnly); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationErr("name is required")
	}
	status := in.Status
	if status == "" {
		status = model.ProjectActive
	} else if !status.Valid() {
		return nil, validationErr("invalid status %q", status)
	}

	project := &model.Project{
		Name:        name,
		Description: in.Description,
		OwnerID:     p.ID,
		Status:      status,
	}
	err := e.atomically(ctx, func(ctx context.Context) (*model.ActivityLog, error) {
		if err := e.projects.Create(ctx, project); err != nil {
			return nil, fmt.Errorf("create project: %w", err)
		}
		return e.record(ctx, p, model.ActionCreatedProject, projectLabel(project)+" created", activityRef{projectID: &project.ID})
	})
	if err != nil {
		return nil, err
	}
	e.pub.Publish(EventProjectUpdated, *project)
	return project, nil
}

// UpdateProject applies a partial update. Managers only.
func (e *Engine) UpdateProject(ctx context.Context, p Principal, id uuid.UUID, patch ProjectPatch) (*model.Project, error) {
	k := e.projectKind()
	project, err := k.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := k.authorize(p, project); err != nil {
		return nil, err
	}
	if err := patch.validate(); err != nil {
		return nil, err
	}

	prev := *project
	if patch.Name.Set {
		project.Name = strings.TrimSpace(patch.Name.Value)
	}
	if patch.Description.Set {
		project.Description = patch.Description.Value
	}
	if patch.Status.Set {
		project.Status = patch.Status.Value
	}
	if patch.IsTrashed.Set {
		switch {
		case patch.IsTrashed.Value && !prev.IsTrashed:
			project.MoveToTrash(p.ID, e.now())
		case !patch.IsTrashed.Value && prev.IsTrashed:
			project.Restore()
		}
	}

	var desc string
	switch {
	case prev.Status != project.Status:
		desc = fmt.Sprintf("%s status changed from %s to %s", projectLabel(project), prev.Status, project.Status)
	case !prev.IsTrashed && project.IsTrashed:
		desc = projectLabel(project) + " moved to trash"
	default:
		desc = projectLabel(project) + " updated"
	}
	err = e.atomically(ctx, func(ctx context.Context) (*model.ActivityLog, error) {
		if err := e.projects.Update(ctx, project); err != nil {
			return nil, translate(err, "project", id)
		}
		return e.record(ctx, p, model.ActionUpdatedProject, desc, k.ref(project))
	})
	if err != nil {
		return nil, err
	}
	e.pub.Publish(EventProjectUpdated, *project)
	return project, nil
}

// TrashProject moves a project to trash. Its tasks are left alone.
func (e *Engine) TrashProject(ctx context.Context, p Principal, id uuid.UUID) (*model.Project, error) {
	return moveToTrash(ctx, e, e.projectKind(), p, id)
}

func (e *Engine) RestoreProject(ctx context.Context, p Principal, id uuid.UUID) (*model.Project, error) {
	return restore(ctx, e, e.projectKind(), p, id)
}

// DeleteProject permanently deletes a project. Tasks that referenced it
// keep the dangling id.
func (e *Engine) DeleteProject(ctx context.Context, p Principal, id uuid.UUID, secret string) error {
	return permanentDelete(ctx, e, e.projectKind(), p, id, secret)
}

// ListProjects returns non-trashed projects. Non-managers do not see
// completed ones.
func (e *Engine) ListProjects(ctx context.Context, p Principal) ([]model.Project, error) {
	projects, err := e.projects.List(ctx, p.IsManager())
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

func (e *Engine) ListTrashedProjects(ctx context.Context, p Principal, page Page) (Paged[model.Project], error) {
	if err := authorize(p, managerOnly); err != nil {
		return Paged[model.Project]{}, err
	}
	page = page.normalize(defaultTrashLimit)
	projects, total, err := e.projects.ListTrashed(ctx, page.offset(), page.Limit)
	if err != nil {
		return Paged[model.Project]{}, fmt.Errorf("list trashed projects: %w", err)
	}
	return newPaged(projects, page, total), nil
}
