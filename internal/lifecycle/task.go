package lifecycle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskhub/internal/model"
)

// NewTask is the input of CreateTask.
type NewTask struct {
	Title       string
	Description string
	Status      model.TaskStatus
	Priority    model.TaskPriority
	DueDate     *time.Time
	ProjectID   *uuid.UUID
	AssignedTo  uuid.UUID
}

// TaskPatch is a partial task update. Absent fields are left untouched;
// present fields are applied even when null.
type TaskPatch struct {
	Title       Optional[string]             `json:"title"`
	Description Optional[string]             `json:"description"`
	Status      Optional[model.TaskStatus]   `json:"status"`
	AssignedTo  Optional[*uuid.UUID]         `json:"assignedTo"`
	DueDate     Optional[*time.Time]         `json:"dueDate"`
	Priority    Optional[model.TaskPriority] `json:"priority"`
	Project     Optional[*uuid.UUID]         `json:"project"`
	IsArchived  Optional[bool]               `json:"isArchived"`
	IsTrashed   Optional[bool]               `json:"isTrashed"`
}

func (p TaskPatch) validate() error {
	if p.Title.Set && strings.TrimSpace(p.Title.Value) == "" {
		return validationErr("title is required")
	}
	if p.Status.Set && !p.Status.Value.Valid() {
		return validationErr("invalid status %q", p.Status.Value)
	}
	if p.Priority.Set && !p.Priority.Value.Valid() {
		return validationErr("invalid priority %q", p.Priority.Value)
	}
	if p.AssignedTo.Set && (p.AssignedTo.Value == nil || *p.AssignedTo.Value == uuid.Nil) {
		return validationErr("assignedTo is required")
	}
	return nil
}

func (p TaskPatch) apply(t *model.Task) {
	if p.Title.Set {
		t.Title = strings.TrimSpace(p.Title.Value)
	}
	if p.Description.Set {
		t.Description = p.Description.Value
	}
	if p.Status.Set {
		t.Status = p.Status.Value
	}
	if p.AssignedTo.Set {
		t.AssignedTo = *p.AssignedTo.Value
	}
	if p.DueDate.Set {
		t.DueDate = p.DueDate.Value
	}
	if p.Priority.Set {
		t.Priority = p.Priority.Value
	}
	if p.Project.Set {
		t.ProjectID = p.Project.Value
	}
	if p.IsArchived.Set {
		t.IsArchived = p.IsArchived.Value
	}
	if p.IsTrashed.Set {
		t.IsTrashed = p.IsTrashed.Value
	}
}

func taskLabel(t *model.Task) string {
	return fmt.Sprintf("Task %q", t.Title)
}

func (e *Engine) taskKind() kind[model.Task] {
	return kind[model.Task]{
		name:  "task",
		label: taskLabel,
		trash: func(t *model.Task) *model.Trash { return &t.Trash },
		owner: taskParticipant,
		// trash supersedes archive
		onTrash: func(t *model.Task) { t.IsArchived = false },
		ref: func(t *model.Task) activityRef {
			id := t.ID
			return activityRef{taskID: &id}
		},
		get:          e.tasks.GetByID,
		update:       e.tasks.Update,
		remove:       e.tasks.Delete,
		trashed:      model.ActionTrashedTask,
		restored:     model.ActionRestoredTask,
		deleted:      model.ActionDeletedTask,
		updatedEvent: EventTaskUpdated,
		deletedEvent: EventTaskDeleted,
	}
}

// CreateTask creates a task on behalf of a manager.
func (e *Engine) CreateTask(ctx context.Context, p Principal, in NewTask) (*model.Task, error) {
	if err := authorize(p, managerOnly); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, validationErr("title is required")
	}
	if in.AssignedTo == uuid.Nil {
		return nil, validationErr("assignedTo is required")
	}
	status := in.Status
	if status == "" {
		status = model.TaskTodo
	} else if !status.Valid() {
		return nil, validationErr("invalid status %q", status)
	}
	priority := in.Priority
	if priority == "" {
		priority = model.PriorityMedium
	} else if !priority.Valid() {
		return nil, validationErr("invalid priority %q", priority)
	}

	task := &model.Task{
		Title:       title,
		Description: in.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     in.DueDate,
		ProjectID:   in.ProjectID,
		CreatedBy:   p.ID,
		AssignedTo:  in.AssignedTo,
	}
	err := e.atomically(ctx, func(ctx context.Context) (*model.ActivityLog, error) {
		if err := e.tasks.Create(ctx, task); err != nil {
			return nil, fmt.Errorf("create task: %w", err)
		}
		return e.record(ctx, p, model.ActionCreatedTask, taskLabel(task)+" created", activityRef{taskID: &task.ID})
	})
	if err != nil {
		return nil, err
	}
	e.pub.Publish(EventTaskUpdated, *task)
	return task, nil
}

// GetTask returns a task to a manager or to one of its participants.
func (e *Engine) GetTask(ctx context.Context, p Principal, id uuid.UUID) (*model.Task, error) {
	task, err := e.taskKind().load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(p, taskParticipant(task)); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTask applies a partial update. Managers may change any field; the
// assignee may only move the status, and every other field in their patch
// is ignored.
func (e *Engine) UpdateTask(ctx context.Context, p Principal, id uuid.UUID, patch TaskPatch) (*model.Task, error) {
	task, err := e.taskKind().load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(p, taskAssignee(task)); err != nil {
		return nil, err
	}

	if !p.IsManager() {
		patch = TaskPatch{Status: patch.Status}
	}
	if err := patch.validate(); err != nil {
		return nil, err
	}

	prev := *task
	patch.apply(task)

	switch {
	case !prev.IsTrashed && task.IsTrashed:
		task.MoveToTrash(p.ID, e.now())
	case prev.IsTrashed && !task.IsTrashed:
		task.Restore()
	}
	if task.IsTrashed {
		task.IsArchived = false
	}

	err = e.atomically(ctx, func(ctx context.Context) (*model.ActivityLog, error) {
		if err := e.tasks.Update(ctx, task); err != nil {
			return nil, translate(err, "task", id)
		}
		return e.record(ctx, p, model.ActionUpdatedTask, describeTaskUpdate(&prev, task), activityRef{taskID: &task.ID})
	})
	if err != nil {
		return nil, err
	}
	e.pub.Publish(EventTaskUpdated, *task)
	return task, nil
}

func describeTaskUpdate(prev, cur *model.Task) string {
	label := taskLabel(cur)
	switch {
	case prev.Status != cur.Status:
		return fmt.Sprintf("%s status changed from %s to %s", label, prev.Status, cur.Status)
	case !prev.IsTrashed && cur.IsTrashed:
		return label + " moved to trash"
	case !prev.IsArchived && cur.IsArchived:
		return label + " archived"
	default:
		return label + " updated"
	}
}

// TrashTask moves a task to trash. Managers and the task's assignee or
// creator may do so. The archive flag is cleared.
func (e *Engine) TrashTask(ctx context.Context, p Principal, id uuid.UUID) (*model.Task, error) {
	return moveToTrash(ctx, e, e.taskKind(), p, id)
}

// RestoreTask brings a trashed task back to active, never to archived.
func (e *Engine) RestoreTask(ctx context.Context, p Principal, id uuid.UUID) (*model.Task, error) {
	return restore(ctx, e, e.taskKind(), p, id)
}

// DeleteTask permanently deletes a task. See permanentDelete for the
// secret rule.
func (e *Engine) DeleteTask(ctx context.Context, p Principal, id uuid.UUID, secret string) error {
	return permanentDelete(ctx, e, e.taskKind(), p, id, secret)
}

// ListMyTasks pages through the live tasks the principal is assigned to or
// created. Trashed and archived tasks are excluded for everyone.
func (e *Engine) ListMyTasks(ctx context.Context, p Principal, page Page) (Paged[model.Task], error) {
	page = page.normalize(defaultListLimit)
	tasks, total, err := e.tasks.ListActive(ctx, p.ID, page.offset(), page.Limit)
	if err != nil {
		return Paged[model.Task]{}, fmt.Errorf("list tasks: %w", err)
	}
	return newPaged(tasks, page, total), nil
}

// ListCreatedTasks returns the non-trashed tasks a manager created.
func (e *Engine) ListCreatedTasks(ctx context.Context, p Principal) ([]model.Task, error) {
	if err := authorize(p, managerOnly); err != nil {
		return nil, err
	}
	tasks, err := e.tasks.ListCreatedBy(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("list created tasks: %w", err)
	}
	return tasks, nil
}

// ListTrashedTasks pages through trashed tasks, most recently trashed
// first. Managers see all of them, everyone else only their own.
func (e *Engine) ListTrashedTasks(ctx context.Context, p Principal, page Page) (Paged[model.Task], error) {
	page = page.normalize(defaultTrashLimit)
	var owner *uuid.UUID
	if !p.IsManager() {
		owner = &p.ID
	}
	tasks, total, err := e.tasks.ListTrashed(ctx, owner, page.offset(), page.Limit)
	if err != nil {
		return Paged[model.Task]{}, fmt.Errorf("list trashed tasks: %w", err)
	}
	return newPaged(tasks, page, total), nil
}
