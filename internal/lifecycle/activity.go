package lifecycle

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"taskhub/internal/model"
)

func (e *Engine) activityKind() kind[model.ActivityLog] {
	return kind[model.ActivityLog]{
		name: "activity log",
		label: func(a *model.ActivityLog) string {
			return fmt.Sprintf("Activity log %s (%s)", a.ID, a.Action)
		},
		trash:        func(a *model.ActivityLog) *model.Trash { return &a.Trash },
		ref:          func(*model.ActivityLog) activityRef { return activityRef{} },
		get:          e.logs.GetByID,
		update:       e.logs.Update,
		remove:       e.logs.Delete,
		trashed:      model.ActionTrashedLog,
		restored:     model.ActionRestoredLog,
		deleted:      model.ActionDeletedLog,
		updatedEvent: EventActivityUpdated,
		deletedEvent: EventActivityDeleted,
	}
}

// ListActivity pages through non-trashed activity, newest first. Managers
// see everyone's; other users only what they performed.
func (e *Engine) ListActivity(ctx context.Context, p Principal, page Page) (Paged[model.ActivityLog], error) {
	page = page.normalize(defaultListLimit)
	var performer *uuid.UUID
	if !p.IsManager() {
		performer = &p.ID
	}
	logs, total, err := e.logs.List(ctx, performer, page.offset(), page.Limit)
	if err != nil {
		return Paged[model.ActivityLog]{}, fmt.Errorf("list activity: %w", err)
	}
	return newPaged(logs, page, total), nil
}

// ListActivityByUser returns one user's non-trashed activity. Managers only.
func (e *Engine) ListActivityByUser(ctx context.Context, p Principal, userID uuid.UUID) ([]model.ActivityLog, error) {
	if err := authorize(p, managerOnly); err != nil {
		return nil, err
	}
	logs, err := e.logs.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list activity of %s: %w", userID, err)
	}
	return logs, nil
}

func (e *Engine) ListTrashedActivity(ctx context.Context, p Principal, page Page) (Paged[model.ActivityLog], error) {
	if err := authorize(p, managerOnly); err != nil {
		return Paged[model.ActivityLog]{}, err
	}
	page = page.normalize(defaultTrashLimit)
	logs, total, err := e.logs.ListTrashed(ctx, page.offset(), page.Limit)
	if err != nil {
		return Paged[model.ActivityLog]{}, fmt.Errorf("list trashed activity: %w", err)
	}
	return newPaged(logs, page, total), nil
}

func (e *Engine) TrashActivity(ctx context.Context, p Principal, id uuid.UUID) (*model.ActivityLog, error) {
	return moveToTrash(ctx, e, e.activityKind(), p, id)
}

func (e *Engine) RestoreActivity(ctx context.Context, p Principal, id uuid.UUID) (*model.ActivityLog, error) {
	return restore(ctx, e, e.activityKind(), p, id)
}

func (e *Engine) DeleteActivity(ctx context.Context, p Principal, id uuid.UUID, secret string) error {
	return permanentDelete(ctx, e, e.activityKind(), p, id, secret)
}
