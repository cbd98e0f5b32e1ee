package lifecycle

import (
	"context"

	"github.com/google/uuid"

	"taskhub/internal/model"
)

// kind describes one trashable entity type to the shared trash, restore
// and permanent-delete transitions.
type kind[T any] struct {
	name  string
	label func(*T) string
	trash func(*T) *model.Trash
	// owner returns who besides managers may trash, restore and delete
	// the record. Nil means managers only.
	owner func(*T) ownership
	// onTrash runs after the trash stamp, before the write.
	onTrash func(*T)
	ref     func(*T) activityRef

	get    func(context.Context, uuid.UUID) (*T, error)
	update func(context.Context, *T) error
	remove func(context.Context, uuid.UUID) error

	trashed, restored, deleted model.ActivityAction
	updatedEvent, deletedEvent string
}

func (k kind[T]) load(ctx context.Context, id uuid.UUID) (*T, error) {
	rec, err := k.get(ctx, id)
	if err != nil {
		return nil, translate(err, k.name, id)
	}
	return rec, nil
}

func (k kind[T]) authorize(p Principal, rec *T) error {
	if k.owner == nil {
		return authorize(p, managerOnly)
	}
	return authorize(p, k.owner(rec))
}

// moveToTrash trashes the record. Trashing an already trashed record is
// not short-circuited: it re-stamps, re-logs and re-publishes.
func moveToTrash[T any](ctx context.Context, e *Engine, k kind[T], p Principal, id uuid.UUID) (*T, error) {
	rec, err := k.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := k.authorize(p, rec); err != nil {
		return nil, err
	}

	k.trash(rec).MoveToTrash(p.ID, e.now())
	if k.onTrash != nil {
		k.onTrash(rec)
	}
	err = e.atomically(ctx, func(ctx context.Context) (*model.ActivityLog, error) {
		if err := k.update(ctx, rec); err != nil {
			return nil, translate(err, k.name, id)
		}
		return e.record(ctx, p, k.trashed, k.label(rec)+" moved to trash", k.ref(rec))
	})
	if err != nil {
		return nil, err
	}
	e.pub.Publish(k.updatedEvent, *rec)
	e.log.Debug().Str("kind", k.name).Stringer("id", id).Stringer("by", p.ID).Msg("moved to trash")
	return rec, nil
}

// restore brings a record back to active.
func restore[T any](ctx context.Context, e *Engine, k kind[T], p Principal, id uuid.UUID) (*T, error) {
	rec, err := k.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := k.authorize(p, rec); err != nil {
		return nil, err
	}

	k.trash(rec).Restore()
	err = e.atomically(ctx, func(ctx context.Context) (*model.ActivityLog, error) {
		if err := k.update(ctx, rec); err != nil {
			return nil, translate(err, k.name, id)
		}
		return e.record(ctx, p, k.restored, k.label(rec)+" restored from trash", k.ref(rec))
	})
	if err != nil {
		return nil, err
	}
	e.pub.Publish(k.updatedEvent, *rec)
	e.log.Debug().Str("kind", k.name).Stringer("id", id).Stringer("by", p.ID).Msg("restored")
	return rec, nil
}

// permanentDelete removes the record for good. Managers must present the
// operator secret; owners deleting their own record need none. The
// activity entry is written before the record disappears, and both land
// or neither does.
func permanentDelete[T any](ctx context.Context, e *Engine, k kind[T], p Principal, id uuid.UUID, secret string) error {
	rec, err := k.load(ctx, id)
	if err != nil {
		return err
	}
	if err := k.authorize(p, rec); err != nil {
		return err
	}
	if p.IsManager() && !e.secretMatches(secret) {
		e.log.Warn().Str("kind", k.name).Stringer("id", id).Stringer("by", p.ID).Msg("permanent delete rejected")
		return ErrUnauthorized
	}

	err = e.atomically(ctx, func(ctx context.Context) (*model.ActivityLog, error) {
		entry, err := e.record(ctx, p, k.deleted, k.label(rec)+" permanently deleted", k.ref(rec))
		if err != nil {
			return nil, err
		}
		if err := k.remove(ctx, id); err != nil {
			return nil, translate(err, k.name, id)
		}
		return entry, nil
	})
	if err != nil {
		return err
	}
	e.pub.Publish(k.deletedEvent, DeletedPayload{ID: id})
	e.log.Info().Str("kind", k.name).Stringer("id", id).Stringer("by", p.ID).Msg("permanently deleted")
	return nil
}
