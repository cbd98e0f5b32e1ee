// Package lifecycle owns the state machine of tasks, projects and activity
// logs: who may create, change, trash, restore and permanently delete them,
// how each transition mutates the record, and which activity entry and
// change notification it produces.
//
// A record is active, archived (tasks only), trashed, or deleted. Trash is
// reachable from active and archived; restore always lands in active;
// deleted is terminal.
package lifecycle

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"taskhub/internal/model"
	"taskhub/internal/repository"
)

// Change notification events.
const (
	EventTaskUpdated     = "task_updated"
	EventTaskDeleted     = "task_deleted"
	EventProjectUpdated  = "project_updated"
	EventProjectDeleted  = "project_deleted"
	EventActivityLog     = "activity_log"
	EventActivityUpdated = "activity_updated"
	EventActivityDeleted = "activity_deleted"
)

// DeletedPayload is the notification body of a permanent delete.
type DeletedPayload struct {
	ID uuid.UUID `json:"id"`
}

type TaskStore interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListActive(ctx context.Context, userID uuid.UUID, offset, limit int) ([]model.Task, int64, error)
	ListCreatedBy(ctx context.Context, userID uuid.UUID) ([]model.Task, error)
	ListTrashed(ctx context.Context, userID *uuid.UUID, offset, limit int) ([]model.Task, int64, error)
}

type ProjectStore interface {
	Create(ctx context.Context, project *model.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error)
	Update(ctx context.Context, project *model.Project) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, includeCompleted bool) ([]model.Project, error)
	ListTrashed(ctx context.Context, offset, limit int) ([]model.Project, int64, error)
}

type ActivityStore interface {
	Create(ctx context.Context, entry *model.ActivityLog) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.ActivityLog, error)
	Update(ctx context.Context, entry *model.ActivityLog) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, performedBy *uuid.UUID, offset, limit int) ([]model.ActivityLog, int64, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.ActivityLog, error)
	ListTrashed(ctx context.Context, offset, limit int) ([]model.ActivityLog, int64, error)
}

// Publisher fans a notification out to whoever is listening. It is fire
// and forget: delivery is not guaranteed and failures are not reported.
type Publisher interface {
	Publish(event string, payload any)
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, any) {}

// Transactor groups store calls made with the context it hands to fn into
// one unit that either commits or rolls back as a whole.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type noTx struct{}

func (noTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type Engine struct {
	tasks    TaskStore
	projects ProjectStore
	logs     ActivityStore
	tx       Transactor
	pub      Publisher

	deleteSecret []byte
	now          func() time.Time
	log          zerolog.Logger
}

type Option func(*Engine)

// WithClock replaces the time source used for trash stamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// New builds an engine. Every record write and the activity entry it
// produces go through tx together; a nil tx runs them unguarded.
// deleteSecret is the operator secret managers must present to permanently
// delete anything; when it is empty no manager delete succeeds.
func New(tasks TaskStore, projects ProjectStore, logs ActivityStore, tx Transactor, pub Publisher, deleteSecret string, opts ...Option) *Engine {
	if tx == nil {
		tx = noTx{}
	}
	if pub == nil {
		pub = nopPublisher{}
	}
	e := &Engine{
		tasks:        tasks,
		projects:     projects,
		logs:         logs,
		tx:           tx,
		pub:          pub,
		deleteSecret: []byte(deleteSecret),
		now:          func() time.Time { return time.Now().UTC() },
		log:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// secretMatches compares in constant time. An unset operator secret
// matches nothing.
func (e *Engine) secretMatches(supplied string) bool {
	if len(e.deleteSecret) == 0 || supplied == "" {
		return false
	}
	return subtle.ConstantTimeCompare(e.deleteSecret, []byte(supplied)) == 1
}

type activityRef struct {
	taskID    *uuid.UUID
	projectID *uuid.UUID
}

// atomically runs fn, a record write followed by its activity append, in
// one transaction. The entry fn returns is broadcast after commit; nothing
// is broadcast on failure.
func (e *Engine) atomically(ctx context.Context, fn func(ctx context.Context) (*model.ActivityLog, error)) error {
	var entry *model.ActivityLog
	err := e.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		entry, err = fn(ctx)
		return err
	})
	if err != nil {
		return err
	}
	e.pub.Publish(EventActivityLog, *entry)
	return nil
}

// record appends an activity entry.
func (e *Engine) record(ctx context.Context, p Principal, action model.ActivityAction, description string, ref activityRef) (*model.ActivityLog, error) {
	entry := &model.ActivityLog{
		Action:      action,
		Description: description,
		TaskID:      ref.taskID,
		ProjectID:   ref.projectID,
		PerformedBy: p.ID,
	}
	if err := e.logs.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("append activity %s: %w", action, err)
	}
	return entry, nil
}

// translate maps store errors onto the engine's error set.
func translate(err error, what string, id uuid.UUID) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s %s", ErrNotFound, what, id)
	}
	return err
}

func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
