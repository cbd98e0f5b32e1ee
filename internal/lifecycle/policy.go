package lifecycle

import (
	"github.com/google/uuid"

	"taskhub/internal/model"
)

// Principal is the authenticated actor of an operation.
type Principal struct {
	ID   uuid.UUID
	Role model.Role
}

func (p Principal) IsManager() bool {
	return p.Role == model.RoleManager
}

// ownership reports whether the principal owns a record. A nil ownership
// means the record has no owner other than managers.
type ownership func(Principal) bool

// authorize is the single permission check used by every operation:
// managers are always allowed, anyone else only when owns says so.
func authorize(p Principal, owns ownership) error {
	if p.IsManager() {
		return nil
	}
	if owns != nil && owns(p) {
		return nil
	}
	return ErrForbidden
}

// managerOnly is the ownership of records non-managers can never touch.
var managerOnly ownership

func taskParticipant(t *model.Task) ownership {
	return func(p Principal) bool {
		return p.ID == t.AssignedTo || p.ID == t.CreatedBy
	}
}

func taskAssignee(t *model.Task) ownership {
	return func(p Principal) bool {
		return p.ID == t.AssignedTo
	}
}
