package repository

import (
	"errors"
	"fmt"
)

// Common repository errors
var (
	// ErrNotFound is wrapped by every entity-specific not-found error
	ErrNotFound = errors.New("record not found")

	ErrTaskNotFound     = fmt.Errorf("task: %w", ErrNotFound)
	ErrProjectNotFound  = fmt.Errorf("project: %w", ErrNotFound)
	ErrActivityNotFound = fmt.Errorf("activity log: %w", ErrNotFound)
)
