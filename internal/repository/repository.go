package repository

import (
	"alcyxob/workout-tracker/internal/domain"
	"context"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrConflict     = RepositoryError("already exists")
	ErrUpdateFailed = RepositoryError("update failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
// Users are always returned with their full workout tree, ordered by storage
// order at every level.
type UserRepository interface {
	GetByExternalID(ctx context.Context, externalID string) (*domain.User, error)
	// Create inserts the user and every workout, exercise and set nested under
	// it, assigning ids in place. A duplicate external id yields ErrConflict.
	Create(ctx context.Context, user *domain.User) error
	List(ctx context.Context) ([]domain.User, error)
}

// WorkoutRepository defines the interface for writing back workout entries.
type WorkoutRepository interface {
	// SaveEntries commits the mutable exercise fields (name, comment) and set
	// fields (reps, weight, easy, plus done when includeDone is set) of an
	// already stored workout in a single transaction. Rows are never added or
	// removed.
	SaveEntries(ctx context.Context, workout *domain.Workout, includeDone bool) error
}
