package user

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for user aggregates.
type Repository interface {
	// FindByID retrieves a user by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByUsername retrieves a user by login name.
	FindByUsername(ctx context.Context, username string) (*User, error)

	// ExistsByUsername reports whether a user with the given login name exists.
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// Save persists a new user.
	Save(ctx context.Context, user *User) error
}
