package room

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for room aggregates.
type Repository interface {
	// FindByID retrieves a room by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Room, error)

	// FindByIDForUpdate retrieves a room and locks its row for the duration of
	// the enclosing transaction. Must only be called inside a transaction.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Room, error)

	// FindAllAvailable retrieves all rooms whose availability flag is true, in
	// store order.
	FindAllAvailable(ctx context.Context) ([]*Room, error)

	// ExistsByNumber reports whether a room with the given room number exists.
	ExistsByNumber(ctx context.Context, roomNumber string) (bool, error)

	// Save persists a new room.
	Save(ctx context.Context, room *Room) error

	// Update persists changes to an existing room with optimistic locking.
	Update(ctx context.Context, room *Room) error
}
