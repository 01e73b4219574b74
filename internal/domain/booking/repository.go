package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for booking aggregates.
type Repository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByIDForUpdate retrieves a booking and locks its row for the duration
	// of the enclosing transaction. Must only be called inside a transaction.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Booking, error)

	// HasConflict reports whether any non-cancelled booking for the room
	// overlaps the half-open range [checkIn, checkOut). Pure read; to guard
	// against racing inserts it must run inside the same transaction as the
	// insert it protects.
	HasConflict(ctx context.Context, roomID uuid.UUID, checkIn, checkOut time.Time) (bool, error)

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, booking *Booking) error
}
