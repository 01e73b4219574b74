package room

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stayhaven/service-booking/internal/domain"
)

const (
	minCapacity = 1
	maxCapacity = 5

	maxRoomNumberLength   = 20
	maxPriceIntegerDigits = 6
)

var roomNumberPattern = regexp.MustCompile(`^[0-9A-Za-z-]+$`)

// Room is the aggregate root for hotel room inventory. The availability flag is
// a denormalized summary of current bookability, maintained transactionally
// alongside booking writes rather than recomputed per read.
type Room struct {
	id          uuid.UUID
	roomNumber  string
	capacity    int
	price       decimal.Decimal
	isAvailable bool

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewRoom creates a new Room aggregate, available for booking.
func NewRoom(roomNumber string, capacity int, price decimal.Decimal) (*Room, error) {
	if roomNumber == "" {
		return nil, domain.NewValidationError("room number is required")
	}
	if len(roomNumber) > maxRoomNumberLength {
		return nil, domain.NewValidationError(fmt.Sprintf("room number must be at most %d characters", maxRoomNumberLength))
	}
	if !roomNumberPattern.MatchString(roomNumber) {
		return nil, domain.NewValidationError("room number can only contain alphanumeric characters and hyphens")
	}
	if capacity < minCapacity || capacity > maxCapacity {
		return nil, domain.NewValidationError(fmt.Sprintf("capacity must be between %d and %d", minCapacity, maxCapacity))
	}
	if !price.IsPositive() {
		return nil, domain.NewValidationError("price must be positive")
	}
	if price.Exponent() < -2 {
		return nil, domain.NewValidationError("price must have at most 2 decimal places")
	}
	if len(price.Truncate(0).String()) > maxPriceIntegerDigits {
		return nil, domain.NewValidationError(fmt.Sprintf("price must have at most %d integer digits", maxPriceIntegerDigits))
	}

	now := time.Now().UTC()
	return &Room{
		id:          uuid.New(),
		roomNumber:  roomNumber,
		capacity:    capacity,
		price:       price,
		isAvailable: true,
		version:     1,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructRoom rebuilds a Room from persistence data (no validation).
func ReconstructRoom(
	id uuid.UUID,
	roomNumber string,
	capacity int,
	price decimal.Decimal,
	isAvailable bool,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Room {
	return &Room{
		id:          id,
		roomNumber:  roomNumber,
		capacity:    capacity,
		price:       price,
		isAvailable: isAvailable,
		version:     version,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// ID returns the room's unique identifier.
func (r *Room) ID() uuid.UUID { return r.id }

// RoomNumber returns the unique business key for the room.
func (r *Room) RoomNumber() string { return r.roomNumber }

// Capacity returns the number of guests the room accommodates.
func (r *Room) Capacity() int { return r.capacity }

// Price returns the nightly price.
func (r *Room) Price() decimal.Decimal { return r.price }

// IsAvailable returns the current availability flag.
func (r *Room) IsAvailable() bool { return r.isAvailable }

// Version returns the entity version for optimistic locking.
func (r *Room) Version() int64 { return r.version }

// CreatedAt returns the creation timestamp.
func (r *Room) CreatedAt() time.Time { return r.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (r *Room) UpdatedAt() time.Time { return r.updatedAt }

// MarkUnavailable flips the availability flag off when a booking claims the room.
func (r *Room) MarkUnavailable() {
	r.isAvailable = false
	r.updatedAt = time.Now().UTC()
}

// MarkAvailable flips the availability flag back on when a booking is cancelled.
func (r *Room) MarkAvailable() {
	r.isAvailable = true
	r.updatedAt = time.Now().UTC()
}

// IncrementVersion bumps the version for optimistic locking.
func (r *Room) IncrementVersion() {
	r.version++
	r.updatedAt = time.Now().UTC()
}
