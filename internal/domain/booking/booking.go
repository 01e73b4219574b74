package booking

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stayhaven/service-booking/internal/domain"
)

const (
	// AnonymousCustomer is recorded when the caller carries no authenticated identity.
	AnonymousCustomer = "anonymousUser"

	minNights = 1
	maxNights = 30
)

// Booking is the aggregate root for a date-ranged room reservation. The stay is
// the half-open interval [checkIn, checkOut); the check-out day is not occupied.
type Booking struct {
	id           uuid.UUID
	customerName string
	roomID       uuid.UUID
	checkInDate  time.Time
	checkOutDate time.Time
	status       Status

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a new confirmed Booking after validating the stay policy:
// check-in not in the past, and a stay of 1 to 30 nights.
func NewBooking(customerName string, roomID uuid.UUID, checkInDate, checkOutDate time.Time) (*Booking, error) {
	if roomID == uuid.Nil {
		return nil, domain.NewValidationError("room ID is required")
	}
	if customerName == "" {
		customerName = AnonymousCustomer
	}

	checkIn := NormalizeDate(checkInDate)
	checkOut := NormalizeDate(checkOutDate)

	if err := validateStay(checkIn, checkOut, Today()); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Booking{
		id:           uuid.New(),
		customerName: customerName,
		roomID:       roomID,
		checkInDate:  checkIn,
		checkOutDate: checkOut,
		status:       StatusConfirmed,
		version:      1,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// ValidateStay checks the stay policy for a prospective booking: check-in not
// in the past, check-out strictly after check-in, 1 to 30 nights. Dates are
// normalized to calendar days before checking. Lets callers reject an
// out-of-policy request before touching any room state.
func ValidateStay(checkInDate, checkOutDate time.Time) error {
	return validateStay(NormalizeDate(checkInDate), NormalizeDate(checkOutDate), Today())
}

func validateStay(checkIn, checkOut, today time.Time) error {
	if checkIn.IsZero() || checkOut.IsZero() {
		return domain.NewValidationError("both check-in and check-out dates are required")
	}
	if checkIn.Before(today) {
		return domain.NewValidationError("check-in date cannot be in the past")
	}

	nights := nightsBetween(checkIn, checkOut)
	if nights < minNights {
		return domain.NewValidationError("minimum stay of 1 night required")
	}
	if nights > maxNights {
		return domain.NewValidationError(fmt.Sprintf("maximum stay is %d nights", maxNights))
	}
	return nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	customerName string,
	roomID uuid.UUID,
	checkInDate, checkOutDate time.Time,
	status Status,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:           id,
		customerName: customerName,
		roomID:       roomID,
		checkInDate:  checkInDate,
		checkOutDate: checkOutDate,
		status:       status,
		version:      version,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// CustomerName returns the identity the booking was made under.
func (b *Booking) CustomerName() string { return b.customerName }

// RoomID returns the identifier of the booked room.
func (b *Booking) RoomID() uuid.UUID { return b.roomID }

// CheckInDate returns the first occupied night.
func (b *Booking) CheckInDate() time.Time { return b.checkInDate }

// CheckOutDate returns the exclusive end of the stay.
func (b *Booking) CheckOutDate() time.Time { return b.checkOutDate }

// Status returns the current booking status.
func (b *Booking) Status() Status { return b.status }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// Nights returns the length of the stay in nights.
func (b *Booking) Nights() int64 {
	return nightsBetween(b.checkInDate, b.checkOutDate)
}

// TotalPrice derives the total stay price from the room's nightly price.
func (b *Booking) TotalPrice(nightlyPrice decimal.Decimal) decimal.Decimal {
	return nightlyPrice.Mul(decimal.NewFromInt(b.Nights()))
}

// Cancel transitions the booking to CANCELLED. Cancellation is terminal and not
// idempotent: cancelling an already cancelled booking is rejected.
func (b *Booking) Cancel() error {
	if !b.status.CanTransitionTo(StatusCancelled) {
		return domain.NewConflictError("booking already cancelled")
	}
	b.status = StatusCancelled
	b.updatedAt = time.Now().UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}

// Overlaps reports whether the half-open date ranges [aStart, aEnd) and
// [bStart, bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// NormalizeDate truncates a timestamp to a calendar date at UTC midnight.
func NormalizeDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar date at UTC midnight.
func Today() time.Time {
	return NormalizeDate(time.Now())
}

func nightsBetween(checkIn, checkOut time.Time) int64 {
	return int64(checkOut.Sub(checkIn).Hours() / 24)
}
