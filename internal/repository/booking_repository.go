package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stayhaven/service-booking/internal/domain"
	bookingDomain "github.com/stayhaven/service-booking/internal/domain/booking"
)

// BookingModel is the GORM model for the bookings table. The room reference is
// intentionally a plain column rather than an enforced foreign key so that a
// room hard-deleted out of band is detectable as a data-integrity fault instead
// of being impossible to represent.
type BookingModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	CustomerName string    `gorm:"not null;size:100"`
	RoomID       uuid.UUID `gorm:"type:uuid;index;not null"`
	CheckInDate  time.Time `gorm:"type:date;not null"`
	CheckOutDate time.Time `gorm:"type:date;not null"`
	Status       string    `gorm:"not null;size:20;index"`
	Version      int64     `gorm:"not null;default:1"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of booking.Repository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByIDForUpdate retrieves a booking with a SELECT ... FOR UPDATE row lock,
// serializing concurrent cancellations of the same booking.
func (r *GormBookingRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to lock booking row: %w", err)
	}
	return toDomainBooking(&model)
}

// HasConflict reports whether any non-cancelled booking for the room overlaps
// [checkIn, checkOut). Two half-open ranges overlap iff each starts before the
// other ends.
func (r *GormBookingRepository) HasConflict(ctx context.Context, roomID uuid.UUID, checkIn, checkOut time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("room_id = ? AND status <> ? AND check_in_date < ? AND check_out_date > ?",
			roomID, bookingDomain.StatusCancelled.String(), checkOut, checkIn).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check booking conflicts: %w", err)
	}
	return count > 0, nil
}

// Save persists a new booking. A violation of the per-room no-overlap exclusion
// constraint surfaces as a ConflictError, not a raw storage error.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if translated := translateConstraintError(err, "room is already booked for selected dates"); translated != nil {
			return translated
		}
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":     model.Status,
			"version":    model.Version,
			"updated_at": model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:           bk.ID(),
		CustomerName: bk.CustomerName(),
		RoomID:       bk.RoomID(),
		CheckInDate:  bk.CheckInDate(),
		CheckOutDate: bk.CheckOutDate(),
		Status:       bk.Status().String(),
		Version:      bk.Version(),
		CreatedAt:    bk.CreatedAt(),
		UpdatedAt:    bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseStatus(m.Status)
	if err != nil {
		return nil, domain.NewDataIntegrityError(fmt.Sprintf("booking %s has invalid status %q", m.ID, m.Status))
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		m.CustomerName,
		m.RoomID,
		bookingDomain.NormalizeDate(m.CheckInDate),
		bookingDomain.NormalizeDate(m.CheckOutDate),
		status,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
