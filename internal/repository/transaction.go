package repository

import (
	"context"

	"gorm.io/gorm"

	bookingDomain "github.com/stayhaven/service-booking/internal/domain/booking"
	roomDomain "github.com/stayhaven/service-booking/internal/domain/room"
)

// Stores bundles the repositories bound to a single transaction so that the
// conflict check, the booking insert and the room flag update commit or roll
// back as one atomic unit.
type Stores struct {
	Rooms    roomDomain.Repository
	Bookings bookingDomain.Repository
}

// TxManager runs units of work inside a database transaction.
type TxManager struct {
	db *gorm.DB
}

// NewTxManager creates a new TxManager.
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// WithinTransaction executes fn with repositories bound to one transaction.
// Any error returned by fn rolls the transaction back.
func (m *TxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, Stores{
			Rooms:    NewGormRoomRepository(tx),
			Bookings: NewGormBookingRepository(tx),
		})
	})
}
