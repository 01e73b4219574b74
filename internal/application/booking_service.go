package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stayhaven/service-booking/internal/cache"
	"github.com/stayhaven/service-booking/internal/domain"
	bookingDomain "github.com/stayhaven/service-booking/internal/domain/booking"
	roomDomain "github.com/stayhaven/service-booking/internal/domain/room"
	"github.com/stayhaven/service-booking/internal/events"
	"github.com/stayhaven/service-booking/internal/kafka"
	"github.com/stayhaven/service-booking/internal/repository"
)

const dateLayout = "2006-01-02"

// CreateBookingRequest holds the data needed to book a room. Caller identity is
// not part of the request body; it is passed explicitly by the transport layer.
type CreateBookingRequest struct {
	RoomID       uuid.UUID `json:"room_id" binding:"required"`
	CheckInDate  string    `json:"check_in_date" binding:"required"`
	CheckOutDate string    `json:"check_out_date" binding:"required"`
}

// BookingResponse is the response representation of a booking, with the total
// price derived from the room's nightly rate.
type BookingResponse struct {
	ID           uuid.UUID `json:"id"`
	RoomNumber   string    `json:"room_number"`
	CheckInDate  string    `json:"check_in_date"`
	CheckOutDate string    `json:"check_out_date"`
	Status       string    `json:"status"`
	TotalPrice   string    `json:"total_price"`
	CustomerName string    `json:"customer_name"`
}

// BookingService orchestrates booking use cases. Create and Cancel run the
// conflict check, the booking write and the room availability flip as one
// transaction over a locked room row, so concurrent overlapping requests for
// the same room resolve to exactly one winner.
type BookingService struct {
	tx        Transactor
	bookings  bookingDomain.Repository
	rooms     roomDomain.Repository
	cache     *cache.Store
	publisher EventPublisher
	logger    *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	tx Transactor,
	bookings bookingDomain.Repository,
	rooms roomDomain.Repository,
	cacheStore *cache.Store,
	publisher EventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		tx:        tx,
		bookings:  bookings,
		rooms:     rooms,
		cache:     cacheStore,
		publisher: publisher,
		logger:    logger,
	}
}

// Create books a room for the given date range under the caller's identity.
func (s *BookingService) Create(ctx context.Context, customerName string, req CreateBookingRequest) (*BookingResponse, error) {
	checkIn, checkOut, err := parseStayDates(req.CheckInDate, req.CheckOutDate)
	if err != nil {
		return nil, err
	}
	// Policy violations are rejected before any room state is consulted, so an
	// out-of-policy request reports the same error whatever the room looks like.
	if err := bookingDomain.ValidateStay(checkIn, checkOut); err != nil {
		return nil, err
	}

	var (
		created    *bookingDomain.Booking
		bookedRoom *roomDomain.Room
	)
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context, stores repository.Stores) error {
		// The row lock serializes concurrent create attempts per room; without
		// it two requests could both pass the conflict check and both insert.
		rm, err := stores.Rooms.FindByIDForUpdate(ctx, req.RoomID)
		if err != nil {
			return err
		}

		// Coarse guard on the denormalized flag, ahead of the date-level check.
		if !rm.IsAvailable() {
			return domain.NewConflictError("room is not available")
		}

		conflict, err := stores.Bookings.HasConflict(ctx, rm.ID(), checkIn, checkOut)
		if err != nil {
			return err
		}
		if conflict {
			return domain.NewConflictError("room is already booked for selected dates")
		}

		bk, err := bookingDomain.NewBooking(customerName, rm.ID(), checkIn, checkOut)
		if err != nil {
			return err
		}
		if err := stores.Bookings.Save(ctx, bk); err != nil {
			return err
		}

		rm.MarkUnavailable()
		rm.IncrementVersion()
		if err := stores.Rooms.Update(ctx, rm); err != nil {
			return err
		}

		created, bookedRoom = bk, rm
		return nil
	})
	if err != nil {
		s.logBookingFailure("create booking failed", req.RoomID.String(), err)
		return nil, err
	}

	s.evictRegions(ctx, cache.RegionRooms, cache.RegionBookings)
	s.publishBookingCreated(ctx, created, bookedRoom)

	resp := toBookingResponse(created, bookedRoom)
	s.logger.Info("booking created",
		zap.String("booking_id", created.ID().String()),
		zap.String("customer", created.CustomerName()),
		zap.String("room_number", bookedRoom.RoomNumber()),
		zap.String("check_in", resp.CheckInDate),
		zap.String("check_out", resp.CheckOutDate),
		zap.String("total_price", resp.TotalPrice),
	)
	return &resp, nil
}

// Cancel cancels a confirmed booking and frees its room. Repeating a
// cancellation is rejected, not a no-op.
func (s *BookingService) Cancel(ctx context.Context, id uuid.UUID) error {
	var (
		cancelled *bookingDomain.Booking
		freedRoom *roomDomain.Room
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, stores repository.Stores) error {
		bk, err := stores.Bookings.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if bk.Status() == bookingDomain.StatusCancelled {
			return domain.NewConflictError("booking already cancelled")
		}
		if bk.RoomID() == uuid.Nil {
			return domain.NewDataIntegrityError("booking has no associated room")
		}

		rm, err := stores.Rooms.FindByIDForUpdate(ctx, bk.RoomID())
		if err != nil {
			if domain.IsNotFound(err) {
				return domain.NewDataIntegrityError("booking references a missing room")
			}
			return err
		}

		rm.MarkAvailable()
		rm.IncrementVersion()
		if err := stores.Rooms.Update(ctx, rm); err != nil {
			return err
		}

		if err := bk.Cancel(); err != nil {
			return err
		}
		bk.IncrementVersion()
		if err := stores.Bookings.Update(ctx, bk); err != nil {
			return err
		}

		cancelled, freedRoom = bk, rm
		return nil
	})
	if err != nil {
		s.logBookingFailure("cancel booking failed", id.String(), err)
		return err
	}

	s.evictRegions(ctx, cache.RegionRooms, cache.RegionBookings)
	s.publishBookingCancelled(ctx, cancelled, freedRoom)

	s.logger.Info("booking cancelled",
		zap.String("booking_id", cancelled.ID().String()),
		zap.String("room_id", freedRoom.ID().String()),
		zap.String("room_number", freedRoom.RoomNumber()),
	)
	return nil
}

// GetByID retrieves a single booking, served from the bookings cache region
// when possible. A booking whose room reference is broken is a data-integrity
// fault, not a not-found.
func (s *BookingService) GetByID(ctx context.Context, id uuid.UUID) (*BookingResponse, error) {
	key := id.String()

	var cached BookingResponse
	hit, err := s.cache.Get(ctx, cache.RegionBookings, key, &cached)
	if err != nil {
		s.logger.Warn("booking cache read failed",
			zap.String("booking_id", key),
			zap.Error(err),
		)
	}
	if hit {
		return &cached, nil
	}

	bk, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if bk.RoomID() == uuid.Nil {
		s.logger.Error("booking has no associated room",
			zap.String("booking_id", key),
		)
		return nil, domain.NewDataIntegrityError("booking has no associated room")
	}

	rm, err := s.rooms.FindByID(ctx, bk.RoomID())
	if err != nil {
		if domain.IsNotFound(err) {
			s.logger.Error("booking references missing room",
				zap.String("booking_id", key),
				zap.String("room_id", bk.RoomID().String()),
			)
			return nil, domain.NewDataIntegrityError("booking references a missing room")
		}
		return nil, err
	}

	resp := toBookingResponse(bk, rm)
	if err := s.cache.Put(ctx, cache.RegionBookings, key, resp); err != nil {
		s.logger.Warn("booking cache write failed",
			zap.String("booking_id", key),
			zap.Error(err),
		)
	}
	return &resp, nil
}

// --- Helpers ---

func parseStayDates(checkIn, checkOut string) (time.Time, time.Time, error) {
	in, err := time.Parse(dateLayout, checkIn)
	if err != nil {
		return time.Time{}, time.Time{}, domain.NewValidationError("invalid check-in date, expected YYYY-MM-DD")
	}
	out, err := time.Parse(dateLayout, checkOut)
	if err != nil {
		return time.Time{}, time.Time{}, domain.NewValidationError("invalid check-out date, expected YYYY-MM-DD")
	}
	return in, out, nil
}

func toBookingResponse(bk *bookingDomain.Booking, rm *roomDomain.Room) BookingResponse {
	return BookingResponse{
		ID:           bk.ID(),
		RoomNumber:   rm.RoomNumber(),
		CheckInDate:  bk.CheckInDate().Format(dateLayout),
		CheckOutDate: bk.CheckOutDate().Format(dateLayout),
		Status:       bk.Status().String(),
		TotalPrice:   bk.TotalPrice(rm.Price()).StringFixed(2),
		CustomerName: bk.CustomerName(),
	}
}

func (s *BookingService) logBookingFailure(msg, id string, err error) {
	switch {
	case domain.IsValidation(err) || domain.IsConflict(err) || domain.IsNotFound(err):
		s.logger.Warn(msg, zap.String("id", id), zap.Error(err))
	default:
		s.logger.Error(msg, zap.String("id", id), zap.Error(err))
	}
}

// evictRegions clears whole cache regions after a write. A failed eviction is
// logged loudly; it can serve stale reads until TTL expiry but never corrupts
// store state.
func (s *BookingService) evictRegions(ctx context.Context, regions ...string) {
	for _, region := range regions {
		if err := s.cache.Invalidate(ctx, region); err != nil {
			s.logger.Error("cache eviction failed",
				zap.String("region", region),
				zap.Error(err),
			)
		}
	}
}

func (s *BookingService) publishBookingCreated(ctx context.Context, bk *bookingDomain.Booking, rm *roomDomain.Room) {
	evt := events.BookingCreatedEvent{
		BookingID:    bk.ID(),
		RoomID:       rm.ID(),
		RoomNumber:   rm.RoomNumber(),
		CustomerName: bk.CustomerName(),
		CheckInDate:  bk.CheckInDate().Format(dateLayout),
		CheckOutDate: bk.CheckOutDate().Format(dateLayout),
		TotalPrice:   bk.TotalPrice(rm.Price()).StringFixed(2),
		OccurredAt:   time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingCreated, bk.ID().String(), evt)
}

func (s *BookingService) publishBookingCancelled(ctx context.Context, bk *bookingDomain.Booking, rm *roomDomain.Room) {
	evt := events.BookingCancelledEvent{
		BookingID:  bk.ID(),
		RoomID:     rm.ID(),
		RoomNumber: rm.RoomNumber(),
		OccurredAt: time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingCancelled, bk.ID().String(), evt)
}

func (s *BookingService) publishEvent(ctx context.Context, topic, eventType, key string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent(events.EventSource, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.publisher.PublishEvent(ctx, topic, key, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
