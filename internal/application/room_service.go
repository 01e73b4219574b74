package application

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/stayhaven/service-booking/internal/cache"
	"github.com/stayhaven/service-booking/internal/domain"
	roomDomain "github.com/stayhaven/service-booking/internal/domain/room"
	"github.com/stayhaven/service-booking/internal/events"
	"github.com/stayhaven/service-booking/internal/kafka"
)

const availableRoomsCacheKey = "available"

// CreateRoomRequest holds the data needed to add a room to the catalog.
type CreateRoomRequest struct {
	RoomNumber string `json:"room_number" binding:"required"`
	Capacity   int    `json:"capacity" binding:"required"`
	Price      string `json:"price" binding:"required"`
}

// RoomResponse is the response representation of a room.
type RoomResponse struct {
	ID          uuid.UUID `json:"id"`
	RoomNumber  string    `json:"room_number"`
	Capacity    int       `json:"capacity"`
	Price       string    `json:"price"`
	IsAvailable bool      `json:"is_available"`
}

// RoomService manages the room catalog and the available-rooms read path.
type RoomService struct {
	rooms     roomDomain.Repository
	cache     *cache.Store
	publisher EventPublisher
	logger    *zap.Logger
}

// NewRoomService creates a new RoomService.
func NewRoomService(rooms roomDomain.Repository, cacheStore *cache.Store, publisher EventPublisher, logger *zap.Logger) *RoomService {
	return &RoomService{
		rooms:     rooms,
		cache:     cacheStore,
		publisher: publisher,
		logger:    logger,
	}
}

// GetAllAvailable lists rooms whose availability flag is on, served from the
// rooms cache region when possible. The list reflects the flag, not a
// date-range query; a flagged-off room may still be free on other dates.
func (s *RoomService) GetAllAvailable(ctx context.Context) ([]RoomResponse, error) {
	var cached []RoomResponse
	hit, err := s.cache.Get(ctx, cache.RegionRooms, availableRoomsCacheKey, &cached)
	if err != nil {
		s.logger.Warn("rooms cache read failed", zap.Error(err))
	}
	if hit {
		return cached, nil
	}

	rooms, err := s.rooms.FindAllAvailable(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]RoomResponse, 0, len(rooms))
	for _, rm := range rooms {
		resp = append(resp, toRoomResponse(rm))
	}

	if err := s.cache.Put(ctx, cache.RegionRooms, availableRoomsCacheKey, resp); err != nil {
		s.logger.Warn("rooms cache write failed", zap.Error(err))
	}
	return resp, nil
}

// Create adds a room to the catalog. Room numbers are unique; a duplicate is a
// conflict whether caught by the pre-check or by the database constraint.
func (s *RoomService) Create(ctx context.Context, req CreateRoomRequest) (*RoomResponse, error) {
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return nil, domain.NewValidationError("invalid price, expected a decimal number")
	}

	rm, err := roomDomain.NewRoom(req.RoomNumber, req.Capacity, price)
	if err != nil {
		return nil, err
	}

	exists, err := s.rooms.ExistsByNumber(ctx, rm.RoomNumber())
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.NewConflictError("room number already exists")
	}

	if err := s.rooms.Save(ctx, rm); err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(ctx, cache.RegionRooms); err != nil {
		s.logger.Error("cache eviction failed",
			zap.String("region", cache.RegionRooms),
			zap.Error(err),
		)
	}
	s.publishRoomCreated(ctx, rm)

	s.logger.Info("room created",
		zap.String("room_id", rm.ID().String()),
		zap.String("room_number", rm.RoomNumber()),
		zap.Int("capacity", rm.Capacity()),
	)

	resp := toRoomResponse(rm)
	return &resp, nil
}

func toRoomResponse(rm *roomDomain.Room) RoomResponse {
	return RoomResponse{
		ID:          rm.ID(),
		RoomNumber:  rm.RoomNumber(),
		Capacity:    rm.Capacity(),
		Price:       rm.Price().StringFixed(2),
		IsAvailable: rm.IsAvailable(),
	}
}

func (s *RoomService) publishRoomCreated(ctx context.Context, rm *roomDomain.Room) {
	evt := events.RoomCreatedEvent{
		RoomID:     rm.ID(),
		RoomNumber: rm.RoomNumber(),
		Capacity:   rm.Capacity(),
		Price:      rm.Price().StringFixed(2),
		OccurredAt: rm.CreatedAt(),
	}

	cloudEvent, err := kafka.NewCloudEvent(events.EventSource, events.RoomCreated, evt)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", events.RoomCreated),
			zap.Error(err),
		)
		return
	}

	if err := s.publisher.PublishEvent(ctx, events.TopicRoomEvents, rm.ID().String(), cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", events.TopicRoomEvents),
			zap.String("event_type", events.RoomCreated),
			zap.Error(err),
		)
	}
}
