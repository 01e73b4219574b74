// Package events defines the domain event types the service publishes after
// committed state changes. There are no consumers in this service; events are
// an outbound notification surface only.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics.
const (
	TopicBookingEvents = "booking.events"
	TopicRoomEvents    = "room.events"
)

// Event types.
const (
	BookingCreated   = "booking.created"
	BookingCancelled = "booking.cancelled"
	RoomCreated      = "room.created"
)

// EventSource identifies this service in published CloudEvents.
const EventSource = "service-booking"

// BookingCreatedEvent is published after a booking commits.
type BookingCreatedEvent struct {
	BookingID    uuid.UUID `json:"booking_id"`
	RoomID       uuid.UUID `json:"room_id"`
	RoomNumber   string    `json:"room_number"`
	CustomerName string    `json:"customer_name"`
	CheckInDate  string    `json:"check_in_date"`
	CheckOutDate string    `json:"check_out_date"`
	TotalPrice   string    `json:"total_price"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// BookingCancelledEvent is published after a cancellation commits.
type BookingCancelledEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	RoomID     uuid.UUID `json:"room_id"`
	RoomNumber string    `json:"room_number"`
	OccurredAt time.Time `json:"occurred_at"`
}

// RoomCreatedEvent is published after a room is added to the catalog.
type RoomCreatedEvent struct {
	RoomID     uuid.UUID `json:"room_id"`
	RoomNumber string    `json:"room_number"`
	Capacity   int       `json:"capacity"`
	Price      string    `json:"price"`
	OccurredAt time.Time `json:"occurred_at"`
}
