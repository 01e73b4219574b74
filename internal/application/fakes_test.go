package application

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stayhaven/service-booking/internal/domain"
	bookingDomain "github.com/stayhaven/service-booking/internal/domain/booking"
	roomDomain "github.com/stayhaven/service-booking/internal/domain/room"
	userDomain "github.com/stayhaven/service-booking/internal/domain/user"
	"github.com/stayhaven/service-booking/internal/kafka"
	"github.com/stayhaven/service-booking/internal/repository"
)

// memRoomRepo is an in-memory room.Repository for service tests.
type memRoomRepo struct {
	mu    sync.Mutex
	rooms map[uuid.UUID]*roomDomain.Room
}

func newMemRoomRepo() *memRoomRepo {
	return &memRoomRepo{rooms: make(map[uuid.UUID]*roomDomain.Room)}
}

func (r *memRoomRepo) FindByID(_ context.Context, id uuid.UUID) (*roomDomain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rm, ok := r.rooms[id]
	if !ok {
		return nil, domain.NewNotFoundError("room", id.String())
	}
	return cloneRoom(rm), nil
}

func (r *memRoomRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*roomDomain.Room, error) {
	return r.FindByID(ctx, id)
}

func (r *memRoomRepo) FindAllAvailable(_ context.Context) ([]*roomDomain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*roomDomain.Room
	for _, rm := range r.rooms {
		if rm.IsAvailable() {
			out = append(out, cloneRoom(rm))
		}
	}
	return out, nil
}

func (r *memRoomRepo) ExistsByNumber(_ context.Context, roomNumber string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rm := range r.rooms {
		if rm.RoomNumber() == roomNumber {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRoomRepo) Save(_ context.Context, rm *roomDomain.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms[rm.ID()] = cloneRoom(rm)
	return nil
}

func (r *memRoomRepo) Update(_ context.Context, rm *roomDomain.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[rm.ID()]; !ok {
		return domain.NewNotFoundError("room", rm.ID().String())
	}
	r.rooms[rm.ID()] = cloneRoom(rm)
	return nil
}

func (r *memRoomRepo) delete(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, id)
}

func cloneRoom(rm *roomDomain.Room) *roomDomain.Room {
	return roomDomain.ReconstructRoom(
		rm.ID(), rm.RoomNumber(), rm.Capacity(), rm.Price(),
		rm.IsAvailable(), rm.Version(), rm.CreatedAt(), rm.UpdatedAt(),
	)
}

// memBookingRepo is an in-memory booking.Repository for service tests.
type memBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*bookingDomain.Booking
}

func newMemBookingRepo() *memBookingRepo {
	return &memBookingRepo{bookings: make(map[uuid.UUID]*bookingDomain.Booking)}
}

func (r *memBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bk, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("booking", id.String())
	}
	return cloneBooking(bk), nil
}

func (r *memBookingRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	return r.FindByID(ctx, id)
}

func (r *memBookingRepo) HasConflict(_ context.Context, roomID uuid.UUID, checkIn, checkOut time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, bk := range r.bookings {
		if bk.RoomID() != roomID || bk.Status() == bookingDomain.StatusCancelled {
			continue
		}
		if bookingDomain.Overlaps(bk.CheckInDate(), bk.CheckOutDate(), checkIn, checkOut) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memBookingRepo) Save(_ context.Context, bk *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[bk.ID()] = cloneBooking(bk)
	return nil
}

func (r *memBookingRepo) Update(_ context.Context, bk *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[bk.ID()]; !ok {
		return domain.NewNotFoundError("booking", bk.ID().String())
	}
	r.bookings[bk.ID()] = cloneBooking(bk)
	return nil
}

func cloneBooking(bk *bookingDomain.Booking) *bookingDomain.Booking {
	return bookingDomain.ReconstructBooking(
		bk.ID(), bk.CustomerName(), bk.RoomID(),
		bk.CheckInDate(), bk.CheckOutDate(), bk.Status(),
		bk.Version(), bk.CreatedAt(), bk.UpdatedAt(),
	)
}

// memUserRepo is an in-memory user.Repository for service tests.
type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*userDomain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]*userDomain.User)}
}

func (r *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*userDomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.NewNotFoundError("user", id.String())
	}
	return u, nil
}

func (r *memUserRepo) FindByUsername(_ context.Context, username string) (*userDomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username() == username {
			return u, nil
		}
	}
	return nil, domain.NewNotFoundError("user", username)
}

func (r *memUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username() == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *memUserRepo) Save(_ context.Context, u *userDomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID()] = u
	return nil
}

// memTransactor hands the callback the in-memory repositories. It provides the
// Stores shape, not atomicity; rollback behavior is covered by integration
// tests against a real database.
type memTransactor struct {
	rooms    *memRoomRepo
	bookings *memBookingRepo
	mu       sync.Mutex
}

func (t *memTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context, stores repository.Stores) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx, repository.Stores{Rooms: t.rooms, Bookings: t.bookings})
}

// capturePublisher records every published event.
type capturePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	Topic string
	Key   string
	Event kafka.CloudEvent
}

func (p *capturePublisher) PublishEvent(_ context.Context, topic, key string, event kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Topic: topic, Key: key, Event: event})
	return nil
}

func (p *capturePublisher) byType(eventType string) []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []publishedEvent
	for _, e := range p.events {
		if e.Event.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
