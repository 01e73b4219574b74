package application

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stayhaven/service-booking/internal/cache"
	"github.com/stayhaven/service-booking/internal/domain"
	"github.com/stayhaven/service-booking/internal/events"
)

type roomFixture struct {
	service   *RoomService
	rooms     *memRoomRepo
	publisher *capturePublisher
}

func newRoomFixture(t *testing.T) *roomFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := cache.NewStore(client, time.Minute, 100, zap.NewNop())

	rooms := newMemRoomRepo()
	publisher := &capturePublisher{}

	return &roomFixture{
		service:   NewRoomService(rooms, store, publisher, zap.NewNop()),
		rooms:     rooms,
		publisher: publisher,
	}
}

func TestCreateRoom_Success(t *testing.T) {
	f := newRoomFixture(t)

	resp, err := f.service.Create(context.Background(), CreateRoomRequest{
		RoomNumber: "202-B",
		Capacity:   3,
		Price:      "175.00",
	})
	require.NoError(t, err)

	assert.Equal(t, "202-B", resp.RoomNumber)
	assert.Equal(t, 3, resp.Capacity)
	assert.Equal(t, "175.00", resp.Price)
	assert.True(t, resp.IsAvailable)

	published := f.publisher.byType(events.RoomCreated)
	require.Len(t, published, 1)
	assert.Equal(t, events.TopicRoomEvents, published[0].Topic)

	var payload events.RoomCreatedEvent
	require.NoError(t, published[0].Event.ParseData(&payload))
	assert.Equal(t, resp.ID, payload.RoomID)
	assert.Equal(t, "175.00", payload.Price)
}

func TestCreateRoom_DuplicateNumber(t *testing.T) {
	f := newRoomFixture(t)
	ctx := context.Background()

	req := CreateRoomRequest{RoomNumber: "202", Capacity: 2, Price: "100.00"}
	_, err := f.service.Create(ctx, req)
	require.NoError(t, err)

	_, err = f.service.Create(ctx, req)
	assert.True(t, domain.IsConflict(err), "expected conflict, got %v", err)
	assert.Len(t, f.publisher.byType(events.RoomCreated), 1)
}

func TestCreateRoom_InvalidPrice(t *testing.T) {
	f := newRoomFixture(t)

	_, err := f.service.Create(context.Background(), CreateRoomRequest{
		RoomNumber: "202",
		Capacity:   2,
		Price:      "not-a-number",
	})
	assert.True(t, domain.IsValidation(err), "expected validation error, got %v", err)
}

func TestGetAllAvailable_FiltersAndCaches(t *testing.T) {
	f := newRoomFixture(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, CreateRoomRequest{RoomNumber: "201", Capacity: 2, Price: "100.00"})
	require.NoError(t, err)
	second, err := f.service.Create(ctx, CreateRoomRequest{RoomNumber: "202", Capacity: 2, Price: "120.00"})
	require.NoError(t, err)

	// Flip one room off behind the service's back.
	rm, err := f.rooms.FindByID(ctx, second.ID)
	require.NoError(t, err)
	rm.MarkUnavailable()
	require.NoError(t, f.rooms.Update(ctx, rm))

	listed, err := f.service.GetAllAvailable(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "201", listed[0].RoomNumber)

	// The list is now cached; a direct store mutation is not visible.
	rm, err = f.rooms.FindByID(ctx, second.ID)
	require.NoError(t, err)
	rm.MarkAvailable()
	require.NoError(t, f.rooms.Update(ctx, rm))

	cached, err := f.service.GetAllAvailable(ctx)
	require.NoError(t, err)
	assert.Len(t, cached, 1)
}

func TestGetAllAvailable_InvalidatedByCreate(t *testing.T) {
	f := newRoomFixture(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, CreateRoomRequest{RoomNumber: "201", Capacity: 2, Price: "100.00"})
	require.NoError(t, err)

	listed, err := f.service.GetAllAvailable(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	// Creating a room evicts the rooms region, so the next read sees it.
	_, err = f.service.Create(ctx, CreateRoomRequest{RoomNumber: "202", Capacity: 2, Price: "120.00"})
	require.NoError(t, err)

	listed, err = f.service.GetAllAvailable(ctx)
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestGetAllAvailable_Empty(t *testing.T) {
	f := newRoomFixture(t)

	listed, err := f.service.GetAllAvailable(context.Background())
	require.NoError(t, err)
	assert.Empty(t, listed)
}
