//go:build integration

package main_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayhaven/service-booking/internal/application"
	"github.com/stayhaven/service-booking/internal/domain"
	bookingDomain "github.com/stayhaven/service-booking/internal/domain/booking"
	"github.com/stayhaven/service-booking/internal/events"
)

const dateLayout = "2006-01-02"

func stay(fromDays, toDays int) (string, string) {
	today := bookingDomain.Today()
	return today.AddDate(0, 0, fromDays).Format(dateLayout),
		today.AddDate(0, 0, toDays).Format(dateLayout)
}

// TestConcurrentBooking_ExactlyOneWins fires racing create requests for the
// same room and dates; the row lock must let exactly one through.
func TestConcurrentBooking_ExactlyOneWins(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()
	stack := setupBookingStack(t, infra)

	room, err := stack.Rooms.Create(context.Background(), application.CreateRoomRequest{
		RoomNumber: "race-101",
		Capacity:   2,
		Price:      "100.00",
	})
	require.NoError(t, err)

	const attempts = 8
	checkIn, checkOut := stay(1, 3)

	var wg sync.WaitGroup
	results := make(chan error, attempts)
	start := make(chan struct{})

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			<-start
			_, err := stack.Bookings.Create(context.Background(), "racer", application.CreateBookingRequest{
				RoomID:       room.ID,
				CheckInDate:  checkIn,
				CheckOutDate: checkOut,
			})
			results <- err
		}(i)
	}

	close(start)
	wg.Wait()
	close(results)

	var wins, conflicts int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case domain.IsConflict(err):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, wins, "exactly one racing request must succeed")
	assert.Equal(t, attempts-1, conflicts)
}

// TestBookingLifecycle walks create, read, cancel and rebook against the real
// database and asserts the published events.
func TestBookingLifecycle(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()
	stack := setupBookingStack(t, infra)
	ctx := context.Background()

	room, err := stack.Rooms.Create(ctx, application.CreateRoomRequest{
		RoomNumber: "lifecycle-1",
		Capacity:   2,
		Price:      "150.00",
	})
	require.NoError(t, err)

	checkIn, checkOut := stay(1, 4)
	created, err := stack.Bookings.Create(ctx, "alice", application.CreateBookingRequest{
		RoomID:       room.ID,
		CheckInDate:  checkIn,
		CheckOutDate: checkOut,
	})
	require.NoError(t, err)
	assert.Equal(t, "450.00", created.TotalPrice)

	// The room disappears from the available listing.
	listed, err := stack.Rooms.GetAllAvailable(ctx)
	require.NoError(t, err)
	for _, rm := range listed {
		assert.NotEqual(t, room.ID, rm.ID)
	}

	got, err := stack.Bookings.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, *created, *got)

	ce := consumeOneEvent(t, infra.KafkaBrokers, events.TopicBookingEvents,
		events.BookingCreated, 15*time.Second)
	var createdEvt events.BookingCreatedEvent
	require.NoError(t, ce.ParseData(&createdEvt))
	assert.Equal(t, created.ID, createdEvt.BookingID)
	assert.Equal(t, "450.00", createdEvt.TotalPrice)

	// Cancel frees the room; a second cancel is rejected.
	require.NoError(t, stack.Bookings.Cancel(ctx, created.ID))
	err = stack.Bookings.Cancel(ctx, created.ID)
	assert.True(t, domain.IsConflict(err))

	listed, err = stack.Rooms.GetAllAvailable(ctx)
	require.NoError(t, err)
	found := false
	for _, rm := range listed {
		if rm.ID == room.ID {
			found = true
		}
	}
	assert.True(t, found, "cancelled room must be listed again")

	// The same dates are bookable again.
	rebooked, err := stack.Bookings.Create(ctx, "bob", application.CreateBookingRequest{
		RoomID:       room.ID,
		CheckInDate:  checkIn,
		CheckOutDate: checkOut,
	})
	require.NoError(t, err)
	assert.NotEqual(t, created.ID, rebooked.ID)
}

// TestExclusionConstraint_Backstop inserts an overlapping booking directly,
// bypassing the service-level checks, and expects the database to refuse it.
func TestExclusionConstraint_Backstop(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()
	stack := setupBookingStack(t, infra)
	ctx := context.Background()

	room, err := stack.Rooms.Create(ctx, application.CreateRoomRequest{
		RoomNumber: "backstop-1",
		Capacity:   2,
		Price:      "100.00",
	})
	require.NoError(t, err)

	checkIn, checkOut := stay(1, 5)
	_, err = stack.Bookings.Create(ctx, "alice", application.CreateBookingRequest{
		RoomID:       room.ID,
		CheckInDate:  checkIn,
		CheckOutDate: checkOut,
	})
	require.NoError(t, err)

	// Force the flag back on so only the date-range defenses remain.
	require.NoError(t, infra.DB.Exec(
		"UPDATE rooms SET is_available = true WHERE id = ?", room.ID,
	).Error)

	overlapIn, overlapOut := stay(3, 7)
	_, err = stack.Bookings.Create(ctx, "bob", application.CreateBookingRequest{
		RoomID:       room.ID,
		CheckInDate:  overlapIn,
		CheckOutDate: overlapOut,
	})
	assert.True(t, domain.IsConflict(err), "overlap must be rejected, got %v", err)
}
