package gateway_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/room-planner/internal/gateway"
	"github.com/example/room-planner/internal/persistence"
	"github.com/example/room-planner/internal/scheduler"
	"github.com/example/room-planner/internal/testfixtures"
)

type world struct {
	planner *scheduler.Planner
	h       *testfixtures.SQLiteHarness
	owner   persistence.User
	other   persistence.User
	room    persistence.Room
	s1, s2  persistence.Slot
	foreign persistence.Slot
}

func newWorld(t *testing.T) world {
	t.Helper()
	h := testfixtures.NewSQLiteHarness(t)
	room := testfixtures.NewRoom(testfixtures.WithRoomName("R"))
	slots := h.Seed(t, room, [2]string{"10:00", "11:00"}, [2]string{"09:00", "10:00"})
	otherRoom := testfixtures.NewRoom(testfixtures.WithRoomName("Q"))
	foreign := h.Seed(t, otherRoom, [2]string{"09:00", "10:00"})

	ids := testfixtures.NewIDGenerator("res")
	clock := testfixtures.NewClock(time.Time{})
	planner := scheduler.NewPlanner(
		gateway.NewCatalog(h.Store),
		gateway.NewLedger(h.Store),
		scheduler.WithIDGenerator(ids.NextFunc()),
		scheduler.WithClock(clock.NowFunc()),
	)
	return world{
		planner: planner,
		h:       h,
		owner:   h.SeedUser(t),
		other:   h.SeedUser(t),
		room:    room,
		s1:      slots[1],
		s2:      slots[0],
		foreign: foreign[0],
	}
}

func ids(slots []scheduler.Slot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.ID)
	}
	return out
}

func TestPlannerOverSQLite(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	day := scheduler.NewDate(2024, time.June, 1)

	free, err := w.planner.AvailableSlots(ctx, w.room.ID, day)
	require.NoError(t, err)
	assert.Equal(t, []string{w.s1.ID, w.s2.ID}, ids(free))

	booked, err := w.planner.Create(ctx, w.owner.ID, w.room.ID, w.s1.ID, day)
	require.NoError(t, err)

	_, err = w.planner.Create(ctx, w.other.ID, w.room.ID, w.s1.ID, day)
	assert.ErrorIs(t, err, scheduler.ErrSlotAlreadyBooked)

	free, err = w.planner.AvailableSlots(ctx, w.room.ID, day)
	require.NoError(t, err)
	assert.Equal(t, []string{w.s2.ID}, ids(free))

	moved, err := w.planner.Update(ctx, w.owner.ID, booked.ID, w.s2.ID)
	require.NoError(t, err)
	assert.Equal(t, w.s2.ID, moved.SlotID)
	assert.Equal(t, day, moved.Date)

	_, err = w.planner.Update(ctx, w.owner.ID, booked.ID, w.foreign.ID)
	assert.ErrorIs(t, err, scheduler.ErrInvalidSlot)

	_, err = w.planner.Cancel(ctx, w.other.ID, booked.ID)
	assert.ErrorIs(t, err, scheduler.ErrNotFoundOrForbidden)

	details, err := w.planner.ListForUser(ctx, w.owner.ID)
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "R", details[0].RoomName)
	assert.Equal(t, scheduler.At(10, 0), details[0].SlotStart)

	_, err = w.planner.Cancel(ctx, w.owner.ID, booked.ID)
	require.NoError(t, err)
	details, err = w.planner.ListForUser(ctx, w.owner.ID)
	require.NoError(t, err)
	assert.Empty(t, details)
}

func TestConcurrentCreateAdmitsOne(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	day := scheduler.NewDate(2024, time.June, 3)

	const workers = 6
	users := make([]persistence.User, workers)
	for i := range users {
		users[i] = w.h.SeedUser(t)
	}

	var wg sync.WaitGroup
	results := make(chan error, workers)
	for _, u := range users {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			_, err := w.planner.Create(ctx, userID, w.room.ID, w.s1.ID, day)
			results <- err
		}(u.ID)
	}
	wg.Wait()
	close(results)

	admitted := 0
	for err := range results {
		if err == nil {
			admitted++
			continue
		}
		assert.ErrorIs(t, err, scheduler.ErrSlotAlreadyBooked)
	}
	assert.Equal(t, 1, admitted)
}

func TestRoomWithoutSlots(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	empty := testfixtures.NewRoom()
	w.h.Seed(t, empty)

	_, err := w.planner.RoomSchedules(ctx, empty.ID)
	assert.ErrorIs(t, err, scheduler.ErrNoSlotsConfigured)

	_, err = w.planner.AvailableSlots(ctx, "missing", scheduler.NewDate(2024, time.June, 1))
	assert.ErrorIs(t, err, scheduler.ErrNotFound)
	assert.NotErrorIs(t, err, scheduler.ErrNoSlotsConfigured)
}

func TestLedgerClassifiesMissingReferences(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	ledger := gateway.NewLedger(w.h.Store)
	clock := testfixtures.NewClock(time.Time{})
	base := scheduler.Reservation{
		UserID:    w.owner.ID,
		RoomID:    w.room.ID,
		SlotID:    w.s1.ID,
		Date:      scheduler.NewDate(2024, time.June, 4),
		CreatedAt: clock.Now(),
		UpdatedAt: clock.Now(),
	}

	t.Run("slot of another room", func(t *testing.T) {
		r := base
		r.ID = "res-foreign"
		r.SlotID = w.foreign.ID
		_, err := ledger.CreateReservation(ctx, r)
		assert.ErrorIs(t, err, scheduler.ErrInvalidSlot)
		assert.ErrorIs(t, err, persistence.ErrForeignKeyViolation)
	})

	t.Run("unknown user", func(t *testing.T) {
		r := base
		r.ID = "res-ghost"
		r.UserID = "ghost"
		_, err := ledger.CreateReservation(ctx, r)
		require.Error(t, err)
		assert.NotErrorIs(t, err, scheduler.ErrInvalidSlot)
		assert.ErrorIs(t, err, persistence.ErrForeignKeyViolation)

		var refErr *persistence.ReferenceError
		require.ErrorAs(t, err, &refErr)
		assert.Equal(t, persistence.ReferenceUser, refErr.Reference)
	})

	t.Run("planner reports unknown user as unexpected", func(t *testing.T) {
		_, err := w.planner.Create(ctx, "ghost", w.room.ID, w.s2.ID, base.Date)
		require.Error(t, err)
		assert.Empty(t, scheduler.KindOf(err))
	})
}
