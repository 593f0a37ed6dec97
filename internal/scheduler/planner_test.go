package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.May, 20, 8, 0, 0, 0, time.UTC)

func newTestPlanner(m *memStore) *Planner {
	return NewPlanner(m, m, WithIDGenerator(sequentialIDs("res-")), WithClock(func() time.Time { return fixedNow }))
}

func TestPlannerScenario(t *testing.T) {
	ctx := context.Background()
	m := seededStore()
	p := newTestPlanner(m)

	free, err := p.AvailableSlots(ctx, "R", day)
	require.NoError(t, err)
	assert.Equal(t, []string{"S1", "S2"}, slotIDs(free))

	booked, err := p.Create(ctx, "U", "R", "S1", day)
	require.NoError(t, err)
	assert.Equal(t, "res-1", booked.ID)
	assert.Equal(t, "U", booked.UserID)
	assert.Equal(t, fixedNow, booked.CreatedAt)

	_, err = p.Create(ctx, "V", "R", "S1", day)
	assert.ErrorIs(t, err, ErrSlotAlreadyBooked)
	assert.Equal(t, KindSlotAlreadyBooked, KindOf(err))

	free, err = p.AvailableSlots(ctx, "R", day)
	require.NoError(t, err)
	assert.Equal(t, []string{"S2"}, slotIDs(free))

	moved, err := p.Update(ctx, "U", booked.ID, "S2")
	require.NoError(t, err)
	assert.Equal(t, "S2", moved.SlotID)
	assert.Equal(t, "S2", m.reservations[booked.ID].SlotID)

	_, err = p.Update(ctx, "U", booked.ID, "S3")
	assert.ErrorIs(t, err, ErrInvalidSlot)
	assert.Equal(t, "S2", m.reservations[booked.ID].SlotID)

	_, err = p.Cancel(ctx, "V", booked.ID)
	assert.ErrorIs(t, err, ErrNotFoundOrForbidden)
	assert.Contains(t, m.reservations, booked.ID)
}

func TestPlannerCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("rejections leave no state", func(t *testing.T) {
		m := seededStore()
		p := newTestPlanner(m)

		_, err := p.Create(ctx, "U", "X", "S1", day)
		assert.Equal(t, KindNotFound, KindOf(err))
		_, err = p.Create(ctx, "U", "R", "S3", day)
		assert.Equal(t, KindInvalidSlot, KindOf(err))
		assert.Empty(t, m.reservations)
	})

	t.Run("write-time conflict maps to slot already booked", func(t *testing.T) {
		m := seededStore()
		m.reservations["other"] = Reservation{ID: "other", UserID: "V", RoomID: "R", SlotID: "S1", Date: day}
		p := NewPlanner(m, racingLedger{m}, WithIDGenerator(sequentialIDs("res-")))

		_, err := p.Create(ctx, "U", "R", "S1", day)
		assert.ErrorIs(t, err, ErrSlotAlreadyBooked)
		var rej *Rejection
		require.ErrorAs(t, err, &rej)
		assert.Equal(t, KindSlotAlreadyBooked, rej.Kind)
		assert.Len(t, m.reservations, 1)
	})
}

func TestPlannerUpdate(t *testing.T) {
	ctx := context.Background()

	setup := func() (*memStore, *Planner) {
		m := seededStore()
		m.reservations["mine"] = Reservation{ID: "mine", UserID: "U", RoomID: "R", SlotID: "S1", Date: day}
		return m, newTestPlanner(m)
	}

	t.Run("same slot is a no-op success", func(t *testing.T) {
		_, p := setup()
		got, err := p.Update(ctx, "U", "mine", "S1")
		require.NoError(t, err)
		assert.Equal(t, "S1", got.SlotID)
		assert.Equal(t, fixedNow, got.UpdatedAt)
	})

	t.Run("target taken by someone else", func(t *testing.T) {
		m, p := setup()
		m.reservations["theirs"] = Reservation{ID: "theirs", UserID: "V", RoomID: "R", SlotID: "S2", Date: day}
		_, err := p.Update(ctx, "U", "mine", "S2")
		assert.ErrorIs(t, err, ErrSlotAlreadyBooked)
		assert.Equal(t, "S1", m.reservations["mine"].SlotID)
	})

	t.Run("non-owner looks like missing", func(t *testing.T) {
		_, p := setup()
		_, errForeign := p.Update(ctx, "V", "mine", "S2")
		_, errMissing := p.Update(ctx, "V", "nope", "S2")
		assert.ErrorIs(t, errForeign, ErrNotFoundOrForbidden)
		assert.ErrorIs(t, errMissing, ErrNotFoundOrForbidden)
		assert.Equal(t, errForeign.Error(), errMissing.Error())
	})

	t.Run("unknown slot", func(t *testing.T) {
		_, p := setup()
		_, err := p.Update(ctx, "U", "mine", "ghost")
		assert.Equal(t, KindInvalidSlot, KindOf(err))
	})

	t.Run("lost write reports update failed", func(t *testing.T) {
		m, p := setup()
		m.dropUpdate = true
		_, err := p.Update(ctx, "U", "mine", "S2")
		assert.ErrorIs(t, err, ErrUpdateFailed)
		assert.Equal(t, KindUpdateFailed, KindOf(err))
	})
}

func TestPlannerCancel(t *testing.T) {
	ctx := context.Background()
	m := seededStore()
	m.reservations["mine"] = Reservation{ID: "mine", UserID: "U", RoomID: "R", SlotID: "S1", Date: day}
	p := newTestPlanner(m)

	_, err := p.Cancel(ctx, "U", "missing")
	assert.ErrorIs(t, err, ErrNotFoundOrForbidden)

	got, err := p.Cancel(ctx, "U", "mine")
	require.NoError(t, err)
	assert.Equal(t, "mine", got.ID)
	assert.NotContains(t, m.reservations, "mine")

	_, err = p.Cancel(ctx, "U", "mine")
	assert.ErrorIs(t, err, ErrNotFoundOrForbidden)
}

func TestPlannerListForUser(t *testing.T) {
	m := seededStore()
	m.reservations["b"] = Reservation{ID: "b", UserID: "U", RoomID: "R", SlotID: "S2", Date: day}
	m.reservations["c"] = Reservation{ID: "c", UserID: "U", RoomID: "R", SlotID: "S1", Date: nextDay}
	m.reservations["a"] = Reservation{ID: "a", UserID: "U", RoomID: "R", SlotID: "S1", Date: day}
	m.reservations["x"] = Reservation{ID: "x", UserID: "V", RoomID: "Q", SlotID: "S3", Date: day}

	details, err := newTestPlanner(m).ListForUser(context.Background(), "U")
	require.NoError(t, err)
	require.Len(t, details, 3)
	assert.Equal(t, "a", details[0].ID)
	assert.Equal(t, "b", details[1].ID)
	assert.Equal(t, "c", details[2].ID)
	assert.Equal(t, "Room R", details[0].RoomName)
	assert.Equal(t, At(10, 0), details[1].SlotStart)
}

func TestPlannerReadCatalog(t *testing.T) {
	live := seededStore()
	stale := seededStore()
	delete(stale.slots, "S2")
	stale.order = []string{"S1", "S3"}

	p := NewPlanner(live, live, WithReadCatalog(stale))
	free, err := p.AvailableSlots(context.Background(), "R", day)
	require.NoError(t, err)
	assert.Equal(t, []string{"S1"}, slotIDs(free))

	_, err = p.Create(context.Background(), "U", "R", "S2", day)
	require.NoError(t, err)
}
