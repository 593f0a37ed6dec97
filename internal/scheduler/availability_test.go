package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slotIDs(slots []Slot) []string {
	ids := make([]string, 0, len(slots))
	for _, s := range slots {
		ids = append(ids, s.ID)
	}
	return ids
}

func TestAvailableSlots(t *testing.T) {
	ctx := context.Background()

	t.Run("all free ordered by start", func(t *testing.T) {
		m := seededStore()
		slots, err := NewAvailability(m, m).AvailableSlots(ctx, "R", day)
		require.NoError(t, err)
		assert.Equal(t, []string{"S1", "S2"}, slotIDs(slots))
	})

	t.Run("booked slot is excluded only on its date", func(t *testing.T) {
		m := seededStore()
		m.reservations["r1"] = Reservation{ID: "r1", UserID: "u", RoomID: "R", SlotID: "S1", Date: day}

		slots, err := NewAvailability(m, m).AvailableSlots(ctx, "R", day)
		require.NoError(t, err)
		assert.Equal(t, []string{"S2"}, slotIDs(slots))

		other, err := NewAvailability(m, m).AvailableSlots(ctx, "R", nextDay)
		require.NoError(t, err)
		assert.Equal(t, []string{"S1", "S2"}, slotIDs(other))
	})

	t.Run("all taken is empty without error", func(t *testing.T) {
		m := seededStore()
		m.reservations["r1"] = Reservation{ID: "r1", RoomID: "R", SlotID: "S1", Date: day}
		m.reservations["r2"] = Reservation{ID: "r2", RoomID: "R", SlotID: "S2", Date: day}

		slots, err := NewAvailability(m, m).AvailableSlots(ctx, "R", day)
		require.NoError(t, err)
		assert.Empty(t, slots)
	})

	t.Run("unknown room", func(t *testing.T) {
		m := seededStore()
		_, err := NewAvailability(m, m).AvailableSlots(ctx, "missing", day)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NotErrorIs(t, err, ErrNoSlotsConfigured)
		assert.Equal(t, KindNotFound, KindOf(err))
	})

	t.Run("room without slots", func(t *testing.T) {
		m := seededStore()
		m.addRoom(Room{ID: "E", Name: "Empty", Capacity: 2})
		_, err := NewAvailability(m, m).AvailableSlots(ctx, "E", day)
		assert.ErrorIs(t, err, ErrNoSlotsConfigured)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, KindNotFound, KindOf(err))
	})

	t.Run("storage failure is not a rejection", func(t *testing.T) {
		m := seededStore()
		m.failList = errors.New("disk gone")
		_, err := NewAvailability(m, m).AvailableSlots(ctx, "R", day)
		require.Error(t, err)
		assert.Equal(t, Kind(""), KindOf(err))
	})
}

func TestRoomSchedules(t *testing.T) {
	m := seededStore()
	m.reservations["r1"] = Reservation{ID: "r1", RoomID: "R", SlotID: "S1", Date: day}

	slots, err := NewAvailability(m, m).RoomSchedules(context.Background(), "R")
	require.NoError(t, err)
	assert.Equal(t, []string{"S1", "S2"}, slotIDs(slots))
}

func TestFreeSlotsTieBreak(t *testing.T) {
	slots := []Slot{
		{ID: "b", Start: At(9, 0), End: At(10, 0)},
		{ID: "a", Start: At(9, 0), End: At(10, 0)},
		{ID: "c", Start: At(8, 0), End: At(9, 0)},
	}
	assert.Equal(t, []string{"c", "a", "b"}, slotIDs(FreeSlots(slots, nil)))
}
