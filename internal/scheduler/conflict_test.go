package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateBooking(t *testing.T) {
	ctx := context.Background()

	m := seededStore()
	m.reservations["r1"] = Reservation{ID: "r1", UserID: "u", RoomID: "R", SlotID: "S1", Date: day}
	v := NewValidator(m, m)

	tests := []struct {
		name      string
		candidate BookingCandidate
		wantKind  Kind
	}{
		{name: "free slot", candidate: BookingCandidate{RoomID: "R", SlotID: "S2", Date: day}},
		{name: "booked slot on another day", candidate: BookingCandidate{RoomID: "R", SlotID: "S1", Date: nextDay}},
		{name: "own slot when excluded", candidate: BookingCandidate{RoomID: "R", SlotID: "S1", Date: day, ExcludeReservationID: "r1"}},
		{name: "booked slot", candidate: BookingCandidate{RoomID: "R", SlotID: "S1", Date: day}, wantKind: KindSlotAlreadyBooked},
		{name: "exclusion compares reservation ids", candidate: BookingCandidate{RoomID: "R", SlotID: "S1", Date: day, ExcludeReservationID: "S1"}, wantKind: KindSlotAlreadyBooked},
		{name: "missing room wins over bad slot", candidate: BookingCandidate{RoomID: "X", SlotID: "nope", Date: day}, wantKind: KindNotFound},
		{name: "unknown slot", candidate: BookingCandidate{RoomID: "R", SlotID: "nope", Date: day}, wantKind: KindInvalidSlot},
		{name: "empty slot", candidate: BookingCandidate{RoomID: "R", Date: day}, wantKind: KindInvalidSlot},
		{name: "slot of another room", candidate: BookingCandidate{RoomID: "R", SlotID: "S3", Date: day}, wantKind: KindInvalidSlot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot, err := v.ValidateBooking(ctx, tt.candidate)
			if tt.wantKind == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.candidate.SlotID, slot.ID)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, KindOf(err))

			var rej *Rejection
			require.ErrorAs(t, err, &rej)
			assert.NotEmpty(t, rej.Reason)
		})
	}
}
