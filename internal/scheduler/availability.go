package scheduler

import (
	"context"
	"fmt"
	"sort"
)

// Availability derives free slots from a room's templates and the day's reservations.
type Availability struct {
	catalog Catalog
	ledger  Ledger
}

// NewAvailability returns a calculator reading from catalog and ledger.
func NewAvailability(catalog Catalog, ledger Ledger) *Availability {
	return &Availability{catalog: catalog, ledger: ledger}
}

// RoomSchedules returns every slot of the room ordered by start time.
// A room without slots yields ErrNoSlotsConfigured.
func (a *Availability) RoomSchedules(ctx context.Context, roomID string) ([]Slot, error) {
	if _, err := a.requireRoom(ctx, roomID); err != nil {
		return nil, err
	}
	slots, err := a.catalog.ListSlots(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("list slots for room %s: %w", roomID, err)
	}
	if len(slots) == 0 {
		return nil, &Rejection{Kind: KindNotFound, Reason: "room has no configured slots", err: ErrNoSlotsConfigured}
	}
	SortSlots(slots)
	return slots, nil
}

// AvailableSlots returns the room's slots that carry no reservation on date,
// ordered by start time. An empty result with a nil error means every slot
// is taken.
func (a *Availability) AvailableSlots(ctx context.Context, roomID string, date Date) ([]Slot, error) {
	slots, err := a.RoomSchedules(ctx, roomID)
	if err != nil {
		return nil, err
	}
	reserved, err := a.ledger.ListReservationsForRoom(ctx, roomID, date)
	if err != nil {
		return nil, fmt.Errorf("list reservations for room %s on %s: %w", roomID, date, err)
	}
	return FreeSlots(slots, reserved), nil
}

func (a *Availability) requireRoom(ctx context.Context, roomID string) (Room, error) {
	room, ok, err := a.catalog.FindRoom(ctx, roomID)
	if err != nil {
		return Room{}, fmt.Errorf("find room %s: %w", roomID, err)
	}
	if !ok {
		return Room{}, reject(ErrNotFound, "room not found")
	}
	return room, nil
}

// FreeSlots filters out slots referenced by reserved and sorts the rest by start time.
func FreeSlots(slots []Slot, reserved []Reservation) []Slot {
	taken := make(map[string]struct{}, len(reserved))
	for _, r := range reserved {
		taken[r.SlotID] = struct{}{}
	}
	free := make([]Slot, 0, len(slots))
	for _, s := range slots {
		if _, ok := taken[s.ID]; ok {
			continue
		}
		free = append(free, s)
	}
	SortSlots(free)
	return free
}

// SortSlots orders slots by start time, then end time, then id.
func SortSlots(slots []Slot) {
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].Start != slots[j].Start {
			return slots[i].Start < slots[j].Start
		}
		if slots[i].End != slots[j].End {
			return slots[i].End < slots[j].End
		}
		return slots[i].ID < slots[j].ID
	})
}
