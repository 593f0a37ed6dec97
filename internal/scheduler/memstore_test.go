package scheduler

import (
	"context"
	"errors"
	"time"
)

type memStore struct {
	rooms        map[string]Room
	slots        map[string]Slot
	reservations map[string]Reservation
	order        []string

	failList   error
	dropUpdate bool
}

func newMemStore() *memStore {
	return &memStore{
		rooms:        map[string]Room{},
		slots:        map[string]Slot{},
		reservations: map[string]Reservation{},
	}
}

func (m *memStore) addRoom(r Room) { m.rooms[r.ID] = r }
func (m *memStore) addSlot(s Slot) { m.slots[s.ID] = s; m.order = append(m.order, s.ID) }

func (m *memStore) FindRoom(_ context.Context, id string) (Room, bool, error) {
	r, ok := m.rooms[id]
	return r, ok, nil
}

func (m *memStore) ListSlots(_ context.Context, roomID string) ([]Slot, error) {
	if m.failList != nil {
		return nil, m.failList
	}
	var out []Slot
	for _, id := range m.order {
		if s := m.slots[id]; s.RoomID == roomID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) FindSlot(_ context.Context, id string) (Slot, bool, error) {
	s, ok := m.slots[id]
	return s, ok, nil
}

func (m *memStore) FindReservation(_ context.Context, id string) (Reservation, bool, error) {
	r, ok := m.reservations[id]
	return r, ok, nil
}

func (m *memStore) ReservationExists(_ context.Context, roomID, slotID string, date Date, excludeID string) (bool, error) {
	for _, r := range m.reservations {
		if r.ID == excludeID {
			continue
		}
		if r.RoomID == roomID && r.SlotID == slotID && r.Date == date {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) ListReservationsForRoom(_ context.Context, roomID string, date Date) ([]Reservation, error) {
	var out []Reservation
	for _, r := range m.reservations {
		if r.RoomID == roomID && r.Date == date {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) ListReservationsForUser(_ context.Context, userID string) ([]ReservationDetail, error) {
	var out []ReservationDetail
	for _, r := range m.reservations {
		if r.UserID != userID {
			continue
		}
		s := m.slots[r.SlotID]
		out = append(out, ReservationDetail{Reservation: r, RoomName: m.rooms[r.RoomID].Name, SlotStart: s.Start, SlotEnd: s.End})
	}
	return out, nil
}

// CreateReservation mirrors the storage uniqueness constraint.
func (m *memStore) CreateReservation(_ context.Context, r Reservation) (Reservation, error) {
	for _, existing := range m.reservations {
		if existing.RoomID == r.RoomID && existing.SlotID == r.SlotID && existing.Date == r.Date {
			return Reservation{}, errors.Join(errors.New("unique constraint"), ErrSlotAlreadyBooked)
		}
	}
	m.reservations[r.ID] = r
	return r, nil
}

func (m *memStore) DeleteReservation(_ context.Context, id, userID string) (Reservation, bool, error) {
	r, ok := m.reservations[id]
	if !ok || r.UserID != userID {
		return Reservation{}, false, nil
	}
	delete(m.reservations, id)
	return r, true, nil
}

func (m *memStore) UpdateReservationSlot(_ context.Context, id, userID, slotID string, at time.Time) (Reservation, bool, error) {
	if m.dropUpdate {
		return Reservation{}, false, nil
	}
	r, ok := m.reservations[id]
	if !ok || r.UserID != userID {
		return Reservation{}, false, nil
	}
	r.SlotID = slotID
	r.UpdatedAt = at
	m.reservations[id] = r
	return r, true, nil
}

// racingLedger hides existing reservations from the pre-check so the
// write-time constraint is the only guard.
type racingLedger struct {
	*memStore
}

func (racingLedger) ReservationExists(context.Context, string, string, Date, string) (bool, error) {
	return false, nil
}

var (
	day     = NewDate(2024, time.June, 1)
	nextDay = NewDate(2024, time.June, 2)
)

// seededStore holds room R with S1 09:00-10:00 and S2 10:00-11:00, plus room Q with S3.
func seededStore() *memStore {
	m := newMemStore()
	m.addRoom(Room{ID: "R", Name: "Room R", Capacity: 6})
	m.addRoom(Room{ID: "Q", Name: "Room Q", Capacity: 4})
	m.addSlot(Slot{ID: "S2", RoomID: "R", Start: At(10, 0), End: At(11, 0)})
	m.addSlot(Slot{ID: "S1", RoomID: "R", Start: At(9, 0), End: At(10, 0)})
	m.addSlot(Slot{ID: "S3", RoomID: "Q", Start: At(9, 0), End: At(10, 0)})
	return m
}

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return prefix + string(rune('0'+n))
	}
}
