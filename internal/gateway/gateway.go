// Package gateway adapts persistence repositories to the scheduler's
// catalog and ledger interfaces, converting stored records into domain
// values and storage errors into domain rejections.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/room-planner/internal/persistence"
	"github.com/example/room-planner/internal/scheduler"
)

// Catalog serves rooms and slots from a RoomRepository.
type Catalog struct {
	rooms persistence.RoomRepository
}

// NewCatalog wraps rooms.
func NewCatalog(rooms persistence.RoomRepository) *Catalog {
	return &Catalog{rooms: rooms}
}

var _ scheduler.Catalog = (*Catalog)(nil)

// FindRoom implements scheduler.Catalog.
func (c *Catalog) FindRoom(ctx context.Context, roomID string) (scheduler.Room, bool, error) {
	room, err := c.rooms.GetRoom(ctx, roomID)
	if errors.Is(err, persistence.ErrNotFound) {
		return scheduler.Room{}, false, nil
	}
	if err != nil {
		return scheduler.Room{}, false, err
	}
	return RoomFromRecord(room), true, nil
}

// ListSlots implements scheduler.Catalog.
func (c *Catalog) ListSlots(ctx context.Context, roomID string) ([]scheduler.Slot, error) {
	records, err := c.rooms.ListSlots(ctx, roomID)
	if err != nil {
		return nil, err
	}
	slots := make([]scheduler.Slot, 0, len(records))
	for _, r := range records {
		slot, err := SlotFromRecord(r)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

// FindSlot implements scheduler.Catalog.
func (c *Catalog) FindSlot(ctx context.Context, slotID string) (scheduler.Slot, bool, error) {
	record, err := c.rooms.GetSlot(ctx, slotID)
	if errors.Is(err, persistence.ErrNotFound) {
		return scheduler.Slot{}, false, nil
	}
	if err != nil {
		return scheduler.Slot{}, false, err
	}
	slot, err := SlotFromRecord(record)
	if err != nil {
		return scheduler.Slot{}, false, err
	}
	return slot, true, nil
}

// Ledger serves reservations from a ReservationRepository.
type Ledger struct {
	reservations persistence.ReservationRepository
}

// NewLedger wraps reservations.
func NewLedger(reservations persistence.ReservationRepository) *Ledger {
	return &Ledger{reservations: reservations}
}

var _ scheduler.Ledger = (*Ledger)(nil)

// FindReservation implements scheduler.Ledger.
func (l *Ledger) FindReservation(ctx context.Context, reservationID string) (scheduler.Reservation, bool, error) {
	record, err := l.reservations.GetReservation(ctx, reservationID)
	if errors.Is(err, persistence.ErrNotFound) {
		return scheduler.Reservation{}, false, nil
	}
	if err != nil {
		return scheduler.Reservation{}, false, err
	}
	r, err := ReservationFromRecord(record)
	return r, err == nil, err
}

// ReservationExists implements scheduler.Ledger.
func (l *Ledger) ReservationExists(ctx context.Context, roomID, slotID string, date scheduler.Date, excludeID string) (bool, error) {
	return l.reservations.ReservationExists(ctx, roomID, slotID, date.String(), excludeID)
}

// ListReservationsForRoom implements scheduler.Ledger.
func (l *Ledger) ListReservationsForRoom(ctx context.Context, roomID string, date scheduler.Date) ([]scheduler.Reservation, error) {
	records, err := l.reservations.ListReservationsForRoom(ctx, roomID, date.String())
	if err != nil {
		return nil, err
	}
	out := make([]scheduler.Reservation, 0, len(records))
	for _, rec := range records {
		r, err := ReservationFromRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// ListReservationsForUser implements scheduler.Ledger.
func (l *Ledger) ListReservationsForUser(ctx context.Context, userID string) ([]scheduler.ReservationDetail, error) {
	records, err := l.reservations.ListReservationsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]scheduler.ReservationDetail, 0, len(records))
	for _, rec := range records {
		r, err := ReservationFromRecord(rec.Reservation)
		if err != nil {
			return nil, err
		}
		start, err := scheduler.ParseClockTime(rec.SlotStartsAt)
		if err != nil {
			return nil, err
		}
		end, err := scheduler.ParseClockTime(rec.SlotEndsAt)
		if err != nil {
			return nil, err
		}
		out = append(out, scheduler.ReservationDetail{Reservation: r, RoomName: rec.RoomName, SlotStart: start, SlotEnd: end})
	}
	return out, nil
}

// CreateReservation implements scheduler.Ledger.
func (l *Ledger) CreateReservation(ctx context.Context, r scheduler.Reservation) (scheduler.Reservation, error) {
	if err := l.reservations.CreateReservation(ctx, ReservationToRecord(r)); err != nil {
		return scheduler.Reservation{}, translateWrite(err)
	}
	return r, nil
}

// DeleteReservation implements scheduler.Ledger.
func (l *Ledger) DeleteReservation(ctx context.Context, reservationID, userID string) (scheduler.Reservation, bool, error) {
	record, err := l.reservations.DeleteReservation(ctx, reservationID, userID)
	if errors.Is(err, persistence.ErrNotFound) {
		return scheduler.Reservation{}, false, nil
	}
	if err != nil {
		return scheduler.Reservation{}, false, err
	}
	r, err := ReservationFromRecord(record)
	return r, err == nil, err
}

// UpdateReservationSlot implements scheduler.Ledger.
func (l *Ledger) UpdateReservationSlot(ctx context.Context, reservationID, userID, slotID string, updatedAt time.Time) (scheduler.Reservation, bool, error) {
	record, err := l.reservations.UpdateReservationSlot(ctx, reservationID, userID, slotID, updatedAt)
	if errors.Is(err, persistence.ErrNotFound) {
		return scheduler.Reservation{}, false, nil
	}
	if err != nil {
		return scheduler.Reservation{}, false, translateWrite(err)
	}
	r, err := ReservationFromRecord(record)
	return r, err == nil, err
}

// translateWrite maps storage constraint failures on reservation writes.
// Only a failed (slot_id, room_id) reference is an invalid slot; a missing
// user stays a storage error.
func translateWrite(err error) error {
	var refErr *persistence.ReferenceError
	switch {
	case errors.Is(err, persistence.ErrDuplicate):
		return fmt.Errorf("%w: %w", scheduler.ErrSlotAlreadyBooked, err)
	case errors.As(err, &refErr) && refErr.Reference == persistence.ReferenceSlot:
		return fmt.Errorf("%w: %w", scheduler.ErrInvalidSlot, err)
	}
	return err
}

// RoomFromRecord converts a stored room.
func RoomFromRecord(r persistence.Room) scheduler.Room {
	return scheduler.Room{ID: r.ID, Name: r.Name, Capacity: r.Capacity}
}

// SlotFromRecord converts a stored slot.
func SlotFromRecord(r persistence.Slot) (scheduler.Slot, error) {
	start, err := scheduler.ParseClockTime(r.StartsAt)
	if err != nil {
		return scheduler.Slot{}, fmt.Errorf("slot %s: %w", r.ID, err)
	}
	end, err := scheduler.ParseClockTime(r.EndsAt)
	if err != nil {
		return scheduler.Slot{}, fmt.Errorf("slot %s: %w", r.ID, err)
	}
	return scheduler.Slot{ID: r.ID, RoomID: r.RoomID, Start: start, End: end}, nil
}

// ReservationFromRecord converts a stored reservation.
func ReservationFromRecord(r persistence.Reservation) (scheduler.Reservation, error) {
	date, err := scheduler.ParseDate(r.ReservedOn)
	if err != nil {
		return scheduler.Reservation{}, fmt.Errorf("reservation %s: %w", r.ID, err)
	}
	return scheduler.Reservation{
		ID:        r.ID,
		UserID:    r.UserID,
		RoomID:    r.RoomID,
		SlotID:    r.SlotID,
		Date:      date,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

// ReservationToRecord converts a domain reservation for storage.
func ReservationToRecord(r scheduler.Reservation) persistence.Reservation {
	return persistence.Reservation{
		ID:         r.ID,
		UserID:     r.UserID,
		RoomID:     r.RoomID,
		SlotID:     r.SlotID,
		ReservedOn: r.Date.String(),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}
