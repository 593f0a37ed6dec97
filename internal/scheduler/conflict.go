package scheduler

import (
	"context"
	"fmt"
)

// BookingCandidate is a (room, slot, date) triple awaiting admission.
// ExcludeReservationID names the reservation being retargeted, if any.
type BookingCandidate struct {
	RoomID               string
	SlotID               string
	Date                 Date
	ExcludeReservationID string
}

// Validator decides whether a booking candidate may be written.
type Validator struct {
	catalog Catalog
	ledger  Ledger
}

// NewValidator returns a validator reading from catalog and ledger.
func NewValidator(catalog Catalog, ledger Ledger) *Validator {
	return &Validator{catalog: catalog, ledger: ledger}
}

// ValidateBooking checks, in order, that the room exists, that the slot
// exists and belongs to the room, and that no other reservation holds the
// triple. It returns the resolved slot on success.
func (v *Validator) ValidateBooking(ctx context.Context, c BookingCandidate) (Slot, error) {
	_, ok, err := v.catalog.FindRoom(ctx, c.RoomID)
	if err != nil {
		return Slot{}, fmt.Errorf("find room %s: %w", c.RoomID, err)
	}
	if !ok {
		return Slot{}, reject(ErrNotFound, "room not found")
	}

	slot, err := v.resolveSlot(ctx, c.RoomID, c.SlotID)
	if err != nil {
		return Slot{}, err
	}

	taken, err := v.ledger.ReservationExists(ctx, c.RoomID, c.SlotID, c.Date, c.ExcludeReservationID)
	if err != nil {
		return Slot{}, fmt.Errorf("check reservation for room %s slot %s on %s: %w", c.RoomID, c.SlotID, c.Date, err)
	}
	if taken {
		return Slot{}, reject(ErrSlotAlreadyBooked, "slot is already booked for this room and date")
	}
	return slot, nil
}

// resolveSlot loads slotID and confirms it belongs to roomID.
func (v *Validator) resolveSlot(ctx context.Context, roomID, slotID string) (Slot, error) {
	if slotID == "" {
		return Slot{}, reject(ErrInvalidSlot, "slot is not valid for this room")
	}
	slot, ok, err := v.catalog.FindSlot(ctx, slotID)
	if err != nil {
		return Slot{}, fmt.Errorf("find slot %s: %w", slotID, err)
	}
	if !ok || slot.RoomID != roomID {
		return Slot{}, reject(ErrInvalidSlot, "slot is not valid for this room")
	}
	return slot, nil
}
