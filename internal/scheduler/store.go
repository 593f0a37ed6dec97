package scheduler

import (
	"context"
	"time"
)

// Catalog looks up rooms and their slot templates.
type Catalog interface {
	FindRoom(ctx context.Context, roomID string) (Room, bool, error)
	ListSlots(ctx context.Context, roomID string) ([]Slot, error)
	FindSlot(ctx context.Context, slotID string) (Slot, bool, error)
}

// Ledger reads and writes reservations against live storage.
//
// CreateReservation and UpdateReservationSlot must enforce uniqueness of
// (room, slot, date) at write time and report a violation with an error
// wrapping ErrSlotAlreadyBooked.
type Ledger interface {
	FindReservation(ctx context.Context, reservationID string) (Reservation, bool, error)
	// ReservationExists ignores the reservation with excludeID when excludeID is non-empty.
	ReservationExists(ctx context.Context, roomID, slotID string, date Date, excludeID string) (bool, error)
	ListReservationsForRoom(ctx context.Context, roomID string, date Date) ([]Reservation, error)
	ListReservationsForUser(ctx context.Context, userID string) ([]ReservationDetail, error)
	CreateReservation(ctx context.Context, reservation Reservation) (Reservation, error)
	// DeleteReservation reports false when no reservation matches both ids.
	DeleteReservation(ctx context.Context, reservationID, userID string) (Reservation, bool, error)
	// UpdateReservationSlot reports false when no reservation matches both ids.
	UpdateReservationSlot(ctx context.Context, reservationID, userID, slotID string, updatedAt time.Time) (Reservation, bool, error)
}
