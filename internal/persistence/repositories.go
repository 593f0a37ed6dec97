package persistence

import (
	"context"
	"time"
)

// UserRepository stores accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
}

// RoomFilter narrows room listings. Zero MinCapacity disables the filter.
type RoomFilter struct {
	MinCapacity int
}

// RoomRepository stores rooms and their slot templates.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context, filter RoomFilter) ([]Room, error)
	CreateSlot(ctx context.Context, slot Slot) error
	GetSlot(ctx context.Context, id string) (Slot, error)
	ListSlots(ctx context.Context, roomID string) ([]Slot, error)
}

// ReservationRepository stores reservations. Implementations must reject a
// second reservation for the same (room, slot, date) with ErrDuplicate.
type ReservationRepository interface {
	CreateReservation(ctx context.Context, reservation Reservation) error
	GetReservation(ctx context.Context, id string) (Reservation, error)
	ReservationExists(ctx context.Context, roomID, slotID, reservedOn, excludeID string) (bool, error)
	ListReservationsForRoom(ctx context.Context, roomID, reservedOn string) ([]Reservation, error)
	ListReservationsForUser(ctx context.Context, userID string) ([]ReservationDetail, error)
	// DeleteReservation returns ErrNotFound when no row matches both id and owner.
	DeleteReservation(ctx context.Context, id, userID string) (Reservation, error)
	// UpdateReservationSlot returns ErrNotFound when no row matches both id and owner.
	UpdateReservationSlot(ctx context.Context, id, userID, slotID string, updatedAt time.Time) (Reservation, error)
}
