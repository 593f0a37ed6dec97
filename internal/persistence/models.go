package persistence

import "time"

// User represents a registered account.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Room represents a bookable meeting room.
type Room struct {
	ID        string
	Name      string
	Capacity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Slot represents a room's recurring time window. StartsAt and EndsAt are
// stored as HH:MM so lexical order matches chronological order.
type Slot struct {
	ID        string
	RoomID    string
	StartsAt  string
	EndsAt    string
	CreatedAt time.Time
}

// Reservation binds a user to a (room, slot, date) triple. ReservedOn is YYYY-MM-DD.
type Reservation struct {
	ID         string
	UserID     string
	RoomID     string
	SlotID     string
	ReservedOn string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ReservationDetail joins a reservation with its room name and slot window.
type ReservationDetail struct {
	Reservation
	RoomName     string
	SlotStartsAt string
	SlotEndsAt   string
}
