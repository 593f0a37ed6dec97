// Package scheduler holds the reservation rules: which slots are free on a
// date, whether a booking may be admitted, and how reservations move through
// create, update and cancel.
package scheduler

import "time"

// Room is a bookable space.
type Room struct {
	ID       string
	Name     string
	Capacity int
}

// Slot is a recurring time window owned by exactly one room.
type Slot struct {
	ID     string
	RoomID string
	Start  ClockTime
	End    ClockTime
}

// Reservation binds one user to a (room, slot, date) triple.
type Reservation struct {
	ID        string
	UserID    string
	RoomID    string
	SlotID    string
	Date      Date
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReservationDetail is a reservation enriched with display fields of its room and slot.
type ReservationDetail struct {
	Reservation
	RoomName  string
	SlotStart ClockTime
	SlotEnd   ClockTime
}
