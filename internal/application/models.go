package application

import (
	"time"

	"github.com/example/room-planner/internal/scheduler"
)

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID  string
	IsAdmin bool
}

// User is an account as exposed to callers. The password hash never leaves the service.
type User struct {
	ID        string
	Name      string
	Email     string
	IsAdmin   bool
	CreatedAt time.Time
}

// RegisterInput captures caller provided account fields.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginParams carries login credentials.
type LoginParams struct {
	Email    string
	Password string
}

// LoginResult is a signed bearer token and the account it was issued for.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      User
}

// Room is a catalog entry.
type Room struct {
	ID        string
	Name      string
	Capacity  int
	CreatedAt time.Time
}

// RoomInput captures caller provided room fields.
type RoomInput struct {
	Name     string
	Capacity int
}

// CreateRoomParams wraps the data required to create a room.
type CreateRoomParams struct {
	Principal Principal
	Input     RoomInput
}

// AddSlotParams wraps the data required to add a slot template to a room.
// Start and End use HH:MM.
type AddSlotParams struct {
	Principal Principal
	RoomID    string
	Start     string
	End       string
}

// CreateReservationParams wraps a booking request. Date uses YYYY-MM-DD.
type CreateReservationParams struct {
	Principal Principal
	RoomID    string
	SlotID    string
	Date      string
}

// UpdateReservationParams moves a reservation to another slot of the same room.
type UpdateReservationParams struct {
	Principal     Principal
	ReservationID string
	SlotID        string
}

// CancelReservationParams identifies the reservation to cancel.
type CancelReservationParams struct {
	Principal     Principal
	ReservationID string
}

// Reservation aliases the domain type; services return it unchanged.
type Reservation = scheduler.Reservation

// ReservationDetail aliases the enriched domain listing entry.
type ReservationDetail = scheduler.ReservationDetail

// Slot aliases the domain slot template.
type Slot = scheduler.Slot
