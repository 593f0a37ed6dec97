package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/room-planner/internal/persistence"
)

var (
	userCounter        atomic.Uint64
	roomCounter        atomic.Uint64
	slotCounter        atomic.Uint64
	reservationCounter atomic.Uint64
)

// BookingDay is the calendar day most reservation fixtures use.
const BookingDay = "2024-06-01"

// UserOption customizes NewUser.
type UserOption func(*persistence.User)

// NewUser returns a unique non-admin user record.
func NewUser(opts ...UserOption) persistence.User {
	n := userCounter.Add(1)
	created := referenceTime.Add(time.Duration(n) * time.Minute)
	user := persistence.User{
		ID:           fmt.Sprintf("user-%03d", n),
		Name:         fmt.Sprintf("User %03d", n),
		Email:        fmt.Sprintf("user-%03d@example.com", n),
		PasswordHash: fmt.Sprintf("hash-%03d", n),
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&user)
	}
	return user
}

// WithUserID sets the user id.
func WithUserID(id string) UserOption {
	return func(u *persistence.User) { u.ID = id }
}

// WithUserEmail sets the email.
func WithUserEmail(email string) UserOption {
	return func(u *persistence.User) { u.Email = email }
}

// WithUserPasswordHash sets the stored hash.
func WithUserPasswordHash(hash string) UserOption {
	return func(u *persistence.User) { u.PasswordHash = hash }
}

// WithUserAdmin sets the admin flag.
func WithUserAdmin(isAdmin bool) UserOption {
	return func(u *persistence.User) { u.IsAdmin = isAdmin }
}

// RoomOption customizes NewRoom.
type RoomOption func(*persistence.Room)

// NewRoom returns a unique room with six seats.
func NewRoom(opts ...RoomOption) persistence.Room {
	n := roomCounter.Add(1)
	room := persistence.Room{
		ID:        fmt.Sprintf("room-%03d", n),
		Name:      fmt.Sprintf("Room %03d", n),
		Capacity:  6,
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&room)
	}
	return room
}

// WithRoomID sets the room id.
func WithRoomID(id string) RoomOption {
	return func(r *persistence.Room) { r.ID = id }
}

// WithRoomName sets the room name.
func WithRoomName(name string) RoomOption {
	return func(r *persistence.Room) { r.Name = name }
}

// WithRoomCapacity sets the seat count.
func WithRoomCapacity(capacity int) RoomOption {
	return func(r *persistence.Room) { r.Capacity = capacity }
}

// NewSlot returns a unique slot of roomID between start and end (HH:MM).
func NewSlot(roomID, start, end string) persistence.Slot {
	n := slotCounter.Add(1)
	return persistence.Slot{
		ID:        fmt.Sprintf("slot-%03d", n),
		RoomID:    roomID,
		StartsAt:  start,
		EndsAt:    end,
		CreatedAt: referenceTime,
	}
}

// NewReservation returns a unique reservation of slot for userID on BookingDay.
func NewReservation(userID string, slot persistence.Slot) persistence.Reservation {
	n := reservationCounter.Add(1)
	return persistence.Reservation{
		ID:         fmt.Sprintf("reservation-%03d", n),
		UserID:     userID,
		RoomID:     slot.RoomID,
		SlotID:     slot.ID,
		ReservedOn: BookingDay,
		CreatedAt:  referenceTime,
		UpdatedAt:  referenceTime,
	}
}
