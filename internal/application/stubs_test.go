package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/example/room-planner/internal/events"
	"github.com/example/room-planner/internal/persistence"
	"github.com/example/room-planner/internal/scheduler"
)

type userRepoStub struct {
	users     map[string]persistence.User
	createErr error
	getErr    error
}

func newUserRepoStub(users ...persistence.User) *userRepoStub {
	r := &userRepoStub{users: make(map[string]persistence.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *userRepoStub) CreateUser(_ context.Context, user persistence.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.users {
		if existing.Email == strings.ToLower(user.Email) {
			return persistence.ErrDuplicate
		}
	}
	r.users[user.ID] = user
	return nil
}

func (r *userRepoStub) GetUser(_ context.Context, id string) (persistence.User, error) {
	if r.getErr != nil {
		return persistence.User{}, r.getErr
	}
	u, ok := r.users[id]
	if !ok {
		return persistence.User{}, persistence.ErrNotFound
	}
	return u, nil
}

func (r *userRepoStub) GetUserByEmail(_ context.Context, email string) (persistence.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return persistence.User{}, persistence.ErrNotFound
}

type roomRepoStub struct {
	rooms     map[string]persistence.Room
	slots     []persistence.Slot
	filter    persistence.RoomFilter
	createErr error
}

func newRoomRepoStub(rooms ...persistence.Room) *roomRepoStub {
	r := &roomRepoStub{rooms: make(map[string]persistence.Room)}
	for _, room := range rooms {
		r.rooms[room.ID] = room
	}
	return r
}

func (r *roomRepoStub) CreateRoom(_ context.Context, room persistence.Room) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.rooms[room.ID] = room
	return nil
}

func (r *roomRepoStub) GetRoom(_ context.Context, id string) (persistence.Room, error) {
	room, ok := r.rooms[id]
	if !ok {
		return persistence.Room{}, persistence.ErrNotFound
	}
	return room, nil
}

func (r *roomRepoStub) ListRooms(_ context.Context, filter persistence.RoomFilter) ([]persistence.Room, error) {
	r.filter = filter
	var out []persistence.Room
	for _, room := range r.rooms {
		if room.Capacity >= filter.MinCapacity {
			out = append(out, room)
		}
	}
	return out, nil
}

func (r *roomRepoStub) CreateSlot(_ context.Context, slot persistence.Slot) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.slots = append(r.slots, slot)
	return nil
}

func (r *roomRepoStub) GetSlot(_ context.Context, id string) (persistence.Slot, error) {
	for _, s := range r.slots {
		if s.ID == id {
			return s, nil
		}
	}
	return persistence.Slot{}, persistence.ErrNotFound
}

func (r *roomRepoStub) ListSlots(_ context.Context, roomID string) ([]persistence.Slot, error) {
	var out []persistence.Slot
	for _, s := range r.slots {
		if s.RoomID == roomID {
			out = append(out, s)
		}
	}
	return out, nil
}

type slotReaderStub struct {
	slots    []scheduler.Slot
	err      error
	lastDate scheduler.Date
}

func (s *slotReaderStub) RoomSchedules(context.Context, string) ([]scheduler.Slot, error) {
	return s.slots, s.err
}

func (s *slotReaderStub) AvailableSlots(_ context.Context, _ string, date scheduler.Date) ([]scheduler.Slot, error) {
	s.lastDate = date
	return s.slots, s.err
}

type invalidatorStub struct {
	rooms []string
}

func (i *invalidatorStub) InvalidateRoom(_ context.Context, roomID string) {
	i.rooms = append(i.rooms, roomID)
}

type plannerStub struct {
	created   scheduler.Reservation
	createErr error
	updated   scheduler.Reservation
	updateErr error
	cancelled scheduler.Reservation
	cancelErr error
	listed    []scheduler.ReservationDetail

	calls []string
}

func (p *plannerStub) Create(_ context.Context, userID, roomID, slotID string, date scheduler.Date) (scheduler.Reservation, error) {
	p.calls = append(p.calls, "create")
	if p.createErr != nil {
		return scheduler.Reservation{}, p.createErr
	}
	r := p.created
	r.UserID, r.RoomID, r.SlotID, r.Date = userID, roomID, slotID, date
	return r, nil
}

func (p *plannerStub) Update(_ context.Context, userID, reservationID, newSlotID string) (scheduler.Reservation, error) {
	p.calls = append(p.calls, "update")
	if p.updateErr != nil {
		return scheduler.Reservation{}, p.updateErr
	}
	r := p.updated
	r.ID, r.UserID, r.SlotID = reservationID, userID, newSlotID
	return r, nil
}

func (p *plannerStub) Cancel(_ context.Context, userID, reservationID string) (scheduler.Reservation, error) {
	p.calls = append(p.calls, "cancel")
	if p.cancelErr != nil {
		return scheduler.Reservation{}, p.cancelErr
	}
	r := p.cancelled
	r.ID, r.UserID = reservationID, userID
	return r, nil
}

func (p *plannerStub) ListForUser(context.Context, string) ([]scheduler.ReservationDetail, error) {
	p.calls = append(p.calls, "list")
	return p.listed, nil
}

type publisherStub struct {
	events []events.Event
	err    error
}

func (p *publisherStub) Publish(_ context.Context, event events.Event) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

var errStub = errors.New("stub failure")

func fixedNow() time.Time {
	return time.Date(2024, time.May, 27, 8, 30, 0, 0, time.UTC)
}

func fakeHash(password string) (string, error) {
	return "hashed:" + password, nil
}

func fakeVerify(hash, password string) error {
	if hash != "hashed:"+password {
		return ErrInvalidCredentials
	}
	return nil
}
