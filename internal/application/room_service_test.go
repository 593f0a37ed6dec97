package application

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/example/room-planner/internal/persistence"
	"github.com/example/room-planner/internal/scheduler"
)

var admin = Principal{UserID: "admin-1", IsAdmin: true}

func sequence(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func TestRoomService_ListRooms(t *testing.T) {
	repo := newRoomRepoStub(
		persistence.Room{ID: "R", Name: "Board", Capacity: 12},
		persistence.Room{ID: "Q", Name: "Booth", Capacity: 2},
	)
	svc := NewRoomService(repo, &slotReaderStub{}, nil, fixedNow)

	t.Run("filters by capacity", func(t *testing.T) {
		rooms, err := svc.ListRooms(context.Background(), 10)
		if err != nil {
			t.Fatalf("ListRooms returned error: %v", err)
		}
		if len(rooms) != 1 || rooms[0].ID != "R" {
			t.Fatalf("unexpected rooms %+v", rooms)
		}
		if repo.filter.MinCapacity != 10 {
			t.Fatalf("expected filter to reach repository, got %+v", repo.filter)
		}
	})

	t.Run("rejects negative capacity", func(t *testing.T) {
		_, err := svc.ListRooms(context.Background(), -1)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})
}

func TestRoomService_GetRoom(t *testing.T) {
	svc := NewRoomService(newRoomRepoStub(persistence.Room{ID: "R", Name: "Board", Capacity: 12}), &slotReaderStub{}, nil, fixedNow)

	room, err := svc.GetRoom(context.Background(), "R")
	if err != nil || room.Name != "Board" {
		t.Fatalf("GetRoom = %+v, %v", room, err)
	}
	if _, err := svc.GetRoom(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRoomService_AvailableSlots(t *testing.T) {
	reader := &slotReaderStub{slots: []scheduler.Slot{{ID: "S1", RoomID: "R", Start: scheduler.At(9, 0), End: scheduler.At(10, 0)}}}
	svc := NewRoomService(newRoomRepoStub(), reader, nil, fixedNow)

	slots, err := svc.AvailableSlots(context.Background(), "R", "2024-06-01")
	if err != nil {
		t.Fatalf("AvailableSlots returned error: %v", err)
	}
	if len(slots) != 1 || reader.lastDate.String() != "2024-06-01" {
		t.Fatalf("unexpected result %+v for %s", slots, reader.lastDate)
	}

	for _, bad := range []string{"", "06/01/2024", "2024-13-01"} {
		_, err := svc.AvailableSlots(context.Background(), "R", bad)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("AvailableSlots(%q) = %v, want ValidationError", bad, err)
		}
	}

	reader.err = scheduler.ErrNoSlotsConfigured
	if _, err := svc.AvailableSlots(context.Background(), "R", "2024-06-01"); !errors.Is(err, scheduler.ErrNoSlotsConfigured) {
		t.Fatalf("expected ErrNoSlotsConfigured, got %v", err)
	}
}

func TestRoomService_RoomSchedules(t *testing.T) {
	reader := &slotReaderStub{err: fmt.Errorf("room R: %w", scheduler.ErrNotFound)}
	svc := NewRoomService(newRoomRepoStub(), reader, nil, fixedNow)

	if _, err := svc.RoomSchedules(context.Background(), "R"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRoomService_CreateRoom(t *testing.T) {
	t.Run("requires administrator privileges", func(t *testing.T) {
		svc := NewRoomService(newRoomRepoStub(), &slotReaderStub{}, nil, fixedNow)
		_, err := svc.CreateRoom(context.Background(), CreateRoomParams{
			Principal: Principal{UserID: "user-1"},
			Input:     RoomInput{Name: "Board", Capacity: 4},
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("validates input", func(t *testing.T) {
		svc := NewRoomService(newRoomRepoStub(), &slotReaderStub{}, nil, fixedNow)
		_, err := svc.CreateRoom(context.Background(), CreateRoomParams{Principal: admin, Input: RoomInput{Name: " ", Capacity: 0}})
		var vErr *ValidationError
		if !errors.As(err, &vErr) || len(vErr.FieldErrors) != 2 {
			t.Fatalf("expected two field errors, got %v", err)
		}
	})

	t.Run("persists room", func(t *testing.T) {
		repo := newRoomRepoStub()
		svc := NewRoomService(repo, &slotReaderStub{}, sequence("room"), fixedNow)
		room, err := svc.CreateRoom(context.Background(), CreateRoomParams{Principal: admin, Input: RoomInput{Name: " Board ", Capacity: 8}})
		if err != nil {
			t.Fatalf("CreateRoom returned error: %v", err)
		}
		if room.ID != "room-1" || room.Name != "Board" || !room.CreatedAt.Equal(fixedNow()) {
			t.Fatalf("unexpected room %+v", room)
		}
		if _, ok := repo.rooms["room-1"]; !ok {
			t.Fatalf("expected room to be stored")
		}
	})
}

func TestRoomService_AddSlot(t *testing.T) {
	newService := func() (*RoomService, *roomRepoStub, *invalidatorStub) {
		repo := newRoomRepoStub(persistence.Room{ID: "R", Name: "Board", Capacity: 8})
		inv := &invalidatorStub{}
		return NewRoomService(repo, &slotReaderStub{}, sequence("slot"), fixedNow, WithCatalogInvalidator(inv)), repo, inv
	}

	t.Run("adds slot and invalidates cache", func(t *testing.T) {
		svc, repo, inv := newService()
		slot, err := svc.AddSlot(context.Background(), AddSlotParams{Principal: admin, RoomID: "R", Start: "09:00", End: "10:30"})
		if err != nil {
			t.Fatalf("AddSlot returned error: %v", err)
		}
		if slot.ID != "slot-1" || slot.Start != scheduler.At(9, 0) || slot.End != scheduler.At(10, 30) {
			t.Fatalf("unexpected slot %+v", slot)
		}
		if len(repo.slots) != 1 || repo.slots[0].StartsAt != "09:00" || repo.slots[0].EndsAt != "10:30" {
			t.Fatalf("unexpected stored slots %+v", repo.slots)
		}
		if len(inv.rooms) != 1 || inv.rooms[0] != "R" {
			t.Fatalf("expected room R to be invalidated, got %v", inv.rooms)
		}
	})

	t.Run("rejects inverted window", func(t *testing.T) {
		svc, _, inv := newService()
		_, err := svc.AddSlot(context.Background(), AddSlotParams{Principal: admin, RoomID: "R", Start: "10:00", End: "10:00"})
		var vErr *ValidationError
		if !errors.As(err, &vErr) || vErr.FieldErrors["end_time"] == "" {
			t.Fatalf("expected end_time error, got %v", err)
		}
		if len(inv.rooms) != 0 {
			t.Fatalf("expected no invalidation on failure")
		}
	})

	t.Run("rejects malformed times", func(t *testing.T) {
		svc, _, _ := newService()
		_, err := svc.AddSlot(context.Background(), AddSlotParams{Principal: admin, RoomID: "R", Start: "9am", End: "25:00"})
		var vErr *ValidationError
		if !errors.As(err, &vErr) || vErr.FieldErrors["start_time"] == "" || vErr.FieldErrors["end_time"] == "" {
			t.Fatalf("expected start_time and end_time errors, got %v", err)
		}
	})

	t.Run("unknown room", func(t *testing.T) {
		svc, _, _ := newService()
		_, err := svc.AddSlot(context.Background(), AddSlotParams{Principal: admin, RoomID: "missing", Start: "09:00", End: "10:00"})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("requires administrator privileges", func(t *testing.T) {
		svc, _, _ := newService()
		_, err := svc.AddSlot(context.Background(), AddSlotParams{Principal: Principal{UserID: "u"}, RoomID: "R", Start: "09:00", End: "10:00"})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}
