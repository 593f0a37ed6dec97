package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/room-planner/internal/persistence"
	"github.com/example/room-planner/internal/scheduler"
)

// SlotReader answers slot listing queries for a room.
type SlotReader interface {
	RoomSchedules(ctx context.Context, roomID string) ([]scheduler.Slot, error)
	AvailableSlots(ctx context.Context, roomID string, date scheduler.Date) ([]scheduler.Slot, error)
}

// CatalogInvalidator drops cached catalog entries for a room.
type CatalogInvalidator interface {
	InvalidateRoom(ctx context.Context, roomID string)
}

// RoomService serves the room catalog and its administration.
type RoomService struct {
	rooms       persistence.RoomRepository
	slots       SlotReader
	invalidator CatalogInvalidator
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// RoomOption customizes a RoomService.
type RoomOption func(*RoomService)

// WithCatalogInvalidator registers a cache to notify after slot changes.
func WithCatalogInvalidator(inv CatalogInvalidator) RoomOption {
	return func(s *RoomService) { s.invalidator = inv }
}

// WithRoomLogger sets the base logger.
func WithRoomLogger(logger *slog.Logger) RoomOption {
	return func(s *RoomService) { s.logger = defaultLogger(logger) }
}

// NewRoomService constructs a room service with the provided dependencies.
func NewRoomService(rooms persistence.RoomRepository, slots SlotReader, idGenerator func() string, now func() time.Time, opts ...RoomOption) *RoomService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	s := &RoomService{rooms: rooms, slots: slots, idGenerator: idGenerator, now: now, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RoomService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RoomService", operation, attrs...)
}

// ListRooms returns rooms with at least minCapacity seats, ordered by name.
// Zero disables the filter.
func (s *RoomService) ListRooms(ctx context.Context, minCapacity int) (rooms []Room, err error) {
	logger := s.loggerWith(ctx, "ListRooms", "min_capacity", minCapacity)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to list rooms", err)
			return
		}
		logger.With("result_count", len(rooms)).DebugContext(ctx, "rooms listed")
	}()

	if minCapacity < 0 {
		vErr := &ValidationError{}
		vErr.add("min_capacity", "min_capacity must not be negative")
		err = vErr
		return
	}

	var records []persistence.Room
	records, err = s.rooms.ListRooms(ctx, persistence.RoomFilter{MinCapacity: minCapacity})
	if err != nil {
		return
	}
	rooms = make([]Room, 0, len(records))
	for _, r := range records {
		rooms = append(rooms, roomFromRecord(r))
	}
	return
}

// GetRoom returns one room.
func (s *RoomService) GetRoom(ctx context.Context, roomID string) (room Room, err error) {
	logger := s.loggerWith(ctx, "GetRoom", "room_id", roomID)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to load room", err)
		}
	}()

	var record persistence.Room
	record, err = s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			err = fmt.Errorf("room %s: %w", roomID, ErrNotFound)
		}
		return
	}
	room = roomFromRecord(record)
	return
}

// RoomSchedules returns the room's slot templates ordered by start.
func (s *RoomService) RoomSchedules(ctx context.Context, roomID string) (slots []Slot, err error) {
	logger := s.loggerWith(ctx, "RoomSchedules", "room_id", roomID)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to list room schedules", err)
		}
	}()

	slots, err = s.slots.RoomSchedules(ctx, roomID)
	return
}

// AvailableSlots returns the room's free slots on date (YYYY-MM-DD).
func (s *RoomService) AvailableSlots(ctx context.Context, roomID, date string) (slots []Slot, err error) {
	logger := s.loggerWith(ctx, "AvailableSlots", "room_id", roomID, "date", date)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to compute availability", err)
			return
		}
		logger.With("result_count", len(slots)).DebugContext(ctx, "availability computed")
	}()

	var day scheduler.Date
	day, err = parseDateField("date", date)
	if err != nil {
		return
	}
	slots, err = s.slots.AvailableSlots(ctx, roomID, day)
	return
}

// CreateRoom adds a room. Administrators only.
func (s *RoomService) CreateRoom(ctx context.Context, params CreateRoomParams) (room Room, err error) {
	logger := s.loggerWith(ctx, "CreateRoom", "principal_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to create room", err)
			return
		}
		logger.With("room_id", room.ID).InfoContext(ctx, "room created")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	vErr := &ValidationError{}
	name := strings.TrimSpace(params.Input.Name)
	if name == "" {
		vErr.add("name", "name is required")
	}
	if params.Input.Capacity <= 0 {
		vErr.add("capacity", "capacity must be positive")
	}
	if err = vErr.errOrNil(); err != nil {
		return
	}

	now := s.now().UTC()
	record := persistence.Room{ID: s.idGenerator(), Name: name, Capacity: params.Input.Capacity, CreatedAt: now, UpdatedAt: now}
	if err = s.rooms.CreateRoom(ctx, record); err != nil {
		err = mapCatalogWriteError(err)
		return
	}
	room = roomFromRecord(record)
	return
}

// AddSlot adds a slot template to an existing room. Administrators only.
func (s *RoomService) AddSlot(ctx context.Context, params AddSlotParams) (slot Slot, err error) {
	logger := s.loggerWith(ctx, "AddSlot",
		"principal_id", params.Principal.UserID,
		"room_id", params.RoomID,
	)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to add slot", err)
			return
		}
		logger.With("slot_id", slot.ID).InfoContext(ctx, "slot added")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	vErr := &ValidationError{}
	start, startErr := scheduler.ParseClockTime(strings.TrimSpace(params.Start))
	if startErr != nil {
		vErr.add("start_time", "start_time must use HH:MM")
	}
	end, endErr := scheduler.ParseClockTime(strings.TrimSpace(params.End))
	if endErr != nil {
		vErr.add("end_time", "end_time must use HH:MM")
	}
	if startErr == nil && endErr == nil && start >= end {
		vErr.add("end_time", "end_time must be after start_time")
	}
	if err = vErr.errOrNil(); err != nil {
		return
	}

	if _, err = s.rooms.GetRoom(ctx, params.RoomID); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			err = fmt.Errorf("room %s: %w", params.RoomID, ErrNotFound)
		}
		return
	}

	record := persistence.Slot{
		ID:        s.idGenerator(),
		RoomID:    params.RoomID,
		StartsAt:  start.String(),
		EndsAt:    end.String(),
		CreatedAt: s.now().UTC(),
	}
	if err = s.rooms.CreateSlot(ctx, record); err != nil {
		err = mapCatalogWriteError(err)
		return
	}
	if s.invalidator != nil {
		s.invalidator.InvalidateRoom(ctx, params.RoomID)
	}

	slot = Slot{ID: record.ID, RoomID: record.RoomID, Start: start, End: end}
	return
}

func mapCatalogWriteError(err error) error {
	switch {
	case errors.Is(err, persistence.ErrForeignKeyViolation):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, persistence.ErrConstraintViolation), errors.Is(err, persistence.ErrDuplicate):
		vErr := &ValidationError{}
		vErr.add("input", "violates a catalog constraint")
		return vErr
	}
	return err
}

func parseDateField(field, value string) (scheduler.Date, error) {
	day, err := scheduler.ParseDate(strings.TrimSpace(value))
	if err != nil {
		vErr := &ValidationError{}
		if strings.TrimSpace(value) == "" {
			vErr.add(field, field+" is required")
		} else {
			vErr.add(field, field+" must use YYYY-MM-DD")
		}
		return scheduler.Date{}, vErr
	}
	return day, nil
}

func roomFromRecord(r persistence.Room) Room {
	return Room{ID: r.ID, Name: r.Name, Capacity: r.Capacity, CreatedAt: r.CreatedAt}
}
