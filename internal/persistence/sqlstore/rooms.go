package sqlstore

import (
	"context"
	"fmt"

	"github.com/example/room-planner/internal/persistence"
)

type roomRow struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	Capacity  int    `db:"capacity"`
	CreatedAt string `db:"created_at"`
	UpdatedAt string `db:"updated_at"`
}

func (r roomRow) record() (persistence.Room, error) {
	created, updated, err := parseTimes(r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return persistence.Room{}, err
	}
	return persistence.Room{ID: r.ID, Name: r.Name, Capacity: r.Capacity, CreatedAt: created, UpdatedAt: updated}, nil
}

type slotRow struct {
	ID        string `db:"id"`
	RoomID    string `db:"room_id"`
	StartsAt  string `db:"starts_at"`
	EndsAt    string `db:"ends_at"`
	CreatedAt string `db:"created_at"`
}

func (r slotRow) record() (persistence.Slot, error) {
	created, err := parseTime(r.CreatedAt)
	if err != nil {
		return persistence.Slot{}, err
	}
	return persistence.Slot{ID: r.ID, RoomID: r.RoomID, StartsAt: r.StartsAt, EndsAt: r.EndsAt, CreatedAt: created}, nil
}

// CreateRoom inserts room.
func (s *Store) CreateRoom(ctx context.Context, room persistence.Room) error {
	if room.ID == "" || room.Capacity <= 0 {
		return persistence.ErrConstraintViolation
	}
	query := s.q(`INSERT INTO rooms (id, name, capacity, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`)
	return s.withRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, room.ID, room.Name, room.Capacity, formatTime(room.CreatedAt), formatTime(room.UpdatedAt))
		return s.mapError(err)
	})
}

// GetRoom loads a room by id.
func (s *Store) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	if id == "" {
		return persistence.Room{}, persistence.ErrNotFound
	}
	var row roomRow
	err := s.db.GetContext(ctx, &row, s.q(`SELECT id, name, capacity, created_at, updated_at FROM rooms WHERE id = ?`), id)
	if err != nil {
		return persistence.Room{}, s.mapError(err)
	}
	room, err := row.record()
	if err != nil {
		return persistence.Room{}, fmt.Errorf("decode room %s: %w", id, err)
	}
	return room, nil
}

// ListRooms returns rooms ordered by name, keeping those with at least
// filter.MinCapacity seats when it is positive.
func (s *Store) ListRooms(ctx context.Context, filter persistence.RoomFilter) ([]persistence.Room, error) {
	query := `SELECT id, name, capacity, created_at, updated_at FROM rooms`
	var args []any
	if filter.MinCapacity > 0 {
		query += ` WHERE capacity >= ?`
		args = append(args, filter.MinCapacity)
	}
	query += ` ORDER BY name, id`

	var rows []roomRow
	if err := s.db.SelectContext(ctx, &rows, s.q(query), args...); err != nil {
		return nil, s.mapError(err)
	}
	rooms := make([]persistence.Room, 0, len(rows))
	for _, row := range rows {
		room, err := row.record()
		if err != nil {
			return nil, fmt.Errorf("decode room %s: %w", row.ID, err)
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

// CreateSlot inserts slot. An unknown room yields persistence.ErrForeignKeyViolation.
func (s *Store) CreateSlot(ctx context.Context, slot persistence.Slot) error {
	if slot.ID == "" || slot.RoomID == "" || slot.StartsAt >= slot.EndsAt {
		return persistence.ErrConstraintViolation
	}
	query := s.q(`INSERT INTO slots (id, room_id, starts_at, ends_at, created_at) VALUES (?, ?, ?, ?, ?)`)
	return s.withRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, slot.ID, slot.RoomID, slot.StartsAt, slot.EndsAt, formatTime(slot.CreatedAt))
		return s.mapError(err)
	})
}

// GetSlot loads a slot by id.
func (s *Store) GetSlot(ctx context.Context, id string) (persistence.Slot, error) {
	if id == "" {
		return persistence.Slot{}, persistence.ErrNotFound
	}
	var row slotRow
	err := s.db.GetContext(ctx, &row, s.q(`SELECT id, room_id, starts_at, ends_at, created_at FROM slots WHERE id = ?`), id)
	if err != nil {
		return persistence.Slot{}, s.mapError(err)
	}
	slot, err := row.record()
	if err != nil {
		return persistence.Slot{}, fmt.Errorf("decode slot %s: %w", id, err)
	}
	return slot, nil
}

// ListSlots returns the room's slots ordered by start time.
func (s *Store) ListSlots(ctx context.Context, roomID string) ([]persistence.Slot, error) {
	var rows []slotRow
	err := s.db.SelectContext(ctx, &rows,
		s.q(`SELECT id, room_id, starts_at, ends_at, created_at FROM slots WHERE room_id = ? ORDER BY starts_at, ends_at, id`), roomID)
	if err != nil {
		return nil, s.mapError(err)
	}
	slots := make([]persistence.Slot, 0, len(rows))
	for _, row := range rows {
		slot, err := row.record()
		if err != nil {
			return nil, fmt.Errorf("decode slot %s: %w", row.ID, err)
		}
		slots = append(slots, slot)
	}
	return slots, nil
}
