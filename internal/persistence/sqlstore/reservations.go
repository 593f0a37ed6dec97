package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/room-planner/internal/persistence"
)

type reservationRow struct {
	ID         string `db:"id"`
	UserID     string `db:"user_id"`
	RoomID     string `db:"room_id"`
	SlotID     string `db:"slot_id"`
	ReservedOn string `db:"reserved_on"`
	CreatedAt  string `db:"created_at"`
	UpdatedAt  string `db:"updated_at"`
}

func (r reservationRow) record() (persistence.Reservation, error) {
	created, updated, err := parseTimes(r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return persistence.Reservation{}, err
	}
	return persistence.Reservation{
		ID:         r.ID,
		UserID:     r.UserID,
		RoomID:     r.RoomID,
		SlotID:     r.SlotID,
		ReservedOn: r.ReservedOn,
		CreatedAt:  created,
		UpdatedAt:  updated,
	}, nil
}

type reservationDetailRow struct {
	reservationRow
	RoomName     string `db:"room_name"`
	SlotStartsAt string `db:"slot_starts_at"`
	SlotEndsAt   string `db:"slot_ends_at"`
}

const reservationColumns = `id, user_id, room_id, slot_id, reserved_on, created_at, updated_at`

// CreateReservation inserts reservation. The (room_id, slot_id, reserved_on)
// unique key turns a concurrent double booking into persistence.ErrDuplicate.
func (s *Store) CreateReservation(ctx context.Context, reservation persistence.Reservation) error {
	if reservation.ID == "" || reservation.ReservedOn == "" {
		return persistence.ErrConstraintViolation
	}
	query := s.q(`INSERT INTO reservations (` + reservationColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	err := s.withRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query,
			reservation.ID,
			reservation.UserID,
			reservation.RoomID,
			reservation.SlotID,
			reservation.ReservedOn,
			formatTime(reservation.CreatedAt),
			formatTime(reservation.UpdatedAt),
		)
		return s.mapError(err)
	})
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		return s.explainReference(ctx, reservation, err)
	}
	return err
}

// explainReference finds which parent row of reservation is missing.
// Drivers do not reliably name the violated constraint.
func (s *Store) explainReference(ctx context.Context, reservation persistence.Reservation, err error) error {
	var count int
	if qerr := s.db.GetContext(ctx, &count,
		s.q(`SELECT COUNT(1) FROM slots WHERE id = ? AND room_id = ?`),
		reservation.SlotID, reservation.RoomID); qerr == nil && count == 0 {
		return &persistence.ReferenceError{Reference: persistence.ReferenceSlot, Err: err}
	}
	if qerr := s.db.GetContext(ctx, &count,
		s.q(`SELECT COUNT(1) FROM users WHERE id = ?`),
		reservation.UserID); qerr == nil && count == 0 {
		return &persistence.ReferenceError{Reference: persistence.ReferenceUser, Err: err}
	}
	return err
}

// GetReservation loads a reservation by id.
func (s *Store) GetReservation(ctx context.Context, id string) (persistence.Reservation, error) {
	if id == "" {
		return persistence.Reservation{}, persistence.ErrNotFound
	}
	return s.getReservation(ctx, s.db, `SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id)
}

func (s *Store) getReservation(ctx context.Context, q sqlx.QueryerContext, query string, args ...any) (persistence.Reservation, error) {
	var row reservationRow
	if err := sqlx.GetContext(ctx, q, &row, s.q(query), args...); err != nil {
		return persistence.Reservation{}, s.mapError(err)
	}
	reservation, err := row.record()
	if err != nil {
		return persistence.Reservation{}, fmt.Errorf("decode reservation %s: %w", row.ID, err)
	}
	return reservation, nil
}

// ReservationExists reports whether any reservation other than excludeID
// holds the triple.
func (s *Store) ReservationExists(ctx context.Context, roomID, slotID, reservedOn, excludeID string) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		s.q(`SELECT COUNT(1) FROM reservations WHERE room_id = ? AND slot_id = ? AND reserved_on = ? AND id <> ?`),
		roomID, slotID, reservedOn, excludeID)
	if err != nil {
		return false, s.mapError(err)
	}
	return count > 0, nil
}

// ListReservationsForRoom returns the room's reservations on reservedOn.
func (s *Store) ListReservationsForRoom(ctx context.Context, roomID, reservedOn string) ([]persistence.Reservation, error) {
	var rows []reservationRow
	err := s.db.SelectContext(ctx, &rows,
		s.q(`SELECT `+reservationColumns+` FROM reservations WHERE room_id = ? AND reserved_on = ? ORDER BY slot_id`),
		roomID, reservedOn)
	if err != nil {
		return nil, s.mapError(err)
	}
	out := make([]persistence.Reservation, 0, len(rows))
	for _, row := range rows {
		reservation, err := row.record()
		if err != nil {
			return nil, fmt.Errorf("decode reservation %s: %w", row.ID, err)
		}
		out = append(out, reservation)
	}
	return out, nil
}

// ListReservationsForUser returns the user's reservations with room and slot
// display fields, ordered by date then slot start.
func (s *Store) ListReservationsForUser(ctx context.Context, userID string) ([]persistence.ReservationDetail, error) {
	var rows []reservationDetailRow
	err := s.db.SelectContext(ctx, &rows, s.q(`
		SELECT r.id, r.user_id, r.room_id, r.slot_id, r.reserved_on, r.created_at, r.updated_at,
		       rm.name AS room_name, sl.starts_at AS slot_starts_at, sl.ends_at AS slot_ends_at
		FROM reservations r
		JOIN rooms rm ON rm.id = r.room_id
		JOIN slots sl ON sl.id = r.slot_id
		WHERE r.user_id = ?
		ORDER BY r.reserved_on, sl.starts_at, r.id`), userID)
	if err != nil {
		return nil, s.mapError(err)
	}
	out := make([]persistence.ReservationDetail, 0, len(rows))
	for _, row := range rows {
		reservation, err := row.record()
		if err != nil {
			return nil, fmt.Errorf("decode reservation %s: %w", row.ID, err)
		}
		out = append(out, persistence.ReservationDetail{
			Reservation:  reservation,
			RoomName:     row.RoomName,
			SlotStartsAt: row.SlotStartsAt,
			SlotEndsAt:   row.SlotEndsAt,
		})
	}
	return out, nil
}

// DeleteReservation removes the reservation owned by userID and returns it.
func (s *Store) DeleteReservation(ctx context.Context, id, userID string) (deleted persistence.Reservation, err error) {
	err = s.withRetry(ctx, func() error {
		return s.withTransaction(ctx, func(tx *sqlx.Tx) error {
			found, err := s.getReservation(ctx, tx, `SELECT `+reservationColumns+` FROM reservations WHERE id = ? AND user_id = ?`, id, userID)
			if err != nil {
				return err
			}
			res, err := tx.ExecContext(ctx, s.q(`DELETE FROM reservations WHERE id = ? AND user_id = ?`), id, userID)
			if err != nil {
				return s.mapError(err)
			}
			if n, err := res.RowsAffected(); err != nil {
				return fmt.Errorf("rows affected: %w", err)
			} else if n == 0 {
				return persistence.ErrNotFound
			}
			deleted = found
			return nil
		})
	})
	return deleted, err
}

// UpdateReservationSlot moves the reservation owned by userID to slotID.
func (s *Store) UpdateReservationSlot(ctx context.Context, id, userID, slotID string, updatedAt time.Time) (updated persistence.Reservation, err error) {
	err = s.withRetry(ctx, func() error {
		return s.withTransaction(ctx, func(tx *sqlx.Tx) error {
			res, err := tx.ExecContext(ctx,
				s.q(`UPDATE reservations SET slot_id = ?, updated_at = ? WHERE id = ? AND user_id = ?`),
				slotID, formatTime(updatedAt), id, userID)
			if err != nil {
				err = s.mapError(err)
				if errors.Is(err, persistence.ErrForeignKeyViolation) {
					// Only slot_id changes, so only the (slot_id, room_id) key can fail.
					return &persistence.ReferenceError{Reference: persistence.ReferenceSlot, Err: err}
				}
				return err
			}
			if n, err := res.RowsAffected(); err != nil {
				return fmt.Errorf("rows affected: %w", err)
			} else if n == 0 {
				return persistence.ErrNotFound
			}
			updated, err = s.getReservation(ctx, tx, `SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id)
			return err
		})
	})
	return updated, err
}
