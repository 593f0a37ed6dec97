package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
)

// Planner runs the reservation lifecycle: create, retarget and cancel.
//
// Writes always validate against the live catalog and ledger. A separate
// read catalog, typically cached, may serve listing operations.
type Planner struct {
	catalog      Catalog
	ledger       Ledger
	validator    *Validator
	availability *Availability
	idGenerator  func() string
	now          func() time.Time
}

// Option customizes a Planner.
type Option func(*Planner)

// WithReadCatalog serves RoomSchedules and AvailableSlots from catalog.
func WithReadCatalog(catalog Catalog) Option {
	return func(p *Planner) {
		if catalog != nil {
			p.availability = NewAvailability(catalog, p.ledger)
		}
	}
}

// WithIDGenerator sets the reservation id source.
func WithIDGenerator(fn func() string) Option {
	return func(p *Planner) {
		if fn != nil {
			p.idGenerator = fn
		}
	}
}

// WithClock sets the timestamp source.
func WithClock(fn func() time.Time) Option {
	return func(p *Planner) {
		if fn != nil {
			p.now = fn
		}
	}
}

// NewPlanner builds a planner over the live catalog and ledger.
func NewPlanner(catalog Catalog, ledger Ledger, opts ...Option) *Planner {
	p := &Planner{
		catalog:     catalog,
		ledger:      ledger,
		validator:   NewValidator(catalog, ledger),
		idGenerator: func() string { return "" },
		now:         time.Now,
	}
	p.availability = NewAvailability(catalog, ledger)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RoomSchedules lists a room's slot templates.
func (p *Planner) RoomSchedules(ctx context.Context, roomID string) ([]Slot, error) {
	return p.availability.RoomSchedules(ctx, roomID)
}

// AvailableSlots lists the room's slots that are free on date.
func (p *Planner) AvailableSlots(ctx context.Context, roomID string, date Date) ([]Slot, error) {
	return p.availability.AvailableSlots(ctx, roomID, date)
}

// Create books (roomID, slotID, date) for userID.
func (p *Planner) Create(ctx context.Context, userID, roomID, slotID string, date Date) (Reservation, error) {
	if _, err := p.validator.ValidateBooking(ctx, BookingCandidate{RoomID: roomID, SlotID: slotID, Date: date}); err != nil {
		return Reservation{}, err
	}

	now := p.now().UTC()
	created, err := p.ledger.CreateReservation(ctx, Reservation{
		ID:        p.idGenerator(),
		UserID:    userID,
		RoomID:    roomID,
		SlotID:    slotID,
		Date:      date,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return Reservation{}, translateWriteError(err)
	}
	return created, nil
}

// Cancel deletes the reservation when it exists and belongs to userID.
func (p *Planner) Cancel(ctx context.Context, userID, reservationID string) (Reservation, error) {
	deleted, ok, err := p.ledger.DeleteReservation(ctx, reservationID, userID)
	if err != nil {
		return Reservation{}, fmt.Errorf("delete reservation %s: %w", reservationID, err)
	}
	if !ok {
		return Reservation{}, notFoundOrForbidden()
	}
	return deleted, nil
}

// Update moves the caller's reservation to newSlotID within the same room and date.
func (p *Planner) Update(ctx context.Context, userID, reservationID, newSlotID string) (Reservation, error) {
	current, ok, err := p.ledger.FindReservation(ctx, reservationID)
	if err != nil {
		return Reservation{}, fmt.Errorf("find reservation %s: %w", reservationID, err)
	}
	if !ok || current.UserID != userID {
		return Reservation{}, notFoundOrForbidden()
	}

	if _, err := p.validator.resolveSlot(ctx, current.RoomID, newSlotID); err != nil {
		return Reservation{}, err
	}

	if _, err := p.validator.ValidateBooking(ctx, BookingCandidate{
		RoomID:               current.RoomID,
		SlotID:               newSlotID,
		Date:                 current.Date,
		ExcludeReservationID: current.ID,
	}); err != nil {
		return Reservation{}, err
	}

	updated, ok, err := p.ledger.UpdateReservationSlot(ctx, reservationID, userID, newSlotID, p.now().UTC())
	if err != nil {
		return Reservation{}, translateWriteError(err)
	}
	if !ok {
		return Reservation{}, reject(ErrUpdateFailed, "reservation update did not affect any record")
	}
	return updated, nil
}

// ListForUser returns the user's reservations ordered by date, then slot start.
func (p *Planner) ListForUser(ctx context.Context, userID string) ([]ReservationDetail, error) {
	details, err := p.ledger.ListReservationsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list reservations for user %s: %w", userID, err)
	}
	sort.SliceStable(details, func(i, j int) bool {
		if details[i].Date != details[j].Date {
			return details[i].Date.Before(details[j].Date)
		}
		return details[i].SlotStart < details[j].SlotStart
	})
	return details, nil
}

func notFoundOrForbidden() *Rejection {
	return reject(ErrNotFoundOrForbidden, "reservation not found or you are not allowed to change it")
}

func translateWriteError(err error) error {
	switch {
	case errors.Is(err, ErrSlotAlreadyBooked):
		return reject(ErrSlotAlreadyBooked, "slot is already booked for this room and date")
	case errors.Is(err, ErrInvalidSlot):
		return reject(ErrInvalidSlot, "slot is not valid for this room")
	case errors.Is(err, ErrNotFound):
		return reject(ErrNotFound, "room not found")
	}
	return fmt.Errorf("write reservation: %w", err)
}
