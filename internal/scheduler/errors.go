package scheduler

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports an absent room, user or reservation.
	ErrNotFound = errors.New("scheduler: not found")
	// ErrInvalidSlot reports a slot that does not exist or belongs to another room.
	ErrInvalidSlot = errors.New("scheduler: invalid slot")
	// ErrSlotAlreadyBooked reports that the (room, slot, date) triple is taken.
	ErrSlotAlreadyBooked = errors.New("scheduler: slot already booked")
	// ErrNotFoundOrForbidden reports a reservation that is absent or owned by someone else.
	ErrNotFoundOrForbidden = errors.New("scheduler: reservation not found or not owned by caller")
	// ErrUpdateFailed reports a validated write that affected no record.
	ErrUpdateFailed = errors.New("scheduler: update failed")
	// ErrNoSlotsConfigured reports a room without any slot templates.
	ErrNoSlotsConfigured = fmt.Errorf("%w: room has no configured slots", ErrNotFound)
)

// Kind is the machine-checkable class of a rejection.
type Kind string

const (
	KindNotFound            Kind = "not_found"
	KindInvalidSlot         Kind = "invalid_slot"
	KindSlotAlreadyBooked   Kind = "slot_already_booked"
	KindNotFoundOrForbidden Kind = "not_found_or_forbidden"
	KindUpdateFailed        Kind = "update_failed"
)

// Rejection is a domain error with a kind and a human-readable reason.
type Rejection struct {
	Kind   Kind
	Reason string
	err    error
}

func (r *Rejection) Error() string {
	if r == nil {
		return ""
	}
	return r.Reason
}

// Unwrap exposes the sentinel so errors.Is works against the taxonomy.
func (r *Rejection) Unwrap() error {
	if r == nil {
		return nil
	}
	return r.err
}

func reject(sentinel error, reason string) *Rejection {
	return &Rejection{Kind: KindOf(sentinel), Reason: reason, err: sentinel}
}

// KindOf classifies err within the domain taxonomy. It returns "" for
// errors that are not domain rejections.
func KindOf(err error) Kind {
	var rej *Rejection
	if errors.As(err, &rej) && rej.Kind != "" {
		return rej.Kind
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidSlot):
		return KindInvalidSlot
	case errors.Is(err, ErrSlotAlreadyBooked):
		return KindSlotAlreadyBooked
	case errors.Is(err, ErrNotFoundOrForbidden):
		return KindNotFoundOrForbidden
	case errors.Is(err, ErrUpdateFailed):
		return KindUpdateFailed
	}
	return ""
}
