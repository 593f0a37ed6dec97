// Package events publishes reservation lifecycle notifications.
package events

import (
	"context"
	"time"
)

// Routing keys for reservation lifecycle events.
const (
	ReservationCreated   = "reservation.created"
	ReservationUpdated   = "reservation.updated"
	ReservationCancelled = "reservation.cancelled"
)

// Event describes a committed reservation change.
type Event struct {
	Type          string    `json:"type"`
	ReservationID string    `json:"reservation_id"`
	UserID        string    `json:"user_id"`
	RoomID        string    `json:"room_id"`
	SlotID        string    `json:"slot_id"`
	Date          string    `json:"date"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Publisher delivers events after the change they describe has committed.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher discards every event.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, Event) error { return nil }
