package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/room-planner/internal/events"
	"github.com/example/room-planner/internal/scheduler"
)

// ReservationPlanner runs the reservation lifecycle. *scheduler.Planner implements it.
type ReservationPlanner interface {
	Create(ctx context.Context, userID, roomID, slotID string, date scheduler.Date) (scheduler.Reservation, error)
	Update(ctx context.Context, userID, reservationID, newSlotID string) (scheduler.Reservation, error)
	Cancel(ctx context.Context, userID, reservationID string) (scheduler.Reservation, error)
	ListForUser(ctx context.Context, userID string) ([]scheduler.ReservationDetail, error)
}

// ReservationService validates booking requests, runs them through the
// planner and announces committed changes.
type ReservationService struct {
	planner   ReservationPlanner
	publisher events.Publisher
	now       func() time.Time
	logger    *slog.Logger
}

// NewReservationService constructs a reservation service. A nil publisher discards events.
func NewReservationService(planner ReservationPlanner, publisher events.Publisher, now func() time.Time) *ReservationService {
	return NewReservationServiceWithLogger(planner, publisher, now, nil)
}

// NewReservationServiceWithLogger constructs a reservation service with a specified logger.
func NewReservationServiceWithLogger(planner ReservationPlanner, publisher events.Publisher, now func() time.Time, logger *slog.Logger) *ReservationService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if now == nil {
		now = time.Now
	}
	return &ReservationService{planner: planner, publisher: publisher, now: now, logger: defaultLogger(logger)}
}

func (s *ReservationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ReservationService", operation, attrs...)
}

// Create books a slot of a room on a date for the caller.
func (s *ReservationService) Create(ctx context.Context, params CreateReservationParams) (reservation Reservation, err error) {
	logger := s.loggerWith(ctx, "Create",
		"principal_id", params.Principal.UserID,
		"room_id", params.RoomID,
		"slot_id", params.SlotID,
		"date", params.Date,
	)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to create reservation", err)
			return
		}
		logger.With("reservation_id", reservation.ID).InfoContext(ctx, "reservation created")
	}()

	vErr := &ValidationError{}
	requireField(vErr, "room_id", params.RoomID)
	requireField(vErr, "slot_id", params.SlotID)
	day, dateErr := parseDateField("date", params.Date)
	if verr, ok := dateErr.(*ValidationError); ok {
		vErr.merge(verr)
	}
	if err = vErr.errOrNil(); err != nil {
		return
	}

	reservation, err = s.planner.Create(ctx, params.Principal.UserID, strings.TrimSpace(params.RoomID), strings.TrimSpace(params.SlotID), day)
	if err != nil {
		return
	}
	s.publish(ctx, logger, events.ReservationCreated, reservation)
	return
}

// Update moves the caller's reservation to another slot of the same room and date.
func (s *ReservationService) Update(ctx context.Context, params UpdateReservationParams) (reservation Reservation, err error) {
	logger := s.loggerWith(ctx, "Update",
		"principal_id", params.Principal.UserID,
		"reservation_id", params.ReservationID,
		"slot_id", params.SlotID,
	)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to update reservation", err)
			return
		}
		logger.InfoContext(ctx, "reservation updated")
	}()

	vErr := &ValidationError{}
	requireField(vErr, "reservation_id", params.ReservationID)
	requireField(vErr, "slot_id", params.SlotID)
	if err = vErr.errOrNil(); err != nil {
		return
	}

	reservation, err = s.planner.Update(ctx, params.Principal.UserID, strings.TrimSpace(params.ReservationID), strings.TrimSpace(params.SlotID))
	if err != nil {
		return
	}
	s.publish(ctx, logger, events.ReservationUpdated, reservation)
	return
}

// Cancel deletes the caller's reservation.
func (s *ReservationService) Cancel(ctx context.Context, params CancelReservationParams) (err error) {
	logger := s.loggerWith(ctx, "Cancel",
		"principal_id", params.Principal.UserID,
		"reservation_id", params.ReservationID,
	)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to cancel reservation", err)
			return
		}
		logger.InfoContext(ctx, "reservation cancelled")
	}()

	vErr := &ValidationError{}
	requireField(vErr, "reservation_id", params.ReservationID)
	if err = vErr.errOrNil(); err != nil {
		return
	}

	var cancelled Reservation
	cancelled, err = s.planner.Cancel(ctx, params.Principal.UserID, strings.TrimSpace(params.ReservationID))
	if err != nil {
		return
	}
	s.publish(ctx, logger, events.ReservationCancelled, cancelled)
	return
}

// List returns the caller's reservations ordered by date then slot start.
func (s *ReservationService) List(ctx context.Context, principal Principal) (reservations []ReservationDetail, err error) {
	logger := s.loggerWith(ctx, "List", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to list reservations", err)
			return
		}
		logger.With("result_count", len(reservations)).DebugContext(ctx, "reservations listed")
	}()

	reservations, err = s.planner.ListForUser(ctx, principal.UserID)
	return
}

func (s *ReservationService) publish(ctx context.Context, logger *slog.Logger, eventType string, r Reservation) {
	event := events.Event{
		Type:          eventType,
		ReservationID: r.ID,
		UserID:        r.UserID,
		RoomID:        r.RoomID,
		SlotID:        r.SlotID,
		Date:          r.Date.String(),
		OccurredAt:    s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.WarnContext(ctx, "failed to publish reservation event", "event_type", eventType, "error", err)
	}
}

func requireField(vErr *ValidationError, field, value string) {
	if strings.TrimSpace(value) == "" {
		vErr.add(field, fmt.Sprintf("%s is required", field))
	}
}
