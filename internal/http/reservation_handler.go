package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/example/room-planner/internal/application"
)

type reservationService interface {
	Create(ctx context.Context, params application.CreateReservationParams) (application.Reservation, error)
	Update(ctx context.Context, params application.UpdateReservationParams) (application.Reservation, error)
	Cancel(ctx context.Context, params application.CancelReservationParams) error
	List(ctx context.Context, principal application.Principal) ([]application.ReservationDetail, error)
}

// ReservationHandler serves the caller's reservations.
type ReservationHandler struct {
	service   reservationService
	responder responder
	logger    *slog.Logger
}

// NewReservationHandler wires the handler.
func NewReservationHandler(service reservationService, logger *slog.Logger) *ReservationHandler {
	base := defaultLogger(logger)
	return &ReservationHandler{service: service, responder: newResponder(base), logger: base}
}

// List handles GET /reservations.
func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	list, err := h.service.List(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	dtos := make([]reservationDetailDTO, 0, len(list))
	for _, d := range list {
		dtos = append(dtos, reservationDetailDTO{
			reservationDTO: toReservationDTO(d.Reservation),
			RoomName:       d.RoomName,
			StartTime:      d.SlotStart.String(),
			EndTime:        d.SlotEnd.String(),
		})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, reservationsResponse{Reservations: dtos})
}

// Create handles POST /reservations.
func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req createReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlerLogger(r.Context(), h.logger, "ReservationHandler", "Create").WarnContext(r.Context(), "failed to decode reservation request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, "bad_request", errBadRequestBody)
		return
	}

	res, err := h.service.Create(r.Context(), application.CreateReservationParams{
		Principal: principal,
		RoomID:    req.RoomID,
		SlotID:    req.SlotID,
		Date:      req.Date,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, reservationResponse{Reservation: toReservationDTO(res)})
}

// Update handles PUT /reservations/{reservationID}.
func (h *ReservationHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req updateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlerLogger(r.Context(), h.logger, "ReservationHandler", "Update").WarnContext(r.Context(), "failed to decode reservation update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, "bad_request", errBadRequestBody)
		return
	}

	res, err := h.service.Update(r.Context(), application.UpdateReservationParams{
		Principal:     principal,
		ReservationID: mux.Vars(r)["reservationID"],
		SlotID:        req.SlotID,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, reservationResponse{Reservation: toReservationDTO(res)})
}

// Cancel handles DELETE /reservations/{reservationID}.
func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	err := h.service.Cancel(r.Context(), application.CancelReservationParams{
		Principal:     principal,
		ReservationID: mux.Vars(r)["reservationID"],
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type createReservationRequest struct {
	RoomID string `json:"room_id"`
	SlotID string `json:"slot_id"`
	Date   string `json:"date"`
}

type updateReservationRequest struct {
	SlotID string `json:"slot_id"`
}

type reservationDTO struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	RoomID    string    `json:"room_id"`
	SlotID    string    `json:"slot_id"`
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type reservationDetailDTO struct {
	reservationDTO
	RoomName  string `json:"room_name"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type reservationResponse struct {
	Reservation reservationDTO `json:"reservation"`
}

type reservationsResponse struct {
	Reservations []reservationDetailDTO `json:"reservations"`
}

func toReservationDTO(r application.Reservation) reservationDTO {
	return reservationDTO{
		ID:        r.ID,
		UserID:    r.UserID,
		RoomID:    r.RoomID,
		SlotID:    r.SlotID,
		Date:      r.Date.String(),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
