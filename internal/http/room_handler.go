package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/example/room-planner/internal/application"
)

type roomService interface {
	ListRooms(ctx context.Context, minCapacity int) ([]application.Room, error)
	GetRoom(ctx context.Context, roomID string) (application.Room, error)
	RoomSchedules(ctx context.Context, roomID string) ([]application.Slot, error)
	AvailableSlots(ctx context.Context, roomID, date string) ([]application.Slot, error)
	CreateRoom(ctx context.Context, params application.CreateRoomParams) (application.Room, error)
	AddSlot(ctx context.Context, params application.AddSlotParams) (application.Slot, error)
}

var errInvalidMinCapacity = errors.New("min_capacity must be an integer")

// RoomHandler serves the room catalog.
type RoomHandler struct {
	service   roomService
	responder responder
	logger    *slog.Logger
}

// NewRoomHandler wires the handler.
func NewRoomHandler(service roomService, logger *slog.Logger) *RoomHandler {
	base := defaultLogger(logger)
	return &RoomHandler{service: service, responder: newResponder(base), logger: base}
}

// List handles GET /rooms.
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	minCapacity := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("min_capacity")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.responder.writeJSON(r.Context(), w, http.StatusUnprocessableEntity, errorResponse{
				ErrorCode: "validation_error",
				Message:   "input is invalid",
				Errors:    map[string]string{"min_capacity": errInvalidMinCapacity.Error()},
			})
			return
		}
		minCapacity = n
	}

	rooms, err := h.service.ListRooms(r.Context(), minCapacity)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	dtos := make([]roomDTO, 0, len(rooms))
	for _, room := range rooms {
		dtos = append(dtos, toRoomDTO(room))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, roomsResponse{Rooms: dtos})
}

// Get handles GET /rooms/{roomID}.
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	room, err := h.service.GetRoom(r.Context(), mux.Vars(r)["roomID"])
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, roomResponse{Room: toRoomDTO(room)})
}

// Schedules handles GET /rooms/{roomID}/schedules.
func (h *RoomHandler) Schedules(w http.ResponseWriter, r *http.Request) {
	slots, err := h.service.RoomSchedules(r.Context(), mux.Vars(r)["roomID"])
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, slotsResponse{Slots: toSlotDTOs(slots)})
}

// Availability handles GET /rooms/{roomID}/availability?date=YYYY-MM-DD.
func (h *RoomHandler) Availability(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomID"]
	date := r.URL.Query().Get("date")
	slots, err := h.service.AvailableSlots(r.Context(), roomID, date)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, availabilityResponse{
		RoomID: roomID,
		Date:   date,
		Slots:  toSlotDTOs(slots),
	})
}

// Create handles POST /rooms.
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req roomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlerLogger(r.Context(), h.logger, "RoomHandler", "Create").WarnContext(r.Context(), "failed to decode room request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, "bad_request", errBadRequestBody)
		return
	}

	room, err := h.service.CreateRoom(r.Context(), application.CreateRoomParams{
		Principal: principal,
		Input:     application.RoomInput{Name: req.Name, Capacity: req.Capacity},
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, roomResponse{Room: toRoomDTO(room)})
}

// AddSlot handles POST /rooms/{roomID}/schedules.
func (h *RoomHandler) AddSlot(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req slotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlerLogger(r.Context(), h.logger, "RoomHandler", "AddSlot").WarnContext(r.Context(), "failed to decode slot request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, "bad_request", errBadRequestBody)
		return
	}

	slot, err := h.service.AddSlot(r.Context(), application.AddSlotParams{
		Principal: principal,
		RoomID:    mux.Vars(r)["roomID"],
		Start:     req.StartTime,
		End:       req.EndTime,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, slotResponse{Slot: toSlotDTO(slot)})
}

type roomRequest struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

type slotRequest struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type roomDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Capacity  int       `json:"capacity"`
	CreatedAt time.Time `json:"created_at"`
}

type slotDTO struct {
	ID        string `json:"id"`
	RoomID    string `json:"room_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type roomResponse struct {
	Room roomDTO `json:"room"`
}

type roomsResponse struct {
	Rooms []roomDTO `json:"rooms"`
}

type slotResponse struct {
	Slot slotDTO `json:"slot"`
}

type slotsResponse struct {
	Slots []slotDTO `json:"slots"`
}

type availabilityResponse struct {
	RoomID string    `json:"room_id"`
	Date   string    `json:"date"`
	Slots  []slotDTO `json:"slots"`
}

func toRoomDTO(room application.Room) roomDTO {
	return roomDTO{ID: room.ID, Name: room.Name, Capacity: room.Capacity, CreatedAt: room.CreatedAt}
}

func toSlotDTO(slot application.Slot) slotDTO {
	return slotDTO{ID: slot.ID, RoomID: slot.RoomID, StartTime: slot.Start.String(), EndTime: slot.End.String()}
}

func toSlotDTOs(slots []application.Slot) []slotDTO {
	out := make([]slotDTO, 0, len(slots))
	for _, s := range slots {
		out = append(out, toSlotDTO(s))
	}
	return out
}
