package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/example/classroom-scheduler/internal/application"
)

// RoomHandler exposes classroom management over HTTP.
type RoomHandler struct {
	rooms     *application.RoomService
	responder responder
}

// NewRoomHandler constructs a room handler.
func NewRoomHandler(rooms *application.RoomService, logger *slog.Logger) *RoomHandler {
	return &RoomHandler{rooms: rooms, responder: newResponder(logger)}
}

// List handles GET /api/rooms.
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.rooms.ListRooms(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toRoomResponses(rooms))
}

// Create handles POST /api/rooms.
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingPrincipal)
		return
	}

	var req roomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	room, err := h.rooms.CreateRoom(r.Context(), principal, application.RoomInput{
		RoomNumber:   req.RoomNumber,
		BuildingID:   req.BuildingID,
		Capacity:     req.Capacity,
		HasProjector: req.HasProjector,
		HasComputers: req.HasComputers,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toRoomResponse(room))
}

// Get handles GET /api/rooms/{id}.
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	room, err := h.rooms.GetRoom(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toRoomResponse(room))
}

// Update handles PUT /api/rooms/{id}.
func (h *RoomHandler) Update(w http.ResponseWriter, r *http.Request, rawID string) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingPrincipal)
		return
	}

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	var req roomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	room, err := h.rooms.UpdateRoom(r.Context(), principal, id, application.RoomInput{
		RoomNumber:   req.RoomNumber,
		BuildingID:   req.BuildingID,
		Capacity:     req.Capacity,
		HasProjector: req.HasProjector,
		HasComputers: req.HasComputers,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toRoomResponse(room))
}

// Delete handles DELETE /api/rooms/{id}.
func (h *RoomHandler) Delete(w http.ResponseWriter, r *http.Request, rawID string) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingPrincipal)
		return
	}

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	if err := h.rooms.DeleteRoom(r.Context(), principal, id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// ListByBuilding handles GET /api/rooms/building/{buildingId}.
func (h *RoomHandler) ListByBuilding(w http.ResponseWriter, r *http.Request, rawID string) {
	buildingID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	rooms, err := h.rooms.ListRoomsByBuilding(r.Context(), buildingID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toRoomResponses(rooms))
}
