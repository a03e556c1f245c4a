package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/example/classroom-scheduler/internal/application"
	"github.com/example/classroom-scheduler/internal/persistence"
)

// ScheduleHandler exposes the booking lifecycle over HTTP.
type ScheduleHandler struct {
	schedules *application.ScheduleService
	responder responder
}

// NewScheduleHandler constructs a schedule handler.
func NewScheduleHandler(schedules *application.ScheduleService, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules, responder: newResponder(logger)}
}

// List handles GET /api/schedules.
func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	details, err := h.schedules.ListSchedules(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toScheduleResponses(details))
}

// Create handles POST /api/schedules.
func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	detail, err := h.schedules.CreateSchedule(r.Context(), input)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toScheduleResponse(detail))
}

// CreateRecurring handles POST /api/schedules/recurring.
func (h *ScheduleHandler) CreateRecurring(w http.ResponseWriter, r *http.Request) {
	var req recurringScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	details, err := h.schedules.CreateRecurringSchedule(r.Context(), input)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toScheduleResponses(details))
}

// Get handles GET /api/schedules/{id}.
func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	detail, err := h.schedules.GetSchedule(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toScheduleResponse(detail))
}

// Update handles PUT /api/schedules/{id}.
func (h *ScheduleHandler) Update(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	detail, err := h.schedules.UpdateSchedule(r.Context(), id, input)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toScheduleResponse(detail))
}

// UpdateStatus handles PUT /api/schedules/{id}/status. Approval decisions
// are reserved for administrators.
func (h *ScheduleHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, rawID string) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingPrincipal)
		return
	}
	if !principal.IsAdmin {
		h.responder.handleServiceError(r.Context(), w, application.ErrUnauthorized)
		return
	}

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	detail, err := h.schedules.UpdateScheduleStatus(r.Context(), id, persistence.ScheduleStatus(req.Status), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toScheduleResponse(detail))
}

// Delete handles DELETE /api/schedules/{id}.
func (h *ScheduleHandler) Delete(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	if err := h.schedules.DeleteSchedule(r.Context(), id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// ListByDate handles GET /api/schedules/date/{date}.
func (h *ScheduleHandler) ListByDate(w http.ResponseWriter, r *http.Request, rawDate string) {
	date, err := time.ParseInLocation("2006-01-02", rawDate, time.UTC)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return
	}

	details, err := h.schedules.GetSchedulesByDate(r.Context(), date)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toScheduleResponses(details))
}

// ListByUser handles GET /api/schedules/user/{userId}.
func (h *ScheduleHandler) ListByUser(w http.ResponseWriter, r *http.Request, rawID string) {
	userID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	details, err := h.schedules.GetSchedulesByUser(r.Context(), userID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toScheduleResponses(details))
}

// ListByEmail handles GET /api/schedules/email/{email}.
func (h *ScheduleHandler) ListByEmail(w http.ResponseWriter, r *http.Request, email string) {
	details, err := h.schedules.GetSchedulesByEmail(r.Context(), email)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toScheduleResponses(details))
}

// UpdateStatusBatch handles PUT /api/schedules/batch/status for administrators.
func (h *ScheduleHandler) UpdateStatusBatch(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingPrincipal)
		return
	}
	if !principal.IsAdmin {
		h.responder.handleServiceError(r.Context(), w, application.ErrUnauthorized)
		return
	}

	var req batchStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	details, err := h.schedules.UpdateScheduleStatusBatch(r.Context(), req.IDs, persistence.ScheduleStatus(req.Status), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toScheduleResponses(details))
}

// DeleteBatch handles DELETE /api/schedules/batch for administrators.
func (h *ScheduleHandler) DeleteBatch(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingPrincipal)
		return
	}
	if !principal.IsAdmin {
		h.responder.handleServiceError(r.Context(), w, application.ErrUnauthorized)
		return
	}

	var req batchDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	if err := h.schedules.DeleteSchedulesBatch(r.Context(), req.IDs); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}
