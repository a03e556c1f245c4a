package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/classroom-scheduler/internal/application"
)

var (
	errBadRequestBody   = errors.New("invalid request body")
	errInvalidID        = errors.New("invalid id")
	errInvalidDate      = errors.New("invalid date, expected YYYY-MM-DD")
	errMissingToken     = errors.New("missing bearer token")
	errMissingPrincipal = errors.New("authentication required")
)

type errorResponse struct {
	Message   string             `json:"message"`
	Errors    map[string]string  `json:"errors,omitempty"`
	Conflicts []conflictResponse `json:"conflicts,omitempty"`
}

type conflictResponse struct {
	ScheduleID        int64  `json:"schedule_id"`
	Date              string `json:"date"`
	StartTime         string `json:"start_time"`
	EndTime           string `json:"end_time"`
	CourseCode        string `json:"course_code"`
	CourseDescription string `json:"course_description"`
	AssignedTo        string `json:"assigned_to"`
}

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := http.StatusText(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

// handleServiceError maps service errors to status codes: authorization to
// 401/403, lookups to 404, booking conflicts to 409 with the full conflict
// list, validation to 422, everything else to 500.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	var cErr *application.ConflictError
	if errors.As(err, &cErr) {
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			Message:   cErr.Error(),
			Conflicts: toConflictResponses(cErr.Conflicts),
		})
		return
	}

	var vErr *application.ValidationError
	if errors.As(err, &vErr) {
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			Message: "validation failed",
			Errors:  vErr.FieldErrors,
		})
		return
	}

	switch {
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{Message: "you are not allowed to perform this operation"})
	case errors.Is(err, application.ErrInvalidCredentials):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{Message: "invalid email or password"})
	case errors.Is(err, application.ErrSessionExpired):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{Message: "session expired, please log in again"})
	case errors.Is(err, application.ErrSessionRevoked):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{Message: "session revoked, please log in again"})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: err.Error()})
	default:
		r.loggerFor(ctx).ErrorContext(ctx, "unhandled service error", "error", err)
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "internal server error"})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func toConflictResponses(conflicts []application.ConflictDetail) []conflictResponse {
	out := make([]conflictResponse, 0, len(conflicts))
	for _, c := range conflicts {
		out = append(out, conflictResponse{
			ScheduleID:        c.ScheduleID,
			Date:              c.Date.Format("2006-01-02"),
			StartTime:         c.StartTime.String(),
			EndTime:           c.EndTime.String(),
			CourseCode:        c.CourseCode,
			CourseDescription: c.CourseDescription,
			AssignedTo:        c.AssignedTo,
		})
	}
	return out
}
