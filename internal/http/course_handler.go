package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/example/classroom-scheduler/internal/application"
)

// CourseHandler exposes the course catalog over HTTP.
type CourseHandler struct {
	courses   *application.CourseService
	responder responder
}

// NewCourseHandler constructs a course handler.
func NewCourseHandler(courses *application.CourseService, logger *slog.Logger) *CourseHandler {
	return &CourseHandler{courses: courses, responder: newResponder(logger)}
}

// List handles GET /api/courses.
func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	courses, err := h.courses.ListCourses(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toCourseResponses(courses))
}

// Create handles POST /api/courses.
func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingPrincipal)
		return
	}

	var req courseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	course, err := h.courses.CreateCourse(r.Context(), principal, application.CourseInput{
		CourseCode:  req.CourseCode,
		Description: req.Description,
		ProgramID:   req.ProgramID,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toCourseResponse(course))
}

// Get handles GET /api/courses/{id}.
func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	course, err := h.courses.GetCourse(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toCourseResponse(course))
}

// Update handles PUT /api/courses/{id}.
func (h *CourseHandler) Update(w http.ResponseWriter, r *http.Request, rawID string) {
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

	var req courseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	course, err := h.courses.UpdateCourse(r.Context(), principal, id, application.CourseInput{
		CourseCode:  req.CourseCode,
		Description: req.Description,
		ProgramID:   req.ProgramID,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toCourseResponse(course))
}

// Delete handles DELETE /api/courses/{id}.
func (h *CourseHandler) Delete(w http.ResponseWriter, r *http.Request, rawID string) {
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

	if err := h.courses.DeleteCourse(r.Context(), principal, id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// ListByProgram handles GET /api/courses/program/{programId}.
func (h *CourseHandler) ListByProgram(w http.ResponseWriter, r *http.Request, rawID string) {
	programID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	courses, err := h.courses.ListCoursesByProgram(r.Context(), programID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toCourseResponses(courses))
}
