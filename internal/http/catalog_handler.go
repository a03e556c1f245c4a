package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/example/classroom-scheduler/internal/application"
	"github.com/example/classroom-scheduler/internal/persistence"
)

// CatalogHandler exposes buildings, departments, and programs over HTTP.
type CatalogHandler struct {
	catalog   *application.CatalogService
	responder responder
}

// NewCatalogHandler constructs a catalog handler.
func NewCatalogHandler(catalog *application.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, responder: newResponder(logger)}
}

func (h *CatalogHandler) principal(w http.ResponseWriter, r *http.Request) (application.Principal, bool) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingPrincipal)
	}
	return principal, ok
}

// ListBuildings handles GET /api/buildings.
func (h *CatalogHandler) ListBuildings(w http.ResponseWriter, r *http.Request) {
	buildings, err := h.catalog.ListBuildings(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]namedResponse, 0, len(buildings))
	for _, building := range buildings {
		out = append(out, namedResponse{ID: building.ID, Name: building.Name})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, out)
}

// CreateBuilding handles POST /api/buildings.
func (h *CatalogHandler) CreateBuilding(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	var req namedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	building, err := h.catalog.CreateBuilding(r.Context(), principal, application.BuildingInput{Name: req.Name})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, namedResponse{ID: building.ID, Name: building.Name})
}

// GetBuilding handles GET /api/buildings/{id}.
func (h *CatalogHandler) GetBuilding(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	building, err := h.catalog.GetBuilding(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, namedResponse{ID: building.ID, Name: building.Name})
}

// UpdateBuilding handles PUT /api/buildings/{id}.
func (h *CatalogHandler) UpdateBuilding(w http.ResponseWriter, r *http.Request, rawID string) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	var req namedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	building, err := h.catalog.UpdateBuilding(r.Context(), principal, id, application.BuildingInput{Name: req.Name})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, namedResponse{ID: building.ID, Name: building.Name})
}

// DeleteBuilding handles DELETE /api/buildings/{id}.
func (h *CatalogHandler) DeleteBuilding(w http.ResponseWriter, r *http.Request, rawID string) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	if err := h.catalog.DeleteBuilding(r.Context(), principal, id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// ListDepartments handles GET /api/departments.
func (h *CatalogHandler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.catalog.ListDepartments(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]namedResponse, 0, len(departments))
	for _, department := range departments {
		out = append(out, namedResponse{ID: department.ID, Name: department.Name})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, out)
}

// CreateDepartment handles POST /api/departments.
func (h *CatalogHandler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	var req namedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	department, err := h.catalog.CreateDepartment(r.Context(), principal, application.DepartmentInput{Name: req.Name})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, namedResponse{ID: department.ID, Name: department.Name})
}

// GetDepartment handles GET /api/departments/{id}.
func (h *CatalogHandler) GetDepartment(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	department, err := h.catalog.GetDepartment(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, namedResponse{ID: department.ID, Name: department.Name})
}

// UpdateDepartment handles PUT /api/departments/{id}.
func (h *CatalogHandler) UpdateDepartment(w http.ResponseWriter, r *http.Request, rawID string) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	var req namedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	department, err := h.catalog.UpdateDepartment(r.Context(), principal, id, application.DepartmentInput{Name: req.Name})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, namedResponse{ID: department.ID, Name: department.Name})
}

// DeleteDepartment handles DELETE /api/departments/{id}.
func (h *CatalogHandler) DeleteDepartment(w http.ResponseWriter, r *http.Request, rawID string) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	if err := h.catalog.DeleteDepartment(r.Context(), principal, id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// ListPrograms handles GET /api/programs.
func (h *CatalogHandler) ListPrograms(w http.ResponseWriter, r *http.Request) {
	programs, err := h.catalog.ListPrograms(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toProgramResponses(programs))
}

// CreateProgram handles POST /api/programs.
func (h *CatalogHandler) CreateProgram(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	var req programRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	program, err := h.catalog.CreateProgram(r.Context(), principal, application.ProgramInput{
		Name:         req.Name,
		Code:         req.Code,
		DepartmentID: req.DepartmentID,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toProgramResponse(program))
}

// GetProgram handles GET /api/programs/{id}.
func (h *CatalogHandler) GetProgram(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	program, err := h.catalog.GetProgram(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toProgramResponse(program))
}

// UpdateProgram handles PUT /api/programs/{id}.
func (h *CatalogHandler) UpdateProgram(w http.ResponseWriter, r *http.Request, rawID string) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	var req programRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	program, err := h.catalog.UpdateProgram(r.Context(), principal, id, application.ProgramInput{
		Name:         req.Name,
		Code:         req.Code,
		DepartmentID: req.DepartmentID,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toProgramResponse(program))
}

// DeleteProgram handles DELETE /api/programs/{id}.
func (h *CatalogHandler) DeleteProgram(w http.ResponseWriter, r *http.Request, rawID string) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	if err := h.catalog.DeleteProgram(r.Context(), principal, id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// ListProgramsByDepartment handles GET /api/programs/department/{departmentId}.
func (h *CatalogHandler) ListProgramsByDepartment(w http.ResponseWriter, r *http.Request, rawID string) {
	departmentID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	programs, err := h.catalog.ListProgramsByDepartment(r.Context(), departmentID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toProgramResponses(programs))
}

func toProgramResponse(program persistence.Program) programResponse {
	return programResponse{
		ID:           program.ID,
		Name:         program.Name,
		Code:         program.Code,
		DepartmentID: program.DepartmentID,
	}
}

func toProgramResponses(programs []persistence.Program) []programResponse {
	out := make([]programResponse, 0, len(programs))
	for _, program := range programs {
		out = append(out, toProgramResponse(program))
	}
	return out
}
