package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/classroom-scheduler/internal/persistence"
)

// CatalogService manages the building, department, and program reference
// data that rooms and courses hang off.
type CatalogService struct {
	catalog persistence.CatalogRepository
	logger  *slog.Logger
}

// NewCatalogService constructs a catalog service with the provided repository.
func NewCatalogService(catalog persistence.CatalogRepository) *CatalogService {
	return NewCatalogServiceWithLogger(catalog, nil)
}

// NewCatalogServiceWithLogger constructs a catalog service with a specified logger.
func NewCatalogServiceWithLogger(catalog persistence.CatalogRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{catalog: catalog, logger: defaultLogger(logger)}
}

func (s *CatalogService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "CatalogService", operation, attrs...)
}

// CreateBuilding persists a new building for administrators.
func (s *CatalogService) CreateBuilding(ctx context.Context, principal Principal, input BuildingInput) (building persistence.Building, err error) {
	if s == nil {
		err = fmt.Errorf("CatalogService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateBuilding", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create building", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("building_id", building.ID).InfoContext(ctx, "building created")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if vErr := requireName("name", input.Name); vErr != nil {
		err = vErr
		return
	}

	building, err = s.catalog.CreateBuilding(ctx, persistence.Building{Name: strings.TrimSpace(input.Name)})
	if err != nil {
		err = mapCatalogWriteError(err, "name", "a building with that name already exists")
	}
	return
}

// UpdateBuilding renames an existing building for administrators.
func (s *CatalogService) UpdateBuilding(ctx context.Context, principal Principal, id int64, input BuildingInput) (building persistence.Building, err error) {
	if s == nil {
		err = fmt.Errorf("CatalogService is nil")
		return
	}

	logger := s.loggerWith(ctx, "UpdateBuilding", "building_id", id, "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update building", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "building updated")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if vErr := requireName("name", input.Name); vErr != nil {
		err = vErr
		return
	}

	existing, gErr := s.catalog.GetBuilding(ctx, id)
	if gErr != nil {
		if errors.Is(gErr, persistence.ErrNotFound) {
			err = notFoundByID("Building", id)
			return
		}
		err = gErr
		return
	}

	existing.Name = strings.TrimSpace(input.Name)
	building, err = s.catalog.UpdateBuilding(ctx, existing)
	if err != nil {
		err = mapCatalogWriteError(err, "name", "a building with that name already exists")
	}
	return
}

// DeleteBuilding removes a building for administrators. Buildings with rooms
// cannot be removed.
func (s *CatalogService) DeleteBuilding(ctx context.Context, principal Principal, id int64) (err error) {
	if s == nil {
		return fmt.Errorf("CatalogService is nil")
	}

	logger := s.loggerWith(ctx, "DeleteBuilding", "building_id", id, "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete building", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "building deleted")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	if err = s.catalog.DeleteBuilding(ctx, id); err != nil {
		switch {
		case errors.Is(err, persistence.ErrNotFound):
			err = notFoundByID("Building", id)
		case errors.Is(err, persistence.ErrForeignKeyViolation):
			vErr := &ValidationError{}
			vErr.add("building", "building still contains rooms")
			err = vErr
		}
	}
	return
}

// GetBuilding returns a single building by id.
func (s *CatalogService) GetBuilding(ctx context.Context, id int64) (persistence.Building, error) {
	if s == nil {
		return persistence.Building{}, fmt.Errorf("CatalogService is nil")
	}

	building, err := s.catalog.GetBuilding(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Building{}, notFoundByID("Building", id)
		}
		return persistence.Building{}, err
	}
	return building, nil
}

// ListBuildings returns every building ordered by name.
func (s *CatalogService) ListBuildings(ctx context.Context) ([]persistence.Building, error) {
	if s == nil {
		return nil, fmt.Errorf("CatalogService is nil")
	}
	return s.catalog.ListBuildings(ctx)
}

// CreateDepartment persists a new department for administrators.
func (s *CatalogService) CreateDepartment(ctx context.Context, principal Principal, input DepartmentInput) (department persistence.Department, err error) {
	if s == nil {
		err = fmt.Errorf("CatalogService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateDepartment", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create department", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("department_id", department.ID).InfoContext(ctx, "department created")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if vErr := requireName("name", input.Name); vErr != nil {
		err = vErr
		return
	}

	department, err = s.catalog.CreateDepartment(ctx, persistence.Department{Name: strings.TrimSpace(input.Name)})
	if err != nil {
		err = mapCatalogWriteError(err, "name", "a department with that name already exists")
	}
	return
}

// UpdateDepartment renames an existing department for administrators.
func (s *CatalogService) UpdateDepartment(ctx context.Context, principal Principal, id int64, input DepartmentInput) (department persistence.Department, err error) {
	if s == nil {
		err = fmt.Errorf("CatalogService is nil")
		return
	}

	logger := s.loggerWith(ctx, "UpdateDepartment", "department_id", id, "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update department", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "department updated")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if vErr := requireName("name", input.Name); vErr != nil {
		err = vErr
		return
	}

	existing, gErr := s.catalog.GetDepartment(ctx, id)
	if gErr != nil {
		if errors.Is(gErr, persistence.ErrNotFound) {
			err = notFoundByID("Department", id)
			return
		}
		err = gErr
		return
	}

	existing.Name = strings.TrimSpace(input.Name)
	department, err = s.catalog.UpdateDepartment(ctx, existing)
	if err != nil {
		err = mapCatalogWriteError(err, "name", "a department with that name already exists")
	}
	return
}

// DeleteDepartment removes a department for administrators. Departments with
// programs cannot be removed.
func (s *CatalogService) DeleteDepartment(ctx context.Context, principal Principal, id int64) (err error) {
	if s == nil {
		return fmt.Errorf("CatalogService is nil")
	}

	logger := s.loggerWith(ctx, "DeleteDepartment", "department_id", id, "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete department", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "department deleted")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	if err = s.catalog.DeleteDepartment(ctx, id); err != nil {
		switch {
		case errors.Is(err, persistence.ErrNotFound):
			err = notFoundByID("Department", id)
		case errors.Is(err, persistence.ErrForeignKeyViolation):
			vErr := &ValidationError{}
			vErr.add("department", "department still contains programs")
			err = vErr
		}
	}
	return
}

// GetDepartment returns a single department by id.
func (s *CatalogService) GetDepartment(ctx context.Context, id int64) (persistence.Department, error) {
	if s == nil {
		return persistence.Department{}, fmt.Errorf("CatalogService is nil")
	}

	department, err := s.catalog.GetDepartment(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Department{}, notFoundByID("Department", id)
		}
		return persistence.Department{}, err
	}
	return department, nil
}

// ListDepartments returns every department ordered by name.
func (s *CatalogService) ListDepartments(ctx context.Context) ([]persistence.Department, error) {
	if s == nil {
		return nil, fmt.Errorf("CatalogService is nil")
	}
	return s.catalog.ListDepartments(ctx)
}

// CreateProgram persists a new program for administrators.
func (s *CatalogService) CreateProgram(ctx context.Context, principal Principal, input ProgramInput) (program persistence.Program, err error) {
	if s == nil {
		err = fmt.Errorf("CatalogService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateProgram", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create program", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("program_id", program.ID).InfoContext(ctx, "program created")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	if vErr := validateProgramInput(input); vErr.HasErrors() {
		err = vErr
		return
	}

	if _, dErr := s.catalog.GetDepartment(ctx, input.DepartmentID); dErr != nil {
		if errors.Is(dErr, persistence.ErrNotFound) {
			err = notFoundByID("Department", input.DepartmentID)
			return
		}
		err = dErr
		return
	}

	program, err = s.catalog.CreateProgram(ctx, persistence.Program{
		Name:         strings.TrimSpace(input.Name),
		Code:         strings.TrimSpace(input.Code),
		DepartmentID: input.DepartmentID,
	})
	if err != nil {
		err = mapCatalogWriteError(err, "code", "a program with that code already exists")
	}
	return
}

// UpdateProgram updates an existing program for administrators.
func (s *CatalogService) UpdateProgram(ctx context.Context, principal Principal, id int64, input ProgramInput) (program persistence.Program, err error) {
	if s == nil {
		err = fmt.Errorf("CatalogService is nil")
		return
	}

	logger := s.loggerWith(ctx, "UpdateProgram", "program_id", id, "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update program", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "program updated")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	if vErr := validateProgramInput(input); vErr.HasErrors() {
		err = vErr
		return
	}

	existing, gErr := s.catalog.GetProgram(ctx, id)
	if gErr != nil {
		if errors.Is(gErr, persistence.ErrNotFound) {
			err = notFoundByID("Program", id)
			return
		}
		err = gErr
		return
	}

	if _, dErr := s.catalog.GetDepartment(ctx, input.DepartmentID); dErr != nil {
		if errors.Is(dErr, persistence.ErrNotFound) {
			err = notFoundByID("Department", input.DepartmentID)
			return
		}
		err = dErr
		return
	}

	existing.Name = strings.TrimSpace(input.Name)
	existing.Code = strings.TrimSpace(input.Code)
	existing.DepartmentID = input.DepartmentID

	program, err = s.catalog.UpdateProgram(ctx, existing)
	if err != nil {
		err = mapCatalogWriteError(err, "code", "a program with that code already exists")
	}
	return
}

// DeleteProgram removes a program for administrators. Programs with courses
// cannot be removed.
func (s *CatalogService) DeleteProgram(ctx context.Context, principal Principal, id int64) (err error) {
	if s == nil {
		return fmt.Errorf("CatalogService is nil")
	}

	logger := s.loggerWith(ctx, "DeleteProgram", "program_id", id, "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete program", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "program deleted")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	if err = s.catalog.DeleteProgram(ctx, id); err != nil {
		switch {
		case errors.Is(err, persistence.ErrNotFound):
			err = notFoundByID("Program", id)
		case errors.Is(err, persistence.ErrForeignKeyViolation):
			vErr := &ValidationError{}
			vErr.add("program", "program still contains courses")
			err = vErr
		}
	}
	return
}

// GetProgram returns a single program by id.
func (s *CatalogService) GetProgram(ctx context.Context, id int64) (persistence.Program, error) {
	if s == nil {
		return persistence.Program{}, fmt.Errorf("CatalogService is nil")
	}

	program, err := s.catalog.GetProgram(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Program{}, notFoundByID("Program", id)
		}
		return persistence.Program{}, err
	}
	return program, nil
}

// ListPrograms returns every program ordered by code.
func (s *CatalogService) ListPrograms(ctx context.Context) ([]persistence.Program, error) {
	if s == nil {
		return nil, fmt.Errorf("CatalogService is nil")
	}
	return s.catalog.ListPrograms(ctx)
}

// ListProgramsByDepartment returns the programs offered by one department.
func (s *CatalogService) ListProgramsByDepartment(ctx context.Context, departmentID int64) ([]persistence.Program, error) {
	if s == nil {
		return nil, fmt.Errorf("CatalogService is nil")
	}

	if _, err := s.catalog.GetDepartment(ctx, departmentID); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, notFoundByID("Department", departmentID)
		}
		return nil, err
	}
	return s.catalog.ListProgramsByDepartment(ctx, departmentID)
}

func requireName(field, value string) *ValidationError {
	if strings.TrimSpace(value) != "" {
		return nil
	}
	vErr := &ValidationError{}
	vErr.add(field, "name is required")
	return vErr
}

func validateProgramInput(input ProgramInput) *ValidationError {
	vErr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if strings.TrimSpace(input.Code) == "" {
		vErr.add("code", "code is required")
	}
	if input.DepartmentID <= 0 {
		vErr.add("department_id", "department id is required")
	}
	return vErr
}
