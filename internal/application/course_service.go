package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/classroom-scheduler/internal/persistence"
)

// CourseService manages the course catalog.
type CourseService struct {
	courses persistence.CourseRepository
	catalog persistence.CatalogRepository
	logger  *slog.Logger
}

// NewCourseService constructs a course service with the provided dependencies.
func NewCourseService(courses persistence.CourseRepository, catalog persistence.CatalogRepository) *CourseService {
	return NewCourseServiceWithLogger(courses, catalog, nil)
}

// NewCourseServiceWithLogger constructs a course service with a specified logger.
func NewCourseServiceWithLogger(courses persistence.CourseRepository, catalog persistence.CatalogRepository, logger *slog.Logger) *CourseService {
	return &CourseService{courses: courses, catalog: catalog, logger: defaultLogger(logger)}
}

func (s *CourseService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "CourseService", operation, attrs...)
}

// CreateCourse validates input and persists a new course for administrators.
func (s *CourseService) CreateCourse(ctx context.Context, principal Principal, input CourseInput) (course persistence.Course, err error) {
	if s == nil {
		err = fmt.Errorf("CourseService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateCourse", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create course", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("course_id", course.ID).InfoContext(ctx, "course created")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	if vErr := validateCourseInput(input); vErr.HasErrors() {
		err = vErr
		return
	}

	if _, pErr := s.catalog.GetProgram(ctx, input.ProgramID); pErr != nil {
		if errors.Is(pErr, persistence.ErrNotFound) {
			err = notFoundByID("Program", input.ProgramID)
			return
		}
		err = pErr
		return
	}

	course, err = s.courses.CreateCourse(ctx, persistence.Course{
		CourseCode:  strings.TrimSpace(input.CourseCode),
		Description: strings.TrimSpace(input.Description),
		ProgramID:   input.ProgramID,
	})
	if err != nil {
		err = mapCatalogWriteError(err, "course_code", "a course with that code already exists")
	}
	return
}

// UpdateCourse validates input and updates an existing course for administrators.
func (s *CourseService) UpdateCourse(ctx context.Context, principal Principal, id int64, input CourseInput) (course persistence.Course, err error) {
	if s == nil {
		err = fmt.Errorf("CourseService is nil")
		return
	}

	logger := s.loggerWith(ctx, "UpdateCourse", "course_id", id, "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update course", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "course updated")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	if vErr := validateCourseInput(input); vErr.HasErrors() {
		err = vErr
		return
	}

	existing, gErr := s.courses.GetCourse(ctx, id)
	if gErr != nil {
		if errors.Is(gErr, persistence.ErrNotFound) {
			err = notFoundByID("Course", id)
			return
		}
		err = gErr
		return
	}

	if _, pErr := s.catalog.GetProgram(ctx, input.ProgramID); pErr != nil {
		if errors.Is(pErr, persistence.ErrNotFound) {
			err = notFoundByID("Program", input.ProgramID)
			return
		}
		err = pErr
		return
	}

	existing.CourseCode = strings.TrimSpace(input.CourseCode)
	existing.Description = strings.TrimSpace(input.Description)
	existing.ProgramID = input.ProgramID

	course, err = s.courses.UpdateCourse(ctx, existing)
	if err != nil {
		err = mapCatalogWriteError(err, "course_code", "a course with that code already exists")
	}
	return
}

// DeleteCourse removes a course for administrators. Courses referenced by
// existing schedules cannot be removed.
func (s *CourseService) DeleteCourse(ctx context.Context, principal Principal, id int64) (err error) {
	if s == nil {
		return fmt.Errorf("CourseService is nil")
	}

	logger := s.loggerWith(ctx, "DeleteCourse", "course_id", id, "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete course", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "course deleted")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	if err = s.courses.DeleteCourse(ctx, id); err != nil {
		switch {
		case errors.Is(err, persistence.ErrNotFound):
			err = notFoundByID("Course", id)
		case errors.Is(err, persistence.ErrForeignKeyViolation):
			vErr := &ValidationError{}
			vErr.add("course", "course is referenced by existing schedules")
			err = vErr
		}
	}
	return
}

// GetCourse returns a single course by id.
func (s *CourseService) GetCourse(ctx context.Context, id int64) (persistence.Course, error) {
	if s == nil {
		return persistence.Course{}, fmt.Errorf("CourseService is nil")
	}

	course, err := s.courses.GetCourse(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Course{}, notFoundByID("Course", id)
		}
		return persistence.Course{}, err
	}
	return course, nil
}

// ListCourses returns every course ordered by course code.
func (s *CourseService) ListCourses(ctx context.Context) ([]persistence.Course, error) {
	if s == nil {
		return nil, fmt.Errorf("CourseService is nil")
	}
	return s.courses.ListCourses(ctx)
}

// ListCoursesByProgram returns the courses belonging to one program.
func (s *CourseService) ListCoursesByProgram(ctx context.Context, programID int64) ([]persistence.Course, error) {
	if s == nil {
		return nil, fmt.Errorf("CourseService is nil")
	}

	if _, err := s.catalog.GetProgram(ctx, programID); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, notFoundByID("Program", programID)
		}
		return nil, err
	}
	return s.courses.ListCoursesByProgram(ctx, programID)
}

func validateCourseInput(input CourseInput) *ValidationError {
	vErr := &ValidationError{}
	if strings.TrimSpace(input.CourseCode) == "" {
		vErr.add("course_code", "course code is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		vErr.add("description", "description is required")
	}
	if input.ProgramID <= 0 {
		vErr.add("program_id", "program id is required")
	}
	return vErr
}
