package sqlite

import (
	"context"
	"fmt"

	"github.com/example/classroom-scheduler/internal/persistence"
)

// CourseRepository implements persistence.CourseRepository using SQLite.
type CourseRepository struct {
	store *Store
}

// NewCourseRepository creates a new SQLite course repository.
func NewCourseRepository(store *Store) *CourseRepository {
	return &CourseRepository{store: store}
}

const courseColumns = `id, course_code, description, program_id`

// CreateCourse inserts a new course.
func (r *CourseRepository) CreateCourse(ctx context.Context, course persistence.Course) (persistence.Course, error) {
	result, err := r.store.db.ExecContext(ctx, `
		INSERT INTO courses (course_code, description, program_id)
		VALUES (?, ?, ?)`,
		course.CourseCode, course.Description, course.ProgramID,
	)
	if err != nil {
		return persistence.Course{}, mapError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistence.Course{}, fmt.Errorf("failed to get inserted id: %w", err)
	}
	course.ID = id
	return course, nil
}

// GetCourse retrieves a course by id.
func (r *CourseRepository) GetCourse(ctx context.Context, id int64) (persistence.Course, error) {
	var course persistence.Course
	err := r.store.db.QueryRowContext(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE id = ?`, id,
	).Scan(&course.ID, &course.CourseCode, &course.Description, &course.ProgramID)
	if err != nil {
		return persistence.Course{}, mapError(err)
	}
	return course, nil
}

// UpdateCourse overwrites an existing course.
func (r *CourseRepository) UpdateCourse(ctx context.Context, course persistence.Course) (persistence.Course, error) {
	result, err := r.store.db.ExecContext(ctx, `
		UPDATE courses
		SET course_code = ?, description = ?, program_id = ?
		WHERE id = ?`,
		course.CourseCode, course.Description, course.ProgramID, course.ID,
	)
	if err != nil {
		return persistence.Course{}, mapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.Course{}, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.Course{}, persistence.ErrNotFound
	}
	return course, nil
}

// DeleteCourse removes a course. Courses referenced by schedules fail with a
// foreign key violation.
func (r *CourseRepository) DeleteCourse(ctx context.Context, id int64) error {
	result, err := r.store.db.ExecContext(ctx, `DELETE FROM courses WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// ListCourses returns all courses ordered by course code.
func (r *CourseRepository) ListCourses(ctx context.Context) ([]persistence.Course, error) {
	return r.queryCourses(ctx, `SELECT `+courseColumns+` FROM courses ORDER BY course_code ASC, id ASC`)
}

// ListCoursesByProgram returns the courses in one program ordered by course code.
func (r *CourseRepository) ListCoursesByProgram(ctx context.Context, programID int64) ([]persistence.Course, error) {
	return r.queryCourses(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE program_id = ? ORDER BY course_code ASC, id ASC`,
		programID)
}

func (r *CourseRepository) queryCourses(ctx context.Context, query string, args ...any) ([]persistence.Course, error) {
	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var courses []persistence.Course
	for rows.Next() {
		var course persistence.Course
		if err := rows.Scan(&course.ID, &course.CourseCode, &course.Description, &course.ProgramID); err != nil {
			return nil, mapError(err)
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return courses, nil
}
