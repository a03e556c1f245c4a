package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/classroom-scheduler/internal/booking"
	"github.com/example/classroom-scheduler/internal/persistence"
)

const dateLayout = "2006-01-02"

// ScheduleRepository implements persistence.ScheduleRepository using SQLite.
type ScheduleRepository struct {
	store *Store
}

// NewScheduleRepository creates a new SQLite schedule repository.
func NewScheduleRepository(store *Store) *ScheduleRepository {
	return &ScheduleRepository{store: store}
}

const scheduleColumns = `id, room_id, user_id, course_id, date, start_time, end_time,
	status, creation_date, last_updated, created_by_email, updated_by_email`

// CreateSchedule inserts a booking. A final overlap check runs inside the
// insert transaction so two concurrent writers cannot both slip past the
// service-level check.
func (r *ScheduleRepository) CreateSchedule(ctx context.Context, schedule persistence.Schedule) (persistence.Schedule, error) {
	var created persistence.Schedule
	err := r.store.WithTransaction(ctx, func(tx *sql.Tx) error {
		var err error
		created, err = insertSchedule(tx, schedule)
		return err
	})
	if err != nil {
		return persistence.Schedule{}, err
	}
	return created, nil
}

// CreateSchedules inserts a batch atomically: any overlap or insert failure
// rolls back every row.
func (r *ScheduleRepository) CreateSchedules(ctx context.Context, schedules []persistence.Schedule) ([]persistence.Schedule, error) {
	if len(schedules) == 0 {
		return nil, nil
	}

	created := make([]persistence.Schedule, 0, len(schedules))
	err := r.store.WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, schedule := range schedules {
			persisted, err := insertSchedule(tx, schedule)
			if err != nil {
				return err
			}
			created = append(created, persisted)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetSchedule retrieves a booking by id.
func (r *ScheduleRepository) GetSchedule(ctx context.Context, id int64) (persistence.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE id = ?`
	schedule, err := scanSchedule(r.store.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return persistence.Schedule{}, mapError(err)
	}
	return schedule, nil
}

// UpdateSchedule overwrites a booking, re-running the overlap backstop with
// the booking itself excluded.
func (r *ScheduleRepository) UpdateSchedule(ctx context.Context, schedule persistence.Schedule) (persistence.Schedule, error) {
	err := r.store.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := checkOverlapTx(tx, schedule); err != nil {
			return err
		}

		result, err := tx.Exec(`
			UPDATE schedules
			SET room_id = ?, user_id = ?, course_id = ?, date = ?, start_time = ?, end_time = ?,
				status = ?, last_updated = ?, updated_by_email = ?
			WHERE id = ?`,
			schedule.RoomID,
			schedule.UserID,
			schedule.CourseID,
			schedule.Date.Format(dateLayout),
			int(schedule.StartTime),
			int(schedule.EndTime),
			string(schedule.Status),
			schedule.LastUpdated.UTC().Format(time.RFC3339),
			schedule.UpdatedByEmail,
			schedule.ID,
		)
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
	})
	if err != nil {
		return persistence.Schedule{}, err
	}
	return r.GetSchedule(ctx, schedule.ID)
}

// UpdateSchedules applies field updates to a batch atomically. Status-only
// batch updates never move the booking window, so no overlap check runs.
func (r *ScheduleRepository) UpdateSchedules(ctx context.Context, schedules []persistence.Schedule) ([]persistence.Schedule, error) {
	if len(schedules) == 0 {
		return nil, nil
	}

	err := r.store.WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, schedule := range schedules {
			result, err := tx.Exec(`
				UPDATE schedules
				SET status = ?, last_updated = ?, updated_by_email = ?
				WHERE id = ?`,
				string(schedule.Status),
				schedule.LastUpdated.UTC().Format(time.RFC3339),
				schedule.UpdatedByEmail,
				schedule.ID,
			)
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
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(schedules))
	for _, schedule := range schedules {
		ids = append(ids, schedule.ID)
	}
	return r.ListSchedulesByIDs(ctx, ids)
}

// DeleteSchedule removes a booking by id.
func (r *ScheduleRepository) DeleteSchedule(ctx context.Context, id int64) error {
	result, err := r.store.db.ExecContext(ctx, `DELETE FROM schedules WHERE id = ?`, id)
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

// DeleteSchedules removes a batch atomically. Every id must exist.
func (r *ScheduleRepository) DeleteSchedules(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	return r.store.WithTransaction(ctx, func(tx *sql.Tx) error {
		query := `DELETE FROM schedules WHERE id IN (` + placeholders(len(ids)) + `)`
		result, err := tx.Exec(query, int64Args(ids)...)
		if err != nil {
			return mapError(err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected != int64(len(ids)) {
			return persistence.ErrNotFound
		}
		return nil
	})
}

// ListSchedules returns every booking ordered by date then start time.
func (r *ScheduleRepository) ListSchedules(ctx context.Context) ([]persistence.Schedule, error) {
	return r.querySchedules(ctx,
		`SELECT `+scheduleColumns+` FROM schedules ORDER BY date ASC, start_time ASC, id ASC`)
}

// ListSchedulesByRoomAndDate returns the bookings for one room on one date.
func (r *ScheduleRepository) ListSchedulesByRoomAndDate(ctx context.Context, roomID int64, date time.Time) ([]persistence.Schedule, error) {
	return r.querySchedules(ctx,
		`SELECT `+scheduleColumns+` FROM schedules WHERE room_id = ? AND date = ? ORDER BY start_time ASC, id ASC`,
		roomID, date.Format(dateLayout))
}

// ListSchedulesByUser returns the bookings owned by one user.
func (r *ScheduleRepository) ListSchedulesByUser(ctx context.Context, userID int64) ([]persistence.Schedule, error) {
	return r.querySchedules(ctx,
		`SELECT `+scheduleColumns+` FROM schedules WHERE user_id = ? ORDER BY date ASC, start_time ASC, id ASC`,
		userID)
}

// ListSchedulesByDate returns the bookings on one calendar date.
func (r *ScheduleRepository) ListSchedulesByDate(ctx context.Context, date time.Time) ([]persistence.Schedule, error) {
	return r.querySchedules(ctx,
		`SELECT `+scheduleColumns+` FROM schedules WHERE date = ? ORDER BY start_time ASC, id ASC`,
		date.Format(dateLayout))
}

// ListSchedulesByIDs returns the subset of the given ids that exist,
// ordered by date then start time. Missing ids are not an error.
func (r *ScheduleRepository) ListSchedulesByIDs(ctx context.Context, ids []int64) ([]persistence.Schedule, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE id IN (` + placeholders(len(ids)) + `) ORDER BY date ASC, start_time ASC, id ASC`
	return r.querySchedules(ctx, query, int64Args(ids)...)
}

func (r *ScheduleRepository) querySchedules(ctx context.Context, query string, args ...any) ([]persistence.Schedule, error) {
	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var schedules []persistence.Schedule
	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			return nil, mapError(err)
		}
		schedules = append(schedules, schedule)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return schedules, nil
}

func insertSchedule(tx *sql.Tx, schedule persistence.Schedule) (persistence.Schedule, error) {
	if err := checkOverlapTx(tx, schedule); err != nil {
		return persistence.Schedule{}, err
	}

	result, err := tx.Exec(`
		INSERT INTO schedules (room_id, user_id, course_id, date, start_time, end_time,
			status, creation_date, last_updated, created_by_email, updated_by_email)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		schedule.RoomID,
		schedule.UserID,
		schedule.CourseID,
		schedule.Date.Format(dateLayout),
		int(schedule.StartTime),
		int(schedule.EndTime),
		string(schedule.Status),
		schedule.CreationDate.UTC().Format(time.RFC3339),
		schedule.LastUpdated.UTC().Format(time.RFC3339),
		schedule.CreatedByEmail,
		schedule.UpdatedByEmail,
	)
	if err != nil {
		return persistence.Schedule{}, mapError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistence.Schedule{}, fmt.Errorf("failed to get inserted id: %w", err)
	}
	schedule.ID = id
	return schedule, nil
}

// checkOverlapTx is the storage-level backstop for the half-open interval
// rule: within one room and date, [start, end) windows must not intersect.
func checkOverlapTx(tx *sql.Tx, schedule persistence.Schedule) error {
	var count int
	err := tx.QueryRow(`
		SELECT COUNT(*) FROM schedules
		WHERE room_id = ? AND date = ? AND id != ? AND start_time < ? AND ? < end_time`,
		schedule.RoomID,
		schedule.Date.Format(dateLayout),
		schedule.ID,
		int(schedule.EndTime),
		int(schedule.StartTime),
	).Scan(&count)
	if err != nil {
		return mapError(err)
	}
	if count > 0 {
		return persistence.ErrOverlap
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSchedule(row rowScanner) (persistence.Schedule, error) {
	var (
		schedule             persistence.Schedule
		dateStr              string
		startMin, endMin     int
		status               string
		createdStr, updated  string
	)
	err := row.Scan(
		&schedule.ID,
		&schedule.RoomID,
		&schedule.UserID,
		&schedule.CourseID,
		&dateStr,
		&startMin,
		&endMin,
		&status,
		&createdStr,
		&updated,
		&schedule.CreatedByEmail,
		&schedule.UpdatedByEmail,
	)
	if err != nil {
		return persistence.Schedule{}, err
	}

	if schedule.Date, err = time.ParseInLocation(dateLayout, dateStr, time.UTC); err != nil {
		return persistence.Schedule{}, fmt.Errorf("failed to parse date: %w", err)
	}
	schedule.StartTime = booking.TimeOfDay(startMin)
	schedule.EndTime = booking.TimeOfDay(endMin)
	schedule.Status = persistence.ScheduleStatus(status)
	if schedule.CreationDate, err = time.Parse(time.RFC3339, createdStr); err != nil {
		return persistence.Schedule{}, fmt.Errorf("failed to parse creation_date: %w", err)
	}
	if schedule.LastUpdated, err = time.Parse(time.RFC3339, updated); err != nil {
		return persistence.Schedule{}, fmt.Errorf("failed to parse last_updated: %w", err)
	}
	return schedule, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func int64Args(ids []int64) []any {
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	return args
}
