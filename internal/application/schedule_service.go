package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/example/classroom-scheduler/internal/booking"
	"github.com/example/classroom-scheduler/internal/persistence"
	"github.com/example/classroom-scheduler/internal/recurrence"
)

// ScheduleCache caches schedule query results keyed by date. Implementations
// must be safe for concurrent use; a nil cache disables caching.
type ScheduleCache interface {
	GetByDate(ctx context.Context, date time.Time) ([]ScheduleDetail, bool)
	StoreByDate(ctx context.Context, date time.Time, details []ScheduleDetail)
	Invalidate(ctx context.Context)
}

// ScheduleService orchestrates entity validation, conflict checking, status
// transitions, and audit stamping for single, recurring, and batch booking
// operations. It is the only component that mutates booking state.
type ScheduleService struct {
	schedules persistence.ScheduleRepository
	rooms     persistence.RoomRepository
	courses   persistence.CourseRepository
	users     persistence.UserRepository
	expander  *recurrence.Expander
	cache     ScheduleCache
	now       func() time.Time
	logger    *slog.Logger
}

// NewScheduleService wires dependencies for schedule operations.
func NewScheduleService(schedules persistence.ScheduleRepository, rooms persistence.RoomRepository, courses persistence.CourseRepository, users persistence.UserRepository, expander *recurrence.Expander, now func() time.Time) *ScheduleService {
	return NewScheduleServiceWithLogger(schedules, rooms, courses, users, expander, now, nil)
}

// NewScheduleServiceWithLogger constructs a schedule service with a specified logger.
func NewScheduleServiceWithLogger(schedules persistence.ScheduleRepository, rooms persistence.RoomRepository, courses persistence.CourseRepository, users persistence.UserRepository, expander *recurrence.Expander, now func() time.Time, logger *slog.Logger) *ScheduleService {
	if expander == nil {
		expander = recurrence.NewExpander(0)
	}
	if now == nil {
		now = time.Now
	}
	return &ScheduleService{
		schedules: schedules,
		rooms:     rooms,
		courses:   courses,
		users:     users,
		expander:  expander,
		now:       now,
		logger:    defaultLogger(logger),
	}
}

// WithCache attaches a query cache and returns the service for chaining.
func (s *ScheduleService) WithCache(cache ScheduleCache) *ScheduleService {
	s.cache = cache
	return s
}

func (s *ScheduleService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ScheduleService", operation, attrs...)
}

// CreateSchedule validates referenced entities, rejects overlapping bookings,
// and persists a new PENDING schedule audited to its owner.
func (s *ScheduleService) CreateSchedule(ctx context.Context, input ScheduleInput) (detail ScheduleDetail, err error) {
	if s == nil {
		err = fmt.Errorf("ScheduleService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateSchedule",
		"room_id", input.RoomID,
		"date", input.Date.Format("2006-01-02"),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create schedule", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("schedule_id", detail.ID).InfoContext(ctx, "schedule created")
	}()

	if vErr := validateScheduleWindow(input.Date, input.StartTime, input.EndTime); vErr.HasErrors() {
		err = vErr
		return
	}

	refs, rErr := s.resolveRefs(ctx, input.RoomID, input.CourseID, input.UserID)
	if rErr != nil {
		err = rErr
		return
	}

	window := booking.Interval{Start: input.StartTime, End: input.EndTime}
	if err = s.checkConflicts(ctx, refs.room, input.Date, window, 0); err != nil {
		return
	}

	now := s.now().UTC()
	schedule := persistence.Schedule{
		RoomID:         refs.room.ID,
		UserID:         refs.user.ID,
		CourseID:       refs.course.ID,
		Date:           booking.DateOf(input.Date),
		StartTime:      input.StartTime,
		EndTime:        input.EndTime,
		Status:         persistence.StatusPending,
		CreationDate:   now,
		LastUpdated:    now,
		CreatedByEmail: refs.user.Email,
		UpdatedByEmail: refs.user.Email,
	}

	persisted, pErr := s.schedules.CreateSchedule(ctx, schedule)
	if pErr != nil {
		err = s.mapWriteError(ctx, refs.room, input.Date, window, 0, pErr)
		return
	}

	s.invalidateCache(ctx)
	return s.toDetail(ctx, persisted)
}

// UpdateSchedule re-validates entities and conflicts (excluding the schedule
// itself), overwrites the booking fields, and resets the status to PENDING so
// the edited booking goes back through approval.
func (s *ScheduleService) UpdateSchedule(ctx context.Context, id int64, input ScheduleInput) (detail ScheduleDetail, err error) {
	if s == nil {
		err = fmt.Errorf("ScheduleService is nil")
		return
	}

	logger := s.loggerWith(ctx, "UpdateSchedule", "schedule_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update schedule", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "schedule updated")
	}()

	existing, gErr := s.schedules.GetSchedule(ctx, id)
	if gErr != nil {
		err = mapScheduleLookupError(gErr, id)
		return
	}

	if vErr := validateScheduleWindow(input.Date, input.StartTime, input.EndTime); vErr.HasErrors() {
		err = vErr
		return
	}

	refs, rErr := s.resolveRefs(ctx, input.RoomID, input.CourseID, input.UserID)
	if rErr != nil {
		err = rErr
		return
	}

	window := booking.Interval{Start: input.StartTime, End: input.EndTime}
	if err = s.checkConflicts(ctx, refs.room, input.Date, window, id); err != nil {
		return
	}

	updated := existing
	updated.RoomID = refs.room.ID
	updated.UserID = refs.user.ID
	updated.CourseID = refs.course.ID
	updated.Date = booking.DateOf(input.Date)
	updated.StartTime = input.StartTime
	updated.EndTime = input.EndTime
	updated.Status = persistence.StatusPending
	updated.LastUpdated = s.now().UTC()
	updated.UpdatedByEmail = refs.user.Email

	persisted, pErr := s.schedules.UpdateSchedule(ctx, updated)
	if pErr != nil {
		err = s.mapWriteError(ctx, refs.room, input.Date, window, id, pErr)
		return
	}

	s.invalidateCache(ctx)
	return s.toDetail(ctx, persisted)
}

// UpdateScheduleStatus sets the approval status directly. No conflict
// re-check happens here: the booking window is unchanged.
func (s *ScheduleService) UpdateScheduleStatus(ctx context.Context, id int64, status persistence.ScheduleStatus, actor Principal) (detail ScheduleDetail, err error) {
	if s == nil {
		err = fmt.Errorf("ScheduleService is nil")
		return
	}

	logger := s.loggerWith(ctx, "UpdateScheduleStatus", "schedule_id", id, "status", string(status))
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update schedule status", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "schedule status updated")
	}()

	if !status.Valid() {
		vErr := &ValidationError{}
		vErr.add("status", "status must be PENDING, APPROVED, or REJECTED")
		err = vErr
		return
	}

	existing, gErr := s.schedules.GetSchedule(ctx, id)
	if gErr != nil {
		err = mapScheduleLookupError(gErr, id)
		return
	}

	existing.Status = status
	existing.LastUpdated = s.now().UTC()
	if actor.Email != "" {
		existing.UpdatedByEmail = actor.Email
	}

	persisted, pErr := s.schedules.UpdateSchedule(ctx, existing)
	if pErr != nil {
		err = mapScheduleLookupError(pErr, id)
		return
	}

	s.invalidateCache(ctx)
	return s.toDetail(ctx, persisted)
}

// DeleteSchedule removes a booking, reporting a not-found error rather than
// silently succeeding for unknown ids.
func (s *ScheduleService) DeleteSchedule(ctx context.Context, id int64) (err error) {
	if s == nil {
		return fmt.Errorf("ScheduleService is nil")
	}

	logger := s.loggerWith(ctx, "DeleteSchedule", "schedule_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete schedule", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "schedule deleted")
	}()

	if err = s.schedules.DeleteSchedule(ctx, id); err != nil {
		err = mapScheduleLookupError(err, id)
		return
	}

	s.invalidateCache(ctx)
	return nil
}

// CreateRecurringSchedule expands the pattern into concrete dates, checks
// every date for conflicts before writing anything, and then persists the
// whole series in one atomic batch. Any conflicting date aborts the entire
// operation with zero writes.
func (s *ScheduleService) CreateRecurringSchedule(ctx context.Context, input RecurringScheduleInput) (details []ScheduleDetail, err error) {
	if s == nil {
		err = fmt.Errorf("ScheduleService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateRecurringSchedule",
		"room_id", input.RoomID,
		"pattern_start", input.Pattern.StartDate.Format("2006-01-02"),
		"pattern_end", input.Pattern.EndDate.Format("2006-01-02"),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create recurring schedule", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("count", len(details)).InfoContext(ctx, "recurring schedule created")
	}()

	vErr := &ValidationError{}
	if !input.StartTime.Valid() || !input.EndTime.Valid() {
		vErr.add("time", "start and end times must be valid times of day")
	} else if input.StartTime >= input.EndTime {
		vErr.add("time", "start time must be before end time")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	refs, rErr := s.resolveRefs(ctx, input.RoomID, input.CourseID, input.UserID)
	if rErr != nil {
		err = rErr
		return
	}

	dates, eErr := s.expander.Expand(recurrence.Pattern{
		StartDate:  input.Pattern.StartDate,
		EndDate:    input.Pattern.EndDate,
		DaysOfWeek: input.Pattern.DaysOfWeek,
	})
	if eErr != nil {
		err = mapRecurrenceError(eErr)
		return
	}
	logger.DebugContext(ctx, "expanded recurrence pattern", "dates", len(dates))

	window := booking.Interval{Start: input.StartTime, End: input.EndTime}
	if err = s.checkConflictsAcrossDates(ctx, refs.room, dates, window); err != nil {
		return
	}

	now := s.now().UTC()
	schedules := make([]persistence.Schedule, 0, len(dates))
	for _, date := range dates {
		schedules = append(schedules, persistence.Schedule{
			RoomID:         refs.room.ID,
			UserID:         refs.user.ID,
			CourseID:       refs.course.ID,
			Date:           date,
			StartTime:      input.StartTime,
			EndTime:        input.EndTime,
			Status:         persistence.StatusPending,
			CreationDate:   now,
			LastUpdated:    now,
			CreatedByEmail: refs.user.Email,
			UpdatedByEmail: refs.user.Email,
		})
	}

	persisted, pErr := s.schedules.CreateSchedules(ctx, schedules)
	if pErr != nil {
		err = s.mapWriteError(ctx, refs.room, input.Pattern.StartDate, window, 0, pErr)
		return
	}

	s.invalidateCache(ctx)
	return s.toDetails(ctx, persisted)
}

// UpdateScheduleStatusBatch sets the status on every schedule that exists in
// the id list and stamps the acting user's email. Missing ids are logged and
// skipped rather than failing the batch; callers inspect the returned subset
// to detect partial application.
func (s *ScheduleService) UpdateScheduleStatusBatch(ctx context.Context, ids []int64, status persistence.ScheduleStatus, actor Principal) (details []ScheduleDetail, err error) {
	if s == nil {
		err = fmt.Errorf("ScheduleService is nil")
		return
	}

	logger := s.loggerWith(ctx, "UpdateScheduleStatusBatch", "requested", len(ids), "status", string(status))
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to batch update schedule status", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("updated", len(details)).InfoContext(ctx, "schedule status batch updated")
	}()

	if !status.Valid() {
		vErr := &ValidationError{}
		vErr.add("status", "status must be PENDING, APPROVED, or REJECTED")
		err = vErr
		return
	}

	found, lErr := s.schedules.ListSchedulesByIDs(ctx, ids)
	if lErr != nil {
		err = lErr
		return
	}
	if len(found) < len(ids) {
		logger.WarnContext(ctx, "some schedules were not found during batch update",
			"requested", len(ids), "found", len(found))
	}
	if len(found) == 0 {
		return nil, nil
	}

	now := s.now().UTC()
	for i := range found {
		found[i].Status = status
		found[i].LastUpdated = now
		found[i].UpdatedByEmail = actor.Email
	}

	persisted, pErr := s.schedules.UpdateSchedules(ctx, found)
	if pErr != nil {
		err = pErr
		return
	}

	s.invalidateCache(ctx)
	return s.toDetails(ctx, persisted)
}

// DeleteSchedulesBatch removes every schedule that exists in the id list.
// Missing ids are logged and skipped, mirroring the status batch policy.
func (s *ScheduleService) DeleteSchedulesBatch(ctx context.Context, ids []int64) (err error) {
	if s == nil {
		return fmt.Errorf("ScheduleService is nil")
	}

	logger := s.loggerWith(ctx, "DeleteSchedulesBatch", "requested", len(ids))
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to batch delete schedules", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	found, lErr := s.schedules.ListSchedulesByIDs(ctx, ids)
	if lErr != nil {
		err = lErr
		return
	}
	if len(found) < len(ids) {
		logger.WarnContext(ctx, "some schedules were not found during batch delete",
			"requested", len(ids), "found", len(found))
	}
	if len(found) == 0 {
		return nil
	}

	foundIDs := make([]int64, 0, len(found))
	for _, schedule := range found {
		foundIDs = append(foundIDs, schedule.ID)
	}

	if err = s.schedules.DeleteSchedules(ctx, foundIDs); err != nil {
		return
	}

	logger.With("deleted", len(foundIDs)).InfoContext(ctx, "schedule batch deleted")
	s.invalidateCache(ctx)
	return nil
}

// GetSchedule returns a single booking by id.
func (s *ScheduleService) GetSchedule(ctx context.Context, id int64) (ScheduleDetail, error) {
	if s == nil {
		return ScheduleDetail{}, fmt.Errorf("ScheduleService is nil")
	}

	schedule, err := s.schedules.GetSchedule(ctx, id)
	if err != nil {
		return ScheduleDetail{}, mapScheduleLookupError(err, id)
	}
	return s.toDetail(ctx, schedule)
}

// ListSchedules returns every booking ordered by date and start time.
func (s *ScheduleService) ListSchedules(ctx context.Context) ([]ScheduleDetail, error) {
	if s == nil {
		return nil, fmt.Errorf("ScheduleService is nil")
	}

	schedules, err := s.schedules.ListSchedules(ctx)
	if err != nil {
		return nil, err
	}
	return s.toDetails(ctx, schedules)
}

// GetSchedulesByDate returns the bookings for one calendar date, served from
// the query cache when one is configured.
func (s *ScheduleService) GetSchedulesByDate(ctx context.Context, date time.Time) ([]ScheduleDetail, error) {
	if s == nil {
		return nil, fmt.Errorf("ScheduleService is nil")
	}

	date = booking.DateOf(date)
	if s.cache != nil {
		if cached, ok := s.cache.GetByDate(ctx, date); ok {
			return cached, nil
		}
	}

	schedules, err := s.schedules.ListSchedulesByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	details, err := s.toDetails(ctx, schedules)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.StoreByDate(ctx, date, details)
	}
	return details, nil
}

// GetSchedulesByUser returns the bookings owned by a user id.
func (s *ScheduleService) GetSchedulesByUser(ctx context.Context, userID int64) ([]ScheduleDetail, error) {
	if s == nil {
		return nil, fmt.Errorf("ScheduleService is nil")
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, notFoundByID("User", userID)
		}
		return nil, err
	}

	schedules, err := s.schedules.ListSchedulesByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return s.toDetails(ctx, schedules)
}

// GetSchedulesByEmail returns the bookings owned by the user with the given
// email address.
func (s *ScheduleService) GetSchedulesByEmail(ctx context.Context, email string) ([]ScheduleDetail, error) {
	if s == nil {
		return nil, fmt.Errorf("ScheduleService is nil")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, notFoundByEmail("User", email)
		}
		return nil, err
	}

	schedules, err := s.schedules.ListSchedulesByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return s.toDetails(ctx, schedules)
}

type scheduleRefs struct {
	room   persistence.Room
	course persistence.Course
	user   persistence.User
}

func (s *ScheduleService) resolveRefs(ctx context.Context, roomID, courseID, userID int64) (scheduleRefs, error) {
	room, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return scheduleRefs{}, notFoundByID("Room", roomID)
		}
		return scheduleRefs{}, err
	}

	course, err := s.courses.GetCourse(ctx, courseID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return scheduleRefs{}, notFoundByID("Course", courseID)
		}
		return scheduleRefs{}, err
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return scheduleRefs{}, notFoundByID("User", userID)
		}
		return scheduleRefs{}, err
	}

	return scheduleRefs{room: room, course: course, user: user}, nil
}

// checkConflicts fetches the bookings at (room, date) and fails with a
// ConflictError when any of them overlaps the candidate window.
func (s *ScheduleService) checkConflicts(ctx context.Context, room persistence.Room, date time.Time, window booking.Interval, excludeID int64) error {
	existing, err := s.schedules.ListSchedulesByRoomAndDate(ctx, room.ID, booking.DateOf(date))
	if err != nil {
		return err
	}

	conflicts := booking.FindConflicts(toBookings(existing), window, excludeID)
	if len(conflicts) == 0 {
		return nil
	}

	details, err := s.describeConflicts(ctx, existing, conflicts)
	if err != nil {
		return err
	}
	return &ConflictError{RoomNumber: room.RoomNumber, Conflicts: details}
}

// checkConflictsAcrossDates fans the per-date conflict lookups out
// concurrently; the reads are independent and side-effect free. Error
// aggregation waits for every branch so the ConflictError lists every
// conflicting date, ordered by date then start time.
func (s *ScheduleService) checkConflictsAcrossDates(ctx context.Context, room persistence.Room, dates []time.Time, window booking.Interval) error {
	if len(dates) == 0 {
		return nil
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		firstErr  error
		conflicts []persistence.Schedule
	)

	sem := make(chan struct{}, 8)
	for _, date := range dates {
		wg.Add(1)
		go func(date time.Time) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			existing, err := s.schedules.ListSchedulesByRoomAndDate(ctx, room.ID, date)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}

			found := booking.FindConflicts(toBookings(existing), window, 0)
			if len(found) == 0 {
				return
			}

			byID := schedulesByID(existing)
			mu.Lock()
			for _, b := range found {
				conflicts = append(conflicts, byID[b.ID])
			}
			mu.Unlock()
		}(date)
	}
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	if len(conflicts) == 0 {
		return nil
	}

	sort.Slice(conflicts, func(i, j int) bool {
		if conflicts[i].Date.Equal(conflicts[j].Date) {
			return conflicts[i].StartTime < conflicts[j].StartTime
		}
		return conflicts[i].Date.Before(conflicts[j].Date)
	})

	details, err := s.describeConflicts(ctx, conflicts, toBookings(conflicts))
	if err != nil {
		return err
	}
	return &ConflictError{RoomNumber: room.RoomNumber, Conflicts: details}
}

// describeConflicts resolves course and user names for each conflicting
// booking so the error message stands on its own. Lookups are memoized per
// call; a failed lookup falls back to the raw id rather than masking the
// conflict itself.
func (s *ScheduleService) describeConflicts(ctx context.Context, source []persistence.Schedule, conflicts []booking.Booking) ([]ConflictDetail, error) {
	byID := schedulesByID(source)

	courseNames := make(map[int64]persistence.Course)
	userNames := make(map[int64]string)

	details := make([]ConflictDetail, 0, len(conflicts))
	for _, c := range conflicts {
		schedule, ok := byID[c.ID]
		if !ok {
			continue
		}

		course, ok := courseNames[schedule.CourseID]
		if !ok {
			loaded, err := s.courses.GetCourse(ctx, schedule.CourseID)
			if err != nil && !errors.Is(err, persistence.ErrNotFound) {
				return nil, err
			}
			course = loaded
			courseNames[schedule.CourseID] = course
		}

		name, ok := userNames[schedule.UserID]
		if !ok {
			user, err := s.users.GetUser(ctx, schedule.UserID)
			if err != nil && !errors.Is(err, persistence.ErrNotFound) {
				return nil, err
			}
			name = user.Name
			if name == "" {
				name = fmt.Sprintf("user %d", schedule.UserID)
			}
			userNames[schedule.UserID] = name
		}

		details = append(details, ConflictDetail{
			ScheduleID:        schedule.ID,
			Date:              schedule.Date,
			StartTime:         schedule.StartTime,
			EndTime:           schedule.EndTime,
			CourseCode:        course.CourseCode,
			CourseDescription: course.Description,
			AssignedTo:        name,
		})
	}

	return details, nil
}

// mapWriteError converts the storage overlap backstop into the same
// ConflictError a pre-write check produces, so concurrent writers observe
// identical failures.
func (s *ScheduleService) mapWriteError(ctx context.Context, room persistence.Room, date time.Time, window booking.Interval, excludeID int64, err error) error {
	if errors.Is(err, persistence.ErrOverlap) {
		if cErr := s.checkConflicts(ctx, room, date, window, excludeID); cErr != nil {
			return cErr
		}
		return &ConflictError{RoomNumber: room.RoomNumber}
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		vErr := &ValidationError{}
		vErr.add("references", "referenced room, user, or course no longer exists")
		return vErr
	}
	return err
}

func (s *ScheduleService) toDetail(ctx context.Context, schedule persistence.Schedule) (ScheduleDetail, error) {
	details, err := s.toDetails(ctx, []persistence.Schedule{schedule})
	if err != nil {
		return ScheduleDetail{}, err
	}
	if len(details) == 0 {
		return ScheduleDetail{}, fmt.Errorf("schedule %d disappeared during mapping", schedule.ID)
	}
	return details[0], nil
}

// toDetails enriches raw bookings with room, user, and course names. Lookups
// are memoized across the batch so a recurring series of N bookings costs a
// handful of reads, not 3*N.
func (s *ScheduleService) toDetails(ctx context.Context, schedules []persistence.Schedule) ([]ScheduleDetail, error) {
	if len(schedules) == 0 {
		return nil, nil
	}

	rooms := make(map[int64]persistence.Room)
	courses := make(map[int64]persistence.Course)
	users := make(map[int64]persistence.User)
	namesByEmail := make(map[string]string)

	nameForEmail := func(email string) (string, error) {
		if email == "" {
			return "", nil
		}
		if name, ok := namesByEmail[email]; ok {
			return name, nil
		}
		user, err := s.users.GetUserByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, persistence.ErrNotFound) {
				// Audit emails may outlive the account; show the email itself.
				namesByEmail[email] = email
				return email, nil
			}
			return "", err
		}
		namesByEmail[email] = user.Name
		return user.Name, nil
	}

	details := make([]ScheduleDetail, 0, len(schedules))
	for _, schedule := range schedules {
		room, ok := rooms[schedule.RoomID]
		if !ok {
			loaded, err := s.rooms.GetRoom(ctx, schedule.RoomID)
			if err != nil && !errors.Is(err, persistence.ErrNotFound) {
				return nil, err
			}
			room = loaded
			rooms[schedule.RoomID] = room
		}

		course, ok := courses[schedule.CourseID]
		if !ok {
			loaded, err := s.courses.GetCourse(ctx, schedule.CourseID)
			if err != nil && !errors.Is(err, persistence.ErrNotFound) {
				return nil, err
			}
			course = loaded
			courses[schedule.CourseID] = course
		}

		user, ok := users[schedule.UserID]
		if !ok {
			loaded, err := s.users.GetUser(ctx, schedule.UserID)
			if err != nil && !errors.Is(err, persistence.ErrNotFound) {
				return nil, err
			}
			user = loaded
			users[schedule.UserID] = user
		}

		createdByName, err := nameForEmail(schedule.CreatedByEmail)
		if err != nil {
			return nil, err
		}
		updatedByName, err := nameForEmail(schedule.UpdatedByEmail)
		if err != nil {
			return nil, err
		}

		details = append(details, ScheduleDetail{
			Schedule:          schedule,
			RoomNumber:        room.RoomNumber,
			UserName:          user.Name,
			CourseCode:        course.CourseCode,
			CourseDescription: course.Description,
			CreatedByName:     createdByName,
			UpdatedByName:     updatedByName,
		})
	}

	return details, nil
}

func (s *ScheduleService) invalidateCache(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

func validateScheduleWindow(date time.Time, start, end booking.TimeOfDay) *ValidationError {
	vErr := &ValidationError{}
	if date.IsZero() {
		vErr.add("date", "date is required")
	}
	if !start.Valid() || !end.Valid() {
		vErr.add("time", "start and end times must be valid times of day")
	} else if start >= end {
		vErr.add("time", "start time must be before end time")
	}
	return vErr
}

func mapScheduleLookupError(err error, id int64) error {
	if errors.Is(err, persistence.ErrNotFound) {
		return notFoundByID("Schedule", id)
	}
	return err
}

func mapRecurrenceError(err error) error {
	vErr := &ValidationError{}
	switch {
	case errors.Is(err, recurrence.ErrWindowInverted):
		vErr.add("recurrence_pattern", "end date must not precede start date")
	case errors.Is(err, recurrence.ErrNoWeekdays):
		vErr.add("recurrence_pattern", "at least one weekday is required")
	case errors.Is(err, recurrence.ErrInvalidWeekday):
		vErr.add("recurrence_pattern", "weekdays must be between 0 (Sunday) and 6 (Saturday)")
	case errors.Is(err, recurrence.ErrTooManyOccurrences):
		vErr.add("recurrence_pattern", "pattern generates too many dates")
	default:
		return err
	}
	return vErr
}

func toBookings(schedules []persistence.Schedule) []booking.Booking {
	out := make([]booking.Booking, 0, len(schedules))
	for _, s := range schedules {
		out = append(out, booking.Booking{
			ID:     s.ID,
			RoomID: s.RoomID,
			Date:   s.Date,
			Start:  s.StartTime,
			End:    s.EndTime,
		})
	}
	return out
}

func schedulesByID(schedules []persistence.Schedule) map[int64]persistence.Schedule {
	byID := make(map[int64]persistence.Schedule, len(schedules))
	for _, s := range schedules {
		byID[s.ID] = s
	}
	return byID
}
