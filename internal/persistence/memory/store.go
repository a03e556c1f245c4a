// Package memory provides a map-backed implementation of the persistence
// repositories. It mirrors the SQLite store's semantics (sentinel errors,
// referential integrity, the overlap backstop) so services can be tested
// without a database file.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/classroom-scheduler/internal/persistence"
)

// Store holds every entity in maps guarded by one mutex.
type Store struct {
	mu sync.RWMutex

	nextID    int64
	buildings map[int64]persistence.Building
	depts     map[int64]persistence.Department
	programs  map[int64]persistence.Program
	courses   map[int64]persistence.Course
	rooms     map[int64]persistence.Room
	users     map[int64]persistence.User
	schedules map[int64]persistence.Schedule
	sessions  map[string]persistence.Session
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		buildings: make(map[int64]persistence.Building),
		depts:     make(map[int64]persistence.Department),
		programs:  make(map[int64]persistence.Program),
		courses:   make(map[int64]persistence.Course),
		rooms:     make(map[int64]persistence.Room),
		users:     make(map[int64]persistence.User),
		schedules: make(map[int64]persistence.Schedule),
		sessions:  make(map[string]persistence.Session),
	}
}

func (s *Store) allocID() int64 {
	s.nextID++
	return s.nextID
}

// sameDay compares calendar dates ignoring time of day.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// overlapLocked reports whether a schedule's window intersects any existing
// schedule in the same room on the same date, excluding excludeID.
func (s *Store) overlapLocked(candidate persistence.Schedule, excludeID int64) bool {
	for _, existing := range s.schedules {
		if existing.ID == excludeID {
			continue
		}
		if existing.RoomID != candidate.RoomID || !sameDay(existing.Date, candidate.Date) {
			continue
		}
		if candidate.StartTime < existing.EndTime && existing.StartTime < candidate.EndTime {
			return true
		}
	}
	return false
}

// CreateSchedule inserts a booking, enforcing the overlap backstop.
func (s *Store) CreateSchedule(ctx context.Context, schedule persistence.Schedule) (persistence.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.overlapLocked(schedule, 0) {
		return persistence.Schedule{}, persistence.ErrOverlap
	}
	schedule.ID = s.allocID()
	s.schedules[schedule.ID] = schedule
	return schedule, nil
}

// CreateSchedules inserts a batch atomically.
func (s *Store) CreateSchedules(ctx context.Context, schedules []persistence.Schedule) ([]persistence.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate the whole batch before writing anything, including overlaps
	// between batch members themselves.
	staged := make([]persistence.Schedule, 0, len(schedules))
	for _, schedule := range schedules {
		if s.overlapLocked(schedule, 0) {
			return nil, persistence.ErrOverlap
		}
		for _, other := range staged {
			if other.RoomID == schedule.RoomID && sameDay(other.Date, schedule.Date) &&
				schedule.StartTime < other.EndTime && other.StartTime < schedule.EndTime {
				return nil, persistence.ErrOverlap
			}
		}
		staged = append(staged, schedule)
	}

	created := make([]persistence.Schedule, 0, len(staged))
	for _, schedule := range staged {
		schedule.ID = s.allocID()
		s.schedules[schedule.ID] = schedule
		created = append(created, schedule)
	}
	return created, nil
}

// GetSchedule retrieves a booking by id.
func (s *Store) GetSchedule(ctx context.Context, id int64) (persistence.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	schedule, ok := s.schedules[id]
	if !ok {
		return persistence.Schedule{}, persistence.ErrNotFound
	}
	return schedule, nil
}

// UpdateSchedule overwrites a booking, re-running the overlap backstop.
func (s *Store) UpdateSchedule(ctx context.Context, schedule persistence.Schedule) (persistence.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.schedules[schedule.ID]; !ok {
		return persistence.Schedule{}, persistence.ErrNotFound
	}
	if s.overlapLocked(schedule, schedule.ID) {
		return persistence.Schedule{}, persistence.ErrOverlap
	}
	s.schedules[schedule.ID] = schedule
	return schedule, nil
}

// UpdateSchedules applies status updates to a batch atomically.
func (s *Store) UpdateSchedules(ctx context.Context, schedules []persistence.Schedule) ([]persistence.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, schedule := range schedules {
		if _, ok := s.schedules[schedule.ID]; !ok {
			return nil, persistence.ErrNotFound
		}
	}

	updated := make([]persistence.Schedule, 0, len(schedules))
	for _, schedule := range schedules {
		existing := s.schedules[schedule.ID]
		existing.Status = schedule.Status
		existing.LastUpdated = schedule.LastUpdated
		existing.UpdatedByEmail = schedule.UpdatedByEmail
		s.schedules[schedule.ID] = existing
		updated = append(updated, existing)
	}
	sortSchedules(updated)
	return updated, nil
}

// DeleteSchedule removes a booking by id.
func (s *Store) DeleteSchedule(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.schedules[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.schedules, id)
	return nil
}

// DeleteSchedules removes a batch atomically. Every id must exist.
func (s *Store) DeleteSchedules(ctx context.Context, ids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if _, ok := s.schedules[id]; !ok {
			return persistence.ErrNotFound
		}
	}
	for _, id := range ids {
		delete(s.schedules, id)
	}
	return nil
}

// ListSchedules returns every booking ordered by date then start time.
func (s *Store) ListSchedules(ctx context.Context) ([]persistence.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterSchedules(func(persistence.Schedule) bool { return true }), nil
}

// ListSchedulesByRoomAndDate returns the bookings for one room on one date.
func (s *Store) ListSchedulesByRoomAndDate(ctx context.Context, roomID int64, date time.Time) ([]persistence.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterSchedules(func(schedule persistence.Schedule) bool {
		return schedule.RoomID == roomID && sameDay(schedule.Date, date)
	}), nil
}

// ListSchedulesByUser returns the bookings owned by one user.
func (s *Store) ListSchedulesByUser(ctx context.Context, userID int64) ([]persistence.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterSchedules(func(schedule persistence.Schedule) bool {
		return schedule.UserID == userID
	}), nil
}

// ListSchedulesByDate returns the bookings on one calendar date.
func (s *Store) ListSchedulesByDate(ctx context.Context, date time.Time) ([]persistence.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterSchedules(func(schedule persistence.Schedule) bool {
		return sameDay(schedule.Date, date)
	}), nil
}

// ListSchedulesByIDs returns the subset of the given ids that exist.
func (s *Store) ListSchedulesByIDs(ctx context.Context, ids []int64) ([]persistence.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var schedules []persistence.Schedule
	for _, id := range ids {
		if schedule, ok := s.schedules[id]; ok {
			schedules = append(schedules, schedule)
		}
	}
	sortSchedules(schedules)
	return schedules, nil
}

func (s *Store) filterSchedules(keep func(persistence.Schedule) bool) []persistence.Schedule {
	var schedules []persistence.Schedule
	for _, schedule := range s.schedules {
		if keep(schedule) {
			schedules = append(schedules, schedule)
		}
	}
	sortSchedules(schedules)
	return schedules
}

func sortSchedules(schedules []persistence.Schedule) {
	sort.Slice(schedules, func(i, j int) bool {
		if !schedules[i].Date.Equal(schedules[j].Date) {
			return schedules[i].Date.Before(schedules[j].Date)
		}
		if schedules[i].StartTime != schedules[j].StartTime {
			return schedules[i].StartTime < schedules[j].StartTime
		}
		return schedules[i].ID < schedules[j].ID
	})
}
