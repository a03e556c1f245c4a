package persistence

import (
	"time"

	"github.com/example/classroom-scheduler/internal/booking"
)

// ScheduleStatus is the approval state of a booking.
type ScheduleStatus string

const (
	StatusPending  ScheduleStatus = "PENDING"
	StatusApproved ScheduleStatus = "APPROVED"
	StatusRejected ScheduleStatus = "REJECTED"
)

// Valid reports whether the status is one of the closed enum values.
func (s ScheduleStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// UserRole distinguishes administrators from faculty members.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleFaculty UserRole = "FACULTY"
)

// Valid reports whether the role is one of the closed enum values.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleFaculty:
		return true
	}
	return false
}

// Building is a campus building housing rooms.
type Building struct {
	ID   int64
	Name string
}

// Department is an academic unit owning programs.
type Department struct {
	ID   int64
	Name string
}

// Program is a degree program offered by a department.
type Program struct {
	ID           int64
	Name         string
	Code         string
	DepartmentID int64
}

// Course is a teachable course belonging to a program.
type Course struct {
	ID          int64
	CourseCode  string
	Description string
	ProgramID   int64
}

// Room is a bookable classroom inside a building.
type Room struct {
	ID           int64
	RoomNumber   string
	BuildingID   int64
	Capacity     int
	HasProjector bool
	HasComputers bool
}

// User is an account that can own schedules.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
}

// Schedule is a single room booking for a date and time window.
type Schedule struct {
	ID             int64
	RoomID         int64
	UserID         int64
	CourseID       int64
	Date           time.Time
	StartTime      booking.TimeOfDay
	EndTime        booking.TimeOfDay
	Status         ScheduleStatus
	CreationDate   time.Time
	LastUpdated    time.Time
	CreatedByEmail string
	UpdatedByEmail string
}

// Session is a persisted refresh-token session for a user. Only the SHA-256
// hash of the refresh token is stored.
type Session struct {
	ID        string
	UserID    int64
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}
