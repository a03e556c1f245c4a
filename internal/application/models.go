package application

import (
	"time"

	"github.com/example/classroom-scheduler/internal/booking"
	"github.com/example/classroom-scheduler/internal/persistence"
)

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID  int64
	Email   string
	IsAdmin bool
}

// ScheduleInput captures caller provided booking fields for create and update.
type ScheduleInput struct {
	RoomID    int64
	UserID    int64
	CourseID  int64
	Date      time.Time
	StartTime booking.TimeOfDay
	EndTime   booking.TimeOfDay
}

// RecurringScheduleInput pairs the shared booking fields with the recurrence
// pattern that generates the concrete dates.
type RecurringScheduleInput struct {
	RoomID    int64
	UserID    int64
	CourseID  int64
	StartTime booking.TimeOfDay
	EndTime   booking.TimeOfDay
	Pattern   RecurrencePattern
}

// RecurrencePattern is a date range plus weekday selectors (0=Sunday).
// It is transient: only the dates it generates are ever persisted.
type RecurrencePattern struct {
	StartDate  time.Time
	EndDate    time.Time
	DaysOfWeek []int
}

// ScheduleDetail is a booking enriched with the names a caller needs to
// present it without further lookups.
type ScheduleDetail struct {
	persistence.Schedule
	RoomNumber        string
	UserName          string
	CourseCode        string
	CourseDescription string
	CreatedByName     string
	UpdatedByName     string
}

// BuildingInput captures caller provided building fields.
type BuildingInput struct {
	Name string
}

// DepartmentInput captures caller provided department fields.
type DepartmentInput struct {
	Name string
}

// ProgramInput captures caller provided program fields.
type ProgramInput struct {
	Name         string
	Code         string
	DepartmentID int64
}

// CourseInput captures caller provided course fields.
type CourseInput struct {
	CourseCode  string
	Description string
	ProgramID   int64
}

// RoomInput captures caller provided room fields.
type RoomInput struct {
	RoomNumber   string
	BuildingID   int64
	Capacity     int
	HasProjector bool
	HasComputers bool
}

// UserInput captures caller provided user fields. Password is only honored
// on create; updates keep the stored hash.
type UserInput struct {
	Name     string
	Email    string
	Password string
	Role     persistence.UserRole
}
