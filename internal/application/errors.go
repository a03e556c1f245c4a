package application

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/example/classroom-scheduler/internal/booking"
)

var (
	// ErrUnauthorized is returned when the acting principal lacks permission
	// for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrConflict is returned when a booking overlaps an existing schedule.
	ErrConflict = errors.New("application: schedule conflict")
	// ErrInvalidCredentials is returned when authentication fails.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrSessionExpired is returned when a refresh token has expired.
	ErrSessionExpired = errors.New("application: session expired")
	// ErrSessionRevoked is returned when a refresh token has been revoked.
	ErrSessionRevoked = errors.New("application: session revoked")
)

// NotFoundError identifies which entity a failed lookup referred to.
type NotFoundError struct {
	Resource string
	Key      string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found with %s", e.Resource, e.Key)
}

// Is makes NotFoundError match ErrNotFound through errors.Is.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func notFoundByID(resource string, id int64) *NotFoundError {
	return &NotFoundError{Resource: resource, Key: fmt.Sprintf("id: %d", id)}
}

func notFoundByEmail(resource, email string) *NotFoundError {
	return &NotFoundError{Resource: resource, Key: fmt.Sprintf("email: %s", email)}
}

// ConflictDetail describes one existing booking that blocks a request.
type ConflictDetail struct {
	ScheduleID        int64
	Date              time.Time
	StartTime         booking.TimeOfDay
	EndTime           booking.TimeOfDay
	CourseCode        string
	CourseDescription string
	AssignedTo        string
}

// ConflictError enumerates every booking that conflicts with a request so
// callers can disambiguate without a follow-up query. Details are ordered by
// date, then start time.
type ConflictError struct {
	RoomNumber string
	Conflicts  []ConflictDetail
}

// Error renders the full human-readable conflict listing.
func (e *ConflictError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Room %s has scheduling conflicts:", e.RoomNumber)
	for _, c := range e.Conflicts {
		fmt.Fprintf(&b, "\n• %s from %s to %s for %s - %s (assigned to %s)",
			booking.FormatDate(c.Date),
			c.StartTime.Clock(),
			c.EndTime.Clock(),
			c.CourseCode,
			c.CourseDescription,
			c.AssignedTo,
		)
	}
	return b.String()
}

// Is makes ConflictError match ErrConflict through errors.Is.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// ValidationError captures field level validation issues that callers can
// surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil || len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
