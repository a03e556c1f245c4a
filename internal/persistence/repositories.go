package persistence

import (
	"context"
	"time"
)

// ScheduleRepository stores bookings. Batch operations are atomic: either
// every element is written or none is.
type ScheduleRepository interface {
	CreateSchedule(ctx context.Context, schedule Schedule) (Schedule, error)
	CreateSchedules(ctx context.Context, schedules []Schedule) ([]Schedule, error)
	GetSchedule(ctx context.Context, id int64) (Schedule, error)
	UpdateSchedule(ctx context.Context, schedule Schedule) (Schedule, error)
	UpdateSchedules(ctx context.Context, schedules []Schedule) ([]Schedule, error)
	DeleteSchedule(ctx context.Context, id int64) error
	DeleteSchedules(ctx context.Context, ids []int64) error
	ListSchedules(ctx context.Context) ([]Schedule, error)
	ListSchedulesByRoomAndDate(ctx context.Context, roomID int64, date time.Time) ([]Schedule, error)
	ListSchedulesByUser(ctx context.Context, userID int64) ([]Schedule, error)
	ListSchedulesByDate(ctx context.Context, date time.Time) ([]Schedule, error)
	ListSchedulesByIDs(ctx context.Context, ids []int64) ([]Schedule, error)
}

// RoomRepository stores classroom catalog entries.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) (Room, error)
	GetRoom(ctx context.Context, id int64) (Room, error)
	UpdateRoom(ctx context.Context, room Room) (Room, error)
	DeleteRoom(ctx context.Context, id int64) error
	ListRooms(ctx context.Context) ([]Room, error)
	ListRoomsByBuilding(ctx context.Context, buildingID int64) ([]Room, error)
}

// UserRepository stores user accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) (User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	UpdateUser(ctx context.Context, user User) (User, error)
	DeleteUser(ctx context.Context, id int64) error
	ListUsers(ctx context.Context) ([]User, error)
}

// CourseRepository stores courses.
type CourseRepository interface {
	CreateCourse(ctx context.Context, course Course) (Course, error)
	GetCourse(ctx context.Context, id int64) (Course, error)
	UpdateCourse(ctx context.Context, course Course) (Course, error)
	DeleteCourse(ctx context.Context, id int64) error
	ListCourses(ctx context.Context) ([]Course, error)
	ListCoursesByProgram(ctx context.Context, programID int64) ([]Course, error)
}

// CatalogRepository stores the building/department/program reference data.
type CatalogRepository interface {
	CreateBuilding(ctx context.Context, building Building) (Building, error)
	GetBuilding(ctx context.Context, id int64) (Building, error)
	UpdateBuilding(ctx context.Context, building Building) (Building, error)
	DeleteBuilding(ctx context.Context, id int64) error
	ListBuildings(ctx context.Context) ([]Building, error)

	CreateDepartment(ctx context.Context, department Department) (Department, error)
	GetDepartment(ctx context.Context, id int64) (Department, error)
	UpdateDepartment(ctx context.Context, department Department) (Department, error)
	DeleteDepartment(ctx context.Context, id int64) error
	ListDepartments(ctx context.Context) ([]Department, error)

	CreateProgram(ctx context.Context, program Program) (Program, error)
	GetProgram(ctx context.Context, id int64) (Program, error)
	UpdateProgram(ctx context.Context, program Program) (Program, error)
	DeleteProgram(ctx context.Context, id int64) error
	ListPrograms(ctx context.Context) ([]Program, error)
	ListProgramsByDepartment(ctx context.Context, departmentID int64) ([]Program, error)
}

// SessionRepository stores refresh-token sessions.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (Session, error)
	RevokeSession(ctx context.Context, id string, revokedAt time.Time) error
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}
