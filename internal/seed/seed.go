// Package seed populates a fresh database with the reference data a new
// deployment needs: two known accounts, the campus buildings and rooms, and
// a starter course catalog.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/classroom-scheduler/internal/application"
	"github.com/example/classroom-scheduler/internal/persistence"
)

// Repositories collects the stores the initializer writes to.
type Repositories struct {
	Users   persistence.UserRepository
	Rooms   persistence.RoomRepository
	Courses persistence.CourseRepository
	Catalog persistence.CatalogRepository
}

// Run seeds reference data. It is idempotent: when any user already exists
// the database is considered initialized and nothing is written.
func Run(ctx context.Context, repos Repositories, adminPassword, facultyPassword string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	existing, err := repos.Users.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to check for existing users: %w", err)
	}
	if len(existing) > 0 {
		logger.InfoContext(ctx, "seed skipped, database already initialized", "users", len(existing))
		return nil
	}

	adminHash, err := application.HashPassword(adminPassword, application.DefaultArgon2idParams)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	facultyHash, err := application.HashPassword(facultyPassword, application.DefaultArgon2idParams)
	if err != nil {
		return fmt.Errorf("failed to hash faculty password: %w", err)
	}

	users := []persistence.User{
		{Name: "System Administrator", Email: "admin@college.edu", PasswordHash: adminHash, Role: persistence.RoleAdmin},
		{Name: "Faculty Member", Email: "faculty@college.edu", PasswordHash: facultyHash, Role: persistence.RoleFaculty},
	}
	for _, user := range users {
		if _, err := repos.Users.CreateUser(ctx, user); err != nil {
			return fmt.Errorf("failed to seed user %s: %w", user.Email, err)
		}
	}

	buildingIDs := make(map[string]int64)
	for _, name := range []string{"Science and Technology Building", "Library Building", "Administration Building"} {
		building, err := repos.Catalog.CreateBuilding(ctx, persistence.Building{Name: name})
		if err != nil {
			return fmt.Errorf("failed to seed building %s: %w", name, err)
		}
		buildingIDs[name] = building.ID
	}

	rooms := []persistence.Room{
		{RoomNumber: "ST101", BuildingID: buildingIDs["Science and Technology Building"], Capacity: 40, HasProjector: true, HasComputers: false},
		{RoomNumber: "ST111A", BuildingID: buildingIDs["Science and Technology Building"], Capacity: 30, HasProjector: true, HasComputers: true},
		{RoomNumber: "ST208", BuildingID: buildingIDs["Science and Technology Building"], Capacity: 45, HasProjector: true, HasComputers: false},
		{RoomNumber: "ST411", BuildingID: buildingIDs["Science and Technology Building"], Capacity: 35, HasProjector: false, HasComputers: true},
		{RoomNumber: "LIB101", BuildingID: buildingIDs["Library Building"], Capacity: 25, HasProjector: true, HasComputers: true},
		{RoomNumber: "ADM201", BuildingID: buildingIDs["Administration Building"], Capacity: 20, HasProjector: false, HasComputers: false},
	}
	for _, room := range rooms {
		if _, err := repos.Rooms.CreateRoom(ctx, room); err != nil {
			return fmt.Errorf("failed to seed room %s: %w", room.RoomNumber, err)
		}
	}

	engineering, err := repos.Catalog.CreateDepartment(ctx, persistence.Department{Name: "College of Engineering"})
	if err != nil {
		return fmt.Errorf("failed to seed department: %w", err)
	}
	sciences, err := repos.Catalog.CreateDepartment(ctx, persistence.Department{Name: "College of Arts and Sciences"})
	if err != nil {
		return fmt.Errorf("failed to seed department: %w", err)
	}

	bsce, err := repos.Catalog.CreateProgram(ctx, persistence.Program{
		Name: "Bachelor of Science in Civil Engineering", Code: "BSCE", DepartmentID: engineering.ID,
	})
	if err != nil {
		return fmt.Errorf("failed to seed program: %w", err)
	}
	bscs, err := repos.Catalog.CreateProgram(ctx, persistence.Program{
		Name: "Bachelor of Science in Computer Science", Code: "BSCS", DepartmentID: sciences.ID,
	})
	if err != nil {
		return fmt.Errorf("failed to seed program: %w", err)
	}

	courses := []persistence.Course{
		{CourseCode: "CE101", Description: "Engineering Drawing and Design", ProgramID: bsce.ID},
		{CourseCode: "CE201", Description: "Statics of Rigid Bodies", ProgramID: bsce.ID},
		{CourseCode: "CS101", Description: "Introduction to Computing", ProgramID: bscs.ID},
		{CourseCode: "CS201", Description: "Data Structures and Algorithms", ProgramID: bscs.ID},
	}
	for _, course := range courses {
		if _, err := repos.Courses.CreateCourse(ctx, course); err != nil {
			return fmt.Errorf("failed to seed course %s: %w", course.CourseCode, err)
		}
	}

	logger.InfoContext(ctx, "seed completed",
		"users", len(users), "buildings", len(buildingIDs), "rooms", len(rooms), "courses", len(courses))
	return nil
}
