package memory

import (
	"context"
	"sort"
	"time"

	"github.com/example/classroom-scheduler/internal/persistence"
)

// CreateRoom inserts a new room.
func (s *Store) CreateRoom(ctx context.Context, room persistence.Room) (persistence.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.buildings[room.BuildingID]; !ok {
		return persistence.Room{}, persistence.ErrForeignKeyViolation
	}
	for _, existing := range s.rooms {
		if existing.BuildingID == room.BuildingID && existing.RoomNumber == room.RoomNumber {
			return persistence.Room{}, persistence.ErrDuplicate
		}
	}
	room.ID = s.allocID()
	s.rooms[room.ID] = room
	return room, nil
}

// GetRoom retrieves a room by id.
func (s *Store) GetRoom(ctx context.Context, id int64) (persistence.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[id]
	if !ok {
		return persistence.Room{}, persistence.ErrNotFound
	}
	return room, nil
}

// UpdateRoom overwrites an existing room.
func (s *Store) UpdateRoom(ctx context.Context, room persistence.Room) (persistence.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[room.ID]; !ok {
		return persistence.Room{}, persistence.ErrNotFound
	}
	for _, existing := range s.rooms {
		if existing.ID != room.ID && existing.BuildingID == room.BuildingID && existing.RoomNumber == room.RoomNumber {
			return persistence.Room{}, persistence.ErrDuplicate
		}
	}
	s.rooms[room.ID] = room
	return room, nil
}

// DeleteRoom removes a room unless schedules reference it.
func (s *Store) DeleteRoom(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[id]; !ok {
		return persistence.ErrNotFound
	}
	for _, schedule := range s.schedules {
		if schedule.RoomID == id {
			return persistence.ErrForeignKeyViolation
		}
	}
	delete(s.rooms, id)
	return nil
}

// ListRooms returns all rooms ordered by room number.
func (s *Store) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterRooms(func(persistence.Room) bool { return true }), nil
}

// ListRoomsByBuilding returns the rooms in one building.
func (s *Store) ListRoomsByBuilding(ctx context.Context, buildingID int64) ([]persistence.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterRooms(func(room persistence.Room) bool { return room.BuildingID == buildingID }), nil
}

func (s *Store) filterRooms(keep func(persistence.Room) bool) []persistence.Room {
	var rooms []persistence.Room
	for _, room := range s.rooms {
		if keep(room) {
			rooms = append(rooms, room)
		}
	}
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].RoomNumber != rooms[j].RoomNumber {
			return rooms[i].RoomNumber < rooms[j].RoomNumber
		}
		return rooms[i].ID < rooms[j].ID
	})
	return rooms
}

// CreateUser inserts a new account.
func (s *Store) CreateUser(ctx context.Context, user persistence.User) (persistence.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return persistence.User{}, persistence.ErrDuplicate
		}
	}
	user.ID = s.allocID()
	s.users[user.ID] = user
	return user, nil
}

// GetUser retrieves an account by id.
func (s *Store) GetUser(ctx context.Context, id int64) (persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return persistence.User{}, persistence.ErrNotFound
	}
	return user, nil
}

// GetUserByEmail retrieves an account by email address.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return persistence.User{}, persistence.ErrNotFound
}

// UpdateUser overwrites an existing account.
func (s *Store) UpdateUser(ctx context.Context, user persistence.User) (persistence.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return persistence.User{}, persistence.ErrNotFound
	}
	for _, existing := range s.users {
		if existing.ID != user.ID && existing.Email == user.Email {
			return persistence.User{}, persistence.ErrDuplicate
		}
	}
	s.users[user.ID] = user
	return user, nil
}

// DeleteUser removes an account unless schedules reference it.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return persistence.ErrNotFound
	}
	for _, schedule := range s.schedules {
		if schedule.UserID == id {
			return persistence.ErrForeignKeyViolation
		}
	}
	delete(s.users, id)
	return nil
}

// ListUsers returns all accounts ordered by name.
func (s *Store) ListUsers(ctx context.Context) ([]persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var users []persistence.User
	for _, user := range s.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].Name != users[j].Name {
			return users[i].Name < users[j].Name
		}
		return users[i].ID < users[j].ID
	})
	return users, nil
}

// CreateCourse inserts a new course.
func (s *Store) CreateCourse(ctx context.Context, course persistence.Course) (persistence.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.programs[course.ProgramID]; !ok {
		return persistence.Course{}, persistence.ErrForeignKeyViolation
	}
	for _, existing := range s.courses {
		if existing.CourseCode == course.CourseCode {
			return persistence.Course{}, persistence.ErrDuplicate
		}
	}
	course.ID = s.allocID()
	s.courses[course.ID] = course
	return course, nil
}

// GetCourse retrieves a course by id.
func (s *Store) GetCourse(ctx context.Context, id int64) (persistence.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	course, ok := s.courses[id]
	if !ok {
		return persistence.Course{}, persistence.ErrNotFound
	}
	return course, nil
}

// UpdateCourse overwrites an existing course.
func (s *Store) UpdateCourse(ctx context.Context, course persistence.Course) (persistence.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.courses[course.ID]; !ok {
		return persistence.Course{}, persistence.ErrNotFound
	}
	for _, existing := range s.courses {
		if existing.ID != course.ID && existing.CourseCode == course.CourseCode {
			return persistence.Course{}, persistence.ErrDuplicate
		}
	}
	s.courses[course.ID] = course
	return course, nil
}

// DeleteCourse removes a course unless schedules reference it.
func (s *Store) DeleteCourse(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.courses[id]; !ok {
		return persistence.ErrNotFound
	}
	for _, schedule := range s.schedules {
		if schedule.CourseID == id {
			return persistence.ErrForeignKeyViolation
		}
	}
	delete(s.courses, id)
	return nil
}

// ListCourses returns all courses ordered by course code.
func (s *Store) ListCourses(ctx context.Context) ([]persistence.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterCourses(func(persistence.Course) bool { return true }), nil
}

// ListCoursesByProgram returns the courses in one program.
func (s *Store) ListCoursesByProgram(ctx context.Context, programID int64) ([]persistence.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterCourses(func(course persistence.Course) bool { return course.ProgramID == programID }), nil
}

func (s *Store) filterCourses(keep func(persistence.Course) bool) []persistence.Course {
	var courses []persistence.Course
	for _, course := range s.courses {
		if keep(course) {
			courses = append(courses, course)
		}
	}
	sort.Slice(courses, func(i, j int) bool {
		if courses[i].CourseCode != courses[j].CourseCode {
			return courses[i].CourseCode < courses[j].CourseCode
		}
		return courses[i].ID < courses[j].ID
	})
	return courses
}

// CreateBuilding inserts a new building.
func (s *Store) CreateBuilding(ctx context.Context, building persistence.Building) (persistence.Building, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.buildings {
		if existing.Name == building.Name {
			return persistence.Building{}, persistence.ErrDuplicate
		}
	}
	building.ID = s.allocID()
	s.buildings[building.ID] = building
	return building, nil
}

// GetBuilding retrieves a building by id.
func (s *Store) GetBuilding(ctx context.Context, id int64) (persistence.Building, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	building, ok := s.buildings[id]
	if !ok {
		return persistence.Building{}, persistence.ErrNotFound
	}
	return building, nil
}

// UpdateBuilding renames an existing building.
func (s *Store) UpdateBuilding(ctx context.Context, building persistence.Building) (persistence.Building, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.buildings[building.ID]; !ok {
		return persistence.Building{}, persistence.ErrNotFound
	}
	for _, existing := range s.buildings {
		if existing.ID != building.ID && existing.Name == building.Name {
			return persistence.Building{}, persistence.ErrDuplicate
		}
	}
	s.buildings[building.ID] = building
	return building, nil
}

// DeleteBuilding removes a building unless rooms reference it.
func (s *Store) DeleteBuilding(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.buildings[id]; !ok {
		return persistence.ErrNotFound
	}
	for _, room := range s.rooms {
		if room.BuildingID == id {
			return persistence.ErrForeignKeyViolation
		}
	}
	delete(s.buildings, id)
	return nil
}

// ListBuildings returns all buildings ordered by name.
func (s *Store) ListBuildings(ctx context.Context) ([]persistence.Building, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var buildings []persistence.Building
	for _, building := range s.buildings {
		buildings = append(buildings, building)
	}
	sort.Slice(buildings, func(i, j int) bool {
		if buildings[i].Name != buildings[j].Name {
			return buildings[i].Name < buildings[j].Name
		}
		return buildings[i].ID < buildings[j].ID
	})
	return buildings, nil
}

// CreateDepartment inserts a new department.
func (s *Store) CreateDepartment(ctx context.Context, department persistence.Department) (persistence.Department, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.depts {
		if existing.Name == department.Name {
			return persistence.Department{}, persistence.ErrDuplicate
		}
	}
	department.ID = s.allocID()
	s.depts[department.ID] = department
	return department, nil
}

// GetDepartment retrieves a department by id.
func (s *Store) GetDepartment(ctx context.Context, id int64) (persistence.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	department, ok := s.depts[id]
	if !ok {
		return persistence.Department{}, persistence.ErrNotFound
	}
	return department, nil
}

// UpdateDepartment renames an existing department.
func (s *Store) UpdateDepartment(ctx context.Context, department persistence.Department) (persistence.Department, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.depts[department.ID]; !ok {
		return persistence.Department{}, persistence.ErrNotFound
	}
	for _, existing := range s.depts {
		if existing.ID != department.ID && existing.Name == department.Name {
			return persistence.Department{}, persistence.ErrDuplicate
		}
	}
	s.depts[department.ID] = department
	return department, nil
}

// DeleteDepartment removes a department unless programs reference it.
func (s *Store) DeleteDepartment(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.depts[id]; !ok {
		return persistence.ErrNotFound
	}
	for _, program := range s.programs {
		if program.DepartmentID == id {
			return persistence.ErrForeignKeyViolation
		}
	}
	delete(s.depts, id)
	return nil
}

// ListDepartments returns all departments ordered by name.
func (s *Store) ListDepartments(ctx context.Context) ([]persistence.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var departments []persistence.Department
	for _, department := range s.depts {
		departments = append(departments, department)
	}
	sort.Slice(departments, func(i, j int) bool {
		if departments[i].Name != departments[j].Name {
			return departments[i].Name < departments[j].Name
		}
		return departments[i].ID < departments[j].ID
	})
	return departments, nil
}

// CreateProgram inserts a new program.
func (s *Store) CreateProgram(ctx context.Context, program persistence.Program) (persistence.Program, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.depts[program.DepartmentID]; !ok {
		return persistence.Program{}, persistence.ErrForeignKeyViolation
	}
	for _, existing := range s.programs {
		if existing.Code == program.Code {
			return persistence.Program{}, persistence.ErrDuplicate
		}
	}
	program.ID = s.allocID()
	s.programs[program.ID] = program
	return program, nil
}

// GetProgram retrieves a program by id.
func (s *Store) GetProgram(ctx context.Context, id int64) (persistence.Program, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	program, ok := s.programs[id]
	if !ok {
		return persistence.Program{}, persistence.ErrNotFound
	}
	return program, nil
}

// UpdateProgram overwrites an existing program.
func (s *Store) UpdateProgram(ctx context.Context, program persistence.Program) (persistence.Program, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.programs[program.ID]; !ok {
		return persistence.Program{}, persistence.ErrNotFound
	}
	for _, existing := range s.programs {
		if existing.ID != program.ID && existing.Code == program.Code {
			return persistence.Program{}, persistence.ErrDuplicate
		}
	}
	s.programs[program.ID] = program
	return program, nil
}

// DeleteProgram removes a program unless courses reference it.
func (s *Store) DeleteProgram(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.programs[id]; !ok {
		return persistence.ErrNotFound
	}
	for _, course := range s.courses {
		if course.ProgramID == id {
			return persistence.ErrForeignKeyViolation
		}
	}
	delete(s.programs, id)
	return nil
}

// ListPrograms returns all programs ordered by code.
func (s *Store) ListPrograms(ctx context.Context) ([]persistence.Program, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterPrograms(func(persistence.Program) bool { return true }), nil
}

// ListProgramsByDepartment returns the programs in one department.
func (s *Store) ListProgramsByDepartment(ctx context.Context, departmentID int64) ([]persistence.Program, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterPrograms(func(program persistence.Program) bool { return program.DepartmentID == departmentID }), nil
}

func (s *Store) filterPrograms(keep func(persistence.Program) bool) []persistence.Program {
	var programs []persistence.Program
	for _, program := range s.programs {
		if keep(program) {
			programs = append(programs, program)
		}
	}
	sort.Slice(programs, func(i, j int) bool {
		if programs[i].Code != programs[j].Code {
			return programs[i].Code < programs[j].Code
		}
		return programs[i].ID < programs[j].ID
	})
	return programs
}

// CreateSession inserts a refresh-token session.
func (s *Store) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.ID]; ok {
		return persistence.Session{}, persistence.ErrDuplicate
	}
	s.sessions[session.ID] = session
	return session, nil
}

// GetSessionByTokenHash retrieves a session by the hash of its refresh token.
func (s *Store) GetSessionByTokenHash(ctx context.Context, tokenHash string) (persistence.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, session := range s.sessions {
		if session.TokenHash == tokenHash {
			return session, nil
		}
	}
	return persistence.Session{}, persistence.ErrNotFound
}

// RevokeSession marks a session revoked.
func (s *Store) RevokeSession(ctx context.Context, id string, revokedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return persistence.ErrNotFound
	}
	session.RevokedAt = &revokedAt
	s.sessions[id] = session
	return nil
}

// DeleteExpiredSessions removes sessions whose refresh window has passed.
func (s *Store) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, session := range s.sessions {
		if !session.ExpiresAt.After(reference) {
			delete(s.sessions, id)
		}
	}
	return nil
}
