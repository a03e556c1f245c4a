package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/classroom-scheduler/internal/application"
	"github.com/example/classroom-scheduler/internal/persistence"
	"github.com/example/classroom-scheduler/internal/persistence/memory"
	"github.com/example/classroom-scheduler/internal/recurrence"
)

// cheapArgon2idParams keeps password hashing fast in tests.
var cheapArgon2idParams = application.Argon2idParams{
	Memory:      8 * 1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

type testEnv struct {
	handler http.Handler
	store   *memory.Store
	room    persistence.Room
	course  persistence.Course
	admin   persistence.User
	faculty persistence.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	hash, err := application.HashPassword("test-password", cheapArgon2idParams)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	admin, err := store.CreateUser(ctx, persistence.User{
		Name: "Admin User", Email: "admin@college.edu", PasswordHash: hash, Role: persistence.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("failed to create admin: %v", err)
	}
	faculty, err := store.CreateUser(ctx, persistence.User{
		Name: "Faculty Member", Email: "faculty@college.edu", PasswordHash: hash, Role: persistence.RoleFaculty,
	})
	if err != nil {
		t.Fatalf("failed to create faculty: %v", err)
	}

	building, err := store.CreateBuilding(ctx, persistence.Building{Name: "Science and Technology Building"})
	if err != nil {
		t.Fatalf("failed to create building: %v", err)
	}
	room, err := store.CreateRoom(ctx, persistence.Room{RoomNumber: "ST101", BuildingID: building.ID, Capacity: 40})
	if err != nil {
		t.Fatalf("failed to create room: %v", err)
	}
	department, err := store.CreateDepartment(ctx, persistence.Department{Name: "College of Engineering"})
	if err != nil {
		t.Fatalf("failed to create department: %v", err)
	}
	program, err := store.CreateProgram(ctx, persistence.Program{
		Name: "Bachelor of Science in Civil Engineering", Code: "BSCE", DepartmentID: department.ID,
	})
	if err != nil {
		t.Fatalf("failed to create program: %v", err)
	}
	course, err := store.CreateCourse(ctx, persistence.Course{
		CourseCode: "CE101", Description: "Engineering Drawing and Design", ProgramID: program.ID,
	})
	if err != nil {
		t.Fatalf("failed to create course: %v", err)
	}

	scheduleService := application.NewScheduleService(store, store, store, store, recurrence.NewExpander(0), time.Now)
	authService := application.NewAuthService(store, store, application.AuthConfig{
		JWTSecret: []byte("router-test-secret"),
		Issuer:    "classroom-scheduler",
	}, time.Now)

	handler := NewRouter(RouterConfig{
		Auth:         NewAuthHandler(authService, nil),
		Schedules:    NewScheduleHandler(scheduleService, nil),
		Rooms:        NewRoomHandler(application.NewRoomService(store, store), nil),
		Courses:      NewCourseHandler(application.NewCourseService(store, store), nil),
		Catalog:      NewCatalogHandler(application.NewCatalogService(store), nil),
		Users:        NewUserHandler(application.NewUserService(store), nil),
		Authenticate: RequireAuth(authService, nil),
	})

	return &testEnv{handler: handler, store: store, room: room, course: course, admin: admin, faculty: faculty}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T, email string) tokenResponse {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/auth/login", "", loginRequest{Email: email, Password: "test-password"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login for %s failed with status %d: %s", email, rec.Code, rec.Body.String())
	}
	var tokens tokenResponse
	decode(t, rec, &tokens)
	return tokens
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func scheduleBody(e *testEnv, date, start, end string) scheduleRequest {
	return scheduleRequest{
		RoomID:    e.room.ID,
		UserID:    e.faculty.ID,
		CourseID:  e.course.ID,
		Date:      date,
		StartTime: start,
		EndTime:   end,
	}
}

func TestRouter_Authentication(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	t.Run("api routes require a bearer token", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/schedules", "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("garbage tokens are rejected", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/schedules", "not-a-token", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("bad credentials fail with 401", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/auth/login", "", loginRequest{Email: "admin@college.edu", Password: "wrong"})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("login issues usable tokens", func(t *testing.T) {
		tokens := env.login(t, "faculty@college.edu")
		rec := env.do(t, http.MethodGet, "/api/schedules", tokens.AccessToken, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 with a fresh token, got %d", rec.Code)
		}
	})

	t.Run("refresh rotates and logout revokes", func(t *testing.T) {
		tokens := env.login(t, "faculty@college.edu")

		rec := env.do(t, http.MethodPost, "/api/auth/refresh", "", refreshRequest{RefreshToken: tokens.RefreshToken})
		if rec.Code != http.StatusOK {
			t.Fatalf("refresh failed with %d: %s", rec.Code, rec.Body.String())
		}
		var rotated tokenResponse
		decode(t, rec, &rotated)
		if rotated.RefreshToken == tokens.RefreshToken {
			t.Fatal("expected the refresh token to rotate")
		}

		rec = env.do(t, http.MethodPost, "/api/auth/logout", "", refreshRequest{RefreshToken: rotated.RefreshToken})
		if rec.Code != http.StatusNoContent {
			t.Fatalf("logout failed with %d", rec.Code)
		}
		rec = env.do(t, http.MethodPost, "/api/auth/refresh", "", refreshRequest{RefreshToken: rotated.RefreshToken})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected revoked token to fail with 401, got %d", rec.Code)
		}
	})
}

func TestRouter_ScheduleLifecycle(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	faculty := env.login(t, "faculty@college.edu").AccessToken
	admin := env.login(t, "admin@college.edu").AccessToken

	var created scheduleResponse
	rec := env.do(t, http.MethodPost, "/api/schedules", faculty, scheduleBody(env, "2024-06-03", "09:00", "10:00"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create failed with %d: %s", rec.Code, rec.Body.String())
	}
	decode(t, rec, &created)
	if created.Status != "PENDING" || created.RoomNumber != "ST101" {
		t.Fatalf("unexpected created schedule: %+v", created)
	}

	t.Run("conflicting booking returns 409 with details", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/schedules", faculty, scheduleBody(env, "2024-06-03", "09:30", "10:30"))
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
		}
		var body struct {
			Message   string `json:"message"`
			Conflicts []struct {
				CourseCode string `json:"course_code"`
				AssignedTo string `json:"assigned_to"`
			} `json:"conflicts"`
		}
		decode(t, rec, &body)
		if !strings.HasPrefix(body.Message, "Room ST101 has scheduling conflicts:") {
			t.Fatalf("unexpected conflict message: %q", body.Message)
		}
		if len(body.Conflicts) != 1 || body.Conflicts[0].CourseCode != "CE101" || body.Conflicts[0].AssignedTo != "Faculty Member" {
			t.Fatalf("unexpected conflict payload: %+v", body)
		}
	})

	t.Run("invalid date returns 400", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/schedules", faculty, scheduleBody(env, "06/03/2024", "09:00", "10:00"))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("inverted window returns 422 with field errors", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/schedules", faculty, scheduleBody(env, "2024-06-04", "11:00", "10:00"))
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
		}
		var body struct {
			Errors map[string]string `json:"errors"`
		}
		decode(t, rec, &body)
		if len(body.Errors) == 0 {
			t.Fatalf("expected field errors, got %s", rec.Body.String())
		}
	})

	t.Run("status changes are admin only", func(t *testing.T) {
		path := fmt.Sprintf("/api/schedules/%d/status", created.ID)

		rec := env.do(t, http.MethodPut, path, faculty, statusRequest{Status: "APPROVED"})
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403 for faculty, got %d", rec.Code)
		}

		rec = env.do(t, http.MethodPut, path, admin, statusRequest{Status: "APPROVED"})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 for admin, got %d: %s", rec.Code, rec.Body.String())
		}
		var approved scheduleResponse
		decode(t, rec, &approved)
		if approved.Status != "APPROVED" {
			t.Fatalf("expected APPROVED, got %s", approved.Status)
		}
	})

	t.Run("editing resets the status", func(t *testing.T) {
		path := fmt.Sprintf("/api/schedules/%d", created.ID)
		rec := env.do(t, http.MethodPut, path, faculty, scheduleBody(env, "2024-06-03", "14:00", "15:00"))
		if rec.Code != http.StatusOK {
			t.Fatalf("update failed with %d: %s", rec.Code, rec.Body.String())
		}
		var updated scheduleResponse
		decode(t, rec, &updated)
		if updated.Status != "PENDING" || updated.StartTime != "14:00" {
			t.Fatalf("unexpected updated schedule: %+v", updated)
		}
	})

	t.Run("date listing returns the booking", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/schedules/date/2024-06-03", faculty, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var listed []scheduleResponse
		decode(t, rec, &listed)
		if len(listed) != 1 {
			t.Fatalf("expected 1 schedule, got %d", len(listed))
		}
	})

	t.Run("delete then get returns 404", func(t *testing.T) {
		path := fmt.Sprintf("/api/schedules/%d", created.ID)
		rec := env.do(t, http.MethodDelete, path, faculty, nil)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("delete failed with %d", rec.Code)
		}
		rec = env.do(t, http.MethodGet, path, faculty, nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404 after delete, got %d", rec.Code)
		}
	})
}

func TestRouter_RecurringAndBatch(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	faculty := env.login(t, "faculty@college.edu").AccessToken
	admin := env.login(t, "admin@college.edu").AccessToken

	recurring := recurringScheduleRequest{
		RoomID:    env.room.ID,
		UserID:    env.faculty.ID,
		CourseID:  env.course.ID,
		StartTime: "09:00",
		EndTime:   "10:00",
	}
	recurring.Pattern.StartDate = "2024-06-03"
	recurring.Pattern.EndDate = "2024-06-14"
	recurring.Pattern.DaysOfWeek = []int{1, 3}

	rec := env.do(t, http.MethodPost, "/api/schedules/recurring", faculty, recurring)
	if rec.Code != http.StatusCreated {
		t.Fatalf("recurring create failed with %d: %s", rec.Code, rec.Body.String())
	}
	var created []scheduleResponse
	decode(t, rec, &created)
	if len(created) != 4 {
		t.Fatalf("expected 4 occurrences, got %d", len(created))
	}

	t.Run("batch status is admin only and skips missing ids", func(t *testing.T) {
		ids := []int64{created[0].ID, created[1].ID, 9999}

		rec := env.do(t, http.MethodPut, "/api/schedules/batch/status", faculty, batchStatusRequest{IDs: ids, Status: "APPROVED"})
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403 for faculty, got %d", rec.Code)
		}

		rec = env.do(t, http.MethodPut, "/api/schedules/batch/status", admin, batchStatusRequest{IDs: ids, Status: "APPROVED"})
		if rec.Code != http.StatusOK {
			t.Fatalf("batch status failed with %d: %s", rec.Code, rec.Body.String())
		}
		var updated []scheduleResponse
		decode(t, rec, &updated)
		if len(updated) != 2 {
			t.Fatalf("expected 2 updated schedules, got %d", len(updated))
		}
	})

	t.Run("batch delete removes the listed bookings", func(t *testing.T) {
		rec := env.do(t, http.MethodDelete, "/api/schedules/batch", admin, batchDeleteRequest{IDs: []int64{created[2].ID, created[3].ID}})
		if rec.Code != http.StatusNoContent {
			t.Fatalf("batch delete failed with %d: %s", rec.Code, rec.Body.String())
		}

		rec = env.do(t, http.MethodGet, "/api/schedules", faculty, nil)
		var remaining []scheduleResponse
		decode(t, rec, &remaining)
		if len(remaining) != 2 {
			t.Fatalf("expected 2 schedules to remain, got %d", len(remaining))
		}
	})
}

func TestRouter_CatalogAdminGating(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	faculty := env.login(t, "faculty@college.edu").AccessToken
	admin := env.login(t, "admin@college.edu").AccessToken

	t.Run("faculty may read but not mutate rooms", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/rooms", faculty, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		rec = env.do(t, http.MethodPost, "/api/rooms", faculty, roomRequest{RoomNumber: "ST208", BuildingID: 0, Capacity: 10})
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403 for faculty, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("admin creates a building and a room", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/buildings", admin, namedRequest{Name: "Library Building"})
		if rec.Code != http.StatusCreated {
			t.Fatalf("building create failed with %d: %s", rec.Code, rec.Body.String())
		}
		var building namedResponse
		decode(t, rec, &building)

		rec = env.do(t, http.MethodPost, "/api/rooms", admin, roomRequest{RoomNumber: "LIB101", BuildingID: building.ID, Capacity: 60})
		if rec.Code != http.StatusCreated {
			t.Fatalf("room create failed with %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("user listing never exposes password material", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/users", admin, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var raw []map[string]any
		decode(t, rec, &raw)
		if len(raw) != 2 {
			t.Fatalf("expected 2 users, got %d", len(raw))
		}
		for _, user := range raw {
			for key := range user {
				if key == "password" || key == "password_hash" {
					t.Fatalf("response leaked %q", key)
				}
			}
		}
	})
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	faculty := env.login(t, "faculty@college.edu").AccessToken

	rec := env.do(t, http.MethodPatch, "/api/schedules", faculty, nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != "GET, POST" {
		t.Fatalf("unexpected Allow header %q", allow)
	}
}
