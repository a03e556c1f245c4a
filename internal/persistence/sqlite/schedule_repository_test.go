package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/classroom-scheduler/internal/booking"
	"github.com/example/classroom-scheduler/internal/persistence"
)

type repositoryFixture struct {
	store  *Store
	room   persistence.Room
	user   persistence.User
	course persistence.Course
}

func setupRepositoryTest(t *testing.T) *repositoryFixture {
	t.Helper()
	ctx := context.Background()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := Open(ctx, "file:"+dbPath)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	catalog := NewCatalogRepository(store)
	building, err := catalog.CreateBuilding(ctx, persistence.Building{Name: "Science and Technology Building"})
	if err != nil {
		t.Fatalf("failed to create building: %v", err)
	}
	room, err := NewRoomRepository(store).CreateRoom(ctx, persistence.Room{
		RoomNumber: "ST101", BuildingID: building.ID, Capacity: 40,
	})
	if err != nil {
		t.Fatalf("failed to create room: %v", err)
	}
	user, err := NewUserRepository(store).CreateUser(ctx, persistence.User{
		Name: "Faculty Member", Email: "faculty@college.edu", PasswordHash: "x", Role: persistence.RoleFaculty,
	})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	department, err := catalog.CreateDepartment(ctx, persistence.Department{Name: "College of Engineering"})
	if err != nil {
		t.Fatalf("failed to create department: %v", err)
	}
	program, err := catalog.CreateProgram(ctx, persistence.Program{
		Name: "Bachelor of Science in Civil Engineering", Code: "BSCE", DepartmentID: department.ID,
	})
	if err != nil {
		t.Fatalf("failed to create program: %v", err)
	}
	course, err := NewCourseRepository(store).CreateCourse(ctx, persistence.Course{
		CourseCode: "CE101", Description: "Engineering Drawing and Design", ProgramID: program.ID,
	})
	if err != nil {
		t.Fatalf("failed to create course: %v", err)
	}

	return &repositoryFixture{store: store, room: room, user: user, course: course}
}

func (f *repositoryFixture) schedule(date time.Time, start, end int) persistence.Schedule {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return persistence.Schedule{
		RoomID:         f.room.ID,
		UserID:         f.user.ID,
		CourseID:       f.course.ID,
		Date:           date,
		StartTime:      booking.TimeOfDay(start),
		EndTime:        booking.TimeOfDay(end),
		Status:         persistence.StatusPending,
		CreationDate:   now,
		LastUpdated:    now,
		CreatedByEmail: f.user.Email,
		UpdatedByEmail: f.user.Email,
	}
}

func TestScheduleRepository_CreateAndGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := setupRepositoryTest(t)
	repo := NewScheduleRepository(f.store)

	monday := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	created, err := repo.CreateSchedule(ctx, f.schedule(monday, 9*60, 10*60))
	if err != nil {
		t.Fatalf("CreateSchedule failed: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected an assigned id")
	}

	retrieved, err := repo.GetSchedule(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetSchedule failed: %v", err)
	}
	if !retrieved.Date.Equal(monday) {
		t.Errorf("Date = %v, want %v", retrieved.Date, monday)
	}
	if retrieved.StartTime != 9*60 || retrieved.EndTime != 10*60 {
		t.Errorf("window = %s-%s, want 09:00-10:00", retrieved.StartTime, retrieved.EndTime)
	}
	if retrieved.Status != persistence.StatusPending {
		t.Errorf("Status = %s, want PENDING", retrieved.Status)
	}
	if retrieved.CreatedByEmail != "faculty@college.edu" || retrieved.UpdatedByEmail != "faculty@college.edu" {
		t.Errorf("audit emails = %q / %q", retrieved.CreatedByEmail, retrieved.UpdatedByEmail)
	}
	if !retrieved.CreationDate.Equal(created.CreationDate) {
		t.Errorf("CreationDate = %v, want %v", retrieved.CreationDate, created.CreationDate)
	}
}

func TestScheduleRepository_OverlapBackstop(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := setupRepositoryTest(t)
	repo := NewScheduleRepository(f.store)

	monday := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	if _, err := repo.CreateSchedule(ctx, f.schedule(monday, 9*60, 10*60)); err != nil {
		t.Fatalf("seed insert failed: %v", err)
	}

	t.Run("overlapping insert is rejected", func(t *testing.T) {
		_, err := repo.CreateSchedule(ctx, f.schedule(monday, 9*60+30, 10*60+30))
		if !errors.Is(err, persistence.ErrOverlap) {
			t.Fatalf("expected ErrOverlap, got %v", err)
		}
	})

	t.Run("back to back insert succeeds", func(t *testing.T) {
		if _, err := repo.CreateSchedule(ctx, f.schedule(monday, 10*60, 11*60)); err != nil {
			t.Fatalf("back to back insert failed: %v", err)
		}
	})

	t.Run("other dates are unaffected", func(t *testing.T) {
		tuesday := monday.AddDate(0, 0, 1)
		if _, err := repo.CreateSchedule(ctx, f.schedule(tuesday, 9*60, 10*60)); err != nil {
			t.Fatalf("other date insert failed: %v", err)
		}
	})
}

func TestScheduleRepository_CreateSchedules_RollsBackOnOverlap(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := setupRepositoryTest(t)
	repo := NewScheduleRepository(f.store)

	monday := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	wednesday := monday.AddDate(0, 0, 2)

	// The second row overlaps the first within the same batch: the whole
	// transaction must roll back.
	_, err := repo.CreateSchedules(ctx, []persistence.Schedule{
		f.schedule(monday, 9*60, 10*60),
		f.schedule(wednesday, 9*60, 10*60),
		f.schedule(monday, 9*60+30, 10*60+30),
	})
	if !errors.Is(err, persistence.ErrOverlap) {
		t.Fatalf("expected ErrOverlap, got %v", err)
	}

	all, err := repo.ListSchedules(ctx)
	if err != nil {
		t.Fatalf("ListSchedules failed: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected rollback to leave no rows, found %d", len(all))
	}

	created, err := repo.CreateSchedules(ctx, []persistence.Schedule{
		f.schedule(monday, 9*60, 10*60),
		f.schedule(wednesday, 9*60, 10*60),
	})
	if err != nil {
		t.Fatalf("clean batch failed: %v", err)
	}
	if len(created) != 2 || created[0].ID == created[1].ID {
		t.Fatalf("expected two rows with distinct ids, got %+v", created)
	}
}

func TestScheduleRepository_UpdateSchedule(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := setupRepositoryTest(t)
	repo := NewScheduleRepository(f.store)

	monday := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	created, err := repo.CreateSchedule(ctx, f.schedule(monday, 9*60, 10*60))
	if err != nil {
		t.Fatalf("seed insert failed: %v", err)
	}

	t.Run("the row does not conflict with itself", func(t *testing.T) {
		shifted := created
		shifted.StartTime = 9*60 + 15
		shifted.EndTime = 10*60 + 15

		updated, err := repo.UpdateSchedule(ctx, shifted)
		if err != nil {
			t.Fatalf("UpdateSchedule failed: %v", err)
		}
		if updated.StartTime != 9*60+15 {
			t.Fatalf("StartTime = %s, want 09:15", updated.StartTime)
		}
	})

	t.Run("missing ids are not found", func(t *testing.T) {
		missing := created
		missing.ID = 9999
		if _, err := repo.UpdateSchedule(ctx, missing); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestScheduleRepository_BatchStatusAndDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := setupRepositoryTest(t)
	repo := NewScheduleRepository(f.store)

	monday := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	first, err := repo.CreateSchedule(ctx, f.schedule(monday, 9*60, 10*60))
	if err != nil {
		t.Fatalf("seed insert failed: %v", err)
	}
	second, err := repo.CreateSchedule(ctx, f.schedule(monday, 10*60, 11*60))
	if err != nil {
		t.Fatalf("seed insert failed: %v", err)
	}

	t.Run("status batch updates every row", func(t *testing.T) {
		stamp := time.Date(2024, 6, 2, 8, 0, 0, 0, time.UTC)
		updated, err := repo.UpdateSchedules(ctx, []persistence.Schedule{
			{ID: first.ID, Status: persistence.StatusApproved, LastUpdated: stamp, UpdatedByEmail: "admin@college.edu"},
			{ID: second.ID, Status: persistence.StatusApproved, LastUpdated: stamp, UpdatedByEmail: "admin@college.edu"},
		})
		if err != nil {
			t.Fatalf("UpdateSchedules failed: %v", err)
		}
		if len(updated) != 2 {
			t.Fatalf("expected 2 rows, got %d", len(updated))
		}
		for _, schedule := range updated {
			if schedule.Status != persistence.StatusApproved || schedule.UpdatedByEmail != "admin@college.edu" {
				t.Fatalf("unexpected row after batch update: %+v", schedule)
			}
			// The booking window is untouched by status batches.
			if schedule.Date.IsZero() || schedule.StartTime == schedule.EndTime {
				t.Fatalf("batch update corrupted the window: %+v", schedule)
			}
		}
	})

	t.Run("status batch with a missing id rolls back", func(t *testing.T) {
		stamp := time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC)
		_, err := repo.UpdateSchedules(ctx, []persistence.Schedule{
			{ID: first.ID, Status: persistence.StatusRejected, LastUpdated: stamp, UpdatedByEmail: "admin@college.edu"},
			{ID: 9999, Status: persistence.StatusRejected, LastUpdated: stamp, UpdatedByEmail: "admin@college.edu"},
		})
		if !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}

		current, err := repo.GetSchedule(ctx, first.ID)
		if err != nil {
			t.Fatalf("GetSchedule failed: %v", err)
		}
		if current.Status != persistence.StatusApproved {
			t.Fatalf("expected rollback to keep APPROVED, got %s", current.Status)
		}
	})

	t.Run("delete batch with a missing id rolls back", func(t *testing.T) {
		if err := repo.DeleteSchedules(ctx, []int64{first.ID, 9999}); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if _, err := repo.GetSchedule(ctx, first.ID); err != nil {
			t.Fatalf("row should survive the failed batch, got %v", err)
		}
	})

	t.Run("delete batch removes every row", func(t *testing.T) {
		if err := repo.DeleteSchedules(ctx, []int64{first.ID, second.ID}); err != nil {
			t.Fatalf("DeleteSchedules failed: %v", err)
		}
		if _, err := repo.GetSchedule(ctx, first.ID); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected first row gone, got %v", err)
		}
	})
}

func TestScheduleRepository_ConstraintMapping(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := setupRepositoryTest(t)
	repo := NewScheduleRepository(f.store)

	monday := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	t.Run("inverted window trips the CHECK constraint", func(t *testing.T) {
		_, err := repo.CreateSchedule(ctx, f.schedule(monday, 10*60, 9*60))
		if !errors.Is(err, persistence.ErrConstraintViolation) {
			t.Fatalf("expected ErrConstraintViolation, got %v", err)
		}
	})

	t.Run("unknown room trips the foreign key", func(t *testing.T) {
		orphan := f.schedule(monday, 9*60, 10*60)
		orphan.RoomID = 9999
		_, err := repo.CreateSchedule(ctx, orphan)
		if !errors.Is(err, persistence.ErrForeignKeyViolation) {
			t.Fatalf("expected ErrForeignKeyViolation, got %v", err)
		}
	})

	t.Run("duplicate room number maps to ErrDuplicate", func(t *testing.T) {
		_, err := NewRoomRepository(f.store).CreateRoom(ctx, persistence.Room{
			RoomNumber: "ST101", BuildingID: f.room.BuildingID, Capacity: 20,
		})
		if !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("missing row maps to ErrNotFound", func(t *testing.T) {
		if _, err := repo.GetSchedule(ctx, 9999); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if err := repo.DeleteSchedule(ctx, 9999); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
