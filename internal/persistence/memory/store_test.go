package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/classroom-scheduler/internal/booking"
	"github.com/example/classroom-scheduler/internal/persistence"
)

func day(d int) time.Time {
	return time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC)
}

func sched(roomID int64, d, start, end int) persistence.Schedule {
	return persistence.Schedule{
		RoomID:    roomID,
		UserID:    1,
		CourseID:  1,
		Date:      day(d),
		StartTime: booking.TimeOfDay(start),
		EndTime:   booking.TimeOfDay(end),
		Status:    persistence.StatusPending,
	}
}

func TestStore_CreateSchedule_OverlapBackstop(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewStore()

	if _, err := store.CreateSchedule(ctx, sched(1, 3, 9*60, 10*60)); err != nil {
		t.Fatalf("seed insert failed: %v", err)
	}

	t.Run("overlapping window is rejected", func(t *testing.T) {
		_, err := store.CreateSchedule(ctx, sched(1, 3, 9*60+30, 10*60+30))
		if !errors.Is(err, persistence.ErrOverlap) {
			t.Fatalf("expected ErrOverlap, got %v", err)
		}
	})

	t.Run("back to back is accepted", func(t *testing.T) {
		if _, err := store.CreateSchedule(ctx, sched(1, 3, 10*60, 11*60)); err != nil {
			t.Fatalf("back to back insert failed: %v", err)
		}
	})

	t.Run("other rooms and dates are unaffected", func(t *testing.T) {
		if _, err := store.CreateSchedule(ctx, sched(2, 3, 9*60, 10*60)); err != nil {
			t.Fatalf("other room insert failed: %v", err)
		}
		if _, err := store.CreateSchedule(ctx, sched(1, 4, 9*60, 10*60)); err != nil {
			t.Fatalf("other date insert failed: %v", err)
		}
	})
}

func TestStore_CreateSchedules_Atomic(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("intra batch overlap writes nothing", func(t *testing.T) {
		t.Parallel()
		store := NewStore()

		_, err := store.CreateSchedules(ctx, []persistence.Schedule{
			sched(1, 3, 9*60, 10*60),
			sched(1, 3, 9*60+30, 10*60+30),
		})
		if !errors.Is(err, persistence.ErrOverlap) {
			t.Fatalf("expected ErrOverlap, got %v", err)
		}

		all, err := store.ListSchedules(ctx)
		if err != nil {
			t.Fatalf("ListSchedules returned error: %v", err)
		}
		if len(all) != 0 {
			t.Fatalf("expected nothing persisted, got %d schedules", len(all))
		}
	})

	t.Run("conflict with an existing row writes nothing", func(t *testing.T) {
		t.Parallel()
		store := NewStore()
		if _, err := store.CreateSchedule(ctx, sched(1, 5, 9*60, 10*60)); err != nil {
			t.Fatalf("seed insert failed: %v", err)
		}

		_, err := store.CreateSchedules(ctx, []persistence.Schedule{
			sched(1, 3, 9*60, 10*60),
			sched(1, 5, 9*60+15, 9*60+45),
		})
		if !errors.Is(err, persistence.ErrOverlap) {
			t.Fatalf("expected ErrOverlap, got %v", err)
		}

		all, err := store.ListSchedules(ctx)
		if err != nil {
			t.Fatalf("ListSchedules returned error: %v", err)
		}
		if len(all) != 1 {
			t.Fatalf("expected only the seed row, got %d schedules", len(all))
		}
	})

	t.Run("clean batch assigns sequential ids", func(t *testing.T) {
		t.Parallel()
		store := NewStore()

		created, err := store.CreateSchedules(ctx, []persistence.Schedule{
			sched(1, 3, 9*60, 10*60),
			sched(1, 10, 9*60, 10*60),
		})
		if err != nil {
			t.Fatalf("CreateSchedules returned error: %v", err)
		}
		if len(created) != 2 || created[0].ID == 0 || created[0].ID == created[1].ID {
			t.Fatalf("expected two distinct ids, got %+v", created)
		}
	})
}

func TestStore_BatchMutations_RequireEveryID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewStore()

	first, err := store.CreateSchedule(ctx, sched(1, 3, 9*60, 10*60))
	if err != nil {
		t.Fatalf("seed insert failed: %v", err)
	}

	t.Run("update batch with a missing id changes nothing", func(t *testing.T) {
		update := first
		update.Status = persistence.StatusApproved
		missing := persistence.Schedule{ID: 777, Status: persistence.StatusApproved}

		_, err := store.UpdateSchedules(ctx, []persistence.Schedule{update, missing})
		if !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}

		current, err := store.GetSchedule(ctx, first.ID)
		if err != nil {
			t.Fatalf("GetSchedule returned error: %v", err)
		}
		if current.Status != persistence.StatusPending {
			t.Fatalf("expected untouched status, got %s", current.Status)
		}
	})

	t.Run("delete batch with a missing id deletes nothing", func(t *testing.T) {
		if err := store.DeleteSchedules(ctx, []int64{first.ID, 777}); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if _, err := store.GetSchedule(ctx, first.ID); err != nil {
			t.Fatalf("schedule should survive the failed batch, got %v", err)
		}
	})

	t.Run("list by ids silently skips missing ids", func(t *testing.T) {
		schedules, err := store.ListSchedulesByIDs(ctx, []int64{first.ID, 777})
		if err != nil {
			t.Fatalf("ListSchedulesByIDs returned error: %v", err)
		}
		if len(schedules) != 1 || schedules[0].ID != first.ID {
			t.Fatalf("expected only the existing row, got %+v", schedules)
		}
	})
}

func TestStore_ReferentialIntegrity(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("duplicate user email", func(t *testing.T) {
		t.Parallel()
		store := NewStore()

		if _, err := store.CreateUser(ctx, persistence.User{Name: "A", Email: "a@college.edu", PasswordHash: "x", Role: persistence.RoleFaculty}); err != nil {
			t.Fatalf("seed user failed: %v", err)
		}
		_, err := store.CreateUser(ctx, persistence.User{Name: "B", Email: "a@college.edu", PasswordHash: "x", Role: persistence.RoleFaculty})
		if !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("room requires an existing building", func(t *testing.T) {
		t.Parallel()
		store := NewStore()

		_, err := store.CreateRoom(ctx, persistence.Room{RoomNumber: "ST101", BuildingID: 42, Capacity: 30})
		if !errors.Is(err, persistence.ErrForeignKeyViolation) {
			t.Fatalf("expected ErrForeignKeyViolation, got %v", err)
		}
	})

	t.Run("building with rooms cannot be deleted", func(t *testing.T) {
		t.Parallel()
		store := NewStore()

		building, err := store.CreateBuilding(ctx, persistence.Building{Name: "Main"})
		if err != nil {
			t.Fatalf("seed building failed: %v", err)
		}
		if _, err := store.CreateRoom(ctx, persistence.Room{RoomNumber: "ST101", BuildingID: building.ID, Capacity: 30}); err != nil {
			t.Fatalf("seed room failed: %v", err)
		}

		if err := store.DeleteBuilding(ctx, building.ID); !errors.Is(err, persistence.ErrForeignKeyViolation) {
			t.Fatalf("expected ErrForeignKeyViolation, got %v", err)
		}
	})

	t.Run("duplicate room number within a building", func(t *testing.T) {
		t.Parallel()
		store := NewStore()

		building, err := store.CreateBuilding(ctx, persistence.Building{Name: "Main"})
		if err != nil {
			t.Fatalf("seed building failed: %v", err)
		}
		if _, err := store.CreateRoom(ctx, persistence.Room{RoomNumber: "ST101", BuildingID: building.ID, Capacity: 30}); err != nil {
			t.Fatalf("seed room failed: %v", err)
		}

		_, err = store.CreateRoom(ctx, persistence.Room{RoomNumber: "ST101", BuildingID: building.ID, Capacity: 60})
		if !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}
	})
}

func TestStore_Sessions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewStore()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	session, err := store.CreateSession(ctx, persistence.Session{
		ID: "session-1", UserID: 1, TokenHash: "hash-1",
		ExpiresAt: now.Add(time.Hour), CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateSession returned error: %v", err)
	}

	found, err := store.GetSessionByTokenHash(ctx, "hash-1")
	if err != nil || found.ID != session.ID {
		t.Fatalf("GetSessionByTokenHash = %+v, %v", found, err)
	}

	if err := store.RevokeSession(ctx, session.ID, now.Add(time.Minute)); err != nil {
		t.Fatalf("RevokeSession returned error: %v", err)
	}
	revoked, err := store.GetSessionByTokenHash(ctx, "hash-1")
	if err != nil {
		t.Fatalf("revoked session should still resolve, got %v", err)
	}
	if revoked.RevokedAt == nil || !revoked.RevokedAt.Equal(now.Add(time.Minute)) {
		t.Fatalf("expected revocation timestamp, got %+v", revoked.RevokedAt)
	}

	if err := store.DeleteExpiredSessions(ctx, now.Add(2*time.Hour)); err != nil {
		t.Fatalf("DeleteExpiredSessions returned error: %v", err)
	}
	if _, err := store.GetSessionByTokenHash(ctx, "hash-1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected session purged, got %v", err)
	}
}
