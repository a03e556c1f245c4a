package application

import (
	"context"
	"errors"
	"testing"

	"github.com/example/classroom-scheduler/internal/persistence"
	"github.com/example/classroom-scheduler/internal/persistence/memory"
)

func seedUser(t *testing.T, store *memory.Store, email string, role persistence.UserRole) persistence.User {
	t.Helper()
	hash, err := HashPassword("initial-password", testArgon2idParams)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user, err := store.CreateUser(context.Background(), persistence.User{
		Name: "Seeded User", Email: email, PasswordHash: hash, Role: role,
	})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func TestUserService_CreateUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	admin := Principal{UserID: 1, Email: "admin@college.edu", IsAdmin: true}

	input := UserInput{
		Name:     "New Faculty",
		Email:    "New.Faculty@College.edu",
		Password: "long-enough-password",
		Role:     persistence.RoleFaculty,
	}

	t.Run("admin creates a user with a normalized email", func(t *testing.T) {
		t.Parallel()
		store := memory.NewStore()
		service := NewUserService(store)

		user, err := service.CreateUser(ctx, admin, input)
		if err != nil {
			t.Fatalf("CreateUser returned error: %v", err)
		}
		if user.Email != "new.faculty@college.edu" {
			t.Fatalf("expected lowercased email, got %q", user.Email)
		}
		if user.PasswordHash == "" || user.PasswordHash == input.Password {
			t.Fatal("expected the password to be stored hashed")
		}
	})

	t.Run("non admins are rejected", func(t *testing.T) {
		t.Parallel()
		store := memory.NewStore()
		service := NewUserService(store)

		_, err := service.CreateUser(ctx, Principal{UserID: 2, Email: "faculty@college.edu"}, input)
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("short passwords fail validation", func(t *testing.T) {
		t.Parallel()
		store := memory.NewStore()
		service := NewUserService(store)

		short := input
		short.Password = "short"
		_, err := service.CreateUser(ctx, admin, short)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if _, ok := vErr.FieldErrors["password"]; !ok {
			t.Fatalf("expected a password field error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("unknown roles fail validation", func(t *testing.T) {
		t.Parallel()
		store := memory.NewStore()
		service := NewUserService(store)

		badRole := input
		badRole.Role = persistence.UserRole("SUPERUSER")
		_, err := service.CreateUser(ctx, admin, badRole)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if _, ok := vErr.FieldErrors["role"]; !ok {
			t.Fatalf("expected a role field error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("duplicate emails fail validation", func(t *testing.T) {
		t.Parallel()
		store := memory.NewStore()
		service := NewUserService(store)
		seedUser(t, store, "new.faculty@college.edu", persistence.RoleFaculty)

		_, err := service.CreateUser(ctx, admin, input)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}

func TestUserService_UpdateUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	admin := Principal{UserID: 1, Email: "admin@college.edu", IsAdmin: true}

	t.Run("users may edit themselves but not their role", func(t *testing.T) {
		t.Parallel()
		store := memory.NewStore()
		service := NewUserService(store)
		user := seedUser(t, store, "faculty@college.edu", persistence.RoleFaculty)
		self := Principal{UserID: user.ID, Email: user.Email}

		updated, err := service.UpdateUser(ctx, self, user.ID, UserInput{
			Name: "Renamed Faculty", Email: user.Email, Role: persistence.RoleFaculty,
		})
		if err != nil {
			t.Fatalf("self update returned error: %v", err)
		}
		if updated.Name != "Renamed Faculty" {
			t.Fatalf("expected renamed user, got %q", updated.Name)
		}

		_, err = service.UpdateUser(ctx, self, user.ID, UserInput{
			Name: user.Name, Email: user.Email, Role: persistence.RoleAdmin,
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected role escalation to be rejected, got %v", err)
		}
	})

	t.Run("users may not edit others", func(t *testing.T) {
		t.Parallel()
		store := memory.NewStore()
		service := NewUserService(store)
		first := seedUser(t, store, "first@college.edu", persistence.RoleFaculty)
		second := seedUser(t, store, "second@college.edu", persistence.RoleFaculty)

		_, err := service.UpdateUser(ctx, Principal{UserID: first.ID, Email: first.Email}, second.ID, UserInput{
			Name: "Hijacked", Email: second.Email, Role: persistence.RoleFaculty,
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("update keeps the stored password hash", func(t *testing.T) {
		t.Parallel()
		store := memory.NewStore()
		service := NewUserService(store)
		user := seedUser(t, store, "faculty@college.edu", persistence.RoleFaculty)

		updated, err := service.UpdateUser(ctx, admin, user.ID, UserInput{
			Name: user.Name, Email: user.Email, Password: "ignored-password", Role: persistence.RoleAdmin,
		})
		if err != nil {
			t.Fatalf("UpdateUser returned error: %v", err)
		}
		if updated.PasswordHash != user.PasswordHash {
			t.Fatal("expected the original hash to be preserved on update")
		}
		if updated.Role != persistence.RoleAdmin {
			t.Fatalf("admin should be able to change roles, got %s", updated.Role)
		}
	})
}

func TestUserService_DeleteUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	admin := Principal{UserID: 1, Email: "admin@college.edu", IsAdmin: true}

	t.Run("admin deletes a user", func(t *testing.T) {
		t.Parallel()
		store := memory.NewStore()
		service := NewUserService(store)
		user := seedUser(t, store, "faculty@college.edu", persistence.RoleFaculty)

		if err := service.DeleteUser(ctx, admin, user.ID); err != nil {
			t.Fatalf("DeleteUser returned error: %v", err)
		}
		if _, err := service.GetUser(ctx, user.ID); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected user gone, got %v", err)
		}
	})

	t.Run("non admins are rejected", func(t *testing.T) {
		t.Parallel()
		store := memory.NewStore()
		service := NewUserService(store)
		user := seedUser(t, store, "faculty@college.edu", persistence.RoleFaculty)

		err := service.DeleteUser(ctx, Principal{UserID: user.ID, Email: user.Email}, user.ID)
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("missing users are not found", func(t *testing.T) {
		t.Parallel()
		store := memory.NewStore()
		service := NewUserService(store)

		if err := service.DeleteUser(ctx, admin, 404); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
