package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/classroom-scheduler/internal/persistence"
)

// UserService manages user accounts. Password material never leaves this
// package: callers supply plaintext on create and receive records whose
// PasswordHash the transport layer must not serialize.
type UserService struct {
	users      persistence.UserRepository
	hashParams Argon2idParams
	logger     *slog.Logger
}

// NewUserService constructs a user service with the provided repository.
func NewUserService(users persistence.UserRepository) *UserService {
	return NewUserServiceWithLogger(users, nil)
}

// NewUserServiceWithLogger constructs a user service with a specified logger.
func NewUserServiceWithLogger(users persistence.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{
		users:      users,
		hashParams: DefaultArgon2idParams,
		logger:     defaultLogger(logger),
	}
}

func (s *UserService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "UserService", operation, attrs...)
}

// CreateUser validates input, hashes the password, and persists a new
// account for administrators.
func (s *UserService) CreateUser(ctx context.Context, principal Principal, input UserInput) (user persistence.User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateUser", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create user", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", user.ID).InfoContext(ctx, "user created")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	if vErr := validateUserInput(input, true); vErr.HasErrors() {
		err = vErr
		return
	}

	hash, hErr := HashPassword(input.Password, s.hashParams)
	if hErr != nil {
		err = hErr
		return
	}

	user, err = s.users.CreateUser(ctx, persistence.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        normalizeEmail(input.Email),
		PasswordHash: hash,
		Role:         input.Role,
	})
	if err != nil {
		err = mapCatalogWriteError(err, "email", "a user with that email already exists")
	}
	return
}

// UpdateUser updates profile fields. Administrators may update anyone;
// other users may only update themselves, and may not change their role.
// The stored password hash is kept; password changes go through a
// dedicated flow.
func (s *UserService) UpdateUser(ctx context.Context, principal Principal, id int64, input UserInput) (user persistence.User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}

	logger := s.loggerWith(ctx, "UpdateUser", "user_id", id, "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update user", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "user updated")
	}()

	if !principal.IsAdmin && principal.UserID != id {
		err = ErrUnauthorized
		return
	}

	if vErr := validateUserInput(input, false); vErr.HasErrors() {
		err = vErr
		return
	}

	existing, gErr := s.users.GetUser(ctx, id)
	if gErr != nil {
		if errors.Is(gErr, persistence.ErrNotFound) {
			err = notFoundByID("User", id)
			return
		}
		err = gErr
		return
	}

	if !principal.IsAdmin && input.Role != existing.Role {
		err = ErrUnauthorized
		return
	}

	existing.Name = strings.TrimSpace(input.Name)
	existing.Email = normalizeEmail(input.Email)
	existing.Role = input.Role

	user, err = s.users.UpdateUser(ctx, existing)
	if err != nil {
		err = mapCatalogWriteError(err, "email", "a user with that email already exists")
	}
	return
}

// DeleteUser removes an account for administrators. Users owning schedules
// cannot be removed.
func (s *UserService) DeleteUser(ctx context.Context, principal Principal, id int64) (err error) {
	if s == nil {
		return fmt.Errorf("UserService is nil")
	}

	logger := s.loggerWith(ctx, "DeleteUser", "user_id", id, "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete user", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "user deleted")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	if err = s.users.DeleteUser(ctx, id); err != nil {
		switch {
		case errors.Is(err, persistence.ErrNotFound):
			err = notFoundByID("User", id)
		case errors.Is(err, persistence.ErrForeignKeyViolation):
			vErr := &ValidationError{}
			vErr.add("user", "user owns existing schedules")
			err = vErr
		}
	}
	return
}

// GetUser returns a single account by id.
func (s *UserService) GetUser(ctx context.Context, id int64) (persistence.User, error) {
	if s == nil {
		return persistence.User{}, fmt.Errorf("UserService is nil")
	}

	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.User{}, notFoundByID("User", id)
		}
		return persistence.User{}, err
	}
	return user, nil
}

// GetUserByEmail returns a single account by email address.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	if s == nil {
		return persistence.User{}, fmt.Errorf("UserService is nil")
	}

	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.User{}, notFoundByEmail("User", email)
		}
		return persistence.User{}, err
	}
	return user, nil
}

// ListUsers returns every account ordered by name.
func (s *UserService) ListUsers(ctx context.Context) ([]persistence.User, error) {
	if s == nil {
		return nil, fmt.Errorf("UserService is nil")
	}
	return s.users.ListUsers(ctx)
}

func validateUserInput(input UserInput, requirePassword bool) *ValidationError {
	vErr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	email := normalizeEmail(input.Email)
	if email == "" {
		vErr.add("email", "email is required")
	} else if !strings.Contains(email, "@") {
		vErr.add("email", "email must be a valid address")
	}
	if requirePassword && len(input.Password) < 8 {
		vErr.add("password", "password must be at least 8 characters")
	}
	if !input.Role.Valid() {
		vErr.add("role", "role must be ADMIN or FACULTY")
	}
	return vErr
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
