package sqlite

import (
	"context"
	"fmt"

	"github.com/example/classroom-scheduler/internal/persistence"
)

// UserRepository implements persistence.UserRepository using SQLite.
type UserRepository struct {
	store *Store
}

// NewUserRepository creates a new SQLite user repository.
func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

const userColumns = `id, name, email, password_hash, role`

// CreateUser inserts a new account.
func (r *UserRepository) CreateUser(ctx context.Context, user persistence.User) (persistence.User, error) {
	result, err := r.store.db.ExecContext(ctx, `
		INSERT INTO users (name, email, password_hash, role)
		VALUES (?, ?, ?, ?)`,
		user.Name, user.Email, user.PasswordHash, string(user.Role),
	)
	if err != nil {
		return persistence.User{}, mapError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistence.User{}, fmt.Errorf("failed to get inserted id: %w", err)
	}
	user.ID = id
	return user, nil
}

// GetUser retrieves an account by id.
func (r *UserRepository) GetUser(ctx context.Context, id int64) (persistence.User, error) {
	return r.scanUser(r.store.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

// GetUserByEmail retrieves an account by email address.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	return r.scanUser(r.store.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

// UpdateUser overwrites an existing account.
func (r *UserRepository) UpdateUser(ctx context.Context, user persistence.User) (persistence.User, error) {
	result, err := r.store.db.ExecContext(ctx, `
		UPDATE users
		SET name = ?, email = ?, password_hash = ?, role = ?
		WHERE id = ?`,
		user.Name, user.Email, user.PasswordHash, string(user.Role), user.ID,
	)
	if err != nil {
		return persistence.User{}, mapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.User{}, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.User{}, persistence.ErrNotFound
	}
	return user, nil
}

// DeleteUser removes an account. Users referenced by schedules fail with a
// foreign key violation.
func (r *UserRepository) DeleteUser(ctx context.Context, id int64) error {
	result, err := r.store.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// ListUsers returns all accounts ordered by name.
func (r *UserRepository) ListUsers(ctx context.Context) ([]persistence.User, error) {
	rows, err := r.store.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var users []persistence.User
	for rows.Next() {
		var user persistence.User
		var role string
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &role); err != nil {
			return nil, mapError(err)
		}
		user.Role = persistence.UserRole(role)
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return users, nil
}

func (r *UserRepository) scanUser(row rowScanner) (persistence.User, error) {
	var user persistence.User
	var role string
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &role); err != nil {
		return persistence.User{}, mapError(err)
	}
	user.Role = persistence.UserRole(role)
	return user, nil
}
