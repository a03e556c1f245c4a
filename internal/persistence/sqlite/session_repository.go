package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/classroom-scheduler/internal/persistence"
)

// SessionRepository implements persistence.SessionRepository using SQLite.
type SessionRepository struct {
	store *Store
}

// NewSessionRepository creates a new SQLite session repository.
func NewSessionRepository(store *Store) *SessionRepository {
	return &SessionRepository{store: store}
}

// CreateSession inserts a refresh-token session.
func (r *SessionRepository) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	_, err := r.store.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, token_hash, expires_at, created_at, revoked_at)
		VALUES (?, ?, ?, ?, ?, NULL)`,
		session.ID,
		session.UserID,
		session.TokenHash,
		session.ExpiresAt.UTC().Format(time.RFC3339),
		session.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return persistence.Session{}, mapError(err)
	}
	return session, nil
}

// GetSessionByTokenHash retrieves a session by the hash of its refresh token.
func (r *SessionRepository) GetSessionByTokenHash(ctx context.Context, tokenHash string) (persistence.Session, error) {
	var (
		session               persistence.Session
		expiresStr, createdAt string
		revokedAt             sql.NullString
	)
	err := r.store.db.QueryRowContext(ctx, `
		SELECT id, user_id, token_hash, expires_at, created_at, revoked_at
		FROM sessions WHERE token_hash = ?`, tokenHash,
	).Scan(&session.ID, &session.UserID, &session.TokenHash, &expiresStr, &createdAt, &revokedAt)
	if err != nil {
		return persistence.Session{}, mapError(err)
	}

	if session.ExpiresAt, err = time.Parse(time.RFC3339, expiresStr); err != nil {
		return persistence.Session{}, fmt.Errorf("failed to parse expires_at: %w", err)
	}
	if session.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.Session{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if revokedAt.Valid {
		parsed, err := time.Parse(time.RFC3339, revokedAt.String)
		if err != nil {
			return persistence.Session{}, fmt.Errorf("failed to parse revoked_at: %w", err)
		}
		session.RevokedAt = &parsed
	}
	return session, nil
}

// RevokeSession marks a session revoked.
func (r *SessionRepository) RevokeSession(ctx context.Context, id string, revokedAt time.Time) error {
	result, err := r.store.db.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = ? WHERE id = ?`,
		revokedAt.UTC().Format(time.RFC3339), id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

// DeleteExpiredSessions removes sessions whose refresh window has passed.
func (r *SessionRepository) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	_, err := r.store.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= ?`,
		reference.UTC().Format(time.RFC3339))
	if err != nil {
		return mapError(err)
	}
	return nil
}
