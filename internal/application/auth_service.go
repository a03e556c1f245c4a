package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/example/classroom-scheduler/internal/persistence"
)

// AuthConfig carries the token issuing parameters.
type AuthConfig struct {
	JWTSecret       []byte
	Issuer          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// TokenPair is what a successful login or refresh hands back: a short-lived
// signed access token plus an opaque refresh token backed by a stored session.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

type accessClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService issues and verifies credentials. Access tokens are HS256 JWTs;
// refresh tokens are random opaque strings stored server-side as SHA-256
// hashes so a database leak does not leak usable tokens.
type AuthService struct {
	users    persistence.UserRepository
	sessions persistence.SessionRepository
	config   AuthConfig
	now      func() time.Time
	logger   *slog.Logger
}

// NewAuthService constructs an auth service with the provided dependencies.
func NewAuthService(users persistence.UserRepository, sessions persistence.SessionRepository, config AuthConfig, now func() time.Time) *AuthService {
	return NewAuthServiceWithLogger(users, sessions, config, now, nil)
}

// NewAuthServiceWithLogger constructs an auth service with a specified logger.
func NewAuthServiceWithLogger(users persistence.UserRepository, sessions persistence.SessionRepository, config AuthConfig, now func() time.Time, logger *slog.Logger) *AuthService {
	if now == nil {
		now = time.Now
	}
	if config.AccessTokenTTL <= 0 {
		config.AccessTokenTTL = 15 * time.Minute
	}
	if config.RefreshTokenTTL <= 0 {
		config.RefreshTokenTTL = 7 * 24 * time.Hour
	}
	return &AuthService{
		users:    users,
		sessions: sessions,
		config:   config,
		now:      now,
		logger:   defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Login verifies the password and issues a fresh token pair. Unknown emails
// and wrong passwords produce the same ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (pair TokenPair, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Login")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "login failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "login succeeded")
	}()

	user, gErr := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if gErr != nil {
		if errors.Is(gErr, persistence.ErrNotFound) {
			err = ErrInvalidCredentials
			return
		}
		err = gErr
		return
	}

	if vErr := VerifyPassword(user.PasswordHash, password); vErr != nil {
		err = vErr
		return
	}

	return s.issueTokens(ctx, user)
}

// Refresh rotates a valid refresh token: the presented session is revoked
// and a new pair is issued. Expired and revoked sessions fail with their
// own sentinel so callers can distinguish re-login from replay.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (pair TokenPair, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Refresh")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "token refresh failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "token refreshed")
	}()

	session, gErr := s.sessions.GetSessionByTokenHash(ctx, hashRefreshToken(refreshToken))
	if gErr != nil {
		if errors.Is(gErr, persistence.ErrNotFound) {
			err = ErrInvalidCredentials
			return
		}
		err = gErr
		return
	}

	now := s.now().UTC()
	if session.RevokedAt != nil {
		err = ErrSessionRevoked
		return
	}
	if !session.ExpiresAt.After(now) {
		err = ErrSessionExpired
		return
	}

	user, uErr := s.users.GetUser(ctx, session.UserID)
	if uErr != nil {
		if errors.Is(uErr, persistence.ErrNotFound) {
			err = ErrInvalidCredentials
			return
		}
		err = uErr
		return
	}

	if err = s.sessions.RevokeSession(ctx, session.ID, now); err != nil {
		return
	}
	return s.issueTokens(ctx, user)
}

// Logout revokes the session behind a refresh token. Unknown tokens succeed
// silently so logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) (err error) {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}

	logger := s.loggerWith(ctx, "Logout")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "logout failed", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	session, gErr := s.sessions.GetSessionByTokenHash(ctx, hashRefreshToken(refreshToken))
	if gErr != nil {
		if errors.Is(gErr, persistence.ErrNotFound) {
			return nil
		}
		err = gErr
		return
	}
	if session.RevokedAt != nil {
		return nil
	}

	err = s.sessions.RevokeSession(ctx, session.ID, s.now().UTC())
	return
}

// VerifyAccessToken parses and validates a bearer token and returns the
// principal it asserts.
func (s *AuthService) VerifyAccessToken(tokenString string) (Principal, error) {
	if s == nil {
		return Principal{}, fmt.Errorf("AuthService is nil")
	}

	claims := &accessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.config.JWTSecret, nil
	}, jwt.WithIssuer(s.config.Issuer), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return Principal{}, ErrUnauthorized
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return Principal{}, ErrUnauthorized
	}

	return Principal{
		UserID:  userID,
		Email:   claims.Email,
		IsAdmin: claims.Role == string(persistence.RoleAdmin),
	}, nil
}

// PurgeExpiredSessions removes sessions whose refresh window has passed.
// Intended to run periodically from the server loop.
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	return s.sessions.DeleteExpiredSessions(ctx, s.now().UTC())
}

func (s *AuthService) issueTokens(ctx context.Context, user persistence.User) (TokenPair, error) {
	now := s.now().UTC()
	expiresAt := now.Add(s.config.AccessTokenTTL)

	claims := accessClaims{
		Email: user.Email,
		Role:  string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			Issuer:    s.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.config.JWTSecret)
	if err != nil {
		return TokenPair{}, err
	}

	refreshToken := uuid.NewString()
	_, err = s.sessions.CreateSession(ctx, persistence.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		TokenHash: hashRefreshToken(refreshToken),
		ExpiresAt: now.Add(s.config.RefreshTokenTTL),
		CreatedAt: now,
	})
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

func hashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
