package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/example/classroom-scheduler/internal/persistence"
	"github.com/example/classroom-scheduler/internal/persistence/memory"
)

// testClock is an adjustable time source shared with the service under test.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type authFixture struct {
	store   *memory.Store
	service *AuthService
	clock   *testClock
	user    persistence.User
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	clock := newTestClock()

	hash, err := HashPassword("faculty-password", testArgon2idParams)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user, err := store.CreateUser(ctx, persistence.User{
		Name: "Faculty Member", Email: "faculty@college.edu", PasswordHash: hash, Role: persistence.RoleFaculty,
	})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	service := NewAuthService(store, store, AuthConfig{
		JWTSecret:       []byte("test-secret"),
		Issuer:          "classroom-scheduler",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	}, clock.Now)

	return &authFixture{store: store, service: service, clock: clock, user: user}
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("issues a verifiable token pair", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)

		pair, err := f.service.Login(ctx, "faculty@college.edu", "faculty-password")
		if err != nil {
			t.Fatalf("Login returned error: %v", err)
		}
		if pair.AccessToken == "" || pair.RefreshToken == "" {
			t.Fatal("expected both tokens to be set")
		}

		principal, err := f.service.VerifyAccessToken(pair.AccessToken)
		if err != nil {
			t.Fatalf("VerifyAccessToken returned error: %v", err)
		}
		if principal.UserID != f.user.ID || principal.Email != "faculty@college.edu" || principal.IsAdmin {
			t.Fatalf("unexpected principal: %+v", principal)
		}
	})

	t.Run("normalizes the email", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)

		if _, err := f.service.Login(ctx, "  Faculty@College.EDU ", "faculty-password"); err != nil {
			t.Fatalf("expected case insensitive login, got %v", err)
		}
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)

		_, unknownErr := f.service.Login(ctx, "nobody@college.edu", "faculty-password")
		if !errors.Is(unknownErr, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", unknownErr)
		}
		_, wrongErr := f.service.Login(ctx, "faculty@college.edu", "not-the-password")
		if !errors.Is(wrongErr, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", wrongErr)
		}
	})
}

func TestAuthService_Refresh(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("rotates the refresh token", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)

		pair, err := f.service.Login(ctx, "faculty@college.edu", "faculty-password")
		if err != nil {
			t.Fatalf("Login returned error: %v", err)
		}

		rotated, err := f.service.Refresh(ctx, pair.RefreshToken)
		if err != nil {
			t.Fatalf("Refresh returned error: %v", err)
		}
		if rotated.RefreshToken == pair.RefreshToken {
			t.Fatal("expected a new refresh token after rotation")
		}

		// The presented token is revoked by the rotation and cannot be replayed.
		if _, err := f.service.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrSessionRevoked) {
			t.Fatalf("expected ErrSessionRevoked on replay, got %v", err)
		}
		if _, err := f.service.Refresh(ctx, rotated.RefreshToken); err != nil {
			t.Fatalf("rotated token should refresh, got %v", err)
		}
	})

	t.Run("expired sessions fail with their own sentinel", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)

		pair, err := f.service.Login(ctx, "faculty@college.edu", "faculty-password")
		if err != nil {
			t.Fatalf("Login returned error: %v", err)
		}

		f.clock.Advance(25 * time.Hour)
		if _, err := f.service.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrSessionExpired) {
			t.Fatalf("expected ErrSessionExpired, got %v", err)
		}
	})

	t.Run("unknown tokens are invalid credentials", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)

		if _, err := f.service.Refresh(ctx, "never-issued"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestAuthService_Logout(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newAuthFixture(t)

	pair, err := f.service.Login(ctx, "faculty@college.edu", "faculty-password")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if err := f.service.Logout(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if _, err := f.service.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrSessionRevoked) {
		t.Fatalf("expected ErrSessionRevoked after logout, got %v", err)
	}

	// Logout is idempotent for repeated and unknown tokens alike.
	if err := f.service.Logout(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("repeated Logout returned error: %v", err)
	}
	if err := f.service.Logout(ctx, "never-issued"); err != nil {
		t.Fatalf("Logout of unknown token returned error: %v", err)
	}
}

func TestAuthService_VerifyAccessToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("rejects expired tokens", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)

		pair, err := f.service.Login(ctx, "faculty@college.edu", "faculty-password")
		if err != nil {
			t.Fatalf("Login returned error: %v", err)
		}

		f.clock.Advance(16 * time.Minute)
		if _, err := f.service.VerifyAccessToken(pair.AccessToken); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized for expired token, got %v", err)
		}
	})

	t.Run("rejects tokens signed with a different secret", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)

		other := NewAuthService(f.store, f.store, AuthConfig{
			JWTSecret: []byte("other-secret"),
			Issuer:    "classroom-scheduler",
		}, f.clock.Now)
		pair, err := other.Login(ctx, "faculty@college.edu", "faculty-password")
		if err != nil {
			t.Fatalf("Login returned error: %v", err)
		}

		if _, err := f.service.VerifyAccessToken(pair.AccessToken); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized for foreign signature, got %v", err)
		}
	})

	t.Run("rejects garbage", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)

		if _, err := f.service.VerifyAccessToken("not.a.jwt"); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}
