package http

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/example/classroom-scheduler/internal/application"
)

// TokenVerifier validates a bearer token and returns the principal it asserts.
type TokenVerifier interface {
	VerifyAccessToken(token string) (application.Principal, error)
}

// RequireAuth rejects requests without a valid bearer token and attaches the
// verified principal to the request context.
func RequireAuth(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingToken)
				return
			}

			principal, err := verifier.VerifyAccessToken(token)
			if err != nil {
				responder.writeJSON(r.Context(), w, http.StatusUnauthorized, errorResponse{Message: "invalid or expired token"})
				return
			}

			ctx := ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestLogger attaches a request-scoped logger carrying a generated
// request id, and logs request start and completion.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := base.With(
				"request_id", uuid.NewString(),
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := ContextWithLogger(r.Context(), logger)
			start := time.Now()
			logger.InfoContext(ctx, "request started")
			next.ServeHTTP(w, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed", "duration", time.Since(start))
		})
	}
}

// clientLimiters holds one token bucket per client address. Idle entries are
// evicted after clientLimiterTTL so the map does not grow without bound.
type clientLimiters struct {
	mu        sync.Mutex
	limiters  map[string]*clientLimiter
	perSecond rate.Limit
	burst     int
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const clientLimiterTTL = 10 * time.Minute

func (c *clientLimiters) get(addr string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	entry, ok := c.limiters[addr]
	if !ok {
		entry = &clientLimiter{limiter: rate.NewLimiter(c.perSecond, c.burst)}
		c.limiters[addr] = entry
	}
	entry.lastSeen = now

	for key, other := range c.limiters {
		if now.Sub(other.lastSeen) > clientLimiterTTL {
			delete(c.limiters, key)
		}
	}
	return entry.limiter
}

// RateLimit caps the request rate per client address with a token bucket.
// Requests beyond the burst are rejected immediately with 429.
func RateLimit(perSecond float64, burst int, logger *slog.Logger) func(http.Handler) http.Handler {
	limiters := &clientLimiters{
		limiters:  make(map[string]*clientLimiter),
		perSecond: rate.Limit(perSecond),
		burst:     burst,
	}
	responder := newResponder(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiters.get(clientAddr(r)).Allow() {
				responder.writeJSON(r.Context(), w, http.StatusTooManyRequests, errorResponse{Message: "too many requests"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientAddr keys rate limiting by the peer host, ignoring the ephemeral port.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}
