package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRateLimit_PerClientBuckets(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	// Zero refill rate so each client gets exactly its burst.
	handler := RateLimit(0, 2, logger)(next)

	send := func(remoteAddr string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/rooms", nil)
		req.RemoteAddr = remoteAddr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	t.Run("an exhausted client is rejected", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			if code := send("10.0.0.1:50001"); code != http.StatusNoContent {
				t.Fatalf("request %d: expected 204, got %d", i+1, code)
			}
		}
		if code := send("10.0.0.1:50001"); code != http.StatusTooManyRequests {
			t.Fatalf("expected 429 after the burst, got %d", code)
		}
	})

	t.Run("other clients keep their own bucket", func(t *testing.T) {
		if code := send("10.0.0.2:50002"); code != http.StatusNoContent {
			t.Fatalf("expected 204 for a fresh client, got %d", code)
		}
	})

	t.Run("ports do not split a client's bucket", func(t *testing.T) {
		if code := send("10.0.0.1:50099"); code != http.StatusTooManyRequests {
			t.Fatalf("expected 429 for the exhausted host on a new port, got %d", code)
		}
	})
}
