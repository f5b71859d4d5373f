package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lorrc/ticket-board/internal/auth"
	"github.com/lorrc/ticket-board/internal/infrastructure/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTMiddleware(t *testing.T) {
	tm := auth.NewTokenManager("test-secret-key-that-is-long-enough", time.Hour)
	token, err := tm.GenerateToken("user-1", "agent@example.com", []string{"admin"})
	require.NoError(t, err)

	var (
		gotClaims *auth.Claims
		gotToken  string
		gotUserID any
	)
	handler := JWTMiddleware(tm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, _ = GetClaims(r.Context())
		gotToken = auth.BearerToken(r.Context())
		gotUserID = r.Context().Value(logging.UserIDKey)
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "valid token", header: "Bearer " + token, wantStatus: http.StatusNoContent},
		{name: "lowercase scheme", header: "bearer " + token, wantStatus: http.StatusNoContent},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer not-a-jwt", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotClaims, gotToken, gotUserID = nil, "", nil

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus != http.StatusNoContent {
				assert.Nil(t, gotClaims)
				assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
				return
			}
			require.NotNil(t, gotClaims)
			assert.Equal(t, "user-1", gotClaims.UserID())
			assert.Equal(t, token, gotToken)
			assert.Equal(t, "user-1", gotUserID)
		})
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	t.Run("generates one", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
	})

	t.Run("keeps the caller's", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "abc-123", seen)
		assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
	})
}

func TestRateLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := NewRateLimiter(ctx, RateLimiterConfig{RequestsPerSecond: 0.001, BurstSize: 2})
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	t.Run("by ip", func(t *testing.T) {
		handler := rl.Middleware(ok)
		codes := make([]int, 0, 3)
		for i := 0; i < 3; i++ {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			codes = append(codes, rec.Code)
		}
		assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	})

	t.Run("per user buckets are independent", func(t *testing.T) {
		handler := rl.PerUser(ok)
		send := func(userID string) int {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			req = req.WithContext(WithClaims(req.Context(), &auth.Claims{ID: userID}))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			return rec.Code
		}

		assert.Equal(t, http.StatusOK, send("u1"))
		assert.Equal(t, http.StatusOK, send("u1"))
		assert.Equal(t, http.StatusTooManyRequests, send("u1"))
		assert.Equal(t, http.StatusOK, send("u2"))
	})

	t.Run("evicts idle visitors", func(t *testing.T) {
		rl.Allow("stale")
		time.Sleep(5 * time.Millisecond)
		assert.GreaterOrEqual(t, rl.evict(time.Millisecond), 1)
	})
}

func TestRecoveryLogger(t *testing.T) {
	handler := RecoveryLogger(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRequireAnyRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	send := func(h http.Handler, claims *auth.Claims) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if claims != nil {
			req = req.WithContext(WithClaims(req.Context(), claims))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send(RequireAnyRole()(ok), &auth.Claims{ID: "u1"}))
	assert.Equal(t, http.StatusOK, send(RequireAnyRole("admin", "staff")(ok), &auth.Claims{ID: "u1", Roles: []string{"staff"}}))
	assert.Equal(t, http.StatusForbidden, send(RequireAnyRole("admin")(ok), &auth.Claims{ID: "u1", Roles: []string{"customer"}}))
	assert.Equal(t, http.StatusUnauthorized, send(RequireAnyRole("admin")(ok), nil))
}
