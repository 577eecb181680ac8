package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fintrack/internal/log"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, limit int) (*Limiter, *time.Time) {
	t.Helper()
	rl := NewLimiter(Config{Requests: limit, Period: time.Minute}, log.Discard())
	t.Cleanup(rl.Stop)
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }
	return rl, &clock
}

func TestAllowWithinWindow(t *testing.T) {
	rl, clock := newTestLimiter(t, 3)

	for i := 0; i < 3; i++ {
		ok, _ := rl.Allow("1.2.3.4")
		require.True(t, ok, "request %d should pass", i+1)
	}

	ok, retry := rl.Allow("1.2.3.4")
	assert.False(t, ok)
	assert.Equal(t, time.Minute, retry)
	assert.Equal(t, int64(1), rl.Rejected())

	ok, _ = rl.Allow("5.6.7.8")
	assert.True(t, ok, "other clients are tracked separately")

	*clock = clock.Add(30 * time.Second)
	_, retry = rl.Allow("1.2.3.4")
	assert.Equal(t, 30*time.Second, retry)

	*clock = clock.Add(30 * time.Second)
	ok, _ = rl.Allow("1.2.3.4")
	assert.True(t, ok, "window resets after the period")
}

func TestCleanupStaleEntries(t *testing.T) {
	rl, clock := newTestLimiter(t, 3)
	rl.Allow("a")
	rl.Allow("b")
	assert.Equal(t, 2, rl.ActiveClients())

	*clock = clock.Add(2 * time.Minute)
	rl.Allow("c")
	assert.Equal(t, 2, rl.cleanupStaleEntries())
	assert.Equal(t, 1, rl.ActiveClients())
}

func TestMiddlewareLimitsPostsOnly(t *testing.T) {
	rl, _ := newTestLimiter(t, 1)
	handler := rl.Middleware(func(*http.Request) string { return "9.9.9.9" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

	do := func(method string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(method, "/login", nil))
		return rec
	}

	assert.Equal(t, http.StatusNoContent, do(http.MethodPost).Code)
	rec := do(http.MethodPost)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusNoContent, do(http.MethodGet).Code)
}

func TestNewLimiterDefaults(t *testing.T) {
	rl := NewLimiter(Config{}, nil)
	defer rl.Stop()
	assert.Equal(t, 10, rl.limit)
	assert.Equal(t, time.Minute, rl.period)
	rl.Stop()
}
