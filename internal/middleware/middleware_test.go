package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func request(remoteAddr string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/game/state", nil)
	r.RemoteAddr = remoteAddr
	return r
}

func TestRateLimiterRejectsBurst(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{Enabled: true, RequestsPerSecond: 0.001, BurstSize: 2})
	handler := rl.Middleware(okHandler)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, request("10.0.0.1:5000"))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, request("10.0.0.1:5001"))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "rate_limited", body["error"])

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, request("10.0.0.2:5000"))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiterDisabled(t *testing.T) {
	handler := NewRateLimiter(RateLimitConfig{Enabled: false, RequestsPerSecond: 0.001, BurstSize: 1}).Middleware(okHandler)

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, request("10.0.0.1:5000"))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimiterPrunesRefilledClients(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 10, BurstSize: 1})
	now := time.Now()
	rl.now = func() time.Time { return now }

	rl.getLimiter("a").AllowN(now, 1)
	rl.getLimiter("b")

	assert.Equal(t, 1, rl.prune())
	assert.Len(t, rl.clients, 1)

	rl.now = func() time.Time { return now.Add(time.Second) }
	assert.Equal(t, 1, rl.prune())
	assert.Empty(t, rl.clients)
}

func TestGetClientIP(t *testing.T) {
	r := request("192.168.1.1:12345")
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	assert.Equal(t, "192.168.1.1", getClientIP(r, false))
	assert.Equal(t, "203.0.113.7", getClientIP(r, true))
}

func TestRequestIDGenerated(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, request("10.0.0.1:1"))

	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
}

func TestRequestIDReused(t *testing.T) {
	id := uuid.NewString()
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	r := request("10.0.0.1:1")
	r.Header.Set(RequestIDHeader, id)
	handler.ServeHTTP(httptest.NewRecorder(), r)
	assert.Equal(t, id, seen)

	r = request("10.0.0.1:1")
	r.Header.Set(RequestIDHeader, "not-a-uuid")
	handler.ServeHTTP(httptest.NewRecorder(), r)
	assert.NotEqual(t, "not-a-uuid", seen)
}
