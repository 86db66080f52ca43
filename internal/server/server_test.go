package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonathan/outreach-tracker/internal/config"
	"github.com/jonathan/outreach-tracker/internal/server/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testNow = time.Date(2024, 1, 25, 15, 0, 0, 0, time.UTC)

const testOrigin = "https://app.example.com"

// newTestServer builds a server over store with a fixed clock, UTC location and rate
// limiting off. opts adjust the config before New is called.
func newTestServer(t *testing.T, store *fakeStore, opts ...func(*Config)) *Server {
	t.Helper()
	cfg := Config{
		CORSAllowedOrigins: []string{testOrigin},
		Location:           time.UTC,
		Clock:              func() time.Time { return testNow },
		RateLimit:          &ratelimit.Config{Enabled: false},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	srv, err := New(cfg, store)
	require.NoError(t, err)
	t.Cleanup(srv.rateLimiter.Stop)
	return srv
}

func withAuth(cfg *Config) {
	cfg.AuthEnabled = true
	cfg.JWT = &config.JWTConfig{Secret: "test-secret-key-for-jwt-signing", ExpirationHours: 1}
	cfg.Password = &config.PasswordConfig{BcryptCost: bcrypt.MinCost}
}

// doRequest sends body (JSON-encoded unless it is a string) through the full handler chain.
func doRequest(t *testing.T, h http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestNew_RequiresStore(t *testing.T) {
	_, err := New(Config{}, nil)
	assert.Error(t, err)
}

func TestNew_AuthRequiresSecrets(t *testing.T) {
	_, err := New(Config{AuthEnabled: true}, newFakeStore())
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	store := newFakeStore()
	h := newTestServer(t, store).Handler()

	w := doRequest(t, h, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, w)["status"])

	store.pingErr = errors.New("connection refused")
	w = doRequest(t, h, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "unavailable", decode[map[string]string](t, w)["status"])
}

func TestHealth_IsPublicWhenAuthEnabled(t *testing.T) {
	h := newTestServer(t, newFakeStore(), withAuth).Handler()
	w := doRequest(t, h, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUnknownRoute(t *testing.T) {
	h := newTestServer(t, newFakeStore()).Handler()
	w := doRequest(t, h, http.MethodGet, "/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t, newFakeStore()).Handler()

	require.Equal(t, http.StatusOK, doRequest(t, h, http.MethodGet, "/companies", nil, "").Code)
	require.Equal(t, http.StatusBadRequest, doRequest(t, h, http.MethodGet, "/companies/not-a-uuid", nil, "").Code)

	w := doRequest(t, h, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `outreach_http_requests_total{method="GET",route="GET /companies",status="200"} 1`)
	assert.Contains(t, body, `outreach_http_requests_total{method="GET",route="GET /companies/{id}",status="400"} 1`)
	assert.Contains(t, body, "outreach_http_request_duration_seconds_bucket")
}

func TestCORS(t *testing.T) {
	h := newTestServer(t, newFakeStore()).Handler()

	t.Run("preflight from allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/companies", nil)
		req.Header.Set("Origin", testOrigin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, testOrigin, w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
	})

	t.Run("other origin gets no allow header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/companies", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRateLimit(t *testing.T) {
	h := newTestServer(t, newFakeStore(), func(cfg *Config) {
		cfg.RateLimit = &ratelimit.Config{
			Enabled:       true,
			DefaultLimit:  2,
			DefaultWindow: time.Minute,
		}
	}).Handler()

	for i := 0; i < 2; i++ {
		w := doRequest(t, h, http.MethodGet, "/companies", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := doRequest(t, h, http.MethodGet, "/companies", nil, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "rate_limit_exceeded", decode[map[string]any](t, w)["error"])

	// health checks are never limited
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, doRequest(t, h, http.MethodGet, "/health", nil, "").Code)
	}
}

func TestExtractClientID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:51234"
	req.Header.Set("X-Forwarded-For", "198.51.100.1")
	assert.Equal(t, "203.0.113.7", extractClientID(req))

	req.RemoteAddr = "not-an-addr"
	assert.Equal(t, "not-an-addr", extractClientID(req))
}

func TestParseQueryInt(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 50},
		{"limit=10", 10},
		{"limit=0", 0},
		{"limit=-1", 50},
		{"limit=abc", 50},
		{"limit=1000", 200},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/companies?"+tt.query, nil)
			assert.Equal(t, tt.want, parseQueryInt(req, "limit", 50, 200))
		})
	}
}
