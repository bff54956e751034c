package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/maps"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/maps/mapstest"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type sessionCount int

func (c sessionCount) Len() int { return int(c) }

func readyTracker(t *testing.T, fake *mapstest.Fake) *maps.Readiness {
	t.Helper()
	r := maps.StartReadiness(context.Background(), fake, time.Millisecond, 2, zerolog.Nop())
	t.Cleanup(r.Close)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = r.Wait(ctx)
	return r
}

func serveHealth(t *testing.T, h http.Handler) (*httptest.ResponseRecorder, HealthCheck) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	return rec, decodeBody[HealthCheck](t, rec)
}

func TestHealth_AllPassing(t *testing.T) {
	readiness := readyTracker(t, &mapstest.Fake{})
	cache := pingFunc(func(ctx context.Context) error { return nil })

	checker := NewHealthChecker(readiness, cache, sessionCount(3), "1.2.0", "abc123")
	rec, body := serveHealth(t, checker.Health())

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "1.2.0", body.Version)
	assert.Equal(t, "abc123", body.GitCommit)
	assert.Equal(t, "pass", body.Checks["maps_provider"].Status)
	assert.Equal(t, "pass", body.Checks["place_cache"].Status)
	assert.EqualValues(t, 3, body.Checks["sessions"].Details["open"])
}

func TestHealth_CacheDownIsDegraded(t *testing.T) {
	readiness := readyTracker(t, &mapstest.Fake{})
	cache := pingFunc(func(ctx context.Context) error { return errors.New("connection refused") })

	checker := NewHealthChecker(readiness, cache, nil, "dev", "unknown")
	rec, body := serveHealth(t, checker.Health())

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "warn", body.Checks["place_cache"].Status)
	assert.Contains(t, body.Checks["place_cache"].Details, "remediation")
}

func TestHealth_ProviderFailedIsUnhealthy(t *testing.T) {
	readiness := readyTracker(t, &mapstest.Fake{
		ReadyFunc: func(ctx context.Context) error {
			return &maps.StatusError{Op: "ready", Status: maps.StatusRequestDenied}
		},
	})

	checker := NewHealthChecker(readiness, nil, nil, "dev", "unknown")
	rec, body := serveHealth(t, checker.Health())

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unhealthy", body.Status)
	check := body.Checks["maps_provider"]
	assert.Equal(t, "fail", check.Status)
	assert.Contains(t, check.Details["remediation"], "MAPS_API_KEY")
	assert.Equal(t, "pass", body.Checks["place_cache"].Status)
}

func TestReadyz(t *testing.T) {
	tests := []struct {
		name       string
		readiness  func(t *testing.T) *maps.Readiness
		wantStatus int
		wantBody   string
	}{
		{
			name:       "ready",
			readiness:  func(t *testing.T) *maps.Readiness { return readyTracker(t, &mapstest.Fake{}) },
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ready"}`,
		},
		{
			name: "failed",
			readiness: func(t *testing.T) *maps.Readiness {
				return readyTracker(t, &mapstest.Fake{ReadyFunc: func(ctx context.Context) error { return maps.ErrNotReady }})
			},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"status":"failed"}`,
		},
		{
			name:       "not configured",
			readiness:  func(t *testing.T) *maps.Readiness { return nil },
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"status":"not_configured"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Readyz(tt.readiness(t)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	Healthz().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
