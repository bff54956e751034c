package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/maps"
)

// HealthCheck represents the health status of the server
type HealthCheck struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	GitCommit string                 `json:"git_commit"`
	Slot      string                 `json:"slot,omitempty"`
	Checks    map[string]CheckResult `json:"checks"`
	Timestamp string                 `json:"timestamp"`
}

// CheckResult represents the result of a single health check
type CheckResult struct {
	Status    string                 `json:"status"`
	Message   string                 `json:"message,omitempty"`
	LatencyMs int64                  `json:"latency_ms,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// Pinger is an optional dependency that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SessionCounter reports how many planner sessions are open.
type SessionCounter interface {
	Len() int
}

// HealthChecker reports on the maps provider, the optional place cache and
// the planner session registry.
type HealthChecker struct {
	readiness *maps.Readiness
	cache     Pinger
	sessions  SessionCounter
	version   string
	gitCommit string
}

// NewHealthChecker creates a health checker. cache and sessions may be nil.
func NewHealthChecker(readiness *maps.Readiness, cache Pinger, sessions SessionCounter, version, gitCommit string) *HealthChecker {
	return &HealthChecker{
		readiness: readiness,
		cache:     cache,
		sessions:  sessions,
		version:   version,
		gitCommit: gitCommit,
	}
}

// Health returns a comprehensive health check handler
func (h *HealthChecker) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
			respondHealth(w, http.StatusServiceUnavailable, "shutting_down")
			return
		default:
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checks := map[string]CheckResult{
			"maps_provider": h.checkProvider(ctx),
			"place_cache":   h.checkCache(ctx),
			"sessions":      h.checkSessions(),
		}

		overallStatus := "healthy"
		statusCode := http.StatusOK
		for _, check := range checks {
			if check.Status == "fail" {
				overallStatus = "unhealthy"
				statusCode = http.StatusServiceUnavailable
				break
			} else if check.Status == "warn" && overallStatus == "healthy" {
				overallStatus = "degraded"
			}
		}

		// Deployment slot identifier for blue-green deployments
		slot := os.Getenv("DEPLOYMENT_SLOT")
		if slot == "" {
			slot = os.Getenv("SLOT")
		}

		writeJSON(w, statusCode, HealthCheck{
			Status:    overallStatus,
			Version:   h.version,
			GitCommit: h.gitCommit,
			Slot:      slot,
			Checks:    checks,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// checkProvider reports the readiness poll outcome. It never calls the
// provider itself.
func (h *HealthChecker) checkProvider(ctx context.Context) CheckResult {
	if h.readiness == nil {
		return CheckResult{Status: "fail", Message: "Maps provider not configured"}
	}

	switch h.readiness.State() {
	case maps.StateReady:
		return CheckResult{Status: "pass", Message: "Maps provider ready"}
	case maps.StateLoading:
		return CheckResult{Status: "warn", Message: "Maps provider still loading"}
	}

	details := map[string]interface{}{}
	if err := h.readiness.Wait(ctx); err != nil {
		details["error"] = err.Error()
		if maps.StatusOf(err) == maps.StatusRequestDenied {
			details["remediation"] = "Check MAPS_API_KEY and that the Places and Directions APIs are enabled for it"
		} else {
			details["remediation"] = "Check network access to the maps provider; restart to retry"
		}
	}
	return CheckResult{Status: "fail", Message: "Maps provider failed to load", Details: details}
}

// checkCache pings Redis when the place cache is enabled. A broken cache
// degrades the service but does not stop it: lookups fall through to the
// provider.
func (h *HealthChecker) checkCache(ctx context.Context) CheckResult {
	if h.cache == nil {
		return CheckResult{Status: "pass", Message: "Place cache disabled"}
	}

	start := time.Now()
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	err := h.cache.Ping(pingCtx)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		return CheckResult{
			Status:    "warn",
			Message:   "Place cache unreachable",
			LatencyMs: latency,
			Details: map[string]interface{}{
				"error":       err.Error(),
				"remediation": "Verify REDIS_ADDRESS and that Redis is running",
			},
		}
	}
	return CheckResult{Status: "pass", Message: "Place cache reachable", LatencyMs: latency}
}

func (h *HealthChecker) checkSessions() CheckResult {
	if h.sessions == nil {
		return CheckResult{Status: "pass", Message: "Planner sessions disabled"}
	}
	return CheckResult{
		Status:  "pass",
		Details: map[string]interface{}{"open": h.sessions.Len()},
	}
}

// Healthz is the liveness probe.
func Healthz() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondHealth(w, http.StatusOK, "ok")
	})
}

// Readyz is the readiness probe: 200 once the maps provider is ready.
func Readyz(readiness *maps.Readiness) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if readiness == nil {
			respondHealth(w, http.StatusServiceUnavailable, "not_configured")
			return
		}
		switch readiness.State() {
		case maps.StateReady:
			respondHealth(w, http.StatusOK, "ready")
		case maps.StateFailed:
			respondHealth(w, http.StatusServiceUnavailable, "failed")
		default:
			respondHealth(w, http.StatusServiceUnavailable, "loading")
		}
	})
}

type healthResponse struct {
	Status string `json:"status"`
}

func respondHealth(w http.ResponseWriter, status int, value string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(healthResponse{Status: value})
}
