package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// TestPerformHealthCheck tests the basic health check functionality
func TestPerformHealthCheck(t *testing.T) {
	tests := []struct {
		name           string
		statusCode     int
		responseBody   interface{}
		expectHealthy  bool
		expectError    bool
		expectedStatus string
	}{
		{
			name:       "healthy server",
			statusCode: http.StatusOK,
			responseBody: HealthResponse{
				Status: "healthy",
				Checks: map[string]CheckResult{
					"maps_provider": {Status: "pass"},
				},
			},
			expectHealthy:  true,
			expectError:    false,
			expectedStatus: "healthy",
		},
		{
			name:       "degraded server",
			statusCode: http.StatusOK,
			responseBody: HealthResponse{
				Status: "degraded",
				Checks: map[string]CheckResult{
					"maps_provider": {Status: "pass"},
					"place_cache":   {Status: "fail"},
				},
			},
			expectHealthy:  false,
			expectError:    false,
			expectedStatus: "degraded",
		},
		{
			name:           "unhealthy server (503)",
			statusCode:     http.StatusServiceUnavailable,
			responseBody:   HealthResponse{Status: "unhealthy"},
			expectHealthy:  false,
			expectError:    false,
			expectedStatus: "unhealthy",
		},
		{
			name:          "invalid response",
			statusCode:    http.StatusOK,
			responseBody:  "not json",
			expectHealthy: false,
			expectError:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Create mock server
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				if str, ok := tt.responseBody.(string); ok {
					fmt.Fprint(w, str)
				} else {
					_ = json.NewEncoder(w).Encode(tt.responseBody)
				}
			}))
			defer server.Close()

			// Perform health check
			result := performHealthCheck(server.URL)

			// Validate result
			if result.IsHealthy != tt.expectHealthy {
				t.Errorf("expected IsHealthy=%v, got %v", tt.expectHealthy, result.IsHealthy)
			}

			if tt.expectError {
				if result.Error == "" {
					t.Error("expected error, got none")
				}
			}

			if !tt.expectError && tt.expectedStatus != "" {
				if result.Status != tt.expectedStatus {
					t.Errorf("expected status=%s, got %s", tt.expectedStatus, result.Status)
				}
			}

			// Check latency is recorded (allow 0ms for very fast responses)
			if result.LatencyMs < 0 {
				t.Error("expected non-negative latency")
			}
		})
	}
}

// TestPerformHealthCheckTimeout tests timeout handling
func TestPerformHealthCheckTimeout(t *testing.T) {
	// Create server that delays response
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second) // Longer than the timeout below
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	// Set short timeout
	healthcheckTimeout = 1
	defer func() { healthcheckTimeout = 5 }()

	result := performHealthCheck(server.URL)

	if result.Error == "" {
		t.Error("expected timeout error, got none")
	}

	if result.IsHealthy {
		t.Error("expected unhealthy result on timeout")
	}
}

func TestHealthCheckURL(t *testing.T) {
	tests := []struct {
		name     string
		flagURL  string
		port     string
		expected string
	}{
		{"default port", "", "", "http://localhost:8080/health"},
		{"SERVER_PORT env", "", "9090", "http://localhost:9090/health"},
		{"explicit url wins", "http://planner:8000/health", "9090", "http://planner:8000/health"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SERVER_PORT", tt.port)
			healthcheckURL = tt.flagURL
			defer func() { healthcheckURL = "" }()

			if got := healthCheckURL(); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

// TestPerformHealthCheckWithRetries tests recovery after failed attempts
func TestPerformHealthCheckWithRetries(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			// Fail first two attempts
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(HealthResponse{Status: "unhealthy"})
		} else {
			// Succeed on third attempt
			w.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(w).Encode(HealthResponse{Status: "healthy"})
		}
	}))
	defer server.Close()

	// Configure retries
	healthcheckRetries = 3
	healthcheckRetryDelay = 10 * time.Millisecond
	defer func() { healthcheckRetries = 0 }()

	result := performHealthCheckWithRetries(server.URL)

	if !result.IsHealthy {
		t.Error("expected healthy result after retries")
	}

	if result.RetryCount != 2 {
		t.Errorf("expected 2 retries, got %d", result.RetryCount)
	}

	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

// TestPerformHealthCheckWithRetriesAllFail tests retry exhaustion
func TestPerformHealthCheckWithRetriesAllFail(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(HealthResponse{Status: "unhealthy"})
	}))
	defer server.Close()

	// Configure retries
	healthcheckRetries = 2
	healthcheckRetryDelay = 10 * time.Millisecond
	defer func() { healthcheckRetries = 0 }()

	result := performHealthCheckWithRetries(server.URL)

	if result.IsHealthy {
		t.Error("expected unhealthy result after all retries exhausted")
	}

	if result.RetryCount != 2 {
		t.Errorf("expected 2 retries, got %d", result.RetryCount)
	}

	if attempts != 3 { // Initial attempt + 2 retries
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

// TestOutputFormats tests different output formats
func TestOutputFormats(t *testing.T) {
	results := []HealthCheckResult{
		{
			URL:        "http://localhost:8080/health",
			Status:     "healthy",
			StatusCode: 200,
			IsHealthy:  true,
			LatencyMs:  42,
			Response: &HealthResponse{
				Status: "healthy",
				Checks: map[string]CheckResult{
					"place_cache":   {Status: "pass"},
					"maps_provider": {Status: "pass"},
				},
			},
		},
		{
			URL:   "http://localhost:8081/health",
			Error: "connection refused",
		},
	}

	tests := []struct {
		name     string
		format   string
		contains []string
	}{
		{"json", "json", []string{`"is_healthy": true`, `"maps_provider"`, `"error": "connection refused"`}},
		{"table", "table", []string{"URL", "CHECKS", "maps_provider=pass place_cache=pass", "42ms"}},
		{"simple", "simple", []string{"http://localhost:8080/health: healthy (42ms)", "http://localhost:8081/health: error: connection refused"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			healthcheckFormat = tt.format
			defer func() { healthcheckFormat = "simple" }()

			var buf bytes.Buffer
			if err := outputResults(&buf, results); err != nil {
				t.Fatalf("outputResults failed: %v", err)
			}

			output := buf.String()
			for _, expected := range tt.contains {
				if !strings.Contains(output, expected) {
					t.Errorf("expected output to contain %q, got:\n%s", expected, output)
				}
			}
		})
	}
}

func TestSummarizeChecks(t *testing.T) {
	if got := summarizeChecks(nil); got != "-" {
		t.Errorf("expected - for nil response, got %q", got)
	}
	if got := summarizeChecks(&HealthResponse{Status: "healthy"}); got != "-" {
		t.Errorf("expected - for no checks, got %q", got)
	}

	resp := &HealthResponse{Checks: map[string]CheckResult{
		"place_cache":   {Status: "fail"},
		"maps_provider": {Status: "pass"},
	}}
	if got := summarizeChecks(resp); got != "maps_provider=pass place_cache=fail" {
		t.Errorf("unexpected summary %q", got)
	}
}
