package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var (
	// healthcheckCmd represents the healthcheck command
	healthcheckCmd = &cobra.Command{
		Use:   "healthcheck",
		Short: "Check if the server is healthy",
		Long: `Performs a health check by calling the /health endpoint.

This command is used by Docker HEALTHCHECK to monitor container health.
It exits with code 0 if the server is healthy, non-zero otherwise.

Exit codes:
  0 - Server is healthy
  1 - Server is unhealthy, degraded or unreachable
  2 - Invalid response from server`,
		RunE: runHealthcheck,
	}

	// Flags
	healthcheckTimeout    int
	healthcheckURL        string
	healthcheckRetries    int
	healthcheckRetryDelay time.Duration
	healthcheckFormat     string
)

func init() {
	healthcheckCmd.Flags().IntVar(&healthcheckTimeout, "timeout", 5, "timeout in seconds")
	healthcheckCmd.Flags().StringVar(&healthcheckURL, "url", "", "health check URL (default: http://localhost:{SERVER_PORT}/health)")
	healthcheckCmd.Flags().IntVar(&healthcheckRetries, "retries", 0, "retries after a failed check")
	healthcheckCmd.Flags().DurationVar(&healthcheckRetryDelay, "retry-delay", 2*time.Second, "delay between retries")
	healthcheckCmd.Flags().StringVar(&healthcheckFormat, "format", "simple", "output format (simple, table, json)")
}

// CheckResult mirrors one entry of the /health checks map.
type CheckResult struct {
	Status    string         `json:"status"`
	Message   string         `json:"message,omitempty"`
	LatencyMs int64          `json:"latency_ms,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// HealthResponse matches the response from internal/api/handlers/health.go
type HealthResponse struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version,omitempty"`
	GitCommit string                 `json:"git_commit,omitempty"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// HealthCheckResult is the outcome of probing one URL.
type HealthCheckResult struct {
	URL        string          `json:"url"`
	Status     string          `json:"status"`
	StatusCode int             `json:"status_code"`
	IsHealthy  bool            `json:"is_healthy"`
	LatencyMs  int64           `json:"latency_ms"`
	RetryCount int             `json:"retry_count"`
	Error      string          `json:"error,omitempty"`
	Response   *HealthResponse `json:"response,omitempty"`
	invalid    bool
}

func healthCheckURL() string {
	if healthcheckURL != "" {
		return healthcheckURL
	}
	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}
	return fmt.Sprintf("http://localhost:%s/health", port)
}

func runHealthcheck(cmd *cobra.Command, args []string) error {
	result := performHealthCheckWithRetries(healthCheckURL())
	if err := outputResults(cmd.OutOrStdout(), []HealthCheckResult{result}); err != nil {
		return err
	}

	switch {
	case result.IsHealthy:
		return nil
	case result.invalid:
		fmt.Fprintf(os.Stderr, "Error parsing health check response: %s\n", result.Error)
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "Health check failed: %s\n", describeFailure(result))
		os.Exit(1)
	}
	return nil
}

func describeFailure(result HealthCheckResult) string {
	if result.Error != "" {
		return result.Error
	}
	return fmt.Sprintf("status=%s code=%d", result.Status, result.StatusCode)
}

// performHealthCheck probes url once. Only an HTTP 200 with status
// "healthy" counts as healthy; "degraded" is reported but not healthy.
func performHealthCheck(url string) HealthCheckResult {
	result := HealthCheckResult{URL: url}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(healthcheckTimeout)*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		result.Error = fmt.Sprintf("create request: %v", err)
		return result
	}

	start := time.Now()
	resp, err := http.DefaultClient.Do(req)
	result.LatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		result.Error = err.Error()
		return result
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Error closing response body: %v\n", closeErr)
		}
	}()
	result.StatusCode = resp.StatusCode

	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		result.Error = fmt.Sprintf("decode response: %v", err)
		result.invalid = true
		return result
	}
	result.Response = &health
	result.Status = health.Status
	result.IsHealthy = resp.StatusCode == http.StatusOK && health.Status == "healthy"
	return result
}

// performHealthCheckWithRetries retries unhealthy results up to
// healthcheckRetries times.
func performHealthCheckWithRetries(url string) HealthCheckResult {
	result := performHealthCheck(url)
	retries := 0
	for !result.IsHealthy && retries < healthcheckRetries {
		time.Sleep(healthcheckRetryDelay)
		retries++
		result = performHealthCheck(url)
	}
	result.RetryCount = retries
	return result
}

func outputResults(out io.Writer, results []HealthCheckResult) error {
	switch healthcheckFormat {
	case "json":
		return writeJSON(out, results)
	case "table":
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "URL\tSTATUS\tCODE\tLATENCY\tCHECKS")
		for _, r := range results {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%dms\t%s\n", r.URL, orDash(r.Status), r.StatusCode, r.LatencyMs, summarizeChecks(r.Response))
		}
		return tw.Flush()
	default:
		for _, r := range results {
			if r.Error != "" {
				fmt.Fprintf(out, "%s: error: %s\n", r.URL, r.Error)
				continue
			}
			fmt.Fprintf(out, "%s: %s (%dms)\n", r.URL, r.Status, r.LatencyMs)
		}
		return nil
	}
}

func summarizeChecks(resp *HealthResponse) string {
	if resp == nil || len(resp.Checks) == 0 {
		return "-"
	}
	names := make([]string, 0, len(resp.Checks))
	for name := range resp.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	summary := ""
	for i, name := range names {
		if i > 0 {
			summary += " "
		}
		summary += name + "=" + resp.Checks[name].Status
	}
	return summary
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
