package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

// setBuildInfo overrides the ldflags variables for one test.
func setBuildInfo(t *testing.T, version, commit, date string) {
	t.Helper()
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	t.Cleanup(func() {
		Version, GitCommit, BuildDate = origVersion, origCommit, origDate
		versionJSON = false
	})
	Version, GitCommit, BuildDate = version, commit, date
}

func runVersion(t *testing.T, args ...string) string {
	t.Helper()
	root := newRootCommand()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(append([]string{"version"}, args...))

	if err := root.Execute(); err != nil {
		t.Fatalf("version command failed: %v", err)
	}
	return buf.String()
}

func TestVersionCommand(t *testing.T) {
	setBuildInfo(t, "1.0.0", "abc123", "2026-01-27T12:00:00Z")
	t.Setenv("MAPS_API_KEY", "test-key")
	t.Setenv("ROUTING_REGION", "lk")
	t.Setenv("DISCOVERY_REGION_NAME", "")
	t.Setenv("MAPS_BASE_URL", "http://maps.internal/api")

	output := runVersion(t)

	expectedStrings := []string{
		"WanderLanka Planner",
		"Version:    1.0.0",
		"Git commit: abc123",
		"Build date: 2026-01-27T12:00:00Z",
		"Go version:",
		"Platform:",
		"Maps API:   http://maps.internal/api (key configured)",
		"Region:     lk (Sri Lanka)",
	}
	for _, expected := range expectedStrings {
		if !strings.Contains(output, expected) {
			t.Errorf("expected output to contain %q, got:\n%s", expected, output)
		}
	}
	if strings.Contains(output, "test-key") {
		t.Errorf("version output must not print the API key, got:\n%s", output)
	}
}

func TestVersionCommandWithoutConfig(t *testing.T) {
	setBuildInfo(t, "dev", "unknown", "unknown")
	// No API key: config does not validate, defaults are reported.
	t.Setenv("MAPS_API_KEY", "")
	t.Setenv("MAPS_BASE_URL", "")

	output := runVersion(t)

	expectedStrings := []string{
		"Version:    dev",
		"Git commit: unknown",
		"Build date: unknown",
		"Maps API:   https://maps.googleapis.com/maps/api (key missing)",
		"Region:     lk (Sri Lanka)",
	}
	for _, expected := range expectedStrings {
		if !strings.Contains(output, expected) {
			t.Errorf("expected output to contain %q, got:\n%s", expected, output)
		}
	}
}

func TestVersionCommandJSON(t *testing.T) {
	setBuildInfo(t, "2.1.0", "def456", "2026-03-01T00:00:00Z")
	t.Setenv("MAPS_API_KEY", "test-key")
	t.Setenv("DISCOVERY_REGION_NAME", "Ceylon")

	output := runVersion(t, "--json")

	var info versionInfo
	if err := json.Unmarshal([]byte(output), &info); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, output)
	}
	if info.Version != "2.1.0" || info.GitCommit != "def456" {
		t.Errorf("unexpected build info: %+v", info)
	}
	if info.MapsKey != "configured" {
		t.Errorf("expected maps key configured, got %q", info.MapsKey)
	}
	if info.RegionName != "Ceylon" {
		t.Errorf("expected region name from env, got %q", info.RegionName)
	}
}

func TestVersionCommandHelp(t *testing.T) {
	output := runVersion(t, "--help")

	for _, expected := range []string{"Print the version number", "--json"} {
		if !strings.Contains(output, expected) {
			t.Errorf("expected help text to contain %q, got:\n%s", expected, output)
		}
	}
}
