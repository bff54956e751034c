package cmd

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/config"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"

	versionJSON bool
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and provider information",
	Long: `Print the version number, git commit, build date, and Go runtime version,
followed by the maps provider endpoint and planning region this binary would use.

The provider section never fails: without a usable configuration the built-in
defaults are reported and the API key is shown as missing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := currentVersionInfo()
		if versionJSON {
			return writeJSON(cmd.OutOrStdout(), info)
		}
		writeVersionText(cmd.OutOrStdout(), info)
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "print JSON instead of text")
}

type versionInfo struct {
	Version    string `json:"version"`
	GitCommit  string `json:"git_commit"`
	BuildDate  string `json:"build_date"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
	MapsAPI    string `json:"maps_api"`
	MapsKey    string `json:"maps_key"`
	Region     string `json:"region"`
	RegionName string `json:"region_name"`
}

// currentVersionInfo reports the effective provider settings, falling back
// to defaults when the environment does not validate.
func currentVersionInfo() versionInfo {
	cfg, err := loadConfig()
	if err != nil {
		cfg = config.Defaults()
	}

	key := "missing"
	if strings.TrimSpace(os.Getenv("MAPS_API_KEY")) != "" {
		key = "configured"
	}

	return versionInfo{
		Version:    Version,
		GitCommit:  GitCommit,
		BuildDate:  BuildDate,
		GoVersion:  runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
		MapsAPI:    cfg.Maps.BaseURL,
		MapsKey:    key,
		Region:     cfg.Routing.Region,
		RegionName: cfg.Discovery.RegionName,
	}
}

func writeVersionText(out io.Writer, info versionInfo) {
	fmt.Fprintln(out, "WanderLanka Planner")
	fmt.Fprintf(out, "Version:    %s\n", info.Version)
	fmt.Fprintf(out, "Git commit: %s\n", info.GitCommit)
	fmt.Fprintf(out, "Build date: %s\n", info.BuildDate)
	fmt.Fprintf(out, "Go version: %s\n", info.GoVersion)
	fmt.Fprintf(out, "Platform:   %s\n", info.Platform)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Maps API:   %s (key %s)\n", info.MapsAPI, info.MapsKey)
	fmt.Fprintf(out, "Region:     %s (%s)\n", info.Region, info.RegionName)
}
