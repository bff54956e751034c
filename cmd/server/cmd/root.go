package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	logLevel   string
	logFormat  string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = newRootCmd()
)

const rootLong = `WanderLanka planner plans driving routes across Sri Lanka and helps travellers
discover places to visit along the way.

The planner provides:
- Route planning through ordered waypoints with recommended, shortest and scenic preferences
- Side-by-side comparison of every route preference
- Place discovery with type-ahead suggestions restricted to tourist categories
- Enriched place details (rating, opening hours, description, photo)
- An MCP tool server so agents can plan trips`

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "WanderLanka planner - route planning and place discovery",
		Long:  rootLong,
		// Run the serve command by default if no subcommand is specified
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveCmd.RunE(cmd, args)
		},
		SilenceUsage: true,
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	addGlobalFlags(rootCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeCmd)
	rootCmd.AddCommand(placesCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(healthcheckCmd)
}

func addGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file path (optional, env vars override it)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error) (default: info)")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (json, console) (default: json)")
}
