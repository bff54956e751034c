package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/config"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/mcp"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/mcp/resources"
)

const defaultMCPServerName = "WanderLanka Planner MCP Server"

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP tool server",
	Long: `Run a Model Context Protocol server exposing the planner to agents.

Tools: plan_route, compare_routes, search_places, get_place_details.
Resources: route preferences and place categories.
Prompts: plan_trip, find_attractions.

Environment variables:
  MCP_TRANSPORT       stdio (default), sse or http
  PORT, HOST          bind address for sse and http transports
  MCP_SERVER_NAME     name reported to clients
  MCP_SERVER_VERSION  version reported to clients (default: build version)

Logs always go to stderr so they never corrupt the stdio protocol stream.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMCP(cmd.Context())
	},
}

func runMCP(parent context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	transport, err := mcp.LoadTransportConfig()
	if err != nil {
		return fmt.Errorf("failed to load transport config: %w", err)
	}

	logger := config.NewLogger(cfg.Logging)

	name := getEnv("MCP_SERVER_NAME", defaultMCPServerName)
	version := getEnv("MCP_SERVER_VERSION", Version)
	logger.Info().
		Str("transport", string(transport.Type)).
		Str("mcp_name", name).
		Str("mcp_version", version).
		Str("environment", cfg.Environment).
		Msg("starting MCP server")

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := buildServices(ctx, cfg, newProvider(cfg.Maps), logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	srv := mcp.NewServer(mcp.Config{Name: name, Version: version}, mcp.Services{
		Planner:   svc.planner,
		Discovery: svc.discovery,
		Readiness: svc.readiness,
		Categories: resources.Categories{
			Region:     cfg.Discovery.Region,
			RegionName: cfg.Discovery.RegionName,
			Types:      cfg.Discovery.Types,
		},
	})
	defer func() {
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("MCP server shutdown error")
		}
	}()

	err = mcp.Serve(ctx, srv.MCPServer(), transport, cfg.RateLimit)
	if errors.Is(err, context.Canceled) {
		logger.Info().Msg("MCP server stopped")
		return nil
	}
	return err
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
