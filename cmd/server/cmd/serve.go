package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/api"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/api/handlers"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/config"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/metrics"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/planner"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/telemetry"
)

// sessionSweepInterval is how often idle planner sessions are expired.
const sessionSweepInterval = time.Minute

var (
	// Server flags (override config/env)
	serverHost string
	serverPort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the planner HTTP server",
	Long: `Start the planner HTTP server and begin accepting API requests.

The server will:
- Load configuration from environment variables (or --config file if provided)
- Poll the maps provider until it is ready
- Serve the route, places and planner session APIs plus /metrics
- Handle graceful shutdown on SIGINT/SIGTERM

Examples:
  # Start with default configuration (from env vars)
  server serve

  # Start on a specific host and port
  server serve --host 127.0.0.1 --port 9090

  # Start with debug logging
  server serve --log-level debug

  # Start with custom config file
  server serve --config /etc/wanderlanka/config.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host address (default: 0.0.0.0)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (default: 8080)")
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info().Str("environment", cfg.Environment).Msg("starting planner server")

	metrics.Init(Version, GitCommit, BuildDate)
	logger.Info().Str("version", Version).Msg("metrics initialized")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.Tracing, Version)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error().Err(err).Msg("tracing shutdown error")
		}
	}()

	svc, err := buildServices(ctx, cfg, newProvider(cfg.Maps), logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	registry := planner.NewRegistry(svc.planner, svc.discovery, svc.readiness, planner.Options{
		TTL:         cfg.Sessions.TTL,
		MaxSessions: cfg.Sessions.MaxSessions,
	}, logger)
	defer registry.Close()
	go registry.Run(ctx, sessionSweepInterval)

	deps := api.Dependencies{
		Config:    cfg,
		Logger:    logger,
		Planner:   svc.planner,
		Discovery: svc.discovery,
		Readiness: svc.readiness,
		Sessions:  registry,
		Build: api.BuildInfo{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
		},
	}
	// A typed nil would make the health check ping a missing cache.
	if svc.cache != nil {
		deps.Cache = handlers.Pinger(svc.cache)
	}
	router := api.NewRouter(deps)
	defer router.Close()

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadTimeout:       10 * time.Second, // Total time to read request
		WriteTimeout:      30 * time.Second, // Total time to write response
		ReadHeaderTimeout: 5 * time.Second,  // Time to read headers
		MaxHeaderBytes:    1 << 20,          // 1 MB max header size
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	return gracefulShutdown(server, cfg.Server.ShutdownTimeout, logger)
}

func gracefulShutdown(server *http.Server, timeout time.Duration, logger zerolog.Logger) error {
	logger.Info().Msg("shutting down")

	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
		return err
	}

	logger.Info().Msg("server stopped")
	return nil
}
