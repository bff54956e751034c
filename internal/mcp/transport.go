// Package mcp exposes the route planner and place discovery engines as
// Model Context Protocol tools.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/api/middleware"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/config"
)

// TransportType selects how MCP messages reach the server.
type TransportType string

const (
	// TransportStdio talks over stdin/stdout. Used by desktop agents.
	TransportStdio TransportType = "stdio"
	// TransportSSE serves the legacy Server-Sent Events transport.
	TransportSSE TransportType = "sse"
	// TransportHTTP serves the Streamable HTTP transport.
	TransportHTTP TransportType = "http"
)

const (
	DefaultTransport = TransportStdio
	DefaultPort      = 8080
	DefaultHost      = "0.0.0.0"

	// ShutdownTimeout bounds how long open tool calls may finish after the
	// context is cancelled.
	ShutdownTimeout = 30 * time.Second
)

// TransportConfig holds the MCP transport selection.
type TransportConfig struct {
	Type TransportType
	// Port and Host are ignored for stdio.
	Port int
	Host string
}

// Addr is the listen address for network transports.
func (c TransportConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// LoadTransportConfig reads MCP_TRANSPORT, PORT and HOST.
func LoadTransportConfig() (*TransportConfig, error) {
	cfg := &TransportConfig{Type: DefaultTransport, Port: DefaultPort, Host: DefaultHost}

	if v := os.Getenv("MCP_TRANSPORT"); v != "" {
		switch t := TransportType(v); t {
		case TransportStdio, TransportSSE, TransportHTTP:
			cfg.Type = t
		default:
			return nil, fmt.Errorf("invalid MCP_TRANSPORT value: %s (must be stdio, sse, or http)", v)
		}
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT value: %s (must be a number)", v)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid PORT value: %d (must be between 1 and 65535)", port)
		}
		cfg.Port = port
	}

	if v := os.Getenv("HOST"); v != "" {
		cfg.Host = v
	}
	return cfg, nil
}

// Serve runs mcpServer on the configured transport until ctx is done.
// Network transports share the REST API's per-client rate limit because
// every tool call can spend provider quota.
func Serve(ctx context.Context, mcpServer *server.MCPServer, cfg *TransportConfig, rateLimitCfg config.RateLimitConfig) error {
	switch cfg.Type {
	case TransportStdio:
		return serveStdio(ctx, mcpServer)
	case TransportSSE:
		return serveNetwork(ctx, cfg, rateLimitCfg, server.NewSSEServer(mcpServer))
	case TransportHTTP:
		return serveNetwork(ctx, cfg, rateLimitCfg, server.NewStreamableHTTPServer(mcpServer))
	default:
		return fmt.Errorf("unsupported transport type: %s", cfg.Type)
	}
}

func serveStdio(ctx context.Context, mcpServer *server.MCPServer) error {
	log.Info().Str("transport", string(TransportStdio)).Msg("MCP server listening on stdio")

	errCh := make(chan error, 1)
	go func() {
		if err := server.ServeStdio(mcpServer); err != nil {
			errCh <- fmt.Errorf("stdio server: %w", err)
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func serveNetwork(ctx context.Context, cfg *TransportConfig, rateLimitCfg config.RateLimitConfig, handler http.Handler) error {
	limiter := middleware.NewRateLimiter(rateLimitCfg)
	defer limiter.Stop()

	wrapped, err := WrapHandler(handler, limiter)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           wrapped,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger := log.With().Str("transport", string(cfg.Type)).Str("addr", srv.Addr).Logger()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Msg("MCP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("%s server: %w", cfg.Type, err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("MCP server shutdown error")
		return fmt.Errorf("%s server shutdown: %w", cfg.Type, err)
	}
	logger.Info().Msg("MCP server stopped")
	return nil
}

// WrapHandler adds request correlation and, when limiter is non-nil,
// per-client rate limiting to an MCP HTTP handler.
func WrapHandler(handler http.Handler, limiter *middleware.RateLimiter) (http.Handler, error) {
	if handler == nil {
		return nil, errors.New("handler cannot be nil")
	}
	if limiter != nil {
		handler = limiter.Middleware(handler)
	}
	return middleware.CorrelationID(log.Logger)(handler), nil
}
