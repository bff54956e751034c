package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/cache"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/config"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/discovery"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/maps"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/maps/googlemaps"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/metrics"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/routeplan"
)

// services is the shared engine wiring used by every command: one provider
// client, one readiness tracker, one planner and one discovery service.
type services struct {
	provider  maps.Provider
	readiness *maps.Readiness
	planner   *routeplan.Planner
	discovery *discovery.Service
	cache     *cache.PlaceCache
	closers   []func()
}

func loadConfig() (config.Config, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return config.Config{}, err
	}

	// Override logging from flags if provided
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}

	return cfg, nil
}

// newProvider builds the Google Maps Platform client wrapped in provider
// metrics.
func newProvider(cfg config.MapsConfig) maps.Provider {
	client := googlemaps.NewClient(cfg.BaseURL, cfg.APIKey,
		googlemaps.WithRateLimit(cfg.RateLimit),
		googlemaps.WithLanguage(cfg.Language),
	)
	return metrics.InstrumentProvider(client)
}

func buildServices(ctx context.Context, cfg config.Config, provider maps.Provider, logger zerolog.Logger) (*services, error) {
	svc := &services{provider: provider}

	var detailsCache discovery.DetailsCache
	if cfg.Redis.Address != "" {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		client, err := cache.NewRedisClient(pingCtx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("place cache: %w", err)
		}
		svc.cache = cache.NewPlaceCache(client, cfg.Redis.TTL)
		svc.closers = append(svc.closers, func() { _ = client.Close() })
		detailsCache = svc.cache
		logger.Info().Str("address", cfg.Redis.Address).Msg("place details cache enabled")
	}

	svc.readiness = maps.StartReadiness(ctx, provider, cfg.Maps.ReadyInterval, cfg.Maps.ReadyMaxAttempts, logger)
	svc.closers = append(svc.closers, svc.readiness.Close)

	svc.planner = routeplan.NewPlanner(provider, routeplan.Options{
		Region:          cfg.Routing.Region,
		MaxWaypoints:    cfg.Routing.MaxWaypoints,
		ProviderTimeout: cfg.Routing.ProviderTimeout,
	}, logger)

	svc.discovery = discovery.NewService(provider, detailsCache, discovery.Options{
		Region:       cfg.Discovery.Region,
		RegionName:   cfg.Discovery.RegionName,
		Types:        cfg.Discovery.Types,
		QueryTimeout: cfg.Discovery.QueryTimeout,
		Debounce:     cfg.Discovery.Debounce,
	}, logger)

	return svc, nil
}

// awaitReady blocks until the provider is ready or ctx is done.
func (s *services) awaitReady(ctx context.Context) error {
	if err := s.readiness.Wait(ctx); err != nil {
		return fmt.Errorf("maps provider not ready: %w", err)
	}
	return nil
}

// Close releases resources in reverse creation order.
func (s *services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}
