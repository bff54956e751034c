// Package discovery provides type-ahead place search restricted to one
// region and a fixed set of tourism categories, plus detail enrichment of the
// place the traveller picks.
package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/maps"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/metrics"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/telemetry"
)

const (
	DefaultRegion       = "lk"
	DefaultRegionName   = "Sri Lanka"
	DefaultQueryTimeout = 10 * time.Second
)

// DefaultTypes are the place categories suggestions are restricted to.
var DefaultTypes = []string{"tourist_attraction", "museum", "park", "natural_feature", "place_of_worship"}

// DetailFields is the fixed field list requested for a selected place.
var DetailFields = []string{
	"place_id",
	"name",
	"formatted_address",
	"geometry/location",
	"rating",
	"user_ratings_total",
	"opening_hours",
	"types",
	"editorial_summary",
	"photos",
}

var tracer = telemetry.GetTracer("github.com/WanderLanka/wanderlanka-web-app-sub002/internal/discovery")

// DetailsCache stores raw provider place records. Get returns (nil, nil) on
// a miss.
type DetailsCache interface {
	Get(ctx context.Context, placeID string) (*maps.Place, error)
	Set(ctx context.Context, place *maps.Place) error
}

// Options configures a Service.
type Options struct {
	Region       string
	RegionName   string
	Types        []string
	QueryTimeout time.Duration
	Debounce     time.Duration
}

// Service answers discovery queries. It keeps no per-query state and is
// shared by all sessions.
type Service struct {
	provider maps.Provider
	cache    DetailsCache
	opts     Options
	logger   zerolog.Logger
	now      func() time.Time
}

// NewService creates a discovery service. cache may be nil.
func NewService(provider maps.Provider, cache DetailsCache, opts Options, logger zerolog.Logger) *Service {
	if opts.Region == "" {
		opts.Region = DefaultRegion
	}
	if opts.RegionName == "" {
		opts.RegionName = DefaultRegionName
	}
	if len(opts.Types) == 0 {
		opts.Types = DefaultTypes
	}
	if opts.QueryTimeout <= 0 {
		opts.QueryTimeout = DefaultQueryTimeout
	}
	if opts.Debounce < 0 {
		opts.Debounce = 0
	}
	return &Service{
		provider: provider,
		cache:    cache,
		opts:     opts,
		logger:   logger.With().Str("component", "discovery").Logger(),
		now:      time.Now,
	}
}

// Autocomplete returns suggestions for text. Blank text returns an empty
// list without calling the provider; so does a provider ZERO_RESULTS.
func (s *Service) Autocomplete(ctx context.Context, text, sessionToken string) ([]Suggestion, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		metrics.DiscoveryQueriesTotal.WithLabelValues("skipped").Inc()
		return []Suggestion{}, nil
	}

	ctx, span := tracer.Start(ctx, "discovery.Autocomplete")
	defer span.End()
	span.SetAttributes(attribute.Int("query.length", len(text)))

	ctx, cancel := context.WithTimeout(ctx, s.opts.QueryTimeout)
	defer cancel()

	predictions, err := s.provider.Autocomplete(ctx, maps.AutocompleteRequest{
		Input:        text,
		Region:       s.opts.Region,
		Types:        s.opts.Types,
		SessionToken: sessionToken,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "autocomplete failed")
		metrics.DiscoveryQueriesTotal.WithLabelValues("failed").Inc()
		if maps.StatusOf(err) == maps.StatusRequestDenied {
			s.logger.Error().Err(err).Str("kind", "request_denied").Msg("places provider denied autocomplete request")
		} else {
			s.logger.Warn().Err(err).Msg("place autocomplete failed")
		}
		return nil, fmt.Errorf("autocomplete %q: %w", text, err)
	}

	suggestions := make([]Suggestion, 0, len(predictions))
	for _, p := range predictions {
		suggestions = append(suggestions, newSuggestion(p))
	}
	span.SetAttributes(attribute.Int("suggestions", len(suggestions)))
	if len(suggestions) == 0 {
		metrics.DiscoveryQueriesTotal.WithLabelValues("empty").Inc()
	} else {
		metrics.DiscoveryQueriesTotal.WithLabelValues("suggesting").Inc()
	}
	return suggestions, nil
}

// Place fetches the raw provider record for placeID, consulting the cache
// first when one is configured.
func (s *Service) Place(ctx context.Context, placeID string) (*maps.Place, error) {
	placeID = strings.TrimSpace(placeID)
	if placeID == "" {
		return nil, fmt.Errorf("place id cannot be empty")
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, placeID)
		if err != nil {
			s.logger.Warn().Err(err).Str("place_id", placeID).Msg("failed to read place details cache")
		}
		if cached != nil {
			metrics.DetailsCacheHitsTotal.Inc()
			return cached, nil
		}
		metrics.DetailsCacheMissesTotal.Inc()
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.QueryTimeout)
	defer cancel()

	place, err := s.provider.PlaceDetails(ctx, placeID, DetailFields)
	if err != nil {
		if maps.StatusOf(err) == maps.StatusRequestDenied {
			s.logger.Error().Err(err).Str("kind", "request_denied").Msg("places provider denied details request")
		}
		return nil, fmt.Errorf("place details %s: %w", placeID, err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, place); err != nil {
			s.logger.Warn().Err(err).Str("place_id", placeID).Msg("failed to write place details cache")
		}
	}
	return place, nil
}

// Resolve fetches and enriches the place behind a suggestion. AddedAt is
// stamped now, even for cached records.
func (s *Service) Resolve(ctx context.Context, placeID string) (*PlaceDetails, error) {
	ctx, span := tracer.Start(ctx, "discovery.Resolve")
	defer span.End()
	span.SetAttributes(attribute.String("place.id", placeID))

	place, err := s.Place(ctx, placeID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolve failed")
		metrics.DiscoverySelectionsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}
	metrics.DiscoverySelectionsTotal.WithLabelValues("resolved").Inc()
	return enrich(place, s.opts.RegionName, s.now()), nil
}

// Debounce is the configured input debounce interval.
func (s *Service) Debounce() time.Duration {
	return s.opts.Debounce
}
