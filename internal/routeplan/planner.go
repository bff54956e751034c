// Package routeplan turns an ordered list of stops and a route preference
// into a normalized, renderable multi-leg route.
package routeplan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/maps"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/metrics"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/telemetry"
)

const (
	// DefaultMaxWaypoints is the provider's hard waypoint limit.
	DefaultMaxWaypoints = 25
	// DefaultProviderTimeout bounds a single directions call.
	DefaultProviderTimeout = 15 * time.Second
)

var tracer = telemetry.GetTracer("github.com/WanderLanka/wanderlanka-web-app-sub002/internal/routeplan")

// Options configures a Planner.
type Options struct {
	Region          string
	MaxWaypoints    int
	ProviderTimeout time.Duration
}

// Planner shapes route requests, calls the provider and normalizes the
// response. It holds no per-request state and is safe for concurrent use.
type Planner struct {
	provider maps.Provider
	opts     Options
	logger   zerolog.Logger
}

// NewPlanner creates a planner sharing one provider client.
func NewPlanner(provider maps.Provider, opts Options, logger zerolog.Logger) *Planner {
	if opts.MaxWaypoints <= 0 {
		opts.MaxWaypoints = DefaultMaxWaypoints
	}
	if opts.ProviderTimeout <= 0 {
		opts.ProviderTimeout = DefaultProviderTimeout
	}
	return &Planner{
		provider: provider,
		opts:     opts,
		logger:   logger.With().Str("component", "routeplan").Logger(),
	}
}

// Provider returns the provider client the planner uses.
func (p *Planner) Provider() maps.Provider {
	return p.provider
}

// Compute plans one route. An incomplete request (blank origin or
// destination) makes no provider call and returns (nil, nil).
func (p *Planner) Compute(ctx context.Context, req Request) (*View, error) {
	pref := req.Preference.String()
	if !req.Complete() {
		metrics.RouteComputationsTotal.WithLabelValues(pref, "cleared").Inc()
		return nil, nil
	}

	waypoints := req.usableWaypoints()
	if dropped := len(req.Waypoints) - len(waypoints); dropped > 0 {
		p.logger.Debug().Int("dropped", dropped).Msg("dropped blank waypoints")
	}
	metrics.RouteWaypoints.Observe(float64(len(waypoints)))

	if len(waypoints) > p.opts.MaxWaypoints {
		err := &RouteError{
			Kind: KindTooManyWaypoints,
			Err:  fmt.Errorf("%d waypoints, limit is %d", len(waypoints), p.opts.MaxWaypoints),
		}
		metrics.RouteComputationsTotal.WithLabelValues(pref, string(err.Kind)).Inc()
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "routeplan.Compute")
	defer span.End()
	span.SetAttributes(
		attribute.String("route.preference", pref),
		attribute.Int("route.waypoints", len(waypoints)),
	)

	dreq := maps.DirectionsRequest{
		Origin:            req.Origin.Location(),
		Destination:       req.Destination.Location(),
		Waypoints:         make([]maps.Location, 0, len(waypoints)),
		OptimizeWaypoints: req.Preference.OptimizeWaypoints(),
		Avoid:             req.Preference.Avoid(),
		Region:            p.opts.Region,
	}
	for _, wp := range waypoints {
		dreq.Waypoints = append(dreq.Waypoints, wp.Location())
	}

	route, err := p.directions(ctx, dreq)
	if err != nil {
		if ctx.Err() != nil && !errors.Is(err, errProviderTimeout) {
			span.SetStatus(codes.Error, "canceled")
			return nil, ctx.Err()
		}
		rerr := classify(err)
		span.RecordError(rerr)
		span.SetStatus(codes.Error, string(rerr.Kind))
		metrics.RouteComputationsTotal.WithLabelValues(pref, string(rerr.Kind)).Inc()
		p.logFailure(rerr, req)
		return nil, rerr
	}
	if len(route.Legs) == 0 {
		rerr := &RouteError{Kind: KindNoRouteFound, Status: maps.StatusZeroResults}
		metrics.RouteComputationsTotal.WithLabelValues(pref, string(rerr.Kind)).Inc()
		return nil, rerr
	}

	res := assemble(route, req.Preference, waypoints)
	span.SetAttributes(
		attribute.Int("route.legs", len(res.Legs)),
		attribute.Int("route.distance_meters", res.DistanceMeters),
	)
	metrics.RouteComputationsTotal.WithLabelValues(pref, "ok").Inc()

	p.logger.Debug().
		Str("preference", pref).
		Int("legs", len(res.Legs)).
		Int("distance_m", res.DistanceMeters).
		Int("duration_s", res.DurationSeconds).
		Msg("route computed")

	return render(req, waypoints, res), nil
}

var errProviderTimeout = fmt.Errorf("directions call exceeded timeout: %w", context.DeadlineExceeded)

// directions wraps the provider call in the planner's own timeout. Only a
// deadline hit by that wrapper is reported as a timeout; the caller's own
// cancellation passes through untouched.
func (p *Planner) directions(ctx context.Context, req maps.DirectionsRequest) (*maps.Route, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.opts.ProviderTimeout)
	defer cancel()

	route, err := p.provider.Directions(callCtx, req)
	if err != nil && ctx.Err() == nil && callCtx.Err() == context.DeadlineExceeded {
		return nil, errProviderTimeout
	}
	return route, err
}

func (p *Planner) logFailure(err *RouteError, req Request) {
	switch err.Category() {
	case CategoryPermission:
		p.logger.Error().
			Err(err).
			Str("kind", string(err.Kind)).
			Str("status", err.Status).
			Msg("route provider denied request; check maps API key and enabled services")
	case CategoryStructural:
		p.logger.Info().
			Str("kind", string(err.Kind)).
			Str("origin", req.Origin.Name()).
			Str("destination", req.Destination.Name()).
			Msg("route request cannot be satisfied")
	default:
		p.logger.Warn().
			Err(err).
			Str("kind", string(err.Kind)).
			Str("status", err.Status).
			Msg("route provider failure")
	}
}

// Comparison holds one outcome per preference.
type Comparison struct {
	Views  map[Preference]*View
	Errors map[Preference]error
}

// Compare computes the request under every preference concurrently. Per
// preference failures are collected rather than aborting the others; only
// cancellation of ctx fails the whole comparison.
func (p *Planner) Compare(ctx context.Context, req Request) (*Comparison, error) {
	views := make([]*View, len(Preferences))
	errs := make([]error, len(Preferences))

	g, gctx := errgroup.WithContext(ctx)
	for i, pref := range Preferences {
		g.Go(func() error {
			view, err := p.Compute(gctx, req.WithPreference(pref))
			if err != nil {
				if _, ok := AsRouteError(err); !ok {
					return err
				}
				errs[i] = err
				return nil
			}
			views[i] = view
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	cmp := &Comparison{
		Views:  make(map[Preference]*View, len(Preferences)),
		Errors: make(map[Preference]error),
	}
	for i, pref := range Preferences {
		if errs[i] != nil {
			cmp.Errors[pref] = errs[i]
			continue
		}
		cmp.Views[pref] = views[i]
	}
	return cmp, nil
}
