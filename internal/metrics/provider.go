package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/maps"
)

// InstrumentedProvider records request counts and latency for every call to
// the wrapped maps.Provider.
type InstrumentedProvider struct {
	next maps.Provider
}

// InstrumentProvider wraps p with Prometheus instrumentation.
func InstrumentProvider(p maps.Provider) *InstrumentedProvider {
	return &InstrumentedProvider{next: p}
}

var _ maps.Provider = (*InstrumentedProvider)(nil)

func (p *InstrumentedProvider) Ready(ctx context.Context) error {
	err := p.next.Ready(ctx)
	if err == nil {
		ProviderReady.Set(1)
	} else {
		ProviderReady.Set(0)
	}
	return err
}

func (p *InstrumentedProvider) Autocomplete(ctx context.Context, req maps.AutocompleteRequest) ([]maps.Prediction, error) {
	start := time.Now()
	out, err := p.next.Autocomplete(ctx, req)
	observe("autocomplete", start, err)
	return out, err
}

func (p *InstrumentedProvider) PlaceDetails(ctx context.Context, placeID string, fields []string) (*maps.Place, error) {
	start := time.Now()
	out, err := p.next.PlaceDetails(ctx, placeID, fields)
	observe("details", start, err)
	return out, err
}

func (p *InstrumentedProvider) Directions(ctx context.Context, req maps.DirectionsRequest) (*maps.Route, error) {
	start := time.Now()
	out, err := p.next.Directions(ctx, req)
	observe("directions", start, err)
	return out, err
}

func observe(endpoint string, start time.Time, err error) {
	ProviderLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	ProviderRequestsTotal.WithLabelValues(endpoint, statusLabel(err)).Inc()
}

func statusLabel(err error) string {
	if err == nil {
		return maps.StatusOK
	}
	if status := maps.StatusOf(err); status != "" {
		return status
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return maps.StatusTimeout
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	return "error"
}
