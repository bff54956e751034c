package routeplan

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/maps"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/maps/mapstest"
)

type observed struct {
	mu    sync.Mutex
	views []*View
	errs  []error
}

func (o *observed) fn(view *View, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.views = append(o.views, view)
	o.errs = append(o.errs, err)
}

func (o *observed) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.views)
}

func newEngine(t *testing.T, fake *mapstest.Fake, opts ...EngineOption) *Engine {
	t.Helper()
	opts = append([]EngineOption{WithReadyPolling(time.Millisecond, 5)}, opts...)
	e := NewEngine(NewPlanner(fake, Options{}, zerolog.Nop()), opts...)
	t.Cleanup(e.Close)
	return e
}

func TestEngine_LastRequestWins(t *testing.T) {
	release := make(chan struct{})
	fake := &mapstest.Fake{DirectionsFunc: func(ctx context.Context, req maps.DirectionsRequest) (*maps.Route, error) {
		if req.Destination.Address == "Kandy" {
			<-release
		}
		return mapstest.StraightRoute(req), nil
	}}
	obs := &observed{}
	engine := newEngine(t, fake, WithObserver(obs.fn))

	type outcome struct {
		view *View
		err  error
	}
	first := make(chan outcome, 1)
	go func() {
		v, err := engine.Compute(context.Background(), Request{Origin: stop("Colombo"), Destination: stop("Kandy")})
		first <- outcome{v, err}
	}()
	require.Eventually(t, func() bool { return len(fake.DirectionsRequests()) == 1 }, time.Second, time.Millisecond)

	second, err := engine.Compute(context.Background(), Request{Origin: stop("Colombo"), Destination: stop("Galle")})
	require.NoError(t, err)
	require.NotNil(t, second)

	close(release)
	got := <-first
	assert.ErrorIs(t, got.err, ErrSuperseded)
	assert.Nil(t, got.view)

	snap := engine.Snapshot()
	require.NotNil(t, snap.View)
	assert.Equal(t, "Galle", snap.View.Result.EndAddress)
	assert.Equal(t, uint64(2), snap.Sequence)
	assert.Equal(t, 1, obs.count())
}

func TestEngine_IncompleteRequestClearsRoute(t *testing.T) {
	fake := &mapstest.Fake{}
	obs := &observed{}
	engine := newEngine(t, fake, WithObserver(obs.fn))

	view, err := engine.Compute(context.Background(), Request{Origin: stop("Colombo"), Destination: stop("Kandy")})
	require.NoError(t, err)
	require.NotNil(t, view)

	view, err = engine.Compute(context.Background(), Request{Origin: stop("Colombo")})
	assert.NoError(t, err)
	assert.Nil(t, view)
	assert.Nil(t, engine.Snapshot().View)
	assert.Len(t, fake.DirectionsRequests(), 1)

	require.Equal(t, 2, obs.count())
	assert.Nil(t, obs.views[1])
}

func TestEngine_IncompleteRequestSupersedesInFlight(t *testing.T) {
	release := make(chan struct{})
	fake := &mapstest.Fake{DirectionsFunc: func(ctx context.Context, req maps.DirectionsRequest) (*maps.Route, error) {
		<-release
		return mapstest.StraightRoute(req), nil
	}}
	engine := newEngine(t, fake)

	done := make(chan error, 1)
	go func() {
		_, err := engine.Compute(context.Background(), Request{Origin: stop("Colombo"), Destination: stop("Kandy")})
		done <- err
	}()
	require.Eventually(t, func() bool { return len(fake.DirectionsRequests()) == 1 }, time.Second, time.Millisecond)

	_, err := engine.Compute(context.Background(), Request{})
	require.NoError(t, err)
	close(release)

	assert.ErrorIs(t, <-done, ErrSuperseded)
	assert.Nil(t, engine.Snapshot().View)
}

func TestEngine_ErrorIsSurfacedNotSilent(t *testing.T) {
	fake := &mapstest.Fake{DirectionsFunc: func(ctx context.Context, req maps.DirectionsRequest) (*maps.Route, error) {
		return nil, &maps.StatusError{Op: "directions", Status: maps.StatusOverQueryLimit}
	}}
	engine := newEngine(t, fake)

	_, err := engine.Compute(context.Background(), Request{Origin: stop("Colombo"), Destination: stop("Kandy")})
	require.ErrorIs(t, err, ErrRateLimited)

	snap := engine.Snapshot()
	assert.Nil(t, snap.View)
	assert.ErrorIs(t, snap.Err, ErrRateLimited)
}

func TestEngine_LoadingUntilProviderReady(t *testing.T) {
	var mu sync.Mutex
	ready := false
	fake := &mapstest.Fake{ReadyFunc: func(ctx context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		if !ready {
			return maps.ErrNotReady
		}
		return nil
	}}
	engine := newEngine(t, fake, WithReadyPolling(2*time.Millisecond, 1000))

	assert.Equal(t, StatusLoading, engine.Status())

	mu.Lock()
	ready = true
	mu.Unlock()

	view, err := engine.Compute(context.Background(), Request{Origin: stop("Colombo"), Destination: stop("Kandy")})
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Equal(t, StatusReady, engine.Status())
}

func TestEngine_ProviderNeverReady(t *testing.T) {
	fake := &mapstest.Fake{ReadyFunc: func(ctx context.Context) error { return maps.ErrNotReady }}
	engine := newEngine(t, fake, WithReadyPolling(time.Millisecond, 3))

	_, err := engine.Compute(context.Background(), Request{Origin: stop("Colombo"), Destination: stop("Kandy")})
	require.ErrorIs(t, err, ErrProviderNotReady)
	assert.Equal(t, StatusFailed, engine.Status())
	assert.Empty(t, fake.DirectionsRequests())

	re, ok := AsRouteError(err)
	require.True(t, ok)
	assert.True(t, re.Retryable())
}

func TestEngine_ReadinessDeniedIsRequestDenied(t *testing.T) {
	fake := &mapstest.Fake{ReadyFunc: func(ctx context.Context) error {
		return &maps.StatusError{Op: "ready", Status: maps.StatusRequestDenied}
	}}
	engine := newEngine(t, fake)

	_, err := engine.Compute(context.Background(), Request{Origin: stop("Colombo"), Destination: stop("Kandy")})
	assert.ErrorIs(t, err, ErrRequestDenied)
}

func TestEngine_SharedReadinessNotClosedByEngine(t *testing.T) {
	fake := &mapstest.Fake{}
	shared := maps.StartReadiness(context.Background(), fake, time.Millisecond, 5, zerolog.Nop())
	defer shared.Close()
	require.NoError(t, shared.Wait(context.Background()))

	planner := NewPlanner(fake, Options{}, zerolog.Nop())
	a := NewEngine(planner, WithReadiness(shared))
	b := NewEngine(planner, WithReadiness(shared))
	a.Close()

	assert.Equal(t, StatusClosed, a.Status())
	assert.Equal(t, StatusReady, b.Status())
	_, err := b.Compute(context.Background(), Request{Origin: stop("Colombo"), Destination: stop("Kandy")})
	assert.NoError(t, err)
	b.Close()
	assert.Equal(t, 1, fake.ReadyCalls())
}

func TestEngine_Close(t *testing.T) {
	release := make(chan struct{})
	fake := &mapstest.Fake{DirectionsFunc: func(ctx context.Context, req maps.DirectionsRequest) (*maps.Route, error) {
		<-release
		return mapstest.StraightRoute(req), nil
	}}
	obs := &observed{}
	engine := newEngine(t, fake, WithObserver(obs.fn))

	done := make(chan error, 1)
	go func() {
		_, err := engine.Compute(context.Background(), Request{Origin: stop("Colombo"), Destination: stop("Kandy")})
		done <- err
	}()
	require.Eventually(t, func() bool { return len(fake.DirectionsRequests()) == 1 }, time.Second, time.Millisecond)

	engine.Close()
	engine.Close()
	close(release)

	assert.ErrorIs(t, <-done, ErrEngineClosed)
	assert.Equal(t, StatusClosed, engine.Status())
	assert.Zero(t, obs.count())

	_, err := engine.Compute(context.Background(), Request{Origin: stop("Colombo"), Destination: stop("Kandy")})
	assert.ErrorIs(t, err, ErrEngineClosed)
}
