package routeplan

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/maps"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/metrics"
)

// Status is what an engine reports to its host while idle or computing.
type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
	StatusClosed  Status = "closed"
)

const (
	DefaultReadyInterval    = 100 * time.Millisecond
	DefaultReadyMaxAttempts = 50
)

// Observer is notified of every applied result. view is nil when the route
// was cleared. It runs with the engine lock held and must not call back
// into the engine.
type Observer func(view *View, err error)

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithObserver registers the onRouteComputed callback.
func WithObserver(fn Observer) EngineOption {
	return func(e *Engine) {
		e.observer = fn
	}
}

// WithReadiness shares an existing readiness tracker instead of starting a
// dedicated one. A shared tracker is not stopped by Close.
func WithReadiness(r *maps.Readiness) EngineOption {
	return func(e *Engine) {
		e.readiness = r
		e.ownsReadiness = false
	}
}

// WithReadyPolling sets the interval and attempt budget of a dedicated
// readiness tracker.
func WithReadyPolling(interval time.Duration, maxAttempts int) EngineOption {
	return func(e *Engine) {
		e.readyInterval = interval
		e.readyAttempts = maxAttempts
	}
}

// Snapshot is the engine's currently displayed state.
type Snapshot struct {
	Status   Status
	Sequence uint64
	View     *View
	Err      error
}

// Engine is one mounted route planner. It applies results last-request-wins:
// every Compute takes a sequence number and a result is applied only if no
// newer Compute started in the meantime.
type Engine struct {
	planner *Planner
	logger  zerolog.Logger

	readiness     *maps.Readiness
	ownsReadiness bool
	readyInterval time.Duration
	readyAttempts int

	observer Observer

	mu      sync.Mutex
	seq     uint64
	current *View
	lastErr error
	closed  bool
}

// NewEngine creates an engine bound to planner's provider client and starts
// readiness polling unless a shared tracker is supplied.
func NewEngine(planner *Planner, opts ...EngineOption) *Engine {
	e := &Engine{
		planner:       planner,
		logger:        planner.logger,
		ownsReadiness: true,
		readyInterval: DefaultReadyInterval,
		readyAttempts: DefaultReadyMaxAttempts,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.readiness == nil {
		e.ownsReadiness = true
		e.readiness = maps.StartReadiness(context.Background(), planner.Provider(), e.readyInterval, e.readyAttempts, e.logger)
	}
	return e
}

// Status reports loading until the provider is ready.
func (e *Engine) Status() Status {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return StatusClosed
	}
	switch e.readiness.State() {
	case maps.StateReady:
		return StatusReady
	case maps.StateFailed:
		return StatusFailed
	default:
		return StatusLoading
	}
}

// Compute recomputes the route for req. It waits for provider readiness,
// bounded by ctx. A blank origin or destination clears the current route
// and returns (nil, nil). If a newer Compute starts before this one
// finishes, the result is discarded and ErrSuperseded returned.
// Close during a computation discards its result with ErrEngineClosed.
func (e *Engine) Compute(ctx context.Context, req Request) (*View, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, ErrEngineClosed
	}
	e.seq++
	seq := e.seq
	e.mu.Unlock()

	var (
		view *View
		err  error
	)
	if req.Complete() {
		if rerr := e.awaitReady(ctx); rerr != nil {
			err = rerr
		} else {
			view, err = e.planner.Compute(ctx, req)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrEngineClosed
	}
	if seq != e.seq {
		metrics.SupersededResultsTotal.WithLabelValues("route").Inc()
		e.logger.Debug().Uint64("seq", seq).Uint64("latest", e.seq).Msg("discarding superseded route result")
		return nil, ErrSuperseded
	}
	if err != nil && ctx.Err() != nil {
		// Caller went away; leave the displayed route untouched.
		return nil, err
	}

	e.current = view
	e.lastErr = err
	if e.observer != nil {
		e.observer(view, err)
	}
	return view, err
}

func (e *Engine) awaitReady(ctx context.Context) error {
	err := e.readiness.Wait(ctx)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if maps.StatusOf(err) == maps.StatusRequestDenied {
		return &RouteError{Kind: KindRequestDenied, Status: maps.StatusRequestDenied, Err: err}
	}
	return &RouteError{Kind: KindProviderNotReady, Err: err}
}

// Snapshot returns the currently displayed state.
func (e *Engine) Snapshot() Snapshot {
	status := e.Status()
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		Status:   status,
		Sequence: e.seq,
		View:     e.current,
		Err:      e.lastErr,
	}
}

// Close releases the engine. Pending readiness polling stops, in-flight
// computations and later calls fail with ErrEngineClosed. Close is idempotent.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.current = nil
	e.lastErr = nil
	e.mu.Unlock()

	if e.ownsReadiness {
		e.readiness.Close()
	}
}
