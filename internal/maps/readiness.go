package maps

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// ReadinessState is the initialization state of a provider as seen by an engine.
type ReadinessState int32

const (
	StateLoading ReadinessState = iota
	StateReady
	StateFailed
)

func (s ReadinessState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrReadinessClosed is returned by Wait after Close stopped polling.
var ErrReadinessClosed = errors.New("readiness polling stopped")

// Readiness polls Provider.Ready on a fixed interval until it succeeds, the
// attempt budget is spent, or Close is called. Readiness is binary, so the
// interval is constant rather than exponential.
type Readiness struct {
	state  atomic.Int32
	done   chan struct{}
	err    error
	cancel context.CancelFunc
}

// StartReadiness begins polling p in the background.
func StartReadiness(parent context.Context, p Provider, interval time.Duration, maxAttempts int, logger zerolog.Logger) *Readiness {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	ctx, cancel := context.WithCancel(parent)
	r := &Readiness{
		done:   make(chan struct{}),
		cancel: cancel,
	}

	go func() {
		defer close(r.done)

		attempt := 0
		op := func() error {
			attempt++
			err := p.Ready(ctx)
			if err == nil {
				return nil
			}
			if StatusOf(err) == StatusRequestDenied {
				return backoff.Permanent(err)
			}
			logger.Debug().Err(err).Int("attempt", attempt).Msg("maps provider not ready yet")
			return err
		}

		policy := backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewConstantBackOff(interval), uint64(maxAttempts-1)),
			ctx,
		)

		err := backoff.Retry(op, policy)
		switch {
		case err == nil:
			r.state.Store(int32(StateReady))
			logger.Info().Int("attempts", attempt).Msg("maps provider ready")
		case ctx.Err() != nil:
			r.err = ErrReadinessClosed
			r.state.Store(int32(StateFailed))
		default:
			r.err = fmt.Errorf("maps provider not ready after %d attempts: %w", attempt, err)
			r.state.Store(int32(StateFailed))
			logger.Error().Err(err).Int("attempts", attempt).Msg("maps provider failed to become ready")
		}
	}()

	return r
}

// State returns the current readiness state without blocking.
func (r *Readiness) State() ReadinessState {
	return ReadinessState(r.state.Load())
}

// Wait blocks until polling finishes or ctx is done. It returns nil once the
// provider is ready.
func (r *Readiness) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return r.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops any pending polling.
func (r *Readiness) Close() {
	r.cancel()
}
