package planner

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/discovery"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/maps"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/metrics"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/routeplan"
)

const (
	DefaultTTL         = 30 * time.Minute
	DefaultMaxSessions = 10000
)

var (
	ErrSessionNotFound = errors.New("planner session not found")
	ErrTooManySessions = errors.New("too many open planner sessions")
	ErrRegistryClosed  = errors.New("planner session registry closed")
)

// Options bounds the registry. Zero values take the defaults.
type Options struct {
	TTL         time.Duration
	MaxSessions int
}

// Registry owns every open planner session. Sessions idle longer than the
// TTL are closed by Sweep. All sessions share one planner, one discovery
// service and one provider readiness tracker.
type Registry struct {
	planner   *routeplan.Planner
	discovery *discovery.Service
	readiness *maps.Readiness
	logger    zerolog.Logger
	ttl       time.Duration
	max       int
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

// NewRegistry creates an empty registry.
func NewRegistry(p *routeplan.Planner, d *discovery.Service, readiness *maps.Readiness, opts Options, logger zerolog.Logger) *Registry {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = DefaultMaxSessions
	}
	return &Registry{
		planner:   p,
		discovery: d,
		readiness: readiness,
		logger:    logger.With().Str("component", "planner_sessions").Logger(),
		ttl:       opts.TTL,
		max:       opts.MaxSessions,
		now:       time.Now,
		sessions:  make(map[string]*Session),
	}
}

// Create opens a new session. Expired sessions are swept first so a full
// registry only rejects when every session is live.
func (r *Registry) Create() (*Session, error) {
	r.Sweep()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrRegistryClosed
	}
	if len(r.sessions) >= r.max {
		return nil, ErrTooManySessions
	}

	now := r.now()
	s := &Session{
		ID:        ulid.Make().String(),
		CreatedAt: now,
		lastSeen:  now,
	}
	s.route = routeplan.NewEngine(r.planner, routeplan.WithReadiness(r.readiness))
	s.places = discovery.NewSession(r.discovery, discovery.WithOnPlaceSelect(s.addPlace))

	r.sessions[s.ID] = s
	metrics.PlannerSessionsActive.Set(float64(len(r.sessions)))
	r.logger.Debug().Str("session_id", s.ID).Msg("planner session opened")
	return s, nil
}

// Get returns a live session and marks it as used.
func (r *Registry) Get(id string) (*Session, error) {
	if _, err := ulid.ParseStrict(id); err != nil {
		return nil, ErrSessionNotFound
	}

	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	now := r.now()
	if s.idleSince(now) > r.ttl {
		r.remove(id, "expired")
		return nil, ErrSessionNotFound
	}
	s.touch(now)
	return s, nil
}

// Delete closes and forgets a session.
func (r *Registry) Delete(id string) error {
	if !r.remove(id, "deleted") {
		return ErrSessionNotFound
	}
	return nil
}

// Len is the number of open sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep closes every session idle longer than the TTL and returns how many
// were removed.
func (r *Registry) Sweep() int {
	now := r.now()

	r.mu.Lock()
	var expired []*Session
	for id, s := range r.sessions {
		if s.idleSince(now) > r.ttl {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	metrics.PlannerSessionsActive.Set(float64(len(r.sessions)))
	r.mu.Unlock()

	for _, s := range expired {
		s.close()
		r.logger.Debug().Str("session_id", s.ID).Msg("planner session expired")
	}
	return len(expired)
}

// Run sweeps on every tick until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.logger.Info().Int("expired", n).Int("open", r.Len()).Msg("swept idle planner sessions")
			}
		}
	}
}

// Close closes every session. Later Create calls fail.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	metrics.PlannerSessionsActive.Set(0)
	r.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
}

func (r *Registry) remove(id, reason string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
		metrics.PlannerSessionsActive.Set(float64(len(r.sessions)))
	}
	r.mu.Unlock()

	if ok {
		s.close()
		r.logger.Debug().Str("session_id", id).Str("reason", reason).Msg("planner session closed")
	}
	return ok
}
