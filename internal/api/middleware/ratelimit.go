package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/config"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/metrics"
)

const (
	limiterCleanupInterval = 5 * time.Minute
	limiterIdleTTL         = 15 * time.Minute
)

// RateLimiter throttles API calls per client IP. Every route computation and
// place lookup costs a paid provider request, so the limit protects the
// provider quota as much as the server.
type RateLimiter struct {
	store *limiterStore
}

// NewRateLimiter builds a limiter from cfg. A non-positive PerMinute disables
// limiting. Call Stop to release the cleanup goroutine.
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{store: newLimiterStore(cfg)}
}

// Middleware returns the HTTP middleware. Probe and metrics endpoints are
// never limited.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isProbe(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		limiter := l.store.limiter(clientKey(r, l.store.trustedProxies))
		if limiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		if !limiter.Allow() {
			metrics.HTTPRateLimitedTotal.Inc()
			w.Header().Set("Retry-After", strconv.Itoa(l.store.retryAfterSeconds()))
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Stop gracefully shuts down the cleanup goroutine
func (l *RateLimiter) Stop() {
	l.store.Stop()
}

type limiterStore struct {
	mu             sync.Mutex
	limiters       map[string]*limiterEntry
	perMinute      int
	trustedProxies []string
	stopOnce       sync.Once
	stopCleanup    chan struct{}
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLimiterStore(cfg config.RateLimitConfig) *limiterStore {
	store := &limiterStore{
		limiters:       make(map[string]*limiterEntry),
		perMinute:      cfg.PerMinute,
		trustedProxies: cfg.TrustedProxyCIDRs,
		stopCleanup:    make(chan struct{}),
	}
	if store.perMinute > 0 {
		go store.cleanupLoop()
	}
	return store
}

func (s *limiterStore) limiter(key string) *rate.Limiter {
	if s.perMinute <= 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.limiters[key]; ok {
		entry.lastSeen = time.Now()
		return entry.limiter
	}

	interval := time.Minute / time.Duration(s.perMinute)
	limiter := rate.NewLimiter(rate.Every(interval), s.perMinute)
	s.limiters[key] = &limiterEntry{
		limiter:  limiter,
		lastSeen: time.Now(),
	}
	return limiter
}

// retryAfterSeconds is the time until one token refills, rounded up.
func (s *limiterStore) retryAfterSeconds() int {
	if s.perMinute <= 0 {
		return 0
	}
	return int(math.Ceil(60 / float64(s.perMinute)))
}

// cleanupLoop periodically drops limiters of clients that went quiet so the
// map cannot grow without bound.
func (s *limiterStore) cleanupLoop() {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup(time.Now())
		case <-s.stopCleanup:
			return
		}
	}
}

func (s *limiterStore) cleanup(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, entry := range s.limiters {
		if now.Sub(entry.lastSeen) > limiterIdleTTL {
			delete(s.limiters, key)
		}
	}
}

func (s *limiterStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.limiters)
}

func (s *limiterStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopCleanup) })
}

// clientKey extracts the client identifier for rate limiting. Forwarding
// headers are only trusted from configured proxy CIDRs.
func clientKey(r *http.Request, trustedProxyCIDRs []string) string {
	if r == nil {
		return ""
	}

	remoteIP := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		remoteIP = host
	}

	if isTrustedProxy(remoteIP, trustedProxyCIDRs) {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			first, _, _ := strings.Cut(forwarded, ",")
			if first = strings.TrimSpace(first); first != "" {
				return first
			}
		}
		if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
			return strings.TrimSpace(realIP)
		}
	}

	return remoteIP
}

// isTrustedProxy checks if the given IP is within any of the trusted proxy CIDRs
func isTrustedProxy(ip string, trustedCIDRs []string) bool {
	if len(trustedCIDRs) == 0 {
		return false
	}

	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return false
	}

	for _, cidrStr := range trustedCIDRs {
		_, cidr, err := net.ParseCIDR(cidrStr)
		if err != nil {
			continue
		}
		if cidr.Contains(parsedIP) {
			return true
		}
	}

	return false
}
