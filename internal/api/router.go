package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/api/handlers"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/api/middleware"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/api/problem"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/config"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/discovery"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/maps"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/metrics"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/planner"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/routeplan"
)

// Dependencies are the shared services the HTTP API exposes. Cache is nil
// when the place cache is disabled.
type Dependencies struct {
	Config    config.Config
	Logger    zerolog.Logger
	Planner   *routeplan.Planner
	Discovery *discovery.Service
	Readiness *maps.Readiness
	Sessions  *planner.Registry
	Cache     handlers.Pinger
	Build     BuildInfo
}

// Router is the fully wrapped API handler.
type Router struct {
	handler http.Handler
	limiter *middleware.RateLimiter
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.handler.ServeHTTP(w, r)
}

// Close stops background work owned by the middleware chain.
func (rt *Router) Close() {
	rt.limiter.Stop()
}

// NewRouter wires handlers and middleware. Tracing and metrics sit directly
// outside the mux so both see the matched route pattern.
func NewRouter(deps Dependencies) *Router {
	env := deps.Config.Environment

	routes := handlers.NewRoutesHandler(deps.Planner, deps.Readiness, env)
	places := handlers.NewPlacesHandler(deps.Discovery, env)
	sessions := handlers.NewSessionsHandler(deps.Sessions, env)

	var counter handlers.SessionCounter
	if deps.Sessions != nil {
		counter = deps.Sessions
	}
	health := handlers.NewHealthChecker(deps.Readiness, deps.Cache, counter, deps.Build.Version, deps.Build.GitCommit)

	mux := http.NewServeMux()
	mux.Handle("/healthz", methodMux(env, map[string]http.Handler{http.MethodGet: handlers.Healthz()}))
	mux.Handle("/readyz", methodMux(env, map[string]http.Handler{http.MethodGet: handlers.Readyz(deps.Readiness)}))
	mux.Handle("/health", methodMux(env, map[string]http.Handler{http.MethodGet: health.Health()}))
	mux.Handle("/version", methodMux(env, map[string]http.Handler{http.MethodGet: VersionHandler(deps.Build)}))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	mux.Handle("/api/v1/routes", methodMux(env, map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(routes.Compute),
	}))
	mux.Handle("/api/v1/routes/compare", methodMux(env, map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(routes.Compare),
	}))

	mux.Handle("/api/v1/places/autocomplete", methodMux(env, map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(places.Autocomplete),
	}))
	mux.Handle("/api/v1/places/{id}", methodMux(env, map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(places.Get),
	}))

	if deps.Sessions != nil {
		mux.Handle("/api/v1/planner/sessions", methodMux(env, map[string]http.Handler{
			http.MethodPost: http.HandlerFunc(sessions.Create),
		}))
		mux.Handle("/api/v1/planner/sessions/{id}", methodMux(env, map[string]http.Handler{
			http.MethodDelete: http.HandlerFunc(sessions.Delete),
		}))
		mux.Handle("/api/v1/planner/sessions/{id}/route", methodMux(env, map[string]http.Handler{
			http.MethodGet: http.HandlerFunc(sessions.GetRoute),
			http.MethodPut: http.HandlerFunc(sessions.PutRoute),
		}))
		mux.Handle("/api/v1/planner/sessions/{id}/places", methodMux(env, map[string]http.Handler{
			http.MethodGet: http.HandlerFunc(sessions.GetPlaces),
		}))
		mux.Handle("/api/v1/planner/sessions/{id}/places/input", methodMux(env, map[string]http.Handler{
			http.MethodPut: http.HandlerFunc(sessions.PutInput),
		}))
		mux.Handle("/api/v1/planner/sessions/{id}/places/keys", methodMux(env, map[string]http.Handler{
			http.MethodPost: http.HandlerFunc(sessions.PostKey),
		}))
		mux.Handle("/api/v1/planner/sessions/{id}/places/select", methodMux(env, map[string]http.Handler{
			http.MethodPost: http.HandlerFunc(sessions.PostSelect),
		}))
	}
	mux.Handle("/", notFound(env))

	limiter := middleware.NewRateLimiter(deps.Config.RateLimit)

	var h http.Handler = mux
	h = metrics.HTTPMiddleware(h)
	h = middleware.Tracing(h)
	h = middleware.RequestSize(deps.Config.Server.MaxBodyBytes)(h)
	h = limiter.Middleware(h)
	h = middleware.CORS(deps.Config.CORS, deps.Logger)(h)
	h = middleware.SecurityHeaders(deps.Config.Environment == "production")(h)
	h = middleware.RequestLogging(deps.Logger)(h)
	h = middleware.CorrelationID(deps.Logger)(h)

	return &Router{handler: h, limiter: limiter}
}

func methodMux(env string, handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		if r.Method == http.MethodHead {
			if handler, ok := handlers[http.MethodGet]; ok {
				handler.ServeHTTP(w, r)
				return
			}
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		problem.Write(w, r, http.StatusMethodNotAllowed, problem.TypeMethodNotAllowed, "Method not allowed", nil, env)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}

func notFound(env string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Not found", nil, env)
	})
}
