package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/api/problem"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/discovery"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/maps"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/planner"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/routeplan"
)

// retryAfterSeconds is suggested to clients for transient provider failures.
const retryAfterSeconds = 5

// routeStatus maps a route failure to its HTTP status.
func routeStatus(re *routeplan.RouteError) int {
	switch re.Kind {
	case routeplan.KindLocationNotFound, routeplan.KindNoRouteFound, routeplan.KindTooManyWaypoints:
		return http.StatusUnprocessableEntity
	case routeplan.KindRateLimited:
		return http.StatusTooManyRequests
	case routeplan.KindProviderNotReady:
		return http.StatusServiceUnavailable
	default:
		// RequestDenied and unknown provider errors are upstream failures.
		return http.StatusBadGateway
	}
}

// writeRouteError renders a route computation failure. Typed route errors
// carry their user message as the detail in every environment.
func writeRouteError(w http.ResponseWriter, r *http.Request, err error, env string) {
	re, ok := routeplan.AsRouteError(err)
	if !ok {
		writeCommonError(w, r, err, env)
		return
	}

	status := routeStatus(re)
	if status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
	}
	problem.Write(w, r, status, problem.TypeBase+string(re.Kind), "Route could not be computed", err, env,
		problem.WithDetail(re.UserMessage()),
		problem.WithCode(string(re.Kind)),
		problem.WithRetryable(re.Retryable()))
}

// writePlacesError renders a discovery failure from the provider status it
// carries.
func writePlacesError(w http.ResponseWriter, r *http.Request, err error, env string) {
	status := maps.StatusOf(err)
	switch status {
	case maps.StatusNotFound, maps.StatusZeroResults:
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Place not found", err, env,
			problem.WithCode("place_not_found"))
	case maps.StatusInvalidRequest:
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid place request", err, env)
	case maps.StatusOverQueryLimit, maps.StatusOverDailyLimit:
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
		problem.Write(w, r, http.StatusTooManyRequests, problem.TypeBase+"rate_limited", "Place search is busy", err, env,
			problem.WithCode("rate_limited"),
			problem.WithRetryable(true))
	case maps.StatusRequestDenied:
		problem.Write(w, r, http.StatusBadGateway, problem.TypeBase+"request_denied", "Place search unavailable", err, env,
			problem.WithCode("request_denied"),
			problem.WithRetryable(false))
	case "":
		writeCommonError(w, r, err, env)
	default:
		problem.Write(w, r, http.StatusBadGateway, problem.TypeBase+"provider_error", "Place search failed", err, env,
			problem.WithCode("provider_error"),
			problem.WithRetryable(true))
	}
}

// writeCommonError handles errors shared by every endpoint.
func writeCommonError(w http.ResponseWriter, r *http.Request, err error, env string) {
	switch {
	case errors.Is(err, planner.ErrSessionNotFound),
		errors.Is(err, routeplan.ErrEngineClosed),
		errors.Is(err, discovery.ErrSessionClosed):
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Planner session not found", err, env)
	case errors.Is(err, routeplan.ErrSuperseded), errors.Is(err, discovery.ErrSuperseded):
		problem.Write(w, r, http.StatusConflict, problem.TypeBase+"superseded", "Superseded by a newer request", err, env,
			problem.WithDetail("A newer request for this planner replaced this one."),
			problem.WithCode("superseded"))
	case errors.Is(err, discovery.ErrSelectionInProgress):
		problem.Write(w, r, http.StatusConflict, problem.TypeConflict, "Selection in progress", err, env)
	case errors.Is(err, planner.ErrTooManySessions), errors.Is(err, planner.ErrRegistryClosed):
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
		problem.Write(w, r, http.StatusServiceUnavailable, problem.TypeUnavailable, "Planner is at capacity", err, env)
	case errors.Is(err, maps.ErrNotReady), errors.Is(err, maps.ErrReadinessClosed):
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
		problem.Write(w, r, http.StatusServiceUnavailable, problem.TypeUnavailable, "Maps are still loading", err, env)
	case errors.Is(err, context.DeadlineExceeded):
		problem.Write(w, r, http.StatusGatewayTimeout, problem.TypeUnavailable, "Upstream timeout", err, env)
	case errors.Is(err, context.Canceled):
		// The client went away; nobody reads this response.
		problem.Write(w, r, http.StatusServiceUnavailable, problem.TypeUnavailable, "Request cancelled", err, env)
	default:
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, env)
	}
}
