package problem

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

const contentType = "application/problem+json"

// TypeBase prefixes every problem type URI.
const TypeBase = "https://wanderlanka.lk/problems/"

const (
	TypeValidation       = TypeBase + "validation-error"
	TypeNotFound         = TypeBase + "not-found"
	TypeMethodNotAllowed = TypeBase + "method-not-allowed"
	TypePayloadTooLarge  = TypeBase + "payload-too-large"
	TypeConflict         = TypeBase + "conflict"
	TypeUnavailable      = TypeBase + "service-unavailable"
	TypeServerError      = TypeBase + "server-error"
)

type ProblemDetails struct {
	Type     string                 `json:"type"`
	Title    string                 `json:"title"`
	Status   int                    `json:"status"`
	Detail   string                 `json:"detail,omitempty"`
	Instance string                 `json:"instance,omitempty"`
	Code     string                 `json:"code,omitempty"`
	Retry    *bool                  `json:"retryable,omitempty"`
	Errors   map[string]interface{} `json:"errors,omitempty"`
}

type Option func(*ProblemDetails)

func WithDetail(detail string) Option {
	return func(p *ProblemDetails) {
		p.Detail = detail
	}
}

func WithInstance(instance string) Option {
	return func(p *ProblemDetails) {
		p.Instance = instance
	}
}

func WithErrors(errs map[string]interface{}) Option {
	return func(p *ProblemDetails) {
		p.Errors = errs
	}
}

// WithCode attaches a machine readable failure code, e.g. a route error kind.
// The code is also logged as "kind".
func WithCode(code string) Option {
	return func(p *ProblemDetails) {
		p.Code = code
	}
}

// WithRetryable tells the client whether re-sending the same request may
// succeed.
func WithRetryable(retryable bool) Option {
	return func(p *ProblemDetails) {
		p.Retry = &retryable
	}
}

func Write(w http.ResponseWriter, r *http.Request, status int, typ, title string, err error, env string, opts ...Option) {
	problem := ProblemDetails{
		Type:   typ,
		Title:  title,
		Status: status,
	}

	for _, opt := range opts {
		opt(&problem)
	}

	if problem.Detail == "" && err != nil {
		if env == "development" || env == "test" {
			problem.Detail = err.Error()
		} else {
			problem.Detail = http.StatusText(status)
		}
	}

	if problem.Instance == "" && r != nil {
		problem.Instance = r.URL.Path
	}

	if err != nil && r != nil {
		logger := zerolog.Ctx(r.Context())
		var event *zerolog.Event
		switch {
		case status >= 500:
			event = logger.Error()
		case status >= 400:
			event = logger.Warn()
		}
		if event != nil {
			if problem.Code != "" {
				event = event.Str("kind", problem.Code)
			}
			event.
				Err(err).
				Int("status", status).
				Str("type", typ).
				Str("path", r.URL.Path).
				Str("method", r.Method).
				Msg(title)
		}
	}

	WriteProblem(w, problem)
}

func WriteProblem(w http.ResponseWriter, problem ProblemDetails) {
	payload, err := json.Marshal(problem)
	if err != nil {
		fallback := fmt.Sprintf("{\"type\":\"about:blank\",\"title\":\"%s\",\"status\":500}", http.StatusText(http.StatusInternalServerError))
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(fallback))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(problem.Status)
	_, _ = w.Write(payload)
}

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)
