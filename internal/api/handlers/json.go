package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/api/problem"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names rather than Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// decodeJSON reads one JSON document into dst and validates it. On failure
// it writes the problem response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, env string) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			problem.Write(w, r, http.StatusRequestEntityTooLarge, problem.TypePayloadTooLarge,
				"Request body too large", err, env)
		case errors.Is(err, io.EOF):
			problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation,
				"Invalid request", errors.New("request body is required"), env)
		default:
			problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation,
				"Invalid request", fmt.Errorf("malformed JSON: %w", err), env)
		}
		return false
	}
	if dec.More() {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation,
			"Invalid request", errors.New("request body must contain a single JSON object"), env)
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]interface{}, len(verrs))
			for _, fe := range verrs {
				fields[fieldPath(fe)] = fieldMessage(fe)
			}
			problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation,
				"Invalid request", err, env,
				problem.WithDetail("One or more fields are invalid."),
				problem.WithErrors(fields))
			return false
		}
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, env)
		return false
	}
	return true
}

// fieldPath drops the root struct name from the validator namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without":
		return "is required"
	case "max":
		return "must be at most " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "latitude", "longitude":
		return "must be a valid " + fe.Tag()
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}

func pathParam(r *http.Request, key string) string {
	if r == nil {
		return ""
	}
	return strings.TrimSpace(r.PathValue(key))
}
