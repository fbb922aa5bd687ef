package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"launcherd/internal/launcher"
	"launcherd/internal/tasks"
	"launcherd/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

// statusFor maps service errors to a status code and a metrics reason.
func statusFor(err error) (int, string) {
	var he HTTPError
	switch {
	case errors.Is(err, launcher.ErrNotAvailable), errors.Is(err, launcher.ErrNotInstalled):
		return http.StatusConflict, "conflict"
	case errors.Is(err, tasks.ErrDriverStopped):
		return http.StatusServiceUnavailable, "stopped"
	case errors.As(err, &he):
		return he.StatusCode(), "service"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
