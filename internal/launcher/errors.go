package launcher

import (
	"errors"
	"fmt"
	"net/http"

	"launcherd/internal/catalog"
)

var (
	// ErrNotAvailable is returned when a game is already queued or installed.
	ErrNotAvailable = errors.New("variant is not available for installation")
	// ErrNotInstalled is returned when an update is requested for a game that is not installed.
	ErrNotInstalled = errors.New("variant is not installed")
)

// UnknownVariantError reports a variant with no configuration.
type UnknownVariantError struct {
	Variant catalog.Variant
}

func (e *UnknownVariantError) Error() string {
	return fmt.Sprintf("no configuration for variant %q", string(e.Variant))
}

func (e *UnknownVariantError) StatusCode() int { return http.StatusNotFound }

// ConfigError reports an unusable component or prefix configuration.
type ConfigError struct {
	What string
	Err  error
}

func (e *ConfigError) Error() string { return fmt.Sprintf("%s: %v", e.What, e.Err) }
func (e *ConfigError) Unwrap() error { return e.Err }
func (e *ConfigError) StatusCode() int {
	return http.StatusUnprocessableEntity
}

func IsUnknownVariant(err error) bool {
	var e *UnknownVariantError
	return errors.As(err, &e)
}

func IsConfigError(err error) bool {
	var e *ConfigError
	return errors.As(err, &e)
}
