package tasks

import (
	"errors"
	"fmt"

	"launcherd/internal/catalog"
)

var (
	// ErrNoApplicableUpdate is returned by Resolve when there is nothing to install.
	ErrNoApplicableUpdate = errors.New("no applicable update")
	// ErrAlreadyResolved is returned when a job is resolved a second time.
	ErrAlreadyResolved = errors.New("job already resolved")
	// ErrDriverStopped is returned by Submit once the driver has exited.
	ErrDriverStopped = errors.New("driver stopped")
	// ErrSinkClosed wraps a Sink failure; the driver cannot continue without it.
	ErrSinkClosed = errors.New("event sink closed")
)

// ResolutionError reports that a queued job could not be started.
type ResolutionError struct {
	Variant catalog.Variant
	Err     error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s: %v", e.Variant, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// StatusQueryError reports that an active job could not be introspected.
type StatusQueryError struct {
	Variant catalog.Variant
	Err     error
}

func (e *StatusQueryError) Error() string {
	return fmt.Sprintf("query status %s: %v", e.Variant, e.Err)
}

func (e *StatusQueryError) Unwrap() error { return e.Err }

// IsResolutionError reports whether err is or wraps a ResolutionError.
func IsResolutionError(err error) bool {
	var re *ResolutionError
	return errors.As(err, &re)
}

// IsStatusQueryError reports whether err is or wraps a StatusQueryError.
func IsStatusQueryError(err error) bool {
	var se *StatusQueryError
	return errors.As(err, &se)
}

// failureMessage strips the driver-level wrapping so the user sees the cause.
func failureMessage(err error) string {
	if err == nil {
		return ""
	}
	var re *ResolutionError
	if errors.As(err, &re) && re.Err != nil {
		return re.Err.Error()
	}
	var se *StatusQueryError
	if errors.As(err, &se) && se.Err != nil {
		return se.Err.Error()
	}
	return err.Error()
}
