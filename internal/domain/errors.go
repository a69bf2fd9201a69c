package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the store, the services and the HTTP layer.
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrConflict            = errors.New("unit already registered for this event")
	ErrStaleVersion        = errors.New("participation was modified concurrently")
	ErrTerminalState       = errors.New("participation is cancelled")
	ErrDuplicatePayment    = errors.New("payment transaction already applied")
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
)

// UpstreamError is returned when the user directory or the event catalog cannot
// be reached or answers with an unexpected status. StatusCode is 0 when no
// response was received.
type UpstreamError struct {
	Service    string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s unavailable (status %d): %v", e.Service, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s unavailable: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Is reports every UpstreamError as ErrUpstreamUnavailable.
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstreamUnavailable
}
