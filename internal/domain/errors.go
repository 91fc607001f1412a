package domain

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrDuplicateSlug rejects a stage slug already held by an active stage in the registry.
	ErrDuplicateSlug = errors.New("duplicate stage slug")
	// ErrIndexOutOfRange rejects a reorder target outside the active range.
	// Out-of-range indexes are never clamped.
	ErrIndexOutOfRange       = errors.New("reorder index out of range")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrTerminalState         = errors.New("order is in a terminal state")
	ErrInvalidCommissionRate = errors.New("invalid commission rate")
	ErrInvalidInput          = errors.New("invalid input")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrConflict              = errors.New("conflict")
	ErrInvalidEnvelope       = errors.New("invalid event envelope")
	ErrUnsupportedEventType  = errors.New("unsupported event type")
	ErrUnsupportedEventClass = errors.New("unsupported event class")
)
