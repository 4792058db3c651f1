package session

import "errors"

var (
	// ErrUnknownBackend indicates a backend name outside the closed set.
	ErrUnknownBackend = errors.New("session.unknown_backend")

	// ErrBackendNotConfigured indicates the selected backend has no store
	// wired in (e.g. KindDurable without a durable loader).
	ErrBackendNotConfigured = errors.New("session.backend_not_configured")

	// ErrSIDGeneration indicates the crypto random source failed.
	ErrSIDGeneration = errors.New("session.sid_generation_failed")

	// ErrNilSession indicates a nil session was passed where one is required.
	ErrNilSession = errors.New("session.nil_session")
)
