package record

import "errors"

var (
	// ErrNotFound indicates no record exists for the given session id.
	// Absence is an ordinary value for callers, checked with errors.Is.
	ErrNotFound = errors.New("record.not_found")

	// ErrNilRecord indicates a nil record was passed where one is required.
	ErrNilRecord = errors.New("record.nil_record")

	// ErrEmptySID indicates a record or lookup with an empty session id.
	ErrEmptySID = errors.New("record.empty_sid")
)
