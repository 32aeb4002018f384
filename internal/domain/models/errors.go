package models

import "errors"

// Error taxonomy shared by services, repositories and the HTTP layer.
var (
	// ErrInvalidArgument indicates missing or malformed caller input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrStoreUnavailable indicates the underlying data source could not be read.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrNotFound indicates a referenced document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates the document is in a state that forbids the change.
	ErrConflict = errors.New("conflict")
)
