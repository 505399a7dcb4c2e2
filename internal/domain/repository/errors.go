package repository

import "errors"

var (
	// ErrNotFound is returned when no row matches the query.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique constraint (email or
	// username) would be violated.
	ErrDuplicate = errors.New("duplicate key")
)
