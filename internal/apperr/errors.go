// Package apperr defines sentinel errors shared across layers.
package apperr

import "errors"

var (
	// ErrNotFound marks a path that is not on disk or not in the index.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists marks a rename destination that is occupied.
	ErrAlreadyExists = errors.New("already exists")
)
