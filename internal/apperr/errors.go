// Package apperr holds the error kinds shared by the note store and its transports.
package apperr

import "errors"

var (
	// ErrStoreMissing means the notes file does not exist yet.
	ErrStoreMissing = errors.New("notes file not found")
	// ErrStoreEmpty means the notes file exists but holds no notes.
	ErrStoreEmpty = errors.New("notes file is empty")
	// ErrInvalidArgument wraps caller mistakes such as a bad count or multi-line content.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrDisabled is returned by optional components that were not configured.
	ErrDisabled = errors.New("disabled")
)
