package types

import "errors"

// Failure classes shared by the loading, resolution and publishing layers.
// Concrete errors wrap one of these so callers can branch with errors.Is.
var (
	// ErrNotFound means a document or registry could not be read.
	ErrNotFound = errors.New("resource not found")
	// ErrMalformed means a document or registry is not valid JSON of the expected shape.
	ErrMalformed = errors.New("malformed input")
	// ErrResolution means no variant could be selected.
	ErrResolution = errors.New("resolution failure")
)
