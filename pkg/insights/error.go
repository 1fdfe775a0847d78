package insights

import "errors"

var (
	// ErrNotFound is returned when a document is not found in the insight store.
	ErrNotFound = errors.New("document not found")

	// ErrConnection is returned when the insight store connection fails.
	ErrConnection = errors.New("insight store connection failed")
)
