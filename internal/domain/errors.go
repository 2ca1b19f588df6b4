package domain

import "errors"

var (
	// ErrEmbedding is returned when an embedding call fails or returns empty or malformed data.
	ErrEmbedding = errors.New("embedding failed")
	// ErrCompletion is returned when a completion call fails or returns empty or malformed data.
	ErrCompletion = errors.New("completion failed")
	// ErrMissingDocument signals a ranked title with no body in the snapshot.
	ErrMissingDocument = errors.New("missing document")
	// ErrStoreLoad is returned when the startup document load fails. It is fatal.
	ErrStoreLoad = errors.New("document store load failed")
)
