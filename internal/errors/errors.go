// Package errors provides domain-specific error types and sentinel errors
// for improved error handling across the application.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrInvalidInput indicates user provided invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRateLimitExceeded indicates rate limit has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrEmbeddingFailed indicates the embedding provider could not encode text.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrCorpusEmpty indicates the intent corpus has no embedded examples.
	ErrCorpusEmpty = errors.New("intent corpus is empty")

	// ErrCacheInvalid indicates the persisted embedding cache does not match
	// the configured encoder model and must be recomputed.
	ErrCacheInvalid = errors.New("embedding cache invalid")
)

// DataError represents a malformed or missing static data file.
// Loading failures are fatal at startup: the service cannot answer
// without its corpus.
type DataError struct {
	Path string
	Err  error
}

func (e *DataError) Error() string {
	return fmt.Sprintf("data file error (path=%s): %v", e.Path, e.Err)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// NewDataError creates a new data file error.
func NewDataError(path string, err error) *DataError {
	return &DataError{Path: path, Err: err}
}
