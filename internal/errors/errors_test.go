package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrInvalidInput,
		ErrRateLimitExceeded,
		ErrEmbeddingFailed,
		ErrCorpusEmpty,
		ErrCacheInvalid,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel %v should not match %v", a, b)
			}
		}
	}
}

func TestDataError_Unwrap(t *testing.T) {
	inner := errors.New("unexpected end of JSON input")
	err := NewDataError("faq_data/intents.json", inner)

	if !errors.Is(err, inner) {
		t.Error("DataError should unwrap to the inner error")
	}

	wrapped := fmt.Errorf("startup: %w", err)
	var dataErr *DataError
	if !errors.As(wrapped, &dataErr) {
		t.Fatal("errors.As should find DataError through wrapping")
	}
	if dataErr.Path != "faq_data/intents.json" {
		t.Errorf("Path = %q", dataErr.Path)
	}
}
