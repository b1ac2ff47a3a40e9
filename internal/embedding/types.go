// Package embedding provides sentence embedding generation through
// multiple providers (Gemini, OpenAI-compatible, deterministic offline)
// behind a single Encoder interface.
package embedding

import (
	"context"
	"time"
)

// Provider identifies an embedding backend.
type Provider string

const (
	ProviderGemini        Provider = "gemini"
	ProviderOpenAI        Provider = "openai"
	ProviderDeterministic Provider = "deterministic"
)

const (
	// DefaultGeminiModel is the Gemini embedding model.
	DefaultGeminiModel = "gemini-embedding-001"

	// DefaultOpenAIModel is the OpenAI embedding model.
	DefaultOpenAIModel = "text-embedding-3-small"

	// geminiAPIRateLimit is the requests per minute limit for the
	// embedding API.
	geminiAPIRateLimit = 1000

	// Retry configuration for transient provider errors
	defaultMaxRetries    = 5
	defaultInitialDelay  = 2 * time.Second
	defaultBackoffFactor = 2.0
	defaultJitterFactor  = 0.25
)

// Encoder produces embedding vectors for text. Implementations must be
// safe for concurrent use.
type Encoder interface {
	// Encode returns the embedding vector for a single text.
	Encode(ctx context.Context, text string) ([]float32, error)

	// EncodeBatch returns one vector per input text, in input order.
	EncodeBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Model identifies the provider and model, used to detect stale
	// persisted embeddings.
	Model() string
}

// Observer receives per-call provider telemetry. A nil Observer is
// valid and records nothing.
type Observer interface {
	RecordEmbedding(provider, status string, seconds float64)
}

func observe(o Observer, provider Provider, start time.Time, err error) {
	if o == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	o.RecordEmbedding(string(provider), status, time.Since(start).Seconds())
}
