package embedding

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	apperrors "github.com/unsta/chatbot-go/internal/errors"
	"github.com/unsta/chatbot-go/internal/ratelimit"
)

// GeminiEncoder generates embeddings via the Gemini API.
type GeminiEncoder struct {
	client      *genai.Client
	model       string
	rateLimiter *ratelimit.Limiter
	observer    Observer
}

// NewGeminiEncoder creates a Gemini-backed encoder.
func NewGeminiEncoder(ctx context.Context, apiKey, model string, observer Observer) (*GeminiEncoder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key not configured")
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiEncoder{
		client:      client,
		model:       model,
		rateLimiter: ratelimit.NewPerMinute(geminiAPIRateLimit),
		observer:    observer,
	}, nil
}

// Model implements Encoder.
func (e *GeminiEncoder) Model() string {
	return fmt.Sprintf("gemini/%s", e.model)
}

// Encode generates an embedding vector for the given text.
// Uses exponential backoff with jitter for transient errors.
func (e *GeminiEncoder) Encode(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty or whitespace-only text cannot be embedded")
	}

	var lastErr error
	delay := defaultInitialDelay

	for attempt := 0; attempt <= defaultMaxRetries; attempt++ {
		if err := e.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		start := time.Now()
		result, retryable, err := e.embedOnce(ctx, text)
		observe(e.observer, ProviderGemini, start, err)
		if err == nil {
			return result, nil
		}

		lastErr = err

		if !retryable {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrEmbeddingFailed, err)
		}

		if attempt == defaultMaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(applyJitter(delay)):
		}

		delay = time.Duration(float64(delay) * defaultBackoffFactor)
	}

	return nil, fmt.Errorf("%w: max retries exceeded: %w", apperrors.ErrEmbeddingFailed, lastErr)
}

// EncodeBatch generates embeddings one text at a time, preserving
// input order. Gemini batch endpoints are not used so that the
// per-request rate limiter stays accurate.
func (e *GeminiEncoder) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Encode(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("encode text %d: %w", i, err)
		}
		vectors[i] = vec
	}
	return vectors, nil
}

// embedOnce performs a single embedding request.
// Returns (result, retryable, error).
func (e *GeminiEncoder) embedOnce(ctx context.Context, text string) ([]float32, bool, error) {
	resp, err := e.client.Models.EmbedContent(ctx, e.model, genai.Text(text), nil)
	if err != nil {
		// The SDK folds HTTP status into the error; treat rate limit
		// and server errors as retryable.
		msg := err.Error()
		retryable := strings.Contains(msg, "429") ||
			strings.Contains(msg, "RESOURCE_EXHAUSTED") ||
			strings.Contains(msg, "500") ||
			strings.Contains(msg, "503") ||
			strings.Contains(msg, "UNAVAILABLE")
		return nil, retryable, fmt.Errorf("embed content: %w", err)
	}

	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, false, fmt.Errorf("empty embedding returned")
	}

	return resp.Embeddings[0].Values, false, nil
}

// applyJitter adds random jitter to delay (±25%)
func applyJitter(delay time.Duration) time.Duration {
	jitter := float64(time.Now().UnixNano()%1000) / 1000.0
	jitter = (jitter - 0.5) * 2 * defaultJitterFactor
	return time.Duration(float64(delay) * (1 + jitter))
}
