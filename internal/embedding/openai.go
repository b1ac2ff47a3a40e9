package embedding

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	apperrors "github.com/unsta/chatbot-go/internal/errors"
)

// OpenAIEncoder generates embeddings via the OpenAI embeddings API or
// any OpenAI-compatible provider through a custom BaseURL.
type OpenAIEncoder struct {
	client   openai.Client
	model    string
	observer Observer
}

// NewOpenAIEncoder creates an OpenAI-compatible encoder. An empty
// baseURL targets the official API.
func NewOpenAIEncoder(apiKey, baseURL, model string, observer Observer) (*OpenAIEncoder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key not configured")
	}
	if model == "" {
		model = DefaultOpenAIModel
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &OpenAIEncoder{
		client:   openai.NewClient(opts...),
		model:    model,
		observer: observer,
	}, nil
}

// Model implements Encoder.
func (e *OpenAIEncoder) Model() string {
	return fmt.Sprintf("openai/%s", e.model)
}

// Encode generates an embedding vector for a single text.
func (e *OpenAIEncoder) Encode(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EncodeBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EncodeBatch generates embeddings for all texts in one API call,
// preserving input order.
func (e *OpenAIEncoder) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("text %d is empty or whitespace-only", i)
		}
	}

	start := time.Now()
	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
		Model: openai.EmbeddingModel(e.model),
	})
	observe(e.observer, ProviderOpenAI, start, err)
	if err != nil {
		return nil, fmt.Errorf("%w: create embeddings: %w", apperrors.ErrEmbeddingFailed, err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts",
			apperrors.ErrEmbeddingFailed, len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, item := range resp.Data {
		idx := int(item.Index)
		if idx < 0 || idx >= len(texts) {
			return nil, fmt.Errorf("%w: embedding index %d out of range", apperrors.ErrEmbeddingFailed, idx)
		}
		vec := make([]float32, len(item.Embedding))
		for i, v := range item.Embedding {
			vec[i] = float32(v)
		}
		vectors[idx] = vec
	}
	return vectors, nil
}
