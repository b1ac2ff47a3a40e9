package embedding

import (
	"context"
	"fmt"

	"github.com/unsta/chatbot-go/internal/config"
)

// NewFromConfig builds the configured Encoder.
func NewFromConfig(ctx context.Context, cfg *config.Config, observer Observer) (Encoder, error) {
	switch Provider(cfg.EmbeddingProvider) {
	case ProviderGemini:
		return NewGeminiEncoder(ctx, cfg.GeminiAPIKey, cfg.EmbeddingModel, observer)
	case ProviderOpenAI:
		return NewOpenAIEncoder(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.EmbeddingModel, observer)
	case ProviderDeterministic:
		return NewDeterministicEncoder(128), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.EmbeddingProvider)
	}
}
