package llm

import (
	"context"
	"fmt"

	"github.com/markdave123-py/storage-indexer/internal/config"
	"github.com/markdave123-py/storage-indexer/internal/core"
)

// NewEmbedder picks the provider named by EMBED_PROVIDER.
func NewEmbedder(ctx context.Context, cfg *config.Config) (core.EmbeddingProvider, error) {
	switch cfg.EmbedProvider {
	case "openai":
		return NewOpenAIEmbedder(cfg.EmbeddingEndpoint, cfg.EmbeddingAPIKey, cfg.EmbedModel, cfg.EmbedTimeout), nil
	case "gemini":
		return NewGeminiEmbedder(ctx, cfg.EmbeddingAPIKey, cfg.EmbedModel)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.EmbedProvider)
	}
}
