package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/markdave123-py/storage-indexer/internal/core"
)

var _ core.EmbeddingProvider = (*GeminiEmbedder)(nil)

const geminiTimeout = 30 * time.Second

// GeminiEmbedder embeds through the Gemini batch embedding API.
// client stays nil without an API key so the failure surfaces per call.
type GeminiEmbedder struct {
	client    *genai.Client
	modelName string
}

func NewGeminiEmbedder(ctx context.Context, apiKey, modelName string) (*GeminiEmbedder, error) {
	if modelName == "" {
		modelName = "text-embedding-004"
	}
	g := &GeminiEmbedder{modelName: modelName}
	if strings.TrimSpace(apiKey) == "" {
		return g, nil
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	g.client = cl
	return g, nil
}

func (g *GeminiEmbedder) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// EmbedTexts batches all texts in one request via BatchEmbedContents.
func (g *GeminiEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if g.client == nil {
		return nil, &core.EmbeddingError{Err: errNoAPIKey}
	}
	if len(texts) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, geminiTimeout)
	defer cancel()

	em := g.client.EmbeddingModel(g.modelName)

	batch := em.NewBatch()
	for _, t := range texts {
		batch.AddContent(genai.Text(t))
	}

	resp, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, &core.EmbeddingError{Err: fmt.Errorf("gemini batch embed: %w", err)}
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, &core.EmbeddingError{Err: fmt.Errorf("embedding count mismatch: got %d want %d", len(resp.Embeddings), len(texts))}
	}

	out := make([][]float32, 0, len(resp.Embeddings))
	for _, e := range resp.Embeddings {
		out = append(out, e.Values)
	}
	return out, nil
}
