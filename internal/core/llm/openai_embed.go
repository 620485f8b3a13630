package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/markdave123-py/storage-indexer/internal/core"
)

var _ core.EmbeddingProvider = (*OpenAIEmbedder)(nil)

var errNoAPIKey = errors.New("embedding API key is not set")

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     *int      `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// OpenAIEmbedder calls an OpenAI-compatible /embeddings endpoint.
type OpenAIEmbedder struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

func NewOpenAIEmbedder(baseURL, apiKey, model string, timeout time.Duration) *OpenAIEmbedder {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "text-embedding-3-small"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OpenAIEmbedder{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
	}
}

// EmbedTexts sends all texts in one request. It never retries.
func (e *OpenAIEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if strings.TrimSpace(e.apiKey) == "" {
		return nil, &core.EmbeddingError{Err: errNoAPIKey}
	}
	if len(texts) == 0 {
		return nil, nil
	}

	payload, err := json.Marshal(embeddingRequest{Model: e.model, Input: texts})
	if err != nil {
		return nil, &core.EmbeddingError{Err: fmt.Errorf("encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(payload))
	if err != nil {
		return nil, &core.EmbeddingError{Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, &core.EmbeddingError{Err: fmt.Errorf("embedding request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &core.EmbeddingError{Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &core.EmbeddingError{Err: &core.HTTPStatusError{StatusCode: resp.StatusCode, Body: string(body)}}
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &core.EmbeddingError{Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(parsed.Data) != len(texts) {
		return nil, &core.EmbeddingError{Err: fmt.Errorf("embedding count mismatch: got %d want %d", len(parsed.Data), len(texts))}
	}

	out := make([][]float32, len(texts))
	for i, d := range parsed.Data {
		idx := i
		if d.Index != nil {
			idx = *d.Index
		}
		if idx < 0 || idx >= len(out) || out[idx] != nil {
			return nil, &core.EmbeddingError{Err: fmt.Errorf("unexpected embedding index %d", idx)}
		}
		if len(d.Embedding) == 0 {
			return nil, &core.EmbeddingError{Err: fmt.Errorf("empty embedding at index %d", idx)}
		}
		out[idx] = d.Embedding
	}
	return out, nil
}
