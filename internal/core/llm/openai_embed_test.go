package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/storage-indexer/internal/core"
)

func TestOpenAIEmbedder_Success(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req embeddingRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "text-embedding-3-small", req.Model)
		assert.Equal(t, []string{"alpha", "beta"}, req.Input)

		// out of order on purpose; index decides placement
		_, _ = w.Write([]byte(`{"data":[{"index":1,"embedding":[0.2,0.3]},{"index":0,"embedding":[0.1,0.4]}]}`))
	}))
	defer srv.Close()

	e := NewOpenAIEmbedder(srv.URL+"/v1/", "sk-test", "", time.Second)
	vecs, err := e.EmbedTexts(context.Background(), []string{"alpha", "beta"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{0.1, 0.4}, {0.2, 0.3}}, vecs)
	assert.Equal(t, int32(1), calls.Load())
}

func TestOpenAIEmbedder_MissingKeyFailsFast(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	_, err := NewOpenAIEmbedder(srv.URL, " ", "m", time.Second).EmbedTexts(context.Background(), []string{"x"})

	var embErr *core.EmbeddingError
	require.ErrorAs(t, err, &embErr)
	assert.ErrorIs(t, err, errNoAPIKey)
	assert.Zero(t, calls.Load())
}

func TestOpenAIEmbedder_StatusIncludesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached"}}`))
	}))
	defer srv.Close()

	_, err := NewOpenAIEmbedder(srv.URL, "k", "m", time.Second).EmbedTexts(context.Background(), []string{"x"})
	require.Error(t, err)
	assert.Equal(t, `429 | {"error":{"message":"Rate limit reached"}}`, err.Error())

	var statusErr *core.HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 429, statusErr.StatusCode)
}

func TestOpenAIEmbedder_BadResponses(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>oops</html>`},
		{"count mismatch", `{"data":[{"embedding":[1]}]}`},
		{"empty vector", `{"data":[{"embedding":[]},{"embedding":[1]}]}`},
		{"duplicate index", `{"data":[{"index":0,"embedding":[1]},{"index":0,"embedding":[2]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewOpenAIEmbedder(srv.URL, "k", "m", time.Second).EmbedTexts(context.Background(), []string{"a", "b"})
			var embErr *core.EmbeddingError
			assert.ErrorAs(t, err, &embErr)
		})
	}
}

func TestOpenAIEmbedder_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := NewOpenAIEmbedder(srv.URL, "k", "m", 20*time.Millisecond).EmbedTexts(context.Background(), []string{"a"})
	var embErr *core.EmbeddingError
	assert.ErrorAs(t, err, &embErr)
}

func TestGeminiEmbedder_MissingKey(t *testing.T) {
	g, err := NewGeminiEmbedder(context.Background(), "", "")
	require.NoError(t, err)

	_, err = g.EmbedTexts(context.Background(), []string{"x"})
	assert.ErrorIs(t, err, errNoAPIKey)
	assert.NoError(t, g.Close())
}
