package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/storage-indexer/internal/config"
	"github.com/markdave123-py/storage-indexer/internal/core/ingestion_engine"
	"github.com/markdave123-py/storage-indexer/internal/models"
)

type stubIndexer struct{ runs int }

func (s *stubIndexer) Index(_ context.Context, bucket, key string, _ ingestion_engine.RunOptions) (*models.IndexRunResult, error) {
	s.runs++
	return &models.IndexRunResult{Bucket: bucket, Key: key, Pages: 1, Inserted: 1}, nil
}

func (s *stubIndexer) Diagnose() models.Diagnostic { return models.Diagnostic{} }

type stubSearcher struct{}

func (stubSearcher) SearchChunks(context.Context, string, []float32, int) ([]models.ChunkMatch, error) {
	return nil, nil
}

type stubEmbedder struct{}

func (stubEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	return make([][]float32, len(texts)), nil
}

func testServer(ix *stubIndexer) *httptest.Server {
	cfg := &config.Config{Port: "0", DocumentsTable: "documents", AllowedOrigins: []string{"http://localhost:5173"}}
	return httptest.NewServer(NewServer(cfg, ix, stubSearcher{}, stubEmbedder{}).Handler())
}

func TestServer_Healthz(t *testing.T) {
	ts := testServer(&stubIndexer{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_IndexRequiresBearer(t *testing.T) {
	ix := &stubIndexer{}
	ts := testServer(ix)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/index", "application/json", strings.NewReader(`{"bucket":"b","key":"k.pdf"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Zero(t, ix.runs)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/index", strings.NewReader(`{"bucket":"b","key":"k.pdf"}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer token")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, ix.runs)
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	cfg := &config.Config{Port: "0", DocumentsTable: "documents"}
	srv := NewServer(cfg, &stubIndexer{}, stubSearcher{}, stubEmbedder{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()
	cancel()

	assert.NoError(t, <-done)
}
