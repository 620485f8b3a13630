package ingestion_engine

import (
	"time"

	"github.com/markdave123-py/storage-indexer/internal/config"
	"github.com/markdave123-py/storage-indexer/internal/core"
)

// Defaults applied by NewDocumentIngestor to zero-valued IngestConfig fields.
const (
	DefaultBatchSize  = 32
	DefaultSnippetLen = 200

	defaultSignedURLTTL = 60 * time.Second
)

// IngestConfig tunes the indexing pipeline.
//
// Table:      document store table receiving chunk rows.
// ChunkMaxLen: characters per chunk window (e.g., 1200).
// BatchSize:  how many chunks to embed/write in one batch (e.g., 32).
// SnippetLen: characters of page 1 reported by a dry run.
// SignedURLTTL: lifetime of the signed download URL.
type IngestConfig struct {
	Table        string
	ChunkMaxLen  int
	BatchSize    int
	SnippetLen   int
	SignedURLTTL time.Duration
}

// RunOptions select the mode of a single run.
type RunOptions struct {
	Overwrite bool
	DryRun    bool
}

// DocumentIngestor drives one indexing run end to end:
//
// db:        persistence gateway for chunk rows.
// obj:       object storage issuing signed download URLs.
// fetch:     downloads the bytes behind a signed URL.
// embedder:  embedding provider (OpenAI-compatible/Gemini).
// extractor: per-page text extraction.
// backend:   credentials checked at step init.
// cfg:       runtime tuning knobs for the pipeline.
type DocumentIngestor struct {
	db        core.DocumentStore
	obj       core.ObjectClient
	fetch     core.Downloader
	embedder  core.EmbeddingProvider
	extractor core.PageExtractor
	backend   config.Backend
	cfg       IngestConfig
}
