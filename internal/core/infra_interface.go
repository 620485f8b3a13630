package core

import (
	"context"
	"time"

	"github.com/markdave123-py/storage-indexer/internal/models"
)

// Record is one row handed to the document store, keyed by column name.
type Record map[string]any

// FilterOp is the predicate a Filter applies to its column.
type FilterOp int

const (
	FilterEq FilterOp = iota
	FilterStartsWith
)

// Filter selects rows by a single column predicate.
type Filter struct {
	Column string
	Op     FilterOp
	Value  string
}

// DocumentStore is the generic persistence gateway.
// Every call stands alone; nothing is transactional across calls.
type DocumentStore interface {
	Insert(ctx context.Context, table string, rows []Record) error
	Delete(ctx context.Context, table string, filter Filter) error
}

// ChunkSearcher retrieves persisted chunks nearest to a query vector.
type ChunkSearcher interface {
	SearchChunks(ctx context.Context, table string, queryVec []float32, limit int) ([]models.ChunkMatch, error)
}

// ObjectClient defines interactions with S3 or any object storage.
// It's abstract so you can replace AWS with MinIO, GCP, etc. easily.
type ObjectClient interface {
	CreateSignedURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
	UploadFile(ctx context.Context, bucket, key string, data []byte, contentType string) error
}

// Downloader fetches the bytes behind a (signed) URL.
type Downloader interface {
	Download(ctx context.Context, url string) ([]byte, error)
}
