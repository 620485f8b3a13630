package services

import (
	"context"
	"fmt"

	"github.com/markdave123-py/storage-indexer/internal/config"
	"github.com/markdave123-py/storage-indexer/internal/core"
	"github.com/markdave123-py/storage-indexer/internal/core/ingestion_engine"
	"github.com/markdave123-py/storage-indexer/internal/models"
)

// Indexer runs one indexing pipeline for a stored object.
type Indexer interface {
	Run(ctx context.Context, bucket, key string, opts ingestion_engine.RunOptions) (*models.IndexRunResult, error)
}

// IndexService is the entry point shared by the HTTP API and the CLI.
// Runs on the same bucket/key are serialized because overwrite is a
// non-atomic delete-then-insert.
type IndexService struct {
	ingestor Indexer
	backend  config.Backend
	locks    *KeyedMutex
}

func NewIndexService(ingestor Indexer, backend config.Backend) *IndexService {
	return &IndexService{ingestor: ingestor, backend: backend, locks: NewKeyedMutex()}
}

func (s *IndexService) Index(ctx context.Context, bucket, key string, opts ingestion_engine.RunOptions) (*models.IndexRunResult, error) {
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("%w: bucket and key are required", core.ErrBadRequest)
	}
	unlock, err := s.locks.Lock(ctx, bucket+"/"+key)
	if err != nil {
		return nil, core.NewStepError(core.StepInit, err, "wait for %s/%s", bucket, key)
	}
	defer unlock()

	return s.ingestor.Run(ctx, bucket, key, opts)
}

func (s *IndexService) Diagnose() models.Diagnostic {
	return s.backend.Diagnose()
}
