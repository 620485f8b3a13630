package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/markdave123-py/storage-indexer/internal/config"
	"github.com/markdave123-py/storage-indexer/internal/core"
	db "github.com/markdave123-py/storage-indexer/internal/core/database"
	"github.com/markdave123-py/storage-indexer/internal/core/ingestion_engine"
	"github.com/markdave123-py/storage-indexer/internal/core/llm"
	objectclient "github.com/markdave123-py/storage-indexer/internal/core/object-client"
	"github.com/markdave123-py/storage-indexer/internal/services"
)

type App struct {
	DBClient     *db.DatabaseClient
	ObjectClient core.ObjectClient
	Embedder     core.EmbeddingProvider
	Indexer      *services.IndexService
	Server       *Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Database initialized and ready.")

	objClient, err := objectclient.NewObjectClient(appCtx, cfg)
	if err != nil {
		_ = dbClient.Close()
		return nil, err
	}
	log.Printf("Object client (%s) initialized and ready.", cfg.StorageDriver)

	embedder, err := llm.NewEmbedder(appCtx, cfg)
	if err != nil {
		_ = dbClient.Close()
		return nil, fmt.Errorf("couldn't initialize the embedder, %w", err)
	}

	ingCfg := ingestion_engine.IngestConfig{
		Table:        cfg.DocumentsTable,
		ChunkMaxLen:  cfg.ChunkMaxLen,
		BatchSize:    cfg.BatchSize,
		SignedURLTTL: cfg.SignedURLTTL,
	}
	docIngestor := ingestion_engine.NewDocumentIngestor(
		dbClient,
		objClient,
		objectclient.NewHTTPDownloader(cfg.DownloadTimeout),
		embedder,
		ingestion_engine.NewPDFExtractor(),
		cfg.Backend(),
		ingCfg,
	)
	indexer := services.NewIndexService(docIngestor, cfg.Backend())

	server := NewServer(cfg, indexer, dbClient, embedder)

	return &App{
		DBClient:     dbClient,
		ObjectClient: objClient,
		Embedder:     embedder,
		Indexer:      indexer,
		Server:       server,
	}, nil
}

func (a *App) Close() {
	if c, ok := a.Embedder.(io.Closer); ok {
		_ = c.Close()
	}
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
