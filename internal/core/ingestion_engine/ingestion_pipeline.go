package ingestion_engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/markdave123-py/storage-indexer/internal/config"
	"github.com/markdave123-py/storage-indexer/internal/core"
	"github.com/markdave123-py/storage-indexer/internal/models"
)

// NewDocumentIngestor constructs the ingestor, filling zero-valued knobs with defaults.
func NewDocumentIngestor(
	db core.DocumentStore,
	obj core.ObjectClient,
	fetch core.Downloader,
	emb core.EmbeddingProvider,
	extractor core.PageExtractor,
	backend config.Backend,
	cfg IngestConfig,
) *DocumentIngestor {
	if cfg.Table == "" {
		cfg.Table = "documents"
	}
	if cfg.ChunkMaxLen <= 0 {
		cfg.ChunkMaxLen = DefaultChunkMaxLen
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.SnippetLen <= 0 {
		cfg.SnippetLen = DefaultSnippetLen
	}
	if cfg.SignedURLTTL <= 0 {
		cfg.SignedURLTTL = defaultSignedURLTTL
	}
	return &DocumentIngestor{
		db: db, obj: obj, fetch: fetch, embedder: emb, extractor: extractor,
		backend: backend, cfg: cfg,
	}
}

// Run downloads, extracts, chunks, embeds and persists one stored PDF.
// It is strictly sequential and never retries. On failure nothing is rolled back:
// deletions and batches committed before the failing step stay committed.
func (i *DocumentIngestor) Run(ctx context.Context, bucket, key string, opts RunOptions) (*models.IndexRunResult, error) {
	if strings.TrimSpace(bucket) == "" || strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("%w: bucket and key are required", core.ErrBadRequest)
	}
	if missing := i.backend.Missing(); len(missing) > 0 {
		return nil, core.NewStepError(core.StepInit, nil, "missing configuration: %s", strings.Join(missing, ", "))
	}
	src := models.SourceObject{Bucket: bucket, Key: key}

	log.Printf("DocumentIngestor: indexing %s/%s (overwrite=%t dryRun=%t)", bucket, key, opts.Overwrite, opts.DryRun)

	data, err := i.download(ctx, src)
	if err != nil {
		return nil, err
	}

	pages, err := i.extractor.ExtractPages(data)
	if err != nil {
		return nil, core.NewStepError(core.StepPdfParse, err, "")
	}
	title := titleFromKey(key)
	log.Printf("DocumentIngestor: %s/%s extracted %d pages", bucket, key, len(pages))

	if opts.DryRun {
		return i.dryRunResult(src, pages), nil
	}

	chunks, err := buildChunks(pages, title, src, i.cfg.ChunkMaxLen)
	if err != nil {
		return nil, core.NewStepError(core.StepInit, err, "")
	}
	if len(chunks) == 0 {
		log.Printf("DocumentIngestor: %s/%s has no extractable text", bucket, key)
		return &models.IndexRunResult{Bucket: bucket, Key: key, Pages: len(pages), Note: models.NoteNoText}, nil
	}

	if opts.Overwrite {
		if err := i.deletePages(ctx, title, chunks); err != nil {
			return nil, err
		}
	}

	inserted, err := i.embedAndPersist(ctx, chunks)
	if err != nil {
		return nil, err
	}

	log.Printf("DocumentIngestor: %s/%s done, %d pages, %d rows", bucket, key, len(pages), inserted)
	return &models.IndexRunResult{Bucket: bucket, Key: key, Pages: len(pages), Inserted: inserted}, nil
}

// download resolves a signed URL for the object and fetches its bytes.
func (i *DocumentIngestor) download(ctx context.Context, src models.SourceObject) ([]byte, error) {
	url, err := i.obj.CreateSignedURL(ctx, src.Bucket, src.Key, i.cfg.SignedURLTTL)
	if err != nil {
		return nil, core.NewStepError(core.StepDownload, err, "sign %s/%s", src.Bucket, src.Key)
	}
	data, err := i.fetch.Download(ctx, url)
	if err != nil {
		var statusErr *core.HTTPStatusError
		if errors.As(err, &statusErr) {
			return nil, core.NewStepError(core.StepDownload, nil, "%s/%s | %s", src.Bucket, src.Key, statusErr.Error())
		}
		return nil, core.NewStepError(core.StepDownload, err, "fetch %s/%s", src.Bucket, src.Key)
	}
	return data, nil
}

func (i *DocumentIngestor) dryRunResult(src models.SourceObject, pages []models.ExtractedPage) *models.IndexRunResult {
	res := &models.IndexRunResult{Bucket: src.Bucket, Key: src.Key, Pages: len(pages), Note: models.NoteDryRun}
	for _, p := range pages {
		res.TotalChars += utf8.RuneCountInString(p.Text)
	}
	if len(pages) > 0 {
		res.FirstPageSnippet = truncateRunes(pages[0].Text, i.cfg.SnippetLen)
	}
	return res
}

// deletePages removes previously persisted rows of every page present in chunks.
// All deletions happen before the first insert of the run.
func (i *DocumentIngestor) deletePages(ctx context.Context, title string, chunks []models.Chunk) error {
	var pages []int
	for _, c := range chunks {
		if !slices.Contains(pages, c.Metadata.Page) {
			pages = append(pages, c.Metadata.Page)
		}
	}
	slices.Sort(pages)

	for _, p := range pages {
		filter := core.Filter{Column: "source", Op: core.FilterStartsWith, Value: pageSourceID(title, p)}
		if err := i.db.Delete(ctx, i.cfg.Table, filter); err != nil {
			return core.NewStepError(core.StepDBDelete, err, "delete %s", filter.Value)
		}
	}
	log.Printf("DocumentIngestor: cleared %d pages of %q", len(pages), title)
	return nil
}

// embedAndPersist embeds chunks in fixed-size batches and writes each batch
// before starting the next one. It returns the number of rows inserted.
func (i *DocumentIngestor) embedAndPersist(ctx context.Context, chunks []models.Chunk) (int, error) {
	inserted := 0

	// flush embeds the current batch and inserts it into the database.
	flush := func(items []models.Chunk) error {
		texts := make([]string, len(items))
		for idx := range items {
			texts[idx] = items[idx].Text
		}

		vecs, err := i.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return core.NewStepError(core.StepEmbed, err, "")
		}
		if len(vecs) != len(items) {
			return core.NewStepError(core.StepEmbed, nil, "embed size mismatch: got %d want %d", len(vecs), len(items))
		}

		rows := make([]core.Record, len(items))
		for k := range items {
			rows[k] = chunkRecord(models.EmbeddedChunk{Chunk: items[k], Embedding: vecs[k]})
		}
		if err := i.db.Insert(ctx, i.cfg.Table, rows); err != nil {
			return core.NewStepError(core.StepDBInsert, err, "")
		}
		inserted += len(rows)
		return nil
	}

	for batch := range slices.Chunk(chunks, i.cfg.BatchSize) {
		if err := flush(batch); err != nil {
			return inserted, err
		}
	}
	return inserted, nil
}

func chunkRecord(ec models.EmbeddedChunk) core.Record {
	return core.Record{
		"id":        uuid.NewString(),
		"source":    ec.SourceID,
		"title":     ec.SourceTitle,
		"content":   ec.Text,
		"embedding": ec.Embedding,
		"metadata":  ec.Metadata,
	}
}

// titleFromKey returns the last non-empty path segment of an object key.
func titleFromKey(key string) string {
	trimmed := strings.TrimRight(key, "/")
	if trimmed == "" {
		return key
	}
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
