package ingestion_engine

import (
	"fmt"
	"iter"
	"strings"

	"github.com/markdave123-py/storage-indexer/internal/core"
	"github.com/markdave123-py/storage-indexer/internal/models"
)

// DefaultChunkMaxLen is the window size, in characters, used when none is configured.
const DefaultChunkMaxLen = 1200

// Chunk splits text into consecutive, non-overlapping windows of at most maxLen
// characters. Windows are trimmed and empty ones skipped. The returned sequence
// is lazy and can be ranged over any number of times.
func Chunk(text string, maxLen int) (iter.Seq[string], error) {
	if maxLen <= 0 {
		return nil, fmt.Errorf("%w: chunk maxLen must be positive, got %d", core.ErrInvalidArgument, maxLen)
	}
	runes := []rune(text)

	return func(yield func(string) bool) {
		for start := 0; start < len(runes); start += maxLen {
			end := min(start+maxLen, len(runes))
			piece := strings.TrimSpace(string(runes[start:end]))
			if piece == "" {
				continue
			}
			if !yield(piece) {
				return
			}
		}
	}, nil
}

// buildChunks turns content-bearing pages into page-scoped chunks, page order first
// then offset order.
func buildChunks(pages []models.ExtractedPage, title string, src models.SourceObject, maxLen int) ([]models.Chunk, error) {
	var out []models.Chunk
	for _, p := range pages {
		if p.Text == "" {
			continue
		}
		seq, err := Chunk(p.Text, maxLen)
		if err != nil {
			return nil, err
		}
		sourceID := pageSourceID(title, p.PageNumber)
		for text := range seq {
			out = append(out, models.Chunk{
				SourceTitle: title,
				SourceID:    sourceID,
				Text:        text,
				Metadata: models.ChunkMetadata{
					Bucket: src.Bucket,
					Key:    src.Key,
					Page:   p.PageNumber,
				},
			})
		}
	}
	return out, nil
}

// pageSourceID is the persisted source tag of every chunk of one page.
func pageSourceID(title string, page int) string {
	return fmt.Sprintf("%s#p%d", title, page)
}
