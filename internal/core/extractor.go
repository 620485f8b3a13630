package core

import "github.com/markdave123-py/storage-indexer/internal/models"

// PageExtractor defines how a document byte buffer is split into per-page text.
type PageExtractor interface {
	// ExtractPages returns one page per document page, 1-based and in order.
	// Page text is already normalized; empty pages are kept.
	ExtractPages(data []byte) ([]models.ExtractedPage, error)
}
