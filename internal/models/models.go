package models

// SourceObject identifies a stored file. The pipeline only reads it.
type SourceObject struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// ExtractedPage is the normalized text of one PDF page (1-based).
type ExtractedPage struct {
	PageNumber int    `json:"page_number"`
	Text       string `json:"text"`
}

// ChunkMetadata records where a chunk came from.
type ChunkMetadata struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	Page   int    `json:"page"`
}

// Chunk represents one slice of a single page's text.
type Chunk struct {
	SourceTitle string        `json:"source_title"`
	SourceID    string        `json:"source_id"` // "<title>#p<page>"
	Text        string        `json:"text"`
	Metadata    ChunkMetadata `json:"metadata"`
}

// EmbeddedChunk is a chunk paired with its vector, ready to be persisted.
type EmbeddedChunk struct {
	Chunk
	Embedding []float32 `json:"embedding"`
}

// ChunkMatch is a persisted row returned by a similarity search.
type ChunkMatch struct {
	Source   string        `json:"source"`
	Content  string        `json:"content"`
	Metadata ChunkMetadata `json:"metadata"`
	Distance float64       `json:"distance"`
}

// Run notes for results that are not a normal insert.
const (
	NoteDryRun = "dryRun"
	NoteNoText = "no-text"
)

// IndexRunResult is the outcome of one indexing run.
//
// Pages:            page count of the source PDF.
// Inserted:         rows written (normal runs only).
// Note:             "" for a normal run, NoteDryRun or NoteNoText otherwise.
// TotalChars:       dry run only, characters over all extracted pages.
// FirstPageSnippet: dry run only, up to 200 characters of page 1.
type IndexRunResult struct {
	Bucket           string
	Key              string
	Pages            int
	Inserted         int
	Note             string
	TotalChars       int
	FirstPageSnippet string
}

// Diagnostic reports which pieces of backend configuration are present.
type Diagnostic struct {
	HasEmbeddingCredential    bool `json:"hasEmbeddingCredential"`
	StorageEndpointConfigured bool `json:"storageEndpointConfigured"`
	HasStorageCredential      bool `json:"hasStorageCredential"`
}
