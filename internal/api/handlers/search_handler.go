package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/markdave123-py/storage-indexer/internal/core"
	"github.com/markdave123-py/storage-indexer/internal/models"
)

const (
	defaultSearchLimit = 5
	maxSearchLimit     = 50
)

type SearchHandler struct {
	searcher core.ChunkSearcher
	embedder core.EmbeddingProvider
	table    string
}

func NewSearchHandler(searcher core.ChunkSearcher, emb core.EmbeddingProvider, table string) *SearchHandler {
	return &SearchHandler{searcher: searcher, embedder: emb, table: table}
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type searchResponse struct {
	Results []models.ChunkMatch `json:"results"`
}

// Search handles POST /api/search: embed the query, return the nearest chunks.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req searchRequest
	if err := decodeStrict(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		writeError(w, badRequest("query is required"))
		return
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	limit = min(limit, maxSearchLimit)

	vecs, err := h.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		writeError(w, core.NewStepError(core.StepEmbed, err, ""))
		return
	}
	if len(vecs) != 1 {
		writeError(w, core.NewStepError(core.StepEmbed, nil, "embed size mismatch: got %d want 1", len(vecs)))
		return
	}

	matches, err := h.searcher.SearchChunks(ctx, h.table, vecs[0], limit)
	if err != nil {
		writeError(w, fmt.Errorf("search failed: %w", err))
		return
	}
	if matches == nil {
		matches = []models.ChunkMatch{}
	}
	writeJSON(w, http.StatusOK, searchResponse{Results: matches})
}
