package ingestion_engine

import (
	"slices"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/storage-indexer/internal/core"
	"github.com/markdave123-py/storage-indexer/internal/models"
)

func collect(t *testing.T, text string, maxLen int) []string {
	t.Helper()
	seq, err := Chunk(text, maxLen)
	require.NoError(t, err)
	return slices.Collect(seq)
}

func TestChunk_Boundaries(t *testing.T) {
	assert.Empty(t, collect(t, "", 1200))
	assert.Equal(t, []string{"a", "b"}, collect(t, "ab", 1))
	assert.Empty(t, collect(t, "     ", 2))
}

func TestChunk_InvalidMaxLen(t *testing.T) {
	for _, n := range []int{0, -1} {
		_, err := Chunk("text", n)
		assert.ErrorIs(t, err, core.ErrInvalidArgument)
	}
}

func TestChunk_TrimsAndDropsEmptyWindows(t *testing.T) {
	// windows: "ab " | "   " | " cd"
	assert.Equal(t, []string{"ab", "cd"}, collect(t, "ab     cd", 3))
}

func TestChunk_LengthsAndOrder(t *testing.T) {
	text := strings.Repeat("x", 1500)
	got := collect(t, text, 1200)
	require.Len(t, got, 2)
	assert.Len(t, got[0], 1200)
	assert.Len(t, got[1], 300)

	words := "the quick brown fox jumps over the lazy dog and keeps on running"
	for maxLen := 1; maxLen <= 20; maxLen++ {
		chunks := collect(t, words, maxLen)
		joined := strings.Join(chunks, " ")
		assert.LessOrEqual(t, len(joined), len(words)+len(chunks))
		for _, c := range chunks {
			assert.LessOrEqual(t, utf8.RuneCountInString(c), maxLen)
			assert.Contains(t, words, c)
		}
	}
}

func TestChunk_CountsCharactersNotBytes(t *testing.T) {
	got := collect(t, "héllo wörld", 5)
	assert.Equal(t, []string{"héllo", "wörld"}, got)
}

func TestChunk_Restartable(t *testing.T) {
	seq, err := Chunk("abcdef", 2)
	require.NoError(t, err)

	first := slices.Collect(seq)
	second := slices.Collect(seq)
	assert.Equal(t, first, second)

	// early stop must not break later iterations
	for range seq {
		break
	}
	assert.Equal(t, []string{"ab", "cd", "ef"}, slices.Collect(seq))
}

func TestBuildChunks_PageScoped(t *testing.T) {
	pages := []models.ExtractedPage{
		{PageNumber: 1, Text: "abcde"},
		{PageNumber: 2, Text: ""},
		{PageNumber: 3, Text: "fg"},
	}
	src := models.SourceObject{Bucket: "b", Key: "dir/doc.pdf"}

	chunks, err := buildChunks(pages, "doc.pdf", src, 3)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	assert.Equal(t, "abc", chunks[0].Text)
	assert.Equal(t, "doc.pdf#p1", chunks[0].SourceID)
	assert.Equal(t, "de", chunks[1].Text)
	assert.Equal(t, 1, chunks[1].Metadata.Page)
	assert.Equal(t, "fg", chunks[2].Text)
	assert.Equal(t, "doc.pdf#p3", chunks[2].SourceID)
	assert.Equal(t, models.ChunkMetadata{Bucket: "b", Key: "dir/doc.pdf", Page: 3}, chunks[2].Metadata)
}
