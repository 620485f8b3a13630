package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNeedsBootstrap(t *testing.T) {
	assert.True(t, needsBootstrap(0))
	assert.False(t, needsBootstrap(schemaVersion))
	assert.False(t, needsBootstrap(schemaVersion+1))
}

func TestInitScript(t *testing.T) {
	b, err := bootstrapFS.ReadFile("scripts/initdb.sql")
	require.NoError(t, err)
	script := string(b)

	assert.Contains(t, script, "CREATE EXTENSION IF NOT EXISTS vector")
	assert.Contains(t, script, "CREATE TABLE IF NOT EXISTS indexer_meta")
	assert.Contains(t, script, "CREATE TABLE IF NOT EXISTS documents")
	assert.Contains(t, script, "text_pattern_ops")
	// The version row is written by EnsureBootstrapped in the same transaction.
	assert.False(t, strings.Contains(script, "INSERT INTO indexer_meta"))
}
