package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/bm25-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/bm25-search/pkg/config"
)

func TestRunPrintsTopDocuments(t *testing.T) {
	dir := t.TempDir()
	corpusPath := filepath.Join(dir, "chunks.jsonl")
	records := `{"video_id": "v0", "chunk": "cat dog"}
{"video_id": "v1", "chunk": "dog dog dog"}
{"video_id": "v2", "chunk": "fish"}
`
	require.NoError(t, os.WriteFile(corpusPath, []byte(records), 0o644))

	cfg := config.Default()
	cfg.Corpus.Path = corpusPath
	cfg.Search.TopK = 2
	cfg.Search.Workers = 2
	outPath := filepath.Join(dir, "results.json")

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), &out, cfg, "dog", "https://example.com/%s", outPath))

	text := out.String()
	assert.Contains(t, text, "the number of documents is 3")
	assert.Contains(t, text, "the vocabulary size is 3")
	assert.Contains(t, text, "1. Document 1:")
	assert.Contains(t, text, "2. Document 0:")
	assert.Contains(t, text, "Link: https://example.com/v1")
	assert.NotContains(t, text, "Document 2:")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var result executor.SearchResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Len(t, result.Results, 2)
}

func TestRunEmptyCorpusFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.jsonl")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	cfg := config.Default()
	cfg.Corpus.Path = path
	err := run(context.Background(), &bytes.Buffer{}, cfg, "dog", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid corpus")
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", preview("short"))
	long := strings.Repeat("é", previewLength+10)
	got := preview(long)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, previewLength+3, len([]rune(got)))
}
