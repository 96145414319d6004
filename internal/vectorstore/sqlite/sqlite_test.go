package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsqa/internal/domain"
)

func testRecords() []domain.Record {
	return []domain.Record{
		{Chunk: domain.Chunk{ID: "a:0", DocumentID: "a", Source: "a.md", Text: "logging images", Position: 0}, Vector: []float32{1, 0, 0}},
		{Chunk: domain.Chunk{ID: "a:1", DocumentID: "a", Source: "a.md", Text: "logging videos", Position: 1}, Vector: []float32{0, 1, 0}},
		{Chunk: domain.Chunk{ID: "b:0", DocumentID: "b", Source: "b.md", Text: "sweep configuration", Position: 0}, Vector: []float32{0, 0, 1}},
	}
}

func TestBuildOpenSearchRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	require.NoError(t, Build(ctx, dir, testRecords()))

	ix, err := Open(dir)
	require.NoError(t, err)
	defer ix.Close()

	// Searching with a record's own vector returns that record at rank 1.
	results, err := ix.Search(ctx, []float32{0, 1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a:1", results[0].Chunk.ID)
	assert.Equal(t, "logging videos", results[0].Chunk.Text)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
}

func TestBuildReplacesPriorIndex(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	require.NoError(t, Build(ctx, dir, testRecords()))
	require.NoError(t, Build(ctx, dir, testRecords()))

	ix, err := Open(dir)
	require.NoError(t, err)
	defer ix.Close()

	count, err := ix.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(testRecords()), count, "rebuild must replace, not accumulate")
}

func TestOpenMissingIndex(t *testing.T) {
	_, err := Open(t.TempDir())
	assert.ErrorIs(t, err, domain.ErrIndexNotFound)
}

func TestOpenCorruptIndexFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, indexFile), []byte("not a sqlite database at all"), 0o644))

	_, err := Open(dir)
	assert.ErrorIs(t, err, domain.ErrIndexNotFound, "a garbage file is not a valid index")
}

func TestSearchEmptyIndex(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	require.NoError(t, Build(ctx, dir, nil))

	ix, err := Open(dir)
	require.NoError(t, err)
	defer ix.Close()

	results, err := ix.Search(ctx, []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchFewerRecordsThanK(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	require.NoError(t, Build(ctx, dir, testRecords()[:1]))

	ix, err := Open(dir)
	require.NoError(t, err)
	defer ix.Close()

	results, err := ix.Search(ctx, []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearchTiesKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	records := []domain.Record{
		{Chunk: domain.Chunk{ID: "x:0", Text: "first"}, Vector: []float32{1, 1}},
		{Chunk: domain.Chunk{ID: "x:1", Text: "second"}, Vector: []float32{2, 2}},
	}
	require.NoError(t, Build(ctx, dir, records))

	ix, err := Open(dir)
	require.NoError(t, err)
	defer ix.Close()

	results, err := ix.Search(ctx, []float32{1, 1}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "x:0", results[0].Chunk.ID)
	assert.Equal(t, "x:1", results[1].Chunk.ID)
}

func TestBuildDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	records := []domain.Record{
		{Chunk: domain.Chunk{ID: "a"}, Vector: []float32{1, 0}},
		{Chunk: domain.Chunk{ID: "b"}, Vector: []float32{1, 0, 0}},
	}
	err := Build(ctx, t.TempDir(), records)
	assert.Error(t, err)
}
