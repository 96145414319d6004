package retrieve

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsqa/internal/domain"
	"docsqa/internal/vectorstore/memory"
)

type stubEmbedder struct {
	vector []float32
	err    error
}

func (s *stubEmbedder) Embed(context.Context, string) ([]float32, error) { return s.vector, s.err }
func (s *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = s.vector
	}
	return out, s.err
}
func (s *stubEmbedder) Dimension() int { return len(s.vector) }

func TestRetrieveOrdersByScoreAndDropsIt(t *testing.T) {
	store := memory.NewStore()
	require.NoError(t, store.Add(
		domain.Record{Chunk: domain.Chunk{ID: "far", Text: "unrelated"}, Vector: []float32{0, 1}},
		domain.Record{Chunk: domain.Chunk{ID: "near", Text: "relevant"}, Vector: []float32{1, 0.2}},
		domain.Record{Chunk: domain.Chunk{ID: "exact", Text: "spot on"}, Vector: []float32{1, 0}},
	))

	r := New(&stubEmbedder{vector: []float32{1, 0}}, store)
	chunks, err := r.Retrieve(context.Background(), "question", 2)
	require.NoError(t, err)

	require.Len(t, chunks, 2)
	assert.Equal(t, "exact", chunks[0].ID)
	assert.Equal(t, "near", chunks[1].ID)
}

func TestRetrieveEmptyIndex(t *testing.T) {
	r := New(&stubEmbedder{vector: []float32{1, 0}}, memory.NewStore())
	chunks, err := r.Retrieve(context.Background(), "anything", 5)
	require.NoError(t, err, "empty result is not an error")
	assert.Empty(t, chunks)
}

func TestRetrieveDefaultsK(t *testing.T) {
	store := memory.NewStore()
	for i := 0; i < 10; i++ {
		require.NoError(t, store.Add(domain.Record{
			Chunk:  domain.Chunk{ID: string(rune('a' + i))},
			Vector: []float32{1, float32(i)},
		}))
	}

	r := New(&stubEmbedder{vector: []float32{1, 0}}, store)
	chunks, err := r.Retrieve(context.Background(), "question", 0)
	require.NoError(t, err)
	assert.Len(t, chunks, DefaultTopK)
}

func TestRetrieveEmbedderFailure(t *testing.T) {
	wrapped := &domain.ProviderError{Service: domain.ServiceEmbedding, Kind: domain.KindAuth, Err: errors.New("401")}
	r := New(&stubEmbedder{err: wrapped}, memory.NewStore())

	_, err := r.Retrieve(context.Background(), "question", 3)
	assert.ErrorIs(t, err, domain.ErrEmbeddingProvider)
}
