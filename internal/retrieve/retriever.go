// Package retrieve answers "which chunks are relevant to this question"
// by embedding the question and querying the vector index.
package retrieve

import (
	"context"
	"fmt"

	"docsqa/internal/domain"
)

// DefaultTopK is the number of chunks fetched per question.
const DefaultTopK = 4

// Retriever embeds questions and looks up nearest chunks.
type Retriever struct {
	embedder domain.Embedder
	index    domain.Searcher
}

// New creates a retriever over the given embedder and index handle.
func New(embedder domain.Embedder, index domain.Searcher) *Retriever {
	return &Retriever{embedder: embedder, index: index}
}

// Retrieve returns up to k chunks ordered by decreasing similarity.
// Scores are dropped after ordering. An empty index yields an empty
// result, not an error.
func (r *Retriever) Retrieve(ctx context.Context, question string, k int) ([]domain.Chunk, error) {
	if k < 1 {
		k = DefaultTopK
	}
	vector, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}
	results, err := r.index.Search(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}
	chunks := make([]domain.Chunk, len(results))
	for i, res := range results {
		chunks[i] = res.Chunk
	}
	return chunks, nil
}
