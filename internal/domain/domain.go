package domain

import "context"

// Document is a single raw text file loaded from the documentation corpus.
// Immutable once loaded.
type Document struct {
	ID      string
	Path    string
	Content string
}

// Chunk is a bounded span of text cut from exactly one document.
type Chunk struct {
	ID         string
	DocumentID string
	Source     string
	Text       string
	Position   int
}

// Record pairs a chunk with its embedding vector as stored in the index.
type Record struct {
	Chunk  Chunk
	Vector []float32
}

// SearchResult is a matching chunk together with its similarity score.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// Turn is one question/answer exchange. Immutable once appended to a history.
type Turn struct {
	Question string
	Answer   string
}

// Message roles understood by the chat completion provider.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry of an assembled prompt.
type Message struct {
	Role    string
	Content string
}

// Answer is a generated reply plus the chunks the model was shown.
// Sources record what went into the prompt, not what the model used.
type Answer struct {
	Text    string
	Sources []Chunk
}

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}

// Embedder converts free text into fixed-dimension vectors via an
// external provider. Batch results are order-preserving.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// Searcher answers nearest-neighbour queries over an embedding index.
// Search never mutates the index; results are best-first with ties
// broken by insertion order. Fewer than k records returns all of them.
type Searcher interface {
	Search(ctx context.Context, vector []float32, k int) ([]SearchResult, error)
}

// Generator produces an answer from an assembled prompt. The shown chunks
// are carried through for traceability. Implementations do not retry.
type Generator interface {
	Generate(ctx context.Context, messages []Message, shown []Chunk) (Answer, error)
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}
