// Package ingest builds the persisted vector index from a directory of
// markdown documents: load, chunk, embed, build. Re-running replaces the
// previous index content; ingestion is not incremental.
package ingest

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"docsqa/internal/domain"
)

// docExtension is the fixed extension filter for source documents.
const docExtension = ".md"

// Builder persists a fresh record set at a location, replacing any prior
// content there.
type Builder interface {
	Build(ctx context.Context, dir string, records []domain.Record) error
}

// Stats describes one completed ingestion run.
type Stats struct {
	Documents int
	Chunks    int
	Summary   string
	Elapsed   time.Duration
}

// Pipeline composes the chunker, embedder and index builder.
type Pipeline struct {
	chunker    domain.Chunker
	embedder   domain.Embedder
	builder    Builder
	summarizer domain.Summarizer
	summaryLen int
}

// Option configures the pipeline.
type Option func(*Pipeline)

// WithSummarizer attaches a corpus summarizer; its output lands in
// Stats.Summary for operator display.
func WithSummarizer(s domain.Summarizer, maxSentences int) Option {
	return func(p *Pipeline) {
		p.summarizer = s
		p.summaryLen = maxSentences
	}
}

// New creates an ingestion pipeline.
func New(chunker domain.Chunker, embedder domain.Embedder, builder Builder, opts ...Option) *Pipeline {
	p := &Pipeline{chunker: chunker, embedder: embedder, builder: builder}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run ingests every markdown document directly under docsDir and builds
// the index at indexDir. It fails fast with domain.ErrNoDocuments when
// the directory yields nothing.
func (p *Pipeline) Run(ctx context.Context, docsDir, indexDir string) (*Stats, error) {
	start := time.Now()

	docs, err := LoadDocuments(docsDir)
	if err != nil {
		return nil, err
	}
	slog.Info("loaded documents", "dir", docsDir, "count", len(docs))

	var chunks []domain.Chunk
	for _, doc := range docs {
		docChunks, err := p.chunker.Chunk(doc)
		if err != nil {
			return nil, fmt.Errorf("chunking %s: %w", doc.Path, err)
		}
		chunks = append(chunks, docChunks...)
	}
	slog.Info("chunked documents", "chunks", len(chunks))

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}
	slog.Info("embedded chunks", "vectors", len(vectors))

	records := make([]domain.Record, len(chunks))
	for i := range chunks {
		records[i] = domain.Record{Chunk: chunks[i], Vector: vectors[i]}
	}
	if err := p.builder.Build(ctx, indexDir, records); err != nil {
		return nil, fmt.Errorf("building index at %s: %w", indexDir, err)
	}
	slog.Info("built index", "dir", indexDir, "records", len(records))

	stats := &Stats{Documents: len(docs), Chunks: len(chunks), Elapsed: time.Since(start)}
	if p.summarizer != nil {
		var corpus strings.Builder
		for _, doc := range docs {
			corpus.WriteString(doc.Content)
			corpus.WriteString("\n")
		}
		summary, err := p.summarizer.Summarize(corpus.String(), p.summaryLen)
		if err != nil {
			slog.Warn("corpus summary failed", "error", err)
		} else {
			stats.Summary = summary
		}
	}
	return stats, nil
}

// LoadDocuments reads every *.md file directly under dir (non-recursive),
// in lexical order. Zero documents is domain.ErrNoDocuments; an unreadable
// or non-UTF-8 file is domain.ErrMalformedDocument.
func LoadDocuments(dir string) ([]domain.Document, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+docExtension))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	sort.Strings(matches)

	var docs []domain.Document
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrMalformedDocument, path, err)
		}
		if !utf8.Valid(data) {
			return nil, fmt.Errorf("%w: %s is not valid UTF-8", domain.ErrMalformedDocument, path)
		}
		docs = append(docs, domain.Document{
			ID:      hashPath(path),
			Path:    path,
			Content: string(data),
		})
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: no %s files under %s", domain.ErrNoDocuments, docExtension, dir)
	}
	return docs, nil
}

func hashPath(path string) string {
	sum := sha1.Sum([]byte(path))
	return hex.EncodeToString(sum[:8])
}
