package chunker

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"docsqa/internal/domain"
)

// DefaultChunkSize is the default chunk bound in tokens.
const DefaultChunkSize = 500

// encodingName is the tiktoken encoding used to measure chunk sizes.
const encodingName = "cl100k_base"

// MarkdownChunker splits markdown documents along block boundaries so that
// no chunk exceeds a token bound. A document at or under the bound yields
// exactly one chunk. Splitting never breaks a word; consecutive chunks do
// not overlap. Chunking is deterministic for a given document and bound.
type MarkdownChunker struct {
	chunkSize int
	encoding  *tiktoken.Tiktoken
}

// NewMarkdownChunker creates a chunker with the given token bound.
func NewMarkdownChunker(chunkSize int) (*MarkdownChunker, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("loading %s encoding: %w", encodingName, err)
	}
	return &MarkdownChunker{chunkSize: chunkSize, encoding: encoding}, nil
}

// ChunkSize returns the configured token bound.
func (c *MarkdownChunker) ChunkSize() int { return c.chunkSize }

// CountTokens returns the token count of text under the chunker's encoding.
func (c *MarkdownChunker) CountTokens(text string) int {
	return len(c.encoding.Encode(text, nil, nil))
}

// Chunk splits one document into bounded chunks, ordered by position.
func (c *MarkdownChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	content := strings.TrimSpace(document.Content)
	if content == "" {
		return nil, nil
	}

	b := builder{chunker: c, document: document}
	if c.CountTokens(content) <= c.chunkSize {
		// The whole document fits in one chunk.
		b.emit(content)
		return b.chunks, nil
	}

	for _, block := range splitBlocks(content) {
		b.add(block, "\n\n")
	}
	b.flush()
	return b.chunks, nil
}

// builder accumulates text into chunks, flushing whenever appending the
// next piece would exceed the bound.
type builder struct {
	chunker  *MarkdownChunker
	document domain.Document
	current  string
	chunks   []domain.Chunk
}

func (b *builder) add(piece, sep string) {
	candidate := piece
	if b.current != "" {
		candidate = b.current + sep + piece
	}
	if b.chunker.CountTokens(candidate) <= b.chunker.chunkSize {
		b.current = candidate
		return
	}
	b.flush()
	if b.chunker.CountTokens(piece) <= b.chunker.chunkSize {
		b.current = piece
		return
	}
	b.splitOversize(piece)
}

// splitOversize breaks a piece that alone exceeds the bound, first on line
// boundaries, then on words. A single word over the bound becomes its own
// chunk: mid-word splits are never produced.
func (b *builder) splitOversize(piece string) {
	lines := strings.Split(piece, "\n")
	if len(lines) > 1 {
		for _, line := range lines {
			line = strings.TrimRight(line, " \t")
			if line == "" {
				continue
			}
			b.add(line, "\n")
		}
		return
	}
	for _, word := range strings.Fields(piece) {
		candidate := word
		if b.current != "" {
			candidate = b.current + " " + word
		}
		if b.chunker.CountTokens(candidate) <= b.chunker.chunkSize {
			b.current = candidate
			continue
		}
		b.flush()
		// A lone word over the bound still becomes one chunk rather
		// than being split mid-word.
		b.current = word
	}
}

func (b *builder) flush() {
	if b.current == "" {
		return
	}
	b.emit(b.current)
	b.current = ""
}

func (b *builder) emit(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	position := len(b.chunks)
	b.chunks = append(b.chunks, domain.Chunk{
		ID:         b.document.ID + ":" + strconv.Itoa(position),
		DocumentID: b.document.ID,
		Source:     b.document.Path,
		Text:       text,
		Position:   position,
	})
}

// splitBlocks cuts markdown into blocks at blank lines, keeping fenced code
// blocks whole even when they contain blank lines.
func splitBlocks(content string) []string {
	var blocks []string
	var current []string
	inFence := false
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
		}
		if trimmed == "" && !inFence {
			if len(current) > 0 {
				blocks = append(blocks, strings.Join(current, "\n"))
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		blocks = append(blocks, strings.Join(current, "\n"))
	}
	return blocks
}

var _ domain.Chunker = (*MarkdownChunker)(nil)
