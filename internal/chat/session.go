// Package chat holds the per-session conversation engine: retrieve,
// assemble, generate, append to history.
package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"docsqa/internal/domain"
	"docsqa/internal/prompt"
	"docsqa/internal/retrieve"
)

// Options wires a session to its collaborators. OpenIndex and
// LoadTemplate run lazily on the first question so that a chat session
// can start before the index exists on disk.
type Options struct {
	Embedder     domain.Embedder
	Generator    domain.Generator
	OpenIndex    func() (domain.Searcher, error)
	LoadTemplate func() (prompt.Template, error)
	TopK         int
}

// Session answers questions for one chat session. The index handle and
// prompt template are loaded on the first question and cached for the
// session's lifetime; a successful load is never repeated, a failed one
// is retried on the next question. Questions within a session are
// serialized; sessions share nothing.
type Session struct {
	id   string
	opts Options

	mu        sync.Mutex
	ready     bool
	retriever *retrieve.Retriever
	template  prompt.Template
}

// NewSession creates a session in the uninitialized state.
func NewSession(opts Options) *Session {
	if opts.TopK < 1 {
		opts.TopK = retrieve.DefaultTopK
	}
	return &Session{id: uuid.New().String(), opts: opts}
}

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

// Answer runs one turn: normalize the question, retrieve chunks, assemble
// the prompt with prior history, generate, and append the new turn. The
// returned history is the input history with exactly one turn appended;
// callers feed it back in on the next turn. On error the input history is
// returned unchanged.
func (s *Session) Answer(ctx context.Context, question string, history []domain.Turn) (domain.Answer, []domain.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureReady(); err != nil {
		return domain.Answer{}, history, err
	}

	// Questions are lower-cased before lookup and storage, matching the
	// behaviour the corpus index was queried with historically.
	question = strings.ToLower(strings.TrimSpace(question))

	chunks, err := s.retriever.Retrieve(ctx, question, s.opts.TopK)
	if err != nil {
		return domain.Answer{}, history, err
	}

	messages := prompt.Assemble(s.template, question, chunks, history)
	answer, err := s.opts.Generator.Generate(ctx, messages, chunks)
	if err != nil {
		return domain.Answer{}, history, err
	}

	updated := append(history, domain.Turn{Question: question, Answer: answer.Text})
	return answer, updated, nil
}

// ensureReady performs the one-time lazy transition to the ready state.
// Callers must hold s.mu.
func (s *Session) ensureReady() error {
	if s.ready {
		return nil
	}
	if s.opts.OpenIndex == nil || s.opts.LoadTemplate == nil {
		return fmt.Errorf("%w: session has no index or template source", domain.ErrConfiguration)
	}
	// Template first: a template failure must not leak an opened index
	// handle across retries.
	template, err := s.opts.LoadTemplate()
	if err != nil {
		return err
	}
	index, err := s.opts.OpenIndex()
	if err != nil {
		return err
	}
	s.retriever = retrieve.New(s.opts.Embedder, index)
	s.template = template
	s.ready = true
	return nil
}
