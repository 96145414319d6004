package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration indicates missing or invalid configuration, such as
	// an absent API key or an unreadable prompt template file.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrNoDocuments indicates the source directory yielded zero documents.
	ErrNoDocuments = errors.New("no documents found")

	// ErrIndexNotFound indicates a query against a location that holds no
	// valid persisted index.
	ErrIndexNotFound = errors.New("vector index not found")

	// ErrMalformedDocument indicates a source file could not be parsed.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrEmbeddingProvider matches any embedding service failure.
	ErrEmbeddingProvider = errors.New("embedding provider failure")

	// ErrGenerationProvider matches any generation service failure.
	ErrGenerationProvider = errors.New("generation provider failure")
)

// Provider services.
const (
	ServiceEmbedding  = "embedding"
	ServiceGeneration = "generation"
)

// Provider failure kinds.
const (
	KindAuth          = "auth"
	KindRateLimit     = "rate_limit"
	KindContextLength = "context_length"
	KindUnavailable   = "unavailable"
)

// ProviderError wraps a failure from an external model service with
// enough detail for the caller to distinguish auth, rate-limit and
// context-length conditions. The core never retries these.
type ProviderError struct {
	Service string
	Kind    string
	Err     error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider: %s: %v", e.Service, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Is lets errors.Is match a ProviderError against the per-service
// sentinel errors.
func (e *ProviderError) Is(target error) bool {
	switch target {
	case ErrEmbeddingProvider:
		return e.Service == ServiceEmbedding
	case ErrGenerationProvider:
		return e.Service == ServiceGeneration
	}
	return false
}
