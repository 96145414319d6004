// Package openai implements the embedder against the OpenAI embeddings
// API. Requests are batched; results are order-preserving. Provider
// failures surface as domain.ProviderError without any retry here.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"docsqa/internal/domain"
)

const (
	// DefaultModel is the embedding model used when none is configured.
	DefaultModel = "text-embedding-3-small"

	// DefaultDimension matches the default model's output size.
	DefaultDimension = 1536

	// DefaultTimeout bounds each embeddings API call.
	DefaultTimeout = 30 * time.Second

	// DefaultBatchSize is the API maximum of inputs per request.
	DefaultBatchSize = 100
)

// Config configures the embeddings client.
type Config struct {
	APIKey    string
	Model     string
	Dimension int
	Timeout   time.Duration
	BatchSize int
}

// Client calls the OpenAI embeddings endpoint.
type Client struct {
	client    openai.Client
	model     string
	dimension int
	timeout   time.Duration
	batchSize int
}

// NewClient creates an embeddings client. A missing API key fails here,
// before any network call is attempted.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: OpenAI API key not set", domain.ErrConfiguration)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Dimension <= 0 {
		cfg.Dimension = DefaultDimension
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.BatchSize <= 0 || cfg.BatchSize > DefaultBatchSize {
		cfg.BatchSize = DefaultBatchSize
	}
	return &Client{
		client:    openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:     cfg.Model,
		dimension: cfg.Dimension,
		timeout:   cfg.Timeout,
		batchSize: cfg.BatchSize,
	}, nil
}

// Dimension returns the configured vector dimension.
func (c *Client) Dimension() int { return c.dimension }

// Embed returns the embedding vector for a single text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds texts in API-sized batches, preserving input order.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += c.batchSize {
		end := start + c.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := c.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

func (c *Client) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(c.model),
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
	}
	if c.dimension > 0 {
		params.Dimensions = openai.Int(int64(c.dimension))
	}

	resp, err := c.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, &domain.ProviderError{Service: domain.ServiceEmbedding, Kind: classify(err), Err: err}
	}
	if len(resp.Data) != len(texts) {
		return nil, &domain.ProviderError{
			Service: domain.ServiceEmbedding,
			Kind:    domain.KindUnavailable,
			Err:     fmt.Errorf("got %d embeddings for %d inputs", len(resp.Data), len(texts)),
		}
	}

	vectors := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		vector := make([]float32, len(data.Embedding))
		for j, v := range data.Embedding {
			vector[j] = float32(v)
		}
		vectors[i] = vector
	}
	return vectors, nil
}

// classify maps an API error onto the provider failure taxonomy.
func classify(err error) string {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == 401 || apiErr.StatusCode == 403:
			return domain.KindAuth
		case apiErr.StatusCode == 429:
			return domain.KindRateLimit
		case strings.Contains(apiErr.Code, "context_length"):
			return domain.KindContextLength
		}
	}
	return domain.KindUnavailable
}

var _ domain.Embedder = (*Client)(nil)
