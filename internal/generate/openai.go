// Package generate implements the answer generator against the OpenAI
// chat completions API. Sampling favours determinism (low temperature).
// The generator performs no retries; provider failures surface as
// domain.ProviderError for the caller to handle.
package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"docsqa/internal/domain"
)

const (
	// DefaultModel is the generation model used when none is configured.
	DefaultModel = "gpt-3.5-turbo"

	// DefaultTemperature keeps answers close to deterministic.
	DefaultTemperature = 0.1

	// DefaultTimeout bounds each completion call.
	DefaultTimeout = 60 * time.Second
)

// Config configures the generation client. A nil Temperature means the
// default; an explicit zero is honoured.
type Config struct {
	APIKey      string
	Model       string
	Temperature *float64
	MaxTokens   int
	Timeout     time.Duration
}

// Client calls the OpenAI chat completions endpoint.
type Client struct {
	client      openai.Client
	model       string
	temperature float64
	maxTokens   int
	timeout     time.Duration
}

// NewClient creates a generation client. A missing API key fails here,
// before any network call is attempted.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: OpenAI API key not set", domain.ErrConfiguration)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	temperature := DefaultTemperature
	if cfg.Temperature != nil {
		if *cfg.Temperature < 0 {
			return nil, fmt.Errorf("%w: temperature %v is negative", domain.ErrConfiguration, *cfg.Temperature)
		}
		temperature = *cfg.Temperature
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		client:      openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:       cfg.Model,
		temperature: temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
	}, nil
}

// Generate runs one completion over the assembled prompt and returns the
// answer text together with the chunks the model was shown.
func (c *Client) Generate(ctx context.Context, messages []domain.Message, shown []domain.Chunk) (domain.Answer, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(c.model),
		Messages:    toParams(messages),
		Temperature: openai.Float(c.temperature),
	}
	if c.maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(c.maxTokens))
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return domain.Answer{}, &domain.ProviderError{Service: domain.ServiceGeneration, Kind: classify(err), Err: err}
	}
	if len(completion.Choices) == 0 {
		return domain.Answer{}, &domain.ProviderError{
			Service: domain.ServiceGeneration,
			Kind:    domain.KindUnavailable,
			Err:     errors.New("no completion choices returned"),
		}
	}

	return domain.Answer{
		Text:    strings.TrimSpace(completion.Choices[0].Message.Content),
		Sources: shown,
	}, nil
}

func toParams(messages []domain.Message) []openai.ChatCompletionMessageParamUnion {
	params := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case domain.RoleSystem:
			params = append(params, openai.SystemMessage(msg.Content))
		case domain.RoleAssistant:
			params = append(params, openai.AssistantMessage(msg.Content))
		default:
			params = append(params, openai.UserMessage(msg.Content))
		}
	}
	return params
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

var _ domain.Generator = (*Client)(nil)
