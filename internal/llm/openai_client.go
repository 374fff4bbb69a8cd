// ABOUTME: OpenAI client for recipe embeddings and tool-calling chat completions
// ABOUTME: Uses text-embedding-3-small for embeddings, gpt-4o-mini for the agent (configurable)
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harper/sous/internal/config"
	"github.com/harper/sous/internal/models"
	"github.com/harper/sous/internal/util"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

const (
	// DefaultChatModel is the default model for chat completions
	DefaultChatModel = "gpt-4o-mini"
	// DefaultEmbeddingModel is the default model for embeddings
	DefaultEmbeddingModel = openai.SmallEmbedding3
)

// ClientConfig holds configuration for the OpenAI client
type ClientConfig struct {
	APIKey            string
	BaseURL           string
	ChatModel         string
	EmbeddingModel    openai.EmbeddingModel
	Temperature       float32
	Timeout           time.Duration
	MaxRetries        int
	RetryDelay        time.Duration
	RequestsPerSecond float64
	Burst             int
}

// DefaultConfig returns the default client configuration
func DefaultConfig(apiKey string) *ClientConfig {
	return &ClientConfig{
		APIKey:            apiKey,
		ChatModel:         DefaultChatModel,
		EmbeddingModel:    DefaultEmbeddingModel,
		Temperature:       0.4,
		Timeout:           30 * time.Second,
		MaxRetries:        2,
		RetryDelay:        time.Second,
		RequestsPerSecond: 5,
		Burst:             5,
	}
}

// ConfigFrom builds a client configuration from application settings
func ConfigFrom(cfg *config.Config) *ClientConfig {
	cc := DefaultConfig(cfg.OpenAIKey)
	cc.BaseURL = cfg.OpenAIBaseURL
	cc.ChatModel = cfg.ChatModel
	cc.EmbeddingModel = openai.EmbeddingModel(cfg.EmbeddingModel)
	cc.Timeout = cfg.Timeout
	cc.MaxRetries = cfg.MaxRetries
	cc.RetryDelay = cfg.RetryDelay
	cc.RequestsPerSecond = cfg.RequestsPerSecond
	return cc
}

// OpenAIClient wraps the OpenAI API client with timeouts, pacing and retries
type OpenAIClient struct {
	client         *openai.Client
	chatModel      string
	embeddingModel openai.EmbeddingModel
	temperature    float32
	timeout        time.Duration
	maxRetries     int
	retryDelay     time.Duration
	limiter        *rate.Limiter
}

// NewOpenAIClient creates a new OpenAI client with the given API key using default configuration
func NewOpenAIClient(apiKey string) (*OpenAIClient, error) {
	return NewOpenAIClientWithConfig(DefaultConfig(apiKey))
}

// NewOpenAIClientWithConfig creates a new OpenAI client with custom configuration
func NewOpenAIClientWithConfig(cfg *ClientConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	oaiConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oaiConfig.BaseURL = cfg.BaseURL
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &OpenAIClient{
		client:         openai.NewClientWithConfig(oaiConfig),
		chatModel:      cfg.ChatModel,
		embeddingModel: cfg.EmbeddingModel,
		temperature:    cfg.Temperature,
		timeout:        timeout,
		maxRetries:     cfg.MaxRetries,
		retryDelay:     cfg.RetryDelay,
		limiter:        rate.NewLimiter(limit, burst),
	}, nil
}

// GetClient returns the underlying OpenAI client for direct use
func (c *OpenAIClient) GetClient() *openai.Client {
	return c.client
}

// GenerateEmbedding embeds text. Failures are wrapped in ErrEmbeddingUnavailable
// or ErrEmbeddingQuotaExceeded.
func (c *OpenAIClient) GenerateEmbedding(ctx context.Context, text string) ([]float64, error) {
	var embedding []float64

	err := c.withRetry(ctx, func(ctx context.Context) error {
		resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
			Input: []string{text},
			Model: c.embeddingModel,
		})
		if err != nil {
			return err
		}

		if len(resp.Data) == 0 {
			return fmt.Errorf("no embeddings returned")
		}

		// Convert []float32 to []float64
		embedding32 := resp.Data[0].Embedding
		embedding = make([]float64, len(embedding32))
		for i, v := range embedding32 {
			embedding[i] = float64(v)
		}
		return nil
	})
	if err != nil {
		return nil, classify(err, ErrEmbeddingUnavailable, ErrEmbeddingQuotaExceeded)
	}

	return embedding, nil
}

// Complete sends the transcript and tool declarations to the chat model and
// returns the assistant reply. Failures are wrapped in ErrCompletionUnavailable
// or ErrCompletionQuotaExceeded.
func (c *OpenAIClient) Complete(ctx context.Context, messages []models.Message, tools []models.ToolDefinition) (models.Message, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.chatModel,
		Messages:    toOpenAIMessages(messages),
		Temperature: c.temperature,
	}
	if len(tools) > 0 {
		req.Tools = toOpenAITools(tools)
	}

	var reply models.Message

	err := c.withRetry(ctx, func(ctx context.Context) error {
		resp, err := c.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return err
		}

		if len(resp.Choices) == 0 {
			return fmt.Errorf("no completion choices returned")
		}

		reply = fromOpenAIMessage(resp.Choices[0].Message)
		return nil
	})
	if err != nil {
		return models.Message{}, classify(err, ErrCompletionUnavailable, ErrCompletionQuotaExceeded)
	}

	return reply, nil
}

// withRetry runs call with a per-attempt timeout, waiting on the rate limiter
// before each attempt and backing off between attempts. Quota errors and
// caller cancellation stop retries immediately.
func (c *OpenAIClient) withRetry(ctx context.Context, call func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := util.SleepBackoff(ctx, c.retryDelay, attempt); err != nil {
				return fmt.Errorf("attempt %d: %w (last error: %v)", attempt+1, err, lastErr)
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("attempt %d: rate limiter: %w", attempt+1, err)
		}

		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err := call(attemptCtx)
		cancel()

		if err == nil {
			return nil
		}

		lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
		if isPermanent(err) || ctx.Err() != nil {
			return lastErr
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

func toOpenAIMessages(messages []models.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		msg := openai.ChatCompletionMessage{
			Role:       string(m.Role),
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
		out = append(out, msg)
	}
	return out
}

func toOpenAITools(tools []models.ToolDefinition) []openai.Tool {
	out := make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return out
}

func fromOpenAIMessage(msg openai.ChatCompletionMessage) models.Message {
	out := models.Message{
		Role:    models.RoleAssistant,
		Content: msg.Content,
	}
	for _, tc := range msg.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, models.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return out
}

// IsUnavailable reports whether err came from an unreachable or misconfigured provider
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrEmbeddingUnavailable) || errors.Is(err, ErrCompletionUnavailable)
}

// IsQuotaExceeded reports whether err came from a quota rejection
func IsQuotaExceeded(err error) bool {
	return errors.Is(err, ErrEmbeddingQuotaExceeded) || errors.Is(err, ErrCompletionQuotaExceeded)
}
