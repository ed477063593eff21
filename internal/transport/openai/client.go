// Package openai provides the embedding and language-model clients over any
// OpenAI-compatible API. Credentials are per workspace, so clients are cheap
// and constructed per request.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/alphadoc-ai/alphadoc/internal/domain"
	"github.com/alphadoc-ai/alphadoc/internal/metrics"
)

// Config holds the provider settings shared by all workspaces.
type Config struct {
	BaseURL        string // empty = api.openai.com
	EmbeddingModel string
	ChatModel      string
	Logger         *zap.Logger
}

// Client binds one workspace credential to the provider settings.
type Client struct {
	api       *openai.Client
	embModel  openai.EmbeddingModel
	chatModel string
	logger    *zap.Logger
}

// NewClient creates a client bound to a workspace API key.
func NewClient(cfg *Config, apiKey string) *Client {
	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		api:       openai.NewClientWithConfig(clientCfg),
		embModel:  openai.EmbeddingModel(cfg.EmbeddingModel),
		chatModel: cfg.ChatModel,
		logger:    logger,
	}
}

// EmbedBatch vectorizes texts in a single API call, order-preserving, one
// vector per input text.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	req := openai.EmbeddingRequest{
		Input:          texts,
		Model:          c.embModel,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}

	start := time.Now()
	resp, err := c.api.CreateEmbeddings(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.ModelRequestsTotal.WithLabelValues("embed", string(c.embModel), "error").Inc()
		return nil, classifyAPIError(err)
	}

	if len(resp.Data) != len(texts) {
		metrics.ModelRequestsTotal.WithLabelValues("embed", string(c.embModel), "error").Inc()
		return nil, domain.NewModelError("malformed_response",
			fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data)))
	}

	metrics.ModelRequestsTotal.WithLabelValues("embed", string(c.embModel), "success").Inc()
	metrics.ModelRequestDuration.WithLabelValues("embed", string(c.embModel)).Observe(duration.Seconds())

	vectors := make([][]float32, len(resp.Data))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(vectors) {
			return nil, domain.NewModelError("malformed_response",
				fmt.Errorf("embedding index %d out of range", d.Index))
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}

// Generate runs a chat completion and returns the plain-text answer.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.ModelRequestsTotal.WithLabelValues("chat", c.chatModel, "error").Inc()
		return "", classifyAPIError(err)
	}
	if len(resp.Choices) == 0 {
		metrics.ModelRequestsTotal.WithLabelValues("chat", c.chatModel, "error").Inc()
		return "", domain.NewModelError("malformed_response", errors.New("empty completion response"))
	}

	metrics.ModelRequestsTotal.WithLabelValues("chat", c.chatModel, "success").Inc()
	metrics.ModelRequestDuration.WithLabelValues("chat", c.chatModel).Observe(duration.Seconds())

	return resp.Choices[0].Message.Content, nil
}

// GenerateJSON runs a chat completion in JSON mode and unmarshals the result
// into out. A response that is not valid JSON for out is a malformed_response
// model error, never silently discarded.
func (c *Client) GenerateJSON(ctx context.Context, prompt string, out any) error {
	req := openai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.ModelRequestsTotal.WithLabelValues("chat_json", c.chatModel, "error").Inc()
		return classifyAPIError(err)
	}
	if len(resp.Choices) == 0 {
		metrics.ModelRequestsTotal.WithLabelValues("chat_json", c.chatModel, "error").Inc()
		return domain.NewModelError("malformed_response", errors.New("empty completion response"))
	}

	content := resp.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(content), out); err != nil {
		metrics.ModelRequestsTotal.WithLabelValues("chat_json", c.chatModel, "error").Inc()
		c.logger.Warn("model returned unparseable JSON",
			zap.String("model", c.chatModel), zap.Error(err))
		return domain.NewModelError("malformed_response", err)
	}

	metrics.ModelRequestsTotal.WithLabelValues("chat_json", c.chatModel, "success").Inc()
	metrics.ModelRequestDuration.WithLabelValues("chat_json", c.chatModel).Observe(duration.Seconds())

	return nil
}

// classifyAPIError maps provider failures onto the domain model-error taxonomy.
func classifyAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 401, 403:
			return domain.NewModelError("invalid_credential", err)
		case 429:
			return domain.NewModelError("quota_exceeded", err)
		}
		return domain.NewModelError("api_error", err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		switch reqErr.HTTPStatusCode {
		case 401, 403:
			return domain.NewModelError("invalid_credential", err)
		case 429:
			return domain.NewModelError("quota_exceeded", err)
		}
	}
	return domain.NewModelError("api_error", err)
}
