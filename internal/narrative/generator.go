// Package narrative wraps the external narrative-generation service. The
// service is opaque: prompt in, story text out. Failures are classified so
// the caller can tell a rate limit from an outage.
package narrative

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/acialhadi25/my-wuxia-journey-sub001/internal/types"
)

const generateTimeout = 60 * time.Second

// Generator produces narrative text from an assembled prompt.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Client calls an OpenAI-compatible chat completion endpoint.
type Client struct {
	client *openai.Client
	model  string
}

// NewClient creates a Client. baseURL may point at any OpenAI-compatible
// provider; empty means the default endpoint.
func NewClient(apiKey, baseURL, model string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("api key is required")
	}
	if model == "" {
		return nil, errors.New("model name is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)

	return &Client{client: &client, model: model}, nil
}

func (c *Client) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
	})
	if err != nil {
		return "", classify(err)
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", types.NewError(types.KindBackendUnavailable, "generation service returned no text")
	}
	return resp.Choices[0].Message.Content, nil
}

// classify maps provider failures onto the library's error taxonomy.
func classify(err error) error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		switch {
		case apierr.StatusCode == 429 && isQuotaMessage(apierr.Message):
			return types.WrapError(types.KindQuotaExhausted, err, "generation quota exhausted")
		case apierr.StatusCode == 429:
			return types.WrapError(types.KindRateLimited, err, "generation rate limited")
		case apierr.StatusCode >= 500:
			return types.WrapError(types.KindBackendUnavailable, err, "generation service unavailable")
		}
		return types.WrapError(types.KindBackendUnavailable, err, "generation call failed with status %d", apierr.StatusCode)
	}
	return types.WrapError(types.KindBackendUnavailable, err, "generation service unreachable")
}

func isQuotaMessage(message string) bool {
	lowered := strings.ToLower(message)
	return strings.Contains(lowered, "quota") || strings.Contains(lowered, "billing")
}
