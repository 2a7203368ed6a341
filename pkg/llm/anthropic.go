package llm

import (
	"context"
	goerrors "errors"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/finsight/finsight-go/pkg/errors"
	"github.com/finsight/finsight-go/pkg/logging"
)

// Client is a thin wrapper around the Anthropic SDK used by the planner and
// the LLM-backed tools. It exposes plain string generation only; the agent
// never needs streaming or tool-use blocks.
type Client struct {
	client *anthropic.Client
	model  anthropic.Model
}

// GenerateOptions holds the per-call generation parameters.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64
}

// GenerateOption mutates GenerateOptions.
type GenerateOption func(*GenerateOptions)

func WithMaxTokens(n int) GenerateOption {
	return func(o *GenerateOptions) {
		o.MaxTokens = n
	}
}

func WithTemperature(t float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = t
	}
}

func newGenerateOptions() *GenerateOptions {
	return &GenerateOptions{
		MaxTokens:   1024,
		Temperature: 0,
	}
}

// NewClient creates an Anthropic-backed client. An empty apiKey falls back to
// the ANTHROPIC_API_KEY environment variable.
func NewClient(apiKey, model string) (*Client, error) {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New(errors.InvalidInput, "API key is required")
	}
	if !isValidModel(model) {
		return nil, errors.WithFields(
			errors.New(errors.InvalidInput, "unsupported Anthropic model"),
			errors.Fields{"model": model})
	}

	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &Client{
		client: &client,
		model:  anthropic.Model(model),
	}, nil
}

// isValidModel checks if the model is a valid Anthropic model.
func isValidModel(model string) bool {
	validPrefixes := []string{
		"claude-3",
		"claude-4",
		"claude-haiku",
		"claude-sonnet",
		"claude-opus",
	}

	for _, prefix := range validPrefixes {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}

// ModelID returns the configured model identifier.
func (c *Client) ModelID() string {
	return string(c.model)
}

// Generate sends a single-turn prompt and returns the text completion.
func (c *Client) Generate(ctx context.Context, prompt string, options ...GenerateOption) (string, error) {
	logger := logging.GetLogger()
	opts := newGenerateOptions()
	for _, opt := range options {
		opt(opts)
	}

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model: c.model,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(prompt),
			),
		},
		MaxTokens:   int64(opts.MaxTokens),
		Temperature: anthropic.Float(opts.Temperature),
	})

	if err != nil {
		var apiErr *anthropic.Error
		if goerrors.As(err, &apiErr) {
			logger.Error(ctx, "Anthropic API error: status code %d", apiErr.StatusCode)
		}
		return "", errors.WithFields(
			errors.Wrap(err, errors.LLMGenerationFailed, "failed to generate response"),
			errors.Fields{
				"model":      string(c.model),
				"max_tokens": opts.MaxTokens,
			})
	}

	if message == nil || len(message.Content) == 0 {
		return "", errors.New(errors.LLMGenerationFailed, "received empty content from Anthropic API")
	}

	var responseText string
	if block := message.Content[0]; block.Type == "text" {
		responseText = block.Text
	}

	logger.PromptCompletion(ctx, prompt, responseText, &logging.TokenInfo{
		PromptTokens:     int(message.Usage.InputTokens),
		CompletionTokens: int(message.Usage.OutputTokens),
		TotalTokens:      int(message.Usage.InputTokens + message.Usage.OutputTokens),
	})

	return responseText, nil
}
