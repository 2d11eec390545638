package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"
)

type Anthropic struct {
	client anthropic.Client
	log    *zap.Logger
}

// NewAnthropic builds an SDK client. SDK retries are disabled so that
// Retrying alone decides when to try again.
func NewAnthropic(apiKey, baseURL string, hc *http.Client, log *zap.Logger) *Anthropic {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(hc),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Anthropic{client: anthropic.NewClient(opts...), log: log}
}

func (c *Anthropic) Complete(ctx context.Context, r Request) (Completion, error) {
	model := modelOr(r.Model, ProviderAnthropic)
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   int64(maxTokensOr(r.MaxTokens)),
		Temperature: anthropic.Float(r.Temperature),
		System: []anthropic.TextBlockParam{
			{Text: r.System},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(r.User)),
		},
	})
	if err != nil {
		c.log.Warn("llm anthropic error", zap.Error(err))
		return Completion{}, fmt.Errorf("Anthropic API error: %w", err)
	}
	usage := Usage{
		InputTokens:  message.Usage.InputTokens,
		OutputTokens: message.Usage.OutputTokens,
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			c.log.Debug("llm anthropic response",
				zap.String("model", model),
				zap.Int("size", len(block.Text)),
				zap.Int64("tokens_in", usage.InputTokens),
				zap.Int64("tokens_out", usage.OutputTokens))
			return Completion{Text: block.Text, Usage: usage, Provider: ProviderAnthropic, Model: model}, nil
		}
	}
	return Completion{}, fmt.Errorf("Anthropic: %w", ErrEmptyCompletion)
}
