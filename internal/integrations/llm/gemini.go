package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

type Gemini struct {
	client *genai.Client
	log    *zap.Logger
}

func NewGemini(ctx context.Context, apiKey, baseURL string, hc *http.Client, log *zap.Logger) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: hc,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Gemini{client: client, log: log}, nil
}

func (c *Gemini) Complete(ctx context.Context, r Request) (Completion, error) {
	model := modelOr(r.Model, ProviderGemini)
	resp, err := c.client.Models.GenerateContent(ctx, model, genai.Text(r.User), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(r.System, genai.RoleUser),
		Temperature:       genai.Ptr(float32(r.Temperature)),
		MaxOutputTokens:   int32(maxTokensOr(r.MaxTokens)),
	})
	if err != nil {
		c.log.Warn("llm gemini error", zap.Error(err))
		return Completion{}, fmt.Errorf("Gemini API error: %w", err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return Completion{}, fmt.Errorf("Gemini: %w", ErrEmptyCompletion)
	}
	usage := Usage{}
	if resp.UsageMetadata != nil {
		usage.InputTokens = int64(resp.UsageMetadata.PromptTokenCount)
		usage.OutputTokens = int64(resp.UsageMetadata.CandidatesTokenCount)
	}
	c.log.Debug("llm gemini response",
		zap.String("model", model),
		zap.Int("size", len(text)),
		zap.Int64("tokens_in", usage.InputTokens),
		zap.Int64("tokens_out", usage.OutputTokens))
	return Completion{Text: text, Usage: usage, Provider: ProviderGemini, Model: model}, nil
}
