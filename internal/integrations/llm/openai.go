package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

type OpenAI struct {
	apiKey  string
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

func NewOpenAI(apiKey, baseURL string, hc *http.Client, log *zap.Logger) *OpenAI {
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return &OpenAI{apiKey: apiKey, baseURL: strings.TrimRight(baseURL, "/"), http: hc, log: log}
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float64         `json:"temperature"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

func (c *OpenAI) Complete(ctx context.Context, r Request) (Completion, error) {
	model := modelOr(r.Model, ProviderOpenAI)
	bodyBytes, err := json.Marshal(openAIRequest{
		Model: model,
		Messages: []openAIMessage{
			{Role: "system", Content: r.System},
			{Role: "user", Content: r.User},
		},
		MaxTokens:   maxTokensOr(r.MaxTokens),
		Temperature: r.Temperature,
	})
	if err != nil {
		return Completion{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return Completion{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("llm openai error", zap.Error(err))
		return Completion{}, fmt.Errorf("OpenAI API error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Completion{}, fmt.Errorf("reading response: %w", err)
	}

	var out openAIResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		if resp.StatusCode >= 300 {
			return Completion{}, fmt.Errorf("OpenAI API error: status %d", resp.StatusCode)
		}
		return Completion{}, fmt.Errorf("parsing OpenAI response: %w", err)
	}
	if out.Error != nil {
		c.log.Warn("llm openai api error", zap.Int("status", resp.StatusCode), zap.String("message", out.Error.Message))
		return Completion{}, fmt.Errorf("OpenAI API error: status %d: %s %s", resp.StatusCode, out.Error.Code, out.Error.Message)
	}
	if resp.StatusCode >= 300 {
		return Completion{}, fmt.Errorf("OpenAI API error: status %d", resp.StatusCode)
	}
	if len(out.Choices) == 0 {
		return Completion{}, fmt.Errorf("OpenAI: %w", ErrEmptyCompletion)
	}

	usage := Usage{}
	if out.Usage != nil {
		usage.InputTokens = out.Usage.PromptTokens
		usage.OutputTokens = out.Usage.CompletionTokens
	}
	text := out.Choices[0].Message.Content
	c.log.Debug("llm openai response",
		zap.String("model", model),
		zap.Int("size", len(text)),
		zap.Int64("tokens_in", usage.InputTokens),
		zap.Int64("tokens_out", usage.OutputTokens))
	return Completion{Text: text, Usage: usage, Provider: ProviderOpenAI, Model: model}, nil
}
