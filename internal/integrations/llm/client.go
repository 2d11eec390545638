// Package llm is the completion boundary. Each provider turns a Request into
// the model's raw text; nothing here interprets that text.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderMock      = "mock"
)

const (
	defaultOpenAIModel    = "gpt-4.1"
	defaultAnthropicModel = "claude-sonnet-4-5-20250929"
	defaultGeminiModel    = "gemini-2.5-flash"
	defaultMaxTokens      = 4000
)

var (
	ErrUnsupportedProvider = errors.New("unsupported llm provider")
	ErrEmptyCompletion     = errors.New("no text content in completion")
)

// Request is one completion call.
type Request struct {
	Model       string
	System      string
	User        string
	MaxTokens   int
	Temperature float64
}

type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

func (u Usage) TotalTokens() int64 {
	return u.InputTokens + u.OutputTokens
}

func (u *Usage) Add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

// Completion is the raw text a provider returned.
type Completion struct {
	Text     string
	Usage    Usage
	Provider string
	Model    string
}

type Client interface {
	Complete(ctx context.Context, req Request) (Completion, error)
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return defaultOpenAIModel
	case ProviderAnthropic:
		return defaultAnthropicModel
	case ProviderGemini:
		return defaultGeminiModel
	case ProviderMock:
		return "mock"
	default:
		return ""
	}
}

// Options configures New.
type Options struct {
	Provider      string
	APIKey        string
	BaseURL       string
	HTTPClient    *http.Client
	Logger        *zap.Logger
	Timeout       time.Duration
	RetryAttempts int
	RetryBackoff  time.Duration
}

// New builds the provider client and wraps it with per-attempt timeouts and
// retries of rate-limit and transient errors.
func New(ctx context.Context, opts Options) (Client, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}

	var base Client
	switch strings.ToLower(strings.TrimSpace(opts.Provider)) {
	case ProviderOpenAI:
		base = NewOpenAI(opts.APIKey, opts.BaseURL, hc, log)
	case ProviderAnthropic:
		base = NewAnthropic(opts.APIKey, opts.BaseURL, hc, log)
	case ProviderGemini:
		g, err := NewGemini(ctx, opts.APIKey, opts.BaseURL, hc, log)
		if err != nil {
			return nil, err
		}
		base = g
	case ProviderMock:
		base = &Mock{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, opts.Provider)
	}
	return &Retrying{
		Next:     base,
		Attempts: opts.RetryAttempts,
		Backoff:  opts.RetryBackoff,
		Timeout:  opts.Timeout,
		Logger:   log,
	}, nil
}

func modelOr(model, provider string) string {
	if strings.TrimSpace(model) == "" {
		return DefaultModel(provider)
	}
	return model
}

func maxTokensOr(n int) int {
	if n <= 0 {
		return defaultMaxTokens
	}
	return n
}
