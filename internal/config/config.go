package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"qcl/internal/httpx"
	"qcl/internal/integrations/llm"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config.yaml"

const (
	defaultChunkOverlap = 400
	// overlapUnset marks a chunk_overlap nobody set; it resolves against
	// the final chunk_size.
	overlapUnset = math.MinInt
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	LLMProvider       string  `yaml:"llm_provider"`
	LLMModel          string  `yaml:"llm_model"`
	LLMMaxTokens      int     `yaml:"llm_max_tokens"`
	LLMTemperature    float64 `yaml:"llm_temperature"`
	LLMTimeoutSeconds int     `yaml:"llm_timeout_seconds"`
	LLMBaseURL        string  `yaml:"llm_base_url"`
	OpenAIAPIKey      string  `yaml:"openai_api_key"`
	AnthropicAPIKey   string  `yaml:"anthropic_api_key"`
	GeminiAPIKey      string  `yaml:"gemini_api_key"`

	BatchSize          int `yaml:"batch_size"`
	MaxQueries         int `yaml:"max_queries"`
	ChunkSize          int `yaml:"chunk_size"`
	ChunkOverlap       int `yaml:"chunk_overlap"`
	RequestsPerMinute  int `yaml:"requests_per_minute"`
	ConcurrentRequests int `yaml:"concurrent_requests"`
	RetryAttempts      int `yaml:"retry_attempts"` // total tries per call; 0 and 1 both mean one

	OutputDir          string `yaml:"output_dir"`
	PromptTemplatePath string `yaml:"prompt_template_path"`
	LogLevel           string `yaml:"log_level"`

	SlackBotToken  string `yaml:"slack_bot_token"`
	SlackChannelID string `yaml:"slack_channel_id"`
	Schedule       string `yaml:"schedule"`
	Timezone       string `yaml:"timezone"`

	Location *time.Location `yaml:"-"` // computed from Timezone, not from YAML
}

// LoadConfig is Read followed by Validate.
func LoadConfig(path string) (Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Read loads .env, then the YAML file at path, then environment overrides,
// then fills defaults. An empty path means CONFIG_PATH or config.yaml; a
// missing file is not an error. Commands that never call a provider use Read
// directly so they work without an API key.
//
// Numeric defaults are in place before YAML and env are applied, so an
// explicit 0 is kept and left to Validate. An unset chunk_overlap becomes
// min(400, chunk_size/2).
func Read(path string) (Config, error) {
	cfg := defaults()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	if path == "" {
		path = DefaultPath
		if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
			path = envPath
		}
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	applyDefaults(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	envOverride(&cfg.LLMProvider, "LLM_PROVIDER")
	envOverride(&cfg.LLMModel, "LLM_MODEL")
	envOverride(&cfg.LLMBaseURL, "LLM_BASE_URL")
	envOverride(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.GeminiAPIKey, "GEMINI_API_KEY")
	envOverride(&cfg.OutputDir, "OUTPUT_DIR")
	envOverride(&cfg.PromptTemplatePath, "PROMPT_TEMPLATE_PATH")
	envOverride(&cfg.LogLevel, "LOG_LEVEL")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.SlackChannelID, "SLACK_CHANNEL_ID")
	envOverride(&cfg.Schedule, "QCL_SCHEDULE")
	envOverride(&cfg.Timezone, "TIMEZONE")

	ints := []struct {
		field *int
		key   string
	}{
		{&cfg.LLMMaxTokens, "LLM_MAX_TOKENS"},
		{&cfg.LLMTimeoutSeconds, "LLM_TIMEOUT_SECONDS"},
		{&cfg.BatchSize, "BATCH_SIZE"},
		{&cfg.MaxQueries, "MAX_QUERIES"},
		{&cfg.ChunkSize, "CHUNK_SIZE"},
		{&cfg.ChunkOverlap, "CHUNK_OVERLAP"},
		{&cfg.RequestsPerMinute, "REQUESTS_PER_MINUTE"},
		{&cfg.ConcurrentRequests, "CONCURRENT_REQUESTS"},
		{&cfg.RetryAttempts, "RETRY_ATTEMPTS"},
	}
	for _, o := range ints {
		if err := envOverrideInt(o.field, o.key); err != nil {
			return err
		}
	}
	return envOverrideFloat(&cfg.LLMTemperature, "LLM_TEMPERATURE")
}

func defaults() Config {
	return Config{
		LLMMaxTokens:       4000,
		LLMTemperature:     0.1,
		LLMTimeoutSeconds:  int(httpx.DefaultTimeout / time.Second),
		BatchSize:          10,
		ChunkSize:          800,
		ChunkOverlap:       overlapUnset,
		RequestsPerMinute:  50,
		ConcurrentRequests: 1,
		RetryAttempts:      3,
	}
}

// applyDefaults fills what depends on other fields or is empty text.
func applyDefaults(cfg *Config) {
	if cfg.LLMProvider == "" {
		cfg.LLMProvider = llm.ProviderOpenAI
	}
	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	if cfg.LLMModel == "" {
		cfg.LLMModel = llm.DefaultModel(cfg.LLMProvider)
	}
	if cfg.ChunkOverlap == overlapUnset {
		cfg.ChunkOverlap = max(min(defaultChunkOverlap, cfg.ChunkSize/2), 0)
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "data/output"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}
}

// Validate checks ranges and cross-field rules and resolves Location.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case llm.ProviderOpenAI, llm.ProviderAnthropic, llm.ProviderGemini, llm.ProviderMock:
	default:
		return fmt.Errorf("%w: llm_provider must be one of openai, anthropic, gemini, mock, got %q", ErrInvalid, c.LLMProvider)
	}
	if c.LLMProvider != llm.ProviderMock && c.APIKey() == "" {
		return fmt.Errorf("%w: %s_api_key is required when llm_provider=%s", ErrInvalid, c.LLMProvider, c.LLMProvider)
	}
	if c.ChunkSize < 1 {
		return fmt.Errorf("%w: chunk_size %d must be >= 1", ErrInvalid, c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: chunk_overlap %d must be in [0, chunk_size)", ErrInvalid, c.ChunkOverlap)
	}
	if c.RequestsPerMinute < 1 {
		return fmt.Errorf("%w: requests_per_minute %d must be >= 1", ErrInvalid, c.RequestsPerMinute)
	}
	if c.ConcurrentRequests < 1 {
		return fmt.Errorf("%w: concurrent_requests %d must be >= 1", ErrInvalid, c.ConcurrentRequests)
	}
	if c.LLMTemperature < 0 || c.LLMTemperature > 2 {
		return fmt.Errorf("%w: llm_temperature %g must be between 0 and 2", ErrInvalid, c.LLMTemperature)
	}
	if c.LLMMaxTokens < 1 {
		return fmt.Errorf("%w: llm_max_tokens %d must be >= 1", ErrInvalid, c.LLMMaxTokens)
	}
	if c.LLMTimeoutSeconds < 5 {
		return fmt.Errorf("%w: llm_timeout_seconds %d must be >= 5", ErrInvalid, c.LLMTimeoutSeconds)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("%w: batch_size %d must be >= 1", ErrInvalid, c.BatchSize)
	}
	if c.MaxQueries < 0 {
		return fmt.Errorf("%w: max_queries %d must be >= 0", ErrInvalid, c.MaxQueries)
	}
	if c.RetryAttempts < 0 {
		return fmt.Errorf("%w: retry_attempts %d must be >= 0", ErrInvalid, c.RetryAttempts)
	}

	if strings.EqualFold(c.Timezone, "Local") {
		c.Location = time.Local
	} else {
		loc, err := time.LoadLocation(c.Timezone)
		if err != nil {
			return fmt.Errorf("%w: timezone %q: %v", ErrInvalid, c.Timezone, err)
		}
		c.Location = loc
	}
	return nil
}

// APIKey returns the key of the selected provider.
func (c Config) APIKey() string {
	switch c.LLMProvider {
	case llm.ProviderOpenAI:
		return c.OpenAIAPIKey
	case llm.ProviderAnthropic:
		return c.AnthropicAPIKey
	case llm.ProviderGemini:
		return c.GeminiAPIKey
	}
	return ""
}

func (c Config) SlackConfigured() bool {
	return c.SlackBotToken != "" && c.SlackChannelID != ""
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("%w: %s %q: %v", ErrInvalid, envKey, val, err)
		}
		*field = parsed
	}
	return nil
}

func envOverrideFloat(field *float64, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("%w: %s %q: %v", ErrInvalid, envKey, val, err)
		}
		*field = parsed
	}
	return nil
}
