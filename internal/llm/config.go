package llm

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderMock      = "mock"
)

// defaultModels is the model used when DRILLZ_LLM_MODEL is unset.
var defaultModels = map[string]string{
	ProviderAnthropic: "claude-haiku-4-5",
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderGemini:    "gemini-2.0-flash",
	ProviderMock:      "mock",
}

// Config selects and configures one provider.
type Config struct {
	Provider string
	Model    string
	APIKey   string
	// BaseURL points the OpenAI provider at a compatible API such as
	// OpenRouter, or any provider at a test server.
	BaseURL string

	Retry RetryConfig
	// Timeout bounds one Generate call including retries.
	Timeout time.Duration
}

// RetryConfig is exponential backoff with jitter.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig is the anthropic provider with three attempts.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderAnthropic,
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
		Timeout: 60 * time.Second,
	}
}

// ConfigFromEnv reads DRILLZ_LLM_* variables. Without DRILLZ_LLM_API_KEY
// the vendor's own variable (ANTHROPIC_API_KEY, OPENAI_API_KEY,
// GEMINI_API_KEY) is used.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if p := env("DRILLZ_LLM_PROVIDER"); p != "" {
		cfg.Provider = strings.ToLower(p)
	}
	cfg.Model = env("DRILLZ_LLM_MODEL")
	cfg.APIKey = env("DRILLZ_LLM_API_KEY")
	cfg.BaseURL = env("DRILLZ_LLM_BASE_URL")
	if cfg.APIKey == "" {
		cfg.APIKey = env(vendorKey(cfg.Provider))
	}
	if d, err := time.ParseDuration(env("DRILLZ_LLM_TIMEOUT")); err == nil && d > 0 {
		cfg.Timeout = d
	}
	if n, err := strconv.Atoi(env("DRILLZ_LLM_MAX_ATTEMPTS")); err == nil && n > 0 {
		cfg.Retry.MaxAttempts = n
	}
	return cfg
}

// DiscoverConfig picks the first provider whose vendor key is set, in the
// order anthropic, openai, gemini.
func DiscoverConfig() (Config, bool) {
	for _, p := range []string{ProviderAnthropic, ProviderOpenAI, ProviderGemini} {
		if k := env(vendorKey(p)); k != "" {
			cfg := DefaultConfig()
			cfg.Provider, cfg.APIKey = p, k
			return cfg, true
		}
	}
	return Config{}, false
}

func vendorKey(provider string) string {
	switch provider {
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderGemini:
		return "GEMINI_API_KEY"
	}
	return ""
}

// ModelName is the configured model or the provider default.
func (c Config) ModelName() string {
	if c.Model != "" {
		return c.Model
	}
	return defaultModels[c.Provider]
}

// Validate checks the provider name and that an API key is present.
func (c Config) Validate() error {
	if _, ok := defaultModels[c.Provider]; !ok {
		return fmt.Errorf("unknown LLM provider %q", c.Provider)
	}
	if c.Provider != ProviderMock && c.APIKey == "" {
		return fmt.Errorf("DRILLZ_LLM_API_KEY or %s is required for the %s provider", vendorKey(c.Provider), c.Provider)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry attempts must be at least 1")
	}
	return nil
}

func env(key string) string {
	if key == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(key))
}
