// Package config provides application-wide configuration loaded from env vars.
// Load is called once at startup; the returned Config is treated as read-only.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"time"
)

// Environments accepted by APP_ENV / NODE_ENV.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Providers accepted by LLM_PROVIDER.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Config holds runtime configuration for the server.
type Config struct {
	Server ServerConfig

	// LLM
	LLMProvider string         // LLM_PROVIDER, default: "openai"
	OpenAI      ProviderConfig // SERVER_OPENAI_*
	Ollama      ProviderConfig // OLLAMA_*
}

// ServerConfig holds the HTTP surface settings.
type ServerConfig struct {
	Host            string // HOST, default: "0.0.0.0"
	Port            int    // PORT, default: 3000
	Environment     string // APP_ENV / NODE_ENV, default: "development"
	LogLevel        string // LOG_LEVEL, default: "info"
	MaxRequestBytes int64
	CORSOrigins     []string
}

// ProviderConfig is the connection setup for one chat-completion provider.
type ProviderConfig struct {
	APIKey    string
	ProjectID string
	Model     string
	BaseURL   string
	Timeout   time.Duration
}

// IsDevelopment reports whether internal error details may be exposed to callers.
func (c Config) IsDevelopment() bool {
	return c.Server.Environment == EnvDevelopment
}

// Provider returns the settings of the selected LLM provider.
func (c Config) Provider() ProviderConfig {
	if c.LLMProvider == ProviderOllama {
		return c.Ollama
	}
	return c.OpenAI
}

const (
	envKeyHost           = "HOST"
	envKeyPort           = "PORT"
	envKeyAppEnv         = "APP_ENV"
	envKeyNodeEnv        = "NODE_ENV"
	envKeyLogLevel       = "LOG_LEVEL"
	envKeyLLMProvider    = "LLM_PROVIDER"
	envKeyOpenAIKey      = "SERVER_OPENAI_API_KEY"
	envKeyOpenAIProject  = "SERVER_OPENAI_PROJECT_ID"
	envKeyOpenAIModel    = "SERVER_OPENAI_MODEL"
	envKeyOpenAIBaseURL  = "SERVER_OPENAI_BASE_URL"
	envKeyOpenAITimeout  = "SERVER_OPENAI_TIMEOUT"
	envKeyOllamaBaseURL  = "OLLAMA_BASE_URL"
	envKeyOllamaModel    = "OLLAMA_CHAT_MODEL"
	envKeyOllamaTimeout  = "OLLAMA_TIMEOUT"
	defaultMaxBodyBytes  = 10 << 20
	defaultTimeoutMillis = 60000
	minTimeoutMillis     = 1000
)

var (
	validEnvironments = []string{EnvDevelopment, EnvProduction, EnvTest}
	validLogLevels    = []string{"error", "warn", "info", "debug"}
	validProviders    = []string{ProviderOpenAI, ProviderOllama}
)

// Load reads configuration from environment variables, applying defaults for
// missing values. Every invalid or missing required variable is reported in
// the returned error.
func Load() (Config, error) {
	var errs []error

	environment, environmentKey := envFirst(EnvDevelopment, envKeyAppEnv, envKeyNodeEnv)
	cfg := Config{
		Server: ServerConfig{
			Host:            envOr(envKeyHost, "0.0.0.0"),
			Port:            envInt(envKeyPort, 3000, 1, 65535, &errs),
			Environment:     environment,
			LogLevel:        envOr(envKeyLogLevel, "info"),
			MaxRequestBytes: defaultMaxBodyBytes,
			CORSOrigins:     []string{"*"},
		},
		LLMProvider: envOr(envKeyLLMProvider, ProviderOpenAI),
		OpenAI: ProviderConfig{
			APIKey:    os.Getenv(envKeyOpenAIKey),
			ProjectID: os.Getenv(envKeyOpenAIProject),
			Model:     envOr(envKeyOpenAIModel, "gpt-3.5-turbo"),
			BaseURL:   envOr(envKeyOpenAIBaseURL, "https://api.openai.com/v1"),
			Timeout:   envMillis(envKeyOpenAITimeout, &errs),
		},
		Ollama: ProviderConfig{
			Model:   envOr(envKeyOllamaModel, "llama3.2:3b"),
			BaseURL: envOr(envKeyOllamaBaseURL, "http://localhost:11434"),
			Timeout: envMillis(envKeyOllamaTimeout, &errs),
		},
	}

	checkOneOf(environmentKey, cfg.Server.Environment, validEnvironments, &errs)
	checkOneOf(envKeyLogLevel, cfg.Server.LogLevel, validLogLevels, &errs)
	checkOneOf(envKeyLLMProvider, cfg.LLMProvider, validProviders, &errs)

	switch cfg.LLMProvider {
	case ProviderOpenAI:
		if cfg.OpenAI.APIKey == "" {
			errs = append(errs, fmt.Errorf("%s required", envKeyOpenAIKey))
		}
		if cfg.OpenAI.ProjectID == "" {
			errs = append(errs, fmt.Errorf("%s required", envKeyOpenAIProject))
		}
		checkURL(envKeyOpenAIBaseURL, cfg.OpenAI.BaseURL, &errs)
	case ProviderOllama:
		checkURL(envKeyOllamaBaseURL, cfg.Ollama.BaseURL, &errs)
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return cfg, nil
}

// envOr returns the value of the environment variable key, or fallback if not set.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envFirst returns the first non-empty variable among keys and the key that
// supplied it. When none is set it returns fallback and the first key.
func envFirst(fallback string, keys ...string) (string, string) {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v, key
		}
	}
	return fallback, keys[0]
}

// envInt parses an integer variable bounded by [lo, hi].
func envInt(key string, fallback, lo, hi int, errs *[]error) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %q is not an integer", key, raw))
		return fallback
	}
	if n < lo || n > hi {
		*errs = append(*errs, fmt.Errorf("%s: %d out of range [%d, %d]", key, n, lo, hi))
		return fallback
	}
	return n
}

// envMillis parses a timeout expressed in milliseconds.
func envMillis(key string, errs *[]error) time.Duration {
	ms := envInt(key, defaultTimeoutMillis, minTimeoutMillis, int(^uint32(0)>>1), errs)
	return time.Duration(ms) * time.Millisecond
}

func checkOneOf(key, value string, allowed []string, errs *[]error) {
	if !slices.Contains(allowed, value) {
		*errs = append(*errs, fmt.Errorf("%s: %q must be one of %v", key, value, allowed))
	}
}

func checkURL(key, value string, errs *[]error) {
	u, err := url.Parse(value)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		*errs = append(*errs, fmt.Errorf("%s: %q is not a valid URL", key, value))
	}
}
