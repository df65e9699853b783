package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for jobscout. It is resolved once at
// startup and passed explicitly into constructors; nothing reads it through
// a global.
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Auth         AuthConfig
	LLM          LLMConfig
	Sources      SourcesConfig
	Search       SearchConfig
	Refresh      RefreshConfig
	Notification NotificationConfig
	RateLimit    RateLimitConfig
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr        string   `yaml:"addr"`         // defaults to ":8000"
	CORSOrigins []string `yaml:"cors_origins"` // allowed origins, empty = allow all
	UploadDir   string   `yaml:"upload_dir"`   // where uploaded CV PDFs land
}

// DatabaseConfig points at the SQLite file.
type DatabaseConfig struct {
	Path string `yaml:"path"` // defaults to "jobscout.db"
}

// AuthConfig holds JWT signing settings.
type AuthConfig struct {
	SecretKey string        // expanded from env by Load, min 32 chars
	TokenTTL  time.Duration // access token lifetime
}

// LLMConfig targets an OpenAI-compatible chat-completions endpoint.
type LLMConfig struct {
	BaseURL       string        // defaults to https://openrouter.ai/api/v1
	APIKey        string        // expanded from env by Load
	Model         string        // default model for cheap calls
	AdvancedModel string        // model for adaptation/analysis calls
	Timeout       time.Duration // per-request timeout
	MaxRetries    int           // transient-failure retries on top of the first attempt
}

// SourceToggle is a keyless source: on or off.
type SourceToggle struct {
	Enabled bool `yaml:"enabled"`
}

// KeyedSource is a source that needs an API key to be usable.
type KeyedSource struct {
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"api_key"`
}

// AdzunaConfig needs the app_id/app_key pair Adzuna hands out.
type AdzunaConfig struct {
	Enabled bool   `yaml:"enabled"`
	AppID   string `yaml:"app_id"`
	AppKey  string `yaml:"app_key"`
}

// SourcesConfig carries the per-source enable flags and credentials.
type SourcesConfig struct {
	Arbeitsagentur SourceToggle `yaml:"arbeitsagentur"`
	RemoteOK       SourceToggle `yaml:"remoteok"`
	TheLocal       SourceToggle `yaml:"thelocal"`
	Adzuna         AdzunaConfig `yaml:"adzuna"`
	LinkedIn       KeyedSource  `yaml:"linkedin"`
	Indeed         KeyedSource  `yaml:"indeed"`
}

// SearchConfig bounds the aggregation fan-out.
type SearchConfig struct {
	AdapterTimeout time.Duration // per-source network budget
	PageSize       int           // per-source request cap
}

// RefreshConfig controls the background saved-search refresher.
type RefreshConfig struct {
	Enabled       bool
	Interval      time.Duration
	MinMatchScore float64 // notify only above this score
}

// NotificationConfig picks the refresher's notifier.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

// RateLimitConfig controls source-level rate limiting for the refresher.
type RateLimitConfig struct {
	MinDelay        time.Duration            // minimum gap between requests to the same source
	SourceOverrides map[string]time.Duration // per-source overrides
}

// MinDelayFor returns the configured delay for the given source, falling
// back to MinDelay.
func (r RateLimitConfig) MinDelayFor(source string) time.Duration {
	if d, ok := r.SourceOverrides[source]; ok {
		return d
	}
	return r.MinDelay
}

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// rawConfig is used for YAML unmarshaling (snake_case fields, durations as strings).
type rawConfig struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	Auth         rawAuthConfig      `yaml:"auth"`
	LLM          rawLLMConfig       `yaml:"llm"`
	Sources      SourcesConfig      `yaml:"sources"`
	Search       rawSearchConfig    `yaml:"search"`
	Refresh      rawRefreshConfig   `yaml:"refresh"`
	Notification NotificationConfig `yaml:"notification"`
	RateLimit    rawRateLimitConfig `yaml:"rate_limit"`
}

type rawAuthConfig struct {
	SecretKey string `yaml:"secret_key"`
	TokenTTL  string `yaml:"token_ttl"`
}

type rawLLMConfig struct {
	BaseURL       string `yaml:"base_url"`
	APIKey        string `yaml:"api_key"`
	Model         string `yaml:"model"`
	AdvancedModel string `yaml:"advanced_model"`
	Timeout       string `yaml:"timeout"`
	MaxRetries    *int   `yaml:"max_retries"`
}

type rawSearchConfig struct {
	AdapterTimeout string `yaml:"adapter_timeout"`
	PageSize       int    `yaml:"page_size"`
}

type rawRefreshConfig struct {
	Enabled       bool    `yaml:"enabled"`
	Interval      string  `yaml:"interval"`
	MinMatchScore float64 `yaml:"min_match_score"`
}

type rawRateLimitConfig struct {
	MinDelay        string            `yaml:"min_delay"`
	SourceOverrides map[string]string `yaml:"source_overrides"`
}

// Load reads and parses the YAML config file at path, expands environment
// variables, validates the result and fills defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Secrets come in via ${VAR} references.
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	tokenTTL := 30 * time.Minute
	if raw.Auth.TokenTTL != "" {
		tokenTTL, err = time.ParseDuration(raw.Auth.TokenTTL)
		if err != nil {
			return nil, fmt.Errorf("parse auth.token_ttl %q: %w", raw.Auth.TokenTTL, err)
		}
	}

	llmTimeout := 60 * time.Second
	if raw.LLM.Timeout != "" {
		llmTimeout, err = time.ParseDuration(raw.LLM.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse llm.timeout %q: %w", raw.LLM.Timeout, err)
		}
	}

	llmRetries := 2
	if raw.LLM.MaxRetries != nil {
		llmRetries = *raw.LLM.MaxRetries
	}

	adapterTimeout := 8 * time.Second
	if raw.Search.AdapterTimeout != "" {
		adapterTimeout, err = time.ParseDuration(raw.Search.AdapterTimeout)
		if err != nil {
			return nil, fmt.Errorf("parse search.adapter_timeout %q: %w", raw.Search.AdapterTimeout, err)
		}
	}

	pageSize := 25
	if raw.Search.PageSize > 0 && raw.Search.PageSize < pageSize {
		pageSize = raw.Search.PageSize
	}

	refreshInterval := 6 * time.Hour
	if raw.Refresh.Interval != "" {
		refreshInterval, err = time.ParseDuration(raw.Refresh.Interval)
		if err != nil {
			return nil, fmt.Errorf("parse refresh.interval %q: %w", raw.Refresh.Interval, err)
		}
	}

	minDelay := 30 * time.Second
	if raw.RateLimit.MinDelay != "" {
		minDelay, err = time.ParseDuration(raw.RateLimit.MinDelay)
		if err != nil {
			return nil, fmt.Errorf("parse rate_limit.min_delay %q: %w", raw.RateLimit.MinDelay, err)
		}
	}

	overrides := make(map[string]time.Duration)
	for source, rawDelay := range raw.RateLimit.SourceOverrides {
		d, err := time.ParseDuration(rawDelay)
		if err != nil {
			return nil, fmt.Errorf("parse rate_limit.source_overrides[%q]: %w", source, err)
		}
		overrides[source] = d
	}

	cfg := &Config{
		Server:   raw.Server,
		Database: raw.Database,
		Auth: AuthConfig{
			SecretKey: raw.Auth.SecretKey,
			TokenTTL:  tokenTTL,
		},
		LLM: LLMConfig{
			BaseURL:       raw.LLM.BaseURL,
			APIKey:        raw.LLM.APIKey,
			Model:         raw.LLM.Model,
			AdvancedModel: raw.LLM.AdvancedModel,
			Timeout:       llmTimeout,
			MaxRetries:    llmRetries,
		},
		Sources: raw.Sources,
		Search: SearchConfig{
			AdapterTimeout: adapterTimeout,
			PageSize:       pageSize,
		},
		Refresh: RefreshConfig{
			Enabled:       raw.Refresh.Enabled,
			Interval:      refreshInterval,
			MinMatchScore: raw.Refresh.MinMatchScore,
		},
		Notification: raw.Notification,
		RateLimit: RateLimitConfig{
			MinDelay:        minDelay,
			SourceOverrides: overrides,
		},
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8000"
	}
	if cfg.Server.UploadDir == "" {
		cfg.Server.UploadDir = "data/cvs"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "jobscout.db"
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = defaultOpenRouterBaseURL
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "anthropic/claude-3-haiku"
	}
	if cfg.LLM.AdvancedModel == "" {
		cfg.LLM.AdvancedModel = "anthropic/claude-3-sonnet"
	}
	if cfg.Refresh.MinMatchScore == 0 {
		cfg.Refresh.MinMatchScore = 50
	}
}

// PlaceholderKey reports whether a credential still carries a template
// sentinel ("your_..._here") or is too short to be real.
func PlaceholderKey(key string) bool {
	if key == "" {
		return true
	}
	if strings.HasPrefix(key, "your_") && strings.HasSuffix(key, "_here") {
		return true
	}
	return len(key) < 10
}

func validate(cfg *Config) error {
	if PlaceholderKey(cfg.LLM.APIKey) {
		return fmt.Errorf("valid llm.api_key required; set OPENROUTER_API_KEY and reference it from the config")
	}
	if len(cfg.Auth.SecretKey) < 32 {
		return fmt.Errorf("auth.secret_key must be at least 32 characters")
	}
	if cfg.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive, got %v", cfg.Auth.TokenTTL)
	}
	if cfg.Search.AdapterTimeout <= 0 {
		return fmt.Errorf("search.adapter_timeout must be positive, got %v", cfg.Search.AdapterTimeout)
	}
	if cfg.Refresh.Enabled && cfg.Refresh.Interval <= 0 {
		return fmt.Errorf("refresh.interval must be positive, got %v", cfg.Refresh.Interval)
	}
	if cfg.Notification.Type == "slack" {
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, "https://hooks.slack.com/") {
			return fmt.Errorf("notification.webhook_url must start with https://hooks.slack.com/")
		}
	}
	return nil
}
