// Package config loads rtlify settings from defaults, an optional YAML file
// and RTLIFY_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ZaguanLabs/rtlify"
	"github.com/ZaguanLabs/rtlify/processor"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "RTLIFY_"

// Provider names.
const (
	ProviderGoogle = "google"
	ProviderOpenAI = "openai"
)

// Config holds every setting of a run.
type Config struct {
	Dir        string `env:"DIR"         yaml:"dir"`
	Lang       string `env:"LANG"        yaml:"lang"`
	SourceLang string `env:"SOURCE_LANG" yaml:"source_lang"`
	Suffix     string `env:"SUFFIX"      yaml:"suffix"`
	Provider   string `env:"PROVIDER"    yaml:"provider"`
	Pretty     bool   `env:"PRETTY"      yaml:"pretty"`

	Google    GoogleConfig    `envPrefix:"GOOGLE_"     yaml:"google"`
	OpenAI    OpenAIConfig    `envPrefix:"OPENAI_"     yaml:"openai"`
	Retry     RetryConfig     `envPrefix:"RETRY_"      yaml:"retry"`
	RateLimit RateLimitConfig `envPrefix:"RATE_LIMIT_" yaml:"rate_limit"`
	Cache     CacheConfig     `envPrefix:"CACHE_"      yaml:"cache"`
	RTL       RTLConfig       `envPrefix:"RTL_"        yaml:"rtl"`
	Log       LogConfig       `envPrefix:"LOG_"        yaml:"log"`
}

// GoogleConfig configures the public translate endpoint.
type GoogleConfig struct {
	Endpoint  string        `env:"ENDPOINT"   yaml:"endpoint"`
	UserAgent string        `env:"USER_AGENT" yaml:"user_agent"`
	Timeout   time.Duration `env:"TIMEOUT"    yaml:"timeout"`
}

// OpenAIConfig configures the OpenAI backend. APIKey falls back to
// OPENAI_API_KEY.
type OpenAIConfig struct {
	APIKey  string `env:"API_KEY"  yaml:"api_key"`
	Model   string `env:"MODEL"    yaml:"model"`
	BaseURL string `env:"BASE_URL" yaml:"base_url"`
}

// RetryConfig mirrors rtlify.RetryConfig.
type RetryConfig struct {
	MaxAttempts int           `env:"MAX_ATTEMPTS" yaml:"max_attempts"`
	BaseDelay   time.Duration `env:"BASE_DELAY"   yaml:"base_delay"`
	Step        time.Duration `env:"STEP"         yaml:"step"`
	Pacing      time.Duration `env:"PACING"       yaml:"pacing"`
}

// RateLimitConfig caps provider requests. Zero disables the limit; the
// retry pacing still applies.
type RateLimitConfig struct {
	RequestsPerMinute int `env:"RPM"   yaml:"requests_per_minute"`
	Burst             int `env:"BURST" yaml:"burst"`
}

// CacheConfig selects optional persistent caching. Both are off by default.
type CacheConfig struct {
	RedisURL    string        `env:"REDIS_URL"    yaml:"redis_url"`
	RedisTTL    time.Duration `env:"REDIS_TTL"    yaml:"redis_ttl"`
	RedisPrefix string        `env:"REDIS_PREFIX" yaml:"redis_prefix"`
	File        string        `env:"FILE"         yaml:"file"`
}

// RTLConfig mirrors processor.RTLOptions minus the language.
type RTLConfig struct {
	BodyClass         string `env:"BODY_CLASS"         yaml:"body_class"`
	Stylesheet        string `env:"STYLESHEET"         yaml:"stylesheet"`
	PrimaryStylesheet string `env:"PRIMARY_STYLESHEET" yaml:"primary_stylesheet"`
	Script            string `env:"SCRIPT"             yaml:"script"`
	PrimaryScript     string `env:"PRIMARY_SCRIPT"     yaml:"primary_script"`
}

// LogConfig configures the terminal logger.
type LogConfig struct {
	Level   string `env:"LEVEL"    yaml:"level"`
	NoColor bool   `env:"NO_COLOR" yaml:"no_color"`
}

// Default returns the settings of a plain run: Persian output next to the
// sources in the current directory, Google endpoint, memory-only cache.
func Default() Config {
	retry := rtlify.DefaultRetryConfig()
	rtl := processor.DefaultRTLOptions()

	return Config{
		Dir:        ".",
		Lang:       rtl.Lang,
		SourceLang: "auto",
		Suffix:     "fa",
		Provider:   ProviderGoogle,
		Pretty:     true,
		Google: GoogleConfig{
			Timeout: 15 * time.Second,
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Retry: RetryConfig{
			MaxAttempts: retry.MaxAttempts,
			BaseDelay:   retry.BaseDelay,
			Step:        retry.Step,
			Pacing:      retry.Pacing,
		},
		Cache: CacheConfig{
			RedisPrefix: "rtlify:",
		},
		RTL: RTLConfig{
			BodyClass:         rtl.BodyClass,
			Stylesheet:        rtl.Stylesheet,
			PrimaryStylesheet: rtl.PrimaryStylesheet,
			Script:            rtl.Script,
			PrimaryScript:     rtl.PrimaryScript,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load returns the defaults overlaid with the YAML file at path (skipped when
// path is empty) and then the environment. Callers apply their own overrides
// and then call Validate.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return cfg, err
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("parsing environment: %w", err)
	}

	if cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path) // #nosec G304 - path is supplied by the operator
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	defer f.Close()

	// An empty file decodes to io.EOF and leaves the defaults untouched
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Lang == "" {
		return errors.New("lang must not be empty")
	}
	if c.Suffix == "" || strings.ContainsAny(c.Suffix, `/\`) {
		return fmt.Errorf("invalid suffix %q", c.Suffix)
	}

	switch c.Provider {
	case ProviderGoogle:
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return errors.New("openai provider requires OPENAI_API_KEY")
		}
	default:
		return fmt.Errorf("unknown provider %q (want %s or %s)", c.Provider, ProviderGoogle, ProviderOpenAI)
	}

	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	if c.Retry.BaseDelay < 0 || c.Retry.Step < 0 || c.Retry.Pacing < 0 {
		return errors.New("retry delays must not be negative")
	}
	if c.RateLimit.RequestsPerMinute < 0 || c.RateLimit.Burst < 0 {
		return errors.New("rate_limit values must not be negative")
	}

	return nil
}

// RetryPolicy converts the retry settings.
func (c Config) RetryPolicy() rtlify.RetryConfig {
	return rtlify.RetryConfig{
		MaxAttempts: c.Retry.MaxAttempts,
		BaseDelay:   c.Retry.BaseDelay,
		Step:        c.Retry.Step,
		Pacing:      c.Retry.Pacing,
	}
}

// RateLimitPolicy converts the rate limit settings. ok is false when no limit
// is configured.
func (c Config) RateLimitPolicy() (cfg rtlify.RateLimitConfig, ok bool) {
	if c.RateLimit.RequestsPerMinute == 0 {
		return cfg, false
	}
	return rtlify.RateLimitConfig{
		RequestsPerMinute: c.RateLimit.RequestsPerMinute,
		BurstSize:         c.RateLimit.Burst,
	}, true
}

// RTLOptions converts the RTL settings for the target language.
func (c Config) RTLOptions() processor.RTLOptions {
	return processor.RTLOptions{
		Lang:              c.Lang,
		BodyClass:         c.RTL.BodyClass,
		Stylesheet:        c.RTL.Stylesheet,
		PrimaryStylesheet: c.RTL.PrimaryStylesheet,
		Script:            c.RTL.Script,
		PrimaryScript:     c.RTL.PrimaryScript,
	}
}
