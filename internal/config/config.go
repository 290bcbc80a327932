// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (./fathom.yaml or ~/.fathom/config.yaml)
//  3. Default values
//
// Main configuration categories:
//   - Models: provider plus the chat / reasoning / title / artifact model ids
//   - Storage: PostgreSQL connection (see storage.go)
//   - Tools: external data API endpoints and keys
//   - Observability: OTLP trace export (see observability.go)
//
// Security: sensitive values (passwords, API keys, HMAC secret) are masked in
// MarshalJSON and String; never log the raw struct fields.
//
// Error handling uses sentinel errors so callers can check with errors.Is and
// wrap with fmt.Errorf("%w: details", ErrXxx).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrMissingAPIKey indicates a required API key is missing.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidModelName indicates a model name is empty or malformed.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidProvider indicates the AI provider is not supported.
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrInvalidMaxTurns indicates the tool-loop ceiling is out of range.
	ErrInvalidMaxTurns = errors.New("invalid max turns")

	// ErrInvalidAddr indicates the listen address is malformed.
	ErrInvalidAddr = errors.New("invalid listen address")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is invalid.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresDBName indicates the PostgreSQL database name is invalid.
	ErrInvalidPostgresDBName = errors.New("invalid PostgreSQL database name")

	// ErrInvalidPostgresSSLMode indicates the PostgreSQL SSL mode is invalid.
	ErrInvalidPostgresSSLMode = errors.New("invalid PostgreSQL SSL mode")

	// ErrMissingHMACSecret indicates the cookie-signing secret is not set.
	ErrMissingHMACSecret = errors.New("missing HMAC secret")

	// ErrInvalidHMACSecret indicates the cookie-signing secret is too short.
	ErrInvalidHMACSecret = errors.New("invalid HMAC secret")
)

// AI provider identifiers used in Config.Provider.
const (
	ProviderGemini   = "gemini"
	ProviderGoogleAI = "googleai"
)

const (
	// DefaultMaxHistoryMessages is the default number of messages loaded as
	// model context per turn.
	DefaultMaxHistoryMessages int32 = 100

	// MaxAllowedHistoryMessages is the absolute maximum to prevent OOM.
	MaxAllowedHistoryMessages int32 = 10000

	// DefaultMaxTurns bounds the model's tool-call loop per request.
	DefaultMaxTurns = 5
)

// Config stores application configuration.
// SECURITY: sensitive fields are explicitly masked in MarshalJSON().
// When adding new sensitive fields (passwords, API keys, tokens), update it.
type Config struct {
	// HTTP server
	Addr string `mapstructure:"addr" json:"addr"`

	// Env is the deployment environment: "dev", "staging" or "prod".
	// Dev relaxes the Secure flag on auth cookies so plain-HTTP local
	// servers work.
	Env string `mapstructure:"env" json:"env"`

	// AI provider and model configuration. Model ids are unqualified; use
	// QualifiedModel to get the provider-prefixed name Genkit expects.
	Provider       string  `mapstructure:"provider" json:"provider"`
	ChatModel      string  `mapstructure:"chat_model" json:"chat_model"`
	ReasoningModel string  `mapstructure:"reasoning_model" json:"reasoning_model"`
	TitleModel     string  `mapstructure:"title_model" json:"title_model"`
	ArtifactModel  string  `mapstructure:"artifact_model" json:"artifact_model"`
	ImageModel     string  `mapstructure:"image_model" json:"image_model"`
	Temperature    float32 `mapstructure:"temperature" json:"temperature"`

	// Conversation limits
	MaxHistoryMessages int32 `mapstructure:"max_history_messages" json:"max_history_messages"`
	MaxTurns           int   `mapstructure:"max_turns" json:"max_turns"`

	// Storage configuration (see storage.go)
	PostgresHost     string `mapstructure:"postgres_host" json:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port" json:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user" json:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password" json:"postgres_password"` // SENSITIVE: masked in MarshalJSON
	PostgresDBName   string `mapstructure:"postgres_db_name" json:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode" json:"postgres_ssl_mode"`

	// External tool endpoints. Base URLs are configurable so tests can point
	// the handlers at local fakes.
	AlphaVantageKey string `mapstructure:"alphavantage_key" json:"alphavantage_key"` // SENSITIVE: masked in MarshalJSON
	FinanceBaseURL  string `mapstructure:"finance_base_url" json:"finance_base_url"`
	SearchBaseURL   string `mapstructure:"search_base_url" json:"search_base_url"`
	WeatherBaseURL  string `mapstructure:"weather_base_url" json:"weather_base_url"`

	// Security configuration
	HMACSecret string `mapstructure:"hmac_secret" json:"hmac_secret"` // SENSITIVE: masked in MarshalJSON

	// Logging
	LogLevel string `mapstructure:"log_level" json:"log_level"`
	LogJSON  bool   `mapstructure:"log_json" json:"log_json"`

	// Observability configuration (see observability.go)
	Otel OtelConfig `mapstructure:"otel" json:"otel"`
}

// Load loads configuration.
// Priority: environment variables > configuration file > default values.
// A .env file in the working directory is loaded best-effort first, so local
// development can keep secrets out of the shell profile.
func Load() (*Config, error) {
	// Best-effort: absence of .env is the normal production case.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Debug("skipping .env file", "error", err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}
	configDir := filepath.Join(home, ".fathom")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.AddConfigPath(".")

	setDefaults()
	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		// Missing config file is not an error; defaults apply.
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// DATABASE_URL overrides the individual postgres_* settings.
	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, fmt.Errorf("parsing DATABASE_URL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults() {
	viper.SetDefault("addr", ":8080")
	viper.SetDefault("env", "dev")

	// Model defaults
	viper.SetDefault("provider", ProviderGemini)
	viper.SetDefault("chat_model", "gemini-2.5-flash")
	viper.SetDefault("reasoning_model", "gemini-2.5-pro")
	viper.SetDefault("title_model", "gemini-2.5-flash-lite")
	viper.SetDefault("artifact_model", "gemini-2.5-flash")
	viper.SetDefault("image_model", "imagen-3.0-generate-002")
	viper.SetDefault("temperature", 0.7)
	viper.SetDefault("max_history_messages", DefaultMaxHistoryMessages)
	viper.SetDefault("max_turns", DefaultMaxTurns)

	// PostgreSQL defaults (matching docker-compose.yml)
	viper.SetDefault("postgres_host", "localhost")
	viper.SetDefault("postgres_port", 5432)
	viper.SetDefault("postgres_user", "fathom")
	viper.SetDefault("postgres_password", "fathom_dev_password")
	viper.SetDefault("postgres_db_name", "fathom")
	viper.SetDefault("postgres_ssl_mode", "disable")

	// Tool endpoints
	viper.SetDefault("finance_base_url", "https://www.alphavantage.co/query")
	viper.SetDefault("search_base_url", "https://html.duckduckgo.com/html/")
	viper.SetDefault("weather_base_url", "https://api.open-meteo.com/v1/forecast")

	// Logging
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_json", false)

	// Observability
	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.endpoint", "localhost:4318")
	viper.SetDefault("otel.environment", "dev")
	viper.SetDefault("otel.service_name", "fathom")
}

// bindEnvVariables binds environment variables explicitly. Secrets come only
// from the environment, never from the config file search path:
//  1. GEMINI_API_KEY — read directly by Genkit (not via Viper), presence
//     validated in cfg.Validate()
//  2. HMAC_SECRET — cookie-signing secret for the auth manager
//  3. ALPHAVANTAGE_API_KEY — finance data API key (optional; the finance tool
//     degrades to a structured error without it)
func bindEnvVariables() {
	// Hardcoded keys cannot fail to bind; a panic here is a bug, not a
	// runtime error.
	mustBind := func(key, envVar string) {
		if err := viper.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("hmac_secret", "HMAC_SECRET")
	mustBind("alphavantage_key", "ALPHAVANTAGE_API_KEY")

	mustBind("addr", "FATHOM_ADDR")
	mustBind("env", "FATHOM_ENV")
	mustBind("provider", "FATHOM_PROVIDER")
	mustBind("chat_model", "FATHOM_CHAT_MODEL")
	mustBind("reasoning_model", "FATHOM_REASONING_MODEL")
	mustBind("title_model", "FATHOM_TITLE_MODEL")
	mustBind("artifact_model", "FATHOM_ARTIFACT_MODEL")
	mustBind("image_model", "FATHOM_IMAGE_MODEL")
	mustBind("log_level", "FATHOM_LOG_LEVEL")
	mustBind("log_json", "FATHOM_LOG_JSON")
	mustBind("otel.enabled", "FATHOM_OTEL_ENABLED")
	mustBind("otel.endpoint", "FATHOM_OTEL_ENDPOINT")
}

// maskedValue is the placeholder for masked sensitive data.
// Full-width blocks (U+2588) cannot collide with characters of a real secret,
// which rules out accidental substring leaks in masked output.
const maskedValue = "████████"

// maskSecret masks a secret string for safe logging. Secrets of 8 bytes or
// fewer are fully masked; longer ones keep the first and last 2 characters
// for debug utility.
//
// THREAT MODEL: defends against accidental logging of real secrets. It is not
// cryptographically secure; if logs are compromised, rotate secrets.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return maskedValue
	}
	return s[:2] + "<" + maskedValue + ">" + s[len(s)-2:]
}

// MarshalJSON implements json.Marshaler with explicit sensitive field masking.
//
// Sensitive fields masked: PostgresPassword, HMACSecret, AlphaVantageKey.
// When adding new sensitive fields, update this method.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	a := alias(c)
	a.PostgresPassword = maskSecret(a.PostgresPassword)
	a.HMACSecret = maskSecret(a.HMACSecret)
	a.AlphaVantageKey = maskSecret(a.AlphaVantageKey)
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// QualifiedModel returns the provider-qualified model name for Genkit, e.g.
// "googleai/gemini-2.5-flash". A name already containing "/" is returned
// as-is.
func (c *Config) QualifiedModel(name string) string {
	if strings.Contains(name, "/") {
		return name
	}
	// The Gemini provider registers its models under the googleai prefix.
	return ProviderGoogleAI + "/" + name
}

// IsDev reports whether the service runs in the dev environment.
func (c *Config) IsDev() bool {
	return c.Env == "" || c.Env == "dev"
}

// String implements Stringer to prevent accidental printing of secrets.
func (c Config) String() string {
	data, err := c.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}
