package config

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
)

// Validate validates configuration values.
// Returns sentinel errors that can be checked with errors.Is().
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	// API key presence (read directly by Genkit, presence checked here so the
	// process fails at startup rather than on the first model call).
	if os.Getenv("GEMINI_API_KEY") == "" {
		return fmt.Errorf("%w: GEMINI_API_KEY environment variable is required\n"+
			"Get your API key at: https://ai.google.dev/gemini-api/docs/api-key",
			ErrMissingAPIKey)
	}

	if c.Provider != ProviderGemini && c.Provider != ProviderGoogleAI {
		return fmt.Errorf("%w: %q (supported: %s, %s)", ErrInvalidProvider,
			c.Provider, ProviderGemini, ProviderGoogleAI)
	}

	for _, m := range []struct{ key, name string }{
		{"chat_model", c.ChatModel},
		{"reasoning_model", c.ReasoningModel},
		{"title_model", c.TitleModel},
		{"artifact_model", c.ArtifactModel},
		{"image_model", c.ImageModel},
	} {
		if m.name == "" {
			return fmt.Errorf("%w: %s cannot be empty", ErrInvalidModelName, m.key)
		}
	}

	if c.MaxTurns < 1 || c.MaxTurns > 25 {
		return fmt.Errorf("%w: must be between 1 and 25, got %d", ErrInvalidMaxTurns, c.MaxTurns)
	}

	if c.Addr == "" || !strings.Contains(c.Addr, ":") {
		return fmt.Errorf("%w: %q (want host:port or :port)", ErrInvalidAddr, c.Addr)
	}

	if c.PostgresHost == "" {
		return fmt.Errorf("%w: host cannot be empty", ErrInvalidPostgresHost)
	}

	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: must be between 1 and 65535, got %d", ErrInvalidPostgresPort, c.PostgresPort)
	}

	if c.PostgresDBName == "" {
		return fmt.Errorf("%w: database name cannot be empty", ErrInvalidPostgresDBName)
	}

	if c.PostgresPassword == "fathom_dev_password" {
		slog.Warn("using default development password for PostgreSQL",
			"warning", "change postgres_password for production deployments")
	}

	// Modern SSL modes only; 'allow' and 'prefer' are deprecated (MITM
	// vulnerable). Reference: https://www.postgresql.org/docs/current/libpq-ssl.html
	validSSLModes := []string{"disable", "require", "verify-ca", "verify-full"}
	if !slices.Contains(validSSLModes, c.PostgresSSLMode) {
		return fmt.Errorf("%w: %q is not valid, must be one of: %v",
			ErrInvalidPostgresSSLMode, c.PostgresSSLMode, validSSLModes)
	}

	// The HMAC secret signs session cookies; a short secret defeats the
	// signature. 32 bytes matches the SHA-256 block recommendation.
	if c.HMACSecret == "" {
		return fmt.Errorf("%w: HMAC_SECRET environment variable is required", ErrMissingHMACSecret)
	}
	if len(c.HMACSecret) < 32 {
		return fmt.Errorf("%w: must be at least 32 characters, got %d", ErrInvalidHMACSecret, len(c.HMACSecret))
	}

	return nil
}

// NormalizeMaxHistoryMessages clamps the per-turn history window.
func NormalizeMaxHistoryMessages(limit int32) int32 {
	if limit <= 0 {
		return DefaultMaxHistoryMessages
	}
	if limit > MaxAllowedHistoryMessages {
		return MaxAllowedHistoryMessages
	}
	return limit
}
