// Package config provides centralized configuration management for the
// application. It loads configuration from environment variables with
// sensible defaults and validates all settings on startup to fail fast
// on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server  ServerConfig
	Auth    AuthConfig
	Upload  UploadConfig
	LLM     LLMConfig
	Context ContextConfig
	Journal JournalConfig
	Rate    RateLimitConfig
	Logging LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading a request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing a response
	// (default: 0, disabled so SSE streams are never cut off)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AuthConfig holds the demo-grade access gate settings.
type AuthConfig struct {
	// AccessSecret is the single shared secret presented at login
	// (required). No rate limiting, no expiry; this is demo-grade
	// access control.
	AccessSecret string `env:"ACCESS_SECRET" required:"true"`
}

// UploadConfig holds file ingestion settings.
type UploadConfig struct {
	// MaxFileSize is the maximum allowed file size in bytes (default: 50MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"52428800"`
}

// LLMConfig holds model-provider settings. APIKey is optional: when
// absent the conversational feature degrades to a disabled state with a
// clear message while audit, redaction and export stay functional.
type LLMConfig struct {
	// APIKey is the provider key, sourced from the deployment-managed
	// secret store.
	APIKey string `env:"DEEPSEEK_API_KEY" envAlt:"LLM_API_KEY"`

	// BaseURL is the OpenAI-compatible endpoint (default: DeepSeek)
	BaseURL string `env:"LLM_BASE_URL" default:"https://api.deepseek.com/v1"`

	// Model is the model identifier (default: deepseek-chat)
	Model string `env:"LLM_MODEL" default:"deepseek-chat"`

	// Timeout is the maximum duration of one streaming call (default: 5m)
	Timeout time.Duration `env:"LLM_TIMEOUT" default:"5m"`
}

// ContextConfig holds the context-window bounds for model calls.
type ContextConfig struct {
	// HeadRows is how many data rows the system message embeds (default: 20)
	HeadRows int `env:"CONTEXT_HEAD_ROWS" default:"20"`

	// MaxChars hard-caps the embedded data block in runes (default: 8000)
	MaxChars int `env:"CONTEXT_MAX_CHARS" default:"8000"`
}

// JournalConfig holds the provenance journal settings.
type JournalConfig struct {
	// Enabled controls whether dataset loads are journaled (default: true)
	Enabled bool `env:"JOURNAL_ENABLED" default:"true"`

	// Path is the SQLite database file (default: data/journal.db)
	Path string `env:"JOURNAL_PATH" default:"data/journal.db"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	if c.Host == "" {
		return ":" + strconv.Itoa(c.Port)
	}
	return c.Host + ":" + strconv.Itoa(c.Port)
}
