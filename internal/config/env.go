// Package config loads application configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every environment variable.
const Prefix = "NLSQL"

// EnvConfig holds all environment-based configuration.
// Field names map to environment variables with the NLSQL_ prefix.
type EnvConfig struct {
	// DataDir is where generations are stored.
	// Env: NLSQL_DATA_DIR (default: ./data)
	DataDir string `envconfig:"DATA_DIR" default:"./data"`

	// LogLevel is the log verbosity level.
	// Env: NLSQL_LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: NLSQL_LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// IndexKind selects the vector index (flat or cover).
	// Env: NLSQL_INDEX_KIND (default: flat)
	IndexKind string `envconfig:"INDEX_KIND" default:"flat"`

	// TopK is the default number of tables retrieved per question.
	// Env: NLSQL_TOP_K (default: 3)
	TopK int `envconfig:"TOP_K" default:"3"`

	Embedding  EmbeddingEnv  `envconfig:"EMBEDDING"`
	Generation GenerationEnv `envconfig:"GENERATION"`
	Database   DatabaseEnv   `envconfig:"DATABASE"`
	HTTP       HTTPEnv       `envconfig:"HTTP"`
}

// EmbeddingEnv configures the embedding provider.
type EmbeddingEnv struct {
	// Env: NLSQL_EMBEDDING_PROVIDER (openai, gemini, ollama, hash; default: hash)
	Provider string `envconfig:"PROVIDER" default:"hash"`
	// Env: NLSQL_EMBEDDING_MODEL
	Model string `envconfig:"MODEL"`
	// Env: NLSQL_EMBEDDING_API_KEY
	APIKey string `envconfig:"API_KEY"`
	// Env: NLSQL_EMBEDDING_BASE_URL
	BaseURL string `envconfig:"BASE_URL"`
	// Env: NLSQL_EMBEDDING_DIMENSION (0 adopts the provider's)
	Dimension int `envconfig:"DIMENSION"`
	// Timeout is the per-call timeout in seconds.
	// Env: NLSQL_EMBEDDING_TIMEOUT (default: 30)
	Timeout float64 `envconfig:"TIMEOUT" default:"30"`
	// Env: NLSQL_EMBEDDING_MAX_RETRIES (default: 1)
	MaxRetries int `envconfig:"MAX_RETRIES" default:"1"`
}

// GenerationEnv configures the text generation model.
type GenerationEnv struct {
	// Env: NLSQL_GENERATION_PROVIDER (none, gemini, openai, anthropic; default: none)
	Provider string `envconfig:"PROVIDER" default:"none"`
	// Env: NLSQL_GENERATION_MODEL
	Model string `envconfig:"MODEL"`
	// APIKeys are tried in order until one succeeds.
	// Env: NLSQL_GENERATION_API_KEYS (comma-separated)
	APIKeys []string `envconfig:"API_KEYS"`
	// Env: NLSQL_GENERATION_BASE_URL
	BaseURL string `envconfig:"BASE_URL"`
	// Timeout is the per-call timeout in seconds.
	// Env: NLSQL_GENERATION_TIMEOUT (default: 60)
	Timeout float64 `envconfig:"TIMEOUT" default:"60"`
	// Env: NLSQL_GENERATION_MAX_TOKENS (default: 2048)
	MaxTokens int `envconfig:"MAX_TOKENS" default:"2048"`
	// Env: NLSQL_GENERATION_PARALLELISM (default: 1)
	Parallelism int `envconfig:"PARALLELISM" default:"1"`
}

// DatabaseEnv points at the database to introspect.
type DatabaseEnv struct {
	// Env: NLSQL_DATABASE_DRIVER (mysql, postgres, sqlite)
	Driver string `envconfig:"DRIVER"`
	// Env: NLSQL_DATABASE_DSN
	DSN string `envconfig:"DSN"`
}

// HTTPEnv configures the API server.
type HTTPEnv struct {
	// Env: NLSQL_HTTP_ADDR (default: :8080)
	Addr string `envconfig:"ADDR" default:":8080"`
}

// LoadFromEnv loads configuration from NLSQL_ prefixed variables.
func LoadFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}
