package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/viant/nlsql/embedding"
	"github.com/viant/nlsql/index"
	"github.com/viant/nlsql/llm"
	"github.com/viant/nlsql/schema"
)

// LogFormat selects the log encoding.
type LogFormat string

const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// AppConfig is the validated application configuration.
type AppConfig struct {
	DataDir   string
	LogLevel  string
	LogFormat LogFormat
	IndexKind index.Kind
	TopK      int

	Embedding   embedding.Config
	Generation  llm.Config
	Parallelism int

	DatabaseDriver schema.Dialect
	DatabaseDSN    string
	HTTPAddr       string
}

// ToAppConfig validates e; errors name the offending variable.
func (e EnvConfig) ToAppConfig() (AppConfig, error) {
	cfg := AppConfig{
		DataDir:     strings.TrimSpace(e.DataDir),
		LogLevel:    strings.ToUpper(strings.TrimSpace(e.LogLevel)),
		TopK:        e.TopK,
		Parallelism: e.Generation.Parallelism,
		DatabaseDSN: e.Database.DSN,
		HTTPAddr:    e.HTTP.Addr,
		Embedding: embedding.Config{
			Kind:       embedding.Kind(strings.ToLower(e.Embedding.Provider)),
			Model:      e.Embedding.Model,
			APIKey:     e.Embedding.APIKey,
			BaseURL:    e.Embedding.BaseURL,
			Dimension:  e.Embedding.Dimension,
			Timeout:    seconds(e.Embedding.Timeout),
			MaxRetries: e.Embedding.MaxRetries,
		},
		Generation: llm.Config{
			Kind:      llm.Kind(strings.ToLower(e.Generation.Provider)),
			Model:     e.Generation.Model,
			APIKeys:   e.Generation.APIKeys,
			BaseURL:   e.Generation.BaseURL,
			Timeout:   seconds(e.Generation.Timeout),
			MaxTokens: e.Generation.MaxTokens,
		},
	}
	if cfg.DataDir == "" {
		return AppConfig{}, invalid("DATA_DIR", "must not be empty")
	}
	switch cfg.LogLevel {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		return AppConfig{}, invalid("LOG_LEVEL", "unknown level %q", e.LogLevel)
	}
	switch LogFormat(strings.ToLower(e.LogFormat)) {
	case LogFormatPretty, "":
		cfg.LogFormat = LogFormatPretty
	case LogFormatJSON:
		cfg.LogFormat = LogFormatJSON
	default:
		return AppConfig{}, invalid("LOG_FORMAT", "unknown format %q", e.LogFormat)
	}
	kind, err := index.ParseKind(strings.ToLower(e.IndexKind))
	if err != nil {
		return AppConfig{}, invalid("INDEX_KIND", "%v", err)
	}
	cfg.IndexKind = kind
	if cfg.TopK <= 0 {
		return AppConfig{}, invalid("TOP_K", "must be positive, got %d", cfg.TopK)
	}
	switch cfg.Embedding.Kind {
	case embedding.KindOpenAI, embedding.KindGemini, embedding.KindOllama, embedding.KindHash:
	default:
		return AppConfig{}, invalid("EMBEDDING_PROVIDER", "unknown provider %q", e.Embedding.Provider)
	}
	if cfg.Embedding.Dimension < 0 {
		return AppConfig{}, invalid("EMBEDDING_DIMENSION", "must not be negative")
	}
	switch cfg.Generation.Kind {
	case llm.KindNone, "":
		cfg.Generation.Kind = llm.KindNone
	case llm.KindGemini, llm.KindOpenAI, llm.KindAnthropic:
		if len(cfg.Generation.APIKeys) == 0 {
			return AppConfig{}, invalid("GENERATION_API_KEYS", "required for provider %s", cfg.Generation.Kind)
		}
	default:
		return AppConfig{}, invalid("GENERATION_PROVIDER", "unknown provider %q", e.Generation.Provider)
	}
	if cfg.Parallelism < 1 {
		return AppConfig{}, invalid("GENERATION_PARALLELISM", "must be at least 1")
	}
	if e.Database.Driver != "" {
		dialect, err := schema.ParseDialect(e.Database.Driver)
		if err != nil {
			return AppConfig{}, invalid("DATABASE_DRIVER", "%v", err)
		}
		cfg.DatabaseDriver = dialect
	}
	return cfg, nil
}

func invalid(key, format string, args ...any) error {
	return fmt.Errorf("config: %s_%s: %s", Prefix, key, fmt.Sprintf(format, args...))
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
