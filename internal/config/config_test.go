package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/nlsql/embedding"
	"github.com/viant/nlsql/index"
	"github.com/viant/nlsql/llm"
	"github.com/viant/nlsql/schema"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	env, err := LoadFromEnv()
	require.NoError(t, err)

	cfg, err := env.ToAppConfig()
	require.NoError(t, err)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, LogFormatPretty, cfg.LogFormat)
	assert.Equal(t, index.KindFlat, cfg.IndexKind)
	assert.Equal(t, 3, cfg.TopK)
	assert.Equal(t, embedding.KindHash, cfg.Embedding.Kind)
	assert.Equal(t, 30*time.Second, cfg.Embedding.Timeout)
	assert.Equal(t, 1, cfg.Embedding.MaxRetries)
	assert.Equal(t, llm.KindNone, cfg.Generation.Kind)
	assert.Equal(t, 1, cfg.Parallelism)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Empty(t, cfg.DatabaseDriver)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("NLSQL_DATA_DIR", "/var/lib/nlsql")
	t.Setenv("NLSQL_INDEX_KIND", "cover")
	t.Setenv("NLSQL_TOP_K", "5")
	t.Setenv("NLSQL_EMBEDDING_PROVIDER", "openai")
	t.Setenv("NLSQL_EMBEDDING_MODEL", "text-embedding-3-large")
	t.Setenv("NLSQL_EMBEDDING_TIMEOUT", "2.5")
	t.Setenv("NLSQL_GENERATION_PROVIDER", "gemini")
	t.Setenv("NLSQL_GENERATION_API_KEYS", "k1,k2")
	t.Setenv("NLSQL_GENERATION_PARALLELISM", "4")
	t.Setenv("NLSQL_DATABASE_DRIVER", "postgresql")
	t.Setenv("NLSQL_DATABASE_DSN", "postgres://localhost/app")

	env, err := LoadFromEnv()
	require.NoError(t, err)
	cfg, err := env.ToAppConfig()
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/nlsql", cfg.DataDir)
	assert.Equal(t, index.KindCover, cfg.IndexKind)
	assert.Equal(t, 5, cfg.TopK)
	assert.Equal(t, embedding.KindOpenAI, cfg.Embedding.Kind)
	assert.Equal(t, "text-embedding-3-large", cfg.Embedding.Model)
	assert.Equal(t, 2500*time.Millisecond, cfg.Embedding.Timeout)
	assert.Equal(t, llm.KindGemini, cfg.Generation.Kind)
	assert.Equal(t, []string{"k1", "k2"}, cfg.Generation.APIKeys)
	assert.Equal(t, 4, cfg.Parallelism)
	assert.Equal(t, schema.Postgres, cfg.DatabaseDriver)
	assert.Equal(t, "postgres://localhost/app", cfg.DatabaseDSN)
}

func TestToAppConfig_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*EnvConfig)
		key    string
	}{
		{"index kind", func(e *EnvConfig) { e.IndexKind = "hnsw" }, "NLSQL_INDEX_KIND"},
		{"top k", func(e *EnvConfig) { e.TopK = 0 }, "NLSQL_TOP_K"},
		{"log level", func(e *EnvConfig) { e.LogLevel = "loud" }, "NLSQL_LOG_LEVEL"},
		{"log format", func(e *EnvConfig) { e.LogFormat = "xml" }, "NLSQL_LOG_FORMAT"},
		{"embedding provider", func(e *EnvConfig) { e.Embedding.Provider = "cohere" }, "NLSQL_EMBEDDING_PROVIDER"},
		{"generation keys", func(e *EnvConfig) { e.Generation.Provider = "openai" }, "NLSQL_GENERATION_API_KEYS"},
		{"generation provider", func(e *EnvConfig) { e.Generation.Provider = "bard" }, "NLSQL_GENERATION_PROVIDER"},
		{"driver", func(e *EnvConfig) { e.Database.Driver = "oracle" }, "NLSQL_DATABASE_DRIVER"},
		{"data dir", func(e *EnvConfig) { e.DataDir = " " }, "NLSQL_DATA_DIR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := LoadFromEnv()
			require.NoError(t, err)
			tt.mutate(&env)

			_, err = env.ToAppConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("missing file is ignored", func(t *testing.T) {
		require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")))
	})

	t.Run("file seeds the environment", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("NLSQL_TOP_K=7\nNLSQL_INDEX_KIND=cover\n"), 0o600))
		// Registered so the values are cleared after the test.
		t.Setenv("NLSQL_TOP_K", "")
		t.Setenv("NLSQL_INDEX_KIND", "")
		require.NoError(t, os.Unsetenv("NLSQL_TOP_K"))
		require.NoError(t, os.Unsetenv("NLSQL_INDEX_KIND"))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 7, cfg.TopK)
		assert.Equal(t, index.KindCover, cfg.IndexKind)
	})

	t.Run("environment wins over file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("NLSQL_TOP_K=7\n"), 0o600))
		t.Setenv("NLSQL_TOP_K", "2")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 2, cfg.TopK)
	})
}
