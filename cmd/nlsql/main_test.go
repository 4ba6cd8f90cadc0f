package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommands(t *testing.T) {
	cmd := rootCmd()
	for _, name := range []string{"train", "ask", "search", "describe", "reindex", "verify", "stats", "serve", "version"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}
	assert.NotNil(t, cmd.PersistentFlags().Lookup("env-file"))
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "nlsql version dev")
}

func TestTrainRequiresDatabase(t *testing.T) {
	t.Setenv("NLSQL_DATA_DIR", t.TempDir())
	t.Setenv("NLSQL_LOG_LEVEL", "ERROR")

	_, err := run(t, "train", "--env-file", t.TempDir()+"/missing.env")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NLSQL_DATABASE_DSN")
}

func TestSearchWithoutIndex(t *testing.T) {
	t.Setenv("NLSQL_DATA_DIR", t.TempDir())
	t.Setenv("NLSQL_LOG_LEVEL", "ERROR")

	_, err := run(t, "search", "--env-file", t.TempDir()+"/missing.env", "orders")
	require.Error(t, err)
}

func TestReindexRejectsUnknownKind(t *testing.T) {
	t.Setenv("NLSQL_DATA_DIR", t.TempDir())
	t.Setenv("NLSQL_LOG_LEVEL", "ERROR")

	_, err := run(t, "reindex", "--env-file", t.TempDir()+"/missing.env", "--kind", "hnsw")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown kind")
}
