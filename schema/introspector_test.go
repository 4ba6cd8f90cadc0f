package schema

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/nlsql/engine"
	"github.com/viant/nlsql/metadata"
)

func newSQLiteIntrospector(t *testing.T) *Introspector {
	t.Helper()
	db, err := engine.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`
CREATE TABLE users (id INTEGER PRIMARY KEY, name VARCHAR(100) NOT NULL, email TEXT);
CREATE TABLE orders (id INTEGER PRIMARY KEY, user_id INTEGER NOT NULL, amount DECIMAL(10,2));
`)
	require.NoError(t, err)
	return New(db, SQLite)
}

func TestIntrospector_SQLite(t *testing.T) {
	ctx := context.Background()
	in := newSQLiteIntrospector(t)

	tables, err := in.Tables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"orders", "users"}, tables)

	users, err := in.Describe(ctx, "users")
	require.NoError(t, err)
	require.Len(t, users.Columns, 3)
	assert.Equal(t, "id", users.Columns[0].Name)
	assert.Equal(t, "PRI", users.Columns[0].Key)
	assert.False(t, users.Columns[0].Nullable)
	assert.Equal(t, "VARCHAR(100)", users.Columns[1].Type)
	assert.False(t, users.Columns[1].Nullable)
	assert.True(t, users.Columns[2].Nullable)

	_, err = in.Describe(ctx, "missing")
	assert.ErrorIs(t, err, ErrTableNotFound)

	snapshot, err := in.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snapshot, 2)
	assert.Equal(t, "orders", snapshot[0].Name)
}

func TestTable_DDLAndDocument(t *testing.T) {
	table := Table{Name: "orders"}
	table.Columns = append(table.Columns,
		columnOf("id", "INTEGER", false, "PRI"),
		columnOf("code", "TEXT", false, "UNI"),
		columnOf("note", "TEXT", true, ""),
	)
	assert.Equal(t, `CREATE TABLE orders (
  id INTEGER NOT NULL,
  code TEXT NOT NULL UNIQUE,
  note TEXT,
  PRIMARY KEY (id)
);`, table.DDL())

	doc := table.Document()
	assert.Equal(t, "orders", doc.TableName)
	assert.Len(t, doc.Columns, 3)
	assert.Empty(t, doc.EmbeddingText)
}

func TestParseDialect(t *testing.T) {
	for in, want := range map[string]Dialect{"mysql": MySQL, "Postgres": Postgres, "pgx": Postgres, "sqlite": SQLite} {
		got, err := ParseDialect(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseDialect("oracle")
	assert.Error(t, err)
}

func TestQuote(t *testing.T) {
	assert.Equal(t, "`a``b`", quoteMySQL("a`b"))
	assert.Equal(t, `"a""b"`, quoteSQL(`a"b`))
}

func columnOf(name, typ string, nullable bool, key string) metadata.Column {
	return metadata.Column{Name: name, Type: typ, Nullable: nullable, Key: key}
}
