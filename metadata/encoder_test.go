package metadata

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/nlsql/embedding"
)

func stubProvider(t *testing.T) embedding.Provider {
	t.Helper()
	return embedding.NewFunc(2, func(ctx context.Context, text string) ([]float32, error) {
		if strings.Contains(text, "explode") {
			return nil, errors.New("upstream down")
		}
		return []float32{float32(len(text)), 1}, nil
	})
}

func TestEncoder_Encode(t *testing.T) {
	enc := NewEncoder(stubProvider(t))

	record, err := enc.Encode(context.Background(), "orders", Document{
		TableName:         "orders",
		SchemaDescription: "Customer orders",
		Columns:           []Column{{Name: "id", Type: "INT", Key: "PRI"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "orders", record.ID)
	assert.Equal(t, "orders", record.Name)
	assert.Equal(t, "Customer orders", record.Summary)
	assert.Equal(t, "Table orders: Customer orders", record.EmbeddingText)
	assert.Len(t, record.Columns, 1)
	assert.Empty(t, record.Raw)
	assert.True(t, record.Embedded())
}

func TestEncoder_EncodeRawText(t *testing.T) {
	record, err := NewEncoder(stubProvider(t)).Encode(context.Background(), "notes", "free text about notes")
	require.NoError(t, err)
	assert.Equal(t, "free text about notes", record.Raw)
	assert.Equal(t, "free text about notes", record.EmbeddingText)
	assert.True(t, record.Embedded())
}

func TestEncoder_EncodeFailures(t *testing.T) {
	enc := NewEncoder(stubProvider(t))

	record, err := enc.Encode(context.Background(), "bad", `{"embedding_text": 42}`)
	var encErr *EncodingError
	require.True(t, errors.As(err, &encErr))
	assert.False(t, record.Embedded())
	assert.Equal(t, "bad", record.ID)

	record, err = enc.Encode(context.Background(), "boom", `{"embedding_text": "explode"}`)
	var svcErr *embedding.ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.False(t, record.Embedded())
	assert.Equal(t, "explode", record.EmbeddingText)

	_, err = enc.Encode(context.Background(), "  ", "x")
	require.True(t, errors.As(err, &encErr))
}

func TestEncoder_EncodeAllIsolatesFailures(t *testing.T) {
	tables := []RawTable{
		{ID: "users", Value: `{"table_name":"users","schema_description":"People"}`},
		{ID: "orders", Value: map[string]any{"embedding_text": []int{1}}},
		{ID: "products", Value: "products and prices"},
		{ID: "payments", Value: Document{EmbeddingText: "Payments by order"}},
	}
	records, err := NewEncoder(stubProvider(t)).EncodeAll(context.Background(), tables)
	require.NoError(t, err)
	require.Len(t, records, len(tables))

	embedded := 0
	for i, r := range records {
		assert.Equal(t, tables[i].ID, r.ID, "input order kept")
		if r.Embedded() {
			embedded++
		}
	}
	assert.Equal(t, len(tables)-1, embedded)
	assert.False(t, records[1].Embedded())
}

func TestEncoder_EncodeAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewEncoder(stubProvider(t)).EncodeAll(ctx, []RawTable{{ID: "a", Value: "a"}})
	assert.ErrorIs(t, err, context.Canceled)
}
