package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaProvider_Embed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)
		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "nomic-embed-text", body["model"])
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"model":      "nomic-embed-text",
			"embeddings": [][]float32{{0.5, 0.5}},
		})
	}))
	defer srv.Close()

	p, err := NewOllamaProvider(Config{BaseURL: srv.URL})
	require.NoError(t, err)
	vec, err := p.Embed(context.Background(), "customers")
	require.NoError(t, err)
	require.Equal(t, []float32{0.5, 0.5}, vec)
	require.Equal(t, 2, p.Dimension())
}
