package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/nlsql/answer"
	"github.com/viant/nlsql/embedding"
	"github.com/viant/nlsql/llm"
	"github.com/viant/nlsql/pipeline"
	"github.com/viant/nlsql/store"
)

type fakeSearcher struct {
	result store.SearchResult
	err    error
	topK   int
}

func (f *fakeSearcher) Search(_ context.Context, _ string, topK int) (store.SearchResult, error) {
	f.topK = topK
	return f.result, f.err
}

type fakeAsker struct {
	reply pipeline.Reply
	err   error
}

func (f *fakeAsker) Ask(_ context.Context, question string) (pipeline.Reply, error) {
	f.reply.Question = question
	return f.reply, f.err
}

func newTestServer(searcher Searcher, asker Asker) *httptest.Server {
	h := NewHandler(searcher, asker, 3)
	return httptest.NewServer(NewServer(":0", h, zerolog.Nop()).Router())
}

func post(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	srv := newTestServer(&fakeSearcher{}, &fakeAsker{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(CorrelationHeader))
}

func TestSearch(t *testing.T) {
	searcher := &fakeSearcher{result: store.SearchResult{{ID: "orders", Distance: 0}, {ID: "users", Distance: 2}}}
	srv := newTestServer(searcher, &fakeAsker{})
	defer srv.Close()

	t.Run("default top k", func(t *testing.T) {
		resp := post(t, srv.URL+"/api/v1/search", SearchRequest{Query: "orders per user"})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out SearchResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, []string{"orders", "users"}, out.Tables)
		assert.Len(t, out.Matches, 2)
		assert.Equal(t, 3, searcher.topK)
	})

	t.Run("explicit top k", func(t *testing.T) {
		resp := post(t, srv.URL+"/api/v1/search", SearchRequest{Query: "orders", TopK: 1})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 1, searcher.topK)
	})

	t.Run("blank query", func(t *testing.T) {
		resp := post(t, srv.URL+"/api/v1/search", SearchRequest{Query: "  "})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestSearch_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"no index", store.ErrIndexNotFound, http.StatusOK},
		{"provider down", embedding.NewServiceError("openai", "embed", 503, "unavailable", nil), http.StatusBadGateway},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"other", errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(&fakeSearcher{err: tt.err}, &fakeAsker{})
			defer srv.Close()

			resp := post(t, srv.URL+"/api/v1/search", SearchRequest{Query: "orders"})
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.status == http.StatusOK {
				var out SearchResponse
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
				assert.Empty(t, out.Tables)
				assert.NotNil(t, out.Tables)
			}
		})
	}
}

func TestAsk(t *testing.T) {
	asker := &fakeAsker{reply: pipeline.Reply{
		Tables: []string{"orders"},
		Answer: answer.Answer{Text: "raw", SQL: "SELECT 1", Explanation: "one"},
	}}
	srv := newTestServer(&fakeSearcher{}, asker)
	defer srv.Close()

	resp := post(t, srv.URL+"/api/v1/ask", AskRequest{Question: "How many orders?"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out pipeline.Reply
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "How many orders?", out.Question)
	assert.Equal(t, []string{"orders"}, out.Tables)
	assert.Equal(t, "SELECT 1", out.Answer.SQL)
}

func TestAsk_Errors(t *testing.T) {
	srv := newTestServer(&fakeSearcher{}, &fakeAsker{err: llm.ErrDisabled})
	defer srv.Close()

	resp := post(t, srv.URL+"/api/v1/ask", AskRequest{Question: "How many orders?"})
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)

	resp = post(t, srv.URL+"/api/v1/ask", AskRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	malformed, err := http.Post(srv.URL+"/api/v1/ask", "application/json", bytes.NewReader([]byte("{")))
	require.NoError(t, err)
	defer malformed.Body.Close()
	assert.Equal(t, http.StatusBadRequest, malformed.StatusCode)
}
