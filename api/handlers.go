package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/viant/nlsql/embedding"
	"github.com/viant/nlsql/llm"
	"github.com/viant/nlsql/pipeline"
	"github.com/viant/nlsql/store"
)

// Searcher ranks tables for a free-text query.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) (store.SearchResult, error)
}

// Asker answers a question.
type Asker interface {
	Ask(ctx context.Context, question string) (pipeline.Reply, error)
}

// Handler serves the v1 endpoints.
type Handler struct {
	searcher Searcher
	asker    Asker
	topK     int
}

// NewHandler returns a Handler; topK is the default for search requests.
func NewHandler(searcher Searcher, asker Asker, topK int) *Handler {
	return &Handler{searcher: searcher, asker: asker, topK: topK}
}

// SearchRequest is the body of POST /api/v1/search.
type SearchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

// SearchResponse lists ranked tables, closest first.
type SearchResponse struct {
	Tables  []string      `json:"tables"`
	Matches []store.Match `json:"matches"`
}

// AskRequest is the body of POST /api/v1/ask.
type AskRequest struct {
	Question string `json:"question"`
}

// Health handles GET /healthz.
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Search handles POST /api/v1/search. A missing index yields no tables.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var body SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(body.Query) == "" {
		writeError(w, r, http.StatusBadRequest, errors.New("query is required"))
		return
	}
	topK := body.TopK
	if topK <= 0 {
		topK = h.topK
	}
	result, err := h.searcher.Search(r.Context(), body.Query, topK)
	if err != nil && !errors.Is(err, store.ErrIndexNotFound) {
		writeError(w, r, statusOf(err), err)
		return
	}
	if result == nil {
		result = store.SearchResult{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Tables: result.IDs(), Matches: result})
}

// Ask handles POST /api/v1/ask.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	var body AskRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(body.Question) == "" {
		writeError(w, r, http.StatusBadRequest, errors.New("question is required"))
		return
	}
	reply, err := h.asker.Ask(r.Context(), body.Question)
	if err != nil {
		writeError(w, r, statusOf(err), err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func statusOf(err error) int {
	var serviceErr *embedding.ServiceError
	switch {
	case errors.Is(err, embedding.ErrEmptyText):
		return http.StatusBadRequest
	case errors.Is(err, llm.ErrDisabled):
		return http.StatusNotImplemented
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &serviceErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	logger := zerolog.Ctx(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Int("status", status).Msg("request failed")
	} else {
		logger.Debug().Err(err).Int("status", status).Msg("request rejected")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
