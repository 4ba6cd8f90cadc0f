package api

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/viant/nlsql/internal/log"
)

// CorrelationHeader carries the request correlation id.
const CorrelationHeader = "X-Correlation-ID"

// CorrelationID attaches a request-scoped logger to the context, tagged
// with the caller's correlation id, chi's request id, or a fresh one.
func CorrelationID(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(CorrelationHeader)
			if id == "" {
				id = chimiddleware.GetReqID(r.Context())
			}
			var reqLogger zerolog.Logger
			if id == "" {
				reqLogger, id = log.WithCorrelationID(logger)
			} else {
				reqLogger = logger.With().Str(log.CorrelationIDKey, id).Logger()
			}
			w.Header().Set(CorrelationHeader, id)
			next.ServeHTTP(w, r.WithContext(reqLogger.WithContext(r.Context())))
		})
	}
}

// Logging logs each completed request.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			zerolog.Ctx(r.Context()).Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Int64("duration_ms", time.Since(start).Milliseconds()).
				Msg("request completed")
		}()
		next.ServeHTTP(ww, r)
	})
}
