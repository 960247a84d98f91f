package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/scry-words/internal/api/shared"
	"github.com/phrazzld/scry-words/internal/platform/logger"
)

// TraceMiddleware copies the caller's X-Request-ID (or a fresh one) into the
// request context so handlers and error responses can report it.
func TraceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := shared.SetTraceID(r.Context(), r.Header.Get(shared.RequestIDHeader))
		traceID := shared.GetTraceID(ctx)

		slog.Debug("request started",
			slog.String("trace_id", traceID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path))

		w.Header().Set(shared.RequestIDHeader, traceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Trace is the client-side counterpart of TraceMiddleware: it stamps every
// outgoing request with an X-Request-ID (the context's request id when set)
// and logs the round trip at debug level.
func Trace(log *slog.Logger) Middleware {
	if log == nil {
		log = slog.Default()
	}
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			id, ok := logger.RequestID(r.Context())
			if !ok {
				id = shared.GetTraceID(shared.SetTraceID(r.Context(), ""))
			}
			r = r.Clone(r.Context())
			r.Header.Set(shared.RequestIDHeader, id)

			start := time.Now()
			log.Debug("request started",
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path)

			resp, err := next.RoundTrip(r)

			attrs := []any{
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
				"duration_ms", time.Since(start).Milliseconds(),
			}
			if resp != nil {
				attrs = append(attrs, "status", resp.StatusCode)
			}
			log.Debug("request finished", attrs...)
			return resp, err
		})
	}
}
