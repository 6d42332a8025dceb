// Package middleware holds the HTTP middleware shared by every route:
// request logging and panic recovery. Both are plain http.Handler
// wrappers with no coupling to the API's response format.
package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// statusWriter records the status and byte count a handler produced.
// It forwards Flush so the SSE stream keeps working behind it.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (sw *statusWriter) WriteHeader(status int) {
	sw.status = status
	sw.ResponseWriter.WriteHeader(status)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	n, err := sw.ResponseWriter.Write(b)
	sw.bytes += n
	return n, err
}

func (sw *statusWriter) Flush() {
	if flusher, ok := sw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Logging logs one line per completed request: method, path, status,
// response size, and how long the handler ran. For an SSE client the
// line appears when the stream ends, with the full stream duration.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			logger.Info("http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", sw.status),
				slog.Int("size", sw.bytes),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}
