// Package middleware holds the HTTP middleware chain: request logging and
// request metrics.
package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/policylens/internal/infrastructure/monitoring/logging"
)

// skipPaths are high-frequency probe paths that only add log noise.
var skipPaths = map[string]bool{
	"/healthz": true,
	"/readyz":  true,
	"/metrics": true,
}

// wrappedWriter captures the status code and bytes written.
type wrappedWriter struct {
	http.ResponseWriter
	status      int
	bytes       int64
	wroteHeader bool
}

func (w *wrappedWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *wrappedWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += int64(n)
	return n, err
}

// RequestLogging logs one line per served request.  5xx responses log at
// error level, 4xx at warn.
func RequestLogging(log logging.Logger) func(http.Handler) http.Handler {
	log = log.Named("http")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			ww := &wrappedWriter{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(ww, r)

			fields := []logging.Field{
				logging.String("method", r.Method),
				logging.String("path", r.URL.Path),
				logging.Int("status", ww.status),
				logging.Duration("duration", time.Since(start)),
				logging.Int64("bytes", ww.bytes),
				logging.String("request_id", chimw.GetReqID(r.Context())),
			}
			switch {
			case ww.status >= 500:
				log.Error("request failed", fields...)
			case ww.status >= 400:
				log.Warn("request rejected", fields...)
			default:
				log.Info("request served", fields...)
			}
		})
	}
}
