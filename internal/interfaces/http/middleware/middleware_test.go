package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/policylens/internal/testutil"
)

func serve(handler http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestRequestLogging_LevelsByStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		level  string
		msg    string
	}{
		{"success logs info", http.StatusOK, "info", "request served"},
		{"client error logs warn", http.StatusNotFound, "warn", "request rejected"},
		{"server error logs error", http.StatusInternalServerError, "error", "request failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := testutil.NewMockLogger()
			handler := RequestLogging(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			serve(handler, "GET", "/api/v1/documents")

			entries := log.EntriesAt(tt.level)
			require.Len(t, entries, 1)
			assert.Equal(t, tt.msg, entries[0].Message)
		})
	}
}

func TestRequestLogging_SkipsProbePaths(t *testing.T) {
	log := testutil.NewMockLogger()
	handler := RequestLogging(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		serve(handler, "GET", path)
	}

	assert.Empty(t, log.Entries())
}

func TestRequestLogging_CapturesBytesWritten(t *testing.T) {
	log := testutil.NewMockLogger()
	handler := RequestLogging(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hello"))
	}))

	serve(handler, "GET", "/x")

	entries := log.Entries()
	require.Len(t, entries, 1)
	var bytes int64
	for _, f := range entries[0].Fields {
		if f.Key == "bytes" {
			bytes = f.Value.(int64)
		}
	}
	assert.Equal(t, int64(5), bytes)
}

type recordedRequest struct {
	method string
	route  string
	status int
}

type stubRecorder struct {
	requests []recordedRequest
}

func (s *stubRecorder) RecordHTTPRequest(method, route string, status int, _ time.Duration) {
	s.requests = append(s.requests, recordedRequest{method: method, route: route, status: status})
}

func TestRequestMetrics_UsesRoutePattern(t *testing.T) {
	rec := &stubRecorder{}

	r := chi.NewRouter()
	r.Use(RequestMetrics(rec))
	r.Get("/documents/{id}", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	serve(r, "GET", "/documents/abc-123")

	require.Len(t, rec.requests, 1)
	assert.Equal(t, "GET", rec.requests[0].method)
	assert.Equal(t, "/documents/{id}", rec.requests[0].route)
	assert.Equal(t, http.StatusOK, rec.requests[0].status)
}

func TestRequestMetrics_SkipsProbePaths(t *testing.T) {
	rec := &stubRecorder{}
	handler := RequestMetrics(rec)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	serve(handler, "GET", "/metrics")

	assert.Empty(t, rec.requests)
}
