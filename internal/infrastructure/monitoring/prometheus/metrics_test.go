package prometheus

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	return rec.Body.String()
}

func TestMetrics_RecordHTTPRequest(t *testing.T) {
	m := New()
	m.RecordHTTPRequest("GET", "/api/v1/documents", 200, 25*time.Millisecond)
	m.RecordHTTPRequest("GET", "/api/v1/documents", 200, 30*time.Millisecond)

	body := scrape(t, m)
	assert.Contains(t, body, `policylens_http_requests_total{method="GET",route="/api/v1/documents",status="200"} 2`)
	assert.Contains(t, body, "policylens_http_request_duration_seconds_count")
}

func TestMetrics_ObserveStage(t *testing.T) {
	m := New()
	m.ObserveStage("match", 120*time.Millisecond)

	body := scrape(t, m)
	assert.Contains(t, body, `policylens_pipeline_stage_duration_seconds_count{stage="match"} 1`)
}

func TestMetrics_CacheAccess(t *testing.T) {
	m := New()
	m.RecordCacheAccess(true)
	m.RecordCacheAccess(true)
	m.RecordCacheAccess(false)

	body := scrape(t, m)
	assert.Contains(t, body, "policylens_report_cache_hits_total 2")
	assert.Contains(t, body, "policylens_report_cache_misses_total 1")
}

func TestMetrics_CallOutcomes(t *testing.T) {
	m := New()
	m.RecordOracleCall("classify", nil)
	m.RecordOracleCall("classify", assert.AnError)
	m.RecordScorerCall(nil)

	body := scrape(t, m)
	assert.Contains(t, body, `policylens_oracle_calls_total{operation="classify",outcome="ok"} 1`)
	assert.Contains(t, body, `policylens_oracle_calls_total{operation="classify",outcome="error"} 1`)
	assert.Contains(t, body, `policylens_scorer_calls_total{outcome="ok"} 1`)
}

func TestMetrics_ComparisonAndIngest(t *testing.T) {
	m := New()
	m.RecordComparison("completed")
	m.RecordDocumentIngested("pdf")

	body := scrape(t, m)
	assert.Contains(t, body, `policylens_comparisons_total{status="completed"} 1`)
	assert.Contains(t, body, `policylens_documents_ingested_total{doc_type="pdf"} 1`)
}

func TestMetrics_IncludesRuntimeCollectors(t *testing.T) {
	body := scrape(t, New())
	assert.True(t, strings.Contains(body, "go_goroutines") || strings.Contains(body, "go_info"))
}
