package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(collegeSearchTotal.WithLabelValues(SourceFallbackError))
	IncCollegeSearch(SourceFallbackError)
	after := testutil.ToFloat64(collegeSearchTotal.WithLabelValues(SourceFallbackError))
	if after-before != 1 {
		t.Fatalf("expected counter to increase by 1, got %v", after-before)
	}
}

func TestHandlerRendersRegisteredMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	IncReferenceFallback("states")
	IncAdvisorGeneration(OutcomeReady)
	ObserveGenerationDuration(1500 * time.Millisecond)
	IncMentorRequest(MentorRecorded)

	r := gin.New()
	r.GET("/metrics", Handler())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, name := range []string{
		`reference_fallback_total{kind="states"}`,
		`advisor_generation_total{outcome="ready"}`,
		"advisor_generation_duration_ms_bucket",
		`mentor_requests_processed_total{outcome="recorded"}`,
	} {
		if !strings.Contains(body, name) {
			t.Fatalf("expected %s in metrics output", name)
		}
	}
}
