package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Search sources.
const (
	SourceRemote        = "remote"
	SourceFallbackEmpty = "fallback_empty"
	SourceFallbackError = "fallback_error"
	SourceSuperseded    = "superseded"
)

// Generation outcomes.
const (
	OutcomeReady      = "ready"
	OutcomeFailed     = "failed"
	OutcomeDiscarded  = "discarded"
	OutcomeSuperseded = "superseded"
)

// Mentor request outcomes.
const (
	MentorRecorded  = "recorded"
	MentorDuplicate = "duplicate"
	MentorDropped   = "dropped"
	MentorFailed    = "failed"
)

var (
	registry = prometheus.NewRegistry()

	collegeSearchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "college_search_total",
		Help: "College searches by the source that served the result.",
	}, []string{"source"})

	referenceFallbackTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reference_fallback_total",
		Help: "Reference lookups served from bundled static data.",
	}, []string{"kind"})

	advisorGenerationTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "advisor_generation_total",
		Help: "Advisor generation requests by outcome.",
	}, []string{"outcome"})

	mentorRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mentor_requests_processed_total",
		Help: "Consumed mentor and enrollment requests by outcome.",
	}, []string{"outcome"})

	advisorGenerationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "advisor_generation_duration_ms",
		Help:    "Advisor generation duration in milliseconds.",
		Buckets: []float64{250, 500, 1000, 2000, 5000, 10000, 30000, 60000},
	})
)

func init() {
	registry.MustRegister(
		collegeSearchTotal,
		referenceFallbackTotal,
		advisorGenerationTotal,
		advisorGenerationDuration,
		mentorRequestsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// IncCollegeSearch counts a search served from source.
func IncCollegeSearch(source string) {
	collegeSearchTotal.WithLabelValues(source).Inc()
}

// IncReferenceFallback counts a states/districts lookup answered from static data.
func IncReferenceFallback(kind string) {
	referenceFallbackTotal.WithLabelValues(kind).Inc()
}

// IncAdvisorGeneration counts a generation by outcome.
func IncAdvisorGeneration(outcome string) {
	advisorGenerationTotal.WithLabelValues(outcome).Inc()
}

// IncMentorRequest counts a consumed mentor request by outcome.
func IncMentorRequest(outcome string) {
	mentorRequestsTotal.WithLabelValues(outcome).Inc()
}

// ObserveGenerationDuration records how long a generation call took.
func ObserveGenerationDuration(d time.Duration) {
	if d < 0 {
		d = 0
	}
	advisorGenerationDuration.Observe(float64(d) / float64(time.Millisecond))
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}
