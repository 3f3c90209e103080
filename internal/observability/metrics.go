package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	apiRequestsTotal       *prometheus.CounterVec
	apiLatencySeconds      *prometheus.HistogramVec
	apiErrorsTotal         *prometheus.CounterVec
	lessonCompletionsTotal *prometheus.CounterVec
	reviewDecisionsTotal   *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bootcamp_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bootcamp_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bootcamp_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		lessonCompletionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bootcamp_lesson_completions_total",
			Help: "Lesson completions recorded, labelled by how they were triggered.",
		}, []string{"source"})

		reviewDecisionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bootcamp_review_decisions_total",
			Help: "Terminal review decisions recorded for submissions.",
		}, []string{"status"})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			lessonCompletionsTotal,
			reviewDecisionsTotal,
		)
	})
}

// Requests exposes the counter for API requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// Latency exposes the latency histogram for API requests.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// Errors exposes the counter for API error responses.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// LessonCompletions exposes the counter for recorded lesson completions.
func LessonCompletions() *prometheus.CounterVec {
	RegisterMetrics()
	return lessonCompletionsTotal
}

// ReviewDecisions exposes the counter for submission review decisions.
func ReviewDecisions() *prometheus.CounterVec {
	RegisterMetrics()
	return reviewDecisionsTotal
}
