// Package metrics exposes the Prometheus instruments of the indexer and the
// query server.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Reasons a record does not reach the vector store.
const (
	DropMalformed = "malformed"
	DropNoTerms   = "no_terms"
)

var (
	// Pipeline
	RecordsLoaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "syllabus_records_loaded_total",
			Help: "Total number of upstream course records read",
		},
	)

	RecordsIndexed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "syllabus_records_indexed_total",
			Help: "Total number of courses written to the vector store",
		},
	)

	RecordsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syllabus_records_dropped_total",
			Help: "Total number of records excluded from the vector store",
		},
		[]string{"reason"},
	)

	TokenizerFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syllabus_tokenizer_failures_total",
			Help: "Total number of records whose tokenization failed",
		},
		[]string{"tokenizer"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "syllabus_stage_duration_seconds",
			Help:    "Duration of pipeline stages in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	VocabularySize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "syllabus_vocabulary_size",
			Help: "Number of terms in the last fitted vocabulary",
		},
	)

	// API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syllabus_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "syllabus_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"route"},
	)
)

// ObserveStage records how long a pipeline stage took since start.
func ObserveStage(stage string, start time.Time) {
	StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// RecordAPIRequest counts one request and its latency.
func RecordAPIRequest(route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}
