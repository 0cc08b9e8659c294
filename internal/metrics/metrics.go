package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Latencia HTTP por ruta (segundos).
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "path", "status"},
	)

	// Latencia de llamadas al composer (segundos).
	ComposeCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "compose_call_duration_seconds",
			Help:    "Email composition call duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"operation", "outcome"},
	)

	// Borradores generados por tipo de correo.
	DraftGeneratedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "draft_generated_count",
			Help: "Total number of drafts generated",
		},
		[]string{"email_type"},
	)

	// Transcripciones armadas por resultado.
	TranscriptBuildCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transcript_build_count",
			Help: "Total number of transcript builds",
		},
		[]string{"status"},
	)
)

// RecordHTTPRequestDuration registra la latencia de una request HTTP.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordComposeCall registra la latencia de una composicion o revision.
func RecordComposeCall(operation, outcome string, duration time.Duration) {
	ComposeCallDuration.WithLabelValues(operation, outcome).Observe(duration.Seconds())
}

// IncrementDraftGenerated suma un borrador generado.
func IncrementDraftGenerated(emailType string) {
	DraftGeneratedCount.WithLabelValues(emailType).Inc()
}

// IncrementTranscriptBuild suma una transcripcion armada.
func IncrementTranscriptBuild(status string) {
	TranscriptBuildCount.WithLabelValues(status).Inc()
}
