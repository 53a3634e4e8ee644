package metrics

import (
	"time"

	"github.com/clipcal/clipcal/internal/observability"
)

// Admission outcome labels.
const (
	AdmissionAllowed        = "allowed"
	AdmissionRateLimited    = "rate_limited"
	AdmissionSuspicious     = "suspicious_origin"
	AdmissionInvalidContent = "invalid_content"
)

// Extraction path labels.
const (
	ExtractionPathAI       = "ai"
	ExtractionPathFallback = "fallback"
)

// RecordAdmission counts an admission decision by outcome.
func RecordAdmission(outcome string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			"admission_decisions_total",
			1,
			map[string]string{"outcome": outcome},
		)
	}
}

// RecordExtraction counts a completed extraction by path and usability of
// the pre-default result.
func RecordExtraction(path string, usable bool) {
	status := "usable"
	if !usable {
		status = "empty"
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			"extractions_total",
			1,
			map[string]string{
				"path":   path,
				"status": status,
			},
		)
	}
}

// RecordExtractionDuration tracks end-to-end processing time per path.
func RecordExtractionDuration(path string, duration time.Duration) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Histogram(
			"extraction_duration_ms",
			duration,
			map[string]string{"path": path},
		)
	}
}

// SetTrackedClients records how many clients the counter store currently
// tracks; updated by the sweep.
func SetTrackedClients(count int64) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(
			"admission_tracked_clients",
			float64(count),
			nil,
		)
	}
}
