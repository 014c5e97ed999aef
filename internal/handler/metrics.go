package handler

import (
	"fmt"
	"net/http"

	"github.com/kizofa/kizofa/internal/metrics"
)

// MetricsHandler exposes in-memory metrics. Routed behind admin auth.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
// GET /api/v1/admin/metrics
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "kizofa_users_registered_total %d\n", snap.UsersRegistered)
	writeMetric(w, "kizofa_registrations_rejected_total{reason=\"email_taken\"} %d\n", snap.EmailTaken)

	writeMetric(w, "kizofa_logins_total{status=\"success\"} %d\n", snap.LoginSuccesses)
	writeMetric(w, "kizofa_logins_total{status=\"failure\"} %d\n", snap.LoginFailures)

	writeMetric(w, "kizofa_tokens_rejected_total{kind=\"malformed\"} %d\n", snap.TokensMalformed)
	writeMetric(w, "kizofa_tokens_rejected_total{kind=\"invalid_signature\"} %d\n", snap.TokensInvalidSignature)
	writeMetric(w, "kizofa_tokens_rejected_total{kind=\"expired\"} %d\n", snap.TokensExpired)

	writeMetric(w, "kizofa_requests_rate_limited_total %d\n", snap.RateLimited)

	writeMetric(w, "kizofa_password_hash_duration_seconds_count %d\n", snap.HashDurationCount)
	writeMetric(w, "kizofa_password_hash_duration_seconds_sum %.6f\n", float64(snap.HashDurationTotalNs)/1e9)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
