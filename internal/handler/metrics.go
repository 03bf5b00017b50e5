package handler

import (
	"fmt"
	"net/http"

	"github.com/tasktrack/tasktrack/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "tasktrack_signups_total %d\n", snap.Signups)
	writeMetric(w, "tasktrack_logins_total{result=\"success\"} %d\n", snap.LoginsSucceeded)
	writeMetric(w, "tasktrack_logins_total{result=\"failure\"} %d\n", snap.LoginsFailed)
	writeMetric(w, "tasktrack_password_hashes_legacy_total %d\n", snap.LegacyHashes)
	writeMetric(w, "tasktrack_password_hash_upgrades_total %d\n", snap.HashUpgrades)

	writeMetric(w, "tasktrack_todos_created_total %d\n", snap.TodosCreated)
	writeMetric(w, "tasktrack_todos_updated_total %d\n", snap.TodosUpdated)
	writeMetric(w, "tasktrack_todos_deleted_total %d\n", snap.TodosDeleted)

	writeMetric(w, "tasktrack_http_requests_total{class=\"2xx\"} %d\n", snap.Requests2xx)
	writeMetric(w, "tasktrack_http_requests_total{class=\"4xx\"} %d\n", snap.Requests4xx)
	writeMetric(w, "tasktrack_http_requests_total{class=\"5xx\"} %d\n", snap.Requests5xx)
	writeMetric(w, "tasktrack_http_request_duration_seconds_count %d\n", snap.RequestCount)
	writeMetric(w, "tasktrack_http_request_duration_seconds_sum %.6f\n", float64(snap.RequestTotalNs)/1e9)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
