// prometheus.go - Prometheus text exposition of the in-process metrics
package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// handleMetrics writes the metrics in the Prometheus text format (0.0.4).
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	snap := s.metrics.Snapshot()
	var out strings.Builder

	writeMetric(&out, "portal_info", "gauge", "Application version info",
		fmt.Sprintf(`{version="%s",commit="%s"} 1`, prometheusLabel(s.cfg.Build.Version), prometheusLabel(s.cfg.Build.Commit)))

	writeMetric(&out, "portal_requests_total", "counter", "Total number of HTTP requests",
		fmt.Sprintf(" %d", snap.RequestsTotal))
	writeMetric(&out, "portal_request_errors_total", "counter", "HTTP responses with an error status",
		fmt.Sprintf(`{class="4xx"} %d`, snap.RequestErrors4xx),
		fmt.Sprintf(`{class="5xx"} %d`, snap.RequestErrors5xx))

	writeMetric(&out, "portal_uploads_total", "counter", "Total number of stored uploads",
		fmt.Sprintf(" %d", snap.UploadsTotal))
	writeMetric(&out, "portal_upload_bytes_total", "counter", "Bytes written by uploads",
		fmt.Sprintf(" %d", snap.UploadBytesTotal))
	writeMetric(&out, "portal_upload_errors_total", "counter", "Uploads that could not be stored",
		fmt.Sprintf(" %d", snap.UploadErrorsTotal))
	writeMetric(&out, "portal_upload_duration_avg_ms", "gauge", "Mean time to store an upload in milliseconds",
		fmt.Sprintf(" %.2f", snap.UploadAvgDurationMs))

	writeMetric(&out, "portal_downloads_total", "counter", "Total number of files served",
		fmt.Sprintf(" %d", snap.DownloadsTotal))
	writeMetric(&out, "portal_download_bytes_total", "counter", "Size of files served",
		fmt.Sprintf(" %d", snap.DownloadBytesTotal))
	writeMetric(&out, "portal_download_errors_total", "counter", "Fetches that failed with a storage error",
		fmt.Sprintf(" %d", snap.DownloadErrorsTotal))
	writeMetric(&out, "portal_download_duration_avg_ms", "gauge", "Mean time to serve a file in milliseconds",
		fmt.Sprintf(" %.2f", snap.DownloadAvgDurationMs))

	writeMetric(&out, "portal_login_attempts_total", "counter", "Total number of login attempts",
		fmt.Sprintf(" %d", snap.LoginAttemptsTotal))
	writeMetric(&out, "portal_login_success_total", "counter", "Total number of successful logins",
		fmt.Sprintf(" %d", snap.LoginSuccessTotal))
	writeMetric(&out, "portal_login_failures_total", "counter", "Total number of failed logins",
		fmt.Sprintf(" %d", snap.LoginFailuresTotal))

	writeMetric(&out, "portal_active_sessions", "gauge", "Sessions currently registered",
		fmt.Sprintf(" %d", s.cfg.Auth.ActiveSessions()))
	writeMetric(&out, "portal_uptime_seconds", "counter", "Application uptime in seconds",
		fmt.Sprintf(" %.0f", time.Since(s.started).Seconds()))

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, out.String())
}

// writeMetric emits HELP and TYPE lines and one sample per suffix; each
// suffix is either " <value>" or "{labels} <value>".
func writeMetric(out *strings.Builder, name, kind, help string, samples ...string) {
	fmt.Fprintf(out, "# HELP %s %s\n# TYPE %s %s\n", name, help, name, kind)
	for _, s := range samples {
		out.WriteString(name + s + "\n")
	}
	out.WriteString("\n")
}

// prometheusLabel escapes a label value.
func prometheusLabel(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `"`, `\"`)
	value = strings.ReplaceAll(value, "\n", `\n`)
	return value
}
