package api

import (
	"net/http"

	"github.com/okian/gradebase/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type healthResponse struct {
	Status string `json:"status"`
}

// handleHealth handles GET /healthz requests.
func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// metricsHandler serves the process registry in the Prometheus text format.
func metricsHandler() http.Handler {
	return promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})
}
