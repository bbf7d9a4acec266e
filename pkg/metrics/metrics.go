package metrics

import (
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestCounter conta o total de requisições HTTP por método/rota/status.
	HTTPRequestCounter *prometheus.CounterVec

	// HTTPRequestDuration observa a duração das requisições HTTP.
	HTTPRequestDuration *prometheus.HistogramVec

	// AppInfo expõe informações sobre a aplicação.
	AppInfo *prometheus.GaugeVec
)

func init() {
	appVersion := os.Getenv("APP_VERSION")
	if appVersion == "" {
		appVersion = "unknown"
	}

	HTTPRequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eduflix_http_requests_total",
			Help: "Total number of HTTP requests processed.",
		},
		[]string{"method", "path", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eduflix_http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "eduflix_app_info",
			Help: "Information about the Eduflix backend.",
		},
		[]string{"version"},
	)
	AppInfo.With(prometheus.Labels{"version": appVersion}).Set(1)
}
