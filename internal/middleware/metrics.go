package middleware

import (
	"strconv"
	"time"

	appmetrics "eduflix/backend/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics é um middleware Gin que coleta métricas Prometheus por requisição.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		method := c.Request.Method

		// c.FullPath() devolve o template da rota, mantendo a cardinalidade
		// dos labels sob controle. Vazio significa rota não registrada.
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		latency := time.Since(start)

		if appmetrics.HTTPRequestCounter != nil {
			appmetrics.HTTPRequestCounter.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
		}
		if appmetrics.HTTPRequestDuration != nil {
			appmetrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(latency.Seconds())
		}
	}
}
