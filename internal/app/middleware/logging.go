package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jestelle/slash-podcast/internal/app/diagnostics"
	"github.com/jestelle/slash-podcast/internal/infrastructure/logging"
	"github.com/jestelle/slash-podcast/internal/infrastructure/monitoring"
)

// RequestLogger logs request info and records metrics.
func RequestLogger(logger *zap.Logger, buffer *diagnostics.LogBuffer) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID, _ := c.Get("request_id")
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		id := ""
		if reqID != nil {
			if v, ok := reqID.(string); ok {
				id = v
			}
		}
		logging.WithRequestID(logger, id).Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", latency),
		)
		if buffer != nil {
			buffer.Append(diagnostics.Entry{
				Time:      time.Now().UTC(),
				Method:    c.Request.Method,
				Path:      path,
				Status:    status,
				RequestID: id,
			})
		}
		monitoring.ObserveRequest(path, c.Request.Method, strconv.Itoa(status), latency.Seconds())
	}
}
