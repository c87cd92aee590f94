package api

import (
	"strings"
	"time"

	"air-demand-service/internal/platform/logging"
	"air-demand-service/internal/platform/obs"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

// requestIDMiddleware propagates the caller's request id or assigns a new one,
// echoing it in the response and storing it on the request context.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}

		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(obs.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// loggingMiddleware logs end-to-end request duration and response size.
func loggingMiddleware() gin.HandlerFunc {
	log := logging.Named("http")

	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		log.Info("request",
			zap.String("req_id", obs.RequestID(c.Request.Context())),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.RequestURI()),
			zap.Int("status", c.Writer.Status()),
			zap.Int("bytes", c.Writer.Size()),
			zap.Int64("dur_ms", time.Since(start).Milliseconds()),
		)
	}
}
