package handlers

import (
	"errors"
	"net/http"

	"air-demand-service/internal/domain"
	"air-demand-service/internal/platform/logging"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func writeError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// statusFor maps service errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrAirportNotFound), errors.Is(err, domain.ErrUnresolvedAirport):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrIndicatorUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError logs err and responds with its mapped status. Internal
// errors are not echoed to the client.
func writeServiceError(c *gin.Context, err error) {
	status := statusFor(err)
	logging.Named("api").Warn("request failed",
		zap.String("path", c.FullPath()),
		zap.Int("status", status),
		zap.Error(err),
	)

	if status == http.StatusInternalServerError {
		writeError(c, status, "internal error")
		return
	}
	writeError(c, status, err.Error())
}
