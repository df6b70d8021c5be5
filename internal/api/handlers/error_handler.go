package handlers

import (
	"context"
	"errors"
	"net/http"

	"passport-admin-go/internal/domain/passport"
	"passport-admin-go/internal/pkg/assembler"
	"passport-admin-go/internal/pkg/circuitbreaker"
	"passport-admin-go/internal/pkg/fetch"
	"passport-admin-go/internal/pkg/logger"
	"passport-admin-go/internal/pkg/recordstore"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func determineErrorStatus(err error) int {
	switch {
	case errors.Is(err, passport.ErrRecordNotFound),
		errors.Is(err, recordstore.ErrRecordNotFound),
		errors.Is(err, passport.ErrNoDocuments),
		errors.Is(err, fetch.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, passport.ErrUnknownTable),
		errors.Is(err, assembler.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, circuitbreaker.ErrCircuitOpen):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// respondError logs the failure and writes {"error": ...} with the mapped status.
func respondError(c *gin.Context, op string, err error) {
	status := determineErrorStatus(err)
	fields := []zap.Field{
		zap.String("operation", op),
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	}
	if id, ok := c.Get("request_id"); ok {
		fields = append(fields, zap.Any("request_id", id))
	}
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", fields...)
	} else {
		logger.Warn("Request rejected", fields...)
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}
