package router

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/reliefops/relief-api/internal/domain/models"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"

	metricsTimeout = 5 * time.Second
)

// MetricsRecorder persists one observed API call.
type MetricsRecorder interface {
	RecordAPIMetric(ctx context.Context, metric models.APIMetric) error
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String(requestIDKey, c.GetString(requestIDKey)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		logger.Info("request completed", fields...)
	}
}

// apiMetricsMiddleware records each call in the background once the handler returns.
func apiMetricsMiddleware(recorder MetricsRecorder, env string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		metric := models.APIMetric{
			Method:       c.Request.Method,
			EndpointName: endpointName(c),
			StatusCode:   c.Writer.Status(),
			DurationMs:   float64(time.Since(start).Microseconds()) / 1000,
			CalledAt:     start.UTC(),
			Env:          env,
		}
		requestID := c.GetString(requestIDKey)
		ctx := context.WithoutCancel(c.Request.Context())

		go func() {
			ctx, cancel := context.WithTimeout(ctx, metricsTimeout)
			defer cancel()

			if err := recorder.RecordAPIMetric(ctx, metric); err != nil {
				logger.Warn("failed to record api metric",
					zap.String("endpoint", metric.EndpointName),
					zap.String(requestIDKey, requestID),
					zap.Error(err))
			}
		}()
	}
}

// endpointName is the request path as received, e.g. /getAvailableItems.
func endpointName(c *gin.Context) string {
	return c.Request.URL.Path
}
