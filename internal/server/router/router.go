package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/reliefops/relief-api/internal/server/handlers"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New wires the Gin engine with required routes and middlewares.
// A nil recorder disables API call metrics. A nil store makes /healthz
// report liveness only.
func New(availability *handlers.AvailabilityHandler, donations *handlers.DonationHandler, recorder MetricsRecorder, store Pinger, env string, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", healthHandler(store, logger))

	api := r.Group("/")
	if recorder != nil {
		api.Use(apiMetricsMiddleware(recorder, env, logger.Named("metrics")))
	}

	api.GET("/getIndividualAvailableItems", availability.GetIndividualAvailableItems)
	api.GET("/getAvailableItems", availability.GetAvailableItems)

	api.POST("/campDonationRequest", donations.CampDonationRequest)
	api.GET("/items", donations.Items)
	api.POST("/generalDonation", donations.GeneralDonation)
	api.POST("/confirmDonation", donations.ConfirmDonation)
	api.POST("/processDonation", donations.ProcessDonation)
	api.GET("/getGeneralDonation", donations.GetGeneralDonation)

	logger.Info("router initialized", zap.String("env", env))

	return r
}

func healthHandler(store Pinger, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store != nil {
			if err := store.Ping(c.Request.Context()); err != nil {
				logger.Warn("health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
