package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"campusbus/internal/handler"
	"campusbus/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	BusHandler        *handler.BusHandler
	AttendanceHandler *handler.AttendanceHandler
	TripHandler       *handler.TripHandler
	SOSHandler        *handler.SOSHandler
	WSHandler         *handler.WSHandler
	RedisClient       *redis.Client
	NewRelicApp       *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Socket endpoint for live updates.
	router.GET("/ws", deps.WSHandler.Handle)

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Bus roster routes.
		buses := v1.Group("/buses")
		{
			buses.POST("", deps.BusHandler.InitBus)
			buses.GET("", deps.BusHandler.GetBus)
			buses.POST("/passengers", deps.BusHandler.AddPassenger)
			buses.DELETE("/passengers", deps.BusHandler.RemovePassenger)
			buses.GET("/passengers", deps.BusHandler.GetMyPassengers)
		}

		// Passenger directory.
		v1.GET("/passengers", deps.BusHandler.GetAvailableRiders)

		// Daily commute declaration routes.
		attendance := v1.Group("/attendance")
		{
			attendance.POST("", deps.AttendanceHandler.Declare)
			attendance.GET("/coming", deps.AttendanceHandler.ComingToday)
		}

		// Trip lifecycle and tracking routes.
		trips := v1.Group("/trips")
		{
			trips.POST("/start", deps.TripHandler.StartTrip)
			trips.POST("/end", deps.TripHandler.EndTrip)
			trips.GET("/status", deps.TripHandler.GetStatus)
			trips.GET("/prediction/:userId", deps.TripHandler.GetPrediction)
			trips.GET("/route", deps.TripHandler.GetRoute)
			trips.GET("/location", deps.TripHandler.GetLiveLocation)
			trips.POST("/sos", deps.SOSHandler.Trigger)
			trips.GET("/sos", deps.SOSHandler.History)
		}
	}

	return router
}
