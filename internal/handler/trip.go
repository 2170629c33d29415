package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"campusbus/internal/domain"
	"campusbus/internal/service"
)

// TripHandler handles HTTP requests for trip lifecycle and live tracking.
type TripHandler struct {
	tripService     *service.TripService
	locationService *service.LocationService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripService *service.TripService, locationService *service.LocationService) *TripHandler {
	return &TripHandler{
		tripService:     tripService,
		locationService: locationService,
	}
}

// StartTripRequest is the HTTP request body for starting a trip.
type StartTripRequest struct {
	DriverID string   `json:"driver_id"`
	Lat      *float64 `json:"lat"`
	Lng      *float64 `json:"lng"`
}

// EndTripRequest is the HTTP request body for ending a trip.
type EndTripRequest struct {
	DriverID string `json:"driver_id"`
}

// StartTrip handles POST /v1/trips/start
func (h *TripHandler) StartTrip(c *gin.Context) {
	var req StartTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.Lat == nil || req.Lng == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "lat and lng are required"})
		return
	}

	start := domain.Coordinate{Lat: *req.Lat, Lng: *req.Lng}
	startTime, err := h.tripService.StartTrip(c.Request.Context(), req.DriverID, start, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Trip started. Arrival predictions ready.",
		"start_time": startTime,
	})
}

// EndTrip handles POST /v1/trips/end
func (h *TripHandler) EndTrip(c *gin.Context) {
	var req EndTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.tripService.EndTrip(c.Request.Context(), req.DriverID, time.Now()); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Trip ended. Tracking stopped."})
}

// GetStatus handles GET /v1/trips/status?driver_id=
// Driver apps poll this on reconnect to learn whether a trip is running.
func (h *TripHandler) GetStatus(c *gin.Context) {
	driverID := c.Query("driver_id")

	trip, err := h.tripService.GetActiveTrip(c.Request.Context(), driverID)
	if err != nil {
		respondError(c, err)
		return
	}

	if trip == nil {
		c.JSON(http.StatusOK, gin.H{"status": "NONE"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     string(trip.Status),
		"trip_id":    trip.ID,
		"start_time": trip.StartTime,
	})
}

// GetPrediction handles GET /v1/trips/prediction/:userId
func (h *TripHandler) GetPrediction(c *gin.Context) {
	userID := c.Param("userId")

	view, err := h.tripService.GetPredictionFor(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// GetRoute handles GET /v1/trips/route?driver_id=
func (h *TripHandler) GetRoute(c *gin.Context) {
	driverID := c.Query("driver_id")

	route, err := h.tripService.BuildRoute(c.Request.Context(), driverID, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, route)
}

// GetLiveLocation handles GET /v1/trips/location?driver_id=
// An offline bus is a normal outcome, reported as status OFFLINE.
func (h *TripHandler) GetLiveLocation(c *gin.Context) {
	driverID := c.Query("driver_id")

	loc, err := h.locationService.GetLocation(c.Request.Context(), driverID)
	if err != nil {
		respondError(c, err)
		return
	}

	if loc == nil {
		c.JSON(http.StatusOK, gin.H{"status": "OFFLINE", "message": "Bus is not running currently."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ONLINE", "data": loc})
}
