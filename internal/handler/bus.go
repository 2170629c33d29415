package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campusbus/internal/domain"
	"campusbus/internal/service"
)

// BusHandler handles HTTP requests for bus rosters.
type BusHandler struct {
	rosterService *service.RosterService
}

// NewBusHandler creates a new BusHandler.
func NewBusHandler(rosterService *service.RosterService) *BusHandler {
	return &BusHandler{rosterService: rosterService}
}

// InitBusRequest is the HTTP request body for creating/updating a bus.
type InitBusRequest struct {
	DriverID  string `json:"driver_id"`
	BusNumber string `json:"bus_number"`
}

// BusResponse is the HTTP response for bus data.
type BusResponse struct {
	DriverID   string   `json:"driver_id"`
	BusNumber  string   `json:"bus_number"`
	Passengers []string `json:"passengers"`
}

// PassengerRequest is the HTTP request body for roster mutations.
type PassengerRequest struct {
	DriverID    string `json:"driver_id"`
	PassengerID string `json:"passenger_id"`
}

// PassengerResponse is the HTTP response for passenger identity data.
type PassengerResponse struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Email        string             `json:"email"`
	Role         string             `json:"role"`
	HomeLocation *domain.Coordinate `json:"home_location,omitempty"`
}

func toPassengerResponses(passengers []*domain.Passenger) []PassengerResponse {
	out := make([]PassengerResponse, 0, len(passengers))
	for _, p := range passengers {
		out = append(out, PassengerResponse{
			ID:           p.ID,
			Name:         p.Name,
			Email:        p.Email,
			Role:         string(p.Role),
			HomeLocation: p.HomeLocation,
		})
	}
	return out
}

// InitBus handles POST /v1/buses
func (h *BusHandler) InitBus(c *gin.Context) {
	var req InitBusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	bus, err := h.rosterService.InitBus(c.Request.Context(), req.DriverID, req.BusNumber)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Bus profile saved",
		"bus":     BusResponse{DriverID: bus.DriverID, BusNumber: bus.BusNumber, Passengers: bus.Passengers},
	})
}

// GetBus handles GET /v1/buses?driver_id=
// A driver without a bus profile gets an empty bus number, not an error.
func (h *BusHandler) GetBus(c *gin.Context) {
	driverID := c.Query("driver_id")

	bus, err := h.rosterService.GetBus(c.Request.Context(), driverID)
	if err != nil {
		respondError(c, err)
		return
	}

	if bus == nil {
		c.JSON(http.StatusOK, gin.H{"bus_number": ""})
		return
	}

	c.JSON(http.StatusOK, BusResponse{
		DriverID:   bus.DriverID,
		BusNumber:  bus.BusNumber,
		Passengers: bus.Passengers,
	})
}

// AddPassenger handles POST /v1/buses/passengers
func (h *BusHandler) AddPassenger(c *gin.Context) {
	var req PassengerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.rosterService.AddPassenger(c.Request.Context(), req.DriverID, req.PassengerID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Passenger added to trip list"})
}

// RemovePassenger handles DELETE /v1/buses/passengers
func (h *BusHandler) RemovePassenger(c *gin.Context) {
	var req PassengerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.rosterService.RemovePassenger(c.Request.Context(), req.DriverID, req.PassengerID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Passenger removed from trip list"})
}

// GetMyPassengers handles GET /v1/buses/passengers?driver_id=
func (h *BusHandler) GetMyPassengers(c *gin.Context) {
	driverID := c.Query("driver_id")

	passengers, err := h.rosterService.GetMyPassengers(c.Request.Context(), driverID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toPassengerResponses(passengers))
}

// GetAvailableRiders handles GET /v1/passengers
func (h *BusHandler) GetAvailableRiders(c *gin.Context) {
	passengers, err := h.rosterService.GetAvailableRiders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toPassengerResponses(passengers))
}
