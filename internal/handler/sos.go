package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"campusbus/internal/domain"
	"campusbus/internal/service"
)

// SOSHandler handles HTTP requests for SOS alerts.
type SOSHandler struct {
	sosService *service.SOSService
}

// NewSOSHandler creates a new SOSHandler.
func NewSOSHandler(sosService *service.SOSService) *SOSHandler {
	return &SOSHandler{sosService: sosService}
}

// TriggerSOSRequest is the HTTP request body for raising an SOS.
type TriggerSOSRequest struct {
	DriverID string  `json:"driver_id"`
	Reason   string  `json:"reason"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
}

// SOSAlertResponse is the HTTP response for a stored alert.
type SOSAlertResponse struct {
	ID        string            `json:"id"`
	DriverID  string            `json:"driver_id"`
	Reason    string            `json:"reason"`
	Location  domain.Coordinate `json:"location"`
	Resolved  bool              `json:"resolved"`
	CreatedAt time.Time         `json:"created_at"`
}

// Trigger handles POST /v1/trips/sos
func (h *SOSHandler) Trigger(c *gin.Context) {
	var req TriggerSOSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	location := domain.Coordinate{Lat: req.Lat, Lng: req.Lng}
	_, err := h.sosService.Trigger(c.Request.Context(), req.DriverID, req.Reason, location, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "SOS broadcasted and emailed to passengers"})
}

// History handles GET /v1/trips/sos
func (h *SOSHandler) History(c *gin.Context) {
	alerts, err := h.sosService.History(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]SOSAlertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, SOSAlertResponse{
			ID:        a.ID,
			DriverID:  a.DriverID,
			Reason:    a.Reason,
			Location:  a.Location,
			Resolved:  a.Resolved,
			CreatedAt: a.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, out)
}
