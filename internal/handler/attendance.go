package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"campusbus/internal/domain"
	"campusbus/internal/service"
)

// AttendanceHandler handles HTTP requests for daily commute declarations.
type AttendanceHandler struct {
	attendanceService *service.AttendanceService
}

// NewAttendanceHandler creates a new AttendanceHandler.
func NewAttendanceHandler(attendanceService *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: attendanceService}
}

// DeclareStatusRequest is the HTTP request body for the daily declaration.
type DeclareStatusRequest struct {
	UserID   string `json:"user_id"`
	Status   string `json:"status"`
	DriverID string `json:"driver_id"`
}

// Declare handles POST /v1/attendance
// One declaration per user per day; repeats are rejected, never overwritten.
func (h *AttendanceHandler) Declare(c *gin.Context) {
	var req DeclareStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	now := time.Now()
	ctx := c.Request.Context()

	err := h.attendanceService.Declare(ctx, req.UserID, domain.CommuteStatus(req.Status), req.DriverID, now)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyDeclared) {
			msg := "You have already marked your status for today. You cannot change it."
			if existing, lookupErr := h.attendanceService.DeclaredStatus(ctx, req.UserID, domain.DateOf(now)); lookupErr == nil && existing != nil {
				msg = fmt.Sprintf("You have already marked your status as '%s' for today. You cannot change it.", existing.Status)
			}
			c.JSON(http.StatusConflict, gin.H{"message": msg})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Bus status successfully set to %s", req.Status)})
}

// ComingToday handles GET /v1/attendance/coming?driver_id=
// Without driver_id the listing is institute-wide.
func (h *AttendanceHandler) ComingToday(c *gin.Context) {
	driverID := c.Query("driver_id")
	date := domain.DateOf(time.Now())

	passengers, err := h.attendanceService.ComingToday(c.Request.Context(), driverID, date)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":  date,
		"count": len(passengers),
		"users": toPassengerResponses(passengers),
	})
}
