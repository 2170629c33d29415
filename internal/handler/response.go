package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"campusbus/internal/repository"
	"campusbus/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Normal "nothing to show" outcomes
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrNoActiveTrip),
		errors.Is(err, service.ErrBusNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidDriverID),
		errors.Is(err, service.ErrInvalidPassengerID),
		errors.Is(err, service.ErrInvalidUserID),
		errors.Is(err, service.ErrInvalidBusNumber),
		errors.Is(err, service.ErrInvalidCommuteStatus),
		errors.Is(err, service.ErrInvalidReason),
		errors.Is(err, service.ErrNoPassengersAssigned):
		return http.StatusBadRequest

	// Conflict errors - user-facing, not faults
	case errors.Is(err, service.ErrAlreadyDeclared),
		errors.Is(err, service.ErrTripBusy):
		return http.StatusConflict

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
