package repository

import (
	"context"

	"campusbus/internal/domain"
)

// SOSRepository defines the persistence operations for SOS alerts.
type SOSRepository interface {
	// Create persists a new alert.
	Create(ctx context.Context, alert *domain.SOSAlert) error

	// GetAll retrieves alerts, newest first.
	GetAll(ctx context.Context) ([]*domain.SOSAlert, error)
}
