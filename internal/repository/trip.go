package repository

import (
	"context"
	"time"

	"campusbus/internal/domain"
)

// TripRepository defines the persistence operations for trips.
type TripRepository interface {
	// UpsertStarted creates or replaces the single STARTED trip for the
	// driver. A prior STARTED trip is overwritten, never appended.
	UpsertStarted(ctx context.Context, trip *domain.Trip) error

	// CompleteAllStarted transitions every STARTED trip for the driver to
	// COMPLETED. Returns the number of trips affected.
	CompleteAllStarted(ctx context.Context, driverID string, now time.Time) (int64, error)

	// GetStartedByDriverID retrieves the driver's STARTED trip.
	// Returns nil, nil when the driver has no active trip.
	GetStartedByDriverID(ctx context.Context, driverID string) (*domain.Trip, error)

	// FindStartedWithPassenger retrieves a STARTED trip whose prediction
	// snapshot contains the passenger. Returns ErrNotFound when no active
	// trip references them.
	FindStartedWithPassenger(ctx context.Context, userID string) (*domain.Trip, error)
}
