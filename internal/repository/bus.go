package repository

import (
	"context"

	"campusbus/internal/domain"
)

// BusRepository defines the persistence operations for bus rosters.
type BusRepository interface {
	// Upsert creates the driver's bus profile or updates its number in place.
	Upsert(ctx context.Context, driverID, busNumber string) (*domain.Bus, error)

	// GetByDriverID retrieves a bus by driver.
	// Returns ErrNotFound if the driver never initialized a bus.
	GetByDriverID(ctx context.Context, driverID string) (*domain.Bus, error)

	// AddPassenger adds a passenger with set semantics. Creates an empty
	// roster for the driver if none exists yet.
	AddPassenger(ctx context.Context, driverID, passengerID string) error

	// RemovePassenger removes a passenger. Removing a non-member is a no-op.
	RemovePassenger(ctx context.Context, driverID, passengerID string) error
}
