package repository

import (
	"context"

	"campusbus/internal/domain"
)

// PassengerRepository reads user identities from the identity source.
// The bus core treats these rows as read-only.
type PassengerRepository interface {
	// GetByID retrieves a single user, or ErrNotFound.
	GetByID(ctx context.Context, id string) (*domain.Passenger, error)

	// GetByIDs retrieves the users whose IDs are listed. Unknown IDs are
	// silently skipped.
	GetByIDs(ctx context.Context, ids []string) ([]*domain.Passenger, error)

	// GetApprovedRiders retrieves approved users who are neither drivers
	// nor admins (the pool a driver may add to a roster).
	GetApprovedRiders(ctx context.Context) ([]*domain.Passenger, error)
}
