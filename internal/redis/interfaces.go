package redis

import (
	"context"
	"time"

	"campusbus/internal/domain"
)

// LocationStoreInterface defines the interface for live bus location
// operations.
type LocationStoreInterface interface {
	Upsert(ctx context.Context, loc *domain.LiveLocation) error
	Get(ctx context.Context, driverID string) (*domain.LiveLocation, error)
	Delete(ctx context.Context, driverID string) error
}

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireDriverLock(ctx context.Context, driverID string, ttl time.Duration) (bool, error)
	ReleaseDriverLock(ctx context.Context, driverID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ LocationStoreInterface = (*LocationStore)(nil)
	_ LockStoreInterface     = (*LockStore)(nil)
)
