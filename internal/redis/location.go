package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"campusbus/internal/domain"
)

const liveLocationPrefix = "live:bus:"

// LiveLocationTTL bounds how long an unrefreshed record stays alive. A bus
// that went silent for this long is treated as if its trip ended.
const LiveLocationTTL = 24 * time.Hour

// LocationStore holds each driver's live bus location in Redis.
// Presence of a key is the definition of "bus is online"; the TTL performs
// the staleness sweep.
type LocationStore struct {
	client *redis.Client
}

// NewLocationStore creates a new LocationStore.
func NewLocationStore(client *redis.Client) *LocationStore {
	return &LocationStore{client: client}
}

// Upsert overwrites the driver's live location in place and refreshes the
// staleness TTL. No history is kept.
func (s *LocationStore) Upsert(ctx context.Context, loc *domain.LiveLocation) error {
	data, err := json.Marshal(loc)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, liveLocationPrefix+loc.DriverID, data, LiveLocationTTL).Err()
}

// Get retrieves the driver's live location. Returns nil, nil when the bus is
// offline (a normal outcome, not an error).
func (s *LocationStore) Get(ctx context.Context, driverID string) (*domain.LiveLocation, error) {
	data, err := s.client.Get(ctx, liveLocationPrefix+driverID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var loc domain.LiveLocation
	if err := json.Unmarshal(data, &loc); err != nil {
		return nil, err
	}

	return &loc, nil
}

// Delete removes the driver's live location, taking the bus offline.
func (s *LocationStore) Delete(ctx context.Context, driverID string) error {
	return s.client.Del(ctx, liveLocationPrefix+driverID).Err()
}
