package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// PassengerCacheTTL keeps identity reads fresh enough; home locations and
// approval rarely change mid-day.
const PassengerCacheTTL = 5 * time.Minute

const passengerCachePrefix = "cache:passenger:"

// CachedPassenger represents a cached passenger identity.
type CachedPassenger struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Role    string   `json:"role"`
	HomeLat *float64 `json:"home_lat,omitempty"`
	HomeLng *float64 `json:"home_lng,omitempty"`
}

// CacheStore handles entity caching in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// GetPassenger retrieves a passenger from cache. A nil result is a miss.
func (s *CacheStore) GetPassenger(ctx context.Context, id string) (*CachedPassenger, error) {
	data, err := s.client.Get(ctx, passengerCachePrefix+id).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var p CachedPassenger
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SetPassenger stores a passenger in cache.
func (s *CacheStore) SetPassenger(ctx context.Context, p *CachedPassenger) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, passengerCachePrefix+p.ID, data, PassengerCacheTTL).Err()
}

// GetPassengersBatch retrieves multiple passengers from cache using a
// pipeline. Returns the hits keyed by ID and the IDs that missed.
func (s *CacheStore) GetPassengersBatch(ctx context.Context, ids []string) (map[string]*CachedPassenger, []string, error) {
	if len(ids) == 0 {
		return make(map[string]*CachedPassenger), nil, nil
	}

	pipe := s.client.Pipeline()
	cmds := make(map[string]*redis.StringCmd, len(ids))

	for _, id := range ids {
		cmds[id] = pipe.Get(ctx, passengerCachePrefix+id)
	}

	// Exec reports redis.Nil when any key is missing; errors are handled
	// per-command below.
	_, _ = pipe.Exec(ctx)

	result := make(map[string]*CachedPassenger)
	var missing []string

	for id, cmd := range cmds {
		data, err := cmd.Bytes()
		if err != nil {
			missing = append(missing, id)
			continue
		}

		var p CachedPassenger
		if err := json.Unmarshal(data, &p); err != nil {
			missing = append(missing, id)
			continue
		}
		result[id] = &p
	}

	return result, missing, nil
}

// SetPassengersBatch stores multiple passengers in cache using a pipeline.
func (s *CacheStore) SetPassengersBatch(ctx context.Context, passengers []*CachedPassenger) error {
	if len(passengers) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()

	for _, p := range passengers {
		data, err := json.Marshal(p)
		if err != nil {
			continue
		}
		pipe.Set(ctx, passengerCachePrefix+p.ID, data, PassengerCacheTTL)
	}

	_, err := pipe.Exec(ctx)
	return err
}
