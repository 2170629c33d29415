package service

import (
	"context"

	"campusbus/internal/domain"
	"campusbus/internal/redis"
	"campusbus/internal/repository"
)

// RosterService owns the driver → passenger-set relationship.
type RosterService struct {
	busRepo       repository.BusRepository
	passengerRepo repository.PassengerRepository
	cacheStore    *redis.CacheStore
}

// NewRosterService creates a new RosterService.
func NewRosterService(
	busRepo repository.BusRepository,
	passengerRepo repository.PassengerRepository,
	cacheStore *redis.CacheStore,
) *RosterService {
	return &RosterService{
		busRepo:       busRepo,
		passengerRepo: passengerRepo,
		cacheStore:    cacheStore,
	}
}

// InitBus creates the driver's bus profile or updates its number in place.
// Repeat calls are not an error.
func (s *RosterService) InitBus(ctx context.Context, driverID, busNumber string) (*domain.Bus, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	if busNumber == "" {
		return nil, ErrInvalidBusNumber
	}

	return s.busRepo.Upsert(ctx, driverID, busNumber)
}

// GetBus retrieves the driver's bus. A driver who never initialized a bus
// yields nil, nil rather than an error.
func (s *RosterService) GetBus(ctx context.Context, driverID string) (*domain.Bus, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	bus, err := s.busRepo.GetByDriverID(ctx, driverID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}

	return bus, nil
}

// AddPassenger adds a passenger to the driver's roster with set semantics.
// An empty roster is created if the driver has no bus profile yet.
func (s *RosterService) AddPassenger(ctx context.Context, driverID, passengerID string) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}
	if passengerID == "" {
		return ErrInvalidPassengerID
	}

	return s.busRepo.AddPassenger(ctx, driverID, passengerID)
}

// RemovePassenger removes a passenger from the roster. Removing a non-member
// is a no-op.
func (s *RosterService) RemovePassenger(ctx context.Context, driverID, passengerID string) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}
	if passengerID == "" {
		return ErrInvalidPassengerID
	}

	return s.busRepo.RemovePassenger(ctx, driverID, passengerID)
}

// GetMyPassengers retrieves profile details for everyone on the driver's
// roster. An absent roster yields an empty list.
func (s *RosterService) GetMyPassengers(ctx context.Context, driverID string) ([]*domain.Passenger, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	bus, err := s.busRepo.GetByDriverID(ctx, driverID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}

	return fetchPassengers(ctx, s.cacheStore, s.passengerRepo, bus.Passengers)
}

// GetAvailableRiders retrieves approved users a driver may add to a roster.
func (s *RosterService) GetAvailableRiders(ctx context.Context) ([]*domain.Passenger, error) {
	return s.passengerRepo.GetApprovedRiders(ctx)
}

// fetchPassengers resolves passenger profiles through the cache, falling
// back to the identity store for misses and refilling the cache. Cache
// trouble degrades to a plain repository read.
func fetchPassengers(
	ctx context.Context,
	cache *redis.CacheStore,
	repo repository.PassengerRepository,
	ids []string,
) ([]*domain.Passenger, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	if cache == nil {
		return repo.GetByIDs(ctx, ids)
	}

	hits, missing, err := cache.GetPassengersBatch(ctx, ids)
	if err != nil {
		return repo.GetByIDs(ctx, ids)
	}

	result := make([]*domain.Passenger, 0, len(ids))
	for _, id := range ids {
		if cached, ok := hits[id]; ok {
			result = append(result, passengerFromCache(cached))
		}
	}

	if len(missing) > 0 {
		fetched, err := repo.GetByIDs(ctx, missing)
		if err != nil {
			return nil, err
		}
		result = append(result, fetched...)

		cached := make([]*redis.CachedPassenger, 0, len(fetched))
		for _, p := range fetched {
			cached = append(cached, passengerToCache(p))
		}
		_ = cache.SetPassengersBatch(ctx, cached)
	}

	return result, nil
}

// fetchPassenger is the single-profile variant of fetchPassengers, used for
// driver-name lookups. Same cache-through contract.
func fetchPassenger(
	ctx context.Context,
	cache *redis.CacheStore,
	repo repository.PassengerRepository,
	id string,
) (*domain.Passenger, error) {
	if cache != nil {
		if cached, err := cache.GetPassenger(ctx, id); err == nil && cached != nil {
			return passengerFromCache(cached), nil
		}
	}

	p, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if cache != nil {
		_ = cache.SetPassenger(ctx, passengerToCache(p))
	}
	return p, nil
}

func passengerFromCache(c *redis.CachedPassenger) *domain.Passenger {
	p := &domain.Passenger{
		ID:         c.ID,
		Name:       c.Name,
		Email:      c.Email,
		Role:       domain.Role(c.Role),
		IsApproved: true,
	}
	if c.HomeLat != nil && c.HomeLng != nil {
		p.HomeLocation = &domain.Coordinate{Lat: *c.HomeLat, Lng: *c.HomeLng}
	}
	return p
}

func passengerToCache(p *domain.Passenger) *redis.CachedPassenger {
	c := &redis.CachedPassenger{
		ID:    p.ID,
		Name:  p.Name,
		Email: p.Email,
		Role:  string(p.Role),
	}
	if p.HomeLocation != nil {
		lat, lng := p.HomeLocation.Lat, p.HomeLocation.Lng
		c.HomeLat, c.HomeLng = &lat, &lng
	}
	return c
}
