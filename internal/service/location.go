package service

import (
	"context"
	"time"

	"campusbus/internal/domain"
	"campusbus/internal/redis"
)

// LocationService tracks each driver's live bus position. The record is
// overwritten in place on every update; presence means the bus is online.
type LocationService struct {
	locationStore redis.LocationStoreInterface
	notifications *NotificationService
}

// NewLocationService creates a new LocationService.
func NewLocationService(locationStore redis.LocationStoreInterface, notifications *NotificationService) *LocationService {
	return &LocationService{
		locationStore: locationStore,
		notifications: notifications,
	}
}

// UpdateLocation upserts the driver's position and fans the update out to
// the trip's subscribers and the admin map. The fanout runs after the store
// write and cannot fail the update.
func (s *LocationService) UpdateLocation(ctx context.Context, driverID string, pos domain.Position, now time.Time) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}

	loc := &domain.LiveLocation{
		DriverID:    driverID,
		Location:    pos,
		LastUpdated: now,
	}

	if err := s.locationStore.Upsert(ctx, loc); err != nil {
		return err
	}

	s.notifications.NotifyLiveBusUpdate(driverID, pos)

	return nil
}

// GetLocation retrieves the driver's live location. A nil result means the
// bus is offline, which is a normal outcome rather than an error.
func (s *LocationService) GetLocation(ctx context.Context, driverID string) (*domain.LiveLocation, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	return s.locationStore.Get(ctx, driverID)
}
