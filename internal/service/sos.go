package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"campusbus/internal/domain"
	"campusbus/internal/redis"
	"campusbus/internal/repository"
)

// SOSService handles driver emergencies. An SOS bypasses trip state
// entirely: the alert is persisted first, then mail and socket fanout run as
// best-effort side effects.
type SOSService struct {
	sosRepo       repository.SOSRepository
	busRepo       repository.BusRepository
	passengerRepo repository.PassengerRepository
	cacheStore    *redis.CacheStore
	email         EmailSender
	notifications *NotificationService
}

// NewSOSService creates a new SOSService.
func NewSOSService(
	sosRepo repository.SOSRepository,
	busRepo repository.BusRepository,
	passengerRepo repository.PassengerRepository,
	cacheStore *redis.CacheStore,
	email EmailSender,
	notifications *NotificationService,
) *SOSService {
	return &SOSService{
		sosRepo:       sosRepo,
		busRepo:       busRepo,
		passengerRepo: passengerRepo,
		cacheStore:    cacheStore,
		email:         email,
		notifications: notifications,
	}
}

// Trigger raises an SOS for the driver. The alert row is the primary state
// change; email and fanout failures are logged, never surfaced.
func (s *SOSService) Trigger(ctx context.Context, driverID, reason string, location domain.Coordinate, now time.Time) (*domain.SOSAlert, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	if reason == "" {
		return nil, ErrInvalidReason
	}

	alert := &domain.SOSAlert{
		ID:        uuid.New().String(),
		DriverID:  driverID,
		Reason:    reason,
		Location:  location,
		CreatedAt: now,
	}
	if err := s.sosRepo.Create(ctx, alert); err != nil {
		return nil, err
	}

	s.notifyPassengersByEmail(ctx, driverID, reason, location)
	s.notifications.NotifySOS(driverID, reason, location, now)

	return alert, nil
}

// History retrieves past alerts, newest first.
func (s *SOSService) History(ctx context.Context) ([]*domain.SOSAlert, error) {
	return s.sosRepo.GetAll(ctx)
}

// notifyPassengersByEmail mails the roster in the background.
func (s *SOSService) notifyPassengersByEmail(ctx context.Context, driverID, reason string, location domain.Coordinate) {
	if s.email == nil {
		return
	}

	driverName := driverID
	if driver, err := fetchPassenger(ctx, s.cacheStore, s.passengerRepo, driverID); err == nil {
		driverName = driver.Name
	} else {
		log.Printf("sos: failed to resolve driver %s: %v", driverID, err)
	}

	var emails []string
	bus, err := s.busRepo.GetByDriverID(ctx, driverID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		log.Printf("sos: failed to load roster for %s: %v", driverID, err)
	}
	if bus != nil && len(bus.Passengers) > 0 {
		passengers, err := s.passengerRepo.GetByIDs(ctx, bus.Passengers)
		if err != nil {
			log.Printf("sos: failed to load passengers for %s: %v", driverID, err)
		}
		for _, p := range passengers {
			if p.Email != "" {
				emails = append(emails, p.Email)
			}
		}
	}

	if len(emails) == 0 {
		return
	}

	mapLink := fmt.Sprintf("https://www.google.com/maps/search/?api=1&query=%f,%f", location.Lat, location.Lng)

	go func() {
		if err := s.email.SendSOSEmail(emails, driverName, reason, mapLink); err != nil {
			log.Printf("sos: email delivery failed for %s: %v", driverID, err)
		}
	}()
}
