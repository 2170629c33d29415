package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"campusbus/internal/config"
	"campusbus/internal/domain"
	"campusbus/internal/prediction"
	"campusbus/internal/redis"
	"campusbus/internal/repository"
)

// TripService is the state machine for a driver's trip:
// none → STARTED → COMPLETED. Start and end for the same driver are
// serialized through a per-driver lock; different drivers never contend.
type TripService struct {
	tripRepo      repository.TripRepository
	busRepo       repository.BusRepository
	attendance    repository.AttendanceRepository
	passengerRepo repository.PassengerRepository
	locationStore redis.LocationStoreInterface
	lockStore     redis.LockStoreInterface
	cacheStore    *redis.CacheStore
	engine        *prediction.Engine
	notifications *NotificationService
	institute     config.InstituteConfig
	lockTTL       time.Duration
}

// NewTripService creates a new TripService.
func NewTripService(
	tripRepo repository.TripRepository,
	busRepo repository.BusRepository,
	attendance repository.AttendanceRepository,
	passengerRepo repository.PassengerRepository,
	locationStore redis.LocationStoreInterface,
	lockStore redis.LockStoreInterface,
	cacheStore *redis.CacheStore,
	engine *prediction.Engine,
	notifications *NotificationService,
	institute config.InstituteConfig,
	lockTTL time.Duration,
) *TripService {
	if lockTTL <= 0 {
		lockTTL = 10 * time.Second
	}
	return &TripService{
		tripRepo:      tripRepo,
		busRepo:       busRepo,
		attendance:    attendance,
		passengerRepo: passengerRepo,
		locationStore: locationStore,
		lockStore:     lockStore,
		cacheStore:    cacheStore,
		engine:        engine,
		notifications: notifications,
		institute:     institute,
		lockTTL:       lockTTL,
	}
}

// StartTrip begins a trip for the driver: the live location comes online at
// the start point, arrival predictions are snapshotted for every passenger
// coming today, and any prior STARTED trip is replaced. Returns the start
// time.
func (s *TripService) StartTrip(ctx context.Context, driverID string, start domain.Coordinate, now time.Time) (time.Time, error) {
	if driverID == "" {
		return time.Time{}, ErrInvalidDriverID
	}

	release, err := s.acquireLock(ctx, driverID)
	if err != nil {
		return time.Time{}, err
	}
	defer release()

	// Bus comes online at the start point, motion reset.
	loc := &domain.LiveLocation{
		DriverID:    driverID,
		Location:    domain.Position{Lat: start.Lat, Lng: start.Lng},
		LastUpdated: now,
	}
	if err := s.locationStore.Upsert(ctx, loc); err != nil {
		return time.Time{}, err
	}

	predictions, err := s.buildPredictions(ctx, driverID, start, now)
	if err != nil {
		return time.Time{}, err
	}

	trip := &domain.Trip{
		ID:          uuid.New().String(),
		DriverID:    driverID,
		Status:      domain.TripStatusStarted,
		StartTime:   now,
		Predictions: predictions,
		LastUpdated: now,
	}
	if err := s.tripRepo.UpsertStarted(ctx, trip); err != nil {
		return time.Time{}, err
	}

	// Fanout only after the durable state is in place.
	s.notifications.NotifyTripStatus(driverID, string(domain.TripStatusStarted), "Bus has left.")
	s.notifications.BroadcastTripStatus(driverID, string(domain.TripStatusStarted))

	return now, nil
}

// GetActiveTrip retrieves the driver's STARTED trip, or nil when none is
// running. Driver apps call this on reconnect to restore their state.
func (s *TripService) GetActiveTrip(ctx context.Context, driverID string) (*domain.Trip, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	return s.tripRepo.GetStartedByDriverID(ctx, driverID)
}

// buildPredictions snapshots an arrival estimate for every roster passenger
// who declared coming today and has a home coordinate. A driver without a
// roster starts a trip with no predictions.
func (s *TripService) buildPredictions(ctx context.Context, driverID string, start domain.Coordinate, now time.Time) ([]domain.Prediction, error) {
	bus, err := s.busRepo.GetByDriverID(ctx, driverID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if len(bus.Passengers) == 0 {
		return nil, nil
	}

	comingIDs, err := s.attendance.GetComingUserIDs(ctx, domain.DateOf(now), bus.Passengers)
	if err != nil {
		return nil, err
	}

	passengers, err := fetchPassengers(ctx, s.cacheStore, s.passengerRepo, comingIDs)
	if err != nil {
		return nil, err
	}

	var predictions []domain.Prediction
	for _, p := range passengers {
		if p.HomeLocation == nil {
			continue // no home point, silently excluded
		}
		result := s.engine.Predict(start, *p.HomeLocation, now)
		predictions = append(predictions, domain.Prediction{
			UserID:               p.ID,
			PredictedArrivalTime: result.ArrivalTime,
			Distance:             result.DistanceMeters,
			Duration:             result.DurationSeconds,
		})
	}

	return predictions, nil
}

// EndTrip takes the bus offline and completes every STARTED trip for the
// driver (normally exactly one; races are swept up together).
func (s *TripService) EndTrip(ctx context.Context, driverID string, now time.Time) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}

	release, err := s.acquireLock(ctx, driverID)
	if err != nil {
		return err
	}
	defer release()

	if err := s.locationStore.Delete(ctx, driverID); err != nil {
		return err
	}

	if _, err := s.tripRepo.CompleteAllStarted(ctx, driverID, now); err != nil {
		return err
	}

	s.notifications.NotifyTripStatus(driverID, "ENDED", "Trip Completed.")
	s.notifications.BroadcastTripStatus(driverID, "ENDED")

	return nil
}

// PredictionView is the passenger-facing rendering of a stored prediction.
type PredictionView struct {
	Status               string    `json:"status"`
	Driver               string    `json:"driver"`
	PredictedArrivalTime string    `json:"predicted_arrival_time"`
	ArrivalTimeISO       time.Time `json:"arrival_time_iso"`
	Distance             string    `json:"distance"`
	Duration             string    `json:"duration"`
}

// GetPredictionFor finds the STARTED trip covering the passenger and renders
// their snapshot entry. ErrNoActiveTrip is a normal "nothing to show"
// outcome, not a fault.
func (s *TripService) GetPredictionFor(ctx context.Context, userID string) (*PredictionView, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	trip, err := s.tripRepo.FindStartedWithPassenger(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoActiveTrip
		}
		return nil, err
	}

	pred, ok := trip.PredictionFor(userID)
	if !ok {
		return nil, ErrNoActiveTrip
	}

	driverName := ""
	if driver, lookupErr := fetchPassenger(ctx, s.cacheStore, s.passengerRepo, trip.DriverID); lookupErr == nil {
		driverName = driver.Name
	} else {
		log.Printf("trip: failed to resolve driver %s: %v", trip.DriverID, lookupErr)
	}

	return &PredictionView{
		Status:               "ACTIVE",
		Driver:               driverName,
		PredictedArrivalTime: pred.PredictedArrivalTime.Format("03:04 PM"),
		ArrivalTimeISO:       pred.PredictedArrivalTime,
		Distance:             prediction.FormatDistance(pred.Distance),
		Duration:             prediction.FormatDuration(pred.Duration),
	}, nil
}

// RouteStop is one pickup point on today's route.
type RouteStop struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Role string  `json:"role"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// Route is the driver's pickup plan for a date: institute → stops →
// institute.
type Route struct {
	Date        string            `json:"date"`
	Start       domain.Coordinate `json:"start"`
	Stops       []RouteStop       `json:"stops"`
	End         domain.Coordinate `json:"end"`
	TotalComing int               `json:"total_coming"`
}

// BuildRoute assembles today's route from the roster members who declared
// coming. The institute location comes from configuration.
func (s *TripService) BuildRoute(ctx context.Context, driverID string, now time.Time) (*Route, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	bus, err := s.busRepo.GetByDriverID(ctx, driverID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoPassengersAssigned
		}
		return nil, err
	}
	if len(bus.Passengers) == 0 {
		return nil, ErrNoPassengersAssigned
	}

	date := domain.DateOf(now)
	comingIDs, err := s.attendance.GetComingUserIDs(ctx, date, bus.Passengers)
	if err != nil {
		return nil, err
	}

	passengers, err := fetchPassengers(ctx, s.cacheStore, s.passengerRepo, comingIDs)
	if err != nil {
		return nil, err
	}

	institute := domain.Coordinate{Lat: s.institute.Lat, Lng: s.institute.Lng}

	stops := make([]RouteStop, 0, len(passengers))
	for _, p := range passengers {
		stop := RouteStop{ID: p.ID, Name: p.Name, Role: string(p.Role)}
		if p.HomeLocation != nil {
			stop.Lat = p.HomeLocation.Lat
			stop.Lng = p.HomeLocation.Lng
		}
		stops = append(stops, stop)
	}

	return &Route{
		Date:        date,
		Start:       institute,
		Stops:       stops,
		End:         institute,
		TotalComing: len(stops),
	}, nil
}

// acquireLock serializes per-driver trip mutations. The returned release
// function is safe to call even if the caller errors out first.
func (s *TripService) acquireLock(ctx context.Context, driverID string) (func(), error) {
	if s.lockStore == nil {
		return func() {}, nil
	}

	ok, err := s.lockStore.AcquireDriverLock(ctx, driverID, s.lockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTripBusy
	}

	return func() {
		_ = s.lockStore.ReleaseDriverLock(ctx, driverID)
	}, nil
}
