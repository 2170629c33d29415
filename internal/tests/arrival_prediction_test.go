package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"campusbus/internal/domain"
	"campusbus/internal/service"
)

// ──────────────────────────────────────────────
// ARRIVAL PREDICTION SNAPSHOTS
// ──────────────────────────────────────────────

// seedRosterWithTwoPassengers sets up driver-1 with two roster members:
// p1 lives roughly 3 km north of the start point, p2 has a home as well.
// Only p1 declared coming today.
func seedRosterWithTwoPassengers(f *tripFixture, now time.Time) {
	f.busRepo.AddBus(&domain.Bus{
		DriverID:   "driver-1",
		BusNumber:  "BUS-42",
		Passengers: []string{"p1", "p2"},
	})

	// ~3 km of latitude at any longitude.
	f.passengerRepo.AddPassenger(&domain.Passenger{
		ID: "p1", Name: "Asha", Email: "asha@example.com",
		Role: domain.RoleStudent, IsApproved: true,
		HomeLocation: &domain.Coordinate{Lat: 28.6 + 0.0269797, Lng: 77.2},
	})
	f.passengerRepo.AddPassenger(&domain.Passenger{
		ID: "p2", Name: "Ravi", Email: "ravi@example.com",
		Role: domain.RoleStudent, IsApproved: true,
		HomeLocation: &domain.Coordinate{Lat: 28.65, Lng: 77.25},
	})
	f.passengerRepo.AddPassenger(&domain.Passenger{
		ID: "driver-1", Name: "Mohan", Email: "mohan@example.com",
		Role: domain.RoleDriver, IsApproved: true,
	})

	f.attendance.Create(context.Background(), &domain.DailyStatus{
		UserID: "p1", Date: domain.DateOf(now), Status: domain.CommuteStatusComing,
	})
}

func TestStartTrip_SnapshotsPredictionsForComingPassengers(t *testing.T) {
	t.Parallel()

	f := newTripFixture()
	now := time.Now()
	seedRosterWithTwoPassengers(f, now)

	if _, err := f.trips.StartTrip(context.Background(), "driver-1", domain.Coordinate{Lat: 28.6, Lng: 77.2}, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	trip := f.tripRepo.StartedTripFor("driver-1")
	if trip == nil {
		t.Fatal("expected a started trip")
	}
	if len(trip.Predictions) != 1 {
		t.Fatalf("expected 1 prediction (only p1 is coming), got %d", len(trip.Predictions))
	}

	pred := trip.Predictions[0]
	if pred.UserID != "p1" {
		t.Errorf("expected prediction for p1, got %s", pred.UserID)
	}
	// 3 km at 30 km/h is 6 minutes.
	if pred.Distance < 2990 || pred.Distance > 3010 {
		t.Errorf("expected ~3000 m, got %d", pred.Distance)
	}
	if pred.Duration < 359 || pred.Duration > 361 {
		t.Errorf("expected ~360 s, got %d", pred.Duration)
	}
	wantArrival := now.Add(time.Duration(pred.Duration) * time.Second)
	if !pred.PredictedArrivalTime.Equal(wantArrival) {
		t.Errorf("arrival should be start + duration, got %v want %v", pred.PredictedArrivalTime, wantArrival)
	}
}

func TestGetPredictionFor_RendersSnapshot(t *testing.T) {
	t.Parallel()

	f := newTripFixture()
	now := time.Now()
	seedRosterWithTwoPassengers(f, now)

	ctx := context.Background()
	if _, err := f.trips.StartTrip(ctx, "driver-1", domain.Coordinate{Lat: 28.6, Lng: 77.2}, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	view, err := f.trips.GetPredictionFor(ctx, "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Status != "ACTIVE" {
		t.Errorf("expected ACTIVE status, got %s", view.Status)
	}
	if view.Driver != "Mohan" {
		t.Errorf("expected driver name Mohan, got %q", view.Driver)
	}
	if view.Duration != "6 min" {
		t.Errorf("expected duration '6 min', got %q", view.Duration)
	}
	if view.Distance != "3.0 Km" {
		t.Errorf("expected distance '3.0 Km', got %q", view.Distance)
	}
}

func TestGetPredictionFor_MissingDriverProfile_StillRenders(t *testing.T) {
	t.Parallel()

	f := newTripFixture()
	now := time.Now()

	// Roster and passenger exist, but the driver has no identity row
	// (deactivated account). The snapshot must still render, just without
	// a name.
	f.busRepo.AddBus(&domain.Bus{DriverID: "driver-1", Passengers: []string{"p1"}})
	f.passengerRepo.AddPassenger(&domain.Passenger{
		ID: "p1", Name: "Asha", Role: domain.RoleStudent, IsApproved: true,
		HomeLocation: &domain.Coordinate{Lat: 28.6 + 0.0269797, Lng: 77.2},
	})
	f.attendance.Create(context.Background(), &domain.DailyStatus{
		UserID: "p1", Date: domain.DateOf(now), Status: domain.CommuteStatusComing,
	})

	ctx := context.Background()
	if _, err := f.trips.StartTrip(ctx, "driver-1", domain.Coordinate{Lat: 28.6, Lng: 77.2}, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	view, err := f.trips.GetPredictionFor(ctx, "p1")
	if err != nil {
		t.Fatalf("a missing driver profile must not fail the lookup: %v", err)
	}
	if view.Driver != "" {
		t.Errorf("expected empty driver name, got %q", view.Driver)
	}
	if view.Status != "ACTIVE" {
		t.Errorf("expected ACTIVE status, got %s", view.Status)
	}
}

func TestGetPredictionFor_PassengerNotInSnapshot_NoActiveTrip(t *testing.T) {
	t.Parallel()

	f := newTripFixture()
	now := time.Now()
	seedRosterWithTwoPassengers(f, now)

	ctx := context.Background()
	if _, err := f.trips.StartTrip(ctx, "driver-1", domain.Coordinate{Lat: 28.6, Lng: 77.2}, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// p2 never declared coming, so no snapshot entry exists.
	_, err := f.trips.GetPredictionFor(ctx, "p2")
	if !errors.Is(err, service.ErrNoActiveTrip) {
		t.Fatalf("expected ErrNoActiveTrip for p2, got %v", err)
	}
}

func TestGetPredictionFor_AfterTripEnds_NoActiveTrip(t *testing.T) {
	t.Parallel()

	f := newTripFixture()
	now := time.Now()
	seedRosterWithTwoPassengers(f, now)

	ctx := context.Background()
	if _, err := f.trips.StartTrip(ctx, "driver-1", domain.Coordinate{Lat: 28.6, Lng: 77.2}, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.trips.EndTrip(ctx, "driver-1", now.Add(20*time.Minute)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := f.trips.GetPredictionFor(ctx, "p1")
	if !errors.Is(err, service.ErrNoActiveTrip) {
		t.Fatalf("expected ErrNoActiveTrip after trip end, got %v", err)
	}
	if f.locations.HasLocation("driver-1") {
		t.Error("bus should be offline after trip end")
	}
}

func TestStartTrip_PassengerWithoutHomePoint_SilentlyExcluded(t *testing.T) {
	t.Parallel()

	f := newTripFixture()
	now := time.Now()

	f.busRepo.AddBus(&domain.Bus{DriverID: "driver-1", Passengers: []string{"p1"}})
	f.passengerRepo.AddPassenger(&domain.Passenger{
		ID: "p1", Name: "Asha", Role: domain.RoleStudent, IsApproved: true,
	})
	f.attendance.Create(context.Background(), &domain.DailyStatus{
		UserID: "p1", Date: domain.DateOf(now), Status: domain.CommuteStatusComing,
	})

	if _, err := f.trips.StartTrip(context.Background(), "driver-1", domain.Coordinate{Lat: 28.6, Lng: 77.2}, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	trip := f.tripRepo.StartedTripFor("driver-1")
	if len(trip.Predictions) != 0 {
		t.Errorf("a passenger without a home point gets no prediction, got %d", len(trip.Predictions))
	}
}

func TestStartTrip_NoRoster_StartsWithEmptySnapshot(t *testing.T) {
	t.Parallel()

	f := newTripFixture()

	if _, err := f.trips.StartTrip(context.Background(), "driver-1", domain.Coordinate{Lat: 28.6, Lng: 77.2}, time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	trip := f.tripRepo.StartedTripFor("driver-1")
	if trip == nil {
		t.Fatal("a driver without a roster still starts a trip")
	}
	if len(trip.Predictions) != 0 {
		t.Errorf("expected empty snapshot, got %d predictions", len(trip.Predictions))
	}
}

func TestBuildRoute_InstituteBracketsTheStops(t *testing.T) {
	t.Parallel()

	f := newTripFixture()
	now := time.Now()
	seedRosterWithTwoPassengers(f, now)

	route, err := f.trips.BuildRoute(context.Background(), "driver-1", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if route.Start != route.End {
		t.Error("route should start and end at the institute")
	}
	if route.TotalComing != 1 {
		t.Errorf("expected 1 coming passenger on the route, got %d", route.TotalComing)
	}
	if len(route.Stops) != 1 || route.Stops[0].ID != "p1" {
		t.Errorf("expected a single stop for p1, got %+v", route.Stops)
	}
}

func TestBuildRoute_EmptyRoster_Rejected(t *testing.T) {
	t.Parallel()

	f := newTripFixture()
	f.busRepo.AddBus(&domain.Bus{DriverID: "driver-1", BusNumber: "BUS-42"})

	_, err := f.trips.BuildRoute(context.Background(), "driver-1", time.Now())
	if !errors.Is(err, service.ErrNoPassengersAssigned) {
		t.Fatalf("expected ErrNoPassengersAssigned, got %v", err)
	}
}
