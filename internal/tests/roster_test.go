package tests

import (
	"context"
	"errors"
	"testing"

	"campusbus/internal/domain"
	"campusbus/internal/service"
)

// ──────────────────────────────────────────────
// BUS ROSTERS
// ──────────────────────────────────────────────

func newRosterService() (*service.RosterService, *MockBusRepository, *MockPassengerRepository) {
	busRepo := NewMockBusRepository()
	passengerRepo := NewMockPassengerRepository()
	svc := service.NewRosterService(busRepo, passengerRepo, nil)
	return svc, busRepo, passengerRepo
}

func TestInitBus_RepeatUpdatesNumberInPlace(t *testing.T) {
	t.Parallel()

	svc, busRepo, _ := newRosterService()
	ctx := context.Background()

	if _, err := svc.InitBus(ctx, "driver-1", "BUS-42"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	busRepo.GetBus("driver-1").Passengers = []string{"p1"}

	bus, err := svc.InitBus(ctx, "driver-1", "BUS-99")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bus.BusNumber != "BUS-99" {
		t.Errorf("expected updated number BUS-99, got %s", bus.BusNumber)
	}
	// The roster survives a number change.
	if len(busRepo.GetBus("driver-1").Passengers) != 1 {
		t.Error("re-initializing the bus must not drop the roster")
	}
}

func TestAddPassenger_SetSemantics(t *testing.T) {
	t.Parallel()

	svc, busRepo, _ := newRosterService()
	ctx := context.Background()

	if err := svc.AddPassenger(ctx, "driver-1", "p1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Adding the same member again is a silent no-op.
	if err := svc.AddPassenger(ctx, "driver-1", "p1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bus := busRepo.GetBus("driver-1")
	if len(bus.Passengers) != 1 {
		t.Errorf("expected 1 roster member, got %d", len(bus.Passengers))
	}
}

func TestAddPassenger_CreatesRosterForNewDriver(t *testing.T) {
	t.Parallel()

	svc, busRepo, _ := newRosterService()

	if err := svc.AddPassenger(context.Background(), "driver-1", "p1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bus := busRepo.GetBus("driver-1")
	if bus == nil {
		t.Fatal("adding to a fresh driver should create an empty bus profile")
	}
	if !bus.HasPassenger("p1") {
		t.Error("expected p1 on the new roster")
	}
}

func TestRemovePassenger_NonMemberIsNoOp(t *testing.T) {
	t.Parallel()

	svc, busRepo, _ := newRosterService()
	ctx := context.Background()

	busRepo.AddBus(&domain.Bus{DriverID: "driver-1", Passengers: []string{"p1"}})

	if err := svc.RemovePassenger(ctx, "driver-1", "p9"); err != nil {
		t.Fatalf("removing a non-member should be a no-op: %v", err)
	}
	if err := svc.RemovePassenger(ctx, "driver-1", "p1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if busRepo.GetBus("driver-1").HasPassenger("p1") {
		t.Error("p1 should be off the roster")
	}
}

func TestGetBus_MissingProfileIsNil(t *testing.T) {
	t.Parallel()

	svc, _, _ := newRosterService()

	bus, err := svc.GetBus(context.Background(), "driver-1")
	if err != nil {
		t.Fatalf("a missing bus profile is not an error: %v", err)
	}
	if bus != nil {
		t.Errorf("expected nil bus, got %+v", bus)
	}
}

func TestGetMyPassengers_ResolvesProfiles(t *testing.T) {
	t.Parallel()

	svc, busRepo, passengerRepo := newRosterService()
	ctx := context.Background()

	busRepo.AddBus(&domain.Bus{DriverID: "driver-1", Passengers: []string{"p1", "p2"}})
	passengerRepo.AddPassenger(&domain.Passenger{ID: "p1", Name: "Asha", Role: domain.RoleStudent, IsApproved: true})
	passengerRepo.AddPassenger(&domain.Passenger{ID: "p2", Name: "Ravi", Role: domain.RoleTeacher, IsApproved: true})

	passengers, err := svc.GetMyPassengers(ctx, "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(passengers) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(passengers))
	}
}

func TestGetAvailableRiders_ExcludesDriversAndAdmins(t *testing.T) {
	t.Parallel()

	svc, _, passengerRepo := newRosterService()

	passengerRepo.AddPassenger(&domain.Passenger{ID: "p1", Role: domain.RoleStudent, IsApproved: true})
	passengerRepo.AddPassenger(&domain.Passenger{ID: "p2", Role: domain.RoleTeacher, IsApproved: true})
	passengerRepo.AddPassenger(&domain.Passenger{ID: "p3", Role: domain.RoleStudent, IsApproved: false})
	passengerRepo.AddPassenger(&domain.Passenger{ID: "d1", Role: domain.RoleDriver, IsApproved: true})
	passengerRepo.AddPassenger(&domain.Passenger{ID: "a1", Role: domain.RoleAdmin, IsApproved: true})

	riders, err := svc.GetAvailableRiders(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(riders) != 2 {
		t.Errorf("expected 2 available riders, got %d", len(riders))
	}
}

func TestRoster_EmptyIDs_Rejected(t *testing.T) {
	t.Parallel()

	svc, _, _ := newRosterService()
	ctx := context.Background()

	if _, err := svc.InitBus(ctx, "", "BUS-42"); !errors.Is(err, service.ErrInvalidDriverID) {
		t.Errorf("expected ErrInvalidDriverID, got %v", err)
	}
	if _, err := svc.InitBus(ctx, "driver-1", ""); !errors.Is(err, service.ErrInvalidBusNumber) {
		t.Errorf("expected ErrInvalidBusNumber, got %v", err)
	}
	if err := svc.AddPassenger(ctx, "driver-1", ""); !errors.Is(err, service.ErrInvalidPassengerID) {
		t.Errorf("expected ErrInvalidPassengerID, got %v", err)
	}
}
