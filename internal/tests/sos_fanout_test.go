package tests

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"campusbus/internal/domain"
	"campusbus/internal/service"
	"campusbus/internal/ws"
)

// ──────────────────────────────────────────────
// SOS AND LIVE LOCATION FANOUT
// ──────────────────────────────────────────────

type sosFixture struct {
	sosRepo       *MockSOSRepository
	busRepo       *MockBusRepository
	passengerRepo *MockPassengerRepository
	email         *MockEmailSender
	publisher     *MockPublisher
	sos           *service.SOSService
}

func newSOSFixture() *sosFixture {
	f := &sosFixture{
		sosRepo:       NewMockSOSRepository(),
		busRepo:       NewMockBusRepository(),
		passengerRepo: NewMockPassengerRepository(),
		email:         NewMockEmailSender(),
		publisher:     NewMockPublisher(),
	}
	f.sos = service.NewSOSService(
		f.sosRepo, f.busRepo, f.passengerRepo, nil,
		f.email, service.NewNotificationService(f.publisher),
	)
	return f
}

func (f *sosFixture) seedRoster() {
	f.busRepo.AddBus(&domain.Bus{DriverID: "driver-1", Passengers: []string{"p1", "p2"}})
	f.passengerRepo.AddPassenger(&domain.Passenger{ID: "driver-1", Name: "Mohan", Role: domain.RoleDriver, IsApproved: true})
	f.passengerRepo.AddPassenger(&domain.Passenger{ID: "p1", Name: "Asha", Email: "asha@example.com", Role: domain.RoleStudent, IsApproved: true})
	f.passengerRepo.AddPassenger(&domain.Passenger{ID: "p2", Name: "Ravi", Role: domain.RoleStudent, IsApproved: true}) // no email
}

// waitForSends polls for async email delivery.
func waitForSends(t *testing.T, email *MockEmailSender, want int32) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if atomic.LoadInt32(&email.SendCallCount) >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("email send count never reached %d", want)
}

func TestSOS_PersistsThenFansOut(t *testing.T) {
	t.Parallel()

	f := newSOSFixture()
	f.seedRoster()

	alert, err := f.sos.Trigger(context.Background(), "driver-1", "flat tire", domain.Coordinate{Lat: 28.6, Lng: 77.2}, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert.ID == "" {
		t.Error("expected a persisted alert with an ID")
	}
	if f.sosRepo.CountAlerts() != 1 {
		t.Fatalf("expected 1 stored alert, got %d", f.sosRepo.CountAlerts())
	}

	if got := f.publisher.CountEvent(ws.AdminRoom, service.EventAdminAlert); got != 1 {
		t.Errorf("expected 1 admin-alert event, got %d", got)
	}
	if got := f.publisher.CountEvent(ws.TripRoom("driver-1"), service.EventSOSBroadcast); got != 1 {
		t.Errorf("expected 1 sos-broadcast event in the trip room, got %d", got)
	}
}

func TestSOS_EmailsRosterMembersWithAddresses(t *testing.T) {
	t.Parallel()

	f := newSOSFixture()
	f.seedRoster()

	_, err := f.sos.Trigger(context.Background(), "driver-1", "engine trouble", domain.Coordinate{Lat: 28.6, Lng: 77.2}, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	waitForSends(t, f.email, 1)

	f.email.mu.Lock()
	defer f.email.mu.Unlock()
	if len(f.email.LastEmails) != 1 || f.email.LastEmails[0] != "asha@example.com" {
		t.Errorf("only roster members with addresses get mail, got %v", f.email.LastEmails)
	}
	if f.email.LastMapLink == "" {
		t.Error("the SOS mail should carry a map link")
	}
}

func TestSOS_EmailFailureNeverFailsTheAlert(t *testing.T) {
	t.Parallel()

	f := newSOSFixture()
	f.seedRoster()
	f.email.SendError = ErrMockTimeout

	_, err := f.sos.Trigger(context.Background(), "driver-1", "flat tire", domain.Coordinate{Lat: 28.6, Lng: 77.2}, time.Now())
	if err != nil {
		t.Fatalf("email failure must not surface: %v", err)
	}
	if f.sosRepo.CountAlerts() != 1 {
		t.Error("the alert should be stored regardless of email trouble")
	}
}

func TestSOS_WorksWithoutARoster(t *testing.T) {
	t.Parallel()

	f := newSOSFixture()

	// No bus profile at all: the SOS still persists and broadcasts.
	_, err := f.sos.Trigger(context.Background(), "driver-9", "breakdown", domain.Coordinate{}, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.sosRepo.CountAlerts() != 1 {
		t.Error("expected the alert to be stored")
	}
	if got := f.publisher.CountEvent(ws.AdminRoom, service.EventAdminAlert); got != 1 {
		t.Errorf("expected the admin-alert even without a roster, got %d", got)
	}
}

func TestSOS_StoreFailure_NoFanout(t *testing.T) {
	t.Parallel()

	f := newSOSFixture()
	f.seedRoster()
	f.sosRepo.CreateError = ErrMockDBConstraint

	_, err := f.sos.Trigger(context.Background(), "driver-1", "flat tire", domain.Coordinate{}, time.Now())
	if err == nil {
		t.Fatal("expected error from alert store")
	}
	if len(f.publisher.Events()) != 0 {
		t.Error("no fanout should fire when the alert cannot be stored")
	}
}

func TestSOS_EmptyReason_Rejected(t *testing.T) {
	t.Parallel()

	f := newSOSFixture()

	_, err := f.sos.Trigger(context.Background(), "driver-1", "", domain.Coordinate{}, time.Now())
	if !errors.Is(err, service.ErrInvalidReason) {
		t.Fatalf("expected ErrInvalidReason, got %v", err)
	}
}

func TestUpdateLocation_FansOutToTripRoomAndAdminMap(t *testing.T) {
	t.Parallel()

	locations := NewMockLocationStore()
	publisher := NewMockPublisher()
	svc := service.NewLocationService(locations, service.NewNotificationService(publisher))

	pos := domain.Position{Lat: 28.61, Lng: 77.21, Heading: 90, Speed: 32}
	if err := svc.UpdateLocation(context.Background(), "driver-1", pos, time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !locations.HasLocation("driver-1") {
		t.Error("expected the position to be stored")
	}
	if got := publisher.CountEvent(ws.TripRoom("driver-1"), service.EventLiveBusUpdate); got != 1 {
		t.Errorf("expected 1 live-bus-update in the trip room, got %d", got)
	}
	if got := publisher.CountEvent(ws.AdminRoom, service.EventAdminMapUpdate); got != 1 {
		t.Errorf("expected 1 admin-map-update in the admin room, got %d", got)
	}
}

func TestUpdateLocation_StoreFailure_NoFanout(t *testing.T) {
	t.Parallel()

	locations := NewMockLocationStore()
	locations.UpsertError = ErrMockTimeout
	publisher := NewMockPublisher()
	svc := service.NewLocationService(locations, service.NewNotificationService(publisher))

	err := svc.UpdateLocation(context.Background(), "driver-1", domain.Position{}, time.Now())
	if err == nil {
		t.Fatal("expected error from the store")
	}
	if len(publisher.Events()) != 0 {
		t.Error("no fanout should fire when the store write fails")
	}
}

func TestGetLocation_OfflineIsNilNotError(t *testing.T) {
	t.Parallel()

	locations := NewMockLocationStore()
	svc := service.NewLocationService(locations, service.NewNotificationService(nil))

	loc, err := svc.GetLocation(context.Background(), "driver-1")
	if err != nil {
		t.Fatalf("offline is a normal outcome: %v", err)
	}
	if loc != nil {
		t.Errorf("expected nil for an offline bus, got %+v", loc)
	}
}
