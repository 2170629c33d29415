package tests

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"campusbus/internal/domain"
	"campusbus/internal/service"
)

// ──────────────────────────────────────────────
// DAILY COMMUTE DECLARATIONS
// ──────────────────────────────────────────────

func newAttendanceService() (*service.AttendanceService, *MockAttendanceRepository, *MockBusRepository, *MockPassengerRepository) {
	attendanceRepo := NewMockAttendanceRepository()
	busRepo := NewMockBusRepository()
	passengerRepo := NewMockPassengerRepository()
	svc := service.NewAttendanceService(attendanceRepo, busRepo, passengerRepo, nil)
	return svc, attendanceRepo, busRepo, passengerRepo
}

func TestDeclare_FirstDeclarationSucceeds(t *testing.T) {
	t.Parallel()

	svc, repo, _, _ := newAttendanceService()
	now := time.Now()

	err := svc.Declare(context.Background(), "p1", domain.CommuteStatusComing, "driver-1", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	record, err := svc.DeclaredStatus(context.Background(), "p1", domain.DateOf(now))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record == nil || record.Status != domain.CommuteStatusComing {
		t.Errorf("expected a stored 'coming' declaration, got %+v", record)
	}
	if repo.CountRecords() != 1 {
		t.Errorf("expected 1 record, got %d", repo.CountRecords())
	}
}

func TestDeclare_SecondDeclarationSameDay_Rejected(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newAttendanceService()
	ctx := context.Background()
	now := time.Now()

	if err := svc.Declare(ctx, "p1", domain.CommuteStatusComing, "driver-1", now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The value does not matter: a repeat with the same status is rejected
	// just like a flip.
	err := svc.Declare(ctx, "p1", domain.CommuteStatusComing, "driver-1", now.Add(time.Hour))
	if !errors.Is(err, service.ErrAlreadyDeclared) {
		t.Fatalf("expected ErrAlreadyDeclared, got %v", err)
	}

	err = svc.Declare(ctx, "p1", domain.CommuteStatusAbsent, "driver-1", now.Add(2*time.Hour))
	if !errors.Is(err, service.ErrAlreadyDeclared) {
		t.Fatalf("expected ErrAlreadyDeclared for a flip, got %v", err)
	}

	// The original record is untouched.
	record, _ := svc.DeclaredStatus(ctx, "p1", domain.DateOf(now))
	if record.Status != domain.CommuteStatusComing {
		t.Errorf("original declaration must survive rejected repeats, got %s", record.Status)
	}
}

func TestDeclare_NextDayIsAFreshSlate(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newAttendanceService()
	ctx := context.Background()
	today := time.Now()
	tomorrow := today.Add(24 * time.Hour)

	if err := svc.Declare(ctx, "p1", domain.CommuteStatusAbsent, "driver-1", today); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Declare(ctx, "p1", domain.CommuteStatusComing, "driver-1", tomorrow); err != nil {
		t.Fatalf("a new date should accept a new declaration: %v", err)
	}
}

func TestDeclare_ConcurrentDuplicates_ExactlyOneWins(t *testing.T) {
	t.Parallel()

	svc, repo, _, _ := newAttendanceService()
	now := time.Now()

	const attempts = 20
	var successes int32
	var wg sync.WaitGroup
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		status := domain.CommuteStatusComing
		if i%2 == 1 {
			status = domain.CommuteStatusAbsent
		}
		go func(s domain.CommuteStatus) {
			defer wg.Done()
			if err := svc.Declare(context.Background(), "p1", s, "driver-1", now); err == nil {
				atomic.AddInt32(&successes, 1)
			}
		}(status)
	}
	wg.Wait()

	if successes != 1 {
		t.Errorf("expected exactly 1 successful declaration, got %d", successes)
	}
	if repo.CountRecords() != 1 {
		t.Errorf("expected exactly 1 stored record, got %d", repo.CountRecords())
	}
}

func TestDeclare_InvalidStatus_Rejected(t *testing.T) {
	t.Parallel()

	svc, repo, _, _ := newAttendanceService()

	err := svc.Declare(context.Background(), "p1", "maybe", "driver-1", time.Now())
	if !errors.Is(err, service.ErrInvalidCommuteStatus) {
		t.Fatalf("expected ErrInvalidCommuteStatus, got %v", err)
	}
	if repo.CountRecords() != 0 {
		t.Error("invalid declarations must not be stored")
	}
}

func TestComingToday_ScopedToDriverRoster(t *testing.T) {
	t.Parallel()

	svc, attendanceRepo, busRepo, passengerRepo := newAttendanceService()
	ctx := context.Background()
	now := time.Now()
	date := domain.DateOf(now)

	busRepo.AddBus(&domain.Bus{DriverID: "driver-1", Passengers: []string{"p1", "p2"}})
	passengerRepo.AddPassenger(&domain.Passenger{ID: "p1", Name: "Asha", Role: domain.RoleStudent, IsApproved: true})
	passengerRepo.AddPassenger(&domain.Passenger{ID: "p2", Name: "Ravi", Role: domain.RoleStudent, IsApproved: true})
	passengerRepo.AddPassenger(&domain.Passenger{ID: "p3", Name: "Meena", Role: domain.RoleStudent, IsApproved: true})

	// p1 coming on the roster, p2 absent, p3 coming but on another bus.
	attendanceRepo.Create(ctx, &domain.DailyStatus{UserID: "p1", Date: date, Status: domain.CommuteStatusComing})
	attendanceRepo.Create(ctx, &domain.DailyStatus{UserID: "p2", Date: date, Status: domain.CommuteStatusAbsent})
	attendanceRepo.Create(ctx, &domain.DailyStatus{UserID: "p3", Date: date, Status: domain.CommuteStatusComing})

	coming, err := svc.ComingToday(ctx, "driver-1", date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(coming) != 1 || coming[0].ID != "p1" {
		t.Errorf("expected only p1 on driver-1's list, got %+v", coming)
	}

	// Institute-wide view sees everyone coming.
	all, err := svc.ComingToday(ctx, "", date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 coming institute-wide, got %d", len(all))
	}
}

func TestComingToday_DriverWithoutBus_BusNotFound(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newAttendanceService()

	_, err := svc.ComingToday(context.Background(), "driver-9", domain.DateOf(time.Now()))
	if !errors.Is(err, service.ErrBusNotFound) {
		t.Fatalf("expected ErrBusNotFound, got %v", err)
	}
}
