package service

import (
	"context"
	"errors"
	"time"

	"campusbus/internal/domain"
	"campusbus/internal/redis"
	"campusbus/internal/repository"
)

// AttendanceService owns the once-per-day commute declarations.
type AttendanceService struct {
	attendanceRepo repository.AttendanceRepository
	busRepo        repository.BusRepository
	passengerRepo  repository.PassengerRepository
	cacheStore     *redis.CacheStore
}

// NewAttendanceService creates a new AttendanceService.
func NewAttendanceService(
	attendanceRepo repository.AttendanceRepository,
	busRepo repository.BusRepository,
	passengerRepo repository.PassengerRepository,
	cacheStore *redis.CacheStore,
) *AttendanceService {
	return &AttendanceService{
		attendanceRepo: attendanceRepo,
		busRepo:        busRepo,
		passengerRepo:  passengerRepo,
		cacheStore:     cacheStore,
	}
}

// Declare records the passenger's commute status for today. A second
// declaration for the same date fails with ErrAlreadyDeclared and leaves the
// original record untouched.
func (s *AttendanceService) Declare(ctx context.Context, userID string, status domain.CommuteStatus, driverID string, now time.Time) error {
	if userID == "" {
		return ErrInvalidUserID
	}
	if status != domain.CommuteStatusComing && status != domain.CommuteStatusAbsent {
		return ErrInvalidCommuteStatus
	}

	record := &domain.DailyStatus{
		UserID:    userID,
		Date:      domain.DateOf(now),
		Status:    status,
		DriverID:  driverID,
		UpdatedAt: now,
	}

	if err := s.attendanceRepo.Create(ctx, record); err != nil {
		if errors.Is(err, repository.ErrAlreadyDeclared) {
			return ErrAlreadyDeclared
		}
		return err
	}

	return nil
}

// DeclaredStatus retrieves the passenger's declaration for a date, or nil
// when none exists.
func (s *AttendanceService) DeclaredStatus(ctx context.Context, userID, date string) (*domain.DailyStatus, error) {
	record, err := s.attendanceRepo.GetByUserAndDate(ctx, userID, date)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

// ComingToday returns passengers marked coming for the date. With a driver
// ID it intersects that driver's roster; without one it operates
// institute-wide. A driver without a bus profile is ErrBusNotFound.
func (s *AttendanceService) ComingToday(ctx context.Context, driverID, date string) ([]*domain.Passenger, error) {
	var roster []string

	if driverID != "" {
		bus, err := s.busRepo.GetByDriverID(ctx, driverID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrBusNotFound
			}
			return nil, err
		}
		if len(bus.Passengers) == 0 {
			return nil, nil
		}
		roster = bus.Passengers
	}

	comingIDs, err := s.attendanceRepo.GetComingUserIDs(ctx, date, roster)
	if err != nil {
		return nil, err
	}

	return fetchPassengers(ctx, s.cacheStore, s.passengerRepo, comingIDs)
}
