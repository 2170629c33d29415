package repository

import (
	"context"

	"campusbus/internal/domain"
)

// AttendanceRepository defines the persistence operations for daily
// commute declarations.
type AttendanceRepository interface {
	// Create inserts the one-per-day declaration. Returns ErrAlreadyDeclared
	// if a record for (UserID, Date) exists; the write must be atomic under
	// concurrent duplicate submissions.
	Create(ctx context.Context, status *domain.DailyStatus) error

	// GetByUserAndDate retrieves a declaration, or ErrNotFound.
	GetByUserAndDate(ctx context.Context, userID, date string) (*domain.DailyStatus, error)

	// GetComingUserIDs returns the IDs of users marked coming on the given
	// date, restricted to userIDs when non-empty, institute-wide otherwise.
	GetComingUserIDs(ctx context.Context, date string, userIDs []string) ([]string, error)
}
