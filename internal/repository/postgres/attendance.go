package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"campusbus/internal/domain"
	"campusbus/internal/repository"
)

// AttendanceRepository is a PostgreSQL implementation of
// repository.AttendanceRepository.
type AttendanceRepository struct {
	q Querier
}

// NewAttendanceRepository creates a new PostgreSQL attendance repository.
func NewAttendanceRepository(db *sql.DB) *AttendanceRepository {
	return &AttendanceRepository{q: db}
}

// Create inserts the one-per-day declaration. The unique index on
// (user_id, date) makes the check-then-insert atomic: under concurrent
// duplicates exactly one insert wins and the rest see ErrAlreadyDeclared.
func (r *AttendanceRepository) Create(ctx context.Context, status *domain.DailyStatus) error {
	query := `
		INSERT INTO bus_attendance (user_id, date, status, driver_id, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, date) DO NOTHING
	`

	result, err := r.q.ExecContext(ctx, query,
		status.UserID,
		status.Date,
		status.Status,
		status.DriverID,
		status.UpdatedAt,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrAlreadyDeclared
	}

	return nil
}

// GetByUserAndDate retrieves a declaration.
func (r *AttendanceRepository) GetByUserAndDate(ctx context.Context, userID, date string) (*domain.DailyStatus, error) {
	query := `
		SELECT user_id, date, status, driver_id, updated_at
		FROM bus_attendance WHERE user_id = $1 AND date = $2
	`

	var status domain.DailyStatus
	err := r.q.QueryRowContext(ctx, query, userID, date).Scan(
		&status.UserID,
		&status.Date,
		&status.Status,
		&status.DriverID,
		&status.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &status, nil
}

// GetComingUserIDs returns users marked coming on the date, restricted to
// userIDs when non-empty, institute-wide otherwise.
func (r *AttendanceRepository) GetComingUserIDs(ctx context.Context, date string, userIDs []string) ([]string, error) {
	var rows *sql.Rows
	var err error

	if len(userIDs) > 0 {
		query := `
			SELECT user_id FROM bus_attendance
			WHERE date = $1 AND status = 'coming' AND user_id = ANY ($2)
		`
		rows, err = r.q.QueryContext(ctx, query, date, pq.Array(userIDs))
	} else {
		query := `
			SELECT user_id FROM bus_attendance
			WHERE date = $1 AND status = 'coming'
		`
		rows, err = r.q.QueryContext(ctx, query, date)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// Ensure AttendanceRepository implements repository.AttendanceRepository.
var _ repository.AttendanceRepository = (*AttendanceRepository)(nil)
