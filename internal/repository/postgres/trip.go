package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"campusbus/internal/domain"
	"campusbus/internal/repository"
)

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
// Predictions are stored as a JSONB column; the partial unique index on
// (driver_id) WHERE status = 'STARTED' enforces the one-active-trip rule.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

// UpsertStarted creates or replaces the single STARTED trip for the driver.
func (r *TripRepository) UpsertStarted(ctx context.Context, trip *domain.Trip) error {
	predictions, err := json.Marshal(trip.Predictions)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO trips (id, driver_id, status, start_time, predictions, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (driver_id) WHERE status = 'STARTED' DO UPDATE
		SET start_time = EXCLUDED.start_time,
		    predictions = EXCLUDED.predictions,
		    last_updated = EXCLUDED.last_updated
	`

	_, err = r.q.ExecContext(ctx, query,
		trip.ID,
		trip.DriverID,
		domain.TripStatusStarted,
		trip.StartTime,
		predictions,
		trip.LastUpdated,
	)

	return err
}

// CompleteAllStarted transitions every STARTED trip for the driver to
// COMPLETED. Normally exactly one row is affected; more can exist after a
// race and are swept up together.
func (r *TripRepository) CompleteAllStarted(ctx context.Context, driverID string, now time.Time) (int64, error) {
	query := `
		UPDATE trips
		SET status = $2, last_updated = $3
		WHERE driver_id = $1 AND status = $4
	`

	result, err := r.q.ExecContext(ctx, query, driverID, domain.TripStatusCompleted, now, domain.TripStatusStarted)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// GetStartedByDriverID retrieves the driver's STARTED trip, or nil.
func (r *TripRepository) GetStartedByDriverID(ctx context.Context, driverID string) (*domain.Trip, error) {
	query := `
		SELECT id, driver_id, status, start_time, predictions, last_updated
		FROM trips
		WHERE driver_id = $1 AND status = $2
		LIMIT 1
	`

	trip, err := r.scanTrip(r.q.QueryRowContext(ctx, query, driverID, domain.TripStatusStarted))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return trip, nil
}

// FindStartedWithPassenger retrieves a STARTED trip whose prediction
// snapshot contains the passenger.
func (r *TripRepository) FindStartedWithPassenger(ctx context.Context, userID string) (*domain.Trip, error) {
	needle, err := json.Marshal([]map[string]string{{"user_id": userID}})
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, driver_id, status, start_time, predictions, last_updated
		FROM trips
		WHERE status = $1 AND predictions @> $2
		LIMIT 1
	`

	trip, err := r.scanTrip(r.q.QueryRowContext(ctx, query, domain.TripStatusStarted, needle))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return trip, nil
}

func (r *TripRepository) scanTrip(row *sql.Row) (*domain.Trip, error) {
	var trip domain.Trip
	var predictions []byte

	err := row.Scan(
		&trip.ID,
		&trip.DriverID,
		&trip.Status,
		&trip.StartTime,
		&predictions,
		&trip.LastUpdated,
	)
	if err != nil {
		return nil, err
	}

	if len(predictions) > 0 {
		if err := json.Unmarshal(predictions, &trip.Predictions); err != nil {
			return nil, err
		}
	}

	return &trip, nil
}

// Ensure TripRepository implements repository.TripRepository.
var _ repository.TripRepository = (*TripRepository)(nil)
