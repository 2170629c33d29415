package postgres

import (
	"context"
	"database/sql"

	"campusbus/internal/domain"
	"campusbus/internal/repository"
)

// SOSRepository is a PostgreSQL implementation of repository.SOSRepository.
type SOSRepository struct {
	q Querier
}

// NewSOSRepository creates a new PostgreSQL SOS repository.
func NewSOSRepository(db *sql.DB) *SOSRepository {
	return &SOSRepository{q: db}
}

// Create persists a new alert.
func (r *SOSRepository) Create(ctx context.Context, alert *domain.SOSAlert) error {
	query := `
		INSERT INTO sos_alerts (id, driver_id, reason, lat, lng, resolved, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.q.ExecContext(ctx, query,
		alert.ID,
		alert.DriverID,
		alert.Reason,
		alert.Location.Lat,
		alert.Location.Lng,
		alert.Resolved,
		alert.CreatedAt,
	)

	return err
}

// GetAll retrieves alerts, newest first.
func (r *SOSRepository) GetAll(ctx context.Context) ([]*domain.SOSAlert, error) {
	query := `
		SELECT id, driver_id, reason, lat, lng, resolved, created_at
		FROM sos_alerts ORDER BY created_at DESC LIMIT 100
	`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []*domain.SOSAlert
	for rows.Next() {
		var alert domain.SOSAlert
		if err := rows.Scan(
			&alert.ID,
			&alert.DriverID,
			&alert.Reason,
			&alert.Location.Lat,
			&alert.Location.Lng,
			&alert.Resolved,
			&alert.CreatedAt,
		); err != nil {
			return nil, err
		}
		alerts = append(alerts, &alert)
	}

	return alerts, rows.Err()
}

// Ensure SOSRepository implements repository.SOSRepository.
var _ repository.SOSRepository = (*SOSRepository)(nil)
