package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"campusbus/internal/domain"
	"campusbus/internal/repository"
)

// PassengerRepository is a PostgreSQL implementation of
// repository.PassengerRepository. Rows come from the identity source and are
// never written by this service.
type PassengerRepository struct {
	q Querier
}

// NewPassengerRepository creates a new PostgreSQL passenger repository.
func NewPassengerRepository(db *sql.DB) *PassengerRepository {
	return &PassengerRepository{q: db}
}

const passengerColumns = `id, name, email, role, is_approved, home_lat, home_lng`

// GetByID retrieves a single user.
func (r *PassengerRepository) GetByID(ctx context.Context, id string) (*domain.Passenger, error) {
	query := `SELECT ` + passengerColumns + ` FROM users WHERE id = $1`

	p, err := scanPassenger(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return p, nil
}

// GetByIDs retrieves the users whose IDs are listed.
func (r *PassengerRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.Passenger, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + passengerColumns + ` FROM users WHERE id = ANY ($1)`

	rows, err := r.q.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPassengers(rows)
}

// GetApprovedRiders retrieves approved users who are neither drivers nor
// admins.
func (r *PassengerRepository) GetApprovedRiders(ctx context.Context) ([]*domain.Passenger, error) {
	query := `
		SELECT ` + passengerColumns + `
		FROM users
		WHERE is_approved = TRUE AND role NOT IN ($1, $2)
	`

	rows, err := r.q.QueryContext(ctx, query, domain.RoleDriver, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPassengers(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPassenger(row rowScanner) (*domain.Passenger, error) {
	var p domain.Passenger
	var homeLat, homeLng sql.NullFloat64

	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Email,
		&p.Role,
		&p.IsApproved,
		&homeLat,
		&homeLng,
	); err != nil {
		return nil, err
	}

	if homeLat.Valid && homeLng.Valid {
		p.HomeLocation = &domain.Coordinate{Lat: homeLat.Float64, Lng: homeLng.Float64}
	}

	return &p, nil
}

func scanPassengers(rows *sql.Rows) ([]*domain.Passenger, error) {
	var passengers []*domain.Passenger
	for rows.Next() {
		p, err := scanPassenger(rows)
		if err != nil {
			return nil, err
		}
		passengers = append(passengers, p)
	}

	return passengers, rows.Err()
}

// Ensure PassengerRepository implements repository.PassengerRepository.
var _ repository.PassengerRepository = (*PassengerRepository)(nil)
