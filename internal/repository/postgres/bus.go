package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"campusbus/internal/domain"
	"campusbus/internal/repository"
)

// BusRepository is a PostgreSQL implementation of repository.BusRepository.
type BusRepository struct {
	q Querier
}

// NewBusRepository creates a new PostgreSQL bus repository.
func NewBusRepository(db *sql.DB) *BusRepository {
	return &BusRepository{q: db}
}

// Upsert creates the driver's bus profile or updates its number in place.
func (r *BusRepository) Upsert(ctx context.Context, driverID, busNumber string) (*domain.Bus, error) {
	query := `
		INSERT INTO buses (driver_id, bus_number)
		VALUES ($1, $2)
		ON CONFLICT (driver_id) DO UPDATE SET bus_number = EXCLUDED.bus_number
		RETURNING driver_id, bus_number, passengers
	`

	var bus domain.Bus
	var passengers pq.StringArray
	err := r.q.QueryRowContext(ctx, query, driverID, busNumber).Scan(
		&bus.DriverID,
		&bus.BusNumber,
		&passengers,
	)
	if err != nil {
		return nil, err
	}

	bus.Passengers = passengers
	return &bus, nil
}

// GetByDriverID retrieves a bus by driver.
func (r *BusRepository) GetByDriverID(ctx context.Context, driverID string) (*domain.Bus, error) {
	query := `
		SELECT driver_id, bus_number, passengers
		FROM buses WHERE driver_id = $1
	`

	var bus domain.Bus
	var passengers pq.StringArray
	err := r.q.QueryRowContext(ctx, query, driverID).Scan(
		&bus.DriverID,
		&bus.BusNumber,
		&passengers,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	bus.Passengers = passengers
	return &bus, nil
}

// AddPassenger adds a passenger with set semantics, creating an empty roster
// for the driver if none exists yet.
func (r *BusRepository) AddPassenger(ctx context.Context, driverID, passengerID string) error {
	query := `
		INSERT INTO buses (driver_id, bus_number, passengers)
		VALUES ($1, '', ARRAY[$2])
		ON CONFLICT (driver_id) DO UPDATE
		SET passengers = CASE
			WHEN $2 = ANY (buses.passengers) THEN buses.passengers
			ELSE array_append(buses.passengers, $2)
		END
	`

	_, err := r.q.ExecContext(ctx, query, driverID, passengerID)
	return err
}

// RemovePassenger removes a passenger. Removing a non-member or operating on
// a missing roster is a no-op.
func (r *BusRepository) RemovePassenger(ctx context.Context, driverID, passengerID string) error {
	query := `
		UPDATE buses
		SET passengers = array_remove(passengers, $2)
		WHERE driver_id = $1
	`

	_, err := r.q.ExecContext(ctx, query, driverID, passengerID)
	return err
}

// Ensure BusRepository implements repository.BusRepository.
var _ repository.BusRepository = (*BusRepository)(nil)
