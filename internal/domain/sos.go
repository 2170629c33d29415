package domain

import "time"

// SOSAlert records an emergency raised by a driver mid-trip.
type SOSAlert struct {
	ID        string
	DriverID  string
	Reason    string
	Location  Coordinate
	Resolved  bool
	CreatedAt time.Time
}
