package domain

import "time"

// Coordinate is a point in degrees. Callers supply whatever the device
// reported; a 0,0 pair is a valid (if wrong) value.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Position is a coordinate plus motion data as reported by a driver's device.
type Position struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Heading float64 `json:"heading"` // 0-360
	Speed   float64 `json:"speed"`
}

// LiveLocation is the last known position of a driver's bus.
// Presence of this record is the definition of "bus is online".
type LiveLocation struct {
	DriverID    string    `json:"driver_id"`
	Location    Position  `json:"location"`
	LastUpdated time.Time `json:"last_updated"`
}
