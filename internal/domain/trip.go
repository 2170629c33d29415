package domain

import "time"

// TripStatus represents the current status of a trip.
type TripStatus string

const (
	TripStatusStarted   TripStatus = "STARTED"
	TripStatusCompleted TripStatus = "COMPLETED"
)

// Prediction is a computed arrival estimate for one passenger, snapshotted
// when the trip starts and never recomputed.
type Prediction struct {
	UserID               string    `json:"user_id"`
	PredictedArrivalTime time.Time `json:"predicted_arrival_time"`
	Distance             int64     `json:"distance"` // meters
	Duration             int64     `json:"duration"` // seconds
}

// Trip is one run of a bus from start to end.
// At most one trip per driver may be in STARTED state at a time.
type Trip struct {
	ID          string
	DriverID    string
	Status      TripStatus
	StartTime   time.Time
	Predictions []Prediction
	LastUpdated time.Time
}

// PredictionFor returns the prediction for the given passenger, if present.
func (t *Trip) PredictionFor(userID string) (Prediction, bool) {
	for _, p := range t.Predictions {
		if p.UserID == userID {
			return p, true
		}
	}
	return Prediction{}, false
}
