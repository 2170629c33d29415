package prediction

import (
	"fmt"
	"math"
	"time"

	"campusbus/internal/domain"
	"campusbus/internal/geo"
)

// DefaultSpeedKmh is the assumed average bus speed when none is configured.
const DefaultSpeedKmh = 30.0

// Result is a computed arrival estimate.
type Result struct {
	ArrivalTime     time.Time
	DistanceMeters  int64
	DurationSeconds int64
}

// Engine computes arrival estimates under a constant-speed assumption.
type Engine struct {
	speedKmh float64
}

// NewEngine creates a prediction engine. A non-positive speed falls back to
// the default.
func NewEngine(speedKmh float64) *Engine {
	if speedKmh <= 0 {
		speedKmh = DefaultSpeedKmh
	}
	return &Engine{speedKmh: speedKmh}
}

// Predict estimates arrival at destination for a bus leaving origin at start.
// Deterministic given inputs.
func (e *Engine) Predict(origin, destination domain.Coordinate, start time.Time) Result {
	distanceKm := geo.DistanceKm(origin, destination)

	durationSeconds := int64(math.Round(distanceKm / e.speedKmh * 3600))

	return Result{
		ArrivalTime:     start.Add(time.Duration(durationSeconds) * time.Second),
		DistanceMeters:  int64(math.Round(distanceKm * 1000)),
		DurationSeconds: durationSeconds,
	}
}

// FormatDistance renders meters for short hops and kilometers to one decimal
// otherwise, matching the app's display convention.
func FormatDistance(meters int64) string {
	if meters < 1000 {
		return fmt.Sprintf("%d m", meters)
	}
	return fmt.Sprintf("%.1f Km", float64(meters)/1000)
}

// FormatDuration renders seconds below a minute, otherwise minutes with a
// seconds remainder when non-zero.
func FormatDuration(seconds int64) string {
	if seconds < 60 {
		return fmt.Sprintf("%d sec", seconds)
	}
	mins := seconds / 60
	secs := seconds % 60
	if secs > 0 {
		return fmt.Sprintf("%d min %d sec", mins, secs)
	}
	return fmt.Sprintf("%d min", mins)
}
