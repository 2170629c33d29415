package domain

// Bus is a driver's bus profile with its assigned passenger roster.
// At most one bus exists per driver.
type Bus struct {
	DriverID   string
	BusNumber  string
	Passengers []string // passenger IDs, unique membership, order irrelevant
}

// HasPassenger reports whether the given passenger is on the roster.
func (b *Bus) HasPassenger(passengerID string) bool {
	for _, id := range b.Passengers {
		if id == passengerID {
			return true
		}
	}
	return false
}
