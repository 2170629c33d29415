package tests

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"campusbus/internal/domain"
	"campusbus/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK BUS REPOSITORY
// ──────────────────────────────────────────────

// MockBusRepository is a mock implementation of BusRepository.
type MockBusRepository struct {
	mu    sync.RWMutex
	buses map[string]*domain.Bus

	// Counters for verification
	UpsertCallCount          int32
	AddPassengerCallCount    int32
	RemovePassengerCallCount int32

	// Error injection
	UpsertError       error
	AddPassengerError error
}

// NewMockBusRepository creates a new mock bus repository.
func NewMockBusRepository() *MockBusRepository {
	return &MockBusRepository{
		buses: make(map[string]*domain.Bus),
	}
}

// AddBus adds a bus to the mock repository.
func (m *MockBusRepository) AddBus(bus *domain.Bus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buses[bus.DriverID] = bus
}

func (m *MockBusRepository) Upsert(ctx context.Context, driverID, busNumber string) (*domain.Bus, error) {
	atomic.AddInt32(&m.UpsertCallCount, 1)
	if m.UpsertError != nil {
		return nil, m.UpsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	bus, ok := m.buses[driverID]
	if !ok {
		bus = &domain.Bus{DriverID: driverID, Passengers: []string{}}
		m.buses[driverID] = bus
	}
	bus.BusNumber = busNumber
	copy := *bus
	return &copy, nil
}

func (m *MockBusRepository) GetByDriverID(ctx context.Context, driverID string) (*domain.Bus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	bus, ok := m.buses[driverID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *bus
	copy.Passengers = append([]string(nil), bus.Passengers...)
	return &copy, nil
}

func (m *MockBusRepository) AddPassenger(ctx context.Context, driverID, passengerID string) error {
	atomic.AddInt32(&m.AddPassengerCallCount, 1)
	if m.AddPassengerError != nil {
		return m.AddPassengerError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	bus, ok := m.buses[driverID]
	if !ok {
		bus = &domain.Bus{DriverID: driverID, Passengers: []string{}}
		m.buses[driverID] = bus
	}
	// Set semantics: adding a member twice is a no-op.
	if bus.HasPassenger(passengerID) {
		return nil
	}
	bus.Passengers = append(bus.Passengers, passengerID)
	return nil
}

func (m *MockBusRepository) RemovePassenger(ctx context.Context, driverID, passengerID string) error {
	atomic.AddInt32(&m.RemovePassengerCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	bus, ok := m.buses[driverID]
	if !ok {
		return nil
	}
	for i, id := range bus.Passengers {
		if id == passengerID {
			bus.Passengers = append(bus.Passengers[:i], bus.Passengers[i+1:]...)
			return nil
		}
	}
	return nil
}

// GetBus returns the bus by driver ID (for test assertions).
func (m *MockBusRepository) GetBus(driverID string) *domain.Bus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.buses[driverID]
}

// ──────────────────────────────────────────────
// MOCK PASSENGER REPOSITORY
// ──────────────────────────────────────────────

// MockPassengerRepository is a mock implementation of PassengerRepository.
type MockPassengerRepository struct {
	mu         sync.RWMutex
	passengers map[string]*domain.Passenger

	// Error injection
	GetByIDsError error
}

// NewMockPassengerRepository creates a new mock passenger repository.
func NewMockPassengerRepository() *MockPassengerRepository {
	return &MockPassengerRepository{
		passengers: make(map[string]*domain.Passenger),
	}
}

// AddPassenger adds a passenger to the mock repository.
func (m *MockPassengerRepository) AddPassenger(p *domain.Passenger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.passengers[p.ID] = p
}

func (m *MockPassengerRepository) GetByID(ctx context.Context, id string) (*domain.Passenger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.passengers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *p
	return &copy, nil
}

func (m *MockPassengerRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.Passenger, error) {
	if m.GetByIDsError != nil {
		return nil, m.GetByIDsError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Passenger, 0, len(ids))
	for _, id := range ids {
		if p, ok := m.passengers[id]; ok {
			copy := *p
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockPassengerRepository) GetApprovedRiders(ctx context.Context) ([]*domain.Passenger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Passenger, 0, len(m.passengers))
	for _, p := range m.passengers {
		if !p.IsApproved || p.Role == domain.RoleDriver || p.Role == domain.RoleAdmin {
			continue
		}
		copy := *p
		result = append(result, &copy)
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK ATTENDANCE REPOSITORY
// ──────────────────────────────────────────────

// MockAttendanceRepository is a mock implementation of AttendanceRepository.
type MockAttendanceRepository struct {
	mu      sync.Mutex
	records map[string]*domain.DailyStatus // keyed by userID + "|" + date

	// Counters for verification
	CreateCallCount int32

	// Error injection
	CreateError error
}

// NewMockAttendanceRepository creates a new mock attendance repository.
func NewMockAttendanceRepository() *MockAttendanceRepository {
	return &MockAttendanceRepository{
		records: make(map[string]*domain.DailyStatus),
	}
}

func attendanceKey(userID, date string) string {
	return userID + "|" + date
}

func (m *MockAttendanceRepository) Create(ctx context.Context, status *domain.DailyStatus) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := attendanceKey(status.UserID, status.Date)
	// First write wins, exactly like the unique index.
	if _, exists := m.records[key]; exists {
		return repository.ErrAlreadyDeclared
	}
	copy := *status
	m.records[key] = &copy
	return nil
}

func (m *MockAttendanceRepository) GetByUserAndDate(ctx context.Context, userID, date string) (*domain.DailyStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[attendanceKey(userID, date)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *record
	return &copy, nil
}

func (m *MockAttendanceRepository) GetComingUserIDs(ctx context.Context, date string, userIDs []string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	allowed := map[string]bool{}
	for _, id := range userIDs {
		allowed[id] = true
	}

	var result []string
	for _, record := range m.records {
		if record.Date != date || record.Status != domain.CommuteStatusComing {
			continue
		}
		if len(userIDs) > 0 && !allowed[record.UserID] {
			continue
		}
		result = append(result, record.UserID)
	}
	return result, nil
}

// CountRecords returns the number of stored declarations.
func (m *MockAttendanceRepository) CountRecords() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// ──────────────────────────────────────────────
// MOCK TRIP REPOSITORY
// ──────────────────────────────────────────────

// MockTripRepository is a mock implementation of TripRepository.
type MockTripRepository struct {
	mu    sync.RWMutex
	trips map[string]*domain.Trip // keyed by trip ID

	// Counters for verification
	UpsertStartedCallCount int32
	CompleteCallCount      int32

	// Error injection
	UpsertStartedError error
	CompleteError      error
}

// NewMockTripRepository creates a new mock trip repository.
func NewMockTripRepository() *MockTripRepository {
	return &MockTripRepository{
		trips: make(map[string]*domain.Trip),
	}
}

// AddTrip adds a trip to the mock repository.
func (m *MockTripRepository) AddTrip(trip *domain.Trip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
}

func (m *MockTripRepository) UpsertStarted(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.UpsertStartedCallCount, 1)
	if m.UpsertStartedError != nil {
		return m.UpsertStartedError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	// Like the partial-unique-index upsert: a conflicting STARTED row is
	// updated in place and keeps its id.
	for _, t := range m.trips {
		if t.DriverID == trip.DriverID && t.Status == domain.TripStatusStarted {
			t.StartTime = trip.StartTime
			t.Predictions = append([]domain.Prediction(nil), trip.Predictions...)
			t.LastUpdated = trip.LastUpdated
			return nil
		}
	}
	copy := *trip
	m.trips[trip.ID] = &copy
	return nil
}

func (m *MockTripRepository) CompleteAllStarted(ctx context.Context, driverID string, now time.Time) (int64, error) {
	atomic.AddInt32(&m.CompleteCallCount, 1)
	if m.CompleteError != nil {
		return 0, m.CompleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var affected int64
	for _, t := range m.trips {
		if t.DriverID == driverID && t.Status == domain.TripStatusStarted {
			t.Status = domain.TripStatusCompleted
			t.LastUpdated = now
			affected++
		}
	}
	return affected, nil
}

func (m *MockTripRepository) GetStartedByDriverID(ctx context.Context, driverID string) (*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.trips {
		if t.DriverID == driverID && t.Status == domain.TripStatusStarted {
			copy := *t
			return &copy, nil
		}
	}
	return nil, nil
}

func (m *MockTripRepository) FindStartedWithPassenger(ctx context.Context, userID string) (*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.trips {
		if t.Status != domain.TripStatusStarted {
			continue
		}
		if _, ok := t.PredictionFor(userID); ok {
			copy := *t
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

// StartedTripFor returns the driver's STARTED trip (for test assertions).
func (m *MockTripRepository) StartedTripFor(driverID string) *domain.Trip {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.trips {
		if t.DriverID == driverID && t.Status == domain.TripStatusStarted {
			return t
		}
	}
	return nil
}

// CountStarted returns the number of STARTED trips for a driver.
func (m *MockTripRepository) CountStarted(driverID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, t := range m.trips {
		if t.DriverID == driverID && t.Status == domain.TripStatusStarted {
			count++
		}
	}
	return count
}

// CountTrips returns the total number of trips.
func (m *MockTripRepository) CountTrips() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.trips)
}

// ──────────────────────────────────────────────
// MOCK SOS REPOSITORY
// ──────────────────────────────────────────────

// MockSOSRepository is a mock implementation of SOSRepository.
type MockSOSRepository struct {
	mu     sync.Mutex
	alerts []*domain.SOSAlert

	// Counters for verification
	CreateCallCount int32

	// Error injection
	CreateError error
}

// NewMockSOSRepository creates a new mock SOS repository.
func NewMockSOSRepository() *MockSOSRepository {
	return &MockSOSRepository{}
}

func (m *MockSOSRepository) Create(ctx context.Context, alert *domain.SOSAlert) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *alert
	m.alerts = append(m.alerts, &copy)
	return nil
}

func (m *MockSOSRepository) GetAll(ctx context.Context) ([]*domain.SOSAlert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.SOSAlert, 0, len(m.alerts))
	// Newest first.
	for i := len(m.alerts) - 1; i >= 0; i-- {
		copy := *m.alerts[i]
		result = append(result, &copy)
	}
	return result, nil
}

// CountAlerts returns the number of stored alerts.
func (m *MockSOSRepository) CountAlerts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.alerts)
}

// ──────────────────────────────────────────────
// MOCK LOCATION STORE
// ──────────────────────────────────────────────

// MockLocationStore is a mock implementation of LocationStoreInterface.
type MockLocationStore struct {
	mu        sync.RWMutex
	locations map[string]*domain.LiveLocation

	// Counters for verification
	UpsertCallCount int32
	DeleteCallCount int32

	// Error injection
	UpsertError error
	DeleteError error
}

// NewMockLocationStore creates a new mock location store.
func NewMockLocationStore() *MockLocationStore {
	return &MockLocationStore{
		locations: make(map[string]*domain.LiveLocation),
	}
}

func (m *MockLocationStore) Upsert(ctx context.Context, loc *domain.LiveLocation) error {
	atomic.AddInt32(&m.UpsertCallCount, 1)
	if m.UpsertError != nil {
		return m.UpsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *loc
	m.locations[loc.DriverID] = &copy
	return nil
}

func (m *MockLocationStore) Get(ctx context.Context, driverID string) (*domain.LiveLocation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	loc, ok := m.locations[driverID]
	if !ok {
		return nil, nil // offline
	}
	copy := *loc
	return &copy, nil
}

func (m *MockLocationStore) Delete(ctx context.Context, driverID string) error {
	atomic.AddInt32(&m.DeleteCallCount, 1)
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locations, driverID)
	return nil
}

// HasLocation checks if a driver's bus is online (for test assertions).
func (m *MockLocationStore) HasLocation(driverID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.locations[driverID]
	return ok
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of LockStoreInterface.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]time.Time

	// Counters for verification
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error

	// Force lock failure
	ForceAcquireFailure bool
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]time.Time),
	}
}

func (m *MockLockStore) AcquireDriverLock(ctx context.Context, driverID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	if m.ForceAcquireFailure {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := "lock:driver:" + driverID
	if expiry, exists := m.locks[key]; exists {
		if time.Now().Before(expiry) {
			return false, nil // Lock still held.
		}
	}

	m.locks[key] = time.Now().Add(ttl)
	return true, nil
}

func (m *MockLockStore) ReleaseDriverLock(ctx context.Context, driverID string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, "lock:driver:"+driverID)
	return nil
}

// IsLocked checks if a driver is locked (for test assertions).
func (m *MockLockStore) IsLocked(driverID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	expiry, exists := m.locks["lock:driver:"+driverID]
	return exists && time.Now().Before(expiry)
}

// ──────────────────────────────────────────────
// MOCK PUBLISHER
// ──────────────────────────────────────────────

// PublishedEvent records one fanout delivery for assertions.
type PublishedEvent struct {
	Room     string // empty for broadcasts
	SkipRoom string // room excluded from a broadcast, when any
	Event    string
	Data     any
}

// MockPublisher is a mock implementation of the fanout Publisher.
type MockPublisher struct {
	mu     sync.Mutex
	events []PublishedEvent
}

// NewMockPublisher creates a new mock publisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Broadcast(event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, PublishedEvent{Event: event, Data: data})
}

func (m *MockPublisher) BroadcastExcept(room, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, PublishedEvent{SkipRoom: room, Event: event, Data: data})
}

func (m *MockPublisher) Emit(room, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, PublishedEvent{Room: room, Event: event, Data: data})
}

// Events returns all recorded deliveries.
func (m *MockPublisher) Events() []PublishedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]PublishedEvent, len(m.events))
	copy(result, m.events)
	return result
}

// CountEvent returns how many times an event was delivered to a room.
func (m *MockPublisher) CountEvent(room, event string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, e := range m.events {
		if e.Room == room && e.Event == event {
			count++
		}
	}
	return count
}

// ──────────────────────────────────────────────
// MOCK EMAIL SENDER
// ──────────────────────────────────────────────

// MockEmailSender is a mock implementation of EmailSender.
type MockEmailSender struct {
	mu sync.Mutex

	// Counters for verification
	SendCallCount int32

	// Error injection
	SendError error

	// Last call arguments
	LastEmails  []string
	LastMapLink string
}

// NewMockEmailSender creates a new mock email sender.
func NewMockEmailSender() *MockEmailSender {
	return &MockEmailSender{}
}

func (m *MockEmailSender) SendSOSEmail(emails []string, driverName, reason, mapLink string) error {
	atomic.AddInt32(&m.SendCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastEmails = append([]string(nil), emails...)
	m.LastMapLink = mapLink
	if m.SendError != nil {
		return m.SendError
	}
	return nil
}

// ──────────────────────────────────────────────
// HELPER ERRORS
// ──────────────────────────────────────────────

var (
	ErrMockDBConstraint = errors.New("mock: unique constraint violation")
	ErrMockTimeout      = errors.New("mock: operation timeout")
)
