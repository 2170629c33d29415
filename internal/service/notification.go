package service

import (
	"time"

	"campusbus/internal/domain"
	"campusbus/internal/ws"
)

// Event names emitted over the real-time channel.
const (
	EventTripStatus     = "trip-status"
	EventLiveBusUpdate  = "live-bus-update"
	EventAdminMapUpdate = "admin-map-update"
	EventSOSBroadcast   = "sos-broadcast"
	EventAdminAlert     = "admin-alert"
)

// Publisher is the delivery surface the fanout needs; *ws.Hub satisfies it.
type Publisher interface {
	Broadcast(event string, data any)
	BroadcastExcept(room, event string, data any)
	Emit(room, event string, data any)
}

// TripStatusEvent announces a trip starting or ending.
type TripStatusEvent struct {
	DriverID string `json:"driver_id"`
	Status   string `json:"status"`
	Message  string `json:"message"`
}

// LiveBusEvent carries a position update to a trip's subscribers.
type LiveBusEvent struct {
	DriverID string  `json:"driver_id"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Heading  float64 `json:"heading"`
	Speed    float64 `json:"speed"`
}

// AdminMapEvent carries a coarse position update to the admin map.
type AdminMapEvent struct {
	DriverID string  `json:"driver_id"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
}

// SOSEvent carries an emergency alert.
type SOSEvent struct {
	DriverID string            `json:"driver_id"`
	Type     string            `json:"type"`
	Message  string            `json:"message"`
	Location domain.Coordinate `json:"location"`
	Time     time.Time         `json:"time"`
}

// NotificationService fans trip, location and SOS events out to their
// audiences. Delivery is best-effort: nothing here returns an error, and a
// lost subscriber never fails the operation that triggered the event.
type NotificationService struct {
	hub Publisher
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(hub Publisher) *NotificationService {
	return &NotificationService{hub: hub}
}

// NotifyTripStatus announces a status change to the driver's trip subscribers.
func (s *NotificationService) NotifyTripStatus(driverID, status, message string) {
	if s == nil || s.hub == nil {
		return
	}
	s.hub.Emit(ws.TripRoom(driverID), EventTripStatus, TripStatusEvent{
		DriverID: driverID,
		Status:   status,
		Message:  message,
	})
}

// NotifyLiveBusUpdate pushes a position update to the trip's subscribers and
// a coarse update to the admin map channel.
func (s *NotificationService) NotifyLiveBusUpdate(driverID string, pos domain.Position) {
	if s == nil || s.hub == nil {
		return
	}
	s.hub.Emit(ws.TripRoom(driverID), EventLiveBusUpdate, LiveBusEvent{
		DriverID: driverID,
		Lat:      pos.Lat,
		Lng:      pos.Lng,
		Heading:  pos.Heading,
		Speed:    pos.Speed,
	})
	s.hub.Emit(ws.AdminRoom, EventAdminMapUpdate, AdminMapEvent{
		DriverID: driverID,
		Lat:      pos.Lat,
		Lng:      pos.Lng,
	})
}

// NotifySOS raises an emergency to the admin channel and the trip's
// subscribers, bypassing trip state.
func (s *NotificationService) NotifySOS(driverID, reason string, location domain.Coordinate, at time.Time) {
	if s == nil || s.hub == nil {
		return
	}
	event := SOSEvent{
		DriverID: driverID,
		Type:     "SOS",
		Message:  reason,
		Location: location,
		Time:     at,
	}
	s.hub.Emit(ws.AdminRoom, EventAdminAlert, event)
	s.hub.Emit(ws.TripRoom(driverID), EventSOSBroadcast, event)
}

// BroadcastTripStatus announces a status change institute-wide. Trip-room
// subscribers are skipped; they already received the scoped event with the
// full message.
func (s *NotificationService) BroadcastTripStatus(driverID, status string) {
	if s == nil || s.hub == nil {
		return
	}
	s.hub.BroadcastExcept(ws.TripRoom(driverID), EventTripStatus, TripStatusEvent{DriverID: driverID, Status: status})
}
