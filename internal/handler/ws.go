package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"campusbus/internal/domain"
	"campusbus/internal/service"
	"campusbus/internal/ws"
)

// Inbound socket events.
const (
	eventJoinApp        = "join-app"
	eventLocationUpdate = "driver-location-update"
	eventSOSAlert       = "sos-alert"
)

// WSHandler upgrades socket connections and routes inbound events.
type WSHandler struct {
	hub             *ws.Hub
	locationService *service.LocationService
	sosService      *service.SOSService
	upgrader        websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(hub *ws.Hub, locationService *service.LocationService, sosService *service.SOSService) *WSHandler {
	return &WSHandler{
		hub:             hub,
		locationService: locationService,
		sosService:      sosService,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// joinRequest is the subscription message a client sends after connecting.
type joinRequest struct {
	Role           string `json:"role"`
	DriverID       string `json:"driver_id"`
	ClassTeacherID string `json:"class_teacher_id"`
}

// locationUpdate is the position message a driver's device pushes.
type locationUpdate struct {
	DriverID string  `json:"driver_id"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Heading  float64 `json:"heading"`
	Speed    float64 `json:"speed"`
}

// sosAlert is the emergency message a driver's device pushes.
type sosAlert struct {
	DriverID string  `json:"driver_id"`
	Message  string  `json:"message"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
}

// Handle handles GET /ws
func (h *WSHandler) Handle(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	client := h.hub.Register(conn)
	defer h.hub.Unregister(client)

	h.readLoop(client, conn)
}

func (h *WSHandler) readLoop(client *ws.Client, conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("ws: read error: %v", err)
			}
			return
		}

		var msg ws.Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Printf("ws: invalid message: %v", err)
			continue
		}

		if err := h.handleMessage(client, msg); err != nil {
			log.Printf("ws: failed to handle %s: %v", msg.Event, err)
		}
	}
}

func (h *WSHandler) handleMessage(client *ws.Client, msg ws.Message) error {
	switch msg.Event {
	case eventJoinApp:
		return h.handleJoin(client, msg.Data)
	case eventLocationUpdate:
		return h.handleLocationUpdate(msg.Data)
	case eventSOSAlert:
		return h.handleSOS(msg.Data)
	default:
		log.Printf("ws: unknown event %q", msg.Event)
		return nil
	}
}

// handleJoin subscribes the client to the rooms matching its identity.
// Admins additionally land in the global admin channel.
func (h *WSHandler) handleJoin(client *ws.Client, data json.RawMessage) error {
	var req joinRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return err
	}

	if req.Role != "" {
		h.hub.Join(client, ws.RoleRoom(req.Role))
	}
	if req.Role == string(domain.RoleAdmin) {
		h.hub.Join(client, ws.AdminRoom)
	}
	if req.ClassTeacherID != "" {
		h.hub.Join(client, ws.ClassRoom(req.ClassTeacherID))
	}
	if req.DriverID != "" {
		h.hub.Join(client, ws.TripRoom(req.DriverID))
	}

	return nil
}

// handleLocationUpdate persists the position and fans it out. The socket has
// no request context, so updates run against a short background context.
func (h *WSHandler) handleLocationUpdate(data json.RawMessage) error {
	var update locationUpdate
	if err := json.Unmarshal(data, &update); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pos := domain.Position{
		Lat:     update.Lat,
		Lng:     update.Lng,
		Heading: update.Heading,
		Speed:   update.Speed,
	}
	return h.locationService.UpdateLocation(ctx, update.DriverID, pos, time.Now())
}

func (h *WSHandler) handleSOS(data json.RawMessage) error {
	var alert sosAlert
	if err := json.Unmarshal(data, &alert); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	location := domain.Coordinate{Lat: alert.Lat, Lng: alert.Lng}
	_, err := h.sosService.Trigger(ctx, alert.DriverID, alert.Message, location, time.Now())
	return err
}
