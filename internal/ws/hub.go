package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// Room name builders matching the channels clients subscribe to.
const (
	// AdminRoom is the implicit global audience for operational alerts.
	AdminRoom = "admin"
)

// TripRoom is the channel for one driver's trip subscribers.
func TripRoom(driverID string) string { return "trip-" + driverID }

// RoleRoom is the channel for everyone holding a role.
func RoleRoom(role string) string { return "role-" + role }

// ClassRoom is the channel for a teacher's class.
func ClassRoom(teacherID string) string { return "class-" + teacherID }

// Message is the event envelope exchanged over the socket.
type Message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// jsonWriter is the connection surface the hub needs; *websocket.Conn
// satisfies it.
type jsonWriter interface {
	WriteJSON(v any) error
}

// Client is one connected socket and the rooms it has joined.
type Client struct {
	conn jsonWriter

	mu    sync.Mutex // serializes writes on the connection
	rooms map[string]bool
}

func (c *Client) send(event string, data any) error {
	if c.conn == nil {
		return nil
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(Message{Event: event, Data: raw})
}

// Hub tracks connected clients and their room subscriptions and delivers
// events to them. Delivery is best-effort: a failed write is logged and never
// surfaced to the emitter.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	rooms   map[string]map[*Client]bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
		rooms:   make(map[string]map[*Client]bool),
	}
}

// Register adds a connection and returns its client handle.
func (h *Hub) Register(conn jsonWriter) *Client {
	client := &Client{conn: conn, rooms: make(map[string]bool)}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = true

	return client
}

// Unregister removes a client from the hub and every room it joined.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.clients, c)
	for room := range c.rooms {
		if members, ok := h.rooms[room]; ok {
			delete(members, c)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
}

// Join subscribes a client to a room.
func (h *Hub) Join(c *Client, room string) {
	if room == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]bool)
	}
	h.rooms[room][c] = true
	c.rooms[room] = true
}

// Broadcast delivers an event to every connected client.
func (h *Hub) Broadcast(event string, data any) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	h.deliver(targets, event, data)
}

// BroadcastExcept delivers an event to every connected client outside the
// given room. Used when the room already received a scoped copy.
func (h *Hub) BroadcastExcept(room, event string, data any) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		if c.rooms[room] {
			continue
		}
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	h.deliver(targets, event, data)
}

// Emit delivers an event to the members of one room.
func (h *Hub) Emit(room, event string, data any) {
	h.mu.RLock()
	members := h.rooms[room]
	targets := make([]*Client, 0, len(members))
	for c := range members {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	h.deliver(targets, event, data)
}

// RoomSize returns the number of clients in a room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func (h *Hub) deliver(targets []*Client, event string, data any) {
	for _, c := range targets {
		if err := c.send(event, data); err != nil {
			log.Printf("ws: failed to deliver %s: %v", event, err)
		}
	}
}
