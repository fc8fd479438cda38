package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// MessageType defines the type of WebSocket message
type MessageType string

// MsgConnected is sent once when a feed is subscribed
const MsgConnected MessageType = "connected"

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans ledger events out to staff dashboards and instructors
type Hub struct {
	// tenant -> dashboard connections
	dashboards map[string]map[*Connection]struct{}
	// tenant -> instructorID -> connections
	instructors map[string]map[string]map[*Connection]struct{}

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
}

// Connection represents a WebSocket connection
type Connection struct {
	TenantID     string
	InstructorID string // empty for dashboard connections
	Send         chan []byte
	Hub          *Hub
}

// BroadcastMessage is a message to broadcast
type BroadcastMessage struct {
	TenantID     string
	ToInstructor string // empty means every dashboard of the tenant
	Message      *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		dashboards:  make(map[string]map[*Connection]struct{}),
		instructors: make(map[string]map[string]map[*Connection]struct{}),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		broadcast:   make(chan *BroadcastMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.bucket(conn, true)[conn] = struct{}{}
			h.mu.Unlock()
			log.Printf("[WS] %s connected (tenant %s)", conn.label(), conn.TenantID)

		case conn := <-h.unregister:
			h.mu.Lock()
			if set := h.bucket(conn, false); set != nil {
				if _, ok := set[conn]; ok {
					delete(set, conn)
					close(conn.Send)
					log.Printf("[WS] %s disconnected (tenant %s)", conn.label(), conn.TenantID)
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)

			var targets map[*Connection]struct{}
			if msg.ToInstructor != "" {
				targets = h.instructors[msg.TenantID][msg.ToInstructor]
			} else {
				targets = h.dashboards[msg.TenantID]
			}
			for conn := range targets {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// bucket returns the connection set conn belongs to; caller holds mu
func (h *Hub) bucket(conn *Connection, create bool) map[*Connection]struct{} {
	if conn.InstructorID == "" {
		set := h.dashboards[conn.TenantID]
		if set == nil && create {
			set = make(map[*Connection]struct{})
			h.dashboards[conn.TenantID] = set
		}
		return set
	}

	byInstructor := h.instructors[conn.TenantID]
	if byInstructor == nil {
		if !create {
			return nil
		}
		byInstructor = make(map[string]map[*Connection]struct{})
		h.instructors[conn.TenantID] = byInstructor
	}
	set := byInstructor[conn.InstructorID]
	if set == nil && create {
		set = make(map[*Connection]struct{})
		byInstructor[conn.InstructorID] = set
	}
	return set
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastToTenant sends a message to every staff dashboard of a tenant (implements service.Broadcaster)
func (h *Hub) BroadcastToTenant(tenantID string, msgType string, payload interface{}) {
	h.send(tenantID, "", msgType, payload)
}

// BroadcastToInstructor sends a message to one instructor's connections (implements service.Broadcaster)
func (h *Hub) BroadcastToInstructor(tenantID, instructorID string, msgType string, payload interface{}) {
	if instructorID == "" {
		return
	}
	h.send(tenantID, instructorID, msgType, payload)
}

func (h *Hub) send(tenantID, instructorID, msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[WS] ERROR: encode %s payload: %v", msgType, err)
		return
	}
	h.broadcast <- &BroadcastMessage{
		TenantID:     tenantID,
		ToInstructor: instructorID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}

func (c *Connection) label() string {
	if c.InstructorID == "" {
		return "dashboard"
	}
	return "instructor " + c.InstructorID
}
