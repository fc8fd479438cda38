package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/UniqBrio/UniqBrio-sub014/internal/model"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is enforced on the REST API
	},
}

// TokenValidator checks a staff token
type TokenValidator interface {
	ValidateStaffToken(token string) (*model.StaffClaims, error)
}

// Handler handles WebSocket connections
type Handler struct {
	hub  *Hub
	auth TokenValidator
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, auth TokenValidator) *Handler {
	return &Handler{
		hub:  hub,
		auth: auth,
	}
}

// DashboardWS handles GET /ws/tenants/{tenantId}/dashboard
func (h *Handler) DashboardWS(w http.ResponseWriter, r *http.Request) {
	tenantID := mux.Vars(r)["tenantId"]
	claims, ok := h.authorize(w, r, tenantID)
	if !ok {
		return
	}
	h.serve(w, r, &Connection{TenantID: tenantID}, claims.StaffID)
}

// InstructorWS handles GET /ws/tenants/{tenantId}/instructors/{instructorId}
func (h *Handler) InstructorWS(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	tenantID := vars["tenantId"]
	claims, ok := h.authorize(w, r, tenantID)
	if !ok {
		return
	}
	h.serve(w, r, &Connection{TenantID: tenantID, InstructorID: vars["instructorId"]}, claims.StaffID)
}

func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, tenantID string) (*model.StaffClaims, bool) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return nil, false
	}

	claims, err := h.auth.ValidateStaffToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return nil, false
	}

	if claims.TenantID != tenantID {
		http.Error(w, "token not valid for this tenant", http.StatusForbidden)
		return nil, false
	}
	return claims, true
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, conn *Connection, staffID string) {
	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] upgrade error: %v", err)
		return
	}

	conn.Send = make(chan []byte, 256)
	conn.Hub = h.hub

	feed, _ := json.Marshal(map[string]string{"feed": conn.label()})
	hello, _ := json.Marshal(&Message{Type: MsgConnected, Payload: feed})
	conn.Send <- hello
	h.hub.Register(conn)

	log.Printf("[WS] staff %s subscribed to %s", staffID, conn.label())

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// feeds are server-push only; reads just keep the deadline alive
		if _, _, err := wsConn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] read error: %v", err)
			}
			break
		}
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
