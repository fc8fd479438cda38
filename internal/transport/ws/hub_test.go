package ws

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UniqBrio/UniqBrio-sub014/internal/model"
)

func receive(t *testing.T, ch chan []byte) Message {
	t.Helper()
	select {
	case data := <-ch:
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message received")
		return Message{}
	}
}

func assertSilent(t *testing.T, ch chan []byte) {
	t.Helper()
	select {
	case data := <-ch:
		t.Fatalf("unexpected message %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_RoutesByTenantAndInstructor(t *testing.T) {
	hub := NewHub()

	dash := &Connection{TenantID: "t1", Send: make(chan []byte, 4)}
	otherTenant := &Connection{TenantID: "t2", Send: make(chan []byte, 4)}
	ins1 := &Connection{TenantID: "t1", InstructorID: "ins1", Send: make(chan []byte, 4)}
	ins2 := &Connection{TenantID: "t1", InstructorID: "ins2", Send: make(chan []byte, 4)}
	for _, c := range []*Connection{dash, otherTenant, ins1, ins2} {
		hub.Register(c)
	}

	hub.BroadcastToTenant("t1", "session_cancelled", map[string]string{"id": "s1"})
	msg := receive(t, dash.Send)
	assert.Equal(t, MessageType("session_cancelled"), msg.Type)
	assert.JSONEq(t, `{"id":"s1"}`, string(msg.Payload))

	hub.BroadcastToInstructor("t1", "ins1", "session_rescheduled", map[string]string{"id": "s2"})
	msg = receive(t, ins1.Send)
	assert.Equal(t, MessageType("session_rescheduled"), msg.Type)

	assertSilent(t, otherTenant.Send)
	assertSilent(t, ins2.Send)
	assertSilent(t, dash.Send)
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := NewHub()
	conn := &Connection{TenantID: "t1", InstructorID: "ins1", Send: make(chan []byte, 1)}
	hub.Register(conn)
	hub.Unregister(conn)

	select {
	case _, ok := <-conn.Send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}

	// a second unregister is a no-op
	hub.Unregister(conn)
}

type stubValidator struct{}

func (stubValidator) ValidateStaffToken(token string) (*model.StaffClaims, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return &model.StaffClaims{StaffID: "staff_1", TenantID: "t1"}, nil
}

func TestHandler_DashboardFeed(t *testing.T) {
	hub := NewHub()
	r := mux.NewRouter()
	h := NewHandler(hub, stubValidator{})
	r.HandleFunc("/ws/tenants/{tenantId}/dashboard", h.DashboardWS)
	r.HandleFunc("/ws/tenants/{tenantId}/instructors/{instructorId}", h.InstructorWS)
	srv := httptest.NewServer(r)
	defer srv.Close()

	base := "ws" + strings.TrimPrefix(srv.URL, "http")

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{name: "missing token", path: "/ws/tenants/t1/dashboard", status: http.StatusUnauthorized},
		{name: "bad token", path: "/ws/tenants/t1/dashboard?token=nope", status: http.StatusUnauthorized},
		{name: "other tenant", path: "/ws/tenants/t2/instructors/ins1?token=good", status: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, err := websocket.DefaultDialer.Dial(base+tt.path, nil)
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}

	conn, _, err := websocket.DefaultDialer.Dial(base+"/ws/tenants/t1/dashboard?token=good", nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var hello Message
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, MsgConnected, hello.Type)

	hub.BroadcastToTenant("t1", "session_created", map[string]string{"id": "s9"})
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, MessageType("session_created"), msg.Type)
}
