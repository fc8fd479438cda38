package service

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToTenant(tenantID string, msgType string, payload interface{})
	BroadcastToInstructor(tenantID, instructorID string, msgType string, payload interface{})
}

// Message types pushed to dashboards and instructors
const (
	MsgSessionCreated       = "session_created"
	MsgSessionRescheduled   = "session_rescheduled"
	MsgSessionCancelled     = "session_cancelled"
	MsgInstructorReassigned = "instructor_reassigned"
)

type nopBroadcaster struct{}

func (nopBroadcaster) BroadcastToTenant(string, string, interface{})             {}
func (nopBroadcaster) BroadcastToInstructor(string, string, string, interface{}) {}
