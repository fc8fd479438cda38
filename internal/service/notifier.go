package service

import (
	"context"
	"fmt"
	"html"
	"log"
	"time"

	"github.com/UniqBrio/UniqBrio-sub014/internal/model"
	"github.com/UniqBrio/UniqBrio-sub014/internal/repository"
)

const emailDate = "Monday, January 2, 2006"

// ModificationEvent is the WebSocket payload for a ledger change
type ModificationEvent struct {
	Modification model.ModificationEntry `json:"modification"`
	Closed       *model.ScheduleSession  `json:"closed"`
	Successor    *model.ScheduleSession  `json:"successor,omitempty"`
}

// Notifier tells students, instructors and dashboards about session changes
type Notifier struct {
	students    repository.StudentRepo
	mailer      Mailer
	broadcaster Broadcaster
}

// NewNotifier creates a new notifier
func NewNotifier(students repository.StudentRepo, mailer Mailer, broadcaster Broadcaster) *Notifier {
	if broadcaster == nil {
		broadcaster = nopBroadcaster{}
	}
	return &Notifier{
		students:    students,
		mailer:      mailer,
		broadcaster: broadcaster,
	}
}

// NotifyModification pushes the change over WebSocket and emails every
// registered student of the closed session. It reports true only when each
// addressed student was found and accepted by the mailer.
func (n *Notifier) NotifyModification(ctx context.Context, entry model.ModificationEntry, closed, successor *model.ScheduleSession) bool {
	msgType := messageType(entry.Type)
	event := ModificationEvent{Modification: entry, Closed: closed, Successor: successor}

	n.broadcaster.BroadcastToTenant(closed.TenantID, msgType, event)
	n.broadcaster.BroadcastToInstructor(closed.TenantID, closed.InstructorID, msgType, event)
	if successor != nil && successor.InstructorID != closed.InstructorID {
		n.broadcaster.BroadcastToInstructor(closed.TenantID, successor.InstructorID, msgType, event)
	}

	roster := uniqueIDs(closed.RegisteredStudents)
	if len(roster) == 0 {
		return false
	}

	students, err := n.students.GetByIDs(ctx, closed.TenantID, roster)
	if err != nil {
		log.Printf("[Notifier] ERROR: student lookup for %s: %v", closed.ID, err)
		return false
	}

	subject, body := composeEmail(entry, closed, successor)
	sent := 0
	for _, st := range students {
		if st.Email == "" {
			continue
		}
		if err := n.mailer.Send(st.Email, subject, fmt.Sprintf("<p>Hi %s,</p>%s", html.EscapeString(st.Name), body)); err != nil {
			continue
		}
		sent++
	}

	log.Printf("[Notifier] %s %s: emailed %d/%d students", entry.Type, closed.ID, sent, len(roster))
	return sent == len(roster)
}

// NotifyCreated announces a new session on the dashboards
func (n *Notifier) NotifyCreated(session *model.ScheduleSession) {
	n.broadcaster.BroadcastToTenant(session.TenantID, MsgSessionCreated, session)
	n.broadcaster.BroadcastToInstructor(session.TenantID, session.InstructorID, MsgSessionCreated, session)
}

// SendReminder emails one student about an upcoming session
func (n *Notifier) SendReminder(st *model.Student, session *model.ScheduleSession, daysAhead int) error {
	subject := fmt.Sprintf("Reminder: %s in %d day(s)", session.Title, daysAhead)
	body := fmt.Sprintf("<p>Hi %s,</p><p>%s is on %s from %s to %s at %s with %s.</p>",
		html.EscapeString(st.Name),
		html.EscapeString(session.Title),
		session.Date.Format(emailDate),
		session.StartTime, session.EndTime,
		html.EscapeString(session.Location),
		html.EscapeString(session.Instructor),
	)
	return n.mailer.Send(st.Email, subject, body)
}

// uniqueIDs drops empty and repeated ids, keeping first-seen order
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func messageType(t model.ModificationType) string {
	switch t {
	case model.ModificationRescheduled:
		return MsgSessionRescheduled
	case model.ModificationInstructorChanged:
		return MsgInstructorReassigned
	default:
		return MsgSessionCancelled
	}
}

func composeEmail(entry model.ModificationEntry, closed, successor *model.ScheduleSession) (string, string) {
	title := html.EscapeString(closed.Title)
	when := fmt.Sprintf("%s %s-%s", closed.Date.Format(emailDate), closed.StartTime, closed.EndTime)
	reason := html.EscapeString(entry.Reason)

	switch {
	case entry.Type == model.ModificationRescheduled && successor != nil:
		return fmt.Sprintf("Session rescheduled: %s", closed.Title),
			fmt.Sprintf("<p>%s on %s has moved to <b>%s %s-%s</b>.</p><p>Reason: %s</p>",
				title, when, successor.Date.Format(emailDate), successor.StartTime, successor.EndTime, reason)
	case entry.Type == model.ModificationInstructorChanged && successor != nil:
		return fmt.Sprintf("New instructor for %s", closed.Title),
			fmt.Sprintf("<p>%s on %s will now be taught by <b>%s</b> instead of %s.</p><p>Reason: %s</p>",
				title, when, html.EscapeString(successor.Instructor), html.EscapeString(closed.Instructor), reason)
	default:
		return fmt.Sprintf("Session cancelled: %s", closed.Title),
			fmt.Sprintf("<p>%s on %s has been cancelled.</p><p>Reason: %s</p><p>Sent %s</p>",
				title, when, reason, entry.Timestamp.Format(time.RFC1123))
	}
}
