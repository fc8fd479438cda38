package ledger

import (
	"fmt"
	"time"

	"github.com/UniqBrio/UniqBrio-sub014/internal/model"
)

const displayDate = "Mon Jan 02 2006"

// Result is the output of a transform that closes out a session and opens a successor
type Result struct {
	ModifiedOriginal *model.ScheduleSession  `json:"modifiedOriginal"`
	NewSession       *model.ScheduleSession  `json:"newSession"`
	Modification     model.ModificationEntry `json:"modification"`
}

// CancelResult is the output of Cancel
type CancelResult struct {
	CancelledSession *model.ScheduleSession  `json:"cancelledSession"`
	Modification     model.ModificationEntry `json:"modification"`
}

// Reschedule moves a session to a new date and time. The original is closed
// out as Cancelled and a linked successor is opened. No conflict check is done.
func Reschedule(original *model.ScheduleSession, newDate time.Time, newStart, newEnd, modifiedBy, reason string) *Result {
	entry := BuildEntry(model.ModificationRescheduled, modifiedBy, reason, original, model.SessionValues{
		Date:      dateRef(newDate),
		StartTime: newStart,
		EndTime:   newEnd,
	})

	cancelReason := fmt.Sprintf("Rescheduled to %s %s-%s: %s", newDate.Format(displayDate), newStart, newEnd, reason)
	closed, next := supersede(original, model.ModificationRescheduled, cancelReason, "rescheduled", entry)
	next.Date = newDate
	next.StartTime = newStart
	next.EndTime = newEnd

	return &Result{ModifiedOriginal: closed, NewSession: next, Modification: entry}
}

// Reassign hands a session to another instructor, realized the same way as Reschedule
func Reassign(original *model.ScheduleSession, newInstructor, newInstructorID, modifiedBy, reason string) *Result {
	entry := BuildEntry(model.ModificationInstructorChanged, modifiedBy, reason, original, model.SessionValues{
		Instructor:   newInstructor,
		InstructorID: newInstructorID,
	})

	cancelReason := fmt.Sprintf("Instructor changed from %s to %s: %s", original.Instructor, newInstructor, reason)
	closed, next := supersede(original, model.ModificationInstructorChanged, cancelReason, "reassigned", entry)
	next.Instructor = newInstructor
	next.InstructorID = newInstructorID

	return &Result{ModifiedOriginal: closed, NewSession: next, Modification: entry}
}

// Relocate moves the successor to location and records the move on the
// entry carried by the result, the closed original and the successor alike.
// An empty or unchanged location leaves r untouched.
func (r *Result) Relocate(location string) {
	if location == "" || location == r.NewSession.Location {
		return
	}
	r.Modification.NewValues.Location = location
	r.NewSession.Location = location
	for _, s := range []*model.ScheduleSession{r.ModifiedOriginal, r.NewSession} {
		if n := len(s.SessionHistory); n > 0 && s.SessionHistory[n-1].ID == r.Modification.ID {
			s.SessionHistory[n-1].NewValues.Location = location
		}
	}
}

// Cancel closes out a session for good. No successor is created.
func Cancel(original *model.ScheduleSession, reason, cancelledBy string) *CancelResult {
	entry := BuildEntry(model.ModificationCancelled, cancelledBy, reason, original, model.SessionValues{
		Status: model.SessionCancelled,
	})
	orig := originalData(original)

	cancelled := original.Clone()
	cancelled.Status = model.SessionCancelled
	cancelled.IsCancelled = true
	cancelled.CancellationReason = reason
	cancelled.IsModified = true
	cancelled.ModificationType = model.ModificationCancelled
	cancelled.OriginalSessionData = &orig
	cancelled.SessionHistory = append(cancelled.SessionHistory, entry)
	cancelled.UpdatedAt = entry.Timestamp

	return &CancelResult{CancelledSession: cancelled, Modification: entry}
}

// supersede builds the closed-out original and its successor; the caller
// fills in whatever the successor changes.
func supersede(original *model.ScheduleSession, modType model.ModificationType, cancelReason, idTag string, entry model.ModificationEntry) (*model.ScheduleSession, *model.ScheduleSession) {
	orig := originalData(original)
	now := entry.Timestamp

	closed := original.Clone()
	closed.Status = model.SessionCancelled
	closed.IsCancelled = true
	closed.CancellationReason = cancelReason
	closed.IsModified = true
	closed.ModificationType = modType
	closed.OriginalSessionData = &orig
	closed.SessionHistory = append(closed.SessionHistory, entry)
	closed.UpdatedAt = now

	successorOrig := orig
	next := original.Clone()
	next.ID = fmt.Sprintf("%s-%s-%d", original.ID, idTag, now.UnixMilli())
	next.Status = model.SessionUpcoming
	next.IsCancelled = false
	next.CancellationReason = ""
	next.IsModified = true
	next.ModificationType = modType
	next.OriginalSessionData = &successorOrig
	next.SessionHistory = append(next.SessionHistory, entry)
	next.ParentSessionID = original.RootID()
	next.QRCode = qrReference(next.ID, now)
	next.Version = 0
	next.CreatedAt = now
	next.UpdatedAt = now

	return closed, next
}

func qrReference(sessionID string, now time.Time) string {
	return fmt.Sprintf("QR-%s-%d", sessionID, now.Unix())
}
