package ledger

import (
	"time"

	"github.com/UniqBrio/UniqBrio-sub014/internal/model"
)

// Preserve snapshots the lineage fields of s. Callers that may already hold
// a snapshot should use originalData instead so a first-edit snapshot is
// never replaced by an already-modified state.
func Preserve(s *model.ScheduleSession) model.OriginalSessionData {
	return model.OriginalSessionData{
		Date:         s.Date,
		StartTime:    s.StartTime,
		EndTime:      s.EndTime,
		Instructor:   s.Instructor,
		InstructorID: s.InstructorID,
		Location:     s.Location,
		Status:       s.Status,
	}
}

func originalData(s *model.ScheduleSession) model.OriginalSessionData {
	if s.OriginalSessionData != nil {
		return *s.OriginalSessionData
	}
	return Preserve(s)
}

// BuildEntry records one edit. previousValues come from original; newValues
// are exactly what the caller supplied.
func BuildEntry(modType model.ModificationType, modifiedBy, reason string, original *model.ScheduleSession, newValues model.SessionValues) model.ModificationEntry {
	now := nowFunc()
	date := original.Date
	return model.ModificationEntry{
		ID:         newEntryID(now),
		Type:       modType,
		Timestamp:  now,
		ModifiedBy: modifiedBy,
		Reason:     reason,
		PreviousValues: model.SessionValues{
			Date:         &date,
			StartTime:    original.StartTime,
			EndTime:      original.EndTime,
			Instructor:   original.Instructor,
			InstructorID: original.InstructorID,
			Location:     original.Location,
			Status:       original.Status,
		},
		NewValues:             newValues,
		AffectedStudents:      original.AffectedStudents(),
		NotificationRequested: true,
	}
}

func dateRef(t time.Time) *time.Time {
	return &t
}
