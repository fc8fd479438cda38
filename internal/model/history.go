package model

import "time"

// OriginalSessionData is the snapshot taken at a session's first modification.
// It is carried forward unchanged through later edits.
type OriginalSessionData struct {
	Date         time.Time     `json:"date" bson:"date"`
	StartTime    string        `json:"startTime" bson:"startTime"`
	EndTime      string        `json:"endTime" bson:"endTime"`
	Instructor   string        `json:"instructor" bson:"instructor"`
	InstructorID string        `json:"instructorId" bson:"instructorId"`
	Location     string        `json:"location" bson:"location"`
	Status       SessionStatus `json:"status" bson:"status"`
}

// SessionValues is a partial set of lineage fields; unset fields are omitted
type SessionValues struct {
	Date         *time.Time    `json:"date,omitempty" bson:"date,omitempty"`
	StartTime    string        `json:"startTime,omitempty" bson:"startTime,omitempty"`
	EndTime      string        `json:"endTime,omitempty" bson:"endTime,omitempty"`
	Instructor   string        `json:"instructor,omitempty" bson:"instructor,omitempty"`
	InstructorID string        `json:"instructorId,omitempty" bson:"instructorId,omitempty"`
	Location     string        `json:"location,omitempty" bson:"location,omitempty"`
	Status       SessionStatus `json:"status,omitempty" bson:"status,omitempty"`
}

// ModificationEntry is one immutable edit event in a session's history
type ModificationEntry struct {
	ID               string           `json:"id" bson:"id"`
	Type             ModificationType `json:"type" bson:"type"`
	Timestamp        time.Time        `json:"timestamp" bson:"timestamp"`
	ModifiedBy       string           `json:"modifiedBy" bson:"modifiedBy"`
	Reason           string           `json:"reason" bson:"reason"`
	PreviousValues   SessionValues    `json:"previousValues" bson:"previousValues"`
	NewValues        SessionValues    `json:"newValues" bson:"newValues"`
	AffectedStudents int              `json:"affectedStudents" bson:"affectedStudents"`

	// NotificationRequested records intent; NotificationsSent flips only
	// after the notifier confirms delivery to every addressed student.
	NotificationRequested bool `json:"notificationRequested" bson:"notificationRequested"`
	NotificationsSent     bool `json:"notificationsSent" bson:"notificationsSent"`
}
