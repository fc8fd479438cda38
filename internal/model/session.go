package model

import "time"

// SessionStatus is the lifecycle state of a scheduled session
type SessionStatus string

const (
	SessionUpcoming  SessionStatus = "Upcoming"
	SessionOngoing   SessionStatus = "Ongoing"
	SessionCompleted SessionStatus = "Completed"
	SessionCancelled SessionStatus = "Cancelled"
	SessionPending   SessionStatus = "Pending"
)

// Valid reports whether s is one of the known statuses
func (s SessionStatus) Valid() bool {
	switch s {
	case SessionUpcoming, SessionOngoing, SessionCompleted, SessionCancelled, SessionPending:
		return true
	}
	return false
}

// ModificationType is the kind of edit recorded in a session's history
type ModificationType string

const (
	ModificationRescheduled       ModificationType = "rescheduled"
	ModificationCancelled         ModificationType = "cancelled"
	ModificationInstructorChanged ModificationType = "instructor_changed"
)

// ScheduleSession is one bookable occurrence of a cohort/course class
type ScheduleSession struct {
	ID       string `json:"id" bson:"_id"`
	TenantID string `json:"tenantId" bson:"tenantId"`
	CohortID string `json:"cohortId,omitempty" bson:"cohortId,omitempty"`
	CourseID string `json:"courseId,omitempty" bson:"courseId,omitempty"`
	Title    string `json:"title,omitempty" bson:"title,omitempty"`

	// Wall-clock schedule, no timezone handling
	Date      time.Time `json:"date" bson:"date"`
	StartTime string    `json:"startTime" bson:"startTime"` // "HH:MM"
	EndTime   string    `json:"endTime" bson:"endTime"`     // "HH:MM"

	Instructor   string `json:"instructor" bson:"instructor"`
	InstructorID string `json:"instructorId" bson:"instructorId"`
	Location     string `json:"location" bson:"location"`

	// Capacity
	Students           int      `json:"students" bson:"students"`
	RegisteredStudents []string `json:"registeredStudents,omitempty" bson:"registeredStudents,omitempty"`
	MaxCapacity        int      `json:"maxCapacity" bson:"maxCapacity"`
	Waitlist           []string `json:"waitlist,omitempty" bson:"waitlist,omitempty"`

	Status             SessionStatus `json:"status" bson:"status"`
	IsCancelled        bool          `json:"isCancelled" bson:"isCancelled"`
	CancellationReason string        `json:"cancellationReason,omitempty" bson:"cancellationReason,omitempty"`

	// Lineage
	IsModified          bool                 `json:"isModified" bson:"isModified"`
	ModificationType    ModificationType     `json:"modificationType,omitempty" bson:"modificationType,omitempty"`
	OriginalSessionData *OriginalSessionData `json:"originalSessionData,omitempty" bson:"originalSessionData,omitempty"`
	SessionHistory      []ModificationEntry  `json:"sessionHistory" bson:"sessionHistory"`
	ParentSessionID     string               `json:"parentSessionId,omitempty" bson:"parentSessionId,omitempty"`

	QRCode string `json:"qrCode,omitempty" bson:"qrCode,omitempty"`

	Version   int64     `json:"version" bson:"version"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Cancelled reports whether any of the cancellation indicators is set.
// Older documents may carry only one of them.
func (s *ScheduleSession) Cancelled() bool {
	return s.IsCancelled || s.Status == SessionCancelled || s.ModificationType == ModificationCancelled
}

// AffectedStudents counts the students an edit touches
func (s *ScheduleSession) AffectedStudents() int {
	if len(s.RegisteredStudents) > 0 {
		return len(s.RegisteredStudents)
	}
	if s.Students > 0 {
		return s.Students
	}
	return 0
}

// RootID returns the id of the first ancestor in this session's lineage
func (s *ScheduleSession) RootID() string {
	if s.ParentSessionID != "" {
		return s.ParentSessionID
	}
	return s.ID
}

// Clone returns a deep copy so callers can derive new records without touching s
func (s *ScheduleSession) Clone() *ScheduleSession {
	if s == nil {
		return nil
	}
	c := *s
	c.RegisteredStudents = cloneStrings(s.RegisteredStudents)
	c.Waitlist = cloneStrings(s.Waitlist)
	if s.OriginalSessionData != nil {
		o := *s.OriginalSessionData
		c.OriginalSessionData = &o
	}
	if s.SessionHistory != nil {
		c.SessionHistory = make([]ModificationEntry, len(s.SessionHistory))
		copy(c.SessionHistory, s.SessionHistory)
	}
	return &c
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// SessionFilter constrains session list queries
type SessionFilter struct {
	TenantID     string
	InstructorID string
	Status       SessionStatus
	From         *time.Time
	To           *time.Time
	Limit        int64
}
