package model

import "time"

// RescheduleRequest is the body of POST .../session-reschedules
type RescheduleRequest struct {
	SessionID         string    `json:"sessionId" validate:"required"`
	Instructor        string    `json:"instructor"`
	InstructorID      string    `json:"instructorId"`
	OriginalDate      Date      `json:"originalDate"`
	OriginalStartTime string    `json:"originalStartTime"`
	OriginalEndTime   string    `json:"originalEndTime"`
	NewDate           Date      `json:"newDate" validate:"required"`
	NewStartTime      string    `json:"newStartTime" validate:"required,clock"`
	NewEndTime        string    `json:"newEndTime" validate:"required,clock"`
	Reason            string    `json:"reason" validate:"required"`
	RescheduledBy     string    `json:"rescheduledBy" validate:"required"`
	Location          string    `json:"location"`
}

// CancellationRequest is the body of POST .../session-cancellations
type CancellationRequest struct {
	SessionID            string    `json:"sessionId" validate:"required"`
	OriginalInstructor   string    `json:"originalInstructor"`
	OriginalInstructorID string    `json:"originalInstructorId"`
	OriginalDate         Date      `json:"originalDate"`
	OriginalStartTime    string    `json:"originalStartTime"`
	OriginalEndTime      string    `json:"originalEndTime"`
	Reason               string    `json:"reason" validate:"required"`
	CancelledBy          string    `json:"cancelledBy" validate:"required"`
}

// ReassignmentRequest is the body of POST .../instructor-reassignments
type ReassignmentRequest struct {
	SessionID            string    `json:"sessionId" validate:"required"`
	CohortID             string    `json:"cohortId"`
	CourseID             string    `json:"courseId"`
	OriginalInstructor   string    `json:"originalInstructor"`
	OriginalInstructorID string    `json:"originalInstructorId"`
	NewInstructor        string    `json:"newInstructor" validate:"required"`
	NewInstructorID      string    `json:"newInstructorId" validate:"required"`
	SessionDate          Date      `json:"sessionDate"`
	StartTime            string    `json:"startTime"`
	EndTime              string    `json:"endTime"`
	Location             string    `json:"location"`
	Reason               string    `json:"reason" validate:"required"`
	ModifiedBy           string    `json:"modifiedBy" validate:"required"`
}

// RescheduleRecord is the audit document stored in session_reschedules
type RescheduleRecord struct {
	RescheduleRequest `bson:",inline"`
	TenantID          string    `json:"tenantId" bson:"tenantId"`
	NewSessionID      string    `json:"newSessionId" bson:"newSessionId"`
	ModificationID    string    `json:"modificationId" bson:"modificationId"`
	IdempotencyKey    string    `json:"-" bson:"idempotencyKey,omitempty"`
	CreatedAt         time.Time `json:"createdAt" bson:"createdAt"`
}

// CancellationRecord is the audit document stored in session_cancellations
type CancellationRecord struct {
	CancellationRequest `bson:",inline"`
	TenantID            string    `json:"tenantId" bson:"tenantId"`
	ModificationID      string    `json:"modificationId" bson:"modificationId"`
	IdempotencyKey      string    `json:"-" bson:"idempotencyKey,omitempty"`
	CreatedAt           time.Time `json:"createdAt" bson:"createdAt"`
}

// ReassignmentRecord is the audit document stored in instructor_reassignments
type ReassignmentRecord struct {
	ReassignmentRequest `bson:",inline"`
	TenantID            string    `json:"tenantId" bson:"tenantId"`
	NewSessionID        string    `json:"newSessionId" bson:"newSessionId"`
	ModificationID      string    `json:"modificationId" bson:"modificationId"`
	IdempotencyKey      string    `json:"-" bson:"idempotencyKey,omitempty"`
	CreatedAt           time.Time `json:"createdAt" bson:"createdAt"`
}

// CreateSessionRequest is the body of POST .../sessions
type CreateSessionRequest struct {
	CohortID           string    `json:"cohortId"`
	CourseID           string    `json:"courseId"`
	Title              string    `json:"title"`
	Date               Date      `json:"date" validate:"required"`
	StartTime          string    `json:"startTime" validate:"required,clock"`
	EndTime            string    `json:"endTime" validate:"required,clock"`
	Instructor         string    `json:"instructor" validate:"required"`
	InstructorID       string    `json:"instructorId" validate:"required"`
	Location           string    `json:"location"`
	MaxCapacity        int       `json:"maxCapacity" validate:"gte=0"`
	RegisteredStudents []string  `json:"registeredStudents"`
	Waitlist           []string  `json:"waitlist"`
}
