package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/UniqBrio/UniqBrio-sub014/internal/cache"
	"github.com/UniqBrio/UniqBrio-sub014/internal/ledger"
	"github.com/UniqBrio/UniqBrio-sub014/internal/model"
	"github.com/UniqBrio/UniqBrio-sub014/internal/repository"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrStaleSnapshot   = errors.New("session changed since it was loaded, reload and retry")
)

// ConflictError lists the sessions that overlap a requested slot
type ConflictError struct {
	Conflicts []*model.ScheduleSession
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("instructor has %d conflicting session(s) in that slot", len(e.Conflicts))
}

// SessionService owns the schedule ledger for every tenant
type SessionService struct {
	sessions repository.SessionRepo
	records  repository.RecordRepo
	tx       repository.Transactor
	cache    cache.SessionCache
	locks    cache.SlotLock
	notifier *Notifier

	// background runs post-commit work; replaced in tests
	background func(func())
}

// NewSessionService creates a new session service
func NewSessionService(
	sessions repository.SessionRepo,
	records repository.RecordRepo,
	tx repository.Transactor,
	sessionCache cache.SessionCache,
	locks cache.SlotLock,
	notifier *Notifier,
) *SessionService {
	return &SessionService{
		sessions:   sessions,
		records:    records,
		tx:         tx,
		cache:      sessionCache,
		locks:      locks,
		notifier:   notifier,
		background: func(fn func()) { go fn() },
	}
}

// CreateSession schedules a new session after checking the instructor is free
func (s *SessionService) CreateSession(ctx context.Context, tenantID string, req *model.CreateSessionRequest) (*model.ScheduleSession, error) {
	start, err := ledger.ClockMinutes(req.StartTime)
	if err != nil {
		return nil, &ledger.ValidationError{Msg: "invalid start time"}
	}
	end, err := ledger.ClockMinutes(req.EndTime)
	if err != nil {
		return nil, &ledger.ValidationError{Msg: "invalid end time"}
	}
	if end <= start {
		return nil, &ledger.ValidationError{Msg: "end time must be after start time"}
	}

	day := repository.DayStart(req.Date.Time)
	release, err := s.locks.Acquire(ctx, tenantID, req.InstructorID, ledger.DayKey(day))
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.ensureFree(ctx, tenantID, req.InstructorID, day, req.StartTime, req.EndTime, ""); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	session := &model.ScheduleSession{
		ID:                 primitive.NewObjectID().Hex(),
		TenantID:           tenantID,
		CohortID:           req.CohortID,
		CourseID:           req.CourseID,
		Title:              req.Title,
		Date:               day,
		StartTime:          req.StartTime,
		EndTime:            req.EndTime,
		Instructor:         req.Instructor,
		InstructorID:       req.InstructorID,
		Location:           req.Location,
		RegisteredStudents: req.RegisteredStudents,
		Students:           len(req.RegisteredStudents),
		MaxCapacity:        req.MaxCapacity,
		Waitlist:           req.Waitlist,
		Status:             model.SessionUpcoming,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if session.RegisteredStudents == nil {
		session.RegisteredStudents = []string{}
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	log.Printf("[SessionService] Created session %s for %s on %s", session.ID, session.InstructorID, ledger.DayKey(day))

	s.notifier.NotifyCreated(session)
	return session, nil
}

// GetSession returns a session, reading through the cache
func (s *SessionService) GetSession(ctx context.Context, tenantID, id string) (*model.ScheduleSession, error) {
	if cached, err := s.cache.Get(ctx, tenantID, id); err == nil && cached != nil {
		return cached, nil
	}

	session, err := s.sessions.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if err := s.cache.Set(ctx, session); err != nil {
		log.Printf("[SessionService] Warning: cache set %s: %v", id, err)
	}
	return session, nil
}

// ListSessions returns the tenant's sessions ordered by date then start time
func (s *SessionService) ListSessions(ctx context.Context, filter model.SessionFilter) ([]*model.ScheduleSession, error) {
	sessions, err := s.sessions.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	ledger.SortSessions(sessions)
	return sessions, nil
}

// Lineage returns every session sharing the id's root, oldest first
func (s *SessionService) Lineage(ctx context.Context, tenantID, id string) ([]*model.ScheduleSession, error) {
	session, err := s.sessions.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	family, err := s.sessions.ListByRoot(ctx, tenantID, session.RootID())
	if err != nil {
		return nil, err
	}
	return ledger.Lineage(family, id), nil
}

// FindConflicts lists the instructor's live sessions overlapping a slot
func (s *SessionService) FindConflicts(ctx context.Context, tenantID, instructorID string, date time.Time, startTime, endTime, excludeID string) ([]*model.ScheduleSession, error) {
	day := repository.DayStart(date)
	sameDay, err := s.sessions.ListByInstructorDay(ctx, tenantID, instructorID, day)
	if err != nil {
		return nil, err
	}
	return ledger.FindConflicts(sameDay, instructorID, day, startTime, endTime, excludeID), nil
}

// Reschedule moves a session to a new slot, closing out the original
func (s *SessionService) Reschedule(ctx context.Context, tenantID string, req *model.RescheduleRequest, idempotencyKey string) (*ledger.Result, error) {
	original, err := s.load(ctx, tenantID, req.SessionID)
	if err != nil {
		return nil, err
	}

	newDate := repository.DayStart(req.NewDate.Time)
	if err := ledger.Validate(original, model.ModificationRescheduled, &model.SessionValues{
		Date:      &newDate,
		StartTime: req.NewStartTime,
		EndTime:   req.NewEndTime,
	}).Err(); err != nil {
		return nil, err
	}
	if stale(original, req.InstructorID, req.OriginalDate.Time, req.OriginalStartTime, req.OriginalEndTime) {
		return nil, ErrStaleSnapshot
	}

	release, err := s.locks.Acquire(ctx, tenantID, original.InstructorID, ledger.DayKey(newDate))
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.ensureFree(ctx, tenantID, original.InstructorID, newDate, req.NewStartTime, req.NewEndTime, original.ID); err != nil {
		return nil, err
	}

	res := ledger.Reschedule(original, newDate, req.NewStartTime, req.NewEndTime, req.RescheduledBy, req.Reason)
	res.Relocate(req.Location)

	rec := &model.RescheduleRecord{
		RescheduleRequest: *req,
		TenantID:          tenantID,
		NewSessionID:      res.NewSession.ID,
		ModificationID:    res.Modification.ID,
		IdempotencyKey:    idempotencyKey,
		CreatedAt:         res.Modification.Timestamp,
	}
	err = s.commit(ctx, original, res.ModifiedOriginal, res.NewSession, func(ctx context.Context) error {
		return s.records.SaveReschedule(ctx, rec)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[SessionService] Rescheduled %s -> %s", original.ID, res.NewSession.ID)
	s.notifyAsync(tenantID, res.Modification, res.ModifiedOriginal, res.NewSession)
	return res, nil
}

// Reassign hands a session to another instructor, closing out the original
func (s *SessionService) Reassign(ctx context.Context, tenantID string, req *model.ReassignmentRequest, idempotencyKey string) (*ledger.Result, error) {
	original, err := s.load(ctx, tenantID, req.SessionID)
	if err != nil {
		return nil, err
	}

	if err := ledger.Validate(original, model.ModificationInstructorChanged, &model.SessionValues{
		Instructor:   req.NewInstructor,
		InstructorID: req.NewInstructorID,
	}).Err(); err != nil {
		return nil, err
	}
	if stale(original, req.OriginalInstructorID, req.SessionDate.Time, req.StartTime, req.EndTime) {
		return nil, ErrStaleSnapshot
	}

	release, err := s.locks.Acquire(ctx, tenantID, req.NewInstructorID, ledger.DayKey(original.Date))
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.ensureFree(ctx, tenantID, req.NewInstructorID, original.Date, original.StartTime, original.EndTime, original.ID); err != nil {
		return nil, err
	}

	res := ledger.Reassign(original, req.NewInstructor, req.NewInstructorID, req.ModifiedBy, req.Reason)
	res.Relocate(req.Location)

	rec := &model.ReassignmentRecord{
		ReassignmentRequest: *req,
		TenantID:            tenantID,
		NewSessionID:        res.NewSession.ID,
		ModificationID:      res.Modification.ID,
		IdempotencyKey:      idempotencyKey,
		CreatedAt:           res.Modification.Timestamp,
	}
	err = s.commit(ctx, original, res.ModifiedOriginal, res.NewSession, func(ctx context.Context) error {
		return s.records.SaveReassignment(ctx, rec)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[SessionService] Reassigned %s from %s to %s", original.ID, original.InstructorID, req.NewInstructorID)
	s.notifyAsync(tenantID, res.Modification, res.ModifiedOriginal, res.NewSession)
	return res, nil
}

// Cancel cancels a session in place; no successor is created
func (s *SessionService) Cancel(ctx context.Context, tenantID string, req *model.CancellationRequest, idempotencyKey string) (*ledger.CancelResult, error) {
	original, err := s.load(ctx, tenantID, req.SessionID)
	if err != nil {
		return nil, err
	}

	if err := ledger.Validate(original, model.ModificationCancelled, nil).Err(); err != nil {
		return nil, err
	}
	if stale(original, req.OriginalInstructorID, req.OriginalDate.Time, req.OriginalStartTime, req.OriginalEndTime) {
		return nil, ErrStaleSnapshot
	}

	res := ledger.Cancel(original, req.Reason, req.CancelledBy)

	rec := &model.CancellationRecord{
		CancellationRequest: *req,
		TenantID:            tenantID,
		ModificationID:      res.Modification.ID,
		IdempotencyKey:      idempotencyKey,
		CreatedAt:           res.Modification.Timestamp,
	}
	err = s.commit(ctx, original, res.CancelledSession, nil, func(ctx context.Context) error {
		return s.records.SaveCancellation(ctx, rec)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[SessionService] Cancelled %s", original.ID)
	s.notifyAsync(tenantID, res.Modification, res.CancelledSession, nil)
	return res, nil
}

func (s *SessionService) load(ctx context.Context, tenantID, id string) (*model.ScheduleSession, error) {
	session, err := s.sessions.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *SessionService) ensureFree(ctx context.Context, tenantID, instructorID string, day time.Time, startTime, endTime, excludeID string) error {
	conflicts, err := s.FindConflicts(ctx, tenantID, instructorID, day, startTime, endTime, excludeID)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return &ConflictError{Conflicts: conflicts}
	}
	return nil
}

// commit writes the closed-out original, the successor (if any) and the
// audit record in one transaction
func (s *SessionService) commit(ctx context.Context, original, closed, successor *model.ScheduleSession, audit func(ctx context.Context) error) error {
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.sessions.Supersede(ctx, closed, original.Version); err != nil {
			return err
		}
		if successor != nil {
			if err := s.sessions.Create(ctx, successor); err != nil {
				return err
			}
		}
		return audit(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to persist modification of %s: %w", original.ID, err)
	}

	if err := s.cache.Delete(ctx, original.TenantID, original.ID); err != nil {
		log.Printf("[SessionService] Warning: cache invalidate %s: %v", original.ID, err)
	}
	return nil
}

func (s *SessionService) notifyAsync(tenantID string, entry model.ModificationEntry, closed, successor *model.ScheduleSession) {
	s.background(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if !s.notifier.NotifyModification(ctx, entry, closed, successor) {
			return
		}

		ids := []string{closed.ID}
		if successor != nil {
			ids = append(ids, successor.ID)
		}
		if err := s.sessions.MarkNotified(ctx, tenantID, ids, entry.ID); err != nil {
			log.Printf("[SessionService] ERROR: mark notified %s: %v", entry.ID, err)
			return
		}
		if err := s.cache.Delete(ctx, tenantID, ids...); err != nil {
			log.Printf("[SessionService] Warning: cache invalidate %v: %v", ids, err)
		}
	})
}

// stale reports whether the caller's snapshot of the session no longer
// matches what is stored. Empty snapshot fields are not compared.
func stale(stored *model.ScheduleSession, instructorID string, date time.Time, startTime, endTime string) bool {
	if instructorID != "" && instructorID != stored.InstructorID {
		return true
	}
	if !date.IsZero() && !ledger.SameDay(date, stored.Date) {
		return true
	}
	if startTime != "" && startTime != stored.StartTime {
		return true
	}
	if endTime != "" && endTime != stored.EndTime {
		return true
	}
	return false
}
