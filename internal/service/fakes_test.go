package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/UniqBrio/UniqBrio-sub014/internal/cache"
	"github.com/UniqBrio/UniqBrio-sub014/internal/ledger"
	"github.com/UniqBrio/UniqBrio-sub014/internal/model"
	"github.com/UniqBrio/UniqBrio-sub014/internal/repository"
)

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*model.ScheduleSession
	// lagVersion makes reads return an older version than stored
	lagVersion bool
	// beforeSupersede runs once, unlocked, ahead of the next Supersede
	beforeSupersede func()
}

func newFakeSessionRepo(sessions ...*model.ScheduleSession) *fakeSessionRepo {
	r := &fakeSessionRepo{sessions: map[string]*model.ScheduleSession{}}
	for _, s := range sessions {
		r.sessions[s.ID] = s.Clone()
	}
	return r
}

func (r *fakeSessionRepo) EnsureIndexes(ctx context.Context) {}

func (r *fakeSessionRepo) Create(ctx context.Context, session *model.ScheduleSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[session.ID]; ok {
		return repository.ErrDuplicate
	}
	r.sessions[session.ID] = session.Clone()
	return nil
}

func (r *fakeSessionRepo) GetByID(ctx context.Context, tenantID, id string) (*model.ScheduleSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.TenantID != tenantID {
		return nil, nil
	}
	c := s.Clone()
	if r.lagVersion {
		c.Version--
	}
	return c, nil
}

func (r *fakeSessionRepo) List(ctx context.Context, filter model.SessionFilter) ([]*model.ScheduleSession, error) {
	return r.match(func(s *model.ScheduleSession) bool {
		return s.TenantID == filter.TenantID &&
			(filter.InstructorID == "" || s.InstructorID == filter.InstructorID) &&
			(filter.Status == "" || s.Status == filter.Status)
	}), nil
}

func (r *fakeSessionRepo) ListByInstructorDay(ctx context.Context, tenantID, instructorID string, day time.Time) ([]*model.ScheduleSession, error) {
	return r.match(func(s *model.ScheduleSession) bool {
		return s.TenantID == tenantID && s.InstructorID == instructorID && ledger.SameDay(s.Date, day) && !s.Cancelled()
	}), nil
}

func (r *fakeSessionRepo) ListByRoot(ctx context.Context, tenantID, rootID string) ([]*model.ScheduleSession, error) {
	return r.match(func(s *model.ScheduleSession) bool {
		return s.TenantID == tenantID && (s.ID == rootID || s.ParentSessionID == rootID)
	}), nil
}

func (r *fakeSessionRepo) ListScheduledOn(ctx context.Context, day time.Time) ([]*model.ScheduleSession, error) {
	return r.match(func(s *model.ScheduleSession) bool {
		return ledger.SameDay(s.Date, day) && !s.Cancelled()
	}), nil
}

func (r *fakeSessionRepo) Supersede(ctx context.Context, session *model.ScheduleSession, expectedVersion int64) error {
	if hook := r.beforeSupersede; hook != nil {
		r.beforeSupersede = nil
		hook()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.sessions[session.ID]
	if !ok || stored.Version != expectedVersion {
		return repository.ErrConcurrentModification
	}
	session.Version = expectedVersion + 1
	r.sessions[session.ID] = session.Clone()
	return nil
}

func (r *fakeSessionRepo) MarkNotified(ctx context.Context, tenantID string, sessionIDs []string, entryID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range sessionIDs {
		s, ok := r.sessions[id]
		if !ok {
			continue
		}
		for i := range s.SessionHistory {
			if s.SessionHistory[i].ID == entryID {
				s.SessionHistory[i].NotificationsSent = true
				s.Version++
			}
		}
	}
	return nil
}

func (r *fakeSessionRepo) get(id string) *model.ScheduleSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[id]
}

func (r *fakeSessionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *fakeSessionRepo) match(keep func(*model.ScheduleSession) bool) []*model.ScheduleSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.ScheduleSession
	for _, s := range r.sessions {
		if keep(s) {
			out = append(out, s.Clone())
		}
	}
	return out
}

type fakeRecordRepo struct {
	reschedules   []*model.RescheduleRecord
	cancellations []*model.CancellationRecord
	reassignments []*model.ReassignmentRecord
}

func (r *fakeRecordRepo) EnsureIndexes(ctx context.Context) {}

func (r *fakeRecordRepo) SaveReschedule(ctx context.Context, rec *model.RescheduleRecord) error {
	r.reschedules = append(r.reschedules, rec)
	return nil
}

func (r *fakeRecordRepo) SaveCancellation(ctx context.Context, rec *model.CancellationRecord) error {
	r.cancellations = append(r.cancellations, rec)
	return nil
}

func (r *fakeRecordRepo) SaveReassignment(ctx context.Context, rec *model.ReassignmentRecord) error {
	r.reassignments = append(r.reassignments, rec)
	return nil
}

type fakeTx struct{}

func (fakeTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeSessionCache struct {
	items map[string]*model.ScheduleSession
}

func newFakeSessionCache() *fakeSessionCache {
	return &fakeSessionCache{items: map[string]*model.ScheduleSession{}}
}

func (c *fakeSessionCache) Set(ctx context.Context, session *model.ScheduleSession) error {
	c.items[session.TenantID+"/"+session.ID] = session.Clone()
	return nil
}

func (c *fakeSessionCache) Get(ctx context.Context, tenantID, id string) (*model.ScheduleSession, error) {
	return c.items[tenantID+"/"+id], nil
}

func (c *fakeSessionCache) Delete(ctx context.Context, tenantID string, ids ...string) error {
	for _, id := range ids {
		delete(c.items, tenantID+"/"+id)
	}
	return nil
}

type fakeSlotLock struct {
	busy     map[string]bool
	acquired []string
}

func (l *fakeSlotLock) Acquire(ctx context.Context, tenantID, instructorID, day string) (func(), error) {
	key := tenantID + ":" + instructorID + ":" + day
	if l.busy[key] {
		return nil, cache.ErrSlotBusy
	}
	l.acquired = append(l.acquired, key)
	return func() {}, nil
}

type fakeReminderCache struct {
	claimed map[string]bool
}

func (c *fakeReminderCache) Claim(ctx context.Context, sessionID string, offsetDays int) (bool, error) {
	key := fmt.Sprintf("%s:%d", sessionID, offsetDays)
	if c.claimed[key] {
		return false, nil
	}
	c.claimed[key] = true
	return true, nil
}

type fakeStudentRepo struct {
	students map[string]*model.Student
}

func (r *fakeStudentRepo) GetByIDs(ctx context.Context, tenantID string, ids []string) ([]*model.Student, error) {
	var out []*model.Student
	for _, id := range ids {
		if st, ok := r.students[id]; ok && st.TenantID == tenantID {
			out = append(out, st)
		}
	}
	return out, nil
}

func (r *fakeStudentRepo) Upsert(ctx context.Context, student *model.Student) error {
	r.students[student.ID] = student
	return nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
	fail map[string]bool
}

func (m *fakeMailer) Send(to, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail[to] {
		return errors.New("smtp: mailbox unavailable")
	}
	m.sent = append(m.sent, to)
	return nil
}

type broadcast struct {
	tenantID     string
	instructorID string
	msgType      string
}

type fakeBroadcaster struct {
	mu   sync.Mutex
	sent []broadcast
}

func (b *fakeBroadcaster) BroadcastToTenant(tenantID string, msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, broadcast{tenantID: tenantID, msgType: msgType})
}

func (b *fakeBroadcaster) BroadcastToInstructor(tenantID, instructorID string, msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, broadcast{tenantID: tenantID, instructorID: instructorID, msgType: msgType})
}

// fixture bundles a SessionService with its fakes
type fixture struct {
	svc         *SessionService
	sessions    *fakeSessionRepo
	records     *fakeRecordRepo
	cache       *fakeSessionCache
	locks       *fakeSlotLock
	students    *fakeStudentRepo
	mailer      *fakeMailer
	broadcaster *fakeBroadcaster
}

func newFixture(sessions ...*model.ScheduleSession) *fixture {
	f := &fixture{
		sessions: newFakeSessionRepo(sessions...),
		records:  &fakeRecordRepo{},
		cache:    newFakeSessionCache(),
		locks:    &fakeSlotLock{busy: map[string]bool{}},
		students: &fakeStudentRepo{students: map[string]*model.Student{
			"stu1": {ID: "stu1", TenantID: tenant, Name: "Asha", Email: "asha@example.com"},
			"stu2": {ID: "stu2", TenantID: tenant, Name: "Ben", Email: "ben@example.com"},
		}},
		mailer:      &fakeMailer{fail: map[string]bool{}},
		broadcaster: &fakeBroadcaster{},
	}
	notifier := NewNotifier(f.students, f.mailer, f.broadcaster)
	f.svc = NewSessionService(f.sessions, f.records, fakeTx{}, f.cache, f.locks, notifier)
	f.svc.background = func(fn func()) { fn() }
	return f
}

const tenant = "academy-1"

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func on(s string) model.Date {
	return model.Date{Time: day(s)}
}

func newSession(id, instructorID, date, start, end string) *model.ScheduleSession {
	return &model.ScheduleSession{
		ID:                 id,
		TenantID:           tenant,
		CohortID:           "cohort-a",
		CourseID:           "course-x",
		Title:              "Piano Basics",
		Date:               day(date),
		StartTime:          start,
		EndTime:            end,
		Instructor:         "Instructor " + instructorID,
		InstructorID:       instructorID,
		Location:           "Room 1",
		Students:           2,
		RegisteredStudents: []string{"stu1", "stu2"},
		MaxCapacity:        10,
		Status:             model.SessionUpcoming,
	}
}
