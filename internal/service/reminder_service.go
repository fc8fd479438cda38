package service

import (
	"context"
	"log"
	"time"

	"github.com/UniqBrio/UniqBrio-sub014/internal/cache"
	"github.com/UniqBrio/UniqBrio-sub014/internal/repository"
)

// ReminderService emails students ahead of their upcoming sessions
type ReminderService struct {
	sessions  repository.SessionRepo
	students  repository.StudentRepo
	reminders cache.ReminderCache
	notifier  *Notifier
	offsets   []int
	interval  time.Duration
}

// NewReminderService creates a new reminder service
func NewReminderService(
	sessions repository.SessionRepo,
	students repository.StudentRepo,
	reminders cache.ReminderCache,
	notifier *Notifier,
	offsets []int,
	interval time.Duration,
) *ReminderService {
	return &ReminderService{
		sessions:  sessions,
		students:  students,
		reminders: reminders,
		notifier:  notifier,
		offsets:   offsets,
		interval:  interval,
	}
}

// Run sweeps once immediately and then on every tick until ctx is done
func (s *ReminderService) Run(ctx context.Context) {
	log.Printf("[Reminder] Starting, every %s for offsets %v", s.interval, s.offsets)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.Sweep(ctx, time.Now()); err != nil {
			log.Printf("[Reminder] ERROR: sweep failed: %v", err)
		}

		select {
		case <-ctx.Done():
			log.Println("[Reminder] Stopped")
			return
		case <-ticker.C:
		}
	}
}

// Sweep sends the reminders due at now and returns how many emails went out
func (s *ReminderService) Sweep(ctx context.Context, now time.Time) (int, error) {
	today := repository.DayStart(now)
	sent := 0

	for _, offset := range s.offsets {
		sessions, err := s.sessions.ListScheduledOn(ctx, today.AddDate(0, 0, offset))
		if err != nil {
			return sent, err
		}

		for _, session := range sessions {
			if session.Cancelled() || len(session.RegisteredStudents) == 0 {
				continue
			}

			claimed, err := s.reminders.Claim(ctx, session.ID, offset)
			if err != nil {
				return sent, err
			}
			if !claimed {
				continue
			}

			students, err := s.students.GetByIDs(ctx, session.TenantID, session.RegisteredStudents)
			if err != nil {
				log.Printf("[Reminder] ERROR: student lookup for %s: %v", session.ID, err)
				continue
			}
			for _, st := range students {
				if st.Email == "" {
					continue
				}
				if err := s.notifier.SendReminder(st, session, offset); err == nil {
					sent++
				}
			}
		}
	}

	if sent > 0 {
		log.Printf("[Reminder] Sent %d reminder(s)", sent)
	}
	return sent, nil
}
