package ledger

import (
	"sort"

	"github.com/UniqBrio/UniqBrio-sub014/internal/model"
)

// Lineage returns the root of id's chain followed by every successor that
// points back to it, ordered by date then start time. Nil if id is unknown.
func Lineage(all []*model.ScheduleSession, id string) []*model.ScheduleSession {
	var target *model.ScheduleSession
	for _, s := range all {
		if s != nil && s.ID == id {
			target = s
			break
		}
	}
	if target == nil {
		return nil
	}

	rootID := target.RootID()
	var chain []*model.ScheduleSession
	for _, s := range all {
		if s == nil {
			continue
		}
		if s.ID == rootID || s.ParentSessionID == rootID {
			chain = append(chain, s)
		}
	}
	SortSessions(chain)
	return chain
}

// CurrentState returns the live member of id's lineage, the most recently
// created one that is not cancelled. Nil when the whole chain is closed.
func CurrentState(all []*model.ScheduleSession, id string) *model.ScheduleSession {
	var live *model.ScheduleSession
	for _, s := range Lineage(all, id) {
		if s.Cancelled() {
			continue
		}
		if live == nil || s.CreatedAt.After(live.CreatedAt) {
			live = s
		}
	}
	return live
}

// SortSessions orders sessions by date, then start time, then id
func SortSessions(sessions []*model.ScheduleSession) {
	sort.SliceStable(sessions, func(i, j int) bool {
		a, b := sessions[i], sessions[j]
		if !SameDay(a.Date, b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.ID < b.ID
	})
}
