package ledger

import (
	"time"

	"github.com/UniqBrio/UniqBrio-sub014/internal/model"
)

// FindConflicts returns the non-cancelled sessions of instructorID on date
// whose [start,end) overlaps [startTime,endTime). A session whose id equals
// excludeID is skipped. Sessions crossing midnight are not handled; times that
// fail to parse never conflict.
func FindConflicts(all []*model.ScheduleSession, instructorID string, date time.Time, startTime, endTime, excludeID string) []*model.ScheduleSession {
	checkStart, err := ClockMinutes(startTime)
	if err != nil {
		return nil
	}
	checkEnd, err := ClockMinutes(endTime)
	if err != nil {
		return nil
	}

	var conflicts []*model.ScheduleSession
	for _, s := range all {
		if s == nil || (excludeID != "" && s.ID == excludeID) {
			continue
		}
		if s.Cancelled() || s.InstructorID != instructorID || !SameDay(s.Date, date) {
			continue
		}
		start, err := ClockMinutes(s.StartTime)
		if err != nil {
			continue
		}
		end, err := ClockMinutes(s.EndTime)
		if err != nil {
			continue
		}
		if start < checkEnd && end > checkStart {
			conflicts = append(conflicts, s)
		}
	}
	return conflicts
}
