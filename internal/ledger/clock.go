// Package ledger builds the append-only modification history of schedule
// sessions. Every function here is pure: inputs are cloned, never mutated,
// and persistence is left to the caller.
package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// overridable in tests
var (
	nowFunc    = time.Now
	suffixFunc = randomSuffix
)

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
}

func newEntryID(now time.Time) string {
	return fmt.Sprintf("mod_%d_%s", now.UnixMilli(), suffixFunc())
}

// ClockMinutes converts "HH:MM" to minutes since midnight
func ClockMinutes(clock string) (int, error) {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q: want HH:MM", clock)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", clock)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", clock)
	}
	return h*60 + m, nil
}

// SameDay compares calendar dates, ignoring time of day and location
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DayKey formats a date for map and cache keys
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
