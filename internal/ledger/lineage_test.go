package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UniqBrio/UniqBrio-sub014/internal/model"
)

func TestLineageAndCurrentState(t *testing.T) {
	freezeClock(t)
	root := sampleSession()
	first := Reschedule(root, day(2025, 1, 12), "14:00", "15:00", "admin", "one")

	nowFunc = func() time.Time { return fixedNow.Add(time.Hour) }
	second := Reassign(first.NewSession, "Grace", "I2", "admin", "two")

	unrelated := booking("X", "I1", day(2025, 1, 11), "08:00", "09:00")
	all := []*model.ScheduleSession{second.NewSession, unrelated, first.ModifiedOriginal, second.ModifiedOriginal}

	chain := Lineage(all, second.NewSession.ID)
	assert.Equal(t, []string{"S1", first.NewSession.ID, second.NewSession.ID}, ids(chain))

	live := CurrentState(all, "S1")
	require.NotNil(t, live)
	assert.Equal(t, second.NewSession.ID, live.ID)

	assert.Nil(t, Lineage(all, "missing"))
}
