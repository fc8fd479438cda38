package ledger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/UniqBrio/UniqBrio-sub014/internal/model"
)

func TestValidate(t *testing.T) {
	d := day(2025, 1, 12)
	live := sampleSession()
	cancelled := sampleSession()
	cancelled.IsCancelled = true

	tests := []struct {
		name      string
		session   *model.ScheduleSession
		modType   model.ModificationType
		values    *model.SessionValues
		wantValid bool
	}{
		{name: "nil session", session: nil, modType: model.ModificationCancelled},
		{name: "missing id", session: &model.ScheduleSession{}, modType: model.ModificationCancelled},
		{name: "reschedule ok", session: live, modType: model.ModificationRescheduled, values: &model.SessionValues{Date: &d, StartTime: "14:00", EndTime: "15:00"}, wantValid: true},
		{name: "reschedule no values", session: live, modType: model.ModificationRescheduled},
		{name: "reschedule no date", session: live, modType: model.ModificationRescheduled, values: &model.SessionValues{StartTime: "14:00", EndTime: "15:00"}},
		{name: "reschedule no start", session: live, modType: model.ModificationRescheduled, values: &model.SessionValues{Date: &d, EndTime: "15:00"}},
		{name: "reschedule no end", session: live, modType: model.ModificationRescheduled, values: &model.SessionValues{Date: &d, StartTime: "14:00"}},
		{name: "reschedule inverted", session: live, modType: model.ModificationRescheduled, values: &model.SessionValues{Date: &d, StartTime: "15:00", EndTime: "14:00"}},
		{name: "reassign ok", session: live, modType: model.ModificationInstructorChanged, values: &model.SessionValues{Instructor: "Grace", InstructorID: "I2"}, wantValid: true},
		{name: "reassign no id", session: live, modType: model.ModificationInstructorChanged, values: &model.SessionValues{Instructor: "Grace"}},
		{name: "reassign no name", session: live, modType: model.ModificationInstructorChanged, values: &model.SessionValues{InstructorID: "I2"}},
		{name: "cancel ok", session: live, modType: model.ModificationCancelled, wantValid: true},
		{name: "cancel already cancelled", session: cancelled, modType: model.ModificationCancelled, wantValid: true},
		{name: "reschedule cancelled", session: cancelled, modType: model.ModificationRescheduled, values: &model.SessionValues{Date: &d, StartTime: "14:00", EndTime: "15:00"}},
		{name: "reassign cancelled", session: cancelled, modType: model.ModificationInstructorChanged, values: &model.SessionValues{Instructor: "Grace", InstructorID: "I2"}},
		{name: "unknown type", session: live, modType: "moved"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.session, tt.modType, tt.values)
			assert.Equal(t, tt.wantValid, got.Valid)
			if tt.wantValid {
				assert.Empty(t, got.Error)
				assert.NoError(t, got.Err())
				return
			}
			assert.NotEmpty(t, got.Error)
			var verr *ValidationError
			assert.True(t, errors.As(got.Err(), &verr))
		})
	}
}
