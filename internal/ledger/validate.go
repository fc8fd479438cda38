package ledger

import (
	"github.com/UniqBrio/UniqBrio-sub014/internal/model"
)

// ValidationError is a rejected precondition
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// ValidationResult mirrors the {valid, error} shape returned to the dashboard
type ValidationResult struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// Err returns nil for a valid result and a *ValidationError otherwise
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return &ValidationError{Msg: r.Error}
}

func invalid(msg string) ValidationResult {
	return ValidationResult{Valid: false, Error: msg}
}

// Validate checks the preconditions of a modification. It does not look for
// scheduling conflicts.
func Validate(original *model.ScheduleSession, modType model.ModificationType, newValues *model.SessionValues) ValidationResult {
	if original == nil {
		return invalid("session is required")
	}
	if original.ID == "" {
		return invalid("session id is required")
	}
	if original.Cancelled() && modType != model.ModificationCancelled {
		return invalid("cannot modify a cancelled session")
	}

	switch modType {
	case model.ModificationRescheduled:
		if newValues == nil || newValues.Date == nil || newValues.Date.IsZero() || newValues.StartTime == "" || newValues.EndTime == "" {
			return invalid("new date, start time and end time are required to reschedule")
		}
		start, err := ClockMinutes(newValues.StartTime)
		if err != nil {
			return invalid(err.Error())
		}
		end, err := ClockMinutes(newValues.EndTime)
		if err != nil {
			return invalid(err.Error())
		}
		if end <= start {
			return invalid("end time must be after start time")
		}
	case model.ModificationInstructorChanged:
		if newValues == nil || newValues.Instructor == "" || newValues.InstructorID == "" {
			return invalid("new instructor name and id are required to reassign")
		}
	case model.ModificationCancelled:
	default:
		return invalid("unknown modification type " + string(modType))
	}

	return ValidationResult{Valid: true}
}
