package session

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/calendar"
)

// StudySession is a planned block of study time on a user's calendar, either
// placed by hand or by the scheduler. Start and End are full UTC timestamps;
// Date is the midnight of Start and exists for day-level queries.
type StudySession struct {
	ID          string    `json:"id"`
	HostID      string    `json:"host_id"`
	CalendarID  string    `json:"calendar_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`  // UTC, midnight
	Start       time.Time `json:"start"` // UTC
	End         time.Time `json:"end"`   // UTC
	IsRecurring bool      `json:"is_recurring"`
	// Occurrences is the total weekly occurrence count when IsRecurring;
	// 0 or 1 otherwise.
	Occurrences int       `json:"occurrences"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

// Participant links a user to a study session they joined. A user appears at
// most once per session.
type Participant struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	JoinedAt  time.Time `json:"joined_at"` // UTC
}

type NewStudySession struct {
	CalendarID  string    `json:"calendar_id" validate:"required"`
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	Start       time.Time `json:"start" validate:"required"`
	End         time.Time `json:"end" validate:"required"`
	IsRecurring bool      `json:"is_recurring"`
	Occurrences int       `json:"occurrences" validate:"omitempty,min=1"`
}

func (ns *NewStudySession) Validate(ctx context.Context, validate *validator.Validate, calSvc calendar.Service) error {
	ns.Title = core.CleanString(ns.Title)
	ns.Description = core.CleanString(ns.Description)

	if err := validate.Struct(ns); err != nil {
		return err
	}
	if !ns.End.After(ns.Start) {
		return core.NewValidationError(nil, core.FieldError{Field: "end", Error: "end time must be after start time"})
	}
	if ns.Start.Before(time.Now().UTC()) {
		return core.NewValidationError(nil, core.FieldError{Field: "start", Error: "study session date cannot be in the past"})
	}
	if ns.IsRecurring && ns.Occurrences < 1 {
		return core.NewValidationError(nil, core.FieldError{Field: "occurrences", Error: "recurrence amount must be a positive number"})
	}
	if _, err := calSvc.GetByID(ctx, ns.CalendarID); err != nil {
		if err == calendar.ErrNotFound {
			return core.NewValidationError(err, core.FieldError{Field: "calendar_id", Error: err.Error()})
		}
		return err
	}
	return nil
}
