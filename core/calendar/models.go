package calendar

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/ratiba/core"
)

type EventType string

const (
	EventTypeEvent EventType = "event"
	EventTypeStudy EventType = "study"
)

// Calendar groups a user's events; a user may keep several (one per ICS
// upload, plus a default one).
type Calendar struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// Event is a single calendar entry. End is optional: imported VEVENTs may
// lack a DTEND. RRule carries the raw recurrence rule untouched; only the
// scheduler interprets it.
type Event struct {
	ID          string    `json:"id"`
	CalendarID  string    `json:"calendar_id"`
	Title       string    `json:"title"`
	Start       time.Time `json:"start"` // UTC
	End         null.Time `json:"end"`   // UTC
	Description string    `json:"description"`
	RRule       string    `json:"rrule"`
	Type        EventType `json:"type"`
}

type NewCalendar struct {
	UserID string `json:"user_id" validate:"required"`
	Name   string `json:"name" validate:"required"`
}

func (nc *NewCalendar) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	return validate.Struct(nc)
}

type NewEvent struct {
	CalendarID  string    `json:"calendar_id" validate:"required"`
	Title       string    `json:"title" validate:"required"`
	Start       time.Time `json:"start" validate:"required"`
	End         null.Time `json:"end"`
	Description string    `json:"description"`
	RRule       string    `json:"rrule" validate:"omitempty,weeklyrrule"`
	Type        EventType `json:"type" validate:"omitempty,oneof=event study"`
}

func (ne *NewEvent) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	ne.Title = core.CleanString(ne.Title)
	ne.Description = core.CleanString(ne.Description)

	if err := validate.Struct(ne); err != nil {
		return err
	}
	if ne.End.Valid && !ne.End.Time.After(ne.Start) {
		return core.NewValidationError(nil, core.FieldError{Field: "end", Error: "end must be after start"})
	}
	// event must land in an existing calendar
	if _, err := svc.GetByID(ctx, ne.CalendarID); err != nil {
		if err == ErrNotFound {
			return core.NewValidationError(err, core.FieldError{Field: "calendar_id", Error: err.Error()})
		}
		return err
	}
	return nil
}

// UpdateEvent moves or resizes an event; a drag changes Start (and End by the
// same delta on the client), a resize changes End only.
type UpdateEvent struct {
	Title       string    `json:"title"`
	Start       time.Time `json:"start"`
	End         null.Time `json:"end"`
	Description string    `json:"description"`
}

func (ue *UpdateEvent) Validate(origEvt Event, validate *validator.Validate) error {
	ue.Title = core.CleanString(ue.Title)
	ue.Description = core.CleanString(ue.Description)

	if err := validate.Struct(ue); err != nil {
		return err
	}
	start := ue.Start
	if start.IsZero() {
		start = origEvt.Start
	}
	if ue.End.Valid && !ue.End.Time.After(start) {
		return core.NewValidationError(nil, core.FieldError{Field: "end", Error: "end must be after start"})
	}
	return nil
}
