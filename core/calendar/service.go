package calendar

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/ratiba/core"
)

var (
	// errors
	ErrNotFound      = errors.New("calendar not found")
	ErrEventNotFound = errors.New("event not found")
)

type (
	Repository interface {
		CreateCalendar(ctx context.Context, cal Calendar) (Calendar, error)
		GetCalendarByID(ctx context.Context, id string) (Calendar, error)
		QueryCalendarsByUserID(ctx context.Context, userID string, ordering ...core.DBOrdering) ([]Calendar, error)
		DeleteCalendarsByID(ctx context.Context, ids ...string) error

		CreateEvents(ctx context.Context, evts ...Event) ([]Event, error)
		GetEventByID(ctx context.Context, id string) (Event, error)
		// QueryEventsByUserID returns all events of all of a user's calendars
		// whose Start falls in [from, to).
		QueryEventsByUserID(ctx context.Context, userID string, from, to time.Time) ([]Event, error)
		UpdateEvent(ctx context.Context, evt Event) (Event, error)
		DeleteEventsByID(ctx context.Context, ids ...string) error
	}

	Service interface {
		Create(ctx context.Context, nc NewCalendar) (Calendar, error)
		GetByID(ctx context.Context, id string) (Calendar, error)
		Query(ctx context.Context, userID string) ([]Calendar, error)
		Delete(ctx context.Context, ids ...string) error

		CreateEvent(ctx context.Context, ne NewEvent) (Event, error)
		GetEventByID(ctx context.Context, id string) (Event, error)
		QueryEvents(ctx context.Context, userID string, from, to time.Time) ([]Event, error)
		UpdateEvent(ctx context.Context, id string, ue UpdateEvent) (Event, error)
		DeleteEvents(ctx context.Context, ids ...string) error

		// ImportICS creates a new calendar named name for the user and fills it
		// with the VEVENTs found in r.
		ImportICS(ctx context.Context, userID, name string, r io.Reader) (Calendar, []Event, error)
	}

	service struct {
		db   core.DB
		repo Repository
	}
)

func NewService(db core.DB, repo Repository) Service {
	return &service{db: db, repo: repo}
}

func (svc *service) Create(ctx context.Context, nc NewCalendar) (Calendar, error) {
	cal := Calendar{
		ID:        uuid.New().String(),
		UserID:    nc.UserID,
		Name:      nc.Name,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateCalendar(ctx, cal)
}

func (svc *service) GetByID(ctx context.Context, id string) (Calendar, error) {
	return svc.repo.GetCalendarByID(ctx, id)
}

func (svc *service) Query(ctx context.Context, userID string) ([]Calendar, error) {
	return svc.repo.QueryCalendarsByUserID(ctx, userID, core.DBOrdering{Field: "created_at"})
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteCalendarsByID(ctx, ids...)
}

func (svc *service) CreateEvent(ctx context.Context, ne NewEvent) (Event, error) {
	evt := Event{
		ID:          uuid.New().String(),
		CalendarID:  ne.CalendarID,
		Title:       ne.Title,
		Start:       ne.Start.UTC(),
		End:         ne.End,
		Description: ne.Description,
		RRule:       ne.RRule,
		Type:        ne.Type,
	}
	if evt.End.Valid {
		evt.End.Time = evt.End.Time.UTC()
	}
	if evt.Type == "" {
		evt.Type = EventTypeEvent
	}
	evts, err := svc.repo.CreateEvents(ctx, evt)
	if err != nil {
		return Event{}, err
	}
	return evts[0], nil
}

func (svc *service) GetEventByID(ctx context.Context, id string) (Event, error) {
	return svc.repo.GetEventByID(ctx, id)
}

func (svc *service) QueryEvents(ctx context.Context, userID string, from, to time.Time) ([]Event, error) {
	return svc.repo.QueryEventsByUserID(ctx, userID, from.UTC(), to.UTC())
}

func (svc *service) UpdateEvent(ctx context.Context, id string, ue UpdateEvent) (Event, error) {
	evt, err := svc.repo.GetEventByID(ctx, id)
	if err != nil {
		return Event{}, err
	}
	if ue.Title != "" {
		evt.Title = ue.Title
	}
	if !ue.Start.IsZero() {
		evt.Start = ue.Start.UTC()
	}
	if ue.End.Valid {
		evt.End = null.TimeFrom(ue.End.Time.UTC())
	}
	if ue.Description != "" {
		evt.Description = ue.Description
	}
	return svc.repo.UpdateEvent(ctx, evt)
}

func (svc *service) DeleteEvents(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteEventsByID(ctx, ids...)
}

func (svc *service) ImportICS(ctx context.Context, userID, name string, r io.Reader) (Calendar, []Event, error) {
	cal, err := svc.Create(ctx, NewCalendar{UserID: userID, Name: name})
	if err != nil {
		return Calendar{}, nil, err
	}

	evts, err := parseICS(cal.ID, r)
	if err != nil {
		// do not keep an empty shell around
		_ = svc.repo.DeleteCalendarsByID(ctx, cal.ID)
		return Calendar{}, nil, err
	}
	if len(evts) == 0 {
		return cal, []Event{}, nil
	}

	evts, err = svc.repo.CreateEvents(ctx, evts...)
	if err != nil {
		return Calendar{}, nil, err
	}
	return cal, evts, nil
}
