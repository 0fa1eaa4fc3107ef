package calendar

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/ratiba/core"
)

type fakeRepository struct {
	calendars map[string]Calendar
	events    map[string]Event
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		calendars: make(map[string]Calendar),
		events:    make(map[string]Event),
	}
}

func (r *fakeRepository) CreateCalendar(_ context.Context, cal Calendar) (Calendar, error) {
	r.calendars[cal.ID] = cal
	return cal, nil
}

func (r *fakeRepository) GetCalendarByID(_ context.Context, id string) (Calendar, error) {
	if cal, ok := r.calendars[id]; ok {
		return cal, nil
	}
	return Calendar{}, ErrNotFound
}

func (r *fakeRepository) QueryCalendarsByUserID(_ context.Context, userID string, _ ...core.DBOrdering) ([]Calendar, error) {
	var out []Calendar
	for _, cal := range r.calendars {
		if cal.UserID == userID {
			out = append(out, cal)
		}
	}
	return out, nil
}

func (r *fakeRepository) DeleteCalendarsByID(_ context.Context, ids ...string) error {
	for _, id := range ids {
		delete(r.calendars, id)
		for eid, evt := range r.events {
			if evt.CalendarID == id {
				delete(r.events, eid)
			}
		}
	}
	return nil
}

func (r *fakeRepository) CreateEvents(_ context.Context, evts ...Event) ([]Event, error) {
	for _, evt := range evts {
		r.events[evt.ID] = evt
	}
	return evts, nil
}

func (r *fakeRepository) GetEventByID(_ context.Context, id string) (Event, error) {
	if evt, ok := r.events[id]; ok {
		return evt, nil
	}
	return Event{}, ErrEventNotFound
}

func (r *fakeRepository) QueryEventsByUserID(_ context.Context, userID string, from, to time.Time) ([]Event, error) {
	var out []Event
	for _, evt := range r.events {
		cal, ok := r.calendars[evt.CalendarID]
		if !ok || cal.UserID != userID {
			continue
		}
		if !evt.Start.Before(from) && evt.Start.Before(to) {
			out = append(out, evt)
		}
	}
	return out, nil
}

func (r *fakeRepository) UpdateEvent(_ context.Context, evt Event) (Event, error) {
	if _, ok := r.events[evt.ID]; !ok {
		return Event{}, ErrEventNotFound
	}
	r.events[evt.ID] = evt
	return evt, nil
}

func (r *fakeRepository) DeleteEventsByID(_ context.Context, ids ...string) error {
	for _, id := range ids {
		delete(r.events, id)
	}
	return nil
}

const sampleICS = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//EN
BEGIN:VEVENT
UID:evt-1@test
DTSTART:20210301T090000Z
DTEND:20210301T110000Z
SUMMARY:Databases lecture
DESCRIPTION:Week 5
RRULE:FREQ=WEEKLY;BYDAY=MO;COUNT=4
END:VEVENT
BEGIN:VEVENT
UID:evt-2@test
DTSTART:20210302T140000Z
SUMMARY:Supervisor meeting
END:VEVENT
END:VCALENDAR
`

func TestImportICS(t *testing.T) {
	ctx := context.Background()
	svc := NewService(nil, newFakeRepository())

	cal, evts, err := svc.ImportICS(ctx, "usr", "semester 2", strings.NewReader(sampleICS))
	require.NoError(t, err)
	assert.Equal(t, "semester 2", cal.Name)
	require.Len(t, evts, 2)

	lecture := evts[0]
	assert.Equal(t, "Databases lecture", lecture.Title)
	assert.Equal(t, time.Date(2021, time.March, 1, 9, 0, 0, 0, time.UTC), lecture.Start)
	require.True(t, lecture.End.Valid)
	assert.Equal(t, time.Date(2021, time.March, 1, 11, 0, 0, 0, time.UTC), lecture.End.Time)
	assert.Equal(t, "FREQ=WEEKLY;BYDAY=MO;COUNT=4", lecture.RRule)
	assert.Equal(t, EventTypeEvent, lecture.Type)

	// DTEND-less VEVENT keeps a null End; the scheduler defaults it later
	meeting := evts[1]
	assert.Equal(t, "Supervisor meeting", meeting.Title)
	assert.False(t, meeting.End.Valid)

	// imported events are queryable through the calendar
	got, err := svc.QueryEvents(ctx, "usr",
		time.Date(2021, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2021, time.March, 7, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestImportICSGarbage(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	svc := NewService(nil, repo)

	_, _, err := svc.ImportICS(ctx, "usr", "oops", strings.NewReader("not an ics file"))
	require.Error(t, err)
	assert.Empty(t, repo.calendars, "a failed import must not leave an empty calendar behind")
}

func TestUpdateEventMoveAndResize(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	svc := NewService(nil, repo)

	cal, err := svc.Create(ctx, NewCalendar{UserID: "usr", Name: "main"})
	require.NoError(t, err)

	start := time.Date(2021, time.March, 3, 10, 0, 0, 0, time.UTC)
	evt, err := svc.CreateEvent(ctx, NewEvent{
		CalendarID: cal.ID,
		Title:      "Revision",
		Start:      start,
		End:        null.TimeFrom(start.Add(time.Hour)),
	})
	require.NoError(t, err)

	// drag to the next day
	moved, err := svc.UpdateEvent(ctx, evt.ID, UpdateEvent{
		Start: start.AddDate(0, 0, 1),
		End:   null.TimeFrom(start.AddDate(0, 0, 1).Add(time.Hour)),
	})
	require.NoError(t, err)
	assert.Equal(t, start.AddDate(0, 0, 1), moved.Start)

	// resize: end only
	resized, err := svc.UpdateEvent(ctx, evt.ID, UpdateEvent{End: null.TimeFrom(moved.Start.Add(3 * time.Hour))})
	require.NoError(t, err)
	assert.Equal(t, moved.Start, resized.Start)
	assert.Equal(t, moved.Start.Add(3*time.Hour), resized.End.Time)

	_, err = svc.UpdateEvent(ctx, uuid.New().String(), UpdateEvent{Title: "nope"})
	assert.Equal(t, ErrEventNotFound, err)
}

func TestDeleteCalendarCascades(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	svc := NewService(nil, repo)

	cal, err := svc.Create(ctx, NewCalendar{UserID: "usr", Name: "imported"})
	require.NoError(t, err)
	_, err = svc.CreateEvent(ctx, NewEvent{
		CalendarID: cal.ID,
		Title:      "Lecture",
		Start:      time.Date(2021, time.March, 3, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, cal.ID))
	assert.Empty(t, repo.events)

	_, err = svc.GetByID(ctx, cal.ID)
	assert.Equal(t, ErrNotFound, err)
}
