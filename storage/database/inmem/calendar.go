package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/calendar"
)

type calendarRepository struct {
	db *calendarTable
}

var _ calendar.Repository = (*calendarRepository)(nil) // interface compliance check

func NewCalendarRepository(db *DB) calendar.Repository {
	return &calendarRepository{db: db.calendar}
}

func (repo *calendarRepository) CreateCalendar(_ context.Context, cal calendar.Calendar) (calendar.Calendar, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.calendars[cal.ID] = &cal
	return cal, nil
}

func (repo *calendarRepository) GetCalendarByID(_ context.Context, id string) (calendar.Calendar, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if cal, ok := repo.db.calendars[id]; ok {
		return *cal, nil
	}
	return calendar.Calendar{}, calendar.ErrNotFound
}

func (repo *calendarRepository) QueryCalendarsByUserID(_ context.Context, userID string, ordering ...core.DBOrdering) ([]calendar.Calendar, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	cals := make([]calendar.Calendar, 0)
	for _, cal := range repo.db.calendars {
		if cal.UserID == userID {
			cals = append(cals, *cal)
		}
	}

	asc := true
	if len(ordering) > 0 {
		asc = ordering[0].Ascending
	}
	sort.Slice(cals, func(i, j int) bool {
		if asc {
			return cals[i].CreatedAt.Before(cals[j].CreatedAt)
		}
		return cals[j].CreatedAt.Before(cals[i].CreatedAt)
	})
	return cals, nil
}

func (repo *calendarRepository) DeleteCalendarsByID(_ context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.calendars, id)
		for evtID, evt := range repo.db.events {
			if evt.CalendarID == id {
				delete(repo.db.events, evtID)
			}
		}
	}
	return nil
}

func (repo *calendarRepository) CreateEvents(_ context.Context, evts ...calendar.Event) ([]calendar.Event, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for i := range evts {
		evt := evts[i]
		repo.db.events[evt.ID] = &evt
	}
	return evts, nil
}

func (repo *calendarRepository) GetEventByID(_ context.Context, id string) (calendar.Event, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if evt, ok := repo.db.events[id]; ok {
		return *evt, nil
	}
	return calendar.Event{}, calendar.ErrEventNotFound
}

func (repo *calendarRepository) QueryEventsByUserID(_ context.Context, userID string, from, to time.Time) ([]calendar.Event, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	calIDs := make(map[string]struct{})
	for _, cal := range repo.db.calendars {
		if cal.UserID == userID {
			calIDs[cal.ID] = struct{}{}
		}
	}

	evts := make([]calendar.Event, 0)
	for _, evt := range repo.db.events {
		if _, ok := calIDs[evt.CalendarID]; !ok {
			continue
		}
		if evt.Start.Before(from) || !evt.Start.Before(to) {
			continue
		}
		evts = append(evts, *evt)
	}
	sort.Slice(evts, func(i, j int) bool { return evts[i].Start.Before(evts[j].Start) })
	return evts, nil
}

func (repo *calendarRepository) UpdateEvent(_ context.Context, evt calendar.Event) (calendar.Event, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.events[evt.ID]; !ok {
		return calendar.Event{}, calendar.ErrEventNotFound
	}
	repo.db.events[evt.ID] = &evt
	return evt, nil
}

func (repo *calendarRepository) DeleteEventsByID(_ context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.events, id)
	}
	return nil
}
