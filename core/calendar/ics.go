package calendar

import (
	"io"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
)

// parseICS maps the VEVENTs of an ICS payload onto Events in calID.
// RRULEs are kept verbatim; whether they are usable is the scheduler's call.
// VEVENTs without a parsable DTSTART are skipped.
func parseICS(calID string, r io.Reader) ([]Event, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, errors.Wrap(err, "parsing ICS")
	}

	evts := make([]Event, 0, len(cal.Events()))
	for _, ve := range cal.Events() {
		start, err := ve.GetStartAt()
		if err != nil {
			continue
		}

		evt := Event{
			ID:         uuid.New().String(),
			CalendarID: calID,
			Start:      start.UTC(),
			Type:       EventTypeEvent,
		}
		if end, err := ve.GetEndAt(); err == nil {
			evt.End = null.TimeFrom(end.UTC())
		}
		if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
			evt.Title = p.Value
		}
		if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
			evt.Description = p.Value
		}
		if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
			evt.RRule = p.Value
		}
		evts = append(evts, evt)
	}
	return evts, nil
}
