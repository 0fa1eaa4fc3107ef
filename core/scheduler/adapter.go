package scheduler

import (
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/teambition/rrule-go"
)

// Normalize flattens heterogeneous source items into concrete intervals.
// All timestamps are normalized to UTC first; the two feeds historically
// disagreed on timezone representation and everything downstream assumes a
// single zone. A weekly rule with COUNT=n yields n intervals, each shifted a
// whole number of weeks from the base. Items without an End get a default
// 1-hour duration.
func Normalize(items []SourceItem) ([]Interval, error) {
	out := make([]Interval, 0, len(items))
	for _, it := range items {
		start := it.Start.UTC()
		end := it.End.UTC()
		if it.End.IsZero() {
			end = start.Add(time.Hour)
		}
		if !end.After(start) {
			return nil, pkgerrors.Errorf("interval end %s not after start %s", end, start)
		}

		count := 1
		if rr := strings.TrimSpace(it.RRule); rr != "" && rr != "None" {
			var err error
			if count, err = parseWeeklyCount(rr); err != nil {
				return nil, err
			}
		}
		for i := 0; i < count; i++ {
			out = append(out, Interval{
				Start: start.AddDate(0, 0, 7*i),
				End:   end.AddDate(0, 0, 7*i),
			})
		}
	}
	return out, nil
}

// parseWeeklyCount validates that rr has the exact FREQ=WEEKLY;BYDAY=..;COUNT=..
// shape and returns the occurrence count. Anything else fails closed with
// ErrMalformedRecurrence; guessing at a half-parseable rule would silently
// hide commitments from the gap math.
func parseWeeklyCount(rr string) (int, error) {
	opt, err := rrule.StrToROption(rr)
	if err != nil {
		return 0, pkgerrors.Wrapf(ErrMalformedRecurrence, "parsing %q: %v", rr, err)
	}
	if opt.Freq != rrule.WEEKLY {
		return 0, pkgerrors.Wrapf(ErrMalformedRecurrence, "unsupported frequency in %q", rr)
	}
	if opt.Interval > 1 {
		return 0, pkgerrors.Wrapf(ErrMalformedRecurrence, "unsupported interval in %q", rr)
	}
	if len(opt.Byweekday) != 1 {
		return 0, pkgerrors.Wrapf(ErrMalformedRecurrence, "expected a single BYDAY in %q", rr)
	}
	if opt.Count < 1 {
		return 0, pkgerrors.Wrapf(ErrMalformedRecurrence, "missing COUNT in %q", rr)
	}
	return opt.Count, nil
}
