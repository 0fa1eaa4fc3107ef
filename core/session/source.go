package session

import (
	"context"
	"fmt"
	"time"

	"github.com/trezcool/ratiba/core/scheduler"
)

var byDay = map[time.Weekday]string{
	time.Sunday:    "SU",
	time.Monday:    "MO",
	time.Tuesday:   "TU",
	time.Wednesday: "WE",
	time.Thursday:  "TH",
	time.Friday:    "FR",
	time.Saturday:  "SA",
}

// SchedulerSource feeds a user's existing study sessions to the scheduler so
// new placements avoid them. Recurring sessions are handed over as the weekly
// rule the scheduler expands itself.
type SchedulerSource struct {
	svc Service
}

func NewSchedulerSource(svc Service) *SchedulerSource {
	return &SchedulerSource{svc: svc}
}

func (s *SchedulerSource) ListForScheduling(ctx context.Context, userID string, win scheduler.WeekWindow) ([]scheduler.SourceItem, error) {
	// the final window day is usable, hence the extra day
	sessions, err := s.svc.Query(ctx, userID, win.Start, win.End.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	items := make([]scheduler.SourceItem, 0, len(sessions))
	for _, sess := range sessions {
		it := scheduler.SourceItem{Start: sess.Start, End: sess.End}
		if sess.IsRecurring && sess.Occurrences > 1 {
			it.RRule = fmt.Sprintf("FREQ=WEEKLY;BYDAY=%s;COUNT=%d", byDay[sess.Start.Weekday()], sess.Occurrences)
		}
		items = append(items, it)
	}
	return items, nil
}
