package calendar

import (
	"context"

	"github.com/trezcool/ratiba/core/scheduler"
)

// SchedulerSource feeds a user's calendar events to the study-session
// scheduler.
type SchedulerSource struct {
	svc Service
}

func NewSchedulerSource(svc Service) *SchedulerSource {
	return &SchedulerSource{svc: svc}
}

func (s *SchedulerSource) ListForScheduling(ctx context.Context, userID string, win scheduler.WeekWindow) ([]scheduler.SourceItem, error) {
	// the final window day is usable, hence the extra day
	evts, err := s.svc.QueryEvents(ctx, userID, win.Start, win.End.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	items := make([]scheduler.SourceItem, 0, len(evts))
	for _, evt := range evts {
		it := scheduler.SourceItem{Start: evt.Start, RRule: evt.RRule}
		if evt.End.Valid {
			it.End = evt.End.Time
		}
		items = append(items, it)
	}
	return items, nil
}
