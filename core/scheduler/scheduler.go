// Package scheduler implements the automated study-session placement heuristic:
// given a user's calendar events and study sessions for the upcoming week, it
// picks a day and a time slot that avoids conflicts, stays within working-day
// bounds and prefers gaps between existing commitments.
//
// The package is pure computation over pre-fetched items; its only I/O is the
// two Source fetches at the start of a Plan run.
package scheduler

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
)

var (
	ErrNoAvailableSlot     = errors.New("no available slot in the scheduling window")
	ErrMalformedRecurrence = errors.New("malformed recurrence rule")
)

type (
	// Interval is a half-open [Start, End) occupied block on the calendar, in UTC.
	Interval struct {
		Start time.Time
		End   time.Time
	}

	// SourceItem is one commitment as exposed by an upstream feed. RRule is
	// either empty, "None" or a FREQ=WEEKLY;BYDAY=..;COUNT=.. rule string.
	SourceItem struct {
		Start time.Time
		End   time.Time
		RRule string
	}

	// Source is an upstream commitment feed (calendar events, study sessions).
	Source interface {
		ListForScheduling(ctx context.Context, userID string, win WeekWindow) ([]SourceItem, error)
	}

	// Placement is the final slot pick, consumed by the session materializer.
	Placement struct {
		Date     time.Time // midnight UTC
		Start    time.Time
		Duration time.Duration
	}

	Scheduler struct {
		conf     core.SchedulerConfig
		events   Source
		sessions Source
	}
)

func (iv Interval) Duration() time.Duration { return iv.End.Sub(iv.Start) }

func (p Placement) End() time.Time { return p.Start.Add(p.Duration) }

func New(conf core.SchedulerConfig, events, sessions Source) *Scheduler {
	return &Scheduler{conf: conf, events: events, sessions: sessions}
}

// Plan finds a slot for a new study session in the week window anchored on now.
//
// Known quirk, kept on purpose: when the picked day is completely free, the
// slot lands at EmptyDayStart on the day after "now", not on the picked day.
func (s *Scheduler) Plan(ctx context.Context, userID string, now time.Time) (Placement, error) {
	now = now.UTC()
	win := NewWeekWindow(now, s.conf.WeekStartDay, s.conf.WeekEndDay)

	ctx, cancel := context.WithTimeout(ctx, s.conf.FetchTimeout)
	defer cancel()

	// the two feeds are independent; fetch them in parallel
	type fetchResult struct {
		items []SourceItem
		err   error
	}
	evCh := make(chan fetchResult, 1)
	ssCh := make(chan fetchResult, 1)
	go func() {
		items, err := s.events.ListForScheduling(ctx, userID, win)
		evCh <- fetchResult{items, err}
	}()
	go func() {
		items, err := s.sessions.ListForScheduling(ctx, userID, win)
		ssCh <- fetchResult{items, err}
	}()

	ev, ss := <-evCh, <-ssCh
	if ev.err != nil {
		return Placement{}, pkgerrors.Wrap(ev.err, "fetching calendar events")
	}
	if ss.err != nil {
		return Placement{}, pkgerrors.Wrap(ss.err, "fetching study sessions")
	}

	intervals, err := Normalize(append(ev.items, ss.items...))
	if err != nil {
		return Placement{}, err
	}

	buckets := bucketByDay(intervals, win)
	idx, err := selectDay(buckets, s.conf.DayFullHours)
	if err != nil {
		return Placement{}, err
	}

	bucket := buckets[idx]
	if len(bucket.Intervals) == 0 {
		day := midnight(now).AddDate(0, 0, 1)
		return Placement{
			Date:     day,
			Start:    day.Add(s.conf.EmptyDayStart),
			Duration: s.conf.LongSessionDuration,
		}, nil
	}

	return place(bucket, s.conf)
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
