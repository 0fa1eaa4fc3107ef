package scheduler

import (
	"testing"
	"time"

	"github.com/trezcool/ratiba/core"
)

func testSchedConf() core.SchedulerConfig {
	return core.SchedulerConfig{
		WeekStartDay:         time.Monday,
		WeekEndDay:           time.Saturday,
		WorkingDayStart:      9 * time.Hour,
		WorkingDayEnd:        18 * time.Hour,
		ShortGapThreshold:    2 * time.Hour,
		LongGapThreshold:     4 * time.Hour,
		ShortSessionDuration: time.Hour,
		LongSessionDuration:  2 * time.Hour,
		SessionBuffer:        time.Hour,
		EmptyDayStart:        12 * time.Hour,
		DayFullHours:         8,
		FetchTimeout:         time.Second,
	}
}

// iv builds an interval on day at [fromHour, toHour); hours may be fractional.
func ivAt(day time.Time, fromHour, toHour float64) Interval {
	return Interval{
		Start: day.Add(time.Duration(fromHour * float64(time.Hour))),
		End:   day.Add(time.Duration(toHour * float64(time.Hour))),
	}
}

func TestPlace(t *testing.T) {
	day := date(2021, time.March, 2) // Tuesday
	conf := testSchedConf()

	tests := []struct {
		name         string
		intervals    []Interval
		wantStart    time.Time
		wantDuration time.Duration
		wantErr      error
	}{
		{
			name:         "exact two hour gap fits a short session right after",
			intervals:    []Interval{ivAt(day, 9, 11), ivAt(day, 13, 15)},
			wantStart:    day.Add(11 * time.Hour),
			wantDuration: time.Hour,
		},
		{
			name:         "three hour gap hugs the shorter preceding interval",
			intervals:    []Interval{ivAt(day, 9, 10), ivAt(day, 13, 15.5)},
			wantStart:    day.Add(10 * time.Hour),
			wantDuration: 2 * time.Hour,
		},
		{
			name:         "three hour gap hugs the shorter following interval",
			intervals:    []Interval{ivAt(day, 8, 11), ivAt(day, 14, 15)},
			wantStart:    day.Add(12 * time.Hour),
			wantDuration: 2 * time.Hour,
		},
		{
			name:         "three hour gap with equal bounds prefers the preceding interval",
			intervals:    []Interval{ivAt(day, 9, 10), ivAt(day, 13, 14)},
			wantStart:    day.Add(10 * time.Hour),
			wantDuration: 2 * time.Hour,
		},
		{
			name:         "five hour gap starts one buffer after the preceding end",
			intervals:    []Interval{ivAt(day, 8, 9), ivAt(day, 14, 16)},
			wantStart:    day.Add(10 * time.Hour),
			wantDuration: 2 * time.Hour,
		},
		{
			name:         "later qualifying gap overwrites an earlier one",
			intervals:    []Interval{ivAt(day, 9, 10), ivAt(day, 12, 13), ivAt(day, 15, 17)},
			wantStart:    day.Add(13 * time.Hour),
			wantDuration: time.Hour,
		},
		{
			name:         "single interval falls back to the larger bound gap",
			intervals:    []Interval{ivAt(day, 11, 13)},
			wantStart:    day.Add(13 * time.Hour),
			wantDuration: 2 * time.Hour,
		},
		{
			name:         "bound gap ties prefer before",
			intervals:    []Interval{ivAt(day, 12, 15)}, // before 3h, after 3h
			wantStart:    day.Add(9 * time.Hour),
			wantDuration: 2 * time.Hour,
		},
		{
			name:         "exact two hour before bound hosts a short session",
			intervals:    []Interval{ivAt(day, 11, 17)},
			wantStart:    day.Add(9 * time.Hour),
			wantDuration: time.Hour,
		},
		{
			name:      "no usable gap at all",
			intervals: []Interval{ivAt(day, 9.5, 17.5)},
			wantErr:   ErrNoAvailableSlot,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := DayBucket{Date: day, Intervals: tt.intervals}
			pl, err := place(b, conf)
			if err != tt.wantErr {
				t.Fatalf("place() error = %v; wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if !pl.Date.Equal(day) {
				t.Errorf("Date = %v; want %v", pl.Date, day)
			}
			if !pl.Start.Equal(tt.wantStart) {
				t.Errorf("Start = %v; want %v", pl.Start, tt.wantStart)
			}
			if pl.Duration != tt.wantDuration {
				t.Errorf("Duration = %v; want %v", pl.Duration, tt.wantDuration)
			}
			if !pl.End().Equal(pl.Start.Add(pl.Duration)) {
				t.Errorf("End() = %v; want %v", pl.End(), pl.Start.Add(pl.Duration))
			}
		})
	}
}

func TestFindGapsSumsToWorkingDay(t *testing.T) {
	day := date(2021, time.March, 2)
	conf := testSchedConf()
	b := DayBucket{Date: day, Intervals: []Interval{ivAt(day, 11, 12), ivAt(day, 14, 16)}}

	gaps := findGaps(b, conf)
	if gaps.before == nil || gaps.after == nil {
		t.Fatalf("expected usable bound gaps, got before=%v after=%v", gaps.before, gaps.after)
	}

	total := gaps.before.Duration + gaps.after.Duration
	for _, g := range gaps.inter {
		total += g.Duration
	}
	for _, iv := range b.Intervals {
		total += iv.Duration()
	}
	if want := conf.WorkingDayEnd - conf.WorkingDayStart; total != want {
		t.Errorf("gaps + occupied = %v; want full working day %v", total, want)
	}
}
