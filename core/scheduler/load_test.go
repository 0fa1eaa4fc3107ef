package scheduler

import (
	"testing"
	"time"
)

func TestBucketByDay(t *testing.T) {
	win := WeekWindow{Start: date(2021, time.March, 1), End: date(2021, time.March, 6)}
	mon, tue, sat := win.Start, win.Start.AddDate(0, 0, 1), win.End

	intervals := []Interval{
		ivAt(tue, 13, 15),
		ivAt(tue, 9, 10.75), // 1h45 rounds to 2h
		ivAt(mon, 10, 11),
		ivAt(sat, 9, 10), // last window day still counts
		ivAt(date(2021, time.February, 26), 9, 10), // before the window
		ivAt(date(2021, time.March, 8), 9, 10),     // after the window
	}

	buckets := bucketByDay(intervals, win)
	if len(buckets) != 6 {
		t.Fatalf("got %d buckets; want 6", len(buckets))
	}

	wantHours := []int{1, 4, 0, 0, 0, 1}
	for i, want := range wantHours {
		if got := buckets[i].OccupiedHours; got != want {
			t.Errorf("day %d occupied = %d; want %d", i, got, want)
		}
	}

	// tuesday's intervals must be sorted by start
	tueIvs := buckets[1].Intervals
	if len(tueIvs) != 2 {
		t.Fatalf("tuesday has %d intervals; want 2", len(tueIvs))
	}
	if !tueIvs[0].Start.Before(tueIvs[1].Start) {
		t.Errorf("tuesday intervals not sorted: %v", tueIvs)
	}
}

func TestSelectDay(t *testing.T) {
	mkBuckets := func(hours ...int) []DayBucket {
		buckets := make([]DayBucket, len(hours))
		for i, h := range hours {
			buckets[i].OccupiedHours = h
		}
		return buckets
	}

	tests := []struct {
		name    string
		buckets []DayBucket
		want    int
		wantErr error
	}{
		{name: "least loaded partial day wins", buckets: mkBuckets(3, 1, 5, 0, 2, 0), want: 1},
		{name: "empty days lose to partial ones", buckets: mkBuckets(0, 0, 4, 0, 0, 0), want: 2},
		{name: "full days are skipped", buckets: mkBuckets(8, 9, 2, 0, 0, 0), want: 2},
		{name: "first empty day when nothing partial", buckets: mkBuckets(8, 8, 0, 0, 8, 8), want: 2},
		{name: "all full", buckets: mkBuckets(8, 8, 8, 8, 9, 10), wantErr: ErrNoAvailableSlot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := selectDay(tt.buckets, 8)
			if err != tt.wantErr {
				t.Fatalf("selectDay() error = %v; wantErr %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("selectDay() = %d; want %d", got, tt.want)
			}

			// same inputs, same pick
			again, err2 := selectDay(tt.buckets, 8)
			if err2 != err || (err == nil && again != got) {
				t.Errorf("selectDay() not stable: first (%d, %v), second (%d, %v)", got, err, again, err2)
			}
		})
	}
}
