package scheduler

import (
	"sort"
	"time"
)

// DayBucket holds one calendar day's intervals, sorted ascending by start,
// and the day's occupied-hours total.
type DayBucket struct {
	Date          time.Time // midnight UTC
	Intervals     []Interval
	OccupiedHours int
}

// bucketByDay groups intervals whose start falls within [win.Start, win.End)
// into one bucket per day of the window, both endpoint days included. Each
// interval's duration is rounded to the nearest whole hour before summing
// into OccupiedHours.
func bucketByDay(intervals []Interval, win WeekWindow) []DayBucket {
	buckets := make([]DayBucket, win.Days())
	for i := range buckets {
		buckets[i].Date = win.Start.AddDate(0, 0, i)
	}

	for _, iv := range intervals {
		if !win.Contains(iv.Start) {
			continue
		}
		idx := int(midnight(iv.Start).Sub(win.Start) / (24 * time.Hour))
		buckets[idx].Intervals = append(buckets[idx].Intervals, iv)
	}

	for i := range buckets {
		ivs := buckets[i].Intervals
		sort.Slice(ivs, func(a, b int) bool { return ivs[a].Start.Before(ivs[b].Start) })

		var hours int
		for _, iv := range ivs {
			hours += int(iv.Duration().Round(time.Hour) / time.Hour)
		}
		buckets[i].OccupiedHours = hours
	}
	return buckets
}
