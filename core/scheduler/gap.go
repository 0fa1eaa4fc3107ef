package scheduler

import (
	"time"

	"github.com/trezcool/ratiba/core"
)

// Gap is a free span on a day: between two intervals, or between a working-day
// bound and the first/last interval. Prev/Next are bucket interval indexes;
// -1 marks the working-day bound side.
type Gap struct {
	Prev     int
	Next     int
	Duration time.Duration
}

type dayGaps struct {
	inter  []Gap
	before *Gap // working-day start -> first interval; nil when too short to use
	after  *Gap // last interval -> working-day end; nil when too short to use
}

// findGaps computes all gaps for a non-empty bucket. Bound gaps below the
// short-gap threshold cannot host even the shortest placement and are dropped
// here; inter-interval gaps are kept as-is and filtered by the rule table.
func findGaps(b DayBucket, conf core.SchedulerConfig) dayGaps {
	var gaps dayGaps
	ivs := b.Intervals
	if len(ivs) == 0 {
		return gaps
	}

	for i := 0; i+1 < len(ivs); i++ {
		gaps.inter = append(gaps.inter, Gap{
			Prev:     i,
			Next:     i + 1,
			Duration: ivs[i+1].Start.Sub(ivs[i].End),
		})
	}

	dayStart := b.Date.Add(conf.WorkingDayStart)
	dayEnd := b.Date.Add(conf.WorkingDayEnd)

	if d := ivs[0].Start.Sub(dayStart); d >= conf.ShortGapThreshold {
		gaps.before = &Gap{Prev: -1, Next: 0, Duration: d}
	}
	if d := dayEnd.Sub(ivs[len(ivs)-1].End); d >= conf.ShortGapThreshold {
		gaps.after = &Gap{Prev: len(ivs) - 1, Next: -1, Duration: d}
	}
	return gaps
}
