package scheduler

import (
	"github.com/trezcool/ratiba/core"
)

// place applies the rule table to the selected day's gaps and returns the
// winning placement. Gaps are evaluated in interval order and a later
// qualifying gap overwrites an earlier one (iteration-overwrite behavior,
// kept from the original heuristic):
//
//   - gap == short threshold: short session right after the preceding
//     interval, leaving the rest as buffer before the next one;
//   - short < gap < long threshold: long session adjacent to the shorter of
//     the two bounding intervals, ties toward the preceding one;
//   - gap >= long threshold: long session one buffer after the preceding end.
//
// When no inter-interval gap qualifies (all too small, or fewer than two
// intervals), the larger of the two working-day bound gaps hosts the session
// instead, preferring "before" on ties. No usable gap at all means no slot.
func place(b DayBucket, conf core.SchedulerConfig) (Placement, error) {
	gaps := findGaps(b, conf)
	ivs := b.Intervals

	var (
		pl    Placement
		found bool
	)
	for _, g := range gaps.inter {
		switch {
		case g.Duration == conf.ShortGapThreshold:
			pl = Placement{Date: b.Date, Start: ivs[g.Prev].End, Duration: conf.ShortSessionDuration}
			found = true
		case g.Duration > conf.ShortGapThreshold && g.Duration < conf.LongGapThreshold:
			prev, next := ivs[g.Prev], ivs[g.Next]
			if prev.Duration() <= next.Duration() {
				pl = Placement{Date: b.Date, Start: prev.End, Duration: conf.LongSessionDuration}
			} else {
				pl = Placement{Date: b.Date, Start: next.Start.Add(-conf.LongSessionDuration), Duration: conf.LongSessionDuration}
			}
			found = true
		case g.Duration >= conf.LongGapThreshold:
			pl = Placement{Date: b.Date, Start: ivs[g.Prev].End.Add(conf.SessionBuffer), Duration: conf.LongSessionDuration}
			found = true
		}
	}
	if found {
		return pl, nil
	}

	var bound *Gap
	if gaps.before != nil && (gaps.after == nil || gaps.before.Duration >= gaps.after.Duration) {
		bound = gaps.before
		pl.Start = b.Date.Add(conf.WorkingDayStart)
	} else if gaps.after != nil {
		bound = gaps.after
		pl.Start = ivs[len(ivs)-1].End
	}
	if bound == nil {
		return Placement{}, ErrNoAvailableSlot
	}

	pl.Date = b.Date
	pl.Duration = conf.LongSessionDuration
	if bound.Duration == conf.ShortGapThreshold {
		pl.Duration = conf.ShortSessionDuration
	}
	return pl, nil
}
