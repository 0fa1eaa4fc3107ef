package scheduler

// selectDay picks the bucket index to place the new session in: the least
// occupied day among the partially loaded ones (0 < hours < fullHours), so the
// user keeps at least one completely free day when busier-but-not-full days
// exist. Only when every day is either empty or full does the first empty day
// win. A week with all days at or above fullHours has no slot.
func selectDay(buckets []DayBucket, fullHours int) (int, error) {
	best := -1
	for i, b := range buckets {
		if b.OccupiedHours > 0 && b.OccupiedHours < fullHours {
			if best == -1 || b.OccupiedHours < buckets[best].OccupiedHours {
				best = i
			}
		}
	}
	if best != -1 {
		return best, nil
	}
	for i, b := range buckets {
		if b.OccupiedHours == 0 {
			return i, nil
		}
	}
	return -1, ErrNoAvailableSlot
}
