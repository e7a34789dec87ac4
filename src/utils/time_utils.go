package utils

import (
	"time"
)

// BucketStart floors t to the start of its bucket. A non-positive bucket
// returns t unchanged.
func BucketStart(t time.Time, bucket time.Duration) time.Time {
	if bucket <= 0 {
		return t
	}
	return t.Truncate(bucket)
}

// DaysSince counts whole days elapsed between start and now.
func DaysSince(start, now time.Time) int {
	if start.IsZero() || now.Before(start) {
		return 0
	}
	return int(now.Sub(start) / (24 * time.Hour))
}
