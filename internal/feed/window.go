package feed

import "time"

// Window is a half-open [Start, End) time range restricting which activity
// counts toward a ranking. A zero-width or inverted window means all-time.
type Window struct {
	Start time.Time
	End   time.Time
}

// AllTime reports whether the window carries no usable restriction. Both
// endpoints zero, equal endpoints, and End before Start all degrade to
// all-time rather than erroring.
func (w Window) AllTime() bool {
	if w.Start.IsZero() && w.End.IsZero() {
		return true
	}
	return !w.End.After(w.Start)
}

// Days returns the window width in whole days.
func (w Window) Days() int {
	if w.AllTime() {
		return 0
	}
	return int(w.End.Sub(w.Start).Hours() / 24)
}

// Bucket is the coarse cache granularity derived from a window width.
// Buckets exist so that near-identical windows (a "past week" feed requested
// a minute apart) share one cache entry.
type Bucket string

// Window buckets.
const (
	BucketYear  Bucket = "year"
	BucketMonth Bucket = "month"
	BucketWeek  Bucket = "week"
	BucketToday Bucket = "today"
)

// ClassifyBucket maps a window to its cache bucket by width in whole days:
// 365 is a year, 30 or 31 a month, 7 a week, everything else today. The
// mapping is deliberately coarse rather than calendar-aware; equal widths
// always land in the same bucket regardless of position.
func ClassifyBucket(w Window) Bucket {
	switch w.Days() {
	case 365:
		return BucketYear
	case 30, 31:
		return BucketMonth
	case 7:
		return BucketWeek
	default:
		return BucketToday
	}
}

// AllBuckets lists every bucket a cache key can carry. Invalidation
// enumerates this list.
func AllBuckets() []Bucket {
	return []Bucket{BucketYear, BucketMonth, BucketWeek, BucketToday}
}
