package model

import "time"

// TimeBucket is one row of the time dimension. Every field is a pure function
// of StartTime under UTC, so re-deriving from the same millisecond value must
// reproduce identical fields.
type TimeBucket struct {
	StartTime int64 // epoch milliseconds; also the primary key
	Hour      int
	Day       int
	Week      int // ISO 8601 week number
	Month     int
	Year      int
	Weekday   int // Monday=0 .. Sunday=6
}

// TimeBucketFromMillis decomposes an epoch-millisecond timestamp into its
// time-dimension fields using UTC.
//
// Edge cases:
//   - The ISO week can belong to the previous or next calendar year around
//     January 1st; Week follows ISO 8601 while Year stays the calendar year,
//     matching the source decomposition.
func TimeBucketFromMillis(ms int64) TimeBucket {
	t := time.UnixMilli(ms).UTC()
	_, week := t.ISOWeek()
	return TimeBucket{
		StartTime: ms,
		Hour:      t.Hour(),
		Day:       t.Day(),
		Week:      week,
		Month:     int(t.Month()),
		Year:      t.Year(),
		Weekday:   (int(t.Weekday()) + 6) % 7,
	}
}
