package document

import (
	"time"

	"gitlab.com/tozd/go/errors"
)

// ErrDateOutOfRange is returned when an epoch-millisecond value cannot be
// represented as a valid calendar date within the supported range.
var ErrDateOutOfRange = errors.Base("date out of range")

// minEpochMs and maxEpochMs bound the calendar dates this corpus can store:
// year 1 through year 9999, the four-digit calendar years. Both bounds lie
// well inside what a signed 64-bit millisecond count can hold.
const (
	minEpochMs = -62135596800000
	maxEpochMs = 253402300799000
)

// EpochMsToTime converts milliseconds since the Unix epoch to a UTC time,
// clamping out-of-range values by returning ErrDateOutOfRange so the caller
// can drop the row rather than store a nonsensical date.
func EpochMsToTime(ms int64) (time.Time, errors.E) {
	if ms < minEpochMs || ms > maxEpochMs {
		return time.Time{}, errors.WithStack(ErrDateOutOfRange)
	}
	return time.UnixMilli(ms).UTC(), nil
}

// TimeToEpochMs converts a time to milliseconds since the Unix epoch,
// truncating to the midnight UTC of its calendar date, the resolution the
// document store persists dates at.
func TimeToEpochMs(t time.Time) int64 {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return d.UnixMilli()
}
