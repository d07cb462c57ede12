package domain

import "time"

// TimestampLayout is the on-disk format for every date column.
const TimestampLayout = "2006-01-02 15:04:05"

// Timestamp is a local wall-clock time as written in a store file. It is kept as
// text so hand-edited values survive a read/write cycle untouched.
type Timestamp string

// NewTimestamp formats t in local time.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t.Local().Format(TimestampLayout))
}

// Time parses the timestamp as local time.
func (ts Timestamp) Time() (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, string(ts), time.Local)
}

func (ts Timestamp) String() string {
	return string(ts)
}
