package util

import (
	"strings"
	"time"
)

// ISOLayout matches the calendar form used for event datestamps: UTC with
// millisecond precision and a literal Z.
const ISOLayout = "2006-01-02T15:04:05.000Z"

// ISOTimestamp formats t in UTC using ISOLayout.
func ISOTimestamp(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// EpochMillis returns t as milliseconds since the Unix epoch.
func EpochMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// FileStamp returns the ISO timestamp of t with ':' and '.' replaced by '-'
// so it can be embedded in a file name.
func FileStamp(t time.Time) string {
	return strings.NewReplacer(":", "-", ".", "-").Replace(ISOTimestamp(t))
}
