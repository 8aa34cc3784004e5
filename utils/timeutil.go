package utils

import (
	"os"
	"time"
)

// Domain timestamps are stored and transmitted as formatted strings; mobile
// clients order them lexically, so the layout must sort the same way it reads.
const StampLayout = "2006-01-02 15:04:05.000"

var (
	stampLocation = time.Local
	stampOffset   time.Duration
)

func init() {
	if tz := os.Getenv("TIME_ZONE"); tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			stampLocation = loc
		}
	}
	// TIME_OFFSET replaces the legacy hardcoded one-hour clock correction.
	// Leave unset unless the deployment host clock is known to be skewed.
	if off := os.Getenv("TIME_OFFSET"); off != "" {
		if d, err := time.ParseDuration(off); err == nil {
			stampOffset = d
		}
	}
}

// Now returns the current time in the configured zone, offset applied.
func Now() time.Time {
	return time.Now().In(stampLocation).Add(stampOffset)
}

// Stamp returns the canonical string timestamp for "now".
func Stamp() string {
	return Now().Format(StampLayout)
}

// FormatStamp renders any time in the canonical layout.
func FormatStamp(t time.Time) string {
	return t.In(stampLocation).Format(StampLayout)
}

// ParseStamp parses a canonical timestamp string in the configured zone.
func ParseStamp(s string) (time.Time, error) {
	return time.ParseInLocation(StampLayout, s, stampLocation)
}
