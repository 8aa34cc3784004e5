package utils

import (
	"sort"
	"testing"
	"time"
)

func TestFormatStampRoundTrip(t *testing.T) {
	in := time.Date(2024, 1, 1, 8, 5, 0, 123_000_000, stampLocation)
	s := FormatStamp(in)
	if s != "2024-01-01 08:05:00.123" {
		t.Fatalf("FormatStamp = %q", s)
	}
	back, err := ParseStamp(s)
	if err != nil {
		t.Fatalf("ParseStamp: %v", err)
	}
	if !back.Equal(in) {
		t.Errorf("round trip mismatch: %v != %v", back, in)
	}
}

// Lexical order of rendered stamps must agree with chronological order,
// because visit/action reconciliation compares the raw strings.
func TestStampLexicalOrderMatchesChronological(t *testing.T) {
	base := time.Date(2024, 3, 9, 23, 59, 59, 900_000_000, stampLocation)
	times := []time.Time{
		base.Add(2 * time.Hour),
		base,
		base.Add(time.Millisecond * 150),
		base.Add(24 * time.Hour),
		base.Add(time.Second),
	}
	stamps := make([]string, len(times))
	for i, tm := range times {
		stamps[i] = FormatStamp(tm)
	}
	sortedByTime := make([]string, len(stamps))
	copy(sortedByTime, stamps)
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	for i, tm := range times {
		sortedByTime[i] = FormatStamp(tm)
	}
	sort.Strings(stamps)
	for i := range stamps {
		if stamps[i] != sortedByTime[i] {
			t.Fatalf("lexical order diverges at %d: %q vs %q", i, stamps[i], sortedByTime[i])
		}
	}
}
