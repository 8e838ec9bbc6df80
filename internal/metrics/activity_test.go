package metrics

import (
	"testing"
	"time"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestActivityStatus_Boundaries(t *testing.T) {
	tests := []struct {
		name       string
		lastUsedAt string
		want       string
	}{
		{"just now", "2026-03-10T12:00:00Z", StatusActive},
		{"exactly 7 days", "2026-03-03T12:00:00Z", StatusActive},
		{"7 days and one second", "2026-03-03T11:59:59Z", StatusInactive},
		{"exactly 30 days", "2026-02-08T12:00:00Z", StatusInactive},
		{"30 days and one second", "2026-02-08T11:59:59Z", StatusStale},
		{"months ago", "2025-11-01T00:00:00Z", StatusStale},
		{"unparsable", "never", StatusStale},
		{"empty", "", StatusStale},
	}
	for _, tt := range tests {
		if got := ActivityStatus(tt.lastUsedAt, now); got != tt.want {
			t.Errorf("%s: status = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestDaysSince(t *testing.T) {
	tests := []struct {
		name      string
		timestamp string
		want      int
	}{
		{"same instant", "2026-03-10T12:00:00Z", 0},
		{"under a day", "2026-03-10T01:00:00Z", 0},
		{"floors partial days", "2026-03-08T20:00:00Z", 1},
		{"exact days", "2026-03-03T12:00:00Z", 7},
		{"future timestamp clamps to zero", "2026-03-11T12:00:00Z", 0},
		{"unparsable is maximally stale", "garbage", 9999},
	}
	for _, tt := range tests {
		if got := DaysSince(tt.timestamp, now); got != tt.want {
			t.Errorf("%s: days = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestRound1(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{2.44, 2.4},
		{2.45, 2.5},
		{2.5, 2.5},
		{0.0, 0.0},
	}
	for _, tt := range tests {
		if got := round1(tt.in); got != tt.want {
			t.Errorf("round1(%f) = %f, want %f", tt.in, got, tt.want)
		}
	}
}

func TestRoundHours(t *testing.T) {
	if got := roundHours(2.5); got != 3 {
		t.Errorf("roundHours(2.5) = %d, want 3", got)
	}
	if got := roundHours(2.4); got != 2 {
		t.Errorf("roundHours(2.4) = %d, want 2", got)
	}
}
