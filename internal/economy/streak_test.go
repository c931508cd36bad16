package economy

import (
	"testing"
	"time"
)

func TestStreakUpdate(t *testing.T) {
	tests := []struct {
		name  string
		in    Streak
		last  string
		today string
		want  Streak
	}{
		{"first activity", Streak{}, "", "2026-10-14", Streak{Current: 1, Longest: 1}},
		{"yesterday extends", Streak{Current: 3, Longest: 5}, "2026-10-13", "2026-10-14", Streak{Current: 4, Longest: 5}},
		{"extends past longest", Streak{Current: 5, Longest: 5}, "2026-10-13", "2026-10-14", Streak{Current: 6, Longest: 6}},
		{"same day unchanged", Streak{Current: 3, Longest: 5}, "2026-10-14", "2026-10-14", Streak{Current: 3, Longest: 5}},
		{"gap resets", Streak{Current: 7, Longest: 7}, "2026-10-11", "2026-10-14", Streak{Current: 1, Longest: 7}},
		{"two day gap resets", Streak{Current: 2, Longest: 2}, "2026-10-12", "2026-10-14", Streak{Current: 1, Longest: 2}},
		{"month boundary", Streak{Current: 1, Longest: 1}, "2026-09-30", "2026-10-01", Streak{Current: 2, Longest: 2}},
		{"swept then same day", Streak{Current: 0, Longest: 4}, "2026-10-14", "2026-10-14", Streak{Current: 1, Longest: 4}},
		{"clock went back", Streak{Current: 2, Longest: 2}, "2026-10-15", "2026-10-14", Streak{Current: 2, Longest: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StreakUpdate(tt.in, tt.last, tt.today)
			if got != tt.want {
				t.Errorf("StreakUpdate(%+v, %q, %q) = %+v, want %+v", tt.in, tt.last, tt.today, got, tt.want)
			}
		})
	}
}

func TestDay(t *testing.T) {
	ts := time.Date(2026, 10, 14, 23, 30, 0, 0, time.UTC)
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	if got := Day(ts, time.UTC); got != "2026-10-14" {
		t.Errorf("Day UTC = %q", got)
	}
	if got := Day(ts, tokyo); got != "2026-10-15" {
		t.Errorf("Day Tokyo = %q", got)
	}
	if got := Yesterday("2026-10-01"); got != "2026-09-30" {
		t.Errorf("Yesterday = %q", got)
	}
}

func TestNextStreakMilestone(t *testing.T) {
	tests := []struct {
		current int
		want    int
	}{
		{0, 3},
		{2, 3},
		{3, 7},
		{13, 14},
		{14, 30},
		{30, 60},
		{61, 90},
	}
	for _, tt := range tests {
		if got := NextStreakMilestone(tt.current); got != tt.want {
			t.Errorf("NextStreakMilestone(%d) = %d, want %d", tt.current, got, tt.want)
		}
	}
}
