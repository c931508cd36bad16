package economy

import "time"

// DayLayout is the calendar-day format of last activity dates.
const DayLayout = "2006-01-02"

// Day returns the calendar day of t in loc.
func Day(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayLayout)
}

// Streak is the current and best run of active days.
type Streak struct {
	Current int
	Longest int
}

// StreakUpdate applies activity on today to a streak last extended on
// lastDay. Activity the day after extends the run, activity on the same day
// leaves it alone, and any larger gap (or no history) starts over at 1.
func StreakUpdate(s Streak, lastDay, today string) Streak {
	next := s
	last, errLast := time.Parse(DayLayout, lastDay)
	now, errNow := time.Parse(DayLayout, today)

	switch {
	case errLast != nil || errNow != nil:
		next.Current = 1
	case now.Equal(last):
		if next.Current == 0 {
			next.Current = 1
		}
	case now.Before(last):
		// Clock went backwards; keep what we have.
	case now.Equal(last.AddDate(0, 0, 1)):
		next.Current++
	default:
		next.Current = 1
	}

	next.Longest = max(next.Longest, next.Current)
	return next
}

// Yesterday returns the calendar day before today.
func Yesterday(today string) string {
	t, err := time.Parse(DayLayout, today)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, -1).Format(DayLayout)
}

// NextStreakMilestone returns the next milestone above the current streak:
// 3, 7, 14, 30, then every 30 days.
func NextStreakMilestone(current int) int {
	for _, m := range []int{3, 7, 14, 30} {
		if m > current {
			return m
		}
	}
	return ((current / 30) + 1) * 30
}
