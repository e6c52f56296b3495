package training

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDayNumber(t *testing.T) {
	start := date(2026, time.March, 2)

	tests := map[string]struct {
		today time.Time
		want  int
	}{
		"first day":           {date(2026, time.March, 2), 1},
		"second day":          {date(2026, time.March, 3), 2},
		"before start":        {date(2026, time.March, 1), 0},
		"well before start":   {date(2026, time.February, 25), -4},
		"after the last day":  {date(2026, time.March, 20), 19},
		"time of day ignored": {time.Date(2026, time.March, 3, 23, 59, 0, 0, time.UTC), 2},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := DayNumber(start, tc.today); got != tc.want {
				t.Fatalf("DayNumber = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestTotalDays(t *testing.T) {
	tests := map[string]struct {
		start, end time.Time
		want       int
	}{
		"single day":  {date(2026, time.March, 2), date(2026, time.March, 2), 1},
		"five days":   {date(2026, time.March, 2), date(2026, time.March, 6), 5},
		"month break": {date(2026, time.February, 27), date(2026, time.March, 3), 5},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := TotalDays(tc.start, tc.end); got != tc.want {
				t.Fatalf("TotalDays = %d, want %d", got, tc.want)
			}
		})
	}
}
