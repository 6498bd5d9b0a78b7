package schema

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ResolveTime turns a time expression into an instant relative to now.
//
// Accepted forms: "now", "today" (midnight of now's day), signed offsets
// such as "-5y", "+30d", "-2w", "+2h", "-15m", "+10s", absolute dates
// ("2024-01-31"), "2024-01-31 08:00:00" and RFC 3339 timestamps.
func ResolveTime(expr string, now time.Time) (time.Time, error) {
	s := strings.TrimSpace(strings.ToLower(expr))
	switch s {
	case "":
		return time.Time{}, fmt.Errorf("empty time expression")
	case "now":
		return now, nil
	case "today":
		return Day(now), nil
	}
	if s[0] == '+' || s[0] == '-' {
		return resolveOffset(s, now)
	}
	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.ParseInLocation(layout, strings.TrimSpace(expr), now.Location()); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time expression %q", expr)
}

func resolveOffset(s string, now time.Time) (time.Time, error) {
	unit := s[len(s)-1]
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil {
		return time.Time{}, fmt.Errorf("bad offset %q: %w", s, err)
	}
	switch unit {
	case 'y':
		return YearsBefore(now, -n), nil
	case 'w':
		return now.AddDate(0, 0, 7*n), nil
	case 'd':
		return now.AddDate(0, 0, n), nil
	case 'h':
		return now.Add(time.Duration(n) * time.Hour), nil
	case 'm':
		return now.Add(time.Duration(n) * time.Minute), nil
	case 's':
		return now.Add(time.Duration(n) * time.Second), nil
	}
	return time.Time{}, fmt.Errorf("bad offset unit in %q (use y, w, d, h, m, s)", s)
}

// Day truncates t to midnight in its own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// YearsBefore moves t back n calendar years, clamping Feb 29 to Feb 28 instead
// of rolling into March.
func YearsBefore(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	y -= n
	if last := daysIn(y, m); d > last {
		d = last
	}
	hh, mm, ss := t.Clock()
	return time.Date(y, m, d, hh, mm, ss, t.Nanosecond(), t.Location())
}

func daysIn(year int, m time.Month) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Age returns the completed years between birth and at.
func Age(birth, at time.Time) int {
	age := at.Year() - birth.Year()
	if at.Month() < birth.Month() || (at.Month() == birth.Month() && at.Day() < birth.Day()) {
		age--
	}
	return age
}
