package fixtures

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/petcare-labs/petcare/internal/care"
)

// ResolveTime turns a fixture timestamp into an absolute time.
//
// Accepted forms:
//
//	2024-03-15T09:00:00Z   absolute RFC3339
//	now                    the load time
//	+2h, -30m              offset from the load time
//	-1d@08:00, +2w@14:30   day offset from today, at a wall-clock time
//	today@18:00            today at a wall-clock time
//
// Units are m (minutes), h (hours), d (days), w (weeks) and y (years).
func ResolveTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty time")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if s == "now" {
		return now, nil
	}

	offset, clock, hasClock := strings.Cut(s, "@")
	if offset == "today" {
		offset = "+0d"
	}

	t, err := applyOffset(offset, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid relative time %q: %w", s, err)
	}
	if hasClock {
		h, m, err := care.ParseClock(clock)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid relative time %q: %w", s, err)
		}
		t = time.Date(t.Year(), t.Month(), t.Day(), h, m, 0, 0, t.Location())
	}
	return t, nil
}

// ResolveDate turns a fixture calendar date into YYYY-MM-DD. Relative
// forms are the same as ResolveTime; the wall-clock part is ignored.
func ResolveDate(s string, now time.Time) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	if _, err := care.ParseDate(s); err == nil {
		return s, nil
	}
	t, err := ResolveTime(s, now)
	if err != nil {
		return "", err
	}
	return t.In(now.Location()).Format(care.DateLayout), nil
}

func applyOffset(offset string, now time.Time) (time.Time, error) {
	if len(offset) < 3 || (offset[0] != '+' && offset[0] != '-') {
		return time.Time{}, fmt.Errorf("expected +N<unit> or -N<unit>")
	}
	sign := 1
	if offset[0] == '-' {
		sign = -1
	}
	unit := offset[len(offset)-1]
	n, err := strconv.Atoi(offset[1 : len(offset)-1])
	if err != nil {
		return time.Time{}, fmt.Errorf("bad amount: %w", err)
	}
	n *= sign

	switch unit {
	case 'm':
		return now.Add(time.Duration(n) * time.Minute), nil
	case 'h':
		return now.Add(time.Duration(n) * time.Hour), nil
	case 'd':
		return now.AddDate(0, 0, n), nil
	case 'w':
		return now.AddDate(0, 0, 7*n), nil
	case 'y':
		return now.AddDate(n, 0, 0), nil
	default:
		return time.Time{}, fmt.Errorf("unknown unit %q", unit)
	}
}
