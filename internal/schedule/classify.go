// Package schedule classifies dated care items relative to a reference time.
//
// All functions are pure: they take the reference "now" explicitly and never
// read the wall clock. Calendar-day boundaries are computed in now's location,
// so callers choose the household timezone by choosing the location of now.
package schedule

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/petcare-labs/petcare/internal/care"
)

// Bucket is the position of a timestamp relative to the reference day.
type Bucket string

const (
	BucketOverdue  Bucket = "overdue"
	BucketToday    Bucket = "today"
	BucketUpcoming Bucket = "upcoming"
)

// StartOfDay returns midnight at the start of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Classify places t into overdue, today or upcoming relative to now's day.
//
// overdue:  t is strictly before the start of now's day.
// upcoming: t is strictly after the end of now's day (at or after next midnight).
// today:    anything in between, regardless of time of day.
func Classify(t, now time.Time) Bucket {
	start := StartOfDay(now)
	next := start.AddDate(0, 0, 1)
	t = t.In(now.Location())
	switch {
	case t.Before(start):
		return BucketOverdue
	case !t.Before(next):
		return BucketUpcoming
	default:
		return BucketToday
	}
}

// IsSameDay reports whether a and b fall on the same calendar day in b's location.
func IsSameDay(a, b time.Time) bool {
	return Classify(a, b) == BucketToday
}

// IsSnoozed reports whether the reminder is snoozed past now.
func IsSnoozed(r *care.Reminder, now time.Time) bool {
	return r.SnoozedUntil != nil && r.SnoozedUntil.After(now)
}

// Filter selects which active reminders a list view shows.
type Filter string

const (
	FilterAll      Filter = "all"
	FilterToday    Filter = "today"
	FilterOverdue  Filter = "overdue"
	FilterUpcoming Filter = "upcoming"
)

// AllFilters returns the reminder filters in display order.
func AllFilters() []Filter {
	return []Filter{FilterAll, FilterToday, FilterOverdue, FilterUpcoming}
}

// ParseFilter parses a filter name. The empty string means FilterAll.
func ParseFilter(s string) (Filter, error) {
	if s == "" {
		return FilterAll, nil
	}
	f := Filter(strings.ToLower(s))
	for _, valid := range AllFilters() {
		if f == valid {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown reminder filter %q (valid: all, today, overdue, upcoming)", s)
}

// Active returns the reminders that are not completed, preserving order.
func Active(reminders []*care.Reminder) []*care.Reminder {
	result := make([]*care.Reminder, 0, len(reminders))
	for _, r := range reminders {
		if !r.Completed {
			result = append(result, r)
		}
	}
	return result
}

// FilterReminders returns the active reminders matching f, sorted by DateTime.
func FilterReminders(reminders []*care.Reminder, f Filter, now time.Time) []*care.Reminder {
	result := make([]*care.Reminder, 0, len(reminders))
	for _, r := range Active(reminders) {
		if matches(r, f, now) {
			result = append(result, r)
		}
	}
	SortReminders(result)
	return result
}

func matches(r *care.Reminder, f Filter, now time.Time) bool {
	switch f {
	case FilterToday:
		return Classify(r.DateTime, now) == BucketToday
	case FilterOverdue:
		return Classify(r.DateTime, now) == BucketOverdue
	case FilterUpcoming:
		return Classify(r.DateTime, now) == BucketUpcoming
	default:
		return true
	}
}

// Counts holds the number of active reminders per filter.
type Counts struct {
	All      int `json:"all"`
	Today    int `json:"today"`
	Overdue  int `json:"overdue"`
	Upcoming int `json:"upcoming"`
}

// CountReminders counts active reminders per filter.
func CountReminders(reminders []*care.Reminder, now time.Time) Counts {
	var c Counts
	for _, r := range Active(reminders) {
		c.All++
		switch Classify(r.DateTime, now) {
		case BucketToday:
			c.Today++
		case BucketOverdue:
			c.Overdue++
		case BucketUpcoming:
			c.Upcoming++
		}
	}
	return c
}

// OverdueCount returns how many active reminders are overdue.
func OverdueCount(reminders []*care.Reminder, now time.Time) int {
	return CountReminders(reminders, now).Overdue
}

// DueNow returns the reminders that need attention: not completed, not
// snoozed past now, and dated today or earlier. Sorted by DateTime.
func DueNow(reminders []*care.Reminder, now time.Time) []*care.Reminder {
	result := make([]*care.Reminder, 0, len(reminders))
	for _, r := range reminders {
		if r.Completed || IsSnoozed(r, now) {
			continue
		}
		if Classify(r.DateTime, now) != BucketUpcoming {
			result = append(result, r)
		}
	}
	SortReminders(result)
	return result
}

// SortReminders sorts reminders by DateTime ascending, ties broken by ID.
func SortReminders(reminders []*care.Reminder) {
	slices.SortStableFunc(reminders, func(a, b *care.Reminder) int {
		if c := a.DateTime.Compare(b.DateTime); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
