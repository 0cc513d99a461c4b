package schedule

import (
	"time"

	"github.com/petcare-labs/petcare/internal/care"
)

// DueStatus describes when a vaccination's next dose is due.
type DueStatus string

const (
	DueNone     DueStatus = "none"
	DueOverdue  DueStatus = "overdue"
	DueToday    DueStatus = "due_today"
	DueUpcoming DueStatus = "upcoming"
)

// VaccinationStatus classifies a vaccination's NextDueDate relative to now.
// Records without a parsable next due date report DueNone.
func VaccinationStatus(v *care.Vaccination, now time.Time) DueStatus {
	if v.NextDueDate == "" {
		return DueNone
	}
	due, err := care.ParseDateIn(v.NextDueDate, now.Location())
	if err != nil {
		return DueNone
	}
	switch Classify(due, now) {
	case BucketOverdue:
		return DueOverdue
	case BucketToday:
		return DueToday
	default:
		return DueUpcoming
	}
}

// ActiveFeedings returns the number of enabled feeding schedules.
func ActiveFeedings(schedules []*care.FeedingSchedule) int {
	n := 0
	for _, s := range schedules {
		if s.Enabled {
			n++
		}
	}
	return n
}

// FeedingOccurrence is a concrete upcoming feeding.
type FeedingOccurrence struct {
	Schedule *care.FeedingSchedule `json:"schedule"`
	At       time.Time             `json:"at"`
}

// NextFeeding returns the earliest enabled feeding at or after now. A
// schedule whose time already passed today occurs tomorrow. ok is false
// when no schedule is enabled.
func NextFeeding(schedules []*care.FeedingSchedule, now time.Time) (next FeedingOccurrence, ok bool) {
	start := StartOfDay(now)
	for _, s := range schedules {
		if !s.Enabled {
			continue
		}
		h, m, err := care.ParseClock(s.Time)
		if err != nil {
			continue
		}
		at := time.Date(start.Year(), start.Month(), start.Day(), h, m, 0, 0, now.Location())
		if at.Before(now) {
			at = at.AddDate(0, 0, 1)
		}
		if !ok || at.Before(next.At) || (at.Equal(next.At) && s.ID < next.Schedule.ID) {
			next = FeedingOccurrence{Schedule: s, At: at}
			ok = true
		}
	}
	return next, ok
}
