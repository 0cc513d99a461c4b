package schedule

import (
	"cmp"
	"slices"
	"time"

	"github.com/petcare-labs/petcare/internal/care"
)

// SortAppointments sorts appointments by DateTime ascending. The order is
// stable and total: appointments at the same instant are ordered by ID.
func SortAppointments(apts []*care.Appointment) {
	slices.SortStableFunc(apts, compareAppointments)
}

// SortAppointmentsDesc sorts appointments most recent first.
func SortAppointmentsDesc(apts []*care.Appointment) {
	slices.SortStableFunc(apts, func(a, b *care.Appointment) int {
		return compareAppointments(b, a)
	})
}

func compareAppointments(a, b *care.Appointment) int {
	if c := a.DateTime.Compare(b.DateTime); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// UpcomingAppointments returns incomplete appointments strictly after now,
// soonest first. A limit <= 0 returns all of them.
func UpcomingAppointments(apts []*care.Appointment, now time.Time, limit int) []*care.Appointment {
	result := make([]*care.Appointment, 0, len(apts))
	for _, a := range apts {
		if !a.Completed && a.DateTime.After(now) {
			result = append(result, a)
		}
	}
	SortAppointments(result)
	return truncate(result, limit)
}

// CompletedAppointments returns completed appointments, most recent first.
func CompletedAppointments(apts []*care.Appointment, limit int) []*care.Appointment {
	result := make([]*care.Appointment, 0, len(apts))
	for _, a := range apts {
		if a.Completed {
			result = append(result, a)
		}
	}
	SortAppointmentsDesc(result)
	return truncate(result, limit)
}

// AppointmentsOn returns the appointments on day's calendar day (in day's
// location), sorted ascending.
func AppointmentsOn(apts []*care.Appointment, day time.Time) []*care.Appointment {
	result := make([]*care.Appointment, 0)
	for _, a := range apts {
		if IsSameDay(a.DateTime, day) {
			result = append(result, a)
		}
	}
	SortAppointments(result)
	return result
}

// CalendarDay is one day cell of a month calendar.
type CalendarDay struct {
	Date         string              `json:"date"`
	Today        bool                `json:"today"`
	Appointments []*care.Appointment `json:"appointments"`
}

// MonthCalendar lays out every day of month's calendar month with the
// appointments falling on it. now marks which cell is today.
func MonthCalendar(apts []*care.Appointment, month, now time.Time) []CalendarDay {
	loc := month.Location()
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, loc)
	next := first.AddDate(0, 1, 0)

	byDay := make(map[string][]*care.Appointment)
	for _, a := range apts {
		t := a.DateTime.In(loc)
		if t.Before(first) || !t.Before(next) {
			continue
		}
		key := t.Format(care.DateLayout)
		byDay[key] = append(byDay[key], a)
	}

	nowKey := now.In(loc).Format(care.DateLayout)
	days := make([]CalendarDay, 0, 31)
	for d := first; d.Before(next); d = d.AddDate(0, 0, 1) {
		key := d.Format(care.DateLayout)
		dayApts := byDay[key]
		if dayApts == nil {
			dayApts = []*care.Appointment{}
		}
		SortAppointments(dayApts)
		days = append(days, CalendarDay{
			Date:         key,
			Today:        key == nowKey,
			Appointments: dayApts,
		})
	}
	return days
}

func truncate[T any](s []T, limit int) []T {
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}
