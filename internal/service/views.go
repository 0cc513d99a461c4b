package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/petcare-labs/petcare/internal/care"
	"github.com/petcare-labs/petcare/internal/schedule"
)

// PetSummary is a pet with its display age.
type PetSummary struct {
	*care.Pet
	Age string `json:"age"`
}

// Dashboard is the household overview.
type Dashboard struct {
	GeneratedAt time.Time    `json:"generatedAt"`
	TotalPets   int          `json:"totalPets"`
	Pets        []PetSummary `json:"pets"`

	// TodayReminders are the reminders needing attention now: not
	// completed, not snoozed, due today or earlier.
	TodayReminders   []*care.Reminder `json:"todayReminders"`
	OverdueReminders int              `json:"overdueReminders"`

	ActiveFeedings int                         `json:"activeFeedings"`
	NextFeeding    *schedule.FeedingOccurrence `json:"nextFeeding,omitempty"`

	UpcomingAppointments []*care.Appointment `json:"upcomingAppointments"`
}

// Dashboard loads every collection it needs concurrently and summarizes them.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	var (
		pets         []*care.Pet
		reminders    []*care.Reminder
		appointments []*care.Appointment
		feedings     []*care.FeedingSchedule
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		pets, err = s.repo.Pets().List(gctx)
		return err
	})
	g.Go(func() (err error) {
		reminders, err = s.repo.Reminders().List(gctx)
		return err
	})
	g.Go(func() (err error) {
		appointments, err = s.repo.Appointments().List(gctx)
		return err
	})
	g.Go(func() (err error) {
		feedings, err = s.repo.Feedings().List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := s.Now()
	d := &Dashboard{
		GeneratedAt:          now,
		TotalPets:            len(pets),
		Pets:                 summarize(pets, now),
		TodayReminders:       schedule.DueNow(reminders, now),
		OverdueReminders:     schedule.OverdueCount(reminders, now),
		ActiveFeedings:       schedule.ActiveFeedings(feedings),
		UpcomingAppointments: schedule.UpcomingAppointments(appointments, now, DashboardAppointments),
	}
	if next, ok := schedule.NextFeeding(feedings, now); ok {
		d.NextFeeding = &next
	}
	return d, nil
}

// VaccinationView is a vaccination record with its due status.
type VaccinationView struct {
	*care.Vaccination
	Status schedule.DueStatus `json:"status"`
}

// PetDetail is everything known about one pet.
type PetDetail struct {
	Pet *care.Pet `json:"pet"`
	Age string    `json:"age"`

	Feedings    []*care.FeedingSchedule     `json:"feedings"`
	NextFeeding *schedule.FeedingOccurrence `json:"nextFeeding,omitempty"`

	// Appointments lists every appointment, most recent first.
	Appointments          []*care.Appointment `json:"appointments"`
	UpcomingAppointments  []*care.Appointment `json:"upcomingAppointments"`
	CompletedAppointments []*care.Appointment `json:"completedAppointments"`

	Vaccinations []VaccinationView `json:"vaccinations"`
	Reminders    []*care.Reminder  `json:"reminders"`
}

// PetDetail loads one pet and all of its records.
func (s *Service) PetDetail(ctx context.Context, id int64) (*PetDetail, error) {
	pet, err := s.repo.Pets().Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var (
		feedings     []*care.FeedingSchedule
		appointments []*care.Appointment
		vaccinations []*care.Vaccination
		reminders    []*care.Reminder
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		feedings, err = s.ListFeedings(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		appointments, err = s.ListAppointments(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		vaccinations, err = s.ListVaccinations(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		reminders, err = s.ListReminders(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := s.Now()
	d := &PetDetail{
		Pet:                   pet,
		Age:                   schedule.AgeText(pet.BirthDate, now),
		Feedings:              feedings,
		UpcomingAppointments:  schedule.UpcomingAppointments(appointments, now, 0),
		CompletedAppointments: schedule.CompletedAppointments(appointments, 0),
		Reminders:             schedule.DueNow(reminders, now),
		Vaccinations:          make([]VaccinationView, 0, len(vaccinations)),
	}
	if next, ok := schedule.NextFeeding(feedings, now); ok {
		d.NextFeeding = &next
	}

	d.Appointments = append([]*care.Appointment(nil), appointments...)
	schedule.SortAppointmentsDesc(d.Appointments)
	if d.Appointments == nil {
		d.Appointments = []*care.Appointment{}
	}

	for _, v := range vaccinations {
		d.Vaccinations = append(d.Vaccinations, VaccinationView{
			Vaccination: v,
			Status:      schedule.VaccinationStatus(v, now),
		})
	}
	return d, nil
}

func summarize(pets []*care.Pet, now time.Time) []PetSummary {
	result := make([]PetSummary, 0, len(pets))
	for _, p := range pets {
		result = append(result, PetSummary{Pet: p, Age: schedule.AgeText(p.BirthDate, now)})
	}
	return result
}
