package service

import (
	"context"
	"time"

	"github.com/petcare-labs/petcare/internal/care"
	"github.com/petcare-labs/petcare/internal/schedule"
	"github.com/petcare-labs/petcare/pkg/models"
)

// ListAppointments returns appointments soonest first, optionally for one pet.
func (s *Service) ListAppointments(ctx context.Context, petID int64) ([]*care.Appointment, error) {
	apts, err := s.repo.Appointments().List(ctx)
	if err != nil {
		return nil, err
	}
	apts = byPet(apts, petID, appointmentPet)
	schedule.SortAppointments(apts)
	return apts, nil
}

// GetAppointment returns one appointment.
func (s *Service) GetAppointment(ctx context.Context, id int64) (*care.Appointment, error) {
	return s.repo.Appointments().Get(ctx, id)
}

// CreateAppointment books an appointment for an existing pet.
func (s *Service) CreateAppointment(ctx context.Context, patch models.AppointmentPatch) (*care.Appointment, error) {
	a := &care.Appointment{}
	applyAppointmentPatch(a, patch)
	if err := s.requirePet(ctx, care.KindAppointment, a.PetID); err != nil {
		return nil, err
	}
	return s.repo.Appointments().Create(ctx, a)
}

// UpdateAppointment merges patch into the stored appointment.
func (s *Service) UpdateAppointment(ctx context.Context, id int64, patch models.AppointmentPatch) (*care.Appointment, error) {
	a, err := s.repo.Appointments().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyAppointmentPatch(a, patch)
	if patch.PetID != nil {
		if err := s.requirePet(ctx, care.KindAppointment, a.PetID); err != nil {
			return nil, err
		}
	}
	return s.repo.Appointments().Update(ctx, a)
}

// DeleteAppointment removes an appointment.
func (s *Service) DeleteAppointment(ctx context.Context, id int64) error {
	return s.repo.Appointments().Delete(ctx, id)
}

// CompleteAppointment marks an appointment as attended.
func (s *Service) CompleteAppointment(ctx context.Context, id int64) (*care.Appointment, error) {
	return s.UpdateAppointment(ctx, id, models.AppointmentPatch{Completed: models.Bool(true)})
}

// Calendar lays out month (any time within it, in the household timezone)
// with its appointments.
func (s *Service) Calendar(ctx context.Context, month time.Time) ([]schedule.CalendarDay, error) {
	apts, err := s.repo.Appointments().List(ctx)
	if err != nil {
		return nil, err
	}
	return schedule.MonthCalendar(apts, month.In(s.loc), s.Now()), nil
}
