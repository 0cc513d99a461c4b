package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/petcare-labs/petcare/internal/care"
	"github.com/petcare-labs/petcare/internal/errors"
	"github.com/petcare-labs/petcare/pkg/models"
)

// ListPets returns all pets ordered by ID.
func (s *Service) ListPets(ctx context.Context) ([]*care.Pet, error) {
	return s.repo.Pets().List(ctx)
}

// PetSummaries returns all pets with their display ages.
func (s *Service) PetSummaries(ctx context.Context) ([]PetSummary, error) {
	pets, err := s.repo.Pets().List(ctx)
	if err != nil {
		return nil, err
	}
	return summarize(pets, s.Now()), nil
}

// GetPet returns one pet.
func (s *Service) GetPet(ctx context.Context, id int64) (*care.Pet, error) {
	return s.repo.Pets().Get(ctx, id)
}

// CreatePet creates a pet. Tracking levels default to the middle of the scale.
func (s *Service) CreatePet(ctx context.Context, patch models.PetPatch) (*care.Pet, error) {
	pet := care.NewPet("", "")
	applyPetPatch(pet, patch)
	created, err := s.repo.Pets().Create(ctx, pet)
	if err != nil {
		return nil, err
	}
	s.logger.Info("pet created", zap.Int64("id", created.ID), zap.String("name", created.Name))
	return created, nil
}

// UpdatePet merges patch into the stored pet.
func (s *Service) UpdatePet(ctx context.Context, id int64, patch models.PetPatch) (*care.Pet, error) {
	pet, err := s.repo.Pets().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyPetPatch(pet, patch)
	return s.repo.Pets().Update(ctx, pet)
}

// UpdateTracking records today's appetite and energy levels for a pet.
// Nil levels are left unchanged.
func (s *Service) UpdateTracking(ctx context.Context, petID int64, appetite, energy *int) (*care.Pet, error) {
	if appetite == nil && energy == nil {
		return nil, errors.NewBadRequest("appetite or energy is required")
	}
	return s.UpdatePet(ctx, petID, models.PetPatch{Appetite: appetite, Energy: energy})
}

// DeletePet removes a pet and every record that belongs to it. Children
// go first so a failure never leaves records pointing at a missing pet.
func (s *Service) DeletePet(ctx context.Context, id int64) error {
	if _, err := s.repo.Pets().Get(ctx, id); err != nil {
		return err
	}

	removed := 0
	reminders, err := s.repo.Reminders().List(ctx)
	if err != nil {
		return err
	}
	for _, r := range byPet(reminders, id, reminderPet) {
		if err := deleteIgnoringMissing(ctx, s.repo.Reminders().Delete, r.ID); err != nil {
			return err
		}
		removed++
	}

	appointments, err := s.repo.Appointments().List(ctx)
	if err != nil {
		return err
	}
	for _, a := range byPet(appointments, id, appointmentPet) {
		if err := deleteIgnoringMissing(ctx, s.repo.Appointments().Delete, a.ID); err != nil {
			return err
		}
		removed++
	}

	feedings, err := s.repo.Feedings().List(ctx)
	if err != nil {
		return err
	}
	for _, f := range byPet(feedings, id, feedingPet) {
		if err := deleteIgnoringMissing(ctx, s.repo.Feedings().Delete, f.ID); err != nil {
			return err
		}
		removed++
	}

	vaccinations, err := s.repo.Vaccinations().List(ctx)
	if err != nil {
		return err
	}
	for _, v := range byPet(vaccinations, id, vaccinationPet) {
		if err := deleteIgnoringMissing(ctx, s.repo.Vaccinations().Delete, v.ID); err != nil {
			return err
		}
		removed++
	}

	if err := s.repo.Pets().Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("pet deleted", zap.Int64("id", id), zap.Int("cascaded", removed))
	return nil
}

// deleteIgnoringMissing treats a record that vanished concurrently as deleted.
func deleteIgnoringMissing(ctx context.Context, del func(context.Context, int64) error, id int64) error {
	if err := del(ctx, id); err != nil && !errors.IsNotFound(err) {
		return err
	}
	return nil
}

func reminderPet(r *care.Reminder) int64       { return r.PetID }
func appointmentPet(a *care.Appointment) int64 { return a.PetID }
func feedingPet(f *care.FeedingSchedule) int64 { return f.PetID }
func vaccinationPet(v *care.Vaccination) int64 { return v.PetID }
