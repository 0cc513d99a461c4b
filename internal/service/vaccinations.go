package service

import (
	"cmp"
	"context"
	"slices"

	"github.com/petcare-labs/petcare/internal/care"
	"github.com/petcare-labs/petcare/pkg/models"
)

// ListVaccinations returns vaccination records, most recently given first,
// optionally for one pet.
func (s *Service) ListVaccinations(ctx context.Context, petID int64) ([]*care.Vaccination, error) {
	vaccinations, err := s.repo.Vaccinations().List(ctx)
	if err != nil {
		return nil, err
	}
	vaccinations = byPet(vaccinations, petID, vaccinationPet)
	slices.SortStableFunc(vaccinations, func(a, b *care.Vaccination) int {
		// YYYY-MM-DD sorts lexically.
		if c := cmp.Compare(b.DateGiven, a.DateGiven); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return vaccinations, nil
}

// GetVaccination returns one vaccination record.
func (s *Service) GetVaccination(ctx context.Context, id int64) (*care.Vaccination, error) {
	return s.repo.Vaccinations().Get(ctx, id)
}

// CreateVaccination records a vaccination for an existing pet.
func (s *Service) CreateVaccination(ctx context.Context, patch models.VaccinationPatch) (*care.Vaccination, error) {
	v := &care.Vaccination{}
	applyVaccinationPatch(v, patch)
	if err := s.requirePet(ctx, care.KindVaccination, v.PetID); err != nil {
		return nil, err
	}
	return s.repo.Vaccinations().Create(ctx, v)
}

// UpdateVaccination merges patch into the stored record.
func (s *Service) UpdateVaccination(ctx context.Context, id int64, patch models.VaccinationPatch) (*care.Vaccination, error) {
	v, err := s.repo.Vaccinations().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyVaccinationPatch(v, patch)
	if patch.PetID != nil {
		if err := s.requirePet(ctx, care.KindVaccination, v.PetID); err != nil {
			return nil, err
		}
	}
	return s.repo.Vaccinations().Update(ctx, v)
}

// DeleteVaccination removes a vaccination record.
func (s *Service) DeleteVaccination(ctx context.Context, id int64) error {
	return s.repo.Vaccinations().Delete(ctx, id)
}
