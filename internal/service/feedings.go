package service

import (
	"cmp"
	"context"
	"slices"

	"github.com/petcare-labs/petcare/internal/care"
	"github.com/petcare-labs/petcare/pkg/models"
)

// ListFeedings returns feeding schedules ordered by time of day, optionally
// for one pet.
func (s *Service) ListFeedings(ctx context.Context, petID int64) ([]*care.FeedingSchedule, error) {
	feedings, err := s.repo.Feedings().List(ctx)
	if err != nil {
		return nil, err
	}
	feedings = byPet(feedings, petID, feedingPet)
	slices.SortStableFunc(feedings, func(a, b *care.FeedingSchedule) int {
		if c := cmp.Compare(a.Time, b.Time); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return feedings, nil
}

// GetFeeding returns one feeding schedule.
func (s *Service) GetFeeding(ctx context.Context, id int64) (*care.FeedingSchedule, error) {
	return s.repo.Feedings().Get(ctx, id)
}

// CreateFeeding adds a feeding schedule. New schedules are enabled unless
// the patch says otherwise.
func (s *Service) CreateFeeding(ctx context.Context, patch models.FeedingPatch) (*care.FeedingSchedule, error) {
	f := &care.FeedingSchedule{Enabled: true}
	applyFeedingPatch(f, patch)
	if err := s.requirePet(ctx, care.KindFeeding, f.PetID); err != nil {
		return nil, err
	}
	return s.repo.Feedings().Create(ctx, f)
}

// UpdateFeeding merges patch into the stored schedule.
func (s *Service) UpdateFeeding(ctx context.Context, id int64, patch models.FeedingPatch) (*care.FeedingSchedule, error) {
	f, err := s.repo.Feedings().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyFeedingPatch(f, patch)
	if patch.PetID != nil {
		if err := s.requirePet(ctx, care.KindFeeding, f.PetID); err != nil {
			return nil, err
		}
	}
	return s.repo.Feedings().Update(ctx, f)
}

// DeleteFeeding removes a feeding schedule.
func (s *Service) DeleteFeeding(ctx context.Context, id int64) error {
	return s.repo.Feedings().Delete(ctx, id)
}

// ToggleFeeding flips a schedule between enabled and disabled.
func (s *Service) ToggleFeeding(ctx context.Context, id int64) (*care.FeedingSchedule, error) {
	f, err := s.repo.Feedings().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	f.Enabled = !f.Enabled
	return s.repo.Feedings().Update(ctx, f)
}
