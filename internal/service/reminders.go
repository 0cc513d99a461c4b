package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/petcare-labs/petcare/internal/care"
	"github.com/petcare-labs/petcare/internal/schedule"
	"github.com/petcare-labs/petcare/pkg/models"
)

// ReminderList is a filtered reminder view with per-filter counts.
type ReminderList struct {
	Filter    schedule.Filter  `json:"filter"`
	Reminders []*care.Reminder `json:"reminders"`
	Counts    schedule.Counts  `json:"counts"`
}

// ListReminders returns reminders sorted by date, optionally for one pet.
func (s *Service) ListReminders(ctx context.Context, petID int64) ([]*care.Reminder, error) {
	reminders, err := s.repo.Reminders().List(ctx)
	if err != nil {
		return nil, err
	}
	reminders = byPet(reminders, petID, reminderPet)
	schedule.SortReminders(reminders)
	return reminders, nil
}

// Reminders returns the active reminders matching filter, with counts for
// every filter so a view can label its tabs.
func (s *Service) Reminders(ctx context.Context, filter schedule.Filter, petID int64) (*ReminderList, error) {
	reminders, err := s.ListReminders(ctx, petID)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	return &ReminderList{
		Filter:    filter,
		Reminders: schedule.FilterReminders(reminders, filter, now),
		Counts:    schedule.CountReminders(reminders, now),
	}, nil
}

// GetReminder returns one reminder.
func (s *Service) GetReminder(ctx context.Context, id int64) (*care.Reminder, error) {
	return s.repo.Reminders().Get(ctx, id)
}

// CreateReminder creates an incomplete, unsnoozed reminder for an existing pet.
func (s *Service) CreateReminder(ctx context.Context, patch models.ReminderPatch) (*care.Reminder, error) {
	r := &care.Reminder{}
	applyReminderPatch(r, patch)
	if err := s.requirePet(ctx, care.KindReminder, r.PetID); err != nil {
		return nil, err
	}
	return s.repo.Reminders().Create(ctx, r)
}

// UpdateReminder merges patch into the stored reminder.
func (s *Service) UpdateReminder(ctx context.Context, id int64, patch models.ReminderPatch) (*care.Reminder, error) {
	r, err := s.repo.Reminders().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyReminderPatch(r, patch)
	if patch.PetID != nil {
		if err := s.requirePet(ctx, care.KindReminder, r.PetID); err != nil {
			return nil, err
		}
	}
	return s.repo.Reminders().Update(ctx, r)
}

// DeleteReminder removes a reminder.
func (s *Service) DeleteReminder(ctx context.Context, id int64) error {
	return s.repo.Reminders().Delete(ctx, id)
}

// CompleteReminder marks a reminder done. Completed reminders drop out of
// every active view.
func (s *Service) CompleteReminder(ctx context.Context, id int64) (*care.Reminder, error) {
	r, err := s.repo.Reminders().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	r.Completed = true
	return s.repo.Reminders().Update(ctx, r)
}

// SnoozeReminder hides a reminder from the due list until now+d. A
// non-positive d uses the configured default.
func (s *Service) SnoozeReminder(ctx context.Context, id int64, d time.Duration) (*care.Reminder, error) {
	if d <= 0 {
		d = s.snooze
	}
	r, err := s.repo.Reminders().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	until := s.Now().Add(d)
	r.SnoozedUntil = &until

	updated, err := s.repo.Reminders().Update(ctx, r)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("reminder snoozed", zap.Int64("id", id), zap.Time("until", until))
	return updated, nil
}
