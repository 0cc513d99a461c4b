// Package service implements petcare's care operations on top of a
// storage.Repository: validated CRUD with partial updates, reminder
// completion and snoozing, feeding toggles, daily tracking, and the
// read-only views (dashboard, pet detail, reminder lists, calendar).
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/petcare-labs/petcare/internal/errors"
	"github.com/petcare-labs/petcare/internal/storage"
)

// DefaultSnooze is how long a reminder is postponed when no duration is given.
const DefaultSnooze = time.Hour

// DashboardAppointments is how many upcoming appointments the dashboard lists.
const DashboardAppointments = 3

// Service is the application layer used by the gateway.
type Service struct {
	repo   storage.Repository
	clock  func() time.Time
	loc    *time.Location
	snooze time.Duration
	logger *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the wall clock. Used by tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

// WithLocation sets the household timezone used for day boundaries.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithSnoozeDuration sets the default snooze duration.
func WithSnoozeDuration(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.snooze = d
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a service over repo.
func New(repo storage.Repository, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		clock:  time.Now,
		loc:    time.Local,
		snooze: DefaultSnooze,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the current time in the household timezone.
func (s *Service) Now() time.Time {
	return s.clock().In(s.loc)
}

// Location returns the household timezone.
func (s *Service) Location() *time.Location {
	return s.loc
}

// SnoozeDuration returns the default snooze duration.
func (s *Service) SnoozeDuration() time.Duration {
	return s.snooze
}

// CheckConnectivity reports whether the backing store is reachable.
func (s *Service) CheckConnectivity(ctx context.Context) error {
	return s.repo.CheckConnectivity(ctx)
}

// requirePet fails with a validation error if petID does not name an
// existing pet. kind is the record kind being written.
func (s *Service) requirePet(ctx context.Context, kind string, petID int64) error {
	if petID <= 0 {
		return errors.NewInvalidField(kind, "petId", "please select a pet")
	}
	_, err := s.repo.Pets().Get(ctx, petID)
	if errors.IsNotFound(err) {
		return errors.NewUnknownPet(kind, petID)
	}
	return err
}

// byPet keeps the records belonging to petID. petID 0 keeps everything.
func byPet[T any](items []*T, petID int64, petOf func(*T) int64) []*T {
	if petID == 0 {
		return items
	}
	result := make([]*T, 0, len(items))
	for _, item := range items {
		if petOf(item) == petID {
			result = append(result, item)
		}
	}
	return result
}
