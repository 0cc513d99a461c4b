package storage

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/petcare-labs/petcare/internal/care"
	"github.com/petcare-labs/petcare/internal/errors"
	"github.com/petcare-labs/petcare/internal/fixtures"
)

// MemoryRepository is an in-memory implementation of Repository.
// It is thread-safe, respects context cancellation and never hands out
// pointers to its internal records.
type MemoryRepository struct {
	mu      sync.RWMutex
	latency time.Duration

	pets         *memCollection[care.Pet, *care.Pet]
	reminders    *memCollection[care.Reminder, *care.Reminder]
	appointments *memCollection[care.Appointment, *care.Appointment]
	feedings     *memCollection[care.FeedingSchedule, *care.FeedingSchedule]
	vaccinations *memCollection[care.Vaccination, *care.Vaccination]

	// Test helper fields for simulating failures
	connectivityFailure     bool
	persistenceFailure      bool
	connectivityCheckCalled bool
}

// MemoryOption configures a MemoryRepository.
type MemoryOption func(*MemoryRepository)

// WithLatency delays every collection operation by d, like a slow network
// backend would. The wait is abandoned when the context is cancelled.
func WithLatency(d time.Duration) MemoryOption {
	return func(r *MemoryRepository) {
		r.latency = d
	}
}

// WithDataset preloads the repository.
func WithDataset(ds *fixtures.Dataset) MemoryOption {
	return func(r *MemoryRepository) {
		r.load(ds)
	}
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository(opts ...MemoryOption) *MemoryRepository {
	r := &MemoryRepository{}
	r.pets = newMemCollection[care.Pet](r, care.KindPet)
	r.reminders = newMemCollection[care.Reminder](r, care.KindReminder)
	r.appointments = newMemCollection[care.Appointment](r, care.KindAppointment)
	r.feedings = newMemCollection[care.FeedingSchedule](r, care.KindFeeding)
	r.vaccinations = newMemCollection[care.Vaccination](r, care.KindVaccination)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *MemoryRepository) Pets() Collection[care.Pet]                 { return r.pets }
func (r *MemoryRepository) Reminders() Collection[care.Reminder]       { return r.reminders }
func (r *MemoryRepository) Appointments() Collection[care.Appointment] { return r.appointments }
func (r *MemoryRepository) Feedings() Collection[care.FeedingSchedule] { return r.feedings }
func (r *MemoryRepository) Vaccinations() Collection[care.Vaccination] { return r.vaccinations }

// Load replaces the entire contents of the repository with ds.
// Used when a watched seed file changes.
func (r *MemoryRepository) Load(ds *fixtures.Dataset) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.load(ds)
}

func (r *MemoryRepository) load(ds *fixtures.Dataset) {
	r.pets.replace(ds.Pets)
	r.reminders.replace(ds.Reminders)
	r.appointments.replace(ds.Appointments)
	r.feedings.replace(ds.Feedings)
	r.vaccinations.replace(ds.Vaccinations)
}

// CheckConnectivity reports the simulated connectivity state.
func (r *MemoryRepository) CheckConnectivity(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.connectivityCheckCalled = true

	if r.connectivityFailure {
		return errors.NewStorageUnavailable("memory store connectivity failure (simulated)")
	}
	return nil
}

// Close is a no-op for the in-memory store.
func (r *MemoryRepository) Close() error {
	return nil
}

// SetConnectivityFailure configures the store to simulate connectivity failures.
func (r *MemoryRepository) SetConnectivityFailure(fail bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connectivityFailure = fail
}

// SetPersistenceFailure configures the store to reject every write.
func (r *MemoryRepository) SetPersistenceFailure(fail bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.persistenceFailure = fail
}

// ConnectivityCheckCalled returns whether CheckConnectivity was called.
func (r *MemoryRepository) ConnectivityCheckCalled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.connectivityCheckCalled
}

// wait sleeps for the configured latency or until ctx is done.
func (r *MemoryRepository) wait(ctx context.Context) error {
	if r.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(r.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// memCollection stores one record kind. All state is guarded by the
// parent repository's mutex.
type memCollection[T any, P Entity[T]] struct {
	repo  *MemoryRepository
	kind  string
	items map[int64]*T
}

func newMemCollection[T any, P Entity[T]](repo *MemoryRepository, kind string) *memCollection[T, P] {
	return &memCollection[T, P]{
		repo:  repo,
		kind:  kind,
		items: make(map[int64]*T),
	}
}

func (c *memCollection[T, P]) replace(items []*T) {
	c.items = make(map[int64]*T, len(items))
	for _, item := range items {
		c.items[P(item).EntityID()] = P(item).Clone()
	}
}

// Create stores a copy of item under max(existing IDs)+1.
func (c *memCollection[T, P]) Create(ctx context.Context, item *T) (*T, error) {
	if err := c.repo.wait(ctx); err != nil {
		return nil, err
	}
	if err := P(item).Validate(); err != nil {
		return nil, err
	}

	c.repo.mu.Lock()
	defer c.repo.mu.Unlock()

	if c.repo.persistenceFailure {
		return nil, errors.NewStorageUnavailable("persistence failure (simulated)")
	}

	var maxID int64
	for id := range c.items {
		maxID = max(maxID, id)
	}

	stored := P(item).Clone()
	P(stored).SetEntityID(maxID + 1)
	c.items[maxID+1] = stored
	return P(stored).Clone(), nil
}

// Get returns a copy of the record with the given ID.
func (c *memCollection[T, P]) Get(ctx context.Context, id int64) (*T, error) {
	if err := c.repo.wait(ctx); err != nil {
		return nil, err
	}

	c.repo.mu.RLock()
	defer c.repo.mu.RUnlock()

	item, ok := c.items[id]
	if !ok {
		return nil, errors.NewNotFound(c.kind, id)
	}
	return P(item).Clone(), nil
}

// Update replaces the record carrying item's ID.
func (c *memCollection[T, P]) Update(ctx context.Context, item *T) (*T, error) {
	if err := c.repo.wait(ctx); err != nil {
		return nil, err
	}
	if err := P(item).Validate(); err != nil {
		return nil, err
	}

	c.repo.mu.Lock()
	defer c.repo.mu.Unlock()

	if c.repo.persistenceFailure {
		return nil, errors.NewStorageUnavailable("persistence failure (simulated)")
	}

	id := P(item).EntityID()
	if _, ok := c.items[id]; !ok {
		return nil, errors.NewNotFound(c.kind, id)
	}
	stored := P(item).Clone()
	c.items[id] = stored
	return P(stored).Clone(), nil
}

// Delete removes the record with the given ID.
func (c *memCollection[T, P]) Delete(ctx context.Context, id int64) error {
	if err := c.repo.wait(ctx); err != nil {
		return err
	}

	c.repo.mu.Lock()
	defer c.repo.mu.Unlock()

	if c.repo.persistenceFailure {
		return errors.NewStorageUnavailable("persistence failure (simulated)")
	}
	if _, ok := c.items[id]; !ok {
		return errors.NewNotFound(c.kind, id)
	}
	delete(c.items, id)
	return nil
}

// List returns copies of all records ordered by ID.
func (c *memCollection[T, P]) List(ctx context.Context) ([]*T, error) {
	if err := c.repo.wait(ctx); err != nil {
		return nil, err
	}

	c.repo.mu.RLock()
	defer c.repo.mu.RUnlock()

	ids := make([]int64, 0, len(c.items))
	for id := range c.items {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	result := make([]*T, 0, len(ids))
	for _, id := range ids {
		result = append(result, P(c.items[id]).Clone())
	}
	return result, nil
}

// Verify MemoryRepository implements Repository interface.
var _ Repository = (*MemoryRepository)(nil)
