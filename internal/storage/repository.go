// Package storage provides persistence for petcare records.
//
// A Repository exposes one Collection per record kind. Two implementations
// exist: MemoryRepository, seeded from fixtures and used for demos and tests,
// and SQLRepository, backed by PostgreSQL, SQLite or DuckDB.
package storage

import (
	"context"

	"github.com/petcare-labs/petcare/internal/care"
)

// Entity is the constraint satisfied by every stored record type. P is the
// pointer type of T; the methods are defined on the pointer.
type Entity[T any] interface {
	*T
	EntityID() int64
	SetEntityID(id int64)
	Validate() error
	Clone() *T
}

// Collection is the CRUD surface for one record kind.
// All implementations must be:
// - Thread-safe
// - Context-aware (respecting cancellation/timeout)
// - Isolated: callers never share memory with the store
type Collection[T any] interface {
	// Create validates item, assigns the next ID and stores it.
	// The returned record carries the assigned ID.
	Create(ctx context.Context, item *T) (*T, error)

	// Get returns the record with the given ID or a NotFound error.
	Get(ctx context.Context, id int64) (*T, error)

	// Update replaces the stored record that has item's ID.
	// Returns a NotFound error if it does not exist.
	Update(ctx context.Context, item *T) (*T, error)

	// Delete removes the record with the given ID.
	// Returns a NotFound error if it does not exist.
	Delete(ctx context.Context, id int64) error

	// List returns every record ordered by ID.
	// Returns an empty slice (not nil) if none exist.
	List(ctx context.Context) ([]*T, error)
}

// Repository groups the collections of all record kinds.
type Repository interface {
	Pets() Collection[care.Pet]
	Reminders() Collection[care.Reminder]
	Appointments() Collection[care.Appointment]
	Feedings() Collection[care.FeedingSchedule]
	Vaccinations() Collection[care.Vaccination]

	// CheckConnectivity verifies the backing store can serve requests.
	CheckConnectivity(ctx context.Context) error

	// Close releases the backing store.
	Close() error
}
