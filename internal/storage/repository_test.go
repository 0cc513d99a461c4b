package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	"github.com/petcare-labs/petcare/internal/care"
	"github.com/petcare-labs/petcare/internal/errors"
	"github.com/petcare-labs/petcare/internal/fixtures"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var seedTime = time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

// repositoryFactories builds one fresh repository per backend that can run
// without external services.
func repositoryFactories(t *testing.T) map[string]func() Repository {
	return map[string]func() Repository{
		"memory": func() Repository {
			return NewMemoryRepository()
		},
		"sqlite": func() Repository {
			return newSQLiteRepository(t)
		},
	}
}

func newSQLiteRepository(t *testing.T) *SQLRepository {
	t.Helper()
	repo, err := OpenSQL(SQLConfig{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	require.NoError(t, repo.Migrate(context.Background()))
	return repo
}

func TestRepository_CreateAssignsMaxPlusOne(t *testing.T) {
	for name, newRepo := range repositoryFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			pets := newRepo().Pets()

			max1, err := pets.Create(ctx, care.NewPet("Max", care.PetDog))
			require.NoError(t, err)
			luna, err := pets.Create(ctx, care.NewPet("Luna", care.PetCat))
			require.NoError(t, err)
			assert.Equal(t, int64(1), max1.ID)
			assert.Equal(t, int64(2), luna.ID)

			require.NoError(t, pets.Delete(ctx, luna.ID))
			again, err := pets.Create(ctx, care.NewPet("Charlie", care.PetBird))
			require.NoError(t, err)
			assert.Equal(t, int64(2), again.ID)
		})
	}
}

func TestRepository_ConcurrentCreatesGetDistinctIDs(t *testing.T) {
	for name, newRepo := range repositoryFactories(t) {
		t.Run(name, func(t *testing.T) {
			pets := newRepo().Pets()
			const n = 16
			ids := make([]int64, n)

			var g errgroup.Group
			for i := range n {
				g.Go(func() error {
					p, err := pets.Create(context.Background(), care.NewPet("Max", care.PetDog))
					if err != nil {
						return err
					}
					ids[i] = p.ID
					return nil
				})
			}
			require.NoError(t, g.Wait())

			seen := make(map[int64]bool, n)
			for _, id := range ids {
				assert.False(t, seen[id], "id %d handed out twice", id)
				seen[id] = true
			}
			assert.Len(t, seen, n)
		})
	}
}

func TestRepository_NotFound(t *testing.T) {
	for name, newRepo := range repositoryFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			reminders := newRepo().Reminders()

			_, err := reminders.Get(ctx, 42)
			assert.True(t, errors.IsNotFound(err))

			_, err = reminders.Update(ctx, &care.Reminder{ID: 42, PetID: 1, Type: care.ReminderFeeding, Title: "x", DateTime: seedTime})
			assert.True(t, errors.IsNotFound(err))

			err = reminders.Delete(ctx, 42)
			assert.True(t, errors.IsNotFound(err))

			var nf *errors.ErrNotFound
			require.ErrorAs(t, err, &nf)
			assert.Equal(t, care.KindReminder, nf.Kind)
			assert.Equal(t, "reminder not found: 42", nf.Message)
		})
	}
}

func TestRepository_ValidatesOnWrite(t *testing.T) {
	for name, newRepo := range repositoryFactories(t) {
		t.Run(name, func(t *testing.T) {
			_, err := newRepo().Appointments().Create(context.Background(), &care.Appointment{PetID: 1, Type: care.AppointmentCheckup})
			assert.True(t, errors.IsValidation(err))
		})
	}
}

func TestRepository_RoundTripsReminder(t *testing.T) {
	for name, newRepo := range repositoryFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := newRepo()
			_, err := repo.Pets().Create(ctx, care.NewPet("Max", care.PetDog))
			require.NoError(t, err)

			until := seedTime.Add(time.Hour)
			created, err := repo.Reminders().Create(ctx, &care.Reminder{
				PetID:        1,
				Type:         care.ReminderMedication,
				Title:        "Heartworm pill",
				Description:  "With food",
				DateTime:     seedTime,
				SnoozedUntil: &until,
			})
			require.NoError(t, err)

			got, err := repo.Reminders().Get(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, "Heartworm pill", got.Title)
			assert.True(t, seedTime.Equal(got.DateTime))
			require.NotNil(t, got.SnoozedUntil)
			assert.True(t, until.Equal(*got.SnoozedUntil))

			got.Completed = true
			got.SnoozedUntil = nil
			_, err = repo.Reminders().Update(ctx, got)
			require.NoError(t, err)

			got, err = repo.Reminders().Get(ctx, created.ID)
			require.NoError(t, err)
			assert.True(t, got.Completed)
			assert.Nil(t, got.SnoozedUntil)
		})
	}
}

func TestRepository_ListOrderedByID(t *testing.T) {
	for name, newRepo := range repositoryFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := newRepo()

			empty, err := repo.Vaccinations().List(ctx)
			require.NoError(t, err)
			assert.NotNil(t, empty)
			assert.Empty(t, empty)

			ds, err := fixtures.Default(seedTime)
			require.NoError(t, err)
			n, err := Seed(ctx, repo, ds)
			require.NoError(t, err)
			assert.Equal(t, ds.Size(), n)

			feedings, err := repo.Feedings().List(ctx)
			require.NoError(t, err)
			require.Len(t, feedings, len(ds.Feedings))
			for i := 1; i < len(feedings); i++ {
				assert.Less(t, feedings[i-1].ID, feedings[i].ID)
			}

			seeded, err := SeedIfEmpty(ctx, repo, ds)
			require.NoError(t, err)
			assert.False(t, seeded)
		})
	}
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	input := care.NewPet("Max", care.PetDog)
	created, err := repo.Pets().Create(ctx, input)
	require.NoError(t, err)
	assert.Zero(t, input.ID, "input must not be mutated")

	created.Name = "Changed"
	got, err := repo.Pets().Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Max", got.Name)
}

func TestMemoryRepository_LatencyHonoursCancellation(t *testing.T) {
	repo := NewMemoryRepository(WithLatency(time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := repo.Pets().List(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Minute)
}

func TestMemoryRepository_SimulatedFailures(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	repo.SetPersistenceFailure(true)
	_, err := repo.Pets().Create(ctx, care.NewPet("Max", care.PetDog))
	assert.Equal(t, errors.CodeStorage, errors.CodeOf(err))

	repo.SetConnectivityFailure(true)
	assert.Error(t, repo.CheckConnectivity(ctx))
	assert.True(t, repo.ConnectivityCheckCalled())
}

func TestMemoryRepository_Load(t *testing.T) {
	ctx := context.Background()
	ds, err := fixtures.Default(seedTime)
	require.NoError(t, err)

	repo := NewMemoryRepository(WithDataset(ds))
	pets, err := repo.Pets().List(ctx)
	require.NoError(t, err)
	assert.Len(t, pets, len(ds.Pets))

	repo.Load(&fixtures.Dataset{})
	pets, err = repo.Pets().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, pets)
}

func TestMigrationRunner_Idempotent(t *testing.T) {
	repo := newSQLiteRepository(t)
	ctx := context.Background()

	runner := NewMigrationRunner(repo.DB(), repo.Dialect())
	require.NoError(t, runner.Run(ctx))

	applied, err := runner.Applied(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001"}, applied)
}

func TestDialectFor(t *testing.T) {
	d, err := DialectFor("PostgreSQL")
	require.NoError(t, err)
	assert.Equal(t, "$3", d.Placeholder(3))

	d, err = DialectFor("sqlite")
	require.NoError(t, err)
	assert.Equal(t, "?", d.Placeholder(3))
	assert.Equal(t, "?, ?", d.placeholders(1, 2))

	_, err = DialectFor("oracle")
	assert.Error(t, err)
}

func TestDialect_IDLock(t *testing.T) {
	assert.Equal(t, "SELECT pg_advisory_xact_lock(hashtext('petcare.pets'))", Postgres.idLock("pets"))
	assert.Empty(t, SQLite.idLock("pets"))
	assert.Empty(t, DuckDB.idLock("pets"))
}

func TestSplitStatements(t *testing.T) {
	stmts := splitStatements("-- header\nCREATE TABLE a (x INT);\n\nCREATE TABLE b (y INT);\n")
	assert.Equal(t, []string{"CREATE TABLE a (x INT)", "CREATE TABLE b (y INT)"}, stmts)
}
