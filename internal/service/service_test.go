package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/petcare-labs/petcare/internal/care"
	"github.com/petcare-labs/petcare/internal/errors"
	"github.com/petcare-labs/petcare/internal/fixtures"
	"github.com/petcare-labs/petcare/internal/schedule"
	"github.com/petcare-labs/petcare/internal/storage"
	"github.com/petcare-labs/petcare/pkg/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var household = time.FixedZone("household", 2*60*60)

// fixedNow is 14:30 on 2024-03-15 in the household timezone.
var fixedNow = time.Date(2024, 3, 15, 14, 30, 0, 0, household)

func newTestService(t *testing.T) (*Service, *storage.MemoryRepository) {
	t.Helper()
	repo := storage.NewMemoryRepository()
	svc := New(repo,
		WithClock(func() time.Time { return fixedNow }),
		WithLocation(household),
	)
	return svc, repo
}

func newSeededService(t *testing.T) *Service {
	t.Helper()
	ds, err := fixtures.Default(fixedNow)
	require.NoError(t, err)
	repo := storage.NewMemoryRepository(storage.WithDataset(ds))
	return New(repo, WithClock(func() time.Time { return fixedNow }), WithLocation(household))
}

func mustCreatePet(t *testing.T, svc *Service, name, petType string) *care.Pet {
	t.Helper()
	pet, err := svc.CreatePet(context.Background(), models.PetPatch{Name: models.String(name), Type: models.String(petType)})
	require.NoError(t, err)
	return pet
}

func TestCreatePet_DefaultsAndValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	pet := mustCreatePet(t, svc, " Max ", "Dog")
	assert.Equal(t, "Max", pet.Name)
	assert.Equal(t, care.PetDog, pet.Type)
	assert.Equal(t, care.DefaultLevel, pet.Appetite)
	assert.Equal(t, care.DefaultLevel, pet.Energy)

	_, err := svc.CreatePet(ctx, models.PetPatch{Type: models.String("cat")})
	assert.True(t, errors.IsValidation(err))

	_, err = svc.CreatePet(ctx, models.PetPatch{Name: models.String("Luna")})
	assert.True(t, errors.IsValidation(err))
}

func TestUpdatePet_MergesPatch(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	pet := mustCreatePet(t, svc, "Max", "dog")

	updated, err := svc.UpdatePet(ctx, pet.ID, models.PetPatch{Breed: models.String("Beagle")})
	require.NoError(t, err)
	assert.Equal(t, "Max", updated.Name)
	assert.Equal(t, "Beagle", updated.Breed)

	_, err = svc.UpdatePet(ctx, 99, models.PetPatch{Breed: models.String("Beagle")})
	assert.True(t, errors.IsNotFound(err))
}

func TestUpdateTracking(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	pet := mustCreatePet(t, svc, "Max", "dog")

	updated, err := svc.UpdateTracking(ctx, pet.ID, models.Int(9), nil)
	require.NoError(t, err)
	assert.Equal(t, 9, updated.Appetite)
	assert.Equal(t, care.DefaultLevel, updated.Energy)

	_, err = svc.UpdateTracking(ctx, pet.ID, nil, models.Int(11))
	assert.True(t, errors.IsValidation(err))

	_, err = svc.UpdateTracking(ctx, pet.ID, nil, nil)
	assert.True(t, errors.IsValidation(err))
}

func TestCreateReminder_RequiresExistingPet(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateReminder(ctx, models.ReminderPatch{
		PetID:    models.Int64(7),
		Type:     models.String("feeding"),
		Title:    models.String("Dinner"),
		DateTime: models.Time(fixedNow),
	})
	var invalid *errors.ErrInvalidField
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "petId", invalid.Field)
}

func TestCompleteReminder_RemovesFromDueList(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	pet := mustCreatePet(t, svc, "Max", "dog")

	r, err := svc.CreateReminder(ctx, models.ReminderPatch{
		PetID:    models.Int64(pet.ID),
		Type:     models.String("medication"),
		Title:    models.String("Pill"),
		DateTime: models.Time(fixedNow.Add(-time.Hour)),
	})
	require.NoError(t, err)
	assert.False(t, r.Completed)
	assert.Nil(t, r.SnoozedUntil)

	d, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	require.Len(t, d.TodayReminders, 1)

	done, err := svc.CompleteReminder(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, done.Completed)

	d, err = svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Empty(t, d.TodayReminders)

	list, err := svc.Reminders(ctx, schedule.FilterAll, 0)
	require.NoError(t, err)
	assert.Empty(t, list.Reminders)
	assert.Zero(t, list.Counts.All)
}

func TestSnoozeReminder(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	pet := mustCreatePet(t, svc, "Max", "dog")
	r, err := svc.CreateReminder(ctx, models.ReminderPatch{
		PetID:    models.Int64(pet.ID),
		Type:     models.String("feeding"),
		Title:    models.String("Lunch"),
		DateTime: models.Time(fixedNow),
	})
	require.NoError(t, err)

	snoozed, err := svc.SnoozeReminder(ctx, r.ID, 0)
	require.NoError(t, err)
	require.NotNil(t, snoozed.SnoozedUntil)
	assert.True(t, fixedNow.Add(DefaultSnooze).Equal(*snoozed.SnoozedUntil))
	assert.False(t, snoozed.Completed)

	d, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Empty(t, d.TodayReminders, "snoozed reminders are hidden until the snooze ends")

	snoozed, err = svc.SnoozeReminder(ctx, r.ID, 15*time.Minute)
	require.NoError(t, err)
	assert.True(t, fixedNow.Add(15*time.Minute).Equal(*snoozed.SnoozedUntil))

	_, err = svc.SnoozeReminder(ctx, 404, 0)
	assert.True(t, errors.IsNotFound(err))
}

func TestSnoozeReminder_KeepsCompleted(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	pet := mustCreatePet(t, svc, "Max", "dog")
	r, err := svc.CreateReminder(ctx, models.ReminderPatch{
		PetID:    models.Int64(pet.ID),
		Type:     models.String("medication"),
		Title:    models.String("Dewormer"),
		DateTime: models.Time(fixedNow.Add(-time.Hour)),
	})
	require.NoError(t, err)
	_, err = svc.CompleteReminder(ctx, r.ID)
	require.NoError(t, err)

	snoozed, err := svc.SnoozeReminder(ctx, r.ID, 30*time.Minute)
	require.NoError(t, err)
	assert.True(t, snoozed.Completed)
	require.NotNil(t, snoozed.SnoozedUntil)
	assert.True(t, fixedNow.Add(30*time.Minute).Equal(*snoozed.SnoozedUntil))

	stored, err := svc.GetReminder(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, stored.Completed)
	assert.Empty(t, schedule.Active([]*care.Reminder{stored}))
}

func TestToggleFeeding(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	pet := mustCreatePet(t, svc, "Luna", "cat")

	f, err := svc.CreateFeeding(ctx, models.FeedingPatch{PetID: models.Int64(pet.ID), Time: models.String("08:00")})
	require.NoError(t, err)
	assert.True(t, f.Enabled)

	f, err = svc.ToggleFeeding(ctx, f.ID)
	require.NoError(t, err)
	assert.False(t, f.Enabled)

	f, err = svc.ToggleFeeding(ctx, f.ID)
	require.NoError(t, err)
	assert.True(t, f.Enabled)

	_, err = svc.CreateFeeding(ctx, models.FeedingPatch{PetID: models.Int64(pet.ID), Time: models.String("noon")})
	assert.True(t, errors.IsValidation(err))
}

func TestCompleteAppointment(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	pet := mustCreatePet(t, svc, "Max", "dog")

	_, err := svc.CreateAppointment(ctx, models.AppointmentPatch{PetID: models.Int64(pet.ID), Type: models.String("checkup")})
	assert.True(t, errors.IsValidation(err), "dateTime and reason are required")

	a, err := svc.CreateAppointment(ctx, models.AppointmentPatch{
		PetID:    models.Int64(pet.ID),
		Type:     models.String("checkup"),
		DateTime: models.Time(fixedNow.Add(48 * time.Hour)),
		Reason:   models.String("Annual exam"),
	})
	require.NoError(t, err)

	done, err := svc.CompleteAppointment(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, done.Completed)
	assert.Equal(t, "Annual exam", done.Reason)
}

func TestDeletePet_Cascades(t *testing.T) {
	svc := newSeededService(t)
	ctx := context.Background()

	require.NoError(t, svc.DeletePet(ctx, 1))

	_, err := svc.GetPet(ctx, 1)
	assert.True(t, errors.IsNotFound(err))

	for _, check := range []func() (int, error){
		func() (int, error) { rs, err := svc.ListReminders(ctx, 1); return len(rs), err },
		func() (int, error) { as, err := svc.ListAppointments(ctx, 1); return len(as), err },
		func() (int, error) { fs, err := svc.ListFeedings(ctx, 1); return len(fs), err },
		func() (int, error) { vs, err := svc.ListVaccinations(ctx, 1); return len(vs), err },
	} {
		n, err := check()
		require.NoError(t, err)
		assert.Zero(t, n)
	}

	others, err := svc.ListReminders(ctx, 2)
	require.NoError(t, err)
	assert.NotEmpty(t, others)

	assert.True(t, errors.IsNotFound(svc.DeletePet(ctx, 1)))
}

func TestDashboard_Seeded(t *testing.T) {
	svc := newSeededService(t)

	d, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, d.TotalPets)
	assert.Len(t, d.Pets, 4)
	assert.Equal(t, "3 years old", d.Pets[0].Age)
	assert.Equal(t, 5, d.ActiveFeedings)
	assert.LessOrEqual(t, len(d.UpcomingAppointments), DashboardAppointments)
	assert.Len(t, d.UpcomingAppointments, 3)

	// The seed has two overdue active reminders, one of them snoozed.
	assert.Equal(t, 2, d.OverdueReminders)
	for _, r := range d.TodayReminders {
		assert.False(t, r.Completed)
		assert.False(t, schedule.IsSnoozed(r, fixedNow))
		assert.NotEqual(t, schedule.BucketUpcoming, schedule.Classify(r.DateTime, fixedNow))
	}
	require.NotNil(t, d.NextFeeding)
	assert.Equal(t, "18:00", d.NextFeeding.Schedule.Time)
}

func TestPetDetail(t *testing.T) {
	svc := newSeededService(t)

	d, err := svc.PetDetail(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Max", d.Pet.Name)
	assert.Equal(t, "3 years old", d.Age)
	assert.Len(t, d.Feedings, 2)
	assert.Len(t, d.UpcomingAppointments, 1)
	assert.Len(t, d.CompletedAppointments, 1)
	require.Len(t, d.Appointments, 2)
	assert.True(t, d.Appointments[0].DateTime.After(d.Appointments[1].DateTime))

	statuses := map[string]schedule.DueStatus{}
	for _, v := range d.Vaccinations {
		statuses[v.Name] = v.Status
	}
	assert.Equal(t, schedule.DueUpcoming, statuses["Rabies"])

	_, err = svc.PetDetail(context.Background(), 99)
	assert.True(t, errors.IsNotFound(err))
}

func TestReminders_Filters(t *testing.T) {
	svc := newSeededService(t)
	ctx := context.Background()

	all, err := svc.Reminders(ctx, schedule.FilterAll, 0)
	require.NoError(t, err)
	assert.Equal(t, all.Counts.All, len(all.Reminders))
	assert.Equal(t, all.Counts.All, all.Counts.Today+all.Counts.Overdue+all.Counts.Upcoming)

	overdue, err := svc.Reminders(ctx, schedule.FilterOverdue, 0)
	require.NoError(t, err)
	assert.Len(t, overdue.Reminders, all.Counts.Overdue)
	for i := 1; i < len(overdue.Reminders); i++ {
		assert.False(t, overdue.Reminders[i].DateTime.Before(overdue.Reminders[i-1].DateTime))
	}
}

func TestCalendar(t *testing.T) {
	svc := newSeededService(t)

	days, err := svc.Calendar(context.Background(), fixedNow)
	require.NoError(t, err)
	assert.Len(t, days, 31)

	var today int
	for _, d := range days {
		if d.Today {
			today++
			assert.Equal(t, "2024-03-15", d.Date)
		}
	}
	assert.Equal(t, 1, today)
}

func TestService_StorageFailure(t *testing.T) {
	svc, repo := newTestService(t)
	repo.SetPersistenceFailure(true)

	_, err := svc.CreatePet(context.Background(), models.PetPatch{Name: models.String("Max"), Type: models.String("dog")})
	assert.Equal(t, errors.CodeStorage, errors.CodeOf(err))
}
