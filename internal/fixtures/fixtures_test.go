package fixtures

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/petcare-labs/petcare/internal/care"
)

var loadTime = time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestResolveTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"now", loadTime},
		{"+2h", loadTime.Add(2 * time.Hour)},
		{"-30m", loadTime.Add(-30 * time.Minute)},
		{"-1d", time.Date(2024, 3, 14, 14, 30, 0, 0, time.UTC)},
		{"+1w@08:15", time.Date(2024, 3, 22, 8, 15, 0, 0, time.UTC)},
		{"today@18:00", time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC)},
		{"-2y", time.Date(2022, 3, 15, 14, 30, 0, 0, time.UTC)},
		{"2024-01-02T03:04:05Z", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ResolveTime(tt.in, loadTime)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}

	for _, bad := range []string{"", "soon", "+3q", "+xd", "today@25:00"} {
		_, err := ResolveTime(bad, loadTime)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestResolveDate(t *testing.T) {
	got, err := ResolveDate("-3y", loadTime)
	require.NoError(t, err)
	assert.Equal(t, "2021-03-15", got)

	got, err = ResolveDate("2020-02-29", loadTime)
	require.NoError(t, err)
	assert.Equal(t, "2020-02-29", got)

	got, err = ResolveDate("", loadTime)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDefaultSeed(t *testing.T) {
	ds, err := Default(loadTime)
	require.NoError(t, err)

	assert.Len(t, ds.Pets, 4)
	assert.NotEmpty(t, ds.Reminders)
	assert.NotEmpty(t, ds.Appointments)
	assert.NotEmpty(t, ds.Feedings)
	assert.NotEmpty(t, ds.Vaccinations)

	var snoozed, completed int
	for _, r := range ds.Reminders {
		if r.SnoozedUntil != nil {
			snoozed++
		}
		if r.Completed {
			completed++
		}
	}
	assert.Equal(t, 1, snoozed)
	assert.Equal(t, 1, completed)
}

func TestParse_AssignsMissingIDs(t *testing.T) {
	doc := `
pets:
  - id: 4
    name: Rex
    type: dog
  - name: Tom
    type: cat
reminders:
  - petId: 5
    type: feeding
    title: Dinner
    dateTime: today@18:00
`
	ds, err := Parse(strings.NewReader(doc), loadTime)
	require.NoError(t, err)
	require.Len(t, ds.Pets, 2)
	assert.Equal(t, int64(5), ds.Pets[1].ID)
	assert.Equal(t, care.DefaultLevel, ds.Pets[1].Appetite)
	assert.Equal(t, int64(1), ds.Reminders[0].ID)
}

func TestParse_Rejects(t *testing.T) {
	tests := map[string]string{
		"unknown pet reference": `
pets:
  - {id: 1, name: Rex, type: dog}
feedings:
  - {petId: 2, time: "08:00"}
`,
		"invalid pet": `
pets:
  - {id: 1, name: "", type: dog}
`,
		"unknown field": `
pets:
  - {id: 1, name: Rex, type: dog, colour: brown}
`,
		"bad relative time": `
pets:
  - {id: 1, name: Rex, type: dog}
reminders:
  - {petId: 1, type: feeding, title: Dinner, dateTime: whenever}
`,
		"duplicate pet": `
pets:
  - {id: 1, name: Rex, type: dog}
  - {id: 1, name: Tom, type: cat}
`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(doc), loadTime)
			assert.Error(t, err)
		})
	}
}

func TestParse_RejectsBadIDs(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "duplicate reminder",
			doc: `
pets:
  - {id: 1, name: Rex, type: dog}
reminders:
  - {id: 7, petId: 1, type: feeding, title: Breakfast, dateTime: today@08:00}
  - {id: 7, petId: 1, type: feeding, title: Dinner, dateTime: today@18:00}
`,
			want: "duplicate reminder id 7",
		},
		{
			name: "negative pet id",
			doc: `
pets:
  - {id: -4, name: Ghost, type: cat}
`,
			want: "id must be positive",
		},
		{
			name: "duplicate vaccination",
			doc: `
pets:
  - {id: 1, name: Rex, type: dog}
vaccinations:
  - {id: 2, petId: 1, name: Rabies, dateGiven: "2024-01-01"}
  - {id: 2, petId: 1, name: DHPP, dateGiven: "2024-01-01"}
`,
			want: "duplicate vaccination id 2",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc), loadTime)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParse_EmptyDocument(t *testing.T) {
	ds, err := Parse(strings.NewReader(""), loadTime)
	require.NoError(t, err)
	assert.Zero(t, ds.Size())
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pets:\n  - {id: 1, name: Rex, type: dog}\n"), 0o644))

	reloaded := make(chan *Dataset, 4)
	w, err := NewWatcher(path, func() time.Time { return loadTime }, func(ds *Dataset) {
		reloaded <- ds
	}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	doc := "pets:\n  - {id: 1, name: Rex, type: dog}\n  - {id: 2, name: Tom, type: cat}\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	select {
	case ds := <-reloaded:
		assert.Len(t, ds.Pets, 2)
	case <-time.After(5 * time.Second):
		t.Fatal("seed file change was not picked up")
	}
}
