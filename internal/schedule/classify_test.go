package schedule

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petcare-labs/petcare/internal/care"
)

var testLoc = time.FixedZone("household", -5*60*60)

// refNow is mid-afternoon on 2024-03-15 in the household timezone.
var refNow = time.Date(2024, 3, 15, 14, 30, 0, 0, testLoc)

func at(day, hour, minute int) time.Time {
	return time.Date(2024, 3, day, hour, minute, 0, 0, testLoc)
}

func reminderIDs(rs []*care.Reminder) []int64 {
	ids := make([]int64, 0, len(rs))
	for _, r := range rs {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestClassify_TodayAnyTimeOfDay(t *testing.T) {
	times := []time.Time{
		at(15, 0, 0),
		at(15, 0, 1),
		at(15, 9, 0),
		refNow,
		at(15, 23, 59),
		time.Date(2024, 3, 15, 23, 59, 59, 999999999, testLoc),
	}
	for _, ts := range times {
		assert.Equal(t, BucketToday, Classify(ts, refNow), "time %s", ts)
	}
}

func TestClassify_OverdueBeforeStartOfDay(t *testing.T) {
	assert.Equal(t, BucketOverdue, Classify(time.Date(2024, 3, 14, 23, 59, 59, 999999999, testLoc), refNow))
	assert.Equal(t, BucketOverdue, Classify(at(1, 8, 0), refNow))
	assert.Equal(t, BucketOverdue, Classify(time.Date(2023, 12, 31, 12, 0, 0, 0, testLoc), refNow))
}

func TestClassify_UpcomingAfterEndOfDay(t *testing.T) {
	assert.Equal(t, BucketUpcoming, Classify(at(16, 0, 0), refNow))
	assert.Equal(t, BucketUpcoming, Classify(at(30, 12, 0), refNow))
}

func TestClassify_UsesReferenceLocation(t *testing.T) {
	// 02:00 UTC on the 16th is 21:00 on the 15th in the household zone.
	ts := time.Date(2024, 3, 16, 2, 0, 0, 0, time.UTC)
	assert.Equal(t, BucketToday, Classify(ts, refNow))

	// 04:00 UTC on the 15th is 23:00 on the 14th in the household zone.
	ts = time.Date(2024, 3, 15, 4, 0, 0, 0, time.UTC)
	assert.Equal(t, BucketOverdue, Classify(ts, refNow))
}

func TestDueNow_ExcludesFutureSnooze(t *testing.T) {
	later := refNow.Add(time.Hour)
	earlier := refNow.Add(-time.Hour)
	reminders := []*care.Reminder{
		{ID: 1, DateTime: at(15, 8, 0)},
		{ID: 2, DateTime: at(10, 8, 0), SnoozedUntil: &later},
		{ID: 3, DateTime: at(15, 9, 0), SnoozedUntil: &later},
		{ID: 4, DateTime: at(12, 8, 0), SnoozedUntil: &earlier},
		{ID: 5, DateTime: at(14, 8, 0), Completed: true},
		{ID: 6, DateTime: at(17, 8, 0)},
	}

	got := reminderIDs(DueNow(reminders, refNow))
	if diff := cmp.Diff([]int64{4, 1}, got); diff != "" {
		t.Errorf("DueNow mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterReminders(t *testing.T) {
	reminders := []*care.Reminder{
		{ID: 1, DateTime: at(16, 9, 0)},
		{ID: 2, DateTime: at(15, 18, 0)},
		{ID: 3, DateTime: at(13, 7, 0)},
		{ID: 4, DateTime: at(15, 6, 0)},
		{ID: 5, DateTime: at(15, 7, 0), Completed: true},
		{ID: 6, DateTime: at(20, 9, 0)},
	}

	tests := []struct {
		filter Filter
		want   []int64
	}{
		{FilterAll, []int64{3, 4, 2, 1, 6}},
		{FilterToday, []int64{4, 2}},
		{FilterOverdue, []int64{3}},
		{FilterUpcoming, []int64{1, 6}},
	}
	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			got := reminderIDs(FilterReminders(reminders, tt.filter, refNow))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("FilterReminders(%s) mismatch (-want +got):\n%s", tt.filter, diff)
			}
		})
	}

	counts := CountReminders(reminders, refNow)
	assert.Equal(t, Counts{All: 5, Today: 2, Overdue: 1, Upcoming: 2}, counts)
	assert.Equal(t, 1, OverdueCount(reminders, refNow))
}

func TestCompletingRemovesFromActiveSet(t *testing.T) {
	r := &care.Reminder{ID: 1, DateTime: at(15, 8, 0)}
	reminders := []*care.Reminder{r, {ID: 2, DateTime: at(15, 9, 0)}}
	require.Len(t, Active(reminders), 2)

	r.Completed = true

	assert.Equal(t, []int64{2}, reminderIDs(Active(reminders)))
	assert.Equal(t, []int64{2}, reminderIDs(DueNow(reminders, refNow)))
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("")
	require.NoError(t, err)
	assert.Equal(t, FilterAll, f)

	f, err = ParseFilter("Overdue")
	require.NoError(t, err)
	assert.Equal(t, FilterOverdue, f)

	_, err = ParseFilter("someday")
	assert.Error(t, err)
}
