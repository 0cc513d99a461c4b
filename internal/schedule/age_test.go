package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/petcare-labs/petcare/internal/care"
)

func TestAgeText(t *testing.T) {
	tests := []struct {
		name  string
		birth string
		now   time.Time
		want  string
	}{
		{"months not years", "2023-06-01", time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), "6 months old"},
		{"one year and one day", "2023-01-01", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), "1 year old"},
		{"one year and one day across month end", "2022-12-31", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "1 year old"},
		{"plural years", "2019-03-10", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), "5 years old"},
		{"single month", "2024-02-10", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), "1 month old"},
		{"newborn", "2024-03-01", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), "Less than 1 month old"},
		{"born today", "2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), "Less than 1 month old"},
		{"unknown", "", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), "Unknown age"},
		{"garbage", "March 2020", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), "Unknown age"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AgeText(tt.birth, tt.now))
		})
	}
}

func TestAgeMonths_NeverNegative(t *testing.T) {
	birth := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, AgeMonths(birth, now))
}

func TestVaccinationStatus(t *testing.T) {
	tests := []struct {
		due  string
		want DueStatus
	}{
		{"", DueNone},
		{"2024-03-01", DueOverdue},
		{"2024-03-15", DueToday},
		{"2024-09-01", DueUpcoming},
	}
	for _, tt := range tests {
		v := &care.Vaccination{NextDueDate: tt.due}
		assert.Equal(t, tt.want, VaccinationStatus(v, refNow), "due %q", tt.due)
	}
}

func TestNextFeeding(t *testing.T) {
	schedules := []*care.FeedingSchedule{
		{ID: 1, Time: "07:00", Enabled: true},
		{ID: 2, Time: "18:00", Enabled: true},
		{ID: 3, Time: "15:00", Enabled: false},
	}
	assert.Equal(t, 2, ActiveFeedings(schedules))

	next, ok := NextFeeding(schedules, refNow)
	assert.True(t, ok)
	assert.Equal(t, int64(2), next.Schedule.ID)
	assert.Equal(t, at(15, 18, 0), next.At)

	late := at(15, 19, 0)
	next, ok = NextFeeding(schedules, late)
	assert.True(t, ok)
	assert.Equal(t, int64(1), next.Schedule.ID)
	assert.Equal(t, at(16, 7, 0), next.At)

	_, ok = NextFeeding([]*care.FeedingSchedule{{ID: 1, Time: "07:00"}}, refNow)
	assert.False(t, ok)
}
