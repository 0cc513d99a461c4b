package care

import (
	"github.com/petcare-labs/petcare/internal/errors"
)

// FeedingSchedule is a recurring daily feeding time.
type FeedingSchedule struct {
	ID    int64 `json:"id" yaml:"id"`
	PetID int64 `json:"petId" yaml:"petId"`

	// Time is the daily time of day in HH:MM.
	Time     string `json:"time" yaml:"time"`
	FoodType string `json:"foodType,omitempty" yaml:"foodType,omitempty"`
	Amount   string `json:"amount,omitempty" yaml:"amount,omitempty"`
	Notes    string `json:"notes,omitempty" yaml:"notes,omitempty"`
	Enabled  bool   `json:"enabled" yaml:"enabled"`
}

func (f *FeedingSchedule) EntityID() int64      { return f.ID }
func (f *FeedingSchedule) SetEntityID(id int64) { f.ID = id }

// Clone returns a copy of the schedule.
func (f *FeedingSchedule) Clone() *FeedingSchedule {
	c := *f
	return &c
}

// Validate checks if the feeding schedule is valid.
func (f *FeedingSchedule) Validate() error {
	if f.PetID <= 0 {
		return errors.NewInvalidField(KindFeeding, "petId", "please select a pet")
	}
	if f.Time == "" {
		return errors.NewInvalidField(KindFeeding, "time", "feeding time is required")
	}
	if _, _, err := ParseClock(f.Time); err != nil {
		return errors.NewInvalidField(KindFeeding, "time", err.Error())
	}
	return nil
}
