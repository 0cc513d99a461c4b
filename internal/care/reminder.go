package care

import (
	"strings"
	"time"

	"github.com/petcare-labs/petcare/internal/errors"
)

// Reminder is a dated care task with completion and snooze state.
type Reminder struct {
	ID          int64        `json:"id" yaml:"id"`
	PetID       int64        `json:"petId" yaml:"petId"`
	Type        ReminderType `json:"type" yaml:"type"`
	Title       string       `json:"title" yaml:"title"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	DateTime    time.Time    `json:"dateTime" yaml:"dateTime"`
	Completed   bool         `json:"completed" yaml:"completed"`

	// SnoozedUntil hides the reminder from due lists until it passes.
	SnoozedUntil *time.Time `json:"snoozedUntil" yaml:"snoozedUntil,omitempty"`
}

// ReminderType is the kind of care task a reminder tracks.
type ReminderType string

const (
	ReminderFeeding     ReminderType = "feeding"
	ReminderAppointment ReminderType = "appointment"
	ReminderVaccination ReminderType = "vaccination"
	ReminderMedication  ReminderType = "medication"
)

// AllReminderTypes returns all valid reminder types.
func AllReminderTypes() []ReminderType {
	return []ReminderType{ReminderFeeding, ReminderAppointment, ReminderVaccination, ReminderMedication}
}

// IsValid checks if the reminder type is known.
func (t ReminderType) IsValid() bool {
	for _, valid := range AllReminderTypes() {
		if t == valid {
			return true
		}
	}
	return false
}

func (r *Reminder) EntityID() int64      { return r.ID }
func (r *Reminder) SetEntityID(id int64) { r.ID = id }

// Clone returns a deep copy of the reminder.
func (r *Reminder) Clone() *Reminder {
	c := *r
	if r.SnoozedUntil != nil {
		until := *r.SnoozedUntil
		c.SnoozedUntil = &until
	}
	return &c
}

// Validate checks if the reminder is valid.
func (r *Reminder) Validate() error {
	if r.PetID <= 0 {
		return errors.NewInvalidField(KindReminder, "petId", "please select a pet")
	}
	if !r.Type.IsValid() {
		return errors.NewInvalidField(KindReminder, "type", "unknown reminder type: "+string(r.Type))
	}
	if strings.TrimSpace(r.Title) == "" {
		return errors.NewInvalidField(KindReminder, "title", "title is required")
	}
	if r.DateTime.IsZero() {
		return errors.NewInvalidField(KindReminder, "dateTime", "date and time are required")
	}
	return nil
}
