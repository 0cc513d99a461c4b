package service

import (
	"strings"

	"github.com/petcare-labs/petcare/internal/care"
	"github.com/petcare-labs/petcare/pkg/models"
)

// Patches overlay the non-nil fields onto an existing record, the same way
// an update request merges into the stored record.

func applyPetPatch(p *care.Pet, patch models.PetPatch) {
	set(&p.Name, patch.Name, strings.TrimSpace)
	if patch.Type != nil {
		p.Type = care.PetType(strings.ToLower(strings.TrimSpace(*patch.Type)))
	}
	set(&p.Breed, patch.Breed, strings.TrimSpace)
	set(&p.BirthDate, patch.BirthDate, strings.TrimSpace)
	set(&p.PhotoURL, patch.PhotoURL, strings.TrimSpace)
	set(&p.Notes, patch.Notes, nil)
	set(&p.Appetite, patch.Appetite, nil)
	set(&p.Energy, patch.Energy, nil)
}

func applyReminderPatch(r *care.Reminder, patch models.ReminderPatch) {
	set(&r.PetID, patch.PetID, nil)
	if patch.Type != nil {
		r.Type = care.ReminderType(strings.ToLower(strings.TrimSpace(*patch.Type)))
	}
	set(&r.Title, patch.Title, strings.TrimSpace)
	set(&r.Description, patch.Description, nil)
	set(&r.DateTime, patch.DateTime, nil)
	set(&r.Completed, patch.Completed, nil)
}

func applyAppointmentPatch(a *care.Appointment, patch models.AppointmentPatch) {
	set(&a.PetID, patch.PetID, nil)
	if patch.Type != nil {
		a.Type = care.AppointmentType(strings.ToLower(strings.TrimSpace(*patch.Type)))
	}
	set(&a.DateTime, patch.DateTime, nil)
	set(&a.Veterinarian, patch.Veterinarian, strings.TrimSpace)
	set(&a.Reason, patch.Reason, strings.TrimSpace)
	set(&a.Notes, patch.Notes, nil)
	set(&a.Completed, patch.Completed, nil)
}

func applyFeedingPatch(f *care.FeedingSchedule, patch models.FeedingPatch) {
	set(&f.PetID, patch.PetID, nil)
	set(&f.Time, patch.Time, strings.TrimSpace)
	set(&f.FoodType, patch.FoodType, strings.TrimSpace)
	set(&f.Amount, patch.Amount, strings.TrimSpace)
	set(&f.Notes, patch.Notes, nil)
	set(&f.Enabled, patch.Enabled, nil)
}

func applyVaccinationPatch(v *care.Vaccination, patch models.VaccinationPatch) {
	set(&v.PetID, patch.PetID, nil)
	set(&v.Name, patch.Name, strings.TrimSpace)
	set(&v.DateGiven, patch.DateGiven, strings.TrimSpace)
	set(&v.NextDueDate, patch.NextDueDate, strings.TrimSpace)
	set(&v.Veterinarian, patch.Veterinarian, strings.TrimSpace)
	set(&v.Notes, patch.Notes, nil)
}

// set assigns *src to *dst when src is non-nil, passing it through norm first.
func set[T any](dst *T, src *T, norm func(T) T) {
	if src == nil {
		return
	}
	v := *src
	if norm != nil {
		v = norm(v)
	}
	*dst = v
}
