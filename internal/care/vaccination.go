package care

import (
	"strings"

	"github.com/petcare-labs/petcare/internal/errors"
)

// Vaccination records a vaccine given and when the next dose is due.
type Vaccination struct {
	ID    int64  `json:"id" yaml:"id"`
	PetID int64  `json:"petId" yaml:"petId"`
	Name  string `json:"name" yaml:"name"`

	// DateGiven and NextDueDate are calendar dates (YYYY-MM-DD).
	DateGiven   string `json:"dateGiven" yaml:"dateGiven"`
	NextDueDate string `json:"nextDueDate,omitempty" yaml:"nextDueDate,omitempty"`

	Veterinarian string `json:"veterinarian,omitempty" yaml:"veterinarian,omitempty"`
	Notes        string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

func (v *Vaccination) EntityID() int64      { return v.ID }
func (v *Vaccination) SetEntityID(id int64) { v.ID = id }

// Clone returns a copy of the vaccination record.
func (v *Vaccination) Clone() *Vaccination {
	c := *v
	return &c
}

// Validate checks if the vaccination record is valid.
func (v *Vaccination) Validate() error {
	if v.PetID <= 0 {
		return errors.NewInvalidField(KindVaccination, "petId", "please select a pet")
	}
	if strings.TrimSpace(v.Name) == "" {
		return errors.NewInvalidField(KindVaccination, "name", "vaccine name is required")
	}
	given, err := ParseDate(v.DateGiven)
	if err != nil {
		return errors.NewInvalidField(KindVaccination, "dateGiven", "expected YYYY-MM-DD")
	}
	if v.NextDueDate != "" {
		due, err := ParseDate(v.NextDueDate)
		if err != nil {
			return errors.NewInvalidField(KindVaccination, "nextDueDate", "expected YYYY-MM-DD")
		}
		if due.Before(given) {
			return errors.NewInvalidField(KindVaccination, "nextDueDate", "cannot be before dateGiven")
		}
	}
	return nil
}
