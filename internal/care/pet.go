// Package care provides the household pet-care domain model: pets and the
// feeding schedules, appointments, vaccinations and reminders attached to them.
package care

import (
	"strings"

	"github.com/petcare-labs/petcare/internal/errors"
)

// Kind names used in errors and audit logs.
const (
	KindPet         = "pet"
	KindReminder    = "reminder"
	KindAppointment = "appointment"
	KindFeeding     = "feeding"
	KindVaccination = "vaccination"
)

// Tracking levels are recorded on a 0..10 scale.
const (
	MinLevel     = 0
	MaxLevel     = 10
	DefaultLevel = 5
)

// Pet is a household animal being cared for.
type Pet struct {
	// ID is assigned by the store on creation.
	ID int64 `json:"id" yaml:"id"`

	Name  string  `json:"name" yaml:"name"`
	Type  PetType `json:"type" yaml:"type"`
	Breed string  `json:"breed,omitempty" yaml:"breed,omitempty"`

	// BirthDate is a calendar date (YYYY-MM-DD). Empty when unknown.
	BirthDate string `json:"birthDate,omitempty" yaml:"birthDate,omitempty"`

	PhotoURL string `json:"photoUrl,omitempty" yaml:"photoUrl,omitempty"`
	Notes    string `json:"notes,omitempty" yaml:"notes,omitempty"`

	// Appetite and Energy are daily tracking levels on a 0..10 scale.
	Appetite int `json:"appetite" yaml:"appetite"`
	Energy   int `json:"energy" yaml:"energy"`
}

// PetType is the species of a pet.
type PetType string

const (
	PetDog     PetType = "dog"
	PetCat     PetType = "cat"
	PetBird    PetType = "bird"
	PetFish    PetType = "fish"
	PetRabbit  PetType = "rabbit"
	PetHamster PetType = "hamster"
	PetOther   PetType = "other"
)

// AllPetTypes returns all valid pet types.
func AllPetTypes() []PetType {
	return []PetType{PetDog, PetCat, PetBird, PetFish, PetRabbit, PetHamster, PetOther}
}

// IsValid checks if the pet type is known.
func (t PetType) IsValid() bool {
	for _, valid := range AllPetTypes() {
		if t == valid {
			return true
		}
	}
	return false
}

// ParsePetType normalizes a user-supplied pet type.
func ParsePetType(s string) (PetType, error) {
	t := PetType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", errors.NewInvalidField(KindPet, "type", "unknown pet type: "+s)
	}
	return t, nil
}

// NewPet returns a pet with tracking levels at their defaults.
func NewPet(name string, petType PetType) *Pet {
	return &Pet{
		Name:     name,
		Type:     petType,
		Appetite: DefaultLevel,
		Energy:   DefaultLevel,
	}
}

func (p *Pet) EntityID() int64      { return p.ID }
func (p *Pet) SetEntityID(id int64) { p.ID = id }

// Clone returns a copy of the pet.
func (p *Pet) Clone() *Pet {
	c := *p
	return &c
}

// Validate checks if the pet is valid.
func (p *Pet) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.NewInvalidField(KindPet, "name", "pet name is required")
	}
	if p.Type == "" {
		return errors.NewInvalidField(KindPet, "type", "pet type is required")
	}
	if !p.Type.IsValid() {
		return errors.NewInvalidField(KindPet, "type", "unknown pet type: "+string(p.Type))
	}
	if p.BirthDate != "" {
		if _, err := ParseDate(p.BirthDate); err != nil {
			return errors.NewInvalidField(KindPet, "birthDate", "expected YYYY-MM-DD")
		}
	}
	if err := validateLevel("appetite", p.Appetite); err != nil {
		return err
	}
	return validateLevel("energy", p.Energy)
}

func validateLevel(field string, v int) error {
	if v < MinLevel || v > MaxLevel {
		return errors.NewInvalidField(KindPet, field, "must be between 0 and 10")
	}
	return nil
}
