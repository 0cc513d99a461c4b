// Package fixtures loads demo seed data for petcare stores.
//
// Seed files are YAML. Timestamps and dates may be relative to the load
// time (see ResolveTime) so a demo always shows overdue, today and
// upcoming items no matter when it is started.
package fixtures

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/petcare-labs/petcare/internal/care"
)

//go:embed seed.yaml
var defaultSeed []byte

// Dataset is a fully resolved set of records ready to load into a store.
type Dataset struct {
	Pets         []*care.Pet
	Reminders    []*care.Reminder
	Appointments []*care.Appointment
	Feedings     []*care.FeedingSchedule
	Vaccinations []*care.Vaccination
}

// Size returns the total number of records in the dataset.
func (d *Dataset) Size() int {
	return len(d.Pets) + len(d.Reminders) + len(d.Appointments) + len(d.Feedings) + len(d.Vaccinations)
}

type seedFile struct {
	Pets         []seedPet         `yaml:"pets"`
	Reminders    []seedReminder    `yaml:"reminders"`
	Appointments []seedAppointment `yaml:"appointments"`
	Feedings     []seedFeeding     `yaml:"feedings"`
	Vaccinations []seedVaccination `yaml:"vaccinations"`
}

type seedPet struct {
	ID        int64  `yaml:"id"`
	Name      string `yaml:"name"`
	Type      string `yaml:"type"`
	Breed     string `yaml:"breed"`
	BirthDate string `yaml:"birthDate"`
	PhotoURL  string `yaml:"photoUrl"`
	Notes     string `yaml:"notes"`
	Appetite  *int   `yaml:"appetite"`
	Energy    *int   `yaml:"energy"`
}

type seedReminder struct {
	ID           int64  `yaml:"id"`
	PetID        int64  `yaml:"petId"`
	Type         string `yaml:"type"`
	Title        string `yaml:"title"`
	Description  string `yaml:"description"`
	DateTime     string `yaml:"dateTime"`
	Completed    bool   `yaml:"completed"`
	SnoozedUntil string `yaml:"snoozedUntil"`
}

type seedAppointment struct {
	ID           int64  `yaml:"id"`
	PetID        int64  `yaml:"petId"`
	Type         string `yaml:"type"`
	DateTime     string `yaml:"dateTime"`
	Veterinarian string `yaml:"veterinarian"`
	Reason       string `yaml:"reason"`
	Notes        string `yaml:"notes"`
	Completed    bool   `yaml:"completed"`
}

type seedFeeding struct {
	ID       int64  `yaml:"id"`
	PetID    int64  `yaml:"petId"`
	Time     string `yaml:"time"`
	FoodType string `yaml:"foodType"`
	Amount   string `yaml:"amount"`
	Notes    string `yaml:"notes"`
	Enabled  *bool  `yaml:"enabled"`
}

type seedVaccination struct {
	ID           int64  `yaml:"id"`
	PetID        int64  `yaml:"petId"`
	Name         string `yaml:"name"`
	DateGiven    string `yaml:"dateGiven"`
	NextDueDate  string `yaml:"nextDueDate"`
	Veterinarian string `yaml:"veterinarian"`
	Notes        string `yaml:"notes"`
}

// Default returns the embedded demo dataset resolved against now.
func Default(now time.Time) (*Dataset, error) {
	return Parse(bytes.NewReader(defaultSeed), now)
}

// LoadFile reads a seed file from disk and resolves it against now.
func LoadFile(path string, now time.Time) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	ds, err := Parse(f, now)
	if err != nil {
		return nil, fmt.Errorf("seed file %s: %w", path, err)
	}
	return ds, nil
}

// Parse decodes a YAML seed document, resolves relative times against now
// and validates every record. Records without an ID are numbered after the
// highest explicit ID of their kind.
func Parse(r io.Reader, now time.Time) (*Dataset, error) {
	var raw seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode seed: %w", err)
	}

	ds := &Dataset{}
	for i, p := range raw.Pets {
		pet, err := p.resolve(now)
		if err != nil {
			return nil, fmt.Errorf("pets[%d]: %w", i, err)
		}
		ds.Pets = append(ds.Pets, pet)
	}
	for i, r := range raw.Reminders {
		rem, err := r.resolve(now)
		if err != nil {
			return nil, fmt.Errorf("reminders[%d]: %w", i, err)
		}
		ds.Reminders = append(ds.Reminders, rem)
	}
	for i, a := range raw.Appointments {
		apt, err := a.resolve(now)
		if err != nil {
			return nil, fmt.Errorf("appointments[%d]: %w", i, err)
		}
		ds.Appointments = append(ds.Appointments, apt)
	}
	for i, f := range raw.Feedings {
		ds.Feedings = append(ds.Feedings, f.resolve())
		if err := ds.Feedings[i].Validate(); err != nil {
			return nil, fmt.Errorf("feedings[%d]: %w", i, err)
		}
	}
	for i, v := range raw.Vaccinations {
		vac, err := v.resolve(now)
		if err != nil {
			return nil, fmt.Errorf("vaccinations[%d]: %w", i, err)
		}
		ds.Vaccinations = append(ds.Vaccinations, vac)
	}

	for _, err := range []error{
		assignIDs(care.KindPet, ds.Pets),
		assignIDs(care.KindReminder, ds.Reminders),
		assignIDs(care.KindAppointment, ds.Appointments),
		assignIDs(care.KindFeeding, ds.Feedings),
		assignIDs(care.KindVaccination, ds.Vaccinations),
	} {
		if err != nil {
			return nil, err
		}
	}

	if err := checkReferences(ds); err != nil {
		return nil, err
	}
	return ds, nil
}

func (p seedPet) resolve(now time.Time) (*care.Pet, error) {
	birth, err := ResolveDate(p.BirthDate, now)
	if err != nil {
		return nil, err
	}
	pet := care.NewPet(p.Name, care.PetType(p.Type))
	pet.ID = p.ID
	pet.Breed = p.Breed
	pet.BirthDate = birth
	pet.PhotoURL = p.PhotoURL
	pet.Notes = p.Notes
	if p.Appetite != nil {
		pet.Appetite = *p.Appetite
	}
	if p.Energy != nil {
		pet.Energy = *p.Energy
	}
	return pet, pet.Validate()
}

func (r seedReminder) resolve(now time.Time) (*care.Reminder, error) {
	at, err := ResolveTime(r.DateTime, now)
	if err != nil {
		return nil, err
	}
	rem := &care.Reminder{
		ID:          r.ID,
		PetID:       r.PetID,
		Type:        care.ReminderType(r.Type),
		Title:       r.Title,
		Description: r.Description,
		DateTime:    at,
		Completed:   r.Completed,
	}
	if r.SnoozedUntil != "" {
		until, err := ResolveTime(r.SnoozedUntil, now)
		if err != nil {
			return nil, err
		}
		rem.SnoozedUntil = &until
	}
	return rem, rem.Validate()
}

func (a seedAppointment) resolve(now time.Time) (*care.Appointment, error) {
	at, err := ResolveTime(a.DateTime, now)
	if err != nil {
		return nil, err
	}
	apt := &care.Appointment{
		ID:           a.ID,
		PetID:        a.PetID,
		Type:         care.AppointmentType(a.Type),
		DateTime:     at,
		Veterinarian: a.Veterinarian,
		Reason:       a.Reason,
		Notes:        a.Notes,
		Completed:    a.Completed,
	}
	return apt, apt.Validate()
}

func (f seedFeeding) resolve() *care.FeedingSchedule {
	enabled := true
	if f.Enabled != nil {
		enabled = *f.Enabled
	}
	return &care.FeedingSchedule{
		ID:       f.ID,
		PetID:    f.PetID,
		Time:     f.Time,
		FoodType: f.FoodType,
		Amount:   f.Amount,
		Notes:    f.Notes,
		Enabled:  enabled,
	}
}

func (v seedVaccination) resolve(now time.Time) (*care.Vaccination, error) {
	given, err := ResolveDate(v.DateGiven, now)
	if err != nil {
		return nil, err
	}
	due, err := ResolveDate(v.NextDueDate, now)
	if err != nil {
		return nil, err
	}
	vac := &care.Vaccination{
		ID:           v.ID,
		PetID:        v.PetID,
		Name:         v.Name,
		DateGiven:    given,
		NextDueDate:  due,
		Veterinarian: v.Veterinarian,
		Notes:        v.Notes,
	}
	return vac, vac.Validate()
}

type identified interface {
	EntityID() int64
	SetEntityID(id int64)
}

// assignIDs numbers records without an ID. Explicit IDs must be positive
// and unique within their kind.
func assignIDs[P identified](kind string, items []P) error {
	seen := make(map[int64]bool, len(items))
	var maxID int64
	for i, item := range items {
		id := item.EntityID()
		switch {
		case id < 0:
			return fmt.Errorf("%s[%d]: id must be positive, got %d", kind, i, id)
		case id == 0:
			continue
		case seen[id]:
			return fmt.Errorf("duplicate %s id %d", kind, id)
		}
		seen[id] = true
		maxID = max(maxID, id)
	}
	for _, item := range items {
		if item.EntityID() == 0 {
			maxID++
			item.SetEntityID(maxID)
		}
	}
	return nil
}

func checkReferences(ds *Dataset) error {
	pets := make(map[int64]bool, len(ds.Pets))
	for _, p := range ds.Pets {
		pets[p.ID] = true
	}
	check := func(kind string, id, petID int64) error {
		if !pets[petID] {
			return fmt.Errorf("%s %d references unknown pet %d", kind, id, petID)
		}
		return nil
	}
	for _, r := range ds.Reminders {
		if err := check(care.KindReminder, r.ID, r.PetID); err != nil {
			return err
		}
	}
	for _, a := range ds.Appointments {
		if err := check(care.KindAppointment, a.ID, a.PetID); err != nil {
			return err
		}
	}
	for _, f := range ds.Feedings {
		if err := check(care.KindFeeding, f.ID, f.PetID); err != nil {
			return err
		}
	}
	for _, v := range ds.Vaccinations {
		if err := check(care.KindVaccination, v.ID, v.PetID); err != nil {
			return err
		}
	}
	return nil
}
