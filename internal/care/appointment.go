package care

import (
	"strings"
	"time"

	"github.com/petcare-labs/petcare/internal/errors"
)

// Appointment is a scheduled vet visit.
type Appointment struct {
	ID           int64           `json:"id" yaml:"id"`
	PetID        int64           `json:"petId" yaml:"petId"`
	Type         AppointmentType `json:"type" yaml:"type"`
	DateTime     time.Time       `json:"dateTime" yaml:"dateTime"`
	Veterinarian string          `json:"veterinarian,omitempty" yaml:"veterinarian,omitempty"`
	Reason       string          `json:"reason" yaml:"reason"`
	Notes        string          `json:"notes,omitempty" yaml:"notes,omitempty"`
	Completed    bool            `json:"completed" yaml:"completed"`
}

// AppointmentType is the kind of vet visit.
type AppointmentType string

const (
	AppointmentCheckup     AppointmentType = "checkup"
	AppointmentVaccination AppointmentType = "vaccination"
	AppointmentSurgery     AppointmentType = "surgery"
	AppointmentDental      AppointmentType = "dental"
	AppointmentEmergency   AppointmentType = "emergency"
	AppointmentOther       AppointmentType = "other"
)

// AllAppointmentTypes returns all valid appointment types.
func AllAppointmentTypes() []AppointmentType {
	return []AppointmentType{
		AppointmentCheckup, AppointmentVaccination, AppointmentSurgery,
		AppointmentDental, AppointmentEmergency, AppointmentOther,
	}
}

// IsValid checks if the appointment type is known.
func (t AppointmentType) IsValid() bool {
	for _, valid := range AllAppointmentTypes() {
		if t == valid {
			return true
		}
	}
	return false
}

func (a *Appointment) EntityID() int64      { return a.ID }
func (a *Appointment) SetEntityID(id int64) { a.ID = id }

// Clone returns a copy of the appointment.
func (a *Appointment) Clone() *Appointment {
	c := *a
	return &c
}

// Validate checks if the appointment is valid.
func (a *Appointment) Validate() error {
	if a.PetID <= 0 {
		return errors.NewInvalidField(KindAppointment, "petId", "please select a pet")
	}
	if a.Type == "" {
		return errors.NewInvalidField(KindAppointment, "type", "please select appointment type")
	}
	if !a.Type.IsValid() {
		return errors.NewInvalidField(KindAppointment, "type", "unknown appointment type: "+string(a.Type))
	}
	if a.DateTime.IsZero() {
		return errors.NewInvalidField(KindAppointment, "dateTime", "date and time are required")
	}
	if strings.TrimSpace(a.Reason) == "" {
		return errors.NewInvalidField(KindAppointment, "reason", "reason is required")
	}
	return nil
}
