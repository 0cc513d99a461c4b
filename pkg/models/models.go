// Package models provides shared request and response models for the
// petcare HTTP API.
package models

import (
	"time"
)

// PetPatch creates or partially updates a pet. Nil fields are left
// unchanged on update and take their defaults on create.
type PetPatch struct {
	Name      *string `json:"name,omitempty" yaml:"name,omitempty"`
	Type      *string `json:"type,omitempty" yaml:"type,omitempty"`
	Breed     *string `json:"breed,omitempty" yaml:"breed,omitempty"`
	BirthDate *string `json:"birthDate,omitempty" yaml:"birthDate,omitempty"`
	PhotoURL  *string `json:"photoUrl,omitempty" yaml:"photoUrl,omitempty"`
	Notes     *string `json:"notes,omitempty" yaml:"notes,omitempty"`
	Appetite  *int    `json:"appetite,omitempty" yaml:"appetite,omitempty"`
	Energy    *int    `json:"energy,omitempty" yaml:"energy,omitempty"`
}

// ReminderPatch creates or partially updates a reminder.
type ReminderPatch struct {
	PetID       *int64     `json:"petId,omitempty" yaml:"petId,omitempty"`
	Type        *string    `json:"type,omitempty" yaml:"type,omitempty"`
	Title       *string    `json:"title,omitempty" yaml:"title,omitempty"`
	Description *string    `json:"description,omitempty" yaml:"description,omitempty"`
	DateTime    *time.Time `json:"dateTime,omitempty" yaml:"dateTime,omitempty"`
	Completed   *bool      `json:"completed,omitempty" yaml:"completed,omitempty"`
}

// AppointmentPatch creates or partially updates a vet appointment.
type AppointmentPatch struct {
	PetID        *int64     `json:"petId,omitempty" yaml:"petId,omitempty"`
	Type         *string    `json:"type,omitempty" yaml:"type,omitempty"`
	DateTime     *time.Time `json:"dateTime,omitempty" yaml:"dateTime,omitempty"`
	Veterinarian *string    `json:"veterinarian,omitempty" yaml:"veterinarian,omitempty"`
	Reason       *string    `json:"reason,omitempty" yaml:"reason,omitempty"`
	Notes        *string    `json:"notes,omitempty" yaml:"notes,omitempty"`
	Completed    *bool      `json:"completed,omitempty" yaml:"completed,omitempty"`
}

// FeedingPatch creates or partially updates a feeding schedule.
type FeedingPatch struct {
	PetID    *int64  `json:"petId,omitempty" yaml:"petId,omitempty"`
	Time     *string `json:"time,omitempty" yaml:"time,omitempty"`
	FoodType *string `json:"foodType,omitempty" yaml:"foodType,omitempty"`
	Amount   *string `json:"amount,omitempty" yaml:"amount,omitempty"`
	Notes    *string `json:"notes,omitempty" yaml:"notes,omitempty"`
	Enabled  *bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
}

// VaccinationPatch creates or partially updates a vaccination record.
type VaccinationPatch struct {
	PetID        *int64  `json:"petId,omitempty" yaml:"petId,omitempty"`
	Name         *string `json:"name,omitempty" yaml:"name,omitempty"`
	DateGiven    *string `json:"dateGiven,omitempty" yaml:"dateGiven,omitempty"`
	NextDueDate  *string `json:"nextDueDate,omitempty" yaml:"nextDueDate,omitempty"`
	Veterinarian *string `json:"veterinarian,omitempty" yaml:"veterinarian,omitempty"`
	Notes        *string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// TrackingRequest records a pet's daily appetite and energy levels (0..10).
type TrackingRequest struct {
	Appetite *int `json:"appetite,omitempty"`
	Energy   *int `json:"energy,omitempty"`
}

// SnoozeRequest postpones a reminder. Duration is a Go duration string
// such as "1h" or "30m"; empty means the server default.
type SnoozeRequest struct {
	Duration string `json:"duration,omitempty"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error      string `json:"error"`
	Reason     string `json:"reason,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
	Code       int    `json:"code"`
	RequestID  string `json:"requestId,omitempty"`
}

// HealthResponse is the API response for liveness and readiness probes.
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version,omitempty"`
	Storage string            `json:"storage,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// AuditSummary aggregates request audit records.
type AuditSummary struct {
	TotalRequests  int            `json:"totalRequests"`
	FailedRequests int            `json:"failedRequests"`
	ByRoute        map[string]int `json:"byRoute"`
	ByStatus       map[int]int    `json:"byStatus"`
	ByUser         map[string]int `json:"byUser"`
	Since          time.Time      `json:"since"`
}

// String returns a pointer to s, for building patches.
func String(s string) *string { return &s }

// Int returns a pointer to n, for building patches.
func Int(n int) *int { return &n }

// Int64 returns a pointer to n, for building patches.
func Int64(n int64) *int64 { return &n }

// Bool returns a pointer to b, for building patches.
func Bool(b bool) *bool { return &b }

// Time returns a pointer to t, for building patches.
func Time(t time.Time) *time.Time { return &t }
