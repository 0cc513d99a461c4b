// Package api defines the public API endpoints of the petcare gateway.
package api

import (
	"fmt"
	"strconv"
)

// API version
const Version = "0.1.0"

// API endpoints
const (
	Prefix = "/api/v1"

	EndpointPets         = Prefix + "/pets"
	EndpointReminders    = Prefix + "/reminders"
	EndpointAppointments = Prefix + "/appointments"
	EndpointCalendar     = Prefix + "/appointments/calendar"
	EndpointFeedings     = Prefix + "/feedings"
	EndpointVaccinations = Prefix + "/vaccinations"
	EndpointDashboard    = Prefix + "/dashboard"
	EndpointAuditSummary = Prefix + "/audit/summary"
	EndpointHealth       = "/health"
	EndpointReady        = "/readyz"
)

// Per-record actions, appended to a record path.
const (
	ActionDetail   = "detail"
	ActionTracking = "tracking"
	ActionComplete = "complete"
	ActionSnooze   = "snooze"
	ActionToggle   = "toggle"
)

// Query parameters
const (
	ParamFilter = "filter"
	ParamMonth  = "month"
	ParamPet    = "petId"
)

// MonthLayout is the format of the calendar month parameter.
const MonthLayout = "2006-01"

// HTTP headers
const (
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"
	HeaderRequestID     = "X-Request-ID"
	HeaderRetryAfter    = "Retry-After"
)

// Content types
const (
	ContentTypeJSON = "application/json"
)

// RecordPath returns the path of one record under a collection endpoint.
func RecordPath(collection string, id int64) string {
	return collection + "/" + strconv.FormatInt(id, 10)
}

// ActionPath returns the path of an action on one record.
func ActionPath(collection string, id int64, action string) string {
	return fmt.Sprintf("%s/%d/%s", collection, id, action)
}
