package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/petcare-labs/petcare/internal/care"
	"github.com/petcare-labs/petcare/internal/errors"
	"github.com/petcare-labs/petcare/internal/schedule"
	"github.com/petcare-labs/petcare/internal/service"
	"github.com/petcare-labs/petcare/pkg/api"
	"github.com/petcare-labs/petcare/pkg/models"
)

// GatewayClient is the HTTP client for the petcare gateway.
type GatewayClient struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// NewGatewayClient creates a new gateway client.
func NewGatewayClient(endpoint, token string) *GatewayClient {
	return &GatewayClient{
		endpoint: strings.TrimRight(endpoint, "/"),
		token:    token,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// Endpoint returns the configured gateway endpoint.
func (c *GatewayClient) Endpoint() string {
	return c.endpoint
}

// Token returns the configured authentication token.
func (c *GatewayClient) Token() string {
	return c.token
}

// Pets

func (c *GatewayClient) ListPets(ctx context.Context) ([]service.PetSummary, error) {
	var pets []service.PetSummary
	if err := c.do(ctx, http.MethodGet, api.EndpointPets, nil, &pets); err != nil {
		return nil, err
	}
	return pets, nil
}

func (c *GatewayClient) GetPet(ctx context.Context, id int64) (*care.Pet, error) {
	var pet care.Pet
	return &pet, c.do(ctx, http.MethodGet, api.RecordPath(api.EndpointPets, id), nil, &pet)
}

func (c *GatewayClient) PetDetail(ctx context.Context, id int64) (*service.PetDetail, error) {
	var detail service.PetDetail
	return &detail, c.do(ctx, http.MethodGet, api.ActionPath(api.EndpointPets, id, api.ActionDetail), nil, &detail)
}

func (c *GatewayClient) CreatePet(ctx context.Context, patch models.PetPatch) (*care.Pet, error) {
	var pet care.Pet
	return &pet, c.do(ctx, http.MethodPost, api.EndpointPets, patch, &pet)
}

func (c *GatewayClient) UpdatePet(ctx context.Context, id int64, patch models.PetPatch) (*care.Pet, error) {
	var pet care.Pet
	return &pet, c.do(ctx, http.MethodPatch, api.RecordPath(api.EndpointPets, id), patch, &pet)
}

func (c *GatewayClient) UpdateTracking(ctx context.Context, id int64, req models.TrackingRequest) (*care.Pet, error) {
	var pet care.Pet
	return &pet, c.do(ctx, http.MethodPost, api.ActionPath(api.EndpointPets, id, api.ActionTracking), req, &pet)
}

// DeletePet removes a pet and every record attached to it.
func (c *GatewayClient) DeletePet(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, api.RecordPath(api.EndpointPets, id), nil, nil)
}

// Reminders

// Reminders lists active reminders matching filter. petID zero means all pets.
func (c *GatewayClient) Reminders(ctx context.Context, filter schedule.Filter, petID int64) (*service.ReminderList, error) {
	q := url.Values{}
	if filter != "" {
		q.Set(api.ParamFilter, string(filter))
	}
	if petID > 0 {
		q.Set(api.ParamPet, strconv.FormatInt(petID, 10))
	}
	var list service.ReminderList
	return &list, c.do(ctx, http.MethodGet, withQuery(api.EndpointReminders, q), nil, &list)
}

func (c *GatewayClient) CreateReminder(ctx context.Context, patch models.ReminderPatch) (*care.Reminder, error) {
	var rem care.Reminder
	return &rem, c.do(ctx, http.MethodPost, api.EndpointReminders, patch, &rem)
}

func (c *GatewayClient) UpdateReminder(ctx context.Context, id int64, patch models.ReminderPatch) (*care.Reminder, error) {
	var rem care.Reminder
	return &rem, c.do(ctx, http.MethodPatch, api.RecordPath(api.EndpointReminders, id), patch, &rem)
}

func (c *GatewayClient) CompleteReminder(ctx context.Context, id int64) (*care.Reminder, error) {
	var rem care.Reminder
	return &rem, c.do(ctx, http.MethodPost, api.ActionPath(api.EndpointReminders, id, api.ActionComplete), nil, &rem)
}

// SnoozeReminder postpones a reminder by d, or by the gateway default when d is zero.
func (c *GatewayClient) SnoozeReminder(ctx context.Context, id int64, d time.Duration) (*care.Reminder, error) {
	var body any
	if d > 0 {
		body = models.SnoozeRequest{Duration: d.String()}
	}
	var rem care.Reminder
	return &rem, c.do(ctx, http.MethodPost, api.ActionPath(api.EndpointReminders, id, api.ActionSnooze), body, &rem)
}

func (c *GatewayClient) DeleteReminder(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, api.RecordPath(api.EndpointReminders, id), nil, nil)
}

// Appointments

func (c *GatewayClient) ListAppointments(ctx context.Context, petID int64) ([]*care.Appointment, error) {
	var apts []*care.Appointment
	if err := c.do(ctx, http.MethodGet, withQuery(api.EndpointAppointments, petQuery(petID)), nil, &apts); err != nil {
		return nil, err
	}
	return apts, nil
}

func (c *GatewayClient) CreateAppointment(ctx context.Context, patch models.AppointmentPatch) (*care.Appointment, error) {
	var apt care.Appointment
	return &apt, c.do(ctx, http.MethodPost, api.EndpointAppointments, patch, &apt)
}

func (c *GatewayClient) UpdateAppointment(ctx context.Context, id int64, patch models.AppointmentPatch) (*care.Appointment, error) {
	var apt care.Appointment
	return &apt, c.do(ctx, http.MethodPatch, api.RecordPath(api.EndpointAppointments, id), patch, &apt)
}

func (c *GatewayClient) CompleteAppointment(ctx context.Context, id int64) (*care.Appointment, error) {
	var apt care.Appointment
	return &apt, c.do(ctx, http.MethodPost, api.ActionPath(api.EndpointAppointments, id, api.ActionComplete), nil, &apt)
}

func (c *GatewayClient) DeleteAppointment(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, api.RecordPath(api.EndpointAppointments, id), nil, nil)
}

// Calendar returns the day cells of a month, formatted as YYYY-MM. An empty
// month means the gateway's current month.
func (c *GatewayClient) Calendar(ctx context.Context, month string) ([]schedule.CalendarDay, error) {
	q := url.Values{}
	if month != "" {
		q.Set(api.ParamMonth, month)
	}
	var days []schedule.CalendarDay
	if err := c.do(ctx, http.MethodGet, withQuery(api.EndpointCalendar, q), nil, &days); err != nil {
		return nil, err
	}
	return days, nil
}

// Feedings

func (c *GatewayClient) ListFeedings(ctx context.Context, petID int64) ([]*care.FeedingSchedule, error) {
	var feedings []*care.FeedingSchedule
	if err := c.do(ctx, http.MethodGet, withQuery(api.EndpointFeedings, petQuery(petID)), nil, &feedings); err != nil {
		return nil, err
	}
	return feedings, nil
}

func (c *GatewayClient) CreateFeeding(ctx context.Context, patch models.FeedingPatch) (*care.FeedingSchedule, error) {
	var f care.FeedingSchedule
	return &f, c.do(ctx, http.MethodPost, api.EndpointFeedings, patch, &f)
}

func (c *GatewayClient) UpdateFeeding(ctx context.Context, id int64, patch models.FeedingPatch) (*care.FeedingSchedule, error) {
	var f care.FeedingSchedule
	return &f, c.do(ctx, http.MethodPatch, api.RecordPath(api.EndpointFeedings, id), patch, &f)
}

func (c *GatewayClient) ToggleFeeding(ctx context.Context, id int64) (*care.FeedingSchedule, error) {
	var f care.FeedingSchedule
	return &f, c.do(ctx, http.MethodPost, api.ActionPath(api.EndpointFeedings, id, api.ActionToggle), nil, &f)
}

func (c *GatewayClient) DeleteFeeding(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, api.RecordPath(api.EndpointFeedings, id), nil, nil)
}

// Vaccinations

func (c *GatewayClient) ListVaccinations(ctx context.Context, petID int64) ([]*care.Vaccination, error) {
	var vs []*care.Vaccination
	if err := c.do(ctx, http.MethodGet, withQuery(api.EndpointVaccinations, petQuery(petID)), nil, &vs); err != nil {
		return nil, err
	}
	return vs, nil
}

func (c *GatewayClient) CreateVaccination(ctx context.Context, patch models.VaccinationPatch) (*care.Vaccination, error) {
	var v care.Vaccination
	return &v, c.do(ctx, http.MethodPost, api.EndpointVaccinations, patch, &v)
}

func (c *GatewayClient) UpdateVaccination(ctx context.Context, id int64, patch models.VaccinationPatch) (*care.Vaccination, error) {
	var v care.Vaccination
	return &v, c.do(ctx, http.MethodPatch, api.RecordPath(api.EndpointVaccinations, id), patch, &v)
}

func (c *GatewayClient) DeleteVaccination(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, api.RecordPath(api.EndpointVaccinations, id), nil, nil)
}

// Views and operations

func (c *GatewayClient) Dashboard(ctx context.Context) (*service.Dashboard, error) {
	var d service.Dashboard
	return &d, c.do(ctx, http.MethodGet, api.EndpointDashboard, nil, &d)
}

// CheckHealth checks if the gateway process is up.
func (c *GatewayClient) CheckHealth(ctx context.Context) (*models.HealthResponse, error) {
	var h models.HealthResponse
	return &h, c.do(ctx, http.MethodGet, api.EndpointHealth, nil, &h)
}

// GetStatus returns the readiness report. A not-ready gateway answers 503
// with the same body, which is returned alongside the error.
func (c *GatewayClient) GetStatus(ctx context.Context) (*models.HealthResponse, error) {
	var h models.HealthResponse
	err := c.do(ctx, http.MethodGet, api.EndpointReady, nil, &h)
	return &h, err
}

func (c *GatewayClient) GetAuditSummary(ctx context.Context) (*models.AuditSummary, error) {
	var s models.AuditSummary
	return &s, c.do(ctx, http.MethodGet, api.EndpointAuditSummary, nil, &s)
}

// do sends one request and decodes a 2xx body into out. Error responses
// come back as *errors.PetCareError carrying the gateway's error code.
func (c *GatewayClient) do(ctx context.Context, method, path string, body, out any) error {
	if c.endpoint == "" {
		return errors.NewGatewayUnavailable("", "no gateway endpoint configured")
	}

	resp, err := c.doRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		perr := c.parseErrorResponse(resp)
		if resp.StatusCode == http.StatusServiceUnavailable && path == api.EndpointReady && out != nil {
			if h, ok := out.(*models.HealthResponse); ok {
				fillReadiness(h, perr)
			}
		}
		return perr
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// doRequest performs an HTTP request to the gateway.
func (c *GatewayClient) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set(api.HeaderContentType, api.ContentTypeJSON)
	}
	if c.token != "" {
		req.Header.Set(api.HeaderAuthorization, "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewGatewayUnavailable(c.endpoint, err.Error())
	}
	return resp, nil
}

// readinessError is a 503 from /readyz; the body is a HealthResponse, not
// an ErrorResponse.
type readinessError struct {
	*errors.PetCareError
	health models.HealthResponse
}

// parseErrorResponse turns a non-2xx response into a typed error.
func (c *GatewayClient) parseErrorResponse(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var body models.ErrorResponse
	if err := json.Unmarshal(data, &body); err != nil || body.Error == "" {
		var health models.HealthResponse
		if json.Unmarshal(data, &health) == nil && health.Status != "" {
			return &readinessError{
				PetCareError: &errors.PetCareError{
					Code:       errors.CodeStorage,
					Message:    "gateway not ready",
					Reason:     health.Status,
					Suggestion: "run 'petcare status' to see which check is failing",
				},
				health: health,
			}
		}
		return &errors.PetCareError{
			Code:    codeForStatus(resp.StatusCode),
			Message: fmt.Sprintf("gateway returned %s", resp.Status),
			Reason:  strings.TrimSpace(string(data)),
		}
	}

	code := errors.ErrorCode(body.Code)
	if code == 0 {
		code = codeForStatus(resp.StatusCode)
	}
	reason := body.Reason
	if body.RequestID != "" {
		reason = strings.TrimSpace(reason + " (request " + body.RequestID + ")")
	}
	return &errors.PetCareError{
		Code:       code,
		Message:    body.Error,
		Reason:     reason,
		Suggestion: body.Suggestion,
	}
}

func fillReadiness(h *models.HealthResponse, err error) {
	if re, ok := err.(*readinessError); ok {
		*h = re.health
	}
}

// codeForStatus maps a bare HTTP status back to an error code.
func codeForStatus(status int) errors.ErrorCode {
	switch status {
	case http.StatusBadRequest:
		return errors.CodeValidation
	case http.StatusUnauthorized:
		return errors.CodeAuth
	case http.StatusForbidden:
		return errors.CodeForbidden
	case http.StatusNotFound:
		return errors.CodeNotFound
	case http.StatusTooManyRequests:
		return errors.CodeRateLimit
	case http.StatusServiceUnavailable:
		return errors.CodeStorage
	default:
		return errors.CodeInternal
	}
}

func petQuery(petID int64) url.Values {
	q := url.Values{}
	if petID > 0 {
		q.Set(api.ParamPet, strconv.FormatInt(petID, 10))
	}
	return q
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
