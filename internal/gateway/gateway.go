// Package gateway serves the petcare HTTP API.
//
// Every route under /api/v1 requires a bearer token. /health and /readyz
// are open so orchestrators can probe the process.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"go.uber.org/zap"

	"github.com/petcare-labs/petcare/internal/auth"
	"github.com/petcare-labs/petcare/internal/errors"
	"github.com/petcare-labs/petcare/internal/observability"
	"github.com/petcare-labs/petcare/internal/service"
	"github.com/petcare-labs/petcare/internal/status"
	"github.com/petcare-labs/petcare/pkg/api"
	"github.com/petcare-labs/petcare/pkg/models"
)

// Config holds gateway options.
type Config struct {
	Version string

	// Storage names the backend, shown by /readyz.
	Storage string

	// RateLimit is requests per second per client; zero disables limiting.
	RateLimit float64
	RateBurst int

	// ReportErrors sends panics and 5xx errors to Sentry. The Sentry
	// client must already be initialized.
	ReportErrors bool
}

// Gateway is the HTTP front end of the care service.
type Gateway struct {
	svc     *service.Service
	authn   auth.Authenticator
	authz   *auth.AuthorizationService
	audit   observability.AuditLogger
	checker *status.Checker
	limiter *clientLimiter
	logger  *zap.Logger
	config  Config

	handler http.Handler
}

// Option customizes a Gateway.
type Option func(*Gateway)

// WithAuthorization replaces the default caretaker/viewer grants.
func WithAuthorization(authz *auth.AuthorizationService) Option {
	return func(g *Gateway) { g.authz = authz }
}

// WithAuditLogger replaces the zap-backed audit logger.
func WithAuditLogger(audit observability.AuditLogger) Option {
	return func(g *Gateway) { g.audit = audit }
}

// WithLogger sets the gateway logger.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Gateway) { g.logger = logger }
}

// WithReadinessCheck adds a named check to /readyz.
func WithReadinessCheck(name string, check status.Check) Option {
	return func(g *Gateway) { g.checker.Add(name, check) }
}

// NewGateway creates a gateway. The service and authenticator are required.
func NewGateway(svc *service.Service, authn auth.Authenticator, config Config, opts ...Option) (*Gateway, error) {
	if svc == nil {
		return nil, fmt.Errorf("gateway: service is required")
	}
	if authn == nil {
		return nil, fmt.Errorf("gateway: authenticator is required")
	}
	if config.Version == "" {
		config.Version = api.Version
	}

	g := &Gateway{
		svc:     svc,
		authn:   authn,
		authz:   auth.NewDefaultAuthorizationService(),
		checker: status.NewChecker(config.Version, 5*time.Second),
		logger:  zap.NewNop(),
		config:  config,
	}
	g.checker.Add("storage", svc.CheckConnectivity)
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.Named("gateway")
	if g.audit == nil {
		g.audit = observability.NewZapAuditLogger(g.logger)
	}
	if config.RateLimit > 0 {
		g.limiter = newClientLimiter(config.RateLimit, config.RateBurst)
	}

	var h http.Handler = g.routes()
	h = g.withRateLimit(h)
	if config.ReportErrors {
		h = sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle(h)
	}
	h = g.withRecovery(h)
	h = g.withAudit(h)
	h = withRequestID(h)
	g.handler = h

	return g, nil
}

// ServeHTTP implements http.Handler.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.handler.ServeHTTP(w, r)
}

// AuditSummary returns aggregate request counts.
func (g *Gateway) AuditSummary() *models.AuditSummary {
	return g.audit.Summary()
}

// Readiness runs the readiness checks.
func (g *Gateway) Readiness(ctx context.Context) *status.Result {
	return g.checker.Run(ctx)
}

// handlerFunc is a route handler that reports failure by returning an error.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func (g *Gateway) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET "+api.EndpointHealth, g.handleHealth)
	mux.HandleFunc("GET "+api.EndpointReady, g.handleReady)

	pets, pet := api.EndpointPets, api.EndpointPets+"/{id}"
	g.route(mux, "GET "+pets, "pets", g.listPets)
	g.route(mux, "POST "+pets, "pets", g.createPet)
	g.route(mux, "GET "+pet, "pets", g.getPet)
	g.route(mux, "PATCH "+pet, "pets", g.updatePet)
	g.route(mux, "PUT "+pet, "pets", g.updatePet)
	g.route(mux, "DELETE "+pet, "pets", g.deletePet)
	g.route(mux, "GET "+pet+"/"+api.ActionDetail, "pets", g.petDetail)
	g.route(mux, "POST "+pet+"/"+api.ActionTracking, "pets", g.updateTracking)

	reminders, reminder := api.EndpointReminders, api.EndpointReminders+"/{id}"
	g.route(mux, "GET "+reminders, "reminders", g.listReminders)
	g.route(mux, "POST "+reminders, "reminders", g.createReminder)
	g.route(mux, "GET "+reminder, "reminders", g.getReminder)
	g.route(mux, "PATCH "+reminder, "reminders", g.updateReminder)
	g.route(mux, "PUT "+reminder, "reminders", g.updateReminder)
	g.route(mux, "DELETE "+reminder, "reminders", g.deleteReminder)
	g.route(mux, "POST "+reminder+"/"+api.ActionComplete, "reminders", g.completeReminder)
	g.route(mux, "POST "+reminder+"/"+api.ActionSnooze, "reminders", g.snoozeReminder)

	apts, apt := api.EndpointAppointments, api.EndpointAppointments+"/{id}"
	g.route(mux, "GET "+apts, "appointments", g.listAppointments)
	g.route(mux, "POST "+apts, "appointments", g.createAppointment)
	g.route(mux, "GET "+api.EndpointCalendar, "appointments", g.calendar)
	g.route(mux, "GET "+apt, "appointments", g.getAppointment)
	g.route(mux, "PATCH "+apt, "appointments", g.updateAppointment)
	g.route(mux, "PUT "+apt, "appointments", g.updateAppointment)
	g.route(mux, "DELETE "+apt, "appointments", g.deleteAppointment)
	g.route(mux, "POST "+apt+"/"+api.ActionComplete, "appointments", g.completeAppointment)

	feedings, feeding := api.EndpointFeedings, api.EndpointFeedings+"/{id}"
	g.route(mux, "GET "+feedings, "feedings", g.listFeedings)
	g.route(mux, "POST "+feedings, "feedings", g.createFeeding)
	g.route(mux, "GET "+feeding, "feedings", g.getFeeding)
	g.route(mux, "PATCH "+feeding, "feedings", g.updateFeeding)
	g.route(mux, "PUT "+feeding, "feedings", g.updateFeeding)
	g.route(mux, "DELETE "+feeding, "feedings", g.deleteFeeding)
	g.route(mux, "POST "+feeding+"/"+api.ActionToggle, "feedings", g.toggleFeeding)

	vaccinations, vaccination := api.EndpointVaccinations, api.EndpointVaccinations+"/{id}"
	g.route(mux, "GET "+vaccinations, "vaccinations", g.listVaccinations)
	g.route(mux, "POST "+vaccinations, "vaccinations", g.createVaccination)
	g.route(mux, "GET "+vaccination, "vaccinations", g.getVaccination)
	g.route(mux, "PATCH "+vaccination, "vaccinations", g.updateVaccination)
	g.route(mux, "PUT "+vaccination, "vaccinations", g.updateVaccination)
	g.route(mux, "DELETE "+vaccination, "vaccinations", g.deleteVaccination)

	g.route(mux, "GET "+api.EndpointDashboard, "dashboard", g.dashboard)
	g.route(mux, "GET "+api.EndpointAuditSummary, "audit", g.auditSummary)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{
			Error:      "no such endpoint",
			Reason:     r.Method + " " + r.URL.Path,
			Suggestion: "see 'petcare --help' for the available commands",
			Code:       int(errors.CodeNotFound),
			RequestID:  RequestIDFrom(r.Context()),
		})
	})
	return mux
}

// route registers an authenticated handler for pattern. kind is the record
// kind checked against the user's grants.
func (g *Gateway) route(mux *http.ServeMux, pattern, kind string, h handlerFunc) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		if info := infoFrom(r.Context()); info != nil {
			info.route = pattern
		}
		user, err := g.authenticate(r, kind)
		if err != nil {
			g.writeError(w, r, err)
			return
		}
		r = r.WithContext(auth.ContextWithUser(r.Context(), user))
		if err := h(w, r); err != nil {
			g.writeError(w, r, err)
		}
	})
}

func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	if info := infoFrom(r.Context()); info != nil {
		info.route = "GET " + api.EndpointHealth
	}
	writeJSON(w, http.StatusOK, models.HealthResponse{Status: "ok", Version: g.config.Version})
}

func (g *Gateway) handleReady(w http.ResponseWriter, r *http.Request) {
	if info := infoFrom(r.Context()); info != nil {
		info.route = "GET " + api.EndpointReady
	}
	result := g.checker.Run(r.Context())
	resp := result.Health()
	resp.Storage = g.config.Storage

	code := http.StatusOK
	if !result.Ready {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

func (g *Gateway) auditSummary(w http.ResponseWriter, r *http.Request) error {
	writeJSON(w, http.StatusOK, g.audit.Summary())
	return nil
}
