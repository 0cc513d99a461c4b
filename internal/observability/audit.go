package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/petcare-labs/petcare/pkg/models"
)

// Outcomes recorded on every request.
const (
	OutcomeSuccess  = "success"
	OutcomeError    = "error"
	OutcomeRejected = "rejected"
)

// RequestLogEntry contains all required fields for request logging.
type RequestLogEntry struct {
	// RequestID is the X-Request-ID of the request.
	RequestID string

	// User is the authenticated user, or "anonymous" for unauthenticated routes.
	User string

	Method string

	// Route is the matched pattern, e.g. "GET /api/v1/pets/{id}", not the raw path.
	Route string

	Status int

	// Duration must be non-negative.
	Duration time.Duration

	// Outcome is success, error (5xx) or rejected (4xx).
	Outcome string

	// Error contains the error message if the request failed.
	Error string
}

// Validate checks that all required fields are present.
func (e *RequestLogEntry) Validate() error {
	if e.RequestID == "" {
		return fmt.Errorf("observability: request_id is required")
	}
	if e.User == "" {
		return fmt.Errorf("observability: user is required")
	}
	if e.Duration < 0 {
		return fmt.Errorf("observability: duration cannot be negative")
	}
	return nil
}

// OutcomeFor classifies an HTTP status.
func OutcomeFor(status int) string {
	switch {
	case status >= 500:
		return OutcomeError
	case status >= 400:
		return OutcomeRejected
	default:
		return OutcomeSuccess
	}
}

// AuditLogger records request audit entries.
type AuditLogger interface {
	LogRequest(ctx context.Context, entry RequestLogEntry) error

	// Summary returns aggregate counts; no individual entries are exposed.
	Summary() *models.AuditSummary
}

// ZapAuditLogger writes each entry through zap and keeps running totals.
type ZapAuditLogger struct {
	logger *zap.Logger

	mu       sync.Mutex
	since    time.Time
	total    int
	failed   int
	byRoute  map[string]int
	byStatus map[int]int
	byUser   map[string]int
}

// NewZapAuditLogger creates an audit logger writing to logger.
func NewZapAuditLogger(logger *zap.Logger) *ZapAuditLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapAuditLogger{
		logger:   logger.Named("audit"),
		since:    time.Now().UTC(),
		byRoute:  make(map[string]int),
		byStatus: make(map[int]int),
		byUser:   make(map[string]int),
	}
}

// LogRequest logs a request and folds it into the summary.
func (l *ZapAuditLogger) LogRequest(ctx context.Context, entry RequestLogEntry) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("observability: context error: %w", err)
	}
	if err := entry.Validate(); err != nil {
		return err
	}
	if entry.Outcome == "" {
		entry.Outcome = OutcomeFor(entry.Status)
	}

	fields := []zap.Field{
		zap.String("request_id", entry.RequestID),
		zap.String("user", entry.User),
		zap.String("method", entry.Method),
		zap.String("route", entry.Route),
		zap.Int("status", entry.Status),
		zap.Int64("duration_ms", entry.Duration.Milliseconds()),
		zap.String("outcome", entry.Outcome),
	}
	switch entry.Outcome {
	case OutcomeError:
		l.logger.Error("request", append(fields, zap.String("error", entry.Error))...)
	case OutcomeRejected:
		l.logger.Warn("request", append(fields, zap.String("error", entry.Error))...)
	default:
		l.logger.Info("request", fields...)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.total++
	if entry.Outcome != OutcomeSuccess {
		l.failed++
	}
	l.byRoute[entry.Route]++
	l.byStatus[entry.Status]++
	l.byUser[entry.User]++
	return nil
}

// Summary returns a snapshot of the aggregate counts.
func (l *ZapAuditLogger) Summary() *models.AuditSummary {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := &models.AuditSummary{
		TotalRequests:  l.total,
		FailedRequests: l.failed,
		ByRoute:        make(map[string]int, len(l.byRoute)),
		ByStatus:       make(map[int]int, len(l.byStatus)),
		ByUser:         make(map[string]int, len(l.byUser)),
		Since:          l.since,
	}
	for k, v := range l.byRoute {
		s.ByRoute[k] = v
	}
	for k, v := range l.byStatus {
		s.ByStatus[k] = v
	}
	for k, v := range l.byUser {
		s.ByUser[k] = v
	}
	return s
}
