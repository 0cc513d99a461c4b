// Package status provides readiness checks and operator-facing summaries.
package status

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/petcare-labs/petcare/pkg/models"
)

// Check probes one component. A nil error means ready.
type Check func(ctx context.Context) error

// ComponentStatus represents the status of a component.
type ComponentStatus struct {
	Ready   bool   `json:"ready"`
	Message string `json:"message"`
}

// Result is the outcome of running every registered check.
type Result struct {
	Ready      bool                       `json:"ready"`
	Reason     string                     `json:"reason,omitempty"`
	Version    string                     `json:"version"`
	Components map[string]ComponentStatus `json:"components"`
}

// Health converts the result to the wire form served by /readyz.
func (r *Result) Health() models.HealthResponse {
	resp := models.HealthResponse{
		Status:  "ready",
		Version: r.Version,
		Checks:  make(map[string]string, len(r.Components)),
	}
	if !r.Ready {
		resp.Status = "not ready"
	}
	for name, c := range r.Components {
		resp.Checks[name] = c.Message
	}
	return resp
}

// Checker runs named readiness checks concurrently.
type Checker struct {
	version string
	timeout time.Duration

	mu     sync.RWMutex
	names  []string
	checks map[string]Check
}

// NewChecker creates a checker. Each check gets at most timeout; zero means 5s.
func NewChecker(version string, timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Checker{
		version: version,
		timeout: timeout,
		checks:  make(map[string]Check),
	}
}

// Add registers a check, replacing any check with the same name.
func (c *Checker) Add(name string, check Check) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.checks[name]; !ok {
		c.names = append(c.names, name)
	}
	c.checks[name] = check
}

// Run executes all checks. The first failing component, in registration
// order, becomes the Reason.
func (c *Checker) Run(ctx context.Context) *Result {
	c.mu.RLock()
	names := append([]string(nil), c.names...)
	checks := make([]Check, len(names))
	for i, n := range names {
		checks[i] = c.checks[n]
	}
	c.mu.RUnlock()

	statuses := make([]ComponentStatus, len(names))
	var g errgroup.Group
	for i := range names {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()
			if err := checks[i](cctx); err != nil {
				statuses[i] = ComponentStatus{Message: firstLine(err.Error())}
				return nil
			}
			statuses[i] = ComponentStatus{Ready: true, Message: "ok"}
			return nil
		})
	}
	_ = g.Wait()

	result := &Result{
		Ready:      true,
		Version:    c.version,
		Components: make(map[string]ComponentStatus, len(names)),
	}
	for i, n := range names {
		result.Components[n] = statuses[i]
		if !statuses[i].Ready && result.Ready {
			result.Ready = false
			result.Reason = n + " not ready: " + statuses[i].Message
		}
	}
	return result
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// FormatHealth renders a readiness response for the terminal.
func FormatHealth(h *models.HealthResponse) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Gateway: %s\n", h.Status)
	if h.Version != "" {
		fmt.Fprintf(&sb, "Version: %s\n", h.Version)
	}
	if h.Storage != "" {
		fmt.Fprintf(&sb, "Storage: %s\n", h.Storage)
	}
	for _, name := range sortedKeys(h.Checks) {
		fmt.Fprintf(&sb, "  %-10s %s\n", name, h.Checks[name])
	}
	return sb.String()
}

// FormatAuditSummary renders aggregate request counts without any
// per-request detail.
func FormatAuditSummary(s *models.AuditSummary) string {
	var sb strings.Builder
	sb.WriteString("Request Summary:\n")
	fmt.Fprintf(&sb, "  Total:  %d\n", s.TotalRequests)
	fmt.Fprintf(&sb, "  Failed: %d\n", s.FailedRequests)
	if !s.Since.IsZero() {
		fmt.Fprintf(&sb, "  Since:  %s\n", s.Since.Format(time.RFC3339))
	}

	if len(s.ByRoute) > 0 {
		sb.WriteString("Top Routes:\n")
		for _, stat := range top(s.ByRoute, 5) {
			fmt.Fprintf(&sb, "  - %s: %d\n", stat.key, stat.count)
		}
	}
	if len(s.ByStatus) > 0 {
		codes := make([]int, 0, len(s.ByStatus))
		for code := range s.ByStatus {
			codes = append(codes, code)
		}
		sort.Ints(codes)
		sb.WriteString("By Status:\n")
		for _, code := range codes {
			fmt.Fprintf(&sb, "  - %d: %d\n", code, s.ByStatus[code])
		}
	}
	return sb.String()
}

type stat struct {
	key   string
	count int
}

// top returns the n largest counts, ties broken by key.
func top(counts map[string]int, n int) []stat {
	stats := make([]stat, 0, len(counts))
	for k, v := range counts {
		stats = append(stats, stat{k, v})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].count != stats[j].count {
			return stats[i].count > stats[j].count
		}
		return stats[i].key < stats[j].key
	})
	if len(stats) > n {
		stats = stats[:n]
	}
	return stats
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
