package status

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petcare-labs/petcare/internal/errors"
	"github.com/petcare-labs/petcare/pkg/models"
)

func TestCheckerAllReady(t *testing.T) {
	c := NewChecker("0.1.0", time.Second)
	c.Add("storage", func(context.Context) error { return nil })
	c.Add("config", func(context.Context) error { return nil })

	r := c.Run(context.Background())
	assert.True(t, r.Ready)
	assert.Empty(t, r.Reason)
	assert.Equal(t, ComponentStatus{Ready: true, Message: "ok"}, r.Components["storage"])

	h := r.Health()
	assert.Equal(t, "ready", h.Status)
	assert.Equal(t, "0.1.0", h.Version)
	assert.Equal(t, map[string]string{"storage": "ok", "config": "ok"}, h.Checks)
}

func TestCheckerReportsFirstFailure(t *testing.T) {
	c := NewChecker("0.1.0", time.Second)
	c.Add("config", func(context.Context) error { return stderrors.New("no timezone") })
	c.Add("storage", func(context.Context) error { return errors.NewStorageUnavailable("ping failed") })

	r := c.Run(context.Background())
	require.False(t, r.Ready)
	assert.Equal(t, "config not ready: no timezone", r.Reason)
	// multi-line typed errors are cut to their headline
	assert.Equal(t, "storage unavailable", r.Components["storage"].Message)
	assert.Equal(t, "not ready", r.Health().Status)
}

func TestCheckerTimeout(t *testing.T) {
	c := NewChecker("v", 10*time.Millisecond)
	c.Add("storage", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	r := c.Run(context.Background())
	assert.False(t, r.Ready)
	assert.Contains(t, r.Reason, "deadline exceeded")
}

func TestCheckerReplacesCheck(t *testing.T) {
	c := NewChecker("v", 0)
	c.Add("storage", func(context.Context) error { return stderrors.New("down") })
	c.Add("storage", func(context.Context) error { return nil })

	r := c.Run(context.Background())
	assert.True(t, r.Ready)
	assert.Len(t, r.Components, 1)
}

func TestFormatAuditSummary(t *testing.T) {
	out := FormatAuditSummary(&models.AuditSummary{
		TotalRequests:  6,
		FailedRequests: 1,
		ByRoute:        map[string]int{"GET /api/v1/pets": 4, "GET /health": 2},
		ByStatus:       map[int]int{404: 1, 200: 5},
	})

	assert.Contains(t, out, "Total:  6")
	assert.Contains(t, out, "Failed: 1")
	assert.Less(t, strings.Index(out, "GET /api/v1/pets: 4"), strings.Index(out, "GET /health: 2"))
	assert.Less(t, strings.Index(out, "200: 5"), strings.Index(out, "404: 1"))
}

func TestFormatHealth(t *testing.T) {
	out := FormatHealth(&models.HealthResponse{
		Status:  "ready",
		Version: "0.1.0",
		Storage: "sqlite",
		Checks:  map[string]string{"storage": "ok"},
	})
	assert.Contains(t, out, "Gateway: ready")
	assert.Contains(t, out, "Storage: sqlite")
	assert.Contains(t, out, "storage")
}
