package cli

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/spf13/cobra"
)

func (c *CLI) newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run client diagnostics",
		Long: `Run client-side diagnostics.

Checks:
  - configuration
  - stored authentication
  - TCP connectivity to the gateway
  - gateway readiness and token acceptance`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDoctor(cmd.Context())
		},
	}
}

// DiagnosticCheck represents a single diagnostic check result.
type DiagnosticCheck struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (c *CLI) runDoctor(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	checks := []DiagnosticCheck{
		c.checkConfig(),
		c.checkAuth(),
		c.checkGateway(),
		c.checkReadiness(ctx),
		c.checkToken(ctx),
	}
	allPassed := true
	for _, check := range checks {
		allPassed = allPassed && check.Passed
	}

	if c.jsonOutput {
		return c.outputJSON(map[string]any{
			"checks":    checks,
			"allPassed": allPassed,
		})
	}

	c.println("Petcare Diagnostics")
	c.println("===================")
	c.println("")
	for _, check := range checks {
		c.printCheck(check)
	}
	c.println("")
	if allPassed {
		c.println("✓ All checks passed")
	} else {
		c.println("✗ Some checks failed - see above for details")
	}
	return nil
}

func (c *CLI) printCheck(check DiagnosticCheck) {
	p := c.palette()
	mark := p.overdue.Render("✗")
	if check.Passed {
		mark = p.ok.Render("✓")
	}
	c.printf("%s %s: %s\n", mark, check.Name, check.Message)
	if check.Details != "" && !check.Passed {
		c.printf("  → %s\n", check.Details)
	}
}

func (c *CLI) checkConfig() DiagnosticCheck {
	check := DiagnosticCheck{Name: "Configuration"}

	if c.cfg == nil {
		check.Message = "No configuration loaded"
		check.Details = "Create ~/.petcare/config.yaml or use --config"
		return check
	}
	if c.cfg.Endpoint == "" {
		check.Message = "No endpoint configured"
		check.Details = "Set endpoint in config or use --endpoint"
		return check
	}
	if _, err := url.ParseRequestURI(c.cfg.Endpoint); err != nil {
		check.Message = "Endpoint is not a URL"
		check.Details = err.Error()
		return check
	}

	check.Passed = true
	check.Message = fmt.Sprintf("Endpoint: %s", c.cfg.Endpoint)
	return check
}

func (c *CLI) checkAuth() DiagnosticCheck {
	check := DiagnosticCheck{Name: "Authentication"}

	if c.getToken() == "" {
		check.Message = "Not authenticated"
		check.Details = "Run 'petcare auth login' to authenticate"
		return check
	}

	check.Passed = true
	check.Message = fmt.Sprintf("Token present (source: %s)", c.getTokenSource())
	return check
}

func (c *CLI) checkGateway() DiagnosticCheck {
	check := DiagnosticCheck{Name: "Gateway Connectivity"}

	if c.cfg == nil || c.cfg.Endpoint == "" {
		check.Message = "No endpoint configured"
		return check
	}
	u, err := url.Parse(c.cfg.Endpoint)
	if err != nil || u.Host == "" {
		check.Message = "Endpoint has no host"
		return check
	}
	host := u.Host
	if u.Port() == "" {
		port := "80"
		if u.Scheme == "https" {
			port = "443"
		}
		host = net.JoinHostPort(u.Hostname(), port)
	}

	conn, err := net.DialTimeout("tcp", host, 2*time.Second)
	if err != nil {
		check.Message = "Cannot connect to gateway"
		check.Details = fmt.Sprintf("Error: %v", err)
		return check
	}
	conn.Close()

	check.Passed = true
	check.Message = fmt.Sprintf("Connected to %s", c.cfg.Endpoint)
	return check
}

func (c *CLI) checkReadiness(ctx context.Context) DiagnosticCheck {
	check := DiagnosticCheck{Name: "Gateway Readiness"}
	if c.cfg == nil || c.cfg.Endpoint == "" {
		check.Message = "No endpoint configured"
		return check
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	health, err := c.newGatewayClient().GetStatus(ctx)
	if err != nil {
		check.Message = "Gateway not ready"
		check.Details = firstLine(err)
		if health.Storage != "" {
			check.Details += " (storage: " + health.Storage + ")"
		}
		return check
	}

	check.Passed = true
	check.Message = fmt.Sprintf("Ready, version %s, storage %s", health.Version, health.Storage)
	return check
}

func (c *CLI) checkToken(ctx context.Context) DiagnosticCheck {
	check := DiagnosticCheck{Name: "Token Accepted"}
	if c.cfg == nil || c.cfg.Endpoint == "" || c.getToken() == "" {
		check.Message = "Skipped"
		check.Details = "Needs an endpoint and a token"
		return check
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := c.newGatewayClient().Dashboard(ctx); err != nil {
		check.Message = "Gateway rejected the request"
		check.Details = firstLine(err)
		return check
	}

	check.Passed = true
	check.Message = "Gateway accepted the token"
	return check
}
