// Package cli provides the petcare command-line interface.
// The CLI is a client of the gateway; it never opens the store itself.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/petcare-labs/petcare/internal/config"
	"github.com/petcare-labs/petcare/internal/errors"
)

// Exit codes
const (
	ExitSuccess    = 0
	ExitValidation = 1
	ExitAuth       = 2
	ExitStorage    = 3
	ExitInternal   = 4
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// requestTimeout bounds every gateway call made by a command.
const requestTimeout = 30 * time.Second

// CLI holds the command-line interface state.
type CLI struct {
	rootCmd *cobra.Command
	cfg     *config.Config

	out    io.Writer
	errOut io.Writer
	in     io.Reader

	// Global flags
	configPath string
	endpoint   string
	token      string
	jsonOutput bool
	quiet      bool
	debug      bool
	noColor    bool

	// now overrides the clock used to label reminders and vaccinations.
	now func() time.Time
}

// New creates a new CLI instance writing to stdout and stderr.
func New() *CLI {
	cli := &CLI{out: os.Stdout, errOut: os.Stderr, in: os.Stdin}
	cli.rootCmd = cli.newRootCmd()
	return cli
}

// SetOutput redirects normal and error output.
func (c *CLI) SetOutput(out, errOut io.Writer) {
	c.out = out
	c.errOut = errOut
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(errOut)
}

// SetInput replaces stdin, used by prompts.
func (c *CLI) SetInput(in io.Reader) {
	c.in = in
	c.rootCmd.SetIn(in)
}

// SetClock fixes the time used to classify records in listings.
func (c *CLI) SetClock(now func() time.Time) {
	c.now = now
}

// SetArgs overrides os.Args[1:].
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// Execute runs the CLI and returns the process exit code.
func (c *CLI) Execute() int {
	return c.ExecuteContext(context.Background())
}

// ExecuteContext runs the CLI with ctx and returns the process exit code.
func (c *CLI) ExecuteContext(ctx context.Context) int {
	if err := c.rootCmd.ExecuteContext(ctx); err != nil {
		c.printError(err)
		return ExitCode(err)
	}
	return ExitSuccess
}

// ExitCode maps an error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	pe, ok := errors.As(err)
	if !ok {
		// cobra usage errors (unknown flag, wrong arg count)
		return ExitValidation
	}
	switch pe.Code {
	case errors.CodeValidation, errors.CodeNotFound:
		return ExitValidation
	case errors.CodeAuth, errors.CodeForbidden:
		return ExitAuth
	case errors.CodeStorage:
		return ExitStorage
	default:
		return ExitInternal
	}
}

func (c *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "petcare",
		Short: "petcare - household pet care tracker",
		Long: `petcare keeps track of your pets' feeding schedules, vet appointments,
vaccinations and reminders.

Every command talks to a running petcare-gateway.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.initConfig()
		},
	}
	cmd.SetOut(c.out)
	cmd.SetErr(c.errOut)

	// Global flags
	cmd.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ./config.yaml or ~/.petcare/config.yaml)")
	cmd.PersistentFlags().StringVar(&c.endpoint, "endpoint", "", "gateway endpoint")
	cmd.PersistentFlags().StringVar(&c.token, "token", "", "auth token (overrides config)")
	cmd.PersistentFlags().BoolVar(&c.jsonOutput, "json", false, "machine-readable JSON output")
	cmd.PersistentFlags().BoolVar(&c.quiet, "quiet", false, "suppress non-essential output")
	cmd.PersistentFlags().BoolVar(&c.debug, "debug", false, "verbose debug logs")
	cmd.PersistentFlags().BoolVar(&c.noColor, "no-color", false, "disable highlighting")

	cmd.AddCommand(c.newPetCmd())
	cmd.AddCommand(c.newReminderCmd())
	cmd.AddCommand(c.newAppointmentCmd())
	cmd.AddCommand(c.newFeedingCmd())
	cmd.AddCommand(c.newVaccinationCmd())
	cmd.AddCommand(c.newDashboardCmd())
	cmd.AddCommand(c.newStatusCmd())
	cmd.AddCommand(c.newAuditCmd())
	cmd.AddCommand(c.newAuthCmd())
	cmd.AddCommand(c.newDoctorCmd())
	cmd.AddCommand(c.newVersionCmd())

	return cmd
}

func (c *CLI) initConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return errors.NewInvalidField("config", "config", err.Error())
	}
	c.cfg = cfg

	// Override with flags
	if c.endpoint != "" {
		c.cfg.Endpoint = c.endpoint
	}
	if c.token != "" {
		c.cfg.Auth.Token = c.token
	}
	return nil
}

// Helper functions for output

func (c *CLI) printf(format string, args ...any) {
	if !c.quiet {
		fmt.Fprintf(c.out, format, args...)
	}
}

func (c *CLI) println(args ...any) {
	if !c.quiet {
		fmt.Fprintln(c.out, args...)
	}
}

func (c *CLI) errorf(format string, args ...any) {
	fmt.Fprintf(c.errOut, format, args...)
}

func (c *CLI) debugf(format string, args ...any) {
	if c.debug {
		fmt.Fprintf(c.errOut, "[DEBUG] "+format, args...)
	}
}

// printError reports a failed command. Typed errors already carry their
// reason and suggestion on separate lines.
func (c *CLI) printError(err error) {
	if c.jsonOutput {
		if pe, ok := errors.As(err); ok {
			enc := json.NewEncoder(c.errOut)
			enc.SetIndent("", "  ")
			_ = enc.Encode(map[string]any{
				"error":      pe.Message,
				"reason":     pe.Reason,
				"suggestion": pe.Suggestion,
				"code":       int(pe.Code),
			})
			return
		}
	}
	c.errorf("Error: %v\n", err)
}

func (c *CLI) outputJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// newGatewayClient creates a new gateway client with current config.
func (c *CLI) newGatewayClient() *GatewayClient {
	c.debugf("gateway %s (token from %s)\n", c.cfg.Endpoint, c.getTokenSource())
	return NewGatewayClient(c.cfg.Endpoint, c.getToken())
}

// withTimeout derives the per-command deadline from the command context.
func (c *CLI) withTimeout(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, requestTimeout)
}
