package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/petcare-labs/petcare/internal/errors"
)

const tokenFileName = "token"

func (c *CLI) newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication commands",
		Long:  `Manage the bearer token used to talk to the petcare gateway.`,
	}

	cmd.AddCommand(c.newAuthLoginCmd())
	cmd.AddCommand(c.newAuthStatusCmd())
	cmd.AddCommand(c.newAuthLogoutCmd())

	return cmd
}

func (c *CLI) newAuthLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Store a gateway token",
		Long: `Check a token against the gateway and store it in ~/.petcare/token.

The token is taken from --token or read from stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAuthLogin(cmd)
		},
	}
}

func (c *CLI) runAuthLogin(cmd *cobra.Command) error {
	token := c.token
	if token == "" {
		c.printf("Enter authentication token: ")
		token = c.readLine()
	}
	if token == "" {
		return errors.NewAuthFailed("token required; provide it via --token or enter it when prompted")
	}

	// A rejected token is never stored. An unreachable gateway is only a warning.
	ctx, cancel := c.withTimeout(cmd)
	defer cancel()
	client := NewGatewayClient(c.cfg.Endpoint, token)
	if _, err := client.ListPets(ctx); err != nil {
		switch errors.CodeOf(err) {
		case errors.CodeAuth:
			return err
		case errors.CodeForbidden:
			// viewers without pet access can still hold a valid token
		default:
			c.errorf("Warning: could not verify token: %v\n", firstLine(err))
		}
	}

	tokenFile, err := c.tokenFile()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(tokenFile), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(tokenFile, []byte(token), 0o600); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	c.println("✓ Authentication successful")
	c.printf("  Token saved to: %s\n", tokenFile)
	return nil
}

func (c *CLI) newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Display authentication status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAuthStatus()
		},
	}
}

// AuthStatus represents authentication status for JSON output.
type AuthStatus struct {
	Authenticated bool   `json:"authenticated"`
	TokenSource   string `json:"tokenSource,omitempty"`
}

func (c *CLI) runAuthStatus() error {
	token := c.getToken()
	if token == "" {
		if c.jsonOutput {
			return c.outputJSON(AuthStatus{})
		}
		return errors.NewAuthFailed("no token found; run 'petcare auth login'")
	}

	status := AuthStatus{Authenticated: true, TokenSource: c.getTokenSource()}
	if c.jsonOutput {
		return c.outputJSON(status)
	}
	c.println("Authentication Status:")
	c.println("  Authenticated: ✓")
	c.printf("  Token source: %s\n", status.TokenSource)
	return nil
}

func (c *CLI) newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear stored authentication",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAuthLogout()
		},
	}
}

func (c *CLI) runAuthLogout() error {
	tokenFile, err := c.tokenFile()
	if err != nil {
		return err
	}
	if err := os.Remove(tokenFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	c.println("✓ Logged out successfully")
	return nil
}

func (c *CLI) getConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".petcare"), nil
}

func (c *CLI) tokenFile() (string, error) {
	dir, err := c.getConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, tokenFileName), nil
}

// getToken resolves the token. Priority: flag > config > token file.
func (c *CLI) getToken() string {
	if c.token != "" {
		return c.token
	}
	if c.cfg != nil && c.cfg.Auth.Token != "" {
		return c.cfg.Auth.Token
	}
	tokenFile, err := c.tokenFile()
	if err != nil {
		return ""
	}
	data, err := os.ReadFile(tokenFile)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (c *CLI) getTokenSource() string {
	if c.token != "" {
		return "command-line flag"
	}
	if c.cfg != nil && c.cfg.Auth.Token != "" {
		return "config file"
	}
	return "token file (~/.petcare/token)"
}

// readLine reads one trimmed line from the CLI's input.
func (c *CLI) readLine() string {
	sc := bufio.NewScanner(c.in)
	if sc.Scan() {
		return strings.TrimSpace(sc.Text())
	}
	return ""
}

// firstLine returns the headline of a multi-line error.
func firstLine(err error) string {
	s, _, _ := strings.Cut(err.Error(), "\n")
	return s
}
